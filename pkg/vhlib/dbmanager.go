package vhlib

import (
	"github.com/spf13/afero"

	"github.com/vaulth/vhindex/pkg/logger"
	"github.com/vaulth/vhindex/pkg/store"
)

// dbManager is the sole owner of a *store.Store (§4.3/§4.6): every other
// stage reaches persistence only by posting actions onto its inbox, which
// keeps every write on one goroutine and lets StepTransaction batch commits
// safely.
type dbManager struct {
	log   logger.Logger
	st    *store.Store
	inbox chan dbAction
	done  chan struct{}

	commitInterval int

	// roots/suffixes/fs back the end-of-loop disappeared-file sweep
	// (§4.6): an unchecked candidate is purged when it fails any one of the
	// three checks, not merely because the scanner didn't touch it this loop.
	roots    []scanRootState
	suffixes map[string]struct{}
	fs       afero.Fs

	onAck     func(*FileData)
	onScanAck func(*FileData)
	onFixed   func(*FileData)

	checkpoint func()
}

// dbAction is one queued mutation plus the FileData it concerns.
type dbAction struct {
	kind ActionKind
	fd   *FileData
}

func newDBManager(log logger.Logger, st *store.Store, commitInterval int, roots []scanRootState, suffixes map[string]struct{}, fs afero.Fs) *dbManager {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &dbManager{
		log:            log,
		st:             st,
		inbox:          make(chan dbAction, 256),
		done:           make(chan struct{}),
		commitInterval: commitInterval,
		roots:          roots,
		suffixes:       suffixes,
		fs:             fs,
	}
}

func (d *dbManager) start() {
	go d.loop()
}

func (d *dbManager) stop() {
	close(d.done)
}

func (d *dbManager) post(kind ActionKind, fd *FileData) {
	select {
	case d.inbox <- dbAction{kind: kind, fd: fd}:
	case <-d.done:
	}
}

func (d *dbManager) loop() {
	for {
		if d.checkpoint != nil {
			d.checkpoint()
		}
		select {
		case act := <-d.inbox:
			d.handle(act)
		case <-d.done:
			// drain whatever is already queued before a KillThread wins the
			// race, mirroring eventHandler.loop's shutdown discipline.
			for {
				select {
				case act := <-d.inbox:
					d.handle(act)
				default:
					return
				}
			}
		}
	}
}

func (d *dbManager) handle(act dbAction) {
	fd := act.fd
	var err error
	switch act.kind {
	case ActionNewFile:
		err = d.handleNewFile(fd)
	case ActionInsertP, ActionUpdateP:
		err = d.handleParserMeta(fd)
	case ActionInsertG, ActionUpdateG:
		err = d.handleGrabberMeta(fd)
	case ActionEnd:
		err = d.handleEnd(fd)
	case ActionNextLoop:
		err = d.handleNextLoop()
	}
	if err != nil {
		d.log.Error("store operation failed: path=%s action=%d: %v", fd.Path, int(act.kind), err)
		return
	}
	if err := d.st.StepTransaction(d.commitInterval); err != nil {
		d.log.Error("step transaction failed: %v", err)
	}
	// Acknowledge back to the Scanner occurs after End, once all metadata
	// and grabber associations for the file are written; on-demand files
	// never produce an Acknowledge (§4.5).
	if act.kind == ActionEnd && !fd.OnDemand && d.onScanAck != nil {
		d.onScanAck(fd)
	}
	if act.kind != ActionNextLoop && d.onAck != nil && !fd.OnDemand {
		d.onAck(fd)
	}
}

// handleNewFile implements §4.6's NewFile(file): insert unseen paths,
// update changed mtimes, and leave unchanged paths alone (invariant 2/P1).
func (d *dbManager) handleNewFile(fd *FileData) error {
	mtime, ok, err := d.st.FileMTime(fd.Path)
	if err != nil {
		return err
	}
	switch {
	case !ok:
		_, err = d.st.FileInsert(fd.Path, fd.MTime, fd.OutOfPath)
	case mtime != fd.MTime:
		err = d.st.FileUpdate(fd.Path, fd.MTime, fd.OutOfPath)
	}
	return err
}

func (d *dbManager) handleParserMeta(fd *FileData) error {
	if fd.Type != TypeNull {
		if err := d.st.FileSetType(fd.Path, fd.Type); err != nil {
			return err
		}
	}
	for _, m := range fd.TakeParserMeta() {
		if err := d.st.MetadataAssociate(fd.Path, m.Key, m.Value, m.Group, m.Language, false, m.Priority); err != nil {
			return err
		}
	}
	return nil
}

func (d *dbManager) handleGrabberMeta(fd *FileData) error {
	if fd.CurrentGrabber != "" {
		if err := d.st.GrabberAssociate(fd.Path, fd.CurrentGrabber); err != nil {
			return err
		}
	}
	for _, m := range fd.TakeGrabberMeta() {
		if err := d.st.MetadataAssociate(fd.Path, m.Key, m.Value, m.Group, m.Language, false, m.Priority); err != nil {
			return err
		}
	}
	if len(fd.Downloads) > 0 {
		rows := make([]store.DLContextRow, len(fd.Downloads))
		for i, it := range fd.Downloads {
			rows[i] = store.DLContextRow{URL: it.URL, Kind: it.Kind, Name: it.Name}
		}
		if err := d.st.DLContextSave(fd.Path, rows); err != nil {
			return err
		}
	}
	// unblock a grabber worker waiting on this file's previous write landing.
	fd.Release()
	return nil
}

func (d *dbManager) handleEnd(fd *FileData) error {
	return d.st.FileInterruptedClear(fd.Path)
}

// handleNextLoop runs the end-of-loop sweep (§4.6): purge every file the loop
// never checked in that no longer exists, is outside every root or has a
// suffix no longer accepted, fix any InFlight rows left by a crash mid-pass, sweep
// orphaned lookup rows, and reset the checked flags for the next scan.
func (d *dbManager) handleNextLoop() error {
	if err := d.sweepDisappeared(); err != nil {
		return err
	}
	if _, err := d.st.FileInterruptedFixMinusOneToOne(); err != nil {
		return err
	}
	if _, err := d.st.Cleanup(); err != nil {
		return err
	}
	return d.st.FileCheckedClearAll()
}

// sweepDisappeared implements invariant 5/S3: a file still at checked=0
// after a full loop is only "presumed deleted" once it no longer exists, no
// longer falls under any configured root, or no longer carries an accepted
// suffix — in that case its metadata and file row are purged.
func (d *dbManager) sweepDisappeared() error {
	candidates, err := d.st.NextCheckedZeroNotOutOfPath()
	if err != nil {
		return err
	}
	for _, path := range candidates {
		if d.stillTracked(path) {
			continue
		}
		if err := d.st.FileDataDelete(path); err != nil {
			return err
		}
		if err := d.st.FileDelete(path); err != nil {
			return err
		}
	}
	return nil
}

func (d *dbManager) stillTracked(path string) bool {
	if _, err := d.fs.Stat(path); err != nil {
		return false
	}
	if !matchesAnyRoot(path, d.roots) {
		return false
	}
	return suffixMatches(path, d.suffixes)
}
