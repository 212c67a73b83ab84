package store

import (
	"testing"

	"github.com/vaulth/vhindex/pkg/vhtypes"
)

func TestFileInsertAndFile(t *testing.T) {
	s := openTestStore(t)
	id, err := s.FileInsert("/music/a.mp3", 100, false)
	if err != nil {
		t.Fatalf("FileInsert: %v", err)
	}
	f, err := s.File("/music/a.mp3")
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if f.ID != id || f.MTime != 100 || f.OutOfPath || !f.Checked {
		t.Fatalf("unexpected row: %+v", f)
	}
	if f.Interrupted != vhtypes.InterruptedInFlight {
		t.Fatalf("Interrupted = %v, want InFlight", f.Interrupted)
	}
}

func TestFile_NotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.File("/nope"); err != ErrFileNotFound {
		t.Fatalf("File on missing path: got %v, want ErrFileNotFound", err)
	}
}

func TestFileUpdate_RearmsInterrupted(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.FileInsert("/a", 1, false); err != nil {
		t.Fatalf("FileInsert: %v", err)
	}
	if err := s.FileInterruptedClear("/a"); err != nil {
		t.Fatalf("FileInterruptedClear: %v", err)
	}
	if v, err := s.FileInterrupted("/a"); err != nil || v != vhtypes.InterruptedDone {
		t.Fatalf("FileInterrupted after clear = %v, %v", v, err)
	}

	if err := s.FileUpdate("/a", 2, true); err != nil {
		t.Fatalf("FileUpdate: %v", err)
	}
	f, err := s.File("/a")
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if f.MTime != 2 || !f.OutOfPath || !f.Checked {
		t.Fatalf("unexpected row after update: %+v", f)
	}
	if v, err := s.FileInterrupted("/a"); err != nil || v != vhtypes.InterruptedInFlight {
		t.Fatalf("FileInterrupted after update = %v, %v, want InFlight", v, err)
	}
}

func TestFileMTime(t *testing.T) {
	s := openTestStore(t)
	if _, ok, err := s.FileMTime("/missing"); ok || err != nil {
		t.Fatalf("FileMTime on missing path = ok=%v err=%v, want ok=false err=nil", ok, err)
	}
	if _, err := s.FileInsert("/a", 42, false); err != nil {
		t.Fatalf("FileInsert: %v", err)
	}
	mtime, ok, err := s.FileMTime("/a")
	if err != nil || !ok || mtime != 42 {
		t.Fatalf("FileMTime = %d, %v, %v; want 42, true, nil", mtime, ok, err)
	}
}

func TestFileSetType(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.FileInsert("/a", 1, false); err != nil {
		t.Fatalf("FileInsert: %v", err)
	}
	if err := s.FileSetType("/a", vhtypes.TypeAudio); err != nil {
		t.Fatalf("FileSetType: %v", err)
	}
	f, err := s.File("/a")
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if f.Type != vhtypes.TypeAudio {
		t.Fatalf("Type = %v, want TypeAudio", f.Type)
	}
}

func TestFileInterruptedFixMinusOneToOne(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.FileInsert("/a", 1, false); err != nil {
		t.Fatalf("FileInsert: %v", err)
	}
	n, err := s.FileInterruptedFixMinusOneToOne()
	if err != nil {
		t.Fatalf("FileInterruptedFixMinusOneToOne: %v", err)
	}
	if n != 1 {
		t.Fatalf("rows affected = %d, want 1", n)
	}
	v, err := s.FileInterrupted("/a")
	if err != nil || v != vhtypes.InterruptedStarted {
		t.Fatalf("Interrupted after fix = %v, %v, want Started", v, err)
	}
}

func TestFileCheckedClearAll(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.FileInsert("/a", 1, false); err != nil {
		t.Fatalf("FileInsert: %v", err)
	}
	if err := s.FileCheckedClearAll(); err != nil {
		t.Fatalf("FileCheckedClearAll: %v", err)
	}
	f, err := s.File("/a")
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if f.Checked {
		t.Fatal("Checked should be false after FileCheckedClearAll")
	}
}

func TestFileDelete(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.FileInsert("/a", 1, false); err != nil {
		t.Fatalf("FileInsert: %v", err)
	}
	if err := s.MetadataAssociate("/a", "title", "Song", vhtypes.GroupTitles, vhtypes.LangEN, false, 0); err != nil {
		t.Fatalf("MetadataAssociate: %v", err)
	}
	if err := s.GrabberAssociate("/a", "tag-reader"); err != nil {
		t.Fatalf("GrabberAssociate: %v", err)
	}
	if err := s.FileDelete("/a"); err != nil {
		t.Fatalf("FileDelete: %v", err)
	}
	if _, err := s.File("/a"); err != ErrFileNotFound {
		t.Fatalf("File after delete: got %v, want ErrFileNotFound", err)
	}
	// FileDelete on an already-missing path is a no-op, not an error.
	if err := s.FileDelete("/a"); err != nil {
		t.Fatalf("FileDelete on missing path: %v", err)
	}
}

func TestFileDataDelete_PreservesExternal(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.FileInsert("/a", 1, false); err != nil {
		t.Fatalf("FileInsert: %v", err)
	}
	if err := s.MetadataAssociate("/a", "title", "Internal", vhtypes.GroupTitles, vhtypes.LangEN, false, 0); err != nil {
		t.Fatalf("MetadataAssociate internal: %v", err)
	}
	if err := s.MetadataAssociate("/a", "rating", "5", vhtypes.GroupClassification, vhtypes.LangEN, true, 0); err != nil {
		t.Fatalf("MetadataAssociate external: %v", err)
	}

	if err := s.FileDataDelete("/a"); err != nil {
		t.Fatalf("FileDataDelete: %v", err)
	}

	rows, err := s.FileMeta("/a", nil)
	if err != nil {
		t.Fatalf("FileMeta: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "rating" {
		t.Fatalf("rows after FileDataDelete = %+v, want only the external 'rating' row", rows)
	}
}

func TestMetadataAssociate_ExternalRowUntouchedByInternalRewrite(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.FileInsert("/a", 1, false); err != nil {
		t.Fatalf("FileInsert: %v", err)
	}
	if err := s.MetadataAssociate("/a", "rating", "5", vhtypes.GroupClassification, vhtypes.LangEN, true, 9); err != nil {
		t.Fatalf("MetadataAssociate external: %v", err)
	}
	// A pipeline re-write (external=false) of the same (key, value) pair must
	// leave the existing external row's priority/group untouched.
	if err := s.MetadataAssociate("/a", "rating", "5", vhtypes.GroupTechnical, vhtypes.LangDE, false, 1); err != nil {
		t.Fatalf("MetadataAssociate rewrite: %v", err)
	}

	rows, err := s.FileMeta("/a", nil)
	if err != nil {
		t.Fatalf("FileMeta: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %+v, want exactly one surviving association", rows)
	}
	if !rows[0].External || rows[0].Group != vhtypes.GroupClassification {
		t.Fatalf("external row was overwritten by internal rewrite: %+v", rows[0])
	}
}

func TestMetadataDelete(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.FileInsert("/a", 1, false); err != nil {
		t.Fatalf("FileInsert: %v", err)
	}
	if err := s.MetadataAssociate("/a", "title", "Song", vhtypes.GroupTitles, vhtypes.LangEN, false, 0); err != nil {
		t.Fatalf("MetadataAssociate: %v", err)
	}
	if err := s.MetadataDelete("/a", "title", "Song"); err != nil {
		t.Fatalf("MetadataDelete: %v", err)
	}
	rows, err := s.FileMeta("/a", nil)
	if err != nil {
		t.Fatalf("FileMeta: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows after MetadataDelete = %+v, want none", rows)
	}
}

func TestMetadataPriorityScopes(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.FileInsert("/a", 1, false); err != nil {
		t.Fatalf("FileInsert: %v", err)
	}
	if err := s.MetadataAssociate("/a", "title", "Song", vhtypes.GroupTitles, vhtypes.LangEN, false, 0); err != nil {
		t.Fatalf("MetadataAssociate title: %v", err)
	}
	if err := s.MetadataAssociate("/a", "artist", "Band", vhtypes.GroupPersonal, vhtypes.LangEN, false, 0); err != nil {
		t.Fatalf("MetadataAssociate artist: %v", err)
	}

	priorityFor := func(key string) int8 {
		var p int8
		if err := s.db.QueryRow(`
			SELECT fm.priority FROM file_meta fm
			JOIN meta_keys mk ON mk.id = fm.key_id
			WHERE mk.name = ?`, key).Scan(&p); err != nil {
			t.Fatalf("reading priority for %q: %v", key, err)
		}
		return p
	}

	if err := s.MetadataPriorityFileMetaValue("/a", "title", "Song", 7); err != nil {
		t.Fatalf("MetadataPriorityFileMetaValue: %v", err)
	}
	if p := priorityFor("title"); p != 7 {
		t.Fatalf("title priority = %d, want 7", p)
	}
	if p := priorityFor("artist"); p != 0 {
		t.Fatalf("artist priority = %d, want untouched 0", p)
	}

	if err := s.MetadataPriorityFile("/a", 3); err != nil {
		t.Fatalf("MetadataPriorityFile: %v", err)
	}
	if p := priorityFor("title"); p != 3 {
		t.Fatalf("title priority after file-wide set = %d, want 3", p)
	}
	if p := priorityFor("artist"); p != 3 {
		t.Fatalf("artist priority after file-wide set = %d, want 3", p)
	}
}

func TestGrabberAssociateAndFileGrabbers(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.FileInsert("/a", 1, false); err != nil {
		t.Fatalf("FileInsert: %v", err)
	}
	if err := s.GrabberAssociate("/a", "tag-reader"); err != nil {
		t.Fatalf("GrabberAssociate: %v", err)
	}
	// Associating the same grabber twice must not duplicate the row.
	if err := s.GrabberAssociate("/a", "tag-reader"); err != nil {
		t.Fatalf("GrabberAssociate (repeat): %v", err)
	}
	names, err := s.FileGrabbers("/a")
	if err != nil {
		t.Fatalf("FileGrabbers: %v", err)
	}
	if len(names) != 1 || names[0] != "tag-reader" {
		t.Fatalf("FileGrabbers = %v, want [tag-reader]", names)
	}
}

func TestDLContextRoundtrip(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.FileInsert("/a", 1, false); err != nil {
		t.Fatalf("FileInsert: %v", err)
	}
	items := []DLContextRow{
		{URL: "http://x/cover.jpg", Kind: "cover", Name: "cover.jpg"},
		{URL: "http://x/thumb.jpg", Kind: "thumbnail", Name: "thumb.jpg"},
	}
	if err := s.DLContextSave("/a", items); err != nil {
		t.Fatalf("DLContextSave: %v", err)
	}
	got, err := s.FileDLContext("/a")
	if err != nil {
		t.Fatalf("FileDLContext: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("FileDLContext = %+v, want 2 rows", got)
	}

	if err := s.DLContextSave("/a", []DLContextRow{{URL: "http://x/only.jpg", Kind: "cover", Name: "only.jpg"}}); err != nil {
		t.Fatalf("DLContextSave (replace): %v", err)
	}
	got, err = s.FileDLContext("/a")
	if err != nil {
		t.Fatalf("FileDLContext after replace: %v", err)
	}
	if len(got) != 1 || got[0].Name != "only.jpg" {
		t.Fatalf("FileDLContext after replace = %+v", got)
	}

	if err := s.DLContextDeleteAll("/a"); err != nil {
		t.Fatalf("DLContextDeleteAll: %v", err)
	}
	got, err = s.FileDLContext("/a")
	if err != nil {
		t.Fatalf("FileDLContext after delete: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("FileDLContext after delete = %+v, want none", got)
	}
}

func TestNextCheckedZeroAndOutOfPath(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.FileInsert("/checked", 1, false); err != nil {
		t.Fatalf("FileInsert checked: %v", err)
	}
	if err := s.FileCheckedClearAll(); err != nil {
		t.Fatalf("FileCheckedClearAll: %v", err)
	}
	if _, err := s.FileInsert("/oop", 1, true); err != nil {
		t.Fatalf("FileInsert outofpath: %v", err)
	}
	if err := s.FileCheckedClearAll(); err != nil {
		t.Fatalf("FileCheckedClearAll: %v", err)
	}

	sweep, err := s.NextCheckedZeroNotOutOfPath()
	if err != nil {
		t.Fatalf("NextCheckedZeroNotOutOfPath: %v", err)
	}
	if len(sweep) != 1 || sweep[0] != "/checked" {
		t.Fatalf("NextCheckedZeroNotOutOfPath = %v, want [/checked]", sweep)
	}

	oop, err := s.NextOutOfPath()
	if err != nil {
		t.Fatalf("NextOutOfPath: %v", err)
	}
	if len(oop) != 1 || oop[0] != "/oop" {
		t.Fatalf("NextOutOfPath = %v, want [/oop]", oop)
	}
}

func TestCleanup_RemovesOrphans(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.FileInsert("/a", 1, false); err != nil {
		t.Fatalf("FileInsert: %v", err)
	}
	if err := s.MetadataAssociate("/a", "title", "Song", vhtypes.GroupTitles, vhtypes.LangEN, false, 0); err != nil {
		t.Fatalf("MetadataAssociate: %v", err)
	}
	if err := s.GrabberAssociate("/a", "tag-reader"); err != nil {
		t.Fatalf("GrabberAssociate: %v", err)
	}
	if err := s.FileDataDelete("/a"); err != nil {
		t.Fatalf("FileDataDelete: %v", err)
	}
	if err := s.FileDelete("/a"); err != nil {
		t.Fatalf("FileDelete: %v", err)
	}

	n, err := s.Cleanup()
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if n == 0 {
		t.Fatal("expected Cleanup to remove the orphaned lookup rows")
	}
}
