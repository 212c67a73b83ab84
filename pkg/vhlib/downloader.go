package vhlib

import (
	"context"
	"os"
	"path/filepath"

	"github.com/vaulth/vhindex/pkg/logger"
)

// downloader is the single worker of §4.10: for each file with a non-empty
// download list, fetch each item through the SchemeRouter and save it under
// the configured destination for its kind, falling back to "default".
type downloader struct {
	log    logger.Logger
	queue  *FIFO
	router *SchemeRouter
	destFn func(kind string) string

	onResult func(ActionKind, *FileData)
	onError  ErrorHandler

	checkpoint func()

	done chan struct{}
}

func newDownloader(log logger.Logger, queue *FIFO, router *SchemeRouter, destFn func(string) string) *downloader {
	return &downloader{log: log, queue: queue, router: router, destFn: destFn, done: make(chan struct{})}
}

func (d *downloader) start() { go d.loop() }
func (d *downloader) stop()  { close(d.done) }

func (d *downloader) loop() {
	for {
		if d.checkpoint != nil {
			d.checkpoint()
		}
		kind, fd, ok := d.queue.Pop()
		if !ok {
			return
		}
		select {
		case <-d.done:
			return
		default:
		}
		d.process(kind, fd)
	}
}

func (d *downloader) process(kind ActionKind, fd *FileData) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-d.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	for _, item := range fd.Downloads {
		if err := d.fetchOne(ctx, item); err != nil {
			if d.onError != nil {
				d.onError("downloader", fd.Path, err)
			}
			select {
			case <-d.done:
				return
			default:
			}
			continue
		}
	}
	fd.Downloads = nil
	if d.onResult != nil {
		d.onResult(ActionEnd, fd)
	}
}

func (d *downloader) fetchOne(ctx context.Context, item DownloadItem) error {
	destDir := d.destFn(item.Kind)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	if err := checkDiskSpace(destDir, 0); err != nil {
		return err
	}

	destPath := filepath.Join(destDir, item.Name)
	f, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := d.router.Fetch(ctx, item.URL, f); err != nil {
		os.Remove(destPath)
		return err
	}
	return nil
}
