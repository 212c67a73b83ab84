package vhlib

import "errors"

var (
	// ErrPathNotFound is returned when an on-demand path does not exist on disk.
	ErrPathNotFound = errors.New("path does not exist")
	// ErrNotARegularFile is returned when an on-demand path is a directory, socket, etc.
	ErrNotARegularFile = errors.New("path is not a regular file")
	// ErrSuffixNotAccepted is returned when a path's extension is not in the configured suffix set.
	ErrSuffixNotAccepted = errors.New("file suffix is not accepted by any configured scanner suffix")

	// ErrAlreadyRunning is returned when Run is called on a handle that is already running.
	ErrAlreadyRunning = errors.New("handle is already running")
	// ErrNotRunning is returned when Uninit is called on a handle that is not running.
	ErrNotRunning = errors.New("handle is not running")
	// ErrConfigAfterRun is returned when SetConfig is called after Run.
	ErrConfigAfterRun = errors.New("configuration cannot change after run has started")

	// ErrNoScannerPaths is returned when Run is called without any configured scan root.
	ErrNoScannerPaths = errors.New("no scanner paths configured")
	// ErrNoScannerSuffixes is returned when Run is called without any accepted suffix.
	ErrNoScannerSuffixes = errors.New("no scanner suffixes configured")

	// ErrUnknownGrabber is returned when a grabber-scoped config option names an unregistered grabber.
	ErrUnknownGrabber = errors.New("unknown grabber id")
	// ErrGrabberExists is not returned by RegisterGrabber, which replaces an earlier grabber registered under the same name.
	ErrGrabberExists = errors.New("grabber with this name is already registered")
	// ErrGrabberBusy is returned when a grabber's plugin mutex could not be acquired within the pool's timed pass.
	ErrGrabberBusy = errors.New("grabber is busy with another file")
	// ErrNoGrabberAvailable is returned when every enabled, capable grabber has already run for a file.
	ErrNoGrabberAvailable = errors.New("no eligible grabber remains for this file")

	// ErrDemuxerUnavailable is returned when the parser has no tag reader registered for a file's container.
	ErrDemuxerUnavailable = errors.New("no tag reader available for this file")
	// ErrNoStreams is returned when a media file has no audio or video streams.
	ErrNoStreams = errors.New("file contains no audio or video streams")

	// ErrDownloadSchemeUnsupported is returned when a download URL's scheme has no registered fetcher.
	ErrDownloadSchemeUnsupported = errors.New("download scheme is not supported")

	// ErrSchemaTooNew is returned when the persisted schema version is newer than this build understands.
	ErrSchemaTooNew = errors.New("database schema version is newer than supported by this build")
	// ErrFileUnknown is returned when an operation references a file path absent from the store.
	ErrFileUnknown = errors.New("file is not present in the store")
	// ErrMetaUnknown is returned when a metadata operation references a key/value pair that does not exist.
	ErrMetaUnknown = errors.New("metadata key/value pair is not present for this file")

	// ErrQueueClosed is not returned by the priority FIFO: Push on a closed queue is a no-op and Pop reports ok=false once it is closed and drained.
	ErrQueueClosed = errors.New("queue is closed")

	// ErrBarrierAlreadyPaused is returned when Pause is called twice without an intervening Resume.
	ErrBarrierAlreadyPaused = errors.New("stage barrier is already paused")

	// ErrInsufficientDiskSpace is returned when the destination volume has no room for a pending item.
	ErrInsufficientDiskSpace = errors.New("insufficient disk space")

	// ErrNoCredentialVault is returned by Handle.Credential when SetCredentialVault was never called.
	ErrNoCredentialVault = errors.New("no credential vault configured")
)
