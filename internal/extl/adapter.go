package extl

import (
	"context"

	"github.com/vaulth/vhindex/pkg/vhlib"
)

// scriptGrabberAdapter wraps a loaded scriptgrabber Module so it satisfies
// vhlib.Grabber, letting the pool treat compiled and scripted grabbers
// identically (§4.9).
type scriptGrabberAdapter struct {
	m *Module
}

func (a *scriptGrabberAdapter) Name() string { return a.m.Name }

// Caps translates the module's declared caps strings ("audio", "video",
// "image", "playlist") into the pool's capability mask (§4.9), satisfying
// vhlib.CapsProvider so scripted grabbers are filtered the same way as
// compiled ones. An unrecognized name is dropped rather than rejected, since
// a typo in a third-party script shouldn't disable capability filtering
// entirely for it.
func (a *scriptGrabberAdapter) Caps() []vhlib.FileType {
	names := a.m.Caps()
	if len(names) == 0 {
		return nil
	}
	caps := make([]vhlib.FileType, 0, len(names))
	for _, n := range names {
		switch n {
		case "audio":
			caps = append(caps, vhlib.TypeAudio)
		case "video":
			caps = append(caps, vhlib.TypeVideo)
		case "image":
			caps = append(caps, vhlib.TypeImage)
		case "playlist":
			caps = append(caps, vhlib.TypePlaylist)
		}
	}
	return caps
}

func (a *scriptGrabberAdapter) Grab(ctx context.Context, path string, known []vhlib.MetaPair) (vhlib.GrabResult, error) {
	done := make(chan struct{})
	var res vhlib.GrabResult
	var err error
	go func() {
		defer close(done)
		res, err = a.m.Grab(path, known)
	}()
	select {
	case <-ctx.Done():
		return vhlib.GrabResult{}, ctx.Err()
	case <-done:
		return res, err
	}
}
