package vhlib

import (
	"io"
	"strconv"

	"github.com/dhowden/tag"
)

// Tags is the narrow result of reading a media container's embedded
// metadata: a flat, already-lower-cased key/value set plus the stream shape
// needed for type assignment (§4.8).
type Tags struct {
	Pairs  map[string]string
	Stream StreamProbe
}

// StreamProbe is the minimal stream-shape summary §4.8 uses to assign a
// FileType: any video stream -> Video (or Image for a single image2-format
// video stream with no audio); else any audio stream -> Audio; else Null.
type StreamProbe struct {
	HasVideo    bool
	HasAudio    bool
	VideoFormat string
}

// TagReader is implemented once against dhowden/tag below; kept as an
// interface so the demuxing library stays swappable per §4.8.1.
type TagReader interface {
	ReadTags(r io.ReadSeeker) (Tags, error)
}

// embeddedTagReader is the concrete TagReader, grounded on the retrieval
// pack's fast-tag-library-then-probe idiom (other_examples meta-extractor):
// dhowden/tag covers container+tag sniffing for the audio formats it
// understands. Every result it returns reports an audio-only stream, so the
// files it reads are typed Audio; a file in which it finds no tags gets an
// empty tag set rather than failing the whole pass, and other read errors
// are returned.
type embeddedTagReader struct{}

// NewTagReader returns the default embedded-tag adapter.
func NewTagReader() TagReader { return embeddedTagReader{} }

func (embeddedTagReader) ReadTags(r io.ReadSeeker) (Tags, error) {
	m, err := tag.ReadFrom(r)
	if err != nil {
		if err == tag.ErrNoTagsFound {
			return Tags{Pairs: map[string]string{}, Stream: StreamProbe{HasAudio: true}}, nil
		}
		return Tags{}, err
	}

	pairs := make(map[string]string)
	if v := m.Album(); v != "" {
		pairs["album"] = v
	}
	if v := m.Artist(); v != "" {
		pairs["artist"] = v
	}
	if v := m.AlbumArtist(); v != "" {
		pairs["albumartist"] = v
	}
	if v := m.Title(); v != "" {
		pairs["title"] = v
	}
	if v := m.Genre(); v != "" {
		pairs["genre"] = v
	}
	if y := m.Year(); y != 0 {
		pairs["date"] = strconv.Itoa(y)
	}
	if track, _ := m.Track(); track != 0 {
		pairs["track"] = strconv.Itoa(track)
	}
	if v := m.Composer(); v != "" {
		pairs["composer"] = v
	}

	return Tags{Pairs: pairs, Stream: StreamProbe{HasAudio: true}}, nil
}
