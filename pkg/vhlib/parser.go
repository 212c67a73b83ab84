package vhlib

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/vaulth/vhindex/pkg/logger"
)

// parserPool runs a fixed-size worker pool over the parser queue (§4.8): each
// worker pops a file, reads its embedded tags, assigns a FileType from the
// stream shape, optionally decrapifies the bare filename, and forwards the
// result to the Dispatcher.
type parserPool struct {
	log     logger.Logger
	queue   *FIFO
	workers int

	reader TagReader
	decrap *decrapifier

	onResult func(ActionKind, *FileData)
	onError  ErrorHandler

	checkpoint func()

	wg sync.WaitGroup
}

func newParserPool(log logger.Logger, queue *FIFO, workers int, reader TagReader, keywords []string) *parserPool {
	if reader == nil {
		reader = NewTagReader()
	}
	return &parserPool{
		log:     log,
		queue:   queue,
		workers: workers,
		reader:  reader,
		decrap:  newDecrapifier(keywords),
	}
}

func (p *parserPool) start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *parserPool) stop() {
	p.queue.Close()
	p.wg.Wait()
}

func (p *parserPool) worker() {
	defer p.wg.Done()
	for {
		if p.checkpoint != nil {
			p.checkpoint()
		}
		kind, fd, ok := p.queue.Pop()
		if !ok {
			return
		}
		p.process(kind, fd)
	}
}

func (p *parserPool) process(kind ActionKind, fd *FileData) {
	pairs, stream, err := p.extract(fd.Path)
	if err != nil {
		if p.onError != nil {
			p.onError("parser", fd.Path, err)
		}
		if p.onResult != nil {
			p.onResult(kind, fd)
		}
		return
	}

	fd.Type = assignType(stream)

	meta := make([]MetaPair, 0, len(pairs)+2)
	haveTitle := false
	for k, v := range pairs {
		meta = append(meta, MetaPair{Key: k, Value: v, Group: metaKeyGroup(k)})
		if k == "title" {
			haveTitle = true
		}
	}

	if p.decrap != nil && (len(p.decrap.plain) > 0 || len(p.decrap.patterns) > 0) {
		base := strings.TrimSuffix(filepath.Base(fd.Path), filepath.Ext(fd.Path))
		res := p.decrap.Clean(base)
		if res.HasSE {
			meta = append(meta, MetaPair{Key: "season", Value: strconv.Itoa(res.Season), Group: GroupOrganisational})
		}
		if res.HasEP {
			meta = append(meta, MetaPair{Key: "episode", Value: strconv.Itoa(res.Episode), Group: GroupOrganisational})
		}
		if !haveTitle && res.Title != "" {
			meta = append(meta, MetaPair{Key: "title", Value: res.Title, Group: GroupTitles})
		}
	}

	fd.SetParserMeta(meta)
	if p.onResult != nil {
		p.onResult(kind, fd)
	}
}

func (p *parserPool) extract(path string) (map[string]string, StreamProbe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, StreamProbe{}, err
	}
	defer f.Close()
	tags, err := p.reader.ReadTags(f)
	if err != nil {
		return nil, StreamProbe{}, err
	}
	return tags.Pairs, tags.Stream, nil
}

// assignType implements §4.8's stream-based type assignment.
func assignType(s StreamProbe) FileType {
	switch {
	case s.HasVideo && s.VideoFormat == "image2" && !s.HasAudio:
		return TypeImage
	case s.HasVideo:
		return TypeVideo
	case s.HasAudio:
		return TypeAudio
	default:
		return TypeNull
	}
}
