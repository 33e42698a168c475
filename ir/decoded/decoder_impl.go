package decoded

import (
	"context"
	"sync"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/filters"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/ir/raw"
)

type Config struct {
	Limits      filters.Limits
	Parallelism int
}

// NewDecoder returns a Decoder that decodes stream payloads concurrently,
// bounded by Parallelism (default 4).
func NewDecoder(cfg Config) Decoder {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 4
	}
	return &streamDecoder{
		cfg:      cfg,
		pipeline: filters.NewDefault(cfg.Limits),
	}
}

type streamDecoder struct {
	cfg      Config
	pipeline *filters.Pipeline
}

func (sd *streamDecoder) Decode(ctx context.Context, doc *raw.Document) (*Document, error) {
	out := &Document{
		Raw:     doc,
		Streams: make(map[raw.ObjectRef][]byte),
		Failed:  make(map[raw.ObjectRef]error),
	}

	type job struct {
		ref    raw.ObjectRef
		stream raw.Stream
	}
	var jobs []job
	for ref, obj := range doc.Objects {
		if s, ok := obj.(raw.Stream); ok {
			jobs = append(jobs, job{ref: ref, stream: s})
		}
	}

	var mu sync.Mutex
	sem := make(chan struct{}, sd.cfg.Parallelism)
	var wg sync.WaitGroup
	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(j job) {
			defer wg.Done()
			defer func() { <-sem }()
			data, err := sd.decodeStream(ctx, doc, j.stream)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.Failed[j.ref] = err
				return
			}
			out.Streams[j.ref] = data
		}(j)
	}
	wg.Wait()
	return out, nil
}

func (sd *streamDecoder) decodeStream(ctx context.Context, doc *raw.Document, s raw.Stream) ([]byte, error) {
	// Filter and DecodeParms may be indirect; resolve them into a working
	// copy before extraction.
	dict := s.Dictionary()
	work := raw.Dict()
	for _, key := range dict.Keys() {
		v, _ := dict.Get(key)
		if key.Value() == "Filter" || key.Value() == "DecodeParms" || key.Value() == "DP" {
			if resolved := doc.Resolve(v); resolved != nil {
				v = resolved
			}
		}
		work.Set(key, v)
	}
	names, params := filters.ExtractFilters(work)
	if len(names) == 0 {
		return s.RawData(), nil
	}
	for i, p := range params {
		if p == nil {
			continue
		}
		if resolved, ok := doc.Resolve(p).(raw.Dictionary); ok {
			params[i] = resolved
		}
	}
	return sd.pipeline.Decode(ctx, s.RawData(), names, params)
}
