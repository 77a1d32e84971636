package intake

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Pipeline validates, compresses and re-validates batches of files.
type Pipeline struct {
	opts   Options
	logger zerolog.Logger
}

// NewPipeline creates a Pipeline. Zero-valued options fall back to DefaultOptions.
func NewPipeline(opts Options, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

// Options returns the effective limits.
func (p *Pipeline) Options() Options {
	return p.opts
}

// Validate rejects the batch when any raw file exceeds the per-file ceiling.
func (p *Pipeline) Validate(files []File) error {
	var oversized []string
	for _, f := range files {
		if f.Size > p.opts.MaxFileSize {
			oversized = append(oversized, f.Name)
		}
	}
	if len(oversized) > 0 {
		return &Error{Kind: KindFileTooLarge, Files: oversized}
	}
	return nil
}

// Process runs a whole batch and returns one data URL per file in input order.
// Either every file makes it through or nothing is returned.
func (p *Pipeline) Process(ctx context.Context, files []File) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}

	if err := p.Validate(files); err != nil {
		return nil, err
	}

	started := time.Now()
	results := make([]string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	if p.opts.Workers > 0 {
		g.SetLimit(p.opts.Workers)
	}
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			encoded, err := Compress(gctx, f, p.opts)
			if err != nil {
				return &Error{Kind: KindCompression, Files: []string{f.Name}, Err: err}
			}
			results[i] = encoded
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var oversized []string
	for i, encoded := range results {
		if EncodedSize(encoded) > p.opts.MaxEncodedSize {
			oversized = append(oversized, files[i].Name)
		}
	}
	if len(oversized) > 0 {
		return nil, &Error{Kind: KindTooLargeAfterCompression, Files: oversized}
	}

	p.logger.Debug().
		Int("files", len(files)).
		Dur("elapsed", time.Since(started)).
		Msg("Image batch compressed")
	return results, nil
}
