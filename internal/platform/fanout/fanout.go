// Package fanout runs independent upstream reads concurrently. A failing
// read marks its section degraded without cancelling the others.
package fanout

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultLimit bounds per-item enrichment.
const DefaultLimit = 8

// Group collects named sections.
type Group struct {
	ctx    context.Context
	g      errgroup.Group
	logger zerolog.Logger

	mu       sync.Mutex
	degraded []string
}

func New(ctx context.Context, logger zerolog.Logger) *Group {
	return &Group{ctx: ctx, logger: logger}
}

// Go runs fn in its own goroutine. When fn returns an error the section is
// logged and recorded as degraded; the caller is expected to have seeded the
// section with its fallback value.
func (g *Group) Go(section string, fn func(ctx context.Context) error) {
	g.g.Go(func() error {
		if err := fn(g.ctx); err != nil {
			g.Fail(section, err)
		}
		return nil
	})
}

// Fail records section as degraded. Sections that succeed overall but lose
// part of their data, such as a failed per-item enrichment, report it here.
func (g *Group) Fail(section string, err error) {
	g.logger.Warn().Err(err).Str("section", section).Msg("section degraded, using fallback")
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, s := range g.degraded {
		if s == section {
			return
		}
	}
	g.degraded = append(g.degraded, section)
}

// Wait blocks until every section has finished and returns the degraded
// section names in sorted order. The result is never nil.
func (g *Group) Wait() []string {
	_ = g.g.Wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.degraded))
	copy(out, g.degraded)
	sort.Strings(out)
	return out
}

// Each calls fn for every item with at most limit calls in flight. Results
// are stored by index so the output order matches items. An error from fn
// cancels the remaining calls and is returned.
func Each[T, R any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	out := make([]R, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			r, err := fn(ctx, item)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
