package service

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Tag names the intent of one concurrent aggregation
type Tag string

// Tags used by the series workflows
const (
	TagSeries    Tag = "series"
	TagSources   Tag = "sources"
	TagSentiment Tag = "sentiment"
	TagEmotion   Tag = "emotion"
	TagVolume    Tag = "volume"
	TagTopics    Tag = "topics"
	TagSurvey    Tag = "survey"
)

// Job is one tagged unit of work
type Job[T any] func(ctx context.Context) (T, error)

// RunTagged runs every job concurrently and returns the results keyed by tag.
// The first failure cancels the others and fails the whole call; there are no partial results.
func RunTagged[T any](ctx context.Context, jobs map[Tag]Job[T]) (map[Tag]T, error) {
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	out := make(map[Tag]T, len(jobs))

	for tag, job := range jobs {
		g.Go(func() error {
			v, err := job(gctx)
			if err != nil {
				return fmt.Errorf("%s: %w", tag, err)
			}
			mu.Lock()
			out[tag] = v
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
