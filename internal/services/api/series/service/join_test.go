package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunTaggedCorrelatesByTag(t *testing.T) {
	// the slow job is issued first; results must still land under their own tag
	jobs := map[Tag]Job[int]{
		TagSentiment: func(ctx context.Context) (int, error) {
			time.Sleep(20 * time.Millisecond)
			return 1, nil
		},
		TagVolume: func(context.Context) (int, error) { return 2, nil },
	}
	got, err := RunTagged(context.Background(), jobs)
	if err != nil {
		t.Fatalf("RunTagged: %v", err)
	}
	if len(got) != 2 || got[TagSentiment] != 1 || got[TagVolume] != 2 {
		t.Fatalf("results = %v", got)
	}
	if _, ok := got[TagEmotion]; ok {
		t.Fatalf("unissued tag present")
	}
}

func TestRunTaggedFailsWhole(t *testing.T) {
	boom := errors.New("ch down")
	canceled := make(chan struct{})
	jobs := map[Tag]Job[int]{
		TagEmotion: func(context.Context) (int, error) { return 0, boom },
		TagVolume: func(ctx context.Context) (int, error) {
			<-ctx.Done()
			close(canceled)
			return 0, ctx.Err()
		},
	}
	got, err := RunTagged(context.Background(), jobs)
	if !errors.Is(err, boom) || got != nil {
		t.Fatalf("RunTagged = %v, %v", got, err)
	}
	select {
	case <-canceled:
	default:
		t.Fatalf("sibling job was not canceled")
	}
}

func TestRunTaggedEmpty(t *testing.T) {
	got, err := RunTagged[int](context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("RunTagged(nil) = %v, %v", got, err)
	}
}
