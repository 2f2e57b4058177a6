package store

import (
	"context"
	"fmt"
	"time"

	chx "epimetrics/internal/platform/store/ch"
	"epimetrics/internal/platform/store/pg"

	"github.com/redis/go-redis/v9"
)

type retryPolicy struct {
	attempts       int
	pingTimeout    time.Duration
	backoffStart   time.Duration
	backoffCeiling time.Duration
}

var defaultRetry = retryPolicy{
	attempts:       20,
	pingTimeout:    3 * time.Second,
	backoffStart:   150 * time.Millisecond,
	backoffCeiling: 2 * time.Second,
}

// pingUntilReady pings with exponential backoff until success, ctx end, or attempts run out
func pingUntilReady(ctx context.Context, name string, rp retryPolicy, ping func(context.Context) error) error {
	var lastErr error
	backoff := rp.backoffStart
	for i := 0; i < rp.attempts; i++ {
		toCtx, cancel := context.WithTimeout(ctx, rp.pingTimeout)
		lastErr = ping(toCtx)
		cancel()
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < rp.backoffCeiling {
			backoff *= 2
			if backoff > rp.backoffCeiling {
				backoff = rp.backoffCeiling
			}
		}
	}
	return fmt.Errorf("%s ping failed after %d attempts: %w", name, rp.attempts, lastErr)
}

func (c PGConfig) retry() retryPolicy {
	rp := defaultRetry
	if c.ConnectRetries > 0 {
		rp.attempts = c.ConnectRetries
	}
	if c.PingTimeout > 0 {
		rp.pingTimeout = c.PingTimeout
	}
	return rp
}

// openPG opens pg and wraps it with our sql adapter once the pool answers
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer()
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
		AppName:  cfg.AppName,
	}, tracer, nil)
	if err != nil {
		return nil, err
	}

	// ping the pool directly so boot does not emit trace lines
	if err := pingUntilReady(ctx, "postgres", cfg.PG.retry(), p.Pool.Ping); err != nil {
		p.Close()
		return nil, err
	}
	s.Log.Info().Msg("postgres ready")
	return newPGAdapter(p), nil
}

func openCH(ctx context.Context, cfg Config, s *Store) (Clickhouse, error) {
	name := cfg.CH.ClientName
	if name == "" {
		name = cfg.AppName
	}
	c, err := chx.Open(ctx, chx.Config{
		URL:          cfg.CH.URL,
		ClientName:   name,
		ClientTag:    cfg.CH.ClientTag,
		MaxOpenConns: cfg.CH.MaxOpenConns,
	})
	if err != nil {
		return nil, err
	}
	if err := pingUntilReady(ctx, "clickhouse", defaultRetry, c.Ping); err != nil {
		_ = c.Close()
		return nil, err
	}
	s.Log.Info().Msg("clickhouse ready")
	return newCHAdapter(c), nil
}

func openRedis(ctx context.Context, cfg Config, s *Store) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:       cfg.RDS.Addr,
		DB:         cfg.RDS.DB,
		Password:   cfg.RDS.Password,
		ClientName: cfg.AppName,
	})
	rp := defaultRetry
	rp.attempts = 5
	if err := pingUntilReady(ctx, "redis", rp, func(c context.Context) error { return rdb.Ping(c).Err() }); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	s.Log.Info().Str("addr", cfg.RDS.Addr).Msg("redis ready")
	return rdb, nil
}
