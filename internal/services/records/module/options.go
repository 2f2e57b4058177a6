package module

import (
	"time"

	"epimetrics/internal/platform/config"
	"epimetrics/internal/services/records/repo"
)

// Options holds configuration options for the records loader
type Options struct {
	Chunk     int
	Retries   int
	RetryBase time.Duration
	MaxErrors int

	// MirrorCH copies committed records into clickhouse when it is configured
	MirrorCH bool
}

// FromConfig reads the loader options from config with CORE_LOADER_ prefix.
// CHUNK is capped at repo.MaxChunk.
func FromConfig(cfg config.Conf) Options {
	ld := cfg.Prefix("CORE_LOADER_")
	return Options{
		Chunk:     min(ld.MayInt("CHUNK", 500), repo.MaxChunk),
		Retries:   ld.MayInt("RETRIES", 3),
		RetryBase: ld.MayDuration("RETRY_BASE", 250*time.Millisecond),
		MaxErrors: ld.MayInt("MAX_ERRORS", 100),
		MirrorCH:  ld.MayBool("MIRROR_CH", true),
	}
}
