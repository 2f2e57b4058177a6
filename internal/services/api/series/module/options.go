package module

import (
	"time"

	"epimetrics/internal/platform/config"
	"epimetrics/internal/services/api/series/repo"
)

// Options controls the series backend and defaults
type Options struct {
	Backend string       // pg or ch
	Anchor  time.Weekday // default weekly bucket end
}

// FromConfig reads SERIES_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	sc := cfg.Prefix("SERIES_")
	return Options{
		Backend: sc.MayEnum("BACKEND", repo.BackendPG, repo.BackendPG, repo.BackendCH),
		Anchor:  sc.MayWeekday("WEEK_ANCHOR", time.Sunday),
	}
}
