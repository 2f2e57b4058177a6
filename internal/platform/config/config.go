// Package config reads service configuration from environment variables
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"epimetrics/internal/platform/logger"
	ptime "epimetrics/internal/platform/time"
)

// Conf is a namespaced view over environment variables (e.g. "CORE_API_", "SERVICE_PGSQL_")
// New() gives the root view, Prefix narrows it for a component.
type Conf struct{ prefix string }

// New creates a root Conf (no prefix)
func New() Conf { return Conf{} }

// Prefix creates a child Conf with an additional prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// key composes the fully qualified env var name
func (c Conf) key(k string) string { return c.prefix + k }

// lookup returns the trimmed value and whether it was non-empty
func (c Conf) lookup(k string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(c.key(k)))
	return v, v != ""
}

func (c Conf) missing(k string) {
	logger.Get().Panic().Str("key", c.key(k)).Msg("missing required env")
}

func (c Conf) invalid(k, v, what string) {
	logger.Get().Panic().Str("key", c.key(k)).Str("value", v).Msg(what)
}

// MustString panics if the given key is missing or empty
func (c Conf) MustString(key string) string {
	v, ok := c.lookup(key)
	if !ok {
		c.missing(key)
	}
	return v
}

// MustInt panics if the given key is missing or not an int
func (c Conf) MustInt(key string) int {
	s := c.MustString(key)
	v, err := strconv.Atoi(s)
	if err != nil {
		c.invalid(key, s, "invalid int value")
	}
	return v
}

// MustPort returns a listen addr like ":4000" after validating 1..65535
func (c Conf) MustPort(key string) string {
	s := c.MustString(key)
	p, err := strconv.Atoi(s)
	if err != nil || p < 1 || p > 65535 {
		c.invalid(key, s, "invalid TCP port; expected 1..65535")
	}
	return ":" + s
}

// Require panics unless every key is present
func (c Conf) Require(keys ...string) {
	for _, k := range keys {
		if _, ok := c.lookup(k); !ok {
			c.missing(k)
		}
	}
}

// MayString returns the value or def if missing
func (c Conf) MayString(key, def string) string {
	if v, ok := c.lookup(key); ok {
		return v
	}
	return def
}

// MayInt returns the value or def; invalid input logs and falls back to def
func (c Conf) MayInt(key string, def int) int {
	s, ok := c.lookup(key)
	if !ok {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Int("default", def).Msg("invalid int; using default")
	return def
}

// MayBool returns the value or def; invalid input logs and falls back to def
func (c Conf) MayBool(key string, def bool) bool {
	s, ok := c.lookup(key)
	if !ok {
		return def
	}
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Bool("default", def).Msg("invalid bool; using default")
	return def
}

// MayDuration returns the value or def; invalid input logs and falls back to def
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	s, ok := c.lookup(key)
	if !ok {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Dur("default", def).Msg("invalid duration; using default")
	return def
}

// MayCSV splits a comma separated value, dropping blanks; def if nothing remains
func (c Conf) MayCSV(key string, def []string) []string {
	s, ok := c.lookup(key)
	if !ok {
		return def
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the value when it is one of allowed (case insensitive), def when unset.
// Panics on anything else since a typo in a mode switch should stop the boot.
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	if v == "" {
		return v
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return strings.ToLower(a)
		}
	}
	logger.Get().Panic().Str("key", c.key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}

// MayWeekday parses an english weekday name (e.g. "sunday"); invalid input falls back to def
func (c Conf) MayWeekday(key string, def time.Weekday) time.Weekday {
	s, ok := c.lookup(key)
	if !ok {
		return def
	}
	if d, ok := ptime.ParseWeekday(s); ok {
		return d
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Str("default", def.String()).Msg("invalid weekday; using default")
	return def
}
