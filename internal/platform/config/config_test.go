package config

import (
	"testing"
	"time"

	kit "epimetrics/internal/platform/testkit"
)

func TestPrefixComposesKeys(t *testing.T) {
	c := New().Prefix("SERVICE_").Prefix("REDIS_")
	if got := c.key("ADDR"); got != "SERVICE_REDIS_ADDR" {
		t.Fatalf("key() = %q", got)
	}
}

func TestMustString(t *testing.T) {
	c := New().Prefix("EPI_")
	t.Setenv("EPI_DBURL", "  postgres://x  ")
	if got := c.MustString("DBURL"); got != "postgres://x" {
		t.Fatalf("MustString = %q", got)
	}
	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMustIntAndPort(t *testing.T) {
	c := New().Prefix("EPI_")
	t.Setenv("EPI_N", "8")
	t.Setenv("EPI_PORT", "4000")
	t.Setenv("EPI_BADPORT", "70000")
	if got := c.MustInt("N"); got != 8 {
		t.Fatalf("MustInt = %d", got)
	}
	if got := c.MustPort("PORT"); got != ":4000" {
		t.Fatalf("MustPort = %q", got)
	}
	kit.MustPanic(t, func() { _ = c.MustPort("BADPORT") })
}

func TestMayFallbacks(t *testing.T) {
	c := New().Prefix("EPI_")
	t.Setenv("EPI_BADINT", "x")
	t.Setenv("EPI_TTL", "90s")
	t.Setenv("EPI_ON", "true")
	t.Setenv("EPI_LIST", " a, ,b ")

	if got := c.MayInt("BADINT", 3); got != 3 {
		t.Fatalf("MayInt fallback = %d", got)
	}
	if got := c.MayDuration("TTL", time.Second); got != 90*time.Second {
		t.Fatalf("MayDuration = %v", got)
	}
	if !c.MayBool("ON", false) {
		t.Fatalf("MayBool expected true")
	}
	if got := c.MayCSV("LIST", nil); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("MayCSV = %v", got)
	}
	if got := c.MayString("UNSET", "def"); got != "def" {
		t.Fatalf("MayString = %q", got)
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("EPI_")
	t.Setenv("EPI_BACKEND", "ClickHouse")
	if got := c.MayEnum("BACKEND", "pg", "pg", "clickhouse"); got != "clickhouse" {
		t.Fatalf("MayEnum = %q", got)
	}
	if got := c.MayEnum("UNSET", "pg", "pg", "clickhouse"); got != "pg" {
		t.Fatalf("MayEnum default = %q", got)
	}
	t.Setenv("EPI_BAD", "mongo")
	kit.MustPanic(t, func() { _ = c.MayEnum("BAD", "pg", "pg", "clickhouse") })
}

func TestMayWeekday(t *testing.T) {
	c := New().Prefix("EPI_")
	t.Setenv("EPI_ANCHOR", "Saturday")
	t.Setenv("EPI_BAD", "someday")
	if got := c.MayWeekday("ANCHOR", time.Sunday); got != time.Saturday {
		t.Fatalf("MayWeekday = %v", got)
	}
	if got := c.MayWeekday("BAD", time.Sunday); got != time.Sunday {
		t.Fatalf("MayWeekday fallback = %v", got)
	}
}
