package logger

import (
	"bytes"
	"context"
	"testing"

	kit "epimetrics/internal/platform/testkit"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		"trace": "trace", "DEBUG": "debug", "warning": "warn", "error": "error", "": "info", "nope": "info",
	}
	for in, want := range cases {
		if got := parseLevel(in).String(); got != want {
			t.Fatalf("parseLevel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestContextFields(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "debug", Format: "json", Service: "epimetrics-test", Writer: &buf})

	ctx := WithDataset(WithRequest(context.Background(), "req-1"), "cases")
	C(ctx).Info().Msg("hello")
	Named("series").Info().Msg("named")

	out := buf.String()
	kit.MustContain(t, out, `"request_id":"req-1"`)
	kit.MustContain(t, out, `"dataset":"cases"`)
	kit.MustContain(t, out, `"component":"series"`)
	kit.MustContain(t, out, `"service":"epimetrics-test"`)
}

func TestWithRequestIgnoresEmpty(t *testing.T) {
	ctx := context.Background()
	if WithRequest(ctx, "") != ctx || WithDataset(ctx, "") != ctx {
		t.Fatalf("empty values should not wrap the context")
	}
}
