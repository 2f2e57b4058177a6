// Command epimetrics-load bulk loads newline delimited JSON records into postgres
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"

	"epimetrics/internal/core/version"
	"epimetrics/internal/modkit"
	"epimetrics/internal/modkit/repokit"
	"epimetrics/internal/platform/config"
	"epimetrics/internal/platform/logger"
	"epimetrics/internal/platform/store"
	"epimetrics/internal/services/records/domain"
	recordsmod "epimetrics/internal/services/records/module"
)

const service = "epimetrics-load"

func main() {
	var (
		fFile    = flag.String("file", "-", "path to a .ndjson or .ndjson.gz file, - for stdin")
		fDataset = flag.String("dataset", "", "dataset applied to records that omit it and enforced on those that don't")
		fDryRun  = flag.Bool("dry-run", false, "validate the file and print the report without writing")
		fSchema  = flag.Bool("init-schema", false, "create the records and surveys tables before loading")
	)
	flag.Parse()

	lo := logger.FromEnv()
	if lo.Service == "" {
		lo.Service = service
	}
	logger.Init(lo)
	l := logger.Get()

	if err := run(*fFile, *fDataset, *fDryRun, *fSchema); err != nil {
		l.Error().Err(err).Str("file", *fFile).Msg("load failed")
		os.Exit(1)
	}
}

func run(file, dataset string, dryRun, initSchema bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	l := logger.Get()

	root := config.New()
	cfg := store.FromConfig(root, service)
	cfg.RDS.Enabled = false

	st, err := store.Open(ctx, cfg, store.WithLogger(*l))
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	mod := recordsmod.New(modkit.Deps{Cfg: root, PG: st.PG, CH: st.CH, Log: *l})
	if initSchema && !dryRun {
		if err := mod.EnsureSchema(ctx); err != nil {
			return err
		}
	}

	in, err := open(file)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	l.Info().Str("version", version.Info().Version).Str("file", file).Bool("dry_run", dryRun).Msg("loading")
	rep, loadErr := mod.Ports().Loader.Load(ctx, in, domain.LoadOptions{Dataset: dataset, DryRun: dryRun})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return err
	}
	return loadErr
}

func open(file string) (io.ReadCloser, error) {
	if file == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(file)
}
