package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"pitstop-service/internal/adapters/repositories"
	"pitstop-service/internal/adapters/sources"
	"pitstop-service/internal/config"
	"pitstop-service/internal/domain"
	"pitstop-service/internal/ports"
	"pitstop-service/internal/services"
	"pitstop-service/internal/targets"
)

type runFlags struct {
	source      string
	targetsFile string
	dedupe      bool
	failFast    bool
	dryRun      bool
}

func (a *app) newRunCmd() *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Search every target and bulk insert the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.applyFlags(cmd, f)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return a.run(ctx, cmd.OutOrStdout(), f)
		},
	}

	cmd.Flags().StringVar(&f.source, "source", "", "place source: places or osm (default from config)")
	cmd.Flags().StringVar(&f.targetsFile, "targets", "", "YAML target list (default: built-in list for the source)")
	cmd.Flags().BoolVar(&f.dedupe, "dedupe", false, "drop duplicate places within this run")
	cmd.Flags().BoolVar(&f.failFast, "fail-fast", false, "abort on the first target that fails")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "fetch and report without writing")
	return cmd
}

// applyFlags fills unset flags from config.
func (a *app) applyFlags(cmd *cobra.Command, f *runFlags) {
	if f.source == "" {
		f.source = a.cfg.Ingest.Source
	}
	if f.targetsFile == "" {
		f.targetsFile = a.cfg.Ingest.TargetsFile
	}
	if !cmd.Flags().Changed("dedupe") {
		f.dedupe = a.cfg.Ingest.Dedupe
	}
	if !cmd.Flags().Changed("fail-fast") {
		f.failFast = a.cfg.Ingest.FailFast
	}
}

func (a *app) run(ctx context.Context, out io.Writer, f *runFlags) error {
	source, err := buildSource(a.cfg.Sources, f.source)
	if err != nil {
		return err
	}

	list, err := loadTargets(f.targetsFile, source.Name())
	if err != nil {
		return err
	}

	var store ports.RestroomStore = discardStore{}
	if !f.dryRun {
		s, err := repositories.Open(ctx, a.cfg.Store)
		if err != nil {
			return eris.Wrap(err, "run: open store")
		}
		defer s.Close()
		store = s
	}

	pipeline := services.NewPipeline(source, store, services.IngestOptions{
		Dedupe:   f.dedupe,
		FailFast: f.failFast,
		DryRun:   f.dryRun,
	})

	report, runErr := pipeline.Run(ctx, list)
	printReport(out, report)
	return runErr
}

func buildSource(cfg config.SourcesConfig, name string) (ports.PlaceSource, error) {
	opts := []sources.Option{
		sources.WithTimeout(cfg.HTTPTimeout),
		sources.WithRateLimit(cfg.RequestsPerSecond),
		sources.WithRetryAttempts(cfg.RetryAttempts),
	}

	switch name {
	case "places", "google":
		opts = append(opts,
			sources.WithBaseURL(cfg.Places.BaseURL),
			sources.WithPageDelay(cfg.Places.PageDelay),
			sources.WithMaxPages(cfg.Places.MaxPages),
		)
		src, err := sources.NewPlacesSource(sources.PlacesConfig{
			APIKey:        cfg.Places.APIKey,
			QueryTemplate: cfg.Places.QueryTemplate,
		}, opts...)
		if err != nil {
			return nil, eris.Wrap(err, "run: set PITSTOP_SOURCES_PLACES_API_KEY")
		}
		return src, nil
	case "osm", "overpass":
		opts = append(opts, sources.WithBaseURL(cfg.Overpass.BaseURL))
		return sources.NewOverpassSource(sources.OverpassConfig{
			TimeoutSecs: cfg.Overpass.TimeoutSecs,
			IncludeWays: cfg.Overpass.IncludeWays,
		}, opts...), nil
	default:
		return nil, eris.Errorf("run: unknown source %q (valid: places, osm)", name)
	}
}

func loadTargets(path, source string) ([]domain.QueryTarget, error) {
	if path == "" {
		return targets.Default(source)
	}
	return targets.Load(path)
}

func printReport(out io.Writer, r services.IngestReport) {
	fmt.Fprintf(out, "source:    %s\n", r.Source)
	fmt.Fprintf(out, "targets:   %d (ok %d, partial %d, failed %d)\n", r.Targets, r.Succeeded, r.Partial, r.Failed)
	fmt.Fprintf(out, "fetched:   %d\n", r.Fetched)
	if r.Deduped > 0 {
		fmt.Fprintf(out, "deduped:   %d\n", r.Deduped)
	}
	fmt.Fprintf(out, "inserted:  %d\n", r.Inserted)
	fmt.Fprintf(out, "duration:  %s\n", r.Duration.Round(time.Millisecond))
	for _, f := range r.Failures {
		fmt.Fprintf(out, "  %-8s %s: %v\n", f.Outcome, f.Target, f.Err)
	}
}

// discardStore stands in for the store on dry runs.
type discardStore struct{}

func (discardStore) BulkInsert(context.Context, []domain.Place) (int, error) { return 0, nil }

func (discardStore) ListAll(context.Context) ([]domain.Place, error) { return []domain.Place{}, nil }
