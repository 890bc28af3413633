package services

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"pitstop-service/internal/domain"
	"pitstop-service/internal/platform/obs"
	"pitstop-service/internal/ports"
)

type IngestOptions struct {
	// Dedupe drops records repeating an earlier record of the same run.
	Dedupe bool
	// FailFast aborts the run on the first target that is not fully OK.
	FailFast bool
	// DryRun fetches and reports without writing.
	DryRun bool
}

// TargetFailure records a target that ended early and why.
type TargetFailure struct {
	Target  string
	Outcome domain.Outcome
	Err     error
}

type IngestReport struct {
	Source    string
	Targets   int
	Succeeded int
	Partial   int
	Failed    int
	Fetched   int
	Deduped   int
	Inserted  int
	Failures  []TargetFailure
	Duration  time.Duration
}

// Pipeline runs one ingestion: targets are searched one after another, all
// places are accumulated, and the accumulator is written with a single bulk
// insert at the end.
type Pipeline struct {
	source ports.PlaceSource
	store  ports.RestroomStore
	opts   IngestOptions
	log    *zap.Logger
}

func NewPipeline(source ports.PlaceSource, store ports.RestroomStore, opts IngestOptions) *Pipeline {
	return &Pipeline{
		source: source,
		store:  store,
		opts:   opts,
		log:    zap.L().With(zap.String("component", "services.ingest"), zap.String("source", source.Name())),
	}
}

// Run processes targets in order. A denied credential aborts before any
// write; other target failures are logged and the run keeps what it has.
func (p *Pipeline) Run(ctx context.Context, targets []domain.QueryTarget) (report IngestReport, err error) {
	defer obs.Time(ctx, "ingest.run")(&err)

	start := time.Now()
	report = IngestReport{Source: p.source.Name(), Targets: len(targets)}
	defer func() { report.Duration = time.Since(start) }()

	var acc []domain.Place
	for i, target := range targets {
		if err := ctx.Err(); err != nil {
			return report, eris.Wrapf(err, "ingest: interrupted before target %d/%d", i+1, len(targets))
		}

		res := p.source.Search(ctx, target)
		outcome := res.Outcome()
		obs.IngestTargets.WithLabelValues(p.source.Name(), outcome.String()).Inc()

		acc = append(acc, res.Places...)
		report.Fetched += len(res.Places)
		obs.IngestPlaces.WithLabelValues("fetched").Add(float64(len(res.Places)))

		fields := []zap.Field{
			zap.String("target", target.String()),
			zap.Int("index", i+1),
			zap.Int("of", len(targets)),
			zap.Int("places", len(res.Places)),
			zap.Int("pages", res.Pages),
		}

		switch outcome {
		case domain.OutcomeOK:
			report.Succeeded++
			p.log.Info("target done", fields...)
			continue
		case domain.OutcomePartial:
			report.Partial++
		default:
			report.Failed++
		}

		report.Failures = append(report.Failures, TargetFailure{Target: target.String(), Outcome: outcome, Err: res.Err})
		p.log.Warn("target ended early", append(fields, zap.Stringer("outcome", outcome), zap.Error(res.Err))...)

		if errors.Is(res.Err, domain.ErrSourceDenied) {
			return report, eris.Wrapf(res.Err, "ingest: aborted at %q, nothing written", target.String())
		}
		if p.opts.FailFast {
			return report, eris.Wrapf(res.Err, "ingest: fail-fast at %q, nothing written", target.String())
		}
	}

	// A search cut short by cancellation returns normally with ctx.Err as its
	// cause, so the loop alone does not notice the interrupt.
	if err := ctx.Err(); err != nil {
		return report, eris.Wrap(err, "ingest: interrupted, nothing written")
	}

	if p.opts.Dedupe {
		var dropped int
		acc, dropped = dedupe(acc)
		report.Deduped = dropped
		obs.IngestPlaces.WithLabelValues("deduped").Add(float64(dropped))
	}

	if len(acc) == 0 {
		p.log.Info("nothing to write", zap.Int("targets", len(targets)))
		return report, nil
	}

	if p.opts.DryRun {
		p.log.Info("dry run, skipping write", zap.Int("places", len(acc)))
		return report, nil
	}

	n, err := p.store.BulkInsert(ctx, acc)
	report.Inserted = n
	obs.IngestPlaces.WithLabelValues("inserted").Add(float64(n))
	if err != nil {
		p.log.Error("bulk insert failed", zap.Int("inserted", n), zap.Int("accumulated", len(acc)), zap.Error(err))
		return report, eris.Wrapf(err, "ingest: write %d places", len(acc))
	}

	p.log.Info("ingest complete",
		zap.Int("targets", report.Targets),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("partial", report.Partial),
		zap.Int("failed", report.Failed),
		zap.Int("inserted", n),
	)
	return report, nil
}

// dedupe keeps the first place for each DedupeKey, preserving order.
func dedupe(places []domain.Place) ([]domain.Place, int) {
	seen := make(map[string]struct{}, len(places))
	out := make([]domain.Place, 0, len(places))
	for _, p := range places {
		k := p.DedupeKey()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	return out, len(places) - len(out)
}
