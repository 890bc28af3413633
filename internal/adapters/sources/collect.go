package sources

import (
	"context"

	"go.uber.org/zap"

	"pitstop-service/internal/domain"
)

// collect drains stream into a SearchResult, keeping records gathered before
// a failure.
func collect(ctx context.Context, source string, target domain.QueryTarget, stream *RecordStream, fields FieldPaths) domain.SearchResult {
	log := zap.L().With(
		zap.String("component", "sources."+source),
		zap.String("target", target.String()),
	)

	res := domain.SearchResult{Target: target}
	for raw, err := range stream.All(ctx) {
		if err != nil {
			res.Err = err
			break
		}
		res.Places = append(res.Places, fields.Normalize(raw))
	}
	res.Pages = stream.Pages()

	if res.Err != nil {
		log.Warn("search stopped early",
			zap.Int("pages", res.Pages),
			zap.Int("places", len(res.Places)),
			zap.Error(res.Err),
		)
		return res
	}

	log.Info("search complete", zap.Int("pages", res.Pages), zap.Int("places", len(res.Places)))
	return res
}
