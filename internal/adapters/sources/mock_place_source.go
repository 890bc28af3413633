package sources

import (
	"context"

	"github.com/rotisserie/eris"

	"pitstop-service/internal/domain"
)

// MockTarget is a canned answer for one target label.
type MockTarget struct {
	Label  string
	Places []domain.Place
	Pages  int
	Err    error
}

// MockPlaceSource answers searches from a fixed table. Unknown targets fail
// with ErrSourceRejected.
type MockPlaceSource struct {
	m        map[string]MockTarget
	searched []string
}

func NewMockPlaceSource(targets []MockTarget) *MockPlaceSource {
	m := make(map[string]MockTarget, len(targets))
	for _, t := range targets {
		m[t.Label] = t
	}
	return &MockPlaceSource{m: m}
}

func (s *MockPlaceSource) Name() string { return "mock" }

func (s *MockPlaceSource) Search(ctx context.Context, target domain.QueryTarget) domain.SearchResult {
	s.searched = append(s.searched, target.String())

	if err := ctx.Err(); err != nil {
		return domain.SearchResult{Target: target, Err: err}
	}

	r, ok := s.m[target.String()]
	if !ok {
		return domain.SearchResult{
			Target: target,
			Err:    eris.Wrapf(domain.ErrSourceRejected, "no canned result for %q", target.String()),
		}
	}

	pages := r.Pages
	if pages == 0 && r.Err == nil {
		pages = 1
	}
	return domain.SearchResult{
		Target: target,
		Places: append([]domain.Place(nil), r.Places...),
		Pages:  pages,
		Err:    r.Err,
	}
}

// Searched lists the targets searched so far, in call order.
func (s *MockPlaceSource) Searched() []string { return s.searched }
