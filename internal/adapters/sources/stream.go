package sources

import (
	"context"
	"errors"
	"iter"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"
)

// ErrStreamConsumed is yielded when a RecordStream is iterated twice.
var ErrStreamConsumed = errors.New("record stream already consumed")

// Page is one response from a paginated source.
type Page struct {
	Records   []gjson.Result
	NextToken string
}

// PageFetcher requests the page identified by token; the first page has an
// empty token.
type PageFetcher func(ctx context.Context, token string) (Page, error)

// RecordStream lazily walks a paginated source. Pages are requested only as
// the consumer advances, and at most maxPages are requested even when the
// source keeps returning continuation tokens.
type RecordStream struct {
	fetch    PageFetcher
	maxPages int
	delay    time.Duration
	sleep    func(ctx context.Context, d time.Duration) error

	consumed atomic.Bool
	pages    int
}

func newRecordStream(fetch PageFetcher, maxPages int, delay time.Duration, sleep func(context.Context, time.Duration) error) *RecordStream {
	if maxPages <= 0 {
		maxPages = 1
	}
	if sleep == nil {
		sleep = sleepCtx
	}
	return &RecordStream{fetch: fetch, maxPages: maxPages, delay: delay, sleep: sleep}
}

// Pages reports how many pages have been fetched so far.
func (s *RecordStream) Pages() int { return s.pages }

// All yields raw records in source order. A fetch failure is yielded once as
// the final element; records yielded before it remain valid.
func (s *RecordStream) All(ctx context.Context) iter.Seq2[gjson.Result, error] {
	return func(yield func(gjson.Result, error) bool) {
		if !s.consumed.CompareAndSwap(false, true) {
			yield(gjson.Result{}, ErrStreamConsumed)
			return
		}

		token := ""
		for s.pages < s.maxPages {
			// Continuation tokens take a moment to become valid upstream.
			if s.pages > 0 {
				if err := s.sleep(ctx, s.delay); err != nil {
					yield(gjson.Result{}, err)
					return
				}
			}

			page, err := s.fetch(ctx, token)
			if err != nil {
				yield(gjson.Result{}, err)
				return
			}
			s.pages++

			for _, rec := range page.Records {
				if !yield(rec, nil) {
					return
				}
			}

			if page.NextToken == "" {
				return
			}
			token = page.NextToken
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
