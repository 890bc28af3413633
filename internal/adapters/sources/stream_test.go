package sources

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func pageOf(token string, raws ...string) Page {
	p := Page{NextToken: token}
	for _, r := range raws {
		p.Records = append(p.Records, gjson.Parse(r))
	}
	return p
}

func TestRecordStream_Lazy(t *testing.T) {
	calls := 0
	fetch := func(_ context.Context, token string) (Page, error) {
		calls++
		return pageOf("more", `{"n":1}`, `{"n":2}`), nil
	}

	s := newRecordStream(fetch, 3, 0, nil)
	for rec, err := range s.All(context.Background()) {
		require.NoError(t, err)
		assert.Equal(t, int64(1), rec.Get("n").Int())
		break
	}

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, s.Pages())
}

func TestRecordStream_NotRestartable(t *testing.T) {
	fetch := func(_ context.Context, _ string) (Page, error) {
		return pageOf("", `{"n":1}`), nil
	}
	s := newRecordStream(fetch, 3, 0, nil)

	n := 0
	for _, err := range s.All(context.Background()) {
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, 1, n)

	var got error
	for _, err := range s.All(context.Background()) {
		got = err
	}
	assert.True(t, errors.Is(got, ErrStreamConsumed))
}

func TestRecordStream_CancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetch := func(_ context.Context, _ string) (Page, error) {
		cancel()
		return pageOf("next", `{"n":1}`), nil
	}

	s := newRecordStream(fetch, 3, 0, nil)
	var records int
	var last error
	for _, err := range s.All(ctx) {
		if err != nil {
			last = err
			continue
		}
		records++
	}

	assert.Equal(t, 1, records)
	assert.True(t, errors.Is(last, context.Canceled))
}
