package sources

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"pitstop-service/internal/platform/retry"
)

type settings struct {
	baseURL   string
	http      *http.Client
	limiter   *rate.Limiter
	retry     retry.Config
	pageDelay time.Duration
	maxPages  int
}

// Option configures a source adapter.
type Option func(*settings)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(s *settings) { s.baseURL = url }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) { s.http = hc }
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.http = &http.Client{Timeout: d}
		}
	}
}

// WithRateLimit paces requests to at most rps per second. Zero disables pacing.
func WithRateLimit(rps float64) Option {
	return func(s *settings) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetryAttempts bounds attempts per request, first try included.
func WithRetryAttempts(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.retry.MaxAttempts = n
		}
	}
}

// WithRetry replaces the retry policy.
func WithRetry(cfg retry.Config) Option {
	return func(s *settings) { s.retry = cfg }
}

// WithPageDelay sets the wait before requesting a continuation page.
func WithPageDelay(d time.Duration) Option {
	return func(s *settings) { s.pageDelay = d }
}

// WithMaxPages caps pages fetched per query target.
func WithMaxPages(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxPages = n
		}
	}
}

func newSettings(baseURL string, opts []Option) settings {
	s := settings{
		baseURL:   baseURL,
		http:      &http.Client{Timeout: 30 * time.Second},
		limiter:   rate.NewLimiter(1, 1),
		retry:     retry.Default(),
		pageDelay: 2 * time.Second,
		maxPages:  3,
	}
	for _, o := range opts {
		o(&s)
	}
	return s
}

func (s settings) client(source string) *httpClient {
	return &httpClient{
		source:  source,
		session: s.http,
		limiter: s.limiter,
		retry:   s.retry,
	}
}
