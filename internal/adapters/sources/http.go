package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"pitstop-service/internal/domain"
	"pitstop-service/internal/platform/retry"
)

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// RejectedError is a non-success status reported by a source, either in the
// HTTP status line or in the response body's status field.
type RejectedError struct {
	Source  string
	Status  string
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %s", e.Source, e.Status)
	}
	return fmt.Sprintf("%s: status %s: %s", e.Source, e.Status, e.Message)
}

// Is lets callers match rejections against the domain taxonomy.
func (e *RejectedError) Is(target error) bool {
	switch target {
	case domain.ErrSourceRejected:
		return true
	case domain.ErrSourceDenied:
		return e.denied()
	}
	return false
}

func (e *RejectedError) denied() bool {
	switch e.Status {
	case "REQUEST_DENIED", "OVER_QUERY_LIMIT", "HTTP 401", "HTTP 403":
		return true
	}
	return false
}

// UnavailableError is a request that failed in transport or with a transient
// status after retries ran out.
type UnavailableError struct {
	Source string
	Op     string
	Err    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s %s: %v: %v", e.Source, e.Op, domain.ErrSourceUnavailable, e.Err)
}

func (e *UnavailableError) Unwrap() []error { return []error{domain.ErrSourceUnavailable, e.Err} }

// httpClient is the transport shared by the source adapters: request pacing,
// bounded retry of transient failures and error classification.
type httpClient struct {
	source  string
	session *http.Client
	limiter *rate.Limiter
	retry   retry.Config
}

func (c *httpClient) newRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
	contentType string,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "pitstop-scraper/1.0")
	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return req, nil
}

func (c *httpClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "read response")
	}

	if resp.StatusCode >= 400 {
		statusErr := &httpStatusError{
			Code: resp.StatusCode,
			Body: truncate(strings.TrimSpace(string(b)), 256),
		}
		if retry.IsTransientStatus(resp.StatusCode) {
			return nil, retry.Transient(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}

	return b, nil
}

// fetch executes the request built by makeReq, retrying transient failures.
// Exhausted retries surface as ErrSourceUnavailable; 4xx responses surface
// as a RejectedError and are never retried.
func (c *httpClient) fetch(ctx context.Context, op string, makeReq func() (*http.Request, error)) ([]byte, error) {
	cfg := c.retry
	cfg.OnRetry = retry.Logger(c.source, op)

	body, err := retry.DoVal(ctx, cfg, func(ctx context.Context) ([]byte, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		req, err := makeReq()
		if err != nil {
			return nil, err
		}
		return c.do(req)
	})
	if err == nil {
		return body, nil
	}

	var he *httpStatusError
	if errors.As(err, &he) && !retry.IsTransientStatus(he.Code) {
		return nil, &RejectedError{
			Source:  c.source,
			Status:  fmt.Sprintf("HTTP %d", he.Code),
			Message: he.Body,
		}
	}

	return nil, &UnavailableError{Source: c.source, Op: op, Err: err}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
