package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"syscall"
	"time"

	"devenv-keeper/internal/models"
)

const (
	DefaultHTTPTimeout   = 10 * time.Second
	DefaultRetryInterval = time.Second
)

// HTTPDoer sends HTTP requests
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPProbe healthy when a HEAD request answers with a status in [200,400)
type HTTPProbe struct {
	name          string
	url           string
	Timeout       time.Duration
	RetryInterval time.Duration
	Client        HTTPDoer
	Clock         Clock
}

func NewHTTPProbe(name, url string, timeout time.Duration) *HTTPProbe {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &HTTPProbe{
		name:          name,
		url:           url,
		Timeout:       timeout,
		RetryInterval: DefaultRetryInterval,
		Client:        http.DefaultClient,
		Clock:         RealClock,
	}
}

func (p *HTTPProbe) Name() string           { return p.name }
func (p *HTTPProbe) Target() string         { return p.url }
func (p *HTTPProbe) Kind() models.ProbeKind { return models.KindHTTP }

/**
 * Probe the endpoint until it answers or the budget is spent
 * @param {Context} ctx - Cancels the loop early
 * @returns {ProbeResult} Returns the verdict of the first answer, or the last transport failure
 * @description
 * - Transport errors are retried after RetryInterval
 * - An HTTP answer of any status ends the loop
 * - Every attempt is clipped to the remaining budget
 * - When less than RetryInterval is left the pause is halved and one last attempt gets the rest
 */
func (p *HTTPProbe) Run(ctx context.Context) models.ProbeResult {
	start := p.Clock.Now()
	deadline := start.Add(p.Timeout)
	res := models.ProbeResult{Name: p.name, Target: p.url, Kind: models.KindHTTP}

	var lastErr error
	final := false
	for {
		remaining := deadline.Sub(p.Clock.Now())
		if remaining <= 0 {
			break
		}
		code, err := p.attempt(ctx, remaining)
		if err == nil {
			res.StatusCode = code
			res.Healthy = code >= 200 && code < 400
			res.Detail = fmt.Sprintf("HTTP %d", code)
			res.Latency = p.Clock.Now().Sub(start)
			return res
		}
		lastErr = err
		if ctx.Err() != nil || errors.Is(err, models.ErrInvalidInput) {
			break
		}
		if final {
			break
		}
		pause := p.RetryInterval
		if left := deadline.Sub(p.Clock.Now()); left <= pause {
			pause = left / 2
			final = true
		}
		if pause > 0 {
			select {
			case <-ctx.Done():
			case <-p.Clock.After(pause):
			}
		}
		if ctx.Err() != nil {
			break
		}
	}

	res.Detail = failureDetail(lastErr)
	res.Latency = p.Clock.Now().Sub(start)
	return res
}

func (p *HTTPProbe) attempt(ctx context.Context, budget time.Duration) (int, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodHead, p.url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func failureDetail(err error) string {
	switch {
	case err == nil:
		return models.DetailTimeout
	case isTimeout(err):
		return models.DetailTimeout
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, models.ErrConnectionRefused):
		return models.DetailConnectionRefused
	default:
		return models.DetailUnavailable + ": " + err.Error()
	}
}
