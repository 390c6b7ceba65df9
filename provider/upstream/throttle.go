// Package upstream holds what every provider adapter shares: the request budget
// towards the exchange and the mapping of transport failures onto domain errors.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/spooky-finn/cryptobridge/domain"
	"golang.org/x/time/rate"
)

// Throttle is a token bucket shared by all requests to one provider. A request
// waits at most maxWait for a token, beyond that it fails fast.
type Throttle struct {
	limiter *rate.Limiter
	maxWait time.Duration
}

func NewThrottle(rps float64, burst int, maxWait time.Duration) *Throttle {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}

	return &Throttle{
		limiter: rate.NewLimiter(limit, burst),
		maxWait: maxWait,
	}
}

func (t *Throttle) Wait(ctx context.Context) error {
	r := t.limiter.Reserve()
	if !r.OK() {
		return fmt.Errorf("%w: request budget exhausted", domain.ErrUpstreamRateLimited)
	}

	delay := r.Delay()
	if delay == 0 {
		return nil
	}
	if delay > t.maxWait {
		r.Cancel()
		return fmt.Errorf("%w: next token in %s", domain.ErrUpstreamRateLimited, delay)
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ClassifyError(ctx.Err())
	}
}

// ClassifyError maps transport level failures onto the domain taxonomy. Errors that
// already carry a domain sentinel are returned as is.
func ClassifyError(err error) error {
	if err == nil || domain.IsUpstreamError(err) {
		return err
	}

	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", domain.ErrUpstreamTimeout, err)
	}

	// dial failures and client timeouts alike, the upstream could not be reached in time
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %s", domain.ErrUpstreamTimeout, err)
	}

	return fmt.Errorf("%w: %s", domain.ErrUpstreamMalformedResponse, err)
}
