package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Resilient bounds every call to the wrapped client with a timeout and a fixed
// number of attempts. Exhaustion is reported as ErrUnavailable.
type Resilient struct {
	next     Client
	timeout  time.Duration
	attempts int
	backoff  time.Duration
	log      zerolog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewResilient(next Client, cfg Config, log zerolog.Logger) *Resilient {
	r := &Resilient{
		next:     next,
		timeout:  cfg.Timeout,
		attempts: cfg.Attempts,
		backoff:  cfg.Backoff,
		log:      log,
		sleep:    sleepCtx,
	}
	if r.timeout <= 0 {
		r.timeout = 3 * time.Second
	}
	if r.attempts <= 0 {
		r.attempts = 3
	}
	if r.backoff < 0 {
		r.backoff = 0
	}
	return r
}

func (r *Resilient) Put(ctx context.Context, item Item) error {
	return r.do(ctx, "put", func(ctx context.Context) error {
		return r.next.Put(ctx, item)
	})
}

func (r *Resilient) Get(ctx context.Context, partitionKey, sortKey string) (Item, error) {
	var out Item
	err := r.do(ctx, "get", func(ctx context.Context) error {
		item, err := r.next.Get(ctx, partitionKey, sortKey)
		if err != nil {
			return err
		}
		out = item
		return nil
	})
	return out, err
}

func (r *Resilient) Query(ctx context.Context, partitionKey, sortKeyPrefix string) ([]Item, error) {
	var out []Item
	err := r.do(ctx, "query", func(ctx context.Context) error {
		items, err := r.next.Query(ctx, partitionKey, sortKeyPrefix)
		if err != nil {
			return err
		}
		out = items
		return nil
	})
	return out, err
}

func (r *Resilient) Close() error {
	return r.next.Close()
}

func (r *Resilient) do(ctx context.Context, op string, call func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := call(callCtx)
		cancel()
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidKey) {
			return err
		}
		lastErr = err
		r.log.Warn().Err(err).Str("op", op).Int("attempt", attempt).Msg("store call failed")

		if attempt == r.attempts {
			break
		}
		if err := r.sleep(ctx, time.Duration(attempt)*r.backoff); err != nil {
			lastErr = err
			break
		}
	}
	return fmt.Errorf("%w: %s after %d attempts: %v", ErrUnavailable, op, r.attempts, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
