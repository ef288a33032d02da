package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// retry calls fn up to attempts times, waiting delay between failures.
// It stops early when ctx ends.
func retry(ctx context.Context, attempts int, delay time.Duration, log zerolog.Logger, what string, fn func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if i == attempts {
			break
		}
		log.Warn().Err(err).
			Str("target", what).
			Int("attempt", i).
			Int("of", attempts).
			Msg("Connection attempt failed, retrying")

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w (last error: %v)", what, ctx.Err(), err)
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("%s after %d attempts: %w", what, attempts, err)
}
