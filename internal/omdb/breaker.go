package omdb

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"cinelist/internal/logging"
)

const (
	breakerName             = "omdb"
	breakerMaxHalfOpen      = 1
	breakerInterval         = time.Minute
	breakerOpenTimeout      = 30 * time.Second
	breakerConsecutiveTrips = 5
)

// newBreaker trips after consecutive transport failures. Caller cancellation is
// not a provider failure.
func newBreaker(logger *slog.Logger) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: breakerMaxHalfOpen,
		Interval:    breakerInterval,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerConsecutiveTrips
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				logging.WarnWithContext(logger, "metadata circuit opened", "circuit_open",
					logging.String("breaker", name),
					logging.String("from", from.String()),
					logging.String(logging.FieldErrorHint, "check network access and omdb.api_key"),
					logging.String(logging.FieldImpact, "movie lookups fail fast until the circuit recovers"),
				)
				return
			}
			logger.Info("metadata circuit state changed",
				logging.String("breaker", name),
				logging.String("from", from.String()),
				logging.String("to", to.String()))
		},
	})
}
