// Package storedproc runs report queries against a database-side routine first
// and falls back to an equivalent inline query when the routine cannot serve.
package storedproc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/storefrontlabs/storefront-backend/pkg/config"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
	"github.com/storefrontlabs/storefront-backend/pkg/metrics"
)

// Routine names shared by the repositories and the migrations.
const (
	RoutineOrderDetails       = "usp_get_order_details"
	RoutineTopSellingProducts = "usp_get_top_selling_products"
	RoutineProductReviews     = "usp_get_product_reviews"
	RoutinePurchasedForReview = "usp_get_purchased_items_for_review"
	RoutineReactionsUpsert    = "usp_reactions_upsert"
	RoutineCartItems          = "usp_get_cart_items"
	RoutineAllProductsSimple  = "usp_get_all_products_simple"
)

// Runner executes primary/fallback pairs and keeps one breaker per routine.
type Runner struct {
	logg     *logger.Logger
	metrics  *metrics.StoredProcMetrics
	failures uint32
	cooldown time.Duration

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

// NewRunner builds a Runner. cfg.BreakerFailures of zero disables the breakers.
func NewRunner(cfg config.StoredProcConfig, logg *logger.Logger, m *metrics.StoredProcMetrics) *Runner {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Runner{
		logg:     logg,
		metrics:  m,
		failures: cfg.BreakerFailures,
		cooldown: cfg.BreakerCooldown,
		breakers: map[string]*gobreaker.CircuitBreaker[any]{},
	}
}

// Query runs primary and, if the routine is unavailable, fallback. Rows from
// whichever path served are returned unchanged.
func Query[T any](ctx context.Context, r *Runner, routine string, primary, fallback func(context.Context) ([]T, error)) ([]T, error) {
	res, err := r.run(ctx, routine,
		func(ctx context.Context) (any, error) { return primary(ctx) },
		func(ctx context.Context) (any, error) { return fallback(ctx) },
	)
	if err != nil {
		return nil, err
	}
	rows, _ := res.([]T)
	return rows, nil
}

// Exec is Query for routines that return nothing.
func Exec(ctx context.Context, r *Runner, routine string, primary, fallback func(context.Context) error) error {
	_, err := r.run(ctx, routine,
		func(ctx context.Context) (any, error) { return nil, primary(ctx) },
		func(ctx context.Context) (any, error) { return nil, fallback(ctx) },
	)
	return err
}

// State reports the breaker state for routine; closed when breakers are disabled.
func (r *Runner) State(routine string) gobreaker.State {
	if cb := r.breaker(routine); cb != nil {
		return cb.State()
	}
	return gobreaker.StateClosed
}

func (r *Runner) run(ctx context.Context, routine string, primary, fallback func(context.Context) (any, error)) (any, error) {
	if r == nil {
		return nil, errors.New("storedproc runner is nil")
	}

	start := time.Now()
	res, err := r.callPrimary(ctx, routine, primary)
	switch {
	case err == nil:
		r.metrics.Observe(routine, metrics.PathPrimary, metrics.OutcomeSuccess, time.Since(start))
		return res, nil
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		r.metrics.Observe(routine, metrics.PathPrimary, metrics.OutcomeSkipped, 0)
		r.logg.Warn(r.logg.WithFields(ctx, map[string]any{"routine": routine, "breaker": "open"}), "storedproc.fallback")
	case IsRoutineUnavailable(err, routine):
		r.metrics.Observe(routine, metrics.PathPrimary, metrics.OutcomeUnavailable, time.Since(start))
		r.logg.Warn(r.logg.WithFields(ctx, map[string]any{"routine": routine, "error": err.Error()}), "storedproc.fallback")
	default:
		r.metrics.Observe(routine, metrics.PathPrimary, metrics.OutcomeError, time.Since(start))
		return nil, err
	}

	start = time.Now()
	res, err = fallback(ctx)
	if err != nil {
		r.metrics.Observe(routine, metrics.PathFallback, metrics.OutcomeError, time.Since(start))
		return nil, fmt.Errorf("%s fallback: %w", routine, err)
	}
	r.metrics.Observe(routine, metrics.PathFallback, metrics.OutcomeSuccess, time.Since(start))
	return res, nil
}

func (r *Runner) callPrimary(ctx context.Context, routine string, primary func(context.Context) (any, error)) (any, error) {
	cb := r.breaker(routine)
	if cb == nil {
		return primary(ctx)
	}
	return cb.Execute(func() (any, error) { return primary(ctx) })
}

func (r *Runner) breaker(routine string) *gobreaker.CircuitBreaker[any] {
	if r.failures == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if cb, ok := r.breakers[routine]; ok {
		return cb
	}

	failures := r.failures
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        routine,
		MaxRequests: 1,
		Timeout:     r.cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Only a missing or broken routine counts against it.
		IsSuccessful: func(err error) bool {
			return err == nil || !IsRoutineUnavailable(err, routine)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.logg.Warn(r.logg.WithFields(context.Background(), map[string]any{
				"routine": name,
				"from":    from.String(),
				"to":      to.String(),
			}), "storedproc.breaker")
			r.metrics.SetBreakerState(name, stateValue(to))
		},
	})
	r.breakers[routine] = cb
	r.metrics.SetBreakerState(routine, stateValue(gobreaker.StateClosed))
	return cb
}

func stateValue(state gobreaker.State) int {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
