package database

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ReconnectPolicy describes how the supervisor retries the primary store.
// The interval is fixed; MaxAttempts of 0 retries forever.
type ReconnectPolicy struct {
	Interval    time.Duration
	MaxAttempts int
}

// Reconnector supervises the database connection: it pings an established
// connection on a fixed interval, marks it disconnected on failure, and
// keeps attempting to reconnect while the store is unreachable.
type Reconnector struct {
	db     *DB
	policy ReconnectPolicy
	log    zerolog.Logger

	// connect is swappable so tests can observe attempts without a network
	connect func(ctx context.Context) error

	// onRestore runs after every successful reconnect
	onRestore func(ctx context.Context)

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewReconnector creates a supervisor over db with the given policy
func NewReconnector(db *DB, policy ReconnectPolicy, log zerolog.Logger) *Reconnector {
	return &Reconnector{
		db:      db,
		policy:  policy,
		log:     log.With().Str("component", "reconnector").Logger(),
		connect: db.Connect,
	}
}

// OnRestore registers a hook invoked after each successful reconnect, so
// startup work that needs the store (seed accounts, for one) also runs when
// the connection is only established later. Register before Start.
func (r *Reconnector) OnRestore(fn func(ctx context.Context)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onRestore = fn
}

// Start launches the supervision loop
func (r *Reconnector) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.running = true

	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go r.loop(ctx, r.onRestore)

	r.log.Info().
		Dur("interval", r.policy.Interval).
		Int("max_attempts", r.policy.MaxAttempts).
		Msg("Database reconnect supervisor started")
}

// Stop terminates the loop and waits for it to exit
func (r *Reconnector) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.cancel()
	r.wg.Wait()
	r.running = false
}

func (r *Reconnector) loop(ctx context.Context, onRestore func(ctx context.Context)) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.policy.Interval)
	defer ticker.Stop()

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if _, connected := r.db.State(); connected {
			attempts = 0
			if err := r.db.HealthCheck(ctx); err != nil {
				r.log.Warn().Err(err).Msg("Database ping failed, marking disconnected")
				r.db.MarkDisconnected()
			}
			continue
		}

		if r.policy.MaxAttempts > 0 && attempts >= r.policy.MaxAttempts {
			r.log.Error().Int("attempts", attempts).Msg("Reconnect attempt limit reached, giving up")
			return
		}

		attempts++
		if err := r.connect(ctx); err != nil {
			r.log.Warn().Err(err).Int("attempt", attempts).Msg("Reconnect attempt failed")
			continue
		}

		r.log.Info().Int("attempt", attempts).Msg("Database connection restored")
		attempts = 0

		if onRestore != nil {
			onRestore(ctx)
		}
	}
}
