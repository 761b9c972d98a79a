package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/church-content-api/internal/config"
	"github.com/church-content-api/internal/repository"
	"github.com/church-content-api/internal/storage"
	"github.com/rs/zerolog"
)

// sweeper reclaims stored images that no active post references. It runs
// after post mutations (debounced by a delay so the triggering write has
// committed) and on a recurring interval as a safety net. The delay is a
// heuristic, not a guarantee: sweep and mutation share no transaction.
type sweeper struct {
	posts repository.PostRepository
	store storage.Store
	cfg   config.SweepConfig
	log   zerolog.Logger

	trigger chan struct{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// newSweeper creates a new sweeper
func newSweeper(posts repository.PostRepository, store storage.Store, cfg config.SweepConfig, log zerolog.Logger) *sweeper {
	return &sweeper{
		posts:   posts,
		store:   store,
		cfg:     cfg,
		log:     log.With().Str("service", "sweeper").Logger(),
		trigger: make(chan struct{}, 1),
	}
}

// Start launches the background sweep loop
func (s *sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.loop(ctx)

	s.log.Info().
		Dur("trigger_delay", s.cfg.TriggerDelay).
		Dur("interval", s.cfg.Interval).
		Msg("Orphan sweeper started")
}

// Stop terminates the loop and waits for an in-flight sweep to finish
func (s *sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.running = false
}

// Trigger schedules a sweep after the configured delay. Triggers arriving
// while one is pending coalesce into a single sweep.
func (s *sweeper) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

func (s *sweeper) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.run(ctx)
		case <-s.trigger:
			// wait for the triggering write to commit
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.cfg.TriggerDelay):
			}
			s.run(ctx)
		}
	}
}

func (s *sweeper) run(ctx context.Context) {
	deleted, err := s.Sweep(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Sweep failed")
		return
	}
	if deleted > 0 {
		s.log.Info().Int("deleted", deleted).Msg("Sweep reclaimed orphaned images")
	}
}

// Sweep diffs stored images against the references of active posts and
// deletes every unreferenced image. Running it twice with no intervening
// mutation deletes nothing on the second pass.
func (s *sweeper) Sweep(ctx context.Context) (int, error) {
	refs, err := s.posts.ActiveImageRefs(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			// without the store the live set cannot be computed; deleting
			// anything now could destroy referenced images
			s.log.Warn().Msg("Store unavailable, skipping sweep")
			return 0, nil
		}
		return 0, err
	}

	live := make(map[string]bool, len(refs))
	for _, ref := range refs {
		live[ref] = true
	}

	stored, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, ref := range stored {
		if live[ref] {
			continue
		}
		if err := s.store.Delete(ctx, ref); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue // already gone, e.g. concurrent manual delete
			}
			s.log.Error().Err(err).Str("ref", ref).Msg("Failed to delete orphaned image")
			continue
		}
		deleted++
	}

	return deleted, nil
}
