package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	appexpedition "github.com/corsair/backend/internal/application/expedition"
	"github.com/corsair/backend/internal/domain/expedition"
	"github.com/corsair/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sweepPageSize bounds how many expeditions a single sweep page loads
const sweepPageSize = 100

// ErrSweeperNotRunning is returned when a manual sweep is requested while stopped
var ErrSweeperNotRunning = errors.New("deadline sweeper is not running")

// CompletionChecker evaluates one expedition's deadline and fill level
type CompletionChecker interface {
	CheckCompletion(ctx context.Context, id uuid.UUID) (*appexpedition.ExpeditionResponse, error)
}

// DeadlineSweeperConfig holds configuration for the deadline sweeper
type DeadlineSweeperConfig struct {
	// Enabled indicates if the sweeper runs at all
	Enabled bool
	// CheckInterval is the time between sweeps
	CheckInterval time.Duration
}

// DefaultDeadlineSweeperConfig returns default sweeper configuration
func DefaultDeadlineSweeperConfig() DeadlineSweeperConfig {
	return DeadlineSweeperConfig{
		Enabled:       true,
		CheckInterval: 5 * time.Minute,
	}
}

// DeadlineSweeper periodically walks non-terminal expeditions and runs the
// completion check on each, failing those whose deadline passed and completing
// those fully consumed. The check itself is idempotent, so overlapping sweeps
// and manual triggers are harmless.
type DeadlineSweeper struct {
	config  DeadlineSweeperConfig
	repo    expedition.Repository
	checker CompletionChecker
	logger  *zap.Logger

	runCtx    context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastRunAt *time.Time
}

// NewDeadlineSweeper creates a new deadline sweeper
func NewDeadlineSweeper(
	config DeadlineSweeperConfig,
	repo expedition.Repository,
	checker CompletionChecker,
	logger *zap.Logger,
) *DeadlineSweeper {
	return &DeadlineSweeper{
		config:  config,
		repo:    repo,
		checker: checker,
		logger:  logger,
	}
}

// Start starts the sweep loop
func (s *DeadlineSweeper) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("deadline sweeper disabled")
		return nil
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	s.runCtx = ctx
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.sweepLoop(ctx)

	s.logger.Info("deadline sweeper started",
		zap.Duration("check_interval", s.config.CheckInterval),
	)
	return nil
}

// Stop stops the sweep loop gracefully
func (s *DeadlineSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("deadline sweeper stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("deadline sweeper stop timed out")
		return ctx.Err()
	}
}

func (s *DeadlineSweeper) sweepLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep runs the completion check over every non-terminal expedition.
// Candidate IDs are snapshotted before any check runs: CheckCompletion moves
// rows out of the status filter, which would otherwise shift later pages and
// skip expeditions.
func (s *DeadlineSweeper) sweep(ctx context.Context) {
	now := time.Now()
	s.mu.Lock()
	s.lastRunAt = &now
	s.mu.Unlock()

	var candidates []uuid.UUID
	for _, status := range []expedition.Status{expedition.StatusPlanning, expedition.StatusActive} {
		for page := 1; ; page++ {
			filter := shared.Filter{
				Page:     page,
				PageSize: sweepPageSize,
				Filters:  map[string]interface{}{"status": string(status)},
			}
			expeditions, err := s.repo.FindAll(ctx, filter)
			if err != nil {
				s.logger.Error("deadline sweep failed to list expeditions",
					zap.String("status", string(status)),
					zap.Error(err),
				)
				break
			}
			for i := range expeditions {
				candidates = append(candidates, expeditions[i].ID)
			}
			if len(expeditions) < sweepPageSize {
				break
			}
		}
	}

	var checked, failed int
	for _, id := range candidates {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.checker.CheckCompletion(ctx, id); err != nil {
			failed++
			s.logger.Warn("completion check failed",
				zap.String("expedition_id", id.String()),
				zap.Error(err),
			)
			continue
		}
		checked++
	}

	s.logger.Debug("deadline sweep finished",
		zap.Int("checked", checked),
		zap.Int("failed", failed),
	)
}

// TriggerManualRun runs a sweep outside the regular interval. The sweep uses
// the sweeper's own context rather than the caller's, so it outlives the
// triggering request but is still tracked and cancelled by Stop.
func (s *DeadlineSweeper) TriggerManualRun() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSweeperNotRunning
	}
	ctx := s.runCtx
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.sweep(ctx)
	}()
	return nil
}

// GetStatus returns the current status of the sweeper
func (s *DeadlineSweeper) GetStatus() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]any{
		"enabled":        s.config.Enabled,
		"is_running":     s.isRunning,
		"check_interval": s.config.CheckInterval.String(),
		"last_run_at":    s.lastRunAt,
	}
}
