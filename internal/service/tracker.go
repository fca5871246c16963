package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tourguide/internal/domain"
	"tourguide/internal/redis"
	"tourguide/internal/repository"
)

const (
	defaultTrackerInterval = 5 * time.Minute
	defaultTrackerWorkers  = 64
)

// UserTracker records a user's current position.
type UserTracker interface {
	TrackUserLocation(ctx context.Context, user *domain.User) (domain.VisitedLocation, error)
}

// TrackerConfig holds the tracker loop settings.
type TrackerConfig struct {
	Interval time.Duration
	Workers  int
}

// Tracker periodically tracks every registered user.
// Start and Stop may each be called once; further Stop calls are no-ops.
type Tracker struct {
	users     repository.UserRepository
	tracker   UserTracker
	lockStore redis.LockStoreInterface // optional
	reporter  FailureReporter
	logger    *zap.Logger
	interval  time.Duration
	workers   int

	mu       sync.Mutex
	started  bool
	cancel   context.CancelFunc
	done     chan struct{}
	stopping atomic.Bool
	holdLock bool // owned by the loop goroutine
}

// NewTracker creates a new Tracker. A nil lockStore tracks on every tick.
func NewTracker(
	users repository.UserRepository,
	tracker UserTracker,
	lockStore redis.LockStoreInterface,
	reporter FailureReporter,
	cfg TrackerConfig,
	logger *zap.Logger,
) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reporter == nil {
		reporter = NewLogReporter(logger)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultTrackerInterval
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultTrackerWorkers
	}
	return &Tracker{
		users:     users,
		tracker:   tracker,
		lockStore: lockStore,
		reporter:  reporter,
		logger:    logger,
		interval:  cfg.Interval,
		workers:   cfg.Workers,
	}
}

// Start launches the tracking loop in the background.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return ErrTrackerAlreadyStarted
	}
	t.started = true

	ctx, t.cancel = context.WithCancel(ctx)
	t.done = make(chan struct{})
	go t.run(ctx, t.done)

	t.logger.Info("tracker started", zap.Duration("interval", t.interval), zap.Int("workers", t.workers))
	return nil
}

// Stop signals the loop to exit and waits for it, interrupting any sleep.
// In-flight scoring started by the loop is not cancelled.
func (t *Tracker) Stop() {
	t.stopping.Store(true)

	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (t *Tracker) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer t.releaseLock()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		if ctx.Err() != nil || t.stopping.Load() {
			t.logger.Info("tracker stopping")
			return
		}

		select {
		case <-ctx.Done():
			t.logger.Info("tracker stopping")
			return
		case <-timer.C:
		}

		if err := t.tick(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				t.logger.Debug("tracker tick interrupted", zap.Error(err))
			} else {
				t.logger.Error("tracker tick failed", zap.Error(err))
			}
		}

		t.logger.Debug("tracker sleeping", zap.Duration("interval", t.interval))
		timer.Reset(t.interval)
	}
}

// tick runs one pass unless another replica already claimed it.
func (t *Tracker) tick(ctx context.Context) error {
	if t.lockStore != nil {
		// The lock expires just before the next tick so it is never released early.
		acquired, err := t.lockStore.AcquireTrackerLock(ctx, t.interval*9/10)
		if err != nil {
			t.logger.Warn("tracker lock unavailable, tracking anyway", zap.Error(err))
		} else if !acquired {
			t.holdLock = false
			t.logger.Debug("tracker tick claimed by another replica")
			return nil
		} else {
			t.holdLock = true
		}
	}
	_, err := t.RunOnce(ctx)
	return err
}

func (t *Tracker) releaseLock() {
	if t.lockStore == nil || !t.holdLock {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := t.lockStore.ReleaseTrackerLock(ctx); err != nil {
		t.logger.Warn("failed to release tracker lock", zap.Error(err))
	}
}

// RunOnce tracks every registered user once using a bounded worker pool.
// A failure for one user is reported and does not affect the others.
// It returns the number of users tracked successfully.
func (t *Tracker) RunOnce(ctx context.Context) (int, error) {
	users, err := t.users.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	t.logger.Info("tracking users", zap.Int("count", len(users)))
	start := time.Now()

	var tracked atomic.Int64
	var g errgroup.Group
	g.SetLimit(t.workers)
	for _, user := range users {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if _, err := t.tracker.TrackUserLocation(ctx, user); err != nil {
				t.reporter.ReportTrackingFailure(ctx, user, FailureTracking, err)
				return nil
			}
			tracked.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	t.logger.Info("tracker tick finished",
		zap.Int("users", len(users)),
		zap.Int64("tracked", tracked.Load()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return int(tracked.Load()), ctx.Err()
}
