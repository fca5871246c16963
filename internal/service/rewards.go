package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"tourguide/internal/domain"
	"tourguide/internal/geo"
	"tourguide/internal/provider"
)

const (
	defaultScoringTimeout     = 5 * time.Second
	defaultScoringConcurrency = 128
)

// RewardEngineConfig holds the scoring fan-out settings.
type RewardEngineConfig struct {
	ScoringTimeout     time.Duration
	ScoringConcurrency int
}

type scoringKey struct {
	userID       uuid.UUID
	attractionID uuid.UUID
}

// RewardEngine grants rewards for visits near attractions and scores them
// asynchronously.
type RewardEngine struct {
	catalog  AttractionSource
	scoring  provider.ScoringProvider
	policy   *geo.ProximityPolicy
	reporter FailureReporter
	logger   *zap.Logger

	scoringTimeout time.Duration
	sem            *semaphore.Weighted
	wg             sync.WaitGroup

	inFlight sync.Map // scoringKey -> struct{}
}

// NewRewardEngine creates a new RewardEngine.
func NewRewardEngine(
	catalog AttractionSource,
	scoring provider.ScoringProvider,
	policy *geo.ProximityPolicy,
	reporter FailureReporter,
	cfg RewardEngineConfig,
	logger *zap.Logger,
) *RewardEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == nil {
		policy = geo.DefaultProximityPolicy()
	}
	if reporter == nil {
		reporter = NewLogReporter(logger)
	}
	if cfg.ScoringTimeout <= 0 {
		cfg.ScoringTimeout = defaultScoringTimeout
	}
	if cfg.ScoringConcurrency <= 0 {
		cfg.ScoringConcurrency = defaultScoringConcurrency
	}
	return &RewardEngine{
		catalog:        catalog,
		scoring:        scoring,
		policy:         policy,
		reporter:       reporter,
		logger:         logger,
		scoringTimeout: cfg.ScoringTimeout,
		sem:            semaphore.NewWeighted(int64(cfg.ScoringConcurrency)),
	}
}

// Policy returns the proximity policy used for reward eligibility.
func (e *RewardEngine) Policy() *geo.ProximityPolicy {
	return e.policy
}

// CalculateRewards claims a reward for every attraction within the reward
// radius of any of the user's visits and dispatches scoring for each new claim.
// Rewards left pending by an earlier failed scoring call are scored again.
//
// Scoring runs in the background and its failures are reported, not returned.
// The only error is a failure to load the attraction catalog.
func (e *RewardEngine) CalculateRewards(ctx context.Context, user *domain.User) error {
	attractions, err := e.catalog.Attractions(ctx)
	if err != nil {
		return err
	}

	ledger := user.Rewards()
	visits := user.Visits()

	for _, attraction := range attractions {
		if ledger.Contains(attraction.ID) {
			continue
		}
		for _, visit := range visits {
			if !e.policy.WithinReward(geo.Distance(visit.Location, attraction.Location)) {
				continue
			}
			if ledger.Add(domain.NewPendingReward(visit, attraction)) {
				e.dispatchScoring(ctx, user, attraction)
			}
			break
		}
	}

	for _, reward := range ledger.Snapshot() {
		if reward.State == domain.RewardStatePending {
			e.dispatchScoring(ctx, user, reward.Attraction)
		}
	}
	return nil
}

// Wait blocks until all dispatched scoring calls have finished.
func (e *RewardEngine) Wait() {
	e.wg.Wait()
}

// dispatchScoring starts a scoring call unless one is already running for
// the same user and attraction.
func (e *RewardEngine) dispatchScoring(ctx context.Context, user *domain.User, attraction domain.Attraction) {
	key := scoringKey{userID: user.ID, attractionID: attraction.ID}
	if _, running := e.inFlight.LoadOrStore(key, struct{}{}); running {
		return
	}
	// The reward may have been scored since the caller last looked.
	if !user.Rewards().Pending(attraction.ID) {
		e.inFlight.Delete(key)
		return
	}

	// Scoring outlives the caller; only the scoring timeout bounds it.
	ctx = context.WithoutCancel(ctx)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.inFlight.Delete(key)

		if err := e.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer e.sem.Release(1)

		e.score(ctx, user, attraction)
	}()
}

func (e *RewardEngine) score(ctx context.Context, user *domain.User, attraction domain.Attraction) {
	ctx, cancel := context.WithTimeout(ctx, e.scoringTimeout)
	defer cancel()

	points, err := e.scoring.PointsFor(ctx, attraction.ID, user.ID)
	if err != nil {
		e.reporter.ReportScoringFailure(ctx, user, attraction, fmt.Errorf("%w: scoring: %w", ErrProviderUnavailable, err))
		return
	}

	if err := user.Rewards().FinalizeScore(attraction.ID, points); err != nil {
		e.logger.Debug("reward already scored",
			zap.Stringer("user_id", user.ID),
			zap.Stringer("attraction_id", attraction.ID),
		)
	}
}
