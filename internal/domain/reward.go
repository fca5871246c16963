package domain

import (
	"sync"

	"github.com/google/uuid"
)

// RewardState represents the scoring state of a reward.
type RewardState string

const (
	RewardStatePending RewardState = "PENDING"
	RewardStateScored  RewardState = "SCORED"
)

// Reward is a user's claim on an attraction's point value.
type Reward struct {
	VisitedLocation VisitedLocation `json:"visited_location"`
	Attraction      Attraction      `json:"attraction"`
	Points          int             `json:"points"`
	State           RewardState     `json:"state"`
}

// NewPendingReward creates an unscored reward for the given visit and attraction.
func NewPendingReward(visit VisitedLocation, attraction Attraction) Reward {
	return Reward{
		VisitedLocation: visit,
		Attraction:      attraction,
		State:           RewardStatePending,
	}
}

// RewardLedger is the per-user set of granted rewards.
// At most one reward exists per attraction ID.
type RewardLedger struct {
	mu      sync.RWMutex
	rewards []Reward
	byID    map[uuid.UUID]int // attraction ID -> index into rewards
}

// NewRewardLedger creates an empty ledger.
func NewRewardLedger() *RewardLedger {
	return &RewardLedger{
		byID: make(map[uuid.UUID]int),
	}
}

// Contains reports whether a reward (pending or scored) exists for the attraction.
func (l *RewardLedger) Contains(attractionID uuid.UUID) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.byID[attractionID]
	return ok
}

// Pending reports whether the attraction's reward exists and is not yet scored.
func (l *RewardLedger) Pending(attractionID uuid.UUID) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idx, ok := l.byID[attractionID]
	return ok && l.rewards[idx].State == RewardStatePending
}

// Add appends the reward if no reward for its attraction exists yet.
// Returns false when the attraction was already claimed.
func (l *RewardLedger) Add(reward Reward) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.byID[reward.Attraction.ID]; ok {
		return false
	}
	l.byID[reward.Attraction.ID] = len(l.rewards)
	l.rewards = append(l.rewards, reward)
	return true
}

// FinalizeScore moves the attraction's reward from PENDING to SCORED.
// Points are set at most once; a scored or missing reward yields ErrNoPendingReward.
func (l *RewardLedger) FinalizeScore(attractionID uuid.UUID, points int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx, ok := l.byID[attractionID]
	if !ok || l.rewards[idx].State != RewardStatePending {
		return ErrNoPendingReward
	}
	l.rewards[idx].Points = points
	l.rewards[idx].State = RewardStateScored
	return nil
}

// Snapshot returns a point-in-time copy of the rewards in claim order.
func (l *RewardLedger) Snapshot() []Reward {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Reward, len(l.rewards))
	copy(out, l.rewards)
	return out
}

// Len returns the number of rewards.
func (l *RewardLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.rewards)
}

// TotalPoints sums points across all rewards. Pending rewards count as zero.
func (l *RewardLedger) TotalPoints() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := 0
	for _, r := range l.rewards {
		total += r.Points
	}
	return total
}
