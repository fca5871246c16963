package geo

import "sync"

const (
	// DefaultRewardRadius is the distance in miles within which a visit earns a reward.
	DefaultRewardRadius = 10.0

	// DefaultDiscoveryRadius is the distance in miles within which an attraction is listed as nearby.
	DefaultDiscoveryRadius = 200.0
)

// Within reports whether distance is inside threshold. The boundary is inclusive.
func Within(distance, threshold float64) bool {
	return distance <= threshold
}

// ProximityPolicy holds the reward and discovery radii, in statute miles.
// It is safe for concurrent use; radii may be changed while the tracker runs.
type ProximityPolicy struct {
	mu              sync.RWMutex
	rewardRadius    float64
	discoveryRadius float64

	defaultReward    float64
	defaultDiscovery float64
}

// NewProximityPolicy creates a policy whose defaults are the given radii.
// Non-positive values fall back to the package defaults.
func NewProximityPolicy(rewardRadius, discoveryRadius float64) *ProximityPolicy {
	if rewardRadius <= 0 {
		rewardRadius = DefaultRewardRadius
	}
	if discoveryRadius <= 0 {
		discoveryRadius = DefaultDiscoveryRadius
	}
	return &ProximityPolicy{
		rewardRadius:     rewardRadius,
		discoveryRadius:  discoveryRadius,
		defaultReward:    rewardRadius,
		defaultDiscovery: discoveryRadius,
	}
}

// DefaultProximityPolicy returns a policy with the package defaults.
func DefaultProximityPolicy() *ProximityPolicy {
	return NewProximityPolicy(DefaultRewardRadius, DefaultDiscoveryRadius)
}

// RewardRadius returns the current reward radius.
func (p *ProximityPolicy) RewardRadius() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.rewardRadius
}

// SetRewardRadius overrides the reward radius.
func (p *ProximityPolicy) SetRewardRadius(miles float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rewardRadius = miles
}

// DiscoveryRadius returns the current discovery radius.
func (p *ProximityPolicy) DiscoveryRadius() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.discoveryRadius
}

// SetDiscoveryRadius overrides the discovery radius.
func (p *ProximityPolicy) SetDiscoveryRadius(miles float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.discoveryRadius = miles
}

// Reset restores both radii to the policy's defaults.
func (p *ProximityPolicy) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rewardRadius = p.defaultReward
	p.discoveryRadius = p.defaultDiscovery
}

// WithinReward reports whether distance qualifies for a reward.
func (p *ProximityPolicy) WithinReward(distance float64) bool {
	return Within(distance, p.RewardRadius())
}

// WithinDiscovery reports whether distance makes an attraction nearby.
func (p *ProximityPolicy) WithinDiscovery(distance float64) bool {
	return Within(distance, p.DiscoveryRadius())
}
