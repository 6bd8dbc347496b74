package ml

import (
	"sync"
	"time"
)

// RateTrackerConfig holds packet-rate smoothing configuration.
type RateTrackerConfig struct {
	// DecayFactor for the exponential moving average (0-1). Higher values
	// react faster to bursts.
	DecayFactor float64

	// Window is the bucketing interval for rate samples.
	Window time.Duration
}

// DefaultRateTrackerConfig returns default rate tracker configuration.
func DefaultRateTrackerConfig() *RateTrackerConfig {
	return &RateTrackerConfig{
		DecayFactor: 0.3,
		Window:      time.Second,
	}
}

// RateTracker maintains a per-source EWMA of packet rate. The degraded-mode
// flood rule uses it to tell a sustained flood apart from a single large
// packet.
type RateTracker struct {
	config *RateTrackerConfig
	mu     sync.Mutex
	rates  map[string]*sourceRate
}

type sourceRate struct {
	ewma        float64
	bucketStart time.Time
	bucketCount int
}

// NewRateTracker creates a rate tracker.
func NewRateTracker(cfg *RateTrackerConfig) *RateTracker {
	if cfg == nil {
		cfg = DefaultRateTrackerConfig()
	}
	return &RateTracker{
		config: cfg,
		rates:  make(map[string]*sourceRate),
	}
}

// Observe records one packet from src at time t and returns the smoothed
// packets-per-second estimate for that source.
func (t *RateTracker) Observe(src string, now time.Time) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.rates[src]
	if !ok {
		r = &sourceRate{bucketStart: now}
		t.rates[src] = r
	}

	// Close out elapsed buckets before counting this packet.
	for now.Sub(r.bucketStart) >= t.config.Window {
		sample := float64(r.bucketCount) / t.config.Window.Seconds()
		r.ewma = t.config.DecayFactor*sample + (1-t.config.DecayFactor)*r.ewma
		r.bucketCount = 0
		r.bucketStart = r.bucketStart.Add(t.config.Window)
		// A long quiet gap decays in one step rather than looping.
		if now.Sub(r.bucketStart) > 10*t.config.Window {
			r.bucketStart = now
		}
	}
	r.bucketCount++

	// Blend the partial bucket in so bursts show up within the window.
	partial := float64(r.bucketCount) / t.config.Window.Seconds()
	if partial > r.ewma {
		return partial
	}
	return r.ewma
}

// Rate returns the current smoothed rate for src without recording a
// packet.
func (t *RateTracker) Rate(src string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok := t.rates[src]; ok {
		return r.ewma
	}
	return 0
}

// Reset clears all tracked sources.
func (t *RateTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rates = make(map[string]*sourceRate)
}
