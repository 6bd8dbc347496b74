package ml

import (
	"testing"
	"time"
)

func TestRateTracker_BurstShowsWithinWindow(t *testing.T) {
	tracker := NewRateTracker(nil)
	base := time.Now()

	var rate float64
	for i := 0; i < 150; i++ {
		rate = tracker.Observe("10.0.0.1", base.Add(time.Duration(i)*time.Millisecond))
	}

	if rate < 100 {
		t.Errorf("Expected burst rate above 100 pps, got %f", rate)
	}
}

func TestRateTracker_SourcesAreIndependent(t *testing.T) {
	tracker := NewRateTracker(nil)
	base := time.Now()

	for i := 0; i < 150; i++ {
		tracker.Observe("10.0.0.1", base.Add(time.Duration(i)*time.Millisecond))
	}
	quiet := tracker.Observe("10.0.0.2", base)

	if quiet > 10 {
		t.Errorf("Expected quiet source near zero, got %f", quiet)
	}
}

func TestRateTracker_DecaysAcrossWindows(t *testing.T) {
	tracker := NewRateTracker(&RateTrackerConfig{DecayFactor: 0.3, Window: time.Second})
	base := time.Now()

	for i := 0; i < 200; i++ {
		tracker.Observe("10.0.0.1", base.Add(time.Duration(i)*time.Millisecond))
	}
	// One packet far in the future closes out the burst buckets.
	late := tracker.Observe("10.0.0.1", base.Add(30*time.Second))

	if late > 100 {
		t.Errorf("Expected rate to decay after a long gap, got %f", late)
	}
}

func TestRateTracker_Reset(t *testing.T) {
	tracker := NewRateTracker(nil)
	base := time.Now()

	for i := 0; i < 150; i++ {
		tracker.Observe("10.0.0.1", base.Add(time.Duration(i)*time.Millisecond))
	}
	tracker.Reset()

	if rate := tracker.Rate("10.0.0.1"); rate != 0 {
		t.Errorf("Expected zero rate after reset, got %f", rate)
	}
}
