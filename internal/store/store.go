// Package store provides the bounded in-process event log the dashboard
// polls. One writer (the analyzer), many readers (HTTP handlers).
package store

import (
	"sync"

	"github.com/arjitrawat15/NetGuard-AI/internal/models"
)

// EventLog is a fixed-capacity ring buffer of classified packet records.
// Appends are O(1) amortized; when full, the oldest entry is evicted.
// Readers never observe a partially appended entry.
type EventLog struct {
	mu       sync.RWMutex
	entries  []*models.EventLogEntry
	head     int // index of the oldest entry
	size     int
	capacity int

	totalAppended uint64
	totalEvicted  uint64
	threatCount   int
	byLabel       map[models.Label]int
	byProtocol    map[string]int
}

// NewEventLog creates an event log with the given capacity.
func NewEventLog(capacity int) *EventLog {
	if capacity <= 0 {
		capacity = 10000
	}
	return &EventLog{
		entries:    make([]*models.EventLogEntry, capacity),
		capacity:   capacity,
		byLabel:    make(map[models.Label]int),
		byProtocol: make(map[string]int),
	}
}

// Append adds an entry, evicting the oldest when at capacity.
func (l *EventLog) Append(entry *models.EventLogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.size == l.capacity {
		old := l.entries[l.head]
		l.removeFromAggregates(old)
		l.entries[l.head] = entry
		l.head = (l.head + 1) % l.capacity
		l.totalEvicted++
	} else {
		l.entries[(l.head+l.size)%l.capacity] = entry
		l.size++
	}

	l.totalAppended++
	l.addToAggregates(entry)
}

func (l *EventLog) addToAggregates(e *models.EventLogEntry) {
	l.byLabel[e.Prediction.Label]++
	l.byProtocol[e.Record.Protocol]++
	if e.Prediction.IsThreat() {
		l.threatCount++
	}
}

func (l *EventLog) removeFromAggregates(e *models.EventLogEntry) {
	if l.byLabel[e.Prediction.Label]--; l.byLabel[e.Prediction.Label] == 0 {
		delete(l.byLabel, e.Prediction.Label)
	}
	if l.byProtocol[e.Record.Protocol]--; l.byProtocol[e.Record.Protocol] == 0 {
		delete(l.byProtocol, e.Record.Protocol)
	}
	if e.Prediction.IsThreat() {
		l.threatCount--
	}
}

// Recent returns up to n entries, newest first. n <= 0 returns everything.
func (l *EventLog) Recent(n int) []*models.EventLogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || n > l.size {
		n = l.size
	}
	out := make([]*models.EventLogEntry, 0, n)
	for i := 0; i < n; i++ {
		idx := (l.head + l.size - 1 - i + l.capacity) % l.capacity
		out = append(out, l.entries[idx])
	}
	return out
}

// Threats returns up to n threat-labeled entries, newest first.
func (l *EventLog) Threats(n int) []*models.EventLogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 {
		n = l.size
	}
	out := make([]*models.EventLogEntry, 0, n)
	for i := 0; i < l.size && len(out) < n; i++ {
		idx := (l.head + l.size - 1 - i + l.capacity) % l.capacity
		if l.entries[idx].Prediction.IsThreat() {
			out = append(out, l.entries[idx])
		}
	}
	return out
}

// Size returns the current entry count.
func (l *EventLog) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.size
}

// Capacity returns the fixed capacity.
func (l *EventLog) Capacity() int {
	return l.capacity
}

// Stats aggregates the current log contents.
func (l *EventLog) Stats() *models.LogStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := &models.LogStats{
		Size:          l.size,
		Capacity:      l.capacity,
		TotalAppended: l.totalAppended,
		TotalEvicted:  l.totalEvicted,
		ThreatCount:   l.threatCount,
		ByLabel:       make(map[models.Label]int, len(l.byLabel)),
		ByProtocol:    make(map[string]int, len(l.byProtocol)),
	}
	for k, v := range l.byLabel {
		s.ByLabel[k] = v
	}
	for k, v := range l.byProtocol {
		s.ByProtocol[k] = v
	}
	if l.size > 0 {
		s.OldestNano = l.entries[l.head].Record.TimestampNano
		s.NewestNano = l.entries[(l.head+l.size-1)%l.capacity].Record.TimestampNano
	}
	return s
}
