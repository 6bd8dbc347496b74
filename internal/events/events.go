// Package events provides the in-process event bus that decouples the
// analyzer loop from side effects such as history persistence and
// dashboard notifications.
package events

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arjitrawat15/NetGuard-AI/internal/models"
)

// EventType defines the type of event.
type EventType string

const (
	// Analyzer lifecycle events
	EventAnalyzerStarted EventType = "analyzer:started"
	EventAnalyzerStopped EventType = "analyzer:stopped"
	EventAnalyzerStats   EventType = "analyzer:stats"
	EventAnalyzerError   EventType = "analyzer:error"

	// Pipeline events
	EventPrediction     EventType = "prediction:made"
	EventThreatDetected EventType = "threat:detected"
	EventRecordDropped  EventType = "record:dropped"

	// Classifier events
	EventDegradedMode EventType = "classifier:degraded"
	EventModelLoaded  EventType = "classifier:model_loaded"
)

// Event represents a single bus event.
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp int64       `json:"timestamp"` // Nanosecond precision
	Data      interface{} `json:"data"`
}

// JSON returns the JSON representation of an event.
func (e *Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// Handler is a function that handles events. Handlers run synchronously
// on the emitter's goroutine; slow handlers must hand off internally.
type Handler func(event *Event)

// Bus manages event distribution.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler

	eventsEmitted uint64
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type.
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Unsubscribe removes all handlers for a specific event type.
func (b *Bus) Unsubscribe(eventType EventType) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, eventType)
}

// Emit dispatches an event to all handlers registered for its type.
func (b *Bus) Emit(eventType EventType, data interface{}) {
	event := &Event{
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		Data:      data,
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	atomic.AddUint64(&b.eventsEmitted, 1)
	for _, handler := range b.handlers[eventType] {
		handler(event)
	}
}

// EventsEmitted returns the total number of events dispatched.
func (b *Bus) EventsEmitted() uint64 {
	return atomic.LoadUint64(&b.eventsEmitted)
}

// Helper functions for common event types

// EmitPrediction emits a prediction event with its source record.
func (b *Bus) EmitPrediction(entry *models.EventLogEntry) {
	b.Emit(EventPrediction, entry)
}

// EmitThreat emits a threat detection event.
func (b *Bus) EmitThreat(threat *models.ThreatEvent) {
	b.Emit(EventThreatDetected, threat)
}

// EmitStats emits analyzer statistics.
func (b *Bus) EmitStats(stats *models.PipelineStats) {
	b.Emit(EventAnalyzerStats, stats)
}

// EmitError emits an analyzer error event.
func (b *Bus) EmitError(err error, context string) {
	b.Emit(EventAnalyzerError, map[string]interface{}{
		"error":   err.Error(),
		"context": context,
	})
}
