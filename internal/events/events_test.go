package events

import (
	"errors"
	"testing"

	"github.com/arjitrawat15/NetGuard-AI/internal/models"
)

func TestBus_SubscribeAndEmit(t *testing.T) {
	bus := NewBus()

	var got []*Event
	bus.Subscribe(EventThreatDetected, func(e *Event) {
		got = append(got, e)
	})

	threat := &models.ThreatEvent{ID: "t1", Label: models.LabelPortScan}
	bus.EmitThreat(threat)

	if len(got) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(got))
	}
	if got[0].Type != EventThreatDetected {
		t.Errorf("Expected type %s, got %s", EventThreatDetected, got[0].Type)
	}
	if got[0].Timestamp == 0 {
		t.Error("Expected a timestamp")
	}
	if data, ok := got[0].Data.(*models.ThreatEvent); !ok || data.ID != "t1" {
		t.Errorf("Expected threat t1 as payload, got %#v", got[0].Data)
	}
}

func TestBus_TypeIsolation(t *testing.T) {
	bus := NewBus()

	threatCalls := 0
	predCalls := 0
	bus.Subscribe(EventThreatDetected, func(e *Event) { threatCalls++ })
	bus.Subscribe(EventPrediction, func(e *Event) { predCalls++ })

	bus.EmitPrediction(&models.EventLogEntry{})
	bus.EmitPrediction(&models.EventLogEntry{})
	bus.EmitThreat(&models.ThreatEvent{})

	if predCalls != 2 {
		t.Errorf("Expected 2 prediction calls, got %d", predCalls)
	}
	if threatCalls != 1 {
		t.Errorf("Expected 1 threat call, got %d", threatCalls)
	}
	if bus.EventsEmitted() != 3 {
		t.Errorf("Expected 3 emitted events, got %d", bus.EventsEmitted())
	}
}

func TestBus_MultipleHandlers(t *testing.T) {
	bus := NewBus()

	calls := 0
	bus.Subscribe(EventAnalyzerStarted, func(e *Event) { calls++ })
	bus.Subscribe(EventAnalyzerStarted, func(e *Event) { calls++ })

	bus.Emit(EventAnalyzerStarted, nil)
	if calls != 2 {
		t.Errorf("Expected both handlers called, got %d calls", calls)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	calls := 0
	bus.Subscribe(EventRecordDropped, func(e *Event) { calls++ })
	bus.Unsubscribe(EventRecordDropped)
	bus.Emit(EventRecordDropped, nil)

	if calls != 0 {
		t.Errorf("Expected no calls after unsubscribe, got %d", calls)
	}
}

func TestBus_EmitError(t *testing.T) {
	bus := NewBus()

	var got *Event
	bus.Subscribe(EventAnalyzerError, func(e *Event) { got = e })

	bus.EmitError(errors.New("boom"), "source")

	if got == nil {
		t.Fatal("Expected an error event")
	}
	payload, ok := got.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Unexpected payload type %#v", got.Data)
	}
	if payload["error"] != "boom" || payload["context"] != "source" {
		t.Errorf("Unexpected payload: %#v", payload)
	}
}
