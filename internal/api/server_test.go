package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arjitrawat15/NetGuard-AI/internal/analyzer"
	"github.com/arjitrawat15/NetGuard-AI/internal/events"
	"github.com/arjitrawat15/NetGuard-AI/internal/ml"
	"github.com/arjitrawat15/NetGuard-AI/internal/models"
	"github.com/arjitrawat15/NetGuard-AI/internal/store"
	"github.com/arjitrawat15/NetGuard-AI/internal/threat"
)

type fixedSource struct{}

func (fixedSource) Name() string                    { return "fixed" }
func (fixedSource) Start(ctx context.Context) error { return nil }
func (fixedSource) Stop() error                     { return nil }
func (fixedSource) Stats() *models.SourceStats      { return &models.SourceStats{} }
func (fixedSource) NextBatch(ctx context.Context) ([]*models.PacketRecord, error) {
	return nil, nil
}

func testServer(t *testing.T) (*Server, *analyzer.Analyzer, *store.EventLog) {
	t.Helper()
	eventLog := store.NewEventLog(100)
	a := analyzer.New(
		&analyzer.Config{TickInterval: time.Hour},
		fixedSource{},
		ml.NewClassifier(&ml.ClassifierConfig{}),
		threat.NewAnnotator(nil),
		eventLog,
		events.NewBus(),
		nil,
	)
	return NewServer(context.Background(), a, eventLog), a, eventLog
}

func seedEntry(log *store.EventLog, id string, label models.Label) {
	now := time.Now()
	log.Append(&models.EventLogEntry{
		Record: &models.PacketRecord{
			ID:            id,
			Timestamp:     now,
			TimestampNano: now.UnixNano(),
			SrcIP:         net.ParseIP("192.168.1.10"),
			DstIP:         net.ParseIP("10.0.0.1"),
			Protocol:      "TCP",
			Length:        100,
		},
		Prediction: &models.Prediction{
			Timestamp:     now,
			TimestampNano: now.UnixNano(),
			Label:         label,
			Confidence:    0.9,
			Method:        "rules",
		},
	})
}

func doRequest(s *Server, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestServer_Events(t *testing.T) {
	s, _, log := testServer(t)
	seedEntry(log, "e1", models.LabelNormal)
	seedEntry(log, "e2", models.LabelPortScan)

	w := doRequest(s, http.MethodGet, "/api/events?limit=1")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var body struct {
		Events []models.EventLogEntry `json:"events"`
		Count  int                    `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Bad JSON: %v", err)
	}
	if body.Count != 2 {
		t.Errorf("Expected count 2, got %d", body.Count)
	}
	if len(body.Events) != 1 || body.Events[0].Record.ID != "e2" {
		t.Errorf("Expected newest entry e2, got %+v", body.Events)
	}
}

func TestServer_Threats(t *testing.T) {
	s, _, log := testServer(t)
	seedEntry(log, "e1", models.LabelNormal)
	seedEntry(log, "e2", models.LabelMalware)

	w := doRequest(s, http.MethodGet, "/api/threats")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var body struct {
		Threats []models.EventLogEntry `json:"threats"`
		Count   int                    `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Bad JSON: %v", err)
	}
	if body.Count != 1 || body.Threats[0].Record.ID != "e2" {
		t.Errorf("Expected only threat e2, got %+v", body.Threats)
	}
}

func TestServer_StatsAndStatus(t *testing.T) {
	s, _, log := testServer(t)
	seedEntry(log, "e1", models.LabelPortScan)

	w := doRequest(s, http.MethodGet, "/api/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var stats struct {
		Log      models.LogStats      `json:"log"`
		Pipeline models.PipelineStats `json:"pipeline"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Bad JSON: %v", err)
	}
	if stats.Log.Size != 1 {
		t.Errorf("Expected log size 1, got %d", stats.Log.Size)
	}
	if stats.Pipeline.Running {
		t.Error("Expected pipeline not running")
	}
	if !stats.Pipeline.DegradedMode {
		t.Error("Expected degraded mode without a model")
	}

	w = doRequest(s, http.MethodGet, "/api/status")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
}

func TestServer_StartStop(t *testing.T) {
	s, a, _ := testServer(t)

	w := doRequest(s, http.MethodPost, "/api/analyzer/start")
	if w.Code != http.StatusOK {
		t.Fatalf("Start: expected 200, got %d", w.Code)
	}
	if !a.Running() {
		t.Fatal("Expected analyzer running after start")
	}

	// Starting twice stays OK.
	if w := doRequest(s, http.MethodPost, "/api/analyzer/start"); w.Code != http.StatusOK {
		t.Fatalf("Second start: expected 200, got %d", w.Code)
	}

	w = doRequest(s, http.MethodPost, "/api/analyzer/stop")
	if w.Code != http.StatusOK {
		t.Fatalf("Stop: expected 200, got %d", w.Code)
	}
	if a.Running() {
		t.Fatal("Expected analyzer stopped after stop")
	}
}

func TestServer_Healthz(t *testing.T) {
	s, _, _ := testServer(t)
	if w := doRequest(s, http.MethodGet, "/healthz"); w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
}

func TestServer_BadLimitFallsBack(t *testing.T) {
	s, _, log := testServer(t)
	seedEntry(log, "e1", models.LabelNormal)

	w := doRequest(s, http.MethodGet, "/api/events?limit=banana")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for bad limit, got %d", w.Code)
	}
}
