package ml

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arjitrawat15/NetGuard-AI/internal/models"
)

func record(protocol string, length uint32, dstPort uint16) *models.PacketRecord {
	now := time.Now()
	return &models.PacketRecord{
		ID:            "test",
		Timestamp:     now,
		TimestampNano: now.UnixNano(),
		SrcIP:         net.ParseIP("192.168.1.50"),
		DstIP:         net.ParseIP("10.0.0.1"),
		Protocol:      protocol,
		Length:        length,
		SrcPort:       40000,
		DstPort:       dstPort,
	}
}

func TestClassifier_DegradedWithoutModel(t *testing.T) {
	c := NewClassifier(&ClassifierConfig{})
	if !c.Degraded() {
		t.Fatal("Expected degraded mode without a model path")
	}
	if c.ModelInfo() != nil {
		t.Error("Expected nil model info in degraded mode")
	}
}

func TestClassifier_DegradedWithMissingFile(t *testing.T) {
	c := NewClassifier(&ClassifierConfig{ModelPath: "/nonexistent/model.json"})
	if !c.Degraded() {
		t.Fatal("Expected degraded mode for missing artifact")
	}
}

func TestClassifier_RuleFallback(t *testing.T) {
	c := NewClassifier(&ClassifierConfig{})
	extractor := NewExtractor()

	tests := []struct {
		name     string
		record   *models.PacketRecord
		expected models.Label
	}{
		{"tiny TCP probe", record("TCP", 40, 8080), models.LabelPortScan},
		{"tiny TCP probe on backdoor port", record("TCP", 40, 4444), models.LabelPortScan},
		{"backdoor port traffic", record("TCP", 300, 31337), models.LabelMalware},
		{"jumbo packet", record("UDP", 1450, 53), models.LabelDoSAttempt},
		{"normal traffic", record("TCP", 500, 443), models.LabelNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := c.Classify(tt.record, extractor.Extract(tt.record))
			if p.Label != tt.expected {
				t.Errorf("Expected label %s, got %s", tt.expected, p.Label)
			}
			if p.Method != MethodRules {
				t.Errorf("Expected method %q, got %q", MethodRules, p.Method)
			}
			if p.Confidence < 0 || p.Confidence > 1 {
				t.Errorf("Confidence %f out of range", p.Confidence)
			}
			if !p.Label.Valid() {
				t.Errorf("Label %q outside the fixed label set", p.Label)
			}
		})
	}
}

func TestClassifier_FloodRule(t *testing.T) {
	c := NewClassifier(&ClassifierConfig{FloodRateThreshold: 100})
	extractor := NewExtractor()

	// Sustained burst from one source within a single rate window.
	base := time.Now()
	var last *models.Prediction
	for i := 0; i < 200; i++ {
		r := record("UDP", 500, 53)
		r.Timestamp = base.Add(time.Duration(i) * time.Millisecond)
		r.TimestampNano = r.Timestamp.UnixNano()
		last = c.Classify(r, extractor.Extract(r))
	}

	if last.Label != models.LabelDoSAttempt {
		t.Errorf("Expected DOS_ATTEMPT after sustained burst, got %s", last.Label)
	}
	if last.Confidence < 0 || last.Confidence > 1 {
		t.Errorf("Confidence %f out of range", last.Confidence)
	}
}

func writeArtifact(t *testing.T, a *ModelArtifact) string {
	t.Helper()
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal artifact: %v", err)
	}
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func validArtifact() *ModelArtifact {
	width := (&PacketFeatures{}).FeatureCount()
	labels := models.AllLabels()

	a := &ModelArtifact{
		Name:         "netguard-linear",
		Version:      "1.0.0",
		FeatureNames: FeatureNames(),
		Labels:       make([]string, len(labels)),
		Weights:      make([][]float64, len(labels)),
		Intercepts:   make([]float64, len(labels)),
	}
	for i, l := range labels {
		a.Labels[i] = string(l)
		a.Weights[i] = make([]float64, width)
	}
	// Weight the scan class on the is_tiny feature (index 1) and bias
	// everything else toward NORMAL.
	a.Intercepts[0] = 1.0
	a.Weights[1][1] = 5.0
	return a
}

func TestLoadArtifact_Valid(t *testing.T) {
	path := writeArtifact(t, validArtifact())

	a, err := LoadArtifact(path)
	if err != nil {
		t.Fatalf("LoadArtifact failed: %v", err)
	}
	if a.Name != "netguard-linear" {
		t.Errorf("Expected name netguard-linear, got %s", a.Name)
	}
	if a.ContentHash == "" {
		t.Error("Expected a content hash")
	}
}

func TestLoadArtifact_WidthMismatch(t *testing.T) {
	bad := validArtifact()
	bad.FeatureNames = bad.FeatureNames[:4]
	path := writeArtifact(t, bad)

	if _, err := LoadArtifact(path); err == nil {
		t.Fatal("Expected error for feature width mismatch")
	}
}

func TestLoadArtifact_WrongLabels(t *testing.T) {
	bad := validArtifact()
	bad.Labels[1] = "SOMETHING_ELSE"
	path := writeArtifact(t, bad)

	if _, err := LoadArtifact(path); err == nil {
		t.Fatal("Expected error for unknown label")
	}
}

func TestClassifier_ModelPath(t *testing.T) {
	path := writeArtifact(t, validArtifact())
	c := NewClassifier(&ClassifierConfig{ModelPath: path})

	if c.Degraded() {
		t.Fatal("Expected model mode with a valid artifact")
	}

	extractor := NewExtractor()

	// Tiny packet lights up is_tiny, which the test weights map to
	// PORT_SCAN.
	tiny := record("TCP", 40, 8080)
	p := c.Classify(tiny, extractor.Extract(tiny))
	if p.Method != MethodModel {
		t.Errorf("Expected method %q, got %q", MethodModel, p.Method)
	}
	if p.Label != models.LabelPortScan {
		t.Errorf("Expected PORT_SCAN from weighted model, got %s", p.Label)
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		t.Errorf("Confidence %f out of range", p.Confidence)
	}

	// Normal-sized packet should fall back to the biased NORMAL class.
	normal := record("TCP", 500, 443)
	p = c.Classify(normal, extractor.Extract(normal))
	if p.Label != models.LabelNormal {
		t.Errorf("Expected NORMAL from weighted model, got %s", p.Label)
	}
}

func TestSoftmax_SumsToOne(t *testing.T) {
	probs := softmax([]float64{1, 2, 3, 4, 5})
	var sum float64
	for _, p := range probs {
		if p < 0 || p > 1 {
			t.Errorf("Probability %f out of range", p)
		}
		sum += p
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("Probabilities sum to %f, want 1", sum)
	}
}
