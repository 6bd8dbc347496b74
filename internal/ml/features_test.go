package ml

import (
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/arjitrawat15/NetGuard-AI/internal/models"
)

func testRecord() *models.PacketRecord {
	now := time.Now()
	return &models.PacketRecord{
		ID:            "test-record-1",
		Timestamp:     now,
		TimestampNano: now.UnixNano(),
		SrcIP:         net.ParseIP("192.168.1.100"),
		DstIP:         net.ParseIP("10.0.0.1"),
		Protocol:      "TCP",
		Length:        500,
		SrcPort:       45678,
		DstPort:       443,
	}
}

func TestExtractor_Extract(t *testing.T) {
	extractor := NewExtractor()
	features := extractor.Extract(testRecord())

	if features == nil {
		t.Fatal("Expected non-nil features")
	}

	if features.IsTCP != 1.0 {
		t.Errorf("Expected IsTCP to be 1.0, got %f", features.IsTCP)
	}
	if features.IsUDP != 0.0 {
		t.Errorf("Expected IsUDP to be 0.0, got %f", features.IsUDP)
	}
	if features.DstWellKnown != 1.0 {
		t.Errorf("Expected DstWellKnown to be 1.0 for port 443, got %f", features.DstWellKnown)
	}
	if features.SrcEphemeral != 1.0 {
		t.Errorf("Expected SrcEphemeral to be 1.0 for port 45678, got %f", features.SrcEphemeral)
	}
	if features.SrcLocal != 1.0 {
		t.Errorf("Expected SrcLocal to be 1.0 for 192.168.1.100, got %f", features.SrcLocal)
	}
	if features.DstLocal != 1.0 {
		t.Errorf("Expected DstLocal to be 1.0 for 10.0.0.1, got %f", features.DstLocal)
	}

	want := float32(500) / 1500.0
	if features.LengthNorm != want {
		t.Errorf("Expected LengthNorm %f, got %f", want, features.LengthNorm)
	}
}

func TestExtractor_Deterministic(t *testing.T) {
	extractor := NewExtractor()
	record := testRecord()

	first := extractor.Extract(record)
	for i := 0; i < 10; i++ {
		next := extractor.Extract(record)
		if !reflect.DeepEqual(first, next) {
			t.Fatalf("Extraction not deterministic: run %d produced %+v, want %+v", i, next, first)
		}
	}
}

func TestExtractor_UnknownProtocol(t *testing.T) {
	extractor := NewExtractor()
	record := testRecord()
	record.Protocol = "GRE"
	record.SrcPort = 0
	record.DstPort = 0

	features := extractor.Extract(record)

	if features.IsOtherProto != 1.0 {
		t.Errorf("Expected IsOtherProto to be 1.0, got %f", features.IsOtherProto)
	}
	if features.IsTCP != 0 || features.IsUDP != 0 || features.IsICMP != 0 {
		t.Error("Expected known protocol flags to be zero")
	}
	if features.DstWellKnown != 0 || features.DstRegistered != 0 || features.DstEphemeral != 0 {
		t.Error("Expected port buckets to be zero without a destination port")
	}
}

func TestExtractor_SuspiciousPort(t *testing.T) {
	extractor := NewExtractor()
	record := testRecord()
	record.DstPort = 4444

	features := extractor.Extract(record)
	if features.DstSuspicious != 1.0 {
		t.Errorf("Expected DstSuspicious to be 1.0 for port 4444, got %f", features.DstSuspicious)
	}
}

func TestExtractor_SizeBuckets(t *testing.T) {
	extractor := NewExtractor()

	tests := []struct {
		length  uint32
		isTiny  float32
		isJumbo float32
	}{
		{40, 1, 0},
		{64, 1, 0},
		{65, 0, 0},
		{1399, 0, 0},
		{1400, 0, 1},
		{9000, 0, 1},
	}

	for _, tt := range tests {
		record := testRecord()
		record.Length = tt.length
		features := extractor.Extract(record)
		if features.IsTiny != tt.isTiny {
			t.Errorf("Length %d: expected IsTiny %f, got %f", tt.length, tt.isTiny, features.IsTiny)
		}
		if features.IsJumbo != tt.isJumbo {
			t.Errorf("Length %d: expected IsJumbo %f, got %f", tt.length, tt.isJumbo, features.IsJumbo)
		}
	}

	// Oversized packets clamp rather than exceeding 1.
	record := testRecord()
	record.Length = 9000
	if f := extractor.Extract(record); f.LengthNorm != 1.0 {
		t.Errorf("Expected LengthNorm clamped to 1.0, got %f", f.LengthNorm)
	}
}

func TestFeatureNames_MatchWidth(t *testing.T) {
	f := &PacketFeatures{}
	if len(FeatureNames()) != f.FeatureCount() {
		t.Errorf("FeatureNames has %d entries, FeatureCount is %d", len(FeatureNames()), f.FeatureCount())
	}
	if len(f.ToSlice()) != f.FeatureCount() {
		t.Errorf("ToSlice has %d entries, FeatureCount is %d", len(f.ToSlice()), f.FeatureCount())
	}
}
