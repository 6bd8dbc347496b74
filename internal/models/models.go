// Package models defines the core data structures for NetGuard-AI.
// All timestamps carry nanosecond precision alongside time.Time so the
// dashboard can sort and bucket events without re-parsing.
package models

import (
	"net"
	"time"
)

// Label is a classifier output class. The label set is fixed; the
// classifier must never emit a label outside it.
type Label string

const (
	LabelNormal      Label = "NORMAL"
	LabelPortScan    Label = "PORT_SCAN"
	LabelMalware     Label = "MALWARE_DETECTED"
	LabelDoSAttempt  Label = "DOS_ATTEMPT"
	LabelOtherThreat Label = "OTHER_THREAT"
)

// AllLabels lists every valid label in a stable order. The order matches
// the class order of the trained model artifact.
func AllLabels() []Label {
	return []Label{LabelNormal, LabelPortScan, LabelMalware, LabelDoSAttempt, LabelOtherThreat}
}

// Valid reports whether l belongs to the fixed label set.
func (l Label) Valid() bool {
	switch l {
	case LabelNormal, LabelPortScan, LabelMalware, LabelDoSAttempt, LabelOtherThreat:
		return true
	}
	return false
}

// IsThreat reports whether l is any non-normal label.
func (l Label) IsThreat() bool {
	return l.Valid() && l != LabelNormal
}

// Severity is the alert tier derived from prediction confidence.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
)

// PacketRecord represents one simulated or replayed network packet.
// Records are immutable once created; the pipeline only reads them.
type PacketRecord struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	TimestampNano int64     `json:"timestamp_nano"`
	SrcIP         net.IP    `json:"src_ip"`
	DstIP         net.IP    `json:"dst_ip"`
	Protocol      string    `json:"protocol"` // "TCP", "UDP", "ICMP", etc.
	Length        uint32    `json:"length"`
	SrcPort       uint16    `json:"src_port,omitempty"`
	DstPort       uint16    `json:"dst_port,omitempty"`
}

// Valid reports whether the record carries every required field.
// Invalid records are dropped by the analyzer, never appended.
func (r *PacketRecord) Valid() bool {
	if r == nil {
		return false
	}
	return !r.Timestamp.IsZero() &&
		r.SrcIP != nil &&
		r.DstIP != nil &&
		r.Protocol != "" &&
		r.Length > 0
}

// Prediction is the classifier output for a single PacketRecord.
// Produced once, never mutated.
type Prediction struct {
	Timestamp     time.Time `json:"timestamp"`
	TimestampNano int64     `json:"timestamp_nano"`
	Label         Label     `json:"label"`
	Confidence    float64   `json:"confidence"` // Calibrated, in [0, 1]
	Method        string    `json:"method"`     // "model" or "rules"
}

// IsThreat reports whether the prediction carries a non-normal label.
func (p *Prediction) IsThreat() bool {
	return p != nil && p.Label.IsThreat()
}

// ThreatEvent is a Prediction elevated to an alert under the
// confidence/label policy, with the packet context the dashboard shows.
type ThreatEvent struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	TimestampNano int64     `json:"timestamp_nano"`
	Label         Label     `json:"label"`
	Confidence    float64   `json:"confidence"`
	Severity      Severity  `json:"severity"`
	SrcIP         net.IP    `json:"src_ip,omitempty"`
	DstIP         net.IP    `json:"dst_ip,omitempty"`
	SrcPort       uint16    `json:"src_port,omitempty"`
	DstPort       uint16    `json:"dst_port,omitempty"`
	Protocol      string    `json:"protocol,omitempty"`
	Description   string    `json:"description,omitempty"`
}

// EventLogEntry pairs a packet with its prediction in the event log.
type EventLogEntry struct {
	Record     *PacketRecord `json:"record"`
	Prediction *Prediction   `json:"prediction"`
}

// LogStats aggregates the current event log contents for the dashboard.
type LogStats struct {
	Size          int            `json:"size"`
	Capacity      int            `json:"capacity"`
	TotalAppended uint64         `json:"total_appended"`
	TotalEvicted  uint64         `json:"total_evicted"`
	ThreatCount   int            `json:"threat_count"`
	ByLabel       map[Label]int  `json:"by_label"`
	ByProtocol    map[string]int `json:"by_protocol"`
	OldestNano    int64          `json:"oldest_nano,omitempty"`
	NewestNano    int64          `json:"newest_nano,omitempty"`
}

// SourceStats holds packet source statistics.
type SourceStats struct {
	PacketsEmitted uint64    `json:"packets_emitted"`
	BatchesEmitted uint64    `json:"batches_emitted"`
	LastBatchSize  int       `json:"last_batch_size"`
	StartTime      time.Time `json:"start_time"`
}

// PipelineStats holds analyzer loop statistics.
type PipelineStats struct {
	Running          bool      `json:"running"`
	DegradedMode     bool      `json:"degraded_mode"`
	TotalPackets     uint64    `json:"total_packets"`
	TotalPredictions uint64    `json:"total_predictions"`
	ThreatsDetected  uint64    `json:"threats_detected"`
	RecordsDropped   uint64    `json:"records_dropped"`
	TicksCompleted   uint64    `json:"ticks_completed"`
	TickOverruns     uint64    `json:"tick_overruns"`
	StartTime        time.Time `json:"start_time,omitempty"`
	LastTick         time.Time `json:"last_tick,omitempty"`
}
