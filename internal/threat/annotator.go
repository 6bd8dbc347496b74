// Package threat turns classifier predictions into dashboard alerts.
package threat

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/arjitrawat15/NetGuard-AI/internal/models"
)

// AnnotatorConfig holds the alerting policy.
type AnnotatorConfig struct {
	// Threshold is the minimum confidence for a non-normal prediction to
	// become a ThreatEvent.
	Threshold float64

	// HighSeverityThreshold is the confidence at which an event is tiered
	// HIGH instead of MEDIUM.
	HighSeverityThreshold float64
}

// DefaultAnnotatorConfig returns the default alerting policy.
func DefaultAnnotatorConfig() *AnnotatorConfig {
	return &AnnotatorConfig{
		Threshold:             0.5,
		HighSeverityThreshold: 0.8,
	}
}

// Annotator is a pure policy object: same inputs, same outputs, no state.
type Annotator struct {
	config *AnnotatorConfig
}

// NewAnnotator creates an annotator.
func NewAnnotator(cfg *AnnotatorConfig) *Annotator {
	if cfg == nil {
		cfg = DefaultAnnotatorConfig()
	}
	return &Annotator{config: cfg}
}

// Annotate returns a ThreatEvent iff the prediction carries a non-normal
// label at or above the confidence threshold. The second return is false
// when no event fires.
func (a *Annotator) Annotate(r *models.PacketRecord, p *models.Prediction) (*models.ThreatEvent, bool) {
	if !p.IsThreat() || p.Confidence < a.config.Threshold {
		return nil, false
	}

	severity := models.SeverityMedium
	if p.Confidence >= a.config.HighSeverityThreshold {
		severity = models.SeverityHigh
	}

	return &models.ThreatEvent{
		ID:            uuid.NewString(),
		Timestamp:     p.Timestamp,
		TimestampNano: p.TimestampNano,
		Label:         p.Label,
		Confidence:    p.Confidence,
		Severity:      severity,
		SrcIP:         r.SrcIP,
		DstIP:         r.DstIP,
		SrcPort:       r.SrcPort,
		DstPort:       r.DstPort,
		Protocol:      r.Protocol,
		Description:   describe(r, p),
	}, true
}

func describe(r *models.PacketRecord, p *models.Prediction) string {
	switch p.Label {
	case models.LabelPortScan:
		return fmt.Sprintf("Port scan activity from %s targeting port %d", r.SrcIP, r.DstPort)
	case models.LabelMalware:
		return fmt.Sprintf("Suspected malware traffic from %s to %s:%d", r.SrcIP, r.DstIP, r.DstPort)
	case models.LabelDoSAttempt:
		return fmt.Sprintf("Possible denial-of-service traffic from %s against %s", r.SrcIP, r.DstIP)
	default:
		return fmt.Sprintf("Anomalous %s traffic from %s to %s", r.Protocol, r.SrcIP, r.DstIP)
	}
}
