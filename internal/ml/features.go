// Package ml provides feature extraction and classification for the
// analysis pipeline.
package ml

import (
	"github.com/arjitrawat15/NetGuard-AI/internal/models"
)

// PacketFeatures represents the fixed-width feature encoding of a single
// packet record. The field order is the model input order; changing it
// invalidates every trained artifact.
type PacketFeatures struct {
	// Size features
	LengthNorm float32 // Packet length / 1500 (MTU), clamped to 1
	IsTiny     float32 // 1 if length <= 64 (probe-sized)
	IsJumbo    float32 // 1 if length >= 1400

	// Protocol one-hots
	IsTCP        float32 // 1 if TCP
	IsUDP        float32 // 1 if UDP
	IsICMP       float32 // 1 if ICMP
	IsOtherProto float32 // 1 for any other protocol

	// Port features
	SrcPortNorm     float32 // Source port / 65535
	DstPortNorm     float32 // Destination port / 65535
	DstWellKnown    float32 // 1 if destination port < 1024
	DstRegistered   float32 // 1 if destination port in [1024, 49151]
	DstEphemeral    float32 // 1 if destination port >= 49152
	SrcEphemeral    float32 // 1 if source port >= 32768
	DstSuspicious   float32 // 1 if destination is a known backdoor port

	// Address features
	SrcLocal float32 // 1 if source is a private address
	DstLocal float32 // 1 if destination is a private address
}

// ToSlice converts PacketFeatures to a float32 slice for model input.
func (f *PacketFeatures) ToSlice() []float32 {
	return []float32{
		f.LengthNorm,
		f.IsTiny,
		f.IsJumbo,
		f.IsTCP,
		f.IsUDP,
		f.IsICMP,
		f.IsOtherProto,
		f.SrcPortNorm,
		f.DstPortNorm,
		f.DstWellKnown,
		f.DstRegistered,
		f.DstEphemeral,
		f.SrcEphemeral,
		f.DstSuspicious,
		f.SrcLocal,
		f.DstLocal,
	}
}

// FeatureCount returns the number of features.
func (f *PacketFeatures) FeatureCount() int {
	return 16
}

// FeatureNames lists the feature names in model input order.
func FeatureNames() []string {
	return []string{
		"length_norm",
		"is_tiny",
		"is_jumbo",
		"is_tcp",
		"is_udp",
		"is_icmp",
		"is_other_proto",
		"src_port_norm",
		"dst_port_norm",
		"dst_well_known",
		"dst_registered",
		"dst_ephemeral",
		"src_ephemeral",
		"dst_suspicious",
		"src_local",
		"dst_local",
	}
}

// suspiciousPorts are destinations associated with well-known backdoors
// and C2 channels.
var suspiciousPorts = map[uint16]bool{
	1337:  true,
	4444:  true,
	6667:  true,
	12345: true,
	31337: true,
}

// Extractor encodes packet records into feature vectors. It is stateless;
// extraction is pure and deterministic.
type Extractor struct{}

// NewExtractor creates a feature extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract encodes a record. It is total: unknown protocols and missing
// ports map to their "other"/zero buckets rather than failing.
func (e *Extractor) Extract(r *models.PacketRecord) *PacketFeatures {
	f := &PacketFeatures{}

	length := float32(r.Length) / 1500.0
	if length > 1 {
		length = 1
	}
	f.LengthNorm = length
	if r.Length <= 64 {
		f.IsTiny = 1
	}
	if r.Length >= 1400 {
		f.IsJumbo = 1
	}

	switch r.Protocol {
	case "TCP":
		f.IsTCP = 1
	case "UDP":
		f.IsUDP = 1
	case "ICMP":
		f.IsICMP = 1
	default:
		f.IsOtherProto = 1
	}

	f.SrcPortNorm = float32(r.SrcPort) / 65535.0
	f.DstPortNorm = float32(r.DstPort) / 65535.0
	switch {
	case r.DstPort == 0:
		// Portless protocols leave the port buckets zeroed.
	case r.DstPort < 1024:
		f.DstWellKnown = 1
	case r.DstPort < 49152:
		f.DstRegistered = 1
	default:
		f.DstEphemeral = 1
	}
	if r.SrcPort >= 32768 {
		f.SrcEphemeral = 1
	}
	if suspiciousPorts[r.DstPort] {
		f.DstSuspicious = 1
	}

	if r.SrcIP != nil && r.SrcIP.IsPrivate() {
		f.SrcLocal = 1
	}
	if r.DstIP != nil && r.DstIP.IsPrivate() {
		f.DstLocal = 1
	}

	return f
}
