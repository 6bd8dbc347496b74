// Package generator provides packet record sources for the analysis
// pipeline: a traffic simulator for demonstration mode and a pcap replay
// reader for offline analysis. Neither requires elevated privileges.
package generator

import (
	"context"

	"github.com/arjitrawat15/NetGuard-AI/internal/models"
)

// Source is the packet source abstraction consumed by the analyzer.
// Implementations must be safe for a single consumer goroutine.
type Source interface {
	// Start prepares the source for batch production.
	Start(ctx context.Context) error

	// Stop releases source resources. Safe to call once after Start.
	Stop() error

	// NextBatch returns the next batch of records. An empty batch is
	// legal and means the source had nothing to emit this tick. A nil
	// error with an empty batch must not be treated as end of stream;
	// replay sources signal exhaustion with io.EOF.
	NextBatch(ctx context.Context) ([]*models.PacketRecord, error)

	// Stats returns cumulative source statistics.
	Stats() *models.SourceStats

	// Name identifies the source in logs and the status API.
	Name() string
}
