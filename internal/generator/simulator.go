package generator

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/arjitrawat15/NetGuard-AI/internal/models"
)

// Candidate pools for simulated traffic. Addresses stay inside
// documentation/private ranges so a replayed log never points at a real
// host.
var (
	simSrcIPs = []string{
		"192.168.1.10", "192.168.1.11", "192.168.1.12", "192.168.1.25",
		"192.168.1.42", "192.168.1.77", "10.0.0.5", "10.0.0.23",
	}
	simDstIPs = []string{
		"192.168.1.1", "192.168.1.100", "10.0.0.1", "10.0.0.50",
		"203.0.113.7", "203.0.113.42", "198.51.100.12",
	}
	simProtocols = []string{"TCP", "TCP", "TCP", "UDP", "UDP", "ICMP"}

	// Common service ports for normal traffic.
	simServicePorts = []uint16{80, 443, 53, 22, 25, 8080, 3306, 123}

	// Ports associated with well-known backdoors and C2 channels.
	simBackdoorPorts = []uint16{4444, 31337, 6667, 12345, 1337}
)

// SimulatorConfig holds traffic simulator configuration.
type SimulatorConfig struct {
	// MinBatch and MaxBatch bound the records returned per NextBatch call.
	MinBatch int
	MaxBatch int

	// ThreatRate is the fraction of records shaped like attack traffic.
	ThreatRate float64

	// Seed makes the stream reproducible when non-zero.
	Seed int64
}

// DefaultSimulatorConfig returns a sensible default configuration.
func DefaultSimulatorConfig() *SimulatorConfig {
	return &SimulatorConfig{
		MinBatch:   1,
		MaxBatch:   10,
		ThreatRate: 0.15,
	}
}

// Simulator produces randomized packet records from fixed candidate
// pools. It is non-blocking: NextBatch computes the batch inline and
// returns immediately.
type Simulator struct {
	config *SimulatorConfig

	mu  sync.Mutex
	rng *rand.Rand

	running int32

	packetsEmitted uint64
	batchesEmitted uint64
	lastBatchSize  int64
	startTime      time.Time
}

// NewSimulator creates a new traffic simulator.
func NewSimulator(cfg *SimulatorConfig) *Simulator {
	if cfg == nil {
		cfg = DefaultSimulatorConfig()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		config: cfg,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Name identifies the source.
func (s *Simulator) Name() string { return "simulator" }

// Start marks the simulator running.
func (s *Simulator) Start(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return errors.New("generator: simulator already running")
	}
	s.startTime = time.Now()
	return nil
}

// Stop marks the simulator stopped.
func (s *Simulator) Stop() error {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return errors.New("generator: simulator not running")
	}
	return nil
}

// NextBatch returns between MinBatch and MaxBatch randomized records.
func (s *Simulator) NextBatch(ctx context.Context) ([]*models.PacketRecord, error) {
	if atomic.LoadInt32(&s.running) != 1 {
		return nil, errors.New("generator: simulator not running")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	n := s.config.MinBatch
	if spread := s.config.MaxBatch - s.config.MinBatch; spread > 0 {
		n += s.rng.Intn(spread + 1)
	}
	batch := make([]*models.PacketRecord, 0, n)
	for i := 0; i < n; i++ {
		if s.rng.Float64() < s.config.ThreatRate {
			batch = append(batch, s.threatRecord())
		} else {
			batch = append(batch, s.normalRecord())
		}
	}
	s.mu.Unlock()

	atomic.AddUint64(&s.packetsEmitted, uint64(len(batch)))
	atomic.AddUint64(&s.batchesEmitted, 1)
	atomic.StoreInt64(&s.lastBatchSize, int64(len(batch)))
	return batch, nil
}

// Stats returns cumulative simulator statistics.
func (s *Simulator) Stats() *models.SourceStats {
	return &models.SourceStats{
		PacketsEmitted: atomic.LoadUint64(&s.packetsEmitted),
		BatchesEmitted: atomic.LoadUint64(&s.batchesEmitted),
		LastBatchSize:  int(atomic.LoadInt64(&s.lastBatchSize)),
		StartTime:      s.startTime,
	}
}

// normalRecord emits benign-looking traffic: service ports, typical
// payload sizes.
func (s *Simulator) normalRecord() *models.PacketRecord {
	r := s.baseRecord()
	r.Protocol = simProtocols[s.rng.Intn(len(simProtocols))]
	r.Length = uint32(64 + s.rng.Intn(1200))
	if r.Protocol != "ICMP" {
		r.SrcPort = s.ephemeralPort()
		r.DstPort = simServicePorts[s.rng.Intn(len(simServicePorts))]
	}
	return r
}

// threatRecord emits one of three attack shapes matching the labels the
// classifier was trained on.
func (s *Simulator) threatRecord() *models.PacketRecord {
	r := s.baseRecord()
	switch s.rng.Intn(3) {
	case 0: // port scan probe: tiny TCP segments walking the port space
		r.Protocol = "TCP"
		r.Length = uint32(40 + s.rng.Intn(20))
		r.SrcPort = s.ephemeralPort()
		r.DstPort = uint16(1 + s.rng.Intn(10000))
	case 1: // flood: oversized packets hammering one service
		r.Protocol = simProtocols[s.rng.Intn(len(simProtocols))]
		r.Length = uint32(1200 + s.rng.Intn(300))
		if r.Protocol != "ICMP" {
			r.SrcPort = s.ephemeralPort()
			r.DstPort = simServicePorts[s.rng.Intn(len(simServicePorts))]
		}
	default: // backdoor traffic on a known C2 port
		r.Protocol = "TCP"
		r.Length = uint32(100 + s.rng.Intn(400))
		r.SrcPort = s.ephemeralPort()
		r.DstPort = simBackdoorPorts[s.rng.Intn(len(simBackdoorPorts))]
	}
	return r
}

func (s *Simulator) baseRecord() *models.PacketRecord {
	now := time.Now()
	return &models.PacketRecord{
		ID:            uuid.NewString(),
		Timestamp:     now,
		TimestampNano: now.UnixNano(),
		SrcIP:         net.ParseIP(simSrcIPs[s.rng.Intn(len(simSrcIPs))]),
		DstIP:         net.ParseIP(simDstIPs[s.rng.Intn(len(simDstIPs))]),
	}
}

func (s *Simulator) ephemeralPort() uint16 {
	return uint16(32768 + s.rng.Intn(28232))
}

// Ensure Simulator implements Source
var _ Source = (*Simulator)(nil)
