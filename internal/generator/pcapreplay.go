package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/gopacket/gopacket/pcapgo"

	"github.com/arjitrawat15/NetGuard-AI/internal/models"
)

// PCAPReplayConfig holds pcap replay configuration.
type PCAPReplayConfig struct {
	// File is the pcap file to replay.
	File string

	// MaxBatch bounds the records returned per NextBatch call.
	MaxBatch int
}

// PCAPReplay reads packet records from a pcap file using the pure-Go
// pcapgo reader. Reading a capture file needs no elevated privileges,
// which keeps replay mode usable in the same environments as the
// simulator.
type PCAPReplay struct {
	config *PCAPReplayConfig

	file   *os.File
	reader *pcapgo.Reader

	running int32

	// Decoding state, reused across packets.
	eth     layers.Ethernet
	ip4     layers.IPv4
	ip6     layers.IPv6
	tcp     layers.TCP
	udp     layers.UDP
	icmp4   layers.ICMPv4
	parser  *gopacket.DecodingLayerParser
	decoded []gopacket.LayerType

	packetsEmitted uint64
	batchesEmitted uint64
	parseErrors    uint64
	lastBatchSize  int64
	startTime      time.Time
}

// NewPCAPReplay creates a pcap replay source.
func NewPCAPReplay(cfg *PCAPReplayConfig) (*PCAPReplay, error) {
	if cfg == nil || cfg.File == "" {
		return nil, errors.New("generator: pcap file path is required")
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = 10
	}

	r := &PCAPReplay{config: cfg}
	r.parser = gopacket.NewDecodingLayerParser(
		layers.LayerTypeEthernet,
		&r.eth, &r.ip4, &r.ip6, &r.tcp, &r.udp, &r.icmp4,
	)
	r.parser.IgnoreUnsupported = true
	r.decoded = make([]gopacket.LayerType, 0, 6)
	return r, nil
}

// Name identifies the source.
func (r *PCAPReplay) Name() string { return "pcap:" + r.config.File }

// Start opens the capture file.
func (r *PCAPReplay) Start(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&r.running, 0, 1) {
		return errors.New("generator: replay already running")
	}

	f, err := os.Open(r.config.File)
	if err != nil {
		atomic.StoreInt32(&r.running, 0)
		return fmt.Errorf("generator: open pcap: %w", err)
	}
	reader, err := pcapgo.NewReader(f)
	if err != nil {
		f.Close()
		atomic.StoreInt32(&r.running, 0)
		return fmt.Errorf("generator: read pcap header: %w", err)
	}

	r.file = f
	r.reader = reader
	r.startTime = time.Now()
	return nil
}

// Stop closes the capture file.
func (r *PCAPReplay) Stop() error {
	if !atomic.CompareAndSwapInt32(&r.running, 1, 0) {
		return errors.New("generator: replay not running")
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// NextBatch reads up to MaxBatch packets from the file. Returns io.EOF
// once the file is exhausted; the analyzer treats that as a quiet source,
// not a failure.
func (r *PCAPReplay) NextBatch(ctx context.Context) ([]*models.PacketRecord, error) {
	if atomic.LoadInt32(&r.running) != 1 {
		return nil, errors.New("generator: replay not running")
	}

	batch := make([]*models.PacketRecord, 0, r.config.MaxBatch)
	for len(batch) < r.config.MaxBatch {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		data, ci, err := r.reader.ReadPacketData()
		if err == io.EOF {
			if len(batch) == 0 {
				return nil, io.EOF
			}
			break
		}
		if err != nil {
			atomic.AddUint64(&r.parseErrors, 1)
			continue
		}

		rec := r.decode(data, ci)
		if rec == nil {
			atomic.AddUint64(&r.parseErrors, 1)
			continue
		}
		batch = append(batch, rec)
	}

	atomic.AddUint64(&r.packetsEmitted, uint64(len(batch)))
	atomic.AddUint64(&r.batchesEmitted, 1)
	atomic.StoreInt64(&r.lastBatchSize, int64(len(batch)))
	return batch, nil
}

// Stats returns cumulative replay statistics.
func (r *PCAPReplay) Stats() *models.SourceStats {
	return &models.SourceStats{
		PacketsEmitted: atomic.LoadUint64(&r.packetsEmitted),
		BatchesEmitted: atomic.LoadUint64(&r.batchesEmitted),
		LastBatchSize:  int(atomic.LoadInt64(&r.lastBatchSize)),
		StartTime:      r.startTime,
	}
}

// decode turns raw packet bytes into a PacketRecord. Returns nil for
// packets without an IP layer; the pipeline only scores IP traffic.
func (r *PCAPReplay) decode(data []byte, ci gopacket.CaptureInfo) *models.PacketRecord {
	if err := r.parser.DecodeLayers(data, &r.decoded); err != nil && len(r.decoded) == 0 {
		return nil
	}

	rec := &models.PacketRecord{
		ID:            uuid.NewString(),
		Timestamp:     ci.Timestamp,
		TimestampNano: ci.Timestamp.UnixNano(),
		Length:        uint32(ci.Length),
	}

	for _, layerType := range r.decoded {
		switch layerType {
		case layers.LayerTypeIPv4:
			rec.SrcIP = append(net.IP(nil), r.ip4.SrcIP...)
			rec.DstIP = append(net.IP(nil), r.ip4.DstIP...)
		case layers.LayerTypeIPv6:
			rec.SrcIP = append(net.IP(nil), r.ip6.SrcIP...)
			rec.DstIP = append(net.IP(nil), r.ip6.DstIP...)
		case layers.LayerTypeTCP:
			rec.Protocol = "TCP"
			rec.SrcPort = uint16(r.tcp.SrcPort)
			rec.DstPort = uint16(r.tcp.DstPort)
		case layers.LayerTypeUDP:
			rec.Protocol = "UDP"
			rec.SrcPort = uint16(r.udp.SrcPort)
			rec.DstPort = uint16(r.udp.DstPort)
		case layers.LayerTypeICMPv4:
			rec.Protocol = "ICMP"
		}
	}

	if rec.SrcIP == nil || rec.DstIP == nil {
		return nil
	}
	if rec.Protocol == "" {
		rec.Protocol = "OTHER"
	}
	return rec
}

// Ensure PCAPReplay implements Source
var _ Source = (*PCAPReplay)(nil)
