// Package analyzer runs the producer loop: source → features →
// classifier → annotator → event log, on a fixed tick.
package analyzer

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arjitrawat15/NetGuard-AI/internal/events"
	"github.com/arjitrawat15/NetGuard-AI/internal/generator"
	"github.com/arjitrawat15/NetGuard-AI/internal/logging"
	"github.com/arjitrawat15/NetGuard-AI/internal/metrics"
	"github.com/arjitrawat15/NetGuard-AI/internal/ml"
	"github.com/arjitrawat15/NetGuard-AI/internal/models"
	"github.com/arjitrawat15/NetGuard-AI/internal/store"
	"github.com/arjitrawat15/NetGuard-AI/internal/threat"
)

// Config holds analyzer loop configuration.
type Config struct {
	// TickInterval is the production cadence.
	TickInterval time.Duration
}

// Analyzer owns the single writer goroutine of the pipeline. All mutation
// of the event log happens on its loop; everything else only reads.
type Analyzer struct {
	config     *Config
	source     generator.Source
	extractor  *ml.Extractor
	classifier *ml.Classifier
	annotator  *threat.Annotator
	log        *store.EventLog
	bus        *events.Bus
	metrics    *metrics.Metrics

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	totalPackets     uint64
	totalPredictions uint64
	threatsDetected  uint64
	recordsDropped   uint64
	ticksCompleted   uint64
	tickOverruns     uint64
	startTime        atomic.Value // time.Time
	lastTick         atomic.Value // time.Time
}

// New wires an analyzer from its collaborators.
func New(cfg *Config, source generator.Source, classifier *ml.Classifier,
	annotator *threat.Annotator, log *store.EventLog, bus *events.Bus, m *metrics.Metrics) *Analyzer {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 2 * time.Second
	}
	return &Analyzer{
		config:     cfg,
		source:     source,
		extractor:  ml.NewExtractor(),
		classifier: classifier,
		annotator:  annotator,
		log:        log,
		bus:        bus,
		metrics:    m,
	}
}

// Start launches the producer loop. Calling Start on a running analyzer
// is a no-op.
func (a *Analyzer) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return nil
	}

	if err := a.source.Start(ctx); err != nil {
		return err
	}

	ctx, a.cancel = context.WithCancel(ctx)
	a.running = true
	a.startTime.Store(time.Now())
	a.classifier.ResetRates()

	a.wg.Add(1)
	go a.loop(ctx)

	if a.metrics != nil {
		if a.classifier.Degraded() {
			a.metrics.DegradedMode.Set(1)
		} else {
			a.metrics.DegradedMode.Set(0)
		}
	}
	a.bus.Emit(events.EventAnalyzerStarted, a.snapshot(true))
	logging.AnalyzerLogger().Info("analyzer started",
		"source", a.source.Name(),
		"tick_interval", a.config.TickInterval,
		"degraded", a.classifier.Degraded())
	return nil
}

// Stop halts the producer loop and the source. Calling Stop on a stopped
// analyzer is a no-op.
func (a *Analyzer) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return nil
	}

	a.cancel()
	a.wg.Wait()
	a.running = false

	err := a.source.Stop()
	if err != nil && errors.Is(err, context.Canceled) {
		err = nil
	}

	a.bus.Emit(events.EventAnalyzerStopped, a.snapshot(false))
	logging.AnalyzerLogger().Info("analyzer stopped",
		"total_packets", atomic.LoadUint64(&a.totalPackets),
		"threats_detected", atomic.LoadUint64(&a.threatsDetected))
	return err
}

// Running reports whether the loop is active.
func (a *Analyzer) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Stats returns a snapshot of loop statistics.
func (a *Analyzer) Stats() *models.PipelineStats {
	return a.snapshot(a.Running())
}

// snapshot builds the stats struct without touching a.mu, so Start and
// Stop can emit it while holding the lock.
func (a *Analyzer) snapshot(running bool) *models.PipelineStats {
	s := &models.PipelineStats{
		Running:          running,
		DegradedMode:     a.classifier.Degraded(),
		TotalPackets:     atomic.LoadUint64(&a.totalPackets),
		TotalPredictions: atomic.LoadUint64(&a.totalPredictions),
		ThreatsDetected:  atomic.LoadUint64(&a.threatsDetected),
		RecordsDropped:   atomic.LoadUint64(&a.recordsDropped),
		TicksCompleted:   atomic.LoadUint64(&a.ticksCompleted),
		TickOverruns:     atomic.LoadUint64(&a.tickOverruns),
	}
	if v, ok := a.startTime.Load().(time.Time); ok {
		s.StartTime = v
	}
	if v, ok := a.lastTick.Load().(time.Time); ok {
		s.LastTick = v
	}
	return s
}

// loop drives ticks. time.Ticker already coalesces missed ticks into one
// pending tick; the overrun counter makes the skips visible.
func (a *Analyzer) loop(ctx context.Context) {
	defer a.wg.Done()

	ticker := time.NewTicker(a.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			a.Tick(ctx)
			elapsed := time.Since(start)
			if elapsed > a.config.TickInterval {
				atomic.AddUint64(&a.tickOverruns, 1)
				if a.metrics != nil {
					a.metrics.TickOverruns.Inc()
				}
				logging.AnalyzerLogger().Warn("tick overran interval",
					logging.Duration("elapsed", elapsed),
					logging.Duration("interval", a.config.TickInterval))
			}
		}
	}
}

// Tick runs one production cycle. Exported so tests and replay tooling
// can drive the pipeline without the ticker.
func (a *Analyzer) Tick(ctx context.Context) {
	start := time.Now()

	batch, err := a.source.NextBatch(ctx)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
		a.bus.EmitError(err, "source")
		logging.AnalyzerLogger().Warn("source batch failed", logging.Err(err))
	}

	for _, record := range batch {
		a.process(record)
	}

	atomic.AddUint64(&a.ticksCompleted, 1)
	a.lastTick.Store(time.Now())
	if a.metrics != nil {
		a.metrics.TicksCompleted.Inc()
		a.metrics.TickDuration.Observe(time.Since(start).Seconds())
		a.metrics.EventLogSize.Set(float64(a.log.Size()))
	}
}

// process classifies one record and appends the result. Nothing here is
// fatal: malformed records are dropped and counted.
func (a *Analyzer) process(record *models.PacketRecord) {
	if !record.Valid() {
		atomic.AddUint64(&a.recordsDropped, 1)
		if a.metrics != nil {
			a.metrics.RecordsDropped.Inc()
		}
		a.bus.Emit(events.EventRecordDropped, record)
		return
	}

	atomic.AddUint64(&a.totalPackets, 1)
	if a.metrics != nil {
		a.metrics.PacketsGenerated.Inc()
	}

	features := a.extractor.Extract(record)
	prediction := a.classifier.Classify(record, features)
	atomic.AddUint64(&a.totalPredictions, 1)
	if a.metrics != nil {
		a.metrics.Predictions.WithLabelValues(string(prediction.Label)).Inc()
	}

	entry := &models.EventLogEntry{Record: record, Prediction: prediction}
	a.log.Append(entry)
	a.bus.EmitPrediction(entry)

	if event, ok := a.annotator.Annotate(record, prediction); ok {
		atomic.AddUint64(&a.threatsDetected, 1)
		if a.metrics != nil {
			a.metrics.Threats.WithLabelValues(string(event.Severity)).Inc()
		}
		a.bus.EmitThreat(event)
		logging.AnalyzerLogger().Info("threat detected", logging.Threat(event))
	}
}
