package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/arjitrawat15/NetGuard-AI/internal/events"
	"github.com/arjitrawat15/NetGuard-AI/internal/logging"
	"github.com/arjitrawat15/NetGuard-AI/internal/models"
)

// Persister appends classified events and threats to JSONL history files
// under the data directory. It is best-effort: writes happen on a
// dedicated goroutine behind a bounded queue, and when the queue is full
// the write is dropped rather than blocking the analyzer.
type Persister struct {
	eventPath  string
	threatPath string

	queue   chan persistItem
	wg      sync.WaitGroup
	once    sync.Once
	dropped uint64
	mu      sync.Mutex
}

type persistItem struct {
	path string
	data interface{}
}

// NewPersister creates a persister writing under dataDir.
func NewPersister(dataDir string) *Persister {
	return &Persister{
		eventPath:  filepath.Join(dataDir, "events.jsonl"),
		threatPath: filepath.Join(dataDir, "threats.jsonl"),
		queue:      make(chan persistItem, 1024),
	}
}

// Attach subscribes the persister to the bus and starts its writer.
func (p *Persister) Attach(bus *events.Bus) {
	bus.Subscribe(events.EventPrediction, func(e *events.Event) {
		if entry, ok := e.Data.(*models.EventLogEntry); ok {
			p.enqueue(p.eventPath, entry)
		}
	})
	bus.Subscribe(events.EventThreatDetected, func(e *events.Event) {
		if threat, ok := e.Data.(*models.ThreatEvent); ok {
			p.enqueue(p.threatPath, threat)
		}
	})

	p.wg.Add(1)
	go p.writeLoop()
}

// Close drains the queue and stops the writer.
func (p *Persister) Close() {
	p.once.Do(func() {
		close(p.queue)
	})
	p.wg.Wait()
}

// Dropped returns how many writes were discarded under backpressure.
func (p *Persister) Dropped() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

func (p *Persister) enqueue(path string, data interface{}) {
	select {
	case p.queue <- persistItem{path: path, data: data}:
	default:
		p.mu.Lock()
		p.dropped++
		p.mu.Unlock()
	}
}

func (p *Persister) writeLoop() {
	defer p.wg.Done()
	log := logging.StoreLogger()

	for item := range p.queue {
		line, err := json.Marshal(item.data)
		if err != nil {
			log.Warn("history marshal failed", logging.Err(err))
			continue
		}
		if err := appendLine(item.path, line); err != nil {
			log.Warn("history write failed", "path", item.path, logging.Err(err))
		}
	}
}

func appendLine(path string, line []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(line); err != nil {
		return err
	}
	_, err = f.Write([]byte("\n"))
	return err
}
