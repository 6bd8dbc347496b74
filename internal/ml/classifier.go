package ml

import (
	"math"
	"sync/atomic"

	"github.com/arjitrawat15/NetGuard-AI/internal/logging"
	"github.com/arjitrawat15/NetGuard-AI/internal/models"
)

// Method values recorded on predictions.
const (
	MethodModel = "model"
	MethodRules = "rules"
)

// ClassifierConfig holds classifier configuration.
type ClassifierConfig struct {
	// ModelPath is the trained artifact location. Empty means rule-based
	// mode from the start.
	ModelPath string

	// FloodRateThreshold is the smoothed packets-per-second above which
	// the degraded-mode flood rule fires.
	FloodRateThreshold float64
}

// DefaultClassifierConfig returns default classifier configuration.
func DefaultClassifierConfig() *ClassifierConfig {
	return &ClassifierConfig{
		FloodRateThreshold: 100,
	}
}

// Classifier scores feature vectors against the trained model, falling
// back to heuristic rules when no usable artifact is available. Classify
// never returns an error: a broken model degrades, it does not stop the
// pipeline.
type Classifier struct {
	config   *ClassifierConfig
	artifact *ModelArtifact
	tracker  *RateTracker
	degraded int32

	modelPredictions uint64
	rulePredictions  uint64
}

// NewClassifier creates a classifier, loading the model artifact if one
// is configured. Artifact problems are logged once and put the classifier
// into degraded mode.
func NewClassifier(cfg *ClassifierConfig) *Classifier {
	if cfg == nil {
		cfg = DefaultClassifierConfig()
	}
	if cfg.FloodRateThreshold <= 0 {
		cfg.FloodRateThreshold = 100
	}

	c := &Classifier{
		config:  cfg,
		tracker: NewRateTracker(nil),
	}

	log := logging.ClassifierLogger()
	if cfg.ModelPath == "" {
		atomic.StoreInt32(&c.degraded, 1)
		log.Warn("no model artifact configured, running rule-based fallback")
		return c
	}

	artifact, err := LoadArtifact(cfg.ModelPath)
	if err != nil {
		atomic.StoreInt32(&c.degraded, 1)
		log.Warn("model artifact unusable, running rule-based fallback",
			"path", cfg.ModelPath, logging.Err(err))
		return c
	}

	c.artifact = artifact
	log.Info("model artifact loaded",
		"name", artifact.Name,
		"version", artifact.Version,
		"hash", artifact.ContentHash)
	return c
}

// Degraded reports whether the classifier runs rule-based fallback.
func (c *Classifier) Degraded() bool {
	return atomic.LoadInt32(&c.degraded) == 1
}

// ModelInfo returns the loaded artifact metadata, or nil in degraded mode.
func (c *Classifier) ModelInfo() *ModelArtifact {
	return c.artifact
}

// Counts returns how many predictions each method has produced.
func (c *Classifier) Counts() (model, rules uint64) {
	return atomic.LoadUint64(&c.modelPredictions), atomic.LoadUint64(&c.rulePredictions)
}

// Classify scores one record. The feature vector drives the model path;
// the raw record drives the rule fallback.
func (c *Classifier) Classify(r *models.PacketRecord, f *PacketFeatures) *models.Prediction {
	if c.Degraded() {
		return c.classifyRules(r)
	}
	return c.classifyModel(r, f)
}

// classifyModel runs the linear softmax model.
func (c *Classifier) classifyModel(r *models.PacketRecord, f *PacketFeatures) *models.Prediction {
	features := f.ToSlice()
	labels := models.AllLabels()

	scores := make([]float64, len(labels))
	for i := range labels {
		sum := c.artifact.Intercepts[i]
		row := c.artifact.Weights[i]
		for j, v := range features {
			sum += row[j] * float64(v)
		}
		scores[i] = sum
	}

	probs := softmax(scores)
	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}

	atomic.AddUint64(&c.modelPredictions, 1)
	return &models.Prediction{
		Timestamp:     r.Timestamp,
		TimestampNano: r.TimestampNano,
		Label:         labels[best],
		Confidence:    clamp01(probs[best]),
		Method:        MethodModel,
	}
}

// classifyRules is the degraded-mode heuristic. Rule order matters: a
// tiny probe aimed at a backdoor port is a scan touching that port, not
// established C2 traffic, so the probe rule is checked first.
func (c *Classifier) classifyRules(r *models.PacketRecord) *models.Prediction {
	label := models.LabelNormal
	confidence := 0.95

	rate := c.tracker.Observe(r.SrcIP.String(), r.Timestamp)

	switch {
	case r.Protocol == "TCP" && r.Length <= 64:
		label = models.LabelPortScan
		confidence = 0.85
	case suspiciousPorts[r.DstPort]:
		label = models.LabelMalware
		confidence = 0.9
	case rate > c.config.FloodRateThreshold:
		label = models.LabelDoSAttempt
		confidence = clamp01(rate / (2 * c.config.FloodRateThreshold))
	case r.Length >= 1400:
		label = models.LabelDoSAttempt
		confidence = 0.6
	}

	atomic.AddUint64(&c.rulePredictions, 1)
	return &models.Prediction{
		Timestamp:     r.Timestamp,
		TimestampNano: r.TimestampNano,
		Label:         label,
		Confidence:    confidence,
		Method:        MethodRules,
	}
}

// ResetRates clears the degraded-mode rate tracker, used when the
// analyzer restarts.
func (c *Classifier) ResetRates() {
	c.tracker.Reset()
}

func softmax(scores []float64) []float64 {
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}

	probs := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		probs[i] = math.Exp(s - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
