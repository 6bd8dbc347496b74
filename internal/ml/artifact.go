package ml

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/zeebo/blake3"

	"github.com/arjitrawat15/NetGuard-AI/internal/models"
)

// ModelArtifact is the on-disk trained classifier: a linear softmax model
// exported to JSON. Weights[i] is the coefficient row for label Labels[i].
type ModelArtifact struct {
	Name         string      `json:"name"`
	Version      string      `json:"version"`
	FeatureNames []string    `json:"feature_names"`
	Labels       []string    `json:"labels"`
	Weights      [][]float64 `json:"weights"`
	Intercepts   []float64   `json:"intercepts"`

	// ContentHash is the BLAKE3 digest of the artifact file, recorded at
	// load time for provenance logging. Not part of the JSON.
	ContentHash string `json:"-"`
}

// LoadArtifact reads and validates a model artifact. A validation error
// means the caller must run in degraded (rule-based) mode; the error
// explains why.
func LoadArtifact(path string) (*ModelArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ml: read artifact: %w", err)
	}

	var a ModelArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("ml: parse artifact: %w", err)
	}

	if err := a.validate(); err != nil {
		return nil, err
	}

	sum := blake3.Sum256(data)
	a.ContentHash = hex.EncodeToString(sum[:])
	return &a, nil
}

// validate checks the artifact against the pipeline's fixed contracts:
// feature width must match the extractor, labels must be exactly the
// known label set in order.
func (a *ModelArtifact) validate() error {
	want := (&PacketFeatures{}).FeatureCount()
	if len(a.FeatureNames) != want {
		return fmt.Errorf("ml: artifact has %d features, extractor produces %d", len(a.FeatureNames), want)
	}

	known := models.AllLabels()
	if len(a.Labels) != len(known) {
		return fmt.Errorf("ml: artifact has %d labels, want %d", len(a.Labels), len(known))
	}
	for i, l := range a.Labels {
		if models.Label(l) != known[i] {
			return fmt.Errorf("ml: artifact label %q at index %d, want %q", l, i, known[i])
		}
	}

	if len(a.Weights) != len(a.Labels) {
		return fmt.Errorf("ml: %d weight rows for %d labels", len(a.Weights), len(a.Labels))
	}
	for i, row := range a.Weights {
		if len(row) != want {
			return fmt.Errorf("ml: weight row %d has width %d, want %d", i, len(row), want)
		}
	}
	if len(a.Intercepts) != len(a.Labels) {
		return fmt.Errorf("ml: %d intercepts for %d labels", len(a.Intercepts), len(a.Labels))
	}
	return nil
}
