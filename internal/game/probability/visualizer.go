package probability

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/dice"
)

// Visualizer holds the stored estimate for one action's pool set.
//
// Visualizer is not safe for concurrent use.
type Visualizer struct {
	samples int
	weights Weights
	stored  Estimate
	logger  *zap.Logger
}

// NewVisualizer creates a Visualizer.
//
// Precondition: samples > 0; weights.New + weights.Stored > 0; logger non-nil.
func NewVisualizer(samples int, weights Weights, logger *zap.Logger) *Visualizer {
	return &Visualizer{samples: samples, weights: weights, logger: logger}
}

// Refresh samples set and updates the stored estimate. When changed is true
// the fresh batch replaces the stored estimate outright; otherwise it is
// blended against it.
//
// Postcondition: Estimate() returns the updated estimate.
func (v *Visualizer) Refresh(set dice.PoolSet, changed bool, src dice.Source) Estimate {
	batch := Simulate(set, v.samples, src)
	if changed || v.stored == nil {
		v.stored = batch
	} else {
		v.stored = Blend(batch, v.stored, v.weights)
	}
	v.logger.Debug("probability refreshed",
		zap.String("pools", set.String()),
		zap.Bool("fresh", changed),
		zap.Int("buckets", len(v.stored)),
	)
	return v.stored
}

// Estimate returns the stored estimate, or nil before the first Refresh.
func (v *Visualizer) Estimate() Estimate { return v.stored }
