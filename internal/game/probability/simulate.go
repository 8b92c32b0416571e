// Package probability estimates the outcome distribution of a pool set by
// repeated sampling and smooths successive estimates for display.
package probability

import (
	"slices"

	"github.com/cory-johannsen/tactics/internal/game/action"
	"github.com/cory-johannsen/tactics/internal/game/dice"
)

// DefaultSamples is the number of simulated rolls per refresh.
const DefaultSamples = 100

// Bucket is one achievable roll value and its relative likelihood.
type Bucket struct {
	Value int
	Rate  float64
}

// Estimate is a max-normalized histogram in ascending Value order: the most
// frequent value has Rate 1.0 and every other rate is relative to it. It is a
// display scale, not a probability distribution.
type Estimate []Bucket

// Simulate rolls set samples times and buckets the sums.
//
// Raw samples are sorted before bucketing so the output order depends only on
// the draws, never on map iteration.
//
// Precondition: src must be non-nil.
// Postcondition: Buckets are strictly ascending by Value; the largest Rate is
// 1.0; an empty Estimate is returned when samples <= 0.
func Simulate(set dice.PoolSet, samples int, src dice.Source) Estimate {
	if samples <= 0 {
		return Estimate{}
	}
	rolls := make([]int, samples)
	for i := range rolls {
		rolls[i] = set.Roll(src)
	}
	slices.Sort(rolls)

	type count struct{ value, n int }
	var counts []count
	maxN := 0
	for _, r := range rolls {
		if len(counts) > 0 && counts[len(counts)-1].value == r {
			counts[len(counts)-1].n++
		} else {
			counts = append(counts, count{value: r, n: 1})
		}
		maxN = max(maxN, counts[len(counts)-1].n)
	}

	out := make(Estimate, len(counts))
	for i, c := range counts {
		out[i] = Bucket{Value: c.value, Rate: float64(c.n) / float64(maxN)}
	}
	return out
}

// Weights are the relative weights of a new batch and the stored estimate
// when blending.
type Weights struct {
	New    float64
	Stored float64
}

// DefaultWeights favor the stored estimate so the display settles instead of
// flickering.
var DefaultWeights = Weights{New: 1, Stored: 20}

// Blend merge-joins newer and older by Value. Values present on one side only
// pass through unchanged; shared values become
// (new*w.New + old*w.Stored) / (w.New + w.Stored).
//
// Precondition: both inputs ascending by Value; w.New + w.Stored > 0.
// Postcondition: output is ascending by Value and holds the union of values.
func Blend(newer, older Estimate, w Weights) Estimate {
	out := make(Estimate, 0, max(len(newer), len(older)))
	i, j := 0, 0
	for i < len(newer) && j < len(older) {
		a, b := newer[i], older[j]
		switch {
		case a.Value < b.Value:
			out = append(out, a)
			i++
		case a.Value > b.Value:
			out = append(out, b)
			j++
		default:
			rate := (a.Rate*w.New + b.Rate*w.Stored) / (w.New + w.Stored)
			out = append(out, Bucket{Value: a.Value, Rate: rate})
			i++
			j++
		}
	}
	out = append(out, newer[i:]...)
	return append(out, older[j:]...)
}

// TieredBucket is a Bucket annotated with the result tier its value falls in.
type TieredBucket struct {
	Bucket
	Tier action.Result
}

// Tiers annotates each bucket with choice's result tier for its value, which
// is what the presentation layer colors bars by.
func (e Estimate) Tiers(choice action.Choice) []TieredBucket {
	out := make([]TieredBucket, len(e))
	for i, b := range e {
		out[i] = TieredBucket{Bucket: b, Tier: choice.Tier(b.Value)}
	}
	return out
}
