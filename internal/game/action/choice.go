// Package action defines action choices, their tiered resolution, and the
// damage policy applied when a resolution is consumed.
package action

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tactics/internal/game/dice"
)

// Result is the ordinal outcome tier of a resolved action.
type Result int

const (
	CriticalFail Result = iota
	Fail
	Success
	CriticalSuccess
)

// String returns the tier name, e.g. "critical_success".
func (r Result) String() string {
	switch r {
	case CriticalFail:
		return "critical_fail"
	case Fail:
		return "fail"
	case Success:
		return "success"
	case CriticalSuccess:
		return "critical_success"
	default:
		return "unknown"
	}
}

// Narrative returns the line shown to the player for r.
func (r Result) Narrative() string {
	switch r {
	case CriticalFail:
		return "Failed Badly"
	case Fail:
		return "Failed"
	case Success:
		return "Succeeded!"
	case CriticalSuccess:
		return "Amazing Success!"
	default:
		return ""
	}
}

// Choice is one action definition offered to a participant.
//
// Invariant (checked by Validate, assumed by Evaluate): Fail < Success < CriticalSuccess.
type Choice struct {
	Title           string       `yaml:"title"`
	Content         string       `yaml:"content"`
	Fail            int          `yaml:"fail"`
	Success         int          `yaml:"success"`
	CriticalSuccess int          `yaml:"critical_success"`
	Pools           dice.PoolSet `yaml:"dice_pool"`
}

// DefaultChoice returns the choice used for any field content leaves unset.
func DefaultChoice() Choice {
	return Choice{
		Title:           "An Action",
		Fail:            2,
		Success:         6,
		CriticalSuccess: 9,
		Pools:           dice.PoolSet{dice.NewPool(dice.New(dice.D12))},
	}
}

// ErrThresholdOrder is returned by Validate when thresholds are not strictly ascending.
var ErrThresholdOrder = errors.New("thresholds must satisfy fail < success < critical_success")

// Validate checks the threshold ordering and that every pool holds a known die.
func (c Choice) Validate() error {
	if !(c.Fail < c.Success && c.Success < c.CriticalSuccess) {
		return fmt.Errorf("action %q: %w (got %d/%d/%d)", c.Title, ErrThresholdOrder, c.Fail, c.Success, c.CriticalSuccess)
	}
	for i, p := range c.Pools {
		if p.Die.Kind == dice.KindUnknown {
			return fmt.Errorf("action %q: dice_pool[%d]: unknown die", c.Title, i)
		}
	}
	return nil
}

// Evaluate classifies roll against the thresholds. All comparisons are
// strict less-than, so a roll equal to a threshold belongs to the higher tier.
// The gap is measured from the threshold that decided the tier.
//
// Precondition: c.Fail < c.Success < c.CriticalSuccess.
// Postcondition: gap >= 0.
func (c Choice) Evaluate(roll int) (Result, int) {
	switch {
	case roll < c.Fail:
		return CriticalFail, c.Fail - roll
	case roll < c.Success:
		return Fail, c.Success - roll
	case roll < c.CriticalSuccess:
		return Success, roll - c.Success
	default:
		return CriticalSuccess, roll - c.CriticalSuccess
	}
}

// Tier returns only the result tier for roll.
func (c Choice) Tier(roll int) Result {
	r, _ := c.Evaluate(roll)
	return r
}

// UnmarshalYAML decodes a choice on top of DefaultChoice, so omitted fields
// keep their default values.
func (c *Choice) UnmarshalYAML(node *yaml.Node) error {
	type plain Choice
	out := plain(DefaultChoice())
	if err := node.Decode(&out); err != nil {
		return err
	}
	*c = Choice(out)
	return nil
}

// Resolution is the immutable outcome of resolving one action.
type Resolution struct {
	Roll   int
	Result Result
	Gap    int
	Detail dice.RollResult
}

// Resolve evaluates a committed roll against c.
//
// Postcondition: Roll == rolled.Total().
func (c Choice) Resolve(rolled dice.RollResult) Resolution {
	total := rolled.Total()
	res, gap := c.Evaluate(total)
	return Resolution{Roll: total, Result: res, Gap: gap, Detail: rolled}
}
