package encounter

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/dice"
	"github.com/cory-johannsen/tactics/internal/game/power"
)

type targeting struct {
	powerID string
	power   power.Power
}

// SelectPower starts targeting with the inventory power id. Selecting another
// power replaces the current selection.
//
// Postcondition: Returns false, with no change, outside ProbabilitySetup or
// when id is not in the inventory.
func (e *Encounter) SelectPower(id string) bool {
	if e.machine.State() != ProbabilitySetup {
		return false
	}
	p, ok := e.inventory.Get(id)
	if !ok {
		e.logger.Warn("unknown power selected", zap.String("power", id))
		return false
	}
	e.target = &targeting{powerID: id, power: p}
	return true
}

// Targeting returns the selected power, if any.
func (e *Encounter) Targeting() (power.Power, bool) {
	if e.target == nil {
		return power.Power{}, false
	}
	return e.target.power, true
}

// CancelTargeting drops the selected power. The power stays in the inventory.
func (e *Encounter) CancelTargeting() { e.target = nil }

// TargetPool applies the selected single-pool power to pool index of an
// action, replacing that pool in place with the power's output.
//
// Postcondition: On false nothing changes: the power stays selected and in
// the inventory, and the pool set is untouched.
func (e *Encounter) TargetPool(actionID string, index int) bool {
	p, ok := e.targetable(actionID, power.ArityPool)
	if !ok {
		return false
	}
	if index < 0 || index >= len(p.Pools) {
		e.reject(actionID, "pool index out of range")
		return false
	}
	candidates := []dice.Pool{p.Pools[index]}
	if !e.target.power.ValidTargets(candidates) {
		e.reject(actionID, "invalid pool for power")
		return false
	}
	p.Pools = p.Pools.ReplaceAt(index, e.target.power.Apply(candidates))
	e.consume(p)
	return true
}

// TargetAction applies the selected action-wide power to an action, appending
// the power's output pools.
//
// Postcondition: On false nothing changes.
func (e *Encounter) TargetAction(actionID string) bool {
	p, ok := e.targetable(actionID, power.ArityAction)
	if !ok {
		return false
	}
	if !e.target.power.ValidTargets(nil) {
		e.reject(actionID, "invalid action for power")
		return false
	}
	p.Pools = p.Pools.Append(e.target.power.Apply(nil)...)
	e.consume(p)
	return true
}

func (e *Encounter) targetable(actionID string, arity power.Arity) (*pending, bool) {
	if e.machine.State() != ProbabilitySetup || e.target == nil {
		return nil, false
	}
	if e.target.power.Targets() != arity {
		e.reject(actionID, "power takes a different target")
		return nil, false
	}
	p := e.find(actionID)
	if p == nil {
		e.reject(actionID, "unknown action")
		return nil, false
	}
	return p, true
}

func (e *Encounter) consume(p *pending) {
	e.inventory.Take(e.target.powerID)
	e.logger.Info("power applied",
		zap.Stringer("power", e.target.power),
		zap.String("action", p.Choice.Title),
		zap.String("pools", p.Pools.String()),
	)
	p.changed = true
	e.target = nil
}

func (e *Encounter) reject(actionID, reason string) {
	e.logger.Warn("power targeting rejected",
		zap.Stringer("power", e.target.power),
		zap.String("action", actionID),
		zap.String("reason", reason),
	)
}
