// Package power implements the closed set of single-use powers a player can
// apply to an action's dice pools during probability setup.
package power

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tactics/internal/game/dice"
)

// Variant identifies which power a Power value is.
// The zero value (VariantUnknown) is intentionally invalid.
type Variant int

const (
	VariantUnknown Variant = iota // zero value; intentionally invalid
	SplitDice
	AddDice
	Advantage
	StaticBonus
)

// Arity is the number of target pools a power consumes.
type Arity int

const (
	// ArityAction powers take no pool; they add to the action's pool set.
	ArityAction Arity = 0
	// ArityPool powers take exactly one pool and replace it.
	ArityPool Arity = 1
)

// Power is one capability from the closed variant set.
//
// Invariant: Die is only meaningful for AddDice; Bonus only for StaticBonus.
type Power struct {
	Variant Variant
	Die     dice.Die
	Bonus   int
}

// NewSplitDice returns a SplitDice power.
func NewSplitDice() Power { return Power{Variant: SplitDice} }

// NewAddDice returns a power that adds a Single pool of d.
func NewAddDice(d dice.Die) Power { return Power{Variant: AddDice, Die: d} }

// NewAdvantage returns an Advantage power.
func NewAdvantage() Power { return Power{Variant: Advantage} }

// NewStaticBonus returns a power that adds a constant pool worth v.
func NewStaticBonus(v int) Power { return Power{Variant: StaticBonus, Bonus: v} }

// splitInto maps a splittable die to the tier it splits into.
var splitInto = map[dice.Kind]dice.Kind{
	dice.D4:  dice.D2,
	dice.D6:  dice.D3,
	dice.D8:  dice.D4,
	dice.D12: dice.D6,
}

// Targets returns the number of pools p must be applied to.
//
// Postcondition: ArityAction for AddDice and StaticBonus, ArityPool otherwise.
func (p Power) Targets() Arity {
	switch p.Variant {
	case AddDice, StaticBonus:
		return ArityAction
	case SplitDice, Advantage:
		return ArityPool
	default:
		return ArityPool
	}
}

// ValidTargets reports whether p may be applied to candidates.
//
// SplitDice needs exactly one pool whose die is larger than the two smallest
// tiers and is not constant. Advantage needs exactly one pool that is not
// already in Advantage mode and is not constant. AddDice and StaticBonus need
// no candidates.
func (p Power) ValidTargets(candidates []dice.Pool) bool {
	switch p.Variant {
	case SplitDice:
		if len(candidates) != 1 {
			return false
		}
		k := candidates[0].Die.Kind
		return k != dice.D2 && k != dice.D3 && k != dice.Static && k != dice.KindUnknown
	case AddDice, StaticBonus:
		return len(candidates) == 0
	case Advantage:
		if len(candidates) != 1 {
			return false
		}
		c := candidates[0]
		return c.Mode != dice.Advantage && !c.Die.IsStatic()
	default:
		return false
	}
}

// Apply returns the pools that replace candidates (ArityPool) or are added to
// the action (ArityAction).
//
// Precondition: ValidTargets(candidates) is true. Apply does not check it.
// Postcondition: candidates is not modified.
func (p Power) Apply(candidates []dice.Pool) []dice.Pool {
	switch p.Variant {
	case SplitDice:
		var out []dice.Pool
		for _, c := range candidates {
			smaller, ok := splitInto[c.Die.Kind]
			if !ok {
				out = append(out, c)
				continue
			}
			half := dice.Pool{Die: dice.New(smaller), Mode: c.Mode}
			out = append(out, half, half)
		}
		return out
	case AddDice:
		return []dice.Pool{dice.NewPool(p.Die)}
	case Advantage:
		out := make([]dice.Pool, len(candidates))
		for i, c := range candidates {
			out[i] = c.WithAdvantage()
		}
		return out
	case StaticBonus:
		return []dice.Pool{dice.NewPool(dice.Constant(p.Bonus))}
	default:
		return nil
	}
}

// String returns a short label: "split", "add d4", "advantage", "+2".
func (p Power) String() string {
	switch p.Variant {
	case SplitDice:
		return "split"
	case AddDice:
		return "add " + p.Die.String()
	case Advantage:
		return "advantage"
	case StaticBonus:
		return fmt.Sprintf("%+d", p.Bonus)
	default:
		return "unknown"
	}
}

// UnmarshalYAML accepts "split_dice", "advantage", {add_dice: d6} and
// {static_bonus: 2}.
func (p *Power) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		switch strings.ToLower(node.Value) {
		case "split_dice", "splitdice":
			*p = NewSplitDice()
		case "advantage":
			*p = NewAdvantage()
		default:
			return fmt.Errorf("line %d: power: unknown power %q", node.Line, node.Value)
		}
		return nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: power: expected exactly one power entry", node.Line)
		}
		key, val := node.Content[0], node.Content[1]
		switch strings.ToLower(key.Value) {
		case "add_dice", "adddice":
			var d dice.Die
			if err := val.Decode(&d); err != nil {
				return fmt.Errorf("line %d: power: add_dice: %w", val.Line, err)
			}
			*p = NewAddDice(d)
		case "static_bonus", "staticbonus":
			var v int
			if err := val.Decode(&v); err != nil {
				return fmt.Errorf("line %d: power: static_bonus: %w", val.Line, err)
			}
			*p = NewStaticBonus(v)
		default:
			return fmt.Errorf("line %d: power: unknown power %q", key.Line, key.Value)
		}
		return nil
	default:
		return fmt.Errorf("line %d: power: unexpected YAML node", node.Line)
	}
}
