// Package dice provides the die and dice-pool model for action rolls, the
// randomness abstraction every roll draws from, and roll-result audit types.
package dice

import (
	"fmt"
	"strings"
)

// Kind identifies one of the fixed die tiers or the constant die.
// The zero value (KindUnknown) is intentionally invalid.
type Kind int

const (
	KindUnknown Kind = iota // zero value; intentionally invalid
	D2
	D3
	D4
	D6
	D8
	D12
	Static
)

// Sides returns the face count of a uniform die kind.
//
// Postcondition: Returns 2, 3, 4, 6, 8 or 12 for uniform kinds; 0 for Static and KindUnknown.
func (k Kind) Sides() int {
	switch k {
	case D2:
		return 2
	case D3:
		return 3
	case D4:
		return 4
	case D6:
		return 6
	case D8:
		return 8
	case D12:
		return 12
	default:
		return 0
	}
}

// String returns the lowercase die notation, e.g. "d12".
func (k Kind) String() string {
	if s := k.Sides(); s > 0 {
		return fmt.Sprintf("d%d", s)
	}
	if k == Static {
		return "static"
	}
	return "unknown"
}

// Die is a single immutable die: a uniform kind, or a Static die that always
// yields Value.
//
// Invariant: Value is only meaningful when Kind == Static.
type Die struct {
	Kind  Kind
	Value int
}

// New returns a uniform die of kind k.
//
// Precondition: k is a uniform kind (D2..D12).
func New(k Kind) Die { return Die{Kind: k} }

// Constant returns a Static die worth value.
func Constant(value int) Die { return Die{Kind: Static, Value: value} }

// IsStatic reports whether d is a constant die.
func (d Die) IsStatic() bool { return d.Kind == Static }

// Roll draws one value for d.
//
// Uniform dice consume exactly one draw and return a value in [1, Sides()].
// Static dice return Value and consume no draw.
//
// Precondition: src must be non-nil; d.Kind must not be KindUnknown.
func (d Die) Roll(src Source) int {
	if d.Kind == Static {
		return d.Value
	}
	return src.Intn(d.Kind.Sides()) + 1
}

// Min returns the smallest value d can roll.
func (d Die) Min() int {
	if d.Kind == Static {
		return d.Value
	}
	return 1
}

// Max returns the largest value d can roll.
func (d Die) Max() int {
	if d.Kind == Static {
		return d.Value
	}
	return d.Kind.Sides()
}

// String returns "d6" for uniform dice and "+3" for static dice.
func (d Die) String() string {
	if d.Kind == Static {
		return fmt.Sprintf("%+d", d.Value)
	}
	return d.Kind.String()
}

// Mode controls how a Pool is rolled.
type Mode int

const (
	// Single rolls the die once.
	Single Mode = iota
	// Advantage rolls the die twice and keeps the higher value.
	Advantage
)

// String returns "single" or "advantage".
func (m Mode) String() string {
	if m == Advantage {
		return "advantage"
	}
	return "single"
}

// Pool is one die plus the mode it is rolled in. Pools are compared and
// copied by value.
type Pool struct {
	Die  Die
	Mode Mode
}

// NewPool returns a Single-mode pool of d.
func NewPool(d Die) Pool { return Pool{Die: d, Mode: Single} }

// WithAdvantage returns a copy of p in Advantage mode.
func (p Pool) WithAdvantage() Pool {
	p.Mode = Advantage
	return p
}

// Roll rolls p once.
//
// Advantage mode performs two independent die rolls and returns the maximum,
// consuming exactly two draws for uniform dice regardless of the values.
//
// Precondition: src must be non-nil.
func (p Pool) Roll(src Source) int {
	if p.Mode == Advantage {
		a := p.Die.Roll(src)
		b := p.Die.Roll(src)
		return max(a, b)
	}
	return p.Die.Roll(src)
}

// String returns the die notation, suffixed with " adv" for Advantage pools.
func (p Pool) String() string {
	if p.Mode == Advantage {
		return p.Die.String() + " adv"
	}
	return p.Die.String()
}

// EmptyRoll is the value an empty PoolSet rolls.
const EmptyRoll = 1

// PoolSet is the ordered collection of pools backing one action's roll.
// Order does not affect the sum but is kept stable for display.
type PoolSet []Pool

// Roll sums one roll of every pool in order.
//
// Postcondition: Returns EmptyRoll when s is empty, without consuming a draw.
func (s PoolSet) Roll(src Source) int {
	if len(s) == 0 {
		return EmptyRoll
	}
	total := 0
	for _, p := range s {
		total += p.Roll(src)
	}
	return total
}

// RollDetailed rolls s exactly like Roll and keeps the per-pool values.
//
// Postcondition: result.Total() == the value Roll would have returned for the same draws.
func (s PoolSet) RollDetailed(src Source) RollResult {
	values := make([]int, len(s))
	for i, p := range s {
		values[i] = p.Roll(src)
	}
	return RollResult{Expression: s.String(), Values: values}
}

// Clone returns an independent copy of s.
func (s PoolSet) Clone() PoolSet {
	if s == nil {
		return nil
	}
	out := make(PoolSet, len(s))
	copy(out, s)
	return out
}

// ReplaceAt returns a new set with the pool at i replaced by with, in place.
//
// Precondition: 0 <= i < len(s).
// Postcondition: s is not modified.
func (s PoolSet) ReplaceAt(i int, with []Pool) PoolSet {
	out := make(PoolSet, 0, len(s)-1+len(with))
	out = append(out, s[:i]...)
	out = append(out, with...)
	out = append(out, s[i+1:]...)
	return out
}

// Append returns a new set with pools added at the end.
//
// Postcondition: s is not modified.
func (s PoolSet) Append(pools ...Pool) PoolSet {
	out := make(PoolSet, 0, len(s)+len(pools))
	out = append(out, s...)
	return append(out, pools...)
}

// Range returns the smallest and largest sums s can roll.
func (s PoolSet) Range() (lo, hi int) {
	if len(s) == 0 {
		return EmptyRoll, EmptyRoll
	}
	for _, p := range s {
		lo += p.Die.Min()
		hi += p.Die.Max()
	}
	return lo, hi
}

// String joins the pools with " + ", e.g. "d12 + d6 adv + +3".
func (s PoolSet) String() string {
	if len(s) == 0 {
		return "(empty)"
	}
	parts := make([]string, len(s))
	for i, p := range s {
		parts[i] = p.String()
	}
	return strings.Join(parts, " + ")
}

// RollResult holds the audit trail of one pool-set roll.
//
// Postcondition: Total() == sum(Values), or EmptyRoll when Values is empty.
type RollResult struct {
	Expression string // pool set notation, e.g. "d12 + +3"
	Values     []int  // one value per pool, in pool order
}

// Total returns the summed roll.
func (r RollResult) Total() int {
	if len(r.Values) == 0 {
		return EmptyRoll
	}
	total := 0
	for _, v := range r.Values {
		total += v
	}
	return total
}

// String returns a human-readable audit string in the format:
//
//	"d12 + +3 → [4 3] = 7"
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	return fmt.Sprintf("%s → %v = %d", r.Expression, r.Values, r.Total())
}
