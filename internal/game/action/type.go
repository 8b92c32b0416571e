package action

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind selects how a resolution is consumed.
type Kind int

const (
	// Text actions are narrative only and never deal damage.
	Text Kind = iota
	// Attack actions deal damage derived from BaseDamage and the result tier.
	Attack
	// Script actions delegate damage to a named Lua hook.
	Script
)

// String returns "text", "attack" or "script".
func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Attack:
		return "attack"
	case Script:
		return "script"
	default:
		return "unknown"
	}
}

// Type is an action's consumption policy.
type Type struct {
	Kind       Kind
	BaseDamage int
	Hook       string
}

// TextType returns a Text action type.
func TextType() Type { return Type{Kind: Text} }

// AttackType returns an Attack action type dealing base damage.
func AttackType(base int) Type { return Type{Kind: Attack, BaseDamage: base} }

// ScriptType returns a Script action type calling hook with base damage.
func ScriptType(hook string, base int) Type { return Type{Kind: Script, Hook: hook, BaseDamage: base} }

// UnmarshalYAML accepts "text", {attack: {base_damage: N}} and
// {script: {hook: name, base_damage: N}}.
// Keys are case-insensitive. An empty node decodes to Text.
func (t *Type) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "" || strings.EqualFold(node.Value, "text") {
			*t = TextType()
			return nil
		}
		return fmt.Errorf("line %d: action_type: unknown type %q", node.Line, node.Value)
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: action_type: expected exactly one type entry", node.Line)
		}
		key, val := node.Content[0], node.Content[1]
		switch strings.ToLower(key.Value) {
		case "text":
			*t = TextType()
		case "attack":
			var body struct {
				BaseDamage int `yaml:"base_damage"`
			}
			if err := val.Decode(&body); err != nil {
				return fmt.Errorf("line %d: action_type: attack: %w", val.Line, err)
			}
			if body.BaseDamage < 0 {
				return fmt.Errorf("line %d: action_type: attack: base_damage must be >= 0", val.Line)
			}
			*t = AttackType(body.BaseDamage)
		case "script":
			var body struct {
				Hook       string `yaml:"hook"`
				BaseDamage int    `yaml:"base_damage"`
			}
			if err := val.Decode(&body); err != nil {
				return fmt.Errorf("line %d: action_type: script: %w", val.Line, err)
			}
			if body.Hook == "" {
				return fmt.Errorf("line %d: action_type: script: hook must not be empty", val.Line)
			}
			*t = ScriptType(body.Hook, body.BaseDamage)
		default:
			return fmt.Errorf("line %d: action_type: unknown type %q", key.Line, key.Value)
		}
		return nil
	default:
		return fmt.Errorf("line %d: action_type: unexpected YAML node", node.Line)
	}
}

// Definition is an action as authored in content: a choice plus its type.
type Definition struct {
	Choice Choice `yaml:"choice"`
	Type   Type   `yaml:"action_type"`
}

// Side identifies which participant owns an action.
type Side int

const (
	PlayerSide Side = iota
	ChallengerSide
)

// String returns "player" or "challenger".
func (s Side) String() string {
	if s == ChallengerSide {
		return "challenger"
	}
	return "player"
}

// Damage returns the damage an Attack resolution deals to the owner's target.
//
// A player's attack hurts the challenger when it succeeds: CriticalSuccess
// deals double, Success deals base. A challenger's attack hurts the player
// when the player's defense fails: CriticalFail deals double, Fail deals base.
// Text and Script types return 0; script damage comes from the hook.
//
// Postcondition: result >= 0.
func (t Type) Damage(side Side, r Result) int {
	if t.Kind != Attack {
		return 0
	}
	if side == ChallengerSide {
		switch r {
		case CriticalFail:
			return t.BaseDamage * 2
		case Fail:
			return t.BaseDamage
		default:
			return 0
		}
	}
	switch r {
	case CriticalSuccess:
		return t.BaseDamage * 2
	case Success:
		return t.BaseDamage
	default:
		return 0
	}
}
