// Package content loads encounter content from YAML: challengers, players,
// locations, encounter templates, mission templates and the story.
package content

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tactics/internal/game/action"
)

// Faction selects which player definition an encounter uses.
type Faction int

const (
	Knights Faction = iota
	Druids
)

// PlayerKey returns the players key for f.
func (f Faction) PlayerKey() string {
	if f == Druids {
		return "player_druid"
	}
	return "player_knight"
}

// String returns "Knights" or "Druids".
func (f Faction) String() string {
	if f == Druids {
		return "Druids"
	}
	return "Knights"
}

// UnmarshalYAML accepts "Knights" or "Druids", case-insensitive.
func (f *Faction) UnmarshalYAML(node *yaml.Node) error {
	switch strings.ToLower(node.Value) {
	case "knights", "knight":
		*f = Knights
	case "druids", "druid":
		*f = Druids
	default:
		return fmt.Errorf("line %d: unknown faction %q", node.Line, node.Value)
	}
	return nil
}

// Challenger is an opposing participant template.
type Challenger struct {
	Name             string              `yaml:"name"`
	AvailableActions []action.Definition `yaml:"available_actions"`
	PublishedActions []action.Definition `yaml:"published_actions"`
	// Health of 0 means the challenger's health is not tracked.
	Health int `yaml:"health"`
}

// Player is a player character template.
type Player struct {
	Name          string              `yaml:"name"`
	CombatActions []action.Definition `yaml:"combat_actions"`
	Health        int                 `yaml:"health"`
}

// Location is where an encounter takes place.
type Location struct {
	Name            string `yaml:"name"`
	ChallengerSlots int    `yaml:"challenger_slots"`
}

// ChallengerCount asks for Count copies of the challenger at Key.
type ChallengerCount struct {
	Count int
	Key   string
}

// UnmarshalYAML accepts a [count, key] pair or a {count, key} mapping.
func (c *ChallengerCount) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: challenger entry must be [count, key]", node.Line)
		}
		if err := node.Content[0].Decode(&c.Count); err != nil {
			return fmt.Errorf("line %d: challenger count: %w", node.Line, err)
		}
		return node.Content[1].Decode(&c.Key)
	case yaml.MappingNode:
		var raw struct {
			Count int    `yaml:"count"`
			Key   string `yaml:"key"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		c.Count, c.Key = raw.Count, raw.Key
		return nil
	default:
		return fmt.Errorf("line %d: challenger entry must be [count, key]", node.Line)
	}
}

// EncounterDetails is an encounter template before content keys are resolved.
type EncounterDetails struct {
	Title         string            `yaml:"title"`
	Introduction  string            `yaml:"introduction"`
	PlayerFaction Faction           `yaml:"player_faction"`
	Challengers   []ChallengerCount `yaml:"challengers"`
	Location      string            `yaml:"location"`
}

// DefaultEncounterDetails is used for fields an encounter template omits.
func DefaultEncounterDetails() EncounterDetails {
	return EncounterDetails{
		Title:         "An Encounter",
		Introduction:  "Let me introduce myself",
		PlayerFaction: Knights,
		Challengers:   []ChallengerCount{{Count: 1, Key: "monster"}},
		Location:      "grass",
	}
}

// UnmarshalYAML decodes on top of DefaultEncounterDetails.
func (d *EncounterDetails) UnmarshalYAML(node *yaml.Node) error {
	type plain EncounterDetails
	out := plain(DefaultEncounterDetails())
	if err := node.Decode(&out); err != nil {
		return err
	}
	*d = EncounterDetails(out)
	return nil
}

// MissionTemplate lists candidate titles and, per stage, candidate encounter keys.
type MissionTemplate struct {
	Titles     []string   `yaml:"titles"`
	Encounters [][]string `yaml:"encounters"`
}

// Phase is one chapter of the story.
type Phase struct {
	MinMissions          int      `yaml:"min_missions"`
	MaxMissions          int      `yaml:"max_missions"`
	SimultaneousMissions int      `yaml:"simultaneous_missions"`
	Missions             []string `yaml:"missions"`
}

// Story is the ordered list of phases a campaign moves through.
type Story struct {
	Title  string  `yaml:"title"`
	Phases []Phase `yaml:"phases"`
}
