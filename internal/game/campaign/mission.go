// Package campaign drives the story: phases, generated missions made of
// encounter stages, and the power rewards granted for completing a mission.
package campaign

import (
	"github.com/cory-johannsen/tactics/internal/game/content"
	"github.com/cory-johannsen/tactics/internal/game/dice"
)

// DefaultMissionTitle is used when a mission template lists no titles.
const DefaultMissionTitle = "Mission"

// EncountersPerStage is how many encounter options each mission stage offers.
const EncountersPerStage = 2

// Mission is a generated run of stages. Each stage offers a handful of
// encounters of which the player picks one.
type Mission struct {
	Title  string
	Stages [][]content.EncounterDetails
}

// GenerateMission builds a Mission from tpl.
//
// The title is sampled from tpl.Titles. Each stage samples up to
// EncountersPerStage distinct keys and resolves them through lib; keys lib
// does not know are dropped from the stage.
//
// Precondition: lib and src must be non-nil.
func GenerateMission(tpl content.MissionTemplate, lib *content.Library, src dice.Source) Mission {
	m := Mission{Title: DefaultMissionTitle}
	if len(tpl.Titles) > 0 {
		m.Title = tpl.Titles[src.Intn(len(tpl.Titles))]
	}
	for _, keys := range tpl.Encounters {
		var stage []content.EncounterDetails
		for _, k := range sample(src, keys, EncountersPerStage) {
			if d, ok := lib.Encounter(k); ok {
				stage = append(stage, d)
			}
		}
		m.Stages = append(m.Stages, stage)
	}
	return m
}

// sample returns up to n distinct elements of items in draw order.
// items is not modified.
func sample[T any](src dice.Source, items []T, n int) []T {
	pool := make([]T, len(items))
	copy(pool, items)
	n = min(n, len(pool))
	for i := 0; i < n; i++ {
		j := i + src.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}
