package content

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/encounter"
)

// Setup resolves the keys in d into an encounter setup.
//
// The player is chosen by faction. Challengers whose key is missing are
// skipped; the rest are added Count times each, in order, until the
// location's challenger slots are full.
//
// Postcondition: ok is false when the location or the player is missing.
func (l *Library) Setup(d EncounterDetails) (encounter.Setup, bool) {
	loc, ok := l.Location(d.Location)
	if !ok {
		return encounter.Setup{}, false
	}
	pl, ok := l.Player(d.PlayerFaction.PlayerKey())
	if !ok {
		return encounter.Setup{}, false
	}
	setup := encounter.Setup{
		Title:        d.Title,
		Introduction: d.Introduction,
		Location:     loc.Name,
		Player: encounter.Combatant{
			Name:      pl.Name,
			MaxHealth: pl.Health,
			Actions:   pl.CombatActions,
		},
	}
	for _, cc := range d.Challengers {
		if len(setup.Challengers) >= loc.ChallengerSlots {
			break
		}
		ch, ok := l.Challenger(cc.Key)
		if !ok {
			continue
		}
		for i := 0; i < cc.Count && len(setup.Challengers) < loc.ChallengerSlots; i++ {
			setup.Challengers = append(setup.Challengers, encounter.Combatant{
				Name:      ch.Name,
				MaxHealth: ch.Health,
				Actions:   ch.AvailableActions,
				Published: ch.PublishedActions,
			})
		}
	}
	l.logger.Debug("encounter setup resolved",
		zap.String("title", setup.Title),
		zap.String("location", setup.Location),
		zap.String("player", setup.Player.Name),
		zap.Int("challengers", len(setup.Challengers)),
	)
	return setup, true
}
