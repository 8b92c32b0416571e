package encounter

import "github.com/cory-johannsen/tactics/internal/game/action"

// Combatant is the content-side description of one participant.
type Combatant struct {
	Name string
	// MaxHealth of 0 means health is not tracked; only challengers may omit it.
	MaxHealth int
	// Actions are the player's combat actions, or the challenger's available actions.
	Actions []action.Definition
	// Published are challenger actions offered to the player each round.
	Published []action.Definition
}

// Setup is everything needed to start an encounter.
type Setup struct {
	Title        string
	Introduction string
	Location     string
	Player       Combatant
	Challengers  []Combatant
}

// Participant is a live player or challenger.
type Participant struct {
	ID        string
	Name      string
	Side      action.Side
	MaxHealth int
	Health    int

	actions   []action.Definition
	published []action.Definition
}

// TracksHealth reports whether damage applies to p.
func (p *Participant) TracksHealth() bool { return p.MaxHealth > 0 }

// ApplyDamage reduces Health by amount, flooring at zero.
//
// Precondition: amount >= 0.
// Postcondition: Health >= 0. No effect when health is not tracked.
func (p *Participant) ApplyDamage(amount int) {
	if !p.TracksHealth() {
		return
	}
	p.Health = max(p.Health-amount, 0)
}

// Defeated reports whether p tracks health and has none left.
func (p *Participant) Defeated() bool { return p.TracksHealth() && p.Health == 0 }
