package main

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/action"
	"github.com/cory-johannsen/tactics/internal/game/campaign"
	"github.com/cory-johannsen/tactics/internal/game/content"
	"github.com/cory-johannsen/tactics/internal/game/dice"
	"github.com/cory-johannsen/tactics/internal/game/encounter"
	"github.com/cory-johannsen/tactics/internal/game/power"
	"github.com/cory-johannsen/tactics/internal/game/probability"
)

// errRoundLimit is returned when an encounter outlasts the runner's round cap.
var errRoundLimit = errors.New("encounter exceeded the round limit")

// runner plays encounters headlessly: it always picks the first offered
// choice and spends at most one power per round.
type runner struct {
	lib       *content.Library
	streams   dice.Streams
	roller    *dice.Roller
	opts      encounter.Options
	maxRounds int
	usePowers bool
	out       io.Writer
	logger    *zap.Logger
}

// runEncounter plays d to the end with inv as the player's powers.
//
// Postcondition: won is false when the player was defeated.
func (r *runner) runEncounter(d content.EncounterDetails, inv *power.Inventory) (won bool, err error) {
	setup, ok := r.lib.Setup(d)
	if !ok {
		return false, fmt.Errorf("encounter %q: location or player missing", d.Title)
	}
	enc := encounter.New(setup, inv, r.opts, r.logger)
	if err := enc.Begin(); err != nil {
		return false, err
	}
	fmt.Fprintf(r.out, "== %s (%s) ==\n%s\n", enc.Title(), enc.Location(), enc.Introduction())
	if err := enc.Introduce(r.streams.Commit); err != nil {
		return false, err
	}

	for enc.State() != encounter.EncounterResolved {
		if enc.Round() > r.maxRounds {
			return false, fmt.Errorf("%s: %w (%d)", enc.Title(), errRoundLimit, r.maxRounds)
		}
		if err := r.playRound(enc); err != nil {
			return false, err
		}
	}
	won = !enc.Failed()
	fmt.Fprintf(r.out, "-- %s after %d round(s): %s\n", enc.Title(), enc.Round(), verdict(won))
	return won, nil
}

func (r *runner) playRound(enc *encounter.Encounter) error {
	choices := enc.PlayerChoices()
	if len(choices) == 0 {
		return fmt.Errorf("%s: round %d offers the player no actions", enc.Title(), enc.Round())
	}
	pick := choices[0]
	if err := enc.ChooseAction(pick.ID); err != nil {
		return err
	}
	if r.usePowers {
		r.spendPower(enc, pick.ID)
	}
	enc.RefreshEstimates(r.streams.Simulation)
	for _, a := range enc.Actions() {
		est, _ := enc.Estimate(a.ID)
		fmt.Fprintf(r.out, "round %d: %q [%s] success ~%.0f%%\n",
			enc.Round(), a.Choice.Title, a.Pools, 100*successShare(est, a.Choice))
	}
	if err := enc.Confirm(r.roller); err != nil {
		return err
	}
	for {
		_, _, ok, err := enc.NextResolution()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		o, err := enc.Acknowledge()
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "  %s rolled %d: %s", o.Action.Choice.Title, o.Resolution.Roll, o.Resolution.Result.Narrative())
		if o.Damage > 0 {
			fmt.Fprintf(r.out, " (%d damage, %s at %d)", o.Damage, o.TargetName, o.TargetHealth)
		}
		fmt.Fprintln(r.out)
	}
	_, err := enc.CheckResolution(r.streams.Commit)
	return err
}

// spendPower applies the first inventory power that has a valid target on
// actionID.
func (r *runner) spendPower(enc *encounter.Encounter, actionID string) {
	var pools dice.PoolSet
	for _, a := range enc.Actions() {
		if a.ID == actionID {
			pools = a.Pools
		}
	}
	for _, inst := range enc.Inventory().All() {
		if !enc.SelectPower(inst.ID) {
			continue
		}
		if inst.Power.Targets() == power.ArityAction {
			if enc.TargetAction(actionID) {
				return
			}
		} else {
			for i := range pools {
				if enc.TargetPool(actionID, i) {
					return
				}
			}
		}
		enc.CancelTargeting()
	}
}

// successShare is the estimated share of rolls at or above the success
// threshold.
func successShare(est probability.Estimate, c action.Choice) float64 {
	var total, good float64
	for _, b := range est.Tiers(c) {
		total += b.Rate
		if b.Tier >= action.Success {
			good += b.Rate
		}
	}
	if total == 0 {
		return 0
	}
	return good / total
}

func verdict(won bool) string {
	if won {
		return "victory"
	}
	return "defeat"
}

// runCampaign plays the story from its first phase, always taking the first
// offered mission and the first encounter of each stage.
func (r *runner) runCampaign() (campaign.Status, error) {
	c, err := campaign.New(r.lib, power.NewInventory(), r.logger)
	if err != nil {
		return campaign.Active, err
	}
	for c.Status() == campaign.Active {
		offered := c.PotentialMissions(r.streams.Commit)
		if len(offered) == 0 {
			return c.Status(), fmt.Errorf("phase %d offers no missions", c.PhaseIndex())
		}
		if err := c.StartMission(offered[0]); err != nil {
			return c.Status(), err
		}
		fmt.Fprintf(r.out, "### %s (phase %d)\n", offered[0].Title, c.PhaseIndex()+1)
		for !c.MissionComplete() {
			d, err := c.ChooseEncounter(0)
			if err != nil {
				return c.Status(), err
			}
			won, err := r.runEncounter(d, c.Inventory())
			if err != nil {
				return c.Status(), err
			}
			if !won {
				c.Fail()
				break
			}
		}
		if c.Status() != campaign.Active {
			break
		}
		rewards, err := c.CompleteMission(r.streams.Commit)
		if err != nil {
			return c.Status(), err
		}
		fmt.Fprintf(r.out, "### %s complete, rewards: %v\n", offered[0].Title, rewards)
	}
	fmt.Fprintf(r.out, "campaign %s\n", c.Status())
	return c.Status(), nil
}
