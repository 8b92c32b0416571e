package campaign

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/content"
	"github.com/cory-johannsen/tactics/internal/game/dice"
	"github.com/cory-johannsen/tactics/internal/game/power"
)

var (
	// ErrNoStory is returned when the library has no story or the story has
	// no phases.
	ErrNoStory = errors.New("campaign: story has no phases")
	// ErrNotActive is returned when the campaign is already won or lost.
	ErrNotActive = errors.New("campaign: not active")
	// ErrMissionActive is returned when starting a mission while one is in progress.
	ErrMissionActive = errors.New("campaign: a mission is already in progress")
	// ErrNoMission is returned by stage operations when no mission is in progress.
	ErrNoMission = errors.New("campaign: no mission in progress")
	// ErrMissionIncomplete is returned when completing a mission with stages left.
	ErrMissionIncomplete = errors.New("campaign: mission has stages remaining")
)

// Status is where the campaign stands.
type Status int

const (
	Active Status = iota
	Completed
	Lost
)

// String returns "active", "completed" or "lost".
func (s Status) String() string {
	switch s {
	case Completed:
		return "completed"
	case Lost:
		return "lost"
	default:
		return "active"
	}
}

// Campaign tracks story progress and owns the player's power inventory
// across encounters.
//
// Campaign is not safe for concurrent use.
type Campaign struct {
	lib     *content.Library
	story   content.Story
	phase   int
	round   int
	status  Status
	inv     *power.Inventory
	rewards power.RewardTable
	mission *Mission
	stage   int
	logger  *zap.Logger
}

// New starts a campaign at the first phase of lib's story.
//
// Precondition: lib and logger must be non-nil.
// Postcondition: Returns ErrNoStory when lib has no story with phases.
func New(lib *content.Library, inv *power.Inventory, logger *zap.Logger) (*Campaign, error) {
	story, ok := lib.Story()
	if !ok || len(story.Phases) == 0 {
		return nil, ErrNoStory
	}
	if inv == nil {
		inv = power.NewInventory()
	}
	logger.Info("campaign started", zap.String("story", story.Title), zap.Int("phases", len(story.Phases)))
	return &Campaign{
		lib:     lib,
		story:   story,
		inv:     inv,
		rewards: power.DefaultRewardTable(),
		logger:  logger,
	}, nil
}

// Status returns the campaign status.
func (c *Campaign) Status() Status { return c.status }

// PhaseIndex returns the zero-based index of the current phase.
func (c *Campaign) PhaseIndex() int { return c.phase }

// Phase returns the current phase.
func (c *Campaign) Phase() content.Phase { return c.story.Phases[c.phase] }

// PhaseRound returns how many missions were completed in the current phase.
func (c *Campaign) PhaseRound() int { return c.round }

// Inventory returns the player's powers.
func (c *Campaign) Inventory() *power.Inventory { return c.inv }

// Mission returns the mission in progress.
func (c *Campaign) Mission() (Mission, bool) {
	if c.mission == nil {
		return Mission{}, false
	}
	return *c.mission, true
}

// PotentialMissions generates the missions offered in the current phase: up
// to SimultaneousMissions distinct templates sampled from the phase.
// Templates missing from the library are skipped.
func (c *Campaign) PotentialMissions(src dice.Source) []Mission {
	if c.status != Active {
		return nil
	}
	p := c.Phase()
	var out []Mission
	for _, key := range sample(src, p.Missions, p.SimultaneousMissions) {
		tpl, ok := c.lib.Mission(key)
		if !ok {
			continue
		}
		out = append(out, GenerateMission(tpl, c.lib, src))
	}
	return out
}

// StartMission makes m the mission in progress at its first stage.
func (c *Campaign) StartMission(m Mission) error {
	if c.status != Active {
		return ErrNotActive
	}
	if c.mission != nil {
		return ErrMissionActive
	}
	c.mission = &m
	c.stage = 0
	c.logger.Info("mission started", zap.String("title", m.Title), zap.Int("stages", len(m.Stages)))
	return nil
}

// Stage returns the encounters offered by the current stage. ok is false
// when no mission is in progress or every stage has been played.
func (c *Campaign) Stage() ([]content.EncounterDetails, bool) {
	if c.mission == nil || c.stage >= len(c.mission.Stages) {
		return nil, false
	}
	return c.mission.Stages[c.stage], true
}

// ChooseEncounter picks option i of the current stage and moves the mission
// to its next stage.
func (c *Campaign) ChooseEncounter(i int) (content.EncounterDetails, error) {
	stage, ok := c.Stage()
	if !ok {
		return content.EncounterDetails{}, ErrNoMission
	}
	if i < 0 || i >= len(stage) {
		return content.EncounterDetails{}, fmt.Errorf("campaign: encounter option %d out of range [0,%d)", i, len(stage))
	}
	c.stage++
	return stage[i], nil
}

// MissionComplete reports whether every stage of the mission in progress
// has been played.
func (c *Campaign) MissionComplete() bool {
	return c.mission != nil && c.stage >= len(c.mission.Stages)
}

// CompleteMission grants power.RewardsPerMission rewards, closes the mission
// and counts it toward the phase. The phase advances once its minimum is met
// and either its maximum is reached or a coin flip says so; advancing past the
// last phase completes the campaign.
//
// Postcondition: On success the returned powers are in the inventory.
func (c *Campaign) CompleteMission(src dice.Source) ([]power.Power, error) {
	if c.mission == nil {
		return nil, ErrNoMission
	}
	if !c.MissionComplete() {
		return nil, ErrMissionIncomplete
	}
	rewards := c.rewards.Draw(src, power.RewardsPerMission)
	names := make([]string, 0, len(rewards))
	for _, p := range rewards {
		c.inv.Add(p)
		names = append(names, p.String())
	}
	c.logger.Info("mission complete",
		zap.String("title", c.mission.Title),
		zap.Strings("rewards", names),
	)
	c.mission = nil
	c.stage = 0
	c.round++
	c.checkPhase(src)
	return rewards, nil
}

// Fail ends the campaign as lost.
func (c *Campaign) Fail() {
	c.status = Lost
	c.mission = nil
	c.logger.Info("campaign lost", zap.Int("phase", c.phase), zap.Int("phase_round", c.round))
}

func (c *Campaign) checkPhase(src dice.Source) {
	p := c.Phase()
	if c.round < p.MinMissions {
		return
	}
	if c.round < p.MaxMissions && src.Intn(2) == 0 {
		return
	}
	if c.phase+1 >= len(c.story.Phases) {
		c.status = Completed
		c.logger.Info("campaign complete", zap.String("story", c.story.Title))
		return
	}
	c.phase++
	c.round = 0
	c.logger.Info("phase advanced", zap.Int("phase", c.phase))
}
