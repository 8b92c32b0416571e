package encounter

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/action"
	"github.com/cory-johannsen/tactics/internal/game/dice"
	"github.com/cory-johannsen/tactics/internal/game/power"
	"github.com/cory-johannsen/tactics/internal/game/probability"
)

// NamePlaceholder in action titles and content is replaced by the challenger's name.
const NamePlaceholder = "**"

var (
	// ErrUnknownAction is returned when an action ID is not part of the current round.
	ErrUnknownAction = errors.New("unknown action")
	// ErrNotChoosable is returned when choosing an action that does not belong to the player.
	ErrNotChoosable = errors.New("action is not a player choice")
	// ErrTargetingActive is returned by Confirm while a power is selected.
	ErrTargetingActive = errors.New("a power is selected; cancel targeting first")
	// ErrNoActiveResolution is returned by Acknowledge when no resolution is active.
	ErrNoActiveResolution = errors.New("no active resolution")
)

// DamageHook computes damage for Script actions.
type DamageHook interface {
	ResolutionDamage(hook string, res action.Resolution, base int) (int, error)
}

// Options tune an encounter. Zero fields take their defaults.
type Options struct {
	Samples int
	Weights probability.Weights
	Hook    DamageHook
}

// Action is one published action in the current round.
type Action struct {
	ID       string
	OwnerID  string
	TargetID string
	Side     action.Side
	Choice   action.Choice
	Type     action.Type
	Pools    dice.PoolSet
}

type pending struct {
	Action
	changed bool
	vis     *probability.Visualizer
}

// Outcome is the consumed result of one acknowledged resolution.
type Outcome struct {
	Action       Action
	Resolution   action.Resolution
	Damage       int
	TargetName   string
	TargetHealth int
}

// Encounter is the turn-level controller for one encounter.
//
// Encounter is not safe for concurrent use; callers drive it one step at a time.
type Encounter struct {
	machine     Machine
	setup       Setup
	player      *Participant
	challengers []*Participant
	actions     []*pending
	resolutions map[string]action.Resolution
	completed   map[string]bool
	active      string
	target      *targeting
	inventory   *power.Inventory
	round       int
	failed      bool
	opts        Options
	logger      *zap.Logger
}

// New creates an encounter in state None.
//
// Precondition: setup.Player.MaxHealth > 0; logger is non-nil.
// Postcondition: A nil inv is replaced with an empty inventory.
func New(setup Setup, inv *power.Inventory, opts Options, logger *zap.Logger) *Encounter {
	if inv == nil {
		inv = power.NewInventory()
	}
	if opts.Samples <= 0 {
		opts.Samples = probability.DefaultSamples
	}
	if opts.Weights.New+opts.Weights.Stored <= 0 {
		opts.Weights = probability.DefaultWeights
	}
	e := &Encounter{
		setup:       setup,
		player:      newParticipant(setup.Player, action.PlayerSide),
		resolutions: make(map[string]action.Resolution),
		completed:   make(map[string]bool),
		inventory:   inv,
		opts:        opts,
		logger:      logger.With(zap.String("encounter", setup.Title)),
	}
	for _, c := range setup.Challengers {
		e.challengers = append(e.challengers, newParticipant(c, action.ChallengerSide))
	}
	return e
}

func newParticipant(c Combatant, side action.Side) *Participant {
	return &Participant{
		ID:        uuid.New().String(),
		Name:      c.Name,
		Side:      side,
		MaxHealth: c.MaxHealth,
		Health:    c.MaxHealth,
		actions:   c.Actions,
		published: c.Published,
	}
}

// State returns the current phase.
func (e *Encounter) State() State { return e.machine.State() }

// Round returns the 1-based round number, or 0 before Introduce.
func (e *Encounter) Round() int { return e.round }

// Failed reports whether the player was reduced to zero health.
func (e *Encounter) Failed() bool { return e.failed }

// Title returns the encounter title.
func (e *Encounter) Title() string { return e.setup.Title }

// Introduction returns the introduction text.
func (e *Encounter) Introduction() string { return e.setup.Introduction }

// Location returns the location name.
func (e *Encounter) Location() string { return e.setup.Location }

// Inventory returns the player's power inventory.
func (e *Encounter) Inventory() *power.Inventory { return e.inventory }

// Player returns a copy of the player participant.
func (e *Encounter) Player() Participant { return *e.player }

// Challengers returns copies of the challengers in setup order.
func (e *Encounter) Challengers() []Participant {
	out := make([]Participant, len(e.challengers))
	for i, c := range e.challengers {
		out[i] = *c
	}
	return out
}

// Completed reports whether the challenger with the given ID is done.
func (e *Encounter) Completed(id string) bool { return e.completed[id] }

func (e *Encounter) advance(ev Event) error {
	from := e.machine.State()
	to, err := e.machine.Advance(ev)
	if err != nil {
		e.logger.Warn("rejected encounter event", zap.Stringer("state", from), zap.Stringer("event", ev))
		return err
	}
	e.logger.Info("encounter state", zap.Stringer("from", from), zap.Stringer("to", to))
	return nil
}

func (e *Encounter) require(s State, op string) error {
	if cur := e.machine.State(); cur != s {
		return fmt.Errorf("%w: %s in %s", ErrInvalidTransition, op, cur)
	}
	return nil
}

// Begin loads the encounter and moves to Introduction.
func (e *Encounter) Begin() error {
	if err := e.advance(EventStart); err != nil {
		return err
	}
	return e.advance(EventLoaded)
}

// Introduce leaves the introduction, starts round 1 and publishes actions.
//
// Precondition: src is non-nil.
func (e *Encounter) Introduce(src dice.Source) error {
	if err := e.advance(EventBegin); err != nil {
		return err
	}
	e.round = 1
	e.publish(src)
	return nil
}

// PublishActions discards the round's actions and publishes a fresh set.
//
// Every challenger that is not completed samples one of its available actions
// against the player and offers its published actions to the player. The player
// gets each combat action once per live challenger whose health is tracked.
func (e *Encounter) PublishActions(src dice.Source) error {
	if err := e.require(ActionChoice, "publish"); err != nil {
		return err
	}
	e.publish(src)
	return nil
}

func (e *Encounter) publish(src dice.Source) {
	e.actions = nil
	clear(e.resolutions)
	e.active = ""
	e.target = nil

	for _, ch := range e.challengers {
		if e.completed[ch.ID] || len(ch.actions) == 0 {
			continue
		}
		def := ch.actions[src.Intn(len(ch.actions))]
		e.addAction(ch, e.player, action.ChallengerSide, def, ch.Name)
		for _, pub := range ch.published {
			e.addAction(e.player, ch, action.PlayerSide, pub, ch.Name)
		}
	}
	for _, ch := range e.challengers {
		if e.completed[ch.ID] || !ch.TracksHealth() {
			continue
		}
		for _, def := range e.player.actions {
			e.addAction(e.player, ch, action.PlayerSide, def, ch.Name)
		}
	}
	e.logger.Info("actions published", zap.Int("round", e.round), zap.Int("actions", len(e.actions)))
}

func (e *Encounter) addAction(owner, target *Participant, side action.Side, def action.Definition, name string) {
	choice := def.Choice
	choice.Title = strings.ReplaceAll(choice.Title, NamePlaceholder, name)
	choice.Content = strings.ReplaceAll(choice.Content, NamePlaceholder, name)
	choice.Pools = def.Choice.Pools.Clone()
	e.actions = append(e.actions, &pending{Action: Action{
		ID:       uuid.New().String(),
		OwnerID:  owner.ID,
		TargetID: target.ID,
		Side:     side,
		Choice:   choice,
		Type:     def.Type,
		Pools:    choice.Pools.Clone(),
	}})
}

// Actions returns snapshots of the round's actions in publish order.
func (e *Encounter) Actions() []Action {
	out := make([]Action, len(e.actions))
	for i, p := range e.actions {
		out[i] = p.snapshot()
	}
	return out
}

// PlayerChoices returns the player's actions currently on offer.
func (e *Encounter) PlayerChoices() []Action {
	var out []Action
	for _, p := range e.actions {
		if p.Side == action.PlayerSide {
			out = append(out, p.snapshot())
		}
	}
	return out
}

func (p *pending) snapshot() Action {
	a := p.Action
	a.Pools = p.Pools.Clone()
	return a
}

func (e *Encounter) find(id string) *pending {
	for _, p := range e.actions {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ChooseAction commits the player to one action. Other player actions are
// discarded; challenger actions stay pending. Each pending action's pool set
// starts from its choice.
//
// Postcondition: On error nothing changes.
func (e *Encounter) ChooseAction(id string) error {
	if err := e.require(ActionChoice, "choose"); err != nil {
		return err
	}
	chosen := e.find(id)
	if chosen == nil {
		return fmt.Errorf("%w: %s", ErrUnknownAction, id)
	}
	if chosen.Side != action.PlayerSide {
		return fmt.Errorf("%w: %s", ErrNotChoosable, chosen.Choice.Title)
	}
	e.actions = slices.DeleteFunc(e.actions, func(p *pending) bool {
		return p.Side == action.PlayerSide && p.ID != id
	})
	for _, p := range e.actions {
		p.Pools = p.Choice.Pools.Clone()
		p.changed = true
		p.vis = probability.NewVisualizer(e.opts.Samples, e.opts.Weights, e.logger)
	}
	e.logger.Info("action chosen", zap.String("action", chosen.Choice.Title))
	return e.advance(EventChoose)
}

// RefreshEstimates re-samples every pending action. An action whose pool set
// changed since the last refresh gets a fresh estimate; others are blended.
//
// Precondition: src should be the simulation stream, never the commit stream.
// Postcondition: Returns nil outside ProbabilitySetup.
func (e *Encounter) RefreshEstimates(src dice.Source) map[string]probability.Estimate {
	if e.machine.State() != ProbabilitySetup {
		return nil
	}
	out := make(map[string]probability.Estimate, len(e.actions))
	for _, p := range e.actions {
		out[p.ID] = p.vis.Refresh(p.Pools, p.changed, src)
		p.changed = false
	}
	return out
}

// Estimate returns the stored estimate for an action.
func (e *Encounter) Estimate(id string) (probability.Estimate, bool) {
	p := e.find(id)
	if p == nil || p.vis == nil {
		return nil, false
	}
	return p.vis.Estimate(), true
}

// Confirm rolls every pending action exactly once and stores its resolution.
//
// Precondition: roller draws from the commit stream.
// Postcondition: On success every pending action has a resolution and the
// state is OutcomeResolution.
func (e *Encounter) Confirm(roller *dice.Roller) error {
	if err := e.require(ProbabilitySetup, "confirm"); err != nil {
		return err
	}
	if e.target != nil {
		return ErrTargetingActive
	}
	for _, p := range e.actions {
		res := p.Choice.Resolve(roller.Roll(p.Pools))
		e.resolutions[p.ID] = res
		e.logger.Info("action resolved",
			zap.String("action", p.Choice.Title),
			zap.Stringer("side", p.Side),
			zap.Int("roll", res.Roll),
			zap.Stringer("result", res.Result),
			zap.Int("gap", res.Gap),
		)
	}
	return e.advance(EventConfirm)
}

// NextResolution returns the active resolution, selecting one if none is
// active. Challenger actions are selected before player actions. When nothing
// remains the encounter moves to CheckEncounterResolution and ok is false.
func (e *Encounter) NextResolution() (a Action, res action.Resolution, ok bool, err error) {
	if err := e.require(OutcomeResolution, "next resolution"); err != nil {
		return Action{}, action.Resolution{}, false, err
	}
	if e.active == "" {
		e.active = e.pickResolved()
	}
	if e.active == "" {
		return Action{}, action.Resolution{}, false, e.advance(EventExhausted)
	}
	p := e.find(e.active)
	return p.snapshot(), e.resolutions[p.ID], true, nil
}

func (e *Encounter) pickResolved() string {
	fallback := ""
	for _, p := range e.actions {
		if _, ok := e.resolutions[p.ID]; !ok {
			continue
		}
		if p.Side == action.ChallengerSide {
			return p.ID
		}
		if fallback == "" {
			fallback = p.ID
		}
	}
	return fallback
}

// Acknowledge consumes the active resolution: damage is applied according to
// the action type, the action leaves the round and the slot is cleared.
// Challengers reduced to zero health are marked completed.
func (e *Encounter) Acknowledge() (Outcome, error) {
	if err := e.require(OutcomeResolution, "acknowledge"); err != nil {
		return Outcome{}, err
	}
	if e.active == "" {
		return Outcome{}, ErrNoActiveResolution
	}
	p := e.find(e.active)
	res := e.resolutions[p.ID]
	dmg := e.damage(p, res)
	target := e.participant(p.TargetID)
	out := Outcome{Action: p.snapshot(), Resolution: res, Damage: dmg}
	if target != nil {
		target.ApplyDamage(dmg)
		out.TargetName = target.Name
		out.TargetHealth = target.Health
	}

	delete(e.resolutions, p.ID)
	e.actions = slices.DeleteFunc(e.actions, func(q *pending) bool { return q.ID == p.ID })
	e.active = ""
	e.markCompleted()

	e.logger.Info("resolution acknowledged",
		zap.String("action", out.Action.Choice.Title),
		zap.String("result", res.Result.Narrative()),
		zap.Int("damage", dmg),
		zap.String("target", out.TargetName),
	)
	return out, nil
}

func (e *Encounter) damage(p *pending, res action.Resolution) int {
	switch p.Type.Kind {
	case action.Attack:
		return p.Type.Damage(p.Side, res.Result)
	case action.Script:
		if e.opts.Hook == nil {
			e.logger.Warn("script action without a hook runner", zap.String("hook", p.Type.Hook))
			return 0
		}
		dmg, err := e.opts.Hook.ResolutionDamage(p.Type.Hook, res, p.Type.BaseDamage)
		if err != nil {
			e.logger.Warn("damage hook failed", zap.String("hook", p.Type.Hook), zap.Error(err))
			return 0
		}
		return max(dmg, 0)
	default:
		return 0
	}
}

func (e *Encounter) participant(id string) *Participant {
	if e.player.ID == id {
		return e.player
	}
	for _, c := range e.challengers {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (e *Encounter) markCompleted() {
	for _, c := range e.challengers {
		if c.Defeated() && !e.completed[c.ID] {
			e.completed[c.ID] = true
			e.logger.Info("challenger reduced to zero", zap.String("challenger", c.Name))
		}
	}
	if e.player.Defeated() {
		e.failed = true
	}
}

// CheckResolution ends the encounter when every challenger is completed or
// the player is defeated; otherwise it starts the next round and publishes
// actions. Challengers whose health is not tracked complete after the round
// they took part in.
func (e *Encounter) CheckResolution(src dice.Source) (State, error) {
	if err := e.require(CheckEncounterResolution, "check resolution"); err != nil {
		return e.machine.State(), err
	}
	for _, c := range e.challengers {
		if !c.TracksHealth() {
			e.completed[c.ID] = true
		}
	}
	remaining := 0
	for _, c := range e.challengers {
		if !e.completed[c.ID] {
			remaining++
		}
	}
	if e.failed || remaining == 0 {
		e.logger.Info("encounter resolved", zap.Bool("failed", e.failed), zap.Int("rounds", e.round))
		return EncounterResolved, e.advance(EventFinish)
	}
	if err := e.advance(EventContinue); err != nil {
		return e.machine.State(), err
	}
	e.round++
	e.publish(src)
	return ActionChoice, nil
}
