// Package encounter drives one encounter through its phases: publishing
// actions, probability setup with powers, committing rolls, and resolving
// outcomes one at a time.
package encounter

import (
	"errors"
	"fmt"
)

// State is a phase of an encounter.
type State int

const (
	None State = iota
	Loading
	Introduction
	ActionChoice
	ProbabilitySetup
	OutcomeResolution
	CheckEncounterResolution
	EncounterResolved
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case None:
		return "none"
	case Loading:
		return "loading"
	case Introduction:
		return "introduction"
	case ActionChoice:
		return "action_choice"
	case ProbabilitySetup:
		return "probability_setup"
	case OutcomeResolution:
		return "outcome_resolution"
	case CheckEncounterResolution:
		return "check_encounter_resolution"
	case EncounterResolved:
		return "encounter_resolved"
	default:
		return "unknown"
	}
}

// Event triggers a state transition.
type Event int

const (
	EventStart     Event = iota // None -> Loading
	EventLoaded                 // Loading -> Introduction
	EventBegin                  // Introduction -> ActionChoice
	EventChoose                 // ActionChoice -> ProbabilitySetup
	EventConfirm                // ProbabilitySetup -> OutcomeResolution
	EventExhausted              // OutcomeResolution -> CheckEncounterResolution
	EventContinue               // CheckEncounterResolution -> ActionChoice
	EventFinish                 // CheckEncounterResolution -> EncounterResolved
	EventReset                  // any -> None
)

// String returns the event name.
func (e Event) String() string {
	switch e {
	case EventStart:
		return "start"
	case EventLoaded:
		return "loaded"
	case EventBegin:
		return "begin"
	case EventChoose:
		return "choose"
	case EventConfirm:
		return "confirm"
	case EventExhausted:
		return "exhausted"
	case EventContinue:
		return "continue"
	case EventFinish:
		return "finish"
	case EventReset:
		return "reset"
	default:
		return "unknown"
	}
}

// ErrInvalidTransition is returned by Advance for an event the current state
// does not accept.
var ErrInvalidTransition = errors.New("invalid encounter transition")

type edge struct {
	from State
	on   Event
}

var transitions = map[edge]State{
	{None, EventStart}:                        Loading,
	{Loading, EventLoaded}:                    Introduction,
	{Introduction, EventBegin}:                ActionChoice,
	{ActionChoice, EventChoose}:               ProbabilitySetup,
	{ProbabilitySetup, EventConfirm}:          OutcomeResolution,
	{OutcomeResolution, EventExhausted}:       CheckEncounterResolution,
	{CheckEncounterResolution, EventContinue}: ActionChoice,
	{CheckEncounterResolution, EventFinish}:   EncounterResolved,
}

// Machine is the single authority over an encounter's current state.
// The zero value starts in None.
type Machine struct {
	state State
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Advance applies e and returns the new state.
//
// Postcondition: On error the state is unchanged and the error wraps
// ErrInvalidTransition.
func (m *Machine) Advance(e Event) (State, error) {
	if e == EventReset {
		m.state = None
		return m.state, nil
	}
	next, ok := transitions[edge{m.state, e}]
	if !ok {
		return m.state, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, m.state, e)
	}
	m.state = next
	return next, nil
}
