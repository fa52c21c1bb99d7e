// Package lifecycle is the campaign state machine: named statuses, named
// events and the table of legal transitions between them.
package lifecycle

import (
	"errors"
	"fmt"
	"sort"
)

var ErrInvalidTransition = errors.New("invalid campaign status transition")

// Status is a campaign lifecycle state
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

// Event names a lifecycle transition
type Event string

const (
	EventPrepareScheduled Event = "prepare_scheduled"
	EventPrepareImmediate Event = "prepare_immediate"
	EventActivate         Event = "activate"
	EventComplete         Event = "complete"
	EventStart            Event = "start"
	EventPause            Event = "pause"
	EventResume           Event = "resume"
	EventCancel           Event = "cancel"
)

// Owner identifies which component is allowed to fire an event
type Owner string

const (
	OwnerResolver   Owner = "resolver"
	OwnerDispatcher Owner = "dispatcher"
	OwnerOperator   Owner = "operator"
)

type transition struct {
	from  []Status
	to    Status
	owner Owner
}

var transitions = map[Event]transition{
	EventPrepareScheduled: {from: []Status{StatusDraft}, to: StatusScheduled, owner: OwnerResolver},
	EventPrepareImmediate: {from: []Status{StatusDraft}, to: StatusRunning, owner: OwnerResolver},
	EventActivate:         {from: []Status{StatusScheduled}, to: StatusRunning, owner: OwnerDispatcher},
	EventComplete:         {from: []Status{StatusRunning}, to: StatusCompleted, owner: OwnerDispatcher},
	EventStart:            {from: []Status{StatusScheduled}, to: StatusRunning, owner: OwnerOperator},
	EventPause:            {from: []Status{StatusRunning}, to: StatusPaused, owner: OwnerOperator},
	EventResume:           {from: []Status{StatusPaused}, to: StatusRunning, owner: OwnerOperator},
	EventCancel:           {from: []Status{StatusScheduled, StatusRunning, StatusPaused}, to: StatusCanceled, owner: OwnerOperator},
}

// Transition returns the status reached by firing ev from `from`.
func Transition(from Status, ev Event) (Status, error) {
	t, ok := transitions[ev]
	if !ok {
		return "", fmt.Errorf("unknown event %q: %w", ev, ErrInvalidTransition)
	}
	for _, s := range t.from {
		if s == from {
			return t.to, nil
		}
	}
	return "", fmt.Errorf("cannot %s a %s campaign: %w", ev, from, ErrInvalidTransition)
}

// Sources lists the statuses ev may fire from.
func Sources(ev Event) []Status {
	t, ok := transitions[ev]
	if !ok {
		return nil
	}
	out := make([]Status, len(t.from))
	copy(out, t.from)
	return out
}

// SourceStrings is Sources as plain strings, for conditional status updates.
func SourceStrings(ev Event) []string {
	sources := Sources(ev)
	out := make([]string, len(sources))
	for i, s := range sources {
		out[i] = string(s)
	}
	return out
}

// Target returns the status ev leads to.
func Target(ev Event) (Status, bool) {
	t, ok := transitions[ev]
	return t.to, ok
}

// Owner returns the component allowed to fire ev.
func (e Event) Owner() Owner {
	return transitions[e].owner
}

// ParseOperatorEvent maps an operator action name to its event.
func ParseOperatorEvent(action string) (Event, error) {
	ev := Event(action)
	if t, ok := transitions[ev]; ok && t.owner == OwnerOperator {
		return ev, nil
	}
	return "", fmt.Errorf("unknown operator action %q: %w", action, ErrInvalidTransition)
}

// OperatorActions lists the action names operators may fire, sorted.
func OperatorActions() []string {
	actions := make([]string, 0, 4)
	for ev, t := range transitions {
		if t.owner == OwnerOperator {
			actions = append(actions, string(ev))
		}
	}
	sort.Strings(actions)
	return actions
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// Dispatchable reports whether the dispatcher may send for a campaign in s.
func (s Status) Dispatchable() bool {
	return s == StatusRunning
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusRunning, StatusPaused, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}
