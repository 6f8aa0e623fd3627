// Package wizard models the three-screen flow (roster input, division
// settings, results) as an immutable value. Every user action is a method
// that returns the next State, which keeps the terminal UI free of ad-hoc
// bookkeeping and makes the flow testable without a terminal.
package wizard

import (
	"errors"
	"slices"

	"github.com/kingrea/class-divider/internal/partition"
	"github.com/kingrea/class-divider/internal/roster"
	"github.com/kingrea/class-divider/internal/settings"
)

// ErrNoGroups is returned when a division produced nothing, which only
// happens when settings bypassed validation.
var ErrNoGroups = errors.New("wizard: division produced no groups")

// Screen identifies the step the user is on.
type Screen int

const (
	ScreenInput Screen = iota
	ScreenSettings
	ScreenResults
)

// String returns a short label for logs.
func (s Screen) String() string {
	switch s {
	case ScreenInput:
		return "input"
	case ScreenSettings:
		return "settings"
	case ScreenResults:
		return "results"
	default:
		return "unknown"
	}
}

// Divider produces groups from a roster. *partition.Partitioner satisfies it.
type Divider interface {
	Partition(names []string, mode partition.Mode, value int, roles []partition.Role) []partition.Group
}

// State is the whole wizard state. Methods never modify the receiver.
type State struct {
	Screen Screen
	Names  []string
	Roles  []partition.Role
	Groups []partition.Group

	lastSettings settings.Settings
	hasSettings  bool
}

// New returns the state at the start of a session.
func New(roles []partition.Role) State {
	return State{Screen: ScreenInput, Roles: slices.Clone(roles)}
}

// LastSettings returns the settings of the most recent division.
func (s State) LastSettings() (settings.Settings, bool) {
	return s.lastSettings, s.hasSettings
}

// SubmitText parses pasted text and moves to the settings screen.
func (s State) SubmitText(text string) (State, error) {
	return s.SubmitNames(roster.Parse(text))
}

// SubmitNames validates the roster and moves to the settings screen.
func (s State) SubmitNames(names []string) (State, error) {
	if err := roster.Validate(names); err != nil {
		return s, err
	}
	next := s
	next.Names = slices.Clone(names)
	next.Screen = ScreenSettings
	return next, nil
}

// SetRoles replaces the roles used by the next division.
func (s State) SetRoles(roles []partition.Role) State {
	next := s
	next.Roles = slices.Clone(roles)
	return next
}

// Back moves one screen towards the input. The roster is kept.
func (s State) Back() State {
	next := s
	switch s.Screen {
	case ScreenSettings:
		next.Screen = ScreenInput
	case ScreenResults:
		next.Screen = ScreenSettings
	}
	return next
}

// Generate validates the settings against the roster, divides it and moves
// to the results screen.
func (s State) Generate(d Divider, set settings.Settings) (State, error) {
	if err := roster.Validate(s.Names); err != nil {
		return s, err
	}
	if err := set.Validate(len(s.Names)); err != nil {
		return s, err
	}
	groups := d.Partition(s.Names, set.Mode, set.Value, s.Roles)
	if len(groups) == 0 {
		return s, ErrNoGroups
	}
	next := s
	next.Groups = groups
	next.lastSettings = set
	next.hasSettings = true
	next.Screen = ScreenResults
	return next, nil
}

// Shuffle divides the roster again with the last settings. Without a previous
// division it returns the state unchanged.
func (s State) Shuffle(d Divider) (State, error) {
	if !s.hasSettings {
		return s, nil
	}
	return s.Generate(d, s.lastSettings)
}

// StartOver clears the roster and results and returns to the input screen.
// Roles are kept because they outlive a single roster.
func (s State) StartOver() State {
	return New(s.Roles)
}
