// Package settings holds the division choice made on the settings screen and
// the checks that run before the partitioner is called.
package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kingrea/class-divider/internal/partition"
)

var (
	// ErrValueNotPositive is returned when the division value is below 1.
	ErrValueNotPositive = errors.New("settings: value must be greater than 0")
	// ErrTooManyGroups is returned when more groups than people are requested.
	ErrTooManyGroups = errors.New("settings: group count exceeds roster size")
	// ErrGroupTooLarge is returned when the group size exceeds the roster.
	ErrGroupTooLarge = errors.New("settings: group size exceeds roster size")
	// ErrUnknownMode is returned by ParseMode for unrecognised input.
	ErrUnknownMode = errors.New("settings: unknown division mode")
)

// DefaultValue is the value preselected on the settings screen.
const DefaultValue = 2

// Settings is one division request.
type Settings struct {
	Mode  partition.Mode
	Value int
}

// Default returns the settings the wizard starts with.
func Default() Settings {
	return Settings{Mode: partition.ByGroupCount, Value: DefaultValue}
}

// Validate checks the settings against a roster of count people.
func (s Settings) Validate(count int) error {
	if !s.Mode.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownMode, int(s.Mode))
	}
	if s.Value < 1 {
		return ErrValueNotPositive
	}
	if s.Value > count {
		switch s.Mode {
		case partition.ByGroupCount:
			return fmt.Errorf("%w: %d groups for %d people", ErrTooManyGroups, s.Value, count)
		default:
			return fmt.Errorf("%w: groups of %d for %d people", ErrGroupTooLarge, s.Value, count)
		}
	}
	return nil
}

// Plan previews the groups these settings produce for count people.
func (s Settings) Plan(count int) partition.Plan {
	return partition.Preview(count, s.Mode, s.Value)
}

// Toggle returns the settings with the other mode selected.
func (s Settings) Toggle() Settings {
	if s.Mode == partition.ByGroupCount {
		s.Mode = partition.ByMemberCount
	} else {
		s.Mode = partition.ByGroupCount
	}
	return s
}

// String renders e.g. "by-group-count=3".
func (s Settings) String() string {
	return fmt.Sprintf("%s=%d", s.Mode, s.Value)
}

// ParseMode accepts the config/CLI spellings of a division mode.
func ParseMode(value string) (partition.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "by-group-count", "bygroupcount", "groups", "count", "g":
		return partition.ByGroupCount, nil
	case "by-member-count", "bymembercount", "members", "size", "m":
		return partition.ByMemberCount, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, value)
	}
}

// ParseValue converts the text typed into the value field.
func ParseValue(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, ErrValueNotPositive
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("settings: value %q is not a number", text)
	}
	if v < 1 {
		return 0, ErrValueNotPositive
	}
	return v, nil
}
