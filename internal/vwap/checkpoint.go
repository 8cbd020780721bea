package vwap

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNoCheckpoints       = errors.New("no checkpoints")
	ErrUnsortedCheckpoints = errors.New("checkpoints must be strictly ascending")
)

// Checkpoint is a cutoff expressed as time since session midnight.
type Checkpoint struct {
	Offset time.Duration
}

// At returns the checkpoint for a wall-clock hour and minute.
func At(hour, minute int) Checkpoint {
	return Checkpoint{Offset: time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute}
}

// DefaultCheckpoints returns 09:30 and every full hour from 10:00 to 16:00.
func DefaultCheckpoints() []Checkpoint {
	return []Checkpoint{
		At(9, 30), At(10, 0), At(11, 0), At(12, 0),
		At(13, 0), At(14, 0), At(15, 0), At(16, 0),
	}
}

// Parse reads "HH:MM" or "HH:MM:SS".
func Parse(s string) (Checkpoint, error) {
	s = strings.TrimSpace(s)
	layout := "15:04"
	if strings.Count(s, ":") == 2 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("parse checkpoint %q: %w", s, err)
	}
	return Checkpoint{Offset: time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second}, nil
}

// ParseAll parses and validates a checkpoint list.
func ParseAll(specs []string) ([]Checkpoint, error) {
	cps := make([]Checkpoint, 0, len(specs))
	for _, s := range specs {
		cp, err := Parse(s)
		if err != nil {
			return nil, err
		}
		cps = append(cps, cp)
	}
	if err := Validate(cps); err != nil {
		return nil, err
	}
	return cps, nil
}

// Validate checks that cps is non-empty and strictly ascending.
func Validate(cps []Checkpoint) error {
	if len(cps) == 0 {
		return ErrNoCheckpoints
	}
	for i := 1; i < len(cps); i++ {
		if cps[i].Offset <= cps[i-1].Offset {
			return fmt.Errorf("%w: %s follows %s", ErrUnsortedCheckpoints, cps[i], cps[i-1])
		}
	}
	return nil
}

// Nanos returns the checkpoint in feed timestamp units.
func (c Checkpoint) Nanos() uint64 {
	return uint64(c.Offset.Nanoseconds())
}

// clock returns the checkpoint as a time on the zero date.
func (c Checkpoint) clock() time.Time {
	return time.Time{}.Add(c.Offset)
}

// String returns "HH:MM", with seconds when they are non-zero.
func (c Checkpoint) String() string {
	if c.Offset%time.Minute != 0 {
		return c.clock().Format("15:04:05")
	}
	return c.clock().Format("15:04")
}

// Label returns the column title, e.g. "VWAP at 09:30AM".
func (c Checkpoint) Label() string {
	return "VWAP at " + c.clock().Format("03:04PM")
}
