package calendar

import (
	"log/slog"
	"time"

	"github.com/scmhub/calendar"

	"github.com/rickgao/itch-vwap/internal/vwap"
)

// FallbackLocation is used when no exchange calendar can be loaded.
const FallbackLocation = "America/New_York"

// Session answers calendar questions for one exchange.
type Session struct {
	mic      string
	cal      *calendar.Calendar
	loc      *time.Location
	fallback bool
}

// New loads the calendar for mic.
func New(mic string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}

	if cal := calendar.GetCalendar(mic); cal != nil {
		loc := cal.Loc
		if loc == nil {
			loc = fallbackLocation()
		}
		return &Session{mic: mic, cal: cal, loc: loc}
	}

	logger.Warn("exchange calendar not found, using weekday fallback",
		"mic", mic,
		"location", FallbackLocation,
	)
	return &Session{mic: mic, loc: fallbackLocation(), fallback: true}
}

func fallbackLocation() *time.Location {
	loc, err := time.LoadLocation(FallbackLocation)
	if err != nil {
		return time.UTC
	}
	return loc
}

// MIC returns the exchange code the session was created for.
func (s *Session) MIC() string {
	return s.mic
}

// Location returns the exchange time zone.
func (s *Session) Location() *time.Location {
	return s.loc
}

// Fallback reports whether the weekday fallback is in use.
func (s *Session) Fallback() bool {
	return s.fallback
}

// IsTradingDay reports whether the calendar date of date is a business day.
func (s *Session) IsTradingDay(date time.Time) bool {
	day := s.localDate(date, 12*time.Hour)
	if s.fallback {
		wd := day.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	return s.cal.IsBusinessDay(day)
}

// CheckpointTime returns the instant of cp on the calendar date of date.
func (s *Session) CheckpointTime(date time.Time, cp vwap.Checkpoint) time.Time {
	return s.localDate(date, cp.Offset)
}

// localDate builds the wall-clock time offset after midnight on date's
// year, month and day, in the exchange zone.
func (s *Session) localDate(date time.Time, offset time.Duration) time.Time {
	y, m, d := date.Date()
	h := int(offset / time.Hour)
	minute := int(offset % time.Hour / time.Minute)
	sec := int(offset % time.Minute / time.Second)
	return time.Date(y, m, d, h, minute, sec, 0, s.loc)
}
