// Package status derives a place's live open/closed state from its declared
// weekly hours.
package status

import (
	"fmt"
	"strconv"
	"time"

	"github.com/zatekoja/placesreview/internal/domain/entities"
	"github.com/zatekoja/placesreview/internal/domain/messages"
	apperrors "github.com/zatekoja/placesreview/pkg/errors"
)

// State of a place at an instant
type State string

const (
	StateOpen        State = "open"
	StateClosed      State = "closed"
	StateClosingSoon State = "closing_soon"
)

const (
	minutesPerDay = 24 * 60

	// DefaultClosingSoonWithin is the window before closing that counts as closing soon
	DefaultClosingSoonWithin = 30
)

// Status is the evaluated state with its rendered message.
// MinutesRemaining is set only when closing soon.
type Status struct {
	State            State  `json:"state"`
	MinutesRemaining int    `json:"minutesRemaining,omitempty"`
	Message          string `json:"message"`
}

// Engine evaluates weekly hours. It holds no mutable state, so identical
// inputs always give identical output.
type Engine struct {
	catalog           *messages.Catalog
	location          *time.Location
	closingSoonWithin int
}

// NewEngine creates an engine. A nil catalog uses the embedded default and a
// nil location uses UTC.
func NewEngine(catalog *messages.Catalog, location *time.Location, closingSoonWithin int) *Engine {
	if catalog == nil {
		catalog = messages.Default()
	}
	if location == nil {
		location = time.UTC
	}
	return &Engine{catalog: catalog, location: location, closingSoonWithin: closingSoonWithin}
}

// Location is the zone instants are converted to before reading the clock.
func (e *Engine) Location() *time.Location {
	return e.location
}

// Now evaluates hours at the current instant.
func (e *Engine) Now(hours entities.WeeklyHours) Status {
	return e.Evaluate(hours, time.Now())
}

// Evaluate computes the status of hours at instant at.
//
// A place with no hours at all is open. A day with no entry, or an entry
// marked closed, is closed. Unparseable times degrade to open. When close is
// not after open the range crosses midnight.
func (e *Engine) Evaluate(hours entities.WeeklyHours, at time.Time) Status {
	if len(hours) == 0 {
		return e.open()
	}

	local := at.In(e.location)
	entry, ok := e.dayEntry(hours, local.Weekday())
	if !ok || entry.Closed {
		return e.closed()
	}

	openAt, err := MinutesOfDay(entry.Open)
	if err != nil {
		return e.open()
	}
	closeAt, err := MinutesOfDay(entry.Close)
	if err != nil {
		return e.open()
	}

	now := local.Hour()*60 + local.Minute()
	if closeAt <= openAt {
		closeAt += minutesPerDay
		if now < openAt {
			now += minutesPerDay
		}
	}

	if now < openAt || now >= closeAt {
		return e.closed()
	}
	if remaining := closeAt - now; remaining <= e.closingSoonWithin {
		return Status{
			State:            StateClosingSoon,
			MinutesRemaining: remaining,
			Message:          messages.Render(e.catalog.Status.ClosingSoon, messages.Vars{"minutes": strconv.Itoa(remaining)}),
		}
	}
	return e.open()
}

func (e *Engine) dayEntry(hours entities.WeeklyHours, day time.Weekday) (entities.DayHours, bool) {
	if entry, ok := hours[e.catalog.DayName(day)]; ok {
		return entry, true
	}
	entry, ok := hours[messages.EnglishDayName(day)]
	return entry, ok
}

func (e *Engine) open() Status {
	return Status{State: StateOpen, Message: e.catalog.Status.Open}
}

func (e *Engine) closed() Status {
	return Status{State: StateClosed, Message: e.catalog.Status.Closed}
}

// MinutesOfDay parses HH:MM into minutes since midnight.
func MinutesOfDay(clock string) (int, error) {
	if !entities.ValidClock(clock) {
		return 0, apperrors.NewValidationError("invalid time " + strconv.Quote(clock) + ", expected HH:MM")
	}
	h, _ := strconv.Atoi(clock[:2])
	m, _ := strconv.Atoi(clock[3:])
	return h*60 + m, nil
}

// ValidateHours rejects hours that could not be evaluated: malformed times,
// and day keys that are neither a catalog day name nor an English one. Called
// when hours are saved so that evaluation can assume well-formed input.
func (e *Engine) ValidateHours(hours entities.WeeklyHours) error {
	if err := hours.Validate(); err != nil {
		return err
	}
	for day := range hours {
		if !e.knownDay(day) {
			return apperrors.NewValidationError(fmt.Sprintf("unknown day %q in hours", day))
		}
	}
	return nil
}

func (e *Engine) knownDay(name string) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if name == e.catalog.DayName(d) || name == messages.EnglishDayName(d) {
			return true
		}
	}
	return false
}
