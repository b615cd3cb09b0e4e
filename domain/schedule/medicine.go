package schedule

import (
	"time"

	pkgerrors "pillbox-backend/pkg/errors"
)

// Recurrence restricts a medicine to certain days.
// A medicine carries at most one descriptor; nil means due every day.
type Recurrence interface {
	isRecurrence()
}

// DayCycle marks a medicine due every PeriodDays days counted from Start
type DayCycle struct {
	Start      time.Time // midnight, date component only
	PeriodDays int
}

func (DayCycle) isRecurrence() {}

// WeekdayCycle marks a medicine due on a single weekday
type WeekdayCycle struct {
	Target time.Weekday
}

func (WeekdayCycle) isRecurrence() {}

// Medicine is one entry of the static schedule
type Medicine struct {
	ID   string
	Name string
	Dose string
	Slot TimeSlot

	// TuesdayEvening relocates the medicine to the evening slot on the
	// relocation weekday (folic acid must not meet MTX in the morning).
	TuesdayEvening bool

	Recurrence Recurrence
}

// Recurring reports whether the medicine carries a recurrence descriptor
func (m Medicine) Recurring() bool {
	return m.Recurrence != nil
}

// Validate checks the structural invariants of a medicine entry
func (m Medicine) Validate() error {
	if m.ID == "" {
		return pkgerrors.NewValidationError("medicine id cannot be empty")
	}
	if m.Name == "" {
		return pkgerrors.NewValidationError("medicine name cannot be empty")
	}
	if !ValidSlot(m.Slot) {
		return pkgerrors.NewValidationError("medicine slot is not one of the six windows")
	}
	if dc, ok := m.Recurrence.(DayCycle); ok && dc.PeriodDays <= 0 {
		return pkgerrors.NewValidationError("day cycle period must be positive")
	}
	return nil
}
