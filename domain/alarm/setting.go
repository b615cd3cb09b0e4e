package alarm

import (
	"regexp"

	"pillbox-backend/domain/schedule"
	pkgerrors "pillbox-backend/pkg/errors"
)

// SlotState is the scheduling state of one slot's alarm
type SlotState int

const (
	// StateOff means no schedule exists on the external scheduler
	StateOff SlotState = iota
	// StatePending means a schedule or cancel request is in flight
	StatePending
	// StateOn means an external schedule is active and its id is held
	StateOn
)

// String returns the state name for logs
func (s SlotState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateOn:
		return "on"
	default:
		return "off"
	}
}

// Setting is the persisted alarm configuration of one slot.
// NotificationID is the opaque handle from the external scheduler; empty
// means no server-side schedule exists for the slot.
type Setting struct {
	Time           string `json:"time"`
	IsOn           bool   `json:"isOn"`
	NotificationID string `json:"notificationId,omitempty"`
}

// Settings maps every slot to its alarm configuration
type Settings map[schedule.TimeSlot]Setting

var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Validate rejects a malformed wall-clock time
func (s Setting) Validate() error {
	if !timePattern.MatchString(s.Time) {
		return pkgerrors.NewValidationError("alarm time must be HH:mm")
	}
	return nil
}

// DefaultSettings returns the reference default times with every alarm off
func DefaultSettings() Settings {
	return Settings{
		schedule.SlotDawn:    {Time: "07:00"},
		schedule.SlotMorning: {Time: "08:00"},
		schedule.SlotNoon:    {Time: "12:00"},
		schedule.SlotSnack:   {Time: "15:00"},
		schedule.SlotEvening: {Time: "18:00"},
		schedule.SlotNight:   {Time: "22:00"},
	}
}

// Clone deep-copies the settings map so optimistic updates can roll back
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	for slot, setting := range s {
		out[slot] = setting
	}
	return out
}
