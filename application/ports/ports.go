// Package ports declares the interfaces between the application services
// and their collaborators. Infrastructure provides the implementations;
// tests substitute mocks.
package ports

import (
	"context"
	"time"

	"pillbox-backend/domain/schedule"
)

// TakenRecord is the persistent marker that a device confirmed a slot's
// dose on a given date. Its document id is deviceId_slotId_date.
type TakenRecord struct {
	DocID     string    `json:"docId"`
	DeviceID  string    `json:"deviceId"`
	SlotID    string    `json:"slotId"`
	Date      string    `json:"date"` // YYYY-MM-DD in the home zone
	Checked   bool      `json:"checked"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TakenRecordRepository persists dose confirmations. Unchecking deletes
// the record outright; a missing record means "not yet taken".
type TakenRecordRepository interface {
	Upsert(ctx context.Context, deviceID, slotID, date string) (TakenRecord, error)
	Delete(ctx context.Context, deviceID, slotID, date string) error
	Exists(ctx context.Context, deviceID, slotID, date string) (bool, error)
	ListByDate(ctx context.Context, deviceID, date string) ([]TakenRecord, error)
}

// ScheduleSpec describes one recurring daily delivery to register with the
// external scheduler.
type ScheduleSpec struct {
	ScheduleID string // opaque handle, chosen by the caller
	CronUTC    string // daily trigger in the scheduler's UTC time base
	Token      string // push token of the target device
	SlotID     string
	DeviceID   string
	Heading    string
	Content    string
}

// NotificationScheduler is the external delayed-delivery service. Cancel
// must treat an already-fired or unknown schedule as success.
type NotificationScheduler interface {
	Create(ctx context.Context, spec ScheduleSpec) error
	Cancel(ctx context.Context, scheduleID string) error
}

// PushMessage is one notification delivered to a device
type PushMessage struct {
	Token   string
	Title   string
	Body    string
	Data    map[string]string
	Channel string
}

// PushSender delivers a push message and returns the gateway's message id
type PushSender interface {
	Send(ctx context.Context, msg PushMessage) (string, error)
}

// TokenSource acquires the device push token, requesting notification
// permission first when the platform needs it. An error aborts any alarm
// activation that depends on it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// ScheduleResult is what the scheduling endpoint hands back to a device
type ScheduleResult struct {
	NotificationID string
	FireAt         time.Time
}

// AlarmAPI is the device-side view of the scheduling endpoint
type AlarmAPI interface {
	Schedule(ctx context.Context, token, hhmm string, slot schedule.TimeSlot, heading, content string) (ScheduleResult, error)
	Cancel(ctx context.Context, notificationID string) error
}

// CheckAPI is the device-side view of the check persistence endpoint
type CheckAPI interface {
	SetChecked(ctx context.Context, deviceID, slotID, date string, checked bool) error
}
