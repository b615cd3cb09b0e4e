package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pillbox-backend/application/ports"
	pkgerrors "pillbox-backend/pkg/errors"
	"pillbox-backend/tests/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type notificationFixture struct {
	scheduler *mocks.MockNotificationScheduler
	push      *mocks.MockPushSender
	records   *mocks.MockTakenRecordRepository
	service   *NotificationService
}

func newNotificationFixture(t *testing.T, now time.Time) *notificationFixture {
	t.Helper()
	home, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	scheduler := new(mocks.MockNotificationScheduler)
	push := new(mocks.MockPushSender)
	records := new(mocks.MockTakenRecordRepository)
	service := NewNotificationService(scheduler, push, records, "pillbox-alarm", home, zap.NewNop()).
		WithNow(func() time.Time { return now })

	return &notificationFixture{scheduler: scheduler, push: push, records: records, service: service}
}

func seoulTime(t *testing.T, y int, m time.Month, d, hh, mm int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	return time.Date(y, m, d, hh, mm, 0, 0, loc)
}

func TestNotificationService_Schedule(t *testing.T) {
	// 23:30 home time asking for 07:00: the alarm fires the next morning.
	now := seoulTime(t, 2026, time.January, 28, 23, 30)
	f := newNotificationFixture(t, now)

	var captured ports.ScheduleSpec
	f.scheduler.On("Create", mock.Anything, mock.AnythingOfType("ports.ScheduleSpec")).
		Run(func(args mock.Arguments) { captured = args.Get(1).(ports.ScheduleSpec) }).
		Return(nil)

	result, err := f.service.Schedule(context.Background(), ScheduleRequest{
		Token:    "tok-123",
		Time:     "07:00",
		SlotID:   "dawn",
		DeviceID: "device-1",
	})

	require.NoError(t, err)
	assert.Equal(t, seoulTime(t, 2026, time.January, 29, 7, 0), result.FireAt)
	assert.Equal(t, 7*time.Hour+30*time.Minute, result.FireAt.Sub(now))

	assert.True(t, strings.HasPrefix(result.NotificationID, "pillbox-alarm-dawn-"))
	assert.Equal(t, result.NotificationID, captured.ScheduleID)
	assert.Equal(t, "cron(0 22 * * ? *)", captured.CronUTC)
	assert.Equal(t, "tok-123", captured.Token)
	assert.Equal(t, "device-1", captured.DeviceID)
}

func TestNotificationService_Schedule_Validation(t *testing.T) {
	now := seoulTime(t, 2026, time.January, 28, 23, 30)
	f := newNotificationFixture(t, now)

	_, err := f.service.Schedule(context.Background(), ScheduleRequest{Time: "07:00"})
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = f.service.Schedule(context.Background(), ScheduleRequest{Token: "tok"})
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = f.service.Schedule(context.Background(), ScheduleRequest{Token: "tok", Time: "07:00", SlotID: "brunch"})
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = f.service.Schedule(context.Background(), ScheduleRequest{Token: "tok", Time: "7am"})
	assert.Error(t, err)

	f.scheduler.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestNotificationService_Schedule_CreateFailurePropagates(t *testing.T) {
	now := seoulTime(t, 2026, time.January, 28, 23, 30)
	f := newNotificationFixture(t, now)
	f.scheduler.On("Create", mock.Anything, mock.Anything).Return(errors.New("throttled"))

	_, err := f.service.Schedule(context.Background(), ScheduleRequest{Token: "tok", Time: "07:00", SlotID: "dawn"})

	assert.Error(t, err)
}

func TestNotificationService_ExecuteSend_Delivers(t *testing.T) {
	now := seoulTime(t, 2026, time.January, 29, 7, 0)
	f := newNotificationFixture(t, now)

	f.records.On("Exists", mock.Anything, "device-1", "dawn", "2026-01-29").Return(false, nil)

	var sent ports.PushMessage
	f.push.On("Send", mock.Anything, mock.AnythingOfType("ports.PushMessage")).
		Run(func(args mock.Arguments) { sent = args.Get(1).(ports.PushMessage) }).
		Return("msg-1", nil)

	result, err := f.service.ExecuteSend(context.Background(), ExecuteRequest{
		Token:    "tok-123",
		DeviceID: "device-1",
		SlotID:   "dawn",
	})

	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, "msg-1", result.MessageID)

	// Blank copy falls back to the defaults.
	assert.Equal(t, "Medication Reminder", sent.Title)
	assert.Equal(t, "It is time to take your medicine.", sent.Body)
	assert.Equal(t, "dawn", sent.Data["slotId"])
}

func TestNotificationService_ExecuteSend_SkipsWhenAlreadyTaken(t *testing.T) {
	now := seoulTime(t, 2026, time.January, 29, 7, 0)
	f := newNotificationFixture(t, now)

	f.records.On("Exists", mock.Anything, "device-1", "dawn", "2026-01-29").Return(true, nil)

	result, err := f.service.ExecuteSend(context.Background(), ExecuteRequest{
		Token:    "tok-123",
		DeviceID: "device-1",
		SlotID:   "dawn",
	})

	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Empty(t, result.MessageID)
	f.push.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestNotificationService_ExecuteSend_HomeZoneDateForGuard(t *testing.T) {
	// 20:00 UTC on the 28th is already the 29th in Seoul; the guard must
	// look up the home-zone date.
	now := time.Date(2026, time.January, 28, 20, 0, 0, 0, time.UTC)
	f := newNotificationFixture(t, now)

	f.records.On("Exists", mock.Anything, "device-1", "dawn", "2026-01-29").Return(true, nil)

	result, err := f.service.ExecuteSend(context.Background(), ExecuteRequest{
		Token: "tok", DeviceID: "device-1", SlotID: "dawn",
	})

	require.NoError(t, err)
	assert.True(t, result.Skipped)
}

func TestNotificationService_ExecuteSend_LookupFailureStillSends(t *testing.T) {
	now := seoulTime(t, 2026, time.January, 29, 7, 0)
	f := newNotificationFixture(t, now)

	f.records.On("Exists", mock.Anything, "device-1", "dawn", "2026-01-29").
		Return(false, errors.New("table unavailable"))
	f.push.On("Send", mock.Anything, mock.Anything).Return("msg-2", nil)

	result, err := f.service.ExecuteSend(context.Background(), ExecuteRequest{
		Token: "tok", DeviceID: "device-1", SlotID: "dawn",
	})

	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, "msg-2", result.MessageID)
}

func TestNotificationService_ExecuteSend_NoGuardWithoutDevice(t *testing.T) {
	now := seoulTime(t, 2026, time.January, 29, 7, 0)
	f := newNotificationFixture(t, now)
	f.push.On("Send", mock.Anything, mock.Anything).Return("msg-3", nil)

	result, err := f.service.ExecuteSend(context.Background(), ExecuteRequest{
		Token:   "tok",
		Heading: "Custom heading",
		Content: "Custom content",
	})

	require.NoError(t, err)
	assert.Equal(t, "msg-3", result.MessageID)
	f.records.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNotificationService_ExecuteSend_MissingToken(t *testing.T) {
	now := seoulTime(t, 2026, time.January, 29, 7, 0)
	f := newNotificationFixture(t, now)

	_, err := f.service.ExecuteSend(context.Background(), ExecuteRequest{})

	assert.True(t, pkgerrors.IsValidation(err))
	f.push.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestNotificationService_Cancel(t *testing.T) {
	now := seoulTime(t, 2026, time.January, 29, 7, 0)
	f := newNotificationFixture(t, now)
	f.scheduler.On("Cancel", mock.Anything, "pillbox-alarm-dawn-x").Return(nil)

	assert.NoError(t, f.service.Cancel(context.Background(), "pillbox-alarm-dawn-x"))
}

func TestNotificationService_Cancel_UnknownScheduleIsSuccess(t *testing.T) {
	now := seoulTime(t, 2026, time.January, 29, 7, 0)
	f := newNotificationFixture(t, now)
	f.scheduler.On("Cancel", mock.Anything, "gone").
		Return(pkgerrors.NewNotFoundError("schedule not found"))

	assert.NoError(t, f.service.Cancel(context.Background(), "gone"))
}

func TestNotificationService_Cancel_MissingID(t *testing.T) {
	now := seoulTime(t, 2026, time.January, 29, 7, 0)
	f := newNotificationFixture(t, now)

	err := f.service.Cancel(context.Background(), "")

	assert.True(t, pkgerrors.IsValidation(err))
	f.scheduler.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
}

func TestNotificationService_Cancel_TransportFailurePropagates(t *testing.T) {
	now := seoulTime(t, 2026, time.January, 29, 7, 0)
	f := newNotificationFixture(t, now)
	f.scheduler.On("Cancel", mock.Anything, "id").Return(errors.New("throttled"))

	assert.Error(t, f.service.Cancel(context.Background(), "id"))
}
