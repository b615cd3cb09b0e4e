// Package mocks provides testify mocks for the application ports.
package mocks

import (
	"context"

	"pillbox-backend/application/ports"
	"pillbox-backend/domain/schedule"

	"github.com/stretchr/testify/mock"
)

// MockTakenRecordRepository mocks ports.TakenRecordRepository
type MockTakenRecordRepository struct {
	mock.Mock
}

func (m *MockTakenRecordRepository) Upsert(ctx context.Context, deviceID, slotID, date string) (ports.TakenRecord, error) {
	args := m.Called(ctx, deviceID, slotID, date)
	return args.Get(0).(ports.TakenRecord), args.Error(1)
}

func (m *MockTakenRecordRepository) Delete(ctx context.Context, deviceID, slotID, date string) error {
	args := m.Called(ctx, deviceID, slotID, date)
	return args.Error(0)
}

func (m *MockTakenRecordRepository) Exists(ctx context.Context, deviceID, slotID, date string) (bool, error) {
	args := m.Called(ctx, deviceID, slotID, date)
	return args.Bool(0), args.Error(1)
}

func (m *MockTakenRecordRepository) ListByDate(ctx context.Context, deviceID, date string) ([]ports.TakenRecord, error) {
	args := m.Called(ctx, deviceID, date)
	if records, ok := args.Get(0).([]ports.TakenRecord); ok {
		return records, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockNotificationScheduler mocks ports.NotificationScheduler
type MockNotificationScheduler struct {
	mock.Mock
}

func (m *MockNotificationScheduler) Create(ctx context.Context, spec ports.ScheduleSpec) error {
	args := m.Called(ctx, spec)
	return args.Error(0)
}

func (m *MockNotificationScheduler) Cancel(ctx context.Context, scheduleID string) error {
	args := m.Called(ctx, scheduleID)
	return args.Error(0)
}

// MockPushSender mocks ports.PushSender
type MockPushSender struct {
	mock.Mock
}

func (m *MockPushSender) Send(ctx context.Context, msg ports.PushMessage) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

// MockTokenSource mocks ports.TokenSource
type MockTokenSource struct {
	mock.Mock
}

func (m *MockTokenSource) Token(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockAlarmAPI mocks ports.AlarmAPI
type MockAlarmAPI struct {
	mock.Mock
}

func (m *MockAlarmAPI) Schedule(ctx context.Context, token, hhmm string, slot schedule.TimeSlot, heading, content string) (ports.ScheduleResult, error) {
	args := m.Called(ctx, token, hhmm, slot, heading, content)
	return args.Get(0).(ports.ScheduleResult), args.Error(1)
}

func (m *MockAlarmAPI) Cancel(ctx context.Context, notificationID string) error {
	args := m.Called(ctx, notificationID)
	return args.Error(0)
}

// MockCheckAPI mocks ports.CheckAPI
type MockCheckAPI struct {
	mock.Mock
}

func (m *MockCheckAPI) SetChecked(ctx context.Context, deviceID, slotID, date string, checked bool) error {
	args := m.Called(ctx, deviceID, slotID, date, checked)
	return args.Error(0)
}
