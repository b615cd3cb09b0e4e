package services

import (
	"context"
	"fmt"
	"time"

	"pillbox-backend/application/ports"
	"pillbox-backend/domain/schedule"
	"pillbox-backend/pkg/clock"
	pkgerrors "pillbox-backend/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Default push copy when the client sends none
const (
	defaultHeading = "Medication Reminder"
	defaultContent = "It is time to take your medicine."
)

// ScheduleRequest asks for a daily alarm at a home-zone wall-clock time
type ScheduleRequest struct {
	Token    string
	Time     string // HH:mm
	SlotID   string
	DeviceID string
	Heading  string
	Content  string
}

// ExecuteRequest is the payload the external scheduler delivers at fire
// time. DeviceID and SlotID are optional; when present the service checks
// the taken-record before sending.
type ExecuteRequest struct {
	Token    string
	Heading  string
	Content  string
	DeviceID string
	SlotID   string
}

// ExecuteResult reports a delivery or the reason it was skipped
type ExecuteResult struct {
	Skipped   bool
	MessageID string
}

// NotificationService is the scheduling broker: it turns wall-clock alarm
// times into external schedules, executes deliveries on the scheduler's
// behalf, and cancels schedules idempotently.
type NotificationService struct {
	scheduler  ports.NotificationScheduler
	push       ports.PushSender
	records    ports.TakenRecordRepository
	rulePrefix string
	home       *time.Location
	now        func() time.Time
	logger     *zap.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	scheduler ports.NotificationScheduler,
	push ports.PushSender,
	records ports.TakenRecordRepository,
	rulePrefix string,
	home *time.Location,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		scheduler:  scheduler,
		push:       push,
		records:    records,
		rulePrefix: rulePrefix,
		home:       home,
		now:        time.Now,
		logger:     logger,
	}
}

// WithNow overrides the clock; tests pin "now" to a reference instant
func (s *NotificationService) WithNow(now func() time.Time) *NotificationService {
	s.now = now
	return s
}

// Schedule registers a daily delivery and returns its opaque handle plus
// the next concrete fire time in the home zone.
func (s *NotificationService) Schedule(ctx context.Context, req ScheduleRequest) (ports.ScheduleResult, error) {
	if req.Token == "" || req.Time == "" {
		return ports.ScheduleResult{}, pkgerrors.NewValidationError("missing token or time")
	}
	if req.SlotID != "" && !schedule.ValidSlot(schedule.TimeSlot(req.SlotID)) {
		return ports.ScheduleResult{}, pkgerrors.NewValidationError("unknown slot id")
	}

	fireAt, err := clock.NextOccurrence(s.now(), req.Time, s.home)
	if err != nil {
		return ports.ScheduleResult{}, err
	}
	cron, err := clock.DailyCronUTC(req.Time, s.home)
	if err != nil {
		return ports.ScheduleResult{}, err
	}

	scheduleID := fmt.Sprintf("%s-%s-%s", s.rulePrefix, req.SlotID, uuid.New().String())

	spec := ports.ScheduleSpec{
		ScheduleID: scheduleID,
		CronUTC:    cron,
		Token:      req.Token,
		SlotID:     req.SlotID,
		DeviceID:   req.DeviceID,
		Heading:    req.Heading,
		Content:    req.Content,
	}
	if err := s.scheduler.Create(ctx, spec); err != nil {
		return ports.ScheduleResult{}, err
	}

	s.logger.Info("Alarm scheduled",
		zap.String("scheduleID", scheduleID),
		zap.String("slotID", req.SlotID),
		zap.String("time", req.Time),
		zap.Time("fireAt", fireAt),
		zap.Duration("delay", fireAt.Sub(s.now())),
	)

	return ports.ScheduleResult{
		NotificationID: scheduleID,
		FireAt:         fireAt,
	}, nil
}

// ExecuteSend delivers a due reminder. When the request names a device and
// slot, a taken-record for today's home-zone date suppresses the delivery:
// the dose was already confirmed, the reminder is redundant.
func (s *NotificationService) ExecuteSend(ctx context.Context, req ExecuteRequest) (ExecuteResult, error) {
	if req.Token == "" {
		return ExecuteResult{}, pkgerrors.NewValidationError("missing token")
	}

	if req.DeviceID != "" && req.SlotID != "" {
		today := clock.DateString(s.now(), s.home)
		taken, err := s.records.Exists(ctx, req.DeviceID, req.SlotID, today)
		if err != nil {
			// The guard is best-effort: an unreadable record must not
			// swallow the reminder itself.
			s.logger.Warn("Taken-record lookup failed, sending anyway",
				zap.Error(err),
				zap.String("deviceID", req.DeviceID),
				zap.String("slotID", req.SlotID),
			)
		} else if taken {
			s.logger.Info("Reminder skipped, dose already confirmed",
				zap.String("deviceID", req.DeviceID),
				zap.String("slotID", req.SlotID),
				zap.String("date", today),
			)
			return ExecuteResult{Skipped: true}, nil
		}
	}

	heading := req.Heading
	if heading == "" {
		heading = defaultHeading
	}
	content := req.Content
	if content == "" {
		content = defaultContent
	}

	msg := ports.PushMessage{
		Token:   req.Token,
		Title:   heading,
		Body:    content,
		Channel: "medication-reminders",
		Data: map[string]string{
			"slotId": req.SlotID,
		},
	}
	messageID, err := s.push.Send(ctx, msg)
	if err != nil {
		return ExecuteResult{}, err
	}

	s.logger.Info("Reminder delivered",
		zap.String("messageID", messageID),
		zap.String("slotID", req.SlotID),
	)
	return ExecuteResult{MessageID: messageID}, nil
}

// Cancel deletes a schedule; an already-consumed handle is success
func (s *NotificationService) Cancel(ctx context.Context, notificationID string) error {
	if notificationID == "" {
		return pkgerrors.NewValidationError("missing notificationId")
	}
	if err := s.scheduler.Cancel(ctx, notificationID); err != nil {
		if pkgerrors.IsNotFound(err) {
			s.logger.Debug("Cancel of unknown schedule treated as success",
				zap.String("notificationID", notificationID),
			)
			return nil
		}
		return err
	}
	return nil
}
