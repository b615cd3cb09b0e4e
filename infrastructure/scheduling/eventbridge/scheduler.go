// Package eventbridge adapts AWS EventBridge rules as the external alarm
// scheduler. One alarm is one rule with a daily UTC cron expression plus a
// single target whose constant input is the execute-send payload. The rule
// name doubles as the opaque schedule id handed back to clients.
package eventbridge

import (
	"context"
	"encoding/json"
	"errors"

	"pillbox-backend/application/ports"
	pkgerrors "pillbox-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"
)

// targetID is the fixed id of the single delivery target on each rule
const targetID = "delivery-executor"

// Scheduler implements ports.NotificationScheduler on EventBridge rules
type Scheduler struct {
	client        *eventbridge.Client
	targetArn     string
	targetRoleArn string
	logger        *zap.Logger
}

// NewScheduler creates a new Scheduler
func NewScheduler(client *eventbridge.Client, targetArn, targetRoleArn string, logger *zap.Logger) ports.NotificationScheduler {
	return &Scheduler{
		client:        client,
		targetArn:     targetArn,
		targetRoleArn: targetRoleArn,
		logger:        logger,
	}
}

// executePayload is the constant input EventBridge hands the executor at
// fire time; it mirrors the execute-send request body.
type executePayload struct {
	Action   string `json:"action"`
	Token    string `json:"token"`
	Heading  string `json:"heading,omitempty"`
	Content  string `json:"content,omitempty"`
	DeviceID string `json:"deviceId,omitempty"`
	SlotID   string `json:"slotId,omitempty"`
}

// Create registers a daily trigger for the spec and wires the delivery
// executor as its target
func (s *Scheduler) Create(ctx context.Context, spec ports.ScheduleSpec) error {
	_, err := s.client.PutRule(ctx, &eventbridge.PutRuleInput{
		Name:               aws.String(spec.ScheduleID),
		ScheduleExpression: aws.String(spec.CronUTC),
		State:              types.RuleStateEnabled,
		Description:        aws.String("pillbox alarm for slot " + spec.SlotID),
	})
	if err != nil {
		s.logger.Error("Failed to put schedule rule",
			zap.Error(err),
			zap.String("scheduleID", spec.ScheduleID),
			zap.String("cron", spec.CronUTC),
		)
		return pkgerrors.NewExternalError("failed to register schedule", err)
	}

	payload, err := json.Marshal(executePayload{
		Action:   "execute-send",
		Token:    spec.Token,
		Heading:  spec.Heading,
		Content:  spec.Content,
		DeviceID: spec.DeviceID,
		SlotID:   spec.SlotID,
	})
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal schedule payload", err)
	}

	target := types.Target{
		Id:    aws.String(targetID),
		Arn:   aws.String(s.targetArn),
		Input: aws.String(string(payload)),
	}
	if s.targetRoleArn != "" {
		target.RoleArn = aws.String(s.targetRoleArn)
	}

	out, err := s.client.PutTargets(ctx, &eventbridge.PutTargetsInput{
		Rule:    aws.String(spec.ScheduleID),
		Targets: []types.Target{target},
	})
	if err != nil {
		// Roll the rule back so a half-created schedule never lingers.
		s.removeRule(ctx, spec.ScheduleID)
		s.logger.Error("Failed to attach schedule target",
			zap.Error(err),
			zap.String("scheduleID", spec.ScheduleID),
		)
		return pkgerrors.NewExternalError("failed to attach schedule target", err)
	}
	if out.FailedEntryCount > 0 {
		s.removeRule(ctx, spec.ScheduleID)
		return pkgerrors.NewExternalError("schedule target rejected", nil)
	}

	s.logger.Info("Schedule registered",
		zap.String("scheduleID", spec.ScheduleID),
		zap.String("slotID", spec.SlotID),
		zap.String("cron", spec.CronUTC),
	)
	return nil
}

// Cancel deletes the schedule. A rule that is already gone (fired and
// cleaned up, or cancelled twice) counts as success.
func (s *Scheduler) Cancel(ctx context.Context, scheduleID string) error {
	_, err := s.client.RemoveTargets(ctx, &eventbridge.RemoveTargetsInput{
		Rule: aws.String(scheduleID),
		Ids:  []string{targetID},
	})
	if err != nil && !isNotFound(err) {
		s.logger.Error("Failed to remove schedule target",
			zap.Error(err),
			zap.String("scheduleID", scheduleID),
		)
		return pkgerrors.NewExternalError("failed to cancel schedule", err)
	}

	_, err = s.client.DeleteRule(ctx, &eventbridge.DeleteRuleInput{
		Name: aws.String(scheduleID),
	})
	if err != nil && !isNotFound(err) {
		s.logger.Error("Failed to delete schedule rule",
			zap.Error(err),
			zap.String("scheduleID", scheduleID),
		)
		return pkgerrors.NewExternalError("failed to cancel schedule", err)
	}

	s.logger.Info("Schedule cancelled", zap.String("scheduleID", scheduleID))
	return nil
}

// removeRule is the best-effort cleanup after a failed target attach
func (s *Scheduler) removeRule(ctx context.Context, scheduleID string) {
	if _, err := s.client.DeleteRule(ctx, &eventbridge.DeleteRuleInput{
		Name: aws.String(scheduleID),
	}); err != nil && !isNotFound(err) {
		s.logger.Warn("Orphaned schedule rule left behind",
			zap.Error(err),
			zap.String("scheduleID", scheduleID),
		)
	}
}

// isNotFound reports whether err is EventBridge's resource-not-found
func isNotFound(err error) bool {
	var nf *types.ResourceNotFoundException
	return errors.As(err, &nf)
}
