// Package alarmapi is the device side's HTTP client for the scheduling
// endpoint. The alarm manager talks to the backend exclusively through
// this client, mirroring how the PWA calls its API route.
package alarmapi

import (
	"context"
	"time"

	"pillbox-backend/application/ports"
	"pillbox-backend/domain/schedule"
	pkgerrors "pillbox-backend/pkg/errors"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// Client implements ports.AlarmAPI and ports.CheckAPI over HTTP
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient creates a client rooted at the backend base URL
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(defaultTimeout).
			SetHeader("Content-Type", "application/json"),
		logger: logger,
	}
}

type scheduleRequest struct {
	Action         string `json:"action"`
	Token          string `json:"token,omitempty"`
	Time           string `json:"time,omitempty"`
	SlotID         string `json:"slotId,omitempty"`
	Heading        string `json:"heading,omitempty"`
	Content        string `json:"content,omitempty"`
	NotificationID string `json:"notificationId,omitempty"`
}

type scheduleResponse struct {
	Success        bool   `json:"success"`
	NotificationID string `json:"notificationId"`
	FireAt         string `json:"fireAt"`
	Error          string `json:"error"`
}

// Schedule registers a daily alarm and returns the schedule handle
func (c *Client) Schedule(ctx context.Context, token, hhmm string, slot schedule.TimeSlot, heading, content string) (ports.ScheduleResult, error) {
	var out scheduleResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(scheduleRequest{
			Action:  "schedule",
			Token:   token,
			Time:    hhmm,
			SlotID:  string(slot),
			Heading: heading,
			Content: content,
		}).
		SetResult(&out).
		SetError(&out).
		Post("/api/v1/schedule-notification")
	if err != nil {
		return ports.ScheduleResult{}, pkgerrors.NewExternalError("schedule request failed", err)
	}
	if resp.IsError() || !out.Success {
		c.logger.Warn("Schedule request rejected",
			zap.Int("status", resp.StatusCode()),
			zap.String("error", out.Error),
		)
		return ports.ScheduleResult{}, pkgerrors.NewExternalError("schedule request rejected: "+out.Error, nil)
	}

	fireAt, _ := time.Parse(time.RFC3339, out.FireAt)
	return ports.ScheduleResult{
		NotificationID: out.NotificationID,
		FireAt:         fireAt,
	}, nil
}

// Cancel releases a schedule handle. The backend treats unknown handles
// as success, so any 2xx settles the slot.
func (c *Client) Cancel(ctx context.Context, notificationID string) error {
	var out scheduleResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(scheduleRequest{
			Action:         "cancel",
			NotificationID: notificationID,
		}).
		SetResult(&out).
		SetError(&out).
		Post("/api/v1/schedule-notification")
	if err != nil {
		return pkgerrors.NewExternalError("cancel request failed", err)
	}
	if resp.IsError() || !out.Success {
		return pkgerrors.NewExternalError("cancel request rejected: "+out.Error, nil)
	}
	return nil
}

type checkRequest struct {
	DeviceID string `json:"deviceId"`
	SlotID   string `json:"slotId"`
	Date     string `json:"date"`
	Checked  bool   `json:"checked"`
}

type checkResponse struct {
	Success bool   `json:"success"`
	DocID   string `json:"docId"`
	Error   string `json:"error"`
}

// SetChecked records or clears a dose confirmation on the backend
func (c *Client) SetChecked(ctx context.Context, deviceID, slotID, date string, checked bool) error {
	var out checkResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(checkRequest{
			DeviceID: deviceID,
			SlotID:   slotID,
			Date:     date,
			Checked:  checked,
		}).
		SetResult(&out).
		SetError(&out).
		Post("/api/v1/medicine-check")
	if err != nil {
		return pkgerrors.NewExternalError("medicine-check request failed", err)
	}
	if resp.IsError() || !out.Success {
		return pkgerrors.NewExternalError("medicine-check request rejected: "+out.Error, nil)
	}
	return nil
}
