// Package push is the HTTP client for the FCM-style push gateway.
package push

import (
	"context"
	"fmt"
	"time"

	"pillbox-backend/application/ports"
	pkgerrors "pillbox-backend/pkg/errors"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// Client implements ports.PushSender against the legacy FCM send endpoint
type Client struct {
	http      *resty.Client
	serverKey string
	logger    *zap.Logger
}

// NewClient creates a push gateway client. serverKey may be empty in
// development; Send then fails with an unavailable error instead of
// issuing an unauthenticated request.
func NewClient(gatewayURL, serverKey string, logger *zap.Logger) *Client {
	http := resty.New().
		SetBaseURL(gatewayURL).
		SetTimeout(defaultTimeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:      http,
		serverKey: serverKey,
		logger:    logger,
	}
}

// sendRequest is the gateway message envelope
type sendRequest struct {
	To           string            `json:"to"`
	Notification notification      `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type notification struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	Icon    string `json:"icon,omitempty"`
	Channel string `json:"android_channel_id,omitempty"`
	Sound   string `json:"sound,omitempty"`
}

// sendResponse is the subset of the gateway reply this client reads
type sendResponse struct {
	MessageID int64  `json:"message_id"`
	Success   int    `json:"success"`
	Failure   int    `json:"failure"`
	Error     string `json:"error,omitempty"`
}

// Send delivers one push message and returns the gateway message id
func (c *Client) Send(ctx context.Context, msg ports.PushMessage) (string, error) {
	if c.serverKey == "" {
		return "", pkgerrors.NewUnavailableError("push gateway credentials are not configured")
	}

	var out sendResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "key="+c.serverKey).
		SetBody(sendRequest{
			To: msg.Token,
			Notification: notification{
				Title:   msg.Title,
				Body:    msg.Body,
				Icon:    "icon-192",
				Channel: msg.Channel,
				Sound:   "default",
			},
			Data: msg.Data,
		}).
		SetResult(&out).
		Post("")
	if err != nil {
		c.logger.Error("Push gateway request failed", zap.Error(err))
		return "", pkgerrors.NewExternalError("push gateway request failed", err)
	}

	if resp.IsError() {
		c.logger.Error("Push gateway rejected message",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()),
		)
		return "", pkgerrors.NewExternalError(
			fmt.Sprintf("push gateway returned status %d", resp.StatusCode()), nil)
	}

	if out.Failure > 0 || (out.Success == 0 && out.Error != "") {
		return "", pkgerrors.NewExternalError("push gateway reported delivery failure: "+out.Error, nil)
	}

	messageID := fmt.Sprintf("%d", out.MessageID)
	c.logger.Debug("Push message delivered", zap.String("messageID", messageID))
	return messageID, nil
}
