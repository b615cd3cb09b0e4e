package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"pillbox-backend/application/services"
	pkgerrors "pillbox-backend/pkg/errors"
	"pillbox-backend/pkg/utils"

	"go.uber.org/zap"
)

// NotificationHandler handles the scheduling broker endpoint
type NotificationHandler struct {
	notifications *services.NotificationService
	logger        *zap.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications *services.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		logger:        logger,
	}
}

// NotificationRequest is the single action-dispatched request body of the
// scheduling endpoint; which fields are required depends on the action.
type NotificationRequest struct {
	Action         string `json:"action" validate:"required,oneof=schedule execute-send cancel"`
	Token          string `json:"token,omitempty"`
	Time           string `json:"time,omitempty"`
	SlotID         string `json:"slotId,omitempty"`
	DeviceID       string `json:"deviceId,omitempty"`
	Heading        string `json:"heading,omitempty"`
	Content        string `json:"content,omitempty"`
	NotificationID string `json:"notificationId,omitempty"`
}

// ScheduleResponse answers a schedule action
type ScheduleResponse struct {
	Success        bool   `json:"success"`
	NotificationID string `json:"notificationId"`
	FireAt         string `json:"fireAt"`
}

// ExecuteResponse answers an execute-send action
type ExecuteResponse struct {
	Success   bool   `json:"success"`
	Skipped   bool   `json:"skipped,omitempty"`
	MessageID string `json:"messageId,omitempty"`
}

// CancelResponse answers a cancel action
type CancelResponse struct {
	Success bool `json:"success"`
}

// Handle dispatches POST /api/v1/schedule-notification by action
func (h *NotificationHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req NotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch req.Action {
	case "schedule":
		h.schedule(w, r, req)
	case "execute-send":
		h.executeSend(w, r, req)
	case "cancel":
		h.cancel(w, r, req)
	}
}

func (h *NotificationHandler) schedule(w http.ResponseWriter, r *http.Request, req NotificationRequest) {
	if req.Token == "" || req.Time == "" {
		respondError(w, http.StatusBadRequest, "Missing token or time")
		return
	}

	result, err := h.notifications.Schedule(r.Context(), services.ScheduleRequest{
		Token:    req.Token,
		Time:     req.Time,
		SlotID:   req.SlotID,
		DeviceID: req.DeviceID,
		Heading:  req.Heading,
		Content:  req.Content,
	})
	if err != nil {
		h.logger.Error("Schedule action failed", zap.Error(err), zap.String("slotID", req.SlotID))
		respondError(w, pkgerrors.HTTPStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, ScheduleResponse{
		Success:        true,
		NotificationID: result.NotificationID,
		FireAt:         result.FireAt.Format(time.RFC3339),
	})
}

func (h *NotificationHandler) executeSend(w http.ResponseWriter, r *http.Request, req NotificationRequest) {
	if req.Token == "" {
		respondError(w, http.StatusBadRequest, "Missing token")
		return
	}

	result, err := h.notifications.ExecuteSend(r.Context(), services.ExecuteRequest{
		Token:    req.Token,
		Heading:  req.Heading,
		Content:  req.Content,
		DeviceID: req.DeviceID,
		SlotID:   req.SlotID,
	})
	if err != nil {
		h.logger.Error("Execute-send action failed", zap.Error(err), zap.String("slotID", req.SlotID))
		respondError(w, pkgerrors.HTTPStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, ExecuteResponse{
		Success:   true,
		Skipped:   result.Skipped,
		MessageID: result.MessageID,
	})
}

func (h *NotificationHandler) cancel(w http.ResponseWriter, r *http.Request, req NotificationRequest) {
	if req.NotificationID == "" {
		respondError(w, http.StatusBadRequest, "Missing notificationId")
		return
	}

	if err := h.notifications.Cancel(r.Context(), req.NotificationID); err != nil {
		h.logger.Error("Cancel action failed", zap.Error(err), zap.String("notificationID", req.NotificationID))
		respondError(w, pkgerrors.HTTPStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, CancelResponse{Success: true})
}
