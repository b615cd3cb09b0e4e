package handlers

import (
	"encoding/json"
	"net/http"

	"pillbox-backend/application/ports"
	dynamorepo "pillbox-backend/infrastructure/persistence/dynamodb"
	pkgerrors "pillbox-backend/pkg/errors"
	"pillbox-backend/pkg/utils"

	"go.uber.org/zap"
)

// CheckHandler handles the medicine-check persistence endpoint
type CheckHandler struct {
	records ports.TakenRecordRepository
	logger  *zap.Logger
}

// NewCheckHandler creates a new check handler
func NewCheckHandler(records ports.TakenRecordRepository, logger *zap.Logger) *CheckHandler {
	return &CheckHandler{
		records: records,
		logger:  logger,
	}
}

// CheckRequest represents the request body for marking a dose
type CheckRequest struct {
	DeviceID string `json:"deviceId" validate:"required"`
	SlotID   string `json:"slotId" validate:"required"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Checked  bool   `json:"checked"`
}

// CheckResponse represents the response for marking a dose
type CheckResponse struct {
	Success bool   `json:"success"`
	DocID   string `json:"docId"`
	Checked bool   `json:"checked"`
}

// ListChecksResponse represents a device's confirmations for one date
type ListChecksResponse struct {
	Success bool                `json:"success"`
	Checks  []ports.TakenRecord `json:"checks"`
}

// SetCheck handles POST /api/v1/medicine-check. Checking upserts the
// taken-record; unchecking deletes it outright so the delivery executor
// treats the slot as "not yet taken" again.
func (h *CheckHandler) SetCheck(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	docID := dynamorepo.DocID(req.DeviceID, req.SlotID, req.Date)

	if req.Checked {
		record, err := h.records.Upsert(r.Context(), req.DeviceID, req.SlotID, req.Date)
		if err != nil {
			h.logger.Error("Failed to mark dose taken", zap.Error(err), zap.String("docID", docID))
			respondError(w, pkgerrors.HTTPStatus(err), "Failed to save check")
			return
		}
		docID = record.DocID
	} else {
		if err := h.records.Delete(r.Context(), req.DeviceID, req.SlotID, req.Date); err != nil {
			h.logger.Error("Failed to clear dose mark", zap.Error(err), zap.String("docID", docID))
			respondError(w, pkgerrors.HTTPStatus(err), "Failed to delete check")
			return
		}
	}

	respondJSON(w, http.StatusOK, CheckResponse{
		Success: true,
		DocID:   docID,
		Checked: req.Checked,
	})
}

// ListChecks handles GET /api/v1/medicine-check?deviceId=...&date=...
// so a device can rebuild its checklist for the day.
func (h *CheckHandler) ListChecks(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("deviceId")
	date := r.URL.Query().Get("date")
	if deviceID == "" || date == "" {
		respondError(w, http.StatusBadRequest, "deviceId and date are required")
		return
	}

	records, err := h.records.ListByDate(r.Context(), deviceID, date)
	if err != nil {
		h.logger.Error("Failed to list checks",
			zap.Error(err),
			zap.String("deviceID", deviceID),
			zap.String("date", date),
		)
		respondError(w, pkgerrors.HTTPStatus(err), "Failed to list checks")
		return
	}

	respondJSON(w, http.StatusOK, ListChecksResponse{
		Success: true,
		Checks:  records,
	})
}
