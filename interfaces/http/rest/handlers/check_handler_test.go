package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pillbox-backend/application/ports"
	pkgerrors "pillbox-backend/pkg/errors"
	"pillbox-backend/tests/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestCheckHandler_SetCheck_Upserts(t *testing.T) {
	records := new(mocks.MockTakenRecordRepository)
	handler := NewCheckHandler(records, zap.NewNop())

	records.On("Upsert", mock.Anything, "device-1", "morning", "2026-01-29").
		Return(ports.TakenRecord{DocID: "device-1_morning_2026-01-29"}, nil)

	rec := postJSON(t, handler.SetCheck, "/api/v1/medicine-check", CheckRequest{
		DeviceID: "device-1",
		SlotID:   "morning",
		Date:     "2026-01-29",
		Checked:  true,
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp CheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Checked)
	assert.Equal(t, "device-1_morning_2026-01-29", resp.DocID)
}

func TestCheckHandler_SetCheck_UncheckDeletes(t *testing.T) {
	records := new(mocks.MockTakenRecordRepository)
	handler := NewCheckHandler(records, zap.NewNop())

	records.On("Delete", mock.Anything, "device-1", "morning", "2026-01-29").Return(nil)

	rec := postJSON(t, handler.SetCheck, "/api/v1/medicine-check", CheckRequest{
		DeviceID: "device-1",
		SlotID:   "morning",
		Date:     "2026-01-29",
		Checked:  false,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	records.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	var resp CheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Checked)
}

func TestCheckHandler_SetCheck_RejectsBadInput(t *testing.T) {
	records := new(mocks.MockTakenRecordRepository)
	handler := NewCheckHandler(records, zap.NewNop())

	cases := []struct {
		name string
		body CheckRequest
	}{
		{"missing deviceId", CheckRequest{SlotID: "morning", Date: "2026-01-29"}},
		{"missing slotId", CheckRequest{DeviceID: "device-1", Date: "2026-01-29"}},
		{"missing date", CheckRequest{DeviceID: "device-1", SlotID: "morning"}},
		{"malformed date", CheckRequest{DeviceID: "device-1", SlotID: "morning", Date: "Jan 29"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, handler.SetCheck, "/api/v1/medicine-check", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	records.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	records.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckHandler_SetCheck_InvalidJSON(t *testing.T) {
	handler := NewCheckHandler(new(mocks.MockTakenRecordRepository), zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/medicine-check", bytes.NewReader([]byte("{broken")))
	rec := httptest.NewRecorder()
	handler.SetCheck(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckHandler_SetCheck_RepositoryFailure(t *testing.T) {
	records := new(mocks.MockTakenRecordRepository)
	handler := NewCheckHandler(records, zap.NewNop())

	records.On("Upsert", mock.Anything, "device-1", "morning", "2026-01-29").
		Return(ports.TakenRecord{}, pkgerrors.NewInternalError("dynamodb put failed", errors.New("throttled")))

	rec := postJSON(t, handler.SetCheck, "/api/v1/medicine-check", CheckRequest{
		DeviceID: "device-1",
		SlotID:   "morning",
		Date:     "2026-01-29",
		Checked:  true,
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Failed to save check", resp.Error)
}

func TestCheckHandler_ListChecks(t *testing.T) {
	records := new(mocks.MockTakenRecordRepository)
	handler := NewCheckHandler(records, zap.NewNop())

	records.On("ListByDate", mock.Anything, "device-1", "2026-01-29").
		Return([]ports.TakenRecord{
			{DocID: "device-1_morning_2026-01-29", SlotID: "morning", Checked: true},
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/medicine-check?deviceId=device-1&date=2026-01-29", nil)
	rec := httptest.NewRecorder()
	handler.ListChecks(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ListChecksResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Checks, 1)
	assert.Equal(t, "morning", resp.Checks[0].SlotID)
}

func TestCheckHandler_ListChecks_RequiresQueryParams(t *testing.T) {
	handler := NewCheckHandler(new(mocks.MockTakenRecordRepository), zap.NewNop())

	for _, target := range []string{
		"/api/v1/medicine-check",
		"/api/v1/medicine-check?deviceId=device-1",
		"/api/v1/medicine-check?date=2026-01-29",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		handler.ListChecks(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "target %s", target)
	}
}
