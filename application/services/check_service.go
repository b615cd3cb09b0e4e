package services

import (
	"context"
	"time"

	"pillbox-backend/application/ports"
	"pillbox-backend/domain/schedule"
	"pillbox-backend/infrastructure/localstore"
	"pillbox-backend/pkg/clock"

	"go.uber.org/zap"
)

// CheckService keeps the device checklist: per-medicine flags in the
// fail-soft local store, and the slot-level taken-record on the backend
// that the delivery executor consults. Local writes always win for the
// running session; a failed remote sync is surfaced but never undoes the
// local flag (last-write-wins, no offline conflict resolution).
type CheckService struct {
	local    localstore.Store
	api      ports.CheckAPI
	deviceID string
	home     *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewCheckService creates a new CheckService
func NewCheckService(
	local localstore.Store,
	api ports.CheckAPI,
	deviceID string,
	home *time.Location,
	logger *zap.Logger,
) *CheckService {
	return &CheckService{
		local:    local,
		api:      api,
		deviceID: deviceID,
		home:     home,
		now:      time.Now,
		logger:   logger,
	}
}

// WithNow overrides the clock for tests
func (s *CheckService) WithNow(now func() time.Time) *CheckService {
	s.now = now
	return s
}

// Checked reports the local flag of one medicine
func (s *CheckService) Checked(med schedule.Medicine) bool {
	v, ok := s.local.Get(med.ID)
	return ok && v == "1"
}

// GroupChecked reports whether every medicine of the bucket that is due
// today is checked. An empty eligible set counts as unchecked.
func (s *CheckService) GroupChecked(meds []schedule.Medicine, today time.Time) bool {
	eligible := schedule.EligibleMedicines(meds, today)
	if len(eligible) == 0 {
		return false
	}
	for _, med := range eligible {
		if !s.Checked(med) {
			return false
		}
	}
	return true
}

// SetMedicineChecked flips one medicine's flag and re-syncs the slot's
// taken-record: the record exists exactly while the whole slot is done.
func (s *CheckService) SetMedicineChecked(ctx context.Context, med schedule.Medicine, slotMeds []schedule.Medicine, checked bool) error {
	s.setFlag(med.ID, checked)
	return s.syncSlot(ctx, med.Slot, slotMeds)
}

// ToggleGroup checks every eligible medicine of the slot when any is still
// open, unchecks all of them when the slot was complete.
func (s *CheckService) ToggleGroup(ctx context.Context, slot schedule.TimeSlot, slotMeds []schedule.Medicine) error {
	today := s.now().In(s.home)
	eligible := schedule.EligibleMedicines(slotMeds, today)
	if len(eligible) == 0 {
		return nil
	}

	target := !s.GroupChecked(slotMeds, today)
	for _, med := range eligible {
		s.setFlag(med.ID, target)
	}
	return s.syncSlot(ctx, slot, slotMeds)
}

// Reset wipes every local flag and the alarm settings blob
func (s *CheckService) Reset() {
	s.local.Clear()
	s.logger.Info("Local check state cleared")
}

// setFlag writes the "1"/"0" flag; a failed write only warns, the
// in-memory state of the caller remains authoritative for the session
func (s *CheckService) setFlag(medicineID string, checked bool) {
	value := "0"
	if checked {
		value = "1"
	}
	if !s.local.Set(medicineID, value) {
		s.logger.Warn("Check flag not persisted", zap.String("medicineID", medicineID))
	}
}

// syncSlot upserts the slot's taken-record while the slot is fully
// checked and deletes it otherwise, so the executor's lookup matches what
// the user sees.
func (s *CheckService) syncSlot(ctx context.Context, slot schedule.TimeSlot, slotMeds []schedule.Medicine) error {
	today := s.now().In(s.home)
	date := clock.DateString(today, s.home)
	done := s.GroupChecked(slotMeds, today)

	if err := s.api.SetChecked(ctx, s.deviceID, string(slot), date, done); err != nil {
		s.logger.Warn("Taken-record sync failed",
			zap.Error(err),
			zap.String("slotID", string(slot)),
			zap.Bool("checked", done),
		)
		return err
	}
	return nil
}
