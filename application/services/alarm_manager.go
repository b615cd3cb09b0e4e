package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"pillbox-backend/application/ports"
	"pillbox-backend/domain/alarm"
	"pillbox-backend/domain/schedule"
	"pillbox-backend/infrastructure/localstore"
	pkgerrors "pillbox-backend/pkg/errors"

	"go.uber.org/zap"
)

// ErrSaveInProgress rejects a batch save that overlaps a running one
var ErrSaveInProgress = errors.New("alarm save already in progress")

// AlarmManager drives the per-slot alarm workflow: an explicit
// off/pending/on machine per slot with optimistic updates that roll back
// when the scheduling endpoint fails. A slot whose request is in flight
// ignores further toggles instead of queueing them, and a batch save is
// serialized as a whole against rapid repeated invocations.
type AlarmManager struct {
	mu       sync.Mutex
	api      ports.AlarmAPI
	tokens   ports.TokenSource
	store    localstore.Store
	settings alarm.Settings
	states   map[schedule.TimeSlot]alarm.SlotState
	saving   bool
	logger   *zap.Logger
}

// NewAlarmManager restores the persisted settings (defaults when nothing
// or garbage is stored) and derives each slot's state from them.
func NewAlarmManager(
	api ports.AlarmAPI,
	tokens ports.TokenSource,
	store localstore.Store,
	logger *zap.Logger,
) *AlarmManager {
	settings := alarm.DefaultSettings()
	if raw, ok := store.Get(localstore.AlarmSettingsKey); ok {
		var loaded alarm.Settings
		if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
			logger.Warn("Stored alarm settings unreadable, using defaults", zap.Error(err))
		} else {
			for slot, setting := range loaded {
				if schedule.ValidSlot(slot) {
					settings[slot] = setting
				}
			}
		}
	}

	states := make(map[schedule.TimeSlot]alarm.SlotState, len(settings))
	for slot, setting := range settings {
		if setting.IsOn && setting.NotificationID != "" {
			states[slot] = alarm.StateOn
		} else {
			states[slot] = alarm.StateOff
		}
	}

	return &AlarmManager{
		api:      api,
		tokens:   tokens,
		store:    store,
		settings: settings,
		states:   states,
		logger:   logger,
	}
}

// State returns the machine state of one slot
func (m *AlarmManager) State(slot schedule.TimeSlot) alarm.SlotState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[slot]
}

// Settings returns a snapshot of the current alarm settings
func (m *AlarmManager) Settings() alarm.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings.Clone()
}

// Toggle flips one slot's alarm. Enabling acquires a push token first and
// never reaches the API without one; disabling cancels the held schedule,
// where "already gone" still settles the slot off. The UI state flips
// optimistically and rolls back on failure. A toggle while the slot is
// pending is a no-op.
func (m *AlarmManager) Toggle(ctx context.Context, slot schedule.TimeSlot) error {
	m.mu.Lock()
	if m.states[slot] == alarm.StatePending {
		m.mu.Unlock()
		m.logger.Debug("Toggle ignored, slot pending", zap.String("slot", string(slot)))
		return nil
	}

	prev := m.settings[slot]
	target := !prev.IsOn

	m.states[slot] = alarm.StatePending
	// Optimistic flip; the id only changes once the server answers.
	m.settings[slot] = alarm.Setting{Time: prev.Time, IsOn: target, NotificationID: prev.NotificationID}
	m.persistLocked()
	m.mu.Unlock()

	if target {
		return m.enable(ctx, slot, prev)
	}
	return m.disable(ctx, slot, prev)
}

// SetTime changes one slot's wall-clock time. While the alarm is on the
// existing schedule is cancelled and a new one created; if the creation
// fails the slot settles off rather than staying on with no handle.
func (m *AlarmManager) SetTime(ctx context.Context, slot schedule.TimeSlot, hhmm string) error {
	if err := (alarm.Setting{Time: hhmm}).Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	if m.states[slot] == alarm.StatePending {
		m.mu.Unlock()
		m.logger.Debug("SetTime ignored, slot pending", zap.String("slot", string(slot)))
		return nil
	}

	prev := m.settings[slot]
	if prev.Time == hhmm {
		m.mu.Unlock()
		return nil
	}

	if !prev.IsOn {
		m.settings[slot] = alarm.Setting{Time: hhmm}
		m.persistLocked()
		m.mu.Unlock()
		return nil
	}

	m.states[slot] = alarm.StatePending
	m.settings[slot] = alarm.Setting{Time: hhmm, IsOn: true, NotificationID: prev.NotificationID}
	m.persistLocked()
	m.mu.Unlock()

	return m.reschedule(ctx, slot, prev, hhmm)
}

// SaveAll applies an edited settings sheet in one batch. Each changed slot
// gets its minimal transition, run concurrently; unchanged slots are left
// alone. Overlapping batch saves are rejected with ErrSaveInProgress
// until the first one completes.
func (m *AlarmManager) SaveAll(ctx context.Context, next alarm.Settings) error {
	for _, setting := range next {
		if err := setting.Validate(); err != nil {
			return err
		}
	}

	m.mu.Lock()
	if m.saving {
		m.mu.Unlock()
		return ErrSaveInProgress
	}
	m.saving = true

	type change struct {
		slot schedule.TimeSlot
		prev alarm.Setting
		next alarm.Setting
	}
	var changes []change
	for slot, target := range next {
		if !schedule.ValidSlot(slot) {
			continue
		}
		if m.states[slot] == alarm.StatePending {
			continue
		}
		prev := m.settings[slot]
		if prev.Time == target.Time && prev.IsOn == target.IsOn {
			continue
		}
		changes = append(changes, change{slot: slot, prev: prev, next: target})
		m.states[slot] = alarm.StatePending
		m.settings[slot] = alarm.Setting{Time: target.Time, IsOn: target.IsOn, NotificationID: prev.NotificationID}
	}
	m.persistLocked()
	m.mu.Unlock()

	var (
		wg      sync.WaitGroup
		errMu   sync.Mutex
		allErrs []error
	)
	record := func(err error) {
		if err != nil {
			errMu.Lock()
			allErrs = append(allErrs, err)
			errMu.Unlock()
		}
	}

	for _, ch := range changes {
		wg.Add(1)
		go func(ch change) {
			defer wg.Done()
			switch {
			case ch.next.IsOn && !ch.prev.IsOn:
				record(m.enable(ctx, ch.slot, alarm.Setting{Time: ch.next.Time}))
			case !ch.next.IsOn && ch.prev.IsOn:
				record(m.disable(ctx, ch.slot, ch.prev))
			case ch.next.IsOn && ch.prev.IsOn:
				record(m.reschedule(ctx, ch.slot, ch.prev, ch.next.Time))
			default:
				// Off stays off; only the time changed.
				m.settle(ch.slot, alarm.Setting{Time: ch.next.Time}, alarm.StateOff)
			}
		}(ch)
	}
	wg.Wait()

	m.mu.Lock()
	m.saving = false
	m.mu.Unlock()

	return errors.Join(allErrs...)
}

// enable acquires a token and creates the schedule; prev carries the
// settled setting to roll back to. The slot must already be pending.
func (m *AlarmManager) enable(ctx context.Context, slot schedule.TimeSlot, prev alarm.Setting) error {
	token, err := m.tokens.Token(ctx)
	if err != nil || token == "" {
		m.settle(slot, alarm.Setting{Time: prev.Time}, alarm.StateOff)
		m.logger.Warn("Alarm not enabled, no push token",
			zap.String("slot", string(slot)),
			zap.Error(err),
		)
		if err == nil {
			err = pkgerrors.NewUnavailableError("no push token available")
		}
		return err
	}

	result, err := m.api.Schedule(ctx, token, prev.Time, slot, "", "")
	if err != nil {
		m.settle(slot, alarm.Setting{Time: prev.Time}, alarm.StateOff)
		m.logger.Warn("Alarm schedule failed, rolled back",
			zap.String("slot", string(slot)),
			zap.Error(err),
		)
		return err
	}

	m.settle(slot, alarm.Setting{Time: prev.Time, IsOn: true, NotificationID: result.NotificationID}, alarm.StateOn)
	m.logger.Info("Alarm enabled",
		zap.String("slot", string(slot)),
		zap.String("time", prev.Time),
		zap.String("notificationID", result.NotificationID),
	)
	return nil
}

// disable cancels the held schedule. The backend reports success for
// handles that already fired, so cancel failures here are real transport
// or server errors and roll the slot back to on.
func (m *AlarmManager) disable(ctx context.Context, slot schedule.TimeSlot, prev alarm.Setting) error {
	if prev.NotificationID != "" {
		if err := m.api.Cancel(ctx, prev.NotificationID); err != nil {
			m.settle(slot, prev, alarm.StateOn)
			m.logger.Warn("Alarm cancel failed, rolled back",
				zap.String("slot", string(slot)),
				zap.Error(err),
			)
			return err
		}
	}

	m.settle(slot, alarm.Setting{Time: prev.Time}, alarm.StateOff)
	m.logger.Info("Alarm disabled", zap.String("slot", string(slot)))
	return nil
}

// reschedule moves an active alarm to a new time: cancel, then create.
// When the new schedule cannot be created the slot settles off so no
// stale "on with no handle" state survives.
func (m *AlarmManager) reschedule(ctx context.Context, slot schedule.TimeSlot, prev alarm.Setting, hhmm string) error {
	if prev.NotificationID != "" {
		if err := m.api.Cancel(ctx, prev.NotificationID); err != nil {
			m.settle(slot, prev, alarm.StateOn)
			return err
		}
	}

	token, err := m.tokens.Token(ctx)
	if err != nil || token == "" {
		m.settle(slot, alarm.Setting{Time: hhmm}, alarm.StateOff)
		if err == nil {
			err = pkgerrors.NewUnavailableError("no push token available")
		}
		return err
	}

	result, err := m.api.Schedule(ctx, token, hhmm, slot, "", "")
	if err != nil {
		m.settle(slot, alarm.Setting{Time: hhmm}, alarm.StateOff)
		m.logger.Warn("Alarm reschedule failed, slot off",
			zap.String("slot", string(slot)),
			zap.Error(err),
		)
		return err
	}

	m.settle(slot, alarm.Setting{Time: hhmm, IsOn: true, NotificationID: result.NotificationID}, alarm.StateOn)
	return nil
}

// settle records a slot's final setting and state and persists the sheet
func (m *AlarmManager) settle(slot schedule.TimeSlot, setting alarm.Setting, state alarm.SlotState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[slot] = setting
	m.states[slot] = state
	m.persistLocked()
}

// persistLocked writes the settings blob; callers hold m.mu. The store is
// fail-soft, so a failed write leaves the in-memory sheet authoritative.
func (m *AlarmManager) persistLocked() {
	data, err := json.Marshal(m.settings)
	if err != nil {
		m.logger.Warn("Alarm settings marshal failed", zap.Error(err))
		return
	}
	m.store.Set(localstore.AlarmSettingsKey, string(data))
}
