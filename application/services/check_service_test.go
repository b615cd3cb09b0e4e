package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"pillbox-backend/domain/schedule"
	"pillbox-backend/infrastructure/localstore"
	"pillbox-backend/tests/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type checkFixture struct {
	api     *mocks.MockCheckAPI
	store   localstore.Store
	service *CheckService
	now     time.Time
}

func newCheckFixture(t *testing.T) *checkFixture {
	t.Helper()
	home, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	api := new(mocks.MockCheckAPI)
	store := localstore.NewMemoryStore()
	now := time.Date(2026, time.January, 29, 8, 0, 0, 0, home)
	service := NewCheckService(store, api, "device-1", home, zap.NewNop()).
		WithNow(func() time.Time { return now })

	return &checkFixture{api: api, store: store, service: service, now: now}
}

// Two always-due medicines and one off-cycle recurring one. On the fixture
// date (2026-01-29) the three-day rhythm started the day before, so the
// recurring entry is not eligible.
func morningMeds() []schedule.Medicine {
	return []schedule.Medicine{
		{ID: "med1", Name: "Levothyroxine", Slot: schedule.SlotMorning},
		{ID: "med2", Name: "Magnesium", Slot: schedule.SlotMorning},
		{
			ID: "med10", Name: "Vitamin D3", Slot: schedule.SlotMorning,
			Recurrence: schedule.DayCycle{
				Start:      time.Date(2026, time.January, 28, 0, 0, 0, 0, time.UTC),
				PeriodDays: 3,
			},
		},
	}
}

func TestCheckService_CheckedReadsFlag(t *testing.T) {
	f := newCheckFixture(t)
	med := morningMeds()[0]

	assert.False(t, f.service.Checked(med))

	f.store.Set("med1", "1")
	assert.True(t, f.service.Checked(med))

	f.store.Set("med1", "0")
	assert.False(t, f.service.Checked(med))
}

func TestCheckService_GroupChecked(t *testing.T) {
	f := newCheckFixture(t)
	meds := morningMeds()

	assert.False(t, f.service.GroupChecked(meds, f.now))

	// Only the eligible medicines count; the off-cycle one is ignored.
	f.store.Set("med1", "1")
	f.store.Set("med2", "1")
	assert.True(t, f.service.GroupChecked(meds, f.now))

	f.store.Set("med2", "0")
	assert.False(t, f.service.GroupChecked(meds, f.now))
}

func TestCheckService_GroupChecked_EmptyEligibleIsFalse(t *testing.T) {
	f := newCheckFixture(t)
	// The only medicine is off-cycle today, so nothing is due.
	meds := morningMeds()[2:]

	assert.False(t, f.service.GroupChecked(meds, f.now))
}

func TestCheckService_SetMedicineChecked_SyncsSlotRecord(t *testing.T) {
	f := newCheckFixture(t)
	meds := morningMeds()
	f.store.Set("med2", "1")

	// Checking the last open medicine completes the slot: the record is
	// upserted for today's home-zone date.
	f.api.On("SetChecked", mock.Anything, "device-1", "morning", "2026-01-29", true).Return(nil).Once()
	err := f.service.SetMedicineChecked(context.Background(), meds[0], meds, true)
	require.NoError(t, err)
	assert.True(t, f.service.Checked(meds[0]))

	// Unchecking any medicine removes the record again.
	f.api.On("SetChecked", mock.Anything, "device-1", "morning", "2026-01-29", false).Return(nil).Once()
	err = f.service.SetMedicineChecked(context.Background(), meds[0], meds, false)
	require.NoError(t, err)
	assert.False(t, f.service.Checked(meds[0]))

	f.api.AssertExpectations(t)
}

func TestCheckService_SetMedicineChecked_PartialSlotStaysUnsynced(t *testing.T) {
	f := newCheckFixture(t)
	meds := morningMeds()

	// One of two eligible medicines checked: the slot is not done.
	f.api.On("SetChecked", mock.Anything, "device-1", "morning", "2026-01-29", false).Return(nil)
	err := f.service.SetMedicineChecked(context.Background(), meds[0], meds, true)

	require.NoError(t, err)
	assert.True(t, f.service.Checked(meds[0]))
}

func TestCheckService_SetMedicineChecked_SyncFailureKeepsLocalFlag(t *testing.T) {
	f := newCheckFixture(t)
	meds := morningMeds()
	f.api.On("SetChecked", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("backend unreachable"))

	err := f.service.SetMedicineChecked(context.Background(), meds[0], meds, true)

	// The failure surfaces but the local flag survives.
	assert.Error(t, err)
	assert.True(t, f.service.Checked(meds[0]))
}

func TestCheckService_ToggleGroup_ChecksAllOpen(t *testing.T) {
	f := newCheckFixture(t)
	meds := morningMeds()
	f.store.Set("med1", "1")

	f.api.On("SetChecked", mock.Anything, "device-1", "morning", "2026-01-29", true).Return(nil)

	err := f.service.ToggleGroup(context.Background(), schedule.SlotMorning, meds)

	require.NoError(t, err)
	assert.True(t, f.service.Checked(meds[0]))
	assert.True(t, f.service.Checked(meds[1]))
	// The off-cycle medicine is never touched.
	_, ok := f.store.Get("med10")
	assert.False(t, ok)
}

func TestCheckService_ToggleGroup_UnchecksCompleteSlot(t *testing.T) {
	f := newCheckFixture(t)
	meds := morningMeds()
	f.store.Set("med1", "1")
	f.store.Set("med2", "1")

	f.api.On("SetChecked", mock.Anything, "device-1", "morning", "2026-01-29", false).Return(nil)

	err := f.service.ToggleGroup(context.Background(), schedule.SlotMorning, meds)

	require.NoError(t, err)
	assert.False(t, f.service.Checked(meds[0]))
	assert.False(t, f.service.Checked(meds[1]))
}

func TestCheckService_ToggleGroup_NothingEligibleIsNoOp(t *testing.T) {
	f := newCheckFixture(t)
	meds := morningMeds()[2:]

	err := f.service.ToggleGroup(context.Background(), schedule.SlotMorning, meds)

	assert.NoError(t, err)
	f.api.AssertNotCalled(t, "SetChecked", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckService_Reset(t *testing.T) {
	f := newCheckFixture(t)
	f.store.Set("med1", "1")
	f.store.Set(localstore.AlarmSettingsKey, "{}")

	f.service.Reset()

	_, ok := f.store.Get("med1")
	assert.False(t, ok)
	_, ok = f.store.Get(localstore.AlarmSettingsKey)
	assert.False(t, ok)
}
