package schedule

import (
	"sort"
	"time"
)

// RelocationWeekday is the day on which TuesdayEvening medicines move to
// the evening slot. The reference deployment pins this to the weekly MTX
// evening so folic acid never shares a morning with it.
const RelocationWeekday = time.Tuesday

// baseMedicines is the static catalog of the reference deployment.
// The cycle start date anchors the vitamin D3 3-day rhythm.
var baseMedicines = []Medicine{
	// right after waking
	{ID: "med1", Name: "Levothyroxine", Dose: "(thyroid) with 200ml+ of water", Slot: SlotDawn},

	// breakfast
	{ID: "med4", Name: "Active folic acid", Dose: "1 tablet (0.8mg)", Slot: SlotMorning, TuesdayEvening: true},
	{ID: "med_omega3_morning", Name: "Omega-3", Dose: "1 softgel (1250mg)", Slot: SlotMorning},
	{ID: "med11", Name: "Vitamin K2", Dose: "1 tablet (100mcg)", Slot: SlotMorning},
	{
		ID:   "med10",
		Name: "Vitamin D3",
		Dose: "(4000 IU)",
		Slot: SlotMorning,
		Recurrence: DayCycle{
			Start:      time.Date(2026, time.January, 28, 0, 0, 0, 0, time.UTC),
			PeriodDays: 3,
		},
	},
	{ID: "med5", Name: "Brazil nuts", Dose: "2 pieces", Slot: SlotMorning},

	// lunch
	{ID: "med6", Name: "Digestive enzyme", Dose: "1 capsule", Slot: SlotNoon},
	{ID: "med3", Name: "Rheumatism prescription", Dose: "(midday set)", Slot: SlotNoon},
	{ID: "med7", Name: "Calcium citrate", Dose: "1 tablet (250mg)", Slot: SlotNoon},
	{ID: "med8", Name: "Magnesium", Dose: "1 tablet (100mg)", Slot: SlotNoon},

	// afternoon snack
	{ID: "med12", Name: "Calcium citrate", Dose: "1 tablet (250mg)", Slot: SlotSnack},
	{ID: "med13", Name: "Magnesium", Dose: "1 tablet (100mg)", Slot: SlotSnack},

	// dinner
	{ID: "med14", Name: "Digestive enzyme", Dose: "1 capsule", Slot: SlotEvening},
	{ID: "med15", Name: "Rheumatism prescription", Dose: "(evening set)", Slot: SlotEvening},
	{ID: "med16", Name: "Omega-3", Dose: "1 softgel (1250mg)", Slot: SlotEvening},
	{
		ID:         "med_mtx",
		Name:       "MTX (6 tablets)",
		Dose:       "",
		Slot:       SlotEvening,
		Recurrence: WeekdayCycle{Target: time.Monday},
	},

	// 30 min after dinner
	{ID: "med17", Name: "Calcium citrate", Dose: "1 tablet (250mg)", Slot: SlotNight},
	{ID: "med18", Name: "Magnesium", Dose: "1 tablet (100mg)", Slot: SlotNight},
}

// BaseMedicines returns the static catalog before any weekday relocation
func BaseMedicines() []Medicine {
	out := make([]Medicine, len(baseMedicines))
	copy(out, baseMedicines)
	return out
}

// GroupBySlot buckets medicines into their slot for the given day.
// A TuesdayEvening medicine lands in the evening bucket when today is the
// relocation weekday, its declared slot otherwise. Within a bucket the
// non-recurring medicines come first; recurring ones keep declared order.
func GroupBySlot(meds []Medicine, today time.Time) map[TimeSlot][]Medicine {
	relocate := today.Weekday() == RelocationWeekday

	result := make(map[TimeSlot][]Medicine, len(timeSlots))
	for _, s := range timeSlots {
		result[s.ID] = []Medicine{}
	}

	for _, med := range meds {
		slot := med.Slot
		if med.TuesdayEvening && relocate {
			slot = SlotEvening
			med.Slot = SlotEvening
		}
		result[slot] = append(result[slot], med)
	}

	for slot := range result {
		meds := result[slot]
		sort.SliceStable(meds, func(i, j int) bool {
			return !meds[i].Recurring() && meds[j].Recurring()
		})
	}

	return result
}

// EligibleMedicines filters a bucket down to the medicines due today
func EligibleMedicines(meds []Medicine, today time.Time) []Medicine {
	out := make([]Medicine, 0, len(meds))
	for _, med := range meds {
		if CycleStatus(med, today).Active {
			out = append(out, med)
		}
	}
	return out
}
