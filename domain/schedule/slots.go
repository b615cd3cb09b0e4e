package schedule

// TimeSlot identifies one of the six fixed daily medication windows
type TimeSlot string

const (
	SlotDawn    TimeSlot = "dawn"
	SlotMorning TimeSlot = "morning"
	SlotNoon    TimeSlot = "noon"
	SlotSnack   TimeSlot = "snack"
	SlotEvening TimeSlot = "evening"
	SlotNight   TimeSlot = "night"
)

// TimeSlotInfo carries the display metadata for a slot
type TimeSlotInfo struct {
	ID    TimeSlot
	Label string
	Icon  string
	Notes []string
}

// timeSlots is the canonical display order of the six windows
var timeSlots = []TimeSlotInfo{
	{
		ID:    SlotDawn,
		Label: "Right after waking",
		Icon:  "dawn",
		Notes: []string{
			"Keep a 4-hour gap from calcium (blocks absorption)",
			"Fast for 1 hour",
		},
	},
	{
		ID:    SlotMorning,
		Label: "Breakfast",
		Icon:  "morning",
		Notes: []string{
			"Pair with olive oil and eggs so the fat-soluble ones (omega-3, D3, K2) absorb",
			"Folic acid moves to the evening on Tuesdays",
			"Vitamin D3 only every 3rd day",
		},
	},
	{
		ID:    SlotNoon,
		Label: "Lunch",
		Icon:  "sun",
		Notes: []string{
			"Digestive enzyme right at the start of the meal",
			"Take the harsh prescriptions with the largest meal to spare the stomach",
		},
	},
	{
		ID:    SlotSnack,
		Label: "Afternoon snack",
		Icon:  "cookie",
		Notes: []string{
			"Fine on an empty stomach",
			"Calcium caps out around 500mg per sitting, so it is split across the day",
		},
	},
	{
		ID:    SlotEvening,
		Label: "Dinner",
		Icon:  "moon",
		Notes: []string{
			"Completes the daily 2,500mg of omega-3",
			"Covers overnight joint inflammation",
		},
	},
	{
		ID:    SlotNight,
		Label: "30 min after dinner",
		Icon:  "wait",
		Notes: []string{
			"Natural wind-down before sleep",
		},
	},
}

// TimeSlots returns the slot metadata in display order
func TimeSlots() []TimeSlotInfo {
	out := make([]TimeSlotInfo, len(timeSlots))
	copy(out, timeSlots)
	return out
}

// ValidSlot reports whether id names one of the six slots
func ValidSlot(id TimeSlot) bool {
	switch id {
	case SlotDawn, SlotMorning, SlotNoon, SlotSnack, SlotEvening, SlotNight:
		return true
	}
	return false
}

// AllSlots returns the slot identifiers in display order
func AllSlots() []TimeSlot {
	out := make([]TimeSlot, 0, len(timeSlots))
	for _, s := range timeSlots {
		out = append(out, s.ID)
	}
	return out
}
