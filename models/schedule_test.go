package models

import (
	"strings"
	"testing"
	"time"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return parsed
}

func testPlant(frequency int, unit, timeOfDay string, lastWatered time.Time) Plant {
	p := Plant{
		Name:     "Monstera",
		Species:  "Monstera Deliciosa",
		IsActive: true,
		WateringNeeds: WateringNeeds{
			QuantityInLiters:   0.5,
			Frequency:          frequency,
			FrequencyUnit:      unit,
			LastWatered:        lastWatered,
			PreferredTimeOfDay: timeOfDay,
			ReminderEnabled:    true,
		},
	}
	p.RefreshSchedule()
	return p
}

func TestComputeNextWatering(t *testing.T) {
	lastWatered := mustTime(t, "2024-01-01T10:00:00Z")

	cases := []struct {
		name      string
		frequency int
		unit      string
		timeOfDay string
		want      string
	}{
		{"three days morning", 3, FrequencyUnitDays, TimeOfDayMorning, "2024-01-04T08:00:00Z"},
		{"three days afternoon", 3, FrequencyUnitDays, TimeOfDayAfternoon, "2024-01-04T14:00:00Z"},
		{"three days evening", 3, FrequencyUnitDays, TimeOfDayEvening, "2024-01-04T18:00:00Z"},
		{"two weeks morning", 2, FrequencyUnitWeeks, TimeOfDayMorning, "2024-01-15T08:00:00Z"},
		{"one week evening", 1, FrequencyUnitWeeks, TimeOfDayEvening, "2024-01-08T18:00:00Z"},
		{"unknown preference falls back to morning", 3, FrequencyUnitDays, "midnight", "2024-01-04T08:00:00Z"},
		{"month rollover", 31, FrequencyUnitDays, TimeOfDayMorning, "2024-02-01T08:00:00Z"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeNextWatering(lastWatered, tc.frequency, tc.unit, tc.timeOfDay)
			if want := mustTime(t, tc.want); !got.Equal(want) {
				t.Fatalf("got %v, want %v", got, want)
			}
		})
	}
}

func TestComputeNextWateringIgnoresInputClock(t *testing.T) {
	// Whatever the last watering's own time of day, the result lands on the
	// fixed wall clock for the preference.
	for _, input := range []string{
		"2024-01-01T00:00:00Z",
		"2024-01-01T10:30:45Z",
		"2024-01-01T23:59:59Z",
	} {
		got := ComputeNextWatering(mustTime(t, input), 3, FrequencyUnitDays, TimeOfDayAfternoon)
		if want := mustTime(t, "2024-01-04T14:00:00Z"); !got.Equal(want) {
			t.Fatalf("input %s: got %v, want %v", input, got, want)
		}
	}
}

func TestApplyWateringEarly(t *testing.T) {
	plant := testPlant(3, FrequencyUnitDays, TimeOfDayMorning, mustTime(t, "2024-01-01T10:00:00Z"))
	due := mustTime(t, "2024-01-04T08:00:00Z")
	if !plant.WateringNeeds.NextWatering.Equal(due) {
		t.Fatalf("precondition: nextWatering = %v, want %v", plant.WateringNeeds.NextWatering, due)
	}

	wateredAt := mustTime(t, "2024-01-03T09:00:00Z")
	out := plant.ApplyWatering(wateredAt)

	if !out.WasEarly {
		t.Fatal("expected wasEarly = true")
	}
	if out.DaysEarly != 1 {
		t.Fatalf("daysEarly = %d, want 1", out.DaysEarly)
	}
	// Early watering must not move the planned due date.
	if !plant.WateringNeeds.NextWatering.Equal(due) {
		t.Fatalf("nextWatering moved to %v, want unchanged %v", plant.WateringNeeds.NextWatering, due)
	}
	if !plant.WateringNeeds.LastWatered.Equal(wateredAt) {
		t.Fatalf("lastWatered = %v, want %v", plant.WateringNeeds.LastWatered, wateredAt)
	}
	if !strings.Contains(out.Message, "early") {
		t.Fatalf("unexpected message %q", out.Message)
	}
}

func TestApplyWateringLate(t *testing.T) {
	plant := testPlant(3, FrequencyUnitDays, TimeOfDayMorning, mustTime(t, "2024-01-01T10:00:00Z"))

	wateredAt := mustTime(t, "2024-01-05T12:00:00Z")
	out := plant.ApplyWatering(wateredAt)

	if out.WasEarly {
		t.Fatal("expected wasEarly = false")
	}
	// Late watering re-anchors to the actual moment, not the missed due date.
	want := mustTime(t, "2024-01-08T08:00:00Z")
	if !plant.WateringNeeds.NextWatering.Equal(want) {
		t.Fatalf("nextWatering = %v, want %v", plant.WateringNeeds.NextWatering, want)
	}
}

func TestApplyWateringAtDueTimeIsNotEarly(t *testing.T) {
	plant := testPlant(3, FrequencyUnitDays, TimeOfDayMorning, mustTime(t, "2024-01-01T10:00:00Z"))

	out := plant.ApplyWatering(mustTime(t, "2024-01-04T08:00:00Z"))
	if out.WasEarly {
		t.Fatal("watering exactly at the due time must not count as early")
	}
	if want := mustTime(t, "2024-01-07T08:00:00Z"); !plant.WateringNeeds.NextWatering.Equal(want) {
		t.Fatalf("nextWatering = %v, want %v", plant.WateringNeeds.NextWatering, want)
	}
}

func TestRefreshScheduleAfterConfigChange(t *testing.T) {
	plant := testPlant(3, FrequencyUnitDays, TimeOfDayMorning, mustTime(t, "2024-01-01T10:00:00Z"))

	plant.WateringNeeds.Frequency = 1
	plant.WateringNeeds.FrequencyUnit = FrequencyUnitWeeks
	plant.WateringNeeds.PreferredTimeOfDay = TimeOfDayEvening
	plant.RefreshSchedule()

	if want := mustTime(t, "2024-01-08T18:00:00Z"); !plant.WateringNeeds.NextWatering.Equal(want) {
		t.Fatalf("nextWatering = %v, want %v", plant.WateringNeeds.NextWatering, want)
	}
}

func TestClassifyNotifications(t *testing.T) {
	now := mustTime(t, "2024-06-01T12:00:00Z")

	withDue := func(id int, due time.Time, active, reminder bool) Plant {
		p := testPlant(3, FrequencyUnitDays, TimeOfDayMorning, now)
		p.ID = id
		p.IsActive = active
		p.WateringNeeds.ReminderEnabled = reminder
		p.WateringNeeds.NextWatering = due
		return p
	}

	plants := []Plant{
		withDue(1, now.Add(-time.Hour), true, true),        // overdue
		withDue(2, now.Add(2*time.Hour), true, true),       // upcoming
		withDue(3, now, true, true),                        // boundary: upcoming, inclusive
		withDue(4, now.Add(8*time.Hour), true, true),       // boundary: still upcoming
		withDue(5, now.Add(9*time.Hour), true, true),       // beyond the window
		withDue(6, now.Add(-2*time.Hour), true, false),     // reminders off
		withDue(7, now.Add(-3*time.Hour), false, true),     // soft-deleted
		withDue(8, now.Add(-30*time.Minute), true, true),   // overdue, later than #1
	}

	n := ClassifyNotifications(plants, now)

	wantOverdue := []int{1, 8}
	wantUpcoming := []int{3, 2, 4}

	if len(n.Overdue) != len(wantOverdue) {
		t.Fatalf("overdue = %d plants, want %d", len(n.Overdue), len(wantOverdue))
	}
	for i, id := range wantOverdue {
		if n.Overdue[i].ID != id {
			t.Fatalf("overdue[%d].ID = %d, want %d", i, n.Overdue[i].ID, id)
		}
	}
	if len(n.Upcoming) != len(wantUpcoming) {
		t.Fatalf("upcoming = %d plants, want %d", len(n.Upcoming), len(wantUpcoming))
	}
	for i, id := range wantUpcoming {
		if n.Upcoming[i].ID != id {
			t.Fatalf("upcoming[%d].ID = %d, want %d", i, n.Upcoming[i].ID, id)
		}
	}

	// Disjointness: no plant in both buckets.
	seen := make(map[int]bool)
	for _, p := range n.Overdue {
		seen[p.ID] = true
	}
	for _, p := range n.Upcoming {
		if seen[p.ID] {
			t.Fatalf("plant %d appears in both buckets", p.ID)
		}
	}

	if n.Count.Overdue != 2 || n.Count.Upcoming != 3 || n.Count.Total != 5 {
		t.Fatalf("unexpected counts: %+v", n.Count)
	}
}

func TestSnoozeStacks(t *testing.T) {
	plant := testPlant(3, FrequencyUnitDays, TimeOfDayMorning, mustTime(t, "2024-01-01T10:00:00Z"))
	before := plant.WateringNeeds.NextWatering

	plant.Snooze()
	plant.Snooze()

	if want := before.Add(2 * time.Hour); !plant.WateringNeeds.NextWatering.Equal(want) {
		t.Fatalf("nextWatering = %v, want %v", plant.WateringNeeds.NextWatering, want)
	}
	if !plant.WateringNeeds.LastWatered.Equal(mustTime(t, "2024-01-01T10:00:00Z")) {
		t.Fatal("snooze must not touch lastWatered")
	}
}

func TestComputeStats(t *testing.T) {
	plant := testPlant(3, FrequencyUnitDays, TimeOfDayMorning, mustTime(t, "2024-02-01T08:00:00Z"))

	newest := mustTime(t, "2024-02-01T08:00:00Z")
	records := []WateringRecord{
		{WateredAt: newest},                      // gaps below: 3, 3, 5 days
		{WateredAt: newest.AddDate(0, 0, -3)},
		{WateredAt: newest.AddDate(0, 0, -6)},
		{WateredAt: newest.AddDate(0, 0, -11)},
	}

	stats := ComputeStats(&plant, records)

	if stats.TotalWaterings != 4 {
		t.Fatalf("totalWaterings = %d, want 4", stats.TotalWaterings)
	}
	if stats.AverageFrequency != 3.7 {
		t.Fatalf("averageFrequency = %v, want 3.7", stats.AverageFrequency)
	}
	// Streak walks newest-first and stops at the 5-day gap (tolerance 3+1).
	if stats.Streak != 2 {
		t.Fatalf("streak = %d, want 2", stats.Streak)
	}
}

func TestComputeStatsFewRecords(t *testing.T) {
	plant := testPlant(4, FrequencyUnitDays, TimeOfDayMorning, mustTime(t, "2024-02-01T08:00:00Z"))

	stats := ComputeStats(&plant, nil)
	if stats.TotalWaterings != 0 {
		t.Fatalf("totalWaterings = %d, want 0", stats.TotalWaterings)
	}
	// With fewer than two records the configured frequency is reported.
	if stats.AverageFrequency != 4 {
		t.Fatalf("averageFrequency = %v, want 4", stats.AverageFrequency)
	}
	if stats.Streak != 0 {
		t.Fatalf("streak = %d, want 0", stats.Streak)
	}

	one := []WateringRecord{{WateredAt: mustTime(t, "2024-01-30T08:00:00Z")}}
	stats = ComputeStats(&plant, one)
	if stats.TotalWaterings != 1 || stats.AverageFrequency != 4 {
		t.Fatalf("unexpected stats for single record: %+v", stats)
	}
}

func TestComputeStatsPartialDayGapsRoundUp(t *testing.T) {
	plant := testPlant(3, FrequencyUnitDays, TimeOfDayMorning, mustTime(t, "2024-02-01T08:00:00Z"))

	newest := mustTime(t, "2024-02-01T08:00:00Z")
	records := []WateringRecord{
		{WateredAt: newest},
		{WateredAt: newest.Add(-60 * time.Hour)}, // 2.5 days -> counts as 3
	}

	stats := ComputeStats(&plant, records)
	if stats.AverageFrequency != 3 {
		t.Fatalf("averageFrequency = %v, want 3", stats.AverageFrequency)
	}
	if stats.Streak != 1 {
		t.Fatalf("streak = %d, want 1", stats.Streak)
	}
}

func TestTimeRoundTripKeepsInstant(t *testing.T) {
	instant := time.Date(2024, 1, 4, 8, 0, 0, 0, time.UTC)
	zones := []*time.Location{
		time.UTC,
		time.Local,
		time.FixedZone("UTC-5", -5*60*60),
		time.FixedZone("UTC+9", 9*60*60),
	}
	// Values may arrive carrying any zone; storing and reloading must give
	// back the same instant.
	for _, loc := range zones {
		got, err := ParseTime(FormatTime(instant.In(loc)))
		if err != nil {
			t.Fatalf("round trip via %v: %v", loc, err)
		}
		if !got.Equal(instant) {
			t.Fatalf("round trip via %v: got %v, want %v", loc, got, instant)
		}
	}
}

func TestApplyWateringLateAfterReload(t *testing.T) {
	plant := testPlant(3, FrequencyUnitDays, TimeOfDayMorning, mustTime(t, "2024-01-01T10:00:00Z"))
	due := plant.WateringNeeds.NextWatering

	// Push the due date through a store/load cycle, as the water endpoint
	// sees it.
	reloaded, err := ParseTime(FormatTime(due))
	if err != nil {
		t.Fatalf("reload due date: %v", err)
	}
	plant.WateringNeeds.NextWatering = reloaded

	out := plant.ApplyWatering(due.Add(2 * time.Hour))
	if out.WasEarly {
		t.Fatal("watering after the due instant must not classify as early")
	}
}

func TestWateringNeedsDefaultsAndValidation(t *testing.T) {
	now := mustTime(t, "2024-01-01T00:00:00Z")

	n := WateringNeeds{QuantityInLiters: 1, Frequency: 2}
	n.ApplyDefaults(now)
	if n.FrequencyUnit != FrequencyUnitDays {
		t.Fatalf("frequencyUnit = %q, want days", n.FrequencyUnit)
	}
	if n.PreferredTimeOfDay != TimeOfDayMorning {
		t.Fatalf("preferredTimeOfDay = %q, want morning", n.PreferredTimeOfDay)
	}
	if !n.LastWatered.Equal(now) {
		t.Fatalf("lastWatered = %v, want %v", n.LastWatered, now)
	}
	if err := n.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	bad := []WateringNeeds{
		{QuantityInLiters: 0, Frequency: 2, FrequencyUnit: FrequencyUnitDays, PreferredTimeOfDay: TimeOfDayMorning},
		{QuantityInLiters: 1, Frequency: 0, FrequencyUnit: FrequencyUnitDays, PreferredTimeOfDay: TimeOfDayMorning},
		{QuantityInLiters: 1, Frequency: 2, FrequencyUnit: "months", PreferredTimeOfDay: TimeOfDayMorning},
		{QuantityInLiters: 1, Frequency: 2, FrequencyUnit: FrequencyUnitDays, PreferredTimeOfDay: "noon"},
	}
	for i, n := range bad {
		if err := n.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}
