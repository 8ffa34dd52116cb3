package models

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Fixed wall-clock hours for each preferred time of day.
const (
	morningHour   = 8
	afternoonHour = 14
	eveningHour   = 18
)

// UpcomingWindow is how far ahead a due date may be and still count as an
// upcoming reminder.
const UpcomingWindow = 8 * time.Hour

// SnoozeStep is the deferral applied by a single snooze.
const SnoozeStep = time.Hour

// streakToleranceDays is the slack allowed on top of the configured frequency
// when counting a watering streak.
const streakToleranceDays = 1

// ComputeNextWatering derives the next due date from the last watering and the
// plant's configured needs. The interval is added in calendar days so DST
// transitions do not shift the resulting wall clock, and the time of day is
// forced to the fixed hour for the preference (unrecognized values fall back
// to morning).
func ComputeNextWatering(lastWatered time.Time, frequency int, frequencyUnit, preferredTimeOfDay string) time.Time {
	days := frequency
	if frequencyUnit == FrequencyUnitWeeks {
		days = frequency * 7
	}

	hour := morningHour
	switch preferredTimeOfDay {
	case TimeOfDayAfternoon:
		hour = afternoonHour
	case TimeOfDayEvening:
		hour = eveningHour
	}

	y, m, d := lastWatered.Date()
	return time.Date(y, m, d+days, hour, 0, 0, 0, lastWatered.Location())
}

// RefreshSchedule recomputes the derived due date from the four driving
// inputs (lastWatered, frequency, frequencyUnit, preferredTimeOfDay). It must
// be called before persisting whenever any of them changed.
func (p *Plant) RefreshSchedule() {
	n := &p.WateringNeeds
	n.NextWatering = ComputeNextWatering(n.LastWatered, n.Frequency, n.FrequencyUnit, n.PreferredTimeOfDay)
}

// WateringOutcome is the result of applying a watering action to a plant.
type WateringOutcome struct {
	NextWatering time.Time
	WasEarly     bool
	DaysEarly    int
	Message      string
}

// ApplyWatering classifies a watering against the current due date and moves
// lastWatered/nextWatering accordingly. Watering strictly before the due date
// keeps the planned date (an eager owner does not push the whole schedule
// later); watering at or after it re-anchors the schedule to the actual
// watering moment so a late watering does not compound drift.
//
// The plant must already carry a computed NextWatering.
func (p *Plant) ApplyWatering(wateredAt time.Time) WateringOutcome {
	n := &p.WateringNeeds
	current := n.NextWatering

	var out WateringOutcome
	if wateredAt.Before(current) {
		out.WasEarly = true
		out.DaysEarly = ceilDays(current.Sub(wateredAt))
		out.NextWatering = current
		out.Message = fmt.Sprintf("Plant watered %d day(s) early. Next watering kept at %s.",
			out.DaysEarly, current.Format("2006-01-02"))
	} else {
		out.NextWatering = ComputeNextWatering(wateredAt, n.Frequency, n.FrequencyUnit, n.PreferredTimeOfDay)
		out.Message = fmt.Sprintf("Plant watered successfully. Next watering planned for %s.",
			out.NextWatering.Format("2006-01-02"))
	}

	n.LastWatered = wateredAt
	n.NextWatering = out.NextWatering
	return out
}

// ceilDays rounds a duration up to whole days.
func ceilDays(d time.Duration) int {
	return int(math.Ceil(d.Hours() / 24))
}

// NotificationCount summarizes bucket sizes.
type NotificationCount struct {
	Overdue  int `json:"overdue"`
	Upcoming int `json:"upcoming"`
	Total    int `json:"total"`
}

// Notifications holds the reminder buckets for one user.
type Notifications struct {
	Overdue  []Plant           `json:"overdue"`
	Upcoming []Plant           `json:"upcoming"`
	Count    NotificationCount `json:"count"`
}

// ClassifyNotifications buckets plants into overdue (due date strictly in the
// past) and upcoming (due within the next 8 hours, both ends inclusive).
// The ranges are disjoint, so a plant lands in at most one bucket. Inactive
// plants and plants with reminders disabled are skipped. Buckets are sorted
// soonest first.
func ClassifyNotifications(plants []Plant, now time.Time) Notifications {
	horizon := now.Add(UpcomingWindow)
	out := Notifications{Overdue: []Plant{}, Upcoming: []Plant{}}

	for _, p := range plants {
		if !p.IsActive || !p.WateringNeeds.ReminderEnabled {
			continue
		}
		next := p.WateringNeeds.NextWatering
		switch {
		case next.Before(now):
			out.Overdue = append(out.Overdue, p)
		case !next.After(horizon):
			out.Upcoming = append(out.Upcoming, p)
		}
	}

	sortByNextWatering(out.Overdue)
	sortByNextWatering(out.Upcoming)

	out.Count = NotificationCount{
		Overdue:  len(out.Overdue),
		Upcoming: len(out.Upcoming),
		Total:    len(out.Overdue) + len(out.Upcoming),
	}
	return out
}

func sortByNextWatering(plants []Plant) {
	sort.Slice(plants, func(i, j int) bool {
		return plants[i].WateringNeeds.NextWatering.Before(plants[j].WateringNeeds.NextWatering)
	})
}

// Snooze defers the due date by one hour. Calling it repeatedly keeps pushing
// the date forward.
func (p *Plant) Snooze() {
	p.WateringNeeds.NextWatering = p.WateringNeeds.NextWatering.Add(SnoozeStep)
}

// PlantStats are display-only watering statistics. averageFrequency never
// feeds back into scheduling; the due date always uses the configured
// frequency.
type PlantStats struct {
	TotalWaterings   int       `json:"totalWaterings"`
	AverageFrequency float64   `json:"averageFrequency"`
	LastWatered      time.Time `json:"lastWatered"`
	NextWatering     time.Time `json:"nextWatering"`
	Streak           int       `json:"streak"`
}

// ComputeStats derives watering statistics from the plant and its records.
// Records must be ordered most recent first.
//
// averageFrequency is the mean of the day gaps between consecutive records
// (ceil of each gap), rounded to one decimal; with fewer than two records it
// falls back to the configured frequency. The streak counts consecutive gaps,
// newest first, that stay within frequency+1 days, stopping at the first gap
// that exceeds the tolerance.
func ComputeStats(p *Plant, records []WateringRecord) PlantStats {
	stats := PlantStats{
		TotalWaterings: len(records),
		LastWatered:    p.WateringNeeds.LastWatered,
		NextWatering:   p.WateringNeeds.NextWatering,
	}

	avg := float64(p.WateringNeeds.Frequency)
	if len(records) > 1 {
		sum := 0
		for i := 0; i < len(records)-1; i++ {
			sum += ceilDays(records[i].WateredAt.Sub(records[i+1].WateredAt))
		}
		avg = float64(sum) / float64(len(records)-1)
	}
	stats.AverageFrequency = math.Round(avg*10) / 10

	tolerance := p.WateringNeeds.Frequency + streakToleranceDays
	for i := 0; i < len(records)-1; i++ {
		if ceilDays(records[i].WateredAt.Sub(records[i+1].WateredAt)) <= tolerance {
			stats.Streak++
		} else {
			break
		}
	}
	return stats
}
