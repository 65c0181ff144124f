package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"updaily/backend/models"
)

// Stats summarises a user's assignment history.
type Stats struct {
	Total              int     `json:"total"`
	Completed          int     `json:"completed"`
	CompletionRate     float64 `json:"completion_rate"`
	CurrentStreak      int     `json:"current_streak"`
	LongestStreak      int     `json:"longest_streak"`
	AvgCompletionHours float64 `json:"avg_completion_hours"`
	TotalPoints        int     `json:"total_points"`
}

// ComputeStats derives completion and streak figures from items. Calendar
// days are taken in now's location. Input order does not matter.
func ComputeStats(items []models.DailyAssignment, now time.Time) (Stats, error) {
	stats := Stats{Total: len(items)}

	var completions []time.Time
	var hoursSum float64
	var hoursCount int
	for _, item := range items {
		if !item.IsCompleted || item.CompletedAt == nil {
			continue
		}
		completedAt := *item.CompletedAt
		completions = append(completions, completedAt)
		if item.Reto != nil {
			stats.TotalPoints += item.Reto.RewardPoints
		}
		if item.CreatedAt.IsZero() {
			continue
		}
		if completedAt.Before(item.CreatedAt) {
			return Stats{}, fmt.Errorf("%w: assignment %d completed at %s before creation at %s",
				ErrDataIntegrity, item.ID, completedAt.Format(time.RFC3339), item.CreatedAt.Format(time.RFC3339))
		}
		hoursSum += completedAt.Sub(item.CreatedAt).Hours()
		hoursCount++
	}
	stats.Completed = len(completions)

	stats.CurrentStreak, stats.LongestStreak = Streaks(completions, now)

	var rate, avg float64
	if stats.Total > 0 {
		rate = float64(stats.Completed) / float64(stats.Total) * 100
	}
	if hoursCount > 0 {
		avg = hoursSum / float64(hoursCount)
	}
	stats.CompletionRate = round2(rate)
	stats.AvgCompletionHours = round2(avg)
	return stats, nil
}

// Streaks scans completion timestamps in ascending order and returns the
// current and longest runs of consecutive calendar days.
func Streaks(completions []time.Time, now time.Time) (current, longest int) {
	if len(completions) == 0 {
		return 0, 0
	}
	loc := now.Location()

	sorted := make([]time.Time, len(completions))
	copy(sorted, completions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var temp int
	var last time.Time
	for i, ts := range sorted {
		day := calendarDay(ts, loc)
		if i == 0 {
			temp = 1
			last = day
			continue
		}
		switch gap := daysBetween(last, day); {
		case gap == 0:
			// same day, no change
		case gap == 1:
			temp++
		default:
			longest = max(longest, temp)
			temp = 1
		}
		last = day
	}
	longest = max(longest, temp)

	if daysBetween(last, calendarDay(now, loc)) <= 1 {
		current = temp
	}
	return current, longest
}

func calendarDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole days from a to b; both must come from calendarDay.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
