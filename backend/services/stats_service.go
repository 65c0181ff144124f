package services

import (
	"context"
	"fmt"
	"time"

	"updaily/backend/config"
	"updaily/backend/models"

	"gorm.io/gorm"
)

// StatsService loads histories and runs them through ComputeStats.
type StatsService struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

func NewStatsService(db *gorm.DB, cfg *config.Config) *StatsService {
	loc, err := cfg.Location()
	if err != nil {
		loc = time.UTC
	}
	return &StatsService{db: db, loc: loc, now: time.Now}
}

func (s *StatsService) today() time.Time {
	return s.now().In(s.loc)
}

// UserStats computes the overall stats of userID.
func (s *StatsService) UserStats(ctx context.Context, userID uint) (Stats, error) {
	var items []models.DailyAssignment
	if err := s.db.WithContext(ctx).
		Preload("Reto", unscoped).
		Where("user_id = ?", userID).
		Find(&items).Error; err != nil {
		return Stats{}, fmt.Errorf("failed to load assignments of user %d: %w", userID, err)
	}
	return ComputeStats(items, s.today())
}

type CategoryStats struct {
	Category models.Category          `json:"category"`
	Stats    Stats                    `json:"stats"`
	Today    []models.DailyAssignment `json:"today"`
}

// CategoryStats computes stats over the assignments of one category and
// lists today's assignments of that category.
func (s *StatsService) CategoryStats(ctx context.Context, userID uint, category models.Category) (*CategoryStats, error) {
	db := s.db.WithContext(ctx)
	retos := db.Unscoped().Model(&models.Reto{}).Select("id").Where("category = ?", category)

	var items []models.DailyAssignment
	if err := db.Preload("Reto", unscoped).
		Where("user_id = ? AND reto_id IN (?)", userID, retos).
		Order("id").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load %s assignments: %w", category, err)
	}

	now := s.today()
	stats, err := ComputeStats(items, now)
	if err != nil {
		return nil, err
	}

	day := now.Format(models.DateLayout)
	today := make([]models.DailyAssignment, 0)
	for _, item := range items {
		if item.ChallengeDate == day {
			today = append(today, item)
		}
	}
	return &CategoryStats{Category: category, Stats: stats, Today: today}, nil
}

type CategoryProgress struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

type DailyProgress struct {
	Date                 string                               `json:"date"`
	Total                int                                  `json:"total"`
	Completed            int                                  `json:"completed"`
	Remaining            int                                  `json:"remaining"`
	CompletionPercentage float64                              `json:"completion_percentage"`
	ByCategory           map[models.Category]CategoryProgress `json:"by_category"`
}

// DailyProgress summarises the assignments of one day.
func (s *StatsService) DailyProgress(ctx context.Context, userID uint, day string) (*DailyProgress, error) {
	items, err := loadAssignments(s.db.WithContext(ctx), userID, day)
	if err != nil {
		return nil, err
	}

	progress := &DailyProgress{
		Date:       day,
		Total:      len(items),
		ByCategory: make(map[models.Category]CategoryProgress, len(models.Categories)),
	}
	for _, category := range models.Categories {
		progress.ByCategory[category] = CategoryProgress{}
	}
	for _, item := range items {
		var cp CategoryProgress
		if item.Reto != nil {
			cp = progress.ByCategory[item.Reto.Category]
			cp.Total++
		}
		if item.IsCompleted {
			progress.Completed++
			cp.Completed++
		}
		if item.Reto != nil {
			progress.ByCategory[item.Reto.Category] = cp
		}
	}
	progress.Remaining = progress.Total - progress.Completed
	if progress.Total > 0 {
		progress.CompletionPercentage = round2(float64(progress.Completed) / float64(progress.Total) * 100)
	}
	return progress, nil
}

type HabitSummary struct {
	TotalHabits         int64   `json:"total_habits"`
	RecordsToday        int64   `json:"records_today"`
	CompletionRate      float64 `json:"completion_rate"`
	CurrentStreak       int     `json:"current_streak"`
	LongestStreak       int     `json:"longest_streak"`
	TotalChallenges     int64   `json:"total_challenges"`
	CompletedChallenges int64   `json:"completed_challenges"`
}

// HabitSummary reports habit and personal challenge activity. Streaks are
// computed over the days that have at least one progress record.
func (s *StatsService) HabitSummary(ctx context.Context, userID uint) (*HabitSummary, error) {
	db := s.db.WithContext(ctx)
	now := s.today()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	end := start.AddDate(0, 0, 1)

	summary := &HabitSummary{}
	if err := db.Model(&models.Habit{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&summary.TotalHabits).Error; err != nil {
		return nil, fmt.Errorf("failed to count habits: %w", err)
	}
	if err := db.Model(&models.ProgressRecord{}).
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Count(&summary.RecordsToday).Error; err != nil {
		return nil, fmt.Errorf("failed to count progress records: %w", err)
	}
	if err := db.Model(&models.Challenge{}).
		Where("user_id = ?", userID).
		Count(&summary.TotalChallenges).Error; err != nil {
		return nil, fmt.Errorf("failed to count challenges: %w", err)
	}
	if err := db.Model(&models.Challenge{}).
		Where("user_id = ? AND status = ?", userID, models.StatusCompleted).
		Count(&summary.CompletedChallenges).Error; err != nil {
		return nil, fmt.Errorf("failed to count completed challenges: %w", err)
	}

	var dates []time.Time
	if err := db.Model(&models.ProgressRecord{}).
		Where("user_id = ?", userID).
		Pluck("date", &dates).Error; err != nil {
		return nil, fmt.Errorf("failed to load progress dates: %w", err)
	}
	summary.CurrentStreak, summary.LongestStreak = Streaks(dates, now)

	if summary.TotalHabits > 0 {
		summary.CompletionRate = round2(float64(summary.RecordsToday) / float64(summary.TotalHabits) * 100)
	}
	return summary, nil
}

// unscoped keeps soft-deleted retos visible in history.
func unscoped(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}
