package services

import (
	"context"
	"fmt"
	"time"

	"updaily/backend/config"
	"updaily/backend/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Maintenance holds the periodic housekeeping jobs.
type Maintenance struct {
	db            *gorm.DB
	stats         *StatsService
	notifier      Notifier
	logger        *zap.Logger
	loc           *time.Location
	retentionDays int
}

func NewMaintenance(db *gorm.DB, cfg *config.Config, stats *StatsService, notifier Notifier, logger *zap.Logger) *Maintenance {
	loc, err := cfg.Location()
	if err != nil {
		loc = time.UTC
	}
	return &Maintenance{
		db:            db,
		stats:         stats,
		notifier:      notifier,
		logger:        logger.Named("maintenance"),
		loc:           loc,
		retentionDays: cfg.Challenges.RetentionDays,
	}
}

// Cleanup deletes incomplete assignments older than the retention window and
// returns how many were removed. Completed assignments are kept for streaks.
func (m *Maintenance) Cleanup(ctx context.Context, now time.Time) (int64, error) {
	if m.retentionDays <= 0 {
		return 0, nil
	}
	cutoff := now.In(m.loc).AddDate(0, 0, -m.retentionDays).Format(models.DateLayout)

	var deleted, orphans int64
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&models.DailyAssignment{}).
			Where("challenge_date < ? AND is_completed = ?", cutoff, false).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) > 0 {
			if err := deleteAssignmentRows(tx, ids); err != nil {
				return err
			}
			deleted = int64(len(ids))
		}
		if err := tx.Where("challenge_date < ?", cutoff).Delete(&models.DailyGeneration{}).Error; err != nil {
			return fmt.Errorf("failed to delete generation markers: %w", err)
		}

		var err error
		orphans, err = deleteOrphanInstances(tx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clean up assignments before %s: %w", cutoff, err)
	}

	m.logger.Info("stale assignments removed",
		zap.String("before", cutoff),
		zap.Int64("deleted", deleted),
		zap.Int64("template_instances", orphans),
	)
	return deleted, nil
}

// deleteOrphanInstances removes retos instantiated from templates that no
// assignment references any more.
func deleteOrphanInstances(tx *gorm.DB) (int64, error) {
	referenced := tx.Model(&models.DailyAssignment{}).Select("reto_id")
	res := tx.Unscoped().
		Where("template_id IS NOT NULL AND id NOT IN (?)", referenced).
		Delete(&models.Reto{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete template instances: %w", res.Error)
	}
	return res.RowsAffected, nil
}

type pendingCount struct {
	UserID  uint
	Pending int
}

// SendReminders notifies every active user who still has incomplete
// assignments on date. It returns the number of users notified.
func (m *Maintenance) SendReminders(ctx context.Context, date time.Time) (int, error) {
	day := date.In(m.loc).Format(models.DateLayout)
	db := m.db.WithContext(ctx)

	var counts []pendingCount
	if err := db.Model(&models.DailyAssignment{}).
		Select("user_id, COUNT(*) AS pending").
		Where("challenge_date = ? AND is_completed = ?", day, false).
		Group("user_id").
		Scan(&counts).Error; err != nil {
		return 0, fmt.Errorf("failed to count pending assignments: %w", err)
	}

	sent := 0
	for _, c := range counts {
		var user models.User
		if err := db.Where("id = ? AND is_active = ?", c.UserID, true).Limit(1).Find(&user).Error; err != nil {
			m.logger.Warn("reminder skipped", zap.Uint("user_id", c.UserID), zap.Error(err))
			continue
		}
		if user.ID == 0 {
			continue
		}
		if err := m.notifier.Reminder(ctx, user, c.Pending); err != nil {
			m.logger.Warn("reminder failed", zap.Uint("user_id", user.ID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}

// SendWeeklySummaries sends each active user their overall stats.
func (m *Maintenance) SendWeeklySummaries(ctx context.Context) (int, error) {
	var users []models.User
	if err := m.db.WithContext(ctx).Where("is_active = ?", true).Order("id").Find(&users).Error; err != nil {
		return 0, fmt.Errorf("failed to list active users: %w", err)
	}

	sent := 0
	for _, user := range users {
		stats, err := m.stats.UserStats(ctx, user.ID)
		if err != nil {
			m.logger.Warn("weekly summary skipped", zap.Uint("user_id", user.ID), zap.Error(err))
			continue
		}
		if stats.Total == 0 {
			continue
		}
		if err := m.notifier.WeeklySummary(ctx, user, stats); err != nil {
			m.logger.Warn("weekly summary failed", zap.Uint("user_id", user.ID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}
