package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"updaily/backend/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AssignmentService updates the progress of daily assignments.
type AssignmentService struct {
	db           *gorm.DB
	achievements *AchievementService
	stats        *StatsService
	notifier     Notifier
	logger       *zap.Logger
	now          func() time.Time
}

func NewAssignmentService(db *gorm.DB, achievements *AchievementService, stats *StatsService, notifier Notifier, logger *zap.Logger) *AssignmentService {
	return &AssignmentService{
		db:           db,
		achievements: achievements,
		stats:        stats,
		notifier:     notifier,
		logger:       logger.Named("assignments"),
		now:          time.Now,
	}
}

// ProgressResult is the outcome of a progress update.
type ProgressResult struct {
	Assignment  models.DailyAssignment `json:"assignment"`
	Completed   bool                   `json:"completed"`
	Achievement *models.Achievement    `json:"achievement,omitempty"`
}

func (s *AssignmentService) Get(ctx context.Context, userID, id uint) (*models.DailyAssignment, error) {
	var assignment models.DailyAssignment
	if err := s.db.WithContext(ctx).
		Preload("Reto", unscoped).
		Where("id = ? AND user_id = ?", id, userID).
		First(&assignment).Error; err != nil {
		return nil, lookupErr(err, "assignment", id)
	}
	return &assignment, nil
}

func (s *AssignmentService) ListForDate(ctx context.Context, userID uint, day string) ([]models.DailyAssignment, error) {
	if _, err := time.Parse(models.DateLayout, day); err != nil {
		return nil, validationErrorf("invalid date %q, expected YYYY-MM-DD", day)
	}
	return loadAssignments(s.db.WithContext(ctx), userID, day)
}

// Delete removes an assignment with its achievement and criterion completions.
func (s *AssignmentService) Delete(ctx context.Context, userID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var assignment models.DailyAssignment
		if err := tx.Select("id").Where("id = ? AND user_id = ?", id, userID).First(&assignment).Error; err != nil {
			return lookupErr(err, "assignment", id)
		}
		return deleteAssignmentRows(tx, []uint{assignment.ID})
	})
}

// Complete sets the assignment to 100% progress.
func (s *AssignmentService) Complete(ctx context.Context, userID, id uint) (*ProgressResult, error) {
	done := true
	return s.UpdateProgress(ctx, userID, id, models.AssignmentPatch{IsCompleted: &done})
}

// UpdateProgress applies patch to an incomplete assignment. Reaching 100% or
// setting is_completed completes it; completed assignments are immutable.
func (s *AssignmentService) UpdateProgress(ctx context.Context, userID, id uint, patch models.AssignmentPatch) (*ProgressResult, error) {
	if patch.ProgressValue == nil && patch.IsCompleted == nil {
		return nil, validationErrorf("nothing to update")
	}
	if v := patch.ProgressValue; v != nil && (math.IsNaN(*v) || *v < 0 || *v > 100) {
		return nil, validationErrorf("progress_value must be between 0 and 100")
	}

	db := s.db.WithContext(ctx)
	current, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if current.IsCompleted {
		return nil, ErrAlreadyCompleted
	}

	next := *current
	patch.Apply(&next)
	completes := next.IsCompleted || next.ProgressValue >= 100

	updates := map[string]interface{}{"progress_value": next.ProgressValue}
	if completes {
		updates["progress_value"] = 100.0
		updates["is_completed"] = true
		updates["completed_at"] = s.now()
	}

	// The is_completed condition makes a racing second completion a no-op.
	result := db.Model(&models.DailyAssignment{}).
		Where("id = ? AND user_id = ? AND is_completed = ?", id, userID, false).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update assignment %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrAlreadyCompleted
	}

	updated, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	res := &ProgressResult{Assignment: *updated, Completed: completes}
	if !completes {
		return res, nil
	}

	res.Achievement, err = s.achievements.CreateIfComplete(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	s.notifyCompletion(ctx, userID, updated)
	return res, nil
}

func (s *AssignmentService) notifyCompletion(ctx context.Context, userID uint, assignment *models.DailyAssignment) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		s.logger.Warn("completion notification skipped", zap.Uint("user_id", userID), zap.Error(err))
		return
	}

	stats, err := s.stats.UserStats(ctx, userID)
	if err != nil {
		s.logger.Warn("streak lookup failed", zap.Uint("user_id", userID), zap.Error(err))
	}

	name := ""
	if assignment.Reto != nil {
		name = assignment.Reto.Name
	}
	if err := s.notifier.ChallengeCompleted(ctx, user, name, stats.CurrentStreak); err != nil {
		s.logger.Warn("completion notification failed", zap.Uint("user_id", userID), zap.Error(err))
	}
	if IsStreakMilestone(stats.CurrentStreak) {
		if err := s.notifier.StreakMilestone(ctx, user, stats.CurrentStreak); err != nil {
			s.logger.Warn("streak notification failed", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
}
