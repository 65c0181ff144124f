package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"updaily/backend/models"

	"gorm.io/gorm"
)

type AchievementService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAchievementService(db *gorm.DB) *AchievementService {
	return &AchievementService{db: db, now: time.Now}
}

// CreateIfComplete awards the achievement of a fully progressed assignment.
// An existing achievement is returned as is; an assignment below 100% yields
// nil without error.
func (s *AchievementService) CreateIfComplete(ctx context.Context, userID, assignmentID uint) (*models.Achievement, error) {
	return s.createIfComplete(s.db.WithContext(ctx), userID, assignmentID)
}

func (s *AchievementService) createIfComplete(db *gorm.DB, userID, assignmentID uint) (*models.Achievement, error) {
	var assignment models.DailyAssignment
	if err := db.Where("id = ? AND user_id = ?", assignmentID, userID).First(&assignment).Error; err != nil {
		return nil, lookupErr(err, "assignment", assignmentID)
	}

	existing, err := findAchievement(db, assignmentID)
	if err != nil || existing != nil {
		return existing, err
	}

	if assignment.ProgressValue < 100 {
		return nil, nil
	}

	achievement := models.Achievement{
		UserID:       userID,
		AssignmentID: assignment.ID,
		RetoID:       assignment.RetoID,
		AwardedAt:    s.now(),
	}
	if err := db.Create(&achievement).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return findAchievement(db, assignmentID)
		}
		return nil, fmt.Errorf("failed to create achievement for assignment %d: %w", assignmentID, err)
	}
	return &achievement, nil
}

// Award creates an achievement for assignmentID regardless of its progress.
// A zero awardedAt means now. An assignment already awarded is a duplicate.
func (s *AchievementService) Award(ctx context.Context, assignmentID uint, awardedAt time.Time) (*models.Achievement, error) {
	db := s.db.WithContext(ctx)

	var assignment models.DailyAssignment
	if err := db.First(&assignment, assignmentID).Error; err != nil {
		return nil, lookupErr(err, "assignment", assignmentID)
	}
	if awardedAt.IsZero() {
		awardedAt = s.now()
	}
	if err := s.checkAwardedAt(assignment, awardedAt); err != nil {
		return nil, err
	}

	achievement := models.Achievement{
		UserID:       assignment.UserID,
		AssignmentID: assignment.ID,
		RetoID:       assignment.RetoID,
		AwardedAt:    awardedAt,
	}
	if err := db.Create(&achievement).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: assignment %d already has an achievement", ErrDuplicate, assignmentID)
		}
		return nil, fmt.Errorf("failed to award assignment %d: %w", assignmentID, err)
	}
	return &achievement, nil
}

// SetAwardedAt corrects the award time of an achievement.
func (s *AchievementService) SetAwardedAt(ctx context.Context, id uint, awardedAt time.Time) (*models.Achievement, error) {
	db := s.db.WithContext(ctx)

	var achievement models.Achievement
	if err := db.First(&achievement, id).Error; err != nil {
		return nil, lookupErr(err, "achievement", id)
	}
	var assignment models.DailyAssignment
	if err := db.First(&assignment, achievement.AssignmentID).Error; err != nil {
		return nil, lookupErr(err, "assignment", achievement.AssignmentID)
	}
	if err := s.checkAwardedAt(assignment, awardedAt); err != nil {
		return nil, err
	}

	if err := db.Model(&achievement).Update("awarded_at", awardedAt).Error; err != nil {
		return nil, fmt.Errorf("failed to update achievement %d: %w", id, err)
	}
	achievement.AwardedAt = awardedAt
	return &achievement, nil
}

func (s *AchievementService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Achievement{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete achievement %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("achievement", id)
	}
	return nil
}

// checkAwardedAt rejects award times in the future or before the
// assignment's day.
func (s *AchievementService) checkAwardedAt(assignment models.DailyAssignment, awardedAt time.Time) error {
	if awardedAt.IsZero() {
		return validationErrorf("awarded_at is required")
	}
	if awardedAt.After(s.now()) {
		return validationErrorf("awarded_at %s is in the future", awardedAt.Format(time.RFC3339))
	}
	if awardedAt.Format(models.DateLayout) < assignment.ChallengeDate {
		return validationErrorf("awarded_at %s is before the assignment day %s",
			awardedAt.Format(time.RFC3339), assignment.ChallengeDate)
	}
	return nil
}

func findAchievement(db *gorm.DB, assignmentID uint) (*models.Achievement, error) {
	var achievement models.Achievement
	err := db.Where("assignment_id = ?", assignmentID).Limit(1).Find(&achievement).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load achievement for assignment %d: %w", assignmentID, err)
	}
	if achievement.ID == 0 {
		return nil, nil
	}
	return &achievement, nil
}

func (s *AchievementService) ListForUser(ctx context.Context, userID uint) ([]models.Achievement, error) {
	var achievements []models.Achievement
	if err := s.db.WithContext(ctx).
		Preload("Reto").
		Where("user_id = ?", userID).
		Order("awarded_at DESC, id DESC").
		Find(&achievements).Error; err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	return achievements, nil
}

func (s *AchievementService) Get(ctx context.Context, userID, id uint) (*models.Achievement, error) {
	var achievement models.Achievement
	if err := s.db.WithContext(ctx).
		Preload("Reto").
		Where("id = ? AND user_id = ?", id, userID).
		First(&achievement).Error; err != nil {
		return nil, lookupErr(err, "achievement", id)
	}
	return &achievement, nil
}
