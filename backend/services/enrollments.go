package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"updaily/backend/models"

	"gorm.io/gorm"
)

// EnrollmentService tracks open-ended participation in catalog retos.
type EnrollmentService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewEnrollmentService(db *gorm.DB) *EnrollmentService {
	return &EnrollmentService{db: db, now: time.Now}
}

// Enroll signs userID up for an active catalog reto. Enrolling twice in the
// same reto is a duplicate.
func (s *EnrollmentService) Enroll(ctx context.Context, userID, retoID uint) (*models.Enrollment, error) {
	db := s.db.WithContext(ctx)

	var reto models.Reto
	if err := db.Where("template_id IS NULL").First(&reto, retoID).Error; err != nil {
		return nil, lookupErr(err, "reto", retoID)
	}
	if !reto.IsActive {
		return nil, validationErrorf("reto %d is not active", retoID)
	}

	enrollment := models.Enrollment{UserID: userID, RetoID: retoID}
	if err := db.Create(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: already enrolled in reto %d", ErrDuplicate, retoID)
		}
		return nil, fmt.Errorf("failed to enroll in reto %d: %w", retoID, err)
	}
	enrollment.Reto = &reto
	return &enrollment, nil
}

func (s *EnrollmentService) List(ctx context.Context, userID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := s.db.WithContext(ctx).
		Preload("Reto", unscoped).
		Where("user_id = ?", userID).
		Order("id").
		Find(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}

func (s *EnrollmentService) Get(ctx context.Context, userID, id uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := s.db.WithContext(ctx).
		Preload("Reto", unscoped).
		Where("id = ? AND user_id = ?", id, userID).
		First(&enrollment).Error; err != nil {
		return nil, lookupErr(err, "enrollment", id)
	}
	return &enrollment, nil
}

// UpdateProgress sets the progress percentage. Reaching 100 completes the
// enrollment, after which it no longer changes.
func (s *EnrollmentService) UpdateProgress(ctx context.Context, userID, id uint, progress float64) (*models.Enrollment, error) {
	if progress < 0 || progress > 100 {
		return nil, validationErrorf("progress must be between 0 and 100, got %v", progress)
	}

	enrollment, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if enrollment.CompletedAt != nil {
		return nil, validationErrorf("enrollment %d already completed", id)
	}

	updates := map[string]interface{}{"progress": progress}
	if progress >= 100 {
		now := s.now()
		updates["completed_at"] = now
		enrollment.CompletedAt = &now
	}
	if err := s.db.WithContext(ctx).Model(enrollment).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update enrollment %d: %w", id, err)
	}
	enrollment.Progress = progress
	return enrollment, nil
}

// Abandon removes the enrollment.
func (s *EnrollmentService) Abandon(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Enrollment{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete enrollment %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("enrollment", id)
	}
	return nil
}
