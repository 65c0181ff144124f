package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"updaily/backend/models"

	"gorm.io/gorm"
)

// CriterionStatus pairs a reto criterion with its state on one assignment.
type CriterionStatus struct {
	models.Criterion
	Completed    bool       `json:"completed"`
	LastModified *time.Time `json:"last_modified,omitempty"`
}

type CriteriaService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCriteriaService(db *gorm.DB) *CriteriaService {
	return &CriteriaService{db: db, now: time.Now}
}

// ForAssignment lists the criteria of the assignment's reto with their
// completion state.
func (s *CriteriaService) ForAssignment(ctx context.Context, userID, assignmentID uint) ([]CriterionStatus, error) {
	db := s.db.WithContext(ctx)

	var assignment models.DailyAssignment
	if err := db.Where("id = ? AND user_id = ?", assignmentID, userID).First(&assignment).Error; err != nil {
		return nil, lookupErr(err, "assignment", assignmentID)
	}

	var criteria []models.Criterion
	if err := db.Where("reto_id = ?", assignment.RetoID).Order("id").Find(&criteria).Error; err != nil {
		return nil, fmt.Errorf("failed to load criteria: %w", err)
	}
	var completions []models.CriterionCompletion
	if err := db.Where("assignment_id = ?", assignmentID).Find(&completions).Error; err != nil {
		return nil, fmt.Errorf("failed to load criterion completions: %w", err)
	}
	byCriterion := make(map[uint]models.CriterionCompletion, len(completions))
	for _, c := range completions {
		byCriterion[c.CriterionID] = c
	}

	out := make([]CriterionStatus, 0, len(criteria))
	for _, criterion := range criteria {
		status := CriterionStatus{Criterion: criterion}
		if c, ok := byCriterion[criterion.ID]; ok {
			status.Completed = c.Completed
			modified := c.LastModified
			status.LastModified = &modified
		}
		out = append(out, status)
	}
	return out, nil
}

// SetCompleted records the state of one criterion on an assignment.
func (s *CriteriaService) SetCompleted(ctx context.Context, userID, assignmentID, criterionID uint, completed bool) (*models.CriterionCompletion, error) {
	var completion models.CriterionCompletion
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var assignment models.DailyAssignment
		if err := tx.Where("id = ? AND user_id = ?", assignmentID, userID).First(&assignment).Error; err != nil {
			return lookupErr(err, "assignment", assignmentID)
		}
		var criterion models.Criterion
		if err := tx.Where("id = ? AND reto_id = ?", criterionID, assignment.RetoID).First(&criterion).Error; err != nil {
			return lookupErr(err, "criterion", criterionID)
		}

		now := s.now()
		err := tx.Where("assignment_id = ? AND criterion_id = ?", assignmentID, criterionID).First(&completion).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			completion = models.CriterionCompletion{
				AssignmentID:  assignmentID,
				CriterionID:   criterionID,
				Completed:     completed,
				FirstRecorded: now,
				LastModified:  now,
			}
			return tx.Create(&completion).Error
		case err != nil:
			return err
		}
		completion.Completed = completed
		completion.LastModified = now
		return tx.Save(&completion).Error
	})
	if err != nil {
		return nil, err
	}
	return &completion, nil
}
