package controllers

import (
	"updaily/backend/models"
	"updaily/backend/services"
	"updaily/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CriterionController struct {
	DB       *gorm.DB
	Criteria *services.CriteriaService
}

func NewCriterionController(db *gorm.DB, criteria *services.CriteriaService) *CriterionController {
	return &CriterionController{DB: db, Criteria: criteria}
}

type CreateCriterionRequest struct {
	RetoID           uint   `json:"reto_id" validate:"required"`
	Description      string `json:"description" validate:"required,max=255"`
	EstimatedMinutes int    `json:"estimated_minutes" validate:"gte=0"`
}

type CompleteCriterionRequest struct {
	Completed *bool `json:"completed"`
}

// ListForReto returns the criteria of a reto.
func (cc *CriterionController) ListForReto(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	db := cc.DB.WithContext(c.UserContext())
	if err := db.Select("id").First(&models.Reto{}, id).Error; err != nil {
		return err
	}
	var criteria []models.Criterion
	if err := db.Where("reto_id = ?", id).Order("id").Find(&criteria).Error; err != nil {
		return err
	}
	return utils.OK(c, criteria)
}

func (cc *CriterionController) CreateCriterion(c *fiber.Ctx) error {
	var input CreateCriterionRequest
	if err := bind(c, &input); err != nil {
		return err
	}
	db := cc.DB.WithContext(c.UserContext())
	if err := db.Select("id").First(&models.Reto{}, input.RetoID).Error; err != nil {
		return err
	}
	criterion := models.Criterion{
		RetoID:           input.RetoID,
		Description:      input.Description,
		EstimatedMinutes: input.EstimatedMinutes,
	}
	if err := db.Create(&criterion).Error; err != nil {
		return err
	}
	return utils.Created(c, criterion)
}

func (cc *CriterionController) UpdateCriterion(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var patch models.CriterionPatch
	if err := bind(c, &patch); err != nil {
		return err
	}
	db := cc.DB.WithContext(c.UserContext())
	var criterion models.Criterion
	if err := db.First(&criterion, id).Error; err != nil {
		return err
	}
	patch.Apply(&criterion)
	if err := db.Save(&criterion).Error; err != nil {
		return err
	}
	return utils.OK(c, criterion)
}

func (cc *CriterionController) DeleteCriterion(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	err = cc.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var criterion models.Criterion
		if err := tx.First(&criterion, id).Error; err != nil {
			return err
		}
		if err := tx.Where("criterion_id = ?", id).Delete(&models.CriterionCompletion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&criterion).Error
	})
	if err != nil {
		return err
	}
	return utils.NoContent(c)
}

// ForAssignment godoc
// @Summary Criteria of a daily assignment
// @Description Lists the reto criteria with their completion state for the assignment
// @Tags daily
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {array} services.CriterionStatus
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /daily/{id}/criteria [get]
func (cc *CriterionController) ForAssignment(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	statuses, err := cc.Criteria.ForAssignment(c.UserContext(), userID, id)
	if err != nil {
		return err
	}
	return utils.OK(c, statuses)
}

// Complete marks a criterion done on the assignment. An empty body means
// completed.
func (cc *CriterionController) Complete(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	assignmentID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	criterionID, err := paramID(c, "criterionId")
	if err != nil {
		return err
	}

	completed := true
	if len(c.Body()) > 0 {
		var input CompleteCriterionRequest
		if err := bind(c, &input); err != nil {
			return err
		}
		if input.Completed != nil {
			completed = *input.Completed
		}
	}

	completion, err := cc.Criteria.SetCompleted(c.UserContext(), userID, assignmentID, criterionID, completed)
	if err != nil {
		return err
	}
	return utils.OK(c, completion)
}
