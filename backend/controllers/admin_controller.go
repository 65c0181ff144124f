package controllers

import (
	"time"

	"updaily/backend/models"
	"updaily/backend/scheduler"
	"updaily/backend/services"
	"updaily/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SchedulerStatus is the part of the scheduler the admin API reports on.
type SchedulerStatus interface {
	Running() bool
	Status() []scheduler.JobStatus
}

type AdminController struct {
	DB          *gorm.DB
	Generator   *services.Generator
	Maintenance *services.Maintenance
	Stats       *services.StatsService
	Scheduler   SchedulerStatus
}

func NewAdminController(db *gorm.DB, svc *services.Services, sched SchedulerStatus) *AdminController {
	return &AdminController{
		DB:          db,
		Generator:   svc.Generator,
		Maintenance: svc.Maintenance,
		Stats:       svc.Stats,
		Scheduler:   sched,
	}
}

// GenerateAll godoc
// @Summary Generate daily assignments for every active user
// @Tags admin
// @Produce json
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/generate [post]
func (ac *AdminController) GenerateAll(c *fiber.Ctx) error {
	date, err := ac.Generator.ParseDay(c.Query("date"))
	if err != nil {
		return err
	}
	created, err := ac.Generator.GenerateForAllActiveUsers(c.UserContext(), date)
	if err != nil {
		return err
	}
	return utils.OK(c, fiber.Map{
		"date":    ac.Generator.DayKey(date),
		"created": created,
	})
}

// Cleanup удаляет старые незавершенные задания
func (ac *AdminController) Cleanup(c *fiber.Ctx) error {
	deleted, err := ac.Maintenance.Cleanup(c.UserContext(), time.Now())
	if err != nil {
		return err
	}
	return utils.OK(c, fiber.Map{"deleted": deleted})
}

// SchedulerStatus возвращает состояние фоновых задач
func (ac *AdminController) SchedulerStatus(c *fiber.Ctx) error {
	if ac.Scheduler == nil {
		return utils.OK(c, fiber.Map{
			"running": false,
			"jobs":    []scheduler.JobStatus{},
		})
	}
	return utils.OK(c, fiber.Map{
		"running": ac.Scheduler.Running(),
		"jobs":    ac.Scheduler.Status(),
	})
}

// UserActivity возвращает аналитику активности пользователя за период
func (ac *AdminController) UserActivity(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	// Получаем параметры периода
	end := time.Now()
	start := end.AddDate(0, -1, 0) // Последний месяц по умолчанию
	if value := c.Query("start_date"); value != "" {
		if start, err = time.Parse(models.DateLayout, value); err != nil {
			return utils.BadRequest(c, "Invalid start_date format. Use YYYY-MM-DD")
		}
	}
	if value := c.Query("end_date"); value != "" {
		if end, err = time.Parse(models.DateLayout, value); err != nil {
			return utils.BadRequest(c, "Invalid end_date format. Use YYYY-MM-DD")
		}
		end = end.AddDate(0, 0, 1)
	}

	db := ac.DB.WithContext(c.UserContext())
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return err
	}

	// Получаем данные о посещениях
	var logins []models.LoginHistory
	if err := db.Where("user_id = ? AND login_time >= ? AND login_time < ?", userID, start, end).
		Order("login_time").
		Find(&logins).Error; err != nil {
		return err
	}

	var completed int64
	if err := db.Model(&models.DailyAssignment{}).
		Where("user_id = ? AND is_completed = ? AND challenge_date BETWEEN ? AND ?",
			userID, true, start.Format(models.DateLayout), end.Format(models.DateLayout)).
		Count(&completed).Error; err != nil {
		return err
	}

	stats, err := ac.Stats.UserStats(c.UserContext(), userID)
	if err != nil {
		return err
	}

	// Формируем ответ
	return utils.OK(c, fiber.Map{
		"user":                user,
		"login_history":       logins,
		"completed_in_period": completed,
		"stats":               stats,
		"period": fiber.Map{
			"start_date": start.Format(models.DateLayout),
			"end_date":   end.AddDate(0, 0, -1).Format(models.DateLayout),
		},
	})
}
