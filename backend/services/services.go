package services

import (
	"updaily/backend/config"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services bundles the domain services sharing one database handle.
type Services struct {
	Notifier     Notifier
	Generator    *Generator
	Stats        *StatsService
	Achievements *AchievementService
	Assignments  *AssignmentService
	Criteria     *CriteriaService
	Enrollments  *EnrollmentService
	Rotation     *Rotation
	Maintenance  *Maintenance
}

func New(db *gorm.DB, cfg *config.Config, logger *zap.Logger) *Services {
	return NewWithNotifier(db, cfg, NewNotifier(cfg, logger), logger)
}

func NewWithNotifier(db *gorm.DB, cfg *config.Config, notifier Notifier, logger *zap.Logger) *Services {
	stats := NewStatsService(db, cfg)
	achievements := NewAchievementService(db)
	return &Services{
		Notifier:     notifier,
		Generator:    NewGenerator(db, cfg, notifier, logger),
		Stats:        stats,
		Achievements: achievements,
		Assignments:  NewAssignmentService(db, achievements, stats, notifier, logger),
		Criteria:     NewCriteriaService(db),
		Enrollments:  NewEnrollmentService(db),
		Rotation:     NewRotation(db, cfg, logger),
		Maintenance:  NewMaintenance(db, cfg, stats, notifier, logger),
	}
}
