package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"updaily/backend/config"
	"updaily/backend/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Rotation keeps one featured reto per category. A catalog reto is featured
// on the day stamped in its assignment date. Rotation never touches
// is_active: the active catalog is the generator's pool.
type Rotation struct {
	db     *gorm.DB
	loc    *time.Location
	logger *zap.Logger
	intN   func(n int) int
}

func NewRotation(db *gorm.DB, cfg *config.Config, logger *zap.Logger) *Rotation {
	loc, err := cfg.Location()
	if err != nil {
		loc = time.UTC
	}
	return &Rotation{
		db:     db,
		loc:    loc,
		logger: logger.Named("rotation"),
		intN:   rand.Intn,
	}
}

// Featured returns the featured retos of date. Categories without one get a
// random active reto stamped for the day, so repeated calls agree.
func (r *Rotation) Featured(ctx context.Context, date time.Time) ([]models.Reto, error) {
	if date.IsZero() {
		return nil, validationErrorf("date is required")
	}
	day := date.In(r.loc).Format(models.DateLayout)

	var featured []models.Reto
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		featured, err = featuredOn(tx, day)
		if err != nil {
			return err
		}
		have := make(map[models.Category]bool, len(featured))
		for _, reto := range featured {
			have[reto.Category] = true
		}
		for _, category := range models.Categories {
			if have[category] {
				continue
			}
			if _, err := r.feature(tx, category, day, nil); err != nil {
				return err
			}
		}
		featured, err = featuredOn(tx, day)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load featured retos for %s: %w", day, err)
	}
	return featured, nil
}

// Rotate clears the stamps up to date and features a new reto per category,
// preferring retos that were not featured before. Categories without active
// retos are skipped.
func (r *Rotation) Rotate(ctx context.Context, date time.Time) ([]models.Reto, error) {
	if date.IsZero() {
		return nil, validationErrorf("date is required")
	}
	day := date.In(r.loc).Format(models.DateLayout)

	var featured []models.Reto
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var previous []uint
		stamped := tx.Model(&models.Reto{}).
			Where("template_id IS NULL AND assignment_date <> '' AND assignment_date <= ?", day)
		if err := stamped.Pluck("id", &previous).Error; err != nil {
			return err
		}
		if len(previous) > 0 {
			if err := tx.Model(&models.Reto{}).
				Where("id IN ?", previous).
				Update("assignment_date", "").Error; err != nil {
				return err
			}
		}

		skip := make(map[uint]bool, len(previous))
		for _, id := range previous {
			skip[id] = true
		}
		for _, category := range models.Categories {
			ok, err := r.feature(tx, category, day, skip)
			if err != nil {
				return err
			}
			if !ok {
				r.logger.Warn("no active reto to feature", zap.String("category", string(category)))
			}
		}

		var err error
		featured, err = featuredOn(tx, day)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to rotate featured retos for %s: %w", day, err)
	}

	r.logger.Info("featured retos rotated", zap.String("date", day), zap.Int("featured", len(featured)))
	return featured, nil
}

// feature stamps a random active reto of category for day. Retos in skip
// are only used when nothing else is left.
func (r *Rotation) feature(tx *gorm.DB, category models.Category, day string, skip map[uint]bool) (bool, error) {
	var ids []uint
	if err := tx.Model(&models.Reto{}).
		Where("category = ? AND is_active = ? AND template_id IS NULL", category, true).
		Order("id").
		Pluck("id", &ids).Error; err != nil {
		return false, fmt.Errorf("failed to load %s retos: %w", category, err)
	}
	if len(ids) == 0 {
		return false, nil
	}

	fresh := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !skip[id] {
			fresh = append(fresh, id)
		}
	}
	if len(fresh) > 0 {
		ids = fresh
	}

	id := ids[r.intN(len(ids))]
	if err := tx.Model(&models.Reto{}).Where("id = ?", id).Update("assignment_date", day).Error; err != nil {
		return false, fmt.Errorf("failed to feature reto %d: %w", id, err)
	}
	return true, nil
}

func featuredOn(tx *gorm.DB, day string) ([]models.Reto, error) {
	var retos []models.Reto
	if err := tx.Where("template_id IS NULL AND is_active = ? AND assignment_date = ?", true, day).
		Order("category, id").
		Find(&retos).Error; err != nil {
		return nil, err
	}
	return retos, nil
}
