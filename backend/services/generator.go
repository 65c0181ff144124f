package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"updaily/backend/config"
	"updaily/backend/models"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	StrategyCategory = "category"
	StrategyPool     = "pool"
)

// Generator assigns the daily set of retos to users.
//
// The category strategy picks PerCategory active retos from each category.
// The pool strategy picks up to PoolSize active templates from the whole
// catalog and instantiates one reto per template.
type Generator struct {
	db       *gorm.DB
	cfg      config.ChallengesConfig
	loc      *time.Location
	notifier Notifier
	logger   *zap.Logger

	now   func() time.Time
	intN  func(n int) int
	group singleflight.Group
}

type generation struct {
	assignments []models.DailyAssignment
	created     int
}

func NewGenerator(db *gorm.DB, cfg *config.Config, notifier Notifier, logger *zap.Logger) *Generator {
	loc, err := cfg.Location()
	if err != nil {
		loc = time.UTC
	}
	return &Generator{
		db:       db,
		cfg:      cfg.Challenges,
		loc:      loc,
		notifier: notifier,
		logger:   logger.Named("generator"),
		now:      time.Now,
		intN:     rand.Intn,
	}
}

// Today returns the current time in the configured timezone.
func (g *Generator) Today() time.Time {
	return g.now().In(g.loc)
}

// DayKey formats date as the calendar day used for storage.
func (g *Generator) DayKey(date time.Time) string {
	return date.In(g.loc).Format(models.DateLayout)
}

// ParseDay parses a YYYY-MM-DD value in the configured timezone. An empty
// value means today.
func (g *Generator) ParseDay(value string) (time.Time, error) {
	if value == "" {
		return g.Today(), nil
	}
	day, err := time.ParseInLocation(models.DateLayout, value, g.loc)
	if err != nil {
		return time.Time{}, validationErrorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return day, nil
}

// Generate returns the assignments of userID for date, creating them when
// none exist yet.
func (g *Generator) Generate(ctx context.Context, userID uint, date time.Time) ([]models.DailyAssignment, error) {
	res, err := g.run(ctx, userID, date, false)
	if err != nil {
		return nil, err
	}
	return res.assignments, nil
}

// Regenerate replaces the assignments of userID for date with a new set.
// Achievements and criterion completions of the replaced rows go with them.
func (g *Generator) Regenerate(ctx context.Context, userID uint, date time.Time) ([]models.DailyAssignment, error) {
	res, err := g.run(ctx, userID, date, true)
	if err != nil {
		return nil, err
	}
	return res.assignments, nil
}

// GenerateForAllActiveUsers generates date's assignments for every active
// user and returns how many assignments were newly created. A failure for
// one user is logged and does not stop the sweep.
func (g *Generator) GenerateForAllActiveUsers(ctx context.Context, date time.Time) (int, error) {
	if date.IsZero() {
		return 0, validationErrorf("challenge date is required")
	}

	var users []models.User
	if err := g.db.WithContext(ctx).Where("is_active = ?", true).Order("id").Find(&users).Error; err != nil {
		return 0, fmt.Errorf("failed to list active users: %w", err)
	}

	day := g.DayKey(date)
	created, failed := 0, 0
	for _, user := range users {
		res, err := g.run(ctx, user.ID, date, false)
		if err != nil {
			failed++
			g.logger.Warn("daily generation failed",
				zap.Uint("user_id", user.ID),
				zap.String("date", day),
				zap.Error(err),
			)
			continue
		}
		created += res.created
		if res.created == 0 {
			continue
		}
		if err := g.notifier.DailyChallengesReady(ctx, user, len(res.assignments)); err != nil {
			g.logger.Warn("daily notification failed", zap.Uint("user_id", user.ID), zap.Error(err))
		}
	}

	g.logger.Info("daily generation sweep finished",
		zap.String("date", day),
		zap.Int("users", len(users)),
		zap.Int("failed", failed),
		zap.Int("created", created),
	)
	return created, nil
}

// run collapses concurrent calls for the same user, day and mode.
func (g *Generator) run(ctx context.Context, userID uint, date time.Time, replace bool) (generation, error) {
	if date.IsZero() {
		return generation{}, validationErrorf("challenge date is required")
	}
	day := g.DayKey(date)

	key := fmt.Sprintf("generate:%d:%s", userID, day)
	if replace {
		key = fmt.Sprintf("regenerate:%d:%s", userID, day)
	}
	v, err, _ := g.group.Do(key, func() (interface{}, error) {
		return g.generate(ctx, userID, day, replace)
	})
	if err != nil {
		return generation{}, err
	}
	return v.(generation), nil
}

func (g *Generator) generate(ctx context.Context, userID uint, day string, replace bool) (generation, error) {
	db := g.db.WithContext(ctx)

	if err := db.Select("id").First(&models.User{}, userID).Error; err != nil {
		return generation{}, lookupErr(err, "user", userID)
	}

	var res generation
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := claimDay(tx, userID, day); err != nil {
			return err
		}
		if !replace {
			var count int64
			if err := tx.Model(&models.DailyAssignment{}).
				Where("user_id = ? AND challenge_date = ?", userID, day).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return nil
			}
		}

		// Selection happens before any write so a short pool leaves
		// the existing set untouched.
		picks, err := g.selectRetos(tx)
		if err != nil {
			return err
		}

		if replace {
			if err := deleteAssignments(tx, userID, day); err != nil {
				return err
			}
		}

		// The insert runs in a savepoint: when another writer's set shows
		// up, only our rows are rolled back and theirs are kept.
		err = tx.Transaction(func(sp *gorm.DB) error {
			return insertSet(sp, userID, day, picks)
		})
		if errors.Is(err, errSetTaken) || errors.Is(err, gorm.ErrDuplicatedKey) {
			g.logger.Debug("daily set stored by another writer",
				zap.Uint("user_id", userID),
				zap.String("date", day),
				zap.Error(err),
			)
			return nil
		}
		if err != nil {
			return err
		}
		res.created = len(picks)
		return nil
	})
	if err != nil {
		return generation{}, fmt.Errorf("failed to generate assignments for user %d on %s: %w", userID, day, err)
	}

	res.assignments, err = loadAssignments(db, userID, day)
	if err != nil {
		return generation{}, err
	}
	return res, nil
}

// errSetTaken reports that the day already holds another writer's set.
var errSetTaken = fmt.Errorf("%w: daily set already stored", ErrDuplicate)

// claimDay inserts the generation marker of (userID, day) if missing and
// locks it until tx ends. SQLite ignores the row lock and serializes
// writers on the database instead.
func claimDay(tx *gorm.DB, userID uint, day string) error {
	marker := models.DailyGeneration{UserID: userID, ChallengeDate: day}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&marker).Error; err != nil {
		return fmt.Errorf("failed to claim %s: %w", day, err)
	}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND challenge_date = ?", userID, day).
		First(&marker).Error; err != nil {
		return fmt.Errorf("failed to lock %s: %w", day, err)
	}
	return nil
}

// insertSet stores the picked set and checks that the day holds nothing
// else afterwards.
func insertSet(tx *gorm.DB, userID uint, day string, picks []pick) error {
	rows := make([]models.DailyAssignment, 0, len(picks))
	for _, p := range picks {
		retoID, err := p.resolve(tx, day)
		if err != nil {
			return err
		}
		rows = append(rows, models.DailyAssignment{
			UserID:        userID,
			RetoID:        retoID,
			ChallengeDate: day,
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return err
	}

	var count int64
	if err := tx.Model(&models.DailyAssignment{}).
		Where("user_id = ? AND challenge_date = ?", userID, day).
		Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(rows)) {
		return errSetTaken
	}
	return nil
}

// pick is one selected slot of the daily set. Category picks reference an
// existing reto, pool picks carry a template to instantiate.
type pick struct {
	retoID   uint
	template *models.ChallengeTemplate
}

func (p pick) resolve(tx *gorm.DB, day string) (uint, error) {
	if p.template == nil {
		return p.retoID, nil
	}
	t := p.template
	reto := models.Reto{
		Name:           t.Name,
		Description:    t.Description,
		Type:           t.Type,
		Category:       t.Category,
		IsActive:       true,
		AssignmentDate: day,
		RewardPoints:   t.RewardPoints,
		TemplateID:     &t.ID,
	}
	if err := tx.Create(&reto).Error; err != nil {
		return 0, fmt.Errorf("failed to instantiate template %d: %w", t.ID, err)
	}
	return reto.ID, nil
}

func (g *Generator) selectRetos(tx *gorm.DB) ([]pick, error) {
	if g.cfg.Strategy == StrategyPool {
		return g.selectFromPool(tx)
	}
	return g.selectByCategory(tx)
}

func (g *Generator) selectByCategory(tx *gorm.DB) ([]pick, error) {
	per := g.cfg.PerCategory
	pools := make(map[models.Category][]uint, len(models.Categories))
	for _, category := range models.Categories {
		var ids []uint
		// Template instances belong to the pool strategy.
		if err := tx.Model(&models.Reto{}).
			Where("category = ? AND is_active = ? AND template_id IS NULL", category, true).
			Order("id").
			Pluck("id", &ids).Error; err != nil {
			return nil, fmt.Errorf("failed to load %s retos: %w", category, err)
		}
		if len(ids) < per {
			return nil, &InsufficientTemplatesError{
				Category:  string(category),
				Available: len(ids),
				Required:  per,
			}
		}
		pools[category] = ids
	}

	picks := make([]pick, 0, per*len(models.Categories))
	for _, category := range models.Categories {
		for _, id := range sample(pools[category], per, g.intN) {
			picks = append(picks, pick{retoID: id})
		}
	}
	return picks, nil
}

func (g *Generator) selectFromPool(tx *gorm.DB) ([]pick, error) {
	var templates []models.ChallengeTemplate
	if err := tx.Where("is_active = ?", true).Order("id").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	if len(templates) == 0 {
		return nil, &InsufficientTemplatesError{Available: 0, Required: 1}
	}

	chosen := sample(templates, min(g.cfg.PoolSize, len(templates)), g.intN)
	picks := make([]pick, 0, len(chosen))
	for i := range chosen {
		picks = append(picks, pick{template: &chosen[i]})
	}
	return picks, nil
}

// sample returns k items drawn uniformly without replacement using a
// partial Fisher-Yates shuffle over a copy of items.
func sample[T any](items []T, k int, intN func(int) int) []T {
	pool := make([]T, len(items))
	copy(pool, items)
	for i := 0; i < k; i++ {
		j := i + intN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

func loadAssignments(db *gorm.DB, userID uint, day string) ([]models.DailyAssignment, error) {
	var assignments []models.DailyAssignment
	if err := db.Preload("Reto", unscoped).
		Where("user_id = ? AND challenge_date = ?", userID, day).
		Order("id").
		Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}
	return assignments, nil
}

func deleteAssignments(tx *gorm.DB, userID uint, day string) error {
	var ids []uint
	if err := tx.Model(&models.DailyAssignment{}).
		Where("user_id = ? AND challenge_date = ?", userID, day).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	return deleteAssignmentRows(tx, ids)
}

// deleteAssignmentRows removes assignments together with their dependent rows.
func deleteAssignmentRows(tx *gorm.DB, ids []uint) error {
	if err := tx.Where("assignment_id IN ?", ids).Delete(&models.Achievement{}).Error; err != nil {
		return fmt.Errorf("failed to delete achievements: %w", err)
	}
	if err := tx.Where("assignment_id IN ?", ids).Delete(&models.CriterionCompletion{}).Error; err != nil {
		return fmt.Errorf("failed to delete criterion completions: %w", err)
	}
	if err := tx.Where("id IN ?", ids).Delete(&models.DailyAssignment{}).Error; err != nil {
		return fmt.Errorf("failed to delete assignments: %w", err)
	}
	return nil
}
