// Package seed loads the built-in reto and template catalog.
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"updaily/backend/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Catalog struct {
	Retos     []RetoEntry     `yaml:"retos"`
	Templates []TemplateEntry `yaml:"templates"`
}

type RetoEntry struct {
	Name         string           `yaml:"name"`
	Description  string           `yaml:"description"`
	Type         int              `yaml:"type"`
	Category     string           `yaml:"category"`
	RewardPoints int              `yaml:"reward_points"`
	Criteria     []CriterionEntry `yaml:"criteria"`
}

type CriterionEntry struct {
	Description      string `yaml:"description"`
	EstimatedMinutes int    `yaml:"estimated_minutes"`
}

type TemplateEntry struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	Type         int    `yaml:"type"`
	Category     string `yaml:"category"`
	Difficulty   int    `yaml:"difficulty"`
	RewardPoints int    `yaml:"reward_points"`
}

// Result counts the rows inserted by Seed.
type Result struct {
	Retos     int `json:"retos"`
	Criteria  int `json:"criteria"`
	Templates int `json:"templates"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes and checks a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	for i, r := range catalog.Retos {
		if r.Name == "" {
			return nil, fmt.Errorf("reto %d: name is required", i)
		}
		if _, err := models.ParseCategory(r.Category); err != nil {
			return nil, fmt.Errorf("reto %q: %w", r.Name, err)
		}
	}
	for i, t := range catalog.Templates {
		if t.Name == "" {
			return nil, fmt.Errorf("template %d: name is required", i)
		}
		if _, err := models.ParseCategory(t.Category); err != nil {
			return nil, fmt.Errorf("template %q: %w", t.Name, err)
		}
	}
	return &catalog, nil
}

// Seed inserts the catalog entries that are not present yet, matching on
// name and category. Running it twice inserts nothing the second time.
func Seed(ctx context.Context, db *gorm.DB, catalog *Catalog) (Result, error) {
	var res Result
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range catalog.Retos {
			category, _ := models.ParseCategory(entry.Category)
			var count int64
			if err := tx.Model(&models.Reto{}).
				Where("name = ? AND category = ?", entry.Name, category).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			reto := models.Reto{
				Name:         entry.Name,
				Description:  entry.Description,
				Type:         retoType(entry.Type),
				Category:     category,
				IsActive:     true,
				RewardPoints: points(entry.RewardPoints),
			}
			for _, c := range entry.Criteria {
				reto.Criteria = append(reto.Criteria, models.Criterion{
					Description:      c.Description,
					EstimatedMinutes: c.EstimatedMinutes,
				})
			}
			if err := tx.Create(&reto).Error; err != nil {
				return fmt.Errorf("failed to seed reto %q: %w", entry.Name, err)
			}
			res.Retos++
			res.Criteria += len(reto.Criteria)
		}

		for _, entry := range catalog.Templates {
			category, _ := models.ParseCategory(entry.Category)
			var count int64
			if err := tx.Model(&models.ChallengeTemplate{}).
				Where("name = ? AND category = ?", entry.Name, category).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			difficulty := entry.Difficulty
			if difficulty < 1 {
				difficulty = 1
			}
			template := models.ChallengeTemplate{
				Name:         entry.Name,
				Description:  entry.Description,
				Type:         retoType(entry.Type),
				Category:     category,
				Difficulty:   difficulty,
				RewardPoints: points(entry.RewardPoints),
				IsActive:     true,
			}
			if err := tx.Create(&template).Error; err != nil {
				return fmt.Errorf("failed to seed template %q: %w", entry.Name, err)
			}
			res.Templates++
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func retoType(t int) models.RetoType {
	if t < int(models.RetoTypeSimple) || t > int(models.RetoTypeChecklist) {
		return models.RetoTypeSimple
	}
	return models.RetoType(t)
}

func points(p int) int {
	if p <= 0 {
		return 10
	}
	return p
}
