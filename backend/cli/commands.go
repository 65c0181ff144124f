package cli

import (
	"fmt"
	"io"
	"os"

	"updaily/backend/models"
	"updaily/backend/seed"
	"updaily/backend/utils"

	"github.com/spf13/cobra"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := rootOpts.open(rootOpts)
			if err != nil {
				return err
			}
			if err := utils.Migrate(env.DB); err != nil {
				return err
			}
			return output(rootOpts, cmd.OutOrStdout(), map[string]bool{"migrated": true}, func(w io.Writer) {
				fmt.Fprintln(w, "schema is up to date")
			})
		},
	}
}

// NewSeedCommand loads the reto and template catalog. Without --file the
// built-in catalog is used.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the reto and template catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(file)
			if err != nil {
				return err
			}
			env, err := rootOpts.open(rootOpts)
			if err != nil {
				return err
			}
			res, err := seed.Seed(cmd.Context(), env.DB, catalog)
			if err != nil {
				return err
			}
			return output(rootOpts, cmd.OutOrStdout(), res, func(w io.Writer) {
				fmt.Fprintf(w, "inserted %d retos, %d criteria, %d templates\n", res.Retos, res.Criteria, res.Templates)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML catalog to load instead of the built-in one")
	return cmd
}

func loadCatalog(file string) (*seed.Catalog, error) {
	if file == "" {
		return seed.Default()
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return seed.Parse(data)
}

// NewGenerateCommand generates daily assignments for one user or for every
// active user.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		date   string
		userID uint
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate daily assignments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := rootOpts.open(rootOpts)
			if err != nil {
				return err
			}
			gen := env.Services.Generator
			day, err := gen.ParseDay(date)
			if err != nil {
				return err
			}

			if userID == 0 {
				created, err := gen.GenerateForAllActiveUsers(cmd.Context(), day)
				if err != nil {
					return err
				}
				result := map[string]interface{}{"date": gen.DayKey(day), "created": created}
				return output(rootOpts, cmd.OutOrStdout(), result, func(w io.Writer) {
					fmt.Fprintf(w, "%s: created %d assignments\n", gen.DayKey(day), created)
				})
			}

			assignments, err := gen.Generate(cmd.Context(), userID, day)
			if err != nil {
				return err
			}
			return output(rootOpts, cmd.OutOrStdout(), assignments, func(w io.Writer) {
				for _, a := range assignments {
					name := ""
					if a.Reto != nil {
						name = fmt.Sprintf("%s [%s]", a.Reto.Name, a.Reto.Category)
					}
					fmt.Fprintf(w, "%d\t%s\t%s\n", a.ID, a.ChallengeDate, name)
				}
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day to generate (YYYY-MM-DD), defaults to today")
	cmd.Flags().UintVar(&userID, "user", 0, "generate only for this user id")
	return cmd
}

func NewCleanupCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete incomplete assignments older than the retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := rootOpts.open(rootOpts)
			if err != nil {
				return err
			}
			deleted, err := env.Services.Maintenance.Cleanup(cmd.Context(), env.Services.Generator.Today())
			if err != nil {
				return err
			}
			return output(rootOpts, cmd.OutOrStdout(), map[string]int64{"deleted": deleted}, func(w io.Writer) {
				fmt.Fprintf(w, "deleted %d assignments\n", deleted)
			})
		},
	}
}

func NewRotateCommand(rootOpts *RootOptions) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Feature a new reto in every category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := rootOpts.open(rootOpts)
			if err != nil {
				return err
			}
			day, err := env.Services.Generator.ParseDay(date)
			if err != nil {
				return err
			}
			featured, err := env.Services.Rotation.Rotate(cmd.Context(), day)
			if err != nil {
				return err
			}
			return output(rootOpts, cmd.OutOrStdout(), featured, func(w io.Writer) {
				for _, reto := range featured {
					fmt.Fprintf(w, "%-12s %d %s\n", reto.Category, reto.ID, reto.Name)
				}
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to feature (YYYY-MM-DD), defaults to today")
	return cmd
}

func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	var userID uint

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print completion stats and streaks of a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == 0 {
				return fmt.Errorf("--user is required")
			}
			env, err := rootOpts.open(rootOpts)
			if err != nil {
				return err
			}
			if err := env.DB.WithContext(cmd.Context()).Select("id").First(&models.User{}, userID).Error; err != nil {
				return fmt.Errorf("user %d: %w", userID, err)
			}
			stats, err := env.Services.Stats.UserStats(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return output(rootOpts, cmd.OutOrStdout(), stats, func(w io.Writer) {
				fmt.Fprintf(w, "completed:       %d/%d (%.2f%%)\n", stats.Completed, stats.Total, stats.CompletionRate)
				fmt.Fprintf(w, "current streak:  %d\n", stats.CurrentStreak)
				fmt.Fprintf(w, "longest streak:  %d\n", stats.LongestStreak)
				fmt.Fprintf(w, "avg completion:  %.2fh\n", stats.AvgCompletionHours)
				fmt.Fprintf(w, "points:          %d\n", stats.TotalPoints)
			})
		},
	}

	cmd.Flags().UintVar(&userID, "user", 0, "user id")
	return cmd
}
