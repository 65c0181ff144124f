package services

import (
	"context"
	"sync"
	"testing"

	"updaily/backend/config"
	"updaily/backend/models"
	"updaily/backend/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu         sync.Mutex
	ready      map[uint]int
	completed  []string
	milestones []int
	reminders  map[uint]int
	summaries  []uint
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{ready: map[uint]int{}, reminders: map[uint]int{}}
}

func (n *recordingNotifier) DailyChallengesReady(_ context.Context, user models.User, count int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ready[user.ID] = count
	return nil
}

func (n *recordingNotifier) ChallengeCompleted(_ context.Context, _ models.User, retoName string, _ int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, retoName)
	return nil
}

func (n *recordingNotifier) StreakMilestone(_ context.Context, _ models.User, days int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.milestones = append(n.milestones, days)
	return nil
}

func (n *recordingNotifier) Reminder(_ context.Context, user models.User, pending int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminders[user.ID] = pending
	return nil
}

func (n *recordingNotifier) WeeklySummary(_ context.Context, user models.User, _ Stats) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.summaries = append(n.summaries, user.ID)
	return nil
}

type fixture struct {
	db           *gorm.DB
	cfg          *config.Config
	notifier     *recordingNotifier
	generator    *Generator
	stats        *StatsService
	achievements *AchievementService
	assignments  *AssignmentService
	maintenance  *Maintenance
}

func newFixture(t *testing.T, tweak ...func(*config.Config)) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := testutil.Config()
	for _, fn := range tweak {
		fn(cfg)
	}
	logger := testutil.Logger()
	notifier := newRecordingNotifier()

	stats := NewStatsService(db, cfg)
	achievements := NewAchievementService(db)
	return &fixture{
		db:           db,
		cfg:          cfg,
		notifier:     notifier,
		generator:    NewGenerator(db, cfg, notifier, logger),
		stats:        stats,
		achievements: achievements,
		assignments:  NewAssignmentService(db, achievements, stats, notifier, logger),
		maintenance:  NewMaintenance(db, cfg, stats, notifier, logger),
	}
}

// seedCatalog creates n active retos in every category.
func (f *fixture) seedCatalog(t *testing.T, n int) {
	t.Helper()
	for _, category := range models.Categories {
		testutil.CreateRetos(t, f.db, category, n)
	}
}

// afterFirstQuery runs fn once, on the connection of the caller, right after
// the first query against table. It stands in for another writer whose rows
// land between a read and the following write.
func afterFirstQuery(t *testing.T, db *gorm.DB, table string, fn func(tx *gorm.DB)) {
	t.Helper()
	fired := false
	err := db.Callback().Query().After("gorm:query").Register("test:after_first_"+table, func(tx *gorm.DB) {
		if fired || tx.Statement.Table != table {
			return
		}
		fired = true
		fn(tx.Session(&gorm.Session{NewDB: true}))
	})
	require.NoError(t, err)
}
