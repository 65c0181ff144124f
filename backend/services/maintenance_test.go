package services

import (
	"context"
	"testing"
	"time"

	"updaily/backend/config"
	"updaily/backend/models"
	"updaily/backend/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupKeepsCompletedHistory(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, "clean@example.com")
	ctx := context.Background()

	stale := createAssignment(t, f, user.ID, "2024-01-01", 30)
	done := createAssignment(t, f, user.ID, "2024-01-01", 0)
	_, err := f.assignments.Complete(ctx, user.ID, done.ID)
	require.NoError(t, err)
	recent := createAssignment(t, f, user.ID, "2024-02-25", 0)

	deleted, err := f.maintenance.Cleanup(ctx, time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = f.assignments.Get(ctx, user.ID, stale.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.assignments.Get(ctx, user.ID, done.ID)
	assert.NoError(t, err)
	_, err = f.assignments.Get(ctx, user.ID, recent.ID)
	assert.NoError(t, err)

	var achievements int64
	require.NoError(t, f.db.Model(&models.Achievement{}).Count(&achievements).Error)
	assert.Equal(t, int64(1), achievements)
}

func TestCleanupRemovesUnreferencedTemplateInstances(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.Challenges.Strategy = StrategyPool
	})
	user := testutil.CreateUser(t, f.db, "instances@example.com")
	ctx := context.Background()
	require.NoError(t, f.db.Create(&models.ChallengeTemplate{
		Name:     "Walk",
		Category: models.CategoryFisica,
		Type:     models.RetoTypeSimple,
		IsActive: true,
	}).Error)

	old, err := f.generator.Generate(ctx, user.ID, testutil.Date(2024, 1, 1))
	require.NoError(t, err)
	require.Len(t, old, 1)
	current, err := f.generator.Generate(ctx, user.ID, testutil.Date(2024, 2, 28))
	require.NoError(t, err)
	require.Len(t, current, 1)

	deleted, err := f.maintenance.Cleanup(ctx, time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var retoIDs []uint
	require.NoError(t, f.db.Unscoped().Model(&models.Reto{}).Pluck("id", &retoIDs).Error)
	assert.Equal(t, []uint{current[0].RetoID}, retoIDs)

	var markers []models.DailyGeneration
	require.NoError(t, f.db.Find(&markers).Error)
	require.Len(t, markers, 1)
	assert.Equal(t, "2024-02-28", markers[0].ChallengeDate)
}

func TestSendReminders(t *testing.T) {
	f := newFixture(t)
	busy := testutil.CreateUser(t, f.db, "busy@example.com")
	idle := testutil.CreateUser(t, f.db, "idle@example.com")
	ctx := context.Background()

	createAssignment(t, f, busy.ID, "2024-01-01", 0)
	createAssignment(t, f, busy.ID, "2024-01-01", 50)
	done := createAssignment(t, f, idle.ID, "2024-01-01", 0)
	_, err := f.assignments.Complete(ctx, idle.ID, done.ID)
	require.NoError(t, err)

	sent, err := f.maintenance.SendReminders(ctx, testutil.Date(2024, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, map[uint]int{busy.ID: 2}, f.notifier.reminders)
}

func TestSendWeeklySummaries(t *testing.T) {
	f := newFixture(t)
	active := testutil.CreateUser(t, f.db, "weekly@example.com")
	testutil.CreateUser(t, f.db, "empty@example.com")
	createAssignment(t, f, active.ID, "2024-01-01", 0)

	sent, err := f.maintenance.SendWeeklySummaries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []uint{active.ID}, f.notifier.summaries)
}
