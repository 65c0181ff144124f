package services

import (
	"context"
	"testing"
	"time"

	"updaily/backend/models"
	"updaily/backend/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createAssignment(t *testing.T, f *fixture, userID uint, day string, progress float64) models.DailyAssignment {
	t.Helper()
	retos := testutil.CreateRetos(t, f.db, models.CategorySocial, 1)
	a := models.DailyAssignment{UserID: userID, RetoID: retos[0].ID, ChallengeDate: day, ProgressValue: progress}
	require.NoError(t, f.db.Create(&a).Error)
	return a
}

func TestCreateIfCompleteOnlyOnce(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, "logro@example.com")
	a := createAssignment(t, f, user.ID, "2024-01-01", 100)
	ctx := context.Background()

	first, err := f.achievements.CreateIfComplete(ctx, user.ID, a.ID)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, a.ID, first.AssignmentID)
	assert.Equal(t, a.RetoID, first.RetoID)

	second, err := f.achievements.CreateIfComplete(ctx, user.ID, a.ID)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, f.db.Model(&models.Achievement{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateIfCompleteReturnsConcurrentAward(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, "dup@example.com")
	a := createAssignment(t, f, user.ID, "2024-01-01", 100)

	// Another request awards the assignment right after the existence check.
	rival := models.Achievement{UserID: user.ID, AssignmentID: a.ID, RetoID: a.RetoID, AwardedAt: a.CreatedAt}
	var rivalErr error
	afterFirstQuery(t, f.db, "achievements", func(tx *gorm.DB) {
		rivalErr = tx.Create(&rival).Error
	})

	got, err := f.achievements.CreateIfComplete(context.Background(), user.ID, a.ID)
	require.NoError(t, err)
	require.NoError(t, rivalErr)
	require.NotNil(t, got)
	assert.Equal(t, rival.ID, got.ID)

	var count int64
	require.NoError(t, f.db.Model(&models.Achievement{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateIfCompleteBelowFullProgress(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, "partial@example.com")
	a := createAssignment(t, f, user.ID, "2024-01-01", 99.5)

	achievement, err := f.achievements.CreateIfComplete(context.Background(), user.ID, a.ID)
	require.NoError(t, err)
	assert.Nil(t, achievement)
}

func TestCreateIfCompleteOwnership(t *testing.T) {
	f := newFixture(t)
	owner := testutil.CreateUser(t, f.db, "owner@example.com")
	other := testutil.CreateUser(t, f.db, "other@example.com")
	a := createAssignment(t, f, owner.ID, "2024-01-01", 100)

	_, err := f.achievements.CreateIfComplete(context.Background(), other.ID, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.achievements.CreateIfComplete(context.Background(), owner.ID, a.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAchievementListAndGet(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, "list@example.com")
	other := testutil.CreateUser(t, f.db, "nolist@example.com")
	a := createAssignment(t, f, user.ID, "2024-01-01", 100)
	ctx := context.Background()

	created, err := f.achievements.CreateIfComplete(ctx, user.ID, a.ID)
	require.NoError(t, err)

	list, err := f.achievements.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Reto)

	got, err := f.achievements.Get(ctx, user.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = f.achievements.Get(ctx, other.ID, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAwardManually(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, "manual@example.com")
	a := createAssignment(t, f, user.ID, "2024-01-01", 20)
	now := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	f.achievements.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := f.achievements.Award(ctx, a.ID, now.Add(time.Hour))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.achievements.Award(ctx, a.ID, time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.achievements.Award(ctx, a.ID+100, time.Time{})
	assert.ErrorIs(t, err, ErrNotFound)

	awarded, err := f.achievements.Award(ctx, a.ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, user.ID, awarded.UserID)
	assert.True(t, now.Equal(awarded.AwardedAt))

	_, err = f.achievements.Award(ctx, a.ID, time.Time{})
	assert.ErrorIs(t, err, ErrDuplicate)

	corrected := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
	updated, err := f.achievements.SetAwardedAt(ctx, awarded.ID, corrected)
	require.NoError(t, err)
	assert.True(t, corrected.Equal(updated.AwardedAt))
	_, err = f.achievements.SetAwardedAt(ctx, awarded.ID, now.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, f.achievements.Delete(ctx, awarded.ID))
	assert.ErrorIs(t, f.achievements.Delete(ctx, awarded.ID), ErrNotFound)
	_, err = f.achievements.SetAwardedAt(ctx, awarded.ID, corrected)
	assert.ErrorIs(t, err, ErrNotFound)
}
