package services

import (
	"context"
	"testing"
	"time"

	"updaily/backend/models"
	"updaily/backend/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestUpdateProgressPartial(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, "partial@example.com")
	a := createAssignment(t, f, user.ID, "2024-01-01", 0)

	res, err := f.assignments.UpdateProgress(context.Background(), user.ID, a.ID,
		models.AssignmentPatch{ProgressValue: ptr(40.0)})
	require.NoError(t, err)
	assert.False(t, res.Completed)
	assert.Nil(t, res.Achievement)
	assert.Equal(t, 40.0, res.Assignment.ProgressValue)
	assert.False(t, res.Assignment.IsCompleted)
	assert.Empty(t, f.notifier.completed)
}

func TestUpdateProgressCompletesAtFull(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, "full@example.com")
	a := createAssignment(t, f, user.ID, "2024-01-01", 10)
	fixed := time.Now().UTC().Add(time.Minute).Truncate(time.Millisecond)
	f.assignments.now = func() time.Time { return fixed }

	res, err := f.assignments.UpdateProgress(context.Background(), user.ID, a.ID,
		models.AssignmentPatch{ProgressValue: ptr(100.0)})
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.True(t, res.Assignment.IsCompleted)
	assert.Equal(t, 100.0, res.Assignment.ProgressValue)
	require.NotNil(t, res.Assignment.CompletedAt)
	assert.True(t, fixed.Equal(*res.Assignment.CompletedAt))
	require.NotNil(t, res.Achievement)
	assert.Equal(t, a.ID, res.Achievement.AssignmentID)
	assert.Len(t, f.notifier.completed, 1)
}

func TestUpdateProgressAfterCompletionRejected(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, "done@example.com")
	a := createAssignment(t, f, user.ID, "2024-01-01", 0)
	ctx := context.Background()

	_, err := f.assignments.Complete(ctx, user.ID, a.ID)
	require.NoError(t, err)

	_, err = f.assignments.UpdateProgress(ctx, user.ID, a.ID, models.AssignmentPatch{ProgressValue: ptr(20.0)})
	require.ErrorIs(t, err, ErrAlreadyCompleted)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.assignments.Complete(ctx, user.ID, a.ID)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)

	var count int64
	require.NoError(t, f.db.Model(&models.Achievement{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stored, err := f.assignments.Get(ctx, user.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, stored.ProgressValue)
}

func TestUpdateProgressValidation(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, "bad@example.com")
	a := createAssignment(t, f, user.ID, "2024-01-01", 0)
	ctx := context.Background()

	for _, v := range []float64{-1, 100.5} {
		_, err := f.assignments.UpdateProgress(ctx, user.ID, a.ID, models.AssignmentPatch{ProgressValue: ptr(v)})
		assert.ErrorIs(t, err, ErrValidation, "value %v", v)
	}

	_, err := f.assignments.UpdateProgress(ctx, user.ID, a.ID, models.AssignmentPatch{})
	assert.ErrorIs(t, err, ErrValidation)

	other := testutil.CreateUser(t, f.db, "intruder@example.com")
	_, err = f.assignments.UpdateProgress(ctx, other.ID, a.ID, models.AssignmentPatch{ProgressValue: ptr(50.0)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompleteNotifiesStreakMilestone(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, "streak@example.com")
	today := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	f.stats.now = func() time.Time { return today }
	f.assignments.now = func() time.Time { return today }

	for _, d := range []int{8, 9} {
		done := time.Date(2024, 1, d, 10, 0, 0, 0, time.UTC)
		a := createAssignment(t, f, user.ID, done.Format(models.DateLayout), 100)
		require.NoError(t, f.db.Model(&a).Updates(map[string]interface{}{
			"is_completed": true,
			"completed_at": done,
			"created_at":   done.Add(-time.Hour),
		}).Error)
	}

	a := createAssignment(t, f, user.ID, "2024-01-10", 0)
	a.CreatedAt = today.Add(-time.Hour)
	require.NoError(t, f.db.Model(&a).Update("created_at", a.CreatedAt).Error)

	_, err := f.assignments.Complete(context.Background(), user.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, f.notifier.milestones)
}

func TestDeleteAssignment(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, "del@example.com")
	a := createAssignment(t, f, user.ID, "2024-01-01", 100)
	ctx := context.Background()

	_, err := f.achievements.CreateIfComplete(ctx, user.ID, a.ID)
	require.NoError(t, err)

	other := testutil.CreateUser(t, f.db, "nodel@example.com")
	assert.ErrorIs(t, f.assignments.Delete(ctx, other.ID, a.ID), ErrNotFound)

	require.NoError(t, f.assignments.Delete(ctx, user.ID, a.ID))
	_, err = f.assignments.Get(ctx, user.ID, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, f.db.Model(&models.Achievement{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListForDateRejectsBadDate(t *testing.T) {
	f := newFixture(t)
	_, err := f.assignments.ListForDate(context.Background(), 1, "01/02/2024")
	assert.ErrorIs(t, err, ErrValidation)
}
