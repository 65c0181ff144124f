package services

import (
	"context"
	"testing"

	"updaily/backend/models"
	"updaily/backend/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestIsStreakMilestone(t *testing.T) {
	for _, days := range []int{3, 7, 14, 30, 50, 100} {
		assert.True(t, IsStreakMilestone(days), days)
	}
	for _, days := range []int{0, 1, 2, 4, 15, 99, 101} {
		assert.False(t, IsStreakMilestone(days), days)
	}
}

func TestLogNotifierWritesMessage(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core))
	user := models.User{Name: "Ana"}
	user.ID = 7

	require.NoError(t, n.DailyChallengesReady(context.Background(), user, 6))
	require.NoError(t, n.ChallengeCompleted(context.Background(), user, "Caminata Saludable", 0))

	entries := logs.All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, "daily_ready", fields["kind"])
	assert.Equal(t, uint64(7), fields["user_id"])
	assert.Contains(t, fields["message"], "6 nuevos retos")
	assert.Contains(t, entries[1].ContextMap()["message"], "Caminata Saludable")
}

func TestNewNotifierChoosesTransport(t *testing.T) {
	cfg := testutil.Config()
	assert.IsType(t, &LogNotifier{}, NewNotifier(cfg, zap.NewNop()))

	cfg.SMTP.Host = "smtp.example.com"
	cfg.SMTP.From = "updaily@example.com"
	assert.IsType(t, &MailNotifier{}, NewNotifier(cfg, zap.NewNop()))
}

func TestMailNotifierFallsBackWithoutEmail(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	cfg := testutil.Config()
	cfg.SMTP.Host = "localhost"
	n := NewMailNotifier(cfg.SMTP, zap.New(core))

	require.NoError(t, n.Reminder(context.Background(), models.User{}, 2))
	assert.Equal(t, 1, logs.Len())
}
