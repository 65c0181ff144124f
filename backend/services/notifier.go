package services

import (
	"context"
	"fmt"

	"updaily/backend/config"
	"updaily/backend/models"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// StreakMilestones are the streak lengths worth a dedicated notification.
var StreakMilestones = []int{3, 7, 14, 30, 50, 100}

func IsStreakMilestone(days int) bool {
	for _, m := range StreakMilestones {
		if days == m {
			return true
		}
	}
	return false
}

// Notifier delivers user-facing messages. Implementations hold no
// per-user state and no database handle.
type Notifier interface {
	DailyChallengesReady(ctx context.Context, user models.User, count int) error
	ChallengeCompleted(ctx context.Context, user models.User, retoName string, currentStreak int) error
	StreakMilestone(ctx context.Context, user models.User, days int) error
	Reminder(ctx context.Context, user models.User, pending int) error
	WeeklySummary(ctx context.Context, user models.User, stats Stats) error
}

// NewNotifier returns a mail notifier when SMTP is configured and a log
// notifier otherwise.
func NewNotifier(cfg *config.Config, logger *zap.Logger) Notifier {
	if cfg.SMTP.Host == "" {
		return NewLogNotifier(logger)
	}
	return NewMailNotifier(cfg.SMTP, logger)
}

type message struct {
	subject string
	body    string
}

func dailyReadyMessage(count int) message {
	return message{
		subject: "Tus retos de hoy",
		body:    fmt.Sprintf("¡Tienes %d nuevos retos para hoy! ¡Vamos a completarlos!", count),
	}
}

func completedMessage(retoName string, streak int) message {
	if streak > 0 {
		return message{
			subject: "Reto completado",
			body:    fmt.Sprintf("¡Excelente! Completaste '%s'. ¡Llevas %d días seguidos!", retoName, streak),
		}
	}
	return message{
		subject: "Reto completado",
		body:    fmt.Sprintf("¡Bien hecho! Completaste '%s'. ¡Sigue así!", retoName),
	}
}

func milestoneMessage(days int) message {
	return message{
		subject: fmt.Sprintf("¡%d días seguidos!", days),
		body:    fmt.Sprintf("¡Increíble! Llevas %d días seguidos completando retos. ¡Eres imparable!", days),
	}
}

func reminderMessage(pending int) message {
	return message{
		subject: "Recordatorio",
		body:    fmt.Sprintf("¡No olvides completar tus %d retos de hoy!", pending),
	}
}

func summaryMessage(stats Stats) message {
	return message{
		subject: "Resumen semanal",
		body: fmt.Sprintf("Resumen semanal: Completaste %d de %d retos (%.2f%%)",
			stats.Completed, stats.Total, stats.CompletionRate),
	}
}

// LogNotifier writes notifications to the log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notifier")}
}

func (n *LogNotifier) log(kind string, user models.User, msg message) error {
	n.logger.Info("notification",
		zap.String("kind", kind),
		zap.Uint("user_id", user.ID),
		zap.String("subject", msg.subject),
		zap.String("message", msg.body),
	)
	return nil
}

func (n *LogNotifier) DailyChallengesReady(_ context.Context, user models.User, count int) error {
	return n.log("daily_ready", user, dailyReadyMessage(count))
}

func (n *LogNotifier) ChallengeCompleted(_ context.Context, user models.User, retoName string, currentStreak int) error {
	return n.log("completed", user, completedMessage(retoName, currentStreak))
}

func (n *LogNotifier) StreakMilestone(_ context.Context, user models.User, days int) error {
	return n.log("streak", user, milestoneMessage(days))
}

func (n *LogNotifier) Reminder(_ context.Context, user models.User, pending int) error {
	return n.log("reminder", user, reminderMessage(pending))
}

func (n *LogNotifier) WeeklySummary(_ context.Context, user models.User, stats Stats) error {
	return n.log("weekly_summary", user, summaryMessage(stats))
}

// MailNotifier sends plain-text email through SMTP. Users without an email
// address are handled by the log notifier.
type MailNotifier struct {
	dialer   *gomail.Dialer
	from     string
	fallback *LogNotifier
}

func NewMailNotifier(cfg config.SMTPConfig, logger *zap.Logger) *MailNotifier {
	return &MailNotifier{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.From,
		fallback: NewLogNotifier(logger),
	}
}

func (n *MailNotifier) send(ctx context.Context, kind string, user models.User, msg message) error {
	if user.Email == "" {
		return n.fallback.log(kind, user, msg)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", msg.subject)
	m.SetBody("text/plain", msg.body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send %s email to user %d: %w", kind, user.ID, err)
	}
	return nil
}

func (n *MailNotifier) DailyChallengesReady(ctx context.Context, user models.User, count int) error {
	return n.send(ctx, "daily_ready", user, dailyReadyMessage(count))
}

func (n *MailNotifier) ChallengeCompleted(ctx context.Context, user models.User, retoName string, currentStreak int) error {
	return n.send(ctx, "completed", user, completedMessage(retoName, currentStreak))
}

func (n *MailNotifier) StreakMilestone(ctx context.Context, user models.User, days int) error {
	return n.send(ctx, "streak", user, milestoneMessage(days))
}

func (n *MailNotifier) Reminder(ctx context.Context, user models.User, pending int) error {
	return n.send(ctx, "reminder", user, reminderMessage(pending))
}

func (n *MailNotifier) WeeklySummary(ctx context.Context, user models.User, stats Stats) error {
	return n.send(ctx, "weekly_summary", user, summaryMessage(stats))
}
