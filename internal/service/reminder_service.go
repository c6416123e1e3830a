package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// Notifier delivers a digest message to a chat.
type Notifier interface {
	Send(chatID int64, text string) error
}

// ReminderService builds and delivers daily digests for users who opted in.
type ReminderService struct {
	tasks    *TaskService
	users    *repository.UserRepository
	notifier Notifier
}

func NewReminderService(tasks *TaskService, users *repository.UserRepository, notifier Notifier) *ReminderService {
	return &ReminderService{tasks: tasks, users: users, notifier: notifier}
}

// DailyDigest renders a short HTML summary of the user's board.
func (s *ReminderService) DailyDigest(ctx context.Context, user model.User, now time.Time) (string, error) {
	summary, err := s.tasks.Summarize(ctx, user.ID, now)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily digest</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("2006-01-02")))

	if summary.Total == 0 {
		builder.WriteString("Your board is empty. Enjoy the quiet.\n")
		return strings.TrimSpace(builder.String()), nil
	}

	builder.WriteString(fmt.Sprintf("• %d tasks, %d completed (%d%% done)\n",
		summary.Total, summary.Completed, summary.OverallProgress))
	builder.WriteString(fmt.Sprintf("• %d in progress, %d blocked\n",
		summary.InProgress, summary.Blocked))
	if summary.Overdue > 0 {
		builder.WriteString(fmt.Sprintf("⚠️ %d overdue\n", summary.Overdue))
	}

	builder.WriteString("\n⏰ <b>Coming up</b>\n")
	if len(summary.Upcoming) == 0 {
		builder.WriteString("— nothing due soon\n")
	} else {
		for _, task := range summary.Upcoming {
			builder.WriteString(formatUpcoming(task))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

// SendDailyDigests delivers a digest to every user with a chat configured.
func (s *ReminderService) SendDailyDigests(ctx context.Context, now time.Time) error {
	if s.notifier == nil {
		return nil
	}
	users, err := s.users.ListDigestRecipients(ctx)
	if err != nil {
		return err
	}
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		text, err := s.DailyDigest(ctx, user, now)
		if err != nil {
			log.Printf("build digest for user %d: %v", user.ID, err)
			continue
		}
		if err := s.notifier.Send(user.TelegramChatID, text); err != nil {
			log.Printf("send digest to user %d: %v", user.ID, err)
		}
	}
	return nil
}

func formatUpcoming(task model.Task) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("• %s", html.EscapeString(strings.TrimSpace(task.Title))))
	if task.DueDate != nil {
		sb.WriteString(fmt.Sprintf(" — due %s", task.DueDate.Format("2006-01-02")))
	}
	if task.Priority == model.PriorityHigh {
		sb.WriteString(" ❗")
	}
	sb.WriteByte('\n')
	return sb.String()
}
