package recovery

import (
	"context"
	"fmt"
	"log/slog"

	"linker_auth/internal/models"

	sl "linker_auth/internal/lib/logger"
)

const (
	subjectManualLink  = "Manual reset password link"
	subjectAutoLink    = "Auto reset password link"
	subjectNewPassword = "New password"
)

type Publisher interface {
	SendMessage(ctx context.Context, msg models.Message) error
}

// send is fire-and-forget: a publish failure is logged and never reaches
// the caller.
func (e *Engine) send(ctx context.Context, log *slog.Logger, msg models.Message) {
	if err := e.publisher.SendMessage(ctx, msg); err != nil {
		log.Error("failed to enqueue mail", slog.String("subject", msg.Subject), sl.Err(err))
	}
}

func manualLinkMessage(base, email, hash string) models.Message {
	return models.Message{
		To:      email,
		Subject: subjectManualLink,
		Body:    fmt.Sprintf("%s/manual-password-change/%s", base, hash),
	}
}

// The hash and the code travel in the same message.
func autoLinkMessage(base, email, hash, code string) models.Message {
	return models.Message{
		To:      email,
		Subject: subjectAutoLink,
		Body:    fmt.Sprintf("%s/auto-password-change/%s, code: %s", base, hash, code),
	}
}

func newPasswordMessage(email, newPassword string) models.Message {
	return models.Message{
		To:      email,
		Subject: subjectNewPassword,
		Body:    "New password: " + newPassword,
	}
}
