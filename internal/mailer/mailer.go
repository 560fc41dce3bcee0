package mailer

import (
	"encoding/json"
	"fmt"
	"log/slog"

	sl "linker_auth/internal/lib/logger"
	"linker_auth/internal/models"

	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	from   string
	dialer dialer
}

func New(host string, port int, username, password string) *Mailer {
	return &Mailer{
		from:   username,
		dialer: gomail.NewDialer(host, port, username, password),
	}
}

func (m *Mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("To", to)
	msg.SetHeader("From", m.from)
	msg.SetHeader("Subject", subject)

	msg.SetBody("text/plain", body)

	return m.dialer.DialAndSend(msg)
}

type Sender interface {
	Send(to, subject, body string) error
}

// * Handler decodes queued messages and delivers them through s.
func Handler(log *slog.Logger, s Sender) func([]byte) error {
	return func(raw []byte) error {
		const op = "mailer.Handler"

		log := log.With(slog.String("op", op))

		var msg models.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Error("failed to unmarshal message", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}

		if err := s.Send(msg.To, msg.Subject, msg.Body); err != nil {
			log.Error("failed to send message", slog.String("subject", msg.Subject), sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}

		log.Info("message sent successfully", slog.String("subject", msg.Subject))

		return nil
	}
}
