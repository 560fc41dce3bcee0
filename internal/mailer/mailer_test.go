package mailer

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingDialer struct {
	sent []*gomail.Message
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return nil
}

func TestMailer_Send(t *testing.T) {
	d := &recordingDialer{}
	m := &Mailer{from: "noreply@linker.example", dialer: d}

	require.NoError(t, m.Send("e@x.com", "New password", "New password: abc"))
	require.Len(t, d.sent, 1)

	msg := d.sent[0]
	assert.Equal(t, []string{"e@x.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"noreply@linker.example"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"New password"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "New password: abc")
}

type fakeSender struct {
	to, subject, body string
	err               error
}

func (f *fakeSender) Send(to, subject, body string) error {
	f.to, f.subject, f.body = to, subject, body
	return f.err
}

func TestHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("delivers", func(t *testing.T) {
		s := &fakeSender{}
		err := Handler(log, s)([]byte(`{"to":"e@x.com","subject":"Manual reset password link","body":"link"}`))

		require.NoError(t, err)
		assert.Equal(t, "e@x.com", s.to)
		assert.Equal(t, "Manual reset password link", s.subject)
		assert.Equal(t, "link", s.body)
	})

	t.Run("malformed payload", func(t *testing.T) {
		s := &fakeSender{}
		err := Handler(log, s)([]byte(`{not json`))

		require.Error(t, err)
		assert.Empty(t, s.to)
	})

	t.Run("smtp failure", func(t *testing.T) {
		boom := errors.New("smtp down")
		err := Handler(log, &fakeSender{err: boom})([]byte(`{"to":"e@x.com"}`))

		require.ErrorIs(t, err, boom)
	})
}
