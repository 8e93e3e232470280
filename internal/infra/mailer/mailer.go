// Package mailer sends transactional mail over SMTP. Delivery failures are
// reported to the caller, who logs and moves on; mail is never on the
// critical path of a request.
package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"nazca360/internal/pkg/config"
	"nazca360/internal/pkg/errs"
)

type Mailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
	baseURL  string
}

func New(cfg config.SMTPConfig, baseURL string) *Mailer {
	return &Mailer{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Email, cfg.Password),
		from:     cfg.Email,
		fromName: cfg.FromName,
		baseURL:  baseURL,
	}
}

func (m *Mailer) SendVerificationEmail(to, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", m.baseURL, token)
	body := fmt.Sprintf(
		"<p>Welcome to Nazca360.</p><p>Confirm your email address to activate your account:</p><p><a href=%q>Verify email</a></p><p>The link expires in 24 hours.</p>",
		link,
	)
	return m.send(to, "Verify your Nazca360 account", body)
}

func (m *Mailer) SendPasswordResetEmail(to, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.baseURL, token)
	body := fmt.Sprintf(
		"<p>We received a request to reset your password.</p><p><a href=%q>Choose a new password</a></p><p>If you did not request this, ignore this message. The link expires in 1 hour.</p>",
		link,
	)
	return m.send(to, "Reset your Nazca360 password", body)
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(m.from, m.fromName))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return errs.Wrap(err, "failed to send mail")
	}
	return nil
}
