// Package mail delivers the verification codes used for two-factor login.
package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// Mailer sends a one-time verification code to a user. Implementations
// must not log the code.
type Mailer interface {
	SendOTP(ctx context.Context, to, name, otp string) error
}

// SMTPConfig carries the SMTP connection settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer delivers codes over SMTP with STARTTLS.
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

const otpSubject = "Your Login Verification Code"

const otpBodyHTML = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Login Verification</h2>
  <p>Hello %s,</p>
  <p>Your verification code is:</p>
  <p style="font-size: 32px; font-weight: bold; letter-spacing: 8px;">%s</p>
  <p>This code expires in 10 minutes. If you did not try to log in, you can ignore this email.</p>
</div>`

func (m *SMTPMailer) SendOTP(ctx context.Context, to, name, otp string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("mail: from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("mail: to address: %w", err)
	}
	msg.Subject(otpSubject)
	msg.SetBodyString(gomail.TypeTextHTML, fmt.Sprintf(otpBodyHTML, name, otp))

	client, err := gomail.NewClient(m.cfg.Host,
		gomail.WithPort(m.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.Username),
		gomail.WithPassword(m.cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("mail: client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}
