// Package mailer delivers verification codes over SMTP.
package mailer

import (
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/mail.v2"
)

// SMTPSender implements authcore.MailSender over a plain SMTP account.
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Log      *zap.Logger
}

// Send renders the named template with data and delivers it. Known
// templates are "register" and "password-reset"; anything else falls
// back to a generic code mail.
func (m *SMTPSender) Send(to, template string, data map[string]string) error {
	subject, body := render(template, data)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		if m.Log != nil {
			m.Log.Error("mail delivery failed",
				zap.String("template", template),
				zap.Error(err))
		}
		return fmt.Errorf("mail delivery: %w", err)
	}
	if m.Log != nil {
		m.Log.Info("mail sent", zap.String("template", template))
	}
	return nil
}

func render(template string, data map[string]string) (subject, body string) {
	name := data["name"]
	if name == "" {
		name = "there"
	}
	switch template {
	case "register":
		return "Activate your account", fmt.Sprintf(
			"Hi %s,\n\nThanks for registering. Your activation code is %s.\nIt expires in %s minutes.\n",
			name, data["code"], data["ttl"])
	case "password-reset":
		return "Reset your password", fmt.Sprintf(
			"Hi %s,\n\nYour password reset code is %s.\nIt expires in %s minutes. If you did not request this, ignore this mail.\n",
			name, data["code"], data["ttl"])
	default:
		return "Your verification code", fmt.Sprintf("Hi %s,\n\nYour code is %s.\n", name, data["code"])
	}
}
