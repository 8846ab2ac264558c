// Package notifier sends tenant-facing emails.  Failures here are
// always logged and swallowed by callers: a broken SMTP relay must
// never block or roll back a payment state change.
package notifier

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Mailer sends a payment notification to a recipient.
type Mailer interface {
	SendPaymentSuccess(to, name, paymentCode string, amount int64) error
}

// SMTPMailer sends mail through a plain SMTP relay.  When Host is
// empty the mailer is disabled and sends become logged no-ops, which
// keeps local development working without a relay.
type SMTPMailer struct {
	Host   string
	Port   string
	User   string
	Pass   string
	From   string
	logger *zap.Logger
}

// NewSMTPMailer builds a mailer from the SMTP_* configuration.
func NewSMTPMailer(host, port, user, pass, from string, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{Host: host, Port: port, User: user, Pass: pass, From: from, logger: logger}
}

// SendPaymentSuccess emails the tenant that their payment settled.
func (m *SMTPMailer) SendPaymentSuccess(to, name, paymentCode string, amount int64) error {
	if m.Host == "" {
		m.logger.Info("smtp disabled, skipping notification",
			zap.String("to", to),
			zap.String("payment_code", paymentCode),
		)
		return nil
	}

	subject := "Pembayaran Berhasil - " + paymentCode
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n")
	fmt.Fprintf(&b, "<p>Halo <strong>%s</strong>,</p>", name)
	fmt.Fprintf(&b, "<p>Pembayaran Anda dengan kode <strong>%s</strong> sebesar Rp %d telah berhasil.</p>", paymentCode, amount)
	b.WriteString("<p>Terima kasih.</p>")

	var auth smtp.Auth
	if m.User != "" {
		auth = smtp.PlainAuth("", m.User, m.Pass, m.Host)
	}
	addr := m.Host + ":" + m.Port
	if err := smtp.SendMail(addr, auth, m.From, []string{to}, []byte(b.String())); err != nil {
		m.logger.Error("send mail failed",
			zap.String("to", to),
			zap.String("payment_code", paymentCode),
			zap.Error(err),
		)
		return err
	}
	m.logger.Info("payment notification sent",
		zap.String("to", to),
		zap.String("payment_code", paymentCode),
	)
	return nil
}
