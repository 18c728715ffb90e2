package infrastructure

import (
	"log"

	"gopkg.in/gomail.v2"
)

// SMTPMailer hands messages to the external mail relay. Failures are the
// caller's to log and swallow — mail is a best-effort side channel.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, pass, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return m.dialer.DialAndSend(msg)
}

// NoopMailer is selected when mail is not configured; the app must start
// without a mail server.
type NoopMailer struct{}

func (NoopMailer) Send(to, subject, htmlBody string) error {
	log.Printf("mail not configured — skipping alert to %s", to)
	return nil
}
