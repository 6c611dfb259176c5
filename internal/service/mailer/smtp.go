package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// SMTPSender отправляет письма через обычный SMTP-релей.
type SMTPSender struct {
	addr   string
	from   string
	auth   smtp.Auth
	logger *log.Entry
}

// NewSMTPSender создаёт отправителя. username/password пустые — без auth.
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPSender{
		addr:   fmt.Sprintf("%s:%d", host, port),
		from:   from,
		auth:   auth,
		logger: log.WithField("component", "smtp-sender"),
	}
}

// Send отправляет HTML-письмо одному получателю.
func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	var msg strings.Builder
	msg.WriteString("From: " + s.from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg.String())); err != nil {
		s.logger.WithError(err).WithField("to", to).Warn("failed to send email")
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

var _ domain.MailSender = (*SMTPSender)(nil)
