// AngelaMos | 2026
// smtp.go

package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/angelamos/gatekeep/internal/config"
)

// smtpDispatcher sends through a plain SMTP relay. Used in development
// against a local catcher and in deployments with their own relay.
type smtpDispatcher struct {
	cfg     config.MailConfig
	baseURL string
}

func newSMTPDispatcher(
	cfg config.MailConfig,
	baseURL string,
) *smtpDispatcher {
	return &smtpDispatcher{cfg: cfg, baseURL: baseURL}
}

func (d *smtpDispatcher) SendVerificationEmail(
	ctx context.Context,
	to, name, token string,
) error {
	subject, body, err := verificationBody(name, d.baseURL, token)
	if err != nil {
		return err
	}
	return d.send(ctx, message{to: to, subject: subject, body: body})
}

func (d *smtpDispatcher) SendOTP(
	ctx context.Context,
	to, name, code string,
) error {
	subject, body, err := otpBody(name, code)
	if err != nil {
		return err
	}
	return d.send(ctx, message{to: to, subject: subject, body: body})
}

func (d *smtpDispatcher) send(ctx context.Context, msg message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", d.cfg.SMTPHost, d.cfg.SMTPPort)

	var auth smtp.Auth
	if d.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth(
			"",
			d.cfg.SMTPUsername,
			d.cfg.SMTPPassword,
			d.cfg.SMTPHost,
		)
	}

	from := d.cfg.FromEmail

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", d.cfg.FromName, from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.to)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.body)

	err := smtp.SendMail(addr, auth, from, []string{msg.to}, []byte(b.String()))
	if err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}
