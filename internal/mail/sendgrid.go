// AngelaMos | 2026
// sendgrid.go

package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/angelamos/gatekeep/internal/config"
)

type sendGridDispatcher struct {
	client  *sendgrid.Client
	cfg     config.MailConfig
	baseURL string
}

func newSendGridDispatcher(
	cfg config.MailConfig,
	baseURL string,
) *sendGridDispatcher {
	return &sendGridDispatcher{
		client:  sendgrid.NewSendClient(cfg.SendGridAPIKey),
		cfg:     cfg,
		baseURL: baseURL,
	}
}

func (d *sendGridDispatcher) SendVerificationEmail(
	ctx context.Context,
	to, name, token string,
) error {
	subject, body, err := verificationBody(name, d.baseURL, token)
	if err != nil {
		return err
	}
	return d.send(ctx, name, message{to: to, subject: subject, body: body})
}

func (d *sendGridDispatcher) SendOTP(
	ctx context.Context,
	to, name, code string,
) error {
	subject, body, err := otpBody(name, code)
	if err != nil {
		return err
	}
	return d.send(ctx, name, message{to: to, subject: subject, body: body})
}

func (d *sendGridDispatcher) send(
	ctx context.Context,
	toName string,
	msg message,
) error {
	from := sgmail.NewEmail(d.cfg.FromName, d.cfg.FromEmail)
	to := sgmail.NewEmail(toName, msg.to)
	email := sgmail.NewV3MailInit(
		from,
		msg.subject,
		to,
		sgmail.NewContent("text/html", msg.body),
	)

	resp, err := d.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf(
			"sendgrid send: status %d: %s",
			resp.StatusCode,
			resp.Body,
		)
	}

	return nil
}
