// AngelaMos | 2026
// dispatcher.go

package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"

	"github.com/angelamos/gatekeep/internal/config"
)

// Dispatcher delivers account mail: the verification link on signup and
// the one-time login code. Implementations are picked by configuration.
type Dispatcher interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) error
	SendOTP(ctx context.Context, to, name, code string) error
}

type message struct {
	to      string
	subject string
	body    string
}

func NewDispatcher(
	cfg config.MailConfig,
	baseURL string,
) (Dispatcher, error) {
	switch cfg.Provider {
	case "sendgrid":
		return newSendGridDispatcher(cfg, baseURL), nil
	case "smtp":
		return newSMTPDispatcher(cfg, baseURL), nil
	case "noop":
		return NewNoopDispatcher(), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}

var verificationTmpl = template.Must(
	template.New("verification").Parse(`<html>
<body>
  <p>Hi {{.Name}},</p>
  <p>Confirm your email address by opening the link below:</p>
  <p><a href="{{.Link}}">{{.Link}}</a></p>
  <p>If you did not create this account, ignore this message.</p>
</body>
</html>
`))

var otpTmpl = template.Must(template.New("otp").Parse(`<html>
<body>
  <p>Hi {{.Name}},</p>
  <p>Your one-time login code is: <strong>{{.Code}}</strong></p>
  <p>The code expires in a few minutes. If you did not try to log in,
  change your password now.</p>
</body>
</html>
`))

func verificationBody(
	name, baseURL, token string,
) (subject, body string, err error) {
	link := fmt.Sprintf(
		"%s/api/v1/auth/verify-email?token=%s",
		baseURL,
		url.QueryEscape(token),
	)

	var b bytes.Buffer
	err = verificationTmpl.Execute(&b, struct {
		Name string
		Link string
	}{Name: name, Link: link})
	if err != nil {
		return "", "", fmt.Errorf("render verification mail: %w", err)
	}

	return "Verify your email address", b.String(), nil
}

func otpBody(name, code string) (subject, body string, err error) {
	var b bytes.Buffer
	err = otpTmpl.Execute(&b, struct {
		Name string
		Code string
	}{Name: name, Code: code})
	if err != nil {
		return "", "", fmt.Errorf("render otp mail: %w", err)
	}

	return "Your one-time login code", b.String(), nil
}
