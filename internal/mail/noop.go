// AngelaMos | 2026
// noop.go

package mail

import (
	"context"
	"log/slog"
)

// NoopDispatcher logs instead of sending. Default for tests and for local
// setups without a relay.
type NoopDispatcher struct{}

func NewNoopDispatcher() *NoopDispatcher {
	return &NoopDispatcher{}
}

func (d *NoopDispatcher) SendVerificationEmail(
	ctx context.Context,
	to, name, token string,
) error {
	slog.InfoContext(ctx, "mail suppressed",
		"kind", "verification",
		"to", to,
	)
	return nil
}

func (d *NoopDispatcher) SendOTP(
	ctx context.Context,
	to, name, code string,
) error {
	slog.InfoContext(ctx, "mail suppressed",
		"kind", "otp",
		"to", to,
	)
	return nil
}
