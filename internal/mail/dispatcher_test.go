// AngelaMos | 2026
// dispatcher_test.go

package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/gatekeep/internal/config"
)

func TestNewDispatcher(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		wantErr  bool
	}{
		{name: "smtp", provider: "smtp"},
		{name: "sendgrid", provider: "sendgrid"},
		{name: "noop", provider: "noop"},
		{name: "unknown provider", provider: "carrier-pigeon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDispatcher(
				config.MailConfig{Provider: tt.provider},
				"https://example.com",
			)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "carrier-pigeon")
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, d)
		})
	}
}

func TestVerificationBody(t *testing.T) {
	subject, body, err := verificationBody(
		"Ada",
		"https://example.com",
		"tok/with+special",
	)
	require.NoError(t, err)

	assert.NotEmpty(t, subject)
	assert.Contains(t, body, "Ada")
	assert.Contains(
		t,
		body,
		"https://example.com/api/v1/auth/verify-email?token=tok%2Fwith%2Bspecial",
	)
}

func TestVerificationBodyEscapesName(t *testing.T) {
	_, body, err := verificationBody(
		"<script>alert(1)</script>",
		"https://example.com",
		"tok",
	)
	require.NoError(t, err)

	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestOTPBody(t *testing.T) {
	subject, body, err := otpBody("Ada", "482910")
	require.NoError(t, err)

	assert.NotEmpty(t, subject)
	assert.Contains(t, body, "Ada")
	assert.Contains(t, body, "482910")
}
