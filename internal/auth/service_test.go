// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/gatekeep/internal/config"
	"github.com/angelamos/gatekeep/internal/core"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

type fakeDirectory struct {
	mu sync.Mutex

	byID    map[string]*Account
	byEmail map[string]*Account
	byPhone map[string]*Account
	byToken map[string]*Account
	byCode  map[string]*Account

	createErr error
	created   *NewAccount

	otpID        string
	otpCode      string
	otpExpiresAt time.Time
	otpCleared   []string
	verifiedIDs  []string
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		byID:    map[string]*Account{},
		byEmail: map[string]*Account{},
		byPhone: map[string]*Account{},
		byToken: map[string]*Account{},
		byCode:  map[string]*Account{},
	}
}

func (f *fakeDirectory) add(acc *Account) {
	f.byID[acc.ID] = acc
	f.byEmail[acc.Email] = acc
	if acc.Phone != nil {
		f.byPhone[*acc.Phone] = acc
	}
	if acc.MFACode != nil {
		f.byCode[*acc.MFACode] = acc
	}
}

func (f *fakeDirectory) find(
	m map[string]*Account,
	key string,
) (*Account, error) {
	acc, ok := m[key]
	if !ok {
		return nil, core.ErrNotFound
	}
	return acc, nil
}

func (f *fakeDirectory) FindForAuthByEmail(
	ctx context.Context,
	email string,
) (*Account, error) {
	return f.find(f.byEmail, email)
}

func (f *fakeDirectory) FindForAuthByPhone(
	ctx context.Context,
	phone string,
) (*Account, error) {
	return f.find(f.byPhone, phone)
}

func (f *fakeDirectory) FindByID(
	ctx context.Context,
	id string,
) (*Account, error) {
	return f.find(f.byID, id)
}

func (f *fakeDirectory) FindByVerificationToken(
	ctx context.Context,
	token string,
) (*Account, error) {
	return f.find(f.byToken, token)
}

func (f *fakeDirectory) FindByOTPCode(
	ctx context.Context,
	code string,
) (*Account, error) {
	return f.find(f.byCode, code)
}

func (f *fakeDirectory) CreateAccount(
	ctx context.Context,
	acc NewAccount,
) (*Account, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}

	f.created = &acc

	created := &Account{
		ID:           acc.ID,
		Email:        acc.Email,
		Phone:        acc.Phone,
		Name:         acc.Name,
		PasswordHash: acc.PasswordHash,
		Tier:         acc.Tier,
		Verified:     acc.Verified,
	}
	f.add(created)
	f.byToken[acc.VerificationToken] = created

	return created, nil
}

func (f *fakeDirectory) MarkVerified(ctx context.Context, id string) error {
	f.verifiedIDs = append(f.verifiedIDs, id)
	return nil
}

func (f *fakeDirectory) SetOTP(
	ctx context.Context,
	id, code string,
	expiresAt time.Time,
) error {
	f.otpID = id
	f.otpCode = code
	f.otpExpiresAt = expiresAt
	return nil
}

func (f *fakeDirectory) ClearOTP(ctx context.Context, id string) error {
	f.otpCleared = append(f.otpCleared, id)
	return nil
}

func (f *fakeDirectory) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	return nil
}

type recordingMailer struct {
	mu            sync.Mutex
	verifications []string
	otps          []string
}

func (m *recordingMailer) SendVerificationEmail(
	ctx context.Context,
	to, name, token string,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifications = append(m.verifications, token)
	return nil
}

func (m *recordingMailer) SendOTP(
	ctx context.Context,
	to, name, code string,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.otps = append(m.otps, code)
	return nil
}

func (m *recordingMailer) sentOTPs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.otps...)
}

func (m *recordingMailer) sentVerifications() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.verifications...)
}

func newTestJWTManager(t *testing.T) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")
	require.NoError(t, GenerateKeyPair(privPath, pubPath))

	m, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:    privPath,
		PublicKeyPath:     pubPath,
		AccessTokenExpire: 15 * time.Minute,
		Issuer:            "gatekeep",
		Audience:          "gatekeep-api",
	})
	require.NoError(t, err)

	return m
}

func newTestService(
	t *testing.T,
	dir *fakeDirectory,
	mailer *recordingMailer,
	clock *fixedClock,
) *Service {
	t.Helper()

	return NewService(
		dir,
		newTestJWTManager(t),
		mailer,
		NewOAuthProviders(config.OAuthConfig{}),
		clock,
		config.OTPConfig{Digits: 6, TTL: 3 * time.Minute},
		15*time.Minute,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := core.HashPassword(password)
	require.NoError(t, err)
	return hash
}

func TestRegisterCreatesUnverifiedAccount(t *testing.T) {
	dir := newFakeDirectory()
	mailer := &recordingMailer{}
	svc := newTestService(t, dir, mailer, &fixedClock{now: time.Now()})

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	require.NotNil(t, dir.created)
	assert.False(t, dir.created.Verified)
	assert.NotEmpty(t, dir.created.VerificationToken)
	assert.NotEqual(t, "hunter2hunter2", dir.created.PasswordHash)
	assert.False(t, resp.User.Verified)

	assert.Eventually(t, func() bool {
		sent := mailer.sentVerifications()
		return len(sent) == 1 && sent[0] == dir.created.VerificationToken
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	dir := newFakeDirectory()
	dir.createErr = core.ErrDuplicateKey
	svc := newTestService(t, dir, &recordingMailer{}, &fixedClock{now: time.Now()})

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter2hunter2",
	})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestLoginCollapsesUnknownAndWrongPassword(t *testing.T) {
	dir := newFakeDirectory()
	dir.add(&Account{
		ID:           "u1",
		Email:        "ada@example.com",
		Name:         "Ada",
		PasswordHash: mustHash(t, "correct-password"),
		Verified:     true,
	})
	svc := newTestService(t, dir, &recordingMailer{}, &fixedClock{now: time.Now()})

	tests := []struct {
		name string
		req  LoginRequest
	}{
		{
			name: "unknown email",
			req: LoginRequest{
				Email:    "nobody@example.com",
				Password: "correct-password",
			},
		},
		{
			name: "wrong password",
			req: LoginRequest{
				Email:    "ada@example.com",
				Password: "wrong-password",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestLoginGates(t *testing.T) {
	hash := mustHash(t, "correct-password")

	tests := []struct {
		name    string
		acc     Account
		wantErr error
	}{
		{
			name: "suspended account",
			acc: Account{
				ID:           "u1",
				Email:        "ada@example.com",
				PasswordHash: hash,
				Verified:     true,
				Suspended:    true,
			},
			wantErr: ErrSuspended,
		},
		{
			name: "unverified account",
			acc: Account{
				ID:           "u1",
				Email:        "ada@example.com",
				PasswordHash: hash,
			},
			wantErr: ErrNotVerified,
		},
		{
			// Verification is checked before suspension, so an account
			// that is both gets told to verify first.
			name: "unverified and suspended account",
			acc: Account{
				ID:           "u1",
				Email:        "ada@example.com",
				PasswordHash: hash,
				Suspended:    true,
			},
			wantErr: ErrNotVerified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := newFakeDirectory()
			acc := tt.acc
			dir.add(&acc)
			svc := newTestService(
				t,
				dir,
				&recordingMailer{},
				&fixedClock{now: time.Now()},
			)

			_, err := svc.Login(context.Background(), LoginRequest{
				Email:    "ada@example.com",
				Password: "correct-password",
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	dir := newFakeDirectory()
	dir.add(&Account{
		ID:           "u1",
		Email:        "ada@example.com",
		Name:         "Ada",
		PasswordHash: mustHash(t, "correct-password"),
		Tier:         2,
		Verified:     true,
	})
	svc := newTestService(t, dir, &recordingMailer{}, &fixedClock{now: time.Now()})

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ada@example.com",
		Password: "correct-password",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Tokens)
	assert.False(t, resp.MFAPending)

	claims, err := svc.jwt.VerifyAccessToken(
		context.Background(),
		resp.Tokens.AccessToken,
	)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, 2, claims.Tier)
}

func TestLoginByPhone(t *testing.T) {
	phone := "+15550001111"
	dir := newFakeDirectory()
	dir.add(&Account{
		ID:           "u1",
		Email:        "ada@example.com",
		Phone:        &phone,
		Name:         "Ada",
		PasswordHash: mustHash(t, "correct-password"),
		Verified:     true,
	})
	svc := newTestService(t, dir, &recordingMailer{}, &fixedClock{now: time.Now()})

	resp, err := svc.Login(context.Background(), LoginRequest{
		Phone:    phone,
		Password: "correct-password",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Tokens)
}

func TestLoginWithMFAIssuesOTP(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	dir := newFakeDirectory()
	dir.add(&Account{
		ID:           "u1",
		Email:        "ada@example.com",
		Name:         "Ada",
		PasswordHash: mustHash(t, "correct-password"),
		Verified:     true,
		MFAEnabled:   true,
	})
	mailer := &recordingMailer{}
	svc := newTestService(t, dir, mailer, &fixedClock{now: now})

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ada@example.com",
		Password: "correct-password",
	})
	require.NoError(t, err)

	assert.True(t, resp.MFAPending)
	assert.Nil(t, resp.Tokens)

	assert.Equal(t, "u1", dir.otpID)
	assert.Len(t, dir.otpCode, 6)
	assert.Equal(t, now.Add(3*time.Minute), dir.otpExpiresAt)

	assert.Eventually(t, func() bool {
		sent := mailer.sentOTPs()
		return len(sent) == 1 && sent[0] == dir.otpCode
	}, 2*time.Second, 10*time.Millisecond)
}

func TestVerifyLogin(t *testing.T) {
	expiry := time.Date(2026, 3, 1, 12, 3, 0, 0, time.UTC)
	code := "482910"

	tests := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{name: "before expiry", now: expiry.Add(-time.Second)},
		{name: "exactly at expiry", now: expiry, wantErr: ErrOTPExpired},
		{
			name:    "just past expiry",
			now:     expiry.Add(time.Millisecond),
			wantErr: ErrOTPExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := newFakeDirectory()
			dir.add(&Account{
				ID:           "u1",
				Email:        "ada@example.com",
				Name:         "Ada",
				Verified:     true,
				MFAEnabled:   true,
				MFACode:      &code,
				MFAExpiresAt: &expiry,
			})
			svc := newTestService(
				t,
				dir,
				&recordingMailer{},
				&fixedClock{now: tt.now},
			)

			resp, err := svc.VerifyLogin(
				context.Background(),
				VerifyLoginRequest{Code: code},
			)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, dir.otpCleared)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, resp.Tokens)
			assert.Equal(t, []string{"u1"}, dir.otpCleared)
		})
	}
}

func TestVerifyLoginUnknownCode(t *testing.T) {
	svc := newTestService(
		t,
		newFakeDirectory(),
		&recordingMailer{},
		&fixedClock{now: time.Now()},
	)

	_, err := svc.VerifyLogin(
		context.Background(),
		VerifyLoginRequest{Code: "000000"},
	)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestVerifyEmail(t *testing.T) {
	dir := newFakeDirectory()
	acc := &Account{ID: "u1", Email: "ada@example.com"}
	dir.add(acc)
	dir.byToken["tok-1"] = acc
	svc := newTestService(t, dir, &recordingMailer{}, &fixedClock{now: time.Now()})

	require.NoError(t, svc.VerifyEmail(context.Background(), "tok-1"))
	assert.Equal(t, []string{"u1"}, dir.verifiedIDs)

	// Already verified accounts redeem as a no-op.
	acc.Verified = true
	require.NoError(t, svc.VerifyEmail(context.Background(), "tok-1"))
	assert.Equal(t, []string{"u1"}, dir.verifiedIDs)

	err := svc.VerifyEmail(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}
