// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/angelamos/gatekeep/internal/config"
	"github.com/angelamos/gatekeep/internal/core"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
	ErrNotVerified        = errors.New("email not verified")
	ErrSuspended          = errors.New("account suspended")
	ErrOTPExpired         = errors.New("one-time code expired")
)

// Account is the auth-facing view of a user row. Suspended accounts are
// visible here so login can refuse them explicitly instead of reporting
// them missing.
type Account struct {
	ID           string
	Email        string
	Phone        *string
	Name         string
	PasswordHash string
	Tier         int
	Verified     bool
	MFAEnabled   bool
	MFACode      *string
	MFAExpiresAt *time.Time
	Suspended    bool
}

type NewAccount struct {
	ID                string
	Email             string
	Phone             *string
	Name              string
	Gender            string
	PasswordHash      string
	Tier              int
	Verified          bool
	VerificationToken string
}

// UserDirectory is the slice of the user store the auth flows need.
// Implemented by the user service.
type UserDirectory interface {
	FindForAuthByEmail(ctx context.Context, email string) (*Account, error)
	FindForAuthByPhone(ctx context.Context, phone string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	FindByVerificationToken(
		ctx context.Context,
		token string,
	) (*Account, error)
	FindByOTPCode(ctx context.Context, code string) (*Account, error)
	CreateAccount(ctx context.Context, acc NewAccount) (*Account, error)
	MarkVerified(ctx context.Context, id string) error
	SetOTP(ctx context.Context, id, code string, expiresAt time.Time) error
	ClearOTP(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// Mailer delivers account mail. Failures never fail the triggering request;
// they are logged and the user can retry the flow.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) error
	SendOTP(ctx context.Context, to, name, code string) error
}

type Service struct {
	users    UserDirectory
	jwt      *JWTManager
	mail     Mailer
	oauth    *OAuthProviders
	clock    core.Clock
	otpCfg   config.OTPConfig
	tokenTTL time.Duration
	logger   *slog.Logger
}

func NewService(
	users UserDirectory,
	jwtManager *JWTManager,
	mail Mailer,
	oauth *OAuthProviders,
	clock core.Clock,
	otpCfg config.OTPConfig,
	tokenTTL time.Duration,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:    users,
		jwt:      jwtManager,
		mail:     mail,
		oauth:    oauth,
		clock:    clock,
		otpCfg:   otpCfg,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// Register creates an unverified account and sends the verification mail.
// The account cannot log in until the mailed token is redeemed.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*RegisterResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	token, err := core.GenerateVerificationToken()
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}

	acc, err := s.users.CreateAccount(ctx, NewAccount{
		ID:                uuid.New().String(),
		Email:             req.Email,
		Phone:             req.Phone,
		Name:              req.Name,
		Gender:            req.Gender,
		PasswordHash:      passwordHash,
		Tier:              2,
		Verified:          false,
		VerificationToken: token,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.sendMailAsync("verification email", acc.Email, func(ctx context.Context) error {
		return s.mail.SendVerificationEmail(ctx, acc.Email, acc.Name, token)
	})

	return &RegisterResponse{
		User:    toUserSummary(acc),
		Message: "verification email sent",
	}, nil
}

// Login checks credentials for an email or phone identifier. Unknown
// identifiers and wrong passwords collapse into the same error so the
// endpoint cannot be used to enumerate accounts.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*AuthResponse, error) {
	var (
		acc *Account
		err error
	)
	if req.Email != "" {
		acc, err = s.users.FindForAuthByEmail(ctx, req.Email)
	} else {
		acc, err = s.users.FindForAuthByPhone(ctx, req.Phone)
	}
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&acc.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.users.UpdatePassword(ctx, acc.ID, newHash)
	}

	if !acc.Verified {
		return nil, ErrNotVerified
	}

	if acc.Suspended {
		return nil, ErrSuspended
	}

	if acc.MFAEnabled {
		if err := s.issueOTP(ctx, acc); err != nil {
			return nil, err
		}

		return &AuthResponse{
			User:       toUserSummary(acc),
			MFAPending: true,
			Message:    "one-time code sent",
		}, nil
	}

	return s.createAuthResponse(acc)
}

// VerifyLogin redeems a one-time code issued during an MFA login. The code
// is single-use: it is cleared before the token is handed out.
func (s *Service) VerifyLogin(
	ctx context.Context,
	req VerifyLoginRequest,
) (*AuthResponse, error) {
	acc, err := s.users.FindByOTPCode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("verify login: %w", core.ErrNotFound)
		}
		return nil, fmt.Errorf("find account by code: %w", err)
	}

	if acc.MFAExpiresAt == nil ||
		!s.clock.Now().Before(*acc.MFAExpiresAt) {
		return nil, ErrOTPExpired
	}

	if acc.Suspended {
		return nil, ErrSuspended
	}

	if err := s.users.ClearOTP(ctx, acc.ID); err != nil {
		return nil, fmt.Errorf("clear otp: %w", err)
	}

	return s.createAuthResponse(acc)
}

// VerifyEmail redeems a mailed verification token. Redeeming an already
// verified account is a no-op, so a double-clicked link still lands on a
// success page.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	acc, err := s.users.FindByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("verify email: %w", core.ErrNotFound)
		}
		return fmt.Errorf("find account by token: %w", err)
	}

	if acc.Verified {
		return nil
	}

	if err := s.users.MarkVerified(ctx, acc.ID); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}

	return nil
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID string,
) (*UserSummary, error) {
	acc, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := toUserSummary(acc)
	return &summary, nil
}

func (s *Service) issueOTP(ctx context.Context, acc *Account) error {
	code, err := core.GenerateOTPCode(s.otpCfg.Digits)
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	expiresAt := s.clock.Now().Add(s.otpCfg.TTL)

	if err := s.users.SetOTP(ctx, acc.ID, code, expiresAt); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	s.sendMailAsync("otp email", acc.Email, func(ctx context.Context) error {
		return s.mail.SendOTP(ctx, acc.Email, acc.Name, code)
	})

	return nil
}

func (s *Service) createAuthResponse(acc *Account) (*AuthResponse, error) {
	accessToken, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID: acc.ID,
		Name:   acc.Name,
		Tier:   acc.Tier,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	now := s.clock.Now()

	return &AuthResponse{
		User: toUserSummary(acc),
		Tokens: &TokenResponse{
			AccessToken: accessToken,
			TokenType:   "Bearer",
			ExpiresIn:   int(s.tokenTTL / time.Second),
			ExpiresAt:   now.Add(s.tokenTTL),
		},
	}, nil
}

func (s *Service) sendMailAsync(
	kind, recipient string,
	send func(context.Context) error,
) {
	go func() {
		ctx, cancel := context.WithTimeout(
			context.Background(),
			30*time.Second,
		)
		defer cancel()

		if err := send(ctx); err != nil {
			s.logger.Error("send "+kind+" failed",
				"recipient", recipient,
				"error", err,
			)
		}
	}()
}

func toUserSummary(acc *Account) UserSummary {
	return UserSummary{
		ID:         acc.ID,
		Email:      acc.Email,
		Name:       acc.Name,
		Tier:       acc.Tier,
		Verified:   acc.Verified,
		MFAEnabled: acc.MFAEnabled,
	}
}
