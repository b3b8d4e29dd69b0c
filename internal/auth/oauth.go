// AngelaMos | 2026
// oauth.go

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/angelamos/gatekeep/internal/config"
	"github.com/angelamos/gatekeep/internal/core"
)

var ErrUnknownProvider = errors.New("unknown oauth provider")

const userInfoBodyLimit = 1 << 20

// OAuthProfile is the normalized identity returned by a provider's
// userinfo endpoint. Providers disagree on field names, so both common
// spellings are accepted.
type OAuthProfile struct {
	Email string
	Name  string
}

type oauthProvider struct {
	name        string
	config      *oauth2.Config
	userInfoURL string
}

// OAuthProviders holds the configured social login providers. Providers are
// pure configuration; adding one is a config change, not a code change.
type OAuthProviders struct {
	providers map[string]*oauthProvider
}

func NewOAuthProviders(cfg config.OAuthConfig) *OAuthProviders {
	providers := make(map[string]*oauthProvider, len(cfg.Providers))

	for name, pc := range cfg.Providers {
		providers[name] = &oauthProvider{
			name: name,
			config: &oauth2.Config{
				ClientID:     pc.ClientID,
				ClientSecret: pc.ClientSecret,
				RedirectURL:  pc.RedirectURL,
				Scopes:       pc.Scopes,
				Endpoint: oauth2.Endpoint{
					AuthURL:  pc.AuthURL,
					TokenURL: pc.TokenURL,
				},
			},
			userInfoURL: pc.UserInfoURL,
		}
	}

	return &OAuthProviders{providers: providers}
}

func (p *OAuthProviders) get(name string) (*oauthProvider, error) {
	provider, ok := p.providers[name]
	if !ok {
		return nil, fmt.Errorf("oauth provider %q: %w", name, ErrUnknownProvider)
	}
	return provider, nil
}

func (p *oauthProvider) fetchProfile(
	ctx context.Context,
	token *oauth2.Token,
) (*OAuthProfile, error) {
	client := p.config.Client(ctx, token)
	client.Timeout = 10 * time.Second

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		p.userInfoURL,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"fetch userinfo: provider %s returned %d",
			p.name,
			resp.StatusCode,
		)
	}

	var raw struct {
		Email     string `json:"email"`
		Name      string `json:"name"`
		Login     string `json:"login"`
		GivenName string `json:"given_name"`
	}
	body := io.LimitReader(resp.Body, userInfoBodyLimit)
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}

	if raw.Email == "" {
		return nil, fmt.Errorf(
			"fetch userinfo: provider %s returned no email",
			p.name,
		)
	}

	name := raw.Name
	if name == "" {
		name = raw.GivenName
	}
	if name == "" {
		name = raw.Login
	}
	if name == "" {
		name = raw.Email
	}

	return &OAuthProfile{Email: raw.Email, Name: name}, nil
}

// OAuthAuthURL builds the provider redirect URL for the given CSRF state.
func (s *Service) OAuthAuthURL(provider, state string) (string, error) {
	p, err := s.oauth.get(provider)
	if err != nil {
		return "", err
	}

	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// OAuthCallback exchanges the authorization code, fetches the provider
// profile, and signs the user in. First-time social users get an account
// created on the spot; the provider already vouched for the email, so it
// is born verified.
func (s *Service) OAuthCallback(
	ctx context.Context,
	provider, code string,
) (*AuthResponse, error) {
	p, err := s.oauth.get(provider)
	if err != nil {
		return nil, err
	}

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", ErrInvalidCredentials)
	}

	profile, err := p.fetchProfile(ctx, token)
	if err != nil {
		return nil, err
	}

	acc, err := s.users.FindForAuthByEmail(ctx, profile.Email)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("find account: %w", err)
		}

		acc, err = s.createSocialAccount(ctx, profile)
		if err != nil {
			return nil, err
		}
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

// Social accounts have no usable password. A random secret is hashed so the
// password column stays non-null and timing-safe login verification still
// has something to chew on.
func (s *Service) createSocialAccount(
	ctx context.Context,
	profile *OAuthProfile,
) (*Account, error) {
	secret, err := core.GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate placeholder secret: %w", err)
	}

	passwordHash, err := core.HashPassword(secret)
	if err != nil {
		return nil, fmt.Errorf("hash placeholder secret: %w", err)
	}

	verificationToken, err := core.GenerateVerificationToken()
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}

	acc, err := s.users.CreateAccount(ctx, NewAccount{
		ID:                uuid.New().String(),
		Email:             profile.Email,
		Name:              profile.Name,
		PasswordHash:      passwordHash,
		Tier:              2,
		Verified:          true,
		VerificationToken: verificationToken,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create social account: %w", err)
	}

	return acc, nil
}
