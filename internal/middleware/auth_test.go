// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/gatekeep/internal/core"
)

type fakeVerifier struct {
	claims *AccessTokenClaims
	err    error
}

func (f *fakeVerifier) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*AccessTokenClaims, error) {
	return f.claims, f.err
}

type fakeAuthorizer struct {
	hasRole bool
	hasPerm bool
	err     error
}

func (f *fakeAuthorizer) HasRole(
	ctx context.Context,
	userID, roleName string,
) (bool, error) {
	return f.hasRole, f.err
}

func (f *fakeAuthorizer) HasPermission(
	ctx context.Context,
	userID, permissionName string,
) (bool, error) {
	return f.hasPerm, f.err
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func authedRequest(userID string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if userID == "" {
		return r
	}
	ctx := context.WithValue(r.Context(), UserIDKey, userID)
	return r.WithContext(ctx)
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "bearer token", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "case insensitive scheme", header: "bearer tok", want: "tok"},
		{name: "missing header", header: "", want: ""},
		{name: "wrong scheme", header: "Basic dXNlcg==", want: ""},
		{name: "scheme only", header: "Bearer", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, ExtractToken(r))
		})
	}
}

func TestAuthenticator(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		verifier   *fakeVerifier
		wantStatus int
	}{
		{
			name:   "valid token passes claims through",
			header: "Bearer good",
			verifier: &fakeVerifier{
				claims: &AccessTokenClaims{UserID: "u1", Name: "Ada"},
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing token",
			header:     "",
			verifier:   &fakeVerifier{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			header:     "Bearer stale",
			verifier:   &fakeVerifier{err: core.ErrTokenExpired},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUserID = GetUserID(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			rec := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			Authenticator(tt.verifier)(next).ServeHTTP(rec, r)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, tt.verifier.claims)
				assert.Equal(t, tt.verifier.claims.UserID, gotUserID)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		authz      *fakeAuthorizer
		wantStatus int
	}{
		{
			name:       "role held",
			userID:     "u1",
			authz:      &fakeAuthorizer{hasRole: true},
			wantStatus: http.StatusOK,
		},
		{
			name:       "role not held",
			userID:     "u1",
			authz:      &fakeAuthorizer{},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "unauthenticated",
			userID:     "",
			authz:      &fakeAuthorizer{hasRole: true},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "evaluator failure",
			userID:     "u1",
			authz:      &fakeAuthorizer{err: errors.New("db down")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RequireRole(tt.authz, "Editor")(okHandler()).
				ServeHTTP(rec, authedRequest(tt.userID))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRequireRoleOrPermission(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		authz      *fakeAuthorizer
		wantStatus int
	}{
		{
			name:       "admin role passes without the permission",
			userID:     "root",
			authz:      &fakeAuthorizer{hasRole: true},
			wantStatus: http.StatusOK,
		},
		{
			name:       "permission passes without the role",
			userID:     "u1",
			authz:      &fakeAuthorizer{hasPerm: true},
			wantStatus: http.StatusOK,
		},
		{
			name:       "neither role nor permission",
			userID:     "u1",
			authz:      &fakeAuthorizer{},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "unauthenticated",
			userID:     "",
			authz:      &fakeAuthorizer{hasRole: true, hasPerm: true},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "evaluator failure",
			userID:     "u1",
			authz:      &fakeAuthorizer{err: errors.New("db down")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RequireRoleOrPermission(tt.authz, "Super Admin", "users.manage")(
				okHandler(),
			).ServeHTTP(rec, authedRequest(tt.userID))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		authz      *fakeAuthorizer
		wantStatus int
	}{
		{
			name:       "permission granted",
			userID:     "u1",
			authz:      &fakeAuthorizer{hasPerm: true},
			wantStatus: http.StatusOK,
		},
		{
			name:       "permission denied",
			userID:     "u1",
			authz:      &fakeAuthorizer{},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "unauthenticated",
			userID:     "",
			authz:      &fakeAuthorizer{hasPerm: true},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RequirePermission(tt.authz, "users.manage")(okHandler()).
				ServeHTTP(rec, authedRequest(tt.userID))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
