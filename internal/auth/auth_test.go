package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/lostfound/internal/domain"
)

const testSecret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func validClaims(userID int64, role string) Claims {
	return Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "lostfound",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestValidate(t *testing.T) {
	v := NewValidator(testSecret, "lostfound")

	expired := validClaims(1, "Student")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	wrongIssuer := validClaims(1, "Student")
	wrongIssuer.Issuer = "elsewhere"

	tests := []struct {
		name    string
		token   string
		want    Identity
		wantErr bool
	}{
		{
			name:  "valid staff token",
			token: sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(7, "Staff")),
			want:  Identity{UserID: 7, Role: domain.RoleStaff},
		},
		{name: "expired", token: sign(t, jwt.SigningMethodHS256, []byte(testSecret), expired), wantErr: true},
		{name: "wrong secret", token: sign(t, jwt.SigningMethodHS256, []byte("other"), validClaims(1, "Student")), wantErr: true},
		{name: "wrong issuer", token: sign(t, jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer), wantErr: true},
		{name: "unknown role", token: sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(1, "Janitor")), wantErr: true},
		{name: "missing user", token: sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(0, "Student")), wantErr: true},
		{name: "unsigned", token: sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims(1, "Student")), wantErr: true},
		{name: "garbage", token: "not.a.token", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Validate(tt.token)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func recordError(w http.ResponseWriter, _ *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		w.WriteHeader(http.StatusForbidden)
	default:
		w.WriteHeader(http.StatusUnauthorized)
	}
}

func TestMiddleware(t *testing.T) {
	v := NewValidator(testSecret, "")
	var seen Identity
	h := Middleware(v, recordError)(
		RequireRole(recordError, domain.RoleStaff, domain.RoleSecurityOfficer)(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = FromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			})))

	do := func(header string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, do(""))
	assert.Equal(t, http.StatusUnauthorized, do("Basic abc"))
	assert.Equal(t, http.StatusForbidden, do("Bearer "+sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(3, "Student"))))

	assert.Equal(t, http.StatusNoContent, do("Bearer "+sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(4, "SecurityOfficer"))))
	assert.Equal(t, Identity{UserID: 4, Role: domain.RoleSecurityOfficer}, seen)
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	h := RequireRole(recordError, domain.RoleStaff)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
