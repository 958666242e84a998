// Package auth turns a bearer token into the caller identity the workflows
// act on. Tokens are issued elsewhere; this package only validates them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vbonduro/lostfound/internal/domain"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID int64
	Role   domain.Role
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by the middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// Claims is the token payload.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Validator checks HS256 tokens signed with a shared secret.
type Validator struct {
	secret []byte
	issuer string
}

func NewValidator(secret, issuer string) *Validator {
	return &Validator{secret: []byte(secret), issuer: issuer}
}

// Validate parses token and returns the identity it carries. Every failure
// wraps domain.ErrUnauthorized.
func (v *Validator) Validate(token string) (Identity, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, fmt.Errorf("%w: token has expired", domain.ErrUnauthorized)
		}
		return Identity{}, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Identity{}, fmt.Errorf("%w: invalid token claims", domain.ErrUnauthorized)
	}
	if claims.UserID <= 0 {
		return Identity{}, fmt.Errorf("%w: token has no user", domain.ErrUnauthorized)
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: token has unknown role %q", domain.ErrUnauthorized, claims.Role)
	}

	return Identity{UserID: claims.UserID, Role: role}, nil
}

// Middleware authenticates the Authorization header. Failures are passed to
// onError so the transport can render them its own way.
func Middleware(v *Validator, onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				onError(w, r, fmt.Errorf("%w: missing bearer token", domain.ErrUnauthorized))
				return
			}

			id, err := v.Validate(strings.TrimSpace(token))
			if err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole rejects callers whose role is not in roles.
func RequireRole(onError func(http.ResponseWriter, *http.Request, error), roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := FromContext(r.Context())
			if !ok {
				onError(w, r, fmt.Errorf("%w: not authenticated", domain.ErrUnauthorized))
				return
			}
			for _, role := range roles {
				if id.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			onError(w, r, fmt.Errorf("%w: role %s may not perform this action", domain.ErrForbidden, id.Role))
		})
	}
}
