package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserRolesKey contextKey = "user_roles"
)

// Claims carries the dashboard user's identity. Roles gate the endpoint
// groups; facility scoping is a query parameter, not a claim.
type Claims struct {
	jwt.RegisteredClaims
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles"`
}

type JWTConfig struct {
	Issuer   string
	Audience string
	JWKSURL  string
	// SigningKey enables HMAC validation for development and tests.
	SigningKey []byte
	Skipper    echomw.Skipper
}

func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	skipper := cfg.Skipper
	if skipper == nil {
		skipper = echomw.DefaultSkipper
	}

	var keyFunc jwt.Keyfunc
	if len(cfg.SigningKey) > 0 {
		keyFunc = func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
			}
			return cfg.SigningKey, nil
		}
	} else {
		jwksURL := cfg.JWKSURL
		if jwksURL == "" && cfg.Issuer != "" {
			if provider, err := NewOIDCProvider(cfg.Issuer); err == nil {
				jwksURL = provider.JWKSURI
			}
		}
		keyFunc = jwksKeyFunc(jwksURL)
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"RS256", "HS256"})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper(c) {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			scheme, tokenStr, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || tokenStr == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, keyFunc, opts...)
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.SetRequest(c.Request().WithContext(WithIdentity(c.Request().Context(), claims.Subject, claims.Roles)))
			return next(c)
		}
	}
}

// DevAuthMiddleware lets unauthenticated requests through as an admin
// "dev-user". It is only mounted when AUTH_MODE is dev.
func DevAuthMiddleware(skipper echomw.Skipper) echo.MiddlewareFunc {
	if skipper == nil {
		skipper = echomw.DefaultSkipper
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper(c) {
				return next(c)
			}
			ctx := c.Request().Context()
			if UserIDFromContext(ctx) == "" {
				c.SetRequest(c.Request().WithContext(WithIdentity(ctx, "dev-user", []string{"admin"})))
			}
			return next(c)
		}
	}
}

// WithIdentity stores the user id and roles on ctx.
func WithIdentity(ctx context.Context, userID string, roles []string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, UserRolesKey, roles)
}

func UserIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(UserIDKey).(string)
	return uid
}

func RolesFromContext(ctx context.Context) []string {
	roles, _ := ctx.Value(UserRolesKey).([]string)
	return roles
}
