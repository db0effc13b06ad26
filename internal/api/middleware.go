package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/banking/withdrawal-risk-service/internal/config"
)

const (
	// ContextKeySubject holds the authenticated caller's subject claim
	ContextKeySubject = "auth_subject"
	// ContextKeyScope holds the space separated scope claim
	ContextKeyScope = "auth_scope"
)

// Claims are the token claims accepted by the service
type Claims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// JWTMiddleware rejects requests without a valid HS256 bearer token.
// With no secret configured every request is rejected.
func JWTMiddleware(cfg config.SecurityConfig) echo.MiddlewareFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.JWTIssuer))
	}
	parser := jwt.NewParser(opts...)
	secret := []byte(cfg.JWTSecret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(secret) == 0 {
				return unauthorized(c, "authentication is not configured")
			}

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return unauthorized(c, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				return unauthorized(c, "authorization header must be 'Bearer <token>'")
			}

			claims := &Claims{}
			token, err := parser.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				return unauthorized(c, "invalid token")
			}

			c.Set(ContextKeySubject, claims.Subject)
			c.Set(ContextKeyScope, claims.Scope)
			return next(c)
		}
	}
}

// RequireScope allows only tokens whose scope claim lists scope.
// It must run after JWTMiddleware.
func RequireScope(scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			granted, _ := c.Get(ContextKeyScope).(string)
			for _, s := range strings.Fields(granted) {
				if s == scope {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: fmt.Sprintf("scope %q is required", scope),
			})
		}
	}
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: msg})
}
