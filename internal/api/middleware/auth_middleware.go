package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/farmhub-ng/farm-marketplace/internal/errors"
	"github.com/farmhub-ng/farm-marketplace/internal/models"
	"github.com/farmhub-ng/farm-marketplace/internal/utils/response"
	"github.com/golang-jwt/jwt/v5"
)

type userContextKey string

const UserContextKey = userContextKey("user")

type AuthMiddleware struct {
	jwtKey []byte
}

func NewAuthMiddleware(jwtKey []byte) *AuthMiddleware {
	return &AuthMiddleware{jwtKey: jwtKey}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := LoggerFromContext(r.Context())

		// Token is of format : "Bearer <token>"
		authHeader := r.Header.Get("Authorization")

		if authHeader == "" {
			logger.Warn("Missing authorization header")
			response.Error(w, errors.NotAuthenticatedError("Authorization header is required"))
			return
		}

		tokenParts := strings.Split(authHeader, " ")

		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			logger.Warn("Invalid authorization header format")
			response.Error(w, errors.NotAuthenticatedError("Invalid authorization format"))
			return
		}

		tokenString := tokenParts[1]

		claims := &models.Claims{}

		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				logger.Error("Unexpected signing method used in JWT", slog.Any("alg", t.Header["alg"]))
				return nil, errors.BadRequestError("unexpected signing method")
			}
			return m.jwtKey, nil
		})

		if err != nil {
			logger.Warn("JWT parsing failed", slog.String("error", err.Error()))
			response.Error(w, errors.NotAuthenticatedError("Invalid or expired token"))
			return
		}

		if !token.Valid {
			logger.Warn("Invalid token")
			response.Error(w, errors.NotAuthenticatedError("Invalid token"))
			return
		}

		if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(time.Now()) {
			logger.Warn("Expired token", slog.String("ownerId", claims.OwnerID))
			response.Error(w, errors.NotAuthenticatedError("Token expired"))
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)

		requestScopedLogger := logger.With(slog.String("ownerId", claims.OwnerID))
		ctx = context.WithValue(ctx, LoggerKey, requestScopedLogger)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// RequireOwner checks that the ownerId path value belongs to the
// authenticated caller. The store is keyed by visitor identity; nobody
// reads or mutates another visitor's cart.
func RequireOwner(r *http.Request, pathParam string) (*models.Claims, error) {
	claims, ok := r.Context().Value(UserContextKey).(*models.Claims)
	if !ok {
		return nil, errors.NotAuthenticatedError("Authentication required")
	}

	ownerID := r.PathValue(pathParam)
	if ownerID == "" {
		return nil, errors.BadRequestError("Owner ID is required")
	}

	if ownerID != claims.OwnerID {
		return nil, errors.ForbiddenError("You don't have permission to access this cart")
	}

	return claims, nil
}
