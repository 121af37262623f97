package services

import (
	"context"
	"errors"
	"net/http"

	"marketchat/config"
	marketchat_errors "marketchat/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthService validates bearer tokens minted by the marketplace's identity
// provider. It does not manage credentials or sessions; every entry point of
// the chat core requires an authenticated caller and fails with
// ErrUnauthenticated before any store access otherwise.
type AuthService struct {
	jwtSecret []byte
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{jwtSecret: []byte(cfg.JWTSecret)}
}

type AccessClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

func (s *AuthService) ParseAccessToken(tokenString string) (AccessClaims, error) {
	if tokenString == "" {
		return AccessClaims{}, marketchat_errors.ErrUnauthenticated
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, marketchat_errors.ErrUnauthenticated
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return AccessClaims{}, marketchat_errors.ErrUnauthenticated
	}

	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid {
		return AccessClaims{}, marketchat_errors.ErrUnauthenticated
	}

	return *claims, nil
}

func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, marketchat_errors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, marketchat_errors.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, marketchat_errors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, marketchat_errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, marketchat_errors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, marketchat_errors.ErrInvalidOperation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, marketchat_errors.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type ctxKey string

var userIDKey ctxKey = "user_id"

func WithUserContext(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	value := ctx.Value(userIDKey)
	if value == nil {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}
