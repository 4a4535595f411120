package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/retailapi/internal/server/handlers"
	"github.com/iudanet/retailapi/internal/server/storage"
)

// AuthMiddleware создает middleware для проверки bearer токена.
// Токен валиден, только если подпись верна, срок не истек и subject
// по-прежнему существует в хранилище пользователей. Все три случая
// отказа наружу выглядят одинаково (401), но различаются в логах.
func AuthMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig, users storage.UserStorage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Извлекаем токен из заголовка Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("missing Authorization header", "path", r.URL.Path)
				unauthorized(w, "missing token")
				return
			}

			// Ожидаем формат: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("invalid Authorization header format", "path", r.URL.Path)
				unauthorized(w, "invalid token format")
				return
			}

			tokenString := parts[1]

			// Валидируем токен
			claims, err := handlers.ValidateAccessToken(jwtConfig, tokenString)
			if err != nil {
				if errors.Is(err, handlers.ErrTokenExpired) {
					logger.Warn("access token expired", "path", r.URL.Path)
				} else {
					logger.Warn("invalid access token", "path", r.URL.Path, "error", err)
				}
				unauthorized(w, "invalid or expired token")
				return
			}

			// Subject должен резолвиться в существующего пользователя
			user, err := users.GetUserByUsername(r.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, storage.ErrUserNotFound) {
					logger.Warn("token subject no longer exists", "subject", claims.Subject)
					unauthorized(w, "invalid or expired token")
					return
				}
				logger.Error("failed to resolve token subject", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			// Добавляем данные из токена в контекст
			ctx := context.WithValue(r.Context(), handlers.UserIDKey, user.ID)
			ctx = context.WithValue(ctx, handlers.UsernameKey, user.Username)

			logger.Debug("user authenticated", "user_id", user.ID, "username", user.Username)

			// Передаем запрос дальше с обновленным контекстом
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// unauthorized отправляет 401 с challenge заголовком bearer аутентификации
func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Unauthorized","message":"` + message + `"}`))
}
