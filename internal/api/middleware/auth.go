package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-OrderService/internal/api/handlers"
	"github.com/m04kA/SMC-OrderService/internal/domain"
)

type contextKey string

const (
	userIDKey   contextKey = "userID"
	userRoleKey contextKey = "userRole"
)

const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"

	msgMissingUserID = "отсутствует заголовок X-User-ID"
	msgInvalidUserID = "некорректный заголовок X-User-ID"
	msgInvalidRole   = "некорректный заголовок X-User-Role"
)

// Auth требует заголовок X-User-ID и кладет идентификатор и роль инициатора
// в контекст запроса. Роль берется из X-User-Role (customer по умолчанию);
// роль system через API недоступна.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(headerUserID)
		if raw == "" {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}

		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, msgInvalidUserID)
			return
		}

		role := domain.RoleCustomer
		if rawRole := r.Header.Get(headerUserRole); rawRole != "" {
			switch domain.ActorRole(rawRole) {
			case domain.RoleCustomer, domain.RolePartner, domain.RoleAdmin:
				role = domain.ActorRole(rawRole)
			default:
				handlers.RespondUnauthorized(w, msgInvalidRole)
				return
			}
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, userRoleKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID возвращает идентификатор инициатора из контекста
func GetUserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// GetUserRole возвращает роль инициатора из контекста
func GetUserRole(ctx context.Context) domain.ActorRole {
	if role, ok := ctx.Value(userRoleKey).(domain.ActorRole); ok {
		return role
	}
	return domain.RoleCustomer
}
