package get_user_orders

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-OrderService/internal/api/handlers"
	"github.com/m04kA/SMC-OrderService/internal/api/middleware"
	"github.com/m04kA/SMC-OrderService/internal/domain"
)

const (
	msgInvalidUserID = "некорректный ID пользователя"
	msgMissingUserID = "отсутствует ID пользователя"
	msgForbidden     = "доступ запрещен"
)

type Handler struct {
	service OrderService
	logger  Logger
}

func NewHandler(service OrderService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/users/{userId}/orders
// Query params: status (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	targetID, err := strconv.ParseInt(vars["userId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /users/{userId}/orders - Invalid user ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidUserID)
		return
	}

	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /users/{userId}/orders - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Клиент видит только свои заказы, админ - любые
	role := middleware.GetUserRole(r.Context())
	if role != domain.RoleAdmin && actorID != targetID {
		h.logger.Warn("GET /users/{userId}/orders - Access denied: actor=%d, target=%d", actorID, targetID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	var statusPtr *domain.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.OrderStatus(raw)
		statusPtr = &status
	}

	result, err := h.service.GetCustomerOrders(r.Context(), targetID, statusPtr)
	if err != nil {
		h.logger.Error("GET /users/{userId}/orders - Failed: user_id=%d, error=%v", targetID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /users/{userId}/orders - Orders retrieved: user_id=%d, count=%d", targetID, result.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}
