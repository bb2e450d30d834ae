package get_provider_orders

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-OrderService/internal/api/handlers"
	"github.com/m04kA/SMC-OrderService/internal/api/middleware"
	"github.com/m04kA/SMC-OrderService/internal/domain"
)

const (
	msgInvalidProviderID = "некорректный ID провайдера"
	msgMissingUserID     = "отсутствует ID пользователя"
	msgInvalidParams     = "некорректные параметры запроса"
	msgForbidden         = "доступ запрещен"
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

// Handle GET /api/v1/providers/{providerId}/orders
// Query params: status, from, to, includeTerminal (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	providerID, err := strconv.ParseInt(vars["providerId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /providers/{id}/orders - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /providers/{id}/orders - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Партнер видит только свои заказы, админ - любые
	role := middleware.GetUserRole(r.Context())
	if role != domain.RoleAdmin && (role != domain.RolePartner || actorID != providerID) {
		h.logger.Warn("GET /providers/{id}/orders - Access denied: actor=%d, role=%s, provider=%d", actorID, role, providerID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	query := r.URL.Query()
	filter, err := ToProviderFilter(providerID,
		query.Get("status"), query.Get("from"), query.Get("to"), query.Get("includeTerminal"))
	if err != nil {
		h.logger.Warn("GET /providers/{id}/orders - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.GetProviderOrders(r.Context(), filter)
	if err != nil {
		h.logger.Error("GET /providers/{id}/orders - Failed: provider_id=%d, error=%v", providerID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /providers/{id}/orders - Orders retrieved: provider_id=%d, count=%d", providerID, result.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}
