package get_order

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-OrderService/internal/api/handlers"
	"github.com/m04kA/SMC-OrderService/internal/api/middleware"
	"github.com/m04kA/SMC-OrderService/internal/service/orders"
)

const (
	msgInvalidOrderID = "некорректный ID заказа"
	msgNotFound       = "заказ не найден"
	msgMissingUserID  = "отсутствует ID пользователя"
	msgForbidden      = "доступ запрещен"
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

// Handle GET /api/v1/orders/{orderId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	orderID, userID, ok := h.parseRequest(w, r, "GET /orders/{id}")
	if !ok {
		return
	}

	order, err := h.service.GetByID(r.Context(), orderID, userID, middleware.GetUserRole(r.Context()))
	if err != nil {
		h.respondServiceError(w, r, "GET /orders/{id}", orderID, userID, err)
		return
	}

	h.logger.Info("GET /orders/{id} - Order retrieved: order_id=%d, user_id=%d", orderID, userID)
	handlers.RespondJSON(w, http.StatusOK, order)
}

// HandleEvents GET /api/v1/orders/{orderId}/events
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	orderID, userID, ok := h.parseRequest(w, r, "GET /orders/{id}/events")
	if !ok {
		return
	}

	events, err := h.service.GetOrderEvents(r.Context(), orderID, userID, middleware.GetUserRole(r.Context()))
	if err != nil {
		h.respondServiceError(w, r, "GET /orders/{id}/events", orderID, userID, err)
		return
	}

	h.logger.Info("GET /orders/{id}/events - Events retrieved: order_id=%d, total=%d", orderID, events.Total)
	handlers.RespondJSON(w, http.StatusOK, events)
}

func (h *Handler) parseRequest(w http.ResponseWriter, r *http.Request, op string) (orderID, userID int64, ok bool) {
	vars := mux.Vars(r)
	orderID, err := strconv.ParseInt(vars["orderId"], 10, 64)
	if err != nil {
		h.logger.Warn("%s - Invalid order ID: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidOrderID)
		return 0, 0, false
	}

	userID, found := middleware.GetUserID(r.Context())
	if !found {
		h.logger.Warn("%s - Missing user ID", op)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return 0, 0, false
	}
	return orderID, userID, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, op string, orderID, userID int64, err error) {
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		h.logger.Warn("%s - Order not found: order_id=%d", op, orderID)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, orders.ErrAccessDenied):
		h.logger.Warn("%s - Access denied: order_id=%d, user_id=%d", op, orderID, userID)
		handlers.RespondForbidden(w, msgForbidden)

	default:
		h.logger.Error("%s - Failed: order_id=%d, error=%v", op, orderID, err)
		handlers.RespondInternalError(w)
	}
}
