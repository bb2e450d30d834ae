package transition_order

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-OrderService/internal/api/handlers"
	"github.com/m04kA/SMC-OrderService/internal/api/middleware"
	transitionOrder "github.com/m04kA/SMC-OrderService/internal/usecase/transition_order"
)

const (
	msgInvalidOrderID     = "некорректный ID заказа"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "заказ не найден"
	msgInvalidTransition  = "действие недопустимо из текущего статуса заказа"
	msgUnauthorized       = "действие недоступно для вашей роли"
	msgVersionConflict    = "заказ был изменен параллельно, повторите запрос"
)

type Handler struct {
	useCase TransitionOrderUseCase
	logger  Logger
}

func NewHandler(useCase TransitionOrderUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/orders/{orderId}/actions
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	orderID, err := strconv.ParseInt(vars["orderId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /orders/{id}/actions - Invalid order ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidOrderID)
		return
	}

	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /orders/{id}/actions - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req TransitionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /orders/{id}/actions - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	role := middleware.GetUserRole(r.Context())
	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(orderID, actorID, role))
	if err != nil {
		switch {
		case errors.Is(err, transitionOrder.ErrInvalidInput):
			h.logger.Warn("POST /orders/{id}/actions - Invalid input: order_id=%d, action=%s, error=%v", orderID, req.Action, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, transitionOrder.ErrOrderNotFound):
			h.logger.Warn("POST /orders/{id}/actions - Order not found: order_id=%d", orderID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, transitionOrder.ErrInvalidTransition):
			h.logger.Warn("POST /orders/{id}/actions - Invalid transition: order_id=%d, action=%s", orderID, req.Action)
			handlers.RespondError(w, http.StatusConflict, msgInvalidTransition)

		case errors.Is(err, transitionOrder.ErrUnauthorized):
			h.logger.Warn("POST /orders/{id}/actions - Unauthorized: order_id=%d, actor=%d, role=%s", orderID, actorID, role)
			handlers.RespondForbidden(w, msgUnauthorized)

		case errors.Is(err, transitionOrder.ErrVersionConflict):
			h.logger.Warn("POST /orders/{id}/actions - Version conflict: order_id=%d", orderID)
			handlers.RespondError(w, http.StatusConflict, msgVersionConflict)

		default:
			h.logger.Error("POST /orders/{id}/actions - Failed: order_id=%d, action=%s, error=%v", orderID, req.Action, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /orders/{id}/actions - Action applied: order_id=%d, action=%s, status=%s",
		orderID, req.Action, result.Status)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
