package submit_quote

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-OrderService/internal/api/handlers"
	"github.com/m04kA/SMC-OrderService/internal/api/middleware"
	submitQuote "github.com/m04kA/SMC-OrderService/internal/usecase/submit_quote"
)

const (
	msgInvalidOrderID     = "некорректный ID заказа"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "заказ не найден"
	msgAlreadySubmitted   = "котировка по заказу уже выставлена"
	msgInvalidTransition  = "заказ не в статусе, допускающем выставление котировки"
	msgUnauthorized       = "выставление котировки недоступно для вашей роли"
	msgVersionConflict    = "заказ был изменен параллельно, повторите запрос"
)

type Handler struct {
	useCase SubmitQuoteUseCase
	logger  Logger
}

func NewHandler(useCase SubmitQuoteUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/orders/{orderId}/quote
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	orderID, err := strconv.ParseInt(vars["orderId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /orders/{id}/quote - Invalid order ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidOrderID)
		return
	}

	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /orders/{id}/quote - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req SubmitQuoteRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /orders/{id}/quote - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	role := middleware.GetUserRole(r.Context())
	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(orderID, actorID, role))
	if err != nil {
		switch {
		case errors.Is(err, submitQuote.ErrInvalidInput):
			h.logger.Warn("POST /orders/{id}/quote - Invalid input: order_id=%d, error=%v", orderID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, submitQuote.ErrOrderNotFound):
			h.logger.Warn("POST /orders/{id}/quote - Order not found: order_id=%d", orderID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, submitQuote.ErrQuoteAlreadySubmitted):
			h.logger.Warn("POST /orders/{id}/quote - Quote already submitted: order_id=%d", orderID)
			handlers.RespondError(w, http.StatusConflict, msgAlreadySubmitted)

		case errors.Is(err, submitQuote.ErrInvalidTransition):
			h.logger.Warn("POST /orders/{id}/quote - Invalid transition: order_id=%d", orderID)
			handlers.RespondError(w, http.StatusConflict, msgInvalidTransition)

		case errors.Is(err, submitQuote.ErrUnauthorized):
			h.logger.Warn("POST /orders/{id}/quote - Unauthorized: order_id=%d, actor=%d, role=%s", orderID, actorID, role)
			handlers.RespondForbidden(w, msgUnauthorized)

		case errors.Is(err, submitQuote.ErrVersionConflict):
			h.logger.Warn("POST /orders/{id}/quote - Version conflict: order_id=%d", orderID)
			handlers.RespondError(w, http.StatusConflict, msgVersionConflict)

		default:
			h.logger.Error("POST /orders/{id}/quote - Failed: order_id=%d, error=%v", orderID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /orders/{id}/quote - Quote submitted: order_id=%d, amount=%d, status=%s, requires_approval=%t",
		orderID, req.QuotedAmount, result.Status, result.RequiresApproval)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
