package execute_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-OrderService/internal/api/handlers"
	"github.com/m04kA/SMC-OrderService/internal/api/middleware"
	executeBooking "github.com/m04kA/SMC-OrderService/internal/usecase/execute_booking"
)

const (
	headerIdempotencyKey = "Idempotency-Key"

	msgInvalidRequestBody    = "некорректное тело запроса"
	msgMissingUserID         = "отсутствует ID пользователя"
	msgInvalidWindow         = "некорректный формат окна обслуживания, ожидается RFC3339"
	msgMissingIdempotencyKey = "отсутствует заголовок Idempotency-Key"
	msgSlotNotFound          = "у провайдера нет слота под запрошенное окно"
	msgSlotFull              = "подходящий слот полностью занят"
	msgWindowConflict        = "окно пересекается со слотами, но ни один не вмещает его целиком"
	msgCardDeclined          = "платежный метод отклонен"
	msgGatewayUnavailable    = "платежный шлюз временно недоступен, повторите запрос позже"
	msgRateLimited           = "превышена квота обращений к платежному шлюзу"
	msgSagaInProgress        = "запрос с этим ключом идемпотентности уже выполняется"
	msgBookingFailed         = "бронирование с этим ключом идемпотентности ранее завершилось отказом"
)

type Handler struct {
	useCase ExecuteBookingUseCase
	logger  Logger
}

func NewHandler(useCase ExecuteBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/orders
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	customerRef, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	idempotencyKey := r.Header.Get(headerIdempotencyKey)
	if idempotencyKey == "" {
		handlers.RespondBadRequest(w, msgMissingIdempotencyKey)
		return
	}

	var req ExecuteBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /orders - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(customerRef)
	if err != nil {
		h.logger.Warn("POST /orders - Failed to parse window: %v", err)
		handlers.RespondBadRequest(w, msgInvalidWindow)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq, idempotencyKey)
	if err != nil {
		switch {
		case errors.Is(err, executeBooking.ErrInvalidInput):
			h.logger.Warn("POST /orders - Invalid input: customer=%d, error=%v", customerRef, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, executeBooking.ErrSlotNotFound):
			h.logger.Warn("POST /orders - Slot not found: customer=%d, provider=%d", customerRef, req.ProviderID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, executeBooking.ErrSlotFull):
			h.logger.Warn("POST /orders - Slot full: customer=%d, provider=%d", customerRef, req.ProviderID)
			handlers.RespondError(w, http.StatusConflict, msgSlotFull)

		case errors.Is(err, executeBooking.ErrWindowConflict):
			h.logger.Warn("POST /orders - Window conflict: customer=%d, provider=%d", customerRef, req.ProviderID)
			handlers.RespondError(w, http.StatusConflict, msgWindowConflict)

		case errors.Is(err, executeBooking.ErrCardDeclined):
			h.logger.Warn("POST /orders - Card declined: customer=%d", customerRef)
			handlers.RespondError(w, http.StatusPaymentRequired, msgCardDeclined)

		case errors.Is(err, executeBooking.ErrRateLimited):
			h.logger.Warn("POST /orders - Gateway rate limited: customer=%d", customerRef)
			handlers.RespondError(w, http.StatusTooManyRequests, msgRateLimited)

		case errors.Is(err, executeBooking.ErrGatewayUnavailable):
			h.logger.Warn("POST /orders - Gateway unavailable: customer=%d", customerRef)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgGatewayUnavailable)

		case errors.Is(err, executeBooking.ErrSagaInProgress):
			h.logger.Warn("POST /orders - Saga in progress: customer=%d, key=%s", customerRef, idempotencyKey)
			handlers.RespondError(w, http.StatusConflict, msgSagaInProgress)

		case errors.Is(err, executeBooking.ErrBookingFailed):
			h.logger.Warn("POST /orders - Replayed failed booking: customer=%d, key=%s", customerRef, idempotencyKey)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgBookingFailed)

		default:
			h.logger.Error("POST /orders - Failed to execute booking: customer=%d, error=%v", customerRef, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	if result.Suspended {
		h.logger.Info("POST /orders - Booking suspended awaiting client action: order=%d, customer=%d", result.OrderID, customerRef)
		handlers.RespondJSON(w, http.StatusAccepted, response)
		return
	}

	h.logger.Info("POST /orders - Booking created: order=%d, customer=%d, provider=%d", result.OrderID, customerRef, req.ProviderID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
