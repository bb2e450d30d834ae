package payment_webhook

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-OrderService/internal/api/handlers"
	handleEvent "github.com/m04kA/SMC-OrderService/internal/usecase/handle_event"
)

const (
	headerWebhookToken = "X-Webhook-Token"

	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidToken       = "некорректный webhook токен"
)

type Handler struct {
	useCase HandleEventUseCase
	token   string
	logger  Logger
}

// NewHandler создает обработчик webhook-событий. token - общий секрет
// шлюза; пустой token отключает проверку (локальная отладка).
func NewHandler(useCase HandleEventUseCase, token string, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		token:   token,
		logger:  logger,
	}
}

// Handle POST /api/v1/webhooks/payment
// Временные сбои обработки отвечают 500: шлюз доставит событие повторно.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.token != "" {
		got := r.Header.Get(headerWebhookToken)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) != 1 {
			h.logger.Warn("POST /webhooks/payment - Invalid webhook token")
			handlers.RespondUnauthorized(w, msgInvalidToken)
			return
		}
	}

	var req WebhookRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /webhooks/payment - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest())
	if err != nil {
		if errors.Is(err, handleEvent.ErrInvalidInput) {
			h.logger.Warn("POST /webhooks/payment - Invalid event: event_id=%s, error=%v", req.EventID, err)
			handlers.RespondBadRequest(w, err.Error())
			return
		}
		h.logger.Error("POST /webhooks/payment - Failed to process event: event_id=%s, type=%s, error=%v",
			req.EventID, req.EventType, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /webhooks/payment - Event processed: event_id=%s, type=%s, outcome=%s",
		result.EventID, req.EventType, result.Outcome)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
