package payment_webhook

import (
	handleEvent "github.com/m04kA/SMC-OrderService/internal/usecase/handle_event"
)

// WebhookRequest HTTP request model входящего события шлюза
type WebhookRequest struct {
	EventID   string            `json:"eventId"`
	EventType string            `json:"eventType"`
	OrderID   int64             `json:"orderId"`
	Payload   map[string]string `json:"payload,omitempty"`
}

// WebhookResponse HTTP response model
type WebhookResponse struct {
	EventID     string `json:"eventId"`
	Outcome     string `json:"outcome"`
	OrderStatus string `json:"orderStatus,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *WebhookRequest) ToUseCaseRequest() *handleEvent.Request {
	return &handleEvent.Request{
		EventID:   r.EventID,
		EventType: r.EventType,
		OrderID:   r.OrderID,
		Payload:   r.Payload,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *handleEvent.Response) *WebhookResponse {
	return &WebhookResponse{
		EventID:     resp.EventID,
		Outcome:     resp.Outcome,
		OrderStatus: resp.OrderStatus,
	}
}
