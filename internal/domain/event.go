package domain

import "time"

// Типы асинхронных событий платежного шлюза
const (
	EventSetupSucceeded  = "setup.succeeded"
	EventSetupFailed     = "setup.failed"
	EventChargeSucceeded = "charge.succeeded"
	EventChargeFailed    = "charge.failed"
	EventRefundSucceeded = "refund.succeeded"
)

// WebhookEvent асинхронное событие платежного шлюза.
// EventID уникален; событие с проставленным processed_at никогда не
// обрабатывается повторно.
type WebhookEvent struct {
	EventID     string
	EventType   string
	OrderID     int64
	Payload     map[string]string // дополнительные поля события (payment_method_ref, reason, ...)
	ReceivedAt  time.Time
	ProcessedAt *time.Time
}

// IsProcessed returns true if the event's side effects were already applied
func (e *WebhookEvent) IsProcessed() bool {
	return e.ProcessedAt != nil
}

// OrderEvent запись append-only журнала переходов заказа.
// Журнал - авторитетная история для разбора споров; записи не изменяются
// и не удаляются.
type OrderEvent struct {
	ID         int64
	OrderID    int64
	FromStatus OrderStatus
	ToStatus   OrderStatus
	Action     Action
	ActorRole  ActorRole
	Metadata   *string
	CreatedAt  time.Time
}
