package handle_event

// Request модель входящего webhook-события платежного шлюза
type Request struct {
	EventID   string
	EventType string
	OrderID   int64
	Payload   map[string]string
}

// Исходы обработки события
const (
	OutcomeApplied   = "applied"   // побочные эффекты применены
	OutcomeDuplicate = "duplicate" // событие уже обработано ранее
	OutcomeSkipped   = "skipped"   // событие устарело или неприменимо к заказу
)

// Response модель результата обработки
type Response struct {
	EventID     string
	Outcome     string
	OrderStatus string // статус заказа после обработки, пустой для skipped без заказа
}
