package handle_event

import (
	"context"
	"time"

	"github.com/m04kA/SMC-OrderService/internal/domain"
)

// EventRepository интерфейс репозитория webhook-событий
type EventRepository interface {
	InsertIfAbsent(ctx context.Context, event *domain.WebhookEvent) (bool, error)
	GetByEventID(ctx context.Context, eventID string) (*domain.WebhookEvent, error)
	MarkProcessed(ctx context.Context, eventID string) error
}

// OrderRepository интерфейс репозитория заказов
type OrderRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	Delete(ctx context.Context, id int64) error
}

// SagaRunRepository интерфейс репозитория записей саги
type SagaRunRepository interface {
	GetByOrderID(ctx context.Context, orderID int64) (*domain.SagaRun, error)
	SetStatus(ctx context.Context, sagaID string, status domain.SagaStatus, orderID *int64, failureReason *string) error
}

// StateMachine интерфейс машины статусов заказа
type StateMachine interface {
	Transition(ctx context.Context, order *domain.Order, action domain.Action, role domain.ActorRole, metadata *string) (*domain.Order, error)
}

// ChargingService интерфейс сервиса списаний
type ChargingService interface {
	MarkChargeFailed(ctx context.Context, o *domain.Order, reason string) (*domain.Order, error)
}

// CapacityEngine интерфейс движка резервирования ёмкости
type CapacityEngine interface {
	Release(ctx context.Context, tokenID string) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Metrics интерфейс метрик обработки событий
type Metrics interface {
	ObserveEvent(eventType, result string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
