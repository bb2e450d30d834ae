package submit_quote

import (
	"context"

	"github.com/m04kA/SMC-OrderService/internal/domain"
)

// OrderRepository интерфейс репозитория заказов
type OrderRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
}

// StateMachine интерфейс машины статусов заказа
type StateMachine interface {
	Transition(ctx context.Context, order *domain.Order, action domain.Action, role domain.ActorRole, metadata *string) (*domain.Order, error)
	QuoteGateAction(order *domain.Order) domain.Action
}

// ChargingService интерфейс сервиса списаний
type ChargingService interface {
	Initiate(ctx context.Context, o *domain.Order, action domain.Action, role domain.ActorRole) (*domain.Order, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
