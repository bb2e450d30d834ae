package statemachine

import (
	"context"

	"github.com/m04kA/SMC-OrderService/internal/domain"
)

// OrderRepository интерфейс репозитория заказов
type OrderRepository interface {
	UpdateWithVersion(ctx context.Context, o *domain.Order) error
	AppendEvent(ctx context.Context, event *domain.OrderEvent) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
