package orders

import (
	"context"

	"github.com/m04kA/SMC-OrderService/internal/domain"
)

// OrderRepository интерфейс репозитория заказов
type OrderRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByCustomer(ctx context.Context, customerRef int64, status *domain.OrderStatus) ([]*domain.Order, error)
	GetByProviderWithFilter(ctx context.Context, filter domain.ProviderOrdersFilter) ([]*domain.Order, error)
	ListEvents(ctx context.Context, orderID int64) ([]*domain.OrderEvent, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}
