package get_user_orders

import (
	"context"

	"github.com/m04kA/SMC-OrderService/internal/domain"
	"github.com/m04kA/SMC-OrderService/internal/service/orders/models"
)

type OrderService interface {
	GetCustomerOrders(ctx context.Context, customerRef int64, status *domain.OrderStatus) (*models.OrderListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
