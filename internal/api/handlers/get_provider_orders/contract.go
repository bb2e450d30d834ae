package get_provider_orders

import (
	"context"

	"github.com/m04kA/SMC-OrderService/internal/domain"
	"github.com/m04kA/SMC-OrderService/internal/service/orders/models"
)

type OrderService interface {
	GetProviderOrders(ctx context.Context, filter domain.ProviderOrdersFilter) (*models.OrderListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
