package get_order

import (
	"context"

	"github.com/m04kA/SMC-OrderService/internal/domain"
	"github.com/m04kA/SMC-OrderService/internal/service/orders/models"
)

type OrderService interface {
	GetByID(ctx context.Context, id int64, actorID int64, role domain.ActorRole) (*models.OrderResponse, error)
	GetOrderEvents(ctx context.Context, id int64, actorID int64, role domain.ActorRole) (*models.OrderEventListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
