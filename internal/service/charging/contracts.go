package charging

import (
	"context"
	"time"

	"github.com/m04kA/SMC-OrderService/internal/domain"
	"github.com/m04kA/SMC-OrderService/internal/integrations/paymentgw"
)

// StateMachine интерфейс машины статусов заказа
type StateMachine interface {
	Transition(ctx context.Context, order *domain.Order, action domain.Action, role domain.ActorRole, metadata *string) (*domain.Order, error)
}

// PaymentGateway интерфейс клиента платежного шлюза
type PaymentGateway interface {
	Charge(ctx context.Context, paymentMethodRef string, amount int64) (*paymentgw.ChargeResult, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
