package execute_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-OrderService/internal/domain"
	"github.com/m04kA/SMC-OrderService/internal/integrations/paymentgw"
)

// CapacityEngine интерфейс движка резервирования ёмкости
type CapacityEngine interface {
	Reserve(ctx context.Context, providerID int64, serviceType domain.ServiceType, window domain.TimeWindow) (*domain.ReservationToken, error)
	Release(ctx context.Context, tokenID string) error
}

// OrderRepository интерфейс репозитория заказов
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	Delete(ctx context.Context, id int64) error
}

// SagaRunRepository интерфейс репозитория записей саги
type SagaRunRepository interface {
	Create(ctx context.Context, run *domain.SagaRun) error
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.SagaRun, error)
	AppendStep(ctx context.Context, sagaID string, step domain.SagaStep) error
	SetStatus(ctx context.Context, sagaID string, status domain.SagaStatus, orderID *int64, failureReason *string) error
	Reset(ctx context.Context, sagaID string) error
}

// PaymentGateway интерфейс клиента платежного шлюза (защищенного breaker-ом)
type PaymentGateway interface {
	CreateSetup(ctx context.Context, customerRef int64, instrumentRef string) (*paymentgw.SetupResult, error)
	Charge(ctx context.Context, paymentMethodRef string, amount int64) (*paymentgw.ChargeResult, error)
	Refund(ctx context.Context, chargeRef string, amount int64) (*paymentgw.RefundResult, error)
	DetachPaymentMethod(ctx context.Context, paymentMethodRef string) error
}

// StateMachine интерфейс машины статусов заказа
type StateMachine interface {
	Transition(ctx context.Context, order *domain.Order, action domain.Action, role domain.ActorRole, metadata *string) (*domain.Order, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Metrics интерфейс метрик саги
type Metrics interface {
	ObserveSagaOutcome(outcome string)
	ObserveCompensationFailure(step string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
