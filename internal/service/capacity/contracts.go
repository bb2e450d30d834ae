package capacity

import (
	"context"

	"github.com/m04kA/SMC-OrderService/internal/domain"
)

// SlotRepository интерфейс репозитория слотов ёмкости
type SlotRepository interface {
	FindSlotsForWindow(ctx context.Context, providerID int64, serviceType domain.ServiceType, window domain.TimeWindow) ([]*domain.CapacitySlot, error)
	IncrementReserved(ctx context.Context, slotID int64, units int) error
	DecrementReserved(ctx context.Context, slotID int64, units int) error
	CreateReservation(ctx context.Context, token *domain.ReservationToken) error
	GetReservation(ctx context.Context, id string) (*domain.ReservationToken, error)
	MarkReleased(ctx context.Context, id string) (bool, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
