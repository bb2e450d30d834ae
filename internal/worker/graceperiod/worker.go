package graceperiod

import (
	"context"
	"errors"
	"time"

	"github.com/m04kA/SMC-OrderService/internal/domain"
	"github.com/m04kA/SMC-OrderService/internal/service/statemachine"
)

// OrderRepository интерфейс репозитория заказов
type OrderRepository interface {
	GetExpiredGraceOrders(ctx context.Context, limit int) ([]*domain.Order, error)
}

// StateMachine интерфейс машины статусов заказа
type StateMachine interface {
	Transition(ctx context.Context, order *domain.Order, action domain.Action, role domain.ActorRole, metadata *string) (*domain.Order, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Worker фоновый обходчик grace-периодов: заказы в PAYMENT_FAILED, чей
// срок на замену платежного метода истек, отменяются действием grace_expired.
// Повтор списания в пределах срока инициирует клиент через API, воркер
// только закрывает просроченные.
type Worker struct {
	orders       OrderRepository
	stateMachine StateMachine
	interval     time.Duration
	batchSize    int
	logger       Logger
}

// NewWorker создает новый экземпляр Worker
func NewWorker(orders OrderRepository, stateMachine StateMachine, interval time.Duration, batchSize int, logger Logger) *Worker {
	return &Worker{
		orders:       orders,
		stateMachine: stateMachine,
		interval:     interval,
		batchSize:    batchSize,
		logger:       logger,
	}
}

// Run запускает цикл обхода до отмены контекста
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("graceperiod worker started: interval=%s batch=%d", w.interval, w.batchSize)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("graceperiod worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep отменяет одну пачку просроченных заказов
func (w *Worker) sweep(ctx context.Context) {
	expired, err := w.orders.GetExpiredGraceOrders(ctx, w.batchSize)
	if err != nil {
		w.logger.Error("sweep - failed to list expired grace orders: %v", err)
		return
	}
	if len(expired) == 0 {
		return
	}

	canceled := 0
	for _, o := range expired {
		reason := "grace period expired without successful charge"
		if _, err := w.stateMachine.Transition(ctx, o, domain.ActionGraceExpired, domain.RoleSystem, &reason); err != nil {
			if errors.Is(err, statemachine.ErrVersionConflict) {
				// заказ изменился под ногами (вероятно, retry_charge успел
				// первым) - пропускаем, следующий обход перепроверит
				w.logger.Warn("sweep - order id=%d changed concurrently, skipping", o.ID)
				continue
			}
			w.logger.Error("sweep - failed to cancel order id=%d: %v", o.ID, err)
			continue
		}
		canceled++
	}

	w.logger.Info("sweep - canceled %d of %d expired grace orders", canceled, len(expired))
}
