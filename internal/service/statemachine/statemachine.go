package statemachine

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-OrderService/internal/domain"
	orderRepo "github.com/m04kA/SMC-OrderService/internal/infra/storage/order"
)

// Machine машина статусов заказа.
// Decide - чистое решение по статическим таблицам, без побочных эффектов.
// Apply - отдельный атомарный шаг персистентности: CAS-запись по version
// плюс append в журнал переходов в одной транзакции.
type Machine struct {
	tables            map[domain.ServiceType]transitionTable
	orderRepo         OrderRepository
	txManager         TransactionManager
	varianceThreshold float64 // процент расхождения котировки и сметы
	logger            Logger
}

// NewMachine создает машину статусов
func NewMachine(
	orderRepo OrderRepository,
	txManager TransactionManager,
	varianceThresholdPercent float64,
	logger Logger,
) *Machine {
	return &Machine{
		tables:            buildTables(),
		orderRepo:         orderRepo,
		txManager:         txManager,
		varianceThreshold: varianceThresholdPercent,
		logger:            logger,
	}
}

// Decide проверяет, разрешен ли переход (status, action, role) для типа услуги
// заказа, и возвращает целевой статус. Заказ не изменяется.
func (m *Machine) Decide(order *domain.Order, action domain.Action, role domain.ActorRole) (domain.OrderStatus, error) {
	table, ok := m.tables[order.ServiceType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownServiceType, order.ServiceType)
	}

	rule, ok := table[transitionKey{From: order.Status, Action: action}]
	if !ok {
		return "", fmt.Errorf("%w: %s + %s (service_type=%s)",
			ErrInvalidTransition, order.Status, action, order.ServiceType)
	}

	if !roleAllowed(rule.Roles, role) {
		return "", fmt.Errorf("%w: role=%s action=%s", ErrUnauthorized, role, action)
	}

	return rule.To, nil
}

// QuoteGateAction возвращает действие, которым заказ покидает QUOTE_PENDING:
// start_charge при расхождении в пределах порога, require_approval - выше.
func (m *Machine) QuoteGateAction(order *domain.Order) domain.Action {
	if order.QuoteVariancePercent() > m.varianceThreshold {
		return domain.ActionRequireApproval
	}
	return domain.ActionStartCharge
}

// Transition применяет действие к заказу: решает переход, записывает заказ
// через version CAS и дописывает журнал переходов - всё в одной транзакции.
// При ErrInvalidTransition / ErrUnauthorized заказ не изменяется вовсе.
// Мутации полей заказа, сопровождающие переход (котировка, платежные ссылки),
// вызывающий код делает на переданном объекте до вызова.
func (m *Machine) Transition(
	ctx context.Context,
	order *domain.Order,
	action domain.Action,
	role domain.ActorRole,
	metadata *string,
) (*domain.Order, error) {
	toStatus, err := m.Decide(order, action, role)
	if err != nil {
		return nil, err
	}

	fromStatus := order.Status
	order.Status = toStatus

	err = m.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := m.orderRepo.UpdateWithVersion(txCtx, order); err != nil {
			return err
		}

		event := &domain.OrderEvent{
			OrderID:    order.ID,
			FromStatus: fromStatus,
			ToStatus:   toStatus,
			Action:     action,
			ActorRole:  role,
			Metadata:   metadata,
		}
		return m.orderRepo.AppendEvent(txCtx, event)
	})

	if err != nil {
		// Откатываем статус на объекте: запись не состоялась
		order.Status = fromStatus

		if errors.Is(err, orderRepo.ErrVersionConflict) {
			m.logger.Warn("Transition: version conflict for order id=%d action=%s", order.ID, action)
			return nil, fmt.Errorf("%w: order id=%d", ErrVersionConflict, order.ID)
		}
		m.logger.Error("Transition: failed to persist order id=%d action=%s: %v", order.ID, action, err)
		return nil, fmt.Errorf("%w: Transition - persist: %v", ErrInternal, err)
	}

	m.logger.Info("Transition: order id=%d %s -> %s (action=%s, role=%s)",
		order.ID, fromStatus, toStatus, action, role)

	return order, nil
}

func roleAllowed(roles []domain.ActorRole, role domain.ActorRole) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
