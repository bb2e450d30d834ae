package transition_order

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-OrderService/internal/domain"
	"github.com/m04kA/SMC-OrderService/internal/infra/storage/order"
	"github.com/m04kA/SMC-OrderService/internal/service/statemachine"
)

// UseCase выполняет действие над заказом от имени клиента, партнера или
// админа. Принадлежность заказа инициатору проверяется здесь, допустимость
// перехода и права роли - машиной статусов.
type UseCase struct {
	orderRepo      OrderRepository
	stateMachine   StateMachine
	charging       ChargingService
	capacityEngine CapacityEngine
	logger         Logger
}

// New создает новый экземпляр UseCase
func New(
	orderRepo OrderRepository,
	stateMachine StateMachine,
	charging ChargingService,
	capacityEngine CapacityEngine,
	logger Logger,
) *UseCase {
	return &UseCase{
		orderRepo:      orderRepo,
		stateMachine:   stateMachine,
		charging:       charging,
		capacityEngine: capacityEngine,
		logger:         logger,
	}
}

// Execute применяет действие к заказу
func (u *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	o, err := u.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return nil, fmt.Errorf("%w: id=%d", ErrOrderNotFound, req.OrderID)
		}
		u.logger.Error("Execute - failed to load order id=%d: %v", req.OrderID, err)
		return nil, fmt.Errorf("%w: Execute - order load: %v", ErrInternal, err)
	}

	if err := checkOwnership(o, req); err != nil {
		return nil, err
	}

	switch req.Action {
	case domain.ActionApproveQuote, domain.ActionRetryCharge:
		// переход в CHARGING и поход в шлюз единым шагом
		o, err = u.charging.Initiate(ctx, o, req.Action, req.Role)
	default:
		o, err = u.stateMachine.Transition(ctx, o, req.Action, req.Role, req.Comment)
	}
	if err != nil {
		return nil, u.mapMachineErr(err)
	}

	if req.Action == domain.ActionCancel && o.ReservationID != "" {
		// отмена до обслуживания возвращает зарезервированную ёмкость;
		// Release идемпотентен, повтор отмены единиц не задвоит
		if err := u.capacityEngine.Release(ctx, o.ReservationID); err != nil {
			u.logger.Error("Execute - failed to release reservation %s for canceled order id=%d: %v", o.ReservationID, o.ID, err)
		}
	}

	return fromOrder(o), nil
}

// checkOwnership проверяет принадлежность заказа инициатору
func checkOwnership(o *domain.Order, req *Request) error {
	switch req.Role {
	case domain.RoleCustomer:
		if o.CustomerRef != req.ActorID {
			return fmt.Errorf("%w: customer id=%d does not own order id=%d", ErrUnauthorized, req.ActorID, o.ID)
		}
	case domain.RolePartner:
		if o.ProviderID != req.ActorID {
			return fmt.Errorf("%w: partner id=%d does not serve order id=%d", ErrUnauthorized, req.ActorID, o.ID)
		}
	}
	return nil
}

// mapMachineErr переводит ошибки машины статусов в ошибки usecase
func (u *UseCase) mapMachineErr(err error) error {
	switch {
	case errors.Is(err, statemachine.ErrInvalidTransition):
		return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	case errors.Is(err, statemachine.ErrUnauthorized):
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	case errors.Is(err, statemachine.ErrVersionConflict):
		return fmt.Errorf("%w: %v", ErrVersionConflict, err)
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
