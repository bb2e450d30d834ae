package submit_quote

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/m04kA/SMC-OrderService/internal/domain"
	"github.com/m04kA/SMC-OrderService/internal/infra/storage/order"
	"github.com/m04kA/SMC-OrderService/internal/service/statemachine"
)

// UseCase выставляет финальную котировку по заказу и пропускает её через
// порог расхождения: в пределах порога списание стартует сразу, выше -
// заказ ждет явной приемки клиентом.
type UseCase struct {
	orderRepo    OrderRepository
	stateMachine StateMachine
	charging     ChargingService
	logger       Logger
}

// New создает новый экземпляр UseCase
func New(orderRepo OrderRepository, stateMachine StateMachine, charging ChargingService, logger Logger) *UseCase {
	return &UseCase{
		orderRepo:    orderRepo,
		stateMachine: stateMachine,
		charging:     charging,
		logger:       logger,
	}
}

// Execute выставляет котировку. Котировка записывается один раз и дальше
// неизменна; повторный вызов по тому же заказу отклоняется.
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

	if req.Role == domain.RolePartner && o.ProviderID != req.ActorID {
		return nil, fmt.Errorf("%w: partner id=%d does not own order id=%d", ErrUnauthorized, req.ActorID, o.ID)
	}

	if o.HasQuote() {
		return nil, fmt.Errorf("%w: order id=%d", ErrQuoteAlreadySubmitted, o.ID)
	}

	amount := req.QuotedAmount
	o.QuotedAmount = &amount

	metadata := "quoted_amount=" + strconv.FormatInt(amount, 10)
	quoted, err := u.stateMachine.Transition(ctx, o, domain.ActionSubmitQuote, req.Role, &metadata)
	if err != nil {
		// Transition возвращает nil при ошибке; заказ остается без котировки
		o.QuotedAmount = nil
		return nil, u.mapMachineErr(err)
	}
	o = quoted

	// Ворота расхождения: котировка сверяется со сметой
	gate := u.stateMachine.QuoteGateAction(o)
	if gate == domain.ActionRequireApproval {
		o, err = u.stateMachine.Transition(ctx, o, domain.ActionRequireApproval, domain.RoleSystem, nil)
		if err != nil {
			return nil, u.mapMachineErr(err)
		}
		u.logger.Info("Execute - quote exceeds variance threshold, approval required: order=%d variance=%.1f%%", o.ID, o.QuoteVariancePercent())
		return fromOrder(o, true), nil
	}

	charged, err := u.charging.Initiate(ctx, o, domain.ActionStartCharge, domain.RoleSystem)
	if err != nil {
		u.logger.Error("Execute - failed to initiate charge: order=%d error=%v", o.ID, err)
		return nil, fmt.Errorf("%w: Execute - charge: %v", ErrInternal, err)
	}

	return fromOrder(charged, false), nil
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
