package charging

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-OrderService/internal/domain"
	"github.com/m04kA/SMC-OrderService/internal/integrations/paymentgw"
)

// Service инициирует списание по заказу и доводит его статус до исхода.
// Списание асинхронное: шлюз может ответить pending, тогда заказ остается
// в CHARGING до webhook-события charge.succeeded / charge.failed.
type Service struct {
	stateMachine StateMachine
	gateway      PaymentGateway
	timeProvider TimeProvider
	gracePeriod  time.Duration
	logger       Logger
}

// NewService создает новый экземпляр Service
func NewService(
	stateMachine StateMachine,
	gateway PaymentGateway,
	timeProvider TimeProvider,
	gracePeriod time.Duration,
	logger Logger,
) *Service {
	return &Service{
		stateMachine: stateMachine,
		gateway:      gateway,
		timeProvider: timeProvider,
		gracePeriod:  gracePeriod,
		logger:       logger,
	}
}

// Initiate переводит заказ в CHARGING действием action (start_charge или
// retry_charge) и отправляет списание в шлюз. Исход:
//   - синхронный успех: заказ доведен до COMPLETED;
//   - pending: заказ остается в CHARGING, итог придет webhook-событием;
//   - отказ или сбой шлюза: заказ в PAYMENT_FAILED с grace-периодом на
//     замену платежного метода.
//
// Ошибка возвращается только если списание не удалось даже начать
// (недопустимый переход, нет платежного метода, отказ персистентности).
func (s *Service) Initiate(ctx context.Context, o *domain.Order, action domain.Action, role domain.ActorRole) (*domain.Order, error) {
	if o.PaymentMethodRef == nil {
		return nil, fmt.Errorf("%w: order id=%d", ErrNoPaymentMethod, o.ID)
	}
	if !o.HasQuote() {
		return nil, fmt.Errorf("%w: order id=%d", ErrNoQuote, o.ID)
	}

	o, err := s.stateMachine.Transition(ctx, o, action, role, nil)
	if err != nil {
		return nil, err
	}

	amount := o.ChargeAmount()
	result, err := s.gateway.Charge(ctx, *o.PaymentMethodRef, amount)
	if err != nil {
		s.logger.Warn("Initiate: charge rejected for order id=%d amount=%d: %v", o.ID, amount, err)
		return s.markFailed(ctx, o, err.Error())
	}

	switch result.Status {
	case paymentgw.StatusSucceeded:
		o.GraceExpiresAt = nil
		completed, err := s.stateMachine.Transition(ctx, o, domain.ActionChargeSucceeded, domain.RoleSystem, nil)
		if err != nil {
			// Transition возвращает nil при ошибке, дальше работаем с исходным заказом
			return nil, fmt.Errorf("%w: Initiate - complete order id=%d: %v", ErrInternal, o.ID, err)
		}
		s.logger.Info("Initiate: charge succeeded synchronously for order id=%d amount=%d charge=%s", o.ID, amount, result.ChargeRef)
		return completed, nil

	case paymentgw.StatusPending:
		s.logger.Info("Initiate: charge pending for order id=%d amount=%d charge=%s, awaiting webhook", o.ID, amount, result.ChargeRef)
		return o, nil

	default: // declined в теле ответа
		s.logger.Warn("Initiate: charge declined for order id=%d amount=%d status=%s", o.ID, amount, result.Status)
		return s.markFailed(ctx, o, "charge declined: "+result.Status)
	}
}

// MarkChargeFailed переводит заказ в PAYMENT_FAILED со стартом grace-периода.
// Используется при асинхронном отказе (webhook charge.failed).
func (s *Service) MarkChargeFailed(ctx context.Context, o *domain.Order, reason string) (*domain.Order, error) {
	return s.markFailed(ctx, o, reason)
}

func (s *Service) markFailed(ctx context.Context, o *domain.Order, reason string) (*domain.Order, error) {
	expires := s.timeProvider.Now().Add(s.gracePeriod)
	o.GraceExpiresAt = &expires

	failed, err := s.stateMachine.Transition(ctx, o, domain.ActionChargeFailed, domain.RoleSystem, &reason)
	if err != nil {
		o.GraceExpiresAt = nil
		return nil, fmt.Errorf("%w: markFailed - order id=%d: %v", ErrInternal, o.ID, err)
	}
	return failed, nil
}
