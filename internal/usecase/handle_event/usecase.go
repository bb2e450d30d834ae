package handle_event

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-OrderService/internal/domain"
	"github.com/m04kA/SMC-OrderService/internal/infra/storage/order"
	"github.com/m04kA/SMC-OrderService/internal/infra/storage/sagarun"
	"github.com/m04kA/SMC-OrderService/internal/service/statemachine"
)

// UseCase применяет асинхронные события платежного шлюза к заказам.
// Обработка идемпотентна: событие с известным event_id и проставленным
// processed_at повторно не применяется. Событие, чья обработка упала на
// временной ошибке, остается непомеченным - шлюз доставит его еще раз,
// и повторная доставка продолжит с применения эффектов.
type UseCase struct {
	events       EventRepository
	orderRepo    OrderRepository
	sagaRuns     SagaRunRepository
	stateMachine StateMachine
	charging     ChargingService
	capacity     CapacityEngine
	timeProvider TimeProvider
	metrics      Metrics
	logger       Logger
}

// New создает новый экземпляр UseCase
func New(
	events EventRepository,
	orderRepo OrderRepository,
	sagaRuns SagaRunRepository,
	stateMachine StateMachine,
	charging ChargingService,
	capacity CapacityEngine,
	timeProvider TimeProvider,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		events:       events,
		orderRepo:    orderRepo,
		sagaRuns:     sagaRuns,
		stateMachine: stateMachine,
		charging:     charging,
		capacity:     capacity,
		timeProvider: timeProvider,
		metrics:      metrics,
		logger:       logger,
	}
}

// Execute обрабатывает входящее webhook-событие
func (u *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	inserted, err := u.events.InsertIfAbsent(ctx, &domain.WebhookEvent{
		EventID:    req.EventID,
		EventType:  req.EventType,
		OrderID:    req.OrderID,
		Payload:    req.Payload,
		ReceivedAt: u.timeProvider.Now(),
	})
	if err != nil {
		u.logger.Error("Execute - failed to record event %s: %v", req.EventID, err)
		return nil, fmt.Errorf("%w: Execute - event record: %v", ErrInternal, err)
	}

	if !inserted {
		existing, err := u.events.GetByEventID(ctx, req.EventID)
		if err != nil {
			u.logger.Error("Execute - failed to load known event %s: %v", req.EventID, err)
			return nil, fmt.Errorf("%w: Execute - event load: %v", ErrInternal, err)
		}
		if existing.IsProcessed() {
			u.observe(req.EventType, OutcomeDuplicate)
			u.logger.Info("Execute - duplicate event %s (%s), no-op", req.EventID, req.EventType)
			return &Response{EventID: req.EventID, Outcome: OutcomeDuplicate}, nil
		}
		// повторная доставка события, чья обработка не дошла до конца
		u.logger.Warn("Execute - reprocessing unfinished event %s (%s)", req.EventID, req.EventType)
	}

	status, applied, err := u.apply(ctx, req)
	if err != nil {
		// processed_at не проставлен, шлюз доставит событие повторно
		return nil, err
	}

	if err := u.events.MarkProcessed(ctx, req.EventID); err != nil {
		u.logger.Error("Execute - failed to mark event %s processed: %v", req.EventID, err)
		return nil, fmt.Errorf("%w: Execute - mark processed: %v", ErrInternal, err)
	}

	outcome := OutcomeSkipped
	if applied {
		outcome = OutcomeApplied
	}
	u.observe(req.EventType, outcome)
	return &Response{EventID: req.EventID, Outcome: outcome, OrderStatus: status}, nil
}

// apply применяет эффекты события к заказу.
// Возвращаемая ошибка означает временный сбой и повторную доставку;
// устаревшие и неприменимые события - не ошибка, а skip.
func (u *UseCase) apply(ctx context.Context, req *Request) (status string, applied bool, err error) {
	o, err := u.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			// черновик уже удален компенсацией - событию нечего применять
			u.logger.Warn("apply - order id=%d not found for event %s (%s), skipping", req.OrderID, req.EventID, req.EventType)
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: apply - order load: %v", ErrInternal, err)
	}

	switch req.EventType {
	case domain.EventSetupSucceeded:
		return u.applySetupSucceeded(ctx, o, req)
	case domain.EventSetupFailed:
		return u.applySetupFailed(ctx, o, req)
	case domain.EventChargeSucceeded:
		return u.applyChargeSucceeded(ctx, o, req)
	case domain.EventChargeFailed:
		return u.applyChargeFailed(ctx, o, req)
	case domain.EventRefundSucceeded:
		return u.applyRefundSucceeded(ctx, o, req)
	default:
		u.logger.Warn("apply - unknown event type %s (event %s), skipping", req.EventType, req.EventID)
		return string(o.Status), false, nil
	}
}

// applySetupSucceeded завершает приостановленную сагу: клиент прошел
// внеполосное подтверждение, платежный метод зарегистрирован
func (u *UseCase) applySetupSucceeded(ctx context.Context, o *domain.Order, req *Request) (string, bool, error) {
	run, err := u.sagaRuns.GetByOrderID(ctx, o.ID)
	if err != nil {
		if errors.Is(err, sagarun.ErrRunNotFound) {
			u.logger.Warn("applySetupSucceeded - no saga for order id=%d (event %s), skipping", o.ID, req.EventID)
			return string(o.Status), false, nil
		}
		return "", false, fmt.Errorf("%w: applySetupSucceeded - saga load: %v", ErrInternal, err)
	}

	if run.Status != domain.SagaSuspended {
		u.logger.Warn("applySetupSucceeded - saga %s is %s, not suspended (event %s), skipping", run.SagaID, run.Status, req.EventID)
		return string(o.Status), false, nil
	}

	pmRef := req.Payload["payment_method_ref"]
	if pmRef == "" {
		u.logger.Warn("applySetupSucceeded - event %s carries no payment_method_ref, skipping", req.EventID)
		return string(o.Status), false, nil
	}
	o.PaymentMethodRef = &pmRef
	if v := req.Payload["payment_customer_ref"]; v != "" {
		o.PaymentCustomerRef = &v
	}
	if v := req.Payload["confirmation_id"]; v != "" {
		o.SetupConfirmationID = &v
	}

	confirmed, err := u.stateMachine.Transition(ctx, o, domain.ActionConfirmSetup, domain.RoleSystem, nil)
	if err != nil {
		// Transition возвращает nil при ошибке; статус до перехода не тронут
		if errors.Is(err, statemachine.ErrInvalidTransition) {
			u.logger.Warn("applySetupSucceeded - order id=%d no longer confirmable (event %s), skipping", o.ID, req.EventID)
			return string(o.Status), false, nil
		}
		return "", false, fmt.Errorf("%w: applySetupSucceeded - confirm: %v", ErrInternal, err)
	}
	o = confirmed

	if err := u.sagaRuns.SetStatus(ctx, run.SagaID, domain.SagaSucceeded, &o.ID, nil); err != nil {
		// заказ уже подтвержден; незакрытая запись саги хуже, чем откат подтверждения
		u.logger.Error("applySetupSucceeded - failed to record saga success: saga=%s error=%v", run.SagaID, err)
	}
	u.logger.Info("applySetupSucceeded - suspended saga finalized: saga=%s order=%d", run.SagaID, o.ID)
	return string(o.Status), true, nil
}

// applySetupFailed компенсирует приостановленную сагу: подтверждение
// платежного метода провалено, черновик и резерв снимаются
func (u *UseCase) applySetupFailed(ctx context.Context, o *domain.Order, req *Request) (string, bool, error) {
	run, err := u.sagaRuns.GetByOrderID(ctx, o.ID)
	if err != nil {
		if errors.Is(err, sagarun.ErrRunNotFound) {
			u.logger.Warn("applySetupFailed - no saga for order id=%d (event %s), skipping", o.ID, req.EventID)
			return string(o.Status), false, nil
		}
		return "", false, fmt.Errorf("%w: applySetupFailed - saga load: %v", ErrInternal, err)
	}

	if run.Status != domain.SagaSuspended {
		u.logger.Warn("applySetupFailed - saga %s is %s, not suspended (event %s), skipping", run.SagaID, run.Status, req.EventID)
		return string(o.Status), false, nil
	}

	if err := u.orderRepo.Delete(ctx, o.ID); err != nil && !errors.Is(err, order.ErrOrderNotFound) {
		return "", false, fmt.Errorf("%w: applySetupFailed - draft delete: %v", ErrInternal, err)
	}
	if o.ReservationID != "" {
		if err := u.capacity.Release(ctx, o.ReservationID); err != nil {
			return "", false, fmt.Errorf("%w: applySetupFailed - reservation release: %v", ErrInternal, err)
		}
	}

	reason := req.Payload["reason"]
	if reason == "" {
		reason = "payment method setup failed"
	}
	if err := u.sagaRuns.SetStatus(ctx, run.SagaID, domain.SagaCompensated, nil, &reason); err != nil {
		u.logger.Error("applySetupFailed - failed to record compensated saga: saga=%s error=%v", run.SagaID, err)
	}
	u.logger.Info("applySetupFailed - suspended saga compensated: saga=%s order=%d reason=%s", run.SagaID, o.ID, reason)
	return "", true, nil
}

// applyChargeSucceeded доводит заказ из CHARGING до COMPLETED
func (u *UseCase) applyChargeSucceeded(ctx context.Context, o *domain.Order, req *Request) (string, bool, error) {
	if o.Status != domain.StatusCharging {
		u.logger.Warn("applyChargeSucceeded - order id=%d is %s, not charging (event %s), skipping", o.ID, o.Status, req.EventID)
		return string(o.Status), false, nil
	}

	o.GraceExpiresAt = nil
	completed, err := u.stateMachine.Transition(ctx, o, domain.ActionChargeSucceeded, domain.RoleSystem, nil)
	if err != nil {
		if errors.Is(err, statemachine.ErrInvalidTransition) {
			return string(o.Status), false, nil
		}
		return "", false, fmt.Errorf("%w: applyChargeSucceeded: %v", ErrInternal, err)
	}
	return string(completed.Status), true, nil
}

// applyChargeFailed переводит заказ в PAYMENT_FAILED со стартом grace-периода
func (u *UseCase) applyChargeFailed(ctx context.Context, o *domain.Order, req *Request) (string, bool, error) {
	if o.Status != domain.StatusCharging {
		u.logger.Warn("applyChargeFailed - order id=%d is %s, not charging (event %s), skipping", o.ID, o.Status, req.EventID)
		return string(o.Status), false, nil
	}

	reason := req.Payload["reason"]
	if reason == "" {
		reason = "charge failed"
	}
	o, err := u.charging.MarkChargeFailed(ctx, o, reason)
	if err != nil {
		return "", false, fmt.Errorf("%w: applyChargeFailed: %v", ErrInternal, err)
	}
	return string(o.Status), true, nil
}

// applyRefundSucceeded закрывает спор возвратом средств
func (u *UseCase) applyRefundSucceeded(ctx context.Context, o *domain.Order, req *Request) (string, bool, error) {
	if o.Status != domain.StatusDisputed {
		u.logger.Warn("applyRefundSucceeded - order id=%d is %s, not disputed (event %s), skipping", o.ID, o.Status, req.EventID)
		return string(o.Status), false, nil
	}

	refunded, err := u.stateMachine.Transition(ctx, o, domain.ActionRefundDispute, domain.RoleSystem, nil)
	if err != nil {
		if errors.Is(err, statemachine.ErrInvalidTransition) {
			return string(o.Status), false, nil
		}
		return "", false, fmt.Errorf("%w: applyRefundSucceeded: %v", ErrInternal, err)
	}
	return string(refunded.Status), true, nil
}

func (u *UseCase) observe(eventType, outcome string) {
	if u.metrics != nil {
		u.metrics.ObserveEvent(eventType, outcome)
	}
}
