package execute_booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-OrderService/internal/domain"
	"github.com/m04kA/SMC-OrderService/internal/infra/storage/order"
	"github.com/m04kA/SMC-OrderService/internal/infra/storage/sagarun"
	"github.com/m04kA/SMC-OrderService/internal/integrations/paymentgw"
	capacitysvc "github.com/m04kA/SMC-OrderService/internal/service/capacity"
)

// Config настройки выполнения саги
type Config struct {
	// ValidationCharge включает проверочный платеж с немедленным возвратом
	// на этапе регистрации платежного метода
	ValidationCharge       bool
	ValidationChargeAmount int64

	// RunTTL: незавершенная сага старше TTL считается брошенной,
	// повторный запрос компенсирует её по журналу и выполняет заново
	RunTTL time.Duration
}

// UseCase создает заказ через сагу бронирования: резерв ёмкости,
// черновик заказа, регистрация платежного метода, подтверждение.
// Каждый завершенный шаг пишется в журнал; при провале любого шага
// уже выполненные откатываются в обратном порядке.
type UseCase struct {
	capacityEngine CapacityEngine
	orderRepo      OrderRepository
	sagaRuns       SagaRunRepository
	gateway        PaymentGateway
	stateMachine   StateMachine
	timeProvider   TimeProvider
	cfg            Config
	metrics        Metrics
	logger         Logger
}

// New создает новый экземпляр UseCase
func New(
	capacityEngine CapacityEngine,
	orderRepo OrderRepository,
	sagaRuns SagaRunRepository,
	gateway PaymentGateway,
	stateMachine StateMachine,
	timeProvider TimeProvider,
	cfg Config,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		capacityEngine: capacityEngine,
		orderRepo:      orderRepo,
		sagaRuns:       sagaRuns,
		gateway:        gateway,
		stateMachine:   stateMachine,
		timeProvider:   timeProvider,
		cfg:            cfg,
		metrics:        metrics,
		logger:         logger,
	}
}

// Execute выполняет сагу бронирования под ключом идемпотентности.
// Повтор с тем же ключом никогда не создает второй набор побочных эффектов:
// завершенная сага возвращает записанный результат, компенсированная
// выполняется заново, живая отвечает ErrSagaInProgress.
func (u *UseCase) Execute(ctx context.Context, req *Request, idempotencyKey string) (*Response, error) {
	if err := validateIdempotencyKey(idempotencyKey); err != nil {
		return nil, err
	}

	now := u.timeProvider.Now()
	if err := validateRequest(req, now); err != nil {
		return nil, err
	}

	existing, err := u.sagaRuns.GetByIdempotencyKey(ctx, idempotencyKey)
	if err == nil {
		return u.resumeExisting(ctx, existing, req, now)
	}
	if !errors.Is(err, sagarun.ErrRunNotFound) {
		u.logger.Error("Execute - failed to look up saga run: key=%s error=%v", idempotencyKey, err)
		return nil, fmt.Errorf("%w: Execute - saga lookup: %v", ErrInternal, err)
	}

	run := &domain.SagaRun{
		SagaID:         uuid.NewString(),
		IdempotencyKey: idempotencyKey,
		Status:         domain.SagaInProgress,
	}

	if err := u.sagaRuns.Create(ctx, run); err != nil {
		if errors.Is(err, sagarun.ErrDuplicateKey) {
			// конкурентный запрос с тем же ключом успел первым
			return nil, ErrSagaInProgress
		}
		u.logger.Error("Execute - failed to create saga run: key=%s error=%v", idempotencyKey, err)
		return nil, fmt.Errorf("%w: Execute - saga create: %v", ErrInternal, err)
	}

	return u.runSaga(ctx, run.SagaID, req)
}

// resumeExisting решает судьбу повторного запроса по записанному состоянию саги
func (u *UseCase) resumeExisting(ctx context.Context, run *domain.SagaRun, req *Request, now time.Time) (*Response, error) {
	switch run.Status {
	case domain.SagaSucceeded:
		if run.OrderID == nil {
			return nil, fmt.Errorf("%w: resumeExisting - succeeded saga %s has no order", ErrInternal, run.SagaID)
		}
		o, err := u.orderRepo.GetByID(ctx, *run.OrderID)
		if err != nil {
			u.logger.Error("resumeExisting - failed to load recorded order: saga=%s order=%d error=%v", run.SagaID, *run.OrderID, err)
			return nil, fmt.Errorf("%w: resumeExisting - order load: %v", ErrInternal, err)
		}
		u.logger.Info("resumeExisting - replaying succeeded saga: saga=%s order=%d", run.SagaID, o.ID)
		return fromOrder(o, false, nil), nil

	case domain.SagaFailed:
		// детерминированный бизнес-отказ: повтор возвращает тот же исход
		if run.FailureReason != nil {
			return nil, fmt.Errorf("%w: %s", ErrBookingFailed, *run.FailureReason)
		}
		return nil, ErrBookingFailed

	case domain.SagaCompensated:
		// прошлый запуск упал по временной причине и полностью откатился,
		// повтор с тем же ключом выполняет сагу заново
		if err := u.sagaRuns.Reset(ctx, run.SagaID); err != nil {
			u.logger.Error("resumeExisting - failed to reset compensated saga: saga=%s error=%v", run.SagaID, err)
			return nil, fmt.Errorf("%w: resumeExisting - saga reset: %v", ErrInternal, err)
		}
		return u.runSaga(ctx, run.SagaID, req)

	default: // in_progress, suspended
		if !run.IsStale(now, u.cfg.RunTTL) {
			return nil, ErrSagaInProgress
		}
		// брошенная сага: откатываем завершенные шаги по журналу и начинаем заново
		u.logger.Warn("resumeExisting - stale saga, compensating from journal: saga=%s status=%s", run.SagaID, run.Status)
		u.compensateFromJournal(ctx, run)
		if err := u.sagaRuns.Reset(ctx, run.SagaID); err != nil {
			u.logger.Error("resumeExisting - failed to reset stale saga: saga=%s error=%v", run.SagaID, err)
			return nil, fmt.Errorf("%w: resumeExisting - saga reset: %v", ErrInternal, err)
		}
		return u.runSaga(ctx, run.SagaID, req)
	}
}

// runSaga выполняет шаги саги с журналированием и компенсацией
func (u *UseCase) runSaga(ctx context.Context, sagaID string, req *Request) (*Response, error) {
	stack := newCompensationStack(u.metrics, u.logger)

	// Шаг 1: резерв ёмкости
	token, err := u.capacityEngine.Reserve(ctx, req.ProviderID, req.ServiceType, req.Window())
	if err != nil {
		return nil, u.abort(ctx, sagaID, stack, domain.StepReserveCapacity, u.mapCapacityErr(err))
	}
	tokenID := token.ID
	u.journal(ctx, sagaID, domain.StepReserveCapacity, tokenID)
	stack.push(domain.StepReserveCapacity, func(ctx context.Context) error {
		return u.capacityEngine.Release(ctx, tokenID)
	})

	// Шаг 2: черновик заказа
	created, err := u.orderRepo.Create(ctx, &domain.Order{
		CustomerRef:    req.CustomerRef,
		ProviderID:     req.ProviderID,
		ServiceType:    req.ServiceType,
		Status:         domain.StatusDraft,
		WindowStart:    req.WindowStart,
		WindowEnd:      req.WindowEnd,
		EstimateAmount: req.EstimateAmount,
		ReservationID:  tokenID,
	})
	if err != nil {
		u.logger.Error("runSaga - failed to create draft order: saga=%s error=%v", sagaID, err)
		return nil, u.abort(ctx, sagaID, stack, domain.StepCreateOrder, fmt.Errorf("%w: runSaga - order create: %v", ErrInternal, err))
	}
	orderID := created.ID
	u.journal(ctx, sagaID, domain.StepCreateOrder, strconv.FormatInt(orderID, 10))
	stack.push(domain.StepCreateOrder, func(ctx context.Context) error {
		if err := u.orderRepo.Delete(ctx, orderID); err != nil && !errors.Is(err, order.ErrOrderNotFound) {
			return err
		}
		return nil
	})

	// Шаг 3: регистрация платежного метода
	setup, err := u.gateway.CreateSetup(ctx, req.CustomerRef, req.InstrumentRef)
	if err != nil {
		return nil, u.abortGateway(ctx, sagaID, stack, domain.StepRegisterPayment, err)
	}

	if setup.Status == paymentgw.StatusRequiresAction {
		// внеполосное подтверждение (3-D Secure): сага приостанавливается,
		// заказ остается черновиком, итог придет webhook-событием
		u.journal(ctx, sagaID, domain.StepRegisterPayment, setup.ConfirmationID)
		if err := u.sagaRuns.SetStatus(ctx, sagaID, domain.SagaSuspended, &orderID, nil); err != nil {
			u.logger.Error("runSaga - failed to suspend saga: saga=%s error=%v", sagaID, err)
			return nil, u.abort(ctx, sagaID, stack, domain.StepRegisterPayment, fmt.Errorf("%w: runSaga - saga suspend: %v", ErrInternal, err))
		}
		u.observeOutcome("suspended")
		u.logger.Info("runSaga - saga suspended awaiting client action: saga=%s order=%d", sagaID, orderID)
		return fromOrder(created, true, setup.ClientActionURL), nil
	}

	created.PaymentMethodRef = &setup.PaymentMethodRef
	created.PaymentCustomerRef = &setup.PaymentCustomerRef
	created.SetupConfirmationID = &setup.ConfirmationID
	u.journal(ctx, sagaID, domain.StepRegisterPayment, setup.PaymentMethodRef)
	pmRef := setup.PaymentMethodRef
	stack.push(domain.StepRegisterPayment, func(ctx context.Context) error {
		return u.gateway.DetachPaymentMethod(ctx, pmRef)
	})

	if u.cfg.ValidationCharge {
		if err := u.validateCard(ctx, pmRef); err != nil {
			return nil, u.abortGateway(ctx, sagaID, stack, domain.StepRegisterPayment, err)
		}
		created.CardValidated = true
	}

	// Шаг 4: подтверждение заказа
	finalized, err := u.stateMachine.Transition(ctx, created, domain.ActionConfirmSetup, domain.RoleSystem, nil)
	if err != nil {
		u.logger.Error("runSaga - failed to finalize order: saga=%s order=%d error=%v", sagaID, orderID, err)
		return nil, u.abort(ctx, sagaID, stack, domain.StepFinalizeOrder, fmt.Errorf("%w: runSaga - finalize: %v", ErrInternal, err))
	}
	u.journal(ctx, sagaID, domain.StepFinalizeOrder, strconv.FormatInt(orderID, 10))

	if err := u.sagaRuns.SetStatus(ctx, sagaID, domain.SagaSucceeded, &orderID, nil); err != nil {
		// сага уже выполнена, побочные эффекты на месте; откатывать заказ
		// из-за несохраненного статуса саги хуже, чем оставить запись висеть
		u.logger.Error("runSaga - failed to record saga success: saga=%s order=%d error=%v", sagaID, orderID, err)
	}
	u.observeOutcome("succeeded")
	u.logger.Info("runSaga - saga succeeded: saga=%s order=%d", sagaID, orderID)

	return fromOrder(finalized, false, nil), nil
}

// validateCard выполняет проверочный платеж с немедленным возвратом
func (u *UseCase) validateCard(ctx context.Context, pmRef string) error {
	charge, err := u.gateway.Charge(ctx, pmRef, u.cfg.ValidationChargeAmount)
	if err != nil {
		return err
	}
	if _, err := u.gateway.Refund(ctx, charge.ChargeRef, u.cfg.ValidationChargeAmount); err != nil {
		// деньги списаны и не возвращены: эскалируем, но сагу не валим
		u.logger.Error("validateCard - refund of validation charge failed: charge=%s error=%v - requires operator attention", charge.ChargeRef, err)
		if u.metrics != nil {
			u.metrics.ObserveCompensationFailure("validation_refund")
		}
	}
	return nil
}

// abort разматывает компенсации и записывает сагу компенсированной
func (u *UseCase) abort(ctx context.Context, sagaID string, stack *compensationStack, step string, cause error) error {
	stack.unwind(ctx)
	reason := cause.Error()
	if err := u.sagaRuns.SetStatus(ctx, sagaID, domain.SagaCompensated, nil, &reason); err != nil {
		u.logger.Error("abort - failed to record compensated saga: saga=%s error=%v", sagaID, err)
	}
	u.observeOutcome("compensated")
	u.logger.Warn("abort - saga compensated: saga=%s step=%s cause=%v", sagaID, step, cause)
	return cause
}

// abortGateway различает детерминированный отказ шлюза и временный сбой.
// Отклоненная карта фиксируется как failed: повтор с тем же ключом вернет
// тот же исход без нового похода в шлюз. Недоступность и квота - compensated:
// повтор выполнит сагу заново.
func (u *UseCase) abortGateway(ctx context.Context, sagaID string, stack *compensationStack, step string, cause error) error {
	if errors.Is(cause, paymentgw.ErrCardDeclined) {
		stack.unwind(ctx)
		reason := "payment method declined by gateway"
		if err := u.sagaRuns.SetStatus(ctx, sagaID, domain.SagaFailed, nil, &reason); err != nil {
			u.logger.Error("abortGateway - failed to record failed saga: saga=%s error=%v", sagaID, err)
		}
		u.observeOutcome("failed")
		u.logger.Warn("abortGateway - saga failed: saga=%s step=%s cause=%v", sagaID, step, cause)
		return fmt.Errorf("%w: %v", ErrCardDeclined, cause)
	}

	switch {
	case errors.Is(cause, paymentgw.ErrRateLimited):
		cause = fmt.Errorf("%w: %v", ErrRateLimited, cause)
	case errors.Is(cause, paymentgw.ErrGatewayUnavailable):
		cause = fmt.Errorf("%w: %v", ErrGatewayUnavailable, cause)
	default:
		cause = fmt.Errorf("%w: %s: %v", ErrInternal, step, cause)
	}
	return u.abort(ctx, sagaID, stack, step, cause)
}

// compensateFromJournal откатывает завершенные шаги брошенной саги
// по её журналу, в обратном порядке
func (u *UseCase) compensateFromJournal(ctx context.Context, run *domain.SagaRun) {
	for i := len(run.Steps) - 1; i >= 0; i-- {
		step := run.Steps[i]
		var err error
		switch step.Name {
		case domain.StepRegisterPayment:
			err = u.gateway.DetachPaymentMethod(ctx, step.Ref)
		case domain.StepCreateOrder:
			var id int64
			if id, err = strconv.ParseInt(step.Ref, 10, 64); err == nil {
				if err = u.orderRepo.Delete(ctx, id); errors.Is(err, order.ErrOrderNotFound) {
					err = nil
				}
			}
		case domain.StepReserveCapacity:
			err = u.capacityEngine.Release(ctx, step.Ref)
		case domain.StepFinalizeOrder:
			// сам по себе побочных эффектов не несет, заказ удалит create_order
			continue
		}
		if err != nil {
			u.logger.Error("compensateFromJournal - step compensation failed: saga=%s step=%s error=%v - requires operator attention", run.SagaID, step.Name, err)
			if u.metrics != nil {
				u.metrics.ObserveCompensationFailure(step.Name)
			}
			continue
		}
		u.logger.Info("compensateFromJournal - step compensated: saga=%s step=%s", run.SagaID, step.Name)
	}
}

// journal пишет завершенный шаг в журнал саги.
// Ошибка записи журнала не прерывает сагу: журнал нужен для восстановления
// брошенных запусков, а живой запуск несет компенсации в памяти.
func (u *UseCase) journal(ctx context.Context, sagaID, step, ref string) {
	err := u.sagaRuns.AppendStep(ctx, sagaID, domain.SagaStep{
		Name:        step,
		Ref:         ref,
		CompletedAt: u.timeProvider.Now(),
	})
	if err != nil {
		u.logger.Error("journal - failed to append saga step: saga=%s step=%s error=%v", sagaID, step, err)
	}
}

// mapCapacityErr переводит ошибки движка ёмкости в ошибки usecase
func (u *UseCase) mapCapacityErr(err error) error {
	switch {
	case errors.Is(err, capacitysvc.ErrSlotNotFound):
		return fmt.Errorf("%w: %v", ErrSlotNotFound, err)
	case errors.Is(err, capacitysvc.ErrSlotFull):
		return fmt.Errorf("%w: %v", ErrSlotFull, err)
	case errors.Is(err, capacitysvc.ErrConflict):
		return fmt.Errorf("%w: %v", ErrWindowConflict, err)
	case errors.Is(err, capacitysvc.ErrInvalidWindow):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return fmt.Errorf("%w: reserve capacity: %v", ErrInternal, err)
	}
}

func (u *UseCase) observeOutcome(outcome string) {
	if u.metrics != nil {
		u.metrics.ObserveSagaOutcome(outcome)
	}
}
