package handle_event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-OrderService/internal/domain"
	"github.com/m04kA/SMC-OrderService/internal/infra/storage/order"
	"github.com/m04kA/SMC-OrderService/internal/service/statemachine"
)

// MockEventRepository мок репозитория webhook-событий
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) InsertIfAbsent(ctx context.Context, event *domain.WebhookEvent) (bool, error) {
	args := m.Called(ctx, event)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventRepository) GetByEventID(ctx context.Context, eventID string) (*domain.WebhookEvent, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WebhookEvent), args.Error(1)
}

func (m *MockEventRepository) MarkProcessed(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

// MockOrderRepository мок репозитория заказов
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSagaRunRepository мок репозитория записей саги
type MockSagaRunRepository struct {
	mock.Mock
}

func (m *MockSagaRunRepository) GetByOrderID(ctx context.Context, orderID int64) (*domain.SagaRun, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SagaRun), args.Error(1)
}

func (m *MockSagaRunRepository) SetStatus(ctx context.Context, sagaID string, status domain.SagaStatus, orderID *int64, failureReason *string) error {
	args := m.Called(ctx, sagaID, status, orderID, failureReason)
	return args.Error(0)
}

// MockStateMachine мок машины статусов
type MockStateMachine struct {
	mock.Mock
}

func (m *MockStateMachine) Transition(ctx context.Context, o *domain.Order, action domain.Action, role domain.ActorRole, metadata *string) (*domain.Order, error) {
	args := m.Called(ctx, o, action, role, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

// MockChargingService мок сервиса списаний
type MockChargingService struct {
	mock.Mock
}

func (m *MockChargingService) MarkChargeFailed(ctx context.Context, o *domain.Order, reason string) (*domain.Order, error) {
	args := m.Called(ctx, o, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

// MockCapacityEngine мок движка резервирования ёмкости
type MockCapacityEngine struct {
	mock.Mock
}

func (m *MockCapacityEngine) Release(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

// fixedTimeProvider возвращает фиксированное время
type fixedTimeProvider struct {
	now time.Time
}

func (f *fixedTimeProvider) Now() time.Time { return f.now }

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

var testNow = time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	events   *MockEventRepository
	orders   *MockOrderRepository
	sagas    *MockSagaRunRepository
	machine  *MockStateMachine
	charging *MockChargingService
	capacity *MockCapacityEngine
	uc       *UseCase
}

func newFixture() *fixture {
	f := &fixture{
		events:   &MockEventRepository{},
		orders:   &MockOrderRepository{},
		sagas:    &MockSagaRunRepository{},
		machine:  &MockStateMachine{},
		charging: &MockChargingService{},
		capacity: &MockCapacityEngine{},
	}
	f.uc = New(
		f.events, f.orders, f.sagas, f.machine, f.charging, f.capacity,
		&fixedTimeProvider{now: testNow}, nil, noopLogger{},
	)
	return f
}

func chargeEvent(eventType string) *Request {
	return &Request{
		EventID:   "evt-1",
		EventType: eventType,
		OrderID:   7,
		Payload:   map[string]string{},
	}
}

func TestUseCase_Execute_DuplicateEventIsNoOp(t *testing.T) {
	f := newFixture()
	req := chargeEvent(domain.EventChargeSucceeded)

	processed := testNow.Add(-time.Minute)
	f.events.On("InsertIfAbsent", mock.Anything, mock.Anything).Return(false, nil)
	f.events.On("GetByEventID", mock.Anything, "evt-1").Return(&domain.WebhookEvent{
		EventID:     "evt-1",
		EventType:   domain.EventChargeSucceeded,
		OrderID:     7,
		ProcessedAt: &processed,
	}, nil)

	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, resp.Outcome)
	// Эффекты не применяются и processed_at не трогается
	f.orders.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	f.events.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything)
}

func TestUseCase_Execute_RedeliveryOfUnfinishedEventReapplies(t *testing.T) {
	f := newFixture()
	req := chargeEvent(domain.EventChargeSucceeded)

	// Событие записано, но прошлая обработка не дошла до processed_at
	f.events.On("InsertIfAbsent", mock.Anything, mock.Anything).Return(false, nil)
	f.events.On("GetByEventID", mock.Anything, "evt-1").Return(&domain.WebhookEvent{
		EventID:   "evt-1",
		EventType: domain.EventChargeSucceeded,
		OrderID:   7,
	}, nil)

	o := &domain.Order{ID: 7, ServiceType: domain.ServiceCleaning, Status: domain.StatusCharging}
	f.orders.On("GetByID", mock.Anything, int64(7)).Return(o, nil)
	f.machine.On("Transition", mock.Anything, o, domain.ActionChargeSucceeded, domain.RoleSystem, (*string)(nil)).
		Return(o, nil)
	f.events.On("MarkProcessed", mock.Anything, "evt-1").Return(nil)

	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, resp.Outcome)
	f.events.AssertExpectations(t)
}

func TestUseCase_Execute_ChargeSucceededCompletesOrder(t *testing.T) {
	f := newFixture()
	req := chargeEvent(domain.EventChargeSucceeded)

	f.events.On("InsertIfAbsent", mock.Anything, mock.Anything).Return(true, nil)
	o := &domain.Order{ID: 7, ServiceType: domain.ServiceCleaning, Status: domain.StatusCharging}
	f.orders.On("GetByID", mock.Anything, int64(7)).Return(o, nil)
	f.machine.On("Transition", mock.Anything, o, domain.ActionChargeSucceeded, domain.RoleSystem, (*string)(nil)).
		Return(o, nil)
	f.events.On("MarkProcessed", mock.Anything, "evt-1").Return(nil)

	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, resp.Outcome)
	f.machine.AssertExpectations(t)
}

func TestUseCase_Execute_StaleChargeEventSkipped(t *testing.T) {
	f := newFixture()
	req := chargeEvent(domain.EventChargeSucceeded)

	f.events.On("InsertIfAbsent", mock.Anything, mock.Anything).Return(true, nil)
	// Заказ уже completed: событие устарело
	o := &domain.Order{ID: 7, ServiceType: domain.ServiceCleaning, Status: domain.StatusCompleted}
	f.orders.On("GetByID", mock.Anything, int64(7)).Return(o, nil)
	f.events.On("MarkProcessed", mock.Anything, "evt-1").Return(nil)

	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, resp.Outcome)
	// Устаревшее событие помечается обработанным, чтобы не доставлялось вечно
	f.events.AssertExpectations(t)
	f.machine.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUseCase_Execute_ChargeFailedStartsGracePeriod(t *testing.T) {
	f := newFixture()
	req := chargeEvent(domain.EventChargeFailed)
	req.Payload["reason"] = "insufficient funds"

	f.events.On("InsertIfAbsent", mock.Anything, mock.Anything).Return(true, nil)
	o := &domain.Order{ID: 7, ServiceType: domain.ServiceCleaning, Status: domain.StatusCharging}
	f.orders.On("GetByID", mock.Anything, int64(7)).Return(o, nil)
	f.charging.On("MarkChargeFailed", mock.Anything, o, "insufficient funds").Return(o, nil)
	f.events.On("MarkProcessed", mock.Anything, "evt-1").Return(nil)

	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, resp.Outcome)
	f.charging.AssertExpectations(t)
}

func TestUseCase_Execute_SetupSucceededFinalizesSuspendedSaga(t *testing.T) {
	f := newFixture()
	req := &Request{
		EventID:   "evt-1",
		EventType: domain.EventSetupSucceeded,
		OrderID:   7,
		Payload: map[string]string{
			"payment_method_ref":   "pm_abc",
			"payment_customer_ref": "cus_abc",
			"confirmation_id":      "conf_abc",
		},
	}

	f.events.On("InsertIfAbsent", mock.Anything, mock.Anything).Return(true, nil)
	o := &domain.Order{ID: 7, ServiceType: domain.ServiceCleaning, Status: domain.StatusDraft}
	f.orders.On("GetByID", mock.Anything, int64(7)).Return(o, nil)
	f.sagas.On("GetByOrderID", mock.Anything, int64(7)).Return(&domain.SagaRun{
		SagaID: "saga-1",
		Status: domain.SagaSuspended,
	}, nil)
	f.machine.On("Transition", mock.Anything, o, domain.ActionConfirmSetup, domain.RoleSystem, (*string)(nil)).
		Return(o, nil)
	f.sagas.On("SetStatus", mock.Anything, "saga-1", domain.SagaSucceeded, mock.Anything, (*string)(nil)).
		Return(nil)
	f.events.On("MarkProcessed", mock.Anything, "evt-1").Return(nil)

	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, resp.Outcome)
	// Платежные ссылки из payload записаны на заказ
	require.NotNil(t, o.PaymentMethodRef)
	assert.Equal(t, "pm_abc", *o.PaymentMethodRef)
	f.sagas.AssertExpectations(t)
}

func TestUseCase_Execute_SetupSucceededWithoutSuspendedSagaSkipped(t *testing.T) {
	f := newFixture()
	req := &Request{
		EventID:   "evt-1",
		EventType: domain.EventSetupSucceeded,
		OrderID:   7,
		Payload:   map[string]string{"payment_method_ref": "pm_abc"},
	}

	f.events.On("InsertIfAbsent", mock.Anything, mock.Anything).Return(true, nil)
	o := &domain.Order{ID: 7, Status: domain.StatusAwaitingService}
	f.orders.On("GetByID", mock.Anything, int64(7)).Return(o, nil)
	f.sagas.On("GetByOrderID", mock.Anything, int64(7)).Return(&domain.SagaRun{
		SagaID: "saga-1",
		Status: domain.SagaSucceeded,
	}, nil)
	f.events.On("MarkProcessed", mock.Anything, "evt-1").Return(nil)

	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, resp.Outcome)
	f.machine.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUseCase_Execute_SetupSucceededForCanceledOrderSkipped(t *testing.T) {
	f := newFixture()
	req := &Request{
		EventID:   "evt-1",
		EventType: domain.EventSetupSucceeded,
		OrderID:   7,
		Payload:   map[string]string{"payment_method_ref": "pm_abc"},
	}

	// Черновик отменили, пока сага висела в suspended: подтверждение
	// из шлюза приходит к заказу, которому переход уже недоступен
	f.events.On("InsertIfAbsent", mock.Anything, mock.Anything).Return(true, nil)
	o := &domain.Order{ID: 7, ServiceType: domain.ServiceCleaning, Status: domain.StatusCanceled}
	f.orders.On("GetByID", mock.Anything, int64(7)).Return(o, nil)
	f.sagas.On("GetByOrderID", mock.Anything, int64(7)).Return(&domain.SagaRun{
		SagaID: "saga-1",
		Status: domain.SagaSuspended,
	}, nil)
	f.machine.On("Transition", mock.Anything, o, domain.ActionConfirmSetup, domain.RoleSystem, (*string)(nil)).
		Return(nil, statemachine.ErrInvalidTransition)
	f.events.On("MarkProcessed", mock.Anything, "evt-1").Return(nil)

	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, resp.Outcome)
	assert.Equal(t, string(domain.StatusCanceled), resp.OrderStatus)
	// Событие помечено обработанным, сага не закрывается успехом
	f.events.AssertExpectations(t)
	f.sagas.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUseCase_Execute_SetupFailedCompensatesDraft(t *testing.T) {
	f := newFixture()
	req := &Request{
		EventID:   "evt-1",
		EventType: domain.EventSetupFailed,
		OrderID:   7,
		Payload:   map[string]string{"reason": "3ds challenge failed"},
	}

	f.events.On("InsertIfAbsent", mock.Anything, mock.Anything).Return(true, nil)
	o := &domain.Order{ID: 7, Status: domain.StatusDraft, ReservationID: "res-1"}
	f.orders.On("GetByID", mock.Anything, int64(7)).Return(o, nil)
	f.sagas.On("GetByOrderID", mock.Anything, int64(7)).Return(&domain.SagaRun{
		SagaID: "saga-1",
		Status: domain.SagaSuspended,
	}, nil)
	f.orders.On("Delete", mock.Anything, int64(7)).Return(nil)
	f.capacity.On("Release", mock.Anything, "res-1").Return(nil)
	f.sagas.On("SetStatus", mock.Anything, "saga-1", domain.SagaCompensated, (*int64)(nil), mock.MatchedBy(func(reason *string) bool {
		return reason != nil && *reason == "3ds challenge failed"
	})).Return(nil)
	f.events.On("MarkProcessed", mock.Anything, "evt-1").Return(nil)

	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, resp.Outcome)
	f.orders.AssertExpectations(t)
	f.capacity.AssertExpectations(t)
	f.sagas.AssertExpectations(t)
}

func TestUseCase_Execute_RefundSucceededClosesDispute(t *testing.T) {
	f := newFixture()
	req := chargeEvent(domain.EventRefundSucceeded)

	f.events.On("InsertIfAbsent", mock.Anything, mock.Anything).Return(true, nil)
	o := &domain.Order{ID: 7, ServiceType: domain.ServiceCleaning, Status: domain.StatusDisputed}
	f.orders.On("GetByID", mock.Anything, int64(7)).Return(o, nil)
	f.machine.On("Transition", mock.Anything, o, domain.ActionRefundDispute, domain.RoleSystem, (*string)(nil)).
		Return(o, nil)
	f.events.On("MarkProcessed", mock.Anything, "evt-1").Return(nil)

	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, resp.Outcome)
}

func TestUseCase_Execute_UnknownEventTypeSkipped(t *testing.T) {
	f := newFixture()
	req := chargeEvent("payout.created")

	f.events.On("InsertIfAbsent", mock.Anything, mock.Anything).Return(true, nil)
	o := &domain.Order{ID: 7, Status: domain.StatusCompleted}
	f.orders.On("GetByID", mock.Anything, int64(7)).Return(o, nil)
	f.events.On("MarkProcessed", mock.Anything, "evt-1").Return(nil)

	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, resp.Outcome)
}

func TestUseCase_Execute_OrderGoneSkipped(t *testing.T) {
	f := newFixture()
	req := chargeEvent(domain.EventSetupFailed)

	// Черновик уже удален компенсацией брошенной саги
	f.events.On("InsertIfAbsent", mock.Anything, mock.Anything).Return(true, nil)
	f.orders.On("GetByID", mock.Anything, int64(7)).Return(nil, order.ErrOrderNotFound)
	f.events.On("MarkProcessed", mock.Anything, "evt-1").Return(nil)

	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, resp.Outcome)
}

func TestUseCase_Execute_TransientFailureLeavesEventUnmarked(t *testing.T) {
	f := newFixture()
	req := chargeEvent(domain.EventChargeSucceeded)

	f.events.On("InsertIfAbsent", mock.Anything, mock.Anything).Return(true, nil)
	o := &domain.Order{ID: 7, ServiceType: domain.ServiceCleaning, Status: domain.StatusCharging}
	f.orders.On("GetByID", mock.Anything, int64(7)).Return(o, nil)
	f.machine.On("Transition", mock.Anything, o, domain.ActionChargeSucceeded, domain.RoleSystem, (*string)(nil)).
		Return(nil, assert.AnError)

	_, err := f.uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrInternal)
	// processed_at не проставлен: шлюз доставит событие повторно
	f.events.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything)
}

func TestUseCase_Execute_InvalidInput(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Execute(context.Background(), &Request{EventID: "", EventType: "charge.succeeded", OrderID: 7})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(context.Background(), &Request{EventID: "evt-1", EventType: "", OrderID: 7})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(context.Background(), &Request{EventID: "evt-1", EventType: "charge.succeeded", OrderID: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)

	f.events.AssertNotCalled(t, "InsertIfAbsent", mock.Anything, mock.Anything)
}
