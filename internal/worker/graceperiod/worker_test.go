package graceperiod

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-OrderService/internal/domain"
	"github.com/m04kA/SMC-OrderService/internal/service/statemachine"
)

// MockOrderRepository мок репозитория заказов
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetExpiredGraceOrders(ctx context.Context, limit int) ([]*domain.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
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

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

func expiredOrder(id int64) *domain.Order {
	past := time.Date(2025, 11, 9, 12, 0, 0, 0, time.UTC)
	return &domain.Order{
		ID:             id,
		ServiceType:    domain.ServiceCleaning,
		Status:         domain.StatusPaymentFailed,
		GraceExpiresAt: &past,
	}
}

func TestWorker_Sweep_CancelsExpiredOrders(t *testing.T) {
	repo := &MockOrderRepository{}
	sm := &MockStateMachine{}
	w := NewWorker(repo, sm, time.Minute, 100, noopLogger{})

	o1, o2 := expiredOrder(1), expiredOrder(2)
	repo.On("GetExpiredGraceOrders", mock.Anything, 100).Return([]*domain.Order{o1, o2}, nil)
	sm.On("Transition", mock.Anything, o1, domain.ActionGraceExpired, domain.RoleSystem, mock.Anything).Return(o1, nil)
	sm.On("Transition", mock.Anything, o2, domain.ActionGraceExpired, domain.RoleSystem, mock.Anything).Return(o2, nil)

	w.sweep(context.Background())

	sm.AssertExpectations(t)
}

func TestWorker_Sweep_SkipsConcurrentlyChangedOrder(t *testing.T) {
	repo := &MockOrderRepository{}
	sm := &MockStateMachine{}
	w := NewWorker(repo, sm, time.Minute, 100, noopLogger{})

	o1, o2 := expiredOrder(1), expiredOrder(2)
	repo.On("GetExpiredGraceOrders", mock.Anything, 100).Return([]*domain.Order{o1, o2}, nil)
	// Первый заказ успел уйти в retry_charge: version conflict, пропускаем
	sm.On("Transition", mock.Anything, o1, domain.ActionGraceExpired, domain.RoleSystem, mock.Anything).
		Return(nil, statemachine.ErrVersionConflict)
	sm.On("Transition", mock.Anything, o2, domain.ActionGraceExpired, domain.RoleSystem, mock.Anything).Return(o2, nil)

	w.sweep(context.Background())

	sm.AssertExpectations(t)
}

func TestWorker_Sweep_EmptyBatchIsNoOp(t *testing.T) {
	repo := &MockOrderRepository{}
	sm := &MockStateMachine{}
	w := NewWorker(repo, sm, time.Minute, 100, noopLogger{})

	repo.On("GetExpiredGraceOrders", mock.Anything, 100).Return([]*domain.Order{}, nil)

	w.sweep(context.Background())

	sm.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWorker_Run_StopsOnContextCancel(t *testing.T) {
	repo := &MockOrderRepository{}
	sm := &MockStateMachine{}
	w := NewWorker(repo, sm, 10*time.Millisecond, 100, noopLogger{})

	repo.On("GetExpiredGraceOrders", mock.Anything, 100).Return([]*domain.Order{}, nil).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancel")
	}
}
