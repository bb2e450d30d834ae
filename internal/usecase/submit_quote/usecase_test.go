package submit_quote

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-OrderService/internal/domain"
	"github.com/m04kA/SMC-OrderService/internal/infra/storage/order"
	"github.com/m04kA/SMC-OrderService/internal/service/statemachine"
)

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

func (m *MockStateMachine) QuoteGateAction(o *domain.Order) domain.Action {
	args := m.Called(o)
	return args.Get(0).(domain.Action)
}

// MockChargingService мок сервиса списаний
type MockChargingService struct {
	mock.Mock
}

func (m *MockChargingService) Initiate(ctx context.Context, o *domain.Order, action domain.Action, role domain.ActorRole) (*domain.Order, error) {
	args := m.Called(ctx, o, action, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

func inServiceOrder() *domain.Order {
	return &domain.Order{
		ID:             7,
		ProviderID:     42,
		ServiceType:    domain.ServiceCleaning,
		Status:         domain.StatusInService,
		EstimateAmount: 10000,
	}
}

func validRequest() *Request {
	return &Request{OrderID: 7, ActorID: 42, Role: domain.RolePartner, QuotedAmount: 11000}
}

func TestUseCase_Execute_WithinThresholdStartsCharge(t *testing.T) {
	repo := &MockOrderRepository{}
	sm := &MockStateMachine{}
	charging := &MockChargingService{}
	uc := New(repo, sm, charging, noopLogger{})

	o := inServiceOrder()
	repo.On("GetByID", mock.Anything, int64(7)).Return(o, nil)
	sm.On("Transition", mock.Anything, o, domain.ActionSubmitQuote, domain.RolePartner, mock.MatchedBy(func(md *string) bool {
		return md != nil && *md == "quoted_amount=11000"
	})).Return(o, nil)
	sm.On("QuoteGateAction", o).Return(domain.ActionStartCharge)
	charging.On("Initiate", mock.Anything, o, domain.ActionStartCharge, domain.RoleSystem).Return(o, nil)

	resp, err := uc.Execute(context.Background(), validRequest())

	require.NoError(t, err)
	assert.False(t, resp.RequiresApproval)
	assert.Equal(t, int64(11000), resp.QuotedAmount)
	sm.AssertExpectations(t)
	charging.AssertExpectations(t)
}

func TestUseCase_Execute_AboveThresholdRequiresApproval(t *testing.T) {
	repo := &MockOrderRepository{}
	sm := &MockStateMachine{}
	charging := &MockChargingService{}
	uc := New(repo, sm, charging, noopLogger{})

	o := inServiceOrder()
	req := validRequest()
	req.QuotedAmount = 15000

	repo.On("GetByID", mock.Anything, int64(7)).Return(o, nil)
	sm.On("Transition", mock.Anything, o, domain.ActionSubmitQuote, domain.RolePartner, mock.Anything).Return(o, nil)
	sm.On("QuoteGateAction", o).Return(domain.ActionRequireApproval)
	sm.On("Transition", mock.Anything, o, domain.ActionRequireApproval, domain.RoleSystem, (*string)(nil)).Return(o, nil)

	resp, err := uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, resp.RequiresApproval)
	// Списание дождется явной приемки котировки
	charging.AssertNotCalled(t, "Initiate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUseCase_Execute_QuoteIsImmutable(t *testing.T) {
	repo := &MockOrderRepository{}
	sm := &MockStateMachine{}
	charging := &MockChargingService{}
	uc := New(repo, sm, charging, noopLogger{})

	o := inServiceOrder()
	quoted := int64(12000)
	o.QuotedAmount = &quoted
	repo.On("GetByID", mock.Anything, int64(7)).Return(o, nil)

	_, err := uc.Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrQuoteAlreadySubmitted)
	sm.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUseCase_Execute_PartnerMustOwnOrder(t *testing.T) {
	repo := &MockOrderRepository{}
	sm := &MockStateMachine{}
	charging := &MockChargingService{}
	uc := New(repo, sm, charging, noopLogger{})

	o := inServiceOrder()
	o.ProviderID = 99 // чужой заказ
	repo.On("GetByID", mock.Anything, int64(7)).Return(o, nil)

	_, err := uc.Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUseCase_Execute_CustomerCannotQuote(t *testing.T) {
	repo := &MockOrderRepository{}
	sm := &MockStateMachine{}
	charging := &MockChargingService{}
	uc := New(repo, sm, charging, noopLogger{})

	req := validRequest()
	req.Role = domain.RoleCustomer

	_, err := uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrUnauthorized)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestUseCase_Execute_OrderNotFound(t *testing.T) {
	repo := &MockOrderRepository{}
	sm := &MockStateMachine{}
	charging := &MockChargingService{}
	uc := New(repo, sm, charging, noopLogger{})

	repo.On("GetByID", mock.Anything, int64(7)).Return(nil, order.ErrOrderNotFound)

	_, err := uc.Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUseCase_Execute_WrongStatusRejected(t *testing.T) {
	repo := &MockOrderRepository{}
	sm := &MockStateMachine{}
	charging := &MockChargingService{}
	uc := New(repo, sm, charging, noopLogger{})

	o := inServiceOrder()
	o.Status = domain.StatusAwaitingService
	repo.On("GetByID", mock.Anything, int64(7)).Return(o, nil)
	sm.On("Transition", mock.Anything, o, domain.ActionSubmitQuote, domain.RolePartner, mock.Anything).
		Return(nil, statemachine.ErrInvalidTransition)

	resp, err := uc.Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Nil(t, resp)
	// Неудавшаяся котировка не остается на заказе
	assert.Nil(t, o.QuotedAmount)
	charging.AssertNotCalled(t, "Initiate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUseCase_Execute_ChargeInitiationFails(t *testing.T) {
	repo := &MockOrderRepository{}
	sm := &MockStateMachine{}
	charging := &MockChargingService{}
	uc := New(repo, sm, charging, noopLogger{})

	o := inServiceOrder()
	repo.On("GetByID", mock.Anything, int64(7)).Return(o, nil)
	sm.On("Transition", mock.Anything, o, domain.ActionSubmitQuote, domain.RolePartner, mock.Anything).Return(o, nil)
	sm.On("QuoteGateAction", o).Return(domain.ActionStartCharge)
	charging.On("Initiate", mock.Anything, o, domain.ActionStartCharge, domain.RoleSystem).
		Return(nil, statemachine.ErrVersionConflict)

	resp, err := uc.Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrInternal)
	assert.Nil(t, resp)
}
