package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-OrderService/internal/domain"
	orderRepo "github.com/m04kA/SMC-OrderService/internal/infra/storage/order"
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

func (m *MockOrderRepository) GetByCustomer(ctx context.Context, customerRef int64, status *domain.OrderStatus) ([]*domain.Order, error) {
	args := m.Called(ctx, customerRef, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByProviderWithFilter(ctx context.Context, filter domain.ProviderOrdersFilter) ([]*domain.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListEvents(ctx context.Context, orderID int64) ([]*domain.OrderEvent, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.OrderEvent), args.Error(1)
}

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

func testOrder() *domain.Order {
	return &domain.Order{
		ID:          7,
		CustomerRef: 101,
		ProviderID:  42,
		ServiceType: domain.ServiceCleaning,
		Status:      domain.StatusAwaitingService,
	}
}

func TestService_GetByID_AccessRules(t *testing.T) {
	tests := []struct {
		name    string
		actorID int64
		role    domain.ActorRole
		wantErr error
	}{
		{"владелец видит свой заказ", 101, domain.RoleCustomer, nil},
		{"чужой клиент не видит", 999, domain.RoleCustomer, ErrAccessDenied},
		{"обслуживающий партнер видит", 42, domain.RolePartner, nil},
		{"чужой партнер не видит", 999, domain.RolePartner, ErrAccessDenied},
		{"админ видит любой заказ", 1, domain.RoleAdmin, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockOrderRepository{}
			svc := NewService(repo, noopLogger{})
			repo.On("GetByID", mock.Anything, int64(7)).Return(testOrder(), nil)

			resp, err := svc.GetByID(context.Background(), 7, tt.actorID, tt.role)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(7), resp.ID)
		})
	}
}

func TestService_GetByID_NotFound(t *testing.T) {
	repo := &MockOrderRepository{}
	svc := NewService(repo, noopLogger{})

	repo.On("GetByID", mock.Anything, int64(7)).Return(nil, orderRepo.ErrOrderNotFound)

	_, err := svc.GetByID(context.Background(), 7, 101, domain.RoleCustomer)

	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestService_GetCustomerOrders(t *testing.T) {
	repo := &MockOrderRepository{}
	svc := NewService(repo, noopLogger{})

	status := domain.StatusAwaitingService
	repo.On("GetByCustomer", mock.Anything, int64(101), &status).
		Return([]*domain.Order{testOrder()}, nil)

	resp, err := svc.GetCustomerOrders(context.Background(), 101, &status)

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	assert.Len(t, resp.Orders, 1)
}

func TestService_GetOrderEvents_ChecksAccess(t *testing.T) {
	repo := &MockOrderRepository{}
	svc := NewService(repo, noopLogger{})

	repo.On("GetByID", mock.Anything, int64(7)).Return(testOrder(), nil)

	_, err := svc.GetOrderEvents(context.Background(), 7, 999, domain.RoleCustomer)

	assert.ErrorIs(t, err, ErrAccessDenied)
	// Журнал не читается без прав на заказ
	repo.AssertNotCalled(t, "ListEvents", mock.Anything, mock.Anything)
}

func TestService_GetOrderEvents(t *testing.T) {
	repo := &MockOrderRepository{}
	svc := NewService(repo, noopLogger{})

	repo.On("GetByID", mock.Anything, int64(7)).Return(testOrder(), nil)
	repo.On("ListEvents", mock.Anything, int64(7)).Return([]*domain.OrderEvent{
		{ID: 1, OrderID: 7, FromStatus: domain.StatusDraft, ToStatus: domain.StatusAwaitingService, Action: domain.ActionConfirmSetup, ActorRole: domain.RoleSystem},
	}, nil)

	resp, err := svc.GetOrderEvents(context.Background(), 7, 101, domain.RoleCustomer)

	require.NoError(t, err)
	assert.Len(t, resp.Events, 1)
	assert.Equal(t, string(domain.ActionConfirmSetup), resp.Events[0].Action)
}
