package capacity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-OrderService/internal/domain"
	capacityRepo "github.com/m04kA/SMC-OrderService/internal/infra/storage/capacity"
)

// MockSlotRepository мок репозитория слотов
type MockSlotRepository struct {
	mock.Mock
}

func (m *MockSlotRepository) FindSlotsForWindow(ctx context.Context, providerID int64, serviceType domain.ServiceType, window domain.TimeWindow) ([]*domain.CapacitySlot, error) {
	args := m.Called(ctx, providerID, serviceType, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CapacitySlot), args.Error(1)
}

func (m *MockSlotRepository) IncrementReserved(ctx context.Context, slotID int64, units int) error {
	args := m.Called(ctx, slotID, units)
	return args.Error(0)
}

func (m *MockSlotRepository) DecrementReserved(ctx context.Context, slotID int64, units int) error {
	args := m.Called(ctx, slotID, units)
	return args.Error(0)
}

func (m *MockSlotRepository) CreateReservation(ctx context.Context, token *domain.ReservationToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockSlotRepository) GetReservation(ctx context.Context, id string) (*domain.ReservationToken, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReservationToken), args.Error(1)
}

func (m *MockSlotRepository) MarkReleased(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// fakeTxManager выполняет fn без транзакции
type fakeTxManager struct{}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

func window(startHour, endHour int) domain.TimeWindow {
	day := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)
	return domain.TimeWindow{
		Start: day.Add(time.Duration(startHour) * time.Hour),
		End:   day.Add(time.Duration(endHour) * time.Hour),
	}
}

func slot(id int64, startHour, endHour, maxUnits, reserved int) *domain.CapacitySlot {
	w := window(startHour, endHour)
	return &domain.CapacitySlot{
		ID:            id,
		ProviderID:    42,
		ServiceType:   domain.ServiceCleaning,
		WindowStart:   w.Start,
		WindowEnd:     w.End,
		MaxUnits:      maxUnits,
		ReservedUnits: reserved,
	}
}

func TestService_Reserve_Success(t *testing.T) {
	repo := &MockSlotRepository{}
	svc := NewService(repo, &fakeTxManager{}, noopLogger{})

	req := window(10, 12)
	repo.On("FindSlotsForWindow", mock.Anything, int64(42), domain.ServiceCleaning, req).
		Return([]*domain.CapacitySlot{slot(1, 9, 13, 3, 1)}, nil)
	repo.On("IncrementReserved", mock.Anything, int64(1), 1).Return(nil)
	repo.On("CreateReservation", mock.Anything, mock.MatchedBy(func(tok *domain.ReservationToken) bool {
		return tok.SlotID == 1 && tok.ProviderID == 42 && tok.Units == 1 && tok.ID != ""
	})).Return(nil)

	token, err := svc.Reserve(context.Background(), 42, domain.ServiceCleaning, req)

	require.NoError(t, err)
	assert.Equal(t, int64(1), token.SlotID)
	assert.NotEmpty(t, token.ID)
	repo.AssertExpectations(t)
}

func TestService_Reserve_PicksContainingSlot(t *testing.T) {
	repo := &MockSlotRepository{}
	svc := NewService(repo, &fakeTxManager{}, noopLogger{})

	// Первый слот лишь пересекается с окном, второй вмещает целиком
	req := window(10, 12)
	repo.On("FindSlotsForWindow", mock.Anything, int64(42), domain.ServiceCleaning, req).
		Return([]*domain.CapacitySlot{slot(1, 8, 11, 3, 0), slot(2, 10, 14, 3, 0)}, nil)
	repo.On("IncrementReserved", mock.Anything, int64(2), 1).Return(nil)
	repo.On("CreateReservation", mock.Anything, mock.Anything).Return(nil)

	token, err := svc.Reserve(context.Background(), 42, domain.ServiceCleaning, req)

	require.NoError(t, err)
	assert.Equal(t, int64(2), token.SlotID)
	repo.AssertExpectations(t)
}

func TestService_Reserve_NoSlots(t *testing.T) {
	repo := &MockSlotRepository{}
	svc := NewService(repo, &fakeTxManager{}, noopLogger{})

	req := window(10, 12)
	repo.On("FindSlotsForWindow", mock.Anything, int64(42), domain.ServiceCleaning, req).
		Return([]*domain.CapacitySlot{}, nil)

	_, err := svc.Reserve(context.Background(), 42, domain.ServiceCleaning, req)

	assert.ErrorIs(t, err, ErrSlotNotFound)
	repo.AssertNotCalled(t, "IncrementReserved", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Reserve_OverlapWithoutContainment(t *testing.T) {
	repo := &MockSlotRepository{}
	svc := NewService(repo, &fakeTxManager{}, noopLogger{})

	// Окно пересекается со слотом, но выходит за его границы
	req := window(10, 14)
	repo.On("FindSlotsForWindow", mock.Anything, int64(42), domain.ServiceCleaning, req).
		Return([]*domain.CapacitySlot{slot(1, 9, 13, 3, 0)}, nil)

	_, err := svc.Reserve(context.Background(), 42, domain.ServiceCleaning, req)

	assert.ErrorIs(t, err, ErrConflict)
	repo.AssertNotCalled(t, "IncrementReserved", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Reserve_SlotFull(t *testing.T) {
	repo := &MockSlotRepository{}
	svc := NewService(repo, &fakeTxManager{}, noopLogger{})

	req := window(10, 12)
	repo.On("FindSlotsForWindow", mock.Anything, int64(42), domain.ServiceCleaning, req).
		Return([]*domain.CapacitySlot{slot(1, 9, 13, 2, 2)}, nil)

	_, err := svc.Reserve(context.Background(), 42, domain.ServiceCleaning, req)

	assert.ErrorIs(t, err, ErrSlotFull)
	repo.AssertNotCalled(t, "IncrementReserved", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Reserve_GuardedIncrementLosesRace(t *testing.T) {
	repo := &MockSlotRepository{}
	svc := NewService(repo, &fakeTxManager{}, noopLogger{})

	// Охранное условие в UPDATE сработало: слот заполнился между чтением и записью
	req := window(10, 12)
	repo.On("FindSlotsForWindow", mock.Anything, int64(42), domain.ServiceCleaning, req).
		Return([]*domain.CapacitySlot{slot(1, 9, 13, 3, 2)}, nil)
	repo.On("IncrementReserved", mock.Anything, int64(1), 1).Return(capacityRepo.ErrSlotFull)

	_, err := svc.Reserve(context.Background(), 42, domain.ServiceCleaning, req)

	assert.ErrorIs(t, err, ErrSlotFull)
	repo.AssertNotCalled(t, "CreateReservation", mock.Anything, mock.Anything)
}

func TestService_Reserve_InvalidWindow(t *testing.T) {
	repo := &MockSlotRepository{}
	svc := NewService(repo, &fakeTxManager{}, noopLogger{})

	inverted := domain.TimeWindow{Start: window(12, 14).End, End: window(12, 14).Start}
	_, err := svc.Reserve(context.Background(), 42, domain.ServiceCleaning, inverted)

	assert.ErrorIs(t, err, ErrInvalidWindow)
	repo.AssertNotCalled(t, "FindSlotsForWindow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Release_Success(t *testing.T) {
	repo := &MockSlotRepository{}
	svc := NewService(repo, &fakeTxManager{}, noopLogger{})

	repo.On("GetReservation", mock.Anything, "tok-1").
		Return(&domain.ReservationToken{ID: "tok-1", SlotID: 5, Units: 1}, nil)
	repo.On("MarkReleased", mock.Anything, "tok-1").Return(true, nil)
	repo.On("DecrementReserved", mock.Anything, int64(5), 1).Return(nil)

	err := svc.Release(context.Background(), "tok-1")

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_Release_Idempotent(t *testing.T) {
	repo := &MockSlotRepository{}
	svc := NewService(repo, &fakeTxManager{}, noopLogger{})

	// Повторное освобождение: пометка не переключилась, счетчик не трогаем
	repo.On("GetReservation", mock.Anything, "tok-1").
		Return(&domain.ReservationToken{ID: "tok-1", SlotID: 5, Units: 1, Released: true}, nil)
	repo.On("MarkReleased", mock.Anything, "tok-1").Return(false, nil)

	err := svc.Release(context.Background(), "tok-1")

	require.NoError(t, err)
	repo.AssertNotCalled(t, "DecrementReserved", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Release_UnknownToken(t *testing.T) {
	repo := &MockSlotRepository{}
	svc := NewService(repo, &fakeTxManager{}, noopLogger{})

	repo.On("GetReservation", mock.Anything, "missing").
		Return(nil, capacityRepo.ErrReservationNotFound)

	err := svc.Release(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrReservationNotFound)
}
