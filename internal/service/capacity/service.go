package capacity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-OrderService/internal/domain"
	capacityRepo "github.com/m04kA/SMC-OrderService/internal/infra/storage/capacity"
	"github.com/m04kA/SMC-OrderService/pkg/backoff"
)

// Service движок резервирования ёмкости.
// Резервирование выполняется в одной сериализуемой транзакции с блокировкой
// строк слотов (FOR UPDATE): это единственная горячая точка конкуренции
// в системе, и сериализация происходит на уровне БД, а не процессным
// мьютексом - корректность сохраняется при нескольких инстансах сервиса.
type Service struct {
	repo      SlotRepository
	txManager TransactionManager
	retry     backoff.Policy
	logger    Logger
}

// NewService создает движок резервирования ёмкости
func NewService(repo SlotRepository, txManager TransactionManager, logger Logger) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		retry:     backoff.DefaultPolicy,
		logger:    logger,
	}
}

// Reserve резервирует единицу ёмкости провайдера под запрошенное окно.
//
// Поиск кандидатов идет по пересечению полуинтервалов (a < d AND c < b) -
// именно пересечение, а не уникальность window_start, определяет конфликт:
// два непересекающихся слота могут законно начинаться в один момент.
// Из пересекающихся слотов подходит только тот, что вмещает окно целиком;
// пересечение без вмещения - ErrConflict.
//
// SlotFull и Conflict - ожидаемые бизнес-исходы ("нет доступности"), они
// не ретраятся. Транзиентная конкуренция за строки (serialization failure,
// deadlock) повторяется ограниченно с джиттером.
func (s *Service) Reserve(
	ctx context.Context,
	providerID int64,
	serviceType domain.ServiceType,
	window domain.TimeWindow,
) (*domain.ReservationToken, error) {
	if !window.IsValid() {
		return nil, fmt.Errorf("%w: start=%s end=%s", ErrInvalidWindow, window.Start, window.End)
	}

	var token *domain.ReservationToken

	err := s.retry.Retry(ctx, backoff.IsRetryableDBError, func(ctx context.Context) error {
		return s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
			slots, err := s.repo.FindSlotsForWindow(txCtx, providerID, serviceType, window)
			if err != nil {
				return fmt.Errorf("%w: Reserve - find slots: %v", ErrInternal, err)
			}

			if len(slots) == 0 {
				return ErrSlotNotFound
			}

			var target *domain.CapacitySlot
			for _, slot := range slots {
				if slot.Window().Contains(window) {
					target = slot
					break
				}
			}
			if target == nil {
				return ErrConflict
			}

			if target.IsFull() {
				return ErrSlotFull
			}

			if err := s.repo.IncrementReserved(txCtx, target.ID, domain.DefaultReservationUnits); err != nil {
				// Гонка между чтением и инкрементом закрыта FOR UPDATE,
				// но охранное условие в UPDATE оставляем последней линией
				if errors.Is(err, capacityRepo.ErrSlotFull) {
					return ErrSlotFull
				}
				return fmt.Errorf("%w: Reserve - increment reserved: %v", ErrInternal, err)
			}

			token = &domain.ReservationToken{
				ID:         uuid.NewString(),
				SlotID:     target.ID,
				ProviderID: providerID,
				Units:      domain.DefaultReservationUnits,
			}

			if err := s.repo.CreateReservation(txCtx, token); err != nil {
				return fmt.Errorf("%w: Reserve - create reservation: %v", ErrInternal, err)
			}

			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("Reserve: provider=%d slot=%d reservation=%s window=[%s, %s)",
		providerID, token.SlotID, token.ID,
		window.Start.Format("2006-01-02 15:04"), window.End.Format("2006-01-02 15:04"))

	return token, nil
}

// Release освобождает резервирование по токену.
// Идемпотентен: повторное освобождение - no-op, не ошибка. Счетчик слота
// уменьшается только при первом вызове (пометка released переключается
// ровно один раз) и не уходит ниже нуля.
func (s *Service) Release(ctx context.Context, tokenID string) error {
	return s.retry.Retry(ctx, backoff.IsRetryableDBError, func(ctx context.Context) error {
		return s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
			reservation, err := s.repo.GetReservation(txCtx, tokenID)
			if err != nil {
				if errors.Is(err, capacityRepo.ErrReservationNotFound) {
					return ErrReservationNotFound
				}
				return fmt.Errorf("%w: Release - get reservation: %v", ErrInternal, err)
			}

			flipped, err := s.repo.MarkReleased(txCtx, tokenID)
			if err != nil {
				return fmt.Errorf("%w: Release - mark released: %v", ErrInternal, err)
			}

			if !flipped {
				s.logger.Info("Release: reservation=%s already released, no-op", tokenID)
				return nil
			}

			if err := s.repo.DecrementReserved(txCtx, reservation.SlotID, reservation.Units); err != nil {
				return fmt.Errorf("%w: Release - decrement reserved: %v", ErrInternal, err)
			}

			s.logger.Info("Release: reservation=%s slot=%d released", tokenID, reservation.SlotID)
			return nil
		})
	})
}
