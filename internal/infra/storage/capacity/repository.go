package capacity

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-OrderService/internal/domain"
	"github.com/m04kA/SMC-OrderService/pkg/dbmetrics"
	"github.com/m04kA/SMC-OrderService/pkg/psqlbuilder"
)

// Repository репозиторий слотов ёмкости и токенов резервирования
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория ёмкости
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// FindSlotsForWindow возвращает слоты провайдера, чьи окна пересекаются
// с запрошенным окном (полуинтервалы: a < d AND c < b).
// Под транзакцией строки блокируются FOR UPDATE - это единственная точка
// сериализации конкурентных резервирований.
func (r *Repository) FindSlotsForWindow(
	ctx context.Context,
	providerID int64,
	serviceType domain.ServiceType,
	window domain.TimeWindow,
) ([]*domain.CapacitySlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"provider_id",
		"service_type",
		"window_start",
		"window_end",
		"max_units",
		"reserved_units",
		"created_at",
		"updated_at",
	).
		From("capacity_slots").
		Where(squirrel.Eq{"provider_id": providerID, "service_type": serviceType}).
		Where(squirrel.Lt{"window_start": window.End}).
		Where(squirrel.Gt{"window_end": window.Start}).
		OrderBy("window_start ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindSlotsForWindow - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindSlotsForWindow - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanSlots(rows)
}

// GetSlotByID получает слот по ID
func (r *Repository) GetSlotByID(ctx context.Context, id int64) (*domain.CapacitySlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"provider_id",
		"service_type",
		"window_start",
		"window_end",
		"max_units",
		"reserved_units",
		"created_at",
		"updated_at",
	).
		From("capacity_slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetSlotByID - build select query: %v", ErrBuildQuery, err)
	}

	var slot domain.CapacitySlot
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&slot.ID,
		&slot.ProviderID,
		&slot.ServiceType,
		&slot.WindowStart,
		&slot.WindowEnd,
		&slot.MaxUnits,
		&slot.ReservedUnits,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetSlotByID - scan slot: %v", ErrScanRow, err)
	}

	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time

	return &slot, nil
}

// IncrementReserved увеличивает reserved_units слота на units.
// Инвариант reserved_units <= max_units охраняется условием в WHERE:
// если свободных единиц не хватает, вернется ErrSlotFull без изменения строки.
func (r *Repository) IncrementReserved(ctx context.Context, slotID int64, units int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("capacity_slots").
		Set("reserved_units", squirrel.Expr("reserved_units + ?", units)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": slotID}).
		Where(squirrel.Expr("reserved_units + ? <= max_units", units)).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: IncrementReserved - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: IncrementReserved - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: IncrementReserved - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSlotFull
	}

	return nil
}

// DecrementReserved уменьшает reserved_units слота на units с полом в ноль
func (r *Repository) DecrementReserved(ctx context.Context, slotID int64, units int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("capacity_slots").
		Set("reserved_units", squirrel.Expr("GREATEST(reserved_units - ?, 0)", units)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": slotID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DecrementReserved - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DecrementReserved - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DecrementReserved - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSlotNotFound
	}

	return nil
}

// CreateReservation сохраняет токен резервирования
func (r *Repository) CreateReservation(ctx context.Context, token *domain.ReservationToken) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("capacity_reservations").
		Columns("id", "slot_id", "provider_id", "units", "released").
		Values(token.ID, token.SlotID, token.ProviderID, token.Units, token.Released).
		Suffix("RETURNING created_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: CreateReservation - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&createdAt); err != nil {
		return fmt.Errorf("%w: CreateReservation - execute insert: %v", ErrExecQuery, err)
	}

	token.CreatedAt = createdAt.Time
	return nil
}

// GetReservation получает токен резервирования по ID
func (r *Repository) GetReservation(ctx context.Context, id string) (*domain.ReservationToken, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"slot_id",
		"provider_id",
		"units",
		"released",
		"created_at",
	).
		From("capacity_reservations").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetReservation - build select query: %v", ErrBuildQuery, err)
	}

	var token domain.ReservationToken
	var createdAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&token.ID,
		&token.SlotID,
		&token.ProviderID,
		&token.Units,
		&token.Released,
		&createdAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetReservation - scan reservation: %v", ErrScanRow, err)
	}

	token.CreatedAt = createdAt.Time
	return &token, nil
}

// MarkReleased помечает токен освобожденным.
// Возвращает true, если пометка произошла именно сейчас: повторный вызов
// вернет false, и вызывающий код не тронет счетчик слота второй раз.
func (r *Repository) MarkReleased(ctx context.Context, id string) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("capacity_reservations").
		Set("released", true).
		Where(squirrel.Eq{"id": id, "released": false}).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: MarkReleased - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: MarkReleased - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: MarkReleased - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected == 1, nil
}

// scanSlots сканирует результаты запроса в слайс слотов
func (r *Repository) scanSlots(rows *sql.Rows) ([]*domain.CapacitySlot, error) {
	slots := make([]*domain.CapacitySlot, 0)

	for rows.Next() {
		var slot domain.CapacitySlot
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&slot.ID,
			&slot.ProviderID,
			&slot.ServiceType,
			&slot.WindowStart,
			&slot.WindowEnd,
			&slot.MaxUnits,
			&slot.ReservedUnits,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanSlots - scan row: %v", ErrScanRow, err)
		}

		slot.CreatedAt = createdAt.Time
		slot.UpdatedAt = updatedAt.Time

		slots = append(slots, &slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanSlots - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}
