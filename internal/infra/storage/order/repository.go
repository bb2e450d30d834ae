package order

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-OrderService/internal/domain"
	"github.com/m04kA/SMC-OrderService/pkg/dbmetrics"
	"github.com/m04kA/SMC-OrderService/pkg/psqlbuilder"
)

var orderColumns = []string{
	"id",
	"version",
	"customer_ref",
	"provider_id",
	"service_type",
	"status",
	"window_start",
	"window_end",
	"estimate_amount",
	"quoted_amount",
	"payment_method_ref",
	"payment_customer_ref",
	"setup_confirmation_id",
	"card_validated",
	"reservation_id",
	"grace_expires_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий заказов.
// Все мутации идут через compare-and-swap по колонке version: запись
// отклоняется, если version изменился с момента чтения (ErrVersionConflict).
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория заказов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает черновик заказа (version = 1)
func (r *Repository) Create(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("orders").
		Columns(
			"version",
			"customer_ref",
			"provider_id",
			"service_type",
			"status",
			"window_start",
			"window_end",
			"estimate_amount",
			"quoted_amount",
			"payment_method_ref",
			"payment_customer_ref",
			"setup_confirmation_id",
			"card_validated",
			"reservation_id",
			"grace_expires_at",
		).
		Values(
			1,
			o.CustomerRef,
			o.ProviderID,
			o.ServiceType,
			o.Status,
			o.WindowStart,
			o.WindowEnd,
			o.EstimateAmount,
			o.QuotedAmount,
			o.PaymentMethodRef,
			o.PaymentCustomerRef,
			o.SetupConfirmationID,
			o.CardValidated,
			o.ReservationID,
			o.GraceExpiresAt,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&o.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	o.Version = 1
	o.CreatedAt = createdAt.Time
	o.UpdatedAt = updatedAt.Time

	return o, nil
}

// GetByID получает заказ по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(orderColumns...).
		From("orders").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanOrder(executor.QueryRowContext(ctx, query, args...), "GetByID")
}

// GetByCustomer получает заказы клиента, опционально фильтруя по статусу
func (r *Repository) GetByCustomer(ctx context.Context, customerRef int64, status *domain.OrderStatus) ([]*domain.Order, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(orderColumns...).
		From("orders").
		Where(squirrel.Eq{"customer_ref": customerRef}).
		OrderBy("window_start DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomer - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomer - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanOrders(rows)
}

// GetByProviderWithFilter получает заказы провайдера с фильтрацией по статусу и окну
func (r *Repository) GetByProviderWithFilter(ctx context.Context, filter domain.ProviderOrdersFilter) ([]*domain.Order, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(orderColumns...).
		From("orders").
		Where(squirrel.Eq{"provider_id": filter.ProviderID}).
		OrderBy("window_start ASC")

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeTerminal {
		terminalStatusStrings := make([]string, len(domain.TerminalStatuses))
		for i, s := range domain.TerminalStatuses {
			terminalStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": terminalStatusStrings})
	}

	if filter.WindowFrom != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"window_start": *filter.WindowFrom})
	}
	if filter.WindowTo != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"window_start": *filter.WindowTo})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanOrders(rows)
}

// GetExpiredGraceOrders получает заказы в payment_failed, чей grace-период истек.
// Используется фоновым воркером.
func (r *Repository) GetExpiredGraceOrders(ctx context.Context, limit int) ([]*domain.Order, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(orderColumns...).
		From("orders").
		Where(squirrel.Eq{"status": domain.StatusPaymentFailed}).
		Where(squirrel.Expr("grace_expires_at IS NOT NULL AND grace_expires_at <= NOW()")).
		OrderBy("grace_expires_at ASC").
		Limit(uint64(limit)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetExpiredGraceOrders - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetExpiredGraceOrders - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanOrders(rows)
}

// UpdateWithVersion записывает заказ через compare-and-swap по version.
// В запись попадают все изменяемые поля; version инкрементируется атомарно.
// Если строка с ожидаемым version не найдена - либо заказ удален
// (ErrOrderNotFound), либо версия ушла вперед (ErrVersionConflict).
func (r *Repository) UpdateWithVersion(ctx context.Context, o *domain.Order) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("orders").
		Set("version", squirrel.Expr("version + 1")).
		Set("status", o.Status).
		Set("quoted_amount", o.QuotedAmount).
		Set("payment_method_ref", o.PaymentMethodRef).
		Set("payment_customer_ref", o.PaymentCustomerRef).
		Set("setup_confirmation_id", o.SetupConfirmationID).
		Set("card_validated", o.CardValidated).
		Set("grace_expires_at", o.GraceExpiresAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": o.ID, "version": o.Version}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateWithVersion - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateWithVersion - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateWithVersion - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		// Различаем исчезнувший заказ и ушедшую вперед версию
		if _, err := r.GetByID(ctx, o.ID); err != nil {
			return ErrOrderNotFound
		}
		return ErrVersionConflict
	}

	o.Version++
	return nil
}

// Delete физически удаляет заказ.
// Используется только компенсацией саги для черновиков, не доживших до
// подтверждения; подтвержденные заказы не удаляются никогда.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("orders").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// AppendEvent добавляет запись в append-only журнал переходов заказа.
// Вызывается в одной транзакции с UpdateWithVersion.
func (r *Repository) AppendEvent(ctx context.Context, event *domain.OrderEvent) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("order_events").
		Columns("order_id", "from_status", "to_status", "action", "actor_role", "metadata").
		Values(event.OrderID, event.FromStatus, event.ToStatus, event.Action, event.ActorRole, event.Metadata).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: AppendEvent - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&event.ID, &createdAt); err != nil {
		return fmt.Errorf("%w: AppendEvent - execute insert: %v", ErrExecQuery, err)
	}

	event.CreatedAt = createdAt.Time
	return nil
}

// ListEvents возвращает журнал переходов заказа в порядке добавления
func (r *Repository) ListEvents(ctx context.Context, orderID int64) ([]*domain.OrderEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"order_id",
		"from_status",
		"to_status",
		"action",
		"actor_role",
		"metadata",
		"created_at",
	).
		From("order_events").
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListEvents - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListEvents - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	events := make([]*domain.OrderEvent, 0)
	for rows.Next() {
		var event domain.OrderEvent
		var createdAt sql.NullTime

		err := rows.Scan(
			&event.ID,
			&event.OrderID,
			&event.FromStatus,
			&event.ToStatus,
			&event.Action,
			&event.ActorRole,
			&event.Metadata,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListEvents - scan row: %v", ErrScanRow, err)
		}

		event.CreatedAt = createdAt.Time
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListEvents - rows error: %v", ErrScanRow, err)
	}

	return events, nil
}

// scanOrder сканирует одну строку заказа
func (r *Repository) scanOrder(row *sql.Row, method string) (*domain.Order, error) {
	var o domain.Order
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&o.ID,
		&o.Version,
		&o.CustomerRef,
		&o.ProviderID,
		&o.ServiceType,
		&o.Status,
		&o.WindowStart,
		&o.WindowEnd,
		&o.EstimateAmount,
		&o.QuotedAmount,
		&o.PaymentMethodRef,
		&o.PaymentCustomerRef,
		&o.SetupConfirmationID,
		&o.CardValidated,
		&o.ReservationID,
		&o.GraceExpiresAt,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan order: %v", ErrScanRow, method, err)
	}

	o.CreatedAt = createdAt.Time
	o.UpdatedAt = updatedAt.Time

	return &o, nil
}

// scanOrders сканирует результаты запроса в слайс заказов
func (r *Repository) scanOrders(rows *sql.Rows) ([]*domain.Order, error) {
	orders := make([]*domain.Order, 0)

	for rows.Next() {
		var o domain.Order
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&o.ID,
			&o.Version,
			&o.CustomerRef,
			&o.ProviderID,
			&o.ServiceType,
			&o.Status,
			&o.WindowStart,
			&o.WindowEnd,
			&o.EstimateAmount,
			&o.QuotedAmount,
			&o.PaymentMethodRef,
			&o.PaymentCustomerRef,
			&o.SetupConfirmationID,
			&o.CardValidated,
			&o.ReservationID,
			&o.GraceExpiresAt,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanOrders - scan row: %v", ErrScanRow, err)
		}

		o.CreatedAt = createdAt.Time
		o.UpdatedAt = updatedAt.Time

		orders = append(orders, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanOrders - rows error: %v", ErrScanRow, err)
	}

	return orders, nil
}
