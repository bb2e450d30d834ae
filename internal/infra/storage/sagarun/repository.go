package sagarun

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-OrderService/internal/domain"
	"github.com/m04kA/SMC-OrderService/pkg/dbmetrics"
	"github.com/m04kA/SMC-OrderService/pkg/psqlbuilder"
)

const pgUniqueViolation = "23505"

// Repository репозиторий записей саги (идемпотентность + журнал шагов)
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория саг
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает запись саги.
// Уникальный индекс по idempotency_key гарантирует, что конкурентные запросы
// с одним ключом создадут ровно одну запись; проигравший получит ErrDuplicateKey.
func (r *Repository) Create(ctx context.Context, run *domain.SagaRun) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	stepsJSON, err := json.Marshal(run.Steps)
	if err != nil {
		return fmt.Errorf("%w: Create - marshal steps: %v", ErrBuildQuery, err)
	}

	query, args, err := psqlbuilder.Insert("saga_runs").
		Columns("saga_id", "idempotency_key", "order_id", "status", "steps", "failure_reason").
		Values(run.SagaID, run.IdempotencyKey, run.OrderID, run.Status, stepsJSON, run.FailureReason).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == pgUniqueViolation {
			return ErrDuplicateKey
		}
		return fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	run.CreatedAt = createdAt.Time
	run.UpdatedAt = updatedAt.Time
	return nil
}

// GetByIdempotencyKey получает запись саги по ключу идемпотентности
func (r *Repository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.SagaRun, error) {
	return r.getByColumn(ctx, "idempotency_key", key, "GetByIdempotencyKey")
}

// GetBySagaID получает запись саги по её идентификатору
func (r *Repository) GetBySagaID(ctx context.Context, sagaID string) (*domain.SagaRun, error) {
	return r.getByColumn(ctx, "saga_id", sagaID, "GetBySagaID")
}

// GetByOrderID получает запись саги, породившей заказ
func (r *Repository) GetByOrderID(ctx context.Context, orderID int64) (*domain.SagaRun, error) {
	return r.getByColumn(ctx, "order_id", orderID, "GetByOrderID")
}

func (r *Repository) getByColumn(ctx context.Context, column string, value interface{}, method string) (*domain.SagaRun, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"saga_id",
		"idempotency_key",
		"order_id",
		"status",
		"steps",
		"failure_reason",
		"created_at",
		"updated_at",
	).
		From("saga_runs").
		Where(squirrel.Eq{column: value}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, method, err)
	}

	var run domain.SagaRun
	var stepsJSON []byte
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&run.SagaID,
		&run.IdempotencyKey,
		&run.OrderID,
		&run.Status,
		&stepsJSON,
		&run.FailureReason,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan saga run: %v", ErrScanRow, method, err)
	}

	if err := json.Unmarshal(stepsJSON, &run.Steps); err != nil {
		return nil, fmt.Errorf("%w: %s - unmarshal steps: %v", ErrScanRow, method, err)
	}

	run.CreatedAt = createdAt.Time
	run.UpdatedAt = updatedAt.Time
	return &run, nil
}

// AppendStep дописывает завершенный шаг в журнал саги
func (r *Repository) AppendStep(ctx context.Context, sagaID string, step domain.SagaStep) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	stepJSON, err := json.Marshal(step)
	if err != nil {
		return fmt.Errorf("%w: AppendStep - marshal step: %v", ErrBuildQuery, err)
	}

	query, args, err := psqlbuilder.Update("saga_runs").
		Set("steps", squirrel.Expr("steps || ?::jsonb", stepJSON)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"saga_id": sagaID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: AppendStep - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: AppendStep - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: AppendStep - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrRunNotFound
	}

	return nil
}

// Reset возвращает запись саги в исходное состояние для повторного выполнения
// с тем же idempotency key: журнал шагов очищается, заказ и причина провала
// сбрасываются. Вызывается только после полной компенсации записанных шагов.
func (r *Repository) Reset(ctx context.Context, sagaID string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("saga_runs").
		Set("status", domain.SagaInProgress).
		Set("steps", squirrel.Expr("'[]'::jsonb")).
		Set("order_id", nil).
		Set("failure_reason", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"saga_id": sagaID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Reset - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Reset - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Reset - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrRunNotFound
	}

	return nil
}

// SetStatus переводит сагу в новый статус, опционально фиксируя заказ и причину провала
func (r *Repository) SetStatus(ctx context.Context, sagaID string, status domain.SagaStatus, orderID *int64, failureReason *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("saga_runs").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"saga_id": sagaID})

	if orderID != nil {
		updateBuilder = updateBuilder.Set("order_id", *orderID)
	}
	if failureReason != nil {
		updateBuilder = updateBuilder.Set("failure_reason", *failureReason)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrRunNotFound
	}

	return nil
}
