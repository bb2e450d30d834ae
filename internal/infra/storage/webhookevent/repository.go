package webhookevent

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-OrderService/internal/domain"
	"github.com/m04kA/SMC-OrderService/pkg/dbmetrics"
	"github.com/m04kA/SMC-OrderService/pkg/psqlbuilder"
)

// Repository дедупликационное хранилище webhook-событий платежного шлюза.
// event_id уникален; событие с проставленным processed_at не обрабатывается
// повторно.
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория webhook-событий
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// InsertIfAbsent записывает событие, если его еще не было.
// Возвращает true, если запись создана сейчас; false - если событие с таким
// event_id уже зарегистрировано (ON CONFLICT DO NOTHING).
func (r *Repository) InsertIfAbsent(ctx context.Context, event *domain.WebhookEvent) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	payloadJSON, err := json.Marshal(event.Payload)
	if err != nil {
		return false, fmt.Errorf("%w: InsertIfAbsent - marshal payload: %v", ErrBuildQuery, err)
	}

	query, args, err := psqlbuilder.Insert("webhook_events").
		Columns("event_id", "event_type", "order_id", "payload").
		Values(event.EventID, event.EventType, event.OrderID, payloadJSON).
		Suffix("ON CONFLICT (event_id) DO NOTHING").
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: InsertIfAbsent - build insert query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: InsertIfAbsent - execute insert: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: InsertIfAbsent - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected == 1, nil
}

// GetByEventID получает событие по его идентификатору
func (r *Repository) GetByEventID(ctx context.Context, eventID string) (*domain.WebhookEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"event_id",
		"event_type",
		"order_id",
		"payload",
		"received_at",
		"processed_at",
	).
		From("webhook_events").
		Where(squirrel.Eq{"event_id": eventID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByEventID - build select query: %v", ErrBuildQuery, err)
	}

	var event domain.WebhookEvent
	var payloadJSON []byte
	var receivedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&event.EventID,
		&event.EventType,
		&event.OrderID,
		&payloadJSON,
		&receivedAt,
		&event.ProcessedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByEventID - scan event: %v", ErrScanRow, err)
	}

	if len(payloadJSON) > 0 {
		if err := json.Unmarshal(payloadJSON, &event.Payload); err != nil {
			return nil, fmt.Errorf("%w: GetByEventID - unmarshal payload: %v", ErrScanRow, err)
		}
	}

	event.ReceivedAt = receivedAt.Time
	return &event, nil
}

// MarkProcessed проставляет processed_at событию.
// Идемпотентно: повторная пометка уже обработанного события - no-op.
func (r *Repository) MarkProcessed(ctx context.Context, eventID string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("webhook_events").
		Set("processed_at", squirrel.Expr("COALESCE(processed_at, NOW())")).
		Where(squirrel.Eq{"event_id": eventID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkProcessed - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkProcessed - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: MarkProcessed - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}
