package domain

import "time"

// SagaStatus статус выполнения саги бронирования
type SagaStatus string

const (
	SagaInProgress  SagaStatus = "in_progress"
	SagaSuspended   SagaStatus = "suspended" // ждет асинхронного подтверждения шлюза (3-D Secure)
	SagaSucceeded   SagaStatus = "succeeded"
	SagaFailed      SagaStatus = "failed"
	SagaCompensated SagaStatus = "compensated"
)

// IsTerminal returns true for statuses after which the saga never resumes
func (s SagaStatus) IsTerminal() bool {
	return s == SagaSucceeded || s == SagaFailed || s == SagaCompensated
}

// Имена шагов саги. Пишутся в журнал SagaRun в порядке выполнения,
// компенсация идет по журналу в обратном порядке.
const (
	StepReserveCapacity = "reserve_capacity"
	StepCreateOrder     = "create_order"
	StepRegisterPayment = "register_payment"
	StepFinalizeOrder   = "finalize_order"
)

// SagaStep запись журнала о завершенном шаге
type SagaStep struct {
	Name        string    `json:"name"`
	Ref         string    `json:"ref"` // идентификатор созданного ресурса: токен брони, id заказа, payment_method_ref
	CompletedAt time.Time `json:"completed_at"`
}

// SagaRun аудит и идемпотентность выполнения саги бронирования.
// IdempotencyKey уникален: повторный запрос с тем же ключом возвращает
// записанный результат вместо повторного выполнения побочных эффектов.
type SagaRun struct {
	SagaID         string
	IdempotencyKey string
	OrderID        *int64
	Status         SagaStatus
	Steps          []SagaStep
	FailureReason  *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// StepRef возвращает Ref завершенного шага по имени
func (r *SagaRun) StepRef(name string) (string, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s.Ref, true
		}
	}
	return "", false
}

// IsStale сообщает, что незавершенная сага висит дольше ttl и считается брошенной
func (r *SagaRun) IsStale(now time.Time, ttl time.Duration) bool {
	return !r.Status.IsTerminal() && now.Sub(r.UpdatedAt) > ttl
}
