package execute_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-OrderService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request, now time.Time) error {
	if req.CustomerRef <= 0 {
		return fmt.Errorf("%w: customerRef must be positive", ErrInvalidInput)
	}

	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}

	switch req.ServiceType {
	case domain.ServiceCleaning, domain.ServiceWashDeliver:
	default:
		return fmt.Errorf("%w: unknown service type %q", ErrInvalidInput, req.ServiceType)
	}

	if !req.Window().IsValid() {
		return fmt.Errorf("%w: window end must be after start", ErrInvalidInput)
	}

	if req.WindowEnd.Sub(req.WindowStart) > domain.MaxWindowHours*time.Hour {
		return fmt.Errorf("%w: window exceeds %d hours", ErrInvalidInput, domain.MaxWindowHours)
	}

	if req.WindowStart.Before(now) {
		return fmt.Errorf("%w: window starts in the past", ErrInvalidInput)
	}

	if req.EstimateAmount < domain.MinEstimateAmount || req.EstimateAmount > domain.MaxEstimateAmount {
		return fmt.Errorf("%w: estimate amount out of range", ErrInvalidInput)
	}

	if req.InstrumentRef == "" {
		return fmt.Errorf("%w: instrumentRef is required", ErrInvalidInput)
	}

	return nil
}

// validateIdempotencyKey проверяет ключ идемпотентности
func validateIdempotencyKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: idempotency key is required", ErrInvalidInput)
	}
	if len(key) > 128 {
		return fmt.Errorf("%w: idempotency key is too long", ErrInvalidInput)
	}
	return nil
}
