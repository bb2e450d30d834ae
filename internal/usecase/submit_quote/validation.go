package submit_quote

import (
	"fmt"

	"github.com/m04kA/SMC-OrderService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.OrderID <= 0 {
		return fmt.Errorf("%w: orderID must be positive", ErrInvalidInput)
	}

	if req.ActorID <= 0 {
		return fmt.Errorf("%w: actorID must be positive", ErrInvalidInput)
	}

	switch req.Role {
	case domain.RolePartner, domain.RoleAdmin:
	default:
		return fmt.Errorf("%w: role %q cannot submit quotes", ErrUnauthorized, req.Role)
	}

	if req.QuotedAmount < domain.MinEstimateAmount || req.QuotedAmount > domain.MaxEstimateAmount {
		return fmt.Errorf("%w: quoted amount out of range", ErrInvalidInput)
	}

	return nil
}
