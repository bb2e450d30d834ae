package transition_order

import (
	"fmt"

	"github.com/m04kA/SMC-OrderService/internal/domain"
)

// clientActions действия, доступные через публичный API. Системные действия
// (confirm_setup, start_charge, charge_succeeded и т.п.) выполняются только
// сагой, сервисом списаний и обработчиком webhook-событий.
var clientActions = map[domain.Action]struct{}{
	domain.ActionStartRoute:     {},
	domain.ActionBeginService:   {},
	domain.ActionApproveQuote:   {},
	domain.ActionRetryCharge:    {},
	domain.ActionCancel:         {},
	domain.ActionOpenDispute:    {},
	domain.ActionResolveDispute: {},
	domain.ActionRefundDispute:  {},
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.OrderID <= 0 {
		return fmt.Errorf("%w: orderID must be positive", ErrInvalidInput)
	}

	if req.ActorID <= 0 {
		return fmt.Errorf("%w: actorID must be positive", ErrInvalidInput)
	}

	switch req.Role {
	case domain.RoleCustomer, domain.RolePartner, domain.RoleAdmin:
	default:
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, req.Role)
	}

	if _, ok := clientActions[req.Action]; !ok {
		return fmt.Errorf("%w: action %q is not available via API", ErrInvalidInput, req.Action)
	}

	return nil
}
