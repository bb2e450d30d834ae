package handle_event

import "fmt"

// validateRequest валидирует входящее событие
func validateRequest(req *Request) error {
	if req.EventID == "" {
		return fmt.Errorf("%w: eventID is required", ErrInvalidInput)
	}
	if len(req.EventID) > 128 {
		return fmt.Errorf("%w: eventID is too long", ErrInvalidInput)
	}
	if req.EventType == "" {
		return fmt.Errorf("%w: eventType is required", ErrInvalidInput)
	}
	if req.OrderID <= 0 {
		return fmt.Errorf("%w: orderID must be positive", ErrInvalidInput)
	}
	return nil
}
