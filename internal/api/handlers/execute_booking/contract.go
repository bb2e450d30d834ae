package execute_booking

import (
	"context"

	executeBooking "github.com/m04kA/SMC-OrderService/internal/usecase/execute_booking"
)

type ExecuteBookingUseCase interface {
	Execute(ctx context.Context, req *executeBooking.Request, idempotencyKey string) (*executeBooking.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
