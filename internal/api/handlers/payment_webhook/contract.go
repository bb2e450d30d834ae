package payment_webhook

import (
	"context"

	handleEvent "github.com/m04kA/SMC-OrderService/internal/usecase/handle_event"
)

type HandleEventUseCase interface {
	Execute(ctx context.Context, req *handleEvent.Request) (*handleEvent.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
