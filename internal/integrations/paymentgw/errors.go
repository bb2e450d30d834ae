package paymentgw

import "errors"

var (
	// ErrCardDeclined возвращается, когда шлюз отклонил платежный инструмент
	ErrCardDeclined = errors.New("paymentgw client: card declined")

	// ErrGatewayUnavailable возвращается при недоступности шлюза
	// (сетевые ошибки, 5xx, открытый circuit breaker)
	ErrGatewayUnavailable = errors.New("paymentgw client: gateway unavailable")

	// ErrRateLimited возвращается при исчерпании исходящей квоты вызовов
	ErrRateLimited = errors.New("paymentgw client: rate limited")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("paymentgw client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе шлюза
	ErrInvalidResponse = errors.New("paymentgw client: invalid response")
)
