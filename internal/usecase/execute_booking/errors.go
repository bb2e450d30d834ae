package execute_booking

import "errors"

var (
	// ErrSlotNotFound возвращается, когда у провайдера нет слота под запрошенное окно
	ErrSlotNotFound = errors.New("execute_booking: no capacity slot for requested window")

	// ErrSlotFull возвращается, когда подходящий слот полностью занят
	ErrSlotFull = errors.New("execute_booking: capacity slot is full")

	// ErrWindowConflict возвращается, когда окно пересекается со слотами,
	// но ни один не вмещает его целиком
	ErrWindowConflict = errors.New("execute_booking: window conflicts with provider capacity")

	// ErrCardDeclined возвращается, когда шлюз отклонил платежный инструмент
	ErrCardDeclined = errors.New("execute_booking: payment method declined")

	// ErrGatewayUnavailable возвращается при недоступности платежного шлюза;
	// сага компенсирована, повтор с тем же idempotency key выполнит её заново
	ErrGatewayUnavailable = errors.New("execute_booking: payment gateway unavailable")

	// ErrRateLimited возвращается при исчерпании квоты вызовов шлюза
	ErrRateLimited = errors.New("execute_booking: payment gateway rate limited")

	// ErrSagaInProgress возвращается, когда сага с этим idempotency key
	// еще выполняется (конкурентный повтор запроса)
	ErrSagaInProgress = errors.New("execute_booking: saga already in progress")

	// ErrBookingFailed возвращается при повторе запроса, чья сага уже
	// завершилась детерминированным бизнес-отказом
	ErrBookingFailed = errors.New("execute_booking: booking previously failed")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("execute_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("execute_booking: internal error")
)
