package submit_quote

import "errors"

var (
	// ErrOrderNotFound возвращается, когда заказ не найден
	ErrOrderNotFound = errors.New("submit_quote: order not found")

	// ErrQuoteAlreadySubmitted возвращается при повторной котировке:
	// котировка выставляется один раз и неизменна
	ErrQuoteAlreadySubmitted = errors.New("submit_quote: quote already submitted")

	// ErrInvalidTransition возвращается, когда заказ не в статусе,
	// допускающем выставление котировки
	ErrInvalidTransition = errors.New("submit_quote: order status does not allow quote submission")

	// ErrUnauthorized возвращается, когда инициатор не вправе котировать заказ
	ErrUnauthorized = errors.New("submit_quote: actor is not allowed to submit quote")

	// ErrVersionConflict возвращается при конкурентном изменении заказа
	ErrVersionConflict = errors.New("submit_quote: order was modified concurrently")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("submit_quote: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("submit_quote: internal error")
)
