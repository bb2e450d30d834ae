package transition_order

import "errors"

var (
	// ErrOrderNotFound возвращается, когда заказ не найден
	ErrOrderNotFound = errors.New("transition_order: order not found")

	// ErrInvalidTransition возвращается, когда действие не разрешено
	// из текущего статуса заказа
	ErrInvalidTransition = errors.New("transition_order: action not allowed from current status")

	// ErrUnauthorized возвращается, когда инициатор не вправе выполнить действие
	ErrUnauthorized = errors.New("transition_order: actor is not allowed to perform action")

	// ErrVersionConflict возвращается при конкурентном изменении заказа
	ErrVersionConflict = errors.New("transition_order: order was modified concurrently")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("transition_order: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("transition_order: internal error")
)
