package orders

import "errors"

var (
	// ErrOrderNotFound возвращается, когда заказ не найден
	ErrOrderNotFound = errors.New("orders.service: order not found")

	// ErrAccessDenied возвращается, когда заказ не принадлежит инициатору
	ErrAccessDenied = errors.New("orders.service: access denied")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("orders.service: internal error")
)
