package charging

import "errors"

var (
	// ErrNoPaymentMethod возвращается при попытке списания с заказа
	// без зарегистрированного платежного метода
	ErrNoPaymentMethod = errors.New("charging.service: order has no payment method")

	// ErrNoQuote возвращается при попытке списания до выставления котировки
	ErrNoQuote = errors.New("charging.service: order has no quoted amount")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("charging.service: internal error")
)
