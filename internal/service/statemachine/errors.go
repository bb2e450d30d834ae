package statemachine

import "errors"

var (
	// ErrInvalidTransition возвращается, когда действие не разрешено
	// из текущего статуса для данного типа услуги
	ErrInvalidTransition = errors.New("statemachine: invalid transition")

	// ErrUnauthorized возвращается, когда роль не имеет права на действие
	ErrUnauthorized = errors.New("statemachine: actor role is not allowed to perform action")

	// ErrVersionConflict возвращается, когда заказ изменился между чтением
	// и записью; вызывающий код перечитывает заказ и повторяет операцию
	ErrVersionConflict = errors.New("statemachine: order version conflict")

	// ErrUnknownServiceType возвращается для типа услуги без таблицы переходов
	ErrUnknownServiceType = errors.New("statemachine: unknown service type")

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("statemachine: internal error")
)
