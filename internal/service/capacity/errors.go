package capacity

import "errors"

var (
	// ErrSlotNotFound возвращается, когда ни один слот не пересекается
	// с запрошенным окном
	ErrSlotNotFound = errors.New("capacity.service: no slot for requested window")

	// ErrSlotFull возвращается, когда подходящий слот есть, но свободных
	// единиц в нём не осталось
	ErrSlotFull = errors.New("capacity.service: slot is full")

	// ErrConflict возвращается, когда запрошенное окно пересекается со слотами,
	// но ни один слот не вмещает его целиком
	ErrConflict = errors.New("capacity.service: window conflicts with existing slots")

	// ErrReservationNotFound возвращается при освобождении неизвестного токена
	ErrReservationNotFound = errors.New("capacity.service: reservation not found")

	// ErrInvalidWindow возвращается для пустого или перевернутого окна
	ErrInvalidWindow = errors.New("capacity.service: invalid time window")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("capacity.service: internal error")
)
