package handle_event

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("handle_event: invalid input data")

	// ErrInternal возвращается при временных ошибках обработки: событие
	// записано, но не помечено обработанным, шлюз доставит его повторно
	ErrInternal = errors.New("handle_event: internal error")
)
