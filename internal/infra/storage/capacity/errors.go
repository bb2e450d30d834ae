package capacity

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот ёмкости не найден
	ErrSlotNotFound = errors.New("capacity.repository: slot not found")

	// ErrSlotFull возвращается, когда в слоте не осталось свободных единиц
	ErrSlotFull = errors.New("capacity.repository: slot is full")

	// ErrReservationNotFound возвращается, когда токен резервирования не найден
	ErrReservationNotFound = errors.New("capacity.repository: reservation not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("capacity.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("capacity.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("capacity.repository: failed to scan row")
)
