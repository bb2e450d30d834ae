package sagarun

import "errors"

var (
	// ErrRunNotFound возвращается, когда запись саги не найдена
	ErrRunNotFound = errors.New("sagarun.repository: saga run not found")

	// ErrDuplicateKey возвращается при попытке создать вторую сагу
	// с тем же idempotency key
	ErrDuplicateKey = errors.New("sagarun.repository: duplicate idempotency key")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("sagarun.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("sagarun.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("sagarun.repository: failed to scan row")
)
