package offering

import "errors"

var (
	// ErrOfferingNotFound возвращается, когда предложение не найдено
	ErrOfferingNotFound = errors.New("offering.repository: offering not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("offering.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("offering.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("offering.repository: failed to scan row")
)
