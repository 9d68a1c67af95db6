package offerings

import "errors"

var (
	// ErrOfferingNotFound возвращается, когда предложение не найдено
	ErrOfferingNotFound = errors.New("offering not found")

	// ErrInvalidState возвращается при недопустимом переходе состояния предложения
	ErrInvalidState = errors.New("invalid offering state for this operation")

	// ErrMissingRequiredData возвращается при публикации предложения
	// без обязательных данных (цена, категория)
	ErrMissingRequiredData = errors.New("offering is missing required data")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("offerings: internal error")
)
