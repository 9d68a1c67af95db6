package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrOfferingNotFound возвращается, когда предложение бронирования не найдено
	ErrOfferingNotFound = errors.New("offering not found")

	// ErrInvalidStateTransition возвращается при недопустимом переходе состояния
	ErrInvalidStateTransition = errors.New("invalid booking state for this operation")

	// ErrRestrictedWrite возвращается при попытке изменить атрибуты
	// бронирования после выхода из draft
	ErrRestrictedWrite = errors.New("booking attributes are read-only in this state")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("bookings: internal error")
)
