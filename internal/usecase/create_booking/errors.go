package create_booking

import "errors"

var (
	// ErrOfferingNotFound возвращается, когда предложение не найдено
	ErrOfferingNotFound = errors.New("create_booking: offering not found")

	// ErrOfferingNotAcceptingBookings возвращается, когда предложение
	// не опубликовано или его старт уже наступил
	ErrOfferingNotAcceptingBookings = errors.New("create_booking: offering is not accepting bookings")

	// ErrDuplicateBooking возвращается, когда у клиента уже есть
	// неотменённое бронирование на это предложение
	ErrDuplicateBooking = errors.New("create_booking: customer already has an active booking for this offering")

	// ErrDateOutsideSchedule возвращается, когда запрошенная дата
	// позже старта предложения
	ErrDateOutsideSchedule = errors.New("create_booking: requested date is after offering start")

	// ErrTransientConflict возвращается, когда конкурирующие транзакции
	// исчерпали повторы; запрос можно безопасно повторить
	ErrTransientConflict = errors.New("create_booking: transient conflict, please retry")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
