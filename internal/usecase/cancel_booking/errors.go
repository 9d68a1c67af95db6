package cancel_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("cancel_booking: booking not found")

	// ErrInvalidStateTransition возвращается при повторной отмене
	// или отмене завершённого бронирования
	ErrInvalidStateTransition = errors.New("cancel_booking: booking is already terminal")

	// ErrTransientConflict возвращается, когда конкурирующие транзакции
	// исчерпали повторы; запрос можно безопасно повторить
	ErrTransientConflict = errors.New("cancel_booking: transient conflict, please retry")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("cancel_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("cancel_booking: internal error")
)
