package cancel_booking

import "time"

// Request модель запроса на отмену бронирования
type Request struct {
	BookingID int64   // ID бронирования
	Reason    *string // Причина отмены (опционально)
}

// Response модель ответа с отменённым бронированием
type Response struct {
	ID          int64     // ID бронирования
	Code        string    // Код бронирования
	OfferingID  int64     // ID предложения
	State       string    // Всегда cancelled
	Reason      *string   // Причина отмены
	CancelledAt time.Time // Время отмены
}
