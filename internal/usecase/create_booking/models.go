package create_booking

import "time"

// Request модель запроса на создание бронирования
type Request struct {
	CustomerID    int64     // ID клиента (из заголовка аутентификации)
	OfferingID    int64     // ID предложения
	RequestedDate time.Time // Запрошенная дата (без времени)
	Notes         *string   // Дополнительные заметки (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID               int64     // ID созданного бронирования
	Code             string    // Код бронирования, например "BOOK/2026/0001"
	OfferingID       int64     // ID предложения
	CustomerID       int64     // ID клиента
	RequestedDate    time.Time // Запрошенная дата
	State            string    // confirmed или waitlisted
	WaitlistPosition *int      // Позиция в очереди, если waitlisted
	Amount           float64   // Зафиксированная сумма
	Notes            *string   // Заметки

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}
