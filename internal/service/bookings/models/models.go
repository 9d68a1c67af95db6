package models

import (
	"time"

	"github.com/m04kA/SMC-OfferingService/internal/domain"
)

// Request модели

// UpdateBookingRequest запрос на изменение черновика бронирования.
// Меняются только дата и заметки; сумма и код неизменяемы.
type UpdateBookingRequest struct {
	RequestedDate string  `json:"requestedDate"` // YYYY-MM-DD
	Notes         *string `json:"notes,omitempty"`
}

// GetCustomerBookingsRequest запрос на получение бронирований клиента
type GetCustomerBookingsRequest struct {
	CustomerID      int64
	Status          *string
	IncludeInactive bool
	Page            int
	PageSize        int
}

// GetOfferingBookingsRequest запрос на получение бронирований предложения
type GetOfferingBookingsRequest struct {
	OfferingID      int64
	Status          *string
	IncludeInactive bool
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID                 int64      `json:"id"`
	Code               string     `json:"code"`
	OfferingID         int64      `json:"offeringId"`
	CustomerID         int64      `json:"customerId"`
	RequestedDate      string     `json:"requestedDate"` // YYYY-MM-DD
	State              string     `json:"state"`
	WaitlistPosition   *int       `json:"waitlistPosition,omitempty"`
	Amount             float64    `json:"amount"`
	Notes              *string    `json:"notes,omitempty"`
	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// Pagination метаданные страницы выдачи
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// BookingListResponse ответ со списком бронирований клиента
type BookingListResponse struct {
	Bookings   []BookingResponse `json:"bookings"`
	Pagination Pagination        `json:"pagination"`
}

// OfferingBookingListResponse ответ со списком бронирований предложения
type OfferingBookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	return &BookingResponse{
		ID:                 b.ID,
		Code:               b.Code,
		OfferingID:         b.OfferingID,
		CustomerID:         b.CustomerID,
		RequestedDate:      b.RequestedDate.Format(domain.DateFormat),
		State:              string(b.State),
		WaitlistPosition:   b.WaitlistPosition,
		Amount:             b.Amount,
		Notes:              b.Notes,
		CancellationReason: b.CancellationReason,
		CancelledAt:        b.CancelledAt,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, *FromDomainBooking(b))
	}
	return out
}

// ToDomainBookingState конвертирует строку статуса в domain тип
func ToDomainBookingState(s string) (domain.BookingState, bool) {
	switch domain.BookingState(s) {
	case domain.BookingDraft, domain.BookingConfirmed, domain.BookingWaitlisted,
		domain.BookingDone, domain.BookingCancelled:
		return domain.BookingState(s), true
	default:
		return "", false
	}
}
