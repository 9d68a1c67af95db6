package domain

import "time"

// BookingState represents the lifecycle state of a booking
type BookingState string

const (
	BookingDraft      BookingState = "draft"
	BookingConfirmed  BookingState = "confirmed"
	BookingWaitlisted BookingState = "waitlisted"
	BookingDone       BookingState = "done"
	BookingCancelled  BookingState = "cancelled"
)

// Booking represents one customer's reservation against one offering.
// The booking references its offering by ID; the offering holds no
// reference back, bookings are always looked up by offering_id.
type Booking struct {
	ID         int64
	Code       string // Human-readable sequence code, e.g. "BOOK/2026/0001"
	OfferingID int64
	CustomerID int64

	RequestedDate time.Time
	State         BookingState

	// Set iff State == BookingWaitlisted; positions of one offering's
	// waitlisted bookings form a contiguous sequence 1..N
	WaitlistPosition *int

	// Amount is frozen when the allocator assigns the booking a state
	// and is never rewritten afterwards
	Amount float64

	Notes *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking is not cancelled. At most one
// active booking may exist per (customer, offering) pair.
func (b *Booking) IsActive() bool {
	return b.State != BookingCancelled
}

// IsTerminal returns true if the booking reached a terminal state
func (b *Booking) IsTerminal() bool {
	return b.State == BookingDone || b.State == BookingCancelled
}

// CanBeCancelled returns true if the booking can still be cancelled
func (b *Booking) CanBeCancelled() bool {
	return !b.IsTerminal()
}

// CanBeUpdated returns true if booking attributes may still be written.
// Once the booking leaves draft any attribute write is restricted.
func (b *Booking) CanBeUpdated() bool {
	return b.State == BookingDraft
}

// CanBeMarkedDone returns true if the booking can transition to done
func (b *Booking) CanBeMarkedDone() bool {
	return b.State == BookingConfirmed
}

// IsWaitlisted returns true if the booking is queued for promotion
func (b *Booking) IsWaitlisted() bool {
	return b.State == BookingWaitlisted
}

// HoldsSeat returns true if the booking occupies one of the offering's
// seats. A done booking keeps its seat: completion never frees capacity.
func (b *Booking) HoldsSeat() bool {
	for _, s := range SeatHoldingBookingStates {
		if b.State == s {
			return true
		}
	}
	return false
}

// CustomerBookingsFilter фильтр для получения бронирований клиента
type CustomerBookingsFilter struct {
	CustomerID      int64         // Обязательный параметр
	Status          *BookingState // Фильтр по статусу (опционально)
	IncludeInactive bool          // Включать ли отменённые бронирования
	Page            int           // Номер страницы (с 1)
	PageSize        int           // Размер страницы
}

// OfferingBookingsFilter фильтр для получения бронирований предложения
type OfferingBookingsFilter struct {
	OfferingID      int64         // Обязательный параметр
	Status          *BookingState // Фильтр по статусу (опционально)
	IncludeInactive bool          // Включать ли отменённые бронирования
}
