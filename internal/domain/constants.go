package domain

// Pagination defaults for booking listings
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Business validation constants
const (
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxNameLength               = 255
	MinDiscountPercent          = 0
	MaxDiscountPercent          = 100
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Booking sequence code settings.
// Codes are year-scoped: BOOK/2026/0001, BOOK/2026/0002, ...
const (
	BookingSequenceName    = "service.booking"
	BookingSequencePrefix  = "BOOK"
	BookingSequencePadding = 4
)

// InactiveBookingStates список статусов, скрываемых из выдачи по умолчанию
var InactiveBookingStates = []BookingState{
	BookingCancelled,
}

// SeatHoldingBookingStates список статусов, удерживающих место предложения.
// done остаётся в списке: завершение бронирования место не освобождает
// и очередь не продвигает, место выходит из оборота только через отмену
var SeatHoldingBookingStates = []BookingState{
	BookingConfirmed,
	BookingDone,
}

// NonTerminalBookingStates список статусов, отменяемых каскадом
// при отмене предложения
var NonTerminalBookingStates = []BookingState{
	BookingDraft,
	BookingConfirmed,
	BookingWaitlisted,
}
