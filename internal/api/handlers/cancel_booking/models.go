package cancel_booking

import (
	"time"

	cancelBooking "github.com/m04kA/SMC-OfferingService/internal/usecase/cancel_booking"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// CancelBookingResponse HTTP response model
type CancelBookingResponse struct {
	ID          int64   `json:"id"`
	Code        string  `json:"code"`
	OfferingID  int64   `json:"offeringId"`
	State       string  `json:"state"`
	Reason      *string `json:"reason,omitempty"`
	CancelledAt string  `json:"cancelledAt"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelBooking.Response) *CancelBookingResponse {
	return &CancelBookingResponse{
		ID:          resp.ID,
		Code:        resp.Code,
		OfferingID:  resp.OfferingID,
		State:       resp.State,
		Reason:      resp.Reason,
		CancelledAt: resp.CancelledAt.Format(time.RFC3339),
	}
}
