package create_booking

import (
	"time"

	"github.com/m04kA/SMC-OfferingService/internal/domain"
	createBooking "github.com/m04kA/SMC-OfferingService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	OfferingID    int64   `json:"offeringId"`
	RequestedDate string  `json:"requestedDate"` // "2026-05-01"
	Notes         *string `json:"notes,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID               int64   `json:"id"`
	Code             string  `json:"code"`
	OfferingID       int64   `json:"offeringId"`
	CustomerID       int64   `json:"customerId"`
	RequestedDate    string  `json:"requestedDate"`
	State            string  `json:"state"`
	WaitlistPosition *int    `json:"waitlistPosition,omitempty"`
	Amount           float64 `json:"amount"`
	Notes            *string `json:"notes,omitempty"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(customerID int64) (*createBooking.Request, error) {
	requestedDate, err := time.Parse(domain.DateFormat, r.RequestedDate)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		CustomerID:    customerID,
		OfferingID:    r.OfferingID,
		RequestedDate: requestedDate,
		Notes:         r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:               resp.ID,
		Code:             resp.Code,
		OfferingID:       resp.OfferingID,
		CustomerID:       resp.CustomerID,
		RequestedDate:    resp.RequestedDate.Format(domain.DateFormat),
		State:            resp.State,
		WaitlistPosition: resp.WaitlistPosition,
		Amount:           resp.Amount,
		Notes:            resp.Notes,
		CreatedAt:        resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        resp.UpdatedAt.Format(time.RFC3339),
	}
}
