package models

import (
	"time"

	"github.com/m04kA/SMC-OfferingService/internal/domain"
)

// Request модели

// CreateOfferingRequest запрос на создание предложения
type CreateOfferingRequest struct {
	Name              string     `json:"name"`
	Description       *string    `json:"description,omitempty"`
	Capacity          int        `json:"capacity"`
	Price             float64    `json:"price"`
	EarlyBirdPrice    *float64   `json:"earlyBirdPrice,omitempty"`
	EarlyBirdDeadline *time.Time `json:"earlyBirdDeadline,omitempty"`
	DiscountPercent   *float64   `json:"discountPercent,omitempty"`
	StartTime         time.Time  `json:"startTime"`
	Category          *string    `json:"category,omitempty"`
	Tags              []string   `json:"tags,omitempty"`
}

// UpdateOfferingRequest запрос на изменение черновика предложения
type UpdateOfferingRequest struct {
	Name              string     `json:"name"`
	Description       *string    `json:"description,omitempty"`
	Capacity          int        `json:"capacity"`
	Price             float64    `json:"price"`
	EarlyBirdPrice    *float64   `json:"earlyBirdPrice,omitempty"`
	EarlyBirdDeadline *time.Time `json:"earlyBirdDeadline,omitempty"`
	DiscountPercent   *float64   `json:"discountPercent,omitempty"`
	StartTime         time.Time  `json:"startTime"`
	Category          *string    `json:"category,omitempty"`
	Tags              []string   `json:"tags,omitempty"`
}

// CancelOfferingRequest запрос на отмену предложения
type CancelOfferingRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// ListOfferingsRequest запрос на получение списка предложений
type ListOfferingsRequest struct {
	State           *string `json:"state,omitempty"`
	Category        *string `json:"category,omitempty"`
	IncludeArchived bool    `json:"includeArchived,omitempty"`
}

// Response модели

// OfferingResponse ответ с данными предложения
type OfferingResponse struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Description       *string   `json:"description,omitempty"`
	Capacity          int       `json:"capacity"`
	Price             float64   `json:"price"`
	EarlyBirdPrice    *float64  `json:"earlyBirdPrice,omitempty"`
	EarlyBirdDeadline *string   `json:"earlyBirdDeadline,omitempty"` // ISO 8601
	DiscountPercent   *float64  `json:"discountPercent,omitempty"`
	StartTime         time.Time `json:"startTime"`
	State             string    `json:"state"`
	Category          *string   `json:"category,omitempty"`
	Tags              []string  `json:"tags,omitempty"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// OfferingListResponse ответ со списком предложений
type OfferingListResponse struct {
	Offerings []OfferingResponse `json:"offerings"`
}

// CancelOfferingResponse ответ на отмену предложения
type CancelOfferingResponse struct {
	State             string `json:"state"`
	CancelledBookings int64  `json:"cancelledBookings"`
}

// Методы конвертации

// FromDomainOffering конвертирует domain модель в DTO
func FromDomainOffering(o *domain.Offering) *OfferingResponse {
	if o == nil {
		return nil
	}

	resp := &OfferingResponse{
		ID:              o.ID,
		Name:            o.Name,
		Description:     o.Description,
		Capacity:        o.Capacity,
		Price:           o.Price,
		EarlyBirdPrice:  o.EarlyBirdPrice,
		DiscountPercent: o.DiscountPercent,
		StartTime:       o.StartTime,
		State:           string(o.State),
		Category:        o.Category,
		Tags:            o.Tags,
		Active:          o.Active,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}

	if o.EarlyBirdDeadline != nil {
		deadline := o.EarlyBirdDeadline.Format(time.RFC3339)
		resp.EarlyBirdDeadline = &deadline
	}

	return resp
}

// FromDomainOfferingList конвертирует список domain моделей в DTO
func FromDomainOfferingList(offerings []*domain.Offering) *OfferingListResponse {
	resp := &OfferingListResponse{
		Offerings: make([]OfferingResponse, 0, len(offerings)),
	}

	for _, o := range offerings {
		if r := FromDomainOffering(o); r != nil {
			resp.Offerings = append(resp.Offerings, *r)
		}
	}

	return resp
}

// ToDomainOfferingState конвертирует строку в domain.OfferingState с валидацией
func ToDomainOfferingState(state string) (domain.OfferingState, bool) {
	s := domain.OfferingState(state)

	switch s {
	case domain.OfferingDraft,
		domain.OfferingPublished,
		domain.OfferingRegistrationClosed,
		domain.OfferingCompleted,
		domain.OfferingCancelled:
		return s, true
	default:
		return "", false
	}
}
