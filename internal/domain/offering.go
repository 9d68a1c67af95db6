package domain

import "time"

// OfferingState represents the lifecycle state of an offering
type OfferingState string

const (
	OfferingDraft              OfferingState = "draft"
	OfferingPublished          OfferingState = "published"
	OfferingRegistrationClosed OfferingState = "registration_closed"
	OfferingCompleted          OfferingState = "completed"
	OfferingCancelled          OfferingState = "cancelled"
)

// Offering represents a bookable item with finite capacity
// (a workshop, a webinar, a consulting session and so on)
type Offering struct {
	ID          int64
	Name        string
	Description *string
	Capacity    int
	Price       float64

	// Optional pricing terms
	EarlyBirdPrice    *float64
	EarlyBirdDeadline *time.Time
	DiscountPercent   *float64 // 0-100

	StartTime time.Time
	State     OfferingState

	// Informational classification, not load-bearing for allocation
	Category *string
	Tags     []string

	// Active=false archives the offering from default listings
	// without touching its lifecycle state
	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal returns true if the offering reached a terminal lifecycle state
func (o *Offering) IsTerminal() bool {
	return o.State == OfferingCompleted || o.State == OfferingCancelled
}

// CanBeCancelled returns true if the offering can still be cancelled
func (o *Offering) CanBeCancelled() bool {
	return !o.IsTerminal()
}

// CanBeUpdated returns true if offering attributes may still be edited
func (o *Offering) CanBeUpdated() bool {
	return o.State == OfferingDraft
}

// AcceptsBookingsAt returns true if the offering is open for registration
// at the given moment: it is published and has not started yet
func (o *Offering) AcceptsBookingsAt(now time.Time) bool {
	return o.State == OfferingPublished && now.Before(o.StartTime)
}

// HasEarlyBird returns true if early-bird pricing terms are fully configured
func (o *Offering) HasEarlyBird() bool {
	return o.EarlyBirdPrice != nil && o.EarlyBirdDeadline != nil
}

// HasDiscount returns true if a discount percentage is configured
func (o *Offering) HasDiscount() bool {
	return o.DiscountPercent != nil
}

// OfferingsFilter фильтр для получения списка предложений
type OfferingsFilter struct {
	State           *OfferingState // Фильтр по состоянию (опционально)
	Category        *string        // Фильтр по категории (опционально)
	IncludeArchived bool           // Включать ли архивные предложения (active=false)
}
