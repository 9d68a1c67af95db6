package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-OfferingService/internal/domain"
	"github.com/m04kA/SMC-OfferingService/pkg/ptr"
)

func TestApplicablePrice(t *testing.T) {
	deadline := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		offering domain.Offering
		asOf     time.Time
		want     float64
	}{
		{
			name:     "base price only",
			offering: domain.Offering{Price: 100},
			asOf:     time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
			want:     100,
		},
		{
			name: "early bird before deadline",
			offering: domain.Offering{
				Price:             100,
				EarlyBirdPrice:    ptr.Ptr(80.0),
				EarlyBirdDeadline: &deadline,
			},
			asOf: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
			want: 80,
		},
		{
			name: "early bird exactly at deadline",
			offering: domain.Offering{
				Price:             100,
				EarlyBirdPrice:    ptr.Ptr(80.0),
				EarlyBirdDeadline: &deadline,
			},
			asOf: deadline,
			want: 80,
		},
		{
			name: "early bird after deadline falls back to base price",
			offering: domain.Offering{
				Price:             100,
				EarlyBirdPrice:    ptr.Ptr(80.0),
				EarlyBirdDeadline: &deadline,
			},
			asOf: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			want: 100,
		},
		{
			name: "discount applies when no early bird",
			offering: domain.Offering{
				Price:           200,
				DiscountPercent: ptr.Ptr(25.0),
			},
			asOf: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			want: 150,
		},
		{
			name: "early bird wins over discount before deadline",
			offering: domain.Offering{
				Price:             100,
				EarlyBirdPrice:    ptr.Ptr(80.0),
				EarlyBirdDeadline: &deadline,
				DiscountPercent:   ptr.Ptr(50.0),
			},
			asOf: time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC),
			want: 80,
		},
		{
			name: "discount applies after early bird deadline",
			offering: domain.Offering{
				Price:             100,
				EarlyBirdPrice:    ptr.Ptr(80.0),
				EarlyBirdDeadline: &deadline,
				DiscountPercent:   ptr.Ptr(10.0),
			},
			asOf: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			want: 90,
		},
		{
			name: "early bird price without deadline is ignored",
			offering: domain.Offering{
				Price:          100,
				EarlyBirdPrice: ptr.Ptr(80.0),
			},
			asOf: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplicablePrice(&tt.offering, tt.asOf)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestApplicablePriceIsDeterministic(t *testing.T) {
	deadline := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	offering := domain.Offering{
		Price:             100,
		EarlyBirdPrice:    ptr.Ptr(80.0),
		EarlyBirdDeadline: &deadline,
	}
	asOf := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	first := ApplicablePrice(&offering, asOf)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ApplicablePrice(&offering, asOf))
	}
}
