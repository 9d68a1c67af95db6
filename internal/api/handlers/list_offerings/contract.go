package list_offerings

import (
	"context"

	"github.com/m04kA/SMC-OfferingService/internal/service/offerings/models"
)

type OfferingService interface {
	List(ctx context.Context, req *models.ListOfferingsRequest) (*models.OfferingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
