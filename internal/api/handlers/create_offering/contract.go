package create_offering

import (
	"context"

	"github.com/m04kA/SMC-OfferingService/internal/service/offerings/models"
)

type OfferingService interface {
	Create(ctx context.Context, req *models.CreateOfferingRequest) (*models.OfferingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
