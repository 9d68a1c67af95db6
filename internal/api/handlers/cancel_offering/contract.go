package cancel_offering

import (
	"context"

	"github.com/m04kA/SMC-OfferingService/internal/service/offerings/models"
)

type OfferingService interface {
	Cancel(ctx context.Context, id int64, req *models.CancelOfferingRequest) (*models.CancelOfferingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
