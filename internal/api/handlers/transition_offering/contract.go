package transition_offering

import (
	"context"

	"github.com/m04kA/SMC-OfferingService/internal/service/offerings/models"
)

type OfferingService interface {
	Publish(ctx context.Context, id int64) (*models.OfferingResponse, error)
	CloseRegistration(ctx context.Context, id int64) (*models.OfferingResponse, error)
	MarkCompleted(ctx context.Context, id int64) (*models.OfferingResponse, error)
	ResetToDraft(ctx context.Context, id int64) (*models.OfferingResponse, error)
	Archive(ctx context.Context, id int64) error
	Unarchive(ctx context.Context, id int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
