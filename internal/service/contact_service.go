package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

// ContactService validates contact form submissions. Messages are logged
// and acknowledged; there is no delivery or persistence.
type ContactService struct {
	validator *validator.Validate
	logger    *zap.Logger
}

// NewContactService constructs ContactService.
func NewContactService(validate *validator.Validate, logger *zap.Logger) *ContactService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{validator: validate, logger: logger}
}

// Submit validates a submission and acknowledges it.
func (s *ContactService) Submit(ctx context.Context, req models.ContactRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid contact payload")
	}

	s.logger.Info("contact form submitted",
		zap.String("name", req.Name),
		zap.String("email", req.Email),
		zap.String("subject", req.Subject))
	return nil
}
