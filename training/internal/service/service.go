package service

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/wolox-training/training-service/pkg/validate"
	"github.com/wolox-training/training-service/training/internal/errs"
	"github.com/wolox-training/training-service/training/internal/model"
	"github.com/wolox-training/training-service/training/internal/repository"
)

// Enricher imports books unknown to the repository from an external provider.
type Enricher interface {
	FindAndPersist(ctx context.Context, isbn string) (model.Book, bool, error)
}

type Publisher interface {
	Publish(ctx context.Context, key string, v any) error
}

type Service struct {
	log       *zap.Logger
	repo      repository.Repository
	enricher  Enricher
	publisher Publisher
	validate  *validator.Validate
}

func NewService(repo repository.Repository, enricher Enricher, publisher Publisher, log *zap.Logger) *Service {
	return &Service{
		log:       log.Named("service"),
		repo:      repo,
		enricher:  enricher,
		publisher: publisher,
		validate:  validate.New(),
	}
}

// check returns a *errs.ValidationError naming every field of v that breaks
// its validate tags.
func (s *Service) check(v any) error {
	if fields := validate.Fields(s.validate.Struct(v)); len(fields) > 0 {
		return errs.NewValidationError(fields...)
	}
	return nil
}

// publish is best effort: a lost event never fails the request.
func (s *Service) publish(ctx context.Context, typ model.EventType, book model.Book, userID *int64) {
	event := model.NewBookEvent(typ, book, userID)
	if err := s.publisher.Publish(ctx, strconv.FormatInt(book.ID, 10), event); err != nil {
		s.log.Warn("publish event",
			zap.String("type", string(typ)),
			zap.Int64("book", book.ID),
			zap.Error(err))
	}
}
