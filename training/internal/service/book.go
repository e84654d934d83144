package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wolox-training/training-service/training/internal/errs"
	"github.com/wolox-training/training-service/training/internal/model"
)

func (s *Service) CreateBook(ctx context.Context, req model.BookRequest) (model.Book, error) {
	if err := s.check(req); err != nil {
		return model.Book{}, err
	}
	book := req.Book()
	book.ID, book.UserID = 0, nil

	saved, err := s.repo.SaveBook(ctx, book)
	if err != nil {
		return model.Book{}, err
	}
	s.publish(ctx, model.EventBookCreated, saved, nil)
	return saved, nil
}

func (s *Service) GetBook(ctx context.Context, id int64) (model.Book, error) {
	return s.repo.GetBook(ctx, id)
}

func (s *Service) ListBooks(ctx context.Context, filter model.BookFilter) ([]model.Book, error) {
	return s.repo.ListBooks(ctx, filter)
}

// UpdateBook replaces every content field of book id with req.
func (s *Service) UpdateBook(ctx context.Context, id int64, req model.BookRequest) (model.Book, error) {
	if req.ID != id {
		return model.Book{}, errs.ErrIDMismatch
	}
	if err := s.check(req); err != nil {
		return model.Book{}, err
	}
	existing, err := s.repo.GetBook(ctx, id)
	if err != nil {
		return model.Book{}, err
	}

	// ownership changes only through users
	book := req.Book()
	book.UserID = existing.UserID
	saved, err := s.repo.SaveBook(ctx, book)
	if err != nil {
		return model.Book{}, err
	}
	s.publish(ctx, model.EventBookUpdated, saved, saved.UserID)
	return saved, nil
}

func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	book, err := s.repo.GetBook(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteBook(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, model.EventBookDeleted, book, book.UserID)
	return nil
}

// SearchBook returns the stored book with isbn or, failing that, imports it
// from the metadata provider.
func (s *Service) SearchBook(ctx context.Context, isbn string) (model.Book, model.SearchStatus, error) {
	book, err := s.repo.GetBookByIsbn(ctx, isbn)
	if err == nil {
		return book, model.FoundExisting, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return model.Book{}, "", err
	}

	book, ok, err := s.enricher.FindAndPersist(ctx, isbn)
	if err != nil {
		return model.Book{}, "", errors.Wrapf(err, "search isbn %s", isbn)
	}
	if !ok {
		s.log.Debug("isbn unknown to provider", zap.String("isbn", isbn))
		return model.Book{}, "", errs.ErrNotFound
	}
	s.publish(ctx, model.EventBookImported, book, nil)
	return book, model.FoundExternally, nil
}
