package service

import (
	"context"

	"github.com/alexedwards/argon2id"
	"github.com/pkg/errors"

	"github.com/wolox-training/training-service/training/internal/errs"
	"github.com/wolox-training/training-service/training/internal/model"
)

func (s *Service) CreateUser(ctx context.Context, req model.UserRequest) (model.User, error) {
	if err := s.check(req); err != nil {
		return model.User{}, err
	}
	user := req.User()
	user.ID = 0
	if err := setPassword(&user, req.Password); err != nil {
		return model.User{}, err
	}
	return s.repo.SaveUser(ctx, user)
}

func (s *Service) GetUser(ctx context.Context, id int64) (model.User, error) {
	return s.repo.GetUser(ctx, id)
}

// ListUsers returns every user, or only the one named username when it is set.
func (s *Service) ListUsers(ctx context.Context, username string) ([]model.User, error) {
	if username == "" {
		return s.repo.ListUsers(ctx)
	}
	user, err := s.repo.GetUserByUsername(ctx, username)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return []model.User{}, nil
	case err != nil:
		return nil, err
	}
	return []model.User{user}, nil
}

// UpdateUser replaces the scalar fields of user id. Owned books are kept and
// the password hash is only replaced when req carries a password.
func (s *Service) UpdateUser(ctx context.Context, id int64, req model.UserRequest) (model.User, error) {
	if req.ID != id {
		return model.User{}, errs.ErrIDMismatch
	}
	if err := s.check(req); err != nil {
		return model.User{}, err
	}
	existing, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	user := req.User().WithBooks(existing.Books())
	user.PasswordHash = existing.PasswordHash
	if err := setPassword(&user, req.Password); err != nil {
		return model.User{}, err
	}
	return s.repo.SaveUser(ctx, user)
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	for _, book := range user.Books() {
		s.publish(ctx, model.EventBookReleased, book, &user.ID)
	}
	return nil
}

// AddBook attaches a book to user userID. A request without id is stored as
// a new book first; one with an id must reference a stored book.
func (s *Service) AddBook(ctx context.Context, userID int64, req model.BookRequest) (model.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	book := req.Book()
	if book.ID == 0 {
		if user.Owns(book) {
			return model.User{}, errs.ErrAlreadyOwned
		}
		if err := s.check(req); err != nil {
			return model.User{}, err
		}
		book.UserID = nil
		if book, err = s.repo.SaveBook(ctx, book); err != nil {
			return model.User{}, err
		}
	} else if book, err = s.repo.GetBook(ctx, book.ID); err != nil {
		return model.User{}, err
	}

	if err := user.AddBook(book); err != nil {
		return model.User{}, err
	}
	saved, err := s.repo.SaveUser(ctx, user)
	if err != nil {
		return model.User{}, err
	}
	s.publish(ctx, model.EventBookOwned, book, &saved.ID)
	return saved, nil
}

// RemoveBook detaches the owned book matching book. Removing a book the user
// does not own leaves the user untouched.
func (s *Service) RemoveBook(ctx context.Context, userID int64, book model.Book) (model.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	var removed *model.Book
	for _, b := range user.Books() {
		if b.Matches(book) {
			removed = &b
			break
		}
	}
	if removed == nil {
		return user, nil
	}

	user.RemoveBook(*removed)
	saved, err := s.repo.SaveUser(ctx, user)
	if err != nil {
		return model.User{}, err
	}
	s.publish(ctx, model.EventBookReleased, *removed, &saved.ID)
	return saved, nil
}

func setPassword(user *model.User, password *string) error {
	if password == nil || *password == "" {
		return nil
	}
	hash, err := argon2id.CreateHash(*password, argon2id.DefaultParams)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	user.PasswordHash = hash
	return nil
}
