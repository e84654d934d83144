package handler

import (
	"context"

	"github.com/wolox-training/training-service/training/internal/model"
	"github.com/wolox-training/training-service/training/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type LibraryService interface {
	CreateBook(ctx context.Context, req model.BookRequest) (model.Book, error)
	GetBook(ctx context.Context, id int64) (model.Book, error)
	ListBooks(ctx context.Context, filter model.BookFilter) ([]model.Book, error)
	UpdateBook(ctx context.Context, id int64, req model.BookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, id int64) error
	SearchBook(ctx context.Context, isbn string) (model.Book, model.SearchStatus, error)

	CreateUser(ctx context.Context, req model.UserRequest) (model.User, error)
	GetUser(ctx context.Context, id int64) (model.User, error)
	ListUsers(ctx context.Context, username string) ([]model.User, error)
	UpdateUser(ctx context.Context, id int64, req model.UserRequest) (model.User, error)
	DeleteUser(ctx context.Context, id int64) error
	AddBook(ctx context.Context, userID int64, req model.BookRequest) (model.User, error)
	RemoveBook(ctx context.Context, userID int64, book model.Book) (model.User, error)
}

var _ LibraryService = (*service.Service)(nil)
