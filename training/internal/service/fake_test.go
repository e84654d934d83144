package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/wolox-training/training-service/training/internal/errs"
	"github.com/wolox-training/training-service/training/internal/model"
)

// memRepo keeps books and users in maps and mirrors the ownership sync
// performed by the sql repository.
type memRepo struct {
	mu     sync.Mutex
	nextID int64
	books  map[int64]model.Book
	users  map[int64]model.User
}

func newMemRepo() *memRepo {
	return &memRepo{
		books: make(map[int64]model.Book),
		users: make(map[int64]model.User),
	}
}

func (r *memRepo) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *memRepo) GetBook(_ context.Context, id int64) (model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return model.Book{}, errs.ErrNotFound
	}
	return b, nil
}

func (r *memRepo) GetBookByIsbn(_ context.Context, isbn string) (model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.sortedBooks() {
		if b.Isbn == isbn {
			return b, nil
		}
	}
	return model.Book{}, errs.ErrNotFound
}

func (r *memRepo) ListBooks(_ context.Context, filter model.BookFilter) ([]model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	books := make([]model.Book, 0)
	for _, b := range r.sortedBooks() {
		if filter.Year != "" && !strings.EqualFold(b.Year, filter.Year) {
			continue
		}
		if filter.Genre != "" && !strings.EqualFold(b.Genre, filter.Genre) {
			continue
		}
		books = append(books, b)
	}
	return books, nil
}

func (r *memRepo) SaveBook(_ context.Context, book model.Book) (model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if book.ID == 0 {
		book.ID = r.id()
	}
	r.books[book.ID] = book
	return book, nil
}

func (r *memRepo) DeleteBook(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return errs.ErrNotFound
	}
	delete(r.books, id)
	return nil
}

func (r *memRepo) GetUser(_ context.Context, id int64) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return model.User{}, errs.ErrNotFound
	}
	return u.WithBooks(r.owned(id)), nil
}

func (r *memRepo) GetUserByUsername(_ context.Context, username string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u.WithBooks(r.owned(u.ID)), nil
		}
	}
	return model.User{}, errs.ErrNotFound
}

func (r *memRepo) ListUsers(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u.WithBooks(r.owned(u.ID)))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *memRepo) SaveUser(_ context.Context, user model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username && u.ID != user.ID {
			return model.User{}, errors.Wrap(errs.ErrConflict, "users_username_key")
		}
	}
	if user.ID == 0 {
		user.ID = r.id()
	}

	keep := make(map[int64]bool)
	for _, b := range user.Books() {
		keep[b.ID] = true
	}
	for id, b := range r.books {
		switch {
		case keep[id]:
			b.UserID = &user.ID
		case b.UserID != nil && *b.UserID == user.ID:
			b.UserID = nil
		}
		r.books[id] = b
	}
	r.users[user.ID] = user.WithBooks(nil)
	return user.WithBooks(r.owned(user.ID)), nil
}

func (r *memRepo) DeleteUser(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return errs.ErrNotFound
	}
	for bid, b := range r.books {
		if b.UserID != nil && *b.UserID == id {
			b.UserID = nil
			r.books[bid] = b
		}
	}
	delete(r.users, id)
	return nil
}

func (r *memRepo) owned(userID int64) []model.Book {
	books := make([]model.Book, 0)
	for _, b := range r.sortedBooks() {
		if b.UserID != nil && *b.UserID == userID {
			books = append(books, b)
		}
	}
	return books
}

func (r *memRepo) sortedBooks() []model.Book {
	books := make([]model.Book, 0, len(r.books))
	for _, b := range r.books {
		books = append(books, b)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books
}

type stubEnricher struct {
	calls int
	book  model.Book
	found bool
	err   error
	repo  *memRepo
}

func (e *stubEnricher) FindAndPersist(ctx context.Context, isbn string) (model.Book, bool, error) {
	e.calls++
	if e.err != nil || !e.found {
		return model.Book{}, false, e.err
	}
	book := e.book
	book.Isbn = isbn
	saved, err := e.repo.SaveBook(ctx, book)
	return saved, err == nil, err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.BookEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, v.(model.BookEvent))
	return nil
}

func (p *recordingPublisher) types() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]model.EventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}
