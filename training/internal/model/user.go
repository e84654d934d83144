package model

import (
	"encoding/json"

	"github.com/wolox-training/training-service/training/internal/errs"
)

type User struct {
	ID           int64  `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	Name         string `json:"name" db:"name"`
	Birthdate    Date   `json:"birthdate" db:"birthdate"`
	PasswordHash string `json:"-" db:"password_hash"`

	books []Book
}

// Books returns a copy of the owned books.
func (u User) Books() []Book {
	books := make([]Book, len(u.books))
	copy(books, u.books)
	return books
}

// WithBooks returns u owning exactly books.
func (u User) WithBooks(books []Book) User {
	u.books = make([]Book, len(books))
	copy(u.books, books)
	return u
}

func (u User) Owns(book Book) bool {
	for _, b := range u.books {
		if b.Matches(book) {
			return true
		}
	}
	return false
}

func (u *User) AddBook(book Book) error {
	if u.Owns(book) {
		return errs.ErrAlreadyOwned
	}
	u.books = append(u.books[:len(u.books):len(u.books)], book)
	return nil
}

// RemoveBook drops the first owned book matching book. Removing a book the
// user does not own is a no-op.
func (u *User) RemoveBook(book Book) {
	for i, b := range u.books {
		if b.Matches(book) {
			books := make([]Book, 0, len(u.books)-1)
			books = append(books, u.books[:i]...)
			u.books = append(books, u.books[i+1:]...)
			return
		}
	}
}

func (u User) MarshalJSON() ([]byte, error) {
	type user User
	return json.Marshal(struct {
		user
		Books []Book `json:"books"`
	}{
		user:  user(u),
		Books: u.Books(),
	})
}

// UserRequest is the wire form of a User. Nil pointers are absent fields.
type UserRequest struct {
	ID        int64   `json:"id"`
	Username  *string `json:"username" validate:"required"`
	Name      *string `json:"name" validate:"required"`
	Birthdate *Date   `json:"birthdate" validate:"required"`
	Password  *string `json:"password"`
}

func (r UserRequest) User() User {
	u := User{
		ID:       r.ID,
		Username: deref(r.Username),
		Name:     deref(r.Name),
		books:    []Book{},
	}
	if r.Birthdate != nil {
		u.Birthdate = *r.Birthdate
	}
	return u
}
