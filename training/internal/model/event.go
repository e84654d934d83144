package model

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventBookCreated  EventType = "book.created"
	EventBookImported EventType = "book.imported"
	EventBookUpdated  EventType = "book.updated"
	EventBookDeleted  EventType = "book.deleted"
	EventBookOwned    EventType = "book.owned"
	EventBookReleased EventType = "book.released"
)

type BookEvent struct {
	ID         uuid.UUID `json:"id"`
	Type       EventType `json:"type"`
	BookID     int64     `json:"bookId"`
	UserID     *int64    `json:"userId,omitempty"`
	Isbn       string    `json:"isbn"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewBookEvent(typ EventType, book Book, userID *int64) BookEvent {
	return BookEvent{
		ID:         uuid.New(),
		Type:       typ,
		BookID:     book.ID,
		UserID:     userID,
		Isbn:       book.Isbn,
		OccurredAt: time.Now().UTC(),
	}
}
