package model

type Book struct {
	ID        int64  `json:"id" db:"id"`
	Genre     string `json:"genre" db:"genre"`
	Author    string `json:"author" db:"author"`
	Image     string `json:"image" db:"image"`
	Title     string `json:"title" db:"title"`
	Subtitle  string `json:"subtitle" db:"subtitle"`
	Publisher string `json:"publisher" db:"publisher"`
	Year      string `json:"year" db:"year"`
	Pages     int    `json:"pages" db:"pages" validate:"gt=0"`
	Isbn      string `json:"isbn" db:"isbn" validate:"required"`
	// UserID references the owner, nil when the book is not owned.
	UserID *int64 `json:"userId,omitempty" db:"user_id"`
}

// Matches reports whether candidate describes the same book as b.
// The id is compared only when candidate carries one, the owner never is.
func (b Book) Matches(candidate Book) bool {
	if candidate.ID != 0 && candidate.ID != b.ID {
		return false
	}
	return b.Genre == candidate.Genre &&
		b.Author == candidate.Author &&
		b.Image == candidate.Image &&
		b.Title == candidate.Title &&
		b.Subtitle == candidate.Subtitle &&
		b.Publisher == candidate.Publisher &&
		b.Year == candidate.Year &&
		b.Pages == candidate.Pages &&
		b.Isbn == candidate.Isbn
}

// BookRequest is the wire form of a Book. Nil pointers are absent fields.
type BookRequest struct {
	ID        int64   `json:"id"`
	Genre     *string `json:"genre"`
	Author    *string `json:"author" validate:"required"`
	Image     *string `json:"image" validate:"required"`
	Title     *string `json:"title" validate:"required"`
	Subtitle  *string `json:"subtitle" validate:"required"`
	Publisher *string `json:"publisher" validate:"required"`
	Year      *string `json:"year" validate:"required"`
	Pages     *int    `json:"pages" validate:"required,gt=0"`
	Isbn      *string `json:"isbn" validate:"required,min=1"`
	UserID    *int64  `json:"userId"`
}

// Book converts a validated request. Absent fields become zero values.
func (r BookRequest) Book() Book {
	b := Book{
		ID:        r.ID,
		Genre:     deref(r.Genre),
		Author:    deref(r.Author),
		Image:     deref(r.Image),
		Title:     deref(r.Title),
		Subtitle:  deref(r.Subtitle),
		Publisher: deref(r.Publisher),
		Year:      deref(r.Year),
		Isbn:      deref(r.Isbn),
		UserID:    r.UserID,
	}
	if r.Pages != nil {
		b.Pages = *r.Pages
	}
	return b
}

type BookFilter struct {
	Year  string `query:"year"`
	Genre string `query:"genre"`
}

type SearchStatus string

const (
	FoundExisting   SearchStatus = "found-existing"
	FoundExternally SearchStatus = "found-externally"
)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
