package model

// BookMetadata is what the metadata provider knows about an ISBN.
type BookMetadata struct {
	Isbn          string `json:"isbn"`
	Title         string `json:"title"`
	Subtitle      string `json:"subtitle"`
	Publishers    string `json:"publishers"`
	PublishDate   string `json:"publishDate"`
	NumberOfPages int    `json:"numberOfPages"`
	Authors       string `json:"authors"`
}

// Book maps the metadata onto a new, unsaved Book. The provider never
// supplies a cover, so Image is empty.
func (m BookMetadata) Book() Book {
	return Book{
		Author:    m.Authors,
		Image:     "",
		Title:     m.Title,
		Subtitle:  m.Subtitle,
		Publisher: m.Publishers,
		Year:      m.PublishDate,
		Pages:     m.NumberOfPages,
		Isbn:      m.Isbn,
	}
}
