package domain

import "time"

// Movie is the shared dimension row referenced by watch records and wishlist items.
// Rows are created on first reference and never updated afterwards.
type Movie struct {
	ID        string
	Year      int
	Genre     string
	Director  string
	Language  string
	PosterURL string
	CreatedAt time.Time
}

// Genres decodes the genre list.
func (m Movie) Genres() []string {
	return SplitList(m.Genre)
}

// Directors decodes the director list.
func (m Movie) Directors() []string {
	return SplitList(m.Director)
}

// Languages decodes the language list.
func (m Movie) Languages() []string {
	return SplitList(m.Language)
}
