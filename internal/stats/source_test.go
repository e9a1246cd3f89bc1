package stats

import (
	"context"
	"time"

	"github.com/Clark-Hu/movie-journal/internal/domain"
)

type memorySource struct {
	history  map[int64][]domain.WatchRecord
	wishlist map[int64][]domain.WishlistItem
	movies   map[string]domain.Movie
	err      error
}

func newMemorySource() *memorySource {
	return &memorySource{
		history:  make(map[int64][]domain.WatchRecord),
		wishlist: make(map[int64][]domain.WishlistItem),
		movies:   make(map[string]domain.Movie),
	}
}

func (m *memorySource) WatchHistory(_ context.Context, userID int64) ([]domain.WatchRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.history[userID], nil
}

func (m *memorySource) WishlistItems(_ context.Context, userID int64) ([]domain.WishlistItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.wishlist[userID], nil
}

func (m *memorySource) MoviesByID(_ context.Context, ids []string) (map[string]domain.Movie, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]domain.Movie, len(ids))
	for _, id := range ids {
		if movie, ok := m.movies[id]; ok {
			out[id] = movie
		}
	}
	return out, nil
}

func (m *memorySource) movie(id string, year int, genre, director string) *memorySource {
	m.movies[id] = domain.Movie{
		ID:        id,
		Year:      year,
		Genre:     genre,
		Director:  director,
		Language:  "English",
		PosterURL: "https://img.example/" + id + ".jpg",
	}
	return m
}

func (m *memorySource) watch(userID int64, id, date string, personal float64, imdb *float64, boxOffice string) *memorySource {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	m.history[userID] = append(m.history[userID], domain.WatchRecord{
		UserID:         userID,
		MovieID:        id,
		WatchDate:      day,
		PersonalRating: personal,
		IMDBRating:     imdb,
		BoxOffice:      boxOffice,
	})
	return m
}

func (m *memorySource) wish(userID int64, id string, imdb *float64, boxOffice string) *memorySource {
	m.wishlist[userID] = append(m.wishlist[userID], domain.WishlistItem{
		UserID:     userID,
		MovieID:    id,
		IMDBRating: imdb,
		BoxOffice:  boxOffice,
	})
	return m
}

func rating(v float64) *float64 {
	return &v
}
