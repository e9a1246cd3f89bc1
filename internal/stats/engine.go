// Package stats computes personal viewing statistics from a user's watch history and
// wishlist. Every call recomputes from the rows returned by the Source; the engine keeps
// no state between calls and never writes.
package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Clark-Hu/movie-journal/internal/domain"
)

// ErrInvalidParameter reports a collection, field, direction, attribute or era value the
// engine does not support. It indicates a programming error in the caller.
var ErrInvalidParameter = errors.New("stats: invalid parameter")

// Source is the read-only persistence collaborator.
type Source interface {
	WatchHistory(ctx context.Context, userID int64) ([]domain.WatchRecord, error)
	WishlistItems(ctx context.Context, userID int64) ([]domain.WishlistItem, error)
	MoviesByID(ctx context.Context, ids []string) (map[string]domain.Movie, error)
}

// Collection selects which per-user record set a statistic reads.
type Collection int

const (
	WatchHistory Collection = iota + 1
	Wishlist
)

func (c Collection) String() string {
	switch c {
	case WatchHistory:
		return "Watch History"
	case Wishlist:
		return "Wishlist"
	default:
		return fmt.Sprintf("Collection(%d)", int(c))
	}
}

// Field is a numeric record field that can be ranked.
type Field int

const (
	PersonalRating Field = iota + 1
	IMDBRating
)

// Direction selects which side of the IMDb rating a personal rating deviates to.
type Direction int

const (
	// Higher finds movies rated above IMDb ("love more than others").
	Higher Direction = iota + 1
	// Lower finds movies rated below IMDb ("overrate" from the crowd's perspective).
	Lower
)

func (d Direction) String() string {
	switch d {
	case Higher:
		return "higher"
	case Lower:
		return "lower"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Attribute is a list-encoded movie attribute counted by Favorite.
type Attribute int

const (
	Genre Attribute = iota + 1
	Director
	Language
)

func (a Attribute) String() string {
	switch a {
	case Genre:
		return "genre"
	case Director:
		return "director"
	case Language:
		return "language"
	default:
		return fmt.Sprintf("Attribute(%d)", int(a))
	}
}

func (a Attribute) tokens(m domain.Movie) []string {
	switch a {
	case Genre:
		return m.Genres()
	case Director:
		return m.Directors()
	default:
		return m.Languages()
	}
}

// Era selects the release-year extreme.
type Era int

const (
	Oldest Era = iota + 1
	Newest
)

const (
	rewatchTieCap   = 3
	attributeTieCap = 5
)

// Engine answers statistics queries for one user at a time.
type Engine struct {
	src         Source
	now         func() time.Time
	parallelism int
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock replaces time.Now, which DaysSinceLastWatch uses to find "today".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithParallelism bounds how many statistics a view computes at once.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

// New constructs an Engine reading from src.
func New(src Source, opts ...Option) *Engine {
	e := &Engine{src: src, now: time.Now, parallelism: 4}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// entry is the collection-independent projection of a watch record or wishlist item.
type entry struct {
	movieID        string
	personalRating float64
	imdbRating     *float64
	boxOffice      string
}

func (e *Engine) entries(ctx context.Context, userID int64, c Collection) ([]entry, error) {
	switch c {
	case WatchHistory:
		records, err := e.src.WatchHistory(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load watch history: %w", err)
		}
		out := make([]entry, len(records))
		for i, r := range records {
			out[i] = entry{movieID: r.MovieID, personalRating: r.PersonalRating, imdbRating: r.IMDBRating, boxOffice: r.BoxOffice}
		}
		return out, nil
	case Wishlist:
		items, err := e.src.WishlistItems(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load wishlist: %w", err)
		}
		out := make([]entry, len(items))
		for i, it := range items {
			out[i] = entry{movieID: it.MovieID, imdbRating: it.IMDBRating, boxOffice: it.BoxOffice}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: collection %v", ErrInvalidParameter, c)
	}
}

// movies loads the movie rows referenced by entries.
func (e *Engine) movies(ctx context.Context, entries []entry) (map[string]domain.Movie, error) {
	seen := make(map[string]struct{}, len(entries))
	ids := make([]string, 0, len(entries))
	for _, en := range entries {
		if _, ok := seen[en.movieID]; ok {
			continue
		}
		seen[en.movieID] = struct{}{}
		ids = append(ids, en.movieID)
	}
	movies, err := e.src.MoviesByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load movies: %w", err)
	}
	return movies, nil
}
