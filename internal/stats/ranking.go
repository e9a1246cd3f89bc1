package stats

import (
	"context"
	"fmt"

	"github.com/Clark-Hu/movie-journal/internal/domain"
)

// Highest returns the movies whose records attain the maximum value of field. A movie
// reaching the maximum through several records is listed once. Records without an IMDb
// snapshot are ignored when ranking by IMDBRating.
func (e *Engine) Highest(ctx context.Context, userID int64, c Collection, field Field) (Result, error) {
	switch {
	case field == PersonalRating && c == Wishlist:
		return Result{}, fmt.Errorf("%w: wishlist items carry no personal rating", ErrInvalidParameter)
	case field != PersonalRating && field != IMDBRating:
		return Result{}, fmt.Errorf("%w: field %d", ErrInvalidParameter, int(field))
	}

	entries, err := e.entries(ctx, userID, c)
	if err != nil {
		return Result{}, err
	}
	if len(entries) == 0 {
		return empty(c), nil
	}

	t := newTally[float64]()
	for _, en := range entries {
		switch field {
		case PersonalRating:
			t.observe(en.movieID, en.personalRating, maxOf[float64])
		case IMDBRating:
			if en.imdbRating != nil {
				t.observe(en.movieID, *en.imdbRating, maxOf[float64])
			}
		}
	}

	return ranking[float64]{
		pick: maxOf[float64],
		none: fmt.Sprintf("No record with valid IMDB rating in %s", c),
	}.resolve(t), nil
}

// HighestBoxOffice returns the movies with the largest box-office snapshot. Unknown
// figures parse to zero; when nothing is above zero the result is NoQualifying.
func (e *Engine) HighestBoxOffice(ctx context.Context, userID int64, c Collection) (Result, error) {
	entries, err := e.entries(ctx, userID, c)
	if err != nil {
		return Result{}, err
	}
	if len(entries) == 0 {
		return empty(c), nil
	}

	t := newTally[int64]()
	for _, en := range entries {
		amount, err := domain.ParseBoxOffice(en.boxOffice)
		if err != nil {
			return Result{}, fmt.Errorf("stats: box office for %q: %w", en.movieID, err)
		}
		t.observe(en.movieID, amount, maxOf[int64])
	}

	return ranking[int64]{
		pick:    maxOf[int64],
		qualify: func(best int64) bool { return best > 0 },
		none:    fmt.Sprintf("No record with valid box office in %s", c),
	}.resolve(t), nil
}
