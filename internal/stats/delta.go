package stats

import (
	"context"
	"fmt"
)

// RatingDelta compares personal ratings against the IMDb snapshot stored with each watch
// record. Per movie the most extreme delta in the requested direction is kept; the movies at
// the overall extreme are returned only when that delta is strictly positive (Higher) or
// strictly negative (Lower). A best delta of exactly zero yields NoQualifying.
func (e *Engine) RatingDelta(ctx context.Context, userID int64, dir Direction) (Result, error) {
	var (
		pick    func(a, b float64) float64
		qualify func(best float64) bool
	)
	switch dir {
	case Higher:
		pick = maxOf[float64]
		qualify = func(best float64) bool { return best > 0 }
	case Lower:
		pick = minOf[float64]
		qualify = func(best float64) bool { return best < 0 }
	default:
		return Result{}, fmt.Errorf("%w: direction %v", ErrInvalidParameter, dir)
	}

	entries, err := e.entries(ctx, userID, WatchHistory)
	if err != nil {
		return Result{}, err
	}
	if len(entries) == 0 {
		return empty(WatchHistory), nil
	}

	t := newTally[float64]()
	for _, en := range entries {
		if en.imdbRating == nil {
			continue
		}
		t.observe(en.movieID, en.personalRating-*en.imdbRating, pick)
	}

	return ranking[float64]{
		pick:    pick,
		qualify: qualify,
		none:    fmt.Sprintf("No movie you rate %s than IMDB rating", dir),
	}.resolve(t), nil
}
