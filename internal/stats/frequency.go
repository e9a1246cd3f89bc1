package stats

import (
	"context"
	"fmt"
)

// MostRewatched returns the movies with the most watch records. More than three tied
// movies collapse into TooManyTies.
func (e *Engine) MostRewatched(ctx context.Context, userID int64) (Result, error) {
	entries, err := e.entries(ctx, userID, WatchHistory)
	if err != nil {
		return Result{}, err
	}
	if len(entries) == 0 {
		return empty(WatchHistory), nil
	}

	t := newTally[int]()
	for _, en := range entries {
		t.observe(en.movieID, 1, sum[int])
	}
	return ranking[int]{pick: maxOf[int], tieCap: rewatchTieCap}.resolve(t), nil
}

// Favorite counts, over every watch record, each token of the movie's attribute list and
// returns the most frequent tokens. More than five tied tokens collapse into TooManyTies.
func (e *Engine) Favorite(ctx context.Context, userID int64, attr Attribute) (Result, error) {
	if attr != Genre && attr != Director && attr != Language {
		return Result{}, fmt.Errorf("%w: attribute %v", ErrInvalidParameter, attr)
	}

	entries, err := e.entries(ctx, userID, WatchHistory)
	if err != nil {
		return Result{}, err
	}
	if len(entries) == 0 {
		return empty(WatchHistory), nil
	}
	movies, err := e.movies(ctx, entries)
	if err != nil {
		return Result{}, err
	}

	t := newTally[int]()
	for _, en := range entries {
		movie, ok := movies[en.movieID]
		if !ok {
			continue
		}
		for _, token := range attr.tokens(movie) {
			t.observe(token, 1, sum[int])
		}
	}

	return ranking[int]{
		pick:   maxOf[int],
		tieCap: attributeTieCap,
		none:   fmt.Sprintf("No %s recorded in %s", attr, WatchHistory),
	}.resolve(t), nil
}
