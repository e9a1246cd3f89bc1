package stats

import (
	"context"
	"fmt"
)

// Posters maps a Found movie result to poster URLs in the same order. Any other result
// yields nil, which callers read as "render the message instead of image cards". Movies
// without a stored poster map to "".
func (e *Engine) Posters(ctx context.Context, res Result) ([]string, error) {
	if res.Kind != Found || len(res.Values) == 0 {
		return nil, nil
	}
	movies, err := e.src.MoviesByID(ctx, res.Values)
	if err != nil {
		return nil, fmt.Errorf("load posters: %w", err)
	}
	posters := make([]string, len(res.Values))
	for i, id := range res.Values {
		posters[i] = movies[id].PosterURL
	}
	return posters, nil
}
