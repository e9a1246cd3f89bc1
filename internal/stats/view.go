package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Clark-Hu/movie-journal/internal/metrics"
)

// ErrUnknownStatistic is returned by Statistic for names that are not registered.
var ErrUnknownStatistic = errors.New("stats: unknown statistic")

// Statistic is one computed entry of a statistics view.
type Statistic struct {
	Name   string
	Title  string
	Result Result
	// Posters is set for Found results whose values are movie ids.
	Posters []string
}

type definition struct {
	name    string
	title   string
	movies  bool
	compute func(ctx context.Context, e *Engine, userID int64) (Result, error)
}

var historyView = []definition{
	{"favorite-genre", "Favorite genre", false, func(ctx context.Context, e *Engine, u int64) (Result, error) {
		return e.Favorite(ctx, u, Genre)
	}},
	{"favorite-director", "Favorite director", false, func(ctx context.Context, e *Engine, u int64) (Result, error) {
		return e.Favorite(ctx, u, Director)
	}},
	{"most-rewatched", "Most rewatched movie", true, func(ctx context.Context, e *Engine, u int64) (Result, error) {
		return e.MostRewatched(ctx, u)
	}},
	{"highest-rated", "Your highest rated movie", true, func(ctx context.Context, e *Engine, u int64) (Result, error) {
		return e.Highest(ctx, u, WatchHistory, PersonalRating)
	}},
	{"highest-imdb", "Highest IMDB rated movie you watched", true, func(ctx context.Context, e *Engine, u int64) (Result, error) {
		return e.Highest(ctx, u, WatchHistory, IMDBRating)
	}},
	{"love-more", "Movie you love more than others", true, func(ctx context.Context, e *Engine, u int64) (Result, error) {
		return e.RatingDelta(ctx, u, Higher)
	}},
	{"overrate", "Movie you think is overrated", true, func(ctx context.Context, e *Engine, u int64) (Result, error) {
		return e.RatingDelta(ctx, u, Lower)
	}},
	{"highest-box-office", "Highest box office movie you watched", true, func(ctx context.Context, e *Engine, u int64) (Result, error) {
		return e.HighestBoxOffice(ctx, u, WatchHistory)
	}},
	{"oldest", "Oldest movie you watched", true, func(ctx context.Context, e *Engine, u int64) (Result, error) {
		return e.ByRelease(ctx, u, WatchHistory, Oldest)
	}},
	{"newest", "Newest movie you watched", true, func(ctx context.Context, e *Engine, u int64) (Result, error) {
		return e.ByRelease(ctx, u, WatchHistory, Newest)
	}},
	{"days-since-last-watch", "Days since your last movie", false, func(ctx context.Context, e *Engine, u int64) (Result, error) {
		d, err := e.DaysSinceLastWatch(ctx, u)
		return d.Result(), err
	}},
}

var wishlistView = []definition{
	{"wishlist-highest-imdb", "Highest IMDB rated movie on your wishlist", true, func(ctx context.Context, e *Engine, u int64) (Result, error) {
		return e.Highest(ctx, u, Wishlist, IMDBRating)
	}},
	{"wishlist-highest-box-office", "Highest box office movie on your wishlist", true, func(ctx context.Context, e *Engine, u int64) (Result, error) {
		return e.HighestBoxOffice(ctx, u, Wishlist)
	}},
	{"wishlist-oldest", "Oldest movie on your wishlist", true, func(ctx context.Context, e *Engine, u int64) (Result, error) {
		return e.ByRelease(ctx, u, Wishlist, Oldest)
	}},
	{"wishlist-newest", "Newest movie on your wishlist", true, func(ctx context.Context, e *Engine, u int64) (Result, error) {
		return e.ByRelease(ctx, u, Wishlist, Newest)
	}},
}

// Names lists every statistic accepted by Statistic, history view first.
func Names() []string {
	names := make([]string, 0, len(historyView)+len(wishlistView))
	for _, d := range historyView {
		names = append(names, d.name)
	}
	for _, d := range wishlistView {
		names = append(names, d.name)
	}
	return names
}

// Overview computes the watch-history statistics concurrently. The order of the returned
// slice is fixed regardless of completion order.
func (e *Engine) Overview(ctx context.Context, userID int64) ([]Statistic, error) {
	return e.view(ctx, userID, historyView)
}

// WishlistOverview computes the wishlist statistics concurrently.
func (e *Engine) WishlistOverview(ctx context.Context, userID int64) ([]Statistic, error) {
	return e.view(ctx, userID, wishlistView)
}

// Statistic computes a single named statistic.
func (e *Engine) Statistic(ctx context.Context, userID int64, name string) (Statistic, error) {
	for _, views := range [][]definition{historyView, wishlistView} {
		for _, d := range views {
			if d.name == name {
				return e.run(ctx, userID, d)
			}
		}
	}
	return Statistic{}, fmt.Errorf("%w: %q", ErrUnknownStatistic, name)
}

func (e *Engine) view(ctx context.Context, userID int64, defs []definition) ([]Statistic, error) {
	out := make([]Statistic, len(defs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i, d := range defs {
		g.Go(func() error {
			s, err := e.run(gctx, userID, d)
			if err != nil {
				return err
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) run(ctx context.Context, userID int64, d definition) (Statistic, error) {
	start := time.Now()
	res, err := d.compute(ctx, e, userID)
	if err != nil {
		return Statistic{}, fmt.Errorf("%s: %w", d.name, err)
	}
	metrics.RecordStat(d.name, res.Kind.String(), time.Since(start))

	s := Statistic{Name: d.name, Title: d.title, Result: res}
	if d.movies {
		posters, err := e.Posters(ctx, res)
		if err != nil {
			return Statistic{}, fmt.Errorf("%s: %w", d.name, err)
		}
		s.Posters = posters
	}
	return s, nil
}
