package stats

import (
	"context"
	"fmt"
	"time"
)

// ByRelease returns the movies with the earliest (Oldest) or latest (Newest) release year.
func (e *Engine) ByRelease(ctx context.Context, userID int64, c Collection, era Era) (Result, error) {
	var pick func(a, b int) int
	switch era {
	case Oldest:
		pick = minOf[int]
	case Newest:
		pick = maxOf[int]
	default:
		return Result{}, fmt.Errorf("%w: era %d", ErrInvalidParameter, int(era))
	}

	entries, err := e.entries(ctx, userID, c)
	if err != nil {
		return Result{}, err
	}
	if len(entries) == 0 {
		return empty(c), nil
	}
	movies, err := e.movies(ctx, entries)
	if err != nil {
		return Result{}, err
	}

	t := newTally[int]()
	for _, en := range entries {
		if movie, ok := movies[en.movieID]; ok {
			t.observe(en.movieID, movie.Year, keepFirst[int])
		}
	}
	return ranking[int]{pick: pick, none: fmt.Sprintf("No release year known in %s", c)}.resolve(t), nil
}

// DaysSinceLastWatch counts whole days between today and the most recent watch date that is
// not in the future. Dates are compared as UTC calendar days.
func (e *Engine) DaysSinceLastWatch(ctx context.Context, userID int64) (DaysResult, error) {
	records, err := e.src.WatchHistory(ctx, userID)
	if err != nil {
		return DaysResult{}, fmt.Errorf("load watch history: %w", err)
	}
	if len(records) == 0 {
		return DaysResult{Kind: Empty, Message: fmt.Sprintf("No records in %s", WatchHistory)}, nil
	}

	today := calendarDay(e.now().UTC())
	var (
		latest time.Time
		ok     bool
	)
	for _, r := range records {
		day := calendarDay(r.WatchDate)
		if day.After(today) {
			continue
		}
		if !ok || day.After(latest) {
			latest, ok = day, true
		}
	}
	if !ok {
		return DaysResult{Kind: NoQualifying, Message: "No watch record up to today"}, nil
	}
	return DaysResult{Kind: Found, Days: int(today.Sub(latest) / (24 * time.Hour))}, nil
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
