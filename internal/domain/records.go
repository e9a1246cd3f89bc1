package domain

import "time"

// WatchRecord is one logged viewing. A user may log the same movie on several dates.
// IMDBRating and BoxOffice are snapshots taken when the record was written.
type WatchRecord struct {
	UserID         int64
	MovieID        string
	WatchDate      time.Time
	PersonalRating float64
	Comments       string
	IMDBRating     *float64
	BoxOffice      string
	CreatedAt      time.Time
}

// WishlistItem is a movie the user intends to watch. At most one per user and movie.
type WishlistItem struct {
	UserID     int64
	MovieID    string
	Comments   string
	IMDBRating *float64
	BoxOffice  string
	AddedAt    time.Time
}
