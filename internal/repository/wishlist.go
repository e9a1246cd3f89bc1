package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-journal/internal/domain"
)

// WishlistRepository provides access to per-user wishlists.
type WishlistRepository struct {
	pool   *pgxpool.Pool
	movies *MoviesRepository
}

const wishlistColumns = `
    user_id,
    movie_id,
    comments,
    imdb_rating,
    boxoffice,
    added_at
`

// WishlistParams captures a wishlist addition.
type WishlistParams struct {
	UserID     int64
	Movie      MovieParams
	Comments   string
	IMDBRating *float64
	BoxOffice  string
}

// WatchedParams describes promoting a wishlist entry into history.
type WatchedParams struct {
	UserID         int64
	MovieID        string
	WatchDate      time.Time
	PersonalRating float64
	Comments       string
}

// Add stores a wishlist entry. ErrDuplicate is returned when the movie is already pending.
func (r *WishlistRepository) Add(ctx context.Context, params WishlistParams) (domain.WishlistItem, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.WishlistItem{}, fmt.Errorf("begin add wishlist: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := r.movies.ensure(ctx, tx, params.Movie); err != nil {
		return domain.WishlistItem{}, err
	}

	boxOffice := params.BoxOffice
	if boxOffice == "" {
		boxOffice = domain.BoxOfficeUnknown
	}
	query := fmt.Sprintf(`
        INSERT INTO wishlist (user_id, movie_id, comments, imdb_rating, boxoffice)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING %s
    `, wishlistColumns)
	item, err := scanWishlist(tx.QueryRow(ctx, query, params.UserID, params.Movie.ID, params.Comments, params.IMDBRating, boxOffice))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.WishlistItem{}, ErrDuplicate
		}
		return domain.WishlistItem{}, fmt.Errorf("insert wishlist: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.WishlistItem{}, fmt.Errorf("commit add wishlist: %w", err)
	}
	return item, nil
}

// ListByUser returns the user's wishlist ordered by insertion.
func (r *WishlistRepository) ListByUser(ctx context.Context, userID int64) ([]domain.WishlistItem, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM wishlist
        WHERE user_id = $1
        ORDER BY added_at, movie_id
    `, wishlistColumns)

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query wishlist: %w", err)
	}
	defer rows.Close()

	items := make([]domain.WishlistItem, 0)
	for rows.Next() {
		item, err := scanWishlist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist: %w", err)
	}
	return items, nil
}

// Delete removes a pending wishlist entry.
func (r *WishlistRepository) Delete(ctx context.Context, userID int64, movieID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM wishlist WHERE user_id = $1 AND movie_id = $2`, userID, movieID)
	if err != nil {
		return fmt.Errorf("delete wishlist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkWatched moves a wishlist entry into the watch history in one transaction. The
// wishlist snapshots (IMDb rating, box office) are carried over to the new record.
func (r *WishlistRepository) MarkWatched(ctx context.Context, params WatchedParams) (domain.WatchRecord, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.WatchRecord{}, fmt.Errorf("begin mark watched: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := fmt.Sprintf(`
        SELECT %s FROM wishlist
        WHERE user_id = $1 AND movie_id = $2
        FOR UPDATE
    `, wishlistColumns)
	item, err := scanWishlist(tx.QueryRow(ctx, query, params.UserID, params.MovieID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.WatchRecord{}, ErrNotFound
		}
		return domain.WatchRecord{}, fmt.Errorf("load wishlist item: %w", err)
	}

	record, err := insertWatch(ctx, tx, WatchParams{
		UserID:         params.UserID,
		Movie:          MovieParams{ID: item.MovieID},
		WatchDate:      params.WatchDate,
		PersonalRating: params.PersonalRating,
		Comments:       params.Comments,
		IMDBRating:     item.IMDBRating,
		BoxOffice:      item.BoxOffice,
	})
	if err != nil {
		return domain.WatchRecord{}, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM wishlist WHERE user_id = $1 AND movie_id = $2`, params.UserID, params.MovieID); err != nil {
		return domain.WatchRecord{}, fmt.Errorf("remove wishlist item: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.WatchRecord{}, fmt.Errorf("commit mark watched: %w", err)
	}
	return record, nil
}

func scanWishlist(row pgx.Row) (domain.WishlistItem, error) {
	var item domain.WishlistItem
	err := row.Scan(
		&item.UserID,
		&item.MovieID,
		&item.Comments,
		&item.IMDBRating,
		&item.BoxOffice,
		&item.AddedAt,
	)
	if err != nil {
		return domain.WishlistItem{}, err
	}
	return item, nil
}
