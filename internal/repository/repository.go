package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-journal/internal/domain"
	"github.com/Clark-Hu/movie-journal/internal/store"
)

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates the entity already exists under its natural key.
	ErrDuplicate = errors.New("repository: already exists")
)

const uniqueViolation = "23505"

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Movies   *MoviesRepository
	History  *HistoryRepository
	Wishlist *WishlistRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	movies := &MoviesRepository{pool: pool}
	return &Repository{
		Movies:   movies,
		History:  &HistoryRepository{pool: pool, movies: movies},
		Wishlist: &WishlistRepository{pool: pool, movies: movies},
	}
}

// WatchHistory returns every watch record owned by the user.
func (r *Repository) WatchHistory(ctx context.Context, userID int64) ([]domain.WatchRecord, error) {
	return r.History.ListByUser(ctx, userID)
}

// WishlistItems returns every pending wishlist entry owned by the user.
func (r *Repository) WishlistItems(ctx context.Context, userID int64) ([]domain.WishlistItem, error) {
	return r.Wishlist.ListByUser(ctx, userID)
}

// MoviesByID loads the movie rows for the given identifiers.
func (r *Repository) MoviesByID(ctx context.Context, ids []string) (map[string]domain.Movie, error) {
	return r.Movies.ByIDs(ctx, ids)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
