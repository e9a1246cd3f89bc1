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

// HistoryRepository provides access to per-user watch history.
type HistoryRepository struct {
	pool   *pgxpool.Pool
	movies *MoviesRepository
}

const watchColumns = `
    user_id,
    movie_id,
    watch_date,
    personal_rating,
    comments,
    imdb_rating,
    boxoffice,
    created_at
`

// WatchParams captures a logged viewing plus the movie metadata needed on first reference.
type WatchParams struct {
	UserID         int64
	Movie          MovieParams
	WatchDate      time.Time
	PersonalRating float64
	Comments       string
	IMDBRating     *float64
	BoxOffice      string
}

// HistoryEntry joins a watch record with its movie row for listing.
type HistoryEntry struct {
	Record domain.WatchRecord
	Movie  domain.Movie
}

// Add stores a watch record, creating the movie row when needed. A second record for
// the same user, movie and date returns ErrDuplicate.
func (r *HistoryRepository) Add(ctx context.Context, params WatchParams) (domain.WatchRecord, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.WatchRecord{}, fmt.Errorf("begin add watch: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := r.movies.ensure(ctx, tx, params.Movie); err != nil {
		return domain.WatchRecord{}, err
	}
	record, err := insertWatch(ctx, tx, params)
	if err != nil {
		return domain.WatchRecord{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.WatchRecord{}, fmt.Errorf("commit add watch: %w", err)
	}
	return record, nil
}

func insertWatch(ctx context.Context, q querier, params WatchParams) (domain.WatchRecord, error) {
	boxOffice := params.BoxOffice
	if boxOffice == "" {
		boxOffice = domain.BoxOfficeUnknown
	}
	query := fmt.Sprintf(`
        INSERT INTO watch_history (user_id, movie_id, watch_date, personal_rating, comments, imdb_rating, boxoffice)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING %s
    `, watchColumns)

	record, err := scanWatch(q.QueryRow(ctx, query,
		params.UserID, params.Movie.ID, dateOnly(params.WatchDate), params.PersonalRating,
		params.Comments, params.IMDBRating, boxOffice))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.WatchRecord{}, ErrDuplicate
		}
		return domain.WatchRecord{}, fmt.Errorf("insert watch: %w", err)
	}
	return record, nil
}

// ListByUser returns the user's watch records ordered by watch date.
func (r *HistoryRepository) ListByUser(ctx context.Context, userID int64) ([]domain.WatchRecord, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM watch_history
        WHERE user_id = $1
        ORDER BY watch_date, movie_id
    `, watchColumns)

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query watch history: %w", err)
	}
	defer rows.Close()

	records := make([]domain.WatchRecord, 0)
	for rows.Next() {
		record, err := scanWatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan watch record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watch history: %w", err)
	}
	return records, nil
}

// ListWithMovies returns the user's history joined with movie metadata.
func (r *HistoryRepository) ListWithMovies(ctx context.Context, userID int64) ([]HistoryEntry, error) {
	const query = `
        SELECT h.user_id, h.movie_id, h.watch_date, h.personal_rating, h.comments,
               h.imdb_rating, h.boxoffice, h.created_at,
               m.movie_id, m.year, m.genre, m.director, m.language, m.poster_url, m.created_at
        FROM watch_history h
        JOIN movies m ON m.movie_id = h.movie_id
        WHERE h.user_id = $1
        ORDER BY h.watch_date, h.movie_id
    `
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query history entries: %w", err)
	}
	defer rows.Close()

	entries := make([]HistoryEntry, 0)
	for rows.Next() {
		var e HistoryEntry
		err := rows.Scan(
			&e.Record.UserID, &e.Record.MovieID, &e.Record.WatchDate, &e.Record.PersonalRating,
			&e.Record.Comments, &e.Record.IMDBRating, &e.Record.BoxOffice, &e.Record.CreatedAt,
			&e.Movie.ID, &e.Movie.Year, &e.Movie.Genre, &e.Movie.Director, &e.Movie.Language,
			&e.Movie.PosterURL, &e.Movie.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history entries: %w", err)
	}
	return entries, nil
}

// Delete removes a single watch record.
func (r *HistoryRepository) Delete(ctx context.Context, userID int64, movieID string, watchDate time.Time) error {
	const query = `DELETE FROM watch_history WHERE user_id = $1 AND movie_id = $2 AND watch_date = $3`
	tag, err := r.pool.Exec(ctx, query, userID, movieID, dateOnly(watchDate))
	if err != nil {
		return fmt.Errorf("delete watch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Get retrieves one watch record by its composite key.
func (r *HistoryRepository) Get(ctx context.Context, userID int64, movieID string, watchDate time.Time) (domain.WatchRecord, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM watch_history
        WHERE user_id = $1 AND movie_id = $2 AND watch_date = $3
    `, watchColumns)
	record, err := scanWatch(r.pool.QueryRow(ctx, query, userID, movieID, dateOnly(watchDate)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.WatchRecord{}, ErrNotFound
		}
		return domain.WatchRecord{}, err
	}
	return record, nil
}

func scanWatch(row pgx.Row) (domain.WatchRecord, error) {
	var record domain.WatchRecord
	err := row.Scan(
		&record.UserID,
		&record.MovieID,
		&record.WatchDate,
		&record.PersonalRating,
		&record.Comments,
		&record.IMDBRating,
		&record.BoxOffice,
		&record.CreatedAt,
	)
	if err != nil {
		return domain.WatchRecord{}, err
	}
	return record, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
