package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-journal/internal/domain"
)

// MoviesRepository provides persistence helpers for the shared movie dimension.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

const movieColumns = `
    movie_id,
    year,
    genre,
    director,
    language,
    poster_url,
    created_at
`

// MovieParams bundles the metadata captured when a movie is first referenced.
type MovieParams struct {
	ID        string
	Year      int
	Genre     string
	Director  string
	Language  string
	PosterURL string
}

// ensure inserts the movie row unless one already exists. Existing rows are never updated.
func (r *MoviesRepository) ensure(ctx context.Context, q querier, params MovieParams) error {
	const query = `
        INSERT INTO movies (movie_id, year, genre, director, language, poster_url)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (movie_id) DO NOTHING
    `
	if _, err := q.Exec(ctx, query, params.ID, params.Year, params.Genre, params.Director, params.Language, params.PosterURL); err != nil {
		return fmt.Errorf("ensure movie %q: %w", params.ID, err)
	}
	return nil
}

// GetByID fetches a movie by its identifier.
func (r *MoviesRepository) GetByID(ctx context.Context, id string) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE movie_id = $1`, movieColumns)
	movie, err := scanMovie(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// ByIDs loads movies keyed by id. Unknown ids are simply absent from the map.
func (r *MoviesRepository) ByIDs(ctx context.Context, ids []string) (map[string]domain.Movie, error) {
	movies := make(map[string]domain.Movie, len(ids))
	if len(ids) == 0 {
		return movies, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM movies WHERE movie_id = ANY($1)`, movieColumns)
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies[movie.ID] = movie
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	return movies, nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var movie domain.Movie
	err := row.Scan(
		&movie.ID,
		&movie.Year,
		&movie.Genre,
		&movie.Director,
		&movie.Language,
		&movie.PosterURL,
		&movie.CreatedAt,
	)
	if err != nil {
		return domain.Movie{}, err
	}
	return movie, nil
}
