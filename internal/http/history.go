package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/movie-journal/internal/domain"
	"github.com/Clark-Hu/movie-journal/internal/omdb"
	"github.com/Clark-Hu/movie-journal/internal/repository"
)

// MovieFields is the metadata a client may supply. When Year is zero the server looks the
// movie up instead.
type MovieFields struct {
	Year       int      `json:"year" validate:"omitempty,gte=1870,lte=3000"`
	Genre      string   `json:"genre" validate:"max=500"`
	Director   string   `json:"director" validate:"max=500"`
	Language   string   `json:"language" validate:"max=500"`
	PosterURL  string   `json:"posterUrl" validate:"omitempty,url"`
	IMDBRating *float64 `json:"imdbRating" validate:"omitempty,gte=0,lte=10"`
	BoxOffice  string   `json:"boxOffice" validate:"omitempty,boxoffice"`
}

type historyRequest struct {
	MovieID        string   `json:"movieId" validate:"required,max=300"`
	WatchDate      string   `json:"watchDate" validate:"required,datetime=2006-01-02"`
	PersonalRating *float64 `json:"personalRating" validate:"required,gte=0,lte=10"`
	Comments       string   `json:"comments" validate:"max=2000"`
	MovieFields
}

type movieResponse struct {
	Year      int    `json:"year"`
	Genre     string `json:"genre"`
	Director  string `json:"director"`
	Language  string `json:"language"`
	PosterURL string `json:"posterUrl"`
}

type historyResponse struct {
	MovieID        string         `json:"movieId"`
	WatchDate      string         `json:"watchDate"`
	PersonalRating float64        `json:"personalRating"`
	Comments       string         `json:"comments"`
	IMDBRating     *float64       `json:"imdbRating"`
	BoxOffice      string         `json:"boxOffice"`
	Movie          *movieResponse `json:"movie,omitempty"`
}

func (s *Server) handleAddHistory(w http.ResponseWriter, r *http.Request) {
	userID := userFromContext(r.Context())

	var req historyRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	req.MovieID = strings.TrimSpace(req.MovieID)
	if err := s.validate.Struct(&req); err != nil {
		s.respondValidationError(w, err)
		return
	}
	watchDate, _ := time.Parse(dateLayout, req.WatchDate)

	movie, snapshot, ok := s.resolveMovie(w, r, req.MovieID, req.MovieFields)
	if !ok {
		return
	}

	record, err := s.repo.History.Add(r.Context(), repository.WatchParams{
		UserID:         userID,
		Movie:          movie,
		WatchDate:      watchDate,
		PersonalRating: *req.PersonalRating,
		Comments:       req.Comments,
		IMDBRating:     snapshot.IMDBRating,
		BoxOffice:      snapshot.BoxOffice,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.respondError(w, http.StatusConflict, "CONFLICT", "Movie already recorded for that date")
			return
		}
		s.respondInternal(w, r, err, "Failed to record watch")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/history/%s/%s", url.PathEscape(record.MovieID), record.WatchDate.Format(dateLayout)))
	s.respondJSON(w, http.StatusCreated, toHistoryResponse(record, nil))
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.repo.History.ListWithMovies(r.Context(), userFromContext(r.Context()))
	if err != nil {
		s.respondInternal(w, r, err, "Failed to list history")
		return
	}
	items := make([]historyResponse, 0, len(entries))
	for _, e := range entries {
		movie := e.Movie
		items = append(items, toHistoryResponse(e.Record, &movie))
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	movieID, watchDate, ok := s.historyKey(w, r)
	if !ok {
		return
	}
	record, err := s.repo.History.Get(r.Context(), userFromContext(r.Context()), movieID, watchDate)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.respondInternal(w, r, err, "Failed to load watch")
		return
	}
	s.respondJSON(w, http.StatusOK, toHistoryResponse(record, nil))
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	movieID, watchDate, ok := s.historyKey(w, r)
	if !ok {
		return
	}
	err := s.repo.History.Delete(r.Context(), userFromContext(r.Context()), movieID, watchDate)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.respondInternal(w, r, err, "Failed to delete watch")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// historyKey reads the {movieID}/{date} pair identifying one watch record.
func (s *Server) historyKey(w http.ResponseWriter, r *http.Request) (string, time.Time, bool) {
	movieID, err := pathParam(r, "movieID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return "", time.Time{}, false
	}
	watchDate, err := time.Parse(dateLayout, chi.URLParam(r, "date"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "date must follow YYYY-MM-DD format")
		return "", time.Time{}, false
	}
	return movieID, watchDate, true
}

// resolveMovie returns the movie row parameters plus the rating and box-office snapshot for a
// new record. Client supplied metadata wins; otherwise the movie is looked up by its id.
func (s *Server) resolveMovie(w http.ResponseWriter, r *http.Request, movieID string, fields MovieFields) (repository.MovieParams, MovieFields, bool) {
	if fields.Year != 0 {
		if fields.BoxOffice == "" {
			fields.BoxOffice = domain.BoxOfficeUnknown
		}
		return repository.MovieParams{
			ID:        movieID,
			Year:      fields.Year,
			Genre:     fields.Genre,
			Director:  fields.Director,
			Language:  fields.Language,
			PosterURL: fields.PosterURL,
		}, fields, true
	}

	result, err := s.lookupMovie(r.Context(), movieID)
	if err != nil {
		switch {
		case errors.Is(err, omdb.ErrNotFound):
			s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "No metadata found for movie; supply year and details")
		case errors.Is(err, omdb.ErrUnavailable):
			s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Metadata lookup temporarily unavailable")
		default:
			s.logger.Error().Err(err).Str("movie", movieID).Msg("metadata lookup failed")
			s.respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Metadata lookup failed")
		}
		return repository.MovieParams{}, MovieFields{}, false
	}

	snapshot := fields
	if snapshot.IMDBRating == nil {
		snapshot.IMDBRating = result.IMDBRating
	}
	if snapshot.BoxOffice == "" {
		snapshot.BoxOffice = result.BoxOffice
	}
	return repository.MovieParams{
		ID:        movieID,
		Year:      result.Year,
		Genre:     result.Genre,
		Director:  result.Director,
		Language:  result.Language,
		PosterURL: result.Poster,
	}, snapshot, true
}

func (s *Server) lookupMovie(ctx context.Context, title string) (*omdb.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.OMDbTimeoutSecs)*time.Second)
	defer cancel()
	return s.lookup.Lookup(ctx, title)
}

func toHistoryResponse(record domain.WatchRecord, movie *domain.Movie) historyResponse {
	resp := historyResponse{
		MovieID:        record.MovieID,
		WatchDate:      record.WatchDate.Format(dateLayout),
		PersonalRating: record.PersonalRating,
		Comments:       record.Comments,
		IMDBRating:     record.IMDBRating,
		BoxOffice:      record.BoxOffice,
	}
	if movie != nil {
		resp.Movie = toMovieResponse(*movie)
	}
	return resp
}

func toMovieResponse(movie domain.Movie) *movieResponse {
	return &movieResponse{
		Year:      movie.Year,
		Genre:     movie.Genre,
		Director:  movie.Director,
		Language:  movie.Language,
		PosterURL: movie.PosterURL,
	}
}

func pathParam(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return "", fmt.Errorf("missing %s parameter", name)
	}
	value, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("invalid %s parameter", name)
	}
	return value, nil
}
