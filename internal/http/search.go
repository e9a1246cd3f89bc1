package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Clark-Hu/movie-journal/internal/omdb"
)

type searchResponse struct {
	Title      string   `json:"title"`
	Year       int      `json:"year"`
	IMDBRating *float64 `json:"imdbRating"`
	Genre      string   `json:"genre"`
	Director   string   `json:"director"`
	Language   string   `json:"language"`
	BoxOffice  string   `json:"boxOffice"`
	Poster     string   `json:"poster"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "title query parameter is required")
		return
	}

	result, err := s.lookupMovie(r.Context(), title)
	if err != nil {
		switch {
		case errors.Is(err, omdb.ErrNotFound):
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Movie not found")
		case errors.Is(err, omdb.ErrUnavailable):
			s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Metadata lookup temporarily unavailable")
		default:
			s.logger.Error().Err(err).Str("title", title).Msg("search lookup failed")
			s.respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Metadata lookup failed")
		}
		return
	}

	s.respondJSON(w, http.StatusOK, searchResponse{
		Title:      result.Title,
		Year:       result.Year,
		IMDBRating: result.IMDBRating,
		Genre:      result.Genre,
		Director:   result.Director,
		Language:   result.Language,
		BoxOffice:  result.BoxOffice,
		Poster:     result.Poster,
	})
}
