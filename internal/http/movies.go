package httpserver

import (
	"errors"
	"net/http"

	"github.com/Clark-Hu/movie-journal/internal/repository"
)

type movieDetailResponse struct {
	MovieID string `json:"movieId"`
	*movieResponse
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	movieID, err := pathParam(r, "movieID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	movie, err := s.repo.Movies.GetByID(r.Context(), movieID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Movie not found")
			return
		}
		s.respondInternal(w, r, err, "Failed to load movie")
		return
	}
	s.respondJSON(w, http.StatusOK, movieDetailResponse{MovieID: movie.ID, movieResponse: toMovieResponse(movie)})
}
