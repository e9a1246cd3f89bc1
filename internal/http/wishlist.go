package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Clark-Hu/movie-journal/internal/domain"
	"github.com/Clark-Hu/movie-journal/internal/repository"
)

type wishlistRequest struct {
	MovieID  string `json:"movieId" validate:"required,max=300"`
	Comments string `json:"comments" validate:"max=2000"`
	MovieFields
}

type watchedRequest struct {
	WatchDate      string   `json:"watchDate" validate:"required,datetime=2006-01-02"`
	PersonalRating *float64 `json:"personalRating" validate:"required,gte=0,lte=10"`
	Comments       string   `json:"comments" validate:"max=2000"`
}

type wishlistResponse struct {
	MovieID    string         `json:"movieId"`
	Comments   string         `json:"comments"`
	IMDBRating *float64       `json:"imdbRating"`
	BoxOffice  string         `json:"boxOffice"`
	AddedAt    time.Time      `json:"addedAt"`
	Movie      *movieResponse `json:"movie,omitempty"`
}

func (s *Server) handleAddWishlist(w http.ResponseWriter, r *http.Request) {
	var req wishlistRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	req.MovieID = strings.TrimSpace(req.MovieID)
	if err := s.validate.Struct(&req); err != nil {
		s.respondValidationError(w, err)
		return
	}

	movie, snapshot, ok := s.resolveMovie(w, r, req.MovieID, req.MovieFields)
	if !ok {
		return
	}

	item, err := s.repo.Wishlist.Add(r.Context(), repository.WishlistParams{
		UserID:     userFromContext(r.Context()),
		Movie:      movie,
		Comments:   req.Comments,
		IMDBRating: snapshot.IMDBRating,
		BoxOffice:  snapshot.BoxOffice,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.respondError(w, http.StatusConflict, "CONFLICT", "Movie already on wishlist")
			return
		}
		s.respondInternal(w, r, err, "Failed to add wishlist item")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/wishlist/%s", url.PathEscape(item.MovieID)))
	s.respondJSON(w, http.StatusCreated, toWishlistResponse(item, nil))
}

func (s *Server) handleListWishlist(w http.ResponseWriter, r *http.Request) {
	items, err := s.repo.Wishlist.ListByUser(r.Context(), userFromContext(r.Context()))
	if err != nil {
		s.respondInternal(w, r, err, "Failed to list wishlist")
		return
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.MovieID)
	}
	movies, err := s.repo.Movies.ByIDs(r.Context(), ids)
	if err != nil {
		s.respondInternal(w, r, err, "Failed to list wishlist")
		return
	}

	resp := make([]wishlistResponse, 0, len(items))
	for _, item := range items {
		var movie *domain.Movie
		if m, ok := movies[item.MovieID]; ok {
			movie = &m
		}
		resp = append(resp, toWishlistResponse(item, movie))
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"items": resp})
}

func (s *Server) handleDeleteWishlist(w http.ResponseWriter, r *http.Request) {
	movieID, err := pathParam(r, "movieID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	if err := s.repo.Wishlist.Delete(r.Context(), userFromContext(r.Context()), movieID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.respondInternal(w, r, err, "Failed to delete wishlist item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkWatched(w http.ResponseWriter, r *http.Request) {
	movieID, err := pathParam(r, "movieID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	var req watchedRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.respondValidationError(w, err)
		return
	}
	watchDate, _ := time.Parse(dateLayout, req.WatchDate)

	record, err := s.repo.Wishlist.MarkWatched(r.Context(), repository.WatchedParams{
		UserID:         userFromContext(r.Context()),
		MovieID:        movieID,
		WatchDate:      watchDate,
		PersonalRating: *req.PersonalRating,
		Comments:       req.Comments,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		case errors.Is(err, repository.ErrDuplicate):
			s.respondError(w, http.StatusConflict, "CONFLICT", "Movie already recorded for that date")
		default:
			s.respondInternal(w, r, err, "Failed to move wishlist item")
		}
		return
	}
	s.respondJSON(w, http.StatusCreated, toHistoryResponse(record, nil))
}

func toWishlistResponse(item domain.WishlistItem, movie *domain.Movie) wishlistResponse {
	resp := wishlistResponse{
		MovieID:    item.MovieID,
		Comments:   item.Comments,
		IMDBRating: item.IMDBRating,
		BoxOffice:  item.BoxOffice,
		AddedAt:    item.AddedAt,
	}
	if movie != nil {
		resp.Movie = toMovieResponse(*movie)
	}
	return resp
}
