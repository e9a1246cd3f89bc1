package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/movie-journal/internal/stats"
)

type statisticResponse struct {
	Name    string   `json:"name"`
	Title   string   `json:"title"`
	Kind    string   `json:"kind"`
	Values  []string `json:"values,omitempty"`
	Message string   `json:"message,omitempty"`
	Posters []string `json:"posters,omitempty"`
}

type overviewResponse struct {
	UserID     int64               `json:"userId"`
	Statistics []statisticResponse `json:"statistics"`
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	s.serveView(w, r, s.engine.Overview)
}

func (s *Server) handleWishlistOverview(w http.ResponseWriter, r *http.Request) {
	s.serveView(w, r, s.engine.WishlistOverview)
}

func (s *Server) serveView(w http.ResponseWriter, r *http.Request, view func(context.Context, int64) ([]stats.Statistic, error)) {
	ctx, cancel := s.statsContext(r)
	defer cancel()

	userID := userFromContext(ctx)
	computed, err := view(ctx, userID)
	if err != nil {
		s.respondStatsError(w, r, err)
		return
	}
	resp := overviewResponse{UserID: userID, Statistics: make([]statisticResponse, 0, len(computed))}
	for _, st := range computed {
		resp.Statistics = append(resp.Statistics, toStatisticResponse(st))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatistic(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.statsContext(r)
	defer cancel()

	st, err := s.engine.Statistic(ctx, userFromContext(ctx), chi.URLParam(r, "name"))
	if err != nil {
		if errors.Is(err, stats.ErrUnknownStatistic) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Unknown statistic")
			return
		}
		s.respondStatsError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toStatisticResponse(st))
}

func (s *Server) statsContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), time.Duration(s.cfg.StatsTimeoutSecs)*time.Second)
}

func (s *Server) respondStatsError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		s.respondError(w, http.StatusGatewayTimeout, "TIMEOUT", "Statistics took too long")
		return
	}
	s.respondInternal(w, r, err, "Failed to compute statistics")
}

func toStatisticResponse(st stats.Statistic) statisticResponse {
	return statisticResponse{
		Name:    st.Name,
		Title:   st.Title,
		Kind:    st.Result.Kind.String(),
		Values:  st.Result.Values,
		Message: st.Result.Message,
		Posters: st.Posters,
	}
}
