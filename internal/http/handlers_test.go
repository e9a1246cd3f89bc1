package httpserver

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Clark-Hu/movie-journal/internal/omdb"
)

const alienBody = `{"movieId":"Alien","watchDate":"2024-01-01","personalRating":9,"comments":"still scary",
	"year":1979,"genre":"Horror, Sci-Fi","director":"Ridley Scott","language":"English",
	"posterUrl":"https://img.example/alien.jpg","imdbRating":8.5,"boxOffice":"$84,206,106"}`

func ptr(v float64) *float64 { return &v }

func sampleLookup() fakeLookup {
	return fakeLookup{results: map[string]*omdb.Result{
		"Heat": {
			Title: "Heat", Year: 1995, IMDBRating: ptr(8.3), Genre: "Action, Crime, Drama",
			Director: "Michael Mann", Language: "English, Spanish", BoxOffice: "$67,436,818",
			Poster: "https://img.example/heat.jpg",
		},
		"Dune": {
			Title: "Dune", Year: 2021, IMDBRating: ptr(8.0), Genre: "Action, Adventure, Drama",
			Director: "Denis Villeneuve", Language: "English", BoxOffice: "$108,327,830",
			Poster: "https://img.example/dune.jpg",
		},
	}}
}

func TestRequiresUser(t *testing.T) {
	srv := buildTestServer(t, testConfig(), sampleLookup())

	for _, user := range []string{"", "abc", "0", "-5"} {
		rec := do(t, srv, http.MethodGet, "/stats", user, "")
		expectStatus(t, rec, http.StatusUnauthorized)
		if got := decode[errorResponse](t, rec); got.Code != "UNAUTHORIZED" {
			t.Fatalf("code = %q, want UNAUTHORIZED", got.Code)
		}
	}
}

func TestHistoryLifecycle(t *testing.T) {
	srv := buildTestServer(t, testConfig(), sampleLookup())

	rec := do(t, srv, http.MethodPost, "/history", "1", alienBody)
	expectStatus(t, rec, http.StatusCreated)
	if loc := rec.Header().Get("Location"); loc != "/history/Alien/2024-01-01" {
		t.Fatalf("Location = %q", loc)
	}
	created := decode[historyResponse](t, rec)
	if created.BoxOffice != "$84,206,106" || created.IMDBRating == nil || *created.IMDBRating != 8.5 {
		t.Fatalf("created = %+v", created)
	}

	expectStatus(t, do(t, srv, http.MethodPost, "/history", "1", alienBody), http.StatusConflict)
	expectStatus(t, do(t, srv, http.MethodPost, "/history", "2", alienBody), http.StatusCreated)

	rec = do(t, srv, http.MethodGet, "/history", "1", "")
	expectStatus(t, rec, http.StatusOK)
	list := decode[struct {
		Items []historyResponse `json:"items"`
	}](t, rec)
	if len(list.Items) != 1 || list.Items[0].Movie == nil || list.Items[0].Movie.Year != 1979 {
		t.Fatalf("history = %+v", list.Items)
	}

	rec = do(t, srv, http.MethodGet, "/history/Alien/2024-01-01", "1", "")
	expectStatus(t, rec, http.StatusOK)
	if got := decode[historyResponse](t, rec); got.PersonalRating != 9 || got.Comments != "still scary" {
		t.Fatalf("get history = %+v", got)
	}
	expectStatus(t, do(t, srv, http.MethodGet, "/history/Alien/2024-01-02", "1", ""), http.StatusNotFound)

	rec = do(t, srv, http.MethodGet, "/movies/Alien", "1", "")
	expectStatus(t, rec, http.StatusOK)
	movie := decode[struct {
		MovieID  string `json:"movieId"`
		Year     int    `json:"year"`
		Director string `json:"director"`
	}](t, rec)
	if movie.MovieID != "Alien" || movie.Year != 1979 || movie.Director != "Ridley Scott" {
		t.Fatalf("movie = %+v", movie)
	}
	expectStatus(t, do(t, srv, http.MethodGet, "/movies/Nope", "1", ""), http.StatusNotFound)

	expectStatus(t, do(t, srv, http.MethodDelete, "/history/Alien/2024-01-01", "1", ""), http.StatusNoContent)
	expectStatus(t, do(t, srv, http.MethodDelete, "/history/Alien/2024-01-01", "1", ""), http.StatusNotFound)
	expectStatus(t, do(t, srv, http.MethodDelete, "/history/Alien/yesterday", "1", ""), http.StatusBadRequest)
}

func TestAddHistoryValidation(t *testing.T) {
	srv := buildTestServer(t, testConfig(), sampleLookup())

	tests := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{"rating too high", `{"movieId":"Alien","watchDate":"2024-01-01","personalRating":11,"year":1979}`, http.StatusUnprocessableEntity, "personalRating"},
		{"negative rating", `{"movieId":"Alien","watchDate":"2024-01-01","personalRating":-1,"year":1979}`, http.StatusUnprocessableEntity, "personalRating"},
		{"missing rating", `{"movieId":"Alien","watchDate":"2024-01-01","year":1979}`, http.StatusUnprocessableEntity, "personalRating"},
		{"missing movie", `{"movieId":"  ","watchDate":"2024-01-01","personalRating":5,"year":1979}`, http.StatusUnprocessableEntity, "movieId"},
		{"bad date", `{"movieId":"Alien","watchDate":"01/02/2024","personalRating":5,"year":1979}`, http.StatusUnprocessableEntity, "watchDate"},
		{"bad box office", `{"movieId":"Alien","watchDate":"2024-01-01","personalRating":5,"year":1979,"boxOffice":"1000"}`, http.StatusUnprocessableEntity, "boxOffice"},
		{"imdb out of range", `{"movieId":"Alien","watchDate":"2024-01-01","personalRating":5,"year":1979,"imdbRating":12}`, http.StatusUnprocessableEntity, "imdbRating"},
		{"malformed json", `{"movieId":`, http.StatusUnprocessableEntity, ""},
		{"wrong type", `{"movieId":"Alien","watchDate":"2024-01-01","personalRating":"nine"}`, http.StatusUnprocessableEntity, ""},
		{"unknown field", `{"movieId":"Alien","rating":5}`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/history", "1", tt.body)
			expectStatus(t, rec, tt.status)
			if tt.field == "" {
				return
			}
			resp := decode[struct {
				Details []fieldError `json:"details"`
			}](t, rec)
			if len(resp.Details) == 0 || resp.Details[0].Field != tt.field {
				t.Fatalf("details = %+v, want field %s", resp.Details, tt.field)
			}
		})
	}
}

func TestAddHistoryLooksUpMetadata(t *testing.T) {
	srv := buildTestServer(t, testConfig(), sampleLookup())

	rec := do(t, srv, http.MethodPost, "/history", "1", `{"movieId":"Heat","watchDate":"2024-02-01","personalRating":7}`)
	expectStatus(t, rec, http.StatusCreated)
	created := decode[historyResponse](t, rec)
	if created.IMDBRating == nil || *created.IMDBRating != 8.3 || created.BoxOffice != "$67,436,818" {
		t.Fatalf("snapshot not taken from lookup: %+v", created)
	}

	rec = do(t, srv, http.MethodPost, "/history", "1", `{"movieId":"Unknown Film","watchDate":"2024-02-01","personalRating":7}`)
	expectStatus(t, rec, http.StatusUnprocessableEntity)

	down := buildTestServer(t, testConfig(), fakeLookup{err: fmt.Errorf("%w: open", omdb.ErrUnavailable)})
	rec = do(t, down, http.MethodPost, "/history", "1", `{"movieId":"Heat","watchDate":"2024-02-01","personalRating":7}`)
	expectStatus(t, rec, http.StatusServiceUnavailable)
}

func TestWishlistLifecycle(t *testing.T) {
	srv := buildTestServer(t, testConfig(), sampleLookup())

	expectStatus(t, do(t, srv, http.MethodPost, "/wishlist", "1", `{"movieId":"Dune","comments":"IMAX"}`), http.StatusCreated)
	expectStatus(t, do(t, srv, http.MethodPost, "/wishlist", "1", `{"movieId":"Dune"}`), http.StatusConflict)

	rec := do(t, srv, http.MethodGet, "/wishlist", "1", "")
	expectStatus(t, rec, http.StatusOK)
	list := decode[struct {
		Items []wishlistResponse `json:"items"`
	}](t, rec)
	if len(list.Items) != 1 || list.Items[0].Movie == nil || list.Items[0].Movie.Year != 2021 || list.Items[0].Comments != "IMAX" {
		t.Fatalf("wishlist = %+v", list.Items)
	}

	rec = do(t, srv, http.MethodPost, "/wishlist/Dune/watched", "1", `{"watchDate":"2024-03-01","personalRating":8.5}`)
	expectStatus(t, rec, http.StatusCreated)
	moved := decode[historyResponse](t, rec)
	if moved.BoxOffice != "$108,327,830" || moved.IMDBRating == nil || *moved.IMDBRating != 8.0 {
		t.Fatalf("moved record = %+v", moved)
	}

	expectStatus(t, do(t, srv, http.MethodPost, "/wishlist/Dune/watched", "1", `{"watchDate":"2024-03-02","personalRating":8}`), http.StatusNotFound)
	expectStatus(t, do(t, srv, http.MethodPost, "/wishlist/Dune/watched", "1", `{"watchDate":"2024-03-02","personalRating":80}`), http.StatusUnprocessableEntity)
	expectStatus(t, do(t, srv, http.MethodDelete, "/wishlist/Dune", "1", ""), http.StatusNotFound)

	expectStatus(t, do(t, srv, http.MethodPost, "/wishlist", "1", `{"movieId":"Heat"}`), http.StatusCreated)
	expectStatus(t, do(t, srv, http.MethodDelete, "/wishlist/Heat", "1", ""), http.StatusNoContent)
}

func TestStatsEndpoints(t *testing.T) {
	srv := buildTestServer(t, testConfig(), sampleLookup())

	expectStatus(t, do(t, srv, http.MethodPost, "/history", "1", alienBody), http.StatusCreated)
	expectStatus(t, do(t, srv, http.MethodPost, "/history", "1", `{"movieId":"Heat","watchDate":"2024-02-01","personalRating":6}`), http.StatusCreated)

	rec := do(t, srv, http.MethodGet, "/stats", "1", "")
	expectStatus(t, rec, http.StatusOK)
	overview := decode[overviewResponse](t, rec)
	if overview.UserID != 1 || len(overview.Statistics) != 11 {
		t.Fatalf("overview = %+v", overview)
	}
	byName := make(map[string]statisticResponse)
	for _, st := range overview.Statistics {
		byName[st.Name] = st
	}
	want := statisticResponse{
		Name:    "love-more",
		Title:   "Movie you love more than others",
		Kind:    "found",
		Values:  []string{"Alien"},
		Posters: []string{"https://img.example/alien.jpg"},
	}
	if diff := cmp.Diff(want, byName["love-more"]); diff != "" {
		t.Fatalf("love-more mismatch (-want +got):\n%s", diff)
	}
	if got := byName["overrate"].Values; !cmp.Equal(got, []string{"Heat"}) {
		t.Fatalf("overrate = %v", got)
	}

	rec = do(t, srv, http.MethodGet, "/stats/favorite-director", "1", "")
	expectStatus(t, rec, http.StatusOK)
	single := decode[statisticResponse](t, rec)
	if single.Kind != "found" || len(single.Values) != 2 || single.Posters != nil {
		t.Fatalf("favorite-director = %+v", single)
	}

	expectStatus(t, do(t, srv, http.MethodGet, "/stats/longest-runtime", "1", ""), http.StatusNotFound)

	rec = do(t, srv, http.MethodGet, "/stats/wishlist", "1", "")
	expectStatus(t, rec, http.StatusOK)
	wishlist := decode[overviewResponse](t, rec)
	if len(wishlist.Statistics) != 4 {
		t.Fatalf("wishlist statistics = %d, want 4", len(wishlist.Statistics))
	}
	for _, st := range wishlist.Statistics {
		if st.Kind != "empty" || st.Message != "No records in Wishlist" {
			t.Fatalf("%s = %+v, want empty sentinel", st.Name, st)
		}
	}
}

func TestSearch(t *testing.T) {
	srv := buildTestServer(t, testConfig(), sampleLookup())

	rec := do(t, srv, http.MethodGet, "/search?title=Heat", "1", "")
	expectStatus(t, rec, http.StatusOK)
	got := decode[searchResponse](t, rec)
	if got.Year != 1995 || got.Director != "Michael Mann" {
		t.Fatalf("search = %+v", got)
	}

	expectStatus(t, do(t, srv, http.MethodGet, "/search", "1", ""), http.StatusBadRequest)
	expectStatus(t, do(t, srv, http.MethodGet, "/search?title=Nope", "1", ""), http.StatusNotFound)

	down := buildTestServer(t, testConfig(), fakeLookup{err: omdb.ErrUnavailable})
	expectStatus(t, do(t, down, http.MethodGet, "/search?title=Heat", "1", ""), http.StatusServiceUnavailable)
}

func TestSearchRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.SearchRateLimit = 2
	srv := buildTestServer(t, cfg, sampleLookup())

	for i := 0; i < 2; i++ {
		expectStatus(t, do(t, srv, http.MethodGet, "/search?title=Heat", "7", ""), http.StatusOK)
	}
	expectStatus(t, do(t, srv, http.MethodGet, "/search?title=Heat", "7", ""), http.StatusTooManyRequests)
	expectStatus(t, do(t, srv, http.MethodGet, "/search?title=Heat", "8", ""), http.StatusOK)
}

func TestHealthzAndMetrics(t *testing.T) {
	srv := buildTestServer(t, testConfig(), sampleLookup())

	expectStatus(t, do(t, srv, http.MethodGet, "/healthz", "", ""), http.StatusOK)
	expectStatus(t, do(t, srv, http.MethodGet, "/stats", "3", ""), http.StatusOK)

	rec := do(t, srv, http.MethodGet, "/metrics", "", "")
	expectStatus(t, rec, http.StatusOK)
	body := rec.Body.String()
	for _, metric := range []string{"movie_journal_http_requests_total", "movie_journal_stat_duration_seconds", "movie_journal_db_pool_connections"} {
		if !strings.Contains(body, metric) {
			t.Fatalf("metrics output missing %s", metric)
		}
	}
}

func BenchmarkOverviewEndpoint(b *testing.B) {
	srv := buildTestServer(b, testConfig(), sampleLookup())
	for i := 0; i < 50; i++ {
		body := fmt.Sprintf(`{"movieId":"Movie %d","watchDate":"2023-01-%02d","personalRating":%d,"year":%d,"genre":"Drama, Comedy","director":"Director %d","imdbRating":%d.5,"boxOffice":"$%d"}`,
			i, 1+i%28, i%11, 1950+i, i%7, i%10, i*1000)
		expectStatus(b, do(b, srv, http.MethodPost, "/history", "1", body), http.StatusCreated)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := do(b, srv, http.MethodGet, "/stats", "1", "")
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}
