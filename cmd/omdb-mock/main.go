// Command omdb-mock serves OMDb-shaped responses from a fixture file so the journal can run
// without a real API key.
package main

import (
	"flag"
	"net/http"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Clark-Hu/movie-journal/internal/logging"
)

// movieEntry mirrors the subset of the OMDb payload the journal reads.
type movieEntry struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Language   string `json:"Language"`
	Poster     string `json:"Poster"`
	IMDBRating string `json:"imdbRating"`
	BoxOffice  string `json:"BoxOffice"`
	Response   string `json:"Response"`
}

type errorEntry struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

func main() {
	var (
		port   = flag.String("port", "9099", "port to listen on")
		data   = flag.String("data", "cmd/omdb-mock/fixtures.json", "path to mock data file")
		apiKey = flag.String("apikey", "", "reject requests whose apikey differs (empty accepts any)")
		logReq = flag.Bool("log", false, "enable request logging")
	)
	flag.Parse()

	logger := logging.New(logging.Config{Format: "console"})

	file, err := os.ReadFile(*data)
	if err != nil {
		logger.Fatal().Err(err).Msg("read mock data")
	}
	var payload map[string]movieEntry
	if err := json.Unmarshal(file, &payload); err != nil {
		logger.Fatal().Err(err).Msg("parse mock data")
	}

	addr := ":" + *port
	logger.Info().Str("addr", addr).Int("entries", len(payload)).Msg("mock omdb listening")
	if err := http.ListenAndServe(addr, newHandler(payload, *apiKey, *logReq, logger)); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func newHandler(payload map[string]movieEntry, apiKey string, logRequests bool, logger zerolog.Logger) http.Handler {
	index := make(map[string]movieEntry, len(payload))
	for title, entry := range payload {
		entry.Response = "True"
		if entry.Title == "" {
			entry.Title = title
		}
		index[strings.ToLower(title)] = entry
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		title := query.Get("t")
		if logRequests {
			logger.Info().Str("title", title).Msg("lookup")
		}

		w.Header().Set("Content-Type", "application/json")
		if apiKey != "" && query.Get("apikey") != apiKey {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(errorEntry{Response: "False", Error: "Invalid API key!"})
			return
		}
		entry, ok := index[strings.ToLower(strings.TrimSpace(title))]
		if !ok {
			_ = json.NewEncoder(w).Encode(errorEntry{Response: "False", Error: "Movie not found!"})
			return
		}
		if err := json.NewEncoder(w).Encode(entry); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	return mux
}
