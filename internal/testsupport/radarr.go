package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"prunarr/internal/services/radarr"
)

// RadarrServer is an in-memory Radarr v3 fake backed by httptest.
type RadarrServer struct {
	*httptest.Server

	APIKey string

	mu       sync.Mutex
	movies   []radarr.Movie
	deleted  []int64
	queries  []string
	failList bool
	failIDs  map[int64]int
	vanish   map[int64]bool
}

// NewRadarrServer starts a fake holding movies and registers cleanup.
func NewRadarrServer(t testing.TB, apiKey string, movies ...radarr.Movie) *RadarrServer {
	t.Helper()
	fake := &RadarrServer{
		APIKey:  apiKey,
		movies:  append([]radarr.Movie(nil), movies...),
		failIDs: map[int64]int{},
		vanish:  map[int64]bool{},
	}
	fake.Server = httptest.NewServer(http.HandlerFunc(fake.handle))
	t.Cleanup(fake.Close)
	return fake
}

// FailList makes GET /api/v3/movie return 500.
func (s *RadarrServer) FailList() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failList = true
}

// FailDelete makes DELETE for id answer with status.
func (s *RadarrServer) FailDelete(id int64, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failIDs[id] = status
}

// Vanish removes id from the catalog on the server side only after it has
// been listed, simulating a concurrent removal.
func (s *RadarrServer) Vanish(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vanish[id] = true
}

// Deleted returns the ids deleted so far, in call order.
func (s *RadarrServer) Deleted() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.deleted...)
}

// DeleteQueries returns the raw query strings seen on DELETE calls.
func (s *RadarrServer) DeleteQueries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

func (s *RadarrServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Api-Key") != s.APIKey {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/v3/system/status":
		writeJSON(w, map[string]string{"appName": "Radarr", "version": "5.0.0-test"})
	case r.Method == http.MethodGet && r.URL.Path == "/api/v3/movie":
		if s.failList {
			http.Error(w, "catalog unavailable", http.StatusInternalServerError)
			return
		}
		movies := make([]radarr.Movie, 0, len(s.movies))
		movies = append(movies, s.movies...)
		for id := range s.vanish {
			s.removeLocked(id)
		}
		writeJSON(w, movies)
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/v3/movie/"):
		id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/api/v3/movie/"), 10, 64)
		if err != nil {
			http.Error(w, "bad id", http.StatusBadRequest)
			return
		}
		s.queries = append(s.queries, r.URL.RawQuery)
		if status, ok := s.failIDs[id]; ok {
			http.Error(w, "injected failure", status)
			return
		}
		if !s.removeLocked(id) {
			http.Error(w, `{"message":"NotFound"}`, http.StatusNotFound)
			return
		}
		s.deleted = append(s.deleted, id)
		w.WriteHeader(http.StatusOK)
	default:
		http.NotFound(w, r)
	}
}

func (s *RadarrServer) removeLocked(id int64) bool {
	for i, movie := range s.movies {
		if movie.ID == id {
			s.movies = append(s.movies[:i], s.movies[i+1:]...)
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
