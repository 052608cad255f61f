// internal/httpserver/server.go
//
// HTTP server wiring for the daily word game.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     compression, access logging, metrics).
//   - Public endpoints: "/", "/health", "/debug/words", "/metrics".
//   - Daily endpoints (anonymous player cookie): mounted under /daily.
//   - Admin login issuing the JWT that unlocks manual target overrides.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - The server holds no game logic; it loads a game.State, applies one
//     guess, and stores the returned value.

package httpserver

import (
	"encoding/json"
	"hash/fnv"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/robalobadob/wordle/daily/internal/config"
	"github.com/robalobadob/wordle/daily/internal/daily"
	"github.com/robalobadob/wordle/daily/internal/observability"
	"github.com/robalobadob/wordle/daily/internal/store"
	"github.com/robalobadob/wordle/daily/internal/words"
)

// Deps are the collaborators a Server needs.
type Deps struct {
	Sessions  store.Store
	Results   *daily.Store // nil disables the leaderboard
	Corpus    *words.Corpus
	Overrides daily.Overrides
	Config    config.Config
	Location  *time.Location // calendar used for "today"
	Metrics   *observability.Metrics
	Now       func() time.Time
}

// Server bundles router and dependencies.
type Server struct {
	r    *chi.Mux
	deps Deps

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter

	// playerLocks serialize load-apply-save per player; striped by hash.
	playerLocks [64]sync.Mutex
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Sessions == nil {
		d.Sessions = store.NewMemoryStore()
	}
	s := &Server{r: chi.NewRouter(), deps: d, limiters: make(map[string]*rate.Limiter)}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)                       // one zerolog line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(chimw.Compress(5))               // gzip JSON bodies
	s.r.Use(d.Metrics.Middleware)            // request counters by route
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "wordle-daily",
			"endpoints": []string{"/health", "POST /daily/new", "POST /daily/guess", "/daily/state", "/daily/leaderboard"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Corpus == nil {
			writeError(w, http.StatusServiceUnavailable, "words_unavailable")
			return
		}
		a, g := s.deps.Corpus.Stats()
		writeJSON(w, http.StatusOK, map[string]int{"answers": a, "allowed": g})
	})
	if d.Metrics != nil {
		s.r.Handle("/metrics", d.Metrics.Handler())
	}

	s.mountDaily(s.r)
	s.r.Post("/admin/login", s.handleAdminLogin)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Handler exposes the router (server startup and tests).
func (s *Server) Handler() http.Handler { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the single configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.deps.Config.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// ------------------------------- helpers -----------------------------------

// lockPlayer holds the player's stripe until the returned func is called.
func (s *Server) lockPlayer(id string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	mu := &s.playerLocks[h.Sum32()%uint32(len(s.playerLocks))]
	mu.Lock()
	return mu.Unlock
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
