package httpserver

import (
	"net"
	"net/http"

	"golang.org/x/time/rate"
)

// limiter returns the token bucket for key, creating it on first use.
func (s *Server) limiter(key string) *rate.Limiter {
	s.limiterMu.Lock()
	defer s.limiterMu.Unlock()
	if lim, ok := s.limiters[key]; ok {
		return lim
	}
	rps := s.deps.Config.RateLimitRPS
	if rps <= 0 {
		rps = 1
	}
	burst := s.deps.Config.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}
	lim := rate.NewLimiter(rate.Limit(rps), burst)
	s.limiters[key] = lim
	return lim
}

// rateLimit rejects clients that exceed the per-IP budget with 429.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if host, _, err := net.SplitHostPort(key); err == nil {
			key = host
		}
		if !s.limiter(key).Allow() {
			writeError(w, http.StatusTooManyRequests, "too_many_requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
