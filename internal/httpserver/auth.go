package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const adminRole = "admin"

type adminLoginReq struct {
	Password string `json:"password"`
}

type adminLoginRes struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// handleAdminLogin checks the operator password against ADMIN_PASSWORD_HASH
// and returns a short-lived admin JWT.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	hash := s.deps.Config.AdminPasswordHash
	if hash == "" {
		writeError(w, http.StatusForbidden, "admin_disabled")
		return
	}
	var body adminLoginReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(body.Password)) != nil {
		log.Warn().Str("ip", r.RemoteAddr).Msg("admin login rejected")
		writeError(w, http.StatusUnauthorized, "invalid_password")
		return
	}
	tok, exp, err := s.signAdminJWT()
	if err != nil {
		log.Error().Err(err).Msg("sign admin token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	writeJSON(w, http.StatusOK, adminLoginRes{Token: tok, ExpiresAt: exp})
}

// signAdminJWT creates an HS256 token carrying the admin role.
func (s *Server) signAdminJWT() (string, time.Time, error) {
	now := s.deps.Now()
	ttl := s.deps.Config.AdminTokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	exp := now.Add(ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "operator",
		"role": adminRole,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.deps.Config.JWTSecret))
	return ss, exp, err
}

// isAdmin reports whether r carries a valid, unexpired admin bearer token.
func (s *Server) isAdmin(r *http.Request) bool {
	tok := bearer(r)
	if tok == "" {
		return false
	}
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.deps.Config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.deps.Now))
	if err != nil || !t.Valid {
		return false
	}
	role, _ := claims["role"].(string)
	return role == adminRole
}

// bearer extracts the token from "Authorization: Bearer <token>".
func bearer(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}

// playerID returns the anonymous player cookie, setting a new one if absent.
// It keys per-day sessions and leaderboard rows.
func (s *Server) playerID(w http.ResponseWriter, r *http.Request) string {
	name := s.deps.Config.AnonCookie
	if name == "" {
		name = "wordle_anon"
	}
	if c, err := r.Cookie(name); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	secure := s.deps.Config.Production()
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		MaxAge:   int((180 * 24 * time.Hour).Seconds()),
	})
	return id
}
