// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily game. Endpoints under /daily:
//   - POST /daily/new         → start or resume the player's game for a date
//   - POST /daily/guess       → submit one guess
//   - GET  /daily/state       → current board for a date
//   - GET  /daily/leaderboard → winners for a date (default today)
//
// The target is resolved once, when the session is created, and stored with
// it. /daily/new also pins the session's date key in a cookie, so a guess
// submitted after midnight still reaches the same session and word.
// The target is only revealed once the game is finished.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/daily/internal/daily"
	"github.com/robalobadob/wordle/daily/internal/game"
	"github.com/robalobadob/wordle/daily/internal/store"
	"github.com/robalobadob/wordle/daily/internal/words"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.With(s.rateLimit).Post("/new", s.handleNew)
		r.With(s.rateLimit).Post("/guess", s.handleGuess)
		r.Get("/state", s.handleState)
		r.Get("/leaderboard", s.handleLeaderboard)
	})
}

// today returns the server's date key in the configured calendar.
func (s *Server) today() string {
	return daily.DateKey(s.deps.Now(), s.deps.Location)
}

// resolveDate honours a client's local date key when it is well-formed and
// within one day of the server's; otherwise the server's date is used.
func (s *Server) resolveDate(client string) string {
	today := s.today()
	if client == "" {
		return today
	}
	c, err := daily.EpochDay(client)
	if err != nil {
		return today
	}
	t, _ := daily.EpochDay(today)
	if d := c - t; d < -1 || d > 1 {
		return today
	}
	return client
}

// sessionDate picks the date key of an existing session: the client's key,
// else the day pinned by /daily/new, else today. resolveDate still applies.
func (s *Server) sessionDate(r *http.Request, client string) string {
	if client == "" {
		if c, err := r.Cookie(s.dayCookie()); err == nil {
			client = c.Value
		}
	}
	return s.resolveDate(client)
}

func (s *Server) dayCookie() string {
	name := s.deps.Config.AnonCookie
	if name == "" {
		name = "wordle_anon"
	}
	return name + "_day"
}

// pinDate remembers the date key of the session just started or resumed.
func (s *Server) pinDate(w http.ResponseWriter, date string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.dayCookie(),
		Value:    date,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.deps.Config.Production(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int((48 * time.Hour).Seconds()),
	})
}

// dictionary returns the accepted-guess set, or nil when no corpus is loaded.
func (s *Server) dictionary() game.Dictionary {
	if s.deps.Corpus == nil {
		return nil
	}
	return s.deps.Corpus
}

// stateView is the client-facing projection of a game.State. Answer and
// Share are only set once the game is finished.
type stateView struct {
	Date     string        `json:"date"`
	Rows     int           `json:"rows"`
	Cols     int           `json:"cols"`
	Row      int           `json:"row"`
	Guesses  []string      `json:"guesses"`
	Results  [][]game.Mark `json:"results"`
	Hints    game.Hints    `json:"hints"`
	Status   string        `json:"status"`
	Finished bool          `json:"finished"`
	Won      bool          `json:"won"`
	Answer   string        `json:"answer,omitempty"`
	Share    string        `json:"share,omitempty"`
}

func viewOf(st game.State) stateView {
	v := stateView{
		Date:     st.Date,
		Rows:     st.Rows,
		Cols:     st.Cols,
		Row:      st.Row(),
		Guesses:  st.Guesses,
		Results:  st.Results,
		Hints:    st.Hints,
		Status:   st.Status(),
		Finished: st.Finished,
		Won:      st.Won,
	}
	if st.Finished {
		v.Answer = st.Target
		v.Share = game.ShareText(st)
	}
	return v
}

// -----------------------------------------------------------------------------
// /daily/new

type newReq struct {
	Date string `json:"date"` // client's local YYYY-MM-DD (optional)
	Word string `json:"word"` // manual override; admin token required
}

type newRes struct {
	stateView
	Created bool `json:"created"`
}

// handleNew resumes today's session or creates one.
//   - With an admin bearer token, Word replaces the target and restarts the day.
//   - A player whose result for the day is already recorded cannot start over.
//   - Target selection failure aborts the start with 503.
func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	var req newReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
	}
	player := s.playerID(w, r)
	date := s.resolveDate(req.Date)

	manual := ""
	if req.Word != "" {
		if !s.isAdmin(r) {
			writeError(w, http.StatusForbidden, "override_requires_admin")
			return
		}
		manual = words.Normalize(req.Word)
		if !words.Valid(manual) {
			writeError(w, http.StatusBadRequest, "invalid_override")
			return
		}
	}

	unlock := s.lockPlayer(player)
	defer unlock()

	if manual == "" {
		rec, err := s.deps.Sessions.Get(r.Context(), player, date)
		if err == nil {
			s.pinDate(w, date)
			writeJSON(w, http.StatusOK, newRes{stateView: viewOf(rec.State)})
			return
		}
		if !errors.Is(err, store.ErrNotFound) {
			log.Error().Err(err).Str("player", player).Str("date", date).Msg("load session")
			writeError(w, http.StatusInternalServerError, "load_failed")
			return
		}
		if s.deps.Results != nil {
			played, err := s.deps.Results.AlreadyPlayed(r.Context(), player, date)
			if err != nil {
				log.Error().Err(err).Str("player", player).Str("date", date).Msg("check played")
				writeError(w, http.StatusInternalServerError, "load_failed")
				return
			}
			if played {
				writeError(w, http.StatusConflict, "already_played")
				return
			}
		}
	}

	target, err := daily.SelectTarget(date, s.deps.Corpus, s.deps.Overrides, manual)
	if err != nil {
		log.Error().Err(err).Str("date", date).Msg("select target")
		writeError(w, http.StatusServiceUnavailable, "target_unavailable")
		return
	}

	rec := store.Record{
		PlayerID:  player,
		State:     game.New(date, target),
		StartedAt: s.deps.Now(),
	}
	if err := s.deps.Sessions.Save(r.Context(), rec); err != nil {
		log.Error().Err(err).Str("player", player).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	s.pinDate(w, date)
	s.deps.Metrics.SessionStarted(manual != "")
	log.Info().Str("player", player).Str("date", date).Bool("override", manual != "").Msg("daily session started")

	writeJSON(w, http.StatusOK, newRes{stateView: viewOf(rec.State), Created: true})
}

// -----------------------------------------------------------------------------
// /daily/guess

type guessReq struct {
	Date string `json:"date"`
	Word string `json:"word"`
}

type guessRes struct {
	Marks []game.Mark `json:"marks"`
	State stateView   `json:"state"`
}

// guessErrors maps engine validation errors to status and error code.
// None of them consume a row.
var guessErrors = []struct {
	err    error
	status int
	code   string
}{
	{game.ErrInvalidGuessLength, http.StatusBadRequest, "invalid_guess_length"},
	{game.ErrGuessNotAccepted, http.StatusUnprocessableEntity, "not_in_word_list"},
	{game.ErrGameFinished, http.StatusConflict, "game_finished"},
}

// handleGuess validates and applies a guess for the player's session.
// A finished game is recorded in the leaderboard.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	player := s.playerID(w, r)
	date := s.sessionDate(r, req.Date)

	unlock := s.lockPlayer(player)
	defer unlock()

	rec, err := s.deps.Sessions.Get(r.Context(), player, date)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusConflict, "no_session")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("player", player).Msg("load session")
		writeError(w, http.StatusInternalServerError, "load_failed")
		return
	}

	next, marks, err := rec.State.Apply(req.Word, s.dictionary())
	if err != nil {
		for _, ge := range guessErrors {
			if errors.Is(err, ge.err) {
				s.deps.Metrics.Guess(ge.code)
				writeError(w, ge.status, ge.code)
				return
			}
		}
		writeError(w, http.StatusBadRequest, "invalid_guess")
		return
	}
	s.deps.Metrics.Guess("scored")

	rec.State = next
	if err := s.deps.Sessions.Save(r.Context(), rec); err != nil {
		log.Error().Err(err).Str("player", player).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	if next.Finished {
		s.deps.Metrics.GameFinished(next.Won)
		s.recordResult(r, rec)
	}
	writeJSON(w, http.StatusOK, guessRes{Marks: marks, State: viewOf(next)})
}

// recordResult writes the leaderboard row; failures are logged, not surfaced.
func (s *Server) recordResult(r *http.Request, rec store.Record) {
	if s.deps.Results == nil {
		return
	}
	res := daily.Result{
		PlayerID:  rec.PlayerID,
		Date:      rec.State.Date,
		Won:       rec.State.Won,
		Guesses:   len(rec.State.Guesses),
		ElapsedMs: int(s.deps.Now().Sub(rec.StartedAt).Milliseconds()),
	}
	if err := s.deps.Results.InsertResult(r.Context(), res); err != nil {
		log.Warn().Err(err).Str("player", rec.PlayerID).Msg("insert daily result")
	}
}

// -----------------------------------------------------------------------------
// /daily/state

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	player := s.playerID(w, r)
	date := s.sessionDate(r, r.URL.Query().Get("date"))
	rec, err := s.deps.Sessions.Get(r.Context(), player, date)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no_session")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("player", player).Msg("load session")
		writeError(w, http.StatusInternalServerError, "load_failed")
		return
	}
	writeJSON(w, http.StatusOK, viewOf(rec.State))
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for ?date= (default today).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.deps.Results == nil {
		writeError(w, http.StatusServiceUnavailable, "leaderboard_disabled")
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = s.today()
	} else if _, err := daily.ParseDateKey(date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date")
		return
	}
	rows, err := s.deps.Results.Leaderboard(r.Context(), date, 20)
	if err != nil {
		log.Error().Err(err).Str("date", date).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
