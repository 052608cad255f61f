package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/wordle/daily/internal/config"
	"github.com/robalobadob/wordle/daily/internal/daily"
	"github.com/robalobadob/wordle/daily/internal/observability"
	"github.com/robalobadob/wordle/daily/internal/store"
	"github.com/robalobadob/wordle/daily/internal/words"
)

// 2026-01-01 is day zero, so the rotation picks answers[0].
var fixedNow = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

const adminPassword = "hunter22"

type testEnv struct {
	srv *httptest.Server
}

func newTestEnv(t *testing.T, mutate func(*Deps)) *testEnv {
	t.Helper()

	corpus, err := words.NewCorpus(
		[]string{"CRANE", "SLATE", "PLUMB"},
		[]string{"SPEED", "ERASE", "TRACE", "GHOST"},
	)
	require.NoError(t, err)

	db, err := store.OpenSQLite(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := config.Config{
		Env:               "test",
		AnonCookie:        "wordle_anon",
		JWTSecret:         "test-secret",
		AdminPasswordHash: string(hash),
		AdminTokenTTL:     time.Hour,
		RateLimitRPS:      1000,
		RateLimitBurst:    1000,
	}
	d := Deps{
		Sessions:  db,
		Results:   daily.NewStore(db.DB()),
		Corpus:    corpus,
		Overrides: daily.Overrides{},
		Config:    cfg,
		Location:  time.UTC,
		Metrics:   observability.NewMetrics(),
		Now:       func() time.Time { return fixedNow },
	}
	if mutate != nil {
		mutate(&d)
	}

	ts := httptest.NewServer(New(d).Handler())
	t.Cleanup(ts.Close)
	return &testEnv{srv: ts}
}

// player returns a client with its own cookie jar, i.e. a distinct player.
func (e *testEnv) player(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func (e *testEnv) do(t *testing.T, c *http.Client, method, path string, body any, token string, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := c.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

type errBody struct {
	Error string `json:"error"`
}

func TestDaily_PlayToWin(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.player(t)

	var started newRes
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/daily/new", nil, "", &started))
	assert.True(t, started.Created)
	assert.Equal(t, "2026-01-01", started.Date)
	assert.Equal(t, 6, started.Rows)
	assert.Equal(t, 5, started.Cols)
	assert.Empty(t, started.Answer, "target must stay hidden while playing")

	var g guessRes
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/daily/guess", guessReq{Word: "trace"}, "", &g))
	assert.Equal(t, "playing", g.State.Status)
	assert.Equal(t, 1, g.State.Row)
	assert.Len(t, g.Marks, 5)
	assert.Empty(t, g.State.Answer)

	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/daily/guess", guessReq{Word: "CRANE"}, "", &g))
	assert.True(t, g.State.Finished)
	assert.True(t, g.State.Won)
	assert.Equal(t, "CRANE", g.State.Answer)
	assert.Contains(t, g.State.Share, "2/6")

	var lb lbRes
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodGet, "/daily/leaderboard", nil, "", &lb))
	assert.Equal(t, "2026-01-01", lb.Date)
	require.Len(t, lb.Top, 1)
	assert.Equal(t, 2, lb.Top[0].Guesses)
}

func TestDaily_NewResumesExistingSession(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.player(t)

	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/daily/new", nil, "", nil))
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/daily/guess", guessReq{Word: "SLATE"}, "", nil))

	var again newRes
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/daily/new", nil, "", &again))
	assert.False(t, again.Created)
	assert.Equal(t, []string{"SLATE"}, again.Guesses)

	var st stateView
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodGet, "/daily/state", nil, "", &st))
	assert.Equal(t, 1, st.Row)
	assert.Empty(t, st.Answer)
}

func TestDaily_GuessRejections(t *testing.T) {
	e := newTestEnv(t, nil)

	var eb errBody
	fresh := e.player(t)
	assert.Equal(t, http.StatusConflict, e.do(t, fresh, http.MethodPost, "/daily/guess", guessReq{Word: "CRANE"}, "", &eb))
	assert.Equal(t, "no_session", eb.Error)
	assert.Equal(t, http.StatusNotFound, e.do(t, fresh, http.MethodGet, "/daily/state", nil, "", &eb))

	c := e.player(t)
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/daily/new", nil, "", nil))

	assert.Equal(t, http.StatusBadRequest, e.do(t, c, http.MethodPost, "/daily/guess", guessReq{Word: "CRAN"}, "", &eb))
	assert.Equal(t, "invalid_guess_length", eb.Error)

	assert.Equal(t, http.StatusUnprocessableEntity, e.do(t, c, http.MethodPost, "/daily/guess", guessReq{Word: "ZZZZZ"}, "", &eb))
	assert.Equal(t, "not_in_word_list", eb.Error)

	var st stateView
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodGet, "/daily/state", nil, "", &st))
	assert.Equal(t, 0, st.Row, "rejected guesses do not consume a row")

	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/daily/guess", guessReq{Word: "CRANE"}, "", nil))
	assert.Equal(t, http.StatusConflict, e.do(t, c, http.MethodPost, "/daily/guess", guessReq{Word: "SLATE"}, "", &eb))
	assert.Equal(t, "game_finished", eb.Error)
}

func TestDaily_LossAfterSixRows(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.player(t)
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/daily/new", nil, "", nil))

	var g guessRes
	for i := 0; i < 6; i++ {
		require.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/daily/guess", guessReq{Word: "GHOST"}, "", &g))
	}
	assert.Equal(t, "lost", g.State.Status)
	assert.Equal(t, "CRANE", g.State.Answer)

	var lb lbRes
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodGet, "/daily/leaderboard?date=2026-01-01", nil, "", &lb))
	assert.Empty(t, lb.Top, "losses are not ranked")
}

func TestDaily_DateOverrideBeatsRotation(t *testing.T) {
	e := newTestEnv(t, func(d *Deps) {
		d.Overrides = daily.Overrides{"2026-01-01": "GHOST"}
	})
	c := e.player(t)
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/daily/new", nil, "", nil))

	var g guessRes
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/daily/guess", guessReq{Word: "GHOST"}, "", &g))
	assert.True(t, g.State.Won)
}

func TestDaily_ClientDateKey(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.player(t)

	var st newRes
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/daily/new", newReq{Date: "2026-01-02"}, "", &st))
	assert.Equal(t, "2026-01-02", st.Date)

	var g guessRes
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/daily/guess", guessReq{Date: "2026-01-02", Word: "SLATE"}, "", &g))
	assert.True(t, g.State.Won, "day one of the rotation is answers[1]")
}

func TestResolveDate(t *testing.T) {
	s := New(Deps{Location: time.UTC, Now: func() time.Time { return fixedNow }})
	cases := map[string]string{
		"":           "2026-01-01",
		"2026-01-01": "2026-01-01",
		"2025-12-31": "2025-12-31",
		"2026-01-02": "2026-01-02",
		"2026-01-03": "2026-01-01",
		"2025-12-30": "2026-01-01",
		"garbage":    "2026-01-01",
		"2026-13-01": "2026-01-01",
	}
	for in, want := range cases {
		assert.Equal(t, want, s.resolveDate(in), "client key %q", in)
	}
}

func TestAdmin_ManualOverride(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.player(t)

	var eb errBody
	assert.Equal(t, http.StatusForbidden, e.do(t, c, http.MethodPost, "/daily/new", newReq{Word: "ZESTY"}, "", &eb))
	assert.Equal(t, "override_requires_admin", eb.Error)

	assert.Equal(t, http.StatusUnauthorized, e.do(t, c, http.MethodPost, "/admin/login", adminLoginReq{Password: "nope"}, "", &eb))

	var login adminLoginRes
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/admin/login", adminLoginReq{Password: adminPassword}, "", &login))
	require.NotEmpty(t, login.Token)
	assert.Equal(t, fixedNow.Add(time.Hour).Unix(), login.ExpiresAt.Unix())

	assert.Equal(t, http.StatusBadRequest, e.do(t, c, http.MethodPost, "/daily/new", newReq{Word: "ZZ"}, login.Token, &eb))
	assert.Equal(t, "invalid_override", eb.Error)

	var started newRes
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/daily/new", newReq{Word: "zesty"}, login.Token, &started))
	assert.True(t, started.Created)

	// The target is accepted as a guess even though it is not in the corpus.
	var g guessRes
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/daily/guess", guessReq{Word: "ZESTY"}, "", &g))
	assert.True(t, g.State.Won)
	assert.Equal(t, "ZESTY", g.State.Answer)
}

func TestAdmin_ForgedTokenRejected(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.player(t)

	other := New(Deps{Config: config.Config{JWTSecret: "someone-else"}, Now: func() time.Time { return fixedNow }})
	tok, _, err := other.signAdminJWT()
	require.NoError(t, err)

	var eb errBody
	assert.Equal(t, http.StatusForbidden, e.do(t, c, http.MethodPost, "/daily/new", newReq{Word: "ZESTY"}, tok, &eb))
}

func TestAdmin_LoginDisabledWithoutHash(t *testing.T) {
	e := newTestEnv(t, func(d *Deps) { d.Config.AdminPasswordHash = "" })
	var eb errBody
	assert.Equal(t, http.StatusForbidden, e.do(t, e.player(t), http.MethodPost, "/admin/login", adminLoginReq{Password: adminPassword}, "", &eb))
	assert.Equal(t, "admin_disabled", eb.Error)
}

func TestDaily_TargetUnavailable(t *testing.T) {
	e := newTestEnv(t, func(d *Deps) { d.Corpus = nil })
	var eb errBody
	assert.Equal(t, http.StatusServiceUnavailable, e.do(t, e.player(t), http.MethodPost, "/daily/new", nil, "", &eb))
	assert.Equal(t, "target_unavailable", eb.Error)
}

func TestLeaderboard_InvalidDate(t *testing.T) {
	e := newTestEnv(t, nil)
	var eb errBody
	assert.Equal(t, http.StatusBadRequest, e.do(t, e.player(t), http.MethodGet, "/daily/leaderboard?date=01-01-2026", nil, "", &eb))
	assert.Equal(t, "invalid_date", eb.Error)
}

func TestLeaderboard_OrdersByGuessesThenTime(t *testing.T) {
	var elapsed atomic.Int64
	e := newTestEnv(t, func(d *Deps) {
		d.Now = func() time.Time { return fixedNow.Add(time.Duration(elapsed.Load())) }
	})

	slow := e.player(t)
	fast := e.player(t)
	three := e.player(t)

	require.Equal(t, http.StatusOK, e.do(t, slow, http.MethodPost, "/daily/new", nil, "", nil))
	require.Equal(t, http.StatusOK, e.do(t, fast, http.MethodPost, "/daily/new", nil, "", nil))
	require.Equal(t, http.StatusOK, e.do(t, three, http.MethodPost, "/daily/new", nil, "", nil))

	elapsed.Store(int64(time.Second))
	require.Equal(t, http.StatusOK, e.do(t, fast, http.MethodPost, "/daily/guess", guessReq{Word: "CRANE"}, "", nil))
	require.Equal(t, http.StatusOK, e.do(t, three, http.MethodPost, "/daily/guess", guessReq{Word: "SLATE"}, "", nil))
	require.Equal(t, http.StatusOK, e.do(t, three, http.MethodPost, "/daily/guess", guessReq{Word: "PLUMB"}, "", nil))
	elapsed.Store(int64(time.Minute))
	require.Equal(t, http.StatusOK, e.do(t, slow, http.MethodPost, "/daily/guess", guessReq{Word: "CRANE"}, "", nil))
	require.Equal(t, http.StatusOK, e.do(t, three, http.MethodPost, "/daily/guess", guessReq{Word: "CRANE"}, "", nil))

	var lb lbRes
	require.Equal(t, http.StatusOK, e.do(t, fast, http.MethodGet, "/daily/leaderboard", nil, "", &lb))
	require.Len(t, lb.Top, 3)
	assert.Equal(t, []int{1000, 60000, 60000}, []int{lb.Top[0].ElapsedMs, lb.Top[1].ElapsedMs, lb.Top[2].ElapsedMs})
	assert.Equal(t, []int{1, 1, 3}, []int{lb.Top[0].Guesses, lb.Top[1].Guesses, lb.Top[2].Guesses})
}

func TestRateLimit(t *testing.T) {
	e := newTestEnv(t, func(d *Deps) {
		d.Config.RateLimitRPS = 0.001
		d.Config.RateLimitBurst = 1
	})
	c := e.player(t)
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/daily/new", nil, "", nil))

	var eb errBody
	assert.Equal(t, http.StatusTooManyRequests, e.do(t, c, http.MethodPost, "/daily/new", nil, "", &eb))
	assert.Equal(t, "too_many_requests", eb.Error)

	// Reads are not limited.
	assert.Equal(t, http.StatusOK, e.do(t, c, http.MethodGet, "/daily/state", nil, "", nil))
}

func TestDiagnostics(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.player(t)

	var health map[string]bool
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodGet, "/health", nil, "", &health))
	assert.True(t, health["ok"])

	var stats map[string]int
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodGet, "/debug/words", nil, "", &stats))
	assert.Equal(t, 3, stats["answers"])
	assert.Equal(t, 7, stats["allowed"])

	var nf map[string]string
	assert.Equal(t, http.StatusNotFound, e.do(t, c, http.MethodGet, "/nope", nil, "", &nf))
	assert.Equal(t, "not_found", nf["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.player(t)
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/daily/new", nil, "", nil))
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/daily/guess", guessReq{Word: "CRANE"}, "", nil))

	res, err := c.Get(e.srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	var body bytes.Buffer
	_, err = body.ReadFrom(res.Body)
	require.NoError(t, err)

	out := body.String()
	assert.Contains(t, out, `wordle_sessions_started_total{override="false"} 1`)
	assert.Contains(t, out, `wordle_games_finished_total{result="won"} 1`)
	assert.Contains(t, out, `wordle_guesses_total{outcome="scored"} 1`)
	assert.Contains(t, out, `http_requests_total{route="/daily/new",status="200"} 1`)
}

func TestDaily_SessionSurvivesMidnight(t *testing.T) {
	var now atomic.Int64
	now.Store(time.Date(2026, 1, 1, 23, 59, 0, 0, time.UTC).UnixNano())
	e := newTestEnv(t, func(d *Deps) {
		d.Now = func() time.Time { return time.Unix(0, now.Load()).UTC() }
	})
	c := e.player(t)

	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/daily/new", nil, "", nil))
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/daily/guess", guessReq{Word: "TRACE"}, "", nil))

	now.Store(time.Date(2026, 1, 2, 0, 1, 0, 0, time.UTC).UnixNano())

	var st stateView
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodGet, "/daily/state", nil, "", &st))
	assert.Equal(t, "2026-01-01", st.Date)
	assert.Equal(t, 1, st.Row)

	var g guessRes
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/daily/guess", guessReq{Word: "CRANE"}, "", &g))
	assert.True(t, g.State.Won, "the word fixed at session start still wins")
	assert.Equal(t, "2026-01-01", g.State.Date)

	// Starting again picks up the new day.
	var next newRes
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/daily/new", nil, "", &next))
	assert.True(t, next.Created)
	assert.Equal(t, "2026-01-02", next.Date)
}

func TestDaily_RecordedResultBlocksReplay(t *testing.T) {
	var results *daily.Store
	e := newTestEnv(t, func(d *Deps) {
		d.Sessions = store.NewMemoryStore()
		results = d.Results
	})
	require.NoError(t, results.InsertResult(context.Background(), daily.Result{
		PlayerID: "returning-player", Date: "2026-01-01", Won: true, Guesses: 3, ElapsedMs: 9000,
	}))

	c := e.player(t)
	u, err := url.Parse(e.srv.URL)
	require.NoError(t, err)
	c.Jar.SetCookies(u, []*http.Cookie{{Name: "wordle_anon", Value: "returning-player", Path: "/"}})

	var eb errBody
	assert.Equal(t, http.StatusConflict, e.do(t, c, http.MethodPost, "/daily/new", nil, "", &eb))
	assert.Equal(t, "already_played", eb.Error)

	// Other days and other players are unaffected.
	assert.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/daily/new", newReq{Date: "2026-01-02"}, "", nil))
	assert.Equal(t, http.StatusOK, e.do(t, e.player(t), http.MethodPost, "/daily/new", nil, "", nil))
}

func TestDiagnostics_NoCorpus(t *testing.T) {
	e := newTestEnv(t, func(d *Deps) { d.Corpus = nil })
	var eb errBody
	assert.Equal(t, http.StatusServiceUnavailable, e.do(t, e.player(t), http.MethodGet, "/debug/words", nil, "", &eb))
	assert.Equal(t, "words_unavailable", eb.Error)
}

func TestDaily_ConcurrentGuessesEachTakeARow(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.player(t)
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodPost, "/daily/new", nil, "", nil))

	const n = 5
	rows := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			body, _ := json.Marshal(guessReq{Word: "TRACE"})
			res, err := c.Post(e.srv.URL+"/daily/guess", "application/json", bytes.NewReader(body))
			if err != nil {
				rows <- -1
				return
			}
			defer res.Body.Close()
			var g guessRes
			if res.StatusCode != http.StatusOK || json.NewDecoder(res.Body).Decode(&g) != nil {
				rows <- -1
				return
			}
			rows <- g.State.Row
		}()
	}
	wg.Wait()
	close(rows)

	seen := map[int]bool{}
	for r := range rows {
		seen[r] = true
	}
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}, seen)

	var st stateView
	require.Equal(t, http.StatusOK, e.do(t, c, http.MethodGet, "/daily/state", nil, "", &st))
	assert.Equal(t, n, st.Row)
}
