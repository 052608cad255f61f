// Command wordle is the operator and offline-play tool for the daily game.
//
//	wordle target [--date D] [--word W] [--overrides FILE]
//	wordle eval GUESS TARGET
//	wordle play [--date D] [--word W]
//	wordle admin-hash PASSWORD
//
// Word sources and the calendar time zone come from the same environment
// variables as the server (WORDS_FILE, DAILY_TZ, ...); flags take precedence.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/robalobadob/wordle/daily/internal/config"
	"github.com/robalobadob/wordle/daily/internal/daily"
	"github.com/robalobadob/wordle/daily/internal/words"
)

// app carries state shared by every subcommand.
type app struct {
	cfg config.Config
	now func() time.Time

	wordsFile   string
	answersFile string
	allowedFile string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	a := &app{now: time.Now}
	root := &cobra.Command{
		Use:               "wordle",
		Short:             "Daily word game tools",
		SilenceUsage:      true,
		PersistentPreRunE: a.init,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.wordsFile, "words", "", "JSON corpus {\"answers\": [...], \"allowed\": [...]} (default $WORDS_FILE)")
	pf.StringVar(&a.answersFile, "answers", "", "answers list, one word per line (default $WORDS_ANSWERS_FILE)")
	pf.StringVar(&a.allowedFile, "allowed", "", "accepted guesses, one word per line (default $WORDS_ALLOWED_FILE)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(a.targetCmd())
	root.AddCommand(evalCmd())
	root.AddCommand(a.playCmd())
	root.AddCommand(adminHashCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) init(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	lvl, err := zerolog.ParseLevel(lo.CoalesceOrEmpty(a.logLevel, cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
		Level(lvl).
		With().Timestamp().Logger()
	return nil
}

// corpus loads the word lists, preferring flags over the environment.
func (a *app) corpus() (*words.Corpus, error) {
	c, err := words.Load(words.Options{
		WordsFile:   lo.CoalesceOrEmpty(a.wordsFile, a.cfg.WordsFile),
		AnswersFile: lo.CoalesceOrEmpty(a.answersFile, a.cfg.AnswersFile),
		AllowedFile: lo.CoalesceOrEmpty(a.allowedFile, a.cfg.AllowedFile),
	})
	if err != nil {
		return nil, fmt.Errorf("load words: %w", err)
	}
	return c, nil
}

// dateKey returns key if set and well-formed, else today in DAILY_TZ.
func (a *app) dateKey(key string) (string, error) {
	if key != "" {
		if _, err := daily.ParseDateKey(key); err != nil {
			return "", fmt.Errorf("date %q: %w", key, err)
		}
		return key, nil
	}
	loc, err := a.cfg.Location()
	if err != nil {
		return "", err
	}
	return daily.DateKey(a.now(), loc), nil
}

// manualWord normalizes an operator-supplied target. Empty means none.
func manualWord(w string) (string, error) {
	if w == "" {
		return "", nil
	}
	n := words.Normalize(w)
	if !words.Valid(n) {
		return "", fmt.Errorf("word %q: must be %d letters A-Z", w, words.Length)
	}
	return n, nil
}
