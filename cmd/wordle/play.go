package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/robalobadob/wordle/daily/internal/daily"
	"github.com/robalobadob/wordle/daily/internal/game"
)

func (a *app) playCmd() *cobra.Command {
	var date, word, overridesFile string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a day's game in the terminal",
		Long: `Play the game for a date, one guess per line. --word plays a
practice game against a chosen target instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := a.dateKey(date)
			if err != nil {
				return err
			}
			manual, err := manualWord(word)
			if err != nil {
				return err
			}
			corpus, err := a.corpus()
			if err != nil {
				return err
			}
			overrides, err := daily.LoadOverrides(lo.CoalesceOrEmpty(overridesFile, a.cfg.OverridesFile))
			if err != nil {
				return err
			}
			target, err := daily.SelectTarget(key, corpus, overrides, manual)
			if err != nil {
				return err
			}

			final, err := playLoop(cmd.Context().Done(), cmd.InOrStdin(), cmd.OutOrStdout(), game.New(key, target), corpus)
			if err != nil {
				return err
			}
			if !final.Finished {
				fmt.Fprintln(cmd.OutOrStdout(), "game abandoned")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date key YYYY-MM-DD (default today in $DAILY_TZ)")
	cmd.Flags().StringVar(&word, "word", "", "practice against this word")
	cmd.Flags().StringVar(&overridesFile, "overrides", "", "JSON map of date key to word (default $OVERRIDES_FILE)")
	return cmd
}

// playLoop reads guesses from in until the game finishes, input ends, or
// done is closed. Rejected guesses are reported and do not use a row.
func playLoop(done <-chan struct{}, in io.Reader, out io.Writer, st game.State, dict game.Dictionary) (game.State, error) {
	lines, readErr := readLines(done, in)
	for !st.Finished {
		fmt.Fprintf(out, "Guess %d/%d: ", st.Row()+1, st.Rows)
		var line string
		select {
		case <-done:
			fmt.Fprintln(out)
			return st, nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return st, <-readErr
			}
			line = l
		}

		next, marks, err := st.Apply(line, dict)
		switch {
		case errors.Is(err, game.ErrInvalidGuessLength):
			fmt.Fprintln(out, "  five letters A-Z, please")
			continue
		case errors.Is(err, game.ErrGuessNotAccepted):
			fmt.Fprintln(out, "  not in word list")
			continue
		case err != nil:
			return st, err
		}
		st = next
		fmt.Fprintf(out, "  %s  %s\n", game.Tiles(marks), st.Guesses[len(st.Guesses)-1])
		fmt.Fprint(out, keyboard(st.Hints))
	}

	if st.Won {
		fmt.Fprintf(out, "\nSolved in %d.\n", len(st.Guesses))
	} else {
		fmt.Fprintf(out, "\nThe word was %s.\n", st.Target)
	}
	fmt.Fprintln(out, game.ShareText(st))
	return st, nil
}

// readLines scans in on its own goroutine so a blocked read never delays
// cancellation. lines is closed at end of input, after the scan error (or
// nil) has been sent on the returned error channel.
func readLines(done <-chan struct{}, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
		errc <- sc.Err()
		close(lines)
	}()
	return lines, errc
}

// keyboard lists the hinted letters grouped by mark, best first.
func keyboard(h game.Hints) string {
	var b strings.Builder
	for _, m := range []game.Mark{game.MarkCorrect, game.MarkPresent, game.MarkAbsent} {
		letters := lo.FilterMap(lo.Keys(h), func(l string, _ int) (string, bool) {
			return l, h[l] == m
		})
		if len(letters) == 0 {
			continue
		}
		sort.Strings(letters)
		fmt.Fprintf(&b, "  %-8s %s\n", m+":", strings.Join(letters, " "))
	}
	return b.String()
}
