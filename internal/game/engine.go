// internal/game/engine.go
//
// Core game engine for a single daily game.
// Responsibilities:
//   - Create new games with fixed dimensions (6x5).
//   - Validate guesses (length, alphabet, accepted set) before scoring.
//   - Score guesses with the two-pass algorithm.
//   - Track state transitions: playing → won/lost.
//
// Nothing in this package performs I/O or keeps package-level state.
package game

import (
	"errors"
	"slices"

	"github.com/robalobadob/wordle/daily/internal/words"
)

const (
	defaultRows = 6
	defaultCols = words.Length
)

var (
	ErrInvalidGuessLength = errors.New("invalid guess length")
	ErrGuessNotAccepted   = errors.New("not in word list")
	ErrGameFinished       = errors.New("game finished")
)

// Dictionary reports whether a word may be submitted as a guess.
// *words.Corpus satisfies it.
type Dictionary interface {
	IsAllowed(word string) bool
}

// New constructs the initial state for date with an already resolved target.
func New(date, target string) State {
	return State{
		Date:    date,
		Target:  words.Normalize(target),
		Rows:    defaultRows,
		Cols:    defaultCols,
		Guesses: []string{},
		Results: [][]Mark{},
		Hints:   Hints{},
	}
}

// Validate checks a normalized guess against the caller-side preconditions
// of Evaluate. The target is always accepted, even when dict lacks it.
func Validate(guess, target string, dict Dictionary) error {
	if !words.Valid(guess) {
		return ErrInvalidGuessLength
	}
	if guess != target && (dict == nil || !dict.IsAllowed(guess)) {
		return ErrGuessNotAccepted
	}
	return nil
}

// Apply validates and scores a guess and returns the next state.
// On error the returned state is s itself and no row is consumed.
//
// State transitions:
//   - All tiles correct → Finished, Won.
//   - Otherwise, reaching Rows guesses → Finished (loss).
func (s State) Apply(guess string, dict Dictionary) (State, []Mark, error) {
	if s.Finished {
		return s, nil, ErrGameFinished
	}
	guess = words.Normalize(guess)
	if err := Validate(guess, s.Target, dict); err != nil {
		return s, nil, err
	}

	marks := Evaluate(guess, s.Target)

	next := s
	next.Guesses = append(slices.Clone(s.Guesses), guess)
	next.Results = append(slices.Clone(s.Results), marks)
	next.Hints = PromoteGuess(s.Hints, guess, marks)

	if allCorrect(marks) {
		next.Finished, next.Won = true, true
	} else if len(next.Guesses) >= s.rows() {
		next.Finished = true
	}
	return next, marks, nil
}

// Row is the index of the next row to fill.
func (s State) Row() int { return len(s.Guesses) }

// Status reports a coarse string representation of the current game state.
func (s State) Status() string {
	if s.Finished {
		if s.Won {
			return "won"
		}
		return "lost"
	}
	return "playing"
}

func (s State) rows() int {
	if s.Rows <= 0 {
		return defaultRows
	}
	return s.Rows
}

// Evaluate scores guess against target. Both must be the same length and
// uppercase; callers validate first.
//
// Pass 1 marks exact matches correct and consumes those letters from a
// tally of the target's letters. Pass 2 marks each remaining position
// present while its letter still has a positive tally, else absent. This
// caps present marks at the number of unmatched occurrences in the target.
func Evaluate(guess, target string) []Mark {
	n := len(guess)
	res := make([]Mark, n)

	var counts [26]int
	for i := 0; i < len(target); i++ {
		if j := idx(target[i]); j >= 0 {
			counts[j]++
		}
	}

	for i := 0; i < n && i < len(target); i++ {
		if guess[i] == target[i] {
			res[i] = MarkCorrect
			if j := idx(guess[i]); j >= 0 {
				counts[j]--
			}
		}
	}

	for i := 0; i < n; i++ {
		if res[i] == MarkCorrect {
			continue
		}
		if j := idx(guess[i]); j >= 0 && counts[j] > 0 {
			res[i] = MarkPresent
			counts[j]--
		} else {
			res[i] = MarkAbsent
		}
	}
	return res
}

// idx maps an uppercase ASCII letter to 0..25, anything else to -1.
func idx(b byte) int {
	if b < 'A' || b > 'Z' {
		return -1
	}
	return int(b - 'A')
}

func allCorrect(m []Mark) bool {
	for _, x := range m {
		if x != MarkCorrect {
			return false
		}
	}
	return len(m) > 0
}
