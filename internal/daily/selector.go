package daily

import (
	"errors"

	"github.com/robalobadob/wordle/daily/internal/words"
)

// ErrNoTarget is returned when no strategy in a Selector produced a word.
var ErrNoTarget = errors.New("daily: no strategy resolved a target")

// Strategy resolves the target for a date key, or reports ok=false to let
// the next strategy try. A non-nil error stops resolution.
type Strategy interface {
	Resolve(dateKey string) (word string, ok bool, err error)
}

// Selector evaluates its strategies in order; the first word wins.
type Selector struct {
	Strategies []Strategy
}

// NewSelector builds the standard precedence chain:
// manual override, then per-date override, then rotation over corpus.
func NewSelector(corpus *words.Corpus, overrides Overrides, manual string) *Selector {
	return &Selector{Strategies: []Strategy{
		ManualOverride(manual),
		DateOverrides(overrides),
		Rotation{Corpus: corpus},
	}}
}

// Select returns the uppercase target for dateKey.
func (s *Selector) Select(dateKey string) (string, error) {
	for _, st := range s.Strategies {
		w, ok, err := st.Resolve(dateKey)
		if err != nil {
			return "", err
		}
		if ok {
			return w, nil
		}
	}
	return "", ErrNoTarget
}

// SelectTarget is the one-shot form of NewSelector(...).Select(dateKey).
func SelectTarget(dateKey string, corpus *words.Corpus, overrides Overrides, manual string) (string, error) {
	return NewSelector(corpus, overrides, manual).Select(dateKey)
}

// ManualOverride is an operator-supplied word. It is trusted as-is: only
// length and alphabet are checked, not corpus membership.
type ManualOverride string

func (m ManualOverride) Resolve(string) (string, bool, error) {
	w := words.Normalize(string(m))
	if !words.Valid(w) {
		return "", false, nil
	}
	return w, true, nil
}

// DateOverrides pins specific dates to specific words.
type DateOverrides Overrides

func (o DateOverrides) Resolve(dateKey string) (string, bool, error) {
	w := words.Normalize(o[dateKey])
	if !words.Valid(w) {
		return "", false, nil
	}
	return w, true, nil
}

// Rotation cycles through the corpus answers, one per day, starting at
// index 0 on BaselineKey.
type Rotation struct {
	Corpus *words.Corpus
}

func (r Rotation) Resolve(dateKey string) (string, bool, error) {
	if r.Corpus == nil {
		return "", false, words.ErrEmptyCorpus
	}
	answers := r.Corpus.Answers()
	if len(answers) == 0 {
		return "", false, words.ErrEmptyCorpus
	}
	offset, err := DayOffset(dateKey)
	if err != nil {
		return "", false, err
	}
	return words.Normalize(answers[RotationIndex(offset, len(answers))]), true, nil
}
