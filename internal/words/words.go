// internal/words/words.go
//
// Word corpus management.
//
// Responsibilities:
//   - Load the answer rotation and the accepted-guess dictionary from files,
//     a JSON corpus document, or the embedded defaults.
//   - Normalize every word to uppercase and drop anything that is not exactly
//     Length letters A–Z.
//   - Answer membership lookups for guess validation.
//
// Source precedence (Load):
//  1. WordsFile set: a JSON document {"answers": [...], "allowed": [...]}.
//  2. AnswersFile and AllowedFile set: one word per line in each.
//  3. Only one of them set: that file serves as both lists.
//  4. Nothing set: the lists embedded in the assets package.
//
// The answers list keeps its file order; the daily rotation depends on it.
package words

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/robalobadob/wordle/daily/assets"
)

// Length is the fixed number of letters in every word.
const Length = 5

// ErrEmptyCorpus is returned when no valid answer words remain.
var ErrEmptyCorpus = errors.New("words: answers list is empty")

// Options names the external word sources. Empty fields are unused.
type Options struct {
	WordsFile   string
	AnswersFile string
	AllowedFile string
}

// Corpus holds the answer rotation and the accepted-guess set.
// It is immutable after construction and safe for concurrent use.
type Corpus struct {
	answers   []string
	answerSet map[string]struct{}
	allowed   map[string]struct{} // answers ∪ allowed
}

// NewCorpus normalizes both lists and builds a corpus. Every answer is also
// accepted as a guess.
func NewCorpus(answers, allowed []string) (*Corpus, error) {
	ans := clean(answers)
	if len(ans) == 0 {
		return nil, ErrEmptyCorpus
	}
	return &Corpus{
		answers:   ans,
		answerSet: toSet(ans),
		allowed:   toSet(append(clean(allowed), ans...)),
	}, nil
}

// Load builds a corpus from the configured sources.
func Load(opts Options) (*Corpus, error) {
	var ansList, allowList []string
	var err error

	switch {
	case opts.WordsFile != "":
		ansList, allowList, err = readDocument(opts.WordsFile)

	case opts.AnswersFile != "" && opts.AllowedFile != "":
		if ansList, err = readWordFile(opts.AnswersFile); err == nil {
			allowList, err = readWordFile(opts.AllowedFile)
		}

	case opts.AnswersFile != "" || opts.AllowedFile != "":
		path := opts.AnswersFile
		if path == "" {
			path = opts.AllowedFile
		}
		ansList, err = readWordFile(path)
		allowList = ansList

	default:
		if ansList, err = assets.AnswersList(); err == nil {
			allowList, err = assets.AllowedList()
		}
	}
	if err != nil {
		return nil, err
	}
	return NewCorpus(ansList, allowList)
}

// Answers returns a copy of the answer rotation in source order.
func (c *Corpus) Answers() []string {
	return slices.Clone(c.answers)
}

// IsAllowed reports whether w may be submitted as a guess.
func (c *Corpus) IsAllowed(w string) bool {
	_, ok := c.allowed[Normalize(w)]
	return ok
}

// IsAnswer reports whether w is in the answer rotation.
func (c *Corpus) IsAnswer(w string) bool {
	_, ok := c.answerSet[Normalize(w)]
	return ok
}

// Stats returns counts of loaded words: (answers, allowed).
func (c *Corpus) Stats() (answersCount int, allowedCount int) {
	return len(c.answers), len(c.allowed)
}

// Normalize trims surrounding whitespace and uppercases w.
func Normalize(w string) string {
	return strings.ToUpper(strings.TrimSpace(w))
}

// Valid reports whether w is exactly Length uppercase ASCII letters.
func Valid(w string) bool {
	if len(w) != Length {
		return false
	}
	for i := 0; i < len(w); i++ {
		if w[i] < 'A' || w[i] > 'Z' {
			return false
		}
	}
	return true
}

// readWordFile loads one word per line from a file.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word file: %w", err)
	}
	defer f.Close()
	return assets.ReadLines(f)
}

// corpusDocument is the JSON shape accepted by WordsFile.
type corpusDocument struct {
	Answers []string `json:"answers"`
	Allowed []string `json:"allowed"`
}

func readDocument(path string) (answers, allowed []string, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read corpus document: %w", err)
	}
	var doc corpusDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, nil, fmt.Errorf("decode corpus document %s: %w", path, err)
	}
	return doc.Answers, doc.Allowed, nil
}

// clean normalizes, validates and de-duplicates a list, keeping first-seen order.
func clean(list []string) []string {
	return lo.Uniq(lo.FilterMap(list, func(w string, _ int) (string, bool) {
		w = Normalize(w)
		return w, Valid(w)
	}))
}

func toSet(list []string) map[string]struct{} {
	return lo.Associate(list, func(w string) (string, struct{}) {
		return w, struct{}{}
	})
}
