// internal/game/types.go
//
// Core type definitions for the game engine.
// Defines:
//   - Mark: per-letter result of a guess (correct/present/absent).
//   - Hints: best mark seen per letter, for the on-screen keyboard.
//   - State: one player's game for one day, replaced (never mutated) per turn.

package game

// Mark represents the evaluation result for a single letter in a guess.
//   - "correct": letter is in the answer at this position.
//   - "present": letter is in the answer at another, still unmatched, position.
//   - "absent":  no unmatched occurrence of the letter remains in the answer.
type Mark string

const (
	MarkCorrect Mark = "correct"
	MarkPresent Mark = "present"
	MarkAbsent  Mark = "absent"
)

// Rank orders marks absent < present < correct. Unknown marks rank 0.
func (m Mark) Rank() int {
	switch m {
	case MarkCorrect:
		return 3
	case MarkPresent:
		return 2
	case MarkAbsent:
		return 1
	}
	return 0
}

// Hints maps a single uppercase letter to the best mark observed for it.
type Hints map[string]Mark

// State holds a single player's game for one date key.
//
// Every field is exported and JSON-tagged so a persisted state reloads
// without loss. Apply returns a fresh State; slices and maps are never
// shared with the previous turn.
type State struct {
	Date     string   `json:"date"`     // YYYY-MM-DD the game belongs to
	Target   string   `json:"target"`   // resolved once at creation
	Rows     int      `json:"rows"`     // maximum guesses (6)
	Cols     int      `json:"cols"`     // letters per word (5)
	Guesses  []string `json:"guesses"`  // accepted guesses, uppercase
	Results  [][]Mark `json:"results"`  // marks aligned with Guesses
	Hints    Hints    `json:"hints"`    // keyboard hints
	Finished bool     `json:"finished"` // won or out of rows
	Won      bool     `json:"won"`
}
