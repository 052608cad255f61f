package game

import (
	"fmt"
	"strings"
)

var tiles = map[Mark]string{
	MarkCorrect: "🟩",
	MarkPresent: "🟨",
	MarkAbsent:  "⬛",
}

// ShareText renders a spoiler-free summary of a game: a header with the
// date and score ("3/6", or "X/6" for a loss) followed by one tile row per guess.
func ShareText(s State) string {
	score := "X"
	if s.Won {
		score = fmt.Sprint(len(s.Guesses))
	} else if !s.Finished {
		score = "-"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Wordle %s %s/%d\n", s.Date, score, s.rows())
	for _, row := range s.Results {
		b.WriteString("\n")
		b.WriteString(Tiles(row))
	}
	return b.String()
}

// Tiles renders one row of marks as colored squares.
func Tiles(marks []Mark) string {
	var b strings.Builder
	for _, m := range marks {
		b.WriteString(tiles[m])
	}
	return b.String()
}
