package game

import "github.com/samber/lo"

// Promote returns a copy of hints in which letter carries mark, unless the
// existing hint already ranks at least as high. Once a letter is correct it
// stays correct. The input map is never modified.
func Promote(hints Hints, letter string, mark Mark) Hints {
	next := lo.Assign(Hints{}, hints)
	if mark.Rank() > next[letter].Rank() {
		next[letter] = mark
	}
	return next
}

// PromoteGuess folds every letter of an evaluated guess into hints.
func PromoteGuess(hints Hints, guess string, marks []Mark) Hints {
	next := lo.Assign(Hints{}, hints)
	for i := 0; i < len(guess) && i < len(marks); i++ {
		letter := guess[i : i+1]
		if marks[i].Rank() > next[letter].Rank() {
			next[letter] = marks[i]
		}
	}
	return next
}
