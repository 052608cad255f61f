package main

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/robalobadob/wordle/daily/internal/game"
	"github.com/robalobadob/wordle/daily/internal/words"
)

func evalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval GUESS TARGET",
		Short: "Score a guess against a target",
		Long:  `Score GUESS against TARGET without any dictionary check and print the marks.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			guess, target := words.Normalize(args[0]), words.Normalize(args[1])
			for _, w := range []string{guess, target} {
				if !words.Valid(w) {
					return fmt.Errorf("%q: must be %d letters A-Z", w, words.Length)
				}
			}
			marks := game.Evaluate(guess, target)
			names := lo.Map(marks, func(m game.Mark, _ int) string { return string(m) })
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", game.Tiles(marks), strings.Join(names, " "))
			return nil
		},
	}
}
