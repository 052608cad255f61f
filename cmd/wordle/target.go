package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/robalobadob/wordle/daily/internal/daily"
)

func (a *app) targetCmd() *cobra.Command {
	var date, word, overridesFile string
	cmd := &cobra.Command{
		Use:   "target",
		Short: "Print the target word for a date",
		Long: `Resolve the target word for a date the same way the server does:
a --word override first, then the overrides file, then the daily rotation.`,
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
				return fmt.Errorf("select target for %s: %w", key, err)
			}
			offset, _ := daily.DayOffset(key)
			log.Debug().
				Str("date", key).
				Int64("offset", offset).
				Bool("manual", manual != "").
				Bool("pinned", overrides[key] != "").
				Msg("target resolved")

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", key, target)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date key YYYY-MM-DD (default today in $DAILY_TZ)")
	cmd.Flags().StringVar(&word, "word", "", "manual override word")
	cmd.Flags().StringVar(&overridesFile, "overrides", "", "JSON map of date key to word (default $OVERRIDES_FILE)")
	return cmd
}
