package main

import (
	"time"

	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the report that would be submitted, without any network I/O",
	Long: `Generates and prints today's report content. Useful for tuning task
pools and probabilities; combine with --seed to reproduce a selection.`,
	RunE: runPreview,
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sub := newGenerator().Build(cfg, time.Now())
	printPreamble(sub)
	return nil
}
