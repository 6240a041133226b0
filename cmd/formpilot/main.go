// Package main provides the formpilot CLI: automated daily submission of a
// progress-report web form. One binary carries the two submission
// strategies (direct HTTP POST and headless browser) plus a read-only
// access diagnostic; an external scheduler is expected to invoke it once
// per day and react to the exit code.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"formpilot/pkg/config"
	"formpilot/pkg/report"
)

const version = "0.1.0"

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var (
	configPath string
	seed       int64
)

var rootCmd = &cobra.Command{
	Use:   "formpilot",
	Short: "Automated daily progress report submission",
	Long: `formpilot fills and submits a daily progress report form with
randomized task content drawn from a JSON configuration.

Strategies:
  submit            POST the report directly, mimicking a browser session
  submit --browser  drive a headless browser through the rendered form
  verify            check that the configured fields exist on the form page
  preview           print the generated report without submitting`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to config.json (default: next to the executable, or $FORMPILOT_CONFIG)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0,
		"random seed for task selection (default: time-based)")

	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(previewCmd)
}

// loadConfig resolves the config path and loads it. Missing or malformed
// configuration is fatal before any submission attempt.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return config.Load(path)
}

// effectiveSeed returns the operator-pinned seed when the flag was set,
// otherwise a time-based one. An explicit 0 is a valid pin.
func effectiveSeed(pinned int64, changed bool) int64 {
	if changed {
		return pinned
	}
	return time.Now().UnixNano()
}

// newGenerator builds the content generator, time-seeded unless a fixed
// seed was requested.
func newGenerator() *report.Generator {
	s := effectiveSeed(seed, rootCmd.PersistentFlags().Changed("seed"))
	return report.NewGenerator(rand.New(rand.NewSource(s)))
}

// printPreamble logs the run context and generated content, matching what
// an operator wants in the scheduler output when auditing a submission.
func printPreamble(sub *report.Submission) {
	now := time.Now()
	fmt.Printf("Date: %s\n", now.Format("2006-01-02"))
	fmt.Printf("Time: %s\n", now.Format("15:04:05 MST"))
	fmt.Printf("Submitter: %s\n", sub.Name)
	fmt.Printf("Work Done:\n%s\n", sub.WorkDone)
	fmt.Printf("Difficulties: %s\n", sub.Difficulties)
	fmt.Printf("Agenda: %s\n", sub.Agenda)
	fmt.Printf("Productivity Rating: %d\n", sub.Rating)
}

func main() {
	// Optional .env next to the working directory; used to keep the form
	// URL and config path out of checked-in files.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(failureStyle.Render("ERROR: " + err.Error()))
		os.Exit(1)
	}
}
