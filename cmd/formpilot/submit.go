package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"formpilot/pkg/logging"
	"formpilot/pkg/submit"
)

var (
	useBrowser  bool
	skipPriming bool
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Generate today's report and submit it to the form endpoint",
	Long: `Generates the report content (required tasks, probabilistic optional
tasks, productivity rating) and performs exactly one submission attempt.
The direct strategy POSTs url-encoded form data with browser-like headers;
--browser drives a headless Chromium through the rendered form instead.`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().BoolVar(&useBrowser, "browser", false,
		"submit by driving a headless browser instead of a direct POST")
	submitCmd.Flags().BoolVar(&skipPriming, "skip-priming", false,
		"direct strategy only: skip the cookie-priming GET of the view page")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sub := newGenerator().Build(cfg, time.Now())
	printPreamble(sub)

	var submitter submit.Submitter
	if useBrowser {
		logger := logging.NewLogger("browser")
		defer logger.Close()
		fmt.Println("\nSubmitting form using browser...")
		submitter = submit.NewBrowserSubmitter(logger, nil)
	} else {
		logger := logging.NewLogger("direct")
		defer logger.Close()
		fmt.Println("\nSubmitting form...")
		direct := submit.NewDirectSubmitter(logger)
		direct.SkipPriming = skipPriming
		submitter = direct
	}

	result := submitter.Submit(cmd.Context(), cfg, sub)
	if !result.Success {
		return fmt.Errorf("form submission failed: %s", result.Detail)
	}

	fmt.Println(successStyle.Render("SUCCESS: Form submitted"))
	fmt.Println(dimStyle.Render(result.Detail))
	return nil
}
