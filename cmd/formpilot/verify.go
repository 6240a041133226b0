package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"formpilot/pkg/logging"
	"formpilot/pkg/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that every configured field identifier appears on the form page",
	Long: `Fetches the form's view page and reports, per configured field, whether
its endpoint identifier occurs verbatim in the markup. This is a presence
heuristic for catching stale field mappings, not a structural validation.`,
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := logging.NewLogger("verify")
	defer logger.Close()

	report, err := verify.NewVerifier(logger).Check(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("access check failed: %w", err)
	}
	if !report.Accessible {
		return fmt.Errorf("cannot access form page (status %d)", report.StatusCode)
	}

	if report.Title != "" {
		fmt.Printf("Page title: %s\n", report.Title)
	}
	if !report.HasFormElement {
		fmt.Println(dimStyle.Render("warning: no <form> element found in the page"))
	}

	fmt.Printf("Found %d/%d field mappings:\n", report.FoundCount(), len(report.Fields))
	for _, field := range report.Fields {
		if field.Present {
			fmt.Printf("  %s %s\n", successStyle.Render("✓"), field.Name)
		} else {
			fmt.Printf("  %s %s (%s)\n", failureStyle.Render("✗"), field.Name, field.ID)
		}
	}

	if !report.AllFound() {
		return fmt.Errorf("form access check failed: %d field(s) missing",
			len(report.Fields)-report.FoundCount())
	}

	fmt.Println(successStyle.Render("Form access check PASSED"))
	return nil
}
