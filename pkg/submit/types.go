// Package submit delivers a generated daily report to the remote form
// endpoint. Two strategies implement the same contract: a direct HTTP POST
// that mimics a browser session, and a headless browser that fills the
// rendered form the way a person would. Each strategy makes exactly one
// attempt per invocation; retrying is the caller's business.
package submit

import (
	"context"

	"formpilot/pkg/config"
	"formpilot/pkg/report"
)

// Result is the outcome of one submission attempt. Collaborator faults
// (network errors, missing page elements) are folded into a failed Result
// rather than surfaced as errors; the process boundary only sees a boolean.
type Result struct {
	Success bool
	Detail  string
}

// Submitter is the common contract for both submission strategies.
type Submitter interface {
	Submit(ctx context.Context, cfg *config.Config, sub *report.Submission) Result
}

func success(detail string) Result {
	return Result{Success: true, Detail: detail}
}

func failure(detail string) Result {
	return Result{Success: false, Detail: detail}
}

// Browser-mimicking identity shared by both strategies and the verifier.
const (
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9," +
		"image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7"
)
