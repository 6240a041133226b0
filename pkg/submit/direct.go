package submit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"formpilot/pkg/config"
	"formpilot/pkg/logging"
	"formpilot/pkg/report"
)

const (
	// directTimeout bounds each HTTP call.
	directTimeout = 30 * time.Second

	// bodyPreviewLen caps the response excerpt reported on failure.
	bodyPreviewLen = 500
)

// DirectSubmitter posts the report straight to the form endpoint as
// URL-encoded form data, optionally priming cookies with a GET of the view
// page first so the POST resembles a real browser session.
type DirectSubmitter struct {
	client *http.Client
	log    *logging.Logger

	// SkipPriming disables the cookie-priming GET.
	SkipPriming bool
}

// NewDirectSubmitter creates a direct submitter with a cookie-jar client.
func NewDirectSubmitter(log *logging.Logger) *DirectSubmitter {
	jar, _ := cookiejar.New(nil)
	return &DirectSubmitter{
		client: &http.Client{
			Jar:     jar,
			Timeout: directTimeout,
		},
		log: log,
	}
}

// Submit performs one synchronous delivery attempt. Transport faults are
// reported as a failed Result, never propagated.
func (d *DirectSubmitter) Submit(ctx context.Context, cfg *config.Config, sub *report.Submission) Result {
	payload, err := BuildPayload(&cfg.FormConfig, sub)
	if err != nil {
		return failure(fmt.Sprintf("payload assembly failed: %v", err))
	}

	viewURL := cfg.FormConfig.ViewURL()
	if !d.SkipPriming {
		d.primeSession(ctx, viewURL)
	}

	d.log.Infof("Submitting form data...")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		cfg.FormConfig.SubmitURL(), strings.NewReader(payload.Encode()))
	if err != nil {
		return failure(fmt.Sprintf("building POST request: %v", err))
	}
	d.setBrowserHeaders(req, viewURL)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return failure(fmt.Sprintf("submitting form: %v", err))
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		body = nil
	}

	// The endpoint gives no machine-readable acknowledgment; a 200 is
	// treated as success regardless of body. The final URL and body size
	// are logged so an operator can audit ambiguous responses.
	if resp.StatusCode == http.StatusOK {
		d.log.Infof("Response: %s (%d bytes)", resp.Request.URL, len(body))
		return success(fmt.Sprintf("endpoint returned 200 (final URL %s, %d bytes)",
			resp.Request.URL, len(body)))
	}

	excerpt := string(body)
	if len(excerpt) > bodyPreviewLen {
		excerpt = excerpt[:bodyPreviewLen] + "..."
	}
	d.log.Errorf("Form submission failed with status %d", resp.StatusCode)
	return failure(fmt.Sprintf("endpoint returned %d: %s", resp.StatusCode, excerpt))
}

// primeSession fetches the view page to pick up session cookies. Best
// effort: a failed priming GET is logged and the POST proceeds without it.
func (d *DirectSubmitter) primeSession(ctx context.Context, viewURL string) {
	d.log.Infof("Getting form page to establish session...")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, viewURL, nil)
	if err != nil {
		d.log.Warnf("priming request failed: %v", err)
		return
	}
	d.setBrowserHeaders(req, viewURL)

	resp, err := d.client.Do(req)
	if err != nil {
		d.log.Warnf("priming GET failed: %v", err)
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func (d *DirectSubmitter) setBrowserHeaders(req *http.Request, viewURL string) {
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "max-age=0")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	req.Header.Set("Sec-Fetch-User", "?1")
	req.Header.Set("Referer", viewURL)
	if origin := originOf(viewURL); origin != "" {
		req.Header.Set("Origin", origin)
	}
}

func originOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}

// BuildPayload flattens the submission into endpoint field identifiers.
// Hidden params are merged last: on a collision with a semantic field
// identifier, the hidden value wins.
func BuildPayload(fc *config.FormConfig, sub *report.Submission) (url.Values, error) {
	fields := map[string]string{
		config.FieldName:               sub.Name,
		config.FieldWorkDone:           sub.WorkDone,
		config.FieldDifficulties:       sub.Difficulties,
		config.FieldAgenda:             sub.Agenda,
		config.FieldDateYear:           strconv.Itoa(sub.Year),
		config.FieldDateMonth:          strconv.Itoa(sub.Month),
		config.FieldDateDay:            strconv.Itoa(sub.Day),
		config.FieldProductivityRating: strconv.Itoa(sub.Rating),
	}

	payload := url.Values{}
	for semantic, value := range fields {
		id, err := fc.FieldID(semantic)
		if err != nil {
			return nil, err
		}
		payload.Set(id, value)
	}
	for key, value := range fc.HiddenParams {
		payload.Set(key, value)
	}
	return payload, nil
}
