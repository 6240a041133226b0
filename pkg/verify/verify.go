// Package verify implements a read-only diagnostic for the form
// configuration: it fetches the form's view page and checks that every
// configured field identifier literally appears in the markup. This is a
// presence heuristic, not a structural validation — an identifier can occur
// in the page without being a real input binding.
package verify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/html"

	"formpilot/pkg/config"
	"formpilot/pkg/logging"
	"formpilot/pkg/submit"
)

// accessTimeout bounds the single GET.
const accessTimeout = 15 * time.Second

// FieldStatus records whether one configured field identifier was found.
type FieldStatus struct {
	// Name is the semantic field name from the config.
	Name string
	// ID is the endpoint field identifier searched for.
	ID string
	// Present reports whether ID appears verbatim in the markup.
	Present bool
}

// Report is the outcome of one access check.
type Report struct {
	// Accessible reports whether the view page returned HTTP 200.
	Accessible bool
	// StatusCode is the HTTP status of the GET.
	StatusCode int
	// Title is the page title, when the markup parses.
	Title string
	// HasFormElement reports whether the markup contains a form element.
	HasFormElement bool
	// Fields lists every configured field in semantic-name order.
	Fields []FieldStatus
}

// AllFound reports whether every configured field identifier is present.
func (r *Report) AllFound() bool {
	if !r.Accessible {
		return false
	}
	for _, f := range r.Fields {
		if !f.Present {
			return false
		}
	}
	return true
}

// FoundCount returns how many configured fields were located.
func (r *Report) FoundCount() int {
	count := 0
	for _, f := range r.Fields {
		if f.Present {
			count++
		}
	}
	return count
}

// Verifier performs the access check.
type Verifier struct {
	client *http.Client
	log    *logging.Logger
}

// NewVerifier creates a verifier with the fixed access timeout.
func NewVerifier(log *logging.Logger) *Verifier {
	return &Verifier{
		client: &http.Client{Timeout: accessTimeout},
		log:    log,
	}
}

// Check fetches the view page and builds the presence report. Transport
// errors are returned; a non-200 status is an inaccessible report, not an
// error.
func (v *Verifier) Check(ctx context.Context, cfg *config.Config) (*Report, error) {
	viewURL := cfg.FormConfig.ViewURL()
	v.log.Infof("Testing access to form: %s", viewURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, viewURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", submit.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching form page: %w", err)
	}
	defer resp.Body.Close()

	report := &Report{StatusCode: resp.StatusCode}
	if resp.StatusCode != http.StatusOK {
		v.log.Errorf("Cannot access form (status: %d)", resp.StatusCode)
		return report, nil
	}
	report.Accessible = true

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading form page: %w", err)
	}
	markup := string(body)

	report.Title, report.HasFormElement = inspectMarkup(markup)
	report.Fields = fieldPresence(cfg.FormConfig.FieldMappings, markup)

	v.log.Infof("Found %d/%d field mappings", report.FoundCount(), len(report.Fields))
	return report, nil
}

// fieldPresence checks each configured identifier for verbatim occurrence,
// reporting fields in deterministic semantic-name order.
func fieldPresence(mappings map[string]string, markup string) []FieldStatus {
	names := make([]string, 0, len(mappings))
	for name := range mappings {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]FieldStatus, 0, len(names))
	for _, name := range names {
		id := mappings[name]
		fields = append(fields, FieldStatus{
			Name:    name,
			ID:      id,
			Present: strings.Contains(markup, id),
		})
	}
	return fields
}

// inspectMarkup parses the page and extracts the title and whether an
// actual form element exists. Parse failures degrade to empty results; the
// substring check above does not depend on well-formed markup.
func inspectMarkup(markup string) (title string, hasForm bool) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return "", false
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "form":
				hasForm = true
			case "title":
				if title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					title = n.FirstChild.Data
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title, hasForm
}
