package submit

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"formpilot/pkg/config"
	"formpilot/pkg/logging"
	"formpilot/pkg/report"
)

const (
	// navigationTimeout bounds the initial page load.
	navigationTimeout = 30000.0
	// formWaitTimeout bounds the wait for a form element to appear.
	formWaitTimeout = 10000.0

	// renderSettleDelay lets the form's scripts finish after load.
	renderSettleDelay = 2 * time.Second
	// submitSettleDelay lets the post-submit navigation land.
	submitSettleDelay = 3 * time.Second

	viewportWidth  = 1920
	viewportHeight = 1080
)

// launchArgs suppress sandboxing (for constrained CI environments) and the
// blink automation fingerprint.
var launchArgs = []string{
	"--no-sandbox",
	"--disable-dev-shm-usage",
	"--disable-gpu",
	"--disable-blink-features=AutomationControlled",
	fmt.Sprintf("--window-size=%d,%d", viewportWidth, viewportHeight),
}

// maskWebdriverScript hides the automation flag before any page script runs.
const maskWebdriverScript = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`

// textInputSelector enumerates the text-like answer elements on the form.
const textInputSelector = "input[type='text'], input[type='email'], textarea"

// dateInputSelector enumerates date-shaped inputs, whether a native date
// control or split year/month/day fields labelled via aria-label.
const dateInputSelector = "input[type='date'], input[aria-label*='year' i], " +
	"input[aria-label*='month' i], input[aria-label*='day' i]"

// questionLabelJS resolves the visible label text of the question container
// enclosing an input. The listitem role is how the target platform wraps
// each question; the parent element is the fallback.
const questionLabelJS = `el => {
	const root = el.closest("[role='listitem']") || el.parentElement;
	return root ? (root.innerText || '') : '';
}`

// submitSelectors are tried in order for a visible, enabled submit control.
var submitSelectors = []string{
	"input[type='submit']",
	"button[type='submit']",
	"div[role='button']",
	"[aria-label*='Submit']",
	"[data-submit='true']",
}

// submitTexts are the literal button captions tried when no selector hits.
var submitTexts = []string{"Submit", "Send", "Submit Form", "Done"}

// successIndicators are the phrases a confirmation page is expected to show.
var successIndicators = []string{"submitted", "thank you", "received", "response recorded"}

// BrowserSubmitter drives a headless browser through the rendered form:
// it locates answer fields by their question label text, fills them, clicks
// the submit control, and checks the resulting page for confirmation.
type BrowserSubmitter struct {
	log     *logging.Logger
	matcher LabelMatcher

	// Headless can be disabled for local debugging.
	Headless bool
}

// NewBrowserSubmitter creates a browser submitter. A nil matcher selects
// the default label keyword set.
func NewBrowserSubmitter(log *logging.Logger, matcher LabelMatcher) *BrowserSubmitter {
	if matcher == nil {
		matcher = NewDefaultMatcher()
	}
	return &BrowserSubmitter{
		log:      log,
		matcher:  matcher,
		Headless: true,
	}
}

// Submit performs one browser-driven submission attempt. The browser stack
// is torn down on every exit path. Per-field failures are skipped; only a
// missing submit control, a load timeout, or an absent confirmation fail
// the attempt.
func (b *BrowserSubmitter) Submit(ctx context.Context, cfg *config.Config, sub *report.Submission) Result {
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(runOpts); err != nil {
		return failure(fmt.Sprintf("browser driver setup failed: %v", err))
	}
	pw, err := playwright.Run(runOpts)
	if err != nil {
		return failure(fmt.Sprintf("browser driver setup failed: %v", err))
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(b.Headless),
		Args:     launchArgs,
	})
	if err != nil {
		return failure(fmt.Sprintf("failed to launch browser: %v", err))
	}
	defer browser.Close()

	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(UserAgent),
		Viewport: &playwright.Size{
			Width:  viewportWidth,
			Height: viewportHeight,
		},
	})
	if err != nil {
		return failure(fmt.Sprintf("failed to create browser context: %v", err))
	}
	defer browserCtx.Close()

	if err := browserCtx.AddInitScript(playwright.Script{
		Content: playwright.String(maskWebdriverScript),
	}); err != nil {
		b.log.Warnf("failed to mask automation flag: %v", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		return failure(fmt.Sprintf("failed to open page: %v", err))
	}
	defer page.Close()

	return b.fillAndSubmit(page, cfg, sub)
}

func (b *BrowserSubmitter) fillAndSubmit(page playwright.Page, cfg *config.Config, sub *report.Submission) Result {
	viewURL := cfg.FormConfig.ViewURL()
	b.log.Infof("Loading form page...")
	if _, err := page.Goto(viewURL, playwright.PageGotoOptions{
		Timeout: playwright.Float(navigationTimeout),
	}); err != nil {
		return failure(fmt.Sprintf("form page failed to load: %v", err))
	}

	if _, err := page.WaitForSelector("form", playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(formWaitTimeout),
	}); err != nil {
		return failure("form took too long to load")
	}
	time.Sleep(renderSettleDelay)

	filled := b.fillTextInputs(page, sub)
	filled += b.fillDateInputs(page, sub)
	if b.selectRating(page, sub.Rating) {
		filled++
	}
	b.log.Infof("Filled %d fields", filled)

	control := findSubmitControl(page)
	if control == nil {
		return failure("could not find submit button")
	}

	b.log.Infof("Submitting form...")
	if _, err := control.Evaluate("el => el.scrollIntoView()"); err != nil {
		b.log.Warnf("scroll into view failed: %v", err)
	}
	if err := control.Click(); err != nil {
		return failure(fmt.Sprintf("submit click failed: %v", err))
	}
	time.Sleep(submitSettleDelay)

	pageText, err := bodyText(page)
	if err != nil {
		b.log.Warnf("could not read result page: %v", err)
	}
	if detectSuccess(page.URL(), pageText) {
		return success("confirmation page detected")
	}
	return failure("no confirmation detected after submit")
}

// fillTextInputs walks every text-like input, classifies its question label,
// and fills the matched fields. Faults on individual elements are skipped
// so one odd widget cannot abort the rest of the form.
func (b *BrowserSubmitter) fillTextInputs(page playwright.Page, sub *report.Submission) int {
	inputs, err := page.QuerySelectorAll(textInputSelector)
	if err != nil {
		b.log.Warnf("input enumeration failed: %v", err)
		return 0
	}
	b.log.Infof("Found %d input fields", len(inputs))

	filled := 0
	for _, input := range inputs {
		label, err := elementLabel(input)
		if err != nil {
			continue
		}
		field, ok := b.matcher.Match(label)
		if !ok {
			continue
		}

		value := ""
		switch field {
		case FieldName:
			value = sub.Name
		case FieldWorkDone:
			// The work narrative is multi-line; only a textarea can hold it.
			if tag, tagErr := tagName(input); tagErr != nil || tag != "textarea" {
				continue
			}
			value = sub.WorkDone
		case FieldDifficulties:
			value = sub.Difficulties
		case FieldAgenda:
			value = sub.Agenda
		}

		if err := input.Fill(value); err != nil {
			b.log.Warnf("failed to fill %s field: %v", field, err)
			continue
		}
		b.log.Infof("Filled %s field", field)
		filled++
	}
	return filled
}

// fillDateInputs handles both a native date input and split year/month/day
// fields addressed by aria-label.
func (b *BrowserSubmitter) fillDateInputs(page playwright.Page, sub *report.Submission) int {
	inputs, err := page.QuerySelectorAll(dateInputSelector)
	if err != nil {
		b.log.Warnf("date input enumeration failed: %v", err)
		return 0
	}

	filled := 0
	for _, input := range inputs {
		value, err := dateValueFor(input, sub)
		if err != nil || value == "" {
			continue
		}
		if err := input.Fill(value); err != nil {
			continue
		}
		filled++
	}
	return filled
}

// attrReader is the slice of playwright.ElementHandle the date classifier
// needs; tests substitute a fake element.
type attrReader interface {
	GetAttribute(name string) (string, error)
}

func dateValueFor(input attrReader, sub *report.Submission) (string, error) {
	ariaLabel, err := input.GetAttribute("aria-label")
	if err != nil {
		return "", err
	}
	switch {
	case containsFold(ariaLabel, "year"):
		return fmt.Sprintf("%d", sub.Year), nil
	case containsFold(ariaLabel, "month"):
		return fmt.Sprintf("%d", sub.Month), nil
	case containsFold(ariaLabel, "day"):
		return fmt.Sprintf("%d", sub.Day), nil
	}

	inputType, err := input.GetAttribute("type")
	if err != nil {
		return "", err
	}
	if inputType == "date" {
		return sub.DateString(), nil
	}
	return "", nil
}

// selectRating clicks the rating option: exact value selector first, literal
// text fallback second. A missing rating control is not fatal.
func (b *BrowserSubmitter) selectRating(page playwright.Page, rating int) bool {
	selectors := []string{
		fmt.Sprintf("input[value='%d'], span[data-value='%d']", rating, rating),
		fmt.Sprintf(`text="%d"`, rating),
	}
	for _, selector := range selectors {
		element, err := page.QuerySelector(selector)
		if err != nil || element == nil {
			continue
		}
		if err := element.Click(); err != nil {
			continue
		}
		b.log.Infof("Selected productivity rating: %d", rating)
		return true
	}
	b.log.Warnf("no rating control found for %d", rating)
	return false
}

// elementQuerier is the slice of playwright.Page the submit-control search
// needs; tests substitute a fake page.
type elementQuerier interface {
	QuerySelector(selector string, options ...playwright.PageQuerySelectorOptions) (playwright.ElementHandle, error)
}

// findSubmitControl tries the fixed selector list for a visible, enabled
// control, then falls back to literal button captions. Returns nil when
// nothing plausible exists.
func findSubmitControl(page elementQuerier) playwright.ElementHandle {
	for _, selector := range submitSelectors {
		element, err := page.QuerySelector(selector)
		if err != nil || element == nil {
			continue
		}
		visible, err := element.IsVisible()
		if err != nil || !visible {
			continue
		}
		enabled, err := element.IsEnabled()
		if err != nil || !enabled {
			continue
		}
		return element
	}

	for _, text := range submitTexts {
		element, err := page.QuerySelector(fmt.Sprintf("text=%q", text))
		if err != nil || element == nil {
			continue
		}
		visible, err := element.IsVisible()
		if err != nil || !visible {
			continue
		}
		return element
	}
	return nil
}

// detectSuccess decides whether the post-submit page confirms the
// submission: either the URL landed on the response endpoint or the page
// shows one of the known confirmation phrases.
func detectSuccess(currentURL, pageText string) bool {
	if strings.Contains(strings.ToLower(currentURL), "formresponse") {
		return true
	}
	lowered := strings.ToLower(pageText)
	for _, indicator := range successIndicators {
		if strings.Contains(lowered, indicator) {
			return true
		}
	}
	return false
}

func elementLabel(input playwright.ElementHandle) (string, error) {
	result, err := input.Evaluate(questionLabelJS)
	if err != nil {
		return "", err
	}
	label, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected label type %T", result)
	}
	return label, nil
}

func tagName(input playwright.ElementHandle) (string, error) {
	result, err := input.Evaluate("el => el.tagName.toLowerCase()")
	if err != nil {
		return "", err
	}
	tag, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected tag type %T", result)
	}
	return tag, nil
}

func bodyText(page playwright.Page) (string, error) {
	body, err := page.QuerySelector("body")
	if err != nil {
		return "", fmt.Errorf("body query failed: %w", err)
	}
	if body == nil {
		return "", fmt.Errorf("no body element found")
	}
	return body.TextContent()
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
