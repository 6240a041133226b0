package verify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formpilot/pkg/config"
	"formpilot/pkg/logging"
	"formpilot/pkg/submit"
)

func testConfig(formURL string) *config.Config {
	return &config.Config{
		FormConfig: config.FormConfig{
			FormURL: formURL,
			FieldMappings: map[string]string{
				"name":      "entry.1001",
				"work_done": "entry.1002",
				"agenda":    "entry.1003",
			},
		},
	}
}

func quietLogger(t *testing.T) *logging.Logger {
	t.Helper()
	logger := logging.NewLogger("verify")
	logger.SetOutput(io.Discard)
	t.Cleanup(func() { _ = logger.Close() })
	return logger
}

func TestCheckReportsPresentAndMissingFields(t *testing.T) {
	// Two of three identifiers appear in the markup.
	page := `<html><head><title>Daily Report</title></head><body>
	<form action="/formResponse">
	<input name="entry.1001"><textarea name="entry.1002"></textarea>
	</form></body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	v := NewVerifier(quietLogger(t))
	report, err := v.Check(context.Background(), testConfig(server.URL+"/formResponse"))
	require.NoError(t, err)

	assert.True(t, report.Accessible)
	assert.True(t, report.HasFormElement)
	assert.Equal(t, "Daily Report", report.Title)
	assert.Equal(t, 2, report.FoundCount())
	assert.False(t, report.AllFound())

	byName := map[string]bool{}
	for _, f := range report.Fields {
		byName[f.Name] = f.Present
	}
	assert.True(t, byName["name"])
	assert.True(t, byName["work_done"])
	assert.False(t, byName["agenda"])
}

func TestCheckAllFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<form>entry.1001 entry.1002 entry.1003</form>`)
	}))
	defer server.Close()

	v := NewVerifier(quietLogger(t))
	report, err := v.Check(context.Background(), testConfig(server.URL+"/formResponse"))
	require.NoError(t, err)

	assert.True(t, report.AllFound())
	assert.Equal(t, 3, report.FoundCount())
}

func TestCheckNon200IsInaccessibleNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	v := NewVerifier(quietLogger(t))
	report, err := v.Check(context.Background(), testConfig(server.URL+"/formResponse"))
	require.NoError(t, err)

	assert.False(t, report.Accessible)
	assert.Equal(t, http.StatusForbidden, report.StatusCode)
	assert.False(t, report.AllFound())
}

func TestCheckTransportFaultIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	v := NewVerifier(quietLogger(t))
	_, err := v.Check(context.Background(), testConfig(server.URL+"/formResponse"))
	assert.Error(t, err)
}

func TestCheckRequestsViewPage(t *testing.T) {
	var gotPath, gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUserAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, "<form></form>")
	}))
	defer server.Close()

	v := NewVerifier(quietLogger(t))
	_, err := v.Check(context.Background(), testConfig(server.URL+"/formResponse"))
	require.NoError(t, err)

	assert.Equal(t, "/viewform", gotPath)
	// Same browser identity the submitters present.
	assert.Equal(t, submit.UserAgent, gotUserAgent)
}

func TestInspectMarkupWithoutForm(t *testing.T) {
	title, hasForm := inspectMarkup("<html><head><title>Oops</title></head><body>gone</body></html>")
	assert.Equal(t, "Oops", title)
	assert.False(t, hasForm)
}
