package submit

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formpilot/pkg/config"
	"formpilot/pkg/logging"
	"formpilot/pkg/report"
)

func testConfig(formURL string) *config.Config {
	return &config.Config{
		UserData: config.UserData{
			Name:                "Jane Doe",
			DifficultiesDefault: "None",
			AgendaDefault:       "Continue current tasks",
			RatingRange:         config.RatingRange{Min: 7, Max: 7},
		},
		FormConfig: config.FormConfig{
			FormURL: formURL,
			FieldMappings: map[string]string{
				config.FieldName:               "entry.1",
				config.FieldWorkDone:           "entry.2",
				config.FieldDifficulties:       "entry.3",
				config.FieldAgenda:             "entry.4",
				config.FieldDateYear:           "entry.5_year",
				config.FieldDateMonth:          "entry.5_month",
				config.FieldDateDay:            "entry.5_day",
				config.FieldProductivityRating: "entry.6",
			},
			HiddenParams: map[string]string{"fvv": "1"},
		},
	}
}

func testSubmission() *report.Submission {
	return &report.Submission{
		Name:         "Jane Doe",
		WorkDone:     "- Reviewed PRs\n- Fixed bug #42",
		Difficulties: "None",
		Agenda:       "Continue current tasks",
		Year:         2026,
		Month:        8,
		Day:          26,
		Rating:       7,
	}
}

func quietLogger(t *testing.T, component string) *logging.Logger {
	t.Helper()
	logger := logging.NewLogger(component)
	logger.SetOutput(io.Discard)
	t.Cleanup(func() { _ = logger.Close() })
	return logger
}

func TestDirectSubmitSuccessOn200(t *testing.T) {
	var gotForm map[string][]string
	var primed bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			primed = true
			w.Write([]byte("<html><form></form></html>"))
		case r.Method == http.MethodPost:
			assert.NoError(t, r.ParseForm())
			gotForm = r.PostForm
			w.Write([]byte("Your response has been recorded."))
		}
	}))
	defer server.Close()

	cfg := testConfig(server.URL + "/formResponse")
	d := NewDirectSubmitter(quietLogger(t, "direct"))

	result := d.Submit(context.Background(), cfg, testSubmission())

	assert.True(t, result.Success, "detail: %s", result.Detail)
	assert.True(t, primed, "priming GET should have been sent")

	require.NotNil(t, gotForm)
	assert.Equal(t, "Jane Doe", gotForm["entry.1"][0])
	assert.Equal(t, "- Reviewed PRs\n- Fixed bug #42", gotForm["entry.2"][0])
	assert.Equal(t, "None", gotForm["entry.3"][0])
	assert.Equal(t, "Continue current tasks", gotForm["entry.4"][0])
	assert.Equal(t, "2026", gotForm["entry.5_year"][0])
	assert.Equal(t, "8", gotForm["entry.5_month"][0])
	assert.Equal(t, "26", gotForm["entry.5_day"][0])
	assert.Equal(t, "7", gotForm["entry.6"][0])
	assert.Equal(t, "1", gotForm["fvv"][0])
}

func TestDirectSubmitSendsBrowserHeaders(t *testing.T) {
	var gotHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			gotHeaders = r.Header.Clone()
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testConfig(server.URL + "/formResponse")
	d := NewDirectSubmitter(quietLogger(t, "direct"))
	d.SkipPriming = true

	result := d.Submit(context.Background(), cfg, testSubmission())
	require.True(t, result.Success)

	assert.Equal(t, UserAgent, gotHeaders.Get("User-Agent"))
	assert.Equal(t, "application/x-www-form-urlencoded", gotHeaders.Get("Content-Type"))
	assert.Equal(t, server.URL+"/viewform", gotHeaders.Get("Referer"))
	assert.Equal(t, server.URL, gotHeaders.Get("Origin"))
}

func TestDirectSubmitSkipPriming(t *testing.T) {
	var gets int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			gets++
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testConfig(server.URL + "/formResponse")
	d := NewDirectSubmitter(quietLogger(t, "direct"))
	d.SkipPriming = true

	result := d.Submit(context.Background(), cfg, testSubmission())
	assert.True(t, result.Success)
	assert.Zero(t, gets)
}

func TestDirectSubmitFailureOnNon200(t *testing.T) {
	longBody := strings.Repeat("x", bodyPreviewLen+200)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(longBody))
	}))
	defer server.Close()

	cfg := testConfig(server.URL + "/formResponse")
	d := NewDirectSubmitter(quietLogger(t, "direct"))
	d.SkipPriming = true

	result := d.Submit(context.Background(), cfg, testSubmission())

	assert.False(t, result.Success)
	assert.Contains(t, result.Detail, "500")
	// The excerpt is truncated to the preview length plus an ellipsis.
	assert.Contains(t, result.Detail, strings.Repeat("x", bodyPreviewLen)+"...")
	assert.NotContains(t, result.Detail, strings.Repeat("x", bodyPreviewLen+1))
}

func TestDirectSubmitTransportFaultIsAFailureResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	cfg := testConfig(server.URL + "/formResponse")
	d := NewDirectSubmitter(quietLogger(t, "direct"))
	d.SkipPriming = true

	result := d.Submit(context.Background(), cfg, testSubmission())
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Detail)
}

func TestBuildPayloadHiddenParamsWinCollisions(t *testing.T) {
	fc := &config.FormConfig{
		FormURL: "https://example.com/formResponse",
		FieldMappings: map[string]string{
			config.FieldName:               "entry.1",
			config.FieldWorkDone:           "entry.2",
			config.FieldDifficulties:       "entry.3",
			config.FieldAgenda:             "entry.4",
			config.FieldDateYear:           "entry.5_year",
			config.FieldDateMonth:          "entry.5_month",
			config.FieldDateDay:            "entry.5_day",
			config.FieldProductivityRating: "entry.6",
		},
		// Collides with the name field identifier on purpose.
		HiddenParams: map[string]string{"entry.1": "pinned"},
	}

	payload, err := BuildPayload(fc, testSubmission())
	require.NoError(t, err)
	assert.Equal(t, "pinned", payload.Get("entry.1"))
}

func TestBuildPayloadMissingMappingIsAnError(t *testing.T) {
	fc := &config.FormConfig{
		FormURL:       "https://example.com/formResponse",
		FieldMappings: map[string]string{config.FieldName: "entry.1"},
	}
	_, err := BuildPayload(fc, testSubmission())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no field mapping")
}
