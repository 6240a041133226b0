// Package config loads and validates the formpilot configuration file.
// The configuration is a single JSON document describing who is submitting,
// which tasks can appear in the report, and how the remote form addresses
// its fields. It is loaded once at startup and never mutated afterwards.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ConfigFileName is the default configuration file name, resolved
	// relative to the executable when no explicit path is given.
	ConfigFileName = "config.json"

	// EnvConfigPath overrides the default configuration path.
	EnvConfigPath = "FORMPILOT_CONFIG"
)

// Semantic field names the submitters reference. Every one of these must be
// present in form_config.field_mappings.
const (
	FieldName               = "name"
	FieldWorkDone           = "work_done"
	FieldDifficulties       = "difficulties"
	FieldAgenda             = "agenda"
	FieldDateYear           = "date_year"
	FieldDateMonth          = "date_month"
	FieldDateDay            = "date_day"
	FieldProductivityRating = "productivity_rating"
)

// RequiredFields lists every semantic field a submitter may look up.
var RequiredFields = []string{
	FieldName,
	FieldWorkDone,
	FieldDifficulties,
	FieldAgenda,
	FieldDateYear,
	FieldDateMonth,
	FieldDateDay,
	FieldProductivityRating,
}

// Config is the root configuration document.
type Config struct {
	UserData   UserData   `json:"user_data"`
	WorkTasks  WorkTasks  `json:"work_tasks"`
	FormConfig FormConfig `json:"form_config"`
}

// UserData describes the submitter and the static answer defaults.
type UserData struct {
	Name                string      `json:"name"`
	DifficultiesDefault string      `json:"difficulties_default"`
	AgendaDefault       string      `json:"agenda_default"`
	RatingRange         RatingRange `json:"productivity_rating_range"`
}

// RatingRange bounds the generated productivity rating, inclusive on both
// ends. Min == Max is a valid degenerate range.
type RatingRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// WorkTasks holds the task pools the report generator draws from.
type WorkTasks struct {
	RequiredTasks []string       `json:"required_tasks"`
	OptionalTasks []OptionalTask `json:"optional_tasks"`
}

// OptionalTask is included in the generated report with the configured
// probability. Each entry is an independent Bernoulli trial; probabilities
// are not normalized against each other.
type OptionalTask struct {
	Task        string  `json:"task"`
	Probability float64 `json:"probability"`
}

// FormConfig describes the remote form endpoint.
type FormConfig struct {
	// FormURL is the POST endpoint (the formResponse URL).
	FormURL string `json:"form_url"`

	// FieldMappings maps semantic field names to the endpoint-specific
	// field identifiers (e.g. "name" -> "entry.123456").
	FieldMappings map[string]string `json:"field_mappings"`

	// HiddenParams are fixed key/value pairs the endpoint expects,
	// sent unchanged with every submission.
	HiddenParams map[string]string `json:"hidden_params"`
}

// Suffixes distinguishing the POST endpoint from the human-facing view page.
const (
	submitPathSuffix = "/formResponse"
	viewPathSuffix   = "/viewform"
)

// DefaultPath returns the configuration path next to the running executable,
// mirroring where the config file lives in a checked-out deployment.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), ConfigFileName), nil
}

// Load reads, decodes, and validates the configuration file at path.
// A missing file or malformed JSON is a fatal startup condition for the
// caller; nothing is partially loaded.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the loaded document for the invariants the submitters
// rely on, so lookup failures surface at startup instead of mid-attempt.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.UserData.Name) == "" {
		return fmt.Errorf("user_data.name is required")
	}
	if c.UserData.RatingRange.Min > c.UserData.RatingRange.Max {
		return fmt.Errorf("productivity_rating_range: min (%d) greater than max (%d)",
			c.UserData.RatingRange.Min, c.UserData.RatingRange.Max)
	}

	for i, task := range c.WorkTasks.OptionalTasks {
		if task.Probability < 0 || task.Probability > 1 {
			return fmt.Errorf("optional_tasks[%d] (%q): probability %v outside [0,1]",
				i, task.Task, task.Probability)
		}
	}

	formURL := c.FormConfig.FormURL
	if formURL == "" {
		return fmt.Errorf("form_config.form_url is required")
	}
	parsed, err := url.Parse(formURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("form_config.form_url %q is not a valid http(s) URL", formURL)
	}

	for _, field := range RequiredFields {
		if _, ok := c.FormConfig.FieldMappings[field]; !ok {
			return fmt.Errorf("form_config.field_mappings missing required field %q", field)
		}
	}
	return nil
}

// FieldID resolves a semantic field name to its endpoint field identifier.
func (f *FormConfig) FieldID(name string) (string, error) {
	id, ok := f.FieldMappings[name]
	if !ok {
		return "", fmt.Errorf("no field mapping for %q", name)
	}
	return id, nil
}

// SubmitURL returns the POST endpoint.
func (f *FormConfig) SubmitURL() string {
	return f.FormURL
}

// ViewURL returns the human-facing form page, derived from the submit URL
// by swapping the response path suffix for the view suffix.
func (f *FormConfig) ViewURL() string {
	return strings.Replace(f.FormURL, submitPathSuffix, viewPathSuffix, 1)
}
