// Package config provides configuration management for the scrubber pipeline.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"scrubber/internal/models"
)

// Configuration validation errors.
var (
	ErrEmptyFieldName          = errors.New("field names must not be empty")
	ErrMissingURLField         = errors.New("validation.url_field is required")
	ErrMissingContentField     = errors.New("validation.content_field is required")
	ErrInvalidContentMinLength = errors.New("validation.content_min_length must be non-negative")
	ErrMissingDateOutputLayout = errors.New("cleaning.date_output_layout is required")
	ErrInvalidDateOutputLayout = errors.New("cleaning.date_output_layout does not render a date")
	ErrInvalidFailPolicy       = errors.New("cleaning.date_fail_policy must be 'null' or 'keep'")
	ErrInvalidOutputFormat     = errors.New("output.format must be 'json' or 'jsonl'")
	ErrInvalidLogLevel         = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat        = errors.New("logging.format must be 'text' or 'json'")
	ErrInvalidWorkers          = errors.New("advanced.workers must be non-negative")
	ErrConflictingFieldAliases = errors.New("cleaning and validation map the same field to different keys")
	ErrEmptyFieldAlias         = errors.New("field alias must not be empty")
)

// Date fail policies.
const (
	FailPolicyNull = "null"
	FailPolicyKeep = "keep"
)

// Default values.
const (
	DefaultDateOutputLayout = "2006-01-02"
	DefaultURLField         = "url"
	DefaultContentField     = "content"
	DefaultContentMinLength = 1
)

// Config represents the complete pipeline configuration.
type Config struct {
	Cleaning   CleaningConfig   `yaml:"cleaning"`
	Validation ValidationConfig `yaml:"validation"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
	Advanced   AdvancedConfig   `yaml:"advanced"`
}

// CleaningConfig controls how fields are classified and normalized.
type CleaningConfig struct {
	FieldAliases     map[string]string `yaml:"field_aliases"`
	DateOutputLayout string            `yaml:"date_output_layout"`
	DateFailPolicy   string            `yaml:"date_fail_policy"`
	TextFields       []string          `yaml:"text_fields"`
	DateFields       []string          `yaml:"date_fields"`
	LowercaseFields  []string          `yaml:"lowercase_fields"`
	Text             TextStagesConfig  `yaml:"text"`
}

// TextStagesConfig toggles the text normalization stages.
type TextStagesConfig struct {
	RemoveHTML          bool `yaml:"remove_html"`
	NormalizeEncoding   bool `yaml:"normalize_encoding"`
	HandleSpecial       bool `yaml:"handle_special"`
	NormalizeWhitespace bool `yaml:"normalize_whitespace"`
	RepairMojibake      bool `yaml:"repair_mojibake"`
}

// ValidationConfig defines record validation rules.
type ValidationConfig struct {
	FieldAliases     map[string]string `yaml:"field_aliases"`
	URLField         string            `yaml:"url_field"`
	ContentField     string            `yaml:"content_field"`
	RequiredFields   []string          `yaml:"required_fields"`
	ContentMinLength int               `yaml:"content_min_length"`
}

// OutputConfig defines how cleaned and validated batches are written.
type OutputConfig struct {
	Format      string `yaml:"format"`
	PrettyPrint bool   `yaml:"pretty_print"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AdvancedConfig contains advanced settings.
type AdvancedConfig struct {
	// Workers bounds per-batch parallelism; 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// DefaultTextFields returns the field names cleaned as text by default.
func DefaultTextFields() []string {
	return []string{"name", "title", "description", "category", "email", "url", "content"}
}

// DefaultDateFields returns the conventional date field names. They are not
// applied unless the caller opts in.
func DefaultDateFields() []string {
	return []string{"date", "created", "updated", "published", "scraped_at", "timestamp"}
}

// DefaultRequiredFields returns the fields every record must carry by default.
func DefaultRequiredFields() []string {
	return []string{"title", "content", "url"}
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Cleaning: CleaningConfig{
			TextFields:       DefaultTextFields(),
			DateOutputLayout: DefaultDateOutputLayout,
			DateFailPolicy:   FailPolicyNull,
			Text: TextStagesConfig{
				RemoveHTML:          true,
				NormalizeEncoding:   true,
				HandleSpecial:       true,
				NormalizeWhitespace: true,
			},
		},
		Validation: DefaultValidationConfig(),
		Output: OutputConfig{
			Format: "jsonl",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultValidationConfig returns the default validation rules.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		RequiredFields:   DefaultRequiredFields(),
		URLField:         DefaultURLField,
		ContentField:     DefaultContentField,
		ContentMinLength: DefaultContentMinLength,
	}
}

// LoadConfig loads configuration from a YAML file on top of DefaultConfig.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses YAML on top of DefaultConfig and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Cleaning.Validate(); err != nil {
		return err
	}

	if err := c.Validation.Validate(); err != nil {
		return err
	}

	for canonical, key := range c.Cleaning.FieldAliases {
		if other, ok := c.Validation.FieldAliases[canonical]; ok && other != key {
			return fmt.Errorf("%w: %s (%s vs %s)", ErrConflictingFieldAliases, canonical, key, other)
		}
	}

	if c.Output.Format != "json" && c.Output.Format != "jsonl" {
		return ErrInvalidOutputFormat
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "" && c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	if c.Advanced.Workers < 0 {
		return ErrInvalidWorkers
	}

	return nil
}

// Validate validates the cleaning section.
func (c *CleaningConfig) Validate() error {
	if err := checkNames("cleaning.text_fields", c.TextFields); err != nil {
		return err
	}

	if err := checkNames("cleaning.date_fields", c.DateFields); err != nil {
		return err
	}

	if err := checkNames("cleaning.lowercase_fields", c.LowercaseFields); err != nil {
		return err
	}

	if err := checkAliases("cleaning.field_aliases", c.FieldAliases); err != nil {
		return err
	}

	if c.DateOutputLayout == "" {
		return ErrMissingDateOutputLayout
	}

	probe := time.Date(2001, 2, 3, 0, 0, 0, 0, time.UTC)
	if c.DateOutputLayout == probe.Format(c.DateOutputLayout) {
		return fmt.Errorf("%w: %q", ErrInvalidDateOutputLayout, c.DateOutputLayout)
	}

	if c.DateFailPolicy != FailPolicyNull && c.DateFailPolicy != FailPolicyKeep {
		return ErrInvalidFailPolicy
	}

	return nil
}

// Validate validates the validation section.
func (v *ValidationConfig) Validate() error {
	if err := checkNames("validation.required_fields", v.RequiredFields); err != nil {
		return err
	}

	if err := checkAliases("validation.field_aliases", v.FieldAliases); err != nil {
		return err
	}

	if v.URLField == "" {
		return ErrMissingURLField
	}

	if v.ContentField == "" {
		return ErrMissingContentField
	}

	if v.ContentMinLength < 0 {
		return ErrInvalidContentMinLength
	}

	return nil
}

// FieldAliases returns the cleaning and validation aliases merged into one
// map so both stages resolve the same keys. Validation entries win.
func (c *Config) FieldAliases() models.FieldAliases {
	return models.FieldAliases(c.Cleaning.FieldAliases).Merge(c.Validation.FieldAliases)
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{TextFields: %d, DateFields: %d, Required: %v, Output: %s}",
		len(c.Cleaning.TextFields),
		len(c.Cleaning.DateFields),
		c.Validation.RequiredFields,
		c.Output.Format,
	)
}

func checkNames(section string, names []string) error {
	for i, n := range names {
		if strings.TrimSpace(n) == "" {
			return fmt.Errorf("%w: %s[%d]", ErrEmptyFieldName, section, i)
		}
	}

	return nil
}

func checkAliases(section string, aliases map[string]string) error {
	for canonical, key := range aliases {
		if strings.TrimSpace(canonical) == "" {
			return fmt.Errorf("%w: %s", ErrEmptyFieldName, section)
		}

		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("%w: %s.%s", ErrEmptyFieldAlias, section, canonical)
		}
	}

	return nil
}
