package normalizer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"scrubber/internal/config"
	"scrubber/internal/models"
)

// FailPolicy decides what Standardize returns for an unparseable date.
type FailPolicy int

// Fail policies.
const (
	// FailNull reports an unparseable date as null.
	FailNull FailPolicy = iota
	// FailKeepOriginal returns the trimmed input unchanged.
	FailKeepOriginal
)

// ParseFailPolicy maps a config value ("null" or "keep") to a FailPolicy.
func ParseFailPolicy(s string) (FailPolicy, error) {
	switch strings.ToLower(s) {
	case config.FailPolicyNull, "":
		return FailNull, nil
	case config.FailPolicyKeep:
		return FailKeepOriginal, nil
	default:
		return FailNull, fmt.Errorf("%w: %q", config.ErrInvalidFailPolicy, s)
	}
}

// DatePattern is one entry of the ordered parse list. Name is the strftime
// spelling of the pattern, Layout its Go equivalent.
type DatePattern struct {
	Name   string
	Layout string
}

// datePatterns is tried top to bottom and the first full-string match wins.
// The order settles ambiguous inputs: "03/04/2025" is day/month because
// %d/%m/%Y comes before %m/%d/%Y. Do not reorder.
var datePatterns = []DatePattern{
	{Name: "%Y-%m-%d", Layout: "2006-1-2"},
	{Name: "%d/%m/%Y", Layout: "2/1/2006"},
	{Name: "%m/%d/%Y", Layout: "1/2/2006"},
	{Name: "%d-%m-%Y", Layout: "2-1-2006"},
	{Name: "%m-%d-%Y", Layout: "1-2-2006"},
	{Name: "%Y/%m/%d", Layout: "2006/1/2"},
	{Name: "%d %B %Y", Layout: "2 January 2006"},
	{Name: "%d %b %Y", Layout: "2 Jan 2006"},
	{Name: "%B %d, %Y", Layout: "January 2, 2006"},
	{Name: "%b %d, %Y", Layout: "Jan 2, 2006"},
	{Name: "%Y-%m-%dT%H:%M:%S", Layout: "2006-1-2T15:04:05"},
	{Name: "%Y-%m-%dT%H:%M:%SZ", Layout: "2006-1-2T15:04:05Z"},
	{Name: "%Y-%m-%d %H:%M:%S", Layout: "2006-1-2 15:04:05"},
	{Name: "%d/%m/%y", Layout: "2/1/06"},
	{Name: "%m/%d/%y", Layout: "1/2/06"},
	{Name: "%Y%m%d", Layout: compactDateLayout},
}

const compactDateLayout = "20060102"

var isoDatePrefixPattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)

// compactDatePattern accepts one- or two-digit month and day in a compact
// date. Alternatives are tried left to right, so "2025111" is 2025-11-01.
var compactDatePattern = regexp.MustCompile(`^(\d{4})(1[0-2]|0[1-9]|[1-9])(3[01]|[12]\d|0[1-9]|[1-9])$`)

// DatePatterns returns a copy of the ordered parse list.
func DatePatterns() []DatePattern {
	out := make([]DatePattern, len(datePatterns))
	copy(out, datePatterns)

	return out
}

// DateNormalizer converts heterogeneous date strings to one output layout.
type DateNormalizer struct {
	OutputLayout string
	FailPolicy   FailPolicy
}

// NewDateNormalizer returns a normalizer emitting YYYY-MM-DD and reporting
// unparseable input as null.
func NewDateNormalizer() *DateNormalizer {
	return &DateNormalizer{
		OutputLayout: config.DefaultDateOutputLayout,
		FailPolicy:   FailNull,
	}
}

// StandardizeDate standardizes v with the default normalizer.
func StandardizeDate(v any) (string, bool) {
	return NewDateNormalizer().Standardize(v)
}

// Standardize parses v and renders it with the output layout. The boolean is
// false when the result is null: for nil or empty input, and for
// unparseable input under FailNull. It never fails.
func (d *DateNormalizer) Standardize(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case time.Time:
		return x.Format(d.layout()), true
	case *time.Time:
		if x == nil {
			return "", false
		}

		return x.Format(d.layout()), true
	case models.Value:
		if t, ok := x.Time(); ok {
			return t.Format(d.layout()), true
		}

		if x.IsNull() {
			return "", false
		}
	}

	raw := strings.TrimSpace(stringify(v))
	if raw == "" {
		return "", false
	}

	text := NormalizeWhitespace(RemoveHTMLArtifacts(raw))

	if t, ok := matchDatePattern(text); ok {
		return t.Format(d.layout()), true
	}

	if m := isoDatePrefixPattern.FindStringSubmatch(text); m != nil {
		prefix := m[1] + "-" + m[2] + "-" + m[3]
		if t, err := time.Parse("2006-01-02", prefix); err == nil {
			return t.Format(d.layout()), true
		}

		return prefix, true
	}

	if d.FailPolicy == FailKeepOriginal {
		return raw, true
	}

	return "", false
}

// StandardizeValue is Standardize expressed over Values: null results become
// a null Value.
func (d *DateNormalizer) StandardizeValue(v models.Value) models.Value {
	s, ok := d.Standardize(v)
	if !ok {
		return models.NullValue()
	}

	return models.StringValue(s)
}

func (d *DateNormalizer) layout() string {
	if d.OutputLayout == "" {
		return config.DefaultDateOutputLayout
	}

	return d.OutputLayout
}

func matchDatePattern(text string) (time.Time, bool) {
	for _, p := range datePatterns {
		if p.Layout == compactDateLayout {
			if t, ok := parseCompactDate(text); ok {
				return t, true
			}

			continue
		}

		if t, err := time.Parse(p.Layout, text); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func parseCompactDate(text string) (time.Time, bool) {
	m := compactDatePattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, false
	}

	return t, true
}
