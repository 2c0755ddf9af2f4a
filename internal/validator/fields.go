// Package validator decides whether cleaned records are usable and explains
// why when they are not.
package validator

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"scrubber/internal/config"
	"scrubber/internal/models"
)

// urlPattern is the strict shape check applied after url.Parse succeeds:
// a dotted domain with a 2-6 letter TLD, localhost or an IPv4 literal, then
// an optional port and an optional path or query. The path class excludes
// Unicode spaces too, since RE2's \S only covers ASCII.
var urlPattern = regexp.MustCompile(`(?i)^https?://` +
	`(?:(?:[A-Z0-9](?:[A-Z0-9-]{0,61}[A-Z0-9])?\.)+[A-Z]{2,6}\.?|` +
	`localhost|` +
	`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})` +
	`(?::\d+)?` +
	`(?:/?|[/?][^\s\x{1C}-\x{1F}\x{85}\x{A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}]+)$`)

// DefaultRequiredFields returns the fields every record must carry by default.
func DefaultRequiredFields() []string {
	return config.DefaultRequiredFields()
}

// CheckRequiredFields reports each required field that is absent, null or
// empty, and each that holds only whitespace. Field names are resolved
// through aliases; reasons use the canonical name.
func CheckRequiredFields(r *models.Record, required []string, aliases models.FieldAliases) []string {
	if len(required) == 0 {
		required = DefaultRequiredFields()
	}

	var reasons []string

	for _, field := range required {
		v, ok := r.Get(aliases.Resolve(field))

		s, isString := v.Text()

		switch {
		case !ok || v.IsNull() || (isString && s == ""):
			reasons = append(reasons, fmt.Sprintf("missing required field: %s", field))
		case isString && strings.TrimSpace(s) == "":
			reasons = append(reasons, fmt.Sprintf("required field '%s' is empty or whitespace-only", field))
		}
	}

	return reasons
}

// ValidateURLFormat checks that v is a well-formed http or https URL. Parser
// failures become reasons; nothing is returned as an error.
func ValidateURLFormat(v models.Value, field string) []string {
	if s, ok := v.Text(); v.IsNull() || (ok && s == "") {
		return []string{fmt.Sprintf("missing %s", field)}
	}

	raw := strings.TrimSpace(v.String())
	if raw == "" {
		return []string{fmt.Sprintf("%s is empty", field)}
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return []string{fmt.Sprintf("%s: invalid URL - %v", field, err)}
	}

	if !strings.EqualFold(parsed.Scheme, "http") && !strings.EqualFold(parsed.Scheme, "https") {
		return []string{fmt.Sprintf("%s: invalid scheme (expected http or https)", field)}
	}

	if parsed.Host == "" {
		return []string{fmt.Sprintf("%s: missing host/domain", field)}
	}

	if !urlPattern.MatchString(raw) {
		return []string{fmt.Sprintf("%s: malformed URL format", field)}
	}

	return nil
}

// CheckContentLength reports content shorter than minimum characters after
// trimming. Non-string values are measured by their string form.
func CheckContentLength(v models.Value, minimum int, field string) []string {
	if v.IsNull() {
		return []string{fmt.Sprintf("%s: missing (need at least %d chars)", field, minimum)}
	}

	length := utf8.RuneCountInString(strings.TrimSpace(v.String()))
	if length < minimum {
		return []string{fmt.Sprintf("%s: too short (%d chars, minimum %d)", field, length, minimum)}
	}

	return nil
}
