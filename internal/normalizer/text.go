package normalizer

import (
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"

	"scrubber/internal/models"
)

var (
	htmlTagPattern        = regexp.MustCompile(`<[^>]+>`)
	breakingSpacePattern  = regexp.MustCompile(`[\t\n\r\f\v]+`)
	repeatedSpacePattern  = regexp.MustCompile(` +`)
	mojibakeMarkerPattern = regexp.MustCompile(`[\x{00C2}\x{00C3}\x{00E2}]`)
)

// smartPunctuation replaces typographic characters with their ASCII forms and
// drops the Unicode replacement character.
var smartPunctuation = strings.NewReplacer(
	"\u201c", `"`,
	"\u201d", `"`,
	"\u2018", "'",
	"\u2019", "'",
	"\u2013", "-",
	"\u2014", "-",
	"\u00a0", " ",
	"\ufffd", "",
)

// TextOptions toggles the stages of CleanText. Stages always run in the order
// HTML, mojibake, encoding, special characters, whitespace.
type TextOptions struct {
	RemoveHTML          bool
	NormalizeEncoding   bool
	HandleSpecial       bool
	NormalizeWhitespace bool
	// RepairMojibake undoes UTF-8 text that was decoded as Windows-1252.
	RepairMojibake bool
}

// DefaultTextOptions enables every stage except mojibake repair.
func DefaultTextOptions() TextOptions {
	return TextOptions{
		RemoveHTML:          true,
		NormalizeEncoding:   true,
		HandleSpecial:       true,
		NormalizeWhitespace: true,
	}
}

// CleanText runs the text pipeline over v. Non-string values are stringified
// first and nil yields "".
func CleanText(v any, opts TextOptions) string {
	text := stringify(v)

	if opts.RemoveHTML {
		text = RemoveHTMLArtifacts(text)
	}

	if opts.RepairMojibake {
		text = RepairMojibake(text)
	}

	if opts.NormalizeEncoding {
		text = NormalizeEncoding(text)
	}

	if opts.HandleSpecial {
		text = HandleSpecialCharacters(text)
	}

	if opts.NormalizeWhitespace {
		text = NormalizeWhitespace(text)
	}

	return text
}

// RemoveHTMLArtifacts decodes character entities and then deletes anything
// shaped like a tag.
func RemoveHTMLArtifacts(text string) string {
	text = html.UnescapeString(text)

	return htmlTagPattern.ReplaceAllString(text, "")
}

// NormalizeEncoding composes text to NFC and replaces smart punctuation.
func NormalizeEncoding(text string) string {
	text = norm.NFC.String(text)

	return smartPunctuation.Replace(text)
}

// RepairMojibake reverses the common corruption where UTF-8 bytes were read
// as Windows-1252 (e.g. "CafÃ©" becomes "Café"). Text that does not
// re-encode cleanly into different, valid UTF-8 is returned unchanged.
func RepairMojibake(text string) string {
	if !mojibakeMarkerPattern.MatchString(text) {
		return text
	}

	raw, err := charmap.Windows1252.NewEncoder().String(text)
	if err != nil || raw == text || !utf8.ValidString(raw) {
		return text
	}

	return raw
}

// HandleSpecialCharacters deletes control characters (category Cc) and any
// remaining replacement characters.
func HandleSpecialCharacters(text string) string {
	text = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}

		return r
	}, text)

	return strings.ReplaceAll(text, "\ufffd", "")
}

// NormalizeWhitespace turns tab/newline runs into a space, collapses spaces
// and trims the result.
func NormalizeWhitespace(text string) string {
	text = breakingSpacePattern.ReplaceAllString(text, " ")
	text = repeatedSpacePattern.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return models.FromAny(v).String()
	}
}
