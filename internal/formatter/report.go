package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"scrubber/internal/models"
	"scrubber/internal/validator"
	"scrubber/pkg/utils"
)

// DefaultLabelWidth is the widest a record label may be in the rejects table.
const DefaultLabelWidth = 40

// ReportOptions configures FormatReport.
type ReportOptions struct {
	// Title is the document heading.
	Title string
	// LabelField names the record field shown beside each rejected index.
	LabelField string
	// LabelWidth truncates labels to this many display cells.
	LabelWidth int
	// Aliases maps LabelField to the key records actually use.
	Aliases models.FieldAliases
}

// DefaultReportOptions labels rejects by their title.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{
		Title:      "Validation Report",
		LabelField: "title",
		LabelWidth: DefaultLabelWidth,
	}
}

// FormatReport renders a markdown summary of a validated batch: the counters
// followed by one row per rejected record with all its reasons.
func FormatReport(result *validator.BatchResult, opts ReportOptions) string {
	if opts.Title == "" {
		opts.Title = DefaultReportOptions().Title
	}

	if opts.LabelWidth <= 0 {
		opts.LabelWidth = DefaultLabelWidth
	}

	stats := result.Stats

	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", opts.Title)

	sb.WriteString("| Metric | Count |\n")
	sb.WriteString("| --- | --- |\n")

	rows := []struct {
		name  string
		count int
	}{
		{"Total records", stats.TotalRecords},
		{"Valid", stats.ValidRecords},
		{"Invalid", stats.InvalidRecords},
		{"Missing required fields", stats.MissingRequired},
		{"Invalid URL", stats.InvalidURL},
		{"Content too short", stats.ContentTooShort},
	}

	for _, r := range rows {
		fmt.Fprintf(&sb, "| %s | %d |\n", r.name, r.count)
	}

	sb.WriteString("\n## Rejected Records\n\n")

	if len(result.Invalid) == 0 {
		sb.WriteString("All records passed validation.\n")

		return AlignTables(sb.String())
	}

	helper := utils.NewStringHelper()

	label := "Label"
	if opts.LabelField != "" {
		label = opts.LabelField
	}

	fmt.Fprintf(&sb, "| Index | %s | Reasons |\n", escapeCell(label))
	sb.WriteString("| --- | --- | --- |\n")

	for _, inv := range result.Invalid {
		text := ""
		if v, ok := inv.Record.Get(opts.Aliases.Resolve(opts.LabelField)); ok {
			text = helper.TruncateString(helper.SingleLine(v.String()), opts.LabelWidth)
		}

		fmt.Fprintf(&sb, "| %s | %s | %s |\n",
			strconv.Itoa(inv.Index),
			escapeCell(text),
			escapeCell(strings.Join(inv.Reasons, "; ")))
	}

	return AlignTables(sb.String())
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
