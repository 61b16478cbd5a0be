// Package report renders a stored review as a printable findings report.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"

	"github.com/dgallion1/clausecheck/internal/compare"
	"github.com/dgallion1/clausecheck/internal/finding"
	"github.com/dgallion1/clausecheck/internal/store"
)

// PageTitle heads every rendered HTML report.
const PageTitle = "ClauseCheck findings report"

// Row is one finding as it appears in the report.
type Row struct {
	ID         string
	Severity   finding.Severity
	RuleID     string
	RuleTitle  string
	Location   string
	Why        string
	Suggestion string
	Source     finding.Source
}

// Report is the data behind a rendered report.
type Report struct {
	Title       string
	PackLabel   string
	GeneratedAt time.Time
	Counts      finding.Counts
	Hidden      int // findings excluded by the filter
	Rows        []Row
}

// Build selects the review's findings through fl and orders them high
// severity first. Pass r.ResolvedSet() in fl.Resolved to leave out resolved
// findings.
func Build(r *store.Review, packLabel string, fl finding.Filter, generatedAt time.Time) Report {
	shown := fl.Apply(r.Findings)
	finding.SortBySeverity(shown)

	rep := Report{
		Title:       r.Title,
		PackLabel:   packLabel,
		GeneratedAt: generatedAt,
		Counts:      finding.Count(shown),
		Hidden:      len(r.Findings) - len(shown),
		Rows:        make([]Row, 0, len(shown)),
	}
	if rep.Title == "" {
		rep.Title = "Untitled agreement"
	}
	for _, f := range shown {
		rep.Rows = append(rep.Rows, Row{
			ID:         f.ID,
			Severity:   f.Severity,
			RuleID:     f.RuleID,
			RuleTitle:  f.RuleTitle,
			Location:   location(f),
			Why:        f.Why,
			Suggestion: f.Suggestion,
			Source:     f.Source,
		})
	}
	return rep
}

func location(f finding.Finding) string {
	if f.LocationLabel != "" {
		return f.LocationLabel
	}
	if f.MatchedText != "" {
		return f.MatchedText
	}
	return "Document"
}

// Markdown renders the report as GitHub-flavoured Markdown.
func Markdown(rep Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", escapeInline(rep.Title))
	if rep.PackLabel != "" {
		fmt.Fprintf(&sb, "**Rule pack:** %s  \n", escapeInline(rep.PackLabel))
	}
	fmt.Fprintf(&sb, "**Generated:** %s\n\n", rep.GeneratedAt.UTC().Format("2 Jan 2006 15:04 MST"))

	sb.WriteString("| High | Medium | Low | Total |\n|---:|---:|---:|---:|\n")
	fmt.Fprintf(&sb, "| %d | %d | %d | %d |\n\n", rep.Counts.High, rep.Counts.Medium, rep.Counts.Low, rep.Counts.Total)
	if rep.Hidden > 0 {
		fmt.Fprintf(&sb, "_%d finding(s) hidden by filters or marked resolved._\n\n", rep.Hidden)
	}

	sb.WriteString("## Findings\n\n")
	if len(rep.Rows) == 0 {
		sb.WriteString("No findings.\n")
		return sb.String()
	}
	sb.WriteString("| # | Severity | Rule | Issue | Location | Why | Suggestion |\n")
	sb.WriteString("|---|---|---|---|---|---|---|\n")
	for i, row := range rep.Rows {
		rule := row.RuleID
		if row.Source == finding.SourceAI {
			rule = "AI"
		}
		fmt.Fprintf(&sb, "| %d | %s | %s | %s | %s | %s | %s |\n",
			i+1, strings.ToUpper(string(row.Severity)), escapeCell(rule), escapeCell(row.RuleTitle),
			escapeCell(row.Location), escapeCell(row.Why), escapeCell(row.Suggestion))
	}
	return sb.String()
}

// Comparison renders version-comparison findings as a Markdown table.
func Comparison(findings []compare.Finding) string {
	if len(findings) == 0 {
		return "No differences found.\n"
	}
	var sb strings.Builder
	sb.WriteString("| ID | Severity | Change | Baseline | New | Why |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for _, f := range findings {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s |\n",
			escapeCell(f.ID), strings.ToUpper(string(f.Severity)), escapeCell(f.RuleTitle),
			escapeCell(f.BaselineSnippet), escapeCell(f.NewSnippet), escapeCell(f.Why))
	}
	return sb.String()
}

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// HTML renders the report as a standalone printable page. Raw HTML in
// finding text is not passed through.
func HTML(rep Report) (string, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(rep)), &body); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	sb.WriteString("<title>" + html.EscapeString(PageTitle) + "</title>\n")
	sb.WriteString("<style>\n" + pageCSS + "</style>\n</head>\n<body>\n")
	sb.WriteString("<p class=\"banner\">" + html.EscapeString(PageTitle) + "</p>\n")
	sb.Write(body.Bytes())
	sb.WriteString("</body>\n</html>\n")
	return sb.String(), nil
}

const pageCSS = `body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; margin: 2rem; color: #1f2933; }
.banner { font-size: 0.8rem; text-transform: uppercase; letter-spacing: 0.08em; color: #52606d; }
table { border-collapse: collapse; width: 100%; margin-bottom: 1.5rem; font-size: 0.9rem; }
th, td { border: 1px solid #cbd2d9; padding: 0.4rem 0.6rem; vertical-align: top; text-align: left; }
th { background: #f5f7fa; }
@media print { body { margin: 0.5cm; } }
`

var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`,
	"[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`, "#", `\#`,
)

func escapeInline(s string) string {
	return mdEscaper.Replace(strings.Join(strings.Fields(s), " "))
}

func escapeCell(s string) string {
	return strings.ReplaceAll(escapeInline(s), "|", `\|`)
}
