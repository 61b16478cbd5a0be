package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_HeadingHierarchy(t *testing.T) {
	input := `# Facility Agreement

Intro text.

## 1. Definitions

"Loan" means the loan.

### 1.1 Interpretation

Headings are for convenience only.

## 2. Interest

Interest accrues at **SONIA** plus the Margin.
`
	doc, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "doc" {
		t.Errorf("expected title %q, got %q", "doc", doc.Title)
	}
	if len(doc.Sections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(doc.Sections))
	}

	defs := doc.Sections[1]
	if defs.Heading != "1. Definitions" || defs.Level != 2 {
		t.Errorf("unexpected section %+v", defs)
	}
	body := doc.Text[defs.Start:defs.End]
	if !strings.Contains(body, "Headings are for convenience only.") {
		t.Errorf("definitions section should include its subsection, got %q", body)
	}
	if strings.Contains(body, "2. Interest") {
		t.Errorf("definitions section should stop at the next h2, got %q", body)
	}

	sub := doc.Sections[2]
	if strings.Join(sub.Breadcrumb, " > ") != "Facility Agreement > 1. Definitions > 1.1 Interpretation" {
		t.Errorf("breadcrumb = %v", sub.Breadcrumb)
	}

	if !strings.Contains(doc.Text, "Interest accrues at SONIA plus the Margin.") {
		t.Errorf("inline emphasis should be flattened, got %q", doc.Text)
	}
	if strings.Count(doc.Text, "Intro text.") != 1 {
		t.Errorf("paragraph text should appear once, got %q", doc.Text)
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	doc, err := (&MarkdownParser{}).Parse(strings.NewReader("Just text.\n\nMore text."), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Text != "Just text.\n\nMore text." {
		t.Errorf("text = %q", doc.Text)
	}
	if len(doc.Sections) != 0 {
		t.Errorf("expected no sections, got %d", len(doc.Sections))
	}
}
