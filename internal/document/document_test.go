package document

import (
	"reflect"
	"testing"
)

func TestBuilder_SectionsNest(t *testing.T) {
	b := NewBuilder("Loan", "md")
	b.Heading("Facility Agreement", 1)
	b.Paragraph("Intro.")
	b.Heading("1. Definitions", 2)
	b.Paragraph(`"Loan" means the loan.`)
	b.Heading("2. Interest", 2)
	b.Paragraph("Interest accrues daily.")
	doc := b.Build()

	want := "Facility Agreement\n\nIntro.\n\n1. Definitions\n\n\"Loan\" means the loan.\n\n2. Interest\n\nInterest accrues daily."
	if doc.Text != want {
		t.Fatalf("text = %q", doc.Text)
	}
	if len(doc.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(doc.Sections))
	}
	top, defs, interest := doc.Sections[0], doc.Sections[1], doc.Sections[2]
	if top.Start != 0 || top.End != len(doc.Text) {
		t.Errorf("top section should span the document: [%d,%d)", top.Start, top.End)
	}
	if doc.Text[defs.Start:defs.End] != "1. Definitions\n\n\"Loan\" means the loan." {
		t.Errorf("definitions section = %q", doc.Text[defs.Start:defs.End])
	}
	if interest.End != len(doc.Text) {
		t.Errorf("last section should close at end of text")
	}
	if !reflect.DeepEqual(interest.Breadcrumb, []string{"Facility Agreement", "2. Interest"}) {
		t.Errorf("breadcrumb = %v", interest.Breadcrumb)
	}

	s, ok := doc.SectionAt(defs.Start + 3)
	if !ok || s.Heading != "1. Definitions" {
		t.Errorf("SectionAt should pick the innermost section, got %+v", s)
	}
}

func TestBuilder_Pages(t *testing.T) {
	b := NewBuilder("deck", "pdf")
	b.StartPage()
	b.Paragraph("Page one text.")
	b.StartPage()
	b.StartPage()
	b.Paragraph("Page three text.")
	doc := b.Build()

	if doc.Text != "Page one text.\n\nPage three text." {
		t.Fatalf("text = %q", doc.Text)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("empty page should be skipped, got %+v", doc.Pages)
	}
	second := doc.Pages[1]
	if doc.Text[second.Start:second.End] != "Page three text." {
		t.Errorf("page span = %q", doc.Text[second.Start:second.End])
	}
	if doc.PageAt(second.Start) != 2 || doc.PageAt(0) != 1 {
		t.Errorf("PageAt mismatch")
	}
}

func TestBuilder_DropsBlankBlocks(t *testing.T) {
	b := NewBuilder("x", "txt")
	b.Paragraph("   ")
	b.Heading("", 1)
	doc := b.Build()
	if !doc.Empty() || len(doc.Sections) != 0 {
		t.Errorf("blank input should produce an empty document: %+v", doc)
	}
}
