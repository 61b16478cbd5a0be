package parser

import (
	"errors"
	"strings"
	"testing"
)

func TestTextParser_Paragraphs(t *testing.T) {
	input := "1. Definitions\r\n\"Loan\" means the loan.\n\n\n2. Interest\nInterest accrues daily.\n"
	doc, err := (&TextParser{}).Parse(strings.NewReader(input), "facility.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "facility" {
		t.Errorf("expected title %q, got %q", "facility", doc.Title)
	}
	want := "1. Definitions\n\"Loan\" means the loan.\n\n2. Interest\nInterest accrues daily."
	if doc.Text != want {
		t.Errorf("text = %q\nwant %q", doc.Text, want)
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	doc, err := (&TextParser{}).Parse(strings.NewReader("  \n\n "), "blank.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !doc.Empty() {
		t.Errorf("expected empty document, got %q", doc.Text)
	}
}

func TestCSVParser_RowsBecomeParagraphs(t *testing.T) {
	input := "Fee,Amount\nArrangement,[●]\nCommitment,0.35%\n"
	doc, err := (&CSVParser{}).Parse(strings.NewReader(input), "fees.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Fee: Arrangement, Amount: [●]\n\nFee: Commitment, Amount: 0.35%"
	if doc.Text != want {
		t.Errorf("text = %q", doc.Text)
	}
}

func TestHTMLParser_HeadingsAndParagraphs(t *testing.T) {
	input := `<html><head><title>Facility</title><style>p{}</style></head>
<body><h1>Facility Agreement</h1><p>Intro &amp; scope.</p>
<h2>1. Interest</h2><ul><li>Rate: SONIA</li></ul><script>x()</script></body></html>`
	doc, err := (&HTMLParser{}).Parse(strings.NewReader(input), "f.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "Facility" {
		t.Errorf("title = %q", doc.Title)
	}
	want := "Facility Agreement\n\nIntro & scope.\n\n1. Interest\n\nRate: SONIA"
	if doc.Text != want {
		t.Errorf("text = %q", doc.Text)
	}
	if len(doc.Sections) != 2 || doc.Sections[1].Level != 2 {
		t.Fatalf("sections = %+v", doc.Sections)
	}
}

func TestForFile(t *testing.T) {
	for _, name := range []string{"a.TXT", "b.md", "c.markdown", "d.csv", "e.htm", "f.pdf", "g.docx"} {
		if _, err := ForFile(name, Options{}); err != nil {
			t.Errorf("%s: %v", name, err)
		}
		if !IsSupportedExtension(name) {
			t.Errorf("%s should be supported", name)
		}
	}
	if _, err := ForFile("x.exe", Options{}); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestPDFParser_InvalidInput(t *testing.T) {
	_, err := (&PDFParser{}).Parse(strings.NewReader("not a pdf"), "bad.pdf")
	if err == nil {
		t.Fatal("expected an error for invalid pdf")
	}
	if errors.Is(err, ErrNoText) {
		t.Error("a corrupt file is an extraction error, not an empty document")
	}
}

func TestDOCXParser_InvalidInput(t *testing.T) {
	if _, err := (&DOCXParser{}).Parse(strings.NewReader("not a zip"), "bad.docx"); err == nil {
		t.Fatal("expected an error for invalid docx")
	}
}
