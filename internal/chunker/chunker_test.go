package chunker

import (
	"strings"
	"testing"

	"github.com/dgallion1/clausecheck/internal/document"
)

func TestSplit_SmallDocumentFitsOneChunk(t *testing.T) {
	doc := document.FromText("Small", strings.Repeat("word ", 200))
	chunks := Split(doc, Config{ChunkSize: 1500, ChunkOverlap: 200, MinChunk: 50})

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Index != 0 || chunks[0].Start != 0 {
		t.Errorf("expected index 0 at offset 0, got %d at %d", chunks[0].Index, chunks[0].Start)
	}
	if chunks[0].Text != strings.TrimSpace(doc.Text) {
		t.Errorf("chunk should hold the trimmed document text")
	}
}

func TestSplit_LargeDocumentRequiresSplitting(t *testing.T) {
	// ~3000 words -> ~3990 tokens at 1.33 tokens/word.
	doc := document.FromText("Large", strings.Repeat("The quick brown fox jumps over the lazy dog. ", 300))
	cfg := Config{ChunkSize: 500, ChunkOverlap: 50, MinChunk: 10}
	chunks := Split(doc, cfg)

	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks for large text, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d: expected index %d, got %d", i, i, c.Index)
		}
		if doc.Text[c.Start:c.End] != c.Text {
			t.Errorf("chunk %d: offsets do not address its text", i)
		}
		if tokens := EstimateTokens(c.Text); tokens > cfg.ChunkSize*2 {
			t.Errorf("chunk %d: %d tokens exceeds 2x target %d", i, tokens, cfg.ChunkSize)
		}
		if i > 0 {
			prev := chunks[i-1]
			if c.Start > prev.End {
				t.Errorf("chunk %d leaves a gap after chunk %d", i, i-1)
			}
			if c.Start <= prev.Start {
				t.Errorf("chunk %d does not advance", i)
			}
		}
	}
	if last := chunks[len(chunks)-1]; last.End != len(strings.TrimRight(doc.Text, " ")) {
		t.Errorf("chunks should reach the end of the text, last ends at %d", last.End)
	}
}

func TestSplit_BreadcrumbFromSections(t *testing.T) {
	b := document.NewBuilder("Doc", "md")
	b.Heading("Chapter 1", 1)
	b.Heading("Section 1.1", 2)
	b.Paragraph(strings.Repeat("content ", 200))
	chunks := Split(b.Build(), Config{ChunkSize: 2000, ChunkOverlap: 100, MinChunk: 10})

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if got := strings.Join(chunks[0].Breadcrumb, "/"); got != "Chapter 1" {
		t.Errorf("breadcrumb at offset 0 should be the first heading, got %q", got)
	}
}

func TestSplit_BreaksAtSectionWhenHalfFull(t *testing.T) {
	b := document.NewBuilder("Doc", "md")
	b.Heading("A", 1)
	b.Paragraph(strings.Repeat("alpha ", 300))
	b.Heading("B", 1)
	b.Paragraph(strings.Repeat("beta ", 300))
	chunks := Split(b.Build(), Config{ChunkSize: 700, ChunkOverlap: 1, MinChunk: 10})

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Breadcrumb[0] != "A" || chunks[1].Breadcrumb[0] != "B" {
		t.Errorf("breadcrumbs = %v, %v", chunks[0].Breadcrumb, chunks[1].Breadcrumb)
	}
}

func TestSplit_TinyTailFoldsIntoPrevious(t *testing.T) {
	text := strings.Repeat("word ", 300) + "\n\nEnd."
	chunks := Split(document.FromText("Doc", text), Config{ChunkSize: 399, ChunkOverlap: 1, MinChunk: 50})
	if len(chunks) != 1 {
		t.Fatalf("expected the tail to fold into one chunk, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0].Text, "End.") {
		t.Errorf("chunk should end with the tail")
	}
}

func TestSplit_EmptyDocument(t *testing.T) {
	if chunks := Split(document.FromText("Empty", "  \n\n "), DefaultConfig()); len(chunks) != 0 {
		t.Errorf("expected 0 chunks, got %d", len(chunks))
	}
}

func TestSplit_DefaultConfigFallback(t *testing.T) {
	chunks := Split(document.FromText("Doc", strings.Repeat("word ", 200)), Config{})
	if len(chunks) != 1 {
		t.Errorf("expected 1 chunk with zero config (defaults applied), got %d", len(chunks))
	}
}

func TestEstimateTokens(t *testing.T) {
	if EstimateTokens("") != 0 {
		t.Error("empty text should be 0 tokens")
	}
	if EstimateTokens("a") != 1 {
		t.Error("non-empty text should be at least 1 token")
	}
	if got := EstimateTokens(strings.Repeat("word ", 100)); got != 133 {
		t.Errorf("expected 133 tokens, got %d", got)
	}
}
