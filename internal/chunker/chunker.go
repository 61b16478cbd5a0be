// Package chunker cuts a document into model-sized windows for AI review.
// Every chunk is a contiguous range of the document text, so offsets found
// inside a chunk translate back to the document by adding Chunk.Start.
package chunker

import (
	"regexp"
	"strings"

	"github.com/dgallion1/clausecheck/internal/document"
	"github.com/dgallion1/clausecheck/internal/textscan"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Target chunk size in tokens.
	ChunkOverlap int // Overlap between consecutive chunks in tokens.
	MinChunk     int // A trailing chunk smaller than this is folded into its predecessor.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    3000,
		ChunkOverlap: 200,
		MinChunk:     100,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ChunkSize <= 0 {
		c.ChunkSize = d.ChunkSize
	}
	if c.ChunkOverlap <= 0 {
		c.ChunkOverlap = d.ChunkOverlap
	}
	if c.MinChunk <= 0 {
		c.MinChunk = d.MinChunk
	}
	return c
}

// Chunk is a window of the document text with its structural context.
type Chunk struct {
	Text       string
	Index      int
	Start      int // Byte offset of Text in the document.
	End        int
	Breadcrumb []string // Heading path at Start, e.g. ["Facility Agreement", "7. Interest"].
	PageStart  int
	PageEnd    int
}

// unit is the smallest piece the chunker will not cut: a paragraph, or a
// sentence of an oversized paragraph.
type unit struct {
	start, end int
	tokens     int
}

var blankLine = regexp.MustCompile(`\n\s*\n`)

// Split produces overlapping chunks covering all of doc.Text. A chunk closes
// early at a section heading once it is at least half full.
func Split(doc *document.Document, cfg Config) []Chunk {
	cfg = cfg.withDefaults()
	units := splitUnits(doc.Text, cfg.ChunkSize)
	if len(units) == 0 {
		return nil
	}

	headings := make(map[int]bool, len(doc.Sections))
	for _, s := range doc.Sections {
		headings[s.Start] = true
	}

	var chunks []Chunk
	for i := 0; i < len(units); {
		j, tokens := i, 0
		for j < len(units) {
			if j > i && tokens+units[j].tokens > cfg.ChunkSize {
				break
			}
			if j > i && tokens >= cfg.ChunkSize/2 && headings[units[j].start] {
				break
			}
			tokens += units[j].tokens
			j++
		}

		if j == len(units) && len(chunks) > 0 && tokens < cfg.MinChunk {
			last := &chunks[len(chunks)-1]
			*last = makeChunk(doc, last.Start, units[j-1].end, last.Index)
			break
		}
		chunks = append(chunks, makeChunk(doc, units[i].start, units[j-1].end, len(chunks)))
		if j == len(units) {
			break
		}

		// Step back over trailing units to overlap with the next chunk, but
		// always make progress.
		next, back := j, 0
		for next-1 > i && back+units[next-1].tokens <= cfg.ChunkOverlap {
			next--
			back += units[next].tokens
		}
		i = next
	}
	return chunks
}

func makeChunk(doc *document.Document, start, end, index int) Chunk {
	c := Chunk{
		Text:      doc.Text[start:end],
		Index:     index,
		Start:     start,
		End:       end,
		PageStart: doc.PageAt(start),
		PageEnd:   doc.PageAt(end - 1),
	}
	if s, ok := doc.SectionAt(start); ok {
		c.Breadcrumb = copyBreadcrumb(s.Breadcrumb)
	}
	return c
}

// splitUnits breaks text into trimmed paragraphs, and paragraphs larger than
// maxTokens into sentences.
func splitUnits(text string, maxTokens int) []unit {
	var units []unit
	prev := 0
	seps := blankLine.FindAllStringIndex(text, -1)
	seps = append(seps, []int{len(text), len(text)})
	for _, sep := range seps {
		start, end := trimRange(text, prev, sep[0])
		prev = sep[1]
		if start >= end {
			continue
		}
		tokens := EstimateTokens(text[start:end])
		if tokens <= maxTokens {
			units = append(units, unit{start, end, tokens})
			continue
		}
		units = append(units, sentenceUnits(text, start, end)...)
	}
	return units
}

func sentenceUnits(text string, start, end int) []unit {
	var units []unit
	para := text[start:end]
	covered := 0
	for _, s := range textscan.Sentences(para) {
		s0, s1 := trimRange(para, covered, s.End)
		covered = s.End
		if s0 < s1 {
			units = append(units, unit{start + s0, start + s1, EstimateTokens(para[s0:s1])})
		}
	}
	// Trailing text without a terminator.
	if s0, s1 := trimRange(para, covered, len(para)); s0 < s1 {
		units = append(units, unit{start + s0, start + s1, EstimateTokens(para[s0:s1])})
	}
	return units
}

func trimRange(text string, start, end int) (int, int) {
	seg := text[start:end]
	lead := len(seg) - len(strings.TrimLeft(seg, " \t\r\n"))
	trail := len(seg) - len(strings.TrimRight(seg, " \t\r\n"))
	if lead == len(seg) {
		return start, start
	}
	return start + lead, end - trail
}

func copyBreadcrumb(bc []string) []string {
	if len(bc) == 0 {
		return nil
	}
	out := make([]string, len(bc))
	copy(out, bc)
	return out
}
