// Package document is the extracted form of an uploaded agreement: one flat
// text that rules and highlights address by byte offset, plus the heading and
// page structure recovered by the parser.
package document

import "strings"

// paragraphSep joins extracted blocks and PDF pages.
const paragraphSep = "\n\n"

// Document is a parsed agreement.
type Document struct {
	Title    string    `json:"title"`
	Format   string    `json:"format"`
	Text     string    `json:"text"`
	Sections []Section `json:"sections,omitempty"`
	Pages    []Span    `json:"pages,omitempty"`
}

// Section is a heading and the text range it governs, up to the next heading
// of the same or a higher level.
type Section struct {
	Heading    string   `json:"heading"`
	Level      int      `json:"level"`
	Start      int      `json:"start"`
	End        int      `json:"end"`
	Breadcrumb []string `json:"breadcrumb,omitempty"`
}

// Span is a half-open byte range into Text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// FromText wraps already-extracted text.
func FromText(title, text string) *Document {
	return &Document{Title: title, Format: "text", Text: text}
}

// Empty reports whether the document has no reviewable text.
func (d *Document) Empty() bool {
	return strings.TrimSpace(d.Text) == ""
}

// PageAt returns the 1-based page containing offset, or 0 when the document
// has no page structure.
func (d *Document) PageAt(offset int) int {
	for i, p := range d.Pages {
		if offset >= p.Start && offset < p.End {
			return i + 1
		}
	}
	return 0
}

// SectionAt returns the innermost section containing offset.
func (d *Document) SectionAt(offset int) (Section, bool) {
	var best Section
	found := false
	for _, s := range d.Sections {
		if offset >= s.Start && offset < s.End && (!found || s.Level >= best.Level) {
			best, found = s, true
		}
	}
	return best, found
}

// Builder assembles a Document block by block, tracking offsets.
type Builder struct {
	doc       Document
	text      strings.Builder
	open      []int // indexes into doc.Sections, by nesting
	pageStart int
	inPage    bool
}

// NewBuilder starts a document.
func NewBuilder(title, format string) *Builder {
	return &Builder{doc: Document{Title: title, Format: format}}
}

func (b *Builder) write(s string) int {
	if b.text.Len() > 0 {
		b.text.WriteString(paragraphSep)
	}
	start := b.text.Len()
	b.text.WriteString(s)
	return start
}

// Paragraph appends a block of body text. Blank blocks are dropped.
func (b *Builder) Paragraph(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	b.write(s)
}

// Heading appends a heading and opens a section at level, closing any open
// section at the same or a deeper level.
func (b *Builder) Heading(s string, level int) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	if level < 1 {
		level = 1
	}
	b.closeSections(level)
	start := b.write(s)

	var crumb []string
	for _, i := range b.open {
		crumb = append(crumb, b.doc.Sections[i].Heading)
	}
	crumb = append(crumb, s)

	b.doc.Sections = append(b.doc.Sections, Section{
		Heading:    s,
		Level:      level,
		Start:      start,
		End:        -1,
		Breadcrumb: crumb,
	})
	b.open = append(b.open, len(b.doc.Sections)-1)
}

func (b *Builder) closeSections(level int) {
	end := b.text.Len()
	for len(b.open) > 0 {
		top := b.open[len(b.open)-1]
		if b.doc.Sections[top].Level < level {
			return
		}
		b.doc.Sections[top].End = end
		b.open = b.open[:len(b.open)-1]
	}
}

// StartPage marks the beginning of a page. Pages are separated like
// paragraphs.
func (b *Builder) StartPage() {
	b.EndPage()
	b.inPage = true
	if b.text.Len() > 0 {
		b.pageStart = b.text.Len() + len(paragraphSep)
	} else {
		b.pageStart = 0
	}
}

// EndPage closes the current page, if one is open. A page that received no
// text is not recorded.
func (b *Builder) EndPage() {
	if !b.inPage {
		return
	}
	b.inPage = false
	if end := b.text.Len(); end > b.pageStart {
		b.doc.Pages = append(b.doc.Pages, Span{Start: b.pageStart, End: end})
	}
}

// Build finishes the document.
func (b *Builder) Build() *Document {
	b.EndPage()
	b.closeSections(0)
	doc := b.doc
	doc.Text = b.text.String()
	return &doc
}
