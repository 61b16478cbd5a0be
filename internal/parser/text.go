package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/clausecheck/internal/document"
)

// TextParser handles plain text files. Blank lines separate paragraphs;
// line breaks inside a paragraph are kept.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	b := document.NewBuilder(titleFrom(filename), "txt")
	var current strings.Builder

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				b.Paragraph(current.String())
				current.Reset()
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		b.Paragraph(current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return b.Build(), nil
}
