package highlight

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Style is how a segment should be drawn.
type Style struct {
	Class     string `json:"class"`
	Clickable bool   `json:"clickable"`
}

// StyleFor picks the segment's style. A search hit's style takes precedence
// over the finding's severity colour, but the segment stays clickable when a
// finding covers it.
func StyleFor(seg Segment) Style {
	st := Style{Clickable: seg.Finding != nil}
	switch {
	case seg.SearchIndex >= 0 && seg.ActiveSearch:
		st.Class = "search-active"
	case seg.SearchIndex >= 0:
		st.Class = "search"
	case seg.Finding != nil:
		st.Class = "severity-" + string(seg.Finding.Severity)
	}
	return st
}

// RenderHTML renders text with each covered segment wrapped in a <mark>.
// Plain segments are emitted as escaped text.
func RenderHTML(text string, segments []Segment) string {
	var b strings.Builder
	b.Grow(len(text) + len(segments)*48)
	for _, seg := range segments {
		chunk := html.EscapeString(text[seg.Start:seg.End])
		if seg.Kind == KindPlain {
			b.WriteString(chunk)
			continue
		}
		st := StyleFor(seg)
		b.WriteString(`<mark class="`)
		b.WriteString(st.Class)
		b.WriteString(`"`)
		if seg.Finding != nil {
			b.WriteString(` data-finding-id="`)
			b.WriteString(html.EscapeString(seg.Finding.ID))
			b.WriteString(`"`)
		}
		if seg.SearchIndex >= 0 {
			b.WriteString(` data-search-index="`)
			b.WriteString(strconv.Itoa(seg.SearchIndex))
			b.WriteString(`"`)
		}
		b.WriteString(">")
		b.WriteString(chunk)
		b.WriteString("</mark>")
	}
	return b.String()
}
