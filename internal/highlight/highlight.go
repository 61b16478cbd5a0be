// Package highlight partitions a document into render segments so findings
// and search hits can be overlaid on the original text.
package highlight

import (
	"container/heap"
	"regexp"
	"sort"
	"strings"

	"github.com/dgallion1/clausecheck/internal/finding"
)

// Span is a half-open byte range into the text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Kind describes what covers a segment.
type Kind string

const (
	KindPlain         Kind = "plain"
	KindFinding       Kind = "finding"
	KindSearch        Kind = "search"
	KindFindingSearch Kind = "finding+search"
)

// Segment is one contiguous run of text with a uniform overlay.
type Segment struct {
	Start        int              `json:"start"`
	End          int              `json:"end"`
	Kind         Kind             `json:"kind"`
	Finding      *finding.Finding `json:"finding,omitempty"`
	FindingIndex int              `json:"findingIndex"`
	SearchIndex  int              `json:"searchIndex"`
	ActiveSearch bool             `json:"activeSearch,omitempty"`
}

// FindMatches returns the case-insensitive, non-overlapping occurrences of
// query in text, scanning left to right.
func FindMatches(text, query string) []Span {
	query = strings.TrimSpace(query)
	if query == "" || text == "" {
		return nil
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(query))
	var out []Span
	for _, loc := range re.FindAllStringIndex(text, -1) {
		out = append(out, Span{Start: loc[0], End: loc[1]})
	}
	return out
}

type candidate struct {
	index int // position in the caller's slice
	start int
	end   int
}

// Segments partitions [0, len(text)) at every finding and search boundary.
//
// Findings without a valid span (0 <= start < end <= len(text)) are ignored,
// as are invalid search spans. When several findings cover a segment, the
// one with the smallest start wins; findings that share a start keep their
// input order. activeSearch is an index into search, or -1.
func Segments(text string, findings []finding.Finding, search []Span, activeSearch int) []Segment {
	n := len(text)
	if n == 0 {
		return nil
	}

	var fc []candidate
	for i, f := range findings {
		if !f.ValidIn(text) {
			continue
		}
		fc = append(fc, candidate{index: i, start: *f.Start, end: *f.End})
	}
	var sc []candidate
	for i, s := range search {
		if s.Start < 0 || s.End <= s.Start || s.End > n {
			continue
		}
		sc = append(sc, candidate{index: i, start: s.Start, end: s.End})
	}
	sort.SliceStable(fc, func(i, j int) bool { return fc[i].start < fc[j].start })
	sort.SliceStable(sc, func(i, j int) bool { return sc[i].start < sc[j].start })

	bounds := boundaries(n, fc, sc)
	fs := newSweep(fc)
	ss := newSweep(sc)

	out := make([]Segment, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		start, end := bounds[i], bounds[i+1]
		seg := Segment{Start: start, End: end, Kind: KindPlain, FindingIndex: -1, SearchIndex: -1}

		if c, ok := fs.at(start); ok {
			seg.FindingIndex = c.index
			seg.Finding = &findings[c.index]
			seg.Kind = KindFinding
		}
		if c, ok := ss.at(start); ok {
			seg.SearchIndex = c.index
			seg.ActiveSearch = c.index == activeSearch
			if seg.Kind == KindFinding {
				seg.Kind = KindFindingSearch
			} else {
				seg.Kind = KindSearch
			}
		}
		out = append(out, seg)
	}
	return out
}

func boundaries(n int, groups ...[]candidate) []int {
	set := map[int]struct{}{0: {}, n: {}}
	for _, g := range groups {
		for _, c := range g {
			set[c.start] = struct{}{}
			set[c.end] = struct{}{}
		}
	}
	out := make([]int, 0, len(set))
	for b := range set {
		out = append(out, b)
	}
	sort.Ints(out)
	return out
}

// sweep answers "which candidate, earliest in sorted order, covers pos?" for
// non-decreasing pos. Candidates open as pos passes their start and are
// dropped lazily once pos reaches their end.
type sweep struct {
	sorted []candidate
	next   int
	open   rankHeap
}

func newSweep(sorted []candidate) *sweep {
	return &sweep{sorted: sorted}
}

func (s *sweep) at(pos int) (candidate, bool) {
	for s.next < len(s.sorted) && s.sorted[s.next].start <= pos {
		heap.Push(&s.open, s.next)
		s.next++
	}
	for s.open.Len() > 0 && s.sorted[s.open[0]].end <= pos {
		heap.Pop(&s.open)
	}
	if s.open.Len() == 0 {
		return candidate{}, false
	}
	return s.sorted[s.open[0]], true
}

// rankHeap is a min-heap of positions in a sweep's sorted slice.
type rankHeap []int

func (h rankHeap) Len() int           { return len(h) }
func (h rankHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h rankHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *rankHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *rankHeap) Pop() any {
	old := *h
	x := old[len(old)-1]
	*h = old[:len(old)-1]
	return x
}
