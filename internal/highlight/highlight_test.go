package highlight

import (
	"strings"
	"testing"

	"github.com/dgallion1/clausecheck/internal/finding"
)

func spanned(id string, start, end int) finding.Finding {
	return finding.Finding{
		ID:       id,
		Severity: finding.SeverityHigh,
		Start:    finding.Offset(start),
		End:      finding.Offset(end),
	}
}

func checkPartition(t *testing.T, text string, segs []Segment) {
	t.Helper()
	pos := 0
	for i, s := range segs {
		if s.Start != pos {
			t.Fatalf("segment %d starts at %d, want %d", i, s.Start, pos)
		}
		if s.End <= s.Start {
			t.Fatalf("segment %d is empty or inverted: [%d,%d)", i, s.Start, s.End)
		}
		pos = s.End
	}
	if pos != len(text) {
		t.Fatalf("segments end at %d, text length %d", pos, len(text))
	}
}

func TestSegments_FindingAndSearchOverlap(t *testing.T) {
	text := strings.Repeat("x", 25)
	segs := Segments(text, []finding.Finding{spanned("F1", 10, 15)}, []Span{{12, 18}}, 0)
	checkPartition(t, text, segs)

	want := []struct {
		start, end int
		kind       Kind
	}{
		{0, 10, KindPlain},
		{10, 12, KindFinding},
		{12, 15, KindFindingSearch},
		{15, 18, KindSearch},
		{18, 25, KindPlain},
	}
	if len(segs) != len(want) {
		t.Fatalf("expected %d segments, got %d: %+v", len(want), len(segs), segs)
	}
	for i, w := range want {
		s := segs[i]
		if s.Start != w.start || s.End != w.end || s.Kind != w.kind {
			t.Errorf("segment %d = [%d,%d) %s, want [%d,%d) %s", i, s.Start, s.End, s.Kind, w.start, w.end, w.kind)
		}
	}
	if segs[2].Finding == nil || segs[2].Finding.ID != "F1" || !segs[2].ActiveSearch {
		t.Errorf("overlap segment should keep the finding and be the active hit: %+v", segs[2])
	}
}

func TestSegments_SharedStartKeepsInputOrder(t *testing.T) {
	text := strings.Repeat("a", 20)
	fs := []finding.Finding{spanned("late", 8, 12), spanned("first", 2, 6), spanned("second", 2, 10)}
	segs := Segments(text, fs, nil, -1)
	checkPartition(t, text, segs)

	for _, s := range segs {
		if s.Start == 2 && s.FindingIndex != 1 {
			t.Errorf("segment at 2 should belong to input index 1, got %d", s.FindingIndex)
		}
		if s.Start == 6 && (s.Finding == nil || s.Finding.ID != "second") {
			t.Errorf("segment at 6 should fall through to the second finding")
		}
		if s.Start == 8 && s.Finding.ID != "second" {
			t.Errorf("segment at 8 belongs to the earlier-starting finding, got %s", s.Finding.ID)
		}
		if s.Start == 10 && s.Finding.ID != "late" {
			t.Errorf("segment at 10 should belong to late, got %s", s.Finding.ID)
		}
	}
}

func TestSegments_IgnoresInvalidSpans(t *testing.T) {
	text := "hello world"
	fs := []finding.Finding{
		{ID: "doc"},
		spanned("zero", 0, 0),
		spanned("past-end", 5, 50),
		spanned("inverted", 6, 3),
	}
	segs := Segments(text, fs, []Span{{-1, 3}, {4, 99}}, 0)
	if len(segs) != 1 || segs[0].Kind != KindPlain {
		t.Fatalf("expected a single plain segment, got %+v", segs)
	}
}

func TestSegments_EmptyText(t *testing.T) {
	if segs := Segments("", []finding.Finding{spanned("a", 0, 1)}, nil, -1); len(segs) != 0 {
		t.Errorf("expected no segments, got %d", len(segs))
	}
}

func TestSegments_PartitionManyOverlaps(t *testing.T) {
	text := strings.Repeat("abcdefghij", 10)
	var fs []finding.Finding
	for i := 0; i < 30; i++ {
		start := (i * 7) % 90
		fs = append(fs, spanned("f", start, start+(i%11)+1))
	}
	search := FindMatches(text, "CDE")
	segs := Segments(text, fs, search, 3)
	checkPartition(t, text, segs)

	total := 0
	for _, s := range segs {
		total += s.End - s.Start
	}
	if total != len(text) {
		t.Errorf("segment lengths sum to %d, want %d", total, len(text))
	}
}

func TestFindMatches(t *testing.T) {
	got := FindMatches("aaaa", "aa")
	if len(got) != 2 || got[0] != (Span{0, 2}) || got[1] != (Span{2, 4}) {
		t.Errorf("non-overlapping matches expected, got %+v", got)
	}
	got = FindMatches("The LOAN and the loan.", " loan ")
	if len(got) != 2 || got[0].Start != 4 {
		t.Errorf("case-insensitive trimmed query expected, got %+v", got)
	}
	if FindMatches("text", "   ") != nil {
		t.Error("blank query should match nothing")
	}
	got = FindMatches("a.b axb", "a.b")
	if len(got) != 1 {
		t.Errorf("query should be literal, got %+v", got)
	}
}

func TestStyleFor(t *testing.T) {
	f := spanned("F", 0, 1)
	tests := []struct {
		name string
		seg  Segment
		want Style
	}{
		{"plain", Segment{FindingIndex: -1, SearchIndex: -1}, Style{}},
		{"finding", Segment{Finding: &f, SearchIndex: -1}, Style{Class: "severity-high", Clickable: true}},
		{"search wins", Segment{Finding: &f, SearchIndex: 0}, Style{Class: "search", Clickable: true}},
		{"active search", Segment{SearchIndex: 2, ActiveSearch: true, FindingIndex: -1}, Style{Class: "search-active"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StyleFor(tt.seg); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRenderHTML(t *testing.T) {
	text := "a <b> & TBD"
	fs := []finding.Finding{spanned("R-302-1", 8, 11)}
	out := RenderHTML(text, Segments(text, fs, nil, -1))

	if !strings.Contains(out, "a &lt;b&gt; &amp; ") {
		t.Errorf("plain text should be escaped: %s", out)
	}
	if !strings.Contains(out, `<mark class="severity-high" data-finding-id="R-302-1">TBD</mark>`) {
		t.Errorf("finding mark missing: %s", out)
	}
}
