package finding

import "testing"

func sample() []Finding {
	return []Finding{
		{ID: "a", Severity: SeverityLow, RuleID: "R-601", RuleTitle: "Long sentence", Why: "too long"},
		{ID: "b", Severity: SeverityHigh, RuleID: "R-101", RuleTitle: "Unresolved commercial placeholder", MatchedText: "[●]"},
		{ID: "c", Severity: SeverityMedium, RuleID: "R-401", RuleTitle: "Reference to non-existent schedule", LocationLabel: "Schedule 3"},
		{ID: "d", Severity: SeverityHigh, RuleID: "R-1201", RuleTitle: "Unilateral amendment"},
	}
}

func TestSpan(t *testing.T) {
	tests := []struct {
		name   string
		start  *int
		end    *int
		wantOK bool
	}{
		{"missing", nil, nil, false},
		{"zero width", Offset(0), Offset(0), false},
		{"inverted", Offset(5), Offset(2), false},
		{"negative", Offset(-1), Offset(3), false},
		{"valid", Offset(2), Offset(7), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Finding{Start: tt.start, End: tt.end}
			if _, _, ok := f.Span(); ok != tt.wantOK {
				t.Errorf("Span ok = %v, want %v", ok, tt.wantOK)
			}
		})
	}
}

func TestValidIn(t *testing.T) {
	f := Finding{Start: Offset(2), End: Offset(10)}
	if f.ValidIn("short") {
		t.Error("span past end of text should be invalid")
	}
	if !f.ValidIn("long enough text") {
		t.Error("span within text should be valid")
	}
}

func TestCount(t *testing.T) {
	c := Count(sample())
	if c.Total != 4 || c.High != 2 || c.Medium != 1 || c.Low != 1 {
		t.Errorf("Count = %+v", c)
	}
}

func TestFilter(t *testing.T) {
	fs := sample()

	got := Filter{Severity: SeverityHigh}.Apply(fs)
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "d" {
		t.Errorf("severity filter = %+v", got)
	}

	got = Filter{Query: "SCHEDULE 3"}.Apply(fs)
	if len(got) != 1 || got[0].ID != "c" {
		t.Errorf("query filter on location label = %+v", got)
	}

	got = Filter{Query: "[●]"}.Apply(fs)
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("query filter on matched text = %+v", got)
	}

	got = Filter{Resolved: map[string]bool{"a": true, "b": true}}.Apply(fs)
	if len(got) != 2 {
		t.Errorf("resolved filter kept %d, want 2", len(got))
	}
}

func TestSortBySeverityStable(t *testing.T) {
	fs := sample()
	SortBySeverity(fs)
	want := []string{"b", "d", "c", "a"}
	for i, id := range want {
		if fs[i].ID != id {
			t.Fatalf("position %d = %s, want %s", i, fs[i].ID, id)
		}
	}
}

func TestSeverityAndCategoryValid(t *testing.T) {
	if Severity("critical").Valid() {
		t.Error("critical should not be a valid severity")
	}
	if !CategoryCrossReference.Valid() {
		t.Error("cross-reference-integrity should be valid")
	}
	if Category("").Valid() {
		t.Error("empty category should not be valid")
	}
}
