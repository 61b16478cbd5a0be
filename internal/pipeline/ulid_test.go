package pipeline

import (
	"strings"
	"testing"
	"time"
)

func TestNewID_Format(t *testing.T) {
	id := NewID()
	if len(id) != 26 {
		t.Fatalf("expected 26 characters, got %d (%q)", len(id), id)
	}
	for _, c := range id {
		if !strings.ContainsRune(crockford, c) {
			t.Fatalf("unexpected character %q in %q", c, id)
		}
	}
}

func TestNewID_SortsByTime(t *testing.T) {
	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	a := newULID(base)
	b := newULID(base.Add(time.Millisecond))
	c := newULID(base.Add(time.Hour))
	if !(a < b && b < c) {
		t.Errorf("expected increasing ids, got %s %s %s", a, b, c)
	}
}

func TestNewID_MonotonicWithinMillisecond(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	prev := newULID(now)
	for range 100 {
		next := newULID(now)
		if next <= prev {
			t.Fatalf("ids not increasing within one millisecond: %s then %s", prev, next)
		}
		prev = next
	}
}

func TestEncodeULID_KnownValue(t *testing.T) {
	var b [16]byte
	if got := encodeULID(b); got != strings.Repeat("0", 26) {
		t.Errorf("zero value = %q", got)
	}
	for i := range b {
		b[i] = 0xFF
	}
	if got := encodeULID(b); got != "7"+strings.Repeat("Z", 25) {
		t.Errorf("max value = %q", got)
	}
}
