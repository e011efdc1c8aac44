package codec

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCoerce_Int(t *testing.T) {
	if got := Coerce("int", false, "42"); got != int64(42) {
		t.Fatalf("expected int64(42), got %#v", got)
	}
	if got := Coerce("int", false, json.Number("7")); got != int64(7) {
		t.Fatalf("expected int64(7), got %#v", got)
	}
	// unconvertible input passes through
	if got := Coerce("int", false, "abc"); got != "abc" {
		t.Fatalf("expected passthrough, got %#v", got)
	}
	// whole numbers of any Go type become int64
	if got := Coerce("int", false, float64(3)); got != int64(3) {
		t.Fatalf("expected int64(3), got %#v", got)
	}
	if got := Coerce("int", false, int32(4)); got != int64(4) {
		t.Fatalf("expected int64(4), got %#v", got)
	}
	if got := Coerce("int", false, 2.5); got != 2.5 {
		t.Fatalf("expected fractional passthrough, got %#v", got)
	}
}

func TestCoerce_Number(t *testing.T) {
	if got := Coerce("number", false, "1.5"); got != 1.5 {
		t.Fatalf("expected 1.5, got %#v", got)
	}
	if got := Coerce("float", false, " 1.5"); got != " 1.5" {
		t.Fatalf("padded strings are not numbers, got %#v", got)
	}
	if got := Coerce("number", false, "NaN"); got != "NaN" {
		t.Fatalf("NaN must not coerce, got %#v", got)
	}
}

func TestCoerce_Boolean(t *testing.T) {
	cases := []struct {
		in   any
		want any
	}{
		{"true", true},
		{"false", false},
		{"1", true},
		{"0", false},
		{float64(1), true},
		{float64(0), false},
		{"yes", "yes"},
		{float64(2), float64(2)},
	}
	for _, c := range cases {
		if got := Coerce("boolean", false, c.in); got != c.want {
			t.Fatalf("Coerce(boolean, %#v) = %#v, want %#v", c.in, got, c.want)
		}
	}
}

func TestCoerce_Date(t *testing.T) {
	got := Coerce("date", true, "2025-01-01T09:00:00+09:00")
	tm, ok := got.(time.Time)
	if !ok {
		t.Fatalf("expected time.Time, got %#v", got)
	}
	if !tm.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) || tm.Location() != time.UTC {
		t.Fatalf("unexpected time: %v", tm)
	}
	// loose layouts only outside strict mode
	if _, ok := Coerce("date", true, "2025-01-01").(string); !ok {
		t.Fatalf("strict date coercion must not accept bare dates")
	}
	if _, ok := Coerce("date", false, "2025-01-01").(time.Time); !ok {
		t.Fatalf("loose date coercion should accept bare dates")
	}
}

func TestCoerce_UnknownTagPassthrough(t *testing.T) {
	if got := Coerce("email", false, "a@b.c"); got != "a@b.c" {
		t.Fatalf("unexpected %#v", got)
	}
}

func TestFormatDate_Canonical(t *testing.T) {
	tm := time.Date(2025, 1, 1, 9, 0, 0, 0, time.FixedZone("JST", 9*3600))
	if s := FormatDate(tm); s != "2025-01-01T00:00:00Z" {
		t.Fatalf("unexpected format: %s", s)
	}
}
