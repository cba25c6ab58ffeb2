package contribs

import "testing"

func TestFilterByEditSummary(t *testing.T) {
	edits := List{
		{RevID: 1, Comment: "typo"},
		{RevID: 2},
		{RevID: 3, Comment: "rv"},
	}

	got := FilterByEditSummary(edits)
	if len(got) != 2 {
		t.Errorf("expected 2 edits with a summary, got %d", len(got))
	}

	none := FilterByExactSummary(edits, "")
	if len(none) != 1 || none[0].RevID != 2 {
		t.Errorf("expected only rev 2 without summary, got %+v", none)
	}

	rv := FilterByExactSummary(edits, "rv")
	if len(rv) != 1 || rv[0].RevID != 3 {
		t.Errorf("expected only rev 3, got %+v", rv)
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		name      string
		num, den  int
		precision int
		want      float64
	}{
		{name: "zero denominator", num: 5, den: 0, precision: DefaultPrecision, want: 0},
		{name: "half", num: 1, den: 2, precision: DefaultPrecision, want: 50},
		{name: "thirds", num: 1, den: 3, precision: DefaultPrecision, want: 33.33},
		{name: "two thirds one decimal", num: 2, den: 3, precision: 1, want: 66.7},
		{name: "integer precision", num: 2, den: 3, precision: 0, want: 67},
		{name: "all", num: 7, den: 7, precision: DefaultPrecision, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentage(tt.num, tt.den, tt.precision)
			if got != tt.want {
				t.Errorf("Percentage(%d, %d, %d) = %v, want %v", tt.num, tt.den, tt.precision, got, tt.want)
			}
		})
	}
}

func TestSortByTimestamp(t *testing.T) {
	edits := editsOn(t, "2021-01-03T00:00:00Z", "2021-01-01T00:00:00Z", "2021-01-02T00:00:00Z")

	sorted := SortByTimestamp(edits)

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Timestamp.Before(sorted[i-1].Timestamp) {
			t.Fatalf("not sorted at %d", i)
		}
	}
	if edits[0].RevID != 1 {
		t.Error("input slice was reordered")
	}
}

func TestSpan(t *testing.T) {
	if _, _, ok := Span(nil); ok {
		t.Error("empty list should have no span")
	}

	edits := editsOn(t, "2021-01-03T00:00:00Z", "2021-01-01T00:00:00Z", "2021-01-05T00:00:00Z")
	first, last, ok := Span(edits)
	if !ok {
		t.Fatal("expected a span")
	}
	if first.RevID != 2 || last.RevID != 3 {
		t.Errorf("Span = (%d, %d), want (2, 3)", first.RevID, last.RevID)
	}
}
