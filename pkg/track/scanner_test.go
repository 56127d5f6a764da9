package track

import (
	"strings"
	"testing"
)

func TestScan(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		entity  string
		radius  int
		want    []ScanMatch
	}{
		{
			name:   "empty text",
			text:   "",
			entity: "Jane Doe",
			radius: 100,
			want:   nil,
		},
		{
			name:   "no occurrence",
			text:   "Nothing relevant here.",
			entity: "Jane Doe",
			radius: 100,
			want:   nil,
		},
		{
			name:   "single occurrence fits window",
			text:   "Jane Doe appeared in court twice.",
			entity: "Jane Doe",
			radius: 100,
			want: []ScanMatch{
				{Context: "Jane Doe appeared in court twice.", Offset: 0},
			},
		},
		{
			name:   "case insensitive keeps original casing",
			text:   "Witnesses saw JANE DOE leave.",
			entity: "jane doe",
			radius: 100,
			want: []ScanMatch{
				{Context: "Witnesses saw JANE DOE leave.", Offset: 14},
			},
		},
		{
			// U+0130 folds to a shorter byte sequence, shifting every
			// folded offset after it.
			name:   "folding that changes byte length",
			text:   "İstanbul hosted Jane Doe.",
			entity: "Jane Doe",
			radius: 100,
			want: []ScanMatch{
				{Context: "İstanbul hosted Jane Doe.", Offset: 17},
			},
		},
		{
			name:   "overlapping occurrences all reported",
			text:   "aaaa",
			entity: "aaa",
			radius: 100,
			want: []ScanMatch{
				{Context: "aaaa", Offset: 0},
				{Context: "aaaa", Offset: 1},
			},
		},
		{
			name:   "window clipped on both sides",
			text:   strings.Repeat("x", 150) + "target" + strings.Repeat("y", 150),
			entity: "target",
			radius: 10,
			want: []ScanMatch{
				{Context: "..." + strings.Repeat("x", 10) + "target" + strings.Repeat("y", 10) + "...", Offset: 150},
			},
		},
		{
			name:   "window clipped at end only",
			text:   "target" + strings.Repeat("y", 150),
			entity: "target",
			radius: 10,
			want: []ScanMatch{
				{Context: "target" + strings.Repeat("y", 10) + "...", Offset: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scan(tt.text, tt.entity, tt.radius)
			if len(got) != len(tt.want) {
				t.Fatalf("Scan() returned %d matches, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Offset != tt.want[i].Offset {
					t.Errorf("match[%d].Offset = %d, want %d", i, got[i].Offset, tt.want[i].Offset)
				}
				if got[i].Context != tt.want[i].Context {
					t.Errorf("match[%d].Context = %q, want %q", i, got[i].Context, tt.want[i].Context)
				}
			}
		})
	}
}

func TestTrigramSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want func(float64) bool
	}{
		{
			name: "identical strings",
			a:    "united nations",
			b:    "united nations",
			want: func(s float64) bool { return s == 1 },
		},
		{
			name: "close names score high",
			a:    "united nation",
			b:    "united nations",
			want: func(s float64) bool { return s > 0.3 },
		},
		{
			name: "unrelated names score low",
			a:    "zebra",
			b:    "united nations",
			want: func(s float64) bool { return s < 0.3 },
		},
		{
			name: "empty strings",
			a:    "",
			b:    "",
			want: func(s float64) bool { return s == 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrigramSimilarity(tt.a, tt.b)
			if got < 0 || got > 1 {
				t.Fatalf("TrigramSimilarity(%q, %q) = %v, out of [0,1]", tt.a, tt.b, got)
			}
			if !tt.want(got) {
				t.Errorf("TrigramSimilarity(%q, %q) = %v, unexpected", tt.a, tt.b, got)
			}
		})
	}
}
