package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Number", "Reading", "Misses"}
	rows := [][]string{
		{"300", "sanbyaku", "12"},
		{"8000", "hassen", "3"},
	}
	rightAlign := map[int]bool{0: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Number Reading  Misses" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "   300 sanbyaku     12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "  8000 hassen        3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestDisplayWidthWide(t *testing.T) {
	if got := displayWidth("三千"); got != 4 {
		t.Fatalf("expected wide runes to count double, got %d", got)
	}
}
