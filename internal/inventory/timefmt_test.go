package inventory

import (
	"testing"
	"time"
)

func TestFormatTime(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	tests := []struct {
		raw       string
		wantUTC   string
		wantLocal string
	}{
		{"2024-05-06T07:08:09.123456789Z", "2024-05-06 07:08:09.123456", "2024-05-06 16:08:09.123456"},
		{"2024-05-06T07:08:09.5Z", "2024-05-06 07:08:09.500000", "2024-05-06 16:08:09.500000"},
		{"2024-05-06T07:08:09Z", "2024-05-06 07:08:09", "2024-05-06 16:08:09"},
		{"2024-05-06T23:30:00+02:00", "2024-05-06 21:30:00", "2024-05-07 06:30:00"},
		{"not-a-time", "not-a-time", "not-a-time"},
		{"1714979289000000000", "1714979289000000000", "1714979289000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			utc, local := FormatTime(tt.raw, tokyo)
			if utc != tt.wantUTC || local != tt.wantLocal {
				t.Fatalf("FormatTime(%q) = (%q, %q), want (%q, %q)", tt.raw, utc, local, tt.wantUTC, tt.wantLocal)
			}
		})
	}
}

func TestHostSpansOrderedAndDrawnFromSamples(t *testing.T) {
	h := NewHostTimes()
	h.Add("web", "2024-01-02T00:00:00Z")
	h.Add("web", "2024-01-02T00:00:00.5Z")
	h.Add("web", "2023-12-31T23:59:59Z")
	h.Add("db", "2024-06-01T00:00:00Z")

	spans := h.Spans()
	if len(spans) != 2 || spans[0].Host != "db" || spans[1].Host != "web" {
		t.Fatalf("spans = %+v, want db then web", spans)
	}
	web := spans[1]
	if web.Oldest != "2023-12-31T23:59:59Z" {
		t.Fatalf("oldest = %q", web.Oldest)
	}
	// Chronological, although "...00Z" sorts after "...00.5Z" as a string.
	if web.Newest != "2024-01-02T00:00:00.5Z" {
		t.Fatalf("newest = %q", web.Newest)
	}
	if !earlier(web.Oldest, web.Newest) {
		t.Fatal("oldest is not before newest")
	}
	if db := spans[0]; db.Oldest != db.Newest {
		t.Fatalf("single sample span = %+v", db)
	}
}

func TestEarlierFallsBackToStringOrder(t *testing.T) {
	if !earlier("abc", "abd") {
		t.Fatal(`earlier("abc", "abd") = false`)
	}
	if earlier("2024-01-01T00:00:00Z", "2024-01-01T00:00:00Z") {
		t.Fatal("equal times reported as earlier")
	}
}
