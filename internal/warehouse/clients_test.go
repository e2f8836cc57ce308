package warehouse

import (
	"testing"
	"time"
)

func TestMonthsBetween(t *testing.T) {
	now := date(2025, time.June, 15)

	tests := []struct {
		name string
		from time.Time
		want int
	}{
		{"same day", now, 0},
		{"two weeks", date(2025, time.June, 1), 0},
		{"exactly two months", date(2025, time.April, 15), 2},
		{"just under three months", date(2025, time.March, 16), 2},
		{"exactly three months", date(2025, time.March, 15), 3},
		{"six months", date(2024, time.December, 15), 6},
		{"exactly twelve months", date(2024, time.June, 15), 12},
		{"thirteen months", date(2024, time.May, 15), 13},
		{"partial month truncated", date(2024, time.May, 20), 12},
		{"several years", date(2022, time.June, 15), 36},
		{"future signup clamps to zero", date(2025, time.July, 1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthsBetween(tt.from, now); got != tt.want {
				t.Errorf("MonthsBetween(%v, %v) = %d, want %d", tt.from, now, got, tt.want)
			}
		})
	}
}

func TestSegmentForTenure(t *testing.T) {
	tests := []struct {
		months int
		want   string
	}{
		{0, SegmentNew},
		{2, SegmentNew},
		{3, SegmentRegular}, // boundary: strictly below 3 is New
		{6, SegmentRegular},
		{12, SegmentRegular}, // boundary: strictly above 12 is Loyal
		{13, SegmentLoyal},
		{48, SegmentLoyal},
	}

	for _, tt := range tests {
		if got := SegmentForTenure(tt.months); got != tt.want {
			t.Errorf("SegmentForTenure(%d) = %s, want %s", tt.months, got, tt.want)
		}
	}
}

func TestRegionForCity(t *testing.T) {
	if got := RegionForCity("Paris", "Paris"); got != RegionCore {
		t.Errorf("reference city mapped to %s, want %s", got, RegionCore)
	}
	if got := RegionForCity("Lyon", "Paris"); got != RegionOther {
		t.Errorf("other city mapped to %s, want %s", got, RegionOther)
	}
	// Comparison is exact, not case-folded.
	if got := RegionForCity("paris", "Paris"); got != RegionOther {
		t.Errorf("case-mismatched city mapped to %s, want %s", got, RegionOther)
	}
}

func TestDeriveClientAttrs(t *testing.T) {
	now := date(2025, time.June, 15)
	email := "someone@example.com"
	empty := ""

	tests := []struct {
		name    string
		signup  time.Time
		email   *string
		city    string
		segment string
		tenure  int
		present bool
		region  string
	}{
		{
			name:   "new parisian with email",
			signup: date(2025, time.April, 15), email: &email, city: "Paris",
			segment: SegmentNew, tenure: 2, present: true, region: RegionCore,
		},
		{
			name:   "loyal without email",
			signup: date(2024, time.May, 15), email: nil, city: "Marseille",
			segment: SegmentLoyal, tenure: 13, present: false, region: RegionOther,
		},
		{
			name:   "regular with empty email",
			signup: date(2024, time.December, 15), email: &empty, city: "Lille",
			segment: SegmentRegular, tenure: 6, present: false, region: RegionOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := DeriveClientAttrs(tt.signup, tt.email, tt.city, "Paris", now)
			if attrs.TenureMonths != tt.tenure {
				t.Errorf("TenureMonths = %d, want %d", attrs.TenureMonths, tt.tenure)
			}
			if attrs.Segment != tt.segment {
				t.Errorf("Segment = %s, want %s", attrs.Segment, tt.segment)
			}
			if attrs.EmailPresent != tt.present {
				t.Errorf("EmailPresent = %v, want %v", attrs.EmailPresent, tt.present)
			}
			if attrs.Region != tt.region {
				t.Errorf("Region = %s, want %s", attrs.Region, tt.region)
			}
		})
	}
}
