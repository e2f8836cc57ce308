package warehouse

import (
	"math"
	"testing"
)

func TestTierForPrice(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{500, TierPremium},
		{200, TierPremium}, // boundary: inclusive
		{199.99, TierMid},
		{100, TierMid},
		{50.01, TierMid},
		{50, TierEntry}, // boundary: inclusive
		{10, TierEntry},
		{0, TierEntry},
	}

	for _, tt := range tests {
		if got := TierForPrice(tt.price); got != tt.want {
			t.Errorf("TierForPrice(%v) = %s, want %s", tt.price, got, tt.want)
		}
	}
}

func TestMarginRate(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		cost  float64
		want  float64
	}{
		{"half margin", 100, 50, 50},
		{"full margin", 100, 0, 100},
		{"negative margin", 100, 120, -20},
		{"zero price no division error", 0, 30, 0},
		{"quarter margin", 200, 150, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MarginRate(tt.price, tt.cost)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("MarginRate(%v, %v) = %v, want %v", tt.price, tt.cost, got, tt.want)
			}
		})
	}
}

func TestDeriveProductAttrs(t *testing.T) {
	attrs := DeriveProductAttrs(250, 100)
	if attrs.Tier != TierPremium {
		t.Errorf("Tier = %s, want %s", attrs.Tier, TierPremium)
	}
	if math.Abs(attrs.MarginRate-60) > 1e-9 {
		t.Errorf("MarginRate = %v, want 60", attrs.MarginRate)
	}
	if math.Abs(attrs.UnitMargin-150) > 1e-9 {
		t.Errorf("UnitMargin = %v, want 150", attrs.UnitMargin)
	}

	attrs = DeriveProductAttrs(0, 30)
	if attrs.Tier != TierEntry {
		t.Errorf("Tier = %s, want %s", attrs.Tier, TierEntry)
	}
	if attrs.MarginRate != 0 {
		t.Errorf("MarginRate = %v, want 0 for zero price", attrs.MarginRate)
	}
	if math.Abs(attrs.UnitMargin-(-30)) > 1e-9 {
		t.Errorf("UnitMargin = %v, want -30", attrs.UnitMargin)
	}
}
