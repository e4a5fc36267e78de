package models

import (
	"testing"
)

func TestRarity_DustValue(t *testing.T) {
	tests := []struct {
		rarity Rarity
		want   int64
	}{
		{RarityCommon, 1},
		{RarityRare, 3},
		{RaritySuperRare, 6},
		{RarityUltraRare, 8},
		{RaritySecretRare, 30},
		{RarityUltimateRare, 120},
	}
	for _, tt := range tests {
		t.Run(string(tt.rarity), func(t *testing.T) {
			if got := tt.rarity.DustValue(); got != tt.want {
				t.Errorf("DustValue() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRarityOrder(t *testing.T) {
	if len(RarityOrder) != len(dustValues) {
		t.Fatalf("RarityOrder has %d tiers, dustValues has %d", len(RarityOrder), len(dustValues))
	}
	// Dust values must be strictly increasing along the declared order.
	for i := 1; i < len(RarityOrder); i++ {
		prev := RarityOrder[i-1].DustValue()
		cur := RarityOrder[i].DustValue()
		if cur <= prev {
			t.Errorf("dust value of %s (%d) not above %s (%d)", RarityOrder[i], cur, RarityOrder[i-1], prev)
		}
	}
	for i, r := range RarityOrder {
		if r.Index() != i {
			t.Errorf("Index(%s) = %d, want %d", r, r.Index(), i)
		}
	}
}

func TestParseRarity(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Rarity
		wantErr bool
	}{
		{name: "Common", input: "common", want: RarityCommon},
		{name: "UltimateRare", input: "ultimate_rare", want: RarityUltimateRare},
		{name: "Unknown", input: "mythic", wantErr: true},
		{name: "Empty", input: "", wantErr: true},
		{name: "CaseSensitive", input: "Common", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRarity(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRarity(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseRarity(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
