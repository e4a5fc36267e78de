package models

import "fmt"

type Rarity string

const (
	RarityCommon       Rarity = "common"
	RarityRare         Rarity = "rare"
	RaritySuperRare    Rarity = "super_rare"
	RarityUltraRare    Rarity = "ultra_rare"
	RaritySecretRare   Rarity = "secret_rare"
	RarityUltimateRare Rarity = "ultimate_rare"
)

// RarityOrder is the declared tier order, lowest value first. Pack slot walks
// and the dust keep policy iterate in this order, so it must stay stable.
var RarityOrder = []Rarity{
	RarityCommon,
	RarityRare,
	RaritySuperRare,
	RarityUltraRare,
	RaritySecretRare,
	RarityUltimateRare,
}

// dustValues maps each tier to the credits received per copy when dusted.
var dustValues = map[Rarity]int64{
	RarityCommon:       1,
	RarityRare:         3,
	RaritySuperRare:    6,
	RarityUltraRare:    8,
	RaritySecretRare:   30,
	RarityUltimateRare: 120,
}

func (r Rarity) Valid() bool {
	_, ok := dustValues[r]
	return ok
}

func (r Rarity) DustValue() int64 {
	return dustValues[r]
}

// Index returns the position of r in RarityOrder, or -1 for unknown tiers.
func (r Rarity) Index() int {
	for i, tier := range RarityOrder {
		if tier == r {
			return i
		}
	}
	return -1
}

func ParseRarity(s string) (Rarity, error) {
	r := Rarity(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown rarity: %q", s)
	}
	return r, nil
}
