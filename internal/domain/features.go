package domain

import (
	"encoding/json"
	"sort"
	"strings"
)

// FeatureSet is the canonical per-request chart: every core planet mapped to a
// placement, plus any extension planets the input carried. It is immutable once
// built; accessors return copies.
type FeatureSet struct {
	placements map[Planet]Placement
}

// NewFeatureSet builds a FeatureSet from placements keyed by planet. Core planets
// missing from the input get the default placement; unknown planets are dropped.
func NewFeatureSet(placements map[Planet]Placement) FeatureSet {
	fs := FeatureSet{placements: make(map[Planet]Placement, len(CorePlanets)+len(ExtensionPlanets))}
	for _, p := range CorePlanets {
		pl, ok := placements[p]
		if !ok {
			pl = Placement{House: DefaultHouse, Sign: DefaultSign}
		}
		fs.placements[p] = pl
	}
	for _, p := range ExtensionPlanets {
		if pl, ok := placements[p]; ok {
			fs.placements[p] = pl
		}
	}
	return fs
}

// Placement returns the placement of p and whether the set carries it.
func (f FeatureSet) Placement(p Planet) (Placement, bool) {
	pl, ok := f.placements[p]
	return pl, ok
}

// Planets lists the planets present, core planets first, in declared order.
func (f FeatureSet) Planets() []Planet {
	out := make([]Planet, 0, len(f.placements))
	for _, p := range CorePlanets {
		if _, ok := f.placements[p]; ok {
			out = append(out, p)
		}
	}
	for _, p := range ExtensionPlanets {
		if _, ok := f.placements[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Vector flattens the core planets into [house, sign] pairs in CorePlanets order.
// This is the feature layout the statistical model trains and predicts on.
func (f FeatureSet) Vector() []float64 {
	v := make([]float64, 0, 2*len(CorePlanets))
	for _, p := range CorePlanets {
		pl := f.placements[p]
		v = append(v, float64(pl.House), float64(pl.Sign))
	}
	return v
}

// Placements returns a copy of the underlying placements.
func (f FeatureSet) Placements() map[Planet]Placement {
	out := make(map[Planet]Placement, len(f.placements))
	for p, pl := range f.placements {
		out[p] = pl
	}
	return out
}

// MarshalJSON encodes the set as a nested planet -> placement object.
func (f FeatureSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.placements)
}

// ChartInput is one of the accepted placement shapes: NestedChart, FlatChart, or RawChart.
type ChartInput interface {
	chartInput()
}

// NestedChart is per-planet {house, sign} input, as entered on a form.
type NestedChart map[Planet]Placement

// FlatChart is "<Planet>_house" / "<Planet>_sign" keyed input.
type FlatChart map[string]int

// RawChart is a position source list keyed by name and longitude.
type RawChart []RawPlanet

func (NestedChart) chartInput() {}
func (FlatChart) chartInput()   {}
func (RawChart) chartInput()    {}

// Normalize converts any ChartInput variant into a FeatureSet. It never fails:
// absent or unrecognised planets fall back to the default placement.
func Normalize(in ChartInput) FeatureSet {
	switch v := in.(type) {
	case NestedChart:
		return NormalizeNested(v)
	case FlatChart:
		return NormalizeFlat(v)
	case RawChart:
		return NormalizeRaw(v)
	default:
		return NewFeatureSet(nil)
	}
}

// NormalizeNested canonicalises planet names and builds the FeatureSet. When
// two keys name the same planet the first in sorted key order wins.
func NormalizeNested(c NestedChart) FeatureSet {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, string(name))
	}
	placements := make(map[Planet]Placement, len(c))
	for _, name := range sortedPlanetKeys(names) {
		p, ok := ParsePlanet(name)
		if !ok {
			continue
		}
		if _, taken := placements[p]; !taken {
			placements[p] = c[Planet(name)]
		}
	}
	return NewFeatureSet(placements)
}

// NormalizeFlat reads "<Planet>_house" and "<Planet>_sign" keys. A planet with
// only one of the two keys keeps the default for the other. Keys are read in
// sorted order and the first key for each planet field wins.
func NormalizeFlat(c FlatChart) FeatureSet {
	keys := make([]string, 0, len(c))
	for key := range c {
		keys = append(keys, key)
	}
	placements := make(map[Planet]Placement)
	set := make(map[string]bool)
	for _, key := range sortedPlanetKeys(keys) {
		p, field, ok := splitFlatKey(key)
		if !ok || set[string(p)+"_"+field] {
			continue
		}
		set[string(p)+"_"+field] = true

		pl, seen := placements[p]
		if !seen {
			pl = Placement{House: DefaultHouse, Sign: DefaultSign}
		}
		switch field {
		case "house":
			pl.House = c[key]
		case "sign":
			pl.Sign = c[key]
		}
		placements[p] = pl
	}
	return NewFeatureSet(placements)
}

// NormalizeRaw derives houses from longitudes relative to the Ascendant entry.
func NormalizeRaw(c RawChart) FeatureSet {
	return PositionsFromRaw(c).FeatureSet()
}

var namedBodies = []Planet{Sun, Moon, Mars, Mercury, Jupiter, Venus, Saturn, Rahu, Ketu, Ascendant}

// ParsePlanet matches a planet name case-insensitively.
func ParsePlanet(name string) (Planet, bool) {
	name = strings.TrimSpace(name)
	for _, p := range namedBodies {
		if strings.EqualFold(string(p), name) {
			return p, true
		}
	}
	return "", false
}

func splitFlatKey(key string) (Planet, string, bool) {
	idx := strings.LastIndex(key, "_")
	if idx <= 0 {
		return "", "", false
	}
	field := strings.ToLower(key[idx+1:])
	if field != "house" && field != "sign" {
		return "", "", false
	}
	p, ok := ParsePlanet(key[:idx])
	if !ok || p == Ascendant {
		return "", "", false
	}
	return p, field, true
}

// sortedPlanetKeys orders arbitrary planet names: known planets in declared
// order first, then the rest alphabetically.
func sortedPlanetKeys(names []string) []string {
	rank := func(name string) int {
		p, ok := ParsePlanet(name)
		if !ok {
			return 100
		}
		for i, c := range CorePlanets {
			if c == p {
				return i
			}
		}
		for i, e := range ExtensionPlanets {
			if e == p {
				return len(CorePlanets) + i
			}
		}
		return 99
	}
	sort.SliceStable(names, func(i, j int) bool {
		ri, rj := rank(names[i]), rank(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})
	return names
}
