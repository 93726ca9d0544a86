// Package domain models birth-chart placements and the career compatibility
// rules applied to them.
//
// # Chart Conventions
//
// Houses:
//
//	Twelve sectors numbered 1–12. House 1 starts at the Ascendant (Lagna), so a
//	planet's house is its sign offset from the Ascendant's sign:
//	  house = ((sign - lagnaSign) mod 12) + 1
//
// Signs:
//
//	Twelve zodiac divisions numbered 0–11 (Aries = 0 … Pisces = 11), derived from
//	an absolute sidereal longitude: sign = floor(longitude / 30).
//
// Planets:
//
//	The seven core bodies (Sun, Moon, Mars, Mercury, Jupiter, Venus, Saturn) are
//	always present in a [FeatureSet]. Rahu and Ketu are optional extensions and
//	only take part in rules when a source reports them.
//
// # Input Shapes
//
// Placements reach the pipeline in three shapes, each a variant of [ChartInput]:
//
//	NestedChart  {"Sun": {"house": 10, "sign": 11}, ...}      (form input)
//	FlatChart    {"Sun_house": 10, "Sun_sign": 11, ...}       (feature dicts)
//	RawChart     [{"name": "Sun", "longitude": 334.2}, ...]   (position source)
//
// [Normalize] converts any of them into a [FeatureSet]. Planets missing from the
// input default to house 1, sign 0 rather than failing.
//
// # Significator Table
//
// Career scoring applies a closed, versioned table (see [SignificatorTableVersion])
// of house rules, conjunction rules, and exaltation rules. Every rule is applied
// independently and cumulatively. House rules may carry an elemental multiplier
// (1.1–1.4) that scales their weights when the planet sits in a sign of the
// matching element:
//
//	Fire:  Aries, Leo, Sagittarius        (0, 4, 8)
//	Earth: Taurus, Virgo, Capricorn       (1, 5, 9)
//	Air:   Gemini, Libra, Aquarius        (2, 6, 10)
//	Water: Cancer, Scorpio, Pisces        (3, 7, 11)
//
// # Blending
//
// The final score per career is 0.6 × model probability + 0.4 × the rule score
// divided by the maximum rule score. Ties resolve by the declared order of
// [Careers]. When every combined score is zero the ranking is degenerate and the
// first three careers are returned as-is.
//
// # Fallback Positions
//
// When the external position source is unavailable, [ApproximatePositions]
// derives plausible longitudes from a fixed offset table plus a date factor and
// an hour-of-day term. The result is deliberately approximate and deterministic.
package domain
