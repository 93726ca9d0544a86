package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// Planet names a celestial body reported by a position source.
type Planet string

const (
	Sun       Planet = "Sun"
	Moon      Planet = "Moon"
	Mars      Planet = "Mars"
	Mercury   Planet = "Mercury"
	Jupiter   Planet = "Jupiter"
	Venus     Planet = "Venus"
	Saturn    Planet = "Saturn"
	Rahu      Planet = "Rahu"
	Ketu      Planet = "Ketu"
	Ascendant Planet = "Ascendant"
)

const (
	// DefaultHouse and DefaultSign fill placements for planets absent from input.
	DefaultHouse = 1
	DefaultSign  = 0

	minHouse = 1
	maxHouse = 12
	minSign  = 0
	maxSign  = 11
)

// CorePlanets lists the planets every FeatureSet carries, in feature order.
var CorePlanets = []Planet{Sun, Moon, Mars, Mercury, Jupiter, Venus, Saturn}

// ExtensionPlanets are carried when present but never defaulted.
var ExtensionPlanets = []Planet{Rahu, Ketu}

// SignNames maps sign numbers 0–11 to their names.
var SignNames = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer",
	"Leo", "Virgo", "Libra", "Scorpio",
	"Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// IsCore reports whether p is one of the seven core planets.
func (p Planet) IsCore() bool {
	for _, c := range CorePlanets {
		if c == p {
			return true
		}
	}
	return false
}

// IsKnown reports whether p is a core or extension planet.
func (p Planet) IsKnown() bool {
	if p.IsCore() {
		return true
	}
	for _, e := range ExtensionPlanets {
		if e == p {
			return true
		}
	}
	return false
}

// Placement is a planet's house and sign in a chart.
type Placement struct {
	House int `json:"house" yaml:"house"`
	Sign  int `json:"sign" yaml:"sign"`
}

// UnmarshalJSON fills an omitted house or sign with the default placement.
// Explicit values, including out-of-range ones, are kept for Validate.
func (p *Placement) UnmarshalJSON(data []byte) error {
	var raw struct {
		House *int `json:"house"`
		Sign  *int `json:"sign"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode placement: %w", err)
	}
	*p = Placement{House: DefaultHouse, Sign: DefaultSign}
	if raw.House != nil {
		p.House = *raw.House
	}
	if raw.Sign != nil {
		p.Sign = *raw.Sign
	}
	return nil
}

// PlanetPosition is a resolved placement with its source longitude.
// Sign always equals floor(Longitude/30) when Longitude is set.
type PlanetPosition struct {
	Planet    Planet  `json:"planet"`
	House     int     `json:"house"`
	Sign      int     `json:"sign"`
	Longitude float64 `json:"longitude"`
}

// Placement drops the longitude.
func (p PlanetPosition) Placement() Placement {
	return Placement{House: p.House, Sign: p.Sign}
}

// Element groups signs by classical element.
type Element string

const (
	Fire  Element = "fire"
	Earth Element = "earth"
	Air   Element = "air"
	Water Element = "water"
)

// ElementOf returns the element of a sign 0–11.
func ElementOf(sign int) Element {
	switch wrapSign(sign) % 4 {
	case 0:
		return Fire
	case 1:
		return Earth
	case 2:
		return Air
	default:
		return Water
	}
}

// SignFromLongitude maps an absolute longitude to its sign 0–11.
func SignFromLongitude(longitude float64) int {
	return int(math.Floor(wrapDegrees(longitude)/30)) % 12
}

// HouseFromSigns offsets a sign from the Ascendant's sign, yielding 1–12.
func HouseFromSigns(sign, lagnaSign int) int {
	return wrapSign(sign-lagnaSign) + 1
}

// SignName returns the zodiac name of a sign, or a placeholder if out of range.
func SignName(sign int) string {
	if sign < minSign || sign > maxSign {
		return fmt.Sprintf("sign(%d)", sign)
	}
	return SignNames[sign]
}

func wrapSign(sign int) int {
	return ((sign % 12) + 12) % 12
}

func wrapDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}
