package domain

import (
	"fmt"
	"strings"
	"time"
)

// RawPlanet is one entry of a position source response.
type RawPlanet struct {
	Name      string  `json:"name"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Speed     float64 `json:"speed"`
	House     int     `json:"house"`
	Sign      int     `json:"sign"`
}

// BirthData identifies the moment and place positions are resolved for.
// Moment carries the local wall-clock date and time of birth.
type BirthData struct {
	Moment    time.Time
	Latitude  float64
	Longitude float64
}

// Hour returns the fractional hour of day, e.g. 10:30 -> 10.5.
func (b BirthData) Hour() float64 {
	return float64(b.Moment.Hour()) + float64(b.Moment.Minute())/60.0
}

// ParseBirthData parses a YYYY-MM-DD date and an HH:MM[:SS] time and checks
// the coordinates. Failures are ValidationErrors.
func ParseBirthData(date, clockTime string, lat, lon float64) (BirthData, error) {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(date))
	if err != nil {
		return BirthData{}, &ValidationError{Field: "date", Value: date, Reason: "want YYYY-MM-DD"}
	}

	clockTime = strings.TrimSpace(clockTime)
	layout := "15:04"
	if strings.Count(clockTime, ":") == 2 {
		layout = time.TimeOnly
	}
	t, err := time.Parse(layout, clockTime)
	if err != nil {
		return BirthData{}, &ValidationError{Field: "time", Value: clockTime, Reason: "want HH:MM or HH:MM:SS"}
	}

	if lat < -90 || lat > 90 {
		return BirthData{}, &ValidationError{Field: "latitude", Value: fmt.Sprintf("%g", lat), Reason: "must be between -90 and 90"}
	}
	if lon < -180 || lon > 180 {
		return BirthData{}, &ValidationError{Field: "longitude", Value: fmt.Sprintf("%g", lon), Reason: "must be between -180 and 180"}
	}

	return BirthData{
		Moment:    time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC),
		Latitude:  lat,
		Longitude: lon,
	}, nil
}

// Positions is a resolved chart: each planet's position plus the Ascendant sign.
type Positions struct {
	Planets       map[Planet]PlanetPosition `json:"positions"`
	AscendantSign int                       `json:"ascendant_sign"`
}

// PositionsFromRaw derives signs from longitudes and houses from the Ascendant
// entry's sign. A list without an Ascendant is read as Aries rising. Entries
// with unrecognised names are ignored.
func PositionsFromRaw(raw []RawPlanet) Positions {
	lagnaSign := 0
	for _, rp := range raw {
		if p, ok := ParsePlanet(rp.Name); ok && p == Ascendant {
			lagnaSign = SignFromLongitude(rp.Longitude)
			break
		}
	}

	pos := Positions{
		Planets:       make(map[Planet]PlanetPosition, len(raw)),
		AscendantSign: lagnaSign,
	}
	for _, rp := range raw {
		p, ok := ParsePlanet(rp.Name)
		if !ok {
			continue
		}
		lon := wrapDegrees(rp.Longitude)
		sign := SignFromLongitude(lon)
		pos.Planets[p] = PlanetPosition{
			Planet:    p,
			House:     HouseFromSigns(sign, lagnaSign),
			Sign:      sign,
			Longitude: lon,
		}
	}
	return pos
}

// FeatureSet drops longitudes and the Ascendant.
func (p Positions) FeatureSet() FeatureSet {
	placements := make(map[Planet]Placement, len(p.Planets))
	for planet, pp := range p.Planets {
		if planet == Ascendant {
			continue
		}
		placements[planet] = pp.Placement()
	}
	return NewFeatureSet(placements)
}

// HasCore reports whether every core planet and the Ascendant are present.
func (p Positions) HasCore() bool {
	if _, ok := p.Planets[Ascendant]; !ok {
		return false
	}
	for _, c := range CorePlanets {
		if _, ok := p.Planets[c]; !ok {
			return false
		}
	}
	return true
}
