package domain

// fallbackOffsets are the base longitudes of the approximation. Ketu sits
// opposite Rahu.
var fallbackOffsets = []struct {
	planet Planet
	base   float64
}{
	{Sun, 0},
	{Moon, 30},
	{Mars, 60},
	{Mercury, 90},
	{Jupiter, 120},
	{Venus, 150},
	{Saturn, 180},
	{Rahu, 210},
	{Ketu, 30},
}

const (
	degreesPerHourAscendant = 15.0 // sidereal sweep of the Ascendant
	degreesPerHourPlanet    = 5.0
	daysPerMonthFactor      = 30
)

// ApproximateAscendant estimates the Ascendant longitude from local sidereal
// time: hour * 15° plus the observer's longitude, wrapped to [0,360).
func ApproximateAscendant(b BirthData) float64 {
	return wrapDegrees(b.Hour()*degreesPerHourAscendant + b.Longitude)
}

// ApproximatePositions computes plausible longitudes for every planet plus
// the Ascendant without any I/O. It always succeeds and is deterministic for a
// given input; it makes no claim of astronomical accuracy.
func ApproximatePositions(b BirthData) []RawPlanet {
	lagnaLon := ApproximateAscendant(b)
	lagnaSign := SignFromLongitude(lagnaLon)

	dateFactor := float64((b.Moment.Day() + int(b.Moment.Month())*daysPerMonthFactor) % 360)
	hourTerm := b.Hour() * degreesPerHourPlanet

	planets := make([]RawPlanet, 0, len(fallbackOffsets)+1)
	for _, off := range fallbackOffsets {
		lon := wrapDegrees(off.base + dateFactor + hourTerm)
		sign := SignFromLongitude(lon)
		planets = append(planets, RawPlanet{
			Name:      string(off.planet),
			Longitude: lon,
			Latitude:  0,
			Speed:     1.0,
			House:     HouseFromSigns(sign, lagnaSign),
			Sign:      sign,
		})
	}

	planets = append(planets, AscendantEntry(b, lagnaLon))
	return planets
}

// AscendantEntry builds the raw Ascendant record for a given longitude.
func AscendantEntry(b BirthData, longitude float64) RawPlanet {
	return RawPlanet{
		Name:      string(Ascendant),
		Longitude: longitude,
		Latitude:  b.Latitude,
		Speed:     0,
		House:     1,
		Sign:      SignFromLongitude(longitude),
	}
}
