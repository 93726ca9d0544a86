package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_AllValidPlacementsKeepEveryCorePlanet(t *testing.T) {
	for house := 1; house <= 12; house++ {
		for sign := 0; sign <= 11; sign++ {
			chart := NestedChart{}
			for _, p := range CorePlanets {
				chart[p] = Placement{House: house, Sign: sign}
			}

			fs := Normalize(chart)

			for _, p := range CorePlanets {
				pl, ok := fs.Placement(p)
				require.True(t, ok, "missing %s for house=%d sign=%d", p, house, sign)
				assert.Equal(t, Placement{House: house, Sign: sign}, pl)
			}
		}
	}
}

func TestNormalizeNested_MissingPlanetsDefault(t *testing.T) {
	fs := NormalizeNested(NestedChart{Sun: {House: 10, Sign: 4}})

	sun, _ := fs.Placement(Sun)
	assert.Equal(t, Placement{House: 10, Sign: 4}, sun)

	moon, ok := fs.Placement(Moon)
	require.True(t, ok)
	assert.Equal(t, Placement{House: DefaultHouse, Sign: DefaultSign}, moon)

	_, ok = fs.Placement(Rahu)
	assert.False(t, ok, "extension planets are never defaulted")
}

func TestNormalizeNested_CaseInsensitiveNamesAndUnknownDropped(t *testing.T) {
	fs := NormalizeNested(NestedChart{
		"mercury": {House: 3, Sign: 2},
		"Pluto":   {House: 8, Sign: 7},
		"RAHU":    {House: 10, Sign: 9},
	})

	merc, _ := fs.Placement(Mercury)
	assert.Equal(t, Placement{House: 3, Sign: 2}, merc)
	rahu, ok := fs.Placement(Rahu)
	require.True(t, ok)
	assert.Equal(t, 10, rahu.House)
	assert.Len(t, fs.Planets(), len(CorePlanets)+1)
}

func TestNormalizeFlat(t *testing.T) {
	fs := NormalizeFlat(FlatChart{
		"Sun_house":      10,
		"Sun_sign":       11,
		"Moon_house":     7,
		"Jupiter_sign":   6,
		"Ascendant_sign": 3,
		"garbage":        99,
	})

	sun, _ := fs.Placement(Sun)
	assert.Equal(t, Placement{House: 10, Sign: 11}, sun)
	moon, _ := fs.Placement(Moon)
	assert.Equal(t, Placement{House: 7, Sign: DefaultSign}, moon)
	jup, _ := fs.Placement(Jupiter)
	assert.Equal(t, Placement{House: DefaultHouse, Sign: 6}, jup)
	assert.Len(t, fs.Planets(), len(CorePlanets))
}

func TestNormalizeRaw_HousesRelativeToAscendant(t *testing.T) {
	fs := NormalizeRaw(RawChart{
		{Name: "Ascendant", Longitude: 95}, // Cancer rising
		{Name: "Sun", Longitude: 334.2},    // Pisces -> 9th from Cancer
		{Name: "Moon", Longitude: 100},     // Cancer -> 1st
		{Name: "Saturn", Longitude: 5},     // Aries -> 10th
	})

	sun, _ := fs.Placement(Sun)
	assert.Equal(t, Placement{House: 9, Sign: 11}, sun)
	moon, _ := fs.Placement(Moon)
	assert.Equal(t, Placement{House: 1, Sign: 3}, moon)
	sat, _ := fs.Placement(Saturn)
	assert.Equal(t, Placement{House: 10, Sign: 0}, sat)
	mars, _ := fs.Placement(Mars)
	assert.Equal(t, Placement{House: DefaultHouse, Sign: DefaultSign}, mars)
}

func TestNormalize_NilInputYieldsDefaults(t *testing.T) {
	fs := Normalize(nil)
	assert.Len(t, fs.Planets(), len(CorePlanets))
}

func TestFeatureSet_Vector(t *testing.T) {
	fs := NewFeatureSet(map[Planet]Placement{
		Sun:    {House: 10, Sign: 4},
		Saturn: {House: 7, Sign: 6},
	})

	v := fs.Vector()

	require.Len(t, v, 14)
	assert.Equal(t, []float64{10, 4}, v[0:2])
	assert.Equal(t, []float64{1, 0}, v[2:4])
	assert.Equal(t, []float64{7, 6}, v[12:14])
}

func TestFeatureSet_PlacementsIsACopy(t *testing.T) {
	fs := NewFeatureSet(map[Planet]Placement{Sun: {House: 5, Sign: 4}})

	m := fs.Placements()
	m[Sun] = Placement{House: 12, Sign: 11}

	sun, _ := fs.Placement(Sun)
	assert.Equal(t, 5, sun.House)
}

func TestNormalize_DuplicateCaseKeysResolveDeterministically(t *testing.T) {
	nested := NestedChart{"Sun": {House: 10, Sign: 0}, "sun": {House: 6, Sign: 5}}
	flat := FlatChart{"Sun_house": 10, "sun_house": 6}

	for i := 0; i < 50; i++ {
		sun, _ := NormalizeNested(nested).Placement(Sun)
		assert.Equal(t, Placement{House: 10, Sign: 0}, sun)

		sun, _ = NormalizeFlat(flat).Placement(Sun)
		assert.Equal(t, 10, sun.House)
	}
}
