package domain

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_NestedOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		chart NestedChart
		field string
		value string
	}{
		{"house 13", NestedChart{Mars: {House: 13, Sign: 2}}, "house", "13"},
		{"house 0", NestedChart{Mars: {House: 0, Sign: 2}}, "house", "0"},
		{"sign 12", NestedChart{Venus: {House: 4, Sign: 12}}, "sign", "12"},
		{"sign -1", NestedChart{Venus: {House: 4, Sign: -1}}, "sign", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.chart)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.value, verr.Value)
		})
	}
}

func TestValidate_NestedReportsFirstPlanetInDeclaredOrder(t *testing.T) {
	err := Validate(NestedChart{
		Saturn: {House: 13, Sign: 0},
		Sun:    {House: 1, Sign: 12},
	})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, Sun, verr.Planet)
	assert.Equal(t, "sign", verr.Field)
	assert.Contains(t, verr.Error(), "Sun")
}

func TestValidate_FlatOutOfRange(t *testing.T) {
	err := Validate(FlatChart{"Sun_house": 10, "Moon_sign": 12})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, Moon, verr.Planet)
	assert.Equal(t, "sign", verr.Field)
}

func TestValidate_AcceptsFullRange(t *testing.T) {
	for house := 1; house <= 12; house++ {
		for sign := 0; sign <= 11; sign++ {
			assert.NoError(t, Validate(NestedChart{Sun: {House: house, Sign: sign}}))
			assert.NoError(t, Validate(FlatChart{"Sun_house": house, "Sun_sign": sign}))
		}
	}
}

func TestValidate_RawRejectsNonFinite(t *testing.T) {
	err := Validate(RawChart{{Name: "Sun", Longitude: math.NaN()}})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "longitude", verr.Field)
}

func TestValidate_Nil(t *testing.T) {
	assert.Error(t, Validate(nil))
}

func TestParseBirthData(t *testing.T) {
	b, err := ParseBirthData("1990-07-14", "10:30", 28.61, 77.2)
	require.NoError(t, err)
	assert.Equal(t, 1990, b.Moment.Year())
	assert.Equal(t, 14, b.Moment.Day())
	assert.InDelta(t, 10.5, b.Hour(), 1e-9)

	b, err = ParseBirthData("1990-07-14", "23:59:59", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 59, b.Moment.Second())
}

func TestParseBirthData_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		date, clock string
		lat, lon    float64
		field       string
	}{
		{"bad date", "14/07/1990", "10:30", 0, 0, "date"},
		{"bad time", "1990-07-14", "25:00", 0, 0, "time"},
		{"bad lat", "1990-07-14", "10:30", 91, 0, "latitude"},
		{"bad lon", "1990-07-14", "10:30", 0, -181, "longitude"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBirthData(tt.date, tt.clock, tt.lat, tt.lon)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestValidate_DuplicatePlanetKeysRejected(t *testing.T) {
	tests := []struct {
		name  string
		chart ChartInput
		value string
	}{
		{"nested", NestedChart{"Sun": {House: 10, Sign: 0}, "sun": {House: 6, Sign: 5}}, "sun"},
		{"flat", FlatChart{"Sun_house": 10, "sun_house": 6}, "sun_house"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.chart)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, Sun, verr.Planet)
			assert.Equal(t, "planet", verr.Field)
			assert.Equal(t, tt.value, verr.Value)
		})
	}
}

func TestValidate_FlatHouseAndSignOfOnePlanetAreNotDuplicates(t *testing.T) {
	assert.NoError(t, Validate(FlatChart{"Sun_house": 10, "sun_sign": 4}))
}

func TestPlacement_DecodeDefaultsOmittedFields(t *testing.T) {
	var req ChartRequest
	require.NoError(t, json.Unmarshal([]byte(`{"placements": {"Sun": {"sign": 4}, "Moon": {"house": 7}, "Mars": {}}}`), &req))

	require.NoError(t, Validate(req.Placements))
	assert.Equal(t, Placement{House: DefaultHouse, Sign: 4}, req.Placements[Sun])
	assert.Equal(t, Placement{House: 7, Sign: DefaultSign}, req.Placements[Moon])
	assert.Equal(t, Placement{House: DefaultHouse, Sign: DefaultSign}, req.Placements[Mars])
}

func TestPlacement_DecodeKeepsExplicitZeroHouse(t *testing.T) {
	var req ChartRequest
	require.NoError(t, json.Unmarshal([]byte(`{"placements": {"Sun": {"house": 0, "sign": 4}}}`), &req))

	var verr *ValidationError
	require.True(t, errors.As(Validate(req.Placements), &verr))
	assert.Equal(t, "house", verr.Field)
	assert.Equal(t, "0", verr.Value)
}
