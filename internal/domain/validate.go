package domain

import (
	"fmt"
	"math"
)

// ValidationError reports a caller-supplied value outside its allowed range.
// It is the only failure the prediction pipeline surfaces to callers.
type ValidationError struct {
	Planet Planet
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Planet != "" {
		return fmt.Sprintf("invalid %s for %s: %s (%s)", e.Field, e.Planet, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s (%s)", e.Field, e.Value, e.Reason)
}

// Validate checks every placement in the input before any scoring runs.
// Houses must lie in [1,12] and signs in [0,11]; raw longitudes must be finite.
func Validate(in ChartInput) error {
	switch v := in.(type) {
	case NestedChart:
		return validateNested(v)
	case FlatChart:
		return validateFlat(v)
	case RawChart:
		return validateRaw(v)
	case nil:
		return &ValidationError{Field: "chart", Value: "<nil>", Reason: "no placements supplied"}
	default:
		return nil
	}
}

func validateNested(c NestedChart) error {
	names := make([]string, 0, len(c))
	for p := range c {
		names = append(names, string(p))
	}
	seen := make(map[Planet]string, len(names))
	for _, name := range sortedPlanetKeys(names) {
		if p, ok := ParsePlanet(name); ok {
			if first, dup := seen[p]; dup {
				return duplicateKey(p, name, first)
			}
			seen[p] = name
		}
		pl := c[Planet(name)]
		if err := checkHouse(Planet(name), pl.House); err != nil {
			return err
		}
		if err := checkSign(Planet(name), pl.Sign); err != nil {
			return err
		}
	}
	return nil
}

func validateFlat(c FlatChart) error {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	type slot struct {
		planet Planet
		field  string
	}
	seen := make(map[slot]string, len(keys))
	for _, key := range sortedPlanetKeys(keys) {
		p, field, ok := splitFlatKey(key)
		if !ok {
			continue
		}
		if first, dup := seen[slot{p, field}]; dup {
			return duplicateKey(p, key, first)
		}
		seen[slot{p, field}] = key

		var err error
		if field == "house" {
			err = checkHouse(p, c[key])
		} else {
			err = checkSign(p, c[key])
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// duplicateKey rejects two keys naming the same planet in different case;
// accepting both would leave the winner to map iteration order.
func duplicateKey(p Planet, key, first string) error {
	return &ValidationError{
		Planet: p,
		Field:  "planet",
		Value:  key,
		Reason: fmt.Sprintf("duplicates %q", first),
	}
}

func validateRaw(c RawChart) error {
	for _, rp := range c {
		if math.IsNaN(rp.Longitude) || math.IsInf(rp.Longitude, 0) {
			return &ValidationError{
				Planet: Planet(rp.Name),
				Field:  "longitude",
				Value:  fmt.Sprintf("%g", rp.Longitude),
				Reason: "must be a finite number of degrees",
			}
		}
	}
	return nil
}

func checkHouse(p Planet, house int) error {
	if house < minHouse || house > maxHouse {
		return &ValidationError{
			Planet: p,
			Field:  "house",
			Value:  fmt.Sprintf("%d", house),
			Reason: fmt.Sprintf("must be between %d and %d", minHouse, maxHouse),
		}
	}
	return nil
}

func checkSign(p Planet, sign int) error {
	if sign < minSign || sign > maxSign {
		return &ValidationError{
			Planet: p,
			Field:  "sign",
			Value:  fmt.Sprintf("%d", sign),
			Reason: fmt.Sprintf("must be between %d and %d", minSign, maxSign),
		}
	}
	return nil
}
