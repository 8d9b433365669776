package geospatial

import "math"

const kilometersPerMile = 1.609344

// ToRadians converts decimal degrees to radians.
func ToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ToDegrees converts radians to decimal degrees.
func ToDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// MilesToKilometers converts statute miles to kilometers.
func MilesToKilometers(mi float64) float64 {
	return mi * kilometersPerMile
}

// KilometersToMiles converts kilometers to statute miles.
func KilometersToMiles(km float64) float64 {
	return km / kilometersPerMile
}

// RoundTo rounds v to the given number of decimal places, half away from zero.
// Only used for display; stored distances keep full precision.
func RoundTo(v float64, places int) float64 {
	if places < 0 {
		places = 0
	}
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
