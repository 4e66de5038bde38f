package seis

import "math"

// flattening correction from geographic to geocentric latitude
const geocentricFactor = 0.993305621334896

// Distaz returns the epicentral distance in degrees, the azimuth of the
// station seen from the event and the back azimuth of the event seen from
// the station. Latitudes are converted to geocentric before the spherical
// formulas are applied.
func Distaz(stla, stlo, evla, evlo float64) (gcarc, az, baz float64) {
	p1, l1 := geocentric(evla), evlo*math.Pi/180
	p2, l2 := geocentric(stla), stlo*math.Pi/180

	dl := l2 - l1
	x := math.Cos(p1)*math.Sin(p2) - math.Sin(p1)*math.Cos(p2)*math.Cos(dl)
	y := math.Cos(p2) * math.Sin(dl)
	z := math.Sin(p1)*math.Sin(p2) + math.Cos(p1)*math.Cos(p2)*math.Cos(dl)

	gcarc = math.Atan2(math.Hypot(x, y), z) * 180 / math.Pi
	az = wrap360(math.Atan2(y, x) * 180 / math.Pi)

	bx := math.Cos(p2)*math.Sin(p1) - math.Sin(p2)*math.Cos(p1)*math.Cos(dl)
	by := -math.Cos(p1) * math.Sin(dl)
	baz = wrap360(math.Atan2(by, bx) * 180 / math.Pi)

	return gcarc, az, baz
}

func geocentric(lat float64) float64 {
	return math.Atan(geocentricFactor * math.Tan(lat*math.Pi/180))
}

func wrap360(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
