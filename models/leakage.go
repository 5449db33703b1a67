package models

import "math"

// LeakageKind mirrors network.LeakageKind.
type LeakageKind int

const (
	NoLeakage LeakageKind = iota
	PowerLeakage
	FAVADLeakage
)

// Leakage evaluates a pipe's leakage flow q(p) and half-gradient dq/dh/2
// at average pipe pressure head p (leakage is split between endpoints,
// per §4.4), per spec.md §4.2. length is the pipe length in feet, and
// c1/c2 are applied per 1000 ft of that internal length. c1 and c2 are
// used exactly as read from [LEAKAGE]: no user-unit to cfs conversion
// is applied to the coefficients or to the resulting flow.
func Leakage(kind LeakageKind, c1, c2, length, p float64) (q, halfGrad float64) {
	if p <= 0 {
		return 0, 0
	}
	switch kind {
	case PowerLeakage:
		return powerLeakage(c1, c2, length, p)
	case FAVADLeakage:
		return favadLeakage(c1, c2, length, p)
	}
	return 0, 0
}

func powerLeakage(c1, c2, length, p float64) (q, halfGrad float64) {
	scale := length / 1000.0
	q = c1 * math.Pow(p, c2) * scale
	grad := c1 * c2 * math.Pow(p, c2-1) * scale
	return q, grad / 2
}

func favadLeakage(c1, c2, length, p float64) (q, halfGrad float64) {
	scale := length / 1000.0
	area := (c1 + c2*p) * scale
	v := math.Sqrt(2 * GravityFtS2 * p)
	const cd = 0.6 // discharge coefficient
	q = cd * area * v
	// dq/dp = cd*(c2*scale*v + area*g/v)
	dvdp := GravityFtS2 / v
	grad := cd * (c2*scale*v + area*dvdp)
	return q, grad / 2
}
