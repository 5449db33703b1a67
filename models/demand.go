package models

import "math"

// DemandKind mirrors network.DemandKind for the same reason HeadLossKind
// does: models stays a pure function library independent of the entity
// package.
type DemandKind int

const (
	FixedDemand DemandKind = iota
	ConstrainedDemand
	PowerDemand
	LogisticDemand
)

// Demand evaluates actualDemand and dq/dh for a junction given its full
// demand, pressure head p = head-elevation, and the model's pMin/pFull
// bounds, per spec.md §4.2. Constrained is handled by the caller's
// pressure-deficient re-solve loop (§4.5); here it behaves like Fixed
// because the pinning decision is a solver-level concern, not a pure
// function of (p, fullDemand).
func Demand(kind DemandKind, fullDemand, p, pMin, pFull, expon float64) (demand, grad float64) {
	switch kind {
	case FixedDemand, ConstrainedDemand:
		return fullDemand, 0
	case PowerDemand:
		return powerDemand(fullDemand, p, pMin, pFull, expon)
	case LogisticDemand:
		return logisticDemand(fullDemand, p, pMin, pFull)
	}
	return fullDemand, 0
}

func powerDemand(fullDemand, p, pMin, pFull, expon float64) (demand, grad float64) {
	if pFull <= pMin {
		if p >= pFull {
			return fullDemand, 0
		}
		return 0, 0
	}
	frac := (p - pMin) / (pFull - pMin)
	if frac <= 0 {
		return 0, 0
	}
	if frac >= 1 {
		return fullDemand, 0
	}
	f := math.Pow(frac, expon)
	demand = fullDemand * f
	grad = fullDemand * expon * math.Pow(frac, expon-1) / (pFull - pMin)
	return
}

func logisticDemand(fullDemand, p, pMin, pFull float64) (demand, grad float64) {
	// choose a,b such that sigma(a+b*pMin) ~= 0.01, sigma(a+b*pFull) ~= 0.999
	if pFull <= pMin {
		if p >= pFull {
			return fullDemand, 0
		}
		return 0, 0
	}
	const lo, hi = -4.5951, 6.9068 // logit(0.01), logit(0.999)
	b := (hi - lo) / (pFull - pMin)
	a := lo - b*pMin
	z := a + b*p
	if z > 100 {
		z = 100
	}
	if z < -100 {
		z = -100
	}
	sig := 1.0 / (1.0 + math.Exp(-z))
	demand = fullDemand * sig
	grad = fullDemand * b * sig * (1 - sig)
	return
}

// Emitter evaluates q = C*h^gamma and dq/dh for an emitter at pressure
// head h, per §4.2.
func Emitter(coeff, gamma, h float64) (q, grad float64) {
	if h <= 0 {
		return 0, 0
	}
	q = coeff * math.Pow(h, gamma)
	grad = coeff * gamma * math.Pow(h, gamma-1)
	return
}
