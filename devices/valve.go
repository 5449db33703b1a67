package devices

import (
	"math"

	"github.com/cpmech/pipenet/models"
	"github.com/cpmech/pipenet/network"
)

// TCVHeadLoss implements the throttle-control valve of §4.3: effective
// loss factor = f(setting)*openLossFactor.
func TCVHeadLoss(openMinorK, setting, q float64) (hLoss, hGrad float64) {
	factor := setting * openMinorK
	aq := math.Abs(q)
	hLoss = factor * q * aq
	hGrad = 2 * factor * aq
	if hGrad < models.MinGradient {
		return q * models.MinGradient, models.MinGradient
	}
	return
}

// PBVHeadLoss implements the pressure-breaker valve of §4.3.
func PBVHeadLoss(openMinorK, setting, q float64) (hLoss, hGrad float64) {
	aq := math.Abs(q)
	openLoss := openMinorK * q * aq
	if math.Abs(openLoss) >= math.Abs(setting) {
		hGrad = 2 * openMinorK * aq
		if hGrad < models.MinGradient {
			return q * models.MinGradient, models.MinGradient
		}
		return openLoss, hGrad
	}
	return setting, models.MinGradient
}

// FCVHeadLoss implements the flow-control valve of §4.3: behaves as open
// (zero loss plus the standard open minor loss) while q<=setting, else
// pins flow to setting via a high-resistance penalty on the overflow.
func FCVHeadLoss(openMinorK, setting, q float64) (hLoss, hGrad float64) {
	if q <= setting {
		aq := math.Abs(q)
		hLoss = openMinorK * q * aq
		hGrad = 2 * openMinorK * aq
		if hGrad < models.MinGradient {
			return q * models.MinGradient, models.MinGradient
		}
		return
	}
	hLoss = openMinorK*setting*setting + models.HighResistance*(q-setting)
	hGrad = models.HighResistance
	return
}

// GPVHeadLoss implements the general-purpose valve of §4.3: head loss is
// a user curve h(q); return the slope/intercept of the enclosing segment.
func GPVHeadLoss(curve *network.Curve, q float64) (hLoss, hGrad float64) {
	if curve == nil {
		return models.ClosedLinkStub(q)
	}
	hLoss, hGrad = curve.Eval(q)
	if hGrad < models.MinGradient {
		hGrad = models.MinGradient
	}
	return
}

// PRVTransition evaluates the PRV three-state machine of §4.3, given the
// current status, flow q, upstream/downstream heads h1,h2 and setpoint
// hset = setting + elev(downstream). Returns the new status.
func PRVTransition(status network.Status, q, h1, h2, hset float64) network.Status {
	switch status {
	case network.Active:
		if q < -models.ZeroFlow {
			return network.Closed
		}
		if h1 < hset {
			return network.Open
		}
	case network.Open:
		if q < -models.ZeroFlow {
			return network.Closed
		}
		if h2 > hset {
			return network.Active
		}
	case network.Closed:
		if h1 > hset && h2 < hset {
			return network.Active
		}
		if h1 < hset && h1 > h2 {
			return network.Open
		}
	}
	return status
}

// PSVTransition evaluates the PSV machine, symmetric to PRVTransition
// with respect to the upstream setpoint.
func PSVTransition(status network.Status, q, h1, h2, hset float64) network.Status {
	switch status {
	case network.Active:
		if q < -models.ZeroFlow {
			return network.Closed
		}
		if h2 > hset {
			return network.Open
		}
	case network.Open:
		if q < -models.ZeroFlow {
			return network.Closed
		}
		if h1 < hset {
			return network.Active
		}
	case network.Closed:
		if h2 < hset && h1 > hset {
			return network.Active
		}
		if h2 > hset && h2 < h1 {
			return network.Open
		}
	}
	return status
}

// ValveSetpoint returns hset = setting + elevation(downstream-or-upstream
// node), the pinned head used by an Active PRV/PSV.
func ValveSetpoint(setting, nodeElev float64) float64 { return setting + nodeElev }
