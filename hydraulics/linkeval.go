// Package hydraulics implements the hydraulic balance evaluator (§4.4)
// and the GGA Newton solver (§4.5) of spec.md, embedded by package
// engine's time advancer (§4.6).
package hydraulics

import (
	"math"

	"github.com/cpmech/pipenet/devices"
	"github.com/cpmech/pipenet/models"
	"github.com/cpmech/pipenet/network"
)

// kinematicViscosity is water's kinematic viscosity at ~20C in ft^2/s,
// used by the Darcy-Weisbach Reynolds number.
const kinematicViscosity = 1.059e-5

// EvalLink is the single dispatch point for a link's (headLoss, gradient)
// at a trial flow q, used identically by the balance evaluator (§4.4)
// and by Newton assembly (§4.5) so both always agree on the model.
func EvalLink(net *network.Network, lk *network.Link, q float64) (hLoss, hGrad float64) {
	switch lk.Kind {
	case network.Pipe:
		return evalPipe(net, lk, q)
	case network.Pump:
		return devices.PumpEvaluate(lk, net, q)
	case network.Valve:
		return evalValve(net, lk, q)
	}
	return 0, models.MinGradient
}

func evalPipe(net *network.Network, lk *network.Link, q float64) (hLoss, hGrad float64) {
	p := lk.P
	if lk.Status == network.Closed || lk.Status == network.TempClosed {
		return models.ClosedLinkStub(q)
	}
	switch net.Opts.HeadLoss {
	case network.HazenWilliams:
		hLoss, hGrad = models.HazenWilliamsLoss(p.Resistance, p.MinorK, q)
	case network.ChezyManning:
		hLoss, hGrad = models.ChezyManningLoss(p.Resistance, p.MinorK, q)
	case network.DarcyWeisbach:
		hLoss, hGrad = models.DarcyWeisbachLoss(p.Resistance, p.MinorK, p.Diameter, p.Roughness, kinematicViscosity, q)
	}
	if p.HasCheckValve {
		hLoss, hGrad = models.CheckValvePenalty(q, hLoss, hGrad)
	}
	return
}

func evalValve(net *network.Network, lk *network.Link, q float64) (hLoss, hGrad float64) {
	v := lk.V
	if lk.Status == network.Closed || lk.Status == network.TempClosed {
		return models.ClosedLinkStub(q)
	}
	switch v.SubType {
	case network.TCV:
		return devices.TCVHeadLoss(v.MinorK, v.Setting, q)
	case network.PBV:
		return devices.PBVHeadLoss(v.MinorK, v.Setting, q)
	case network.FCV:
		return devices.FCVHeadLoss(v.MinorK, v.Setting, q)
	case network.GPV:
		return devices.GPVHeadLoss(net.CurveAt(v.CurveIdx), q)
	case network.PRV, network.PSV:
		if lk.Status == network.Open {
			aq := math.Abs(q)
			hLoss = v.MinorK * q * aq
			hGrad = 2 * v.MinorK * aq
			if hGrad < models.MinGradient {
				return q * models.MinGradient, models.MinGradient
			}
			return
		}
		// Active: the node pin replaces this link's contribution to the
		// head-balance row (§4.3); the evaluator still needs a nominal
		// gradient for its own bookkeeping.
		return 0, models.MinGradient
	}
	return 0, models.MinGradient
}

// isActiveRegulator reports whether lk is a PRV or PSV currently in the
// Active state, i.e. one of its endpoints is pinned to its setpoint per
// §4.3 and its flow is derived from the pinned node's residual (§4.5)
// rather than from the ordinary head-loss relation.
func isActiveRegulator(lk *network.Link) bool {
	if lk.Kind != network.Valve || lk.Status != network.Active {
		return false
	}
	return lk.V.SubType == network.PRV || lk.V.SubType == network.PSV
}
