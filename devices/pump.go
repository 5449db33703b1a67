// Package devices implements the pump and valve state machines of
// spec.md §4.3: curve evaluation and the active/open/closed transitions
// for PRV/PSV/FCV/TCV/PBV/GPV valves and the three pump curve flavors.
package devices

import (
	"math"

	"github.com/cpmech/pipenet/models"
	"github.com/cpmech/pipenet/network"
)

// DerivePumpCoeffs fills in PumpData.H0/R/N from a pump's curve flavor,
// per §4.3. For ConstantHP, H0/R/N are unused (evaluated directly).
func DerivePumpCoeffs(p *network.PumpData, net *network.Network) {
	switch p.CurveKind {
	case network.SinglePoint:
		// requires exactly one (q1, h1) point on the referenced curve
		c := net.CurveAt(p.CurveIdx)
		if c == nil || len(c.X) == 0 {
			return
		}
		q1, h1 := c.X[0], c.Y[0]
		p.ShutoffHead = 1.333 * h1
		p.MaxFlow = 2 * q1
		p.N = 2
		p.H0 = p.ShutoffHead
		if q1 > 0 {
			p.R = (p.H0 - h1) / math.Pow(q1, p.N)
		}
	case network.ThreePoint:
		c := net.CurveAt(p.CurveIdx)
		if c == nil || len(c.X) < 3 {
			return
		}
		q0, h0 := c.X[0], c.Y[0] // shutoff point (q=0)
		q1, h1 := c.X[1], c.Y[1]
		q2, h2 := c.X[2], c.Y[2]
		p.H0 = h0
		// solve n,r from the two non-shutoff points:
		// h0 - h1 = r*q1^n ; h0 - h2 = r*q2^n
		if q1 > 0 && q2 > 0 && h0 > h1 && h0 > h2 {
			n := math.Log((h0-h1)/(h0-h2)) / math.Log(q1/q2)
			p.N = n
			p.R = (h0 - h1) / math.Pow(q1, n)
		}
		_ = q0
	case network.CustomCurve:
		// curve is stored directly; evaluated by CurveHead/CurveHeadGrad.
	}
}

// SpeedScale applies the relative speed factor s to curve coefficients,
// per §4.3: h0 -> s^2*h0, r -> s^2*r/s^n.
func SpeedScale(h0, r, n, s float64) (h0s, rs float64) {
	if s <= 0 {
		return 0, 0
	}
	h0s = s * s * h0
	rs = s * s * r / math.Pow(s, n)
	return
}

// PumpHeadGain evaluates a pump's head gain h(q) and its gradient dh/dq
// at speed s (already status/closed-checked by the caller), per §4.3.
// The return sign convention matches the head-loss convention used
// elsewhere: PumpHeadGain returns a *negative* head loss (i.e. a gain),
// so hLoss = -gain feeds directly into the same GGA assembly as pipes.
func PumpHeadGain(p *network.PumpData, net *network.Network, q, speed float64) (hLoss, hGrad float64) {
	if speed <= 0 {
		return models.ClosedLinkStub(q)
	}
	switch p.CurveKind {
	case network.ConstantHP:
		// h = w*r/q with r = -8.814*HP ; here p.R already carries -8.814*HP
		aq := math.Abs(q)
		if aq < 1e-6 {
			aq = 1e-6
		}
		gain := -speed * speed * speed * p.R / aq // R < 0, so gain > 0; constant-power scales as s^3
		hLoss = -gain
		hGrad = gain / aq
		return
	default:
		h0s, rs := SpeedScale(p.H0, p.R, p.N, speed)
		aq := math.Abs(q)
		gain := h0s - rs*math.Pow(aq, p.N)
		gradMag := rs * p.N * math.Pow(aq, p.N-1)
		hLoss = -gain
		hGrad = gradMag
		if hGrad < models.MinGradient {
			hGrad = models.MinGradient
		}
		return
	}
}

// PumpEvaluate is the full §4.3 Pump transition: closed/zero-speed
// collapses to the closed-link stub; otherwise evaluate the curve and
// (for non-HP pumps) always add the check-valve penalty.
func PumpEvaluate(lk *network.Link, net *network.Network, q float64) (hLoss, hGrad float64) {
	p := lk.U
	if lk.Status == network.Closed || lk.Status == network.TempClosed || p.Speed <= 0 {
		return models.ClosedLinkStub(q)
	}
	hLoss, hGrad = PumpHeadGain(p, net, q, p.Speed)
	if p.CurveKind != network.ConstantHP {
		hLoss, hGrad = models.CheckValvePenalty(q, hLoss, hGrad)
	}
	return
}

// PumpEfficiency looks up a pump's efficiency at flow q from its
// efficiency curve, for the energy-accounting supplement of
// SPEC_FULL.md; returns a fraction in (0,1].
func PumpEfficiency(p *network.PumpData, net *network.Network, q float64) float64 {
	c := net.CurveAt(p.EfficiencyCurve)
	if c == nil {
		return 0.65 // EPANET default
	}
	eff, _ := c.Eval(math.Abs(q))
	if eff <= 0 {
		return 0.01
	}
	if eff > 1 {
		eff = eff / 100 // curves are often authored in percent
	}
	return eff
}
