package hydraulics

import (
	"math"

	"github.com/cpmech/pipenet/models"
	"github.com/cpmech/pipenet/network"
	"gonum.org/v1/gonum/floats"
)

// Balance is the per-node/per-link working state produced by Evaluate,
// the single source of truth for "how wrong is a candidate solution"
// described in spec.md §4.4.
type Balance struct {
	XQ []float64 // per-node flow imbalance, indexed by node

	MaxHeadErr      float64
	MaxFlowErr      float64
	MaxFlowChange   float64
	TotalFlowChange float64
	Norm            float64

	// per-link head loss/gradient/head-error from the last Evaluate call,
	// read by the GGA assembly step instead of calling the link models
	// itself (Evaluate itself runs more than once per trial).
	HLoss   []float64
	HGrad   []float64
	HeadErr []float64
}

// NewBalance allocates per-node/per-link scratch sized for net.
func NewBalance(net *network.Network) *Balance {
	return &Balance{
		XQ:      make([]float64, len(net.Nodes)),
		HLoss:   make([]float64, len(net.Links)),
		HGrad:   make([]float64, len(net.Links)),
		HeadErr: make([]float64, len(net.Links)),
	}
}

// Evaluate computes the §4.4 imbalance for the trial state
// (H+lambda*dH, Q+lambda*dQ). H and Q are the solver's current head/flow
// arrays; dH/dQ are the trial deltas (both nil-safe: pass nil dQ/dH to
// evaluate the current state itself, i.e. lambda is ignored and treated
// as 0).
func (b *Balance) Evaluate(net *network.Network, H, Q, dH, dQ []float64, lambda float64) {
	n := len(net.Nodes)
	for i := 0; i < n; i++ {
		b.XQ[i] = 0
		net.Nodes[i].QGrad = 0
	}

	var sumSqHeadErr float64
	var maxHeadErr, maxFlowChange, sumAbsFlowChange, sumAbsFlow float64

	for _, lk := range net.Links {
		newFlow := Q[lk.Index]
		if dQ != nil {
			newFlow += lambda * dQ[lk.Index]
		}
		b.XQ[lk.From] -= newFlow
		b.XQ[lk.To] += newFlow

		hLoss, hGrad := EvalLink(net, lk, newFlow)
		b.HLoss[lk.Index] = hLoss
		b.HGrad[lk.Index] = hGrad

		hu := H[lk.From]
		hv := H[lk.To]
		if dH != nil {
			hu += lambda * dH[lk.From]
			hv += lambda * dH[lk.To]
		}
		headErr := hu - hv - hLoss
		b.HeadErr[lk.Index] = headErr
		// An active PRV/PSV pins one endpoint to its setpoint (§4.3); the
		// resulting head difference across the link is a real operating
		// condition, not a head-loss-consistency defect (§4.4, §8
		// property 2 only binds OPEN links), so it is excluded from the
		// convergence norm.
		if !isActiveRegulator(lk) {
			if math.Abs(headErr) > maxHeadErr {
				maxHeadErr = math.Abs(headErr)
			}
			sumSqHeadErr += headErr * headErr
		}

		dflow := newFlow
		if dQ != nil {
			dflow = lambda * dQ[lk.Index]
		} else {
			dflow = 0
		}
		adflow := math.Abs(dflow)
		if adflow > maxFlowChange {
			maxFlowChange = adflow
		}
		sumAbsFlowChange += adflow
		sumAbsFlow += math.Abs(newFlow)
	}

	for _, nd := range net.Nodes {
		newHead := H[nd.Index]
		if dH != nil {
			newHead += lambda * dH[nd.Index]
		}
		switch nd.Kind {
		case network.Junction:
			j := nd.J
			p := newHead - nd.Elevation
			demand, dGrad := models.Demand(modelDemandKind(net.Opts.Demand), nd.FullDemand, p, j.PMin, j.PFull, 1.5)
			nd.ActualDemand = demand
			nd.QGrad += dGrad
			b.XQ[nd.Index] -= demand
			if j.Emitter != nil {
				q, eGrad := models.Emitter(j.Emitter.Coeff, j.Emitter.Expon, p)
				nd.QGrad += eGrad
				b.XQ[nd.Index] -= q
			}
		case network.Reservoir, network.Tank:
			nd.Outflow = b.XQ[nd.Index]
			b.XQ[nd.Index] = 0
		}
	}

	if net.Opts.Leakage != network.NoLeakage {
		b.applyLeakage(net, H, dH, lambda)
	}

	var sumSqFlowErr float64
	for i := 0; i < n; i++ {
		sumSqFlowErr += b.XQ[i] * b.XQ[i]
	}
	flowErrNorm := sumSqFlowErr / float64(maxInt(n, 1))
	headErrNorm := sumSqHeadErr / float64(maxInt(len(net.Links), 1))

	b.MaxHeadErr = maxHeadErr
	b.MaxFlowErr = maxAbs(b.XQ)
	b.MaxFlowChange = maxFlowChange
	if sumAbsFlow > 0 {
		b.TotalFlowChange = sumAbsFlowChange / sumAbsFlow
	}
	b.Norm = math.Sqrt(headErrNorm + flowErrNorm)
}

func (b *Balance) applyLeakage(net *network.Network, H, dH []float64, lambda float64) {
	for _, lk := range net.Links {
		if lk.Kind != network.Pipe {
			continue
		}
		p := lk.P
		if p.LeakC1 == 0 && p.LeakC2 == 0 {
			continue
		}
		from, to := net.Nodes[lk.From], net.Nodes[lk.To]
		hu, hv := H[from.Index], H[to.Index]
		if dH != nil {
			hu += lambda * dH[from.Index]
			hv += lambda * dH[to.Index]
		}
		avgPressure := ((hu - from.Elevation) + (hv - to.Elevation)) / 2
		if avgPressure <= 0 {
			continue
		}
		kind := models.PowerLeakage
		if net.Opts.Leakage == network.FAVADLeakage {
			kind = models.FAVADLeakage
		}
		q, halfGrad := models.Leakage(kind, p.LeakC1, p.LeakC2, p.Length, avgPressure)
		if q == 0 {
			continue
		}
		upOK := from.Kind == network.Junction && hu-from.Elevation > 0
		downOK := to.Kind == network.Junction && hv-to.Elevation > 0
		switch {
		case upOK && downOK:
			b.XQ[from.Index] -= q / 2
			b.XQ[to.Index] -= q / 2
			from.QGrad += halfGrad
			to.QGrad += halfGrad
		case upOK:
			b.XQ[from.Index] -= q
			from.QGrad += 2 * halfGrad
		case downOK:
			b.XQ[to.Index] -= q
			to.QGrad += 2 * halfGrad
		}
	}
}

func modelDemandKind(k network.DemandKind) models.DemandKind { return models.DemandKind(k) }

func maxAbs(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	idx := floats.MaxIdx(absCopy(v))
	return math.Abs(v[idx])
}

func absCopy(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Abs(x)
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
