package quality

import (
	"github.com/cpmech/pipenet/models"
	"github.com/cpmech/pipenet/network"
)

// reactionTol is the quality difference below which two adjoining
// segments merge rather than staying distinct, bounding how many
// segments a long low-turnover pipe accumulates.
const reactionTol = 1e-4

// MassBalance accumulates the running water-quality mass ledger of
// §4.8: what entered via sources and fixed-grade boundaries, what left
// via demand, and what reacted away, for the report's balance check.
type MassBalance struct {
	InitialMass float64
	SourceMass  float64
	DemandMass  float64
	ReactedMass float64
	FinalMass   float64
}

// RelativeError returns (final - (initial+source-demand-reacted)) /
// max(initial, 1e-9), the fractional closure error EPANET's own
// qualbalance.cpp reports.
func (m MassBalance) RelativeError() float64 {
	expected := m.InitialMass + m.SourceMass - m.DemandMass - m.ReactedMass
	denom := m.InitialMass
	if denom < 1e-9 {
		denom = 1e-9
	}
	return (m.FinalMass - expected) / denom
}

// Solver runs the Lagrangian time-driven transport of §4.8: a segment
// pool per link, scalar quality per node, and tank mixing state for
// every Tank node. Node and link quality visited in plain insertion
// order each substep (no topological sort): every push draws on the
// *previous* substep's node qualities, so the update is Jacobi-style
// and order-independent, the simplification spec.md's quality solver
// section allows in place of a topological pass.
type Solver struct {
	net   *network.Network
	Pool  *Pool
	Tanks map[int]*TankState

	oldQuality []float64
	massIn     []float64
	volIn      []float64
	volOut     []float64

	Balance MassBalance
}

// NewSolver builds a quality solver for net; call Seed once before the
// first Step.
func NewSolver(net *network.Network) *Solver {
	s := &Solver{
		net:        net,
		Pool:       NewPool(net),
		Tanks:      make(map[int]*TankState),
		oldQuality: make([]float64, len(net.Nodes)),
		massIn:     make([]float64, len(net.Nodes)),
		volIn:      make([]float64, len(net.Nodes)),
		volOut:     make([]float64, len(net.Nodes)),
	}
	for _, nd := range net.Nodes {
		if nd.Kind == network.Tank {
			s.Tanks[nd.Index] = NewTankState(nd)
		}
	}
	return s
}

// Seed applies each node's initial quality (junctions: J.InitQuality;
// tanks/reservoirs: whatever Quality the caller has already set from
// the [QUALITY] section) and primes the link pool and mass ledger.
func (s *Solver) Seed() {
	for _, nd := range s.net.Nodes {
		if nd.Kind == network.Junction {
			nd.Quality = nd.J.InitQuality
		}
	}
	s.Pool.Seed(s.net)
	s.Balance.InitialMass = s.totalMass()
}

func (s *Solver) totalMass() float64 {
	var mass float64
	for _, c := range s.Pool.Chains {
		for _, seg := range c.Segments {
			mass += seg.Volume * seg.Quality
		}
	}
	for _, nd := range s.net.Nodes {
		if nd.Kind == network.Tank {
			mass += nd.T.Volume * nd.Quality
		}
	}
	return mass
}

// Step advances quality by one substep of duration dt (<=
// Opts.QualStep), holding link flows fixed at their current values.
// Trace mode (QualityTrace) pins the trace node's quality at 100 and
// otherwise runs the same transport so the tracer's spread can be read
// off every other node.
func (s *Solver) Step(dt float64) {
	if dt <= 0 {
		return
	}
	n := len(s.net.Nodes)
	for i := 0; i < n; i++ {
		s.oldQuality[i] = s.net.Nodes[i].Quality
		s.massIn[i] = 0
		s.volIn[i] = 0
		s.volOut[i] = 0
	}
	if s.net.Opts.Quality == network.QualityTrace && s.net.Opts.TraceNodeIdx >= 0 {
		s.oldQuality[s.net.Opts.TraceNodeIdx] = 100
	}

	for i, lk := range s.net.Links {
		q := lk.Flow
		vol := absF(q) * dt
		if vol <= 0 {
			continue
		}
		chain := &s.Pool.Chains[i]
		var upstream, downstream int
		var mass float64
		if q >= 0 {
			upstream, downstream = lk.From, lk.To
			chain.push(vol, s.oldQuality[upstream], reactionTol)
			s.react(chain, lk, dt)
			mass = chain.pop(vol)
		} else {
			upstream, downstream = lk.To, lk.From
			chain.pushBack(vol, s.oldQuality[upstream], reactionTol)
			s.react(chain, lk, dt)
			mass = chain.popFront(vol)
		}
		s.volOut[upstream] += vol
		s.massIn[downstream] += mass
		s.volIn[downstream] += vol
		lk.Quality = chain.AvgQuality()
	}

	for _, nd := range s.net.Nodes {
		s.updateNode(nd, dt)
	}
	s.Balance.FinalMass = s.totalMass()
}

func (s *Solver) react(chain *LinkChain, lk *network.Link, dt float64) {
	if s.net.Opts.Quality == network.QualityAge {
		chain.react(dt, func(float64) float64 { return models.WaterAgeRate() })
		return
	}
	if s.net.Opts.Quality != network.QualityChemical {
		return
	}
	p := lk.P
	var before float64
	for _, seg := range chain.Segments {
		before += seg.Volume * seg.Quality
	}
	chain.react(dt, func(c float64) float64 {
		return models.BulkReactionRate(models.OrderFirst, c, p.BulkCoeff, 0, 1)
	})
	var after float64
	for _, seg := range chain.Segments {
		after += seg.Volume * seg.Quality
	}
	s.Balance.ReactedMass += before - after
}

func (s *Solver) updateNode(nd *network.Node, dt float64) {
	switch nd.Kind {
	case network.Reservoir:
		// boundary: quality fixed by the [SOURCES]/[RESERVOIRS] input,
		// unaffected by transport.
	case network.Junction:
		newQuality := s.oldQuality[nd.Index]
		if s.volIn[nd.Index] > 0 {
			newQuality = s.massIn[nd.Index] / s.volIn[nd.Index]
		}
		if nd.J.Source != nil {
			newQuality = s.applySource(nd, newQuality, dt)
		}
		nd.Quality = newQuality
		if nd.ActualDemand > 0 {
			s.Balance.DemandMass += nd.ActualDemand * dt * newQuality
		}
	case network.Tank:
		ts := s.Tanks[nd.Index]
		inVol := s.volIn[nd.Index]
		inQuality := 0.0
		if inVol > 0 {
			inQuality = s.massIn[nd.Index] / inVol
		}
		outVol := s.volOut[nd.Index]
		bulk, _ := ts.Mix(nd, inVol, inQuality, outVol, nd.T.Volume)
		if s.net.Opts.Quality == network.QualityChemical && nd.T.BulkCoeff != 0 {
			bulk += models.BulkReactionRate(models.OrderFirst, bulk, nd.T.BulkCoeff, 0, 1) * dt
			if bulk < 0 {
				bulk = 0
			}
		}
		nd.Quality = bulk
	}
}

// applySource folds in a junction's [SOURCES] entry, per §4.8's four
// source kinds.
func (s *Solver) applySource(nd *network.Node, blended, dt float64) float64 {
	src := nd.J.Source
	switch src.Kind {
	case network.SourceSetpoint:
		return src.Strength
	case network.SourceConcen:
		if s.volIn[nd.Index] > 0 {
			s.Balance.SourceMass += src.Strength * s.volIn[nd.Index]
		}
		return blended + src.Strength
	case network.SourceMass:
		if s.volIn[nd.Index] <= 0 {
			return blended
		}
		addedMass := src.Strength * dt
		s.Balance.SourceMass += addedMass
		return blended + addedMass/s.volIn[nd.Index]
	case network.SourceFlowPaced:
		if s.volIn[nd.Index] > 0 {
			s.Balance.SourceMass += src.Strength * s.volIn[nd.Index]
		}
		return blended + src.Strength
	}
	return blended
}

func absF(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
