package hydraulics

import (
	"math"

	"github.com/cpmech/pipenet/devices"
	"github.com/cpmech/pipenet/models"
	"github.com/cpmech/pipenet/network"
	"github.com/cpmech/pipenet/sparse"
	"github.com/emirpasic/gods/v2/sets/hashset"
)

// defaultInitFlow seeds every link at 1 gpm (in internal cfs), the
// classic EPANET initial guess that keeps the first trial's gradients
// away from the q=0 singularity.
const defaultInitFlow = 1.0 / 448.831

// bigDiag pins a node's head correction to pinnedHead-H (zero for a
// reservoir or tank, whose head already sits at its pin): a large-diagonal
// essential-boundary-condition technique, the same device gofem's FEM
// solver uses to impose prescribed degrees of freedom.
const bigDiag = 1e10

// Status is the terminal outcome of a hydraulic solve, per spec.md §4.5
// and §7.
type Status int

const (
	Successful Status = iota
	FailedIllConditioned
	FailedNoConvergence
)

func (s Status) String() string {
	switch s {
	case Successful:
		return "Successful"
	case FailedIllConditioned:
		return "FailedIllConditioned"
	case FailedNoConvergence:
		return "FailedNoConvergence"
	}
	return "?"
}

// Solver is the Global Gradient Algorithm Newton solver of spec.md §4.5,
// built around the shared Balance evaluator and a sparse.Solver matrix
// sized once for the network's lifetime.
type Solver struct {
	net *network.Network
	mat *sparse.Solver
	bal *Balance

	H, Q   []float64 // current state, network-space
	dH, dQ []float64 // trial Newton step
	y      []float64 // per-link inverse gradient (conductance) this trial

	pinned      []bool
	pinnedHead  []float64
	valvePinned []bool // subset of pinned: held by an Active PRV/PSV, not a reservoir/tank

	Trials int // trials used by the last Solve call, for diagnostics
}

// NewSolver builds a Newton solver for net, computing the sparse
// symbolic factorization once from the network's link topology.
func NewSolver(net *network.Network) *Solver {
	n := len(net.Nodes)
	m := len(net.Links)
	linkFrom := make([]int, m)
	linkTo := make([]int, m)
	for i, lk := range net.Links {
		linkFrom[i] = lk.From
		linkTo[i] = lk.To
	}
	mat := &sparse.Solver{}
	mat.Init(n, linkFrom, linkTo)

	return &Solver{
		net:         net,
		mat:         mat,
		bal:         NewBalance(net),
		H:           make([]float64, n),
		Q:           make([]float64, m),
		dH:          make([]float64, n),
		dQ:          make([]float64, m),
		y:           make([]float64, m),
		pinned:      make([]bool, n),
		pinnedHead:  make([]float64, n),
		valvePinned: make([]bool, n),
	}
}

// Seed initializes H/Q from the network's current fixed-grade heads and
// the default flow guess, for a cold start. A warm start (e.g. the next
// hydraulic timestep) instead carries over the previous H/Q directly via
// SetState.
func (s *Solver) Seed() {
	for _, nd := range s.net.Nodes {
		switch nd.Kind {
		case network.Reservoir:
			nd.Head = nd.R.HeadBase
			nd.FixedGrade = true
		case network.Tank:
			nd.Head = nd.T.InitHead
			nd.FixedGrade = true
		default:
			nd.Head = nd.Elevation
			nd.FixedGrade = false
		}
		s.H[nd.Index] = nd.Head
	}
	for _, lk := range s.net.Links {
		lk.Flow = defaultInitFlow
		s.Q[lk.Index] = defaultInitFlow
	}
}

// SetState loads H/Q from the network's current Node.Head/Link.Flow,
// for a warm-started re-solve within the same timestep or the next one.
func (s *Solver) SetState() {
	for _, nd := range s.net.Nodes {
		s.H[nd.Index] = nd.Head
	}
	for _, lk := range s.net.Links {
		s.Q[lk.Index] = lk.Flow
	}
}

// Solve runs the full §4.5 procedure: the Newton iteration to
// convergence or failure, followed by the pressure-deficient-junction
// re-solve loop when Demand == ConstrainedDemand.
func (s *Solver) Solve() Status {
	status := s.newton()
	if status != Successful {
		s.writeBack()
		return status
	}
	if s.net.Opts.Demand != network.ConstrainedDemand {
		s.writeBack()
		return Successful
	}

	prevDeficient := hashset.New[int]()
	for pass := 0; pass < 3; pass++ {
		deficient := hashset.New[int]()
		for _, nd := range s.net.Nodes {
			if nd.Kind != network.Junction {
				continue
			}
			if nd.Pressure() < nd.J.PMin {
				deficient.Add(nd.Index)
			}
		}
		if deficient.Size() == 0 {
			break
		}
		if pass > 0 && setEqual(deficient, prevDeficient) {
			break
		}
		prevDeficient = deficient
		for _, idx := range deficient.Values() {
			nd := s.net.Nodes[idx]
			p := nd.Pressure()
			demand, _ := models.Demand(models.PowerDemand, nd.FullDemand, p, nd.J.PMin, nd.J.PFull, 1.5)
			nd.FullDemand = demand
		}
		status = s.newton()
		if status != Successful {
			break
		}
	}
	s.writeBack()
	return status
}

func setEqual(a, b *hashset.Set[int]) bool {
	if a.Size() != b.Size() {
		return false
	}
	for _, v := range a.Values() {
		if !b.Contains(v) {
			return false
		}
	}
	return true
}

func (s *Solver) writeBack() {
	for _, nd := range s.net.Nodes {
		nd.Head = s.H[nd.Index]
	}
	for _, lk := range s.net.Links {
		lk.Flow = s.Q[lk.Index]
	}
}

// newton runs the Newton trial loop until convergence, MaxTrials
// exhaustion, or an ill-conditioned pivot.
func (s *Solver) newton() Status {
	var prevDQ []float64
	for trial := 1; trial <= s.net.Opts.MaxTrials; trial++ {
		s.Trials = trial
		statusChanged := s.checkValveStatus()
		s.updatePins()

		s.bal.Evaluate(s.net, s.H, s.Q, nil, nil, 0)
		if s.assemble() {
			return FailedIllConditioned
		}
		if rc := s.mat.Solve(s.dH); rc >= 0 {
			return FailedIllConditioned
		}
		s.deriveDQ()

		lambda := s.stepSize(prevDQ)
		s.bal.Evaluate(s.net, s.H, s.Q, s.dH, s.dQ, lambda)
		maxHeadErr := s.bal.MaxHeadErr
		flowChange := s.bal.TotalFlowChange

		s.applyStep(lambda)

		if prevDQ == nil {
			prevDQ = make([]float64, len(s.dQ))
		}
		copy(prevDQ, s.dQ)

		if statusChanged {
			continue
		}
		if maxHeadErr < s.net.Opts.HeadTolerance && flowChange < s.net.Opts.FlowTolerance {
			return Successful
		}
	}
	return FailedNoConvergence
}

// assemble builds the Newton system A*dH = rhs from the current
// Balance, per spec.md §4.5. Returns true if any non-pinned node ends
// up with a non-positive effective diagonal (ill-conditioned network,
// e.g. a component with no fixed-grade path).
func (s *Solver) assemble() bool {
	s.mat.Reset()
	n := len(s.net.Nodes)
	diag := make([]float64, n)

	for i := 0; i < n; i++ {
		if s.pinned[i] {
			s.mat.SetDiag(i, bigDiag)
			s.mat.SetRhs(i, bigDiag*(s.pinnedHead[i]-s.H[i]))
			continue
		}
		s.mat.AddToDiag(i, s.net.Nodes[i].QGrad)
		diag[i] += s.net.Nodes[i].QGrad
		s.mat.AddToRhs(i, s.bal.XQ[i])
	}

	for _, lk := range s.net.Links {
		if isActiveRegulator(lk) {
			// Its pinned endpoint already has its row forced via the
			// bigDiag technique above; per §4.3 the link itself
			// contributes no coupling to the other endpoint's row, and
			// its flow is derived separately from the pinned node's
			// residual inflow/outflow (§4.5, deriveDQ).
			s.y[lk.Index] = 0
			continue
		}
		hGrad := s.bal.HGrad[lk.Index]
		if hGrad < models.MinGradient {
			hGrad = models.MinGradient
		}
		y := 1.0 / hGrad
		s.y[lk.Index] = y

		u, v := lk.From, lk.To
		if !s.pinned[u] {
			s.mat.AddToDiag(u, y)
			diag[u] += y
		}
		if !s.pinned[v] {
			s.mat.AddToDiag(v, y)
			diag[v] += y
		}
		s.mat.AddToOffDiag(lk.Index, -y)

		headErr := s.bal.HeadErr[lk.Index]
		if !s.pinned[u] {
			s.mat.AddToRhs(u, -y*headErr)
		}
		if !s.pinned[v] {
			s.mat.AddToRhs(v, y*headErr)
		}
	}
	for i := 0; i < n; i++ {
		if !s.pinned[i] && diag[i] <= 0 {
			return true
		}
	}
	return false
}

// deriveDQ derives each link's flow change from the solved head changes,
// per §4.5's per-link formula, special-casing the three flow-derivation
// rules §4.5 calls out by name: an active PRV or PSV derives its flow
// from its pinned node's residual rather than from head loss, and a
// constant-horsepower pump's flow change is capped so it can never step
// past zero flow in one trial.
func (s *Solver) deriveDQ() {
	for _, lk := range s.net.Links {
		switch {
		case isActiveRegulator(lk) && lk.V.SubType == network.PRV:
			s.dQ[lk.Index] = -s.bal.XQ[lk.To] - s.Q[lk.Index]
		case isActiveRegulator(lk) && lk.V.SubType == network.PSV:
			s.dQ[lk.Index] = s.bal.XQ[lk.From] - s.Q[lk.Index]
		case lk.Kind == network.Pump && lk.U.CurveKind == network.ConstantHP:
			headErr := s.bal.HeadErr[lk.Index]
			dq := s.y[lk.Index] * (headErr + s.dH[lk.From] - s.dH[lk.To])
			if math.Abs(dq) > math.Abs(s.Q[lk.Index]) {
				dq = s.Q[lk.Index] / 2
			}
			s.dQ[lk.Index] = dq
		default:
			headErr := s.bal.HeadErr[lk.Index]
			s.dQ[lk.Index] = s.y[lk.Index] * (headErr + s.dH[lk.From] - s.dH[lk.To])
		}
	}
}

// stepSize picks lambda per the §4.5 step policy. Full always takes the
// whole Newton step; Relaxation halves it when more than 10% of links
// flip the sign of their flow correction (dQ) since the previous trial
// (oscillation); LineSearch
// evaluates the trial-state imbalance at several candidates and keeps
// the one that minimizes it.
func (s *Solver) stepSize(prevDQ []float64) float64 {
	switch s.net.Opts.StepSize {
	case network.Full:
		return 1.0
	case network.LineSearch:
		candidates := [...]float64{1.0, 0.75, 0.5, 0.25}
		best := 1.0
		bestNorm := math.Inf(1)
		tmp := NewBalance(s.net)
		for _, lam := range candidates {
			tmp.Evaluate(s.net, s.H, s.Q, s.dH, s.dQ, lam)
			if tmp.Norm < bestNorm {
				bestNorm = tmp.Norm
				best = lam
			}
		}
		return best
	default: // Relaxation
		if prevDQ == nil || len(s.net.Links) == 0 {
			return 1.0
		}
		reversals := 0
		for i := range s.dQ {
			if prevDQ[i]*s.dQ[i] < 0 {
				reversals++
			}
		}
		if float64(reversals)/float64(len(s.net.Links)) > 0.1 {
			return 0.5
		}
		return 1.0
	}
}

func (s *Solver) applyStep(lambda float64) {
	for i := range s.H {
		switch {
		case s.valvePinned[i]:
			// Reservoirs/tanks are already at their pinned head, so
			// dH for them is ~0 and leaving H untouched is equivalent;
			// an Active PRV/PSV's pinned node generally differs from
			// its pre-solve head, so it must actually be moved to the
			// setpoint for the pin to take effect (§4.3).
			s.H[i] = s.pinnedHead[i]
		case !s.pinned[i]:
			s.H[i] += lambda * s.dH[i]
		}
	}
	for i := range s.Q {
		s.Q[i] += lambda * s.dQ[i]
	}
}

// updatePins marks every node whose head is known rather than solved
// this trial: reservoirs and tanks always, plus the downstream node of
// an Active PRV or the upstream node of an Active PSV (§4.3's node-pin
// rule).
func (s *Solver) updatePins() {
	for i := range s.pinned {
		s.pinned[i] = false
		s.valvePinned[i] = false
	}
	for _, nd := range s.net.Nodes {
		if nd.Kind == network.Reservoir || nd.Kind == network.Tank {
			s.pinned[nd.Index] = true
			s.pinnedHead[nd.Index] = nd.Head
		}
	}
	for _, lk := range s.net.Links {
		if !isActiveRegulator(lk) {
			continue
		}
		v := lk.V
		switch v.SubType {
		case network.PRV:
			s.pinned[lk.To] = true
			s.valvePinned[lk.To] = true
			s.pinnedHead[lk.To] = devices.ValveSetpoint(v.Setting, s.net.Nodes[lk.To].Elevation)
		case network.PSV:
			s.pinned[lk.From] = true
			s.valvePinned[lk.From] = true
			s.pinnedHead[lk.From] = devices.ValveSetpoint(v.Setting, s.net.Nodes[lk.From].Elevation)
		}
	}
}

// checkValveStatus re-evaluates every PRV/PSV's three-state machine
// against the current (H,Q) iterate, per §4.3. Returns true if any
// valve's status changed, signalling the trial should not yet be
// checked for convergence.
func (s *Solver) checkValveStatus() bool {
	changed := false
	for _, lk := range s.net.Links {
		if lk.Kind != network.Valve {
			continue
		}
		v := lk.V
		if v.SubType != network.PRV && v.SubType != network.PSV {
			continue
		}
		q := s.Q[lk.Index]
		h1, h2 := s.H[lk.From], s.H[lk.To]
		var hset float64
		var next network.Status
		if v.SubType == network.PRV {
			hset = devices.ValveSetpoint(v.Setting, s.net.Nodes[lk.To].Elevation)
			next = devices.PRVTransition(lk.Status, q, h1, h2, hset)
		} else {
			hset = devices.ValveSetpoint(v.Setting, s.net.Nodes[lk.From].Elevation)
			next = devices.PSVTransition(lk.Status, q, h1, h2, hset)
		}
		if next != lk.Status {
			lk.Status = next
			lk.StatusChangedThisTrial = true
			changed = true
		} else {
			lk.StatusChangedThisTrial = false
		}
	}
	return changed
}
