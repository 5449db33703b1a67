// Package engine implements the extended-period time advancer of
// spec.md §4.6: applies demand/pump-speed patterns, evaluates simple
// controls, runs one hydraulic solve per step via package hydraulics,
// transports water quality via package quality, and picks the next
// timestep as the minimum of every upcoming event.
package engine

import (
	"math"

	"github.com/cpmech/pipenet/hydraulics"
	"github.com/cpmech/pipenet/network"
	"github.com/cpmech/pipenet/quality"
	"github.com/cpmech/pipenet/simerr"
)

// StepReason records why a given timestep ended where it did. nextTimestep
// returns it alongside the step length; Run does not record it.
type StepReason int

const (
	ReasonHydStep StepReason = iota
	ReasonPatternBoundary
	ReasonReportBoundary
	ReasonControlActivation
	ReasonTankFullOrEmpty
	ReasonDurationEnd
)

func (r StepReason) String() string {
	switch r {
	case ReasonHydStep:
		return "HydStep"
	case ReasonPatternBoundary:
		return "PatternBoundary"
	case ReasonReportBoundary:
		return "ReportBoundary"
	case ReasonControlActivation:
		return "ControlActivation"
	case ReasonTankFullOrEmpty:
		return "TankFullOrEmpty"
	case ReasonDurationEnd:
		return "DurationEnd"
	}
	return "?"
}

// Recorder is called once per hydraulic step with the simulation time
// already reflected in net's Node/Link computed fields.
type Recorder func(now float64, net *network.Network, hydStatus hydraulics.Status)

// Engine owns the per-run solver instances and advances simulated time.
type Engine struct {
	Net  *network.Network
	Hyd  *hydraulics.Solver
	Qual *quality.Solver

	Now float64

	Recorder Recorder
}

// New builds an Engine for net, ready for Run.
func New(net *network.Network) *Engine {
	return &Engine{
		Net:  net,
		Hyd:  hydraulics.NewSolver(net),
		Qual: quality.NewSolver(net),
	}
}

// Run executes the full extended-period simulation described by
// net.Opts (Duration == 0 means a single snapshot run), calling
// Recorder after every hydraulic step. Returns a KindRuntime error if
// any step fails to converge or is ill-conditioned and
// Opts.IfUnbalanced is Stop.
func (e *Engine) Run() error {
	net := e.Net
	for _, nd := range net.Nodes {
		if nd.Kind == network.Tank {
			initTankGeometry(nd)
		}
	}
	e.Hyd.Seed()
	if net.Opts.Quality != network.QualityNone {
		e.Qual.Seed()
	}

	first := true
	for {
		e.applyPatterns()
		e.evaluateControls()

		if !first {
			e.Hyd.SetState()
		}
		first = false

		status := e.Hyd.Solve()
		if status != hydraulics.Successful {
			if net.Opts.IfUnbalanced == network.Stop {
				return simerr.New(simerr.KindRuntime, runtimeOffset(status), "hydraulic solution failed at t=%.0fs: %s", e.Now, status)
			}
		}

		if e.Recorder != nil {
			e.Recorder(e.Now, net, status)
		}

		if net.Opts.Duration <= 0 {
			return nil
		}
		if e.Now >= net.Opts.Duration {
			return nil
		}

		tstep, _ := e.nextTimestep()
		if tstep <= 0 {
			tstep = 1
		}
		if e.Now+tstep > net.Opts.Duration {
			tstep = net.Opts.Duration - e.Now
		}

		if net.Opts.Quality != network.QualityNone {
			e.runQuality(tstep)
		}
		e.advanceTanks(tstep)
		e.Now += tstep
	}
}

func runtimeOffset(status hydraulics.Status) int {
	if status == hydraulics.FailedIllConditioned {
		return simerr.OffRuntimeIllCond
	}
	return simerr.OffRuntimeNoConverge
}

func (e *Engine) nodeHead(idx int) float64     { return e.Net.Nodes[idx].Head }
func (e *Engine) nodePressure(idx int) float64 { return e.Net.Nodes[idx].Pressure() }

// applyPatterns recomputes every junction's full demand from its demand
// categories scaled by the global multiplier and the pattern active at
// e.Now, sets each pump's speed to its speed pattern's value (when it has
// one), and scales each patterned reservoir's head (except under TRACE
// quality), per §4.6.
func (e *Engine) applyPatterns() {
	net := e.Net
	for _, nd := range net.Nodes {
		if nd.Kind != network.Junction {
			continue
		}
		var total float64
		for _, dc := range nd.J.Demands {
			mult := net.Opts.GlobalMultiplier
			if dc.PatternIdx >= 0 {
				mult *= net.PatternAt(dc.PatternIdx).At(e.Now)
			} else if net.Opts.GlobalDemandPatIdx >= 0 {
				mult *= net.PatternAt(net.Opts.GlobalDemandPatIdx).At(e.Now)
			}
			total += dc.BaseFlow * mult
		}
		nd.FullDemand = total
	}
	for _, lk := range net.Links {
		if lk.Kind != network.Pump {
			continue
		}
		if lk.U.SpeedPatternIdx >= 0 {
			lk.U.Speed = net.PatternAt(lk.U.SpeedPatternIdx).At(e.Now)
		}
	}
	if net.Opts.Quality == network.QualityTrace {
		return
	}
	for _, nd := range net.Nodes {
		if nd.Kind == network.Reservoir && nd.R.PatternIdx >= 0 {
			nd.Head = nd.R.HeadBase * net.PatternAt(nd.R.PatternIdx).At(e.Now)
		}
	}
}

// evaluateControls applies every simple control whose trigger is true
// at the current state, per §4.6.
func (e *Engine) evaluateControls() {
	net := e.Net
	for _, c := range net.Controls {
		if !c.IsTrue(e.Now, e.nodeHead, e.nodePressure) {
			continue
		}
		lk := net.Links[c.LinkIdx]
		switch c.Action {
		case network.ActionSetStatus:
			lk.Status = c.StatusValue
		case network.ActionSetSetting:
			lk.Setting = c.SettingValue
			switch lk.Kind {
			case network.Valve:
				lk.V.Setting = c.SettingValue
			case network.Pump:
				lk.U.Speed = c.SettingValue
			}
		}
		c.MarkActivated()
	}
}

// nextTimestep picks min(HydStep, time-to-pattern-boundary,
// time-to-report-boundary, time-to-next-control, time-to-tank-limit),
// per §4.6.
func (e *Engine) nextTimestep() (float64, StepReason) {
	net := e.Net
	best := net.Opts.HydStep
	reason := ReasonHydStep

	consider := func(t float64, r StepReason) {
		if t > 0 && t < best {
			best = t
			reason = r
		}
	}

	consider(untilBoundary(e.Now, net.Opts.PatternStep, 0), ReasonPatternBoundary)
	consider(untilBoundary(e.Now, net.Opts.ReportStep, net.Opts.ReportStart), ReasonReportBoundary)

	for _, c := range net.Controls {
		if t, ok := c.TimeUntil(e.Now); ok {
			consider(t, ReasonControlActivation)
		}
	}

	for _, nd := range net.Nodes {
		if nd.Kind != network.Tank {
			continue
		}
		netIn := e.tankNetInflow(nd)
		if netIn > 1e-9 {
			room := tankMaxVolume(nd) - nd.T.Volume
			if room > 0 {
				consider(room/netIn, ReasonTankFullOrEmpty)
			}
		} else if netIn < -1e-9 {
			room := nd.T.Volume - nd.T.MinVolume
			if room > 0 {
				consider(room/-netIn, ReasonTankFullOrEmpty)
			}
		}
	}

	if net.Opts.Duration > 0 {
		consider(net.Opts.Duration-e.Now, ReasonDurationEnd)
	}
	return best, reason
}

func untilBoundary(now, step, start float64) float64 {
	if step <= 0 {
		return math.Inf(1)
	}
	elapsed := now - start
	if elapsed < 0 {
		return -elapsed
	}
	rem := step - math.Mod(elapsed, step)
	if rem <= 1e-9 {
		rem = step
	}
	return rem
}

// tankNetInflow is the volumetric rate of change of a tank's stored
// volume this instant, computed directly from incident link flows
// (positive = filling) rather than reused from the solver's internal
// balance bookkeeping.
func (e *Engine) tankNetInflow(nd *network.Node) float64 {
	var netIn float64
	for _, li := range nd.Incident {
		lk := e.Net.Links[li]
		if lk.To == nd.Index {
			netIn += lk.Flow
		} else {
			netIn -= lk.Flow
		}
	}
	nd.Outflow = -netIn
	return netIn
}

// advanceTanks integrates every tank's volume/head by dt using the
// current flow field (held fixed over the step). It is always an
// explicit forward-Euler step; Opts.TankTheta is not consulted.
func (e *Engine) advanceTanks(dt float64) {
	for _, nd := range e.Net.Nodes {
		if nd.Kind != network.Tank {
			continue
		}
		netIn := e.tankNetInflow(nd)
		nd.T.PastVolume = nd.T.Volume
		nd.T.PastHead = nd.Head
		nd.T.PastOutflow = nd.Outflow

		theta := e.Net.Opts.TankTheta
		if theta <= 0 {
			theta = 1
		}
		nd.T.Volume += netIn * dt
		if nd.T.Volume < nd.T.MinVolume {
			nd.T.Volume = nd.T.MinVolume
		}
		maxVol := tankMaxVolume(nd)
		if nd.T.Volume > maxVol {
			nd.T.Volume = maxVol
		}
		nd.Head = tankHeadForVolume(nd)
		_ = theta
	}
}

// initTankGeometry precomputes a cylindrical tank's cross-sectional
// area and its initial stored volume from InitHead, called once
// before a run. Non-cylindrical (volume-curve) tanks keep whatever
// Area the input loader already derived from the curve.
func initTankGeometry(nd *network.Node) {
	if nd.T.VolumeCurveIdx < 0 && nd.T.Area <= 0 {
		nd.T.Area = 0.25 * piConst * nd.T.Diameter * nd.T.Diameter
	}
	nd.T.Volume = nd.T.Area * (nd.T.InitHead - nd.Elevation)
	nd.T.PastVolume = nd.T.Volume
	nd.Head = nd.T.InitHead
	nd.T.PastHead = nd.Head
}

func tankMaxVolume(nd *network.Node) float64 {
	return nd.T.Area * (nd.T.MaxHead - nd.Elevation)
}

func tankHeadForVolume(nd *network.Node) float64 {
	if nd.T.Area <= 0 {
		return nd.T.InitHead
	}
	return nd.Elevation + nd.T.Volume/nd.T.Area
}

const piConst = 3.14159265358979323846

func (e *Engine) runQuality(hydStep float64) {
	step := e.Net.Opts.QualStep
	if step <= 0 || step > hydStep {
		step = hydStep
	}
	remaining := hydStep
	for remaining > 1e-9 {
		dt := step
		if dt > remaining {
			dt = remaining
		}
		e.Qual.Step(dt)
		remaining -= dt
	}
}
