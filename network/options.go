package network

import "github.com/cpmech/pipenet/units"

// HeadLossKind selects one of the three head-loss relations of §4.2.
type HeadLossKind int

const (
	HazenWilliams HeadLossKind = iota
	DarcyWeisbach
	ChezyManning
)

// DemandKind selects one of the four demand models of §4.2.
type DemandKind int

const (
	FixedDemand DemandKind = iota
	ConstrainedDemand
	PowerDemand
	LogisticDemand
)

// LeakageKind selects one of the two leakage models of §4.2, or none.
type LeakageKind int

const (
	NoLeakage LeakageKind = iota
	PowerLeakage
	FAVADLeakage
)

// StepPolicy selects one of the §4.5 damping strategies.
type StepPolicy int

const (
	Full StepPolicy = iota
	Relaxation
	LineSearch
)

// QualityKind selects what the quality solver transports, per §4.2/§4.8.
type QualityKind int

const (
	QualityNone QualityKind = iota
	QualityChemical
	QualityAge
	QualityTrace
)

// IfUnbalancedAction selects the Runtime non-convergence policy of §7.
type IfUnbalancedAction int

const (
	Stop IfUnbalancedAction = iota
	Continue
)

// Options is the project-wide settings bag populated from the
// [OPTIONS]/[TIMES]/[REPORT]/[QUALITY] input sections, mirroring
// EPANET's datamanager.cpp Options, as documented in SPEC_FULL.md's
// "Supplemented features" section.
type Options struct {
	Units units.Factors

	HeadLoss  HeadLossKind
	Demand    DemandKind
	Leakage   LeakageKind
	StepSize  StepPolicy
	TankTheta float64 // theta in {0} U [0.5, 1]

	HydStep    float64 // seconds
	QualStep   float64 // seconds, capped at HydStep
	PatternStep float64 // seconds, default pattern interval if unspecified
	ReportStep  float64
	ReportStart float64
	Duration    float64

	HeadTolerance float64
	FlowTolerance float64
	MaxTrials     int

	IfUnbalanced IfUnbalancedAction

	Quality     QualityKind
	TraceNodeIdx int // -1 unless Quality == QualityTrace

	GlobalMultiplier   float64
	GlobalDemandPatIdx int // -1 if none

	DiffusivityOrder float64 // reaction-kinetics order default, for convenience
}

// DefaultOptions returns the EPANET-style defaults used when a section
// is silent on a field.
func DefaultOptions() Options {
	return Options{
		Units:              units.NewFactors(units.GPM),
		HeadLoss:           HazenWilliams,
		Demand:             FixedDemand,
		Leakage:            NoLeakage,
		StepSize:           Relaxation,
		TankTheta:          1.0,
		HydStep:            3600,
		QualStep:           300,
		PatternStep:        3600,
		ReportStep:         3600,
		ReportStart:        0,
		Duration:           0,
		HeadTolerance:      0.01,
		FlowTolerance:      0.001,
		MaxTrials:          40,
		IfUnbalanced:       Continue,
		Quality:            QualityNone,
		TraceNodeIdx:       -1,
		GlobalMultiplier:   1.0,
		GlobalDemandPatIdx: -1,
	}
}
