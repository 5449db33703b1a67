// Package units implements pipenet's canonical unit system and the
// user<->internal conversion factors described in spec.md §4.9. Internally
// every quantity is carried in cubic feet per second (flow), feet (length,
// head), cubic feet (volume), and mass per cubic foot (concentration);
// conversion happens exactly once on load and once on report.
package units

import "strings"

// System is the derived US/SI unit system, selected by the flow unit
// keyword in the [OPTIONS] section.
type System int

const (
	US System = iota
	SI
)

// FlowUnit enumerates the recognized EPANET-style flow unit keywords.
type FlowUnit int

const (
	CFS FlowUnit = iota // cubic feet / second (US)
	GPM                 // gallons / minute (US)
	MGD                 // million gallons / day (US)
	IMGD                // imperial MGD (US)
	AFD                 // acre-feet / day (US)
	LPS                 // liters / second (SI)
	LPM                 // liters / minute (SI)
	MLD                 // million liters / day (SI)
	CMH                 // cubic meters / hour (SI)
	CMD                 // cubic meters / day (SI)
)

var flowKeywords = map[string]FlowUnit{
	"CFS": CFS, "GPM": GPM, "MGD": MGD, "IMGD": IMGD, "AFD": AFD,
	"LPS": LPS, "LPM": LPM, "MLD": MLD, "CMH": CMH, "CMD": CMD,
}

// ParseFlowUnit resolves a case-insensitive flow unit keyword.
func ParseFlowUnit(s string) (FlowUnit, bool) {
	fu, ok := flowKeywords[strings.ToUpper(s)]
	return fu, ok
}

// SystemOf derives US vs SI from the flow unit, per spec.md §4.9.
func SystemOf(fu FlowUnit) System {
	switch fu {
	case CFS, GPM, MGD, IMGD, AFD:
		return US
	default:
		return SI
	}
}

// flowToCFS converts 1 unit of the given FlowUnit into cubic feet/second.
var flowToCFS = map[FlowUnit]float64{
	CFS:  1.0,
	GPM:  1.0 / 448.831,
	MGD:  1.5472,
	IMGD: 1.8581,
	AFD:  0.50417,
	LPS:  0.035315,
	LPM:  0.035315 / 60.0,
	MLD:  0.40873,
	CMH:  0.0098096,
	CMD:  0.00040873,
}

// Factors holds every conversion factor derived from the chosen flow unit,
// set up once at project load, mirroring the table in spec.md §4.9.
type Factors struct {
	Flow       FlowUnit
	Sys        System
	FlowToCFS  float64 // multiply user flow -> internal cfs
	LengthToFt float64 // multiply user length -> internal ft (1 or 0.3048)
	DiamToFt   float64 // multiply user pipe diameter -> internal ft
	PressToPSI float64 // multiply user pressure -> psi (independent axis)
	VolToCF    float64 // multiply user volume -> internal ft^3
	// roughness for Darcy-Weisbach is supplied in user units of
	// millifeet (US) or millimeters (SI); RoughToFt converts that to feet.
	RoughToFt float64
}

// NewFactors builds the Factors table for the given flow unit, as
// spec.md §4.9 describes: "the unit conversion factors table is set up
// from the chosen flow unit".
func NewFactors(fu FlowUnit) Factors {
	sys := SystemOf(fu)
	f := Factors{Flow: fu, Sys: sys, FlowToCFS: flowToCFS[fu]}
	if sys == US {
		f.LengthToFt = 1.0
		f.DiamToFt = 1.0 / 12.0 // pipe diameters given in inches (US)
		f.VolToCF = 1.0
		f.RoughToFt = 1.0 / 1000.0 // millifeet
	} else {
		f.LengthToFt = 3.28084 // meters -> feet
		f.DiamToFt = 3.28084 / 1000.0 // millimeters -> feet
		f.VolToCF = 35.3147
		f.RoughToFt = 3.28084 / 1000.0 // millimeters -> feet
	}
	f.PressToPSI = 1.0
	if sys == SI {
		f.PressToPSI = 1.0 / 0.70307 // meters of head -> psi (1 psi = 0.70307 m of water)
	}
	return f
}

// ToInternalFlow converts a user-unit flow into internal cfs.
func (f Factors) ToInternalFlow(q float64) float64 { return q * f.FlowToCFS }

// ToUserFlow is the inverse of ToInternalFlow.
func (f Factors) ToUserFlow(q float64) float64 { return q / f.FlowToCFS }

// ToInternalLength converts user length/elevation/head into internal feet.
func (f Factors) ToInternalLength(v float64) float64 { return v * f.LengthToFt }

// ToUserLength is the inverse of ToInternalLength.
func (f Factors) ToUserLength(v float64) float64 { return v / f.LengthToFt }

// ToInternalDiam converts a user pipe/tank diameter into internal feet.
func (f Factors) ToInternalDiam(d float64) float64 { return d * f.DiamToFt }

// ToUserDiam is the inverse of ToInternalDiam.
func (f Factors) ToUserDiam(d float64) float64 { return d / f.DiamToFt }

// ToInternalVolume converts a user volume into internal cubic feet.
func (f Factors) ToInternalVolume(v float64) float64 { return v * f.VolToCF }

// ToUserVolume is the inverse of ToInternalVolume.
func (f Factors) ToUserVolume(v float64) float64 { return v / f.VolToCF }

// ToInternalRough converts a Darcy-Weisbach roughness height (millifeet or
// millimeters, per §4.9) into internal feet.
func (f Factors) ToInternalRough(e float64) float64 { return e * f.RoughToFt }

// HeadToPSI converts internal feet of head to psi for a PRV/PSV/PBV
// pressure setting round-trip; pressure unit is independent of flow unit
// per spec.md §4.9.
func HeadToPSI(headFt float64) float64 { return headFt * 0.4333 }

// PSIToHead converts a psi setting to internal feet of head.
func PSIToHead(psi float64) float64 { return psi / 0.4333 }
