// Package models implements the stateless constitutive relations of
// spec.md §4.2: head-loss, demand, leakage and reaction models. Every
// function here is pure given its inputs, returning both a value and its
// local gradient so Newton assembly in package hydraulics stays O(1) per
// link/node.
package models

const (
	// MinGradient is the floor below which a head-loss gradient is
	// clamped to keep the Jacobian well-conditioned near q=0.
	MinGradient = 1e-6
	// HighResistance pins a closed link's flow to zero without making
	// the system matrix singular.
	HighResistance = 1e8
	// HeadEpsilon is the smoothing epsilon of the check-valve penalty.
	HeadEpsilon = 1e-6
	// ZeroFlow is the flow magnitude below which a flow is treated as
	// zero for status-change and check-valve purposes.
	ZeroFlow = 1e-6
	// GravityFtS2 is g in ft/s^2, used by the FAVAD leakage model.
	GravityFtS2 = 32.174
)
