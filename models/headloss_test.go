package models

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestHWResistancePositive(tst *testing.T) {
	chk.PrintTitle("Hazen-Williams resistance")
	r := HWResistance(1000, 1.0, 120)
	if r <= 0 {
		tst.Fatalf("expected positive resistance, got %v", r)
	}
}

func TestHazenWilliamsLossSignSymmetry(tst *testing.T) {
	chk.PrintTitle("Hazen-Williams sign symmetry")
	r := HWResistance(1000, 1.0, 120)
	hLossPos, gradPos := HazenWilliamsLoss(r, 0, 2.0)
	hLossNeg, gradNeg := HazenWilliamsLoss(r, 0, -2.0)
	chk.Scalar(tst, "loss antisymmetric", 1e-9, hLossPos, -hLossNeg)
	chk.Scalar(tst, "gradient symmetric", 1e-9, gradPos, gradNeg)
}

func TestHazenWilliamsNearZeroFlow(tst *testing.T) {
	chk.PrintTitle("Hazen-Williams near-zero flow")
	r := HWResistance(1000, 1.0, 120)
	hLoss, hGrad := HazenWilliamsLoss(r, 0, 0)
	chk.Scalar(tst, "headloss at q=0", 1e-15, hLoss, 0)
	if hGrad < MinGradient {
		tst.Fatalf("gradient below floor: %v", hGrad)
	}
}

func TestChezyManningLoss(tst *testing.T) {
	chk.PrintTitle("Chezy-Manning loss")
	r := CMResistance(1000, 1.0, 0.013)
	hLoss, hGrad := ChezyManningLoss(r, 0, 3.0)
	if hLoss <= 0 || hGrad <= 0 {
		tst.Fatalf("expected positive loss and gradient, got %v %v", hLoss, hGrad)
	}
}

func TestClosedLinkStub(tst *testing.T) {
	chk.PrintTitle("closed link stub")
	hLoss, hGrad := ClosedLinkStub(0.5)
	chk.Scalar(tst, "closed stub loss", 1e-9, hLoss, HighResistance*0.5)
	chk.Scalar(tst, "closed stub grad", 1e-9, hGrad, HighResistance)
}

func TestCheckValvePenaltyBlocksReverseFlow(tst *testing.T) {
	chk.PrintTitle("check valve penalty")
	hLoss, hGrad := CheckValvePenalty(-1.0, 0, 0)
	if hLoss >= 0 {
		tst.Fatalf("reverse flow through a check valve must add negative (blocking) head loss, got %v", hLoss)
	}
	if hGrad <= 0 {
		tst.Fatalf("penalty gradient must stay positive for a well-posed Jacobian, got %v", hGrad)
	}
}

func TestDarcyWeisbachLaminarLinear(tst *testing.T) {
	chk.PrintTitle("Darcy-Weisbach laminar regime")
	resistance := DWResistance(1000, 1.0)
	visc := 1.1e-5
	roughE := 0.00085 / 1000.0
	q := 1e-4 // small enough to stay laminar (Re < 2000)
	hLoss, hGrad := DarcyWeisbachLoss(resistance, 0, 1.0, roughE, visc, q)
	hLoss2, _ := DarcyWeisbachLoss(resistance, 0, 1.0, roughE, visc, 2*q)
	chk.Scalar(tst, "laminar linearity", 1e-6, hLoss2, 2*hLoss)
	if hGrad <= 0 {
		tst.Fatalf("expected positive gradient, got %v", hGrad)
	}
}

func TestDarcyWeisbachTurbulentPositive(tst *testing.T) {
	chk.PrintTitle("Darcy-Weisbach turbulent regime")
	resistance := DWResistance(1000, 1.0)
	visc := 1.1e-5
	roughE := 0.00085 / 1000.0
	hLoss, hGrad := DarcyWeisbachLoss(resistance, 0, 1.0, roughE, visc, 5.0)
	if hLoss <= 0 || hGrad <= 0 {
		tst.Fatalf("expected positive turbulent loss and gradient, got %v %v", hLoss, hGrad)
	}
	if math.IsNaN(hLoss) || math.IsNaN(hGrad) {
		tst.Fatalf("turbulent evaluation produced NaN")
	}
}

func TestMinorK(tst *testing.T) {
	chk.PrintTitle("minor loss coefficient")
	k := MinorK(2.0, 1.0)
	if k <= 0 {
		tst.Fatalf("expected positive minor-loss factor, got %v", k)
	}
}
