package models

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestFixedDemandIgnoresPressure(tst *testing.T) {
	chk.PrintTitle("fixed demand")
	d, grad := Demand(FixedDemand, 10, -5, 0, 20, 0.5)
	chk.Scalar(tst, "fixed demand value", 1e-15, d, 10)
	chk.Scalar(tst, "fixed demand gradient", 1e-15, grad, 0)
}

func TestPowerDemandBounds(tst *testing.T) {
	chk.PrintTitle("power demand bounds")
	dBelow, _ := Demand(PowerDemand, 10, 0, 10, 30, 0.5)
	chk.Scalar(tst, "below pMin is zero", 1e-15, dBelow, 0)
	dAbove, gradAbove := Demand(PowerDemand, 10, 40, 10, 30, 0.5)
	chk.Scalar(tst, "above pFull is full demand", 1e-15, dAbove, 10)
	chk.Scalar(tst, "above pFull has zero gradient", 1e-15, gradAbove, 0)
	dMid, gradMid := Demand(PowerDemand, 10, 20, 10, 30, 0.5)
	if dMid <= 0 || dMid >= 10 {
		tst.Fatalf("expected demand strictly between 0 and full, got %v", dMid)
	}
	if gradMid <= 0 {
		tst.Fatalf("expected positive gradient in the transition zone, got %v", gradMid)
	}
}

func TestLogisticDemandMonotone(tst *testing.T) {
	chk.PrintTitle("logistic demand monotonicity")
	_, g1 := logisticDemand(10, 15, 10, 30)
	_, g2 := logisticDemand(10, 20, 10, 30)
	if g1 <= 0 || g2 <= 0 {
		tst.Fatalf("expected positive gradient throughout the transition, got %v %v", g1, g2)
	}
}

func TestEmitterNegativeHeadIsZero(tst *testing.T) {
	chk.PrintTitle("emitter at non-positive head")
	q, grad := Emitter(5, 0.5, -1)
	chk.Scalar(tst, "emitter flow at negative head", 1e-15, q, 0)
	chk.Scalar(tst, "emitter gradient at negative head", 1e-15, grad, 0)
}

func TestEmitterPositiveHead(tst *testing.T) {
	chk.PrintTitle("emitter at positive head")
	q, grad := Emitter(5, 0.5, 4)
	if q <= 0 || grad <= 0 {
		tst.Fatalf("expected positive flow and gradient, got %v %v", q, grad)
	}
}
