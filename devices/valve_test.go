package devices

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/pipenet/network"
)

func TestFCVHeadLossBelowSetting(tst *testing.T) {
	chk.PrintTitle("FCV below setpoint behaves as open")
	hLoss, hGrad := FCVHeadLoss(0.01, 10, 5)
	if hLoss <= 0 || hGrad <= 0 {
		tst.Fatalf("expected small positive open-style loss, got %v %v", hLoss, hGrad)
	}
}

func TestFCVHeadLossAboveSettingPinsFlow(tst *testing.T) {
	chk.PrintTitle("FCV above setpoint pins flow via high resistance")
	_, hGradBelow := FCVHeadLoss(0.01, 10, 9.9)
	hLossAbove, hGradAbove := FCVHeadLoss(0.01, 10, 15)
	if hGradAbove <= hGradBelow {
		tst.Fatalf("expected overflow gradient to dominate: below=%v above=%v", hGradBelow, hGradAbove)
	}
	if hLossAbove <= 0 {
		tst.Fatalf("expected positive penalty loss above setpoint, got %v", hLossAbove)
	}
}

func TestPBVHeadLossUsesSettingWhenOpenLossIsSmall(tst *testing.T) {
	chk.PrintTitle("PBV pins loss to its setting at low flow")
	hLoss, _ := PBVHeadLoss(0.01, 20, 0.1)
	chk.Scalar(tst, "pinned loss", 1e-15, hLoss, 20)
}

func TestGPVHeadLossNilCurveIsClosedStub(tst *testing.T) {
	chk.PrintTitle("GPV with no curve behaves as closed")
	hLoss, hGrad := GPVHeadLoss(nil, 1.0)
	if hLoss <= 0 || hGrad <= 0 {
		tst.Fatalf("expected closed-stub behavior, got %v %v", hLoss, hGrad)
	}
}

func TestGPVHeadLossFollowsCurve(tst *testing.T) {
	chk.PrintTitle("GPV follows its head-loss curve")
	c := &network.Curve{X: []float64{0, 10, 20}, Y: []float64{0, 5, 30}}
	hLoss, hGrad := GPVHeadLoss(c, 5)
	chk.Scalar(tst, "interpolated loss", 1e-9, hLoss, 2.5)
	if hGrad <= 0 {
		tst.Fatalf("expected positive gradient, got %v", hGrad)
	}
}

func TestPRVTransitionClosesOnReverseFlow(tst *testing.T) {
	chk.PrintTitle("PRV closes on reverse flow")
	status := PRVTransition(network.Active, -1.0, 100, 80, 90)
	if status != network.Closed {
		tst.Fatalf("expected Closed, got %v", status)
	}
}

func TestPRVTransitionOpensWhenUpstreamBelowSetpoint(tst *testing.T) {
	chk.PrintTitle("PRV opens fully when upstream head can't support the setpoint")
	status := PRVTransition(network.Active, 1.0, 80, 70, 90)
	if status != network.Open {
		tst.Fatalf("expected Open, got %v", status)
	}
}

func TestPRVTransitionStaysActive(tst *testing.T) {
	chk.PrintTitle("PRV remains active under normal conditions")
	status := PRVTransition(network.Active, 1.0, 100, 90, 90)
	if status != network.Active {
		tst.Fatalf("expected Active, got %v", status)
	}
}

func TestPSVTransitionClosesOnReverseFlow(tst *testing.T) {
	chk.PrintTitle("PSV closes on reverse flow")
	status := PSVTransition(network.Active, -1.0, 100, 80, 90)
	if status != network.Closed {
		tst.Fatalf("expected Closed, got %v", status)
	}
}

func TestValveSetpoint(tst *testing.T) {
	chk.PrintTitle("valve setpoint is setting plus node elevation")
	chk.Scalar(tst, "setpoint", 1e-15, ValveSetpoint(30, 500), 530)
}
