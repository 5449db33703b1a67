package devices

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/pipenet/network"
)

func TestDerivePumpCoeffsSinglePoint(tst *testing.T) {
	chk.PrintTitle("single-point pump curve coefficients")
	net := network.New()
	net.AddCurve(&network.Curve{ID: "C1", Kind: network.CurvePump, X: []float64{10}, Y: []float64{100}})
	p := &network.PumpData{CurveKind: network.SinglePoint, CurveIdx: 0}
	DerivePumpCoeffs(p, net)
	chk.Scalar(tst, "shutoff head", 1e-9, p.ShutoffHead, 133.3)
	chk.Scalar(tst, "max flow", 1e-9, p.MaxFlow, 20)
	if p.R <= 0 {
		tst.Fatalf("expected positive R coefficient, got %v", p.R)
	}
}

func TestDerivePumpCoeffsThreePoint(tst *testing.T) {
	chk.PrintTitle("three-point pump curve coefficients")
	net := network.New()
	net.AddCurve(&network.Curve{ID: "C1", Kind: network.CurvePump,
		X: []float64{0, 10, 20}, Y: []float64{150, 120, 60}})
	p := &network.PumpData{CurveKind: network.ThreePoint, CurveIdx: 0}
	DerivePumpCoeffs(p, net)
	chk.Scalar(tst, "shutoff head", 1e-9, p.H0, 150)
	if p.N <= 0 || p.R <= 0 {
		tst.Fatalf("expected positive N and R, got N=%v R=%v", p.N, p.R)
	}
}

func TestPumpHeadGainDecreasesWithFlow(tst *testing.T) {
	chk.PrintTitle("pump head gain decreases as flow increases")
	net := network.New()
	p := &network.PumpData{CurveKind: network.ThreePoint, H0: 150, R: 0.03, N: 2}
	_, _ = net, p
	gainLow, _ := PumpHeadGain(p, net, 5, 1.0)
	gainHigh, _ := PumpHeadGain(p, net, 15, 1.0)
	if -gainHigh >= -gainLow {
		tst.Fatalf("expected head gain to fall off at higher flow: low=%v high=%v", -gainLow, -gainHigh)
	}
}

func TestPumpHeadGainZeroSpeedIsClosedStub(tst *testing.T) {
	chk.PrintTitle("pump at zero speed behaves as a closed link")
	net := network.New()
	p := &network.PumpData{CurveKind: network.ThreePoint, H0: 150, R: 0.03, N: 2}
	hLoss, hGrad := PumpHeadGain(p, net, 1.0, 0)
	if hLoss <= 0 || hGrad <= 0 {
		tst.Fatalf("expected a closed-stub-style positive loss and gradient, got %v %v", hLoss, hGrad)
	}
}

func TestSpeedScale(tst *testing.T) {
	chk.PrintTitle("affinity-law speed scaling")
	h0s, rs := SpeedScale(150, 0.03, 2, 0.5)
	chk.Scalar(tst, "h0 scaling", 1e-9, h0s, 150*0.25)
	chk.Scalar(tst, "r scaling", 1e-9, rs, 0.03)
}

func TestSpeedScaleZeroSpeed(tst *testing.T) {
	chk.PrintTitle("zero speed collapses curve coefficients to zero")
	h0s, rs := SpeedScale(150, 0.03, 2, 0)
	chk.Scalar(tst, "h0 at zero speed", 1e-15, h0s, 0)
	chk.Scalar(tst, "r at zero speed", 1e-15, rs, 0)
}

func TestPumpEvaluateClosedStatus(tst *testing.T) {
	chk.PrintTitle("pump evaluate when closed")
	net := network.New()
	net.AddNode("A", network.Junction)
	net.AddNode("B", network.Junction)
	lk, _ := net.AddLink("PU1", network.Pump, "A", "B")
	lk.U = &network.PumpData{CurveKind: network.ThreePoint, H0: 150, R: 0.03, N: 2, Speed: 1.0}
	lk.Status = network.Closed
	hLoss, hGrad := PumpEvaluate(lk, net, 2.0)
	if hLoss <= 0 || hGrad <= 0 {
		tst.Fatalf("expected closed-stub behavior, got %v %v", hLoss, hGrad)
	}
}

func TestPumpEfficiencyDefaultWithoutCurve(tst *testing.T) {
	chk.PrintTitle("pump efficiency default with no efficiency curve")
	net := network.New()
	p := &network.PumpData{EfficiencyCurve: -1}
	eff := PumpEfficiency(p, net, 5.0)
	chk.Scalar(tst, "default efficiency", 1e-15, eff, 0.65)
}

func TestPumpEfficiencyFromPercentCurve(tst *testing.T) {
	chk.PrintTitle("pump efficiency from a percent-authored curve")
	net := network.New()
	net.AddCurve(&network.Curve{ID: "E1", Kind: network.CurveEfficiency, X: []float64{0, 10}, Y: []float64{0, 80}})
	p := &network.PumpData{EfficiencyCurve: 0}
	eff := PumpEfficiency(p, net, 10)
	chk.Scalar(tst, "percent-normalized efficiency", 1e-9, eff, 0.8)
}
