package network

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func reservoirJunctionPipe() *Network {
	n := New()
	n.AddNode("R1", Reservoir)
	n.AddNode("J1", Junction)
	n.Nodes[1].J = &JunctionData{}
	n.AddLink("P1", Pipe, "R1", "J1")
	return n
}

func TestValidateEmptyNetwork(tst *testing.T) {
	chk.PrintTitle("validate rejects an empty network")
	n := New()
	errs := n.Validate()
	if len(errs) == 0 {
		tst.Fatalf("expected an error for a network with no nodes")
	}
}

func TestValidateNoFixedGradeNode(tst *testing.T) {
	chk.PrintTitle("validate requires at least one fixed-grade node")
	n := New()
	n.AddNode("J1", Junction)
	n.AddNode("J2", Junction)
	n.AddLink("P1", Pipe, "J1", "J2")
	errs := n.Validate()
	found := false
	for _, e := range errs {
		if e != nil {
			found = true
		}
	}
	if !found {
		tst.Fatalf("expected at least one validation error")
	}
}

func TestValidateGoodNetworkPasses(tst *testing.T) {
	chk.PrintTitle("validate accepts a well-formed network")
	n := reservoirJunctionPipe()
	errs := n.Validate()
	if len(errs) != 0 {
		tst.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestValidateUnconnectedNodeDetected(tst *testing.T) {
	chk.PrintTitle("validate detects a node unreachable from any fixed-grade node")
	n := reservoirJunctionPipe()
	nd, _ := n.AddNode("J2", Junction)
	nd.J = &JunctionData{}
	n.AddNode("J3", Junction)
	n.Nodes[3].J = &JunctionData{}
	n.AddLink("P2", Pipe, "J2", "J3")
	errs := n.Validate()
	if len(errs) == 0 {
		tst.Fatalf("expected an unconnected-node error")
	}
}

func TestValidateTankLevelOrdering(tst *testing.T) {
	chk.PrintTitle("validate rejects an inconsistent tank level ordering")
	n := New()
	n.AddNode("R1", Reservoir)
	tk, _ := n.AddNode("T1", Tank)
	tk.T = &TankData{MinHead: 100, InitHead: 50, MaxHead: 120, VolumeCurveIdx: -1}
	n.AddLink("P1", Pipe, "R1", "T1")
	errs := n.Validate()
	if len(errs) == 0 {
		tst.Fatalf("expected a tank-level ordering error")
	}
}

func TestValidatePRVDownstreamCannotBeFixedGrade(tst *testing.T) {
	chk.PrintTitle("validate rejects a PRV discharging into a reservoir")
	n := New()
	n.AddNode("R1", Reservoir)
	n.AddNode("R2", Reservoir)
	lk, _ := n.AddLink("V1", Valve, "R1", "R2")
	lk.V = &ValveData{SubType: PRV, CurveIdx: -1}
	errs := n.Validate()
	if len(errs) == 0 {
		tst.Fatalf("expected a PRV-connectivity error")
	}
}

func TestValidateGPVMissingCurve(tst *testing.T) {
	chk.PrintTitle("validate rejects a GPV with no head-loss curve")
	n := New()
	n.AddNode("R1", Reservoir)
	n.AddNode("J1", Junction)
	n.Nodes[1].J = &JunctionData{}
	lk, _ := n.AddLink("V1", Valve, "R1", "J1")
	lk.V = &ValveData{SubType: GPV, CurveIdx: -1}
	errs := n.Validate()
	if len(errs) == 0 {
		tst.Fatalf("expected a missing-curve error for GPV")
	}
}
