package hydraulics

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/pipenet/models"
	"github.com/cpmech/pipenet/network"
)

// singlePipeNetwork builds a scenario-A-style network: one reservoir
// feeding one junction through a single Hazen-Williams pipe with a fixed
// demand (C=120 here rather than scenario A's 100).
func singlePipeNetwork(demand float64) *network.Network {
	net := network.New()
	r, _ := net.AddNode("R1", network.Reservoir)
	r.R = &network.ReservoirData{HeadBase: 100, PatternIdx: -1}
	j, _ := net.AddNode("J1", network.Junction)
	j.Elevation = 0
	j.J = &network.JunctionData{
		Demands: []network.DemandCategory{{BaseFlow: demand, PatternIdx: -1}},
	}
	j.FullDemand = demand
	lk, _ := net.AddLink("P1", network.Pipe, "R1", "J1")
	lk.P = &network.PipeData{Length: 1000, Diameter: 1.0}
	lk.P.Resistance = models.HWResistance(1000, 1.0, 120)
	return net
}

func TestSingplePipeSolveConverges(tst *testing.T) {
	chk.PrintTitle("single-pipe network solves successfully")
	net := singlePipeNetwork(1.0) // 1 cfs demand
	s := NewSolver(net)
	s.Seed()
	status := s.Solve()
	if status != Successful {
		tst.Fatalf("expected a successful solve, got %v", status)
	}
}

func TestSinglePipeMassBalance(tst *testing.T) {
	chk.PrintTitle("single-pipe network satisfies continuity")
	net := singlePipeNetwork(1.0)
	s := NewSolver(net)
	s.Seed()
	if status := s.Solve(); status != Successful {
		tst.Fatalf("solve failed: %v", status)
	}
	j, _ := net.NodeByID("J1")
	lk, _ := net.LinkByID("P1")
	chk.Scalar(tst, "pipe flow equals junction demand", 1e-6, lk.Flow, j.ActualDemand)
}

func TestSinglePipeHeadLossConsistency(tst *testing.T) {
	chk.PrintTitle("single-pipe head loss matches the Hazen-Williams model")
	net := singlePipeNetwork(1.0)
	s := NewSolver(net)
	s.Seed()
	if status := s.Solve(); status != Successful {
		tst.Fatalf("solve failed: %v", status)
	}
	r, _ := net.NodeByID("R1")
	j, _ := net.NodeByID("J1")
	lk, _ := net.LinkByID("P1")
	expectedLoss, _ := models.HazenWilliamsLoss(lk.P.Resistance, lk.P.MinorK, lk.Flow)
	actualLoss := r.Head - j.Head
	chk.Scalar(tst, "head loss consistency", 1e-6, actualLoss, expectedLoss)
}

func TestSinglePipeHigherDemandMeansMoreHeadLoss(tst *testing.T) {
	chk.PrintTitle("higher demand produces more head loss")
	netLow := singlePipeNetwork(0.5)
	sLow := NewSolver(netLow)
	sLow.Seed()
	sLow.Solve()
	lowLoss := netLow.Nodes[0].Head - netLow.Nodes[1].Head

	netHigh := singlePipeNetwork(2.0)
	sHigh := NewSolver(netHigh)
	sHigh.Seed()
	sHigh.Solve()
	highLoss := netHigh.Nodes[0].Head - netHigh.Nodes[1].Head

	if highLoss <= lowLoss {
		tst.Fatalf("expected higher demand to produce more head loss: low=%v high=%v", lowLoss, highLoss)
	}
}

// activePRVNetwork builds scenario C: a reservoir feeding a PRV through a
// short low-resistance pipe, regulating down to a junction demand.
func activePRVNetwork() *network.Network {
	net := network.New()
	r, _ := net.AddNode("R1", network.Reservoir)
	r.R = &network.ReservoirData{HeadBase: 200, PatternIdx: -1}
	n1, _ := net.AddNode("N1", network.Junction)
	n1.Elevation = 0
	n1.J = &network.JunctionData{Demands: []network.DemandCategory{{PatternIdx: -1}}}
	j, _ := net.AddNode("J1", network.Junction)
	j.Elevation = 0
	j.J = &network.JunctionData{
		Demands: []network.DemandCategory{{BaseFlow: 0.5, PatternIdx: -1}},
	}
	j.FullDemand = 0.5
	p1, _ := net.AddLink("P1", network.Pipe, "R1", "N1")
	p1.P = &network.PipeData{Length: 100, Diameter: 1.0}
	p1.P.Resistance = models.HWResistance(100, 1.0, 120)
	v1, _ := net.AddLink("V1", network.Valve, "N1", "J1")
	v1.V = &network.ValveData{SubType: network.PRV, Setting: 115.5, MinorK: 0.001}
	return net
}

func TestActivePRVPinsDownstreamHeadToSetpoint(tst *testing.T) {
	chk.PrintTitle("active PRV pins its downstream node to the pressure setpoint")
	net := activePRVNetwork()
	s := NewSolver(net)
	s.Seed()
	status := s.Solve()
	if status != Successful {
		tst.Fatalf("expected a successful solve, got %v", status)
	}
	v1, _ := net.LinkByID("V1")
	if v1.Status != network.Active {
		tst.Fatalf("expected the PRV to end Active, got %v", v1.Status)
	}
	j, _ := net.NodeByID("J1")
	chk.Scalar(tst, "PRV downstream head pinned to setpoint", 1e-3, j.Head, 115.5)
}

func TestActivePRVUpstreamHeadExceedsSetpoint(tst *testing.T) {
	chk.PrintTitle("active PRV's upstream node is not dragged down to the setpoint")
	net := activePRVNetwork()
	s := NewSolver(net)
	s.Seed()
	if status := s.Solve(); status != Successful {
		tst.Fatalf("expected a successful solve, got %v", status)
	}
	n1, _ := net.NodeByID("N1")
	if n1.Head <= 115.5+1.0 {
		tst.Fatalf("expected the PRV's upstream head to stay well above the setpoint, got %v", n1.Head)
	}
}

func TestClosedPipePinsFlowNearZero(tst *testing.T) {
	chk.PrintTitle("closed link pins flow near zero")
	net := singlePipeNetwork(1.0)
	lk, _ := net.LinkByID("P1")
	lk.Status = network.Closed
	s := NewSolver(net)
	s.Seed()
	s.Solve()
	if math.Abs(lk.Flow) > 1e-3 {
		tst.Fatalf("expected near-zero flow through a closed pipe, got %v", lk.Flow)
	}
}
