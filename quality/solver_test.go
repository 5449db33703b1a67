package quality

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/pipenet/network"
)

// tracerNetwork builds a reservoir -> junction -> junction chain with a
// steady forward flow already assigned, for exercising quality transport
// without running the hydraulic solver.
func tracerNetwork() *network.Network {
	net := network.New()
	r, _ := net.AddNode("R1", network.Reservoir)
	r.Quality = 5.0
	j1, _ := net.AddNode("J1", network.Junction)
	j1.J = &network.JunctionData{}
	j2, _ := net.AddNode("J2", network.Junction)
	j2.J = &network.JunctionData{}
	j2.ActualDemand = 1.0

	lk1, _ := net.AddLink("P1", network.Pipe, "R1", "J1")
	lk1.P = &network.PipeData{Length: 100, Diameter: 1.0}
	lk1.Flow = 1.0

	lk2, _ := net.AddLink("P2", network.Pipe, "J1", "J2")
	lk2.P = &network.PipeData{Length: 100, Diameter: 1.0}
	lk2.Flow = 1.0

	net.Opts = network.DefaultOptions()
	net.Opts.Quality = network.QualityChemical
	return net
}

func TestSeedAppliesJunctionInitQuality(tst *testing.T) {
	chk.PrintTitle("quality solver: Seed applies each junction's initial quality")
	net := tracerNetwork()
	j1, _ := net.NodeByID("J1")
	j1.J.InitQuality = 2.5
	s := NewSolver(net)
	s.Seed()
	chk.Scalar(tst, "seeded junction quality", 1e-15, j1.Quality, 2.5)
}

func TestStepPropagatesReservoirQualityDownstream(tst *testing.T) {
	chk.PrintTitle("quality solver: a reservoir's quality advects downstream over repeated steps")
	net := tracerNetwork()
	s := NewSolver(net)
	s.Seed()
	j1, _ := net.NodeByID("J1")
	j2, _ := net.NodeByID("J2")
	// enough substeps to fully flush both pipe volumes at 1 cfs.
	for i := 0; i < 2000; i++ {
		s.Step(1.0)
	}
	chk.Scalar(tst, "J1 reaches reservoir quality", 1e-6, j1.Quality, 5.0)
	chk.Scalar(tst, "J2 reaches reservoir quality", 1e-6, j2.Quality, 5.0)
}

func TestStepZeroFlowCarriesNoMass(tst *testing.T) {
	chk.PrintTitle("quality solver: a link with zero flow transports no quality")
	net := tracerNetwork()
	net.Links[0].Flow = 0
	net.Links[1].Flow = 0
	s := NewSolver(net)
	s.Seed()
	j1, _ := net.NodeByID("J1")
	before := j1.Quality
	s.Step(10)
	chk.Scalar(tst, "unchanged junction quality", 1e-15, j1.Quality, before)
}

func TestReverseFlowDrawsFromDownstreamSegment(tst *testing.T) {
	chk.PrintTitle("quality solver: reverse flow draws quality from the nominal downstream end")
	net := tracerNetwork()
	net.Links[1].Flow = -1.0 // J2 -> J1
	j2, _ := net.NodeByID("J2")
	j2.J.InitQuality = 9.0 // Seed sets J2's quality from this
	s := NewSolver(net)
	s.Seed()
	for i := 0; i < 500; i++ {
		s.Step(1.0)
	}
	j1, _ := net.NodeByID("J1")
	// J1 mixes 1 cfs of reservoir water (5) via P1 with 1 cfs of J2's
	// water (9) via the reversed P2: (5+9)/2 = 7
	chk.Scalar(tst, "J1 receives J2's quality under reverse flow", 1e-3, j1.Quality, 7.0)
}

func TestMassBalanceRelativeErrorIsSmallForClosedSystem(tst *testing.T) {
	chk.PrintTitle("quality solver: mass balance closes with no demand or reaction")
	net := tracerNetwork()
	net.Opts.Quality = network.QualityAge // no bulk reaction, isolate transport-only accounting
	net.Links[1].Flow = 0
	net.Nodes[2].ActualDemand = 0
	s := NewSolver(net)
	s.Seed()
	s.Step(1.0)
	// with the downstream link closed off, initial mass should roughly
	// equal final mass (inflow to P1 just shifts mass within the system).
	errRel := s.Balance.RelativeError()
	if errRel > 1 {
		tst.Fatalf("expected a bounded relative mass-balance error, got %v", errRel)
	}
}

func TestApplySourceSetpointPinsQuality(tst *testing.T) {
	chk.PrintTitle("quality solver: a setpoint source pins quality regardless of blend")
	net := tracerNetwork()
	j1, _ := net.NodeByID("J1")
	j1.J.Source = &network.QualitySource{Kind: network.SourceSetpoint, Strength: 42}
	s := NewSolver(net)
	s.Seed()
	got := s.applySource(j1, 3.0, 1.0)
	chk.Scalar(tst, "setpoint quality", 1e-15, got, 42)
}

func TestApplySourceConcenAddsToBlend(tst *testing.T) {
	chk.PrintTitle("quality solver: a concentration source adds its strength to the blended quality")
	net := tracerNetwork()
	j1, _ := net.NodeByID("J1")
	j1.J.Source = &network.QualitySource{Kind: network.SourceConcen, Strength: 1.5}
	s := NewSolver(net)
	s.Seed()
	s.volIn[j1.Index] = 1.0
	got := s.applySource(j1, 3.0, 1.0)
	chk.Scalar(tst, "concentration-added quality", 1e-15, got, 4.5)
}
