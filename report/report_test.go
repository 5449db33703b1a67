package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/pipenet/hydraulics"
	"github.com/cpmech/pipenet/network"
)

func reportNetwork() *network.Network {
	net := network.New()
	net.Title = "test net"
	r, _ := net.AddNode("R1", network.Reservoir)
	r.R = &network.ReservoirData{HeadBase: 100, PatternIdx: -1}
	r.Head = 100
	j, _ := net.AddNode("J1", network.Junction)
	j.J = &network.JunctionData{}
	j.Elevation = 10
	j.Head = 90
	j.ActualDemand = 2.0
	lk, _ := net.AddLink("P1", network.Pipe, "R1", "J1")
	lk.P = &network.PipeData{Length: 100, Diameter: 1.0}
	lk.Flow = 2.0
	lk.HeadLoss = 10
	return net
}

func TestWriteHeaderIncludesTitle(tst *testing.T) {
	chk.PrintTitle("report: WriteHeader includes the network title")
	net := reportNetwork()
	w := New(net)
	var buf bytes.Buffer
	w.WriteHeader(&buf)
	if !strings.Contains(buf.String(), "test net") {
		tst.Fatalf("expected title in header, got: %s", buf.String())
	}
}

func TestWriteHeaderDefaultsUntitled(tst *testing.T) {
	chk.PrintTitle("report: WriteHeader falls back to a placeholder title")
	net := reportNetwork()
	net.Title = ""
	w := New(net)
	var buf bytes.Buffer
	w.WriteHeader(&buf)
	if !strings.Contains(buf.String(), "untitled") {
		tst.Fatalf("expected untitled placeholder, got: %s", buf.String())
	}
}

func TestWriteNodeTableListsEveryNode(tst *testing.T) {
	chk.PrintTitle("report: WriteNodeTable lists every node's ID")
	net := reportNetwork()
	w := New(net)
	var buf bytes.Buffer
	w.WriteNodeTable(&buf)
	out := buf.String()
	if !strings.Contains(out, "R1") || !strings.Contains(out, "J1") {
		tst.Fatalf("expected both node IDs in table, got: %s", out)
	}
}

func TestWriteNodeTableOmitsQualityColumnWhenUntracked(tst *testing.T) {
	chk.PrintTitle("report: WriteNodeTable omits the quality column when quality isn't tracked")
	net := reportNetwork()
	net.Opts.Quality = network.QualityNone
	w := New(net)
	var buf bytes.Buffer
	w.WriteNodeTable(&buf)
	if strings.Contains(buf.String(), "Quality") {
		tst.Fatalf("did not expect a Quality column, got: %s", buf.String())
	}
}

func TestWriteNodeTableIncludesQualityColumnWhenTracked(tst *testing.T) {
	chk.PrintTitle("report: WriteNodeTable includes the quality column when quality is tracked")
	net := reportNetwork()
	net.Opts.Quality = network.QualityChemical
	w := New(net)
	var buf bytes.Buffer
	w.WriteNodeTable(&buf)
	if !strings.Contains(buf.String(), "Quality") {
		tst.Fatalf("expected a Quality column, got: %s", buf.String())
	}
}

func TestWriteLinkTableListsLinkID(tst *testing.T) {
	chk.PrintTitle("report: WriteLinkTable lists the link's ID and status")
	net := reportNetwork()
	w := New(net)
	var buf bytes.Buffer
	w.WriteLinkTable(&buf)
	out := buf.String()
	if !strings.Contains(out, "P1") {
		tst.Fatalf("expected link ID in table, got: %s", out)
	}
	if !strings.Contains(out, "Open") {
		tst.Fatalf("expected Open status in table, got: %s", out)
	}
}

func TestWriteEnergyTableSkippedWithNoPumps(tst *testing.T) {
	chk.PrintTitle("report: WriteEnergyTable writes nothing when the network has no pumps")
	net := reportNetwork()
	w := New(net)
	var buf bytes.Buffer
	w.WriteEnergyTable(&buf)
	if buf.Len() != 0 {
		tst.Fatalf("expected no output with no pumps, got: %s", buf.String())
	}
}

func TestWriteEnergyTableListsPump(tst *testing.T) {
	chk.PrintTitle("report: WriteEnergyTable lists a pump's ID")
	net := reportNetwork()
	net.AddNode("A", network.Junction)
	net.AddNode("B", network.Junction)
	lk, _ := net.AddLink("PU1", network.Pump, "A", "B")
	lk.U = &network.PumpData{CurveKind: network.ThreePoint, H0: 150, R: 0.03, N: 2, Speed: 1.0, EfficiencyCurve: -1}
	lk.Flow = 5
	w := New(net)
	var buf bytes.Buffer
	w.WriteEnergyTable(&buf)
	if !strings.Contains(buf.String(), "PU1") {
		tst.Fatalf("expected pump ID in energy table, got: %s", buf.String())
	}
}

func TestWriteTimeSeriesEmptyWithNoSteps(tst *testing.T) {
	chk.PrintTitle("report: WriteTimeSeries writes nothing with no recorded steps")
	net := reportNetwork()
	w := New(net)
	var buf bytes.Buffer
	w.WriteTimeSeries(&buf)
	if buf.Len() != 0 {
		tst.Fatalf("expected no output with zero recorded steps, got: %s", buf.String())
	}
}

func TestWriteTimeSeriesIncludesRecordedStep(tst *testing.T) {
	chk.PrintTitle("report: WriteTimeSeries includes a recorded step's status")
	net := reportNetwork()
	w := New(net)
	w.Record(3600, hydraulics.Successful, 3)
	var buf bytes.Buffer
	w.WriteTimeSeries(&buf)
	if !strings.Contains(buf.String(), hydraulics.Successful.String()) {
		tst.Fatalf("expected recorded status in time series, got: %s", buf.String())
	}
}
