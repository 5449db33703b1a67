package report

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/cpmech/pipenet/devices"
	"github.com/cpmech/pipenet/network"
)

// magic identifies a pipenet binary output file; a reader that sees a
// different value knows it is looking at a foreign or corrupt file.
const magic = 0x6e706c70 // "plpn" packed into one little-endian word
const version = 1

// numNodeVars/numLinkVars/numPumpVars are the fixed per-record field
// counts the §6 binary layout names.
const (
	numNodeVars = 6
	numLinkVars = 7
	numPumpVars = 6
)

// PumpEnergyRecord is one pump's aggregated energy-accounting row,
// computed by the caller over the run (e.g. time-weighted averages of
// devices.PumpEfficiency and the instantaneous power draw).
type PumpEnergyRecord struct {
	LinkIdx       int
	PctTimeOnline float32
	AvgEfficiency float32
	EnergyPerVol  float32 // kWh per Mgal (US) or per m^3 (SI)
	AvgKW         float32
	PeakKW        float32
	CostPerDay    float32
}

// Period is one reported time period's full node/link snapshot, in
// the field order the §6 layout specifies.
type Period struct {
	NodeHead, NodePressure, NodeDemand, NodeDeficit, NodeOutflow, NodeQuality []float32
	LinkFlow, LinkLeakage, LinkVelocity, LinkHeadLoss                        []float32
	LinkStatus, LinkSetting, LinkQuality                                     []float32
}

// BinaryWriter accumulates reported periods and an energy summary,
// then writes the whole file in one pass in Write.
type BinaryWriter struct {
	net     *network.Network
	periods []Period
	energy  []PumpEnergyRecord
	charge  float32
}

// NewBinaryWriter returns a binary output accumulator bound to net.
func NewBinaryWriter(net *network.Network) *BinaryWriter {
	return &BinaryWriter{net: net}
}

// SnapshotPeriod builds one Period from the network's current computed
// state, converted to user units, and appends it; call once per
// reporting boundary per spec.md §4.6 step 5.
func (b *BinaryWriter) SnapshotPeriod() {
	net := b.net
	u := net.Opts.Units
	p := Period{
		NodeHead:     make([]float32, len(net.Nodes)),
		NodePressure: make([]float32, len(net.Nodes)),
		NodeDemand:   make([]float32, len(net.Nodes)),
		NodeDeficit:  make([]float32, len(net.Nodes)),
		NodeOutflow:  make([]float32, len(net.Nodes)),
		NodeQuality:  make([]float32, len(net.Nodes)),
		LinkFlow:     make([]float32, len(net.Links)),
		LinkLeakage:  make([]float32, len(net.Links)),
		LinkVelocity: make([]float32, len(net.Links)),
		LinkHeadLoss: make([]float32, len(net.Links)),
		LinkStatus:   make([]float32, len(net.Links)),
		LinkSetting:  make([]float32, len(net.Links)),
		LinkQuality:  make([]float32, len(net.Links)),
	}
	for i, nd := range net.Nodes {
		p.NodeHead[i] = float32(u.ToUserLength(nd.Head))
		p.NodePressure[i] = float32(u.ToUserLength(nd.Pressure()))
		p.NodeDemand[i] = float32(u.ToUserFlow(nd.ActualDemand))
		if nd.FullDemand > nd.ActualDemand {
			p.NodeDeficit[i] = float32(u.ToUserFlow(nd.FullDemand - nd.ActualDemand))
		}
		p.NodeOutflow[i] = float32(u.ToUserFlow(nd.Outflow))
		p.NodeQuality[i] = float32(nd.Quality)
	}
	for i, lk := range net.Links {
		p.LinkFlow[i] = float32(u.ToUserFlow(lk.Flow))
		p.LinkLeakage[i] = float32(u.ToUserFlow(lk.Leakage))
		if lk.Kind == network.Pipe && lk.P.Diameter > 0 {
			area := 0.25 * math.Pi * lk.P.Diameter * lk.P.Diameter
			p.LinkVelocity[i] = float32(math.Abs(lk.Flow) / area)
		}
		p.LinkHeadLoss[i] = float32(u.ToUserLength(lk.HeadLoss))
		p.LinkStatus[i] = float32(lk.Status)
		p.LinkSetting[i] = float32(lk.Setting)
		p.LinkQuality[i] = float32(lk.Quality)
	}
	b.periods = append(b.periods, p)
}

// SetPumpEnergy records the run's final per-pump energy summary.
func (b *BinaryWriter) SetPumpEnergy(recs []PumpEnergyRecord, demandCharge float32) {
	b.energy = recs
	b.charge = demandCharge
}

// EstimateEfficiency fills in AvgEfficiency for a pump record using
// devices.PumpEfficiency at the pump's current flow, a convenience for
// callers that only tracked online time and power draw during the run.
func EstimateEfficiency(net *network.Network, lk *network.Link) float32 {
	return float32(devices.PumpEfficiency(lk.U, net, lk.Flow))
}

// Write serializes the header, energy block and network-results block
// in the exact §6 layout: 21 little-endian int32 header words, the
// energy block, then one record per reported period.
func (b *BinaryWriter) Write(w io.Writer) error {
	net := b.net
	nNodes := len(net.Nodes)
	nLinks := len(net.Links)
	nPumps := len(b.energy)

	const headerWords = 21
	headerBytes := int32(headerWords * 4)
	energyBytes := int32(nPumps*(4+6*4) + 4)
	networkOffset := headerBytes + energyBytes

	header := [headerWords]int32{
		magic,
		version,
		0, 0,
		headerBytes,
		networkOffset,
		int32(nNodes),
		int32(nLinks),
		int32(nPumps),
		int32(net.Opts.Quality),
		int32(net.Opts.TraceNodeIdx),
		int32(net.Opts.Units.Sys),
		int32(net.Opts.Units.Flow),
		0, // pressureUnits: psi always, per §4.9
		0, // qualUnits: caller-defined chemical name, not modeled numerically
		0, // reportStat
		int32(net.Opts.ReportStart),
		int32(net.Opts.ReportStep),
		numNodeVars,
		numLinkVars,
		numPumpVars,
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}

	for _, rec := range b.energy {
		if err := binary.Write(w, binary.LittleEndian, int32(rec.LinkIdx)); err != nil {
			return err
		}
		vals := [6]float32{rec.PctTimeOnline, rec.AvgEfficiency, rec.EnergyPerVol, rec.AvgKW, rec.PeakKW, rec.CostPerDay}
		if err := binary.Write(w, binary.LittleEndian, &vals); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, b.charge); err != nil {
		return err
	}

	for _, p := range b.periods {
		for i := 0; i < nNodes; i++ {
			vals := [numNodeVars]float32{
				p.NodeHead[i], p.NodePressure[i], p.NodeDemand[i],
				p.NodeDeficit[i], p.NodeOutflow[i], p.NodeQuality[i],
			}
			if err := binary.Write(w, binary.LittleEndian, &vals); err != nil {
				return err
			}
		}
		for i := 0; i < nLinks; i++ {
			vals := [numLinkVars]float32{
				p.LinkFlow[i], p.LinkLeakage[i], p.LinkVelocity[i], p.LinkHeadLoss[i],
				p.LinkStatus[i], p.LinkSetting[i], p.LinkQuality[i],
			}
			if err := binary.Write(w, binary.LittleEndian, &vals); err != nil {
				return err
			}
		}
	}
	return nil
}
