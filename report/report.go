// Package report formats simulation results for human consumption,
// mirroring EPANET's .rpt text report: per-step node/link tables, a
// pump energy summary, and the water-quality mass-balance check of
// spec.md §4.8, rendered with github.com/olekukonko/tablewriter.
package report

import (
	"fmt"
	"io"
	"math"

	"github.com/cpmech/pipenet/devices"
	"github.com/cpmech/pipenet/hydraulics"
	"github.com/cpmech/pipenet/network"
	"github.com/cpmech/pipenet/quality"
	"github.com/olekukonko/tablewriter"
)

// Step is one recorded hydraulic step's snapshot, accumulated by the
// caller's engine.Recorder and handed to Writer.WriteTimeSeries.
type Step struct {
	Time   float64
	Status hydraulics.Status
	Trials int
}

// Writer accumulates step records for a run and renders the final
// text report on demand.
type Writer struct {
	net   *network.Network
	steps []Step
}

// New returns a report Writer bound to net.
func New(net *network.Network) *Writer {
	return &Writer{net: net}
}

// Record appends one hydraulic step's outcome. Its signature differs
// from engine.Recorder, so the caller's Recorder closure calls it (with
// trials read off the solver after Solve returns).
func (w *Writer) Record(now float64, status hydraulics.Status, trials int) {
	w.steps = append(w.steps, Step{Time: now, Status: status, Trials: trials})
}

// WriteHeader prints the run title and unit system.
func (w *Writer) WriteHeader(out io.Writer) {
	title := w.net.Title
	if title == "" {
		title = "(untitled network)"
	}
	fmt.Fprintf(out, "pipenet simulation report: %s\n", title)
	fmt.Fprintf(out, "flow units: %v    head-loss model: %v\n\n", w.net.Opts.Units.Flow, w.net.Opts.HeadLoss)
}

// WriteNodeTable renders the final snapshot of every node's computed
// state: demand, head, pressure and (if tracked) quality.
func (w *Writer) WriteNodeTable(out io.Writer) {
	t := tablewriter.NewWriter(out)
	hasQuality := w.net.Opts.Quality != network.QualityNone
	header := []string{"Node", "Kind", "Demand", "Head", "Pressure"}
	if hasQuality {
		header = append(header, "Quality")
	}
	t.SetHeader(header)
	for _, nd := range w.net.Nodes {
		row := []string{
			nd.ID,
			nd.Kind.String(),
			fmt.Sprintf("%.4g", w.net.Opts.Units.ToUserFlow(nd.ActualDemand)),
			fmt.Sprintf("%.4g", w.net.Opts.Units.ToUserLength(nd.Head)),
			fmt.Sprintf("%.4g", w.net.Opts.Units.ToUserLength(nd.Pressure())),
		}
		if hasQuality {
			row = append(row, fmt.Sprintf("%.4g", nd.Quality))
		}
		t.Append(row)
	}
	t.Render()
}

// WriteLinkTable renders every link's final flow, velocity, head loss
// and status.
func (w *Writer) WriteLinkTable(out io.Writer) {
	t := tablewriter.NewWriter(out)
	t.SetHeader([]string{"Link", "Kind", "Flow", "Velocity", "HeadLoss", "Status"})
	for _, lk := range w.net.Links {
		vel := 0.0
		if lk.Kind == network.Pipe && lk.P.Diameter > 0 {
			area := 0.25 * math.Pi * lk.P.Diameter * lk.P.Diameter
			vel = math.Abs(lk.Flow) / area
		}
		t.Append([]string{
			lk.ID,
			lk.Kind.String(),
			fmt.Sprintf("%.4g", w.net.Opts.Units.ToUserFlow(lk.Flow)),
			fmt.Sprintf("%.4g", vel),
			fmt.Sprintf("%.4g", w.net.Opts.Units.ToUserLength(lk.HeadLoss)),
			lk.Status.String(),
		})
	}
	t.Render()
}

// WriteEnergyTable renders each pump's current flow, head gain,
// efficiency at that flow and energy price per unit, the supplement
// grounded in EPANET's energy.cpp report section. No time-averaged
// efficiency or accumulated cost is shown.
func (w *Writer) WriteEnergyTable(out io.Writer) {
	var pumps []*network.Link
	for _, lk := range w.net.Links {
		if lk.Kind == network.Pump {
			pumps = append(pumps, lk)
		}
	}
	if len(pumps) == 0 {
		return
	}
	t := tablewriter.NewWriter(out)
	t.SetHeader([]string{"Pump", "Flow", "Head Gain", "Efficiency", "Price/unit"})
	for _, lk := range pumps {
		eff := devices.PumpEfficiency(lk.U, w.net, lk.Flow)
		t.Append([]string{
			lk.ID,
			fmt.Sprintf("%.4g", w.net.Opts.Units.ToUserFlow(lk.Flow)),
			fmt.Sprintf("%.4g", w.net.Opts.Units.ToUserLength(-lk.HeadLoss)),
			fmt.Sprintf("%.1f%%", eff*100),
			fmt.Sprintf("%.4g", lk.U.EnergyPrice),
		})
	}
	t.Render()
}

// WriteTimeSeries renders the recorded per-step convergence log: time,
// status and trial count.
func (w *Writer) WriteTimeSeries(out io.Writer) {
	if len(w.steps) == 0 {
		return
	}
	t := tablewriter.NewWriter(out)
	t.SetHeader([]string{"Time (h)", "Status", "Trials"})
	for _, s := range w.steps {
		t.Append([]string{
			fmt.Sprintf("%.3f", s.Time/3600),
			s.Status.String(),
			fmt.Sprintf("%d", s.Trials),
		})
	}
	t.Render()
}

// WriteMassBalance renders the quality solver's mass-balance ledger
// and its relative closure error, per §4.8.
func (w *Writer) WriteMassBalance(out io.Writer, bal quality.MassBalance) {
	fmt.Fprintf(out, "\nwater quality mass balance\n")
	t := tablewriter.NewWriter(out)
	t.SetHeader([]string{"Component", "Mass"})
	t.Append([]string{"Initial", fmt.Sprintf("%.6g", bal.InitialMass)})
	t.Append([]string{"Source input", fmt.Sprintf("%.6g", bal.SourceMass)})
	t.Append([]string{"Demand output", fmt.Sprintf("%.6g", bal.DemandMass)})
	t.Append([]string{"Reacted", fmt.Sprintf("%.6g", bal.ReactedMass)})
	t.Append([]string{"Final", fmt.Sprintf("%.6g", bal.FinalMass)})
	t.Render()
	fmt.Fprintf(out, "relative mass balance error: %.4g%%\n", bal.RelativeError()*100)
}

// WriteFull renders the whole report in EPANET's conventional order:
// header, node table, link table, energy summary, optional step log
// and (if quality was tracked) the mass-balance check.
func (w *Writer) WriteFull(out io.Writer, qual *quality.Solver) {
	w.WriteHeader(out)
	w.WriteNodeTable(out)
	fmt.Fprintln(out)
	w.WriteLinkTable(out)
	fmt.Fprintln(out)
	w.WriteEnergyTable(out)
	if len(w.steps) > 1 {
		fmt.Fprintln(out)
		w.WriteTimeSeries(out)
	}
	if qual != nil && w.net.Opts.Quality != network.QualityNone {
		w.WriteMassBalance(out, qual.Balance)
	}
}
