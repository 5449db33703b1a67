package network

import (
	"fmt"
	"strconv"

	"github.com/cpmech/pipenet/simerr"
	"github.com/katalvlaran/lvlath/bfs"
	"github.com/katalvlaran/lvlath/core"
)

// maxListedUnconnected caps how many individually-named unconnected nodes
// spec.md §7 wants reported before summarizing the rest.
const maxListedUnconnected = 10

// Validate checks the semantic invariants of spec.md §3 and the Network
// error family of §7. It returns every violation found rather than
// stopping at the first, as a slice with one error per violation,
// mirroring EPANET's "up to 10 listed individually, the rest summarized"
// behavior for unconnected nodes.
func (n *Network) Validate() []error {
	var errs []error

	if len(n.Nodes) == 0 {
		errs = append(errs, simerr.New(simerr.KindNetwork, simerr.OffNetworkTooFewNodes, "network has no nodes"))
		return errs
	}

	for _, nd := range n.Nodes {
		if len(nd.Incident) == 0 {
			errs = append(errs, simerr.New(simerr.KindNetwork, simerr.OffNetworkUnconnected, "node %q has no incident links", nd.ID))
		}
	}

	if n.NumFixedGrade() == 0 {
		errs = append(errs, simerr.New(simerr.KindNetwork, simerr.OffNetworkNoFixedGrade, "network has no fixed-grade node (reservoir or tank)"))
	}

	for _, nd := range n.Nodes {
		if nd.Kind != Tank {
			continue
		}
		t := nd.T
		if !(t.MinHead <= t.InitHead && t.InitHead <= t.MaxHead) {
			errs = append(errs, simerr.New(simerr.KindNetwork, simerr.OffNetworkTankLevels,
				"tank %q: minHead (%.3f) <= initHead (%.3f) <= maxHead (%.3f) violated", nd.ID, t.MinHead, t.InitHead, t.MaxHead))
		}
		if t.MinVolume < 0 {
			errs = append(errs, simerr.New(simerr.KindNetwork, simerr.OffNetworkTankLevels, "tank %q: negative minVolume", nd.ID))
		}
		if t.VolumeCurveIdx >= 0 {
			c := n.CurveAt(t.VolumeCurveIdx)
			if c == nil || len(c.X) == 0 || c.X[0] > t.MinHead || c.X[len(c.X)-1] < t.MaxHead {
				errs = append(errs, simerr.New(simerr.KindNetwork, simerr.OffNetworkVolumeCurve,
					"tank %q: volume curve does not span [minHead, maxHead]", nd.ID))
			}
		}
	}

	for _, lk := range n.Links {
		if lk.Kind != Valve {
			continue
		}
		v := lk.V
		switch v.SubType {
		case PRV:
			if down := n.Nodes[lk.To]; down.Kind != Junction {
				errs = append(errs, simerr.New(simerr.KindNetwork, simerr.OffNetworkValveConn,
					"PRV %q: downstream node %q must not be fixed-grade", lk.ID, down.ID))
			}
		case PSV:
			if up := n.Nodes[lk.From]; up.Kind != Junction {
				errs = append(errs, simerr.New(simerr.KindNetwork, simerr.OffNetworkValveConn,
					"PSV %q: upstream node %q must not be fixed-grade", lk.ID, up.ID))
			}
		case GPV:
			if v.CurveIdx < 0 || n.CurveAt(v.CurveIdx) == nil {
				errs = append(errs, simerr.New(simerr.KindNetwork, simerr.OffNetworkCurve, "GPV %q: missing head-loss curve", lk.ID))
			}
		}
	}

	for _, lk := range n.Links {
		if lk.Kind != Pump {
			continue
		}
		u := lk.U
		if u.CurveKind == CustomCurve && (u.CurveIdx < 0 || n.CurveAt(u.CurveIdx) == nil) {
			errs = append(errs, simerr.New(simerr.KindNetwork, simerr.OffNetworkPumpCurve, "pump %q: missing pump curve", lk.ID))
		}
	}

	errs = append(errs, n.checkConnectivity()...)

	return errs
}

// checkConnectivity wires github.com/katalvlaran/lvlath's graph/bfs
// package to find nodes unreachable from every fixed-grade node, per
// spec.md §7's "unconnected node(s) (up to 10 listed individually, the
// rest summarized)".
func (n *Network) checkConnectivity() []error {
	if len(n.Nodes) == 0 {
		return nil
	}
	g := core.NewGraph(core.WithDirected(false))
	for _, nd := range n.Nodes {
		_ = g.AddVertex(strconv.Itoa(nd.Index))
	}
	for _, lk := range n.Links {
		_, _ = g.AddEdge(strconv.Itoa(lk.From), strconv.Itoa(lk.To), 0)
	}

	reached := make([]bool, len(n.Nodes))
	anyRoot := false
	for _, nd := range n.Nodes {
		if nd.Kind != Reservoir && nd.Kind != Tank {
			continue
		}
		anyRoot = true
		order, err := bfs.BFS(g, strconv.Itoa(nd.Index))
		if err != nil {
			continue
		}
		for _, vid := range order {
			idx, convErr := strconv.Atoi(vid)
			if convErr == nil && idx >= 0 && idx < len(reached) {
				reached[idx] = true
			}
		}
	}
	if !anyRoot {
		return nil
	}

	var unconnected []string
	for _, nd := range n.Nodes {
		if !reached[nd.Index] {
			unconnected = append(unconnected, nd.ID)
		}
	}
	if len(unconnected) == 0 {
		return nil
	}
	var errs []error
	listed := unconnected
	rest := 0
	if len(listed) > maxListedUnconnected {
		rest = len(listed) - maxListedUnconnected
		listed = listed[:maxListedUnconnected]
	}
	for _, id := range listed {
		errs = append(errs, simerr.New(simerr.KindNetwork, simerr.OffNetworkUnconnected, "node %q is not connected to any fixed-grade node", id))
	}
	if rest > 0 {
		errs = append(errs, simerr.New(simerr.KindNetwork, simerr.OffNetworkUnconnected, fmt.Sprintf("...and %d more unconnected node(s)", rest)))
	}
	return errs
}
