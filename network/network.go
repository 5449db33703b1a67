// Package network implements the pipenet data model of spec.md §3 and §9:
// a directed graph of Nodes and Links, densely indexed and owned
// exclusively by Network, with cross-references as plain integer
// indices rather than owning pointers.
package network

import "github.com/cpmech/pipenet/simerr"

// Network owns every entity of a project for its lifetime (§3
// "Ownership"). Iteration order over Nodes/Links/Patterns/Curves is
// insertion order, per §3.
type Network struct {
	Title string

	Nodes    []*Node
	Links    []*Link
	Patterns []*Pattern
	Curves   []*Curve
	Controls []*Control

	NodeIndex    map[string]int
	LinkIndex    map[string]int
	PatternIndex map[string]int
	CurveIndex   map[string]int

	Opts Options
}

// New returns an empty Network ready for two-pass population by a parser.
func New() *Network {
	return &Network{
		NodeIndex:    make(map[string]int),
		LinkIndex:    make(map[string]int),
		PatternIndex: make(map[string]int),
		CurveIndex:   make(map[string]int),
		Opts:         DefaultOptions(),
	}
}

// AddNode registers a new node, assigning it the next dense index.
// Returns an Input-kind duplicate-ID error, with no line number attached,
// if id is already registered.
func (n *Network) AddNode(id string, kind NodeKind) (*Node, error) {
	if _, exists := n.NodeIndex[id]; exists {
		return nil, simerr.New(simerr.KindInput, simerr.OffInputDuplicateID, "duplicate node id %q", id)
	}
	nd := &Node{ID: id, Index: len(n.Nodes), Kind: kind}
	n.Nodes = append(n.Nodes, nd)
	n.NodeIndex[id] = nd.Index
	return nd, nil
}

// AddLink registers a new link between two existing nodes, assigning it
// the next dense index and recording the adjacency on both endpoints.
func (n *Network) AddLink(id string, kind LinkKind, fromID, toID string) (*Link, error) {
	if _, exists := n.LinkIndex[id]; exists {
		return nil, simerr.New(simerr.KindInput, simerr.OffInputDuplicateID, "duplicate link id %q", id)
	}
	fromIdx, ok := n.NodeIndex[fromID]
	if !ok {
		return nil, simerr.New(simerr.KindInput, simerr.OffInputUndefinedRef, "link %q references undefined node %q", id, fromID)
	}
	toIdx, ok := n.NodeIndex[toID]
	if !ok {
		return nil, simerr.New(simerr.KindInput, simerr.OffInputUndefinedRef, "link %q references undefined node %q", id, toID)
	}
	if fromIdx == toIdx {
		return nil, simerr.New(simerr.KindNetwork, simerr.OffNetworkValveConn, "link %q is a self-loop at node %q", id, fromID)
	}
	lk := &Link{ID: id, Index: len(n.Links), Kind: kind, From: fromIdx, To: toIdx, Status: Open}
	n.Links = append(n.Links, lk)
	n.LinkIndex[id] = lk.Index
	n.Nodes[fromIdx].Incident = append(n.Nodes[fromIdx].Incident, lk.Index)
	n.Nodes[toIdx].Incident = append(n.Nodes[toIdx].Incident, lk.Index)
	return lk, nil
}

// AddPattern registers a pattern.
func (n *Network) AddPattern(p *Pattern) {
	p.Index = len(n.Patterns)
	n.Patterns = append(n.Patterns, p)
	n.PatternIndex[p.ID] = p.Index
}

// AddCurve registers a curve.
func (n *Network) AddCurve(c *Curve) {
	c.Index = len(n.Curves)
	n.Curves = append(n.Curves, c)
	n.CurveIndex[c.ID] = c.Index
}

// AddControl registers a simple control.
func (n *Network) AddControl(c *Control) {
	n.Controls = append(n.Controls, c)
}

// NodeByID is a convenience lookup using the case-sensitive name table.
func (n *Network) NodeByID(id string) (*Node, bool) {
	idx, ok := n.NodeIndex[id]
	if !ok {
		return nil, false
	}
	return n.Nodes[idx], true
}

// LinkByID is a convenience lookup using the case-sensitive name table.
func (n *Network) LinkByID(id string) (*Link, bool) {
	idx, ok := n.LinkIndex[id]
	if !ok {
		return nil, false
	}
	return n.Links[idx], true
}

// PatternAt returns Patterns[idx] or nil if idx < 0 (the "no pattern"
// convention used throughout the data model).
func (n *Network) PatternAt(idx int) *Pattern {
	if idx < 0 || idx >= len(n.Patterns) {
		return nil
	}
	return n.Patterns[idx]
}

// CurveAt returns Curves[idx] or nil if idx < 0.
func (n *Network) CurveAt(idx int) *Curve {
	if idx < 0 || idx >= len(n.Curves) {
		return nil
	}
	return n.Curves[idx]
}

// NumFixedGrade counts reservoirs plus tanks, the set of nodes that can
// ever be a fixed-grade node (§3 invariant: "the network must have >= 1
// fixed-grade node").
func (n *Network) NumFixedGrade() int {
	c := 0
	for _, nd := range n.Nodes {
		if nd.Kind == Reservoir || nd.Kind == Tank {
			c++
		}
	}
	return c
}
