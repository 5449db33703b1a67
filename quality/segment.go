// Package quality implements the water-quality transport of spec.md
// §4.7 (pipe segment chains, tank mixing) and §4.8 (the Lagrangian
// time-driven substep solver), grounded on EPANET's segment-chain
// approach to advective transport without numerical diffusion.
package quality

import "github.com/cpmech/pipenet/network"

// Segment is one parcel of water of uniform quality inside a pipe,
// per §4.7. Segments are kept in a deque ordered from the link's
// upstream end (closest to the current flow's source) to its
// downstream end.
type Segment struct {
	Volume  float64
	Quality float64
}

// LinkChain is a pipe's ordered segment deque.
type LinkChain struct {
	Segments []Segment
}

// Pool holds one chain per link, indexed in parallel with the network's
// dense link indices.
type Pool struct {
	Chains []LinkChain
}

// NewPool allocates a chain per link, each initialized as a single
// segment spanning the link's full volume at zero quality; callers
// apply each node's InitQuality via Seed.
func NewPool(net *network.Network) *Pool {
	p := &Pool{Chains: make([]LinkChain, len(net.Links))}
	for i, lk := range net.Links {
		vol := linkVolume(lk)
		p.Chains[i] = LinkChain{Segments: []Segment{{Volume: vol, Quality: 0}}}
	}
	return p
}

// Seed initializes every chain's quality to the average of its two
// endpoint nodes' initial quality (junctions carry InitQuality; tanks
// and reservoirs start at their own Quality field set by the caller
// before Seed runs).
func (p *Pool) Seed(net *network.Network) {
	for i, lk := range net.Links {
		q := (net.Nodes[lk.From].Quality + net.Nodes[lk.To].Quality) / 2
		chain := p.Chains[i]
		for s := range chain.Segments {
			chain.Segments[s].Quality = q
		}
	}
}

func linkVolume(lk *network.Link) float64 {
	if lk.Kind != network.Pipe {
		return 0
	}
	area := 0.25 * piConst * lk.P.Diameter * lk.P.Diameter
	return area * lk.P.Length
}

const piConst = 3.14159265358979323846

// AvgQuality returns a chain's volume-weighted average quality, the
// value reported for the link as a whole.
func (c *LinkChain) AvgQuality() float64 {
	var vol, mass float64
	for _, s := range c.Segments {
		vol += s.Volume
		mass += s.Volume * s.Quality
	}
	if vol <= 0 {
		return 0
	}
	return mass / vol
}

// push adds a new segment of the given volume/quality at the upstream
// end, merging into the existing head segment when its quality is
// within tol of the incoming one (keeps the chain from growing without
// bound in near-steady flow).
func (c *LinkChain) push(volume, quality, tol float64) {
	if volume <= 0 {
		return
	}
	if len(c.Segments) > 0 {
		head := &c.Segments[0]
		if abs(head.Quality-quality) <= tol {
			head.Volume += volume
			return
		}
	}
	c.Segments = append([]Segment{{Volume: volume, Quality: quality}}, c.Segments...)
}

// pushBack adds a new segment at the downstream end, merging into the
// tail segment when within tol, used when a link's flow reverses sign
// and its "upstream" becomes the To node.
func (c *LinkChain) pushBack(volume, quality, tol float64) {
	if volume <= 0 {
		return
	}
	if n := len(c.Segments); n > 0 {
		tail := &c.Segments[n-1]
		if abs(tail.Quality-quality) <= tol {
			tail.Volume += volume
			return
		}
	}
	c.Segments = append(c.Segments, Segment{Volume: volume, Quality: quality})
}

// popFront removes up to `volume` from the upstream (head) end,
// returning the mass that left the chain; the reversed-flow
// counterpart of pop.
func (c *LinkChain) popFront(volume float64) (mass float64) {
	for volume > 0 && len(c.Segments) > 0 {
		seg := &c.Segments[0]
		if seg.Volume <= volume {
			mass += seg.Volume * seg.Quality
			volume -= seg.Volume
			c.Segments = c.Segments[1:]
		} else {
			mass += volume * seg.Quality
			seg.Volume -= volume
			volume = 0
		}
	}
	return mass
}

// pop removes up to `volume` from the downstream end, returning the
// mass (volume*quality summed) that left the chain. If the chain runs
// dry (shouldn't happen for a mass-conserving flow field) it returns
// whatever mass was available.
func (c *LinkChain) pop(volume float64) (mass float64) {
	for volume > 0 && len(c.Segments) > 0 {
		last := len(c.Segments) - 1
		seg := &c.Segments[last]
		if seg.Volume <= volume {
			mass += seg.Volume * seg.Quality
			volume -= seg.Volume
			c.Segments = c.Segments[:last]
		} else {
			mass += volume * seg.Quality
			seg.Volume -= volume
			volume = 0
		}
	}
	return mass
}

// react applies a bulk (and optionally wall) reaction rate to every
// segment in the chain over dt, per §4.7.
func (c *LinkChain) react(dt float64, rate func(conc float64) float64) {
	for i := range c.Segments {
		s := &c.Segments[i]
		s.Quality += rate(s.Quality) * dt
		if s.Quality < 0 {
			s.Quality = 0
		}
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
