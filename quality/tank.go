package quality

import "github.com/cpmech/pipenet/network"

// TankState is the extra bookkeeping a tank's mixing model needs
// beyond the plain scalar Quality carried on network.Node, per §4.7.
type TankState struct {
	// FIFO/LIFO use a segment chain exactly like a pipe's, keyed by
	// volume rather than length.
	Chain LinkChain
}

// NewTankState allocates a tank's mixing state, starting as a single
// segment at the tank's current volume and quality.
func NewTankState(nd *network.Node) *TankState {
	return &TankState{Chain: LinkChain{Segments: []Segment{{Volume: nd.T.Volume, Quality: nd.Quality}}}}
}

// Mix applies one substep of the tank's configured mixing model,
// given the net inflow quality (volume-weighted average of everything
// entering this step) and volume, and the new tank volume after this
// step's net inflow/outflow. Returns the tank's new bulk quality and
// the outflow quality actually delivered to the network this substep:
// the tank's quality from before this substep for MIX1, the new
// mixed-zone quality for MIX2, and the delivered segment's quality for
// FIFO/LIFO.
func (ts *TankState) Mix(nd *network.Node, inVol, inQuality, outVol, newVolume float64) (bulk, outQuality float64) {
	switch nd.T.Mixing {
	case network.Mix1:
		return mix1(nd, inVol, inQuality, newVolume), nd.Quality
	case network.Mix2:
		return mix2(nd, inVol, inQuality, outVol, newVolume)
	case network.FIFO:
		return ts.fifo(nd, inVol, inQuality, outVol, newVolume)
	case network.LIFO:
		return ts.lifo(nd, inVol, inQuality, outVol, newVolume)
	}
	return nd.Quality, nd.Quality
}

// mix1 is the complete-mix model: the tank is a single well-stirred
// compartment. It returns the new bulk quality; Mix reports the tank's
// pre-substep quality as MIX1's outflow quality.
func mix1(nd *network.Node, inVol, inQuality, newVolume float64) float64 {
	oldMass := nd.T.PastVolume * nd.Quality
	newMass := oldMass + inVol*inQuality
	if newVolume <= 0 {
		return 0
	}
	return newMass / newVolume
}

// mix2 is the two-compartment model: a well-mixed zone of fraction
// MixFraction of the tank's volume receives all inflow/reaction. Water
// that overflows the zone's capacity leaves it at the zone's new
// concentration. Only the mixed zone is tracked: the reserve
// compartment's volume and quality are not, and nothing drains back
// from it into the mixed zone on net outflow.
func mix2(nd *network.Node, inVol, inQuality, outVol, newVolume float64) (bulk, outQuality float64) {
	mixedCap := nd.T.Volume * nd.T.MixFraction
	if mixedCap <= 0 {
		mixedCap = nd.T.Volume
	}
	mixedVol := nd.T.PastVolume
	if mixedVol > mixedCap {
		mixedVol = mixedCap
	}
	oldMass := mixedVol * nd.Quality
	mixedVol += inVol - outVol
	newMass := oldMass + inVol*inQuality
	if mixedVol <= 0 {
		return 0, nd.Quality
	}
	bulk = newMass / mixedVol
	return bulk, bulk
}

// fifo treats the tank as a pipe-like chain fed at one end: inflow
// pushes a new segment, outflow is drawn from the oldest (first-in)
// segment, so the first water in is the first water out.
func (ts *TankState) fifo(nd *network.Node, inVol, inQuality, outVol, newVolume float64) (bulk, outQuality float64) {
	ts.Chain.push(inVol, inQuality, 1e-5)
	outQuality = weightedFront(&ts.Chain, outVol)
	ts.Chain.pop(outVol)
	bulk = ts.Chain.AvgQuality()
	return bulk, outQuality
}

// lifo treats the tank as a stack: inflow pushes on top, outflow is
// drawn from the same (most-recently-added) end, so the last water in
// is the first water out.
func (ts *TankState) lifo(nd *network.Node, inVol, inQuality, outVol, newVolume float64) (bulk, outQuality float64) {
	ts.Chain.push(inVol, inQuality, 1e-5)
	outQuality = weightedHead(&ts.Chain, outVol)
	popHead(&ts.Chain, outVol)
	bulk = ts.Chain.AvgQuality()
	return bulk, outQuality
}

// weightedFront computes the volume-weighted quality of the oldest
// `volume` worth of water at the chain's tail (the FIFO draw-off end).
func weightedFront(c *LinkChain, volume float64) float64 {
	var vol, mass float64
	for i := len(c.Segments) - 1; i >= 0 && vol < volume; i-- {
		s := c.Segments[i]
		take := s.Volume
		if vol+take > volume {
			take = volume - vol
		}
		vol += take
		mass += take * s.Quality
	}
	if vol <= 0 {
		return 0
	}
	return mass / vol
}

// weightedHead computes the volume-weighted quality of the newest
// `volume` worth of water at the chain's head (the LIFO draw-off end).
func weightedHead(c *LinkChain, volume float64) float64 {
	var vol, mass float64
	for i := 0; i < len(c.Segments) && vol < volume; i++ {
		s := c.Segments[i]
		take := s.Volume
		if vol+take > volume {
			take = volume - vol
		}
		vol += take
		mass += take * s.Quality
	}
	if vol <= 0 {
		return 0
	}
	return mass / vol
}

// popHead removes `volume` from the chain's head (LIFO draw-off end).
func popHead(c *LinkChain, volume float64) {
	for volume > 0 && len(c.Segments) > 0 {
		seg := &c.Segments[0]
		if seg.Volume <= volume {
			volume -= seg.Volume
			c.Segments = c.Segments[1:]
		} else {
			seg.Volume -= volume
			volume = 0
		}
	}
}
