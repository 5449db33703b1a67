package inpfile

import (
	"strconv"
	"strings"

	"github.com/cpmech/pipenet/models"
	"github.com/cpmech/pipenet/network"
	"github.com/cpmech/pipenet/units"
)

func parseJunction(net *network.Network, ln rawLine) []error {
	if err := needFields(ln, 2); err != nil {
		return []error{err}
	}
	f := ln.fields
	nd, err := net.AddNode(f[0], network.Junction)
	if err != nil {
		return []error{err}
	}
	u := unitsOf(net)
	elev, err := parseFloat(ln, f[1])
	if err != nil {
		return []error{err}
	}
	nd.Elevation = u.ToInternalLength(elev)
	nd.J = &network.JunctionData{}
	var errs []error
	if len(f) > 2 {
		base, err := parseFloat(ln, f[2])
		if err != nil {
			errs = append(errs, err)
		} else {
			dc := network.DemandCategory{BaseFlow: u.ToInternalFlow(base), PatternIdx: -1}
			if len(f) > 3 {
				idx, ok := patternIdxOrDash(net, f[3])
				if !ok {
					errs = append(errs, synErr(ln, "unknown demand pattern %q", f[3]))
				} else {
					dc.PatternIdx = idx
				}
			}
			nd.J.Demands = append(nd.J.Demands, dc)
			nd.FullDemand = dc.BaseFlow
		}
	}
	return errs
}

func parseReservoir(net *network.Network, ln rawLine) []error {
	if err := needFields(ln, 2); err != nil {
		return []error{err}
	}
	f := ln.fields
	nd, err := net.AddNode(f[0], network.Reservoir)
	if err != nil {
		return []error{err}
	}
	u := unitsOf(net)
	head, err := parseFloat(ln, f[1])
	if err != nil {
		return []error{err}
	}
	nd.R = &network.ReservoirData{HeadBase: u.ToInternalLength(head), PatternIdx: -1}
	nd.Elevation = nd.R.HeadBase
	nd.Head = nd.R.HeadBase
	var errs []error
	if len(f) > 2 {
		idx, ok := patternIdxOrDash(net, f[2])
		if !ok {
			errs = append(errs, synErr(ln, "unknown reservoir pattern %q", f[2]))
		} else {
			nd.R.PatternIdx = idx
		}
	}
	return errs
}

func parseTank(net *network.Network, ln rawLine) []error {
	if err := needFields(ln, 7); err != nil {
		return []error{err}
	}
	f := ln.fields
	nd, err := net.AddNode(f[0], network.Tank)
	if err != nil {
		return []error{err}
	}
	u := unitsOf(net)
	vals := make([]float64, 6)
	var errs []error
	for i := 0; i < 6; i++ {
		v, err := parseFloat(ln, f[i+1])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		vals[i] = v
	}
	if len(errs) > 0 {
		return errs
	}
	nd.Elevation = u.ToInternalLength(vals[0])
	nd.T = &network.TankData{
		InitHead:       u.ToInternalLength(vals[0] + vals[1]),
		MinHead:        u.ToInternalLength(vals[0] + vals[2]),
		MaxHead:        u.ToInternalLength(vals[0] + vals[3]),
		Diameter:       u.ToInternalDiam(vals[4]),
		MinVolume:      u.ToInternalVolume(vals[5]),
		VolumeCurveIdx: -1,
		Mixing:         network.Mix1,
		MixFraction:    1.0,
	}
	nd.Head = nd.T.InitHead
	if len(f) > 7 {
		idx, ok := curveIdxOrDash(net, f[7])
		if !ok {
			errs = append(errs, synErr(ln, "unknown volume curve %q", f[7]))
		} else {
			nd.T.VolumeCurveIdx = idx
		}
	}
	return errs
}

func parsePipe(net *network.Network, ln rawLine) []error {
	if err := needFields(ln, 6); err != nil {
		return []error{err}
	}
	f := ln.fields
	lk, err := net.AddLink(f[0], network.Pipe, f[1], f[2])
	if err != nil {
		return []error{err}
	}
	u := unitsOf(net)
	var errs []error
	length, e1 := parseFloat(ln, f[3])
	diam, e2 := parseFloat(ln, f[4])
	rough, e3 := parseFloat(ln, f[5])
	for _, e := range []error{e1, e2, e3} {
		if e != nil {
			errs = append(errs, e)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	p := &network.PipeData{
		Length:   u.ToInternalLength(length),
		Diameter: u.ToInternalDiam(diam),
	}
	switch net.Opts.HeadLoss {
	case network.DarcyWeisbach:
		p.Roughness = u.ToInternalRough(rough)
	default:
		p.Roughness = rough // H-W C-factor / Manning n are dimensionless
	}
	if len(f) > 6 {
		loss, err := parseFloat(ln, f[6])
		if err != nil {
			errs = append(errs, err)
		} else {
			p.LossCoeff = loss
		}
	}
	if len(f) > 7 {
		switch strings.ToUpper(f[7]) {
		case "CV":
			p.HasCheckValve = true
		case "CLOSED":
			lk.Status = network.Closed
		case "OPEN":
			lk.Status = network.Open
		}
	}
	lk.P = p
	recomputePipeCoeffs(net, lk)
	return errs
}

// recomputePipeCoeffs fills Resistance/MinorK from the live Options
// head-loss model; called once per pipe at load. OPTIONS lines are
// applied in the first pass, before any PIPES line, so the HEADLOSS
// choice is already in place whichever order the sections appear in.
func recomputePipeCoeffs(net *network.Network, lk *network.Link) {
	p := lk.P
	switch net.Opts.HeadLoss {
	case network.HazenWilliams:
		p.Resistance = models.HWResistance(p.Length, p.Diameter, p.Roughness)
	case network.ChezyManning:
		p.Resistance = models.CMResistance(p.Length, p.Diameter, p.Roughness)
	case network.DarcyWeisbach:
		p.Resistance = models.DWResistance(p.Length, p.Diameter)
	}
	p.MinorK = models.MinorK(p.LossCoeff, p.Diameter)
}

func parsePump(net *network.Network, ln rawLine) []error {
	if err := needFields(ln, 3); err != nil {
		return []error{err}
	}
	f := ln.fields
	lk, err := net.AddLink(f[0], network.Pump, f[1], f[2])
	if err != nil {
		return []error{err}
	}
	p := &network.PumpData{Speed: 1.0, SpeedPatternIdx: -1, EfficiencyCurve: -1, CostPatternIdx: -1, CurveKind: network.CustomCurve}
	var errs []error
	for i := 3; i+1 < len(f); i += 2 {
		kw := strings.ToUpper(f[i])
		val := f[i+1]
		switch kw {
		case "HEAD":
			idx, ok := curveIdxOrDash(net, val)
			if !ok {
				errs = append(errs, synErr(ln, "unknown pump curve %q", val))
				continue
			}
			p.CurveIdx = idx
			c := net.CurveAt(idx)
			if c != nil {
				switch len(c.X) {
				case 1:
					p.CurveKind = network.SinglePoint
				case 2, 3:
					p.CurveKind = network.ThreePoint
				default:
					p.CurveKind = network.CustomCurve
				}
			}
		case "POWER":
			v, err := parseFloat(ln, val)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			p.CurveKind = network.ConstantHP
			p.R = -8.814 * v
		case "SPEED":
			v, err := parseFloat(ln, val)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			p.Speed = v
		case "PATTERN":
			idx, ok := patternIdxOrDash(net, val)
			if !ok {
				errs = append(errs, synErr(ln, "unknown speed pattern %q", val))
				continue
			}
			p.SpeedPatternIdx = idx
		}
	}
	lk.U = p
	return errs
}

func parseValve(net *network.Network, ln rawLine) []error {
	if err := needFields(ln, 6); err != nil {
		return []error{err}
	}
	f := ln.fields
	lk, err := net.AddLink(f[0], network.Valve, f[1], f[2])
	if err != nil {
		return []error{err}
	}
	u := unitsOf(net)
	diam, e1 := parseFloat(ln, f[3])
	var errs []error
	if e1 != nil {
		errs = append(errs, e1)
	}
	v := &network.ValveData{Diameter: u.ToInternalDiam(diam), CurveIdx: -1}
	switch strings.ToUpper(f[4]) {
	case "PRV":
		v.SubType = network.PRV
	case "PSV":
		v.SubType = network.PSV
	case "FCV":
		v.SubType = network.FCV
	case "TCV":
		v.SubType = network.TCV
	case "PBV":
		v.SubType = network.PBV
	case "GPV":
		v.SubType = network.GPV
	default:
		errs = append(errs, synErr(ln, "unknown valve type %q", f[4]))
	}
	if v.SubType == network.GPV {
		idx, ok := curveIdxOrDash(net, f[5])
		if !ok {
			errs = append(errs, synErr(ln, "unknown head-loss curve %q", f[5]))
		}
		v.CurveIdx = idx
	} else {
		setting, err := parseFloat(ln, f[5])
		if err != nil {
			errs = append(errs, err)
		} else {
			switch v.SubType {
			case network.PRV, network.PSV, network.PBV:
				v.Setting = units.PSIToHead(setting * u.PressToPSI)
			case network.FCV:
				v.Setting = u.ToInternalFlow(setting)
			default:
				v.Setting = setting
			}
		}
	}
	if len(f) > 6 {
		loss, err := parseFloat(ln, f[6])
		if err != nil {
			errs = append(errs, err)
		} else {
			v.LossCoeff = loss
		}
	}
	v.MinorK = models.MinorK(v.LossCoeff, v.Diameter)
	if v.SubType == network.PRV || v.SubType == network.PSV {
		lk.Status = network.Active
	}
	lk.V = v
	return errs
}

func parseDemand(net *network.Network, ln rawLine) []error {
	if err := needFields(ln, 2); err != nil {
		return []error{err}
	}
	f := ln.fields
	nd, ok := net.NodeByID(f[0])
	if !ok || nd.Kind != network.Junction {
		return []error{synErr(ln, "DEMANDS references unknown junction %q", f[0])}
	}
	u := unitsOf(net)
	base, err := parseFloat(ln, f[1])
	if err != nil {
		return []error{err}
	}
	dc := network.DemandCategory{BaseFlow: u.ToInternalFlow(base), PatternIdx: -1}
	var errs []error
	if len(f) > 2 {
		idx, ok := patternIdxOrDash(net, f[2])
		if !ok {
			errs = append(errs, synErr(ln, "unknown demand pattern %q", f[2]))
		} else {
			dc.PatternIdx = idx
		}
	}
	if len(f) > 3 {
		dc.Name = f[3]
	}
	nd.J.Demands = append(nd.J.Demands, dc)
	nd.FullDemand += dc.BaseFlow
	return errs
}

func parseEmitter(net *network.Network, ln rawLine) []error {
	if err := needFields(ln, 2); err != nil {
		return []error{err}
	}
	f := ln.fields
	nd, ok := net.NodeByID(f[0])
	if !ok || nd.Kind != network.Junction {
		return []error{synErr(ln, "EMITTERS references unknown junction %q", f[0])}
	}
	coeff, err := parseFloat(ln, f[1])
	if err != nil {
		return []error{err}
	}
	nd.J.Emitter = &network.Emitter{Coeff: coeff, Expon: 0.5, PatternIdx: -1}
	return nil
}

func parseStatus(net *network.Network, ln rawLine) []error {
	if err := needFields(ln, 2); err != nil {
		return []error{err}
	}
	f := ln.fields
	lk, ok := net.LinkByID(f[0])
	if !ok {
		return []error{synErr(ln, "STATUS references unknown link %q", f[0])}
	}
	switch strings.ToUpper(f[1]) {
	case "OPEN":
		lk.Status = network.Open
	case "CLOSED":
		lk.Status = network.Closed
	default:
		v, err := parseFloat(ln, f[1])
		if err != nil {
			return []error{err}
		}
		switch lk.Kind {
		case network.Pump:
			lk.U.Speed = v
		case network.Valve:
			lk.V.Setting = v
		}
	}
	return nil
}

func parseLeakage(net *network.Network, ln rawLine) []error {
	if err := needFields(ln, 3); err != nil {
		return []error{err}
	}
	f := ln.fields
	lk, ok := net.LinkByID(f[0])
	if !ok || lk.Kind != network.Pipe {
		return []error{synErr(ln, "LEAKAGE references unknown pipe %q", f[0])}
	}
	c1, e1 := parseFloat(ln, f[1])
	c2, e2 := parseFloat(ln, f[2])
	if e1 != nil {
		return []error{e1}
	}
	if e2 != nil {
		return []error{e2}
	}
	lk.P.LeakC1 = c1
	lk.P.LeakC2 = c2
	return nil
}

func parseReaction(net *network.Network, ln rawLine) []error {
	if err := needFields(ln, 2); err != nil {
		return []error{err}
	}
	f := ln.fields
	kw := strings.ToUpper(f[0])
	if kw == "GLOBAL" && len(f) >= 3 {
		v, err := parseFloat(ln, f[2])
		if err != nil {
			return []error{err}
		}
		switch strings.ToUpper(f[1]) {
		case "BULK":
			for _, lk := range net.Links {
				if lk.Kind == network.Pipe {
					lk.P.BulkCoeff = v
				}
			}
		case "WALL":
			for _, lk := range net.Links {
				if lk.Kind == network.Pipe {
					lk.P.WallCoeff = v
				}
			}
		}
		return nil
	}
	if len(f) < 3 {
		return nil
	}
	v, err := parseFloat(ln, f[2])
	if err != nil {
		return []error{err}
	}
	switch kw {
	case "BULK":
		lk, ok := net.LinkByID(f[1])
		if ok && lk.Kind == network.Pipe {
			lk.P.BulkCoeff = v
		}
	case "WALL":
		lk, ok := net.LinkByID(f[1])
		if ok && lk.Kind == network.Pipe {
			lk.P.WallCoeff = v
		}
	case "TANK":
		nd, ok := net.NodeByID(f[1])
		if ok && nd.Kind == network.Tank {
			nd.T.BulkCoeff = v
		}
	}
	return nil
}

func parseMixing(net *network.Network, ln rawLine) []error {
	if err := needFields(ln, 2); err != nil {
		return []error{err}
	}
	f := ln.fields
	nd, ok := net.NodeByID(f[0])
	if !ok || nd.Kind != network.Tank {
		return []error{synErr(ln, "MIXING references unknown tank %q", f[0])}
	}
	var errs []error
	switch strings.ToUpper(f[1]) {
	case "MIXED":
		nd.T.Mixing = network.Mix1
	case "2COMP":
		nd.T.Mixing = network.Mix2
		nd.T.MixFraction = 1.0
		if len(f) > 2 {
			v, err := parseFloat(ln, f[2])
			if err != nil {
				errs = append(errs, err)
			} else {
				nd.T.MixFraction = v
			}
		}
	case "FIFO":
		nd.T.Mixing = network.FIFO
	case "LIFO":
		nd.T.Mixing = network.LIFO
	default:
		errs = append(errs, synErr(ln, "unknown mixing model %q", f[1]))
	}
	return errs
}

func parseSource(net *network.Network, ln rawLine) []error {
	if err := needFields(ln, 3); err != nil {
		return []error{err}
	}
	f := ln.fields
	nd, ok := net.NodeByID(f[0])
	if !ok || nd.Kind != network.Junction {
		return []error{synErr(ln, "SOURCES references unknown junction %q", f[0])}
	}
	strength, err := parseFloat(ln, f[2])
	if err != nil {
		return []error{err}
	}
	src := &network.QualitySource{Strength: strength, PatternIdx: -1}
	switch strings.ToUpper(f[1]) {
	case "CONCEN":
		src.Kind = network.SourceConcen
	case "MASS":
		src.Kind = network.SourceMass
	case "SETPOINT":
		src.Kind = network.SourceSetpoint
	case "FLOWPACED":
		src.Kind = network.SourceFlowPaced
	}
	var errs []error
	if len(f) > 3 {
		idx, ok := patternIdxOrDash(net, f[3])
		if !ok {
			errs = append(errs, synErr(ln, "unknown source pattern %q", f[3]))
		} else {
			src.PatternIdx = idx
		}
	}
	nd.J.Source = src
	return errs
}

func parseEnergy(net *network.Network, ln rawLine) []error {
	if err := needFields(ln, 2); err != nil {
		return []error{err}
	}
	f := ln.fields
	if strings.ToUpper(f[0]) != "PUMP" || len(f) < 4 {
		return nil
	}
	lk, ok := net.LinkByID(f[1])
	if !ok || lk.Kind != network.Pump {
		return []error{synErr(ln, "ENERGY references unknown pump %q", f[1])}
	}
	var errs []error
	switch strings.ToUpper(f[2]) {
	case "EFFIC":
		idx, ok := curveIdxOrDash(net, f[3])
		if !ok {
			errs = append(errs, synErr(ln, "unknown efficiency curve %q", f[3]))
		} else {
			lk.U.EfficiencyCurve = idx
		}
	case "PRICE":
		v, err := parseFloat(ln, f[3])
		if err != nil {
			errs = append(errs, err)
		} else {
			lk.U.EnergyPrice = v
		}
	case "PATTERN":
		idx, ok := patternIdxOrDash(net, f[3])
		if !ok {
			errs = append(errs, synErr(ln, "unknown cost pattern %q", f[3]))
		} else {
			lk.U.CostPatternIdx = idx
		}
	}
	return errs
}

func parseQuality(net *network.Network, ln rawLine) []error {
	if err := needFields(ln, 2); err != nil {
		return []error{err}
	}
	f := ln.fields
	nd, ok := net.NodeByID(f[0])
	if !ok {
		return []error{synErr(ln, "QUALITY references unknown node %q", f[0])}
	}
	v, err := parseFloat(ln, f[1])
	if err != nil {
		return []error{err}
	}
	nd.Quality = v
	if nd.Kind == network.Junction {
		nd.J.InitQuality = v
	}
	return nil
}

func parseControl(net *network.Network, ln rawLine) []error {
	f := ln.fields
	if err := needFields(ln, 3); err != nil {
		return []error{err}
	}
	if strings.ToUpper(f[0]) != "LINK" {
		return []error{synErr(ln, "expected LINK, got %q", f[0])}
	}
	lk, ok := net.LinkByID(f[1])
	if !ok {
		return []error{synErr(ln, "CONTROLS references unknown link %q", f[1])}
	}
	c := &network.Control{LinkIdx: lk.Index}
	switch strings.ToUpper(f[2]) {
	case "OPEN":
		c.Action, c.StatusValue = network.ActionSetStatus, network.Open
	case "CLOSED":
		c.Action, c.StatusValue = network.ActionSetStatus, network.Closed
	default:
		v, err := parseFloat(ln, f[2])
		if err != nil {
			return []error{err}
		}
		c.Action, c.SettingValue = network.ActionSetSetting, v
	}
	rest := f[3:]
	if len(rest) == 0 {
		return []error{synErr(ln, "control missing IF/AT clause")}
	}
	switch strings.ToUpper(rest[0]) {
	case "IF":
		if len(rest) < 5 || strings.ToUpper(rest[1]) != "NODE" {
			return []error{synErr(ln, "malformed IF NODE clause")}
		}
		nd, ok := net.NodeByID(rest[2])
		if !ok {
			return []error{synErr(ln, "CONTROLS references unknown node %q", rest[2])}
		}
		c.NodeIdx = nd.Index
		v, err := parseFloat(ln, rest[4])
		if err != nil {
			return []error{err}
		}
		above := strings.ToUpper(rest[3]) == "ABOVE"
		u := unitsOf(net)
		if nd.Kind == network.Tank {
			c.Threshold = nd.Elevation + u.ToInternalLength(v)
			if above {
				c.Trigger = network.TankLevelAbove
			} else {
				c.Trigger = network.TankLevelBelow
			}
		} else {
			c.Threshold = units.PSIToHead(v * u.PressToPSI)
			if above {
				c.Trigger = network.PressureAbove
			} else {
				c.Trigger = network.PressureBelow
			}
		}
	case "AT":
		if len(rest) < 3 {
			return []error{synErr(ln, "malformed AT clause")}
		}
		switch strings.ToUpper(rest[1]) {
		case "TIME":
			t, err := ParseTimeString(rest[2], rest[2:])
			if err != nil {
				return []error{synErr(ln, "%v", err)}
			}
			c.Trigger = network.ElapsedTime
			c.Time = t
		case "CLOCKTIME":
			t, err := ParseTimeString(rest[2], rest[2:])
			if err != nil {
				return []error{synErr(ln, "%v", err)}
			}
			c.Trigger = network.TimeOfDay
			c.Time = t
		default:
			return []error{synErr(ln, "expected TIME or CLOCKTIME")}
		}
	default:
		return []error{synErr(ln, "expected IF or AT")}
	}
	net.AddControl(c)
	return nil
}

func parseOptionsLine(net *network.Network, ln rawLine) []error {
	f := ln.fields
	if len(f) < 2 {
		return nil
	}
	kw := strings.ToUpper(f[0])
	var errs []error
	switch kw {
	case "UNITS":
		fu, ok := units.ParseFlowUnit(f[1])
		if !ok {
			errs = append(errs, synErr(ln, "unknown flow unit %q", f[1]))
		} else {
			net.Opts.Units = units.NewFactors(fu)
		}
	case "HEADLOSS":
		switch strings.ToUpper(f[1]) {
		case "H-W", "HW":
			net.Opts.HeadLoss = network.HazenWilliams
		case "D-W", "DW":
			net.Opts.HeadLoss = network.DarcyWeisbach
		case "C-M", "CM":
			net.Opts.HeadLoss = network.ChezyManning
		}
	case "PATTERN":
		idx, ok := patternIdxOrDash(net, f[1])
		if ok {
			net.Opts.GlobalDemandPatIdx = idx
		}
	case "DEMAND":
		if len(f) >= 3 && strings.ToUpper(f[1]) == "MODEL" {
			switch strings.ToUpper(f[2]) {
			case "DDA":
				net.Opts.Demand = network.FixedDemand
			case "PDA":
				net.Opts.Demand = network.ConstrainedDemand
			}
		} else if len(f) >= 3 && strings.ToUpper(f[1]) == "MULTIPLIER" {
			v, err := parseFloat(ln, f[2])
			if err == nil {
				net.Opts.GlobalMultiplier = v
			}
		}
	case "MINIMUM":
		if len(f) >= 3 && strings.ToUpper(f[1]) == "PRESSURE" {
			v, err := parseFloat(ln, f[2])
			if err == nil {
				applyAllJunctions(net, func(j *network.JunctionData) { j.PMin = units.PSIToHead(v * net.Opts.Units.PressToPSI) })
			}
		}
	case "REQUIRED":
		if len(f) >= 3 && strings.ToUpper(f[1]) == "PRESSURE" {
			v, err := parseFloat(ln, f[2])
			if err == nil {
				applyAllJunctions(net, func(j *network.JunctionData) { j.PFull = units.PSIToHead(v * net.Opts.Units.PressToPSI) })
			}
		}
	case "EMITTER":
		if len(f) >= 3 && strings.ToUpper(f[1]) == "EXPONENT" {
			v, err := parseFloat(ln, f[2])
			if err == nil {
				for _, nd := range net.Nodes {
					if nd.Kind == network.Junction && nd.J.Emitter != nil {
						nd.J.Emitter.Expon = v
					}
				}
			}
		}
	case "TRIALS":
		v, err := strconv.Atoi(f[1])
		if err == nil {
			net.Opts.MaxTrials = v
		}
	case "ACCURACY":
		v, err := parseFloat(ln, f[1])
		if err == nil {
			net.Opts.FlowTolerance = v
		}
	case "HEADERROR":
		v, err := parseFloat(ln, f[1])
		if err == nil {
			net.Opts.HeadTolerance = v
		}
	case "UNBALANCED":
		switch strings.ToUpper(f[1]) {
		case "STOP":
			net.Opts.IfUnbalanced = network.Stop
		case "CONTINUE":
			net.Opts.IfUnbalanced = network.Continue
		}
	case "QUALITY":
		switch strings.ToUpper(f[1]) {
		case "NONE":
			net.Opts.Quality = network.QualityNone
		case "AGE":
			net.Opts.Quality = network.QualityAge
		case "TRACE":
			net.Opts.Quality = network.QualityTrace
			if len(f) > 2 {
				if nd, ok := net.NodeByID(f[2]); ok {
					net.Opts.TraceNodeIdx = nd.Index
				}
			}
		default:
			net.Opts.Quality = network.QualityChemical
		}
	}
	return errs
}

func applyAllJunctions(net *network.Network, fn func(*network.JunctionData)) {
	for _, nd := range net.Nodes {
		if nd.Kind == network.Junction {
			fn(nd.J)
		}
	}
}

func parseTimesLine(net *network.Network, ln rawLine) []error {
	f := ln.fields
	if len(f) < 2 {
		return nil
	}
	kw := strings.ToUpper(f[0])
	if kw == "START" && len(f) >= 3 && strings.ToUpper(f[1]) == "CLOCKTIME" {
		return nil // report-only reference clock, not modeled in Options
	}
	two := kw
	if len(f) >= 2 {
		two = kw + " " + strings.ToUpper(f[1])
	}
	var valFields []string
	var err error
	var secs float64
	switch {
	case kw == "DURATION":
		secs, err = ParseTimeString(f[1], f[1:])
		valFields = f[1:]
	case two == "HYDRAULIC TIMESTEP":
		secs, err = ParseTimeString(f[2], f[2:])
	case two == "QUALITY TIMESTEP":
		secs, err = ParseTimeString(f[2], f[2:])
	case two == "PATTERN TIMESTEP":
		secs, err = ParseTimeString(f[2], f[2:])
	case two == "PATTERN START":
		secs, err = ParseTimeString(f[2], f[2:])
	case two == "REPORT TIMESTEP":
		secs, err = ParseTimeString(f[2], f[2:])
	case two == "REPORT START":
		secs, err = ParseTimeString(f[2], f[2:])
	default:
		return nil
	}
	_ = valFields
	if err != nil {
		return []error{synErr(ln, "%v", err)}
	}
	switch {
	case kw == "DURATION":
		net.Opts.Duration = secs
	case two == "HYDRAULIC TIMESTEP":
		net.Opts.HydStep = secs
	case two == "QUALITY TIMESTEP":
		net.Opts.QualStep = secs
	case two == "PATTERN TIMESTEP":
		net.Opts.PatternStep = secs
	case two == "PATTERN START":
		// pattern start offset is folded into every pattern at build time
		// (buildPatterns); this loop covers patterns that already exist
		for _, p := range net.Patterns {
			p.StartOffset = secs
		}
	case two == "REPORT TIMESTEP":
		net.Opts.ReportStep = secs
	case two == "REPORT START":
		net.Opts.ReportStart = secs
	}
	return nil
}

func parseReportLine(net *network.Network, ln rawLine) []error {
	// report verbosity/formatting keywords (STATUS, SUMMARY, PAGE, node
	// and link selection lists) govern package report's text output, not
	// solver state; accepted and otherwise ignored here.
	return nil
}

func buildPatterns(net *network.Network, lines []rawLine) []error {
	order := make([]string, 0)
	byID := make(map[string][]float64)
	for _, ln := range lines {
		if ln.section != "PATTERNS" {
			continue
		}
		if len(ln.fields) < 2 {
			continue
		}
		id := ln.fields[0]
		if _, seen := byID[id]; !seen {
			order = append(order, id)
		}
		for _, s := range ln.fields[1:] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return []error{synErr(ln, "invalid pattern multiplier %q", s)}
			}
			byID[id] = append(byID[id], v)
		}
	}
	start := 0.0
	for _, ln := range lines {
		f := ln.fields
		if ln.section == "TIMES" && len(f) >= 3 && strings.ToUpper(f[0]) == "PATTERN" && strings.ToUpper(f[1]) == "START" {
			if secs, err := ParseTimeString(f[2], f[2:]); err == nil {
				start = secs
			}
		}
	}
	for _, id := range order {
		net.AddPattern(&network.Pattern{
			ID:          id,
			Kind:        network.FixedPattern,
			Multipliers: byID[id],
			Interval:    net.Opts.PatternStep,
			StartOffset: start,
		})
	}
	return nil
}

func buildCurves(net *network.Network, lines []rawLine) []error {
	order := make([]string, 0)
	xs := make(map[string][]float64)
	ys := make(map[string][]float64)
	for _, ln := range lines {
		if ln.section != "CURVES" {
			continue
		}
		if len(ln.fields) < 2 {
			continue
		}
		id := ln.fields[0]
		if _, seen := xs[id]; !seen {
			order = append(order, id)
		}
		x, e1 := strconv.ParseFloat(ln.fields[1], 64)
		y, e2 := strconv.ParseFloat(ln.fields[2], 64)
		if e1 != nil || e2 != nil {
			return []error{synErr(ln, "invalid curve point")}
		}
		xs[id] = append(xs[id], x)
		ys[id] = append(ys[id], y)
	}
	for _, id := range order {
		net.AddCurve(&network.Curve{ID: id, Kind: network.CurvePump, X: xs[id], Y: ys[id]})
	}
	return nil
}
