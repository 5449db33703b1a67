// Package inpfile parses the EPANET-style text input format of
// spec.md §6: a sequence of `[SECTION]` blocks, each holding
// whitespace-separated fields, comments introduced by `;`, parsed in
// two passes so that forward references (a junction naming a pattern
// defined later in the file) resolve correctly.
package inpfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cpmech/pipenet/devices"
	"github.com/cpmech/pipenet/network"
	"github.com/cpmech/pipenet/simerr"
	"github.com/cpmech/pipenet/units"
)

// rawLine is one non-blank, comment-stripped input line, tagged with
// the section it falls under and its 1-based source line number.
type rawLine struct {
	section string
	fields  []string
	line    int
}

// ignoredSections consume their lines without producing any network
// state: rule-based controls and purely cosmetic/GIS sections are out
// of scope (§1 Non-goals) but must not abort parsing of the rest of
// the file.
var ignoredSections = map[string]bool{
	"RULES": true, "ROUGHNESS": true, "VERTICES": true,
	"LABELS": true, "MAP": true, "BACKDROP": true, "TAGS": true,
}

// Parse reads an EPANET-style .inp file into a fully populated,
// unit-converted Network ready for Validate and simulation. Every error
// is accumulated rather than aborting on the first one, per §6's
// "collect parse errors" design; when more than
// 5*simerr.OffInputTooManyErrors have been collected, a closing
// simerr.ErrorsInInputData summary is appended to the list.
func Parse(r io.Reader) (*network.Network, []error) {
	lines, errs := tokenize(r)
	net := network.New()

	// pass 1: patterns, curves and [OPTIONS]/[TIMES] (so every
	// subsequent section can resolve names and use the right units).
	for _, ln := range lines {
		switch ln.section {
		case "PATTERNS":
			// accumulated in pass 1b below after all rows are seen
		case "CURVES":
		case "OPTIONS":
			errs = append(errs, parseOptionsLine(net, ln)...)
		case "TIMES":
			errs = append(errs, parseTimesLine(net, ln)...)
		case "REPORT":
			errs = append(errs, parseReportLine(net, ln)...)
		}
	}
	errs = append(errs, buildPatterns(net, lines)...)
	errs = append(errs, buildCurves(net, lines)...)

	// pass 2: entities, in dependency order.
	for _, ln := range lines {
		var lineErrs []error
		switch ln.section {
		case "TITLE":
			net.Title = strings.Join(ln.fields, " ")
		case "JUNCTIONS":
			lineErrs = parseJunction(net, ln)
		case "RESERVOIRS":
			lineErrs = parseReservoir(net, ln)
		case "TANKS":
			lineErrs = parseTank(net, ln)
		}
		errs = append(errs, lineErrs...)
	}
	for _, ln := range lines {
		var lineErrs []error
		switch ln.section {
		case "PIPES":
			lineErrs = parsePipe(net, ln)
		case "PUMPS":
			lineErrs = parsePump(net, ln)
		case "VALVES":
			lineErrs = parseValve(net, ln)
		}
		errs = append(errs, lineErrs...)
	}
	for _, ln := range lines {
		var lineErrs []error
		switch ln.section {
		case "DEMANDS":
			lineErrs = parseDemand(net, ln)
		case "EMITTERS":
			lineErrs = parseEmitter(net, ln)
		case "STATUS":
			lineErrs = parseStatus(net, ln)
		case "LEAKAGE":
			lineErrs = parseLeakage(net, ln)
		case "REACTIONS":
			lineErrs = parseReaction(net, ln)
		case "MIXING":
			lineErrs = parseMixing(net, ln)
		case "SOURCES":
			lineErrs = parseSource(net, ln)
		case "ENERGY":
			lineErrs = parseEnergy(net, ln)
		case "CONTROLS":
			lineErrs = parseControl(net, ln)
		case "COORDINATES":
			// geometry is display-only; accepted and discarded.
		case "QUALITY":
			lineErrs = parseQuality(net, ln)
		}
		errs = append(errs, lineErrs...)
	}

	for _, lk := range net.Links {
		if lk.Kind == network.Pump {
			devices.DerivePumpCoeffs(lk.U, net)
		}
	}

	if len(errs) > int(simerr.OffInputTooManyErrors)*5 {
		errs = append(errs, simerr.ErrorsInInputData(len(errs)))
	}
	return net, errs
}

func tokenize(r io.Reader) ([]rawLine, []error) {
	var out []rawLine
	var errs []error
	section := ""
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		text := sc.Text()
		if i := strings.IndexByte(text, ';'); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, "[") {
			end := strings.IndexByte(text, ']')
			if end < 0 {
				errs = append(errs, simerr.NewAtLine(simerr.KindInput, simerr.OffInputSyntax, lineNo, "unterminated section header"))
				continue
			}
			section = strings.ToUpper(strings.TrimSpace(text[1:end]))
			continue
		}
		if section == "" || section == "END" || ignoredSections[section] {
			continue
		}
		out = append(out, rawLine{section: section, fields: strings.Fields(text), line: lineNo})
	}
	if err := sc.Err(); err != nil {
		errs = append(errs, simerr.New(simerr.KindFile, simerr.OffFileRead, "reading input: %v", err))
	}
	return out, errs
}

func synErr(ln rawLine, format string, args ...interface{}) error {
	return simerr.NewAtLine(simerr.KindInput, simerr.OffInputSyntax, ln.line, fmt.Sprintf(format, args...))
}

func needFields(ln rawLine, n int) error {
	if len(ln.fields) < n {
		return simerr.NewAtLine(simerr.KindInput, simerr.OffInputTooFewItems, ln.line, "expected at least %d fields, got %d", n, len(ln.fields))
	}
	return nil
}

func parseFloat(ln rawLine, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, simerr.NewAtLine(simerr.KindInput, simerr.OffInputBadNumber, ln.line, "invalid number %q", s)
	}
	return v, nil
}

// patternIdxOrDash resolves a pattern-name field to an index, with the
// EPANET convention that an absent field or the literal "*"/"-1" means
// "no pattern".
func patternIdxOrDash(net *network.Network, s string) (int, bool) {
	if s == "" || s == "*" || s == "-1" {
		return -1, true
	}
	idx, ok := net.PatternIndex[s]
	if !ok {
		return -1, false
	}
	return idx, true
}

func curveIdxOrDash(net *network.Network, s string) (int, bool) {
	if s == "" || s == "*" || s == "-1" {
		return -1, true
	}
	idx, ok := net.CurveIndex[s]
	if !ok {
		return -1, false
	}
	return idx, true
}

// ParseTimeString parses the §6 time-string grammar: decimal hours
// ("2.5"), "HH:MM", "HH:MM:SS", with an optional trailing "AM"/"PM",
// returning seconds.
func ParseTimeString(s string, fields []string) (float64, error) {
	s = strings.ToUpper(s)
	suffix := ""
	if strings.HasSuffix(s, "AM") || strings.HasSuffix(s, "PM") {
		suffix = s[len(s)-2:]
		s = strings.TrimSpace(s[:len(s)-2])
	} else if len(fields) > 0 {
		last := strings.ToUpper(fields[len(fields)-1])
		if last == "AM" || last == "PM" {
			suffix = last
		}
	}
	var hours, minutes, seconds float64
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		hours = v
	case 2:
		h, err1 := strconv.ParseFloat(parts[0], 64)
		m, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		hours, minutes = h, m
	case 3:
		h, err1 := strconv.ParseFloat(parts[0], 64)
		m, err2 := strconv.ParseFloat(parts[1], 64)
		sec, err3 := strconv.ParseFloat(parts[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		hours, minutes, seconds = h, m, sec
	default:
		return 0, fmt.Errorf("invalid time %q", s)
	}
	if suffix == "AM" && hours == 12 {
		hours = 0
	}
	if suffix == "PM" && hours < 12 {
		hours += 12
	}
	return hours*3600 + minutes*60 + seconds, nil
}

// unitsOf is a small convenience shared by every section parser that
// needs the project's current conversion factors.
func unitsOf(net *network.Network) units.Factors { return net.Opts.Units }
