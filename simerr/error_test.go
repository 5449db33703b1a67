package simerr

import (
	"strings"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestErrorCode(tst *testing.T) {
	chk.PrintTitle("error code composition")
	e := New(KindInput, OffInputBadNumber, "bad number %q", "abc")
	chk.IntAssert(e.Code(), 206)
	if e.Kind.String() != "input" {
		tst.Fatalf("expected kind string 'input', got %q", e.Kind.String())
	}
}

func TestErrorAtLineFormatting(tst *testing.T) {
	chk.PrintTitle("error with line number")
	e := NewAtLine(KindInput, OffInputSyntax, 42, "unexpected token")
	msg := e.Error()
	if !strings.Contains(msg, "line 42") {
		tst.Fatalf("expected message to mention line 42, got %q", msg)
	}
}

func TestErrorWithoutLineOmitsLine(tst *testing.T) {
	chk.PrintTitle("error without line number")
	e := New(KindNetwork, OffNetworkUnconnected, "node %s is unreachable", "J1")
	msg := e.Error()
	if strings.Contains(msg, "line") {
		tst.Fatalf("did not expect a line reference, got %q", msg)
	}
}

func TestKindBaseCodesAreDisjointRanges(tst *testing.T) {
	chk.PrintTitle("kind base code ranges are disjoint")
	kinds := []Kind{KindSystem, KindInput, KindNetwork, KindFile, KindRuntime}
	seen := map[int]Kind{}
	for _, k := range kinds {
		base := k.baseCode()
		if other, ok := seen[base]; ok {
			tst.Fatalf("kinds %v and %v share base code %d", k, other, base)
		}
		seen[base] = k
	}
}

func TestErrorsInInputData(tst *testing.T) {
	chk.PrintTitle("errors in input data summary")
	e := ErrorsInInputData(3)
	chk.IntAssert(e.Kind.baseCode()+e.Offset, 209)
}
