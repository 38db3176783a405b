package gocalc

import (
	"bytes"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestSessions(t *testing.T) {
	fns, err := filepath.Glob("testdata/*.calc")
	if err != nil {
		t.Fatal(err)
	}
	if len(fns) == 0 {
		t.Fatal("no sessions found")
	}

	for _, fn := range fns {
		t.Log(fn)
		b, err := os.ReadFile(fn)
		if err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		repl := NewREPL(bytes.NewReader(b), &buf, nil)
		if err := repl.Run(); err != nil {
			t.Error(err)
			continue
		}
		got := buf.String()
		b, err = os.ReadFile(strings.TrimSuffix(fn, ".calc") + ".out")
		if err != nil {
			t.Fatal(err)
		}
		want := string(b)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s: %s", fn, diff)
		}
	}
}

func TestOperatorTable(t *testing.T) {
	var got []string
	for op := range binaryOps {
		got = append(got, op)
	}
	want := []string{"%", "*", "**", "+", "-", "/", "//"}
	if diff := cmp.Diff(want, got, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Error(diff)
	}
	if len(unaryOps) != 2 || unaryOps["-"] == nil || unaryOps["+"] == nil {
		t.Errorf("unexpected unary operators: %v", len(unaryOps))
	}
}

func TestFloatDivmod(t *testing.T) {
	tests := []struct {
		x, y     float64
		div, mod float64
	}{
		{7.5, 2, 3, 1.5},
		{-7.5, 2, -4, 0.5},
		{7.5, -2, -4, -0.5},
		{-7.5, -2, 3, -1.5},
		{6, 3, 2, 0},
	}
	for _, test := range tests {
		div, mod := floatDivmod(test.x, test.y)
		if div != test.div || mod != test.mod {
			t.Errorf("divmod(%v, %v): want (%v, %v) but got (%v, %v)", test.x, test.y, test.div, test.mod, div, mod)
		}
	}
}

func TestIntDivmod(t *testing.T) {
	tests := []struct {
		x, y     int64
		div, mod int64
	}{
		{7, 2, 3, 1},
		{-7, 2, -4, 1},
		{7, -2, -4, -1},
		{-7, -2, 3, -1},
		{6, 3, 2, 0},
		{-6, 3, -2, 0},
	}
	for _, test := range tests {
		div, mod := intDivmod(big.NewInt(test.x), big.NewInt(test.y))
		if div.Int64() != test.div || mod.Int64() != test.mod {
			t.Errorf("divmod(%v, %v): want (%v, %v) but got (%v, %v)", test.x, test.y, test.div, test.mod, div, mod)
		}
	}
}

func TestPowIntLimit(t *testing.T) {
	tests := []struct {
		base, exp int64
		fail      bool
	}{
		{2, MaxIntBits - 1, false},
		{2, MaxIntBits, true},
		{2, 1 << 40, true},
		{1, 1 << 40, false},
		{-1, 1 << 40, false},
		{0, 1 << 40, false},
		{1 << 20, MaxIntBits / 20, false},
		{1 << 20, MaxIntBits/20 + 1, true},
	}
	for _, test := range tests {
		_, err := powInt(big.NewInt(test.base), big.NewInt(test.exp))
		if got := errors.Is(err, ErrOverflow); got != test.fail {
			t.Errorf("%d ** %d: want overflow %v but got %v", test.base, test.exp, test.fail, err)
		}
	}
}
