// aviation/maxspeed_test.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"bytes"
	"errors"
	gomath "math"
	"strings"
	"testing"

	"github.com/mmp/maxspeed/math"
)

func TestFixedVMO(t *testing.T) {
	spec, err := NewFixedLimits(234, 0)
	if err != nil {
		t.Fatal(err)
	}

	for _, alt := range []float64{-1000, 0, 10000, 14999, 45000, gomath.NaN()} {
		r := spec.Lookup(alt)
		if !r.HasVMO || r.VMO != 234 || r.HasMMO {
			t.Errorf("Lookup(%g) = %s, expected VMO 234 MMO --", alt, r)
		}
	}

	alt := math.MaskedArange(10000, 15000, 1)
	vmo, mmo := spec.LookupArray(alt)
	if vmo.Len() != alt.Len() || mmo.Len() != alt.Len() {
		t.Fatalf("got lengths %d, %d; expected %d", vmo.Len(), mmo.Len(), alt.Len())
	}
	if vmo.IsMasked() {
		t.Errorf("VMO array should have no masked elements")
	}
	if !mmo.AllMasked() {
		t.Errorf("MMO array should be entirely masked")
	}
	for i, v := range vmo.Data {
		if v != 234 {
			t.Errorf("VMO[%d] = %g, expected 234", i, v)
			break
		}
	}
}

func TestFixedMMO(t *testing.T) {
	spec := FixedMMO(0.89)

	if r := spec.Lookup(35000); !r.HasMMO || r.MMO != 0.89 || r.HasVMO {
		t.Errorf("Lookup(35000) = %s, expected VMO -- MMO 0.89", r)
	}

	alt := math.MaskedArange(10000, 15000, 1)
	vmo, mmo := spec.LookupArray(alt)
	if mmo.IsMasked() {
		t.Errorf("MMO array should have no masked elements")
	}
	if !vmo.AllMasked() {
		t.Errorf("VMO array should be entirely masked")
	}
	for i, v := range mmo.Data {
		if v != 0.89 {
			t.Errorf("MMO[%d] = %g, expected 0.89", i, v)
			break
		}
	}
}

func TestFixedIgnoresAltitudes(t *testing.T) {
	alt := math.MakeMaskedArray([]float64{gomath.NaN(), -500, 30000}, []bool{false, false, true})
	vmo, mmo := FixedVMO(340).LookupArray(alt)

	expected := math.MakeMaskedArray([]float64{340, 340, 340}, nil)
	if !vmo.Equal(expected) {
		t.Errorf("VMO = %v, expected %v", vmo, expected)
	}
	if !mmo.AllMasked() {
		t.Errorf("MMO = %v, expected all masked", mmo)
	}
}

func TestNewFixedLimitsErrors(t *testing.T) {
	for _, tc := range []struct {
		vmo, mmo float64
		err      error
	}{
		{0, 0, ErrNoLimits},
		{340, 0.82, ErrConflictingLimits},
		{-250, 0, ErrInvalidLimit},
		{0, gomath.Inf(1), ErrInvalidLimit},
		{gomath.NaN(), 0, ErrInvalidLimit},
		{0.82, 0, ErrInvalidLimit},
		{0, 340, ErrInvalidLimit},
		{0, 1, ErrInvalidLimit},
	} {
		if _, err := NewFixedLimits(tc.vmo, tc.mmo); !errors.Is(err, tc.err) {
			t.Errorf("NewFixedLimits(%g, %g) error = %v, expected %v", tc.vmo, tc.mmo, err, tc.err)
		}
	}
}

func TestL382(t *testing.T) {
	spec := L382Limits()

	// The published formulas, evaluated in float64 arithmetic.
	lower := func(alt float64) float64 { return 250 + alt*4/17500 }
	upper := func(alt float64) float64 { return 254 - (alt-17500)*52/15000 }

	for _, tc := range []struct {
		alt float64
		vmo float64
	}{
		{10000, lower(10000)},
		{30000, upper(30000)},
		{33000, 202},
		{0, 250},
		{17500, 254},
		{32500, 202},
		{-1000, lower(-1000)},
	} {
		r := spec.Lookup(tc.alt)
		if !r.HasVMO || r.HasMMO {
			t.Errorf("Lookup(%g) = %s, expected only a VMO", tc.alt, r)
		} else if r.VMO != tc.vmo {
			t.Errorf("Lookup(%g) VMO = %v, expected %v", tc.alt, r.VMO, tc.vmo)
		}
	}

	alt := math.MaskedArange(9000, 35000, 1)
	vmo, mmo := spec.LookupArray(alt)
	if vmo.IsMasked() {
		t.Errorf("VMO array should have no masked elements")
	}
	if !mmo.AllMasked() {
		t.Errorf("MMO array should be entirely masked")
	}
}

func TestGlobalExpress(t *testing.T) {
	spec := GlobalExpressLimits()

	for _, tc := range []struct {
		alt      float64
		expected LookupResult
	}{
		{7000, LookupResult{VMO: 300, HasVMO: true}},
		{8000, LookupResult{VMO: 340, HasVMO: true}},
		{30000, LookupResult{VMO: 340, HasVMO: true}},
		{30267, LookupResult{MMO: 0.89, HasMMO: true}},
		{34000, LookupResult{MMO: 0.89, HasMMO: true}},
		{40000, LookupResult{MMO: 0.88, HasMMO: true}},
		{45000, LookupResult{MMO: 0.858, HasMMO: true}},
		{50000, LookupResult{MMO: 0.842, HasMMO: true}},
		{gomath.Inf(1), LookupResult{MMO: 0.842, HasMMO: true}},
	} {
		if r := spec.Lookup(tc.alt); r != tc.expected {
			t.Errorf("Lookup(%g) = %s, expected %s", tc.alt, r, tc.expected)
		}
	}
}

func TestGlobalExpressArray(t *testing.T) {
	spec := GlobalExpressLimits()

	alt := math.MaskedArange(7000, 50001, 1)
	vmo, mmo := spec.LookupArray(alt)

	below := alt.InRange(gomath.Inf(-1), 30267)
	above := alt.AtLeast(30267)

	if vmo.Filter(above).Count() != 0 {
		t.Errorf("VMO should be masked above 30267 ft")
	}
	if mmo.Filter(below).Count() != 0 {
		t.Errorf("MMO should be masked below 30267 ft")
	}

	var expectedVMO []float64
	for range 8000 - 7000 {
		expectedVMO = append(expectedVMO, 300)
	}
	for range 30267 - 8000 {
		expectedVMO = append(expectedVMO, 340)
	}
	if got := vmo.Filter(below); !got.Equal(math.MakeMaskedArray(expectedVMO, nil)) {
		t.Errorf("unexpected VMO values below 30267 ft")
	}

	var expectedMMO []float64
	for _, b := range []struct {
		n   int
		mmo float64
	}{
		{35000 - 30267, 0.89},
		{41400 - 35000, 0.88},
		{47000 - 41400, 0.858},
		{50001 - 47000, 0.842},
	} {
		for range b.n {
			expectedMMO = append(expectedMMO, b.mmo)
		}
	}
	if got := mmo.Filter(above); !got.Equal(math.MakeMaskedArray(expectedMMO, nil)) {
		t.Errorf("unexpected MMO values above 30267 ft")
	}
}

func TestArrayMatchesScalar(t *testing.T) {
	alt := math.MakeMaskedArray([]float64{-2000, 0, 7999.5, 8000, 17499, 17500, 30266.9, 30267,
		32499, 32500, 34999, 35000, 41400, 46999, 47000, 60000}, nil)

	for name, spec := range map[string]*LimitSpec{
		"L382":           L382Limits(),
		"Global Express": GlobalExpressLimits(),
	} {
		t.Run(name, func(t *testing.T) {
			vmo, mmo := spec.LookupArray(alt)
			for i, a := range alt.Data {
				r := spec.Lookup(a)
				v, vok := vmo.At(i)
				m, mok := mmo.At(i)

				if vok == mok {
					t.Errorf("alt %g: VMO valid %v, MMO valid %v; expected exactly one", a, vok, mok)
				}
				if vok != r.HasVMO || (vok && v != r.VMO) {
					t.Errorf("alt %g: VMO array %g/%v, scalar %s", a, v, vok, r)
				}
				if mok != r.HasMMO || (mok && m != r.MMO) {
					t.Errorf("alt %g: MMO array %g/%v, scalar %s", a, m, mok, r)
				}
			}
		})
	}
}

func TestBandedDomainMisses(t *testing.T) {
	spec := MustBandedLimits(
		ConstantSpeedBand(0, 10000, 250),
		ConstantMachBand(10000, gomath.Inf(1), 0.8))

	for _, alt := range []float64{-1, gomath.NaN(), gomath.Inf(-1)} {
		if r := spec.Lookup(alt); r.HasVMO || r.HasMMO {
			t.Errorf("Lookup(%g) = %s, expected neither", alt, r)
		}
	}

	alt := math.MakeMaskedArray([]float64{-1, gomath.NaN(), 5000, 20000}, []bool{false, false, true, false})
	vmo, mmo := spec.LookupArray(alt)
	expectedVMO := math.MaskedFull(4, 0, true)
	expectedMMO := math.MakeMaskedArray([]float64{0, 0, 0, 0.8}, []bool{true, true, true, false})
	if !vmo.Equal(expectedVMO) {
		t.Errorf("VMO = %v, expected %v", vmo, expectedVMO)
	}
	if !mmo.Equal(expectedMMO) {
		t.Errorf("MMO = %v, expected %v", mmo, expectedMMO)
	}
}

func TestTerminalBandOpenEnded(t *testing.T) {
	// The last band's upper bound is ignored.
	spec, err := NewBandedLimits(
		ConstantSpeedBand(gomath.Inf(-1), 10000, 250),
		ConstantMachBand(10000, 20000, 0.8))
	if err != nil {
		t.Fatal(err)
	}

	if r := spec.Lookup(45000); !r.HasMMO || r.MMO != 0.8 {
		t.Errorf("Lookup(45000) = %s, expected MMO 0.8", r)
	}
	if b := spec.Bands(); !gomath.IsInf(b[len(b)-1].Upper, 1) {
		t.Errorf("last band upper bound = %g, expected +Inf", b[len(b)-1].Upper)
	}
}

func TestNewBandedLimitsErrors(t *testing.T) {
	inf := gomath.Inf(1)
	for _, tc := range []struct {
		name  string
		bands []Band
		msgs  []string
	}{
		{name: "empty", msgs: []string{"no bands"}},
		{
			name: "overlap",
			bands: []Band{
				ConstantSpeedBand(-inf, 10000, 250),
				ConstantSpeedBand(9000, inf, 300),
			},
			msgs: []string{"band 1", "overlaps"},
		},
		{
			name: "gap",
			bands: []Band{
				ConstantSpeedBand(-inf, 10000, 250),
				ConstantSpeedBand(11000, inf, 300),
			},
			msgs: []string{"band 1", "gap"},
		},
		{
			name: "unsorted",
			bands: []Band{
				ConstantSpeedBand(10000, 20000, 300),
				ConstantSpeedBand(-inf, 10000, 250),
			},
			msgs: []string{"band 1"},
		},
		{
			name: "bad slope and value",
			bands: []Band{
				LinearSpeedBand(-inf, 10000, 250, 4, 0),
				ConstantMachBand(10000, inf, -0.8),
			},
			msgs: []string{"band 0", "slope denominator", "band 1", "constant_mach"},
		},
		{
			name:  "empty band",
			bands: []Band{ConstantSpeedBand(10000, 10000, 250), ConstantSpeedBand(10000, inf, 250)},
			msgs:  []string{"band 0", "not below"},
		},
		{
			name: "speed and Mach swapped",
			bands: []Band{
				ConstantMachBand(-inf, 1000, 340),
				ConstantSpeedBand(1000, inf, 0.8),
			},
			msgs: []string{"band 0", "340: invalid constant_mach", "band 1", "0.8: invalid constant_speed"},
		},
		{
			name:  "Mach intercept",
			bands: []Band{LinearSpeedBand(-inf, inf, 0.8, 1, 1000)},
			msgs:  []string{"invalid linear_speed intercept"},
		},
		{
			name:  "unknown kind",
			bands: []Band{{Lower: -inf, Upper: inf, Kind: BandKind(7), Value: 1}},
			msgs:  []string{"unknown band kind"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBandedLimits(tc.bands...)
			if !errors.Is(err, ErrInvalidBands) {
				t.Fatalf("error = %v, expected ErrInvalidBands", err)
			}
			for _, msg := range tc.msgs {
				if !strings.Contains(err.Error(), msg) {
					t.Errorf("error %q doesn't mention %q", err, msg)
				}
			}
		})
	}
}

func TestBandsIsCopy(t *testing.T) {
	spec := GlobalExpressLimits()
	b := spec.Bands()
	b[0].Value = 999

	if r := spec.Lookup(0); r.VMO != 300 {
		t.Errorf("modifying Bands() result changed the table: %s", r)
	}
}

func TestNoLimits(t *testing.T) {
	spec := NewNoLimits()
	if r := spec.Lookup(10000); r.HasVMO || r.HasMMO {
		t.Errorf("Lookup = %s, expected neither", r)
	}
	vmo, mmo := spec.LookupArray(math.MaskedArange(0, 10, 1))
	if vmo.Len() != 10 || !vmo.AllMasked() || !mmo.AllMasked() {
		t.Errorf("LookupArray = %v, %v; expected all masked", vmo, mmo)
	}
}

func TestAccessors(t *testing.T) {
	spec := GlobalExpressLimits()

	if v, ok := spec.VMO(7000); !ok || v != 300 {
		t.Errorf("VMO(7000) = %g, %v", v, ok)
	}
	if _, ok := spec.MMO(7000); ok {
		t.Errorf("MMO(7000) should be missing")
	}
	if m, ok := spec.MMO(40000); !ok || m != 0.88 {
		t.Errorf("MMO(40000) = %g, %v", m, ok)
	}

	alt := math.MakeMaskedArray([]float64{7000, 40000}, nil)
	if v := spec.VMOArray(alt); !v.Valid(0) || v.Valid(1) {
		t.Errorf("VMOArray = %v", v)
	}
	if m := spec.MMOArray(alt); m.Valid(0) || !m.Valid(1) {
		t.Errorf("MMOArray = %v", m)
	}
}

func TestLimitSpecString(t *testing.T) {
	for _, tc := range []struct {
		spec     *LimitSpec
		expected string
	}{
		{FixedVMO(340), "fixed VMO 340 kt"},
		{FixedMMO(0.82), "fixed MMO M0.82"},
		{NewNoLimits(), "none"},
		{MustBandedLimits(ConstantSpeedBand(gomath.Inf(-1), 8000, 300), ConstantMachBand(8000, 0, 0.8)),
			"banded [-Inf, 8000): 300 kt; [8000, +Inf): M0.8"},
	} {
		if s := tc.spec.String(); s != tc.expected {
			t.Errorf("String() = %q, expected %q", s, tc.expected)
		}
	}
}

func TestKindStrings(t *testing.T) {
	for _, tc := range []struct {
		s, expected string
	}{
		{NoLimits.String(), "none"},
		{FixedLimits.String(), "fixed"},
		{BandedLimits.String(), "banded"},
		{LimitKind(5).String(), "LimitKind(5)"},
		{LinearSpeed.String(), "linear_speed"},
		{BandKind(7).String(), "BandKind(7)"},
	} {
		if tc.s != tc.expected {
			t.Errorf("got %q, expected %q", tc.s, tc.expected)
		}
	}
}

func TestParseBandKind(t *testing.T) {
	for _, k := range []BandKind{ConstantSpeed, ConstantMach, LinearSpeed} {
		if p, err := ParseBandKind(k.String()); err != nil || p != k {
			t.Errorf("ParseBandKind(%q) = %v, %v", k.String(), p, err)
		}
	}
	if _, err := ParseBandKind("linear_mach"); err == nil {
		t.Errorf("expected error for unknown band kind")
	}
}

func TestEncodeLimitArrays(t *testing.T) {
	alt := math.MaskedArange(29000, 31000, 10)
	vmo, mmo := GlobalExpressLimits().LookupArray(alt)

	var buf bytes.Buffer
	if err := EncodeLimitArrays(&buf, vmo, mmo); err != nil {
		t.Fatal(err)
	}
	dvmo, dmmo, err := DecodeLimitArrays(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !dvmo.Equal(vmo) || !dmmo.Equal(mmo) {
		t.Errorf("decoded arrays don't match")
	}

	if err := EncodeLimitArrays(&buf, vmo, math.MaskedArray{}); err == nil {
		t.Errorf("expected error for mismatched lengths")
	}
}
