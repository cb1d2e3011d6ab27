// aviation/maxspeed.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"io"
	"strings"

	"github.com/mmp/maxspeed/math"
	"github.com/mmp/maxspeed/util"

	"github.com/brunoga/deep"
)

///////////////////////////////////////////////////////////////////////////
// Band

type BandKind int

const (
	ConstantSpeed BandKind = iota // fixed VMO, knots
	ConstantMach                  // fixed MMO
	LinearSpeed                   // VMO varying linearly with altitude
)

func (k BandKind) String() string {
	switch k {
	case ConstantSpeed:
		return "constant_speed"
	case ConstantMach:
		return "constant_mach"
	case LinearSpeed:
		return "linear_speed"
	default:
		return fmt.Sprintf("BandKind(%d)", int(k))
	}
}

func ParseBandKind(s string) (BandKind, error) {
	for _, k := range []BandKind{ConstantSpeed, ConstantMach, LinearSpeed} {
		if s == k.String() {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%q: unknown band kind", s)
}

// IsSpeed returns true if bands of this kind give a VMO (rather than an
// MMO).
func (k BandKind) IsSpeed() bool {
	return k == ConstantSpeed || k == LinearSpeed
}

// Band gives the VMO or MMO over the pressure altitude interval [Lower,
// Upper), in feet. Lower may be -Inf for the first band of a table; the
// last band of a table applies to all altitudes above its Lower bound.
//
// For LinearSpeed bands, the speed is Value + (alt - Datum) *
// SlopeNum / SlopeDen; the slope is kept as a ratio so that the published
// formulas are reproduced exactly.
type Band struct {
	Lower, Upper float64
	Kind         BandKind
	Value        float64
	Datum        float64
	SlopeNum     float64
	SlopeDen     float64
}

func ConstantSpeedBand(lower, upper, vmo float64) Band {
	return Band{Lower: lower, Upper: upper, Kind: ConstantSpeed, Value: vmo}
}

func ConstantMachBand(lower, upper, mmo float64) Band {
	return Band{Lower: lower, Upper: upper, Kind: ConstantMach, Value: mmo}
}

// LinearSpeedBand returns a band where the VMO is intercept at the band's
// lower bound and changes by slopeNum/slopeDen knots per foot. If the lower
// bound is -Inf, the intercept is taken to be at 0 ft.
func LinearSpeedBand(lower, upper, intercept, slopeNum, slopeDen float64) Band {
	datum := lower
	if !math.IsFinite(datum) {
		datum = 0
	}
	return Band{
		Lower:    lower,
		Upper:    upper,
		Kind:     LinearSpeed,
		Value:    intercept,
		Datum:    datum,
		SlopeNum: slopeNum,
		SlopeDen: slopeDen,
	}
}

// Contains returns true if lower <= alt < upper.
func (b Band) Contains(alt float64) bool {
	return alt >= b.Lower && alt < b.Upper
}

// Eval returns the band's value at the given altitude; the caller is
// responsible for checking that the altitude is in the band.
func (b Band) Eval(alt float64) float64 {
	if b.Kind == LinearSpeed {
		return b.Value + (alt-b.Datum)*b.SlopeNum/b.SlopeDen
	}
	return b.Value
}

func (b Band) String() string {
	var rule string
	switch b.Kind {
	case ConstantSpeed:
		rule = fmt.Sprintf("%g kt", b.Value)
	case ConstantMach:
		rule = fmt.Sprintf("M%g", b.Value)
	case LinearSpeed:
		rule = fmt.Sprintf("%g + (alt-%g)*%g/%g kt", b.Value, b.Datum, b.SlopeNum, b.SlopeDen)
	default:
		rule = b.Kind.String()
	}
	return fmt.Sprintf("[%g, %g): %s", b.Lower, b.Upper, rule)
}

func (b Band) check(e *util.ErrorLogger) {
	if math.IsNaN(b.Lower) || math.IsNaN(b.Upper) {
		e.ErrorString("NaN band bound")
	} else if b.Lower >= b.Upper {
		e.ErrorString("lower bound %g is not below upper bound %g", b.Lower, b.Upper)
	}

	switch b.Kind {
	case ConstantSpeed:
		if !validVMO(b.Value) {
			e.ErrorString("%g: invalid %s value", b.Value, b.Kind)
		}
	case ConstantMach:
		if !validMMO(b.Value) {
			e.ErrorString("%g: invalid %s value", b.Value, b.Kind)
		}
	case LinearSpeed:
		if !math.IsFinite(b.Datum) || !math.IsFinite(b.SlopeNum) {
			e.ErrorString("non-finite linear speed parameters")
		} else if !validVMO(b.Value) {
			e.ErrorString("%g: invalid %s intercept", b.Value, b.Kind)
		}
		if b.SlopeDen == 0 || !math.IsFinite(b.SlopeDen) {
			e.ErrorString("%g: invalid slope denominator", b.SlopeDen)
		}
	default:
		e.ErrorString("%s: unknown band kind", b.Kind)
	}
}

// Speeds are in knots and so well above any Mach number; a "speed" of
// 10 or less is almost certainly a Mach number in the wrong field.
const minVMO = 10

func validVMO(v float64) bool { return math.IsFinite(v) && v > minVMO }
func validMMO(m float64) bool { return math.IsFinite(m) && m > 0 && m < 1 }

///////////////////////////////////////////////////////////////////////////
// LimitSpec

type LimitKind int

const (
	NoLimits     LimitKind = iota // nothing known; all lookups are missing
	FixedLimits                   // altitude-independent VMO or MMO
	BandedLimits                  // piecewise by pressure altitude
)

func (k LimitKind) String() string {
	switch k {
	case NoLimits:
		return "none"
	case FixedLimits:
		return "fixed"
	case BandedLimits:
		return "banded"
	default:
		return fmt.Sprintf("LimitKind(%d)", int(k))
	}
}

// LimitSpec describes an aircraft type's VMO/MMO as a function of pressure
// altitude. It is immutable once constructed and so may be shared freely
// and used concurrently.
type LimitSpec struct {
	kind LimitKind

	// FixedLimits; zero when not given.
	vmo, mmo float64

	// BandedLimits; the last band's Upper is +Inf.
	bands []Band
}

// LookupResult holds the limits at a single altitude. VMO is in knots.
type LookupResult struct {
	VMO, MMO       float64
	HasVMO, HasMMO bool
}

func (r LookupResult) String() string {
	s := func(v float64, ok bool) string {
		if !ok {
			return "--"
		}
		return fmt.Sprintf("%g", v)
	}
	return "VMO " + s(r.VMO, r.HasVMO) + " MMO " + s(r.MMO, r.HasMMO)
}

// NewNoLimits returns a LimitSpec for which every lookup is missing; it's
// used for aircraft where VMO/MMO come from elsewhere (e.g., recorded in
// the data frame).
func NewNoLimits() *LimitSpec {
	return &LimitSpec{kind: NoLimits}
}

// NewFixedLimits returns a LimitSpec with a constant VMO or MMO; zero
// means "not given". Exactly one of the two must be given; a VMO must be
// more than 10 kt and an MMO must be between 0 and 1.
func NewFixedLimits(vmo, mmo float64) (*LimitSpec, error) {
	if vmo == 0 && mmo == 0 {
		return nil, ErrNoLimits
	} else if vmo != 0 && mmo != 0 {
		return nil, fmt.Errorf("VMO %g, MMO %g: %w", vmo, mmo, ErrConflictingLimits)
	}
	if vmo != 0 && !validVMO(vmo) {
		return nil, fmt.Errorf("VMO %g: %w", vmo, ErrInvalidLimit)
	} else if mmo != 0 && !validMMO(mmo) {
		return nil, fmt.Errorf("MMO %g: %w", mmo, ErrInvalidLimit)
	}
	return &LimitSpec{kind: FixedLimits, vmo: vmo, mmo: mmo}, nil
}

// FixedVMO is a convenience wrapper around NewFixedLimits for statically
// known values; it panics if vmo is invalid.
func FixedVMO(vmo float64) *LimitSpec {
	return must(NewFixedLimits(vmo, 0))
}

func FixedMMO(mmo float64) *LimitSpec {
	return must(NewFixedLimits(0, mmo))
}

// NewBandedLimits returns a LimitSpec for the given bands, which must be
// sorted by altitude and contiguous. All problems with the bands are
// reported in the returned error, which wraps ErrInvalidBands.
func NewBandedLimits(bands ...Band) (*LimitSpec, error) {
	var e util.ErrorLogger
	checkBands(bands, &e)
	if err := e.Err(ErrInvalidBands); err != nil {
		return nil, err
	}

	b := deep.MustCopy(bands)
	b[len(b)-1].Upper = math.Inf(1)
	return &LimitSpec{kind: BandedLimits, bands: b}, nil
}

// MustBandedLimits is like NewBandedLimits but panics on invalid bands.
func MustBandedLimits(bands ...Band) *LimitSpec {
	return must(NewBandedLimits(bands...))
}

func must(s *LimitSpec, err error) *LimitSpec {
	if err != nil {
		panic(err)
	}
	return s
}

func checkBands(bands []Band, e *util.ErrorLogger) {
	if len(bands) == 0 {
		e.ErrorString("no bands given")
		return
	}

	for i, b := range bands {
		e.Push(fmt.Sprintf("band %d", i))

		if i == len(bands)-1 {
			// The last band is open-ended whatever its upper bound says.
			b.Upper = math.Inf(1)
		}
		b.check(e)

		if i > 0 {
			prev := bands[i-1]
			if b.Lower < prev.Upper {
				e.ErrorString("lower bound %g overlaps previous band ending at %g", b.Lower, prev.Upper)
			} else if b.Lower > prev.Upper {
				e.ErrorString("gap between previous band ending at %g and lower bound %g", prev.Upper, b.Lower)
			}
		}

		e.Pop()
	}
}

func (s *LimitSpec) Kind() LimitKind {
	return s.kind
}

// Bands returns a copy of the bands of a banded LimitSpec.
func (s *LimitSpec) Bands() []Band {
	return deep.MustCopy(s.bands)
}

func (s *LimitSpec) String() string {
	switch s.kind {
	case FixedLimits:
		if s.vmo != 0 {
			return fmt.Sprintf("fixed VMO %g kt", s.vmo)
		}
		return fmt.Sprintf("fixed MMO M%g", s.mmo)
	case BandedLimits:
		var b []string
		for _, band := range s.bands {
			b = append(b, band.String())
		}
		return "banded " + strings.Join(b, "; ")
	default:
		return "none"
	}
}

// band returns the index of the band that the altitude is in, if any.
func (s *LimitSpec) band(alt float64) (int, bool) {
	if math.IsNaN(alt) || alt < s.bands[0].Lower {
		return 0, false
	}
	for i, b := range s.bands {
		if alt < b.Upper || i == len(s.bands)-1 {
			return i, true
		}
	}
	return 0, false
}

// Lookup returns the VMO/MMO at the given pressure altitude (feet).
// Banded tables give exactly one of the two for altitudes in their domain;
// NaN altitudes and altitudes below the first band give neither.
func (s *LimitSpec) Lookup(alt float64) LookupResult {
	switch s.kind {
	case FixedLimits:
		return LookupResult{VMO: s.vmo, MMO: s.mmo, HasVMO: s.vmo != 0, HasMMO: s.mmo != 0}

	case BandedLimits:
		i, ok := s.band(alt)
		if !ok {
			return LookupResult{}
		}
		b := s.bands[i]
		if b.Kind.IsSpeed() {
			return LookupResult{VMO: b.Eval(alt), HasVMO: true}
		}
		return LookupResult{MMO: b.Eval(alt), HasMMO: true}

	default:
		return LookupResult{}
	}
}

// LookupArray returns VMO and MMO arrays for the given pressure altitudes;
// elements where a limit doesn't apply are masked. For banded tables,
// masked altitudes give masked elements in both results; fixed tables
// ignore the altitudes entirely.
func (s *LimitSpec) LookupArray(alt math.MaskedArray) (vmo, mmo math.MaskedArray) {
	n := alt.Len()

	switch s.kind {
	case FixedLimits:
		return math.MaskedFull(n, s.vmo, s.vmo == 0), math.MaskedFull(n, s.mmo, s.mmo == 0)

	case BandedLimits:
		vmo, mmo = math.MaskedFull(n, 0, true), math.MaskedFull(n, 0, true)
		for i, b := range s.bands {
			// Evaluate the band's formula over the whole array and then
			// take the elements that are actually in the band.
			var cond []bool
			if i == len(s.bands)-1 {
				cond = alt.AtLeast(b.Lower)
			} else {
				cond = alt.InRange(b.Lower, b.Upper)
			}
			values := alt.Map(b.Eval)

			if b.Kind.IsSpeed() {
				vmo = vmo.Where(cond, values)
			} else {
				mmo = mmo.Where(cond, values)
			}
		}
		return vmo, mmo

	default:
		return math.MaskedFull(n, 0, true), math.MaskedFull(n, 0, true)
	}
}

// VMO returns the VMO at the given altitude, if there is one.
func (s *LimitSpec) VMO(alt float64) (float64, bool) {
	r := s.Lookup(alt)
	return r.VMO, r.HasVMO
}

// MMO returns the MMO at the given altitude, if there is one.
func (s *LimitSpec) MMO(alt float64) (float64, bool) {
	r := s.Lookup(alt)
	return r.MMO, r.HasMMO
}

func (s *LimitSpec) VMOArray(alt math.MaskedArray) math.MaskedArray {
	vmo, _ := s.LookupArray(alt)
	return vmo
}

func (s *LimitSpec) MMOArray(alt math.MaskedArray) math.MaskedArray {
	_, mmo := s.LookupArray(alt)
	return mmo
}

///////////////////////////////////////////////////////////////////////////
// Encoding

type limitArrays struct {
	VMO math.MaskedArray `msgpack:"vmo"`
	MMO math.MaskedArray `msgpack:"mmo"`
}

// EncodeLimitArrays writes a pair of VMO/MMO arrays to w, msgpack encoded
// and zstd compressed.
func EncodeLimitArrays(w io.Writer, vmo, mmo math.MaskedArray) error {
	if vmo.Len() != mmo.Len() {
		return fmt.Errorf("VMO length %d doesn't match MMO length %d", vmo.Len(), mmo.Len())
	}
	return util.EncodeMsgpackZstd(w, limitArrays{VMO: vmo, MMO: mmo})
}

func DecodeLimitArrays(r io.Reader) (vmo, mmo math.MaskedArray, err error) {
	var la limitArrays
	if err = util.DecodeMsgpackZstd(r, &la); err != nil {
		return
	}
	if la.VMO.Len() != la.MMO.Len() {
		err = fmt.Errorf("VMO length %d doesn't match MMO length %d", la.VMO.Len(), la.MMO.Len())
		return
	}
	return la.VMO, la.MMO, nil
}
