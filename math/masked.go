// math/masked.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"fmt"
	gomath "math"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

///////////////////////////////////////////////////////////////////////////
// MaskedArray

// MaskedArray is a series of float64 values, each of which may be marked
// invalid independently of its numeric value. Following the numpy
// convention, Mask[i] == true means that element i is masked (missing);
// a nil Mask means that all elements are valid.
//
// Operations never modify their receiver or arguments; they return
// freshly-allocated arrays.
type MaskedArray struct {
	Data []float64
	Mask []bool
}

// MakeMaskedArray returns a MaskedArray holding copies of the provided
// slices. mask may be nil; otherwise it must be the same length as data.
func MakeMaskedArray(data []float64, mask []bool) MaskedArray {
	if mask != nil && len(mask) != len(data) {
		panic(fmt.Sprintf("mask length %d doesn't match data length %d", len(mask), len(data)))
	}
	a := MaskedArray{Data: append([]float64(nil), data...)}
	if mask != nil {
		a.Mask = append([]bool(nil), mask...)
	}
	return a
}

// MaskedArange returns an unmasked array with values start, start+step, ...
// up to but not including stop. Values are computed as start+i*step so
// that fractional steps don't accumulate error.
func MaskedArange(start, stop, step float64) MaskedArray {
	if step == 0 || !IsFinite(start) || !IsFinite(stop) || !IsFinite(step) {
		panic(fmt.Sprintf("MaskedArange: invalid range %g, %g, %g", start, stop, step))
	}
	n := int(gomath.Ceil((stop - start) / step))
	if n <= 0 {
		return MaskedArray{}
	}

	a := MaskedArray{Data: make([]float64, n)}
	for i := range n {
		a.Data[i] = start + float64(i)*step
	}
	return a
}

// MaskedFull returns an array of n copies of v, all masked or all valid.
func MaskedFull(n int, v float64, masked bool) MaskedArray {
	a := MaskedArray{Data: make([]float64, n), Mask: make([]bool, n)}
	for i := range n {
		a.Data[i] = v
		a.Mask[i] = masked
	}
	return a
}

func (a MaskedArray) Len() int { return len(a.Data) }

// Valid returns true if element i is not masked.
func (a MaskedArray) Valid(i int) bool {
	return a.Mask == nil || !a.Mask[i]
}

// At returns element i and whether it is valid.
func (a MaskedArray) At(i int) (float64, bool) {
	return a.Data[i], a.Valid(i)
}

// Count returns the number of valid elements.
func (a MaskedArray) Count() int {
	n := 0
	for i := range a.Data {
		if a.Valid(i) {
			n++
		}
	}
	return n
}

// IsMasked returns true if any element is masked.
func (a MaskedArray) IsMasked() bool {
	return a.Count() < a.Len()
}

// AllMasked returns true if no element is valid; an empty array is
// considered to be all masked.
func (a MaskedArray) AllMasked() bool {
	return a.Count() == 0
}

// Compressed returns the valid elements in order.
func (a MaskedArray) Compressed() []float64 {
	var c []float64
	for i, v := range a.Data {
		if a.Valid(i) {
			c = append(c, v)
		}
	}
	return c
}

// Filter returns the elements (valid or not) for which cond is true.
func (a MaskedArray) Filter(cond []bool) MaskedArray {
	a.checkLength(len(cond))

	var r MaskedArray
	r.Mask = []bool{}
	for i, c := range cond {
		if c {
			r.Data = append(r.Data, a.Data[i])
			r.Mask = append(r.Mask, !a.Valid(i))
		}
	}
	return r
}

// Map applies f to every element's value; the mask is carried through
// unchanged. f is applied to masked elements too, so it must tolerate
// arbitrary inputs.
func (a MaskedArray) Map(f func(float64) float64) MaskedArray {
	r := MaskedArray{Data: make([]float64, len(a.Data))}
	for i, v := range a.Data {
		r.Data[i] = f(v)
	}
	if a.Mask != nil {
		r.Mask = append([]bool(nil), a.Mask...)
	}
	return r
}

// InRange returns a condition that is true for the valid elements v
// with lo <= v < hi. Either bound may be infinite; NaN values never match.
func (a MaskedArray) InRange(lo, hi float64) []bool {
	cond := make([]bool, len(a.Data))
	for i, v := range a.Data {
		cond[i] = a.Valid(i) && v >= lo && v < hi
	}
	return cond
}

// AtLeast returns a condition that is true for the valid elements v with
// v >= lo.
func (a MaskedArray) AtLeast(lo float64) []bool {
	cond := make([]bool, len(a.Data))
	for i, v := range a.Data {
		cond[i] = a.Valid(i) && v >= lo
	}
	return cond
}

// Where returns an array that takes its elements (value and validity)
// from b where cond is true and from a elsewhere.
func (a MaskedArray) Where(cond []bool, b MaskedArray) MaskedArray {
	a.checkLength(len(cond))
	a.checkLength(b.Len())

	r := MaskedArray{Data: make([]float64, len(a.Data)), Mask: make([]bool, len(a.Data))}
	for i, c := range cond {
		if c {
			r.Data[i], r.Mask[i] = b.Data[i], !b.Valid(i)
		} else {
			r.Data[i], r.Mask[i] = a.Data[i], !a.Valid(i)
		}
	}
	return r
}

// Equal returns true if a and b have the same length, the same mask and
// the same values at their valid elements.
func (a MaskedArray) Equal(b MaskedArray) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.Data {
		if a.Valid(i) != b.Valid(i) {
			return false
		}
		if a.Valid(i) && a.Data[i] != b.Data[i] {
			return false
		}
	}
	return true
}

func (a MaskedArray) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range a.Data {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if a.Valid(i) {
			fmt.Fprintf(&sb, "%g", v)
		} else {
			sb.WriteString("--")
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

func (a MaskedArray) checkLength(n int) {
	if n != len(a.Data) {
		panic(fmt.Sprintf("length %d doesn't match array length %d", n, len(a.Data)))
	}
}

// EncodeMsgpack implements msgpack.CustomEncoder; the array is encoded as
// a two-element array of values and mask.
func (a MaskedArray) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(2); err != nil {
		return err
	}
	if err := enc.Encode(a.Data); err != nil {
		return err
	}
	return enc.Encode(a.Mask)
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (a *MaskedArray) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	} else if n != 2 {
		return fmt.Errorf("MaskedArray: expected 2 elements, got %d", n)
	}

	var r MaskedArray
	if err := dec.Decode(&r.Data); err != nil {
		return err
	}
	if err := dec.Decode(&r.Mask); err != nil {
		return err
	}
	if r.Mask != nil && len(r.Mask) != len(r.Data) {
		return fmt.Errorf("MaskedArray: mask length %d doesn't match data length %d", len(r.Mask), len(r.Data))
	}
	*a = r
	return nil
}
