package main

import (
	"fmt"
)

// wordWidth is the width in bits of every instruction word the generated
// decoder accepts.
const wordWidth = 32

type bits32 uint32

func (v bits32) String() string {
	return fmt.Sprintf("0b%032b", v)
}

// Hex renders v as the fixed-width literal used for mask constants in
// generated code, so identical masks always produce identical text.
func (v bits32) Hex() string {
	return fmt.Sprintf("0x%08x", uint32(v))
}

// BitRange maps the instruction word bits MSB..LSB onto the bits From..To of
// a reconstructed field value. Decode tree ranges only use MSB and LSB.
type BitRange struct {
	MSB  int
	LSB  int
	From int
	To   int
}

func (r BitRange) String() string {
	return fmt.Sprintf("[%d:%d]->[%d:%d]", r.MSB, r.LSB, r.From, r.To)
}

func (r BitRange) Width() int {
	return r.MSB - r.LSB + 1
}

func rangeMask(top, bottom int) bits32 {
	return bits32((uint64(1) << uint(top+1)) - (uint64(1) << uint(bottom)))
}

// Mask returns the mask selecting the bits LSB..MSB of an instruction word.
func Mask(r BitRange) (bits32, error) {
	switch {
	case r.MSB < r.LSB:
		return 0, &MalformedRangeError{Range: r, Reason: "msb is below lsb"}
	case r.LSB < 0:
		return 0, &MalformedRangeError{Range: r, Reason: "negative bit position"}
	case r.MSB >= wordWidth:
		return 0, &MalformedRangeError{Range: r, Reason: fmt.Sprintf("msb is outside a %d-bit word", wordWidth)}
	}
	return rangeMask(r.MSB, r.LSB), nil
}

// destMask is the mask of the bits a chunk occupies in the decoded value.
func (r BitRange) destMask() bits32 {
	return rangeMask(r.From, r.To)
}

// validateChunk checks that r can be used as a field chunk: a well formed
// source range whose width equals its destination width.
func validateChunk(r BitRange) error {
	if _, err := Mask(r); err != nil {
		return err
	}
	switch {
	case r.From < r.To:
		return &MalformedRangeError{Range: r, Reason: "from is below to"}
	case r.To < 0 || r.From >= wordWidth:
		return &MalformedRangeError{Range: r, Reason: fmt.Sprintf("destination is outside a %d-bit value", wordWidth)}
	case r.Width() != r.From-r.To+1:
		return &MalformedRangeError{
			Range:  r,
			Reason: fmt.Sprintf("source is %d bits wide but destination is %d", r.Width(), r.From-r.To+1),
		}
	}
	return nil
}
