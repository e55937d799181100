package main

import (
	"fmt"
	"sort"
	"strings"
)

type Extension byte
type Size uint8
type Standard uint16

// Standards is the set of ISA standards an instruction belongs to, as listed
// under "extensions" in the description.
type Standards map[Standard]struct{}

const (
	RVInvalid Size = 0
	RV32      Size = 32
	RV64      Size = 64
	RV128     Size = 128
)

const (
	ExtInvalid Extension = 0
	ExtI       Extension = 'I' // base integer
	ExtM       Extension = 'M' // multiply and divide
	ExtA       Extension = 'A' // atomic
	ExtF       Extension = 'F' // single-precision floating point
	ExtD       Extension = 'D' // double-precision floating point
	ExtC       Extension = 'C' // compressed
)

const Invalid = Standard(0)

func MakeStandard(size Size, ext Extension) Standard {
	return Standard(uint16(size) | uint16(ext)<<8)
}

func (s Standard) Size() Size {
	return Size(s & 0xff)
}

func (s Standard) Extension() Extension {
	return Extension(s >> 8)
}

func (s Standard) String() string {
	size := s.Size()
	ext := s.Extension()
	if ext == ExtInvalid {
		return fmt.Sprintf("RV%d", size)
	}
	return fmt.Sprintf("RV%d%c", size, ext)
}

func (ss Standards) Has(s Standard) bool {
	_, ok := ss[s]
	return ok
}

func (ss Standards) Add(s Standard) {
	ss[s] = struct{}{}
}

func (ss Standards) String() string {
	var ssList []Standard
	for s := range ss {
		ssList = append(ssList, s)
	}
	sort.Slice(ssList, func(i, j int) bool {
		return ssList[i] < ssList[j]
	})
	var buf strings.Builder
	for i, s := range ssList {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(s.String())
	}
	return buf.String()
}

// ParseStandard parses tags like "rv32i" or "rv64m". Only the first letter of
// the extension name is kept, so "rv32zicsr" is RV32Z.
func ParseStandard(s string) Standard {
	s = strings.ToLower(s)
	if !strings.HasPrefix(s, "rv") || len(s) < 4 {
		return Invalid
	}
	digits := 2
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	if digits == len(s) {
		return Invalid
	}
	var bits Size
	switch s[2:digits] {
	case "32":
		bits = RV32
	case "64":
		bits = RV64
	case "128":
		bits = RV128
	default:
		return Invalid
	}
	ext := Extension(strings.ToUpper(s[digits : digits+1])[0])
	return MakeStandard(bits, ext)
}
