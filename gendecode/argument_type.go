package main

import (
	"fmt"
	"strconv"
	"strings"
)

type FieldCategory string

const (
	FieldOther     FieldCategory = "other"
	FieldRegister  FieldCategory = "register"
	FieldImmediate FieldCategory = "immediate"
)

// codedRegisterNames are the register operands with a dedicated slot on the
// decoded instruction value.
var codedRegisterNames = []string{"rd", "rs1", "rs2", "rs3", "rm"}

const immediateName = "imm"

func categorize(name string) FieldCategory {
	for _, reg := range codedRegisterNames {
		if name == reg {
			return FieldRegister
		}
	}
	if name == immediateName {
		return FieldImmediate
	}
	return FieldOther
}

// ParseChunks deals with the packed operand notation used by the riscv-meta
// tables, such as "31:25[12|10:5],11:7[4:1|11]", and normalizes it to the
// explicit chunks it describes.
//
// Within brackets the source bits are handed out to the destination spans in
// the order those spans are written, so "31:25[12|10:5]" and "31:25[10:5|12]"
// describe different fields.
func ParseChunks(raw string) ([]BitRange, error) {
	var ret []BitRange
	for _, rawPart := range strings.Split(raw, ",") {
		rawPart = strings.TrimSpace(rawPart)
		brack := strings.IndexByte(rawPart, '[')
		switch {
		case brack == -1:
			// A simple right-aligned field, then.
			top, bottom, err := parseSpan(rawPart)
			if err != nil {
				return nil, err
			}
			ret = append(ret, BitRange{MSB: top, LSB: bottom, From: top - bottom, To: 0})

		default:
			rawSrc, rawDests := partition(rawPart, "[")
			if !strings.HasSuffix(rawDests, "]") {
				return nil, fmt.Errorf("unterminated destination list in %q", rawPart)
			}
			rawDests = rawDests[:len(rawDests)-1]

			srcTop, srcBottom, err := parseSpan(rawSrc)
			if err != nil {
				return nil, err
			}
			next := srcTop
			for _, rawConcat := range strings.Split(rawDests, "|") {
				destTop, destBottom, err := parseSpan(rawConcat)
				if err != nil {
					return nil, err
				}
				width := destTop - destBottom
				ret = append(ret, BitRange{MSB: next, LSB: next - width, From: destTop, To: destBottom})

				// The next span picks up where this one left off.
				next -= width + 1
			}
			if next+1 != srcBottom {
				return nil, &MalformedRangeError{
					Range:  BitRange{MSB: srcTop, LSB: srcBottom},
					Reason: fmt.Sprintf("destinations in %q cover %d bits, source covers %d", rawPart, srcTop-next, srcTop-srcBottom+1),
				}
			}
		}
	}
	return ret, nil
}

// parseSpan parses "top:bottom" or a single bit position.
func parseSpan(raw string) (top, bottom int, err error) {
	rawTop, rawBottom := partition(strings.TrimSpace(raw), ":")
	if rawBottom == "" {
		rawBottom = rawTop
	}
	t, err := strconv.ParseUint(rawTop, 10, 8)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid bit position %q", rawTop)
	}
	b, err := strconv.ParseUint(rawBottom, 10, 8)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid bit position %q", rawBottom)
	}
	if t < b {
		return 0, 0, &MalformedRangeError{Range: BitRange{MSB: int(t), LSB: int(b)}, Reason: "msb is below lsb"}
	}
	return int(t), int(b), nil
}

func partition(s string, sep string) (l, r string) {
	idx := strings.Index(s, sep)
	if idx == -1 {
		return s, ""
	}
	return s[:idx], s[idx+len(sep):]
}
