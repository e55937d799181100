package main

import (
	"fmt"
	"strings"
	"unicode"
)

func makeIdentUnderscores(inp string) string {
	var b strings.Builder
	for i, r := range inp {
		switch {
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		case unicode.IsLetter(r):
			b.WriteString(strings.ToLower(string(r)))
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func makeIdentTitle(inp string) string {
	var b strings.Builder
	nextUpper := true
	for i, r := range inp {
		switch {
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			nextUpper = true
		case unicode.IsLetter(r):
			if nextUpper {
				b.WriteString(strings.ToUpper(string(r)))
			} else {
				b.WriteString(strings.ToLower(string(r)))
			}
			nextUpper = false
		default:
			nextUpper = true
		}
	}
	return b.String()
}

// opName translates a mnemonic to the all-caps identifier used for its Op
// constant, so "fence.i" becomes FENCE_I.
func opName(mnemonic string) string {
	return strings.ToUpper(makeIdentUnderscores(mnemonic))
}

func routineName(ins *Instruction) string {
	return "decode" + ins.Name
}

// slotName is the name of the field on the decoded instruction value that a
// register or immediate operand is stored in.
func slotName(field string) string {
	return makeIdentTitle(field)
}

// localName is the name of a temporary holding one chunk of a field.
func localName(field string, a, b int) string {
	return fmt.Sprintf("%s_%d_%d", makeIdentUnderscores(field), a, b)
}
