package main

import (
	"fmt"
	"strings"

	"github.com/RFP-Group/riscv-decodegen/bitops"
)

// Expr is one node of a field extraction expression. Each expression can be
// rendered as Go source for the generated decoder and evaluated directly
// against an instruction word.
type Expr interface {
	Eval(raw uint32, locals map[string]uint32) uint32
	Source() string
}

// Extract masks one chunk out of the word and moves it to its destination.
type Extract struct {
	Chunk BitRange
	Mask  bits32
}

func (e Extract) Eval(raw uint32, _ map[string]uint32) uint32 {
	return bitops.ApplyMaskAndShift(raw, uint32(e.Mask), uint8(e.Chunk.MSB), uint8(e.Chunk.From))
}

func (e Extract) Source() string {
	return fmt.Sprintf("bitops.ApplyMaskAndShift(raw, %s, %d, %d)", e.Mask.Hex(), e.Chunk.MSB, e.Chunk.From)
}

// Masked selects bits of the word without moving them.
type Masked struct {
	Mask bits32
}

func (e Masked) Eval(raw uint32, _ map[string]uint32) uint32 {
	return bitops.ApplyMask(raw, uint32(e.Mask))
}

func (e Masked) Source() string {
	return fmt.Sprintf("bitops.ApplyMask(raw, %s)", e.Mask.Hex())
}

// Ref reads a local assigned by an earlier statement.
type Ref struct {
	Name string
}

func (e Ref) Eval(_ uint32, locals map[string]uint32) uint32 {
	return locals[e.Name]
}

func (e Ref) Source() string {
	return e.Name
}

// Or combines its terms in the order given.
type Or struct {
	Terms []Expr
}

func (e Or) Eval(raw uint32, locals map[string]uint32) uint32 {
	var v uint32
	for _, t := range e.Terms {
		v |= t.Eval(raw, locals)
	}
	return v
}

func (e Or) Source() string {
	parts := make([]string, len(e.Terms))
	for i, t := range e.Terms {
		parts[i] = t.Source()
	}
	return strings.Join(parts, " | ")
}

// Assign stores Value either in a new local or in a slot of the decoded
// instruction. Register slots are narrower than the word and get a
// conversion.
type Assign struct {
	Dest     string
	Local    bool
	Register bool
	Value    Expr
}

func (a Assign) Source() string {
	switch {
	case a.Local:
		return fmt.Sprintf("%s := %s", a.Dest, a.Value.Source())
	case a.Register:
		return fmt.Sprintf("inst.%s = uint8(%s)", a.Dest, a.Value.Source())
	default:
		return fmt.Sprintf("inst.%s = %s", a.Dest, a.Value.Source())
	}
}

// fieldExtraction returns the statements that decode f. Fields without a
// slot on the decoded instruction produce none.
func fieldExtraction(f *Field) []Assign {
	switch f.Category {
	case FieldRegister:
		return []Assign{{
			Dest:     slotName(f.Name),
			Register: true,
			Value:    Extract{Chunk: f.Chunks[0], Mask: f.Mask},
		}}
	case FieldImmediate:
		if len(f.Chunks) == 1 {
			chunk := f.Chunks[0]
			return []Assign{{
				Dest:  slotName(f.Name),
				Value: Extract{Chunk: chunk, Mask: rangeMask(chunk.MSB, chunk.LSB)},
			}}
		}
		ret := make([]Assign, 0, len(f.Chunks)+1)
		var or Or
		for _, chunk := range f.Chunks {
			name := localName(f.Name, chunk.From, chunk.To)
			ret = append(ret, Assign{
				Dest:  name,
				Local: true,
				Value: Extract{Chunk: chunk, Mask: rangeMask(chunk.MSB, chunk.LSB)},
			})
			or.Terms = append(or.Terms, Ref{Name: name})
		}
		return append(ret, Assign{Dest: slotName(f.Name), Value: or})
	default:
		return nil
	}
}

// specialsExtraction assembles the immediate from several standalone fields.
// Each contributes its first chunk, masked in place.
func specialsExtraction(specials []*Field) []Assign {
	if len(specials) == 0 {
		return nil
	}
	ret := make([]Assign, 0, len(specials)+1)
	var or Or
	for _, f := range specials {
		chunk := f.Chunks[0]
		name := localName(f.Name, chunk.MSB, chunk.LSB)
		ret = append(ret, Assign{
			Dest:  name,
			Local: true,
			Value: Masked{Mask: rangeMask(chunk.MSB, chunk.LSB)},
		})
		or.Terms = append(or.Terms, Ref{Name: name})
	}
	return append(ret, Assign{Dest: slotName(immediateName), Value: or})
}

// instructionExtraction is every statement of an instruction's decode
// routine: fields in declaration order, then specials.
func instructionExtraction(ins *Instruction) []Assign {
	var ret []Assign
	for _, f := range ins.Fields {
		ret = append(ret, fieldExtraction(f)...)
	}
	return append(ret, specialsExtraction(ins.Specials)...)
}

// evalExtraction runs stmts against raw and returns the final value of each
// instruction slot they assign.
func evalExtraction(stmts []Assign, raw uint32) map[string]uint32 {
	locals := make(map[string]uint32)
	slots := make(map[string]uint32)
	for _, st := range stmts {
		v := st.Value.Eval(raw, locals)
		switch {
		case st.Local:
			locals[st.Dest] = v
		case st.Register:
			slots[st.Dest] = uint32(uint8(v))
		default:
			slots[st.Dest] = v
		}
	}
	return slots
}
