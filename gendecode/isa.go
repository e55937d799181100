package main

import (
	"github.com/RFP-Group/riscv-decodegen/bitops"
)

// Field is a named operand of an instruction, assembled from one or more
// chunks of the instruction word.
type Field struct {
	Name     string
	Category FieldCategory
	Chunks   []BitRange
	Packed   bool

	// Mask covers every source bit of the field. For register fields it is
	// the description's canonical mask when one is given.
	Mask bits32
	Line int
}

type Instruction struct {
	Mnemonic  string
	Name      string
	Format    string
	Standards Standards
	Fields    []*Field

	// Specials are standalone fields, each contributing one already aligned
	// chunk, whose union becomes the immediate.
	Specials []*Field
	Line     int
}

// DecodeNode is either an *Internal or a *Leaf.
type DecodeNode interface {
	decodeNode()
}

// Internal masks the instruction word with Range and dispatches on the
// masked value. Branches keep the order they were declared in.
type Internal struct {
	Range    BitRange
	Mask     bits32
	Branches []Branch
	Line     int
}

type Branch struct {
	Key  uint32
	Node DecodeNode
	Line int
}

type Leaf struct {
	Instruction *Instruction
}

func (*Internal) decodeNode() {}
func (*Leaf) decodeNode()     {}

type ISA struct {
	Fields       []*Field
	Instructions []*Instruction
	Tree         DecodeNode

	// Reachable lists the instructions named by at least one leaf, in
	// declaration order.
	Reachable []*Instruction

	byMnemonic map[string]*Instruction
}

func (isa *ISA) Lookup(mnemonic string) (*Instruction, bool) {
	ins, ok := isa.byMnemonic[mnemonic]
	return ins, ok
}

// Resolve walks the decode tree the same way the generated decoder does and
// reports which instruction raw decodes to.
func Resolve(n DecodeNode, raw uint32) (*Instruction, bool) {
	for {
		switch node := n.(type) {
		case *Leaf:
			return node.Instruction, true
		case *Internal:
			sel := bitops.ApplyMask(raw, uint32(node.Mask))
			var next DecodeNode
			for _, br := range node.Branches {
				if br.Key == sel {
					next = br.Node
					break
				}
			}
			if next == nil {
				return nil, false
			}
			n = next
		default:
			return nil, false
		}
	}
}

func collectReachable(isa *ISA) {
	seen := make(map[*Instruction]bool)
	var walk func(DecodeNode)
	walk = func(n DecodeNode) {
		switch node := n.(type) {
		case *Leaf:
			seen[node.Instruction] = true
		case *Internal:
			for _, br := range node.Branches {
				walk(br.Node)
			}
		}
	}
	walk(isa.Tree)

	isa.Reachable = isa.Reachable[:0]
	for _, ins := range isa.Instructions {
		if seen[ins] {
			isa.Reachable = append(isa.Reachable, ins)
		}
	}
}

// Decoded is the result of decoding one word against the in-memory
// description, without going through generated code.
type Decoded struct {
	Mnemonic  string
	Standards string
	Slots     map[string]uint32
}

func decodeWord(isa *ISA, raw uint32) (Decoded, bool) {
	ins, ok := Resolve(isa.Tree, raw)
	if !ok {
		return Decoded{}, false
	}
	return Decoded{
		Mnemonic:  ins.Mnemonic,
		Standards: ins.Standards.String(),
		Slots:     evalExtraction(instructionExtraction(ins), raw),
	}, true
}
