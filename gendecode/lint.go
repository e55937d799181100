package main

import (
	"fmt"
)

// Warning is a suspicious but legal construct in the description. Warnings
// are reported and never acted on.
type Warning struct {
	Line int
	Msg  string
}

func lint(isa *ISA) []Warning {
	var ws []Warning

	reachable := make(map[*Instruction]bool, len(isa.Reachable))
	for _, ins := range isa.Reachable {
		reachable[ins] = true
	}

	for _, ins := range isa.Instructions {
		if !reachable[ins] {
			ws = append(ws, Warning{Line: ins.Line, Msg: fmt.Sprintf("instruction %s is not reachable from the decode tree", ins.Mnemonic)})
		}
		hasImm := false
		for _, f := range ins.Fields {
			if f.Category == FieldImmediate {
				hasImm = true
			}
			ws = append(ws, lintChunks(ins, f)...)
		}
		if hasImm && len(ins.Specials) > 0 {
			ws = append(ws, Warning{Line: ins.Line, Msg: fmt.Sprintf("instruction %s has an imm field and specials; specials are assigned last", ins.Mnemonic)})
		}
	}

	lintTree(isa.Tree, &ws)
	return ws
}

// lintChunks flags chunk lists that are not ordered from the most to the
// least significant destination bits, and chunks whose destinations overlap.
// Both are assembled exactly as declared. Packed notation is exempt from the
// ordering check because its order is dictated by the source bits.
func lintChunks(ins *Instruction, f *Field) []Warning {
	if len(f.Chunks) < 2 {
		return nil
	}
	var ws []Warning
	var seen bits32
	ordered := true
	for i, c := range f.Chunks {
		if i > 0 && c.From > f.Chunks[i-1].From {
			ordered = false
		}
		if seen&c.destMask() != 0 {
			ws = append(ws, Warning{Line: f.Line, Msg: fmt.Sprintf("instruction %s: chunk %s of %s overlaps an earlier chunk", ins.Mnemonic, c, f.Name)})
		}
		seen |= c.destMask()
	}
	if !ordered && !f.Packed {
		ws = append(ws, Warning{Line: f.Line, Msg: fmt.Sprintf("instruction %s: chunks of %s are not in descending destination order", ins.Mnemonic, f.Name)})
	}
	return ws
}

func lintTree(n DecodeNode, ws *[]Warning) {
	in, ok := n.(*Internal)
	if !ok {
		return
	}
	for _, br := range in.Branches {
		if br.Key&^uint32(in.Mask) != 0 {
			*ws = append(*ws, Warning{Line: br.Line, Msg: fmt.Sprintf("dispatch key %#x has bits outside mask %s and can never match", br.Key, in.Mask.Hex())})
		}
		lintTree(br.Node, ws)
	}
}
