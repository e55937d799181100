package main

import (
	"bytes"
	"fmt"
	"strings"
)

// emitDispatch writes the branch logic for n. Internal nodes become a switch
// on the masked word with one case per branch, in declaration order, and a
// default arm reporting an invalid encoding. Leaves return the result of the
// instruction's decode routine.
func emitDispatch(w *bytes.Buffer, n DecodeNode, depth int) {
	indent := strings.Repeat("\t", depth)
	switch node := n.(type) {
	case *Leaf:
		fmt.Fprintf(w, "%sreturn %s(raw), nil\n", indent, routineName(node.Instruction))
	case *Internal:
		fmt.Fprintf(w, "%sswitch bitops.ApplyMask(raw, %s) {\n", indent, node.Mask.Hex())
		for _, br := range node.Branches {
			fmt.Fprintf(w, "%scase %#x:\n", indent, br.Key)
			emitDispatch(w, br.Node, depth+1)
		}
		fmt.Fprintf(w, "%sdefault:\n", indent)
		fmt.Fprintf(w, "%s\treturn Instruction{}, &InvalidEncodingError{Raw: raw}\n", indent)
		fmt.Fprintf(w, "%s}\n", indent)
	}
}

// emitRoutine writes the decode routine for one instruction.
func emitRoutine(w *bytes.Buffer, ins *Instruction) {
	name := routineName(ins)
	if len(ins.Standards) > 0 {
		fmt.Fprintf(w, "// %s decodes %s (%s).\n", name, ins.Mnemonic, ins.Standards)
	} else {
		fmt.Fprintf(w, "// %s decodes %s.\n", name, ins.Mnemonic)
	}
	fmt.Fprintf(w, "func %s(raw uint32) Instruction {\n", name)
	fmt.Fprintf(w, "\tinst := Instruction{Op: %s}\n", ins.Name)
	for _, st := range instructionExtraction(ins) {
		fmt.Fprintf(w, "\t%s\n", st.Source())
	}
	w.WriteString("\treturn inst\n")
	w.WriteString("}\n")
}
