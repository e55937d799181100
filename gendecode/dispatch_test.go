package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitDispatch(t *testing.T) {
	isa, err := parseDescription([]byte(addDescription))
	require.NoError(t, err)

	var buf bytes.Buffer
	emitDispatch(&buf, isa.Tree, 1)
	want := "" +
		"\tswitch bitops.ApplyMask(raw, 0x00000003) {\n" +
		"\tcase 0x3:\n" +
		"\t\treturn decodeADD(raw), nil\n" +
		"\tdefault:\n" +
		"\t\treturn Instruction{}, &InvalidEncodingError{Raw: raw}\n" +
		"\t}\n"
	assert.Equal(t, want, buf.String())
}

func TestEmitDispatchNested(t *testing.T) {
	isa, err := parseDescription([]byte(`
instructions:
  - {mnemonic: a}
  - {mnemonic: b}
  - {mnemonic: c}
decodertree:
  range: {msb: 1, lsb: 0}
  nodes:
    0x0: a
    0x1:
      range: {msb: 3, lsb: 2}
      nodes:
        0x4: b
        0x0: c
`))
	require.NoError(t, err)

	var buf bytes.Buffer
	emitDispatch(&buf, isa.Tree, 0)
	want := "" +
		"switch bitops.ApplyMask(raw, 0x00000003) {\n" +
		"case 0x0:\n" +
		"\treturn decodeA(raw), nil\n" +
		"case 0x1:\n" +
		"\tswitch bitops.ApplyMask(raw, 0x0000000c) {\n" +
		"\tcase 0x4:\n" +
		"\t\treturn decodeB(raw), nil\n" +
		"\tcase 0x0:\n" +
		"\t\treturn decodeC(raw), nil\n" +
		"\tdefault:\n" +
		"\t\treturn Instruction{}, &InvalidEncodingError{Raw: raw}\n" +
		"\t}\n" +
		"default:\n" +
		"\treturn Instruction{}, &InvalidEncodingError{Raw: raw}\n" +
		"}\n"
	assert.Equal(t, want, buf.String())
}

func TestEmitRoutine(t *testing.T) {
	isa, err := parseDescription([]byte(addDescription))
	require.NoError(t, err)
	ins, ok := isa.Lookup("ADD")
	require.True(t, ok)

	var buf bytes.Buffer
	emitRoutine(&buf, ins)
	want := "" +
		"// decodeADD decodes ADD.\n" +
		"func decodeADD(raw uint32) Instruction {\n" +
		"\tinst := Instruction{Op: ADD}\n" +
		"\tinst.Rd = uint8(bitops.ApplyMaskAndShift(raw, 0x00000f80, 11, 4))\n" +
		"\tinst.Imm = bitops.ApplyMaskAndShift(raw, 0xfff00000, 31, 11)\n" +
		"\treturn inst\n" +
		"}\n"
	assert.Equal(t, want, buf.String())
}

func TestEmitRoutineStandards(t *testing.T) {
	isa := loadSample(t)
	ins, ok := isa.Lookup("ecall")
	require.True(t, ok)

	var buf bytes.Buffer
	emitRoutine(&buf, ins)
	assert.Equal(t, "// decodeECALL decodes ecall (RV32I, RV64I).\n"+
		"func decodeECALL(raw uint32) Instruction {\n"+
		"\tinst := Instruction{Op: ECALL}\n"+
		"\treturn inst\n"+
		"}\n", buf.String())
}

func TestResolveExclusive(t *testing.T) {
	isa, err := parseDescription([]byte(`
instructions:
  - {mnemonic: a}
  - {mnemonic: b}
decodertree:
  range: {msb: 1, lsb: 0}
  nodes:
    0x0: a
    0x1: b
`))
	require.NoError(t, err)

	for raw, want := range map[uint32]string{0x0: "a", 0x1: "b", 0xfffffffc: "a", 0x5: "b"} {
		ins, ok := Resolve(isa.Tree, raw)
		require.True(t, ok, "%#x", raw)
		assert.Equal(t, want, ins.Mnemonic, "%#x", raw)
	}
	for _, raw := range []uint32{0x2, 0x3, 0xffffffff} {
		_, ok := Resolve(isa.Tree, raw)
		assert.False(t, ok, "%#x", raw)
	}
}

func TestDecodeSample(t *testing.T) {
	isa := loadSample(t)

	tests := []struct {
		raw      uint32
		mnemonic string
		slots    map[string]uint32
	}{
		{0x00a58513, "addi", map[string]uint32{"Rd": 10, "Rs1": 11, "Imm": 10}},
		{0x5e220863, "beq", map[string]uint32{"Rs1": 4, "Rs2": 2, "Imm": 1520}},
		{0xc0349263, "bne", map[string]uint32{"Rs1": 9, "Rs2": 3, "Imm": 5124}},
		{0x00112623, "sw", map[string]uint32{"Rs1": 2, "Rs2": 1, "Imm": 12}},
		{0x001000ef, "jal", map[string]uint32{"Rd": 1, "Imm": 0x800}},
		{0x4030d093, "srai", map[string]uint32{"Rd": 1, "Rs1": 1, "Imm": 3}},
		{0x0ff0000f, "fence", map[string]uint32{"Rd": 0, "Rs1": 0, "Imm": 0x0ff00000}},
		{0x00000073, "ecall", map[string]uint32{}},
		{0x00100073, "ebreak", map[string]uint32{}},
	}
	for _, test := range tests {
		d, ok := decodeWord(isa, test.raw)
		require.True(t, ok, "%#08x", test.raw)
		assert.Equal(t, test.mnemonic, d.Mnemonic, "%#08x", test.raw)
		assert.Equal(t, test.slots, d.Slots, "%#08x", test.raw)
	}

	d, _ := decodeWord(isa, 0x00a58513)
	assert.Equal(t, "RV32I, RV64I", d.Standards)

	for _, raw := range []uint32{0x00000000, 0xffffffff, 0x00200073, 0x02000033} {
		_, ok := decodeWord(isa, raw)
		assert.False(t, ok, "%#08x", raw)
	}
}
