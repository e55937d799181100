package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const addDescription = `
instructions:
  - mnemonic: ADD
    fields:
      - name: rd
        location: {bits: [{msb: 11, lsb: 7, from: 4, to: 0}]}
      - name: imm
        location: {bits: [{msb: 31, lsb: 20, from: 11, to: 0}]}
decodertree:
  range: {msb: 1, lsb: 0}
  nodes:
    0x3: ADD
`

func loadSample(t *testing.T) *ISA {
	t.Helper()
	isa, err := loadDescription(filepath.Join("..", "isa", "isa.yaml"))
	require.NoError(t, err)
	return isa
}

func TestLoadSampleDescription(t *testing.T) {
	isa := loadSample(t)

	assert.Len(t, isa.Fields, 6)
	assert.Len(t, isa.Instructions, 41)
	assert.Equal(t, isa.Instructions, isa.Reachable)

	root, ok := isa.Tree.(*Internal)
	require.True(t, ok)
	assert.Equal(t, bits32(0x7f), root.Mask)
	var keys []uint32
	for _, br := range root.Branches {
		keys = append(keys, br.Key)
	}
	assert.Equal(t, []uint32{0x37, 0x17, 0x6f, 0x67, 0x63, 0x03, 0x23, 0x13, 0x33, 0x0f, 0x73}, keys)

	jal, ok := isa.Lookup("jal")
	require.True(t, ok)
	require.Len(t, jal.Fields, 2)
	assert.True(t, jal.Fields[1].Packed)
	assert.Len(t, jal.Fields[1].Chunks, 4)
	assert.Equal(t, "J", jal.Format)
	assert.True(t, jal.Standards.Has(MakeStandard(RV64, ExtI)))

	fenceI, ok := isa.Lookup("fence.i")
	require.True(t, ok)
	assert.Equal(t, "FENCE_I", fenceI.Name)

	fence, ok := isa.Lookup("fence")
	require.True(t, ok)
	require.Len(t, fence.Specials, 3)
	assert.Equal(t, "pred", fence.Specials[1].Name)

	rd := jal.Fields[0]
	assert.Equal(t, FieldRegister, rd.Category)
	assert.Equal(t, bits32(0x00000f80), rd.Mask)
}

func TestLoadLeafForms(t *testing.T) {
	isa, err := parseDescription([]byte(`
instructions:
  - &a {mnemonic: a}
  - {mnemonic: b}
  - {mnemonic: c}
decodertree:
  range: {msb: 1, lsb: 0}
  nodes:
    0x0: *a
    0x1: {mnemonic: b}
    0b10: c
`))
	require.NoError(t, err)

	root := isa.Tree.(*Internal)
	require.Len(t, root.Branches, 3)
	for i, want := range []string{"a", "b", "c"} {
		leaf, ok := root.Branches[i].Node.(*Leaf)
		require.True(t, ok)
		assert.Equal(t, want, leaf.Instruction.Mnemonic)
		assert.Equal(t, uint32(i), root.Branches[i].Key)
	}
}

func TestLoadChunkDefaults(t *testing.T) {
	isa, err := parseDescription([]byte(`
fields:
  - name: shamt
    location: {bits: [{msb: 24, lsb: 20}]}
  - name: hi
    location: {bits: [{msb: 31, lsb: 25, from: 11}]}
  - name: lo
    location: {bits: [{msb: 11, lsb: 7, to: 1}]}
instructions:
  - {mnemonic: nop}
decodertree: nop
`))
	require.NoError(t, err)
	assert.Equal(t, BitRange{MSB: 24, LSB: 20, From: 4, To: 0}, isa.Fields[0].Chunks[0])
	assert.Equal(t, BitRange{MSB: 31, LSB: 25, From: 11, To: 5}, isa.Fields[1].Chunks[0])
	assert.Equal(t, BitRange{MSB: 11, LSB: 7, From: 5, To: 1}, isa.Fields[2].Chunks[0])
	assert.IsType(t, &Leaf{}, isa.Tree)
}

func TestLoadErrors(t *testing.T) {
	t.Run("duplicate dispatch key", func(t *testing.T) {
		_, err := parseDescription([]byte(`
instructions:
  - {mnemonic: a}
  - {mnemonic: b}
decodertree:
  range: {msb: 1, lsb: 0}
  nodes:
    0x3: a
    0x3: b
`))
		var dup *DuplicateDispatchKeyError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, uint32(3), dup.Key)
		assert.Greater(t, dup.Line, dup.PrevLine)
	})

	t.Run("duplicate dispatch key spelled differently", func(t *testing.T) {
		_, err := parseDescription([]byte(`
instructions:
  - {mnemonic: a}
  - {mnemonic: b}
decodertree:
  range: {msb: 1, lsb: 0}
  nodes:
    0x3: a
    3: b
`))
		var dup *DuplicateDispatchKeyError
		assert.ErrorAs(t, err, &dup)
	})

	t.Run("identifier collision", func(t *testing.T) {
		_, err := parseDescription([]byte(`
instructions:
  - {mnemonic: fence.i}
  - {mnemonic: fence_i}
decodertree: fence.i
`))
		var coll *IdentifierCollisionError
		require.ErrorAs(t, err, &coll)
		assert.Equal(t, "FENCE_I", coll.Ident)
		assert.Equal(t, [2]string{"fence.i", "fence_i"}, coll.Mnemonics)
	})

	t.Run("unknown leaf", func(t *testing.T) {
		_, err := parseDescription([]byte(`
instructions:
  - {mnemonic: a}
decodertree:
  range: {msb: 1, lsb: 0}
  nodes:
    0x0: a
    0x1: nope
`))
		var unknown *UnknownInstructionError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "nope", unknown.Mnemonic)
	})

	t.Run("mask mismatch", func(t *testing.T) {
		_, err := parseDescription([]byte(`
instructions:
  - mnemonic: a
    fields:
      - name: rd
        location: {mask: 0x00000f00, bits: [{msb: 11, lsb: 7, from: 4, to: 0}]}
decodertree: a
`))
		var mre *MalformedRangeError
		require.ErrorAs(t, err, &mre)
		assert.Equal(t, "rd", mre.Field)
	})

	t.Run("width mismatch", func(t *testing.T) {
		_, err := parseDescription([]byte(`
instructions:
  - mnemonic: a
    fields:
      - name: imm
        location: {bits: [{msb: 31, lsb: 20, from: 12, to: 0}]}
decodertree: a
`))
		var mre *MalformedRangeError
		assert.ErrorAs(t, err, &mre)
	})

	t.Run("inverted tree range", func(t *testing.T) {
		_, err := parseDescription([]byte(`
instructions:
  - {mnemonic: a}
decodertree:
  range: {msb: 0, lsb: 6}
  nodes:
    0x0: a
`))
		var mre *MalformedRangeError
		assert.ErrorAs(t, err, &mre)
	})

	descriptionErrors := map[string]string{
		"missing tree": `
instructions:
  - {mnemonic: a}
`,
		"unknown special": `
instructions:
  - {mnemonic: a, specials: [pred]}
decodertree: a
`,
		"split register": `
instructions:
  - mnemonic: a
    fields:
      - name: rs1
        location: {bits: "19:15[4:2|1:0]"}
decodertree: a
`,
		"node without range or mnemonic": `
instructions:
  - {mnemonic: a}
decodertree:
  nodes:
    0x0: a
`,
		"bad key": `
instructions:
  - {mnemonic: a}
decodertree:
  range: {msb: 1, lsb: 0}
  nodes:
    zz: a
`,
		"duplicate mnemonic": `
instructions:
  - {mnemonic: a}
  - {mnemonic: a}
decodertree: a
`,
		"unknown standard": `
instructions:
  - {mnemonic: a, extensions: [mips32]}
decodertree: a
`,
		"field without bits": `
instructions:
  - mnemonic: a
    fields:
      - name: imm
decodertree: a
`,
	}
	for name, doc := range descriptionErrors {
		t.Run(name, func(t *testing.T) {
			_, err := parseDescription([]byte(doc))
			var de *DescriptionError
			assert.ErrorAs(t, err, &de)
		})
	}
}
