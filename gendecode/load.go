package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type descriptionDoc struct {
	Fields       []fieldDoc       `yaml:"fields"`
	Instructions []instructionDoc `yaml:"instructions"`

	// The decode tree is walked by hand so that branch order and line
	// numbers survive.
	DecoderTree yaml.Node `yaml:"decodertree"`
}

type fieldDoc struct {
	Name     string      `yaml:"name"`
	Location locationDoc `yaml:"location"`
	line     int
}

func (d *fieldDoc) UnmarshalYAML(value *yaml.Node) error {
	type plain fieldDoc
	if err := value.Decode((*plain)(d)); err != nil {
		return err
	}
	d.line = value.Line
	return nil
}

type locationDoc struct {
	Bits chunkList `yaml:"bits"`
	Mask yaml.Node `yaml:"mask"`
}

// chunkList is either a sequence of explicit chunks or a string in the
// packed notation understood by ParseChunks.
type chunkList struct {
	Packed string
	List   []chunkDoc
}

func (c *chunkList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		c.Packed = value.Value
		return nil
	}
	return value.Decode(&c.List)
}

type chunkDoc struct {
	MSB  int  `yaml:"msb"`
	LSB  int  `yaml:"lsb"`
	From *int `yaml:"from"`
	To   *int `yaml:"to"`
}

// bitRange fills in a missing destination by right-aligning the chunk, or
// from the width when only one end is given.
func (c chunkDoc) bitRange() BitRange {
	r := BitRange{MSB: c.MSB, LSB: c.LSB}
	width := c.MSB - c.LSB
	switch {
	case c.From != nil && c.To != nil:
		r.From, r.To = *c.From, *c.To
	case c.From != nil:
		r.From, r.To = *c.From, *c.From-width
	case c.To != nil:
		r.From, r.To = *c.To+width, *c.To
	default:
		r.From, r.To = width, 0
	}
	return r
}

type instructionDoc struct {
	Mnemonic   string     `yaml:"mnemonic"`
	Format     string     `yaml:"format"`
	Extensions []string   `yaml:"extensions"`
	Fields     []fieldDoc `yaml:"fields"`
	Specials   []string   `yaml:"specials"`
	line       int
}

func (d *instructionDoc) UnmarshalYAML(value *yaml.Node) error {
	type plain instructionDoc
	if err := value.Decode((*plain)(d)); err != nil {
		return err
	}
	d.line = value.Line
	return nil
}

func loadDescription(filename string) (*ISA, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read description: %w", err)
	}
	return parseDescription(data)
}

func parseDescription(data []byte) (*ISA, error) {
	var doc descriptionDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse description: %w", err)
	}

	fields, err := loadFields(doc.Fields)
	if err != nil {
		return nil, fmt.Errorf("failed to load fields: %w", err)
	}
	isa := &ISA{
		Fields:     fields,
		byMnemonic: make(map[string]*Instruction),
	}
	if err := loadInstructions(isa, doc.Instructions); err != nil {
		return nil, fmt.Errorf("failed to load instructions: %w", err)
	}
	if doc.DecoderTree.Kind == 0 {
		return nil, fmt.Errorf("failed to load decoder tree: %w", descErrorf(0, "description has no decodertree section"))
	}
	isa.Tree, err = loadTree(&doc.DecoderTree, isa)
	if err != nil {
		return nil, fmt.Errorf("failed to load decoder tree: %w", err)
	}
	collectReachable(isa)

	return isa, nil
}

func loadFields(docs []fieldDoc) ([]*Field, error) {
	ret := make([]*Field, 0, len(docs))
	seen := make(map[string]bool)
	for _, d := range docs {
		f, err := newField(d)
		if err != nil {
			return nil, err
		}
		if seen[f.Name] {
			return nil, descErrorf(d.line, "field %q defined twice", f.Name)
		}
		seen[f.Name] = true
		ret = append(ret, f)
	}
	return ret, nil
}

func newField(d fieldDoc) (*Field, error) {
	if d.Name == "" {
		return nil, descErrorf(d.line, "field without a name")
	}

	var chunks []BitRange
	if d.Location.Bits.Packed != "" {
		var err error
		chunks, err = ParseChunks(d.Location.Bits.Packed)
		if err != nil {
			return nil, fieldError(d, err)
		}
	} else {
		for _, c := range d.Location.Bits.List {
			chunks = append(chunks, c.bitRange())
		}
	}
	if len(chunks) == 0 {
		return nil, descErrorf(d.line, "field %s has no bits", d.Name)
	}
	for _, c := range chunks {
		if err := validateChunk(c); err != nil {
			return nil, fieldError(d, err)
		}
	}

	f := &Field{
		Name:     d.Name,
		Category: categorize(d.Name),
		Chunks:   chunks,
		Packed:   d.Location.Bits.Packed != "",
		Line:     d.line,
	}
	for _, c := range chunks {
		f.Mask |= rangeMask(c.MSB, c.LSB)
	}
	if f.Category == FieldRegister && len(chunks) != 1 {
		return nil, descErrorf(d.line, "register field %s must have exactly one chunk, has %d", d.Name, len(chunks))
	}

	if d.Location.Mask.Kind != 0 {
		v, err := strconv.ParseUint(d.Location.Mask.Value, 0, 32)
		if err != nil {
			return nil, descErrorf(d.Location.Mask.Line, "field %s: invalid mask %q", d.Name, d.Location.Mask.Value)
		}
		if bits32(v) != f.Mask {
			return nil, &MalformedRangeError{
				Field:  d.Name,
				Range:  chunks[0],
				Reason: fmt.Sprintf("mask %s does not match its bits, which give %s", bits32(v).Hex(), f.Mask.Hex()),
			}
		}
	}

	return f, nil
}

// fieldError attaches the field name to range errors and a line number to
// anything else.
func fieldError(d fieldDoc, err error) error {
	var mre *MalformedRangeError
	if errors.As(err, &mre) {
		mre.Field = d.Name
		return mre
	}
	return descErrorf(d.line, "field %s: %v", d.Name, err)
}

func loadInstructions(isa *ISA, docs []instructionDoc) error {
	fieldsByName := make(map[string]*Field, len(isa.Fields))
	for _, f := range isa.Fields {
		fieldsByName[f.Name] = f
	}
	idents := make(map[string]string)

	for _, d := range docs {
		if d.Mnemonic == "" {
			return descErrorf(d.line, "instruction without a mnemonic")
		}
		if _, dup := isa.byMnemonic[d.Mnemonic]; dup {
			return descErrorf(d.line, "instruction %q defined twice", d.Mnemonic)
		}
		name := opName(d.Mnemonic)
		if strings.Trim(name, "_") == "" {
			return descErrorf(d.line, "mnemonic %q does not produce an identifier", d.Mnemonic)
		}
		if prev, ok := idents[name]; ok {
			return &IdentifierCollisionError{Ident: name, Mnemonics: [2]string{prev, d.Mnemonic}}
		}
		idents[name] = d.Mnemonic

		ins := &Instruction{
			Mnemonic:  d.Mnemonic,
			Name:      name,
			Format:    d.Format,
			Standards: make(Standards),
			Line:      d.line,
		}
		for _, raw := range d.Extensions {
			std := ParseStandard(raw)
			if std == Invalid {
				return descErrorf(d.line, "instruction %s: unknown standard %q", d.Mnemonic, raw)
			}
			ins.Standards.Add(std)
		}

		seen := make(map[string]bool)
		for _, fd := range d.Fields {
			f, err := newField(fd)
			if err != nil {
				return fmt.Errorf("instruction %s: %w", d.Mnemonic, err)
			}
			if seen[f.Name] {
				return descErrorf(fd.line, "instruction %s: field %q listed twice", d.Mnemonic, f.Name)
			}
			seen[f.Name] = true
			ins.Fields = append(ins.Fields, f)
		}

		for _, sname := range d.Specials {
			f, ok := fieldsByName[sname]
			if !ok {
				return descErrorf(d.line, "instruction %s: unknown special field %q", d.Mnemonic, sname)
			}
			if len(f.Chunks) != 1 {
				return descErrorf(d.line, "instruction %s: special field %s must have exactly one chunk", d.Mnemonic, sname)
			}
			ins.Specials = append(ins.Specials, f)
		}

		isa.Instructions = append(isa.Instructions, ins)
		isa.byMnemonic[ins.Mnemonic] = ins
	}
	return nil
}

// loadTree converts one decode tree node. A node with a range is internal;
// anything else must name an instruction, either as a bare mnemonic or as a
// mapping (typically an alias of the instruction entry) with a mnemonic key.
func loadTree(n *yaml.Node, isa *ISA) (DecodeNode, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.ScalarNode:
		return loadLeaf(isa, n.Value, n.Line)
	case yaml.MappingNode:
	default:
		return nil, descErrorf(n.Line, "decode tree node must be a mapping or a mnemonic")
	}

	rangeNode := mappingValue(n, "range")
	if rangeNode == nil {
		m := mappingValue(n, "mnemonic")
		if m == nil {
			return nil, descErrorf(n.Line, "decode tree node has neither a range nor a mnemonic")
		}
		return loadLeaf(isa, m.Value, m.Line)
	}

	var rd chunkDoc
	if err := rangeNode.Decode(&rd); err != nil {
		return nil, descErrorf(rangeNode.Line, "invalid range: %v", err)
	}
	r := BitRange{MSB: rd.MSB, LSB: rd.LSB}
	mask, err := Mask(r)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", rangeNode.Line, err)
	}

	nodes := mappingValue(n, "nodes")
	if nodes == nil || nodes.Kind != yaml.MappingNode {
		return nil, descErrorf(n.Line, "decode tree node for %s has no nodes mapping", mask.Hex())
	}

	in := &Internal{Range: r, Mask: mask, Line: n.Line}
	seen := make(map[uint32]int)
	for i := 0; i+1 < len(nodes.Content); i += 2 {
		k, v := nodes.Content[i], nodes.Content[i+1]
		key, err := strconv.ParseUint(k.Value, 0, 32)
		if err != nil {
			return nil, descErrorf(k.Line, "invalid dispatch key %q", k.Value)
		}
		if prev, dup := seen[uint32(key)]; dup {
			return nil, &DuplicateDispatchKeyError{Key: uint32(key), Line: k.Line, PrevLine: prev}
		}
		seen[uint32(key)] = k.Line

		child, err := loadTree(v, isa)
		if err != nil {
			return nil, err
		}
		in.Branches = append(in.Branches, Branch{Key: uint32(key), Node: child, Line: k.Line})
	}
	return in, nil
}

func loadLeaf(isa *ISA, mnemonic string, line int) (DecodeNode, error) {
	ins, ok := isa.Lookup(mnemonic)
	if !ok {
		return nil, &UnknownInstructionError{Mnemonic: mnemonic, Line: line}
	}
	return &Leaf{Instruction: ins}, nil
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return resolveAlias(n.Content[i+1])
		}
	}
	return nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
