package main

import (
	"errors"
	"fmt"
)

// ErrOutOfDate is returned in check mode when the file on disk differs from
// what the description and template would produce.
var ErrOutOfDate = errors.New("generated file is out of date")

// MalformedRangeError reports a bit range that cannot be turned into a mask
// or whose source and destination spans disagree.
type MalformedRangeError struct {
	Field  string
	Range  BitRange
	Reason string
}

func (e *MalformedRangeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed bit range %s: %s", e.Range, e.Reason)
	}
	return fmt.Sprintf("field %s: malformed bit range %s: %s", e.Field, e.Range, e.Reason)
}

// DuplicateDispatchKeyError reports two children of one decode tree node
// that share a masked value.
type DuplicateDispatchKeyError struct {
	Key      uint32
	Line     int
	PrevLine int
}

func (e *DuplicateDispatchKeyError) Error() string {
	return fmt.Sprintf("line %d: dispatch key %#x already used at line %d", e.Line, e.Key, e.PrevLine)
}

// IdentifierCollisionError reports two distinct mnemonics that normalize to
// the same generated identifier.
type IdentifierCollisionError struct {
	Ident     string
	Mnemonics [2]string
}

func (e *IdentifierCollisionError) Error() string {
	return fmt.Sprintf("mnemonics %q and %q both normalize to %s", e.Mnemonics[0], e.Mnemonics[1], e.Ident)
}

// UnknownInstructionError reports a decode tree leaf naming a mnemonic that
// the instructions section does not define.
type UnknownInstructionError struct {
	Mnemonic string
	Line     int
}

func (e *UnknownInstructionError) Error() string {
	return fmt.Sprintf("line %d: unknown instruction %q", e.Line, e.Mnemonic)
}

// DescriptionError is a structural problem in the description document.
type DescriptionError struct {
	Line int
	Msg  string
}

func (e *DescriptionError) Error() string {
	if e.Line == 0 {
		return e.Msg
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func descErrorf(line int, format string, args ...interface{}) error {
	return &DescriptionError{Line: line, Msg: fmt.Sprintf(format, args...)}
}
