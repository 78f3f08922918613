// Package analysis recovers type information from event scripts.
//
// Event bytecode is untyped: a value on the stack may be an integer, the
// address of a string, or the address of another subroutine, and nothing in
// the encoding says which. This package runs a data-flow analysis over a
// script's code blocks to figure out which values are pointers and what they
// point to, so that scripts can be safely relocated and their data decoded.
package analysis

import (
	"github.com/golang/glog"

	"github.com/yoremi/unplug-go/pkg/event"
)

// Label names a storage location that can hold an analyzable value.
// Labels are comparable and are used as map keys.
type Label interface {
	isLabel()
}

// StackLabel is a (bp, sp) pair naming a stack slot. Bp counts stack frames
// from the bottom and Sp is the slot within the frame.
type StackLabel struct {
	Bp int16
	Sp uint8
}

// VariableLabel names a global variable.
type VariableLabel int16

// ResultLabel names one of the global result registers.
type ResultLabel uint8

const (
	// Result1 is the primary result register.
	Result1 ResultLabel = iota + 1
	// Result2 is the secondary result register.
	Result2
)

func (StackLabel) isLabel()    {}
func (VariableLabel) isLabel() {}
func (ResultLabel) isLabel()   {}

// Value is the analyzer's best knowledge of a runtime value.
type Value interface {
	isValue()
}

// Offset is a reference to data in the script file.
type Offset uint32

// Undefined is a reference to a label which could not be resolved.
type Undefined struct {
	Label Label
}

func (Offset) isValue()    {}
func (Undefined) isValue() {}

// ValueKind is the type of a referenced value.
type ValueKind interface {
	isValueKind()
}

// SimpleKind is a value kind with no parameters.
type SimpleKind uint8

const (
	// KindEvent means the value is the address of an event subroutine.
	KindEvent SimpleKind = iota + 1
	// KindString means the value is the address of a string.
	KindString
	// KindObjBone means the value is a reference to a bone in an object.
	KindObjBone
	// KindObjPair means the value is a pair of object IDs.
	KindObjPair
)

// ArrayOf means the value is the address of an array.
type ArrayOf struct {
	Elem ElementKind
}

func (SimpleKind) isValueKind() {}
func (ArrayOf) isValueKind()    {}

// ElementKind is the type of an array element.
type ElementKind interface {
	isElementKind()
}

// IntKind is an integer array element type.
type IntKind uint8

const (
	ElemI8 IntKind = iota + 1
	ElemU8
	ElemI16
	ElemU16
	ElemI32
	ElemU32
)

// PointerTo is a pointer array element type.
type PointerTo struct {
	Kind ValueKind
}

func (IntKind) isElementKind()   {}
func (PointerTo) isElementKind() {}

// ElementSize returns the size of an array element in bytes.
func ElementSize(kind ElementKind) int {
	switch k := kind.(type) {
	case IntKind:
		switch k {
		case ElemI8, ElemU8:
			return 1
		case ElemI16, ElemU16:
			return 2
		default:
			return 4
		}
	case PointerTo:
		return 4
	}
	panic("unhandled element kind")
}

// ElementKindFromExpr retrieves the element kind corresponding to an element
// size expression. Sizes the engine does not recognize become byte arrays.
func ElementKindFromExpr(expr event.Expr) ElementKind {
	size, ok := event.ConstValue(expr)
	if !ok {
		glog.Warningf("Array element size %v is not a constant - declaring a byte array", expr)
		return ElemU8
	}
	switch size {
	case -4:
		return ElemI32
	case -2:
		return ElemI16
	case -1:
		return ElemI8
	case 1:
		return ElemU8
	case 2:
		return ElemU16
	case 4:
		return ElemU32
	default:
		glog.Warningf("Unrecognized array element size %d - declaring a byte array", size)
		return ElemU8
	}
}

// DefId is a unique ID for a value definition.
type DefId int32

// Definition is a value assignment which can be traced through a subroutine.
type Definition struct {
	// Label is the label that the definition was initially assigned to.
	Label Label
	// Origin is the ID of the block that created the definition. If this is
	// InvalidBlock, the definition references a subroutine input.
	Origin event.BlockId
	// Value is the best-known representation of the definition's value,
	// resolved relative to the origin block.
	Value Value
}

// definitionMap allocates definitions and maps IDs back to them.
type definitionMap struct {
	defs []Definition
}

func (m *definitionMap) insert(def Definition) DefId {
	id := DefId(len(m.defs))
	m.defs = append(m.defs, def)
	return id
}

func (m *definitionMap) get(id DefId) Definition {
	return m.defs[id]
}

func (m *definitionMap) len() int {
	return len(m.defs)
}
