package event

import "fmt"

// BlockId identifies a block by its index in a script's block list.
type BlockId int32

// InvalidBlock is the sentinel for "no block".
const InvalidBlock BlockId = -1

// Index returns the block list index corresponding to this ID.
func (id BlockId) Index() int {
	return int(id)
}

// Valid returns true if the ID refers to a block.
func (id BlockId) Valid() bool {
	return id >= 0
}

func (id BlockId) String() string {
	if !id.Valid() {
		return "(invalid)"
	}
	return fmt.Sprintf("%d", int32(id))
}

// Pointer is a script pointer which is read as a file offset and later
// resolved to a block ID. A nil Pointer means "none".
type Pointer interface {
	isPointer()
}

// OffsetPtr is an unresolved pointer holding a raw file offset.
type OffsetPtr uint32

// BlockPtr is a pointer resolved to a block ID.
type BlockPtr BlockId

func (OffsetPtr) isPointer() {}
func (BlockPtr) isPointer()  {}

// PointerOffset retrieves the raw offset if the pointer is unresolved.
func PointerOffset(p Pointer) (uint32, bool) {
	if o, ok := p.(OffsetPtr); ok {
		return uint32(o), true
	}
	return 0, false
}

// PointerBlock retrieves the block ID if the pointer is resolved.
func PointerBlock(p Pointer) (BlockId, bool) {
	if b, ok := p.(BlockPtr); ok {
		return BlockId(b), true
	}
	return InvalidBlock, false
}

// IsZero returns true if the pointer is offset 0. These are not necessarily
// null pointers; script code sometimes uses an offset of 0 to obtain the base
// address of the script.
func IsZero(p Pointer) bool {
	o, ok := p.(OffsetPtr)
	return ok && o == 0
}
