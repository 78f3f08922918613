package event

// Block is a chunk of a script: either code, data, or a placeholder which is
// resolved during script loading.
type Block interface {
	isBlock()
}

// Placeholder marks a block slot which has been allocated but not filled in
// yet. Scripts under construction use placeholders to break pointer cycles.
type Placeholder struct{}

// CodeBlock is a basic block of commands with single points of entry and
// exit.
type CodeBlock struct {
	// Commands is the list of commands in the block.
	Commands []Command
	// NextBlock points to the block which runs after this one, or nil if the
	// block ends the subroutine.
	NextBlock Pointer
	// ElseBlock points to the block which runs if the block's condition
	// fails, or nil if the block is unconditional.
	ElseBlock Pointer
}

// ObjPair is a pair of object IDs.
type ObjPair struct {
	First  int16
	Second int16
}

// ObjBone identifies a bone in an object's model hierarchy. Each element in
// the path is the index of the bone at that level, starting below the root.
type ObjBone struct {
	Obj  int16
	Path []int16
}

// DataBlock is a block of raw data referenced by script code.
type DataBlock interface {
	isDataBlock()
}

type (
	// I8Array is an array of signed 8-bit integers.
	I8Array []int8
	// U8Array is an array of unsigned 8-bit integers.
	U8Array []uint8
	// I16Array is an array of signed 16-bit integers.
	I16Array []int16
	// U16Array is an array of unsigned 16-bit integers.
	U16Array []uint16
	// I32Array is an array of signed 32-bit integers.
	I32Array []int32
	// U32Array is an array of unsigned 32-bit integers.
	U32Array []uint32
	// PtrArray is an array of script pointers.
	PtrArray []Pointer
	// StringData is a CP932-encoded string.
	StringData []byte
	// ObjBoneData is a serialized bone path.
	ObjBoneData ObjBone
	// ObjPairData is a serialized object pair.
	ObjPairData ObjPair
)

func (Placeholder) isBlock() {}
func (*CodeBlock) isBlock()  {}
func (DataHolder) isBlock()  {}

// DataHolder wraps a DataBlock so data can sit in a block list.
type DataHolder struct {
	Data DataBlock
}

func (I8Array) isDataBlock()     {}
func (U8Array) isDataBlock()     {}
func (I16Array) isDataBlock()    {}
func (U16Array) isDataBlock()    {}
func (I32Array) isDataBlock()    {}
func (U32Array) isDataBlock()    {}
func (PtrArray) isDataBlock()    {}
func (StringData) isDataBlock()  {}
func (ObjBoneData) isDataBlock() {}
func (ObjPairData) isDataBlock() {}

// Code returns the block's CodeBlock if it is a code block.
func Code(b Block) (*CodeBlock, bool) {
	c, ok := b.(*CodeBlock)
	return c, ok
}

// Data returns the block's DataBlock if it is a data block.
func Data(b Block) (DataBlock, bool) {
	if d, ok := b.(DataHolder); ok {
		return d.Data, true
	}
	return nil, false
}

// IsPlaceholder returns true if the block has not been filled in.
func IsPlaceholder(b Block) bool {
	_, ok := b.(Placeholder)
	return ok || b == nil
}
