package analysis

import "github.com/yoremi/unplug-go/pkg/event"

// ValueRef is a typed reference to a value made by a block's commands.
type ValueRef struct {
	Kind  ValueKind
	Value Value
}

// BlockInfo holds the analysis results for a single code block.
type BlockInfo struct {
	// Id is the ID of the analyzed block.
	Id event.BlockId
	// Predecessors lists the blocks which can jump to this block.
	Predecessors []event.BlockId
	// Successors lists the blocks this block can jump to (at most two: the
	// next block and the else block).
	Successors []event.BlockId
	// Inputs is the set of definitions live at the start of the block.
	Inputs map[DefId]bool
	// Outputs is the set of definitions live at the end of the block.
	Outputs map[DefId]bool
	// Generated is the set of definitions created by the block.
	Generated map[DefId]bool
	// Killed is the set of labels assigned by the block.
	Killed map[Label]bool
	// Undefined is the set of labels the block (or its successors) use
	// without a known definition.
	Undefined map[Label]bool
	// References lists the values referenced by the block's commands, in
	// command order.
	References []ValueRef
}

// blockInfoMap is a block-ID-indexed store of block analysis results.
type blockInfoMap struct {
	blocks []*BlockInfo
}

// expand grows the map so it can hold at least n blocks.
func (m *blockInfoMap) expand(n int) {
	for len(m.blocks) < n {
		m.blocks = append(m.blocks, nil)
	}
}

func (m *blockInfoMap) get(id event.BlockId) *BlockInfo {
	if id.Index() >= len(m.blocks) {
		return nil
	}
	return m.blocks[id.Index()]
}

func (m *blockInfoMap) insert(info *BlockInfo) {
	m.expand(info.Id.Index() + 1)
	m.blocks[info.Id.Index()] = info
}
