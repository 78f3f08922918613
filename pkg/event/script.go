package event

import (
	"fmt"
	"sort"
)

// BlockLocation describes the offset and ID of a block.
type BlockLocation struct {
	Id     BlockId
	Offset uint32
}

// ScriptLayout holds information about where a script's blocks were located
// in the source file. It is only present on scripts read from a file.
type ScriptLayout struct {
	// blockOffsets lists each block's location, sorted by offset. Each block
	// appears exactly once. Useful for resolving AddressOf expressions.
	blockOffsets []BlockLocation
}

// NewScriptLayout constructs a layout from a list of block offsets ordered by
// block ID.
func NewScriptLayout(blockOffsets []uint32) *ScriptLayout {
	locations := make([]BlockLocation, len(blockOffsets))
	for i, offset := range blockOffsets {
		locations[i] = BlockLocation{Id: BlockId(i), Offset: offset}
	}
	sort.Slice(locations, func(i, j int) bool {
		return locations[i].Offset < locations[j].Offset
	})
	return &ScriptLayout{blockOffsets: locations}
}

// BlockOffsets returns the script's block offset list, sorted by offset.
func (l *ScriptLayout) BlockOffsets() []BlockLocation {
	return l.blockOffsets
}

// ResolveOffset looks up the ID of the block at a file offset.
func (l *ScriptLayout) ResolveOffset(offset uint32) (BlockId, error) {
	i := sort.Search(len(l.blockOffsets), func(i int) bool {
		return l.blockOffsets[i].Offset >= offset
	})
	if i < len(l.blockOffsets) && l.blockOffsets[i].Offset == offset {
		return l.blockOffsets[i].Id, nil
	}
	return InvalidBlock, fmt.Errorf("offset %#x is not mapped to a block", offset)
}

// Script is an event script: a list of blocks plus optional layout info.
type Script struct {
	blocks []Block
	layout *ScriptLayout
}

// NewScript constructs an empty script.
func NewScript() *Script {
	return &Script{}
}

// WithBlocks constructs a script from a list of blocks.
func WithBlocks(blocks []Block) *Script {
	return &Script{blocks: blocks}
}

// WithBlocksAndLayout constructs a script from a list of blocks and layout
// information.
func WithBlocksAndLayout(blocks []Block, layout *ScriptLayout) *Script {
	return &Script{blocks: blocks, layout: layout}
}

// Block returns the block with the given ID.
func (s *Script) Block(id BlockId) Block {
	return s.blocks[id.Index()]
}

// SetBlock replaces the block with the given ID.
func (s *Script) SetBlock(id BlockId, block Block) {
	s.blocks[id.Index()] = block
}

// Blocks returns the blocks in the script ordered by ID.
func (s *Script) Blocks() []Block {
	return s.blocks
}

// Len returns the number of blocks in the script.
func (s *Script) Len() int {
	return len(s.blocks)
}

// Layout returns the script's layout information if it was read from a file.
func (s *Script) Layout() *ScriptLayout {
	return s.layout
}

// Push appends a block to the script and returns its ID.
func (s *Script) Push(block Block) BlockId {
	id := BlockId(len(s.blocks))
	s.blocks = append(s.blocks, block)
	return id
}

// ResolvePointer looks up the block ID a pointer refers to.
func (s *Script) ResolvePointer(p Pointer) (BlockId, error) {
	switch ptr := p.(type) {
	case BlockPtr:
		id := BlockId(ptr)
		if id.Index() < len(s.blocks) {
			return id, nil
		}
		return InvalidBlock, fmt.Errorf("ID %v is not mapped to a block", id)
	case OffsetPtr:
		if s.layout == nil {
			return InvalidBlock, fmt.Errorf("script does not have layout information")
		}
		return s.layout.ResolveOffset(uint32(ptr))
	}
	return InvalidBlock, fmt.Errorf("cannot resolve nil pointer")
}

// Postorder returns a postorder ordering of the tree of code blocks starting
// from root. Panics if a visited block is not a code block or has an
// unresolved pointer.
func (s *Script) Postorder(root BlockId) []BlockId {
	return Postorder(s.blocks, root)
}

// ReversePostorder returns a reverse postorder ordering of the tree of code
// blocks starting from root.
func (s *Script) ReversePostorder(root BlockId) []BlockId {
	order := Postorder(s.blocks, root)
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// RedirectBlock empties the from block and chains it with to, effectively
// redirecting anything that references it. Panics if either block is not a
// code block.
func (s *Script) RedirectBlock(from, to BlockId) {
	if _, ok := Code(s.Block(to)); !ok {
		panic("expected a code block")
	}
	if _, ok := Code(s.Block(from)); !ok {
		panic("expected a code block")
	}
	s.SetBlock(from, &CodeBlock{NextBlock: BlockPtr(to)})
}

// Postorder computes a postorder ordering of the tree of code blocks starting
// at start. The else branch is walked before the next branch so that the
// reverse postorder puts the "true" branch first. Already-visited blocks are
// skipped, so cycles are tolerated.
func Postorder(blocks []Block, start BlockId) []BlockId {
	var order []BlockId
	var stack []BlockId
	visited := make(map[BlockId]bool)
	current := start
	hasCurrent := true
	prev := start
	for {
		if hasCurrent {
			if visited[current] {
				prev = current
				hasCurrent = false
				continue
			}
			visited[current] = true
			stack = append(stack, current)
			code, ok := Code(blocks[current.Index()])
			if !ok {
				panic("expected code block")
			}
			if code.ElseBlock != nil {
				next, ok := PointerBlock(code.ElseBlock)
				if !ok {
					panic("else pointer is not resolved")
				}
				current = next
			} else {
				hasCurrent = false
			}
		} else if len(stack) > 0 {
			peek := stack[len(stack)-1]
			code, ok := Code(blocks[peek.Index()])
			if !ok {
				panic("expected code block")
			}
			// If we didn't just come from the next block, it hasn't been
			// visited yet.
			if next, ok := PointerBlock(code.NextBlock); ok && prev != next {
				current = next
				hasCurrent = true
				continue
			}
			prev = peek
			stack = stack[:len(stack)-1]
			order = append(order, peek)
		} else {
			return order
		}
	}
}
