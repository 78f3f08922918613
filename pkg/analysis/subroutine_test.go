package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yoremi/unplug-go/pkg/event"
)

func emptyBlock(nextIndex, elseIndex int) event.Block {
	block := &event.CodeBlock{}
	if nextIndex >= 0 {
		block.NextBlock = event.BlockPtr(event.BlockId(nextIndex))
	}
	if elseIndex >= 0 {
		block.ElseBlock = event.BlockPtr(event.BlockId(elseIndex))
	}
	return block
}

func blockIds(indexes ...int) []event.BlockId {
	ids := make([]event.BlockId, len(indexes))
	for i, index := range indexes {
		ids[i] = event.BlockId(index)
	}
	return ids
}

func TestSubFromBlocks(t *testing.T) {
	blocks := []event.Block{
		/* 0 */ emptyBlock(1, -1),
		/* 1 */ emptyBlock(2, 3),
		/* 2 */ emptyBlock(4, 5),
		/* 3 */ emptyBlock(6, 7),
		/* 4 */ emptyBlock(8, -1),
		/* 5 */ emptyBlock(-1, -1),
		/* 6 */ emptyBlock(8, -1),
		/* 7 */ emptyBlock(-1, -1),
		/* 8 */ emptyBlock(0, -1),
		/* 9 (unreachable) */ emptyBlock(-1, -1),
	}
	sub := SubroutineInfoFromBlocks(blocks, event.BlockId(0))
	assert.Equal(t, event.BlockId(0), sub.EntryPoint)
	assert.Equal(t, blockIds(7, 5), sub.ExitPoints)
	assert.Equal(t, blockIds(7, 8, 6, 3, 5, 4, 2, 1, 0), sub.Postorder)
}

func TestSubFindCalls(t *testing.T) {
	blocks := []event.Block{
		&event.CodeBlock{
			Commands: []event.Command{
				event.Run{Target: event.BlockPtr(event.BlockId(1))},
				event.Run{Target: event.BlockPtr(event.BlockId(1))},
				event.Return{},
			},
		},
		&event.CodeBlock{
			Commands: []event.Command{event.Return{}},
		},
	}
	sub := SubroutineInfoFromBlocks(blocks, event.BlockId(0))
	assert.Equal(t, blockIds(1), sub.Calls)
}
