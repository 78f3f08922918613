package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoremi/unplug-go/pkg/event"
)

func addressOf(offset uint32) event.Expr {
	return event.AddressOf{Target: event.OffsetPtr(offset)}
}

func blockPtr(id int) event.Pointer {
	return event.BlockPtr(event.BlockId(id))
}

// inputKindsBlocks builds a caller which passes an event address and an
// opaque value to a callee through a new stack frame. The callee reads both,
// branches on the second, and attaches the first to an object.
func inputKindsBlocks(offset1, offset2 uint32) []event.Block {
	return []event.Block{
		/* 0 */
		&event.CodeBlock{
			Commands: []event.Command{
				event.PushBp{},
				event.SetSp{Value: addressOf(offset1)},
				event.SetSp{Value: event.UnaryExpr{Op: event.OpRandom, Operand: event.Imm32(1)}},
				event.Run{Target: blockPtr(1)},
				event.PopBp{},
				event.Return{},
			},
		},
		/* 1 */
		&event.CodeBlock{
			Commands: []event.Command{
				event.Set{Target: event.SetVar(0), Value: event.Stack(0)},
				event.Set{Target: event.SetVar(1), Value: event.VarExpr(0)},
				event.Conditional{
					Kind:       event.CondIf,
					Condition:  event.Stack(1),
					ElseTarget: blockPtr(3),
				},
			},
			NextBlock: blockPtr(2),
			ElseBlock: blockPtr(3),
		},
		/* 2 */
		&event.CodeBlock{
			Commands: []event.Command{
				event.Set{Target: event.SetVar(1), Value: addressOf(offset2)},
			},
			NextBlock: blockPtr(3),
		},
		/* 3 */
		&event.CodeBlock{
			Commands: []event.Command{
				event.Attach{Obj: event.Imm32(20000), Event: event.VarExpr(1)},
				event.Return{},
			},
		},
	}
}

func TestInputKinds(t *testing.T) {
	blocks := inputKindsBlocks(1234, 2345)

	analyzer := NewScriptAnalyzer()
	analyzer.AnalyzeSubroutine(blocks, event.BlockId(0))
	sub1 := analyzer.Subroutine(event.BlockId(0))
	sub2 := analyzer.Subroutine(event.BlockId(1))
	require.NotNil(t, sub1)
	require.NotNil(t, sub2)

	assert.True(t, sub1.References[Reference{Kind: KindEvent, Target: event.OffsetPtr(1234)}])
	assert.True(t, sub2.References[Reference{Kind: KindEvent, Target: event.OffsetPtr(2345)}])
}

func TestResolveOutput(t *testing.T) {
	blocks := []event.Block{
		/* 0 */
		&event.CodeBlock{
			Commands: []event.Command{
				event.PushBp{},
				event.SetSp{Value: addressOf(1234)},
				event.SetSp{Value: event.UnaryExpr{Op: event.OpRandom, Operand: event.Imm32(1)}},
				event.Set{Target: event.SetResult1, Value: addressOf(3456)},
				event.Run{Target: blockPtr(1)},
				event.PopBp{},
				event.Attach{Obj: event.Imm32(20000), Event: event.Result1},
				event.Return{},
			},
		},
		/* 1 */
		&event.CodeBlock{
			Commands: []event.Command{
				event.Set{Target: event.SetVar(0), Value: event.Stack(0)},
				event.Set{Target: event.SetVar(1), Value: event.VarExpr(0)},
				event.Conditional{
					Kind:       event.CondIf,
					Condition:  event.Stack(1),
					ElseTarget: blockPtr(3),
				},
			},
			NextBlock: blockPtr(2),
			ElseBlock: blockPtr(3),
		},
		/* 2 */
		&event.CodeBlock{
			Commands: []event.Command{
				event.Set{Target: event.SetVar(1), Value: addressOf(2345)},
			},
			NextBlock: blockPtr(3),
		},
		/* 3 */
		&event.CodeBlock{
			Commands: []event.Command{
				event.Set{Target: event.SetResult1, Value: event.VarExpr(1)},
				event.Return{},
			},
		},
	}

	analyzer := NewScriptAnalyzer()
	analyzer.AnalyzeSubroutine(blocks, event.BlockId(0))
	sub := analyzer.Subroutine(event.BlockId(0))
	require.NotNil(t, sub)

	// The callee always overwrites the result register, so the caller's
	// earlier assignment must not leak into the attach
	assert.True(t, sub.References[Reference{Kind: KindEvent, Target: event.OffsetPtr(1234)}])
	assert.True(t, sub.References[Reference{Kind: KindEvent, Target: event.OffsetPtr(2345)}])
	assert.False(t, sub.References[Reference{Kind: KindEvent, Target: event.OffsetPtr(3456)}])
}

func TestAnalyzeLib(t *testing.T) {
	libBlocks := []event.Block{
		/* 0 */
		&event.CodeBlock{
			Commands: []event.Command{
				event.Attach{Obj: event.Imm32(0), Event: event.Stack(0)},
				event.Return{},
			},
		},
		/* 1 */
		&event.CodeBlock{
			Commands: []event.Command{
				event.Set{Target: event.SetVar(0), Value: event.Stack(0)},
				event.Set{Target: event.SetVar(1), Value: event.VarExpr(0)},
				event.Conditional{
					Kind:       event.CondIf,
					Condition:  event.Stack(1),
					ElseTarget: blockPtr(3),
				},
			},
			NextBlock: blockPtr(2),
			ElseBlock: blockPtr(3),
		},
		/* 2 */
		&event.CodeBlock{
			Commands: []event.Command{
				event.Set{Target: event.SetVar(1), Value: addressOf(3456)},
			},
			NextBlock: blockPtr(3),
		},
		/* 3 */
		&event.CodeBlock{
			Commands: []event.Command{
				event.Set{Target: event.SetResult1, Value: event.VarExpr(1)},
				event.Return{},
			},
		},
	}

	scriptBlocks := []event.Block{
		&event.CodeBlock{
			Commands: []event.Command{
				event.PushBp{},
				event.SetSp{Value: addressOf(1234)},
				event.Lib(0),
				event.PopBp{},
				event.SetSp{Value: addressOf(2345)},
				event.SetSp{Value: event.UnaryExpr{Op: event.OpRandom, Operand: event.Imm32(1)}},
				event.Lib(1),
				event.PopBp{},
				event.Attach{Obj: event.Imm32(20000), Event: event.Result1},
				event.Return{},
			},
		},
	}

	libAnalyzer := NewScriptAnalyzer()
	libAnalyzer.AnalyzeSubroutine(libBlocks, event.BlockId(0))
	libAnalyzer.AnalyzeSubroutine(libBlocks, event.BlockId(1))
	libEffects := libAnalyzer.IntoSubroutineEffects()

	analyzer := NewScriptAnalyzerWithLibs(libEffects, []event.BlockId{0, 1})
	analyzer.AnalyzeSubroutine(scriptBlocks, event.BlockId(0))
	sub := analyzer.Subroutine(event.BlockId(0))
	require.NotNil(t, sub)

	assert.True(t, sub.References[Reference{Kind: KindEvent, Target: event.OffsetPtr(1234)}])
	assert.True(t, sub.References[Reference{Kind: KindEvent, Target: event.OffsetPtr(2345)}])
	assert.True(t, sub.References[Reference{Kind: KindEvent, Target: event.OffsetPtr(3456)}])
}

func TestIpArray(t *testing.T) {
	blocks := []event.Block{
		&event.CodeBlock{
			Commands: []event.Command{
				event.Set{
					Target: event.SetVar(0),
					Value: event.ArrayElementExpr{
						ElementType: event.Imm32(-4),
						Index:       event.Stack(0),
						Address:     addressOf(1234),
					},
				},
				event.Set{
					Target: event.SetVar(0),
					Value: event.BinaryExpr{
						Op:  event.OpAdd,
						Lhs: event.VarExpr(0),
						Rhs: addressOf(0),
					},
				},
				event.Set{
					Target: event.SetVar(0),
					Value: event.ArrayElementExpr{
						ElementType: event.Imm32(-4),
						Index:       event.Stack(1),
						Address:     event.VarExpr(0),
					},
				},
			},
		},
	}

	analyzer := NewScriptAnalyzer()
	analyzer.AnalyzeSubroutine(blocks, event.BlockId(0))
	sub := analyzer.Subroutine(event.BlockId(0))
	require.NotNil(t, sub)

	target := event.OffsetPtr(1234)
	assert.True(t, sub.References[Reference{Kind: ArrayOf{Elem: ElemI32}, Target: target}])
	pointerArray := ArrayOf{Elem: PointerTo{Kind: ArrayOf{Elem: ElemI32}}}
	assert.True(t, sub.References[Reference{Kind: pointerArray, Target: target}])
}

func TestSetPad7(t *testing.T) {
	blocks := []event.Block{
		&event.CodeBlock{
			Commands: []event.Command{
				event.Set{
					Target: event.SetIndexed{Kind: event.SetPad, Index: event.Imm32(7)},
					Value:  addressOf(1234),
				},
			},
		},
	}

	analyzer := NewScriptAnalyzer()
	analyzer.AnalyzeSubroutine(blocks, event.BlockId(0))
	sub := analyzer.Subroutine(event.BlockId(0))
	require.NotNil(t, sub)

	ref := Reference{Kind: ArrayOf{Elem: ElemI16}, Target: event.OffsetPtr(1234)}
	assert.True(t, sub.References[ref])
}

func TestReanalyzeIsNoOp(t *testing.T) {
	blocks := inputKindsBlocks(1234, 2345)

	analyzer := NewScriptAnalyzer()
	analyzer.AnalyzeSubroutine(blocks, event.BlockId(0))
	defCount := len(analyzer.Defs())
	sub := analyzer.Subroutine(event.BlockId(0))

	analyzer.AnalyzeSubroutine(blocks, event.BlockId(0))
	assert.Equal(t, defCount, len(analyzer.Defs()))
	assert.Same(t, sub, analyzer.Subroutine(event.BlockId(0)))
}

func TestFindReferences(t *testing.T) {
	blocks := inputKindsBlocks(1234, 2345)

	analyzer := NewScriptAnalyzer()
	analyzer.AnalyzeSubroutine(blocks, event.BlockId(0))

	refs := analyzer.FindReferences(event.BlockId(0))
	set := make(map[Reference]bool)
	for _, ref := range refs {
		set[ref] = true
	}
	// References from the callee are collected transitively
	assert.True(t, set[Reference{Kind: KindEvent, Target: event.OffsetPtr(1234)}])
	assert.True(t, set[Reference{Kind: KindEvent, Target: event.OffsetPtr(2345)}])
}

func TestCallClobbersResult(t *testing.T) {
	blocks := []event.Block{
		&event.CodeBlock{
			Commands: []event.Command{
				event.Set{Target: event.SetResult1, Value: addressOf(1234)},
				event.Call{Obj: event.Imm32(0), Args: nil},
				event.Attach{Obj: event.Imm32(20000), Event: event.Result1},
				event.Return{},
			},
		},
	}

	analyzer := NewScriptAnalyzer()
	analyzer.AnalyzeSubroutine(blocks, event.BlockId(0))
	sub := analyzer.Subroutine(event.BlockId(0))
	require.NotNil(t, sub)

	assert.False(t, sub.References[Reference{Kind: KindEvent, Target: event.OffsetPtr(1234)}])
}

func TestSyscallReferences(t *testing.T) {
	blocks := []event.Block{
		&event.CodeBlock{
			Commands: []event.Command{
				event.Call{
					Obj:  event.Imm32(-200),
					Args: []event.Expr{addressOf(1234), addressOf(2345)},
				},
				event.Return{},
			},
		},
	}

	analyzer := NewScriptAnalyzer()
	analyzer.AnalyzeSubroutine(blocks, event.BlockId(0))
	sub := analyzer.Subroutine(event.BlockId(0))
	require.NotNil(t, sub)

	assert.True(t, sub.References[Reference{Kind: KindString, Target: event.OffsetPtr(1234)}])
	assert.True(t, sub.References[Reference{Kind: KindEvent, Target: event.OffsetPtr(2345)}])
}
