package analysis

import (
	"fmt"

	"github.com/yoremi/unplug-go/pkg/event"
)

// Output is a (label, value) pair describing a value a subroutine leaves
// behind for its caller.
type Output struct {
	Label Label
	Value Value
}

// Reference is a typed reference to a script location.
type Reference struct {
	Kind   ValueKind
	Target event.Pointer
}

// SubroutineEffects describes a subroutine's side effects. This is all the
// information needed to analyze a call to the subroutine.
type SubroutineEffects struct {
	// InputKinds maps each of the subroutine's inputs to its kind.
	InputKinds map[Label]ValueKind
	// Outputs is the set of values the subroutine may assign for its caller.
	Outputs map[Output]bool
	// Killed is the set of labels the subroutine assigns.
	Killed map[Label]bool
}

// NewSubroutineEffects constructs an empty SubroutineEffects.
func NewSubroutineEffects() *SubroutineEffects {
	return &SubroutineEffects{
		InputKinds: make(map[Label]ValueKind),
		Outputs:    make(map[Output]bool),
		Killed:     make(map[Label]bool),
	}
}

// SubroutineEffectsMap maps subroutine entry points to their effects.
type SubroutineEffectsMap map[event.BlockId]*SubroutineEffects

// SubroutineInfo holds the analysis results for a subroutine.
type SubroutineInfo struct {
	// EntryPoint is the ID of the block where the subroutine starts.
	EntryPoint event.BlockId
	// ExitPoints lists the leaf blocks where the subroutine returns.
	ExitPoints []event.BlockId
	// Postorder is a postorder traversal of the subroutine's blocks.
	Postorder []event.BlockId
	// Inputs is the set of definitions for the subroutine's inputs.
	Inputs map[DefId]bool
	// References is the set of script locations the subroutine references.
	References map[Reference]bool
	// Calls lists the entry points of other subroutines this one calls.
	Calls []event.BlockId
	// Effects is the subroutine's side effects.
	Effects *SubroutineEffects
}

// NewSubroutineInfo constructs an empty SubroutineInfo for an entry point.
func NewSubroutineInfo(entryPoint event.BlockId) *SubroutineInfo {
	return &SubroutineInfo{
		EntryPoint: entryPoint,
		Inputs:     make(map[DefId]bool),
		References: make(map[Reference]bool),
		Effects:    NewSubroutineEffects(),
	}
}

// SubroutineInfoFromBlocks constructs a SubroutineInfo by traversing the
// blocks reachable from an entry point. Panics if a run() command has an
// unresolved target.
func SubroutineInfoFromBlocks(blocks []event.Block, entryPoint event.BlockId) *SubroutineInfo {
	sub := NewSubroutineInfo(entryPoint)
	sub.findBlocks(blocks, entryPoint)
	sub.findCalls(blocks)
	return sub
}

// findBlocks performs a postorder traversal from the entry point and
// populates the postorder and exit point lists.
func (s *SubroutineInfo) findBlocks(blocks []event.Block, id event.BlockId) {
	s.Postorder = event.Postorder(blocks, id)

	// Exit points have no next block.
	for _, id := range s.Postorder {
		code, _ := event.Code(blocks[id.Index()])
		if code.NextBlock == nil {
			s.ExitPoints = append(s.ExitPoints, id)
		}
	}
}

// findCalls scans the subroutine's blocks for calls to other subroutines and
// populates the call list.
func (s *SubroutineInfo) findCalls(blocks []event.Block) {
	for _, id := range s.Postorder {
		code, _ := event.Code(blocks[id.Index()])
		for _, cmd := range code.Commands {
			run, ok := cmd.(event.Run)
			if !ok {
				continue
			}
			entryPoint, ok := event.PointerBlock(run.Target)
			if !ok {
				panic(fmt.Sprintf("unresolved subroutine pointer: %v", run.Target))
			}
			if !containsBlock(s.Calls, entryPoint) {
				s.Calls = append(s.Calls, entryPoint)
			}
		}
	}
}

func containsBlock(ids []event.BlockId, id event.BlockId) bool {
	for _, other := range ids {
		if other == id {
			return true
		}
	}
	return false
}

// subroutineInfoMap maps entry points to subroutine analysis results.
type subroutineInfoMap map[event.BlockId]*SubroutineInfo
