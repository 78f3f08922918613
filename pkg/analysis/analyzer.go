package analysis

import (
	"fmt"
	"maps"

	"github.com/golang/glog"

	"github.com/yoremi/unplug-go/pkg/event"
)

// enqueueBlock pushes a block onto a workqueue only if it is not present.
func enqueueBlock(queue []event.BlockId, id event.BlockId) []event.BlockId {
	for _, queued := range queue {
		if queued == id {
			return queue
		}
	}
	return append(queue, id)
}

// ScriptAnalyzer analyzes the data flow in a script.
type ScriptAnalyzer struct {
	// defs is the definition allocator.
	defs definitionMap
	// blocks holds information about each analyzed block.
	blocks blockInfoMap
	// subs holds information about each analyzed subroutine.
	subs subroutineInfoMap
	// libs holds information about each available library subroutine.
	libs []*SubroutineEffects
}

// NewScriptAnalyzer constructs an empty ScriptAnalyzer.
func NewScriptAnalyzer() *ScriptAnalyzer {
	return &ScriptAnalyzer{subs: make(subroutineInfoMap)}
}

// NewScriptAnalyzerWithLibs constructs a ScriptAnalyzer with library
// subroutine info. Panics if a library entry point is missing from the
// effects map.
func NewScriptAnalyzerWithLibs(libEffects SubroutineEffectsMap, libs []event.BlockId) *ScriptAnalyzer {
	analyzer := NewScriptAnalyzer()
	for _, lib := range libs {
		effects, ok := libEffects[lib]
		if !ok {
			panic(fmt.Sprintf("missing subroutine info for library subroutine at %v", lib))
		}
		analyzer.libs = append(analyzer.libs, effects)
	}
	return analyzer
}

// IntoSubroutineEffects consumes the analyzer, returning only the side
// effects for each subroutine.
func (a *ScriptAnalyzer) IntoSubroutineEffects() SubroutineEffectsMap {
	effects := make(SubroutineEffectsMap, len(a.subs))
	for id, sub := range a.subs {
		effects[id] = sub.Effects
	}
	a.subs = nil
	return effects
}

// Subroutine gets the SubroutineInfo corresponding to an entry point, or nil
// if the subroutine has not been analyzed.
func (a *ScriptAnalyzer) Subroutine(entryPoint event.BlockId) *SubroutineInfo {
	return a.subs[entryPoint]
}

// Subroutines returns the analysis results for all subroutines.
func (a *ScriptAnalyzer) Subroutines() []*SubroutineInfo {
	subs := make([]*SubroutineInfo, 0, len(a.subs))
	for _, sub := range a.subs {
		subs = append(subs, sub)
	}
	return subs
}

// Block gets the BlockInfo corresponding to a block, or nil if the block has
// not been analyzed.
func (a *ScriptAnalyzer) Block(id event.BlockId) *BlockInfo {
	return a.blocks.get(id)
}

// Def gets a definition by its ID.
func (a *ScriptAnalyzer) Def(id DefId) Definition {
	return a.defs.get(id)
}

// Defs returns all allocated definitions, indexed by DefId.
func (a *ScriptAnalyzer) Defs() []Definition {
	return a.defs.defs
}

// LogStats logs analysis statistics.
func (a *ScriptAnalyzer) LogStats() {
	glog.V(1).Infof("Script analysis found %d subroutines and %d definitions",
		len(a.subs), a.defs.len())
}

// AnalyzeSubroutine analyzes the subroutine starting at entryPoint. Analyzing
// the same entry point twice is a no-op.
func (a *ScriptAnalyzer) AnalyzeSubroutine(blocks []event.Block, entryPoint event.BlockId) {
	if _, ok := a.subs[entryPoint]; ok {
		return
	}
	// Insert a placeholder so recursive calls terminate
	a.subs[entryPoint] = NewSubroutineInfo(entryPoint)

	sub := SubroutineInfoFromBlocks(blocks, entryPoint)
	a.analyzeDependencies(blocks, sub)
	a.analyzeBlocks(blocks, sub)
	a.calcEdges(blocks, sub)
	a.bubbleUndefined(sub)
	a.propagateDefinitions(sub)
	a.analyzeReferences(sub)
	a.collectOutputs(sub)
	a.subs[entryPoint] = sub
}

// FindReferences recursively finds all script locations referenced by an
// entry point, including through its calls. Panics if the entry point has not
// been analyzed.
func (a *ScriptAnalyzer) FindReferences(entryPoint event.BlockId) []Reference {
	var references []Reference
	visited := make(map[event.BlockId]bool)
	a.doFindReferences(&references, visited, entryPoint)
	return references
}

func (a *ScriptAnalyzer) doFindReferences(references *[]Reference, visited map[event.BlockId]bool, entryPoint event.BlockId) {
	if visited[entryPoint] {
		return
	}
	visited[entryPoint] = true
	sub, ok := a.subs[entryPoint]
	if !ok {
		panic(fmt.Sprintf("subroutine %v is not analyzed", entryPoint))
	}
	for ref := range sub.References {
		*references = append(*references, ref)
	}
	for _, call := range sub.Calls {
		a.doFindReferences(references, visited, call)
	}
}

// analyzeDependencies analyzes all of the subroutines called by sub.
func (a *ScriptAnalyzer) analyzeDependencies(blocks []event.Block, sub *SubroutineInfo) {
	for _, call := range sub.Calls {
		a.AnalyzeSubroutine(blocks, call)
	}
}

// analyzeBlocks populates the initial BlockInfo for each block in sub.
func (a *ScriptAnalyzer) analyzeBlocks(blocks []event.Block, sub *SubroutineInfo) {
	a.blocks.expand(len(blocks))
	for _, id := range sub.Postorder {
		if a.blocks.get(id) != nil {
			continue
		}
		code, ok := event.Code(blocks[id.Index()])
		if !ok {
			panic("expected code block")
		}
		state := newLiveState()
		for _, cmd := range code.Commands {
			state.analyzeCommand(cmd, a.subs, a.libs)
		}
		a.blocks.insert(state.intoBlock(id, &a.defs))
	}
}

// calcEdges scans sub's block hierarchy and fills in each block's successors
// and predecessors.
func (a *ScriptAnalyzer) calcEdges(blocks []event.Block, sub *SubroutineInfo) {
	for _, id := range sub.Postorder {
		code, _ := event.Code(blocks[id.Index()])
		var successors []event.BlockId
		if nextId, ok := event.PointerBlock(code.NextBlock); ok {
			next := a.blocks.get(nextId)
			next.Predecessors = append(next.Predecessors, id)
			successors = append(successors, nextId)
			if elseId, ok := event.PointerBlock(code.ElseBlock); ok {
				elseInfo := a.blocks.get(elseId)
				elseInfo.Predecessors = append(elseInfo.Predecessors, id)
				successors = append(successors, elseId)
			}
		}
		a.blocks.get(id).Successors = successors
	}
}

// bubbleUndefined bubbles each block's undefined labels up to the entry point
// of sub.
func (a *ScriptAnalyzer) bubbleUndefined(sub *SubroutineInfo) {
	// This mechanism provides a cheap way to account for the fact that almost
	// all state is global and that we don't have any readily-available
	// information on a subroutine's inputs. Technically every global variable
	// should be considered live at the start of a function, however, there
	// are 2048 global variables and so this would be impractical. Instead, we
	// only account for the global variables that a subroutine actually uses
	// by looking for undefined labels in each block and then bubbling the
	// labels up to the top. The algorithm here is essentially the reverse of
	// the output propagation algorithm: each block's undefined label set is
	// recomputed and then its predecessors are enqueued if it changed.
	queue := make([]event.BlockId, len(sub.Postorder))
	copy(queue, sub.Postorder)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		info := a.blocks.get(id)
		undefined := a.recalcUndefined(info)
		if !maps.Equal(undefined, info.Undefined) {
			for _, pred := range info.Predecessors {
				queue = enqueueBlock(queue, pred)
			}
			info.Undefined = undefined
		}
	}

	// Undefined values that bubbled up to the entry point are inputs
	for label := range a.blocks.get(sub.EntryPoint).Undefined {
		def := a.defs.insert(Definition{
			Label:  label,
			Origin: event.InvalidBlock,
			Value:  Undefined{Label: label},
		})
		sub.Inputs[def] = true
	}
}

// recalcUndefined recomputes a block's undefined label set.
func (a *ScriptAnalyzer) recalcUndefined(info *BlockInfo) map[Label]bool {
	undefined := make(map[Label]bool)

	// Add each undefined label referenced by the block's commands
	for _, ref := range info.References {
		if u, ok := ref.Value.(Undefined); ok {
			undefined[u.Label] = true
		}
	}

	// Add each undefined label referenced by the block's outputs
	for output := range info.Generated {
		if u, ok := a.defs.get(output).Value.(Undefined); ok {
			undefined[u.Label] = true
		}
	}

	// Add each undefined label from the block's successors, minus the labels
	// that are killed by this block
	for _, id := range info.Successors {
		for label := range a.blocks.get(id).Undefined {
			if !info.Killed[label] {
				undefined[label] = true
			}
		}
	}
	return undefined
}

// propagateDefinitions propagates all of the definitions in sub down to the
// bottom such that every block has a complete set of inputs and outputs.
func (a *ScriptAnalyzer) propagateDefinitions(sub *SubroutineInfo) {
	// Iterate in reverse postorder so that we start at the top and work our
	// way down to the bottom
	queue := make([]event.BlockId, 0, len(sub.Postorder))
	for i := len(sub.Postorder) - 1; i >= 0; i-- {
		queue = append(queue, sub.Postorder[i])
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		// Recompute inputs from the outputs of the predecessors
		info := a.blocks.get(id)
		inputs := a.recalcInputs(sub, info)

		// Propagate the inputs through the block to get the outputs
		outputs := a.recalcOutputs(info, inputs)
		info.Inputs = inputs

		// If the outputs changed, then each of the successors' inputs
		// changed. Enqueue them.
		if !maps.Equal(outputs, info.Outputs) {
			info.Outputs = outputs
			for _, successor := range info.Successors {
				queue = enqueueBlock(queue, successor)
			}
		}
	}
}

// recalcInputs recomputes a block's inputs by taking the union of its
// predecessors' outputs.
func (a *ScriptAnalyzer) recalcInputs(sub *SubroutineInfo, info *BlockInfo) map[DefId]bool {
	// If the block is the entry point, just take the subroutine's inputs
	if info.Id == sub.EntryPoint {
		inputs := make(map[DefId]bool, len(sub.Inputs))
		maps.Copy(inputs, sub.Inputs)
		return inputs
	}
	inputs := make(map[DefId]bool)
	for _, pred := range info.Predecessors {
		for output := range a.blocks.get(pred).Outputs {
			inputs[output] = true
		}
	}
	return inputs
}

// recalcOutputs recomputes a block's outputs from its inputs.
func (a *ScriptAnalyzer) recalcOutputs(info *BlockInfo, inputs map[DefId]bool) map[DefId]bool {
	// OUT = IN - KILL + GEN
	outputs := make(map[DefId]bool)
	for input := range inputs {
		def := a.defs.get(input)
		if !info.Killed[def.Label] {
			outputs[input] = true
		}
	}
	for generated := range info.Generated {
		outputs[generated] = true
	}
	return outputs
}

// analyzeReferences resolves the references for each block in sub after
// inputs and outputs have been fully computed. References to offsets are
// added to sub's references, and references which are still undefined are
// added to its input kinds.
func (a *ScriptAnalyzer) analyzeReferences(sub *SubroutineInfo) {
	for _, blockId := range sub.Postorder {
		for _, ref := range a.blocks.get(blockId).References {
			kind := ref.Kind
			a.visitValue(blockId, ref.Value, func(v Value) {
				switch value := v.(type) {
				case Offset:
					sub.References[Reference{Kind: kind, Target: event.OffsetPtr(value)}] = true
				case Undefined:
					sub.Effects.InputKinds[value.Label] = kind
				}
			})
		}
	}
}

// visitValue expands a value referenced by a block and invokes visitor for
// each of the values it expands to.
func (a *ScriptAnalyzer) visitValue(blockId event.BlockId, value Value, visitor func(Value)) {
	visited := make(map[DefId]bool)
	a.doVisitValue(visited, blockId, value, visitor)
}

func (a *ScriptAnalyzer) doVisitValue(visited map[DefId]bool, blockId event.BlockId, value Value, visitor func(Value)) {
	switch v := value.(type) {
	case Offset:
		visitor(v)
	case Undefined:
		for id := range a.blocks.get(blockId).Inputs {
			def := a.defs.get(id)
			if def.Label != v.Label || visited[id] {
				continue
			}
			visited[id] = true
			if def.Origin.Valid() {
				a.doVisitValue(visited, def.Origin, def.Value, visitor)
			} else {
				visitor(def.Value)
			}
		}
	}
}

// collectOutputs scans through the blocks in sub and collects the final sets
// of killed labels and output definitions for the subroutine.
func (a *ScriptAnalyzer) collectOutputs(sub *SubroutineInfo) {
	killed := make(map[Label]bool)
	for _, id := range sub.Postorder {
		for label := range a.blocks.get(id).Killed {
			killed[label] = true
		}
	}
	sub.Effects.Killed = killed

	outputDefs := make(map[DefId]bool)
	for _, id := range sub.ExitPoints {
		for output := range a.blocks.get(id).Outputs {
			outputDefs[output] = true
		}
	}

	subOutputs := make(map[Output]bool)
	for output := range outputDefs {
		def := a.defs.get(output)
		if def.Origin.Valid() {
			label := def.Label
			a.visitValue(def.Origin, def.Value, func(v Value) {
				subOutputs[Output{Label: label, Value: v}] = true
			})
		}
	}
	sub.Effects.Outputs = subOutputs
}
