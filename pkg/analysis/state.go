package analysis

import (
	"github.com/golang/glog"

	"github.com/yoremi/unplug-go/pkg/event"
)

// liveValue is a value which is live in the middle of a block.
type liveValue interface {
	isLiveValue()
}

// liveSingle is a single concrete value.
type liveSingle struct {
	value Value
}

// liveUnion is a set of possible concrete values.
type liveUnion struct {
	values []Value
}

// liveArrayElement is a reference to an element of another value.
type liveArrayElement struct {
	array liveValue
}

// liveDeref reads the value at the address contained in another value.
type liveDeref struct {
	target liveValue
}

// liveOther is a value we aren't interested in analyzing (e.g. a constant).
type liveOther struct{}

func (liveSingle) isLiveValue()       {}
func (liveUnion) isLiveValue()        {}
func (liveArrayElement) isLiveValue() {}
func (liveDeref) isLiveValue()        {}
func (liveOther) isLiveValue()        {}

// liveFromValues wraps a list of concrete values in the smallest liveValue
// that can hold them.
func liveFromValues(values []Value) liveValue {
	switch len(values) {
	case 0:
		return liveOther{}
	case 1:
		return liveSingle{value: values[0]}
	default:
		return liveUnion{values: values}
	}
}

// appendLive merges the concrete values of two live values. Non-concrete
// values contribute nothing.
func appendLive(a, b liveValue) liveValue {
	var values []Value
	switch v := a.(type) {
	case liveSingle:
		values = append(values, v.value)
	case liveUnion:
		values = append(values, v.values...)
	}
	switch v := b.(type) {
	case liveSingle:
		values = append(values, v.value)
	case liveUnion:
		values = append(values, v.values...)
	}
	return liveFromValues(values)
}

// liveState is the state of all live information in the middle of a block.
type liveState struct {
	// values holds the values which are currently live.
	values map[Label]liveValue
	// killed holds the labels which have been killed so far.
	killed map[Label]bool
	// references lists the values which have been referenced so far.
	references []ValueRef
	// spStack holds the value of the stack pointer at each stack frame.
	spStack []uint8
	// sp is the current value of the stack pointer.
	sp uint8
}

// newLiveState constructs an empty liveState.
func newLiveState() *liveState {
	return &liveState{
		values: make(map[Label]liveValue),
		killed: make(map[Label]bool),
	}
}

// intoBlock finalizes the state into a BlockInfo. New definitions are
// inserted into defs.
func (s *liveState) intoBlock(blockId event.BlockId, defs *definitionMap) *BlockInfo {
	generated := make(map[DefId]bool)
	for label, value := range s.values {
		switch v := value.(type) {
		case liveSingle:
			id := defs.insert(Definition{Label: label, Origin: blockId, Value: v.value})
			generated[id] = true
		case liveUnion:
			for _, value := range v.values {
				id := defs.insert(Definition{Label: label, Origin: blockId, Value: value})
				generated[id] = true
			}
		}
	}
	outputs := make(map[DefId]bool, len(generated))
	for id := range generated {
		outputs[id] = true
	}
	return &BlockInfo{
		Id:         blockId,
		Inputs:     make(map[DefId]bool),
		Outputs:    outputs,
		Generated:  generated,
		Killed:     s.killed,
		Undefined:  make(map[Label]bool),
		References: s.references,
	}
}

// analyzeCommand analyzes a command and updates the state.
func (s *liveState) analyzeCommand(cmd event.Command, subs subroutineInfoMap, libs []*SubroutineEffects) {
	switch c := cmd.(type) {
	case event.Set:
		s.analyzeSet(c.Target, c.Value)
	case event.Conditional:
		s.analyzeExpr(c.Condition)
	case event.Run:
		s.analyzeRun(c.Target, subs)
	case event.Lib:
		s.analyzeLib(int16(c), libs)
	case event.PushBp:
		s.analyzePushBp()
	case event.PopBp:
		s.analyzePopBp()
	case event.SetSp:
		s.analyzeSetSp(c.Value)
	case event.Attach:
		s.analyzeExpr(c.Obj)
		s.analyzeReference(KindEvent, c.Event)
	case event.Born:
		for _, val := range c.Vals {
			s.analyzeExpr(val)
		}
		s.analyzeReference(KindEvent, c.Event)
	case event.Call:
		s.analyzeCall(c)
	case event.Detach:
		s.analyzeExpr(c.Obj)
	case event.Msg:
		s.analyzeMsg(c.Args)
	case event.Read:
		s.analyzeExpr(c.Obj)
		s.analyzeReference(KindString, c.Path)
	case event.Timer:
		s.analyzeExpr(c.Duration)
		s.analyzeReference(KindEvent, c.Event)
	case event.Movie:
		s.analyzeReference(KindString, c.Path)
		for _, val := range c.Vals {
			s.analyzeExpr(val)
		}
	}
	// Other commands cannot produce or consume pointer values.
}

func (s *liveState) analyzeCall(cmd event.Call) {
	if value, ok := event.ConstValue(cmd.Obj); ok {
		// Special cases for system calls
		if value == -200 {
			if len(cmd.Args) >= 2 {
				s.analyzeReference(KindString, cmd.Args[0])
				s.analyzeReference(KindEvent, cmd.Args[1])
				return
			}
			glog.Warning("Not enough arguments for call(-200)")
		}
	} else {
		s.analyzeExpr(cmd.Obj)
	}
	for _, arg := range cmd.Args {
		// Sometimes scripts pass arbitrary data to native functions
		if _, ok := arg.(event.AddressOf); ok {
			s.analyzeReference(ArrayOf{Elem: ElemU8}, arg)
		} else {
			s.analyzeExpr(arg)
		}
	}
	// Assume call() always mutates the primary result register
	s.setValue(Result1, liveOther{})
}

func (s *liveState) analyzeLib(index int16, libs []*SubroutineEffects) {
	if len(libs) == 0 {
		panic("no library subroutines are configured")
	}
	if index < 0 || int(index) >= len(libs) {
		panic("invalid library index")
	}
	s.analyzeSubCall(libs[index])
}

func (s *liveState) analyzePushBp() {
	// Create a new stack frame
	s.spStack = append(s.spStack, s.sp)
	s.sp = 0
}

func (s *liveState) analyzePopBp() {
	if len(s.spStack) == 0 {
		return
	}
	s.sp = s.spStack[len(s.spStack)-1]
	s.spStack = s.spStack[:len(s.spStack)-1]
	bp := int16(len(s.spStack))
	// Discard any live values that belonged to the stack frame
	for label := range s.values {
		if stack, ok := label.(StackLabel); ok && stack.Bp > bp {
			delete(s.values, label)
		}
	}
}

func (s *liveState) analyzeMsg(args event.MsgArgs) {
	// If the message prompts for user input, it sets the primary result
	for _, command := range args.Commands {
		switch command.(type) {
		case event.MsgNumInput, event.MsgQuestion:
			s.setValue(Result1, liveOther{})
			return
		}
	}
}

func (s *liveState) analyzeRun(target event.Pointer, subs subroutineInfoMap) {
	blockId, ok := event.PointerBlock(target)
	if !ok {
		panic("unresolved subroutine call")
	}
	sub, ok := subs[blockId]
	if !ok {
		panic("unanalyzed subroutine")
	}
	s.analyzeSubCall(sub.Effects)
}

func (s *liveState) analyzeSetSp(expr event.Expr) {
	label := s.stackLabel(0, s.sp)
	value := s.analyzeExpr(expr)
	s.setValue(label, value)
	s.sp++
}

// analyzeSubCall applies a called subroutine's side effects to the state.
func (s *liveState) analyzeSubCall(effects *SubroutineEffects) {
	// Tag live values which match the inputs of the subroutine
	for label, kind := range effects.InputKinds {
		label := s.relativeLabel(label)
		if value, ok := s.values[label]; ok {
			s.addReference(kind, value)
		}
	}

	// Kill any values killed by the subroutine
	for killed := range effects.Killed {
		s.killed[killed] = true
		delete(s.values, killed)
	}

	// Analyze each output value with respect to the current state
	outputValues := make(map[Label]liveValue)
	for output := range effects.Outputs {
		resolved := s.resolveOutput(output.Value)
		if existing, ok := outputValues[output.Label]; ok {
			outputValues[output.Label] = appendLive(existing, resolved)
		} else {
			outputValues[output.Label] = resolved
		}
	}
	for label, value := range outputValues {
		s.values[label] = value
	}
}

// resolveOutput resolves a subroutine output by replacing undefined
// references with the caller's live values.
func (s *liveState) resolveOutput(value Value) liveValue {
	switch v := value.(type) {
	case Offset:
		return liveSingle{value: v}
	case Undefined:
		label := s.relativeLabel(v.Label)
		if value, ok := s.values[label]; ok {
			return value
		}
		return liveSingle{value: Undefined{Label: label}}
	}
	panic("unhandled value")
}

// analyzeExpr analyzes an expression and produces a liveValue for it.
func (s *liveState) analyzeExpr(expr event.Expr) liveValue {
	switch e := expr.(type) {
	case event.AddressOf:
		return s.analyzeAddressOf(e.Target)
	case event.Stack:
		return s.resolveLabel(s.stackLabel(0, uint8(e)))
	case event.ParentStack:
		return s.resolveLabel(s.stackLabel(-1, uint8(e)))
	case event.Variable:
		return s.analyzeVariable(e.Index)
	case event.ResultExpr:
		switch e {
		case event.Result1:
			return s.resolveLabel(Result1)
		default:
			return s.resolveLabel(Result2)
		}
	case event.ObjExpr:
		return s.analyzeObj(e)
	case event.ArrayElementExpr:
		return s.analyzeArrayElement(e)
	case event.BinaryExpr:
		return s.analyzeBinaryOp(e)
	case event.UnaryExpr:
		s.analyzeExpr(e.Operand)
		return liveOther{}
	case event.Flag:
		s.analyzeExpr(e.Index)
		return liveOther{}
	}
	// Immediates and global state reads are opaque constants
	return liveOther{}
}

func (s *liveState) analyzeBinaryOp(op event.BinaryExpr) liveValue {
	lhs := s.analyzeExpr(op.Lhs)
	rhs := s.analyzeExpr(op.Rhs)

	_, lhsOther := lhs.(liveOther)
	_, rhsOther := rhs.(liveOther)
	if lhsOther && rhsOther {
		return liveOther{}
	}

	// If offset 0 is involved in a calculation with a value, that value is
	// being interpreted as a file offset
	if single, ok := rhs.(liveSingle); ok && single.value == Offset(0) {
		return liveDeref{target: lhs}
	}
	if single, ok := lhs.(liveSingle); ok && single.value == Offset(0) {
		return liveDeref{target: rhs}
	}

	if rhsOther {
		return lhs
	}
	if lhsOther {
		return rhs
	}
	return liveOther{}
}

func (s *liveState) analyzeAddressOf(target event.Pointer) liveValue {
	offset, ok := event.PointerOffset(target)
	if !ok {
		panic("address-of expression does not reference an offset")
	}
	return liveSingle{value: Offset(offset)}
}

func (s *liveState) analyzeVariable(index event.Expr) liveValue {
	if value, ok := event.ConstValue(index); ok {
		return s.resolveLabel(VariableLabel(value))
	}
	s.analyzeExpr(index)
	return liveOther{}
}

func (s *liveState) analyzeObj(expr event.ObjExpr) liveValue {
	switch {
	case expr.Kind.TakesPair():
		s.analyzeReference(KindObjPair, expr.Operand)
	case expr.Kind.TakesBone():
		s.analyzeReference(KindObjBone, expr.Operand)
	default:
		s.analyzeExpr(expr.Operand)
	}
	return liveOther{}
}

func (s *liveState) analyzeArrayElement(arr event.ArrayElementExpr) liveValue {
	s.analyzeExpr(arr.ElementType)
	s.analyzeExpr(arr.Index)
	elemKind := ElementKindFromExpr(arr.ElementType)
	address := s.analyzeExpr(arr.Address)
	s.addReference(ArrayOf{Elem: elemKind}, address)
	return liveArrayElement{array: address}
}

func (s *liveState) analyzeSet(target event.SetExpr, expr event.Expr) {
	value := s.analyzeExpr(expr)
	var label Label
	switch t := target.(type) {
	case event.SetStack:
		label = s.stackLabel(0, uint8(t))
	case event.SetVariable:
		if index, ok := event.ConstValue(t.Index); ok {
			label = VariableLabel(index)
		} else {
			s.analyzeExpr(t.Index)
			return
		}
	case event.SetResult:
		switch t {
		case event.SetResult1:
			label = Result1
		default:
			label = Result2
		}
	case event.SetIndexed:
		if t.Kind == event.SetPad {
			// Setting pad[7] is the only legal assignment, so assume the
			// operand is an array
			s.addReference(ArrayOf{Elem: ElemI16}, value)
		} else {
			s.analyzeExpr(t.Index)
		}
		return
	default:
		return
	}
	s.setValue(label, value)
}

// setValue sets the value of a label and kills the old one.
func (s *liveState) setValue(label Label, value liveValue) {
	s.killed[label] = true
	s.values[label] = value
}

// analyzeReference analyzes an expression and adds it to the reference list.
func (s *liveState) analyzeReference(kind ValueKind, expr event.Expr) {
	value := s.analyzeExpr(expr)
	s.addReference(kind, value)
}

// addReference adds a value to the reference list.
func (s *liveState) addReference(kind ValueKind, value liveValue) {
	switch v := value.(type) {
	case liveSingle:
		s.references = append(s.references, ValueRef{Kind: kind, Value: v.value})
	case liveUnion:
		for _, value := range v.values {
			s.references = append(s.references, ValueRef{Kind: kind, Value: value})
		}
	case liveDeref:
		// Dereferenced values come from a pointer array
		s.addReference(ArrayOf{Elem: PointerTo{Kind: kind}}, v.target)
	case liveArrayElement:
		if _, ok := kind.(ArrayOf); ok {
			s.addReference(kind, v.array)
		}
	}
}

// resolveLabel gets the current value assigned to a label (or an undefined
// value if none).
func (s *liveState) resolveLabel(label Label) liveValue {
	if value, ok := s.values[label]; ok {
		return value
	}
	return liveSingle{value: Undefined{Label: label}}
}

// stackLabel creates a label for a value in a stack frame.
func (s *liveState) stackLabel(bpOffset int16, sp uint8) Label {
	bp := int16(len(s.spStack)) + bpOffset
	return StackLabel{Bp: bp, Sp: sp}
}

// relativeLabel adjusts a label to be relative to the current stack frame.
func (s *liveState) relativeLabel(label Label) Label {
	if stack, ok := label.(StackLabel); ok {
		return s.stackLabel(stack.Bp, stack.Sp)
	}
	return label
}
