package event

// Command is a single script command. Commands are the statements of the
// event bytecode; a code block is a straight-line run of commands.
type Command interface {
	isCommand()
}

// Abort stops the current event immediately.
type Abort struct{}

// Return pops the current stack frame and returns to the caller.
type Return struct{}

// Goto jumps to another block unconditionally.
type Goto struct {
	Target Pointer
}

// CondKind identifies a conditional command. All conditionals evaluate a
// condition and fall through on true or jump to the else target on false.
type CondKind uint8

const (
	CondIf CondKind = iota + 1
	CondElif
	CondCase
	CondExpr
	CondWhile
)

// Conditional evaluates a condition and branches.
type Conditional struct {
	Kind       CondKind
	Condition  Expr
	ElseTarget Pointer
}

// EndIf jumps past the end of a conditional chain.
type EndIf struct {
	Target Pointer
}

// Break jumps out of a loop or case.
type Break struct {
	Target Pointer
}

// Run calls the subroutine at the target.
type Run struct {
	Target Pointer
}

// Lib calls a library subroutine through the global library table.
type Lib int16

// PushBp starts a new stack frame.
type PushBp struct{}

// PopBp discards the current stack frame.
type PopBp struct{}

// SetSp pushes a value onto the stack, typically to build subroutine
// arguments before a run().
type SetSp struct {
	Value Expr
}

// Set assigns the value to the target.
type Set struct {
	Target SetExpr
	Value  Expr
}

// Wait blocks until the condition becomes true.
type Wait struct {
	Condition Expr
}

// Anim plays an animation on an object.
type AnimKind uint8

const (
	AnimNormal AnimKind = iota + 1
	Anim1
	Anim2
)

// Anim plays an animation on an object.
type Anim struct {
	Kind   AnimKind
	Obj    Expr
	Values []Expr
}

// Attach sets the object's interaction event.
type Attach struct {
	Obj   Expr
	Event Expr
}

// Born spawns an object, running the given event on it.
type Born struct {
	Vals  [9]Expr
	Event Expr
}

// Call invokes an object-specific command.
type Call struct {
	Obj  Expr
	Args []Expr
}

// Detach clears an object's event handlers.
type Detach struct {
	Obj Expr
}

// Kill despawns an object.
type Kill struct {
	Obj Expr
}

// Dir sets an object's direction.
type Dir struct {
	Obj  Expr
	Args []Expr
}

// MDir sets an object's direction with movement.
type MDir struct {
	Obj  Expr
	Args []Expr
}

// Move moves an object.
type Move struct {
	Obj  Expr
	Args []Expr
}

// MoveTo moves an object to a position.
type MoveTo struct {
	Obj  Expr
	Args []Expr
}

// Pos teleports an object to a position.
type Pos struct {
	Obj  Expr
	Args []Expr
}

// Camera controls the camera.
type Camera struct {
	Args []Expr
}

// Check waits on engine state without consuming input.
type Check struct {
	Condition Expr
}

// Color changes an object's color.
type Color struct {
	Obj  Expr
	Args []Expr
}

// Msg displays a message.
type Msg struct {
	Args MsgArgs
}

// Select displays a selection prompt. Writes the selection to the primary
// result register, but scripts read it through select-specific expressions
// rather than the register itself.
type Select struct {
	Args MsgArgs
}

// Ptcl controls a particle effect.
type Ptcl struct {
	Args []Expr
}

// ReadKind identifies an asset read command.
type ReadKind uint8

const (
	ReadAnim ReadKind = iota + 1
	ReadSfx
)

// Read loads an asset (animation or sound bank) for an object. The path is
// the address of a file path string.
type Read struct {
	Kind ReadKind
	Obj  Expr
	Path Expr
}

// Scale resizes an object.
type Scale struct {
	Obj  Expr
	Args []Expr
}

// MScale resizes an object with movement.
type MScale struct {
	Obj  Expr
	Args []Expr
}

// Scrn controls screen effects.
type Scrn struct {
	Args []Expr
}

// Sfx plays a sound effect.
type Sfx struct {
	Id   Expr
	Args []Expr
}

// Timer schedules an event to run after a duration.
type Timer struct {
	Duration Expr
	Event    Expr
}

// Wipe runs a screen wipe transition.
type Wipe struct {
	Args []Expr
}

// Warp moves the player to another stage.
type Warp struct {
	Stage Expr
	Val   Expr
}

// Win controls the message window.
type Win struct {
	Args []Expr
}

// Movie plays a movie file. The path is the address of a file path string.
type Movie struct {
	Path Expr
	Vals [5]Expr
}

// PrintF writes a debug string. The format is the address of a string.
type PrintF struct {
	Format Expr
}

func (Abort) isCommand()       {}
func (Return) isCommand()      {}
func (Goto) isCommand()        {}
func (Conditional) isCommand() {}
func (EndIf) isCommand()       {}
func (Break) isCommand()       {}
func (Run) isCommand()         {}
func (Lib) isCommand()         {}
func (PushBp) isCommand()      {}
func (PopBp) isCommand()       {}
func (SetSp) isCommand()       {}
func (Set) isCommand()         {}
func (Wait) isCommand()        {}
func (Anim) isCommand()        {}
func (Attach) isCommand()      {}
func (Born) isCommand()        {}
func (Call) isCommand()        {}
func (Detach) isCommand()      {}
func (Kill) isCommand()        {}
func (Dir) isCommand()         {}
func (MDir) isCommand()        {}
func (Move) isCommand()        {}
func (MoveTo) isCommand()      {}
func (Pos) isCommand()         {}
func (Camera) isCommand()      {}
func (Check) isCommand()       {}
func (Color) isCommand()       {}
func (Msg) isCommand()         {}
func (Select) isCommand()      {}
func (Ptcl) isCommand()        {}
func (Read) isCommand()        {}
func (Scale) isCommand()       {}
func (MScale) isCommand()      {}
func (Scrn) isCommand()        {}
func (Sfx) isCommand()         {}
func (Timer) isCommand()       {}
func (Wipe) isCommand()        {}
func (Warp) isCommand()        {}
func (Win) isCommand()         {}
func (Movie) isCommand()       {}
func (PrintF) isCommand()      {}

// IsControlFlow returns true if the command can change control flow.
func IsControlFlow(c Command) bool {
	switch c.(type) {
	case Abort, Return, Goto, Conditional, EndIf, Break, Run, Lib:
		return true
	}
	return false
}

// IsGoto returns true if the command unconditionally jumps somewhere else.
func IsGoto(c Command) bool {
	switch c.(type) {
	case Goto, EndIf, Break:
		return true
	}
	return false
}

// JumpTarget returns the command's jump target pointer, if it has one. For
// conditionals this is the else branch.
func JumpTarget(c Command) (Pointer, bool) {
	switch cmd := c.(type) {
	case Goto:
		return cmd.Target, true
	case EndIf:
		return cmd.Target, true
	case Break:
		return cmd.Target, true
	case Run:
		return cmd.Target, true
	case Conditional:
		return cmd.ElseTarget, true
	}
	return nil, false
}
