package event

// Expr is an expression which evaluates to a 32-bit signed integer.
// The expression set is fixed by the engine, so this is a closed sum type:
// every implementation lives in this package.
type Expr interface {
	isExpr()
}

// Imm16 is an immediate 16-bit signed integer.
type Imm16 int16

// Imm32 is an immediate 32-bit signed integer.
type Imm32 int32

// AddressOf evaluates to the memory address corresponding to an offset in
// the script file.
type AddressOf struct {
	Target Pointer
}

// Stack retrieves a value from the current stack frame (the stack grows
// upwards). Typically used to retrieve subroutine arguments.
type Stack uint8

// ParentStack retrieves a value from the parent stack frame. Typically used
// to retrieve subroutine arguments while another stack frame is built.
type ParentStack uint8

// Variable retrieves the value of a global variable.
// The index must be in the range [0, 2048).
type Variable struct {
	Index Expr
}

// Flag retrieves the value of a flag.
// The index must be in the range [-3, 4096).
type Flag struct {
	Index Expr
}

// ResultExpr retrieves one of the two global registers that commands use to
// communicate results.
type ResultExpr uint8

const (
	// Result1 is the primary result register.
	Result1 ResultExpr = iota + 1
	// Result2 is the secondary result register.
	Result2
)

// NullaryExpr reads a piece of global game state which the analyzer treats
// as an opaque constant.
type NullaryExpr uint8

const (
	ExprMoney NullaryExpr = iota + 1
	ExprRank
	ExprExp
	ExprLevel
	ExprHold
	ExprCurrentSuit
	ExprScrap
	ExprCurrentAtc
	ExprUse
	ExprHit
)

// UnaryOp identifies a unary expression operator.
type UnaryOp uint8

const (
	OpNot UnaryOp = iota + 1
	OpPad
	OpBattery
	OpItem
	OpAtc
	OpMap
	OpActorName
	OpItemName
	OpTime
	OpStickerName
	OpRandom
	OpSin
	OpCos
)

// UnaryExpr applies a unary operator to an operand expression.
type UnaryExpr struct {
	Op      UnaryOp
	Operand Expr
}

// BinaryOp identifies a binary expression operator.
type BinaryOp uint8

const (
	OpEqual BinaryOp = iota + 1
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpBitAnd
	OpBitOr
	OpBitXor
	// In-place assignment forms, only valid inside set().
	OpAddAssign
	OpSubtractAssign
	OpMultiplyAssign
	OpDivideAssign
	OpModuloAssign
	OpBitAndAssign
	OpBitOrAssign
	OpBitXorAssign
)

// IsAssign returns true if the operator is an in-place assignment (e.g. +=).
func (op BinaryOp) IsAssign() bool {
	return op >= OpAddAssign
}

// BinaryExpr applies a binary operator to two operand expressions.
type BinaryExpr struct {
	Op  BinaryOp
	Lhs Expr
	Rhs Expr
}

// ObjExprKind identifies an object property read.
type ObjExprKind uint8

const (
	ObjAnim ObjExprKind = iota + 1
	ObjDir
	ObjPosX
	ObjPosY
	ObjPosZ
	ObjBoneX
	ObjBoneY
	ObjBoneZ
	ObjDirTo
	ObjDistance
	ObjUnk235
	ObjUnk247
	ObjUnk248
	ObjUnk249
	ObjUnk250
)

// TakesPair returns true if the operand is the address of an object ID pair.
func (k ObjExprKind) TakesPair() bool {
	return k == ObjDirTo || k == ObjDistance
}

// TakesBone returns true if the operand is the address of a bone path.
func (k ObjExprKind) TakesBone() bool {
	switch k {
	case ObjBoneX, ObjBoneY, ObjBoneZ, ObjUnk249, ObjUnk250:
		return true
	}
	return false
}

// ObjExpr retrieves object-related info (e.g. object direction). Depending
// on the kind, the operand is either an object ID expression or the address
// of an object pair or bone path.
type ObjExpr struct {
	Kind    ObjExprKind
	Operand Expr
}

// ArrayElementExpr reads a value from an array.
type ArrayElementExpr struct {
	// ElementType is the size/type of each element in the array:
	//   -4: signed 32-bit, -2: signed 16-bit, -1: signed 8-bit,
	//    1: unsigned 8-bit, 2: unsigned 16-bit, 4: unsigned 32-bit
	ElementType Expr
	// Index is the index of the element to retrieve.
	Index Expr
	// Address is the address of the array.
	Address Expr
}

func (Imm16) isExpr()            {}
func (Imm32) isExpr()            {}
func (AddressOf) isExpr()        {}
func (Stack) isExpr()            {}
func (ParentStack) isExpr()      {}
func (Variable) isExpr()         {}
func (Flag) isExpr()             {}
func (ResultExpr) isExpr()       {}
func (NullaryExpr) isExpr()      {}
func (UnaryExpr) isExpr()        {}
func (BinaryExpr) isExpr()       {}
func (ObjExpr) isExpr()          {}
func (ArrayElementExpr) isExpr() {}

// ConstValue returns the expression's constant value if it has one.
func ConstValue(e Expr) (int32, bool) {
	switch v := e.(type) {
	case Imm16:
		return int32(v), true
	case Imm32:
		return int32(v), true
	}
	return 0, false
}

// VarExpr builds a variable read with a constant index.
func VarExpr(index int32) Expr {
	return Variable{Index: Imm32(index)}
}

// FlagExpr builds a flag read with a constant index.
func FlagExpr(index int32) Expr {
	return Flag{Index: Imm32(index)}
}

// SetExpr is a reference which appears on the left-hand side of an
// assignment. Like Expr, this is a closed sum type.
type SetExpr interface {
	isSetExpr()
}

// SetStack assigns to a slot in the current stack frame.
type SetStack uint8

// SetVariable assigns to a global variable.
type SetVariable struct {
	Index Expr
}

// SetResult assigns to one of the result registers.
type SetResult uint8

const (
	SetResult1 SetResult = iota + 1
	SetResult2
)

// SetIndexedKind identifies an indexed assignment target.
type SetIndexedKind uint8

const (
	SetFlag SetIndexedKind = iota + 1
	SetPad
	SetBattery
	SetItem
	SetAtc
	SetTime
)

// SetIndexed assigns to an indexed engine table (flags, pad, battery, ...).
type SetIndexed struct {
	Kind  SetIndexedKind
	Index Expr
}

// SetNullary assigns to a piece of global game state.
type SetNullary uint8

const (
	SetMoney SetNullary = iota + 1
	SetRank
	SetExp
	SetLevel
	SetCurrentSuit
	SetScrap
	SetCurrentAtc
)

func (SetStack) isSetExpr()    {}
func (SetVariable) isSetExpr() {}
func (SetResult) isSetExpr()   {}
func (SetIndexed) isSetExpr()  {}
func (SetNullary) isSetExpr()  {}

// SetVar builds a variable assignment target with a constant index.
func SetVar(index int32) SetExpr {
	return SetVariable{Index: Imm32(index)}
}
