package event

import "testing"

func TestPointerHelpers(t *testing.T) {
	if offset, ok := PointerOffset(OffsetPtr(0x123)); !ok || offset != 0x123 {
		t.Errorf("PointerOffset(OffsetPtr(0x123)) = %#x, %v", offset, ok)
	}
	if _, ok := PointerOffset(BlockPtr(1)); ok {
		t.Error("PointerOffset(BlockPtr(1)) should fail")
	}
	if id, ok := PointerBlock(BlockPtr(1)); !ok || id != BlockId(1) {
		t.Errorf("PointerBlock(BlockPtr(1)) = %v, %v", id, ok)
	}
	if _, ok := PointerBlock(OffsetPtr(0x123)); ok {
		t.Error("PointerBlock(OffsetPtr(0x123)) should fail")
	}
	if !IsZero(OffsetPtr(0)) || IsZero(OffsetPtr(1)) || IsZero(BlockPtr(0)) {
		t.Error("IsZero misclassified a pointer")
	}
}

func TestConstValue(t *testing.T) {
	if v, ok := ConstValue(Imm16(-42)); !ok || v != -42 {
		t.Errorf("ConstValue(Imm16(-42)) = %d, %v", v, ok)
	}
	if v, ok := ConstValue(Imm32(123456)); !ok || v != 123456 {
		t.Errorf("ConstValue(Imm32(123456)) = %d, %v", v, ok)
	}
	if _, ok := ConstValue(VarExpr(1)); ok {
		t.Error("ConstValue(VarExpr(1)) should fail")
	}
}
