package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alumina-lang/aluminac/internal/arenaid"
)

func TestInternKeyStructuralSharing(t *testing.T) {
	interner := arenaid.NewInterner[Type]()
	a := interner.Intern(&BuiltinType{Kind: I32})
	b := interner.Intern(&BuiltinType{Kind: I32})
	assert.Same(t, a, b)

	c := interner.Intern(&BuiltinType{Kind: I64})
	assert.NotSame(t, a, c)
}

func TestInternKeyDistinguishesPointerMutability(t *testing.T) {
	inner := &BuiltinType{Kind: U8}
	constPtr := &PointerType{Inner: inner, Mutable: false}
	mutPtr := &PointerType{Inner: inner, Mutable: true}
	assert.NotEqual(t, constPtr.InternKey(), mutPtr.InternKey())
}

func TestEmptyTupleIsVoidLike(t *testing.T) {
	empty := &TupleType{}
	assert.Equal(t, "tuple()", empty.InternKey())
}

type fakeShape struct {
	fields     []Type
	underlying Type
	isFn       bool
}

func (f fakeShape) FieldTypes() []Type   { return f.fields }
func (f fakeShape) EnumUnderlying() Type { return f.underlying }
func (f fakeShape) IsFunction() bool     { return f.isFn }

func TestIsZeroSizedNever(t *testing.T) {
	assert.True(t, IsZeroSized(&BuiltinType{Kind: Never}, nil))
	assert.True(t, IsZeroSized(&BuiltinType{Kind: Void}, nil))
	assert.False(t, IsZeroSized(&BuiltinType{Kind: I32}, nil))
}

func TestIsZeroSizedTupleOfZeroSized(t *testing.T) {
	zst := &TupleType{Elems: []Type{&BuiltinType{Kind: Void}, &BuiltinType{Kind: Never}}}
	assert.True(t, IsZeroSized(zst, nil))

	mixed := &TupleType{Elems: []Type{&BuiltinType{Kind: Void}, &BuiltinType{Kind: I32}}}
	assert.False(t, IsZeroSized(mixed, nil))
}

func TestIsZeroSizedArrayOfZeroLength(t *testing.T) {
	arr := &ArrayType{Inner: &BuiltinType{Kind: I32}, Len: 0}
	assert.True(t, IsZeroSized(arr, nil))

	nonEmpty := &ArrayType{Inner: &BuiltinType{Kind: I32}, Len: 4}
	assert.False(t, IsZeroSized(nonEmpty, nil))
}

func TestIsZeroSizedFunctionItem(t *testing.T) {
	arena := &arenaid.Arena[Tag]{}
	id := arena.NewID()
	lookup := func(got ID) ItemShape {
		require.Equal(t, id, got)
		return fakeShape{isFn: true}
	}
	assert.True(t, IsZeroSized(&ItemType{Item: id}, lookup))
}

func TestIsZeroSizedEnumDependsOnUnderlying(t *testing.T) {
	arena := &arenaid.Arena[Tag]{}
	id := arena.NewID()
	lookup := func(ID) ItemShape {
		return fakeShape{underlying: &BuiltinType{Kind: Void}}
	}
	assert.True(t, IsZeroSized(&ItemType{Item: id}, lookup))
}

func TestIsZeroSizedStructAllFieldsZeroSized(t *testing.T) {
	arena := &arenaid.Arena[Tag]{}
	id := arena.NewID()
	lookup := func(ID) ItemShape {
		return fakeShape{fields: []Type{&BuiltinType{Kind: Void}, &BuiltinType{Kind: Never}}}
	}
	assert.True(t, IsZeroSized(&ItemType{Item: id}, lookup))

	lookupNonZero := func(ID) ItemShape {
		return fakeShape{fields: []Type{&BuiltinType{Kind: I32}}}
	}
	assert.False(t, IsZeroSized(&ItemType{Item: id}, lookupNonZero))
}

func TestExprBaseCarriesTypeCategoryAndConstFlag(t *testing.T) {
	lit := &Literal{
		exprBase: exprBase{ResolvedType: &BuiltinType{Kind: I32}, Category: RValue, ConstExpr: true},
		Kind:     IntLit,
		Value:    int64(1),
	}
	assert.Equal(t, RValue, lit.ValueCategory())
	assert.True(t, lit.IsConst())
	assert.Equal(t, I32, lit.Ty().(*BuiltinType).Kind)
}

func TestLocalIsLValueByConvention(t *testing.T) {
	local := &Local{exprBase: exprBase{Category: LValue}, ID: ID{}}
	assert.Equal(t, LValue, local.ValueCategory())
}

func TestItemIDRoundTrip(t *testing.T) {
	arena := &arenaid.Arena[Tag]{}
	id := arena.NewID()
	fn := &FunctionItem{Name: "f"}
	fn.SetID(id)
	assert.Equal(t, id, fn.ItemID())
}
