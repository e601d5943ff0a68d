package ir

import (
	"fmt"
	"strings"
)

// BuiltinKind mirrors ast.BuiltinKind but lives in its own package since
// IR types are a closed, separately-interned set (spec.md §3.5).
type BuiltinKind int

const (
	Bool BuiltinKind = iota
	Void
	Never
	I8
	I16
	I32
	I64
	I128
	ISize
	U8
	U16
	U32
	U64
	U128
	USize
	F32
	F64
)

var builtinNames = map[BuiltinKind]string{
	Bool: "bool", Void: "()", Never: "!",
	I8: "i8", I16: "i16", I32: "i32", I64: "i64", I128: "i128", ISize: "isize",
	U8: "u8", U16: "u16", U32: "u32", U64: "u64", U128: "u128", USize: "usize",
	F32: "f32", F64: "f64",
}

func (k BuiltinKind) String() string { return builtinNames[k] }

// BuiltinType is a scalar builtin type.
type BuiltinType struct {
	base
	Kind BuiltinKind
}

func (t *BuiltinType) typeNode()         {}
func (t *BuiltinType) InternKey() string { return "builtin(" + t.Kind.String() + ")" }

// ItemType is an interned pointer to a resolved item (struct, enum, or
// function-as-type), addressed by its IR item id (spec.md §3.5:
// "interned item pointer").
type ItemType struct {
	base
	Item ID
}

func (t *ItemType) typeNode()         {}
func (t *ItemType) InternKey() string { return fmt.Sprintf("item(%s)", t.Item) }

// PointerType is `&T` (const) or `&mut T` (mutable).
type PointerType struct {
	base
	Inner   Type
	Mutable bool
}

func (t *PointerType) typeNode() {}
func (t *PointerType) InternKey() string {
	if t.Mutable {
		return "ptr_mut(" + t.Inner.InternKey() + ")"
	}
	return "ptr_const(" + t.Inner.InternKey() + ")"
}

// ArrayType is `[T; N]` with N a resolved, folded constant (unlike the
// AST array type, whose length is still an unevaluated expression).
type ArrayType struct {
	base
	Inner Type
	Len   uint64
}

func (t *ArrayType) typeNode() {}
func (t *ArrayType) InternKey() string {
	return fmt.Sprintf("array(%s; %d)", t.Inner.InternKey(), t.Len)
}

// TupleType is `(T1, T2, ...)`; an empty tuple is the unit/void type
// (spec.md §3.5).
type TupleType struct {
	base
	Elems []Type
}

func (t *TupleType) typeNode() {}
func (t *TupleType) InternKey() string { return "tuple(" + internKeys(t.Elems) + ")" }

// FnPointerType is `fn(T...) -> R`.
type FnPointerType struct {
	base
	Params []Type
	Ret    Type
}

func (t *FnPointerType) typeNode() {}
func (t *FnPointerType) InternKey() string {
	return fmt.Sprintf("fnptr(%s)->%s", internKeys(t.Params), t.Ret.InternKey())
}

func internKeys(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		if t == nil {
			parts[i] = "<nil>"
			continue
		}
		parts[i] = t.InternKey()
	}
	return strings.Join(parts, ",")
}

// IsUninhabited reports whether t is the `never` type, the only type
// spec.md §3.5 considers uninhabited.
func IsUninhabited(t Type) bool {
	b, ok := t.(*BuiltinType)
	return ok && b.Kind == Never
}

// ItemShape is implemented by the item kinds IsZeroSized needs to look
// inside (struct field types, enum underlying type), kept minimal here
// to avoid this package importing the item-cell table type directly.
type ItemShape interface {
	// FieldTypes returns a struct-like item's field types, or nil if not
	// struct-like.
	FieldTypes() []Type
	// EnumUnderlying returns an enum item's underlying representation
	// type, or nil if this item is not an enum.
	EnumUnderlying() Type
	// IsFunction reports whether this item is a function (functions are
	// always zero-sized as values; calling them is done by item
	// reference, not by loading a value of the function's "type").
	IsFunction() bool
}

// IsZeroSized reports whether t carries no runtime representation
// (spec.md §3.5): `never`; a tuple/array/struct of zero-sized elements;
// a function item; or an enum whose underlying type is zero-sized.
// lookup resolves an ItemType's Item id to its shape; it is supplied by
// the caller (internal/mono holds the item table) rather than imported
// here, keeping this package free of a dependency on the item-cell
// table's concrete type.
func IsZeroSized(t Type, lookup func(ID) ItemShape) bool {
	switch v := t.(type) {
	case *BuiltinType:
		return v.Kind == Never || v.Kind == Void
	case *TupleType:
		for _, e := range v.Elems {
			if !IsZeroSized(e, lookup) {
				return false
			}
		}
		return true
	case *ArrayType:
		return v.Len == 0 || IsZeroSized(v.Inner, lookup)
	case *ItemType:
		shape := lookup(v.Item)
		if shape == nil {
			return false
		}
		if shape.IsFunction() {
			return true
		}
		if u := shape.EnumUnderlying(); u != nil {
			return IsZeroSized(u, lookup)
		}
		for _, f := range shape.FieldTypes() {
			if !IsZeroSized(f, lookup) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
