package ast

import (
	"fmt"
	"strings"

	"github.com/alumina-lang/aluminac/internal/arenaid"
)

// ID is an opaque id minted from the AST arena (spec.md §3.1).
type ID = arenaid.ID[Tag]

// BuiltinKind enumerates the builtin scalar types (spec.md §3.3): integer
// widths, float widths, bool, never, void.
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

// IsInteger reports whether k is one of the integer widths.
func (k BuiltinKind) IsInteger() bool {
	switch k {
	case I8, I16, I32, I64, I128, ISize, U8, U16, U32, U64, U128, USize:
		return true
	}
	return false
}

// IsSigned reports whether k is a signed integer width.
func (k BuiltinKind) IsSigned() bool {
	switch k {
	case I8, I16, I32, I64, I128, ISize:
		return true
	}
	return false
}

// IsFloat reports whether k is a float width.
func (k BuiltinKind) IsFloat() bool { return k == F32 || k == F64 }

// --- Placeholder -----------------------------------------------------

// PlaceholderType references a generic parameter by id (spec.md §3.3).
type PlaceholderType struct {
	base
	Placeholder ID
}

func (t *PlaceholderType) typeNode() {}
func (t *PlaceholderType) InternKey() string {
	return fmt.Sprintf("placeholder(%s)", t.Placeholder)
}

// --- Named item reference ---------------------------------------------

// NamedRef references a named item (struct/enum/protocol/type-alias/
// function, possibly itself generic), with optional type arguments
// applied directly (spec.md §3.3: "named item reference (possibly
// generic)").
type NamedRef struct {
	base
	Item ID
	Args []Type
}

func (t *NamedRef) typeNode() {}
func (t *NamedRef) InternKey() string {
	return fmt.Sprintf("named(%s)<%s>", t.Item, internKeys(t.Args))
}

// --- Builtin ------------------------------------------------------------

// BuiltinType is a scalar builtin type.
type BuiltinType struct {
	base
	Kind BuiltinKind
}

func (t *BuiltinType) typeNode()         {}
func (t *BuiltinType) InternKey() string { return "builtin(" + t.Kind.String() + ")" }

// --- Pointer --------------------------------------------------------------

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

// --- Slice -----------------------------------------------------------------

// SliceType is `&[T]`.
type SliceType struct {
	base
	Inner Type
}

func (t *SliceType) typeNode()         {}
func (t *SliceType) InternKey() string { return "slice(" + t.Inner.InternKey() + ")" }

// --- Array -----------------------------------------------------------------

// ArrayType is `[T; N]`, where N is a const-expression (spec.md §3.3).
type ArrayType struct {
	base
	Inner Type
	Len   Expr
}

func (t *ArrayType) typeNode() {}
func (t *ArrayType) InternKey() string {
	// The length expression may not yet be const-evaluated when types are
	// first constructed (e.g. it embeds env! before macro expansion), so
	// interning keys on the length expression node's identity (see
	// exprKeyHint) rather than a folded value; the IR array type carries
	// the folded length.
	return fmt.Sprintf("array(%s; %s)", t.Inner.InternKey(), exprKeyHint(t.Len))
}

// --- Tuple -----------------------------------------------------------------

// TupleType is `(T1, T2, ...)`; an empty tuple is the unit/void type.
type TupleType struct {
	base
	Elems []Type
}

func (t *TupleType) typeNode()         {}
func (t *TupleType) InternKey() string { return "tuple(" + internKeys(t.Elems) + ")" }

// --- Dyn -------------------------------------------------------------------

// DynType is `dyn Protocol1 + Protocol2 + ...`.
type DynType struct {
	base
	Protocols []Type
}

func (t *DynType) typeNode()         {}
func (t *DynType) InternKey() string { return "dyn(" + internKeys(t.Protocols) + ")" }

// --- Function pointer / function protocol ----------------------------------

// FnPointerType is a concrete function-pointer type `fn(T...) -> R`.
type FnPointerType struct {
	base
	Params []Type
	Ret    Type
}

func (t *FnPointerType) typeNode() {}
func (t *FnPointerType) InternKey() string {
	return fmt.Sprintf("fnptr(%s)->%s", internKeys(t.Params), t.Ret.InternKey())
}

// FnProtocolType is the structural "anything callable with this shape"
// protocol type used as a generic bound, distinct from FnPointerType
// (spec.md §3.3 lists both).
type FnProtocolType struct {
	base
	Params []Type
	Ret    Type
}

func (t *FnProtocolType) typeNode() {}
func (t *FnProtocolType) InternKey() string {
	return fmt.Sprintf("fnproto(%s)->%s", internKeys(t.Params), t.Ret.InternKey())
}

// --- typeof / when / deferred / generic instantiation ----------------------

// TypeOfType is `typeof(expr)`.
type TypeOfType struct {
	base
	Expr Expr
}

func (t *TypeOfType) typeNode()         {}
func (t *TypeOfType) InternKey() string { return "typeof(" + exprKeyHint(t.Expr) + ")" }

// WhenType is a compile-time conditional type: `when cond { Then } else { Else }`.
type WhenType struct {
	base
	Cond Expr
	Then Type
	Else Type
}

func (t *WhenType) typeNode() {}
func (t *WhenType) InternKey() string {
	return fmt.Sprintf("when(%s, %s, %s)", exprKeyHint(t.Cond), t.Then.InternKey(), t.Else.InternKey())
}

// DeferredType is an associated-type lookup: `Base::AssocName`, resolved
// once Base is known (typically once a generic parameter is
// monomorphized to a concrete protocol implementor).
type DeferredType struct {
	base
	Base      Type
	AssocName string
}

func (t *DeferredType) typeNode() {}
func (t *DeferredType) InternKey() string {
	return fmt.Sprintf("deferred(%s::%s)", t.Base.InternKey(), t.AssocName)
}

// GenericInstType applies type arguments to a type-level expression that
// is not itself a bare NamedRef (e.g. the result of a DeferredType
// lookup or WhenType branch that is itself generic).
type GenericInstType struct {
	base
	Base Type
	Args []Type
}

func (t *GenericInstType) typeNode() {}
func (t *GenericInstType) InternKey() string {
	return fmt.Sprintf("inst(%s)<%s>", t.Base.InternKey(), internKeys(t.Args))
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

// exprKeyHint produces a best-effort, non-authoritative textual key for
// an expression embedded in a type (array length, typeof, when-cond).
// It is used only for interning before const-evaluation has run; it does
// not need to be semantically precise, only stable for identical ASTs.
func exprKeyHint(e Expr) string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%p:%T", e, e)
}
