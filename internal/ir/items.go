package ir

import "github.com/alumina-lang/aluminac/internal/diag"

// Item is the interface implemented by every IR top-level entity.
// Monomorphization (spec.md §4.3) is the only producer of these: one
// item cell per (AST item, type-argument tuple) instance.
type Item interface {
	Node
	ItemID() ID
	itemNode()
}

type itemBase struct {
	base
	ID ID
}

func (b itemBase) ItemID() ID { return b.ID }

// SetID stamps the item with id. Exported so internal/mono can assign
// an id to a freshly constructed item without direct field access.
func (b *itemBase) SetID(id ID) { b.ID = id }

// Field is one field of a struct-like IR item.
type Field struct {
	Name string
	Ty   Type
}

// StructItem is a fully-monomorphized struct (no placeholders remain).
type StructItem struct {
	itemBase
	Name   string
	Fields []Field
}

func (i *StructItem) itemNode() {}

func (i *StructItem) FieldTypes() []Type {
	out := make([]Type, len(i.Fields))
	for n, f := range i.Fields {
		out[n] = f.Ty
	}
	return out
}
func (i *StructItem) EnumUnderlying() Type { return nil }
func (i *StructItem) IsFunction() bool     { return false }

// EnumVariant is one variant of a monomorphized enum.
type EnumVariant struct {
	Name  string
	Ty    Type // optional payload type
	Value int64
}

// EnumItem is a fully-monomorphized tagged-union enum.
type EnumItem struct {
	itemBase
	Name           string
	Variants       []EnumVariant
	UnderlyingType Type
}

func (i *EnumItem) itemNode() {}

func (i *EnumItem) FieldTypes() []Type   { return nil }
func (i *EnumItem) EnumUnderlying() Type { return i.UnderlyingType }
func (i *EnumItem) IsFunction() bool     { return false }

// Param is a lowered function parameter; zero-sized parameters are
// still present at this stage (irpass/cemit decide elision, spec.md
// §4.3/§4.4 — "functions that return or take zero-sized values have
// those values elided ... rather than lowered to C").
type Param struct {
	Name string
	ID   ID
	Ty   Type
}

// FunctionItem is a fully-monomorphized function: no placeholders, no
// macros, a lowered IR body.
type FunctionItem struct {
	itemBase
	Name       string
	Params     []Param
	VarArgs    bool
	ReturnType Type
	Body       Expr // nil iff Extern
	Extern     bool
	ABI        string
	IsMain     bool
	IsTestMain bool

	// Attrs carries the subset of spec.md §4.5 attributes the emitter
	// needs at this stage, already validated by internal/itemmaker.
	AlwaysInline bool
	NeverInline  bool
	Cold         bool
	NoReturn     bool
	Exported     bool
	LinkName     string
}

func (i *FunctionItem) itemNode() {}

func (i *FunctionItem) FieldTypes() []Type   { return nil }
func (i *FunctionItem) EnumUnderlying() Type { return nil }
func (i *FunctionItem) IsFunction() bool     { return true }

// StaticItem is a monomorphized (always non-generic) module-level
// mutable static.
type StaticItem struct {
	itemBase
	Name   string
	Ty     Type
	Init   Expr
	Extern bool
}

func (i *StaticItem) itemNode() {}

// ConstItem is a monomorphized module-level constant.
type ConstItem struct {
	itemBase
	Name  string
	Ty    Type
	Value Expr
}

func (i *ConstItem) itemNode() {}

// IntrinsicItem carries one of the intrinsic operator kinds spec.md
// §4.4 lists; it has no Alumina body, only a contract the C emitter
// fulfills directly.
type IntrinsicKind int

const (
	IntrinsicSizeOf IntrinsicKind = iota
	IntrinsicAlignOf
	IntrinsicCFunction
	IntrinsicConstExpr
	IntrinsicAsm
	IntrinsicUninitialized
	IntrinsicDanglingPointer
	IntrinsicConstOnlySentinel
)

// IntrinsicItem is a function-shaped item whose body the C emitter
// supplies directly rather than lowering Alumina source (spec.md
// §4.1/§4.4).
type IntrinsicItem struct {
	itemBase
	Name          string
	IntrinsicName string
	Kind          IntrinsicKind
	CExpr         string // raw C text for CFunction/ConstExpr/Asm kinds
	Params        []Param
	ReturnType    Type
	// TypeArg is the lowered first type argument this instance was
	// monomorphized with, for the intrinsics (size_of/align_of/
	// uninitialized/dangling-pointer) that operate on a type rather
	// than a value. Nil for intrinsics with no type placeholder.
	TypeArg Type
}

func (i *IntrinsicItem) itemNode() {}

func (i *IntrinsicItem) FieldTypes() []Type   { return nil }
func (i *IntrinsicItem) EnumUnderlying() Type { return nil }
func (i *IntrinsicItem) IsFunction() bool     { return true }

// Span is a convenience re-export so callers constructing IR nodes
// don't need to import internal/diag solely for the type name.
type Span = diag.Span
