package ast

import "github.com/alumina-lang/aluminac/internal/diag"

// Item is the interface implemented by every top-level entity kind
// (spec.md §3.2): struct-like, enum, protocol, function, macro, static,
// const, type-alias, closure, intrinsic, built-in macro.
type Item interface {
	Node
	ItemID() ID
	itemNode()
}

// itemBase is embedded by every concrete Item.
type itemBase struct {
	base
	ID ID
}

func (b itemBase) ItemID() ID { return b.ID }

// SetID stamps the item with id. Exported so other packages
// (itemmaker) can assign an id to a freshly constructed item without
// needing direct field access to the unexported itemBase struct.
func (b *itemBase) SetID(id ID) { b.ID = id }

// Placeholder is a generic parameter (spec.md §3.3, GLOSSARY). Defaults
// are resolved in the parent scope (so a default cannot self-reference);
// bounds are resolved in the local scope (so a bound may reference the
// placeholder itself) — both facts are about where internal/itemmaker
// resolves them, not about this struct's shape.
type Placeholder struct {
	ID      ID
	Name    string
	Default Type // optional
	Bounds  []Type
	Span    *diag.Span
}

// Field is one field of a struct-like item.
type Field struct {
	Name string
	Ty   Type
	Span *diag.Span
}

// EnumVariant is one variant of an enum item.
type EnumVariant struct {
	Name  string
	Ty    Type // optional payload type
	Value Expr // optional explicit discriminant
	Span  *diag.Span
}

// ProtocolFnSig is one required associated-function signature inside a
// protocol (signature only, no body).
type ProtocolFnSig struct {
	Name       string
	Params     []Type
	ReturnType Type
	Span       *diag.Span
}

// StructLikeItem is a struct (or transparent-wrapper, or union-like
// aggregate) with fields, generic placeholders, and associated
// functions/mixins aggregated from sibling impl blocks (spec.md §4.1).
type StructLikeItem struct {
	itemBase
	Name         string
	Fields       []Field
	Placeholders []*Placeholder
	AssocFns     map[string]ID // name -> FunctionItem id
	Mixins       []ID          // protocol ids mixed in via impl blocks
	Transparent  bool
}

func (i *StructLikeItem) itemNode() {}

// EnumItem is a tagged-union enum with an explicit underlying integer
// representation type.
type EnumItem struct {
	itemBase
	Name           string
	Variants       []EnumVariant
	Placeholders   []*Placeholder
	AssocFns       map[string]ID
	Mixins         []ID
	UnderlyingType Type
}

func (i *EnumItem) itemNode() {}

// ProtocolItem is a named set of required associated-function signatures
// (GLOSSARY: Protocol), used as a generic bound and for dyn dispatch.
type ProtocolItem struct {
	itemBase
	Name         string
	Placeholders []*Placeholder
	RequiredFns  []ProtocolFnSig
	SuperBounds  []Type // protocols this protocol itself requires
}

func (i *ProtocolItem) itemNode() {}

// FunctionItem is a function (possibly generic, possibly extern).
type FunctionItem struct {
	itemBase
	Name         string
	Placeholders []*Placeholder
	Params       []Param
	VarArgs      bool // only legal when Extern is true (spec.md §4.1)
	ReturnType   Type
	Body         Expr // nil iff Extern
	Extern       bool
	ABI          string // "C" (default), "intrinsic", ...
	IsMain       bool   // set by item maker's main-detection pass
	IsTestMain   bool

	// Validated function attributes (spec.md §4.5), copied in from the
	// NamedItem's cfgdsl.Set by internal/itemmaker once attribute
	// validation has run; internal/mono carries them through unchanged
	// onto ir.FunctionItem for internal/cemit to consume.
	AlwaysInline bool
	NeverInline  bool
	Cold         bool
	NoReturn     bool
	Exported     bool
	LinkName     string
}

func (i *FunctionItem) itemNode() {}

// MacroItem is a user-defined macro (spec.md §4.2). At most one
// parameter may have EtCetera set.
type MacroItem struct {
	itemBase
	Name   string
	Params []MacroParam
	Body   Expr
}

func (i *MacroItem) itemNode() {}

// MacroParam is one formal parameter of a user-defined macro.
type MacroParam struct {
	ID       ID
	Name     string
	EtCetera bool
	Span     *diag.Span
}

// BuiltinMacroKind enumerates the built-in macro kinds (spec.md §4.2).
type BuiltinMacroKind int

const (
	BuiltinEnv BuiltinMacroKind = iota
	BuiltinIncludeBytes
	BuiltinConcat
	BuiltinLine
	BuiltinColumn
	BuiltinFile
	BuiltinFormatArgs
	BuiltinBind
	BuiltinReduce
	BuiltinStringify
)

// BuiltinMacroItem is a compiler-provided macro identified by kind.
type BuiltinMacroItem struct {
	itemBase
	Name string
	Kind BuiltinMacroKind
}

func (i *BuiltinMacroItem) itemNode() {}

// StaticItem is a module-level mutable static.
type StaticItem struct {
	itemBase
	Name   string
	Ty     Type // required when Extern (spec.md §4.1)
	Init   Expr // forbidden when Extern
	Extern bool
}

func (i *StaticItem) itemNode() {}

// ConstItem is a module-level constant, always const-evaluated.
type ConstItem struct {
	itemBase
	Name  string
	Ty    Type
	Value Expr
}

func (i *ConstItem) itemNode() {}

// TypeAliasItem is `type Name<...> = Target;`.
type TypeAliasItem struct {
	itemBase
	Name         string
	Placeholders []*Placeholder
	Target       Type
}

func (i *TypeAliasItem) itemNode() {}

// ClosureItem is a closure literal lifted to item status so it can be
// monomorphized and referenced like any other callable.
type ClosureItem struct {
	itemBase
	Params     []Param
	ReturnType Type
	Body       Expr
	Captures   []ID // ids of captured locals, resolved by the visitor
}

func (i *ClosureItem) itemNode() {}

// IntrinsicItem is a function-shaped item whose body is supplied by the
// C emitter rather than Alumina source (spec.md §4.1: "intrinsic ABI
// requires a recognized intrinsic name; the item is materialized as an
// Intrinsic not a Function").
type IntrinsicItem struct {
	itemBase
	Name          string
	IntrinsicName string
	Placeholders  []*Placeholder
	Params        []Param
	ReturnType    Type
}

func (i *IntrinsicItem) itemNode() {}
