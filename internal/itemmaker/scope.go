// Package itemmaker materializes AST item cells from a pre-built scope
// of grouped named declarations (spec.md §4.1). Name resolution and
// scope building are out of spec scope (an external collaborator
// produces the Scope/NamedItem tree this package walks); this package
// owns only what spec.md assigns it: grouping policy, placeholder
// collection, attribute/ABI validation, and main-function detection.
//
// The walk itself is grounded on the teacher's
// internal/elaborate/file.go top-down declaration loop and
// internal/link/module_linker.go's by-name grouping, generalized from a
// single linear decl list to named groups that may carry an arbitrary
// number of sibling impl blocks.
package itemmaker

import (
	"github.com/alumina-lang/aluminac/internal/ast"
	"github.com/alumina-lang/aluminac/internal/cfgdsl"
	"github.com/alumina-lang/aluminac/internal/diag"
)

// GroupKind is the declaration-group kind dispatched on in spec.md
// §4.1's "Groupings and policy" table.
type GroupKind int

const (
	GroupAlias GroupKind = iota
	GroupModule
	GroupImpl
	GroupType
	GroupTypeDef
	GroupProtocol
	GroupStatic
	GroupConst
	GroupMacro
	GroupFunction
	GroupBuiltinMacro
)

// PlaceholderDecl is a not-yet-collected generic parameter as it comes
// off the tree-cursor: a name plus optional default/bounds expressions,
// still needing Placeholder.ID minted and default/bounds resolved in
// the correct scope (spec.md §4.1 "Placeholder collection").
type PlaceholderDecl struct {
	Name    string
	Default ast.Type // resolved in the PARENT scope
	Bounds  []ast.Type
	Span    *diag.Span
}

// ImplBlock is one `impl Name<...> { ... }` sibling attached to a
// [Type, impl*] group. Impl blocks may introduce additional ("ambient")
// placeholders, unioned with the type's own for each associated
// function (spec.md §4.1); mixins carry no placeholders.
type ImplBlock struct {
	AmbientPlaceholders []PlaceholderDecl
	AssocFns            []*NamedItem // Function-kind items
	Mixins              []ast.Type   // protocols mixed in via this impl
	Span                *diag.Span
}

// NamedItem is one named declaration group as handed to the item maker
// by the (out-of-scope) first-pass scope builder. Which fields are
// meaningful depends on Kind.
type NamedItem struct {
	Name string
	Kind GroupKind
	Span *diag.Span

	Placeholders []PlaceholderDecl

	// GroupType
	Fields         []ast.Field
	Variants       []ast.EnumVariant
	UnderlyingType ast.Type
	Impls          []ImplBlock

	// GroupTypeDef
	AliasTarget ast.Type

	// GroupAlias
	UsePath        string
	ResolvedTarget ast.Type // nil until resolved; nil after resolution still means dangling

	// GroupModule
	Inner *Scope

	// GroupProtocol
	RequiredFns []ast.ProtocolFnSig
	SuperBounds []ast.Type

	// GroupStatic / GroupConst
	Ty   ast.Type
	Init ast.Expr

	// GroupFunction
	Params     []ast.Param
	ReturnType ast.Type
	Body       ast.Expr
	VarArgs    bool
	InProtocol bool // true when this function's enclosing scope is a protocol body

	// GroupMacro
	MacroParams []ast.MacroParam
	MacroBody   ast.Expr

	// GroupBuiltinMacro
	BuiltinKind ast.BuiltinMacroKind

	// Shared
	Attrs  *cfgdsl.Set
	Extern bool
	ABI    string // "", "C", "intrinsic"
}

// Scope is a flat table of named declaration groups plus a link to the
// enclosing scope, used only to resolve placeholder defaults in the
// parent scope (spec.md §4.1).
type Scope struct {
	Groups map[string]*NamedItem
	Parent *Scope
}

// lookupName searches s and its ancestors for a top-level name,
// supporting the "::"-free single-segment case the item maker needs for
// eager alias validation; qualified multi-segment paths are resolved by
// the out-of-scope name-resolution pass before the item maker ever sees
// a ResolvedTarget.
func (s *Scope) lookupName(name string) (*NamedItem, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if it, ok := cur.Groups[name]; ok {
			return it, true
		}
	}
	return nil, false
}
