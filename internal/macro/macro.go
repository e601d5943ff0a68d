// Package macro implements the macro maker and expander (spec.md §4.2):
// construction of user-defined and built-in macro items, argument
// binding against an invocation's argument list, and hygienic
// expansion with et-cetera splicing. The recursive rewrite-by-type-
// switch shape is grounded on the teacher's
// internal/elaborate/dictionaries.go transformExpr pass; cycle-safe
// handling of a macro invoked from inside its own not-yet-populated
// cell is grounded on internal/elaborate/scc.go's "insert empty, then
// fill" technique.
package macro

import (
	"github.com/alumina-lang/aluminac/internal/arenaid"
	"github.com/alumina-lang/aluminac/internal/ast"
	"github.com/alumina-lang/aluminac/internal/diag"
)

// BuiltinKind mirrors ast.BuiltinMacroKind; re-exported here so callers
// of this package don't need to import ast just to name a builtin.
type BuiltinKind = ast.BuiltinMacroKind

// Ref is a resolved macro reference: the macro item plus any bound
// arguments accumulated by bind!/format_args! partial application.
// Bound args are invisible to further substitution and are prepended
// to the supplied call arguments at expansion time (spec.md §4.2).
type Ref struct {
	Item      ast.ID
	BoundArgs []ast.Expr
}

// Table holds every macro item (user-defined and built-in) keyed by
// item id, plus the arena used to mint fresh ids during hygienic
// renaming of let-bindings encountered while expanding.
type Table struct {
	items map[ast.ID]ast.Item
	arena *arenaid.Arena[ast.Tag]

	// inProgress marks item ids whose expansion has started but not
	// finished — reentering one is a not-yet-assigned macro cell
	// (spec.md §4.2 point 6: RecursiveMacroCall).
	inProgress map[ast.ID]bool
}

// NewTable builds a macro table over items already materialized by the
// item maker, sharing its id arena so fresh hygienic ids never collide
// with ids the item maker already minted.
func NewTable(arena *arenaid.Arena[ast.Tag], items map[ast.ID]ast.Item) *Table {
	return &Table{
		items:      items,
		arena:      arena,
		inProgress: map[ast.ID]bool{},
	}
}

// Lookup returns the macro item for id, if id names one.
func (t *Table) Lookup(id ast.ID) (ast.Item, bool) {
	it, ok := t.items[id]
	if !ok {
		return nil, false
	}
	switch it.(type) {
	case *ast.MacroItem, *ast.BuiltinMacroItem:
		return it, true
	default:
		return nil, false
	}
}

// params returns the declared formal parameters of a macro item, or
// nil for a built-in (built-ins validate their own arity).
func params(item ast.Item) []ast.MacroParam {
	if m, ok := item.(*ast.MacroItem); ok {
		return m.Params
	}
	return nil
}

// etCeteraIndex returns the index of the et-cetera-flagged parameter,
// or -1 if none of ps is flagged.
func etCeteraIndex(ps []ast.MacroParam) int {
	for i, p := range ps {
		if p.EtCetera {
			return i
		}
	}
	return -1
}

// validateParams enforces "at most one et-cetera parameter" (spec.md
// §4.2: "two is a hard error").
func validateParams(ctx *diag.Context, span *diag.Span, ps []ast.MacroParam) {
	seen := false
	for _, p := range ps {
		if !p.EtCetera {
			continue
		}
		if seen {
			ctx.Report(diag.KindMultipleEtCeteras, span, "macro declares more than one et-cetera parameter")
			return
		}
		seen = true
	}
}
