// Package mono is the monomorphizer (spec.md §4.3): it is invoked by
// other code with an (AST-item, type-argument tuple) key, memoizes by
// that key, and handles recursive generic instances by inserting an
// empty IR cell before filling it — the same "insert-empty-then-fill"
// technique the teacher uses for cyclic dependency resolution in
// internal/elaborate/scc.go, generalized here from strongly-connected
// dictionary groups to generic-instance recursion. Associated-function
// dispatch happens here, against a type's own AssocFns only; mixins are
// not included into that set and placeholder protocol bounds are not
// checked. Zero-sized types are tracked so later passes (internal/irpass,
// internal/cemit) can elide them. Expression lowering also resolves
// and expands *ast.MacroInvocation nodes against an internal/macro
// table (see SetMacros) before lowering their result, since macro
// expansion has to happen before the expressions it produces can be
// typed and lowered to IR.
package mono

import (
	"fmt"
	"strings"

	"github.com/alumina-lang/aluminac/internal/arenaid"
	"github.com/alumina-lang/aluminac/internal/ast"
	"github.com/alumina-lang/aluminac/internal/diag"
	"github.com/alumina-lang/aluminac/internal/ir"
	"github.com/alumina-lang/aluminac/internal/macro"
)

// instanceKey identifies one generic instantiation: an AST item plus
// the concrete type arguments it is being built against.
type instanceKey struct {
	item ast.ID
	args string
}

func keyOf(item ast.ID, args []ast.Type) instanceKey {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.InternKey()
	}
	return instanceKey{item: item, args: strings.Join(parts, ",")}
}

// cell is the write-once-after-recursion IR item slot backing one
// instanceKey.
type cell struct {
	id       ir.ID
	item     ir.Item
	filled   bool
	building bool
}

// Monomorphizer walks AST items and type-argument tuples into IR items,
// memoized by instanceKey (spec.md §4.3).
type Monomorphizer struct {
	astItems map[ast.ID]ast.Item
	arena    *arenaid.Arena[ir.Tag]
	interner *arenaid.Interner[ir.Type]
	ctx      *diag.Context
	macros   *macro.Table

	cells map[instanceKey]*cell
	order []instanceKey // insertion order, kept for deterministic emission
}

// New creates a monomorphizer over astItems (typically internal/itemmaker's
// output), sharing ctx for diagnostics.
func New(astItems map[ast.ID]ast.Item, ctx *diag.Context) *Monomorphizer {
	return &Monomorphizer{
		astItems: astItems,
		arena:    &arenaid.Arena[ir.Tag]{},
		interner: arenaid.NewInterner[ir.Type](),
		ctx:      ctx,
		cells:    map[instanceKey]*cell{},
	}
}

// Arena exposes the IR arena so callers (e.g. internal/cemit) can mint
// further ids (labels, synthesized temporaries) in the same id space.
func (m *Monomorphizer) Arena() *arenaid.Arena[ir.Tag] { return m.arena }

// SetMacros attaches the macro table built over the same item set this
// monomorphizer lowers. Without one, *ast.MacroInvocation nodes
// encountered during lowering are reported rather than expanded; every
// real caller (internal/pipeline) sets one before lowering a main
// candidate or exported item.
func (m *Monomorphizer) SetMacros(t *macro.Table) { m.macros = t }

// Items returns every IR item built so far, in first-requested order —
// the order the C emitter should declare them in to satisfy forward
// references via the Mangled/Id naming scheme rather than source order.
func (m *Monomorphizer) Items() []ir.Item {
	out := make([]ir.Item, 0, len(m.order))
	for _, k := range m.order {
		if c := m.cells[k]; c.filled {
			out = append(out, c.item)
		}
	}
	return out
}

// ItemByID looks up an already-instantiated item by its IR id, for
// internal/ir.IsZeroSized's lookup callback.
func (m *Monomorphizer) ItemByID(id ir.ID) ir.ItemShape {
	for _, c := range m.cells {
		if c.id == id && c.filled {
			if shape, ok := c.item.(ir.ItemShape); ok {
				return shape
			}
		}
	}
	return nil
}

// Instantiate returns the IR id for (itemID, args), building it at most
// once. A recursive request for the same key during its own build
// (e.g. a generic struct containing a pointer to itself with the same
// type arguments) finds the cell already inserted and returns its
// pending id immediately without re-entering
// build — ids, not owning values, are what recursive references use,
// so this is always safe.
func (m *Monomorphizer) Instantiate(itemID ast.ID, args []ast.Type) ir.ID {
	k := keyOf(itemID, args)
	if c, ok := m.cells[k]; ok {
		return c.id
	}

	id := m.arena.NewID()
	c := &cell{id: id, building: true}
	m.cells[k] = c
	m.order = append(m.order, k)

	astItem, ok := m.astItems[itemID]
	if !ok {
		m.ctx.ReportData(diag.KindUnpopulatedSymbol, nil, map[string]any{"item": itemID.String()},
			"monomorphizer requested unknown item %s", itemID)
		c.building = false
		return id
	}

	item := m.build(astItem, args, id)
	c.item = item
	c.filled = true
	c.building = false
	return id
}

// subst maps an AST placeholder id to its concrete (still AST-typed)
// type argument for one instantiation; substitution happens once at
// the AST level (see lower.go's substType) before any lowering, so
// this deliberately is not pre-lowered to ir.Type.
type subst map[ast.ID]ast.Type

func (m *Monomorphizer) build(item ast.Item, args []ast.Type, id ir.ID) ir.Item {
	switch v := item.(type) {
	case *ast.FunctionItem:
		return m.buildFunction(v, args, id)
	case *ast.IntrinsicItem:
		return m.buildIntrinsic(v, args, id)
	case *ast.StructLikeItem:
		return m.buildStruct(v, args, id)
	case *ast.EnumItem:
		return m.buildEnum(v, args, id)
	case *ast.StaticItem:
		return m.buildStatic(v, id)
	case *ast.ConstItem:
		return m.buildConst(v, id)
	default:
		m.ctx.ReportData(diag.KindUnpopulatedSymbol, item.Position(), map[string]any{"item": fmt.Sprintf("%T", item)},
			"monomorphizer cannot instantiate item of kind %T", item)
		return nil
	}
}

// bindSubst populates a placeholder substitution from a generic item's
// declared placeholders and the caller-supplied concrete type
// arguments. Defaults are filled in (in declaration order, so a
// default may not reference a later placeholder) when the caller
// supplied fewer arguments than the item declares.
func bindSubst(placeholders []*ast.Placeholder, args []ast.Type, s subst) {
	for i, p := range placeholders {
		switch {
		case i < len(args):
			s[p.ID] = args[i]
		case p.Default != nil:
			s[p.ID] = substType(p.Default, s)
		}
	}
}
