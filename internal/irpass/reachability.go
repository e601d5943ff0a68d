// Package irpass runs whole-program passes over a monomorphized IR item
// set (spec.md §4.3's "later passes" this sketched monomorphizer defers
// to): dead code elimination, zero-sized-value elision, and trivial
// inlining. It is grounded on the teacher pack's
// HugoDaniel-miniray/internal/dce package: build a dependency graph
// between items, find entry points, mark everything transitively
// reachable from them as live, and drop the rest — the same
// build-graph/find-roots/mark/sweep shape, generalized from WGSL shader
// symbols to Alumina IR items.
package irpass

import "github.com/alumina-lang/aluminac/internal/ir"

// Mark performs dead code elimination over items: every item
// transitively reachable from an entry point (spec.md §6: the `main`
// or `#[test_main]` function, plus any function that is exported or
// carries a link_name; statics and consts are never entry points) is
// kept; everything else is dropped. Returns
// the surviving items, in their original relative order, and the number
// of items that were eliminated.
func Mark(items []ir.Item) (live []ir.Item, deadCount int) {
	if len(items) == 0 {
		return nil, 0
	}

	byID := make(map[ir.ID]ir.Item, len(items))
	for _, it := range items {
		byID[it.ItemID()] = it
	}

	deps := buildDependencyGraph(items)
	roots := findEntryPoints(items)

	// No entry points (e.g. a library crate with no main and nothing
	// marked exported): conservatively keep everything rather than
	// silently emit an empty program.
	if len(roots) == 0 {
		return items, 0
	}

	visited := make(map[ir.ID]bool, len(items))
	for _, r := range roots {
		markLive(r, byID, deps, visited)
	}

	live = make([]ir.Item, 0, len(items))
	for _, it := range items {
		if visited[it.ItemID()] {
			live = append(live, it)
		} else {
			deadCount++
		}
	}
	return live, deadCount
}

func buildDependencyGraph(items []ir.Item) map[ir.ID][]ir.ID {
	deps := make(map[ir.ID][]ir.ID, len(items))
	for _, it := range items {
		refs := map[ir.ID]bool{}
		collectItemRefs(it, refs)
		list := make([]ir.ID, 0, len(refs))
		for id := range refs {
			list = append(list, id)
		}
		deps[it.ItemID()] = list
	}
	return deps
}

func findEntryPoints(items []ir.Item) []ir.ID {
	var roots []ir.ID
	for _, it := range items {
		fn, ok := it.(*ir.FunctionItem)
		if !ok {
			continue
		}
		if fn.IsMain || fn.IsTestMain || fn.Exported || fn.LinkName != "" {
			roots = append(roots, fn.ItemID())
		}
	}
	return roots
}

func markLive(id ir.ID, byID map[ir.ID]ir.Item, deps map[ir.ID][]ir.ID, visited map[ir.ID]bool) {
	if visited[id] {
		return
	}
	visited[id] = true
	if _, ok := byID[id]; !ok {
		return
	}
	for _, dep := range deps[id] {
		markLive(dep, byID, deps, visited)
	}
}

func collectItemRefs(item ir.Item, out map[ir.ID]bool) {
	switch v := item.(type) {
	case *ir.FunctionItem:
		for _, p := range v.Params {
			collectTypeRefs(p.Ty, out)
		}
		collectTypeRefs(v.ReturnType, out)
		collectExprRefs(v.Body, out)
	case *ir.IntrinsicItem:
		for _, p := range v.Params {
			collectTypeRefs(p.Ty, out)
		}
		collectTypeRefs(v.ReturnType, out)
	case *ir.StructItem:
		for _, f := range v.Fields {
			collectTypeRefs(f.Ty, out)
		}
	case *ir.EnumItem:
		for _, variant := range v.Variants {
			collectTypeRefs(variant.Ty, out)
		}
		collectTypeRefs(v.UnderlyingType, out)
	case *ir.StaticItem:
		collectTypeRefs(v.Ty, out)
		collectExprRefs(v.Init, out)
	case *ir.ConstItem:
		collectTypeRefs(v.Ty, out)
		collectExprRefs(v.Value, out)
	}
}

func collectTypeRefs(t ir.Type, out map[ir.ID]bool) {
	switch v := t.(type) {
	case nil:
	case *ir.ItemType:
		out[v.Item] = true
	case *ir.PointerType:
		collectTypeRefs(v.Inner, out)
	case *ir.ArrayType:
		collectTypeRefs(v.Inner, out)
	case *ir.TupleType:
		for _, e := range v.Elems {
			collectTypeRefs(e, out)
		}
	case *ir.FnPointerType:
		for _, p := range v.Params {
			collectTypeRefs(p, out)
		}
		collectTypeRefs(v.Ret, out)
	}
}

func collectExprRefs(e ir.Expr, out map[ir.ID]bool) {
	if e == nil {
		return
	}
	collectTypeRefs(e.Ty(), out)
	switch v := e.(type) {
	case *ir.StaticRef:
		out[v.Item] = true
	case *ir.ConstRef:
		out[v.Item] = true
	case *ir.FnRef:
		out[v.Item] = true
	case *ir.Call:
		collectExprRefs(v.Func, out)
		for _, a := range v.Args {
			collectExprRefs(a, out)
		}
	case *ir.BinaryOp:
		collectExprRefs(v.Left, out)
		collectExprRefs(v.Right, out)
	case *ir.UnaryOp:
		collectExprRefs(v.Operand, out)
	case *ir.Assign:
		collectExprRefs(v.Target, out)
		collectExprRefs(v.Value, out)
	case *ir.AssignOp:
		collectExprRefs(v.Target, out)
		collectExprRefs(v.Value, out)
	case *ir.StructLit:
		for _, f := range v.Fields {
			collectExprRefs(f.Value, out)
		}
	case *ir.TupleExpr:
		for _, el := range v.Elems {
			collectExprRefs(el, out)
		}
	case *ir.ArrayExpr:
		for _, el := range v.Elems {
			collectExprRefs(el, out)
		}
	case *ir.FieldExpr:
		collectExprRefs(v.Receiver, out)
	case *ir.TupleIndexExpr:
		collectExprRefs(v.Receiver, out)
	case *ir.IndexExpr:
		collectExprRefs(v.Receiver, out)
		collectExprRefs(v.Index, out)
	case *ir.IfExpr:
		collectExprRefs(v.Cond, out)
		collectExprRefs(v.Then, out)
		collectExprRefs(v.Else, out)
	case *ir.CastExpr:
		collectExprRefs(v.Value, out)
	case *ir.Goto:
		collectExprRefs(v.Value, out)
	case *ir.Block:
		for _, s := range v.Stmts {
			collectStmtRefs(s, out)
		}
		collectExprRefs(v.Tail, out)
	case *ir.ReturnExpr:
		collectExprRefs(v.Value, out)
	}
}

func collectStmtRefs(s ir.Stmt, out map[ir.ID]bool) {
	switch v := s.(type) {
	case *ir.LetStmt:
		collectTypeRefs(v.Ty, out)
		collectExprRefs(v.Value, out)
	case *ir.ExprStmt:
		collectExprRefs(v.Expr, out)
	}
}
