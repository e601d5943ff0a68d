package irpass

import "github.com/alumina-lang/aluminac/internal/ir"

// maxInlinePasses bounds the fixed-point loop below: inlining a call can
// expose a further inlinable call nested in the substituted body, so a
// single substitution pass is not always enough, but the candidate set
// (non-recursive, zero-parameter, AlwaysInline) cannot grow once fixed,
// so a handful of passes always reaches a fixed point in practice.
const maxInlinePasses = 8

// InlineTrivially substitutes calls to zero-parameter functions marked
// `#[inline(always)]` with their body expression (the candidate's body
// node itself, shared rather than copied), for every surviving
// (post-Mark) item. Only non-recursive, parameterless candidates
// qualify: this is the "trivial" case spec.md's irpass responsibility
// calls out, not general call-site inlining with argument substitution.
func InlineTrivially(items []ir.Item) []ir.Item {
	candidates := trivialCandidates(items)
	if len(candidates) == 0 {
		return items
	}

	out := make([]ir.Item, len(items))
	copy(out, items)

	for pass := 0; pass < maxInlinePasses; pass++ {
		changed := false
		for i, it := range out {
			switch v := it.(type) {
			case *ir.FunctionItem:
				if v.Body == nil {
					continue
				}
				newBody, did := inlineExpr(v.Body, candidates)
				if did {
					clone := *v
					clone.Body = newBody
					out[i] = &clone
					changed = true
				}
			case *ir.StaticItem:
				if v.Init == nil {
					continue
				}
				newInit, did := inlineExpr(v.Init, candidates)
				if did {
					clone := *v
					clone.Init = newInit
					out[i] = &clone
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
	return out
}

// trivialCandidates finds functions eligible for inlining: non-extern,
// zero parameters, marked always-inline, and not calling themselves
// (directly — mutual recursion among inline candidates is not detected,
// matching the "trivial" scope of this pass).
func trivialCandidates(items []ir.Item) map[ir.ID]ir.Expr {
	out := map[ir.ID]ir.Expr{}
	for _, it := range items {
		fn, ok := it.(*ir.FunctionItem)
		if !ok || fn.Extern || !fn.AlwaysInline || len(fn.Params) != 0 || fn.Body == nil {
			continue
		}
		if callsSelf(fn.Body, fn.ItemID()) {
			continue
		}
		out[fn.ItemID()] = fn.Body
	}
	return out
}

func callsSelf(e ir.Expr, self ir.ID) bool {
	found := false
	walkExpr(e, func(v ir.Expr) {
		if ref, ok := v.(*ir.FnRef); ok && ref.Item == self {
			found = true
		}
	})
	return found
}

// inlineExpr returns a copy of e with any zero-argument Call to a
// candidate replaced by that candidate's body, and whether any
// substitution happened.
func inlineExpr(e ir.Expr, candidates map[ir.ID]ir.Expr) (ir.Expr, bool) {
	if e == nil {
		return nil, false
	}
	if call, ok := e.(*ir.Call); ok {
		if ref, ok := call.Func.(*ir.FnRef); ok && len(call.Args) == 0 {
			if body, ok := candidates[ref.Item]; ok {
				return body, true
			}
		}
	}

	changed := false
	switch v := e.(type) {
	case *ir.Call:
		fn, c1 := inlineExpr(v.Func, candidates)
		args := make([]ir.Expr, len(v.Args))
		for i, a := range v.Args {
			na, c := inlineExpr(a, candidates)
			args[i] = na
			changed = changed || c
		}
		if c1 || changed {
			clone := *v
			clone.Func, clone.Args = fn, args
			return &clone, true
		}
	case *ir.BinaryOp:
		left, c1 := inlineExpr(v.Left, candidates)
		right, c2 := inlineExpr(v.Right, candidates)
		if c1 || c2 {
			clone := *v
			clone.Left, clone.Right = left, right
			return &clone, true
		}
	case *ir.UnaryOp:
		operand, c := inlineExpr(v.Operand, candidates)
		if c {
			clone := *v
			clone.Operand = operand
			return &clone, true
		}
	case *ir.IfExpr:
		cond, c1 := inlineExpr(v.Cond, candidates)
		then, c2 := inlineExpr(v.Then, candidates)
		els, c3 := inlineExpr(v.Else, candidates)
		if c1 || c2 || c3 {
			clone := *v
			clone.Cond, clone.Then, clone.Else = cond, then, els
			return &clone, true
		}
	case *ir.Block:
		tail, c := inlineExpr(v.Tail, candidates)
		stmtsChanged := false
		stmts := make([]ir.Stmt, len(v.Stmts))
		for i, s := range v.Stmts {
			ns, sc := inlineStmt(s, candidates)
			stmts[i] = ns
			stmtsChanged = stmtsChanged || sc
		}
		if c || stmtsChanged {
			clone := *v
			clone.Tail, clone.Stmts = tail, stmts
			return &clone, true
		}
	case *ir.ReturnExpr:
		value, c := inlineExpr(v.Value, candidates)
		if c {
			clone := *v
			clone.Value = value
			return &clone, true
		}
	}
	return e, false
}

func inlineStmt(s ir.Stmt, candidates map[ir.ID]ir.Expr) (ir.Stmt, bool) {
	switch v := s.(type) {
	case *ir.ExprStmt:
		ne, c := inlineExpr(v.Expr, candidates)
		if c {
			clone := *v
			clone.Expr = ne
			return &clone, true
		}
	case *ir.LetStmt:
		nv, c := inlineExpr(v.Value, candidates)
		if c {
			clone := *v
			clone.Value = nv
			return &clone, true
		}
	}
	return s, false
}

// walkExpr visits e and every expression nested within it, depth-first.
func walkExpr(e ir.Expr, visit func(ir.Expr)) {
	if e == nil {
		return
	}
	visit(e)
	switch v := e.(type) {
	case *ir.Call:
		walkExpr(v.Func, visit)
		for _, a := range v.Args {
			walkExpr(a, visit)
		}
	case *ir.BinaryOp:
		walkExpr(v.Left, visit)
		walkExpr(v.Right, visit)
	case *ir.UnaryOp:
		walkExpr(v.Operand, visit)
	case *ir.Assign:
		walkExpr(v.Target, visit)
		walkExpr(v.Value, visit)
	case *ir.AssignOp:
		walkExpr(v.Target, visit)
		walkExpr(v.Value, visit)
	case *ir.IfExpr:
		walkExpr(v.Cond, visit)
		walkExpr(v.Then, visit)
		walkExpr(v.Else, visit)
	case *ir.CastExpr:
		walkExpr(v.Value, visit)
	case *ir.Block:
		for _, s := range v.Stmts {
			switch st := s.(type) {
			case *ir.ExprStmt:
				walkExpr(st.Expr, visit)
			case *ir.LetStmt:
				walkExpr(st.Value, visit)
			}
		}
		walkExpr(v.Tail, visit)
	case *ir.ReturnExpr:
		walkExpr(v.Value, visit)
	}
}
