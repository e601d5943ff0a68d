package macro

import (
	"github.com/alumina-lang/aluminac/internal/ast"
	"github.com/alumina-lang/aluminac/internal/diag"
)

// expander rewrites one macro body into a freshly-spanned expansion,
// substituting bound parameters, α-renaming let-declarations, and
// splicing et-cetera positions (spec.md §4.2). One expander instance is
// used per top-level invocation; a recursive MacroInvocation inside the
// body gets its own nested expander sharing the same invocation span,
// per spec.md §4.2 point 6.
type expander struct {
	table *Table
	ctx   *diag.Context
	span  *diag.Span

	bindings map[ast.ID]binding
	renames  map[ast.ID]ast.ID

	// etcID is the id of the enclosing macro's et-cetera parameter, if
	// any; used to detect a bare Local(etcID) outside a splice context.
	etcID    ast.ID
	hasEtc   bool
	etcIndex int // -1 unless currently inside a splice copy
}

// Expand expands one invocation of the macro named by ref against args,
// producing the substituted body expression. args must already have
// ref.BoundArgs prepended by the caller (the resolver that produced
// ref), per spec.md §4.2's "Invocation shape".
func Expand(ctx *diag.Context, table *Table, invocationSpan *diag.Span, ref Ref, args []ast.Expr) ast.Expr {
	item, ok := table.Lookup(ref.Item)
	if !ok {
		ctx.Report(diag.KindNotAMacro, invocationSpan, "invocation target is not a macro")
		return nil
	}

	if table.inProgress[ref.Item] {
		ctx.Report(diag.KindRecursiveMacroCall, invocationSpan, "macro invoked recursively before its cell was populated")
		return nil
	}

	if b, ok := item.(*ast.BuiltinMacroItem); ok {
		return expandBuiltin(ctx, invocationSpan, b, args)
	}

	m, ok := item.(*ast.MacroItem)
	if !ok {
		ctx.Report(diag.KindNotAMacro, invocationSpan, "invocation target is not a macro")
		return nil
	}

	validateParams(ctx, invocationSpan, m.Params)

	bindings := bindArgs(ctx, invocationSpan, m.Params, args)
	if bindings == nil {
		return nil
	}

	ex := &expander{
		table:    table,
		ctx:      ctx,
		span:     invocationSpan,
		bindings: bindings,
		renames:  map[ast.ID]ast.ID{},
		etcIndex: -1,
	}
	if k := etCeteraIndex(m.Params); k >= 0 {
		ex.etcID = m.Params[k].ID
		ex.hasEtc = true
	}

	table.inProgress[ref.Item] = true
	defer delete(table.inProgress, ref.Item)

	return ex.visitExpr(m.Body)
}

// spannable is implemented by every concrete ast node via its embedded
// base struct's SetSpan method.
type spannable interface{ SetSpan(*diag.Span) }

// stampExpr re-stamps a freshly synthesized expression with the
// invocation span, not the body span (spec.md §4.2 point 5).
func (ex *expander) stampExpr(e ast.Expr) ast.Expr {
	if s, ok := e.(spannable); ok {
		s.SetSpan(ex.span)
	}
	return e
}

func (ex *expander) stampType(t ast.Type) ast.Type {
	if s, ok := t.(spannable); ok {
		s.SetSpan(ex.span)
	}
	return t
}

func (ex *expander) stampStmt(s ast.Stmt) ast.Stmt {
	if sp, ok := s.(spannable); ok {
		sp.SetSpan(ex.span)
	}
	return s
}

func (ex *expander) visitExpr(e ast.Expr) ast.Expr {
	if e == nil {
		return nil
	}

	switch n := e.(type) {
	case *ast.Local:
		if b, ok := ex.bindings[n.ID]; ok {
			if b.isEtc {
				if ex.etcIndex < 0 {
					ex.ctx.Report(diag.KindCannotEtCeteraHere, ex.span, "et-cetera parameter referenced outside a splice context")
					return n
				}
				// Argument expressions are caller-scope and already fully
				// resolved; they are spliced in verbatim (spec.md §4.2
				// point 1: "replaced by the bound argument expression
				// verbatim, shared").
				return b.variadic[ex.etcIndex]
			}
			return b.single
		}
		if fresh, ok := ex.renames[n.ID]; ok {
			return ex.stampExpr(&ast.Local{ID: fresh})
		}
		return n

	case *ast.EtCeteraSplice:
		// Splices are only meaningful in list positions; reaching one
		// here means it was not consumed by visitExprList/visitStmtList.
		ex.ctx.Report(diag.KindCannotEtCeteraHere, ex.span, "et-cetera splice outside a list position")
		return nil

	case *ast.Literal:
		return ex.stampExpr(&ast.Literal{Kind: n.Kind, Value: n.Value})

	case *ast.VoidExpr:
		return ex.stampExpr(&ast.VoidExpr{})

	case *ast.Block:
		return ex.stampExpr(&ast.Block{Stmts: ex.visitStmtList(n.Stmts), Tail: ex.visitExpr(n.Tail)})

	case *ast.BinaryOp:
		return ex.stampExpr(&ast.BinaryOp{Op: n.Op, Left: ex.visitExpr(n.Left), Right: ex.visitExpr(n.Right)})

	case *ast.UnaryOp:
		return ex.stampExpr(&ast.UnaryOp{Op: n.Op, Operand: ex.visitExpr(n.Operand)})

	case *ast.Assign:
		return ex.stampExpr(&ast.Assign{Target: ex.visitExpr(n.Target), Value: ex.visitExpr(n.Value)})

	case *ast.AssignOp:
		return ex.stampExpr(&ast.AssignOp{Op: n.Op, Target: ex.visitExpr(n.Target), Value: ex.visitExpr(n.Value)})

	case *ast.Call:
		return ex.stampExpr(&ast.Call{Func: ex.visitExpr(n.Func), Args: ex.visitExprList(n.Args)})

	case *ast.MacroInvocation:
		// Resolution of the nested invocation (inner -> ExprKind::Macro)
		// happens one layer up, in the component that drives expansion
		// (internal/mono, during lowering); here it is just walked like
		// any other expression so substitution reaches into it.
		return ex.stampExpr(&ast.MacroInvocation{Inner: ex.visitExpr(n.Inner), Args: ex.visitExprList(n.Args)})

	case *ast.StaticRef, *ast.ConstRef, *ast.FnRef:
		return n

	case *ast.StructLit:
		fields := make([]ast.FieldInit, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = ast.FieldInit{Name: f.Name, Value: ex.visitExpr(f.Value)}
		}
		return ex.stampExpr(&ast.StructLit{Ty: ex.visitType(n.Ty), Fields: fields})

	case *ast.TupleExpr:
		return ex.stampExpr(&ast.TupleExpr{Elems: ex.visitExprList(n.Elems)})

	case *ast.ArrayExpr:
		return ex.stampExpr(&ast.ArrayExpr{Elems: ex.visitExprList(n.Elems)})

	case *ast.FieldExpr:
		return ex.stampExpr(&ast.FieldExpr{Receiver: ex.visitExpr(n.Receiver), Name: n.Name})

	case *ast.TupleIndexExpr:
		return ex.stampExpr(&ast.TupleIndexExpr{Receiver: ex.visitExpr(n.Receiver), Index: n.Index})

	case *ast.IndexExpr:
		return ex.stampExpr(&ast.IndexExpr{Receiver: ex.visitExpr(n.Receiver), Index: ex.visitExpr(n.Index)})

	case *ast.RangeExpr:
		return ex.stampExpr(&ast.RangeExpr{Lo: ex.visitExpr(n.Lo), Hi: ex.visitExpr(n.Hi), Inclusive: n.Inclusive})

	case *ast.IfExpr:
		return ex.stampExpr(&ast.IfExpr{Cond: ex.visitExpr(n.Cond), Then: ex.visitExpr(n.Then), Else: ex.visitExpr(n.Else), Static: n.Static})

	case *ast.TypeCheckExpr:
		return ex.stampExpr(&ast.TypeCheckExpr{Value: ex.visitExpr(n.Value), Ty: ex.visitType(n.Ty)})

	case *ast.CastExpr:
		return ex.stampExpr(&ast.CastExpr{Value: ex.visitExpr(n.Value), Ty: ex.visitType(n.Ty)})

	case *ast.LoopExpr:
		return ex.stampExpr(&ast.LoopExpr{Label: n.Label, Body: ex.visitExpr(n.Body)})

	case *ast.BreakExpr:
		return ex.stampExpr(&ast.BreakExpr{Label: n.Label, Value: ex.visitExpr(n.Value)})

	case *ast.ContinueExpr:
		return ex.stampExpr(&ast.ContinueExpr{Label: n.Label})

	case *ast.ReturnExpr:
		return ex.stampExpr(&ast.ReturnExpr{Value: ex.visitExpr(n.Value)})

	case *ast.DeferExpr:
		return ex.stampExpr(&ast.DeferExpr{Inner: ex.visitExpr(n.Inner)})

	case *ast.DeferredFunction:
		return ex.stampExpr(&ast.DeferredFunction{Receiver: ex.visitType(n.Receiver), Name: n.Name})

	default:
		return n
	}
}

func (ex *expander) visitExprList(es []ast.Expr) []ast.Expr {
	out := make([]ast.Expr, 0, len(es))
	for _, e := range es {
		splice, ok := e.(*ast.EtCeteraSplice)
		if !ok {
			out = append(out, ex.visitExpr(e))
			continue
		}
		out = append(out, ex.expandSplice(splice)...)
	}
	return out
}

func (ex *expander) visitStmtList(ss []ast.Stmt) []ast.Stmt {
	out := make([]ast.Stmt, 0, len(ss))
	for _, s := range ss {
		if es, ok := s.(*ast.ExprStmt); ok {
			if splice, ok := es.Expr.(*ast.EtCeteraSplice); ok {
				for _, e := range ex.expandSplice(splice) {
					out = append(out, ex.stampStmt(&ast.ExprStmt{Expr: e}))
				}
				continue
			}
		}
		out = append(out, ex.visitStmt(s))
	}
	return out
}

func (ex *expander) expandSplice(splice *ast.EtCeteraSplice) []ast.Expr {
	if !ex.hasEtc {
		ex.ctx.Report(diag.KindCannotEtCeteraHere, ex.span, "no et-cetera parameter is in scope here")
		return nil
	}
	if ex.etcIndex >= 0 {
		ex.ctx.Report(diag.KindEtCeteraInEtCetera, ex.span, "et-cetera splice nested inside another splice")
		return nil
	}
	b := ex.bindings[ex.etcID]
	out := make([]ast.Expr, len(b.variadic))
	for i := range b.variadic {
		ex.etcIndex = i
		out[i] = ex.visitExpr(splice.Inner)
		ex.etcIndex = -1
	}
	return out
}

func (ex *expander) visitStmt(s ast.Stmt) ast.Stmt {
	switch n := s.(type) {
	case *ast.LetStmt:
		// α-renaming: every let-declaration gets a fresh id for this
		// expansion (spec.md §4.2 point 2), recorded so later Local(id)
		// references within the same expansion resolve to it.
		fresh := ex.table.arena.NewID()
		ex.renames[n.ID] = fresh
		return ex.stampStmt(&ast.LetStmt{Name: n.Name, ID: fresh, Ty: ex.visitType(n.Ty), Value: ex.visitExpr(n.Value)})
	case *ast.ExprStmt:
		return ex.stampStmt(&ast.ExprStmt{Expr: ex.visitExpr(n.Expr)})
	default:
		return s
	}
}

func (ex *expander) visitType(t ast.Type) ast.Type {
	if t == nil {
		return nil
	}
	// Types are traversed identically so that types embedding
	// expressions ([T; N], typeof, when) expand too (spec.md §4.2
	// point 3).
	switch n := t.(type) {
	case *ast.PointerType:
		return ex.stampType(&ast.PointerType{Inner: ex.visitType(n.Inner), Mutable: n.Mutable})
	case *ast.SliceType:
		return ex.stampType(&ast.SliceType{Inner: ex.visitType(n.Inner)})
	case *ast.ArrayType:
		return ex.stampType(&ast.ArrayType{Inner: ex.visitType(n.Inner), Len: ex.visitExpr(n.Len)})
	case *ast.TupleType:
		elems := make([]ast.Type, len(n.Elems))
		for i, e := range n.Elems {
			elems[i] = ex.visitType(e)
		}
		return ex.stampType(&ast.TupleType{Elems: elems})
	case *ast.DynType:
		protos := make([]ast.Type, len(n.Protocols))
		for i, p := range n.Protocols {
			protos[i] = ex.visitType(p)
		}
		return ex.stampType(&ast.DynType{Protocols: protos})
	case *ast.TypeOfType:
		return ex.stampType(&ast.TypeOfType{Expr: ex.visitExpr(n.Expr)})
	case *ast.WhenType:
		return ex.stampType(&ast.WhenType{Cond: ex.visitExpr(n.Cond), Then: ex.visitType(n.Then), Else: ex.visitType(n.Else)})
	case *ast.DeferredType:
		return ex.stampType(&ast.DeferredType{Base: ex.visitType(n.Base), AssocName: n.AssocName})
	case *ast.GenericInstType:
		args := make([]ast.Type, len(n.Args))
		for i, a := range n.Args {
			args[i] = ex.visitType(a)
		}
		return ex.stampType(&ast.GenericInstType{Base: ex.visitType(n.Base), Args: args})
	case *ast.NamedRef:
		args := make([]ast.Type, len(n.Args))
		for i, a := range n.Args {
			args[i] = ex.visitType(a)
		}
		return ex.stampType(&ast.NamedRef{Item: n.Item, Args: args})
	default:
		return t
	}
}
