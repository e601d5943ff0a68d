package mono

import (
	"github.com/alumina-lang/aluminac/internal/ast"
	"github.com/alumina-lang/aluminac/internal/diag"
	"github.com/alumina-lang/aluminac/internal/ir"
)

// exprMeta is satisfied by every *ir.XxxExpr via its embedded exprBase's
// promoted SetExprMeta; stamp lets lowering construct an expression
// node with a plain literal and attach type/category/const/span in one
// step, the same pattern internal/itemmaker uses for ast.Item.
type exprMeta interface {
	SetExprMeta(ir.Type, ir.ValueCategory, bool, *diag.Span)
}

func stamp[T exprMeta](e T, t ir.Type, cat ir.ValueCategory, constExpr bool, span *diag.Span) T {
	e.SetExprMeta(t, cat, constExpr, span)
	return e
}

func (m *Monomorphizer) voidType() ir.Type { return m.interner.Intern(&ir.BuiltinType{Kind: ir.Void}) }
func (m *Monomorphizer) neverType() ir.Type {
	return m.interner.Intern(&ir.BuiltinType{Kind: ir.Never})
}
func (m *Monomorphizer) boolType() ir.Type { return m.interner.Intern(&ir.BuiltinType{Kind: ir.Bool}) }

func (m *Monomorphizer) lowerExpr(e ast.Expr, l *lctx) ir.Expr {
	if e == nil {
		return nil
	}
	switch v := e.(type) {
	case *ast.Literal:
		return m.lowerLiteral(v, l)
	case *ast.VoidExpr:
		return stamp(&ir.Literal{Kind: ir.VoidLit}, m.voidType(), ir.RValue, true, v.Position())
	case *ast.Local:
		return stamp(&ir.Local{ID: v.ID}, l.locals[v.ID], ir.LValue, false, v.Position())
	case *ast.StaticRef:
		id := m.Instantiate(v.Item, nil)
		return stamp(&ir.StaticRef{Item: id}, nil, ir.LValue, false, v.Position())
	case *ast.ConstRef:
		id := m.Instantiate(v.Item, nil)
		return stamp(&ir.ConstRef{Item: id}, nil, ir.RValue, true, v.Position())
	case *ast.FnRef:
		args := make([]ast.Type, len(v.GenericArgs))
		for i, a := range v.GenericArgs {
			args[i] = substType(a, l.subst)
		}
		id := m.Instantiate(v.Item, args)
		return stamp(&ir.FnRef{Item: id}, nil, ir.RValue, true, v.Position())
	case *ast.MacroInvocation:
		return m.lowerExpr(m.expandMacroInvocation(v), l)
	case *ast.Call:
		args := make([]ir.Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = m.lowerExpr(a, l)
		}
		fn := m.lowerExpr(v.Func, l)
		return stamp(&ir.Call{Func: fn, Args: args}, m.callReturnType(fn), ir.RValue, false, v.Position())
	case *ast.BinaryOp:
		left, right := m.lowerExpr(v.Left, l), m.lowerExpr(v.Right, l)
		return stamp(&ir.BinaryOp{Op: v.Op, Left: left, Right: right}, left.Ty(), ir.RValue, left.IsConst() && right.IsConst(), v.Position())
	case *ast.UnaryOp:
		operand := m.lowerExpr(v.Operand, l)
		return stamp(&ir.UnaryOp{Op: v.Op, Operand: operand}, operand.Ty(), ir.RValue, operand.IsConst(), v.Position())
	case *ast.Assign:
		target, value := m.lowerExpr(v.Target, l), m.lowerExpr(v.Value, l)
		return stamp(&ir.Assign{Target: target, Value: value}, target.Ty(), ir.RValue, false, v.Position())
	case *ast.AssignOp:
		target, value := m.lowerExpr(v.Target, l), m.lowerExpr(v.Value, l)
		return stamp(&ir.AssignOp{Op: v.Op, Target: target, Value: value}, target.Ty(), ir.RValue, false, v.Position())
	case *ast.StructLit:
		ty := m.lowerType(v.Ty, l)
		fields := make([]ir.FieldInit, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = ir.FieldInit{Name: f.Name, Value: m.lowerExpr(f.Value, l)}
		}
		return stamp(&ir.StructLit{Fields: fields}, ty, ir.RValue, false, v.Position())
	case *ast.TupleExpr:
		elems := make([]ir.Expr, len(v.Elems))
		types := make([]ir.Type, len(v.Elems))
		for i, el := range v.Elems {
			elems[i] = m.lowerExpr(el, l)
			types[i] = elems[i].Ty()
		}
		return stamp(&ir.TupleExpr{Elems: elems}, m.interner.Intern(&ir.TupleType{Elems: types}), ir.RValue, false, v.Position())
	case *ast.ArrayExpr:
		elems := make([]ir.Expr, len(v.Elems))
		var elemTy ir.Type
		for i, el := range v.Elems {
			elems[i] = m.lowerExpr(el, l)
			elemTy = elems[i].Ty()
		}
		return stamp(&ir.ArrayExpr{Elems: elems}, m.interner.Intern(&ir.ArrayType{Inner: elemTy, Len: uint64(len(elems))}), ir.RValue, false, v.Position())
	case *ast.FieldExpr:
		recv := m.lowerExpr(v.Receiver, l)
		return stamp(&ir.FieldExpr{Receiver: recv, Name: v.Name}, nil, recv.ValueCategory(), false, v.Position())
	case *ast.TupleIndexExpr:
		recv := m.lowerExpr(v.Receiver, l)
		var ty ir.Type
		if tt, ok := recv.Ty().(*ir.TupleType); ok && v.Index < len(tt.Elems) {
			ty = tt.Elems[v.Index]
		}
		return stamp(&ir.TupleIndexExpr{Receiver: recv, Index: v.Index}, ty, recv.ValueCategory(), false, v.Position())
	case *ast.IndexExpr:
		recv := m.lowerExpr(v.Receiver, l)
		idx := m.lowerExpr(v.Index, l)
		var ty ir.Type
		switch rt := recv.Ty().(type) {
		case *ir.ArrayType:
			ty = rt.Inner
		case *ir.PointerType:
			ty = rt.Inner
		}
		return stamp(&ir.IndexExpr{Receiver: recv, Index: idx}, ty, ir.LValue, false, v.Position())
	case *ast.RangeExpr:
		// Ranges have no IR type of their own (spec.md §3.5 lists none);
		// lowered to a plain (lo, hi) tuple since every consumer
		// destructures a range in an already-desugared for-loop.
		// Recorded as an Open Question decision in DESIGN.md.
		lo, hi := m.lowerExpr(v.Lo, l), m.lowerExpr(v.Hi, l)
		return stamp(&ir.TupleExpr{Elems: []ir.Expr{lo, hi}}, m.interner.Intern(&ir.TupleType{Elems: []ir.Type{lo.Ty(), hi.Ty()}}), ir.RValue, false, v.Position())
	case *ast.IfExpr:
		if v.Static {
			if cond, ok := constEvalBool(v.Cond); ok {
				if cond {
					return m.lowerExpr(v.Then, l)
				}
				return m.lowerExpr(v.Else, l)
			}
			m.ctx.Report(diag.KindTypeHintRequired, v.Position(), "static if condition is not a resolvable constant")
		}
		cond, then, els := m.lowerExpr(v.Cond, l), m.lowerExpr(v.Then, l), m.lowerExpr(v.Else, l)
		var ty ir.Type
		if then != nil {
			ty = then.Ty()
		}
		return stamp(&ir.IfExpr{Cond: cond, Then: then, Else: els}, ty, ir.RValue, false, v.Position())
	case *ast.TypeCheckExpr:
		value := m.lowerExpr(v.Value, l)
		target := m.lowerType(v.Ty, l)
		matches := value.Ty() != nil && target != nil && value.Ty().InternKey() == target.InternKey()
		return stamp(&ir.Literal{Kind: ir.BoolLit, Value: matches}, m.boolType(), ir.RValue, true, v.Position())
	case *ast.CastExpr:
		value := m.lowerExpr(v.Value, l)
		ty := m.lowerType(v.Ty, l)
		return stamp(&ir.CastExpr{Value: value}, ty, ir.RValue, value.IsConst(), v.Position())
	case *ast.LoopExpr:
		return m.lowerLoop(v, l)
	case *ast.BreakExpr:
		if len(l.loops) == 0 {
			m.ctx.Report(diag.KindTypeHintRequired, v.Position(), "break outside a loop")
			return stamp(&ir.Unreachable{}, m.neverType(), ir.RValue, false, v.Position())
		}
		top := l.loops[len(l.loops)-1]
		return stamp(&ir.Goto{Target: top.end, Value: m.lowerExpr(v.Value, l)}, m.voidType(), ir.RValue, false, v.Position())
	case *ast.ContinueExpr:
		if len(l.loops) == 0 {
			m.ctx.Report(diag.KindTypeHintRequired, v.Position(), "continue outside a loop")
			return stamp(&ir.Unreachable{}, m.neverType(), ir.RValue, false, v.Position())
		}
		top := l.loops[len(l.loops)-1]
		return stamp(&ir.Goto{Target: top.start}, m.voidType(), ir.RValue, false, v.Position())
	case *ast.ReturnExpr:
		return stamp(&ir.ReturnExpr{Value: m.lowerExpr(v.Value, l)}, m.neverType(), ir.RValue, false, v.Position())
	case *ast.DeferExpr:
		// Full defer semantics require threading the deferred call to
		// every exit point of the enclosing function; this sketched
		// monomorphizer only marks the site (DESIGN.md Open Questions)
		// rather than performing that restructuring.
		label := l.freshLabel("defer")
		inner := m.lowerExpr(v.Inner, l)
		return stamp(&ir.Block{
			Stmts: []ir.Stmt{&ir.ExprStmt{Expr: stamp(&ir.Label{Name: label}, m.voidType(), ir.RValue, false, v.Position())}},
			Tail:  inner,
		}, m.voidType(), ir.RValue, false, v.Position())
	case *ast.DeferredFunction:
		return m.lowerDeferredFunction(v, l)
	case *ast.Block:
		return m.lowerBlock(v, l)
	default:
		m.ctx.Report(diag.KindTypeHintRequired, e.Position(), "unhandled AST expression %T", e)
		return stamp(&ir.Literal{Kind: ir.VoidLit}, m.voidType(), ir.RValue, false, e.Position())
	}
}

func (m *Monomorphizer) lowerLiteral(v *ast.Literal, l *lctx) ir.Expr {
	var ty ir.Type
	switch v.Kind {
	case ast.IntLit:
		ty = m.interner.Intern(&ir.BuiltinType{Kind: ir.I32})
	case ast.FloatLit:
		ty = m.interner.Intern(&ir.BuiltinType{Kind: ir.F64})
	case ast.BoolLit:
		ty = m.boolType()
	case ast.StringLit:
		ty = m.interner.Intern(&ir.PointerType{Inner: m.interner.Intern(&ir.BuiltinType{Kind: ir.U8})})
	case ast.VoidLit:
		ty = m.voidType()
	}
	return stamp(&ir.Literal{Kind: ir.LitKind(v.Kind), Value: v.Value}, ty, ir.RValue, true, v.Position())
}

func (m *Monomorphizer) lowerLoop(v *ast.LoopExpr, l *lctx) ir.Expr {
	start, end := l.freshLabel("loop_start"), l.freshLabel("loop_end")
	l.loops = append(l.loops, loopLabels{start: start, end: end})
	body := m.lowerExpr(v.Body, l)
	l.loops = l.loops[:len(l.loops)-1]

	return stamp(&ir.Block{
		Stmts: []ir.Stmt{
			&ir.ExprStmt{Expr: stamp(&ir.Label{Name: start}, m.voidType(), ir.RValue, false, v.Position())},
			&ir.ExprStmt{Expr: body},
			&ir.ExprStmt{Expr: stamp(&ir.Goto{Target: start}, m.voidType(), ir.RValue, false, v.Position())},
			&ir.ExprStmt{Expr: stamp(&ir.Label{Name: end}, m.voidType(), ir.RValue, false, v.Position())},
		},
	}, m.voidType(), ir.RValue, false, v.Position())
}

func (m *Monomorphizer) lowerBlock(v *ast.Block, l *lctx) ir.Expr {
	stmts := make([]ir.Stmt, len(v.Stmts))
	for i, s := range v.Stmts {
		stmts[i] = m.lowerStmt(s, l)
	}
	tail := m.lowerExpr(v.Tail, l)
	ty := m.voidType()
	if tail != nil {
		ty = tail.Ty()
	}
	return stamp(&ir.Block{Stmts: stmts, Tail: tail}, ty, ir.RValue, false, v.Position())
}

func (m *Monomorphizer) lowerStmt(s ast.Stmt, l *lctx) ir.Stmt {
	switch v := s.(type) {
	case *ast.LetStmt:
		var ty ir.Type
		if v.Ty != nil {
			ty = m.lowerType(v.Ty, l)
		}
		value := m.lowerExpr(v.Value, l)
		if ty == nil && value != nil {
			ty = value.Ty()
		}
		l.locals[v.ID] = ty
		return &ir.LetStmt{Name: v.Name, ID: v.ID, Ty: ty, Value: value}
	case *ast.ExprStmt:
		return &ir.ExprStmt{Expr: m.lowerExpr(v.Expr, l)}
	default:
		m.ctx.Report(diag.KindTypeHintRequired, s.Position(), "unhandled AST statement %T", s)
		return &ir.ExprStmt{}
	}
}

// lowerDeferredFunction resolves `Type::method` references against the
// receiver type's own associated functions (protocol mixins in this
// data model carry signatures only, never default bodies, so dispatch
// never needs to fall through to a mixin — spec.md §3.3 describes
// protocols as signature-only).
func (m *Monomorphizer) lowerDeferredFunction(v *ast.DeferredFunction, l *lctx) ir.Expr {
	receiver := substType(v.Receiver, l.subst)
	ref, ok := receiver.(*ast.NamedRef)
	if !ok {
		m.ctx.Report(diag.KindTypeHintRequired, v.Position(), "cannot resolve %s:: on a non-named receiver", v.Name)
		return stamp(&ir.Literal{Kind: ir.VoidLit}, m.voidType(), ir.RValue, false, v.Position())
	}
	fnItem, ok := m.assocFn(ref.Item, v.Name)
	if !ok {
		m.ctx.Report(diag.KindTypeHintRequired, v.Position(), "no associated function %q", v.Name)
		return stamp(&ir.Literal{Kind: ir.VoidLit}, m.voidType(), ir.RValue, false, v.Position())
	}
	id := m.Instantiate(fnItem, nil)
	return stamp(&ir.FnRef{Item: id}, nil, ir.RValue, true, v.Position())
}

func (m *Monomorphizer) assocFn(itemID ast.ID, name string) (ast.ID, bool) {
	item, ok := m.astItems[itemID]
	if !ok {
		return ast.ID{}, false
	}
	switch v := item.(type) {
	case *ast.StructLikeItem:
		id, ok := v.AssocFns[name]
		return id, ok
	case *ast.EnumItem:
		id, ok := v.AssocFns[name]
		return id, ok
	}
	return ast.ID{}, false
}

// callReturnType looks through a lowered Func expression to find its
// call's return type, when statically known.
func (m *Monomorphizer) callReturnType(fn ir.Expr) ir.Type {
	ref, ok := fn.(*ir.FnRef)
	if !ok {
		return nil
	}
	shape := m.ItemByID(ref.Item)
	fnItem, ok := shape.(*ir.FunctionItem)
	if !ok || fnItem == nil {
		return nil
	}
	return fnItem.ReturnType
}
