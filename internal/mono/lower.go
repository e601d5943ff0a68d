package mono

import (
	"fmt"

	"github.com/alumina-lang/aluminac/internal/ast"
	"github.com/alumina-lang/aluminac/internal/diag"
	"github.com/alumina-lang/aluminac/internal/ir"
)

// lctx threads per-instantiation state through type/expr lowering: the
// placeholder substitution, the local-id -> IR-type environment (locals
// aren't resolved by name at this stage, only by id), and the
// currently-enclosing loop's labels for break/continue lowering.
type lctx struct {
	subst  subst
	locals map[ast.ID]ir.Type
	loops  []loopLabels
	labelN int
}

type loopLabels struct {
	start, end string
}

func (m *Monomorphizer) newLctx(s subst) *lctx {
	return &lctx{subst: s, locals: map[ast.ID]ir.Type{}}
}

func (l *lctx) freshLabel(prefix string) string {
	l.labelN++
	return fmt.Sprintf("%s_%d", prefix, l.labelN)
}

// --- Type lowering ----------------------------------------------------

// substType recursively replaces placeholder occurrences in t with their
// concrete AST types from s, producing a placeholder-free AST type tree
// ready for lowerConcreteType.
func substType(t ast.Type, s subst) ast.Type {
	if t == nil {
		return nil
	}
	switch v := t.(type) {
	case *ast.PlaceholderType:
		if c, ok := s[v.Placeholder]; ok {
			return c
		}
		return v
	case *ast.NamedRef:
		args := make([]ast.Type, len(v.Args))
		for i, a := range v.Args {
			args[i] = substType(a, s)
		}
		return &ast.NamedRef{Item: v.Item, Args: args}
	case *ast.PointerType:
		return &ast.PointerType{Inner: substType(v.Inner, s), Mutable: v.Mutable}
	case *ast.SliceType:
		return &ast.SliceType{Inner: substType(v.Inner, s)}
	case *ast.ArrayType:
		return &ast.ArrayType{Inner: substType(v.Inner, s), Len: v.Len}
	case *ast.TupleType:
		elems := make([]ast.Type, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = substType(e, s)
		}
		return &ast.TupleType{Elems: elems}
	case *ast.DynType:
		protos := make([]ast.Type, len(v.Protocols))
		for i, p := range v.Protocols {
			protos[i] = substType(p, s)
		}
		return &ast.DynType{Protocols: protos}
	case *ast.FnPointerType:
		params := make([]ast.Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = substType(p, s)
		}
		return &ast.FnPointerType{Params: params, Ret: substType(v.Ret, s)}
	case *ast.FnProtocolType:
		params := make([]ast.Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = substType(p, s)
		}
		return &ast.FnProtocolType{Params: params, Ret: substType(v.Ret, s)}
	default:
		// BuiltinType and the compile-time-resolved variants (TypeOf,
		// When, Deferred, GenericInst) have no placeholder-bearing
		// children this package substitutes structurally;
		// lowerConcreteType reports the compile-time-resolved ones and
		// lowers them to void.
		return t
	}
}

// lowerType substitutes then lowers t to its IR representation, interning
// the result so structurally-equal instances share an address (spec.md
// §3.1).
func (m *Monomorphizer) lowerType(t ast.Type, l *lctx) ir.Type {
	return m.lowerConcreteType(substType(t, l.subst))
}

func (m *Monomorphizer) lowerConcreteType(t ast.Type) ir.Type {
	if t == nil {
		return m.interner.Intern(&ir.BuiltinType{Kind: ir.Void})
	}
	switch v := t.(type) {
	case *ast.BuiltinType:
		return m.interner.Intern(&ir.BuiltinType{Kind: ir.BuiltinKind(v.Kind)})
	case *ast.NamedRef:
		id := m.Instantiate(v.Item, v.Args)
		return m.interner.Intern(&ir.ItemType{Item: id})
	case *ast.PointerType:
		return m.interner.Intern(&ir.PointerType{Inner: m.lowerConcreteType(v.Inner), Mutable: v.Mutable})
	case *ast.SliceType:
		// Lowered to a (data pointer, length) fat-pointer pair: the IR
		// type set has no slice of its own (spec.md §3.5 lists only
		// pointer/array/tuple/fn-pointer/item/builtin), and this is the
		// representation the C emitter can lay out directly as a
		// two-field struct-shaped tuple. Recorded as an Open Question
		// decision in DESIGN.md.
		return m.interner.Intern(&ir.TupleType{Elems: []ir.Type{
			m.interner.Intern(&ir.PointerType{Inner: m.lowerConcreteType(v.Inner), Mutable: false}),
			m.interner.Intern(&ir.BuiltinType{Kind: ir.USize}),
		}})
	case *ast.ArrayType:
		n, ok := constEvalArrayLen(v.Len)
		if !ok {
			m.ctx.Report(diag.KindTypeHintRequired, v.Position(), "array length is not a resolvable constant")
		}
		return m.interner.Intern(&ir.ArrayType{Inner: m.lowerConcreteType(v.Inner), Len: n})
	case *ast.TupleType:
		elems := make([]ir.Type, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = m.lowerConcreteType(e)
		}
		return m.interner.Intern(&ir.TupleType{Elems: elems})
	case *ast.DynType:
		// Fat pointer: (data pointer, vtable pointer). Same rationale as
		// SliceType above.
		voidPtr := m.interner.Intern(&ir.PointerType{Inner: m.interner.Intern(&ir.BuiltinType{Kind: ir.Void})})
		return m.interner.Intern(&ir.TupleType{Elems: []ir.Type{voidPtr, voidPtr}})
	case *ast.FnPointerType, *ast.FnProtocolType:
		params, ret := fnShapeOf(v)
		lowered := make([]ir.Type, len(params))
		for i, p := range params {
			lowered[i] = m.lowerConcreteType(p)
		}
		return m.interner.Intern(&ir.FnPointerType{Params: lowered, Ret: m.lowerConcreteType(ret)})
	case *ast.TypeOfType, *ast.WhenType, *ast.DeferredType, *ast.GenericInstType:
		// Resolving typeof/when/associated-type lookups requires type
		// inference machinery this sketched monomorphizer does not
		// implement (DESIGN.md Open Questions); report and fall back to
		// void rather than crash the pipeline.
		m.ctx.Report(diag.KindTypeHintRequired, t.Position(), "cannot resolve %T at monomorphization time", t)
		return m.interner.Intern(&ir.BuiltinType{Kind: ir.Void})
	default:
		m.ctx.Report(diag.KindTypeHintRequired, t.Position(), "unhandled AST type %T", t)
		return m.interner.Intern(&ir.BuiltinType{Kind: ir.Void})
	}
}

func fnShapeOf(t ast.Type) (params []ast.Type, ret ast.Type) {
	switch v := t.(type) {
	case *ast.FnPointerType:
		return v.Params, v.Ret
	case *ast.FnProtocolType:
		return v.Params, v.Ret
	}
	return nil, nil
}

// constEvalArrayLen folds the small subset of constant expressions array
// lengths are typically written with (integer literals); anything fancier
// needs the const evaluator this sketched package does not include.
func constEvalArrayLen(e ast.Expr) (uint64, bool) {
	lit, ok := e.(*ast.Literal)
	if !ok || lit.Kind != ast.IntLit {
		return 0, false
	}
	switch n := lit.Value.(type) {
	case int64:
		return uint64(n), true
	case uint64:
		return n, true
	case int:
		return uint64(n), true
	}
	return 0, false
}

// constEvalBool folds the small subset of constant boolean expressions
// `static if` conditions are typically written with.
func constEvalBool(e ast.Expr) (bool, bool) {
	switch v := e.(type) {
	case *ast.Literal:
		if v.Kind == ast.BoolLit {
			b, ok := v.Value.(bool)
			return b, ok
		}
	case *ast.UnaryOp:
		if v.Op == "!" {
			inner, ok := constEvalBool(v.Operand)
			return !inner, ok
		}
	}
	return false, false
}
