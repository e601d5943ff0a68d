package mono

import (
	"github.com/alumina-lang/aluminac/internal/ast"
	"github.com/alumina-lang/aluminac/internal/diag"
	"github.com/alumina-lang/aluminac/internal/macro"
)

// expandMacroInvocation resolves v's callee to a macro.Ref (recursing
// through any nested invocation that itself yields one, e.g. bind!'s
// result used directly as the invoked macro of an outer call) and
// expands it. The result is handed back to lowerExpr rather than
// lowered here, since expansion can itself produce another
// MacroInvocation (reduce!'s chained fold steps, format_args!'s
// wrapper call) that needs the same treatment.
func (m *Monomorphizer) expandMacroInvocation(v *ast.MacroInvocation) ast.Expr {
	if m.macros == nil {
		m.ctx.Report(diag.KindTypeHintRequired, v.Position(), "macro invocation encountered with no macro table attached")
		return voidAt(v.Position())
	}
	ref, ok := m.resolveMacroRef(v.Inner)
	if !ok {
		m.ctx.Report(diag.KindMacroExpected, v.Position(), "macro invocation callee does not resolve to a macro reference")
		return voidAt(v.Position())
	}
	args := make([]ast.Expr, 0, len(ref.BoundArgs)+len(v.Args))
	args = append(args, ref.BoundArgs...)
	args = append(args, v.Args...)
	return macro.Expand(m.ctx, m.macros, v.Position(), ref, args)
}

// resolveMacroRef reduces e to a macro.Ref: either a direct reference
// to a macro item (an *ast.FnRef naming it, carrying any bound args
// left over from a prior bind!/format_args! partial application), or a
// nested macro invocation, expanded until it yields one.
func (m *Monomorphizer) resolveMacroRef(e ast.Expr) (macro.Ref, bool) {
	switch v := e.(type) {
	case *ast.MacroInvocation:
		return m.resolveMacroRef(m.expandMacroInvocation(v))
	case *ast.FnRef:
		if _, ok := m.macros.Lookup(v.Item); !ok {
			return macro.Ref{}, false
		}
		return macro.Ref{Item: v.Item, BoundArgs: v.BoundArgs}, true
	default:
		return macro.Ref{}, false
	}
}

func voidAt(span *diag.Span) ast.Expr {
	v := &ast.VoidExpr{}
	v.SetSpan(span)
	return v
}
