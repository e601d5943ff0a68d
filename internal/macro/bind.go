package macro

import (
	"github.com/alumina-lang/aluminac/internal/ast"
	"github.com/alumina-lang/aluminac/internal/diag"
)

// binding maps a macro parameter id to its bound value: either a
// single expression, or — for the et-cetera parameter — the full tuple
// of variadic arguments it was bound to.
type binding struct {
	single   ast.Expr
	variadic []ast.Expr
	isEtc    bool
}

// bindArgs implements the argument-binding table of spec.md §4.2: with
// N declared parameters and M call arguments (M already includes any
// bound args prepended by bind!/format_args!), produce a binding per
// parameter id, or report ParamCountMismatch / NotEnoughMacroArguments.
func bindArgs(ctx *diag.Context, span *diag.Span, ps []ast.MacroParam, args []ast.Expr) map[ast.ID]binding {
	n := len(ps)
	m := len(args)
	k := etCeteraIndex(ps)

	out := map[ast.ID]binding{}

	if k < 0 {
		if m != n {
			ctx.Report(diag.KindParamCountMismatch, span, "macro expects %d argument(s), got %d", n, m)
			return nil
		}
		for i, p := range ps {
			out[p.ID] = binding{single: args[i]}
		}
		return out
	}

	if m < n-1 {
		ctx.Report(diag.KindNotEnoughMacroArguments, span, "macro expects at least %d argument(s), got %d", n-1, m)
		return nil
	}

	// Parameters before k bind 1:1.
	for i := 0; i < k; i++ {
		out[ps[i].ID] = binding{single: args[i]}
	}

	// The et-cetera parameter binds the slice [k, k+(M-N+1)).
	vCount := m - n + 1
	variadic := append([]ast.Expr(nil), args[k:k+vCount]...)
	out[ps[k].ID] = binding{variadic: variadic, isEtc: true}

	// Parameters after k bind to the remaining args, shifted.
	for i := k + 1; i < n; i++ {
		out[ps[i].ID] = binding{single: args[k+vCount+(i-k-1)]}
	}

	return out
}
