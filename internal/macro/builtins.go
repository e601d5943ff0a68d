package macro

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alumina-lang/aluminac/internal/ast"
	"github.com/alumina-lang/aluminac/internal/diag"
)

// expandBuiltin implements the built-in macro contracts of spec.md
// §4.2's "Built-in macros" table. Each returns a single expression (a
// literal; a nested MacroInvocation for format_args/reduce; a macro
// reference carrying the accumulated bound args for bind);
// all freshly produced nodes are stamped with the invocation span, not
// a definition span, since built-ins have no body of their own.
func expandBuiltin(ctx *diag.Context, span *diag.Span, item *ast.BuiltinMacroItem, args []ast.Expr) ast.Expr {
	switch item.Kind {
	case ast.BuiltinStringify:
		return builtinStringify(ctx, span, args)
	case ast.BuiltinEnv:
		return builtinEnv(ctx, span, args)
	case ast.BuiltinLine:
		return builtinLine(ctx, span, args)
	case ast.BuiltinColumn:
		return builtinColumn(ctx, span, args)
	case ast.BuiltinFile:
		return builtinFile(ctx, span, args)
	case ast.BuiltinIncludeBytes:
		return builtinIncludeBytes(ctx, span, args)
	case ast.BuiltinConcat:
		return builtinConcat(ctx, span, args)
	case ast.BuiltinFormatArgs:
		return builtinFormatArgs(ctx, span, args)
	case ast.BuiltinBind:
		return builtinBind(ctx, span, args)
	case ast.BuiltinReduce:
		return builtinReduce(ctx, span, args)
	default:
		ctx.Report(diag.KindUnknownBuiltinMacro, span, "unknown built-in macro kind %d", item.Kind)
		return nil
	}
}

func stringLit(span *diag.Span, s string) *ast.Literal {
	lit := &ast.Literal{Kind: ast.StringLit, Value: s}
	lit.SetSpan(span)
	return lit
}

func intLit(span *diag.Span, n int64) *ast.Literal {
	lit := &ast.Literal{Kind: ast.IntLit, Value: n}
	lit.SetSpan(span)
	return lit
}

// constString requires a single constant string-literal argument,
// reporting ConstantStringExpected otherwise (spec.md §4.2: env!,
// include_bytes! "constant string").
func constString(ctx *diag.Context, span *diag.Span, e ast.Expr) (string, bool) {
	lit, ok := e.(*ast.Literal)
	if !ok || lit.Kind != ast.StringLit {
		ctx.Report(diag.KindConstantStringExpected, span, "a constant string literal was expected")
		return "", false
	}
	s, ok := lit.Value.(string)
	if !ok {
		ctx.Report(diag.KindConstantStringExpected, span, "a constant string literal was expected")
		return "", false
	}
	return s, true
}

func builtinStringify(ctx *diag.Context, span *diag.Span, args []ast.Expr) ast.Expr {
	if len(args) != 1 {
		ctx.Report(diag.KindParamCountMismatch, span, "stringify! expects exactly 1 argument, got %d", len(args))
		return nil
	}
	return stringLit(span, ast.Dump(args[0]))
}

func builtinEnv(ctx *diag.Context, span *diag.Span, args []ast.Expr) ast.Expr {
	if len(args) != 1 {
		ctx.Report(diag.KindParamCountMismatch, span, "env! expects exactly 1 argument, got %d", len(args))
		return nil
	}
	name, ok := constString(ctx, span, args[0])
	if !ok {
		return nil
	}
	return stringLit(span, os.Getenv(name))
}

func builtinLine(ctx *diag.Context, span *diag.Span, args []ast.Expr) ast.Expr {
	if len(args) != 0 {
		ctx.Report(diag.KindParamCountMismatch, span, "line! takes no arguments")
		return nil
	}
	if span == nil {
		ctx.Report(diag.KindNoSpanInformation, span, "line! requires span information")
		return nil
	}
	return intLit(span, int64(span.Line))
}

func builtinColumn(ctx *diag.Context, span *diag.Span, args []ast.Expr) ast.Expr {
	if len(args) != 0 {
		ctx.Report(diag.KindParamCountMismatch, span, "column! takes no arguments")
		return nil
	}
	if span == nil {
		ctx.Report(diag.KindNoSpanInformation, span, "column! requires span information")
		return nil
	}
	return intLit(span, int64(span.Column))
}

func builtinFile(ctx *diag.Context, span *diag.Span, args []ast.Expr) ast.Expr {
	if len(args) != 0 {
		ctx.Report(diag.KindParamCountMismatch, span, "file! takes no arguments")
		return nil
	}
	if span == nil {
		ctx.Report(diag.KindNoSpanInformation, span, "file! requires span information")
		return nil
	}
	files := ctx.Files()
	if files == nil {
		return stringLit(span, "")
	}
	return stringLit(span, files.Path(span.File))
}

func builtinIncludeBytes(ctx *diag.Context, span *diag.Span, args []ast.Expr) ast.Expr {
	if len(args) != 1 {
		ctx.Report(diag.KindParamCountMismatch, span, "include_bytes! expects exactly 1 argument, got %d", len(args))
		return nil
	}
	path, ok := constString(ctx, span, args[0])
	if !ok {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		ctx.Report(diag.KindCannotReadFile, span, "cannot read %q: %v", path, err)
		return nil
	}
	return stringLit(span, string(data))
}

func builtinConcat(ctx *diag.Context, span *diag.Span, args []ast.Expr) ast.Expr {
	var b strings.Builder
	for _, a := range args {
		s, ok := constString(ctx, span, a)
		if !ok {
			return nil
		}
		b.WriteString(s)
	}
	return stringLit(span, b.String())
}

// builtinFormatArgs implements format_args! (spec.md §4.2): the first
// argument is a macro reference (the wrapper), the second is a constant
// format string with {} / {N} holes, remaining args fill the holes. The
// resulting [string-literal, arg, string-literal, ...] sequence is
// passed to the wrapper via a nested invocation; the wrapper's own
// bound args (if any) are prepended by the invocation resolver, not
// here, so they are not duplicated.
func builtinFormatArgs(ctx *diag.Context, span *diag.Span, args []ast.Expr) ast.Expr {
	if len(args) < 2 {
		ctx.Report(diag.KindParamCountMismatch, span, "format_args! expects at least 2 arguments, got %d", len(args))
		return nil
	}

	wrapperRef, ok := args[0].(*ast.FnRef)
	if !ok {
		ctx.Report(diag.KindMacroExpected, span, "format_args! first argument must be a macro reference")
		return nil
	}

	formatStr, ok := constString(ctx, span, args[1])
	if !ok {
		return nil
	}

	fillArgs := args[2:]
	pieces, err := splitFormatString(formatStr, len(fillArgs))
	if err != nil {
		ctx.ReportData(diag.KindInvalidFormatString, span, map[string]any{
			"suppliedArgCount": len(fillArgs),
		}, "%v", err)
		return nil
	}

	seq := make([]ast.Expr, 0, len(pieces)*2+1)
	autoIndex := 0
	for _, p := range pieces {
		if !p.hasHole {
			seq = append(seq, stringLit(span, p.literal))
			continue
		}
		idx := p.index
		if idx < 0 {
			idx = autoIndex
			autoIndex++
		}
		if idx >= len(fillArgs) {
			ctx.ReportData(diag.KindInvalidFormatString, span, map[string]any{
				"offendingIndex":   idx,
				"suppliedArgCount": len(fillArgs),
			}, "format_args! hole {%d} is out of range for %d supplied argument(s)", idx, len(fillArgs))
			return nil
		}
		seq = append(seq, fillArgs[idx])
	}

	inv := &ast.MacroInvocation{Inner: wrapperRef, Args: seq}
	inv.SetSpan(span)
	return inv
}

// formatPiece is one segment of a parsed format string.
type formatPiece struct {
	literal string
	hasHole bool
	index   int // -1 for an auto-numbered {}
}

// splitFormatString parses a {}/{N}-hole format string into literal and
// hole pieces. It does not check {N} against the supplied argument
// count (its second parameter is unused); builtinFormatArgs reports an
// out-of-range {N} as KindInvalidFormatString, carrying the offending
// index and supplied-arg count.
func splitFormatString(s string, _ int) ([]formatPiece, error) {
	var pieces []formatPiece
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			pieces = append(pieces, formatPiece{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '{':
			if i+1 < len(s) && s[i+1] == '{' {
				lit.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unterminated {} in format string")
			}
			hole := s[i+1 : i+end]
			flush()
			if hole == "" {
				pieces = append(pieces, formatPiece{hasHole: true, index: -1})
			} else {
				n, err := strconv.Atoi(hole)
				if err != nil {
					return nil, fmt.Errorf("invalid format hole {%s}", hole)
				}
				pieces = append(pieces, formatPiece{hasHole: true, index: n})
			}
			i += end
		case '}':
			if i+1 < len(s) && s[i+1] == '}' {
				lit.WriteByte('}')
				i++
				continue
			}
			lit.WriteByte('}')
		default:
			lit.WriteByte(c)
		}
	}
	flush()
	return pieces, nil
}

// builtinBind implements bind! (spec.md §4.2): the first arg is a macro
// reference; the result is a new macro reference whose bound-args are
// the original bound-args concatenated with the remaining call args.
func builtinBind(ctx *diag.Context, span *diag.Span, args []ast.Expr) ast.Expr {
	if len(args) < 1 {
		ctx.Report(diag.KindParamCountMismatch, span, "bind! expects at least 1 argument, got %d", len(args))
		return nil
	}
	ref, ok := args[0].(*ast.FnRef)
	if !ok {
		ctx.Report(diag.KindMacroExpected, span, "bind! first argument must be a macro reference")
		return nil
	}
	bound := make([]ast.Expr, 0, len(ref.BoundArgs)+len(args[1:]))
	bound = append(bound, ref.BoundArgs...)
	bound = append(bound, args[1:]...)
	out := &ast.FnRef{Item: ref.Item, GenericArgs: ref.GenericArgs, BoundArgs: bound}
	out.SetSpan(span)
	return out
}

// builtinReduce implements reduce! (spec.md §4.2): the first arg is a
// binary macro; left-folds it over the remaining args by nested
// MacroInvocation expressions (each fold step re-enters expansion
// once the surrounding lowering resolves the intermediate invocation).
func builtinReduce(ctx *diag.Context, span *diag.Span, args []ast.Expr) ast.Expr {
	if len(args) < 3 {
		ctx.Report(diag.KindParamCountMismatch, span, "reduce! expects a binary macro plus at least 2 values, got %d arguments", len(args))
		return nil
	}
	fn := args[0]
	acc := args[1]
	for _, next := range args[2:] {
		inv := &ast.MacroInvocation{Inner: fn, Args: []ast.Expr{acc, next}}
		inv.SetSpan(span)
		acc = inv
	}
	return acc
}
