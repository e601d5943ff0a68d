// Package pipeline wires the compiler's stages together: a pre-built
// scope of named declarations goes in, rendered C source text comes
// out. It owns none of the logic itself — internal/itemmaker,
// internal/macro, internal/mono, internal/irpass and internal/cemit
// each do — this package only sequences them the way the teacher's
// cmd/ailang/main.go sequenced lex -> parse -> elaborate -> eval,
// generalized here from an interpreter driver to an ahead-of-time one.
// It also hands monomorphization the macro table built over the same
// items, so macro invocations reached during lowering actually expand.
package pipeline

import (
	"github.com/alumina-lang/aluminac/internal/arenaid"
	"github.com/alumina-lang/aluminac/internal/ast"
	"github.com/alumina-lang/aluminac/internal/cemit"
	"github.com/alumina-lang/aluminac/internal/cfgdsl"
	"github.com/alumina-lang/aluminac/internal/diag"
	"github.com/alumina-lang/aluminac/internal/ir"
	"github.com/alumina-lang/aluminac/internal/irpass"
	"github.com/alumina-lang/aluminac/internal/itemmaker"
	"github.com/alumina-lang/aluminac/internal/macro"
	"github.com/alumina-lang/aluminac/internal/mono"
)

// Options configures one compilation run.
type Options struct {
	// Library skips the "no main/test_main found" diagnostic: a
	// library crate has no entry point of its own.
	Library bool
	// Debug disables pretty-printing indentation in the emitted C. No
	// #line directives are written.
	Debug bool
}

// Result is everything a caller (cmd/aluminac, or a test) might want
// out of a compilation: the emitted C text plus bookkeeping useful for
// diagnostics and --timings reporting.
type Result struct {
	C              string
	ItemCount      int
	MonomorphCount int
	LiveCount      int
	DeadCount      int
}

// Compile runs one module's root scope through item making,
// monomorphization, dead-code elimination and C emission. root is
// typically produced by a name-resolution front end external to this
// module (spec.md marks parsing and name resolution out of scope); an
// empty Scope compiles to an empty translation unit, which is the
// honest behavior when no such front end is wired in.
func Compile(root *itemmaker.Scope, flags *cfgdsl.Flags, ctx *diag.Context, files *diag.Files, opts Options) (*Result, error) {
	astArena := &arenaid.Arena[ast.Tag]{}
	maker := itemmaker.NewMaker(astArena, ctx, flags)
	maker.Build(root, true)

	mainID, hasMain := maker.MainCandidate()
	if !hasMain && !opts.Library {
		ctx.Report(diag.KindNoMainFunction, nil, "no main function found")
	}

	m := mono.New(maker.Items(), ctx)
	m.SetMacros(macro.NewTable(astArena, maker.Items()))

	if hasMain {
		m.Instantiate(mainID, nil)
	}
	// Exported items (functions with #[export] or an explicit
	// link_name) are instantiation roots in their own right: a library
	// crate is compiled for its exported surface rather than a main
	// function.
	for id, item := range maker.Items() {
		if exportedItem(item) {
			m.Instantiate(id, nil)
		}
	}

	items := m.Items()
	lookup := func(id ir.ID) ir.ItemShape { return m.ItemByID(id) }

	live, deadCount := irpass.Mark(items)
	live = irpass.InlineTrivially(live)
	plan := irpass.ComputeElisionPlan(live, lookup)

	emitter := cemit.New(plan, lookup, cemit.Options{Debug: opts.Debug, Files: files})
	c := emitter.Emit(live)

	return &Result{
		C:              c,
		ItemCount:      len(maker.Items()),
		MonomorphCount: len(items),
		LiveCount:      len(live),
		DeadCount:      deadCount,
	}, nil
}

func exportedItem(item ast.Item) bool {
	fn, ok := item.(*ast.FunctionItem)
	if !ok {
		return false
	}
	return fn.Exported || fn.LinkName != ""
}
