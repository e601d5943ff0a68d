package macro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alumina-lang/aluminac/internal/arenaid"
	"github.com/alumina-lang/aluminac/internal/ast"
	"github.com/alumina-lang/aluminac/internal/diag"
)

func newCtx() *diag.Context {
	files := diag.NewFiles()
	files.Register("test://unit")
	return diag.NewContext(files)
}

func intArg(n int64) ast.Expr { return &ast.Literal{Kind: ast.IntLit, Value: n} }

func TestBindArgsNoEtCetera(t *testing.T) {
	ctx := newCtx()
	arena := &arenaid.Arena[ast.Tag]{}
	p0 := arena.NewID()
	p1 := arena.NewID()

	out := bindArgs(ctx, nil, []ast.MacroParam{{ID: p0}, {ID: p1}}, []ast.Expr{intArg(1), intArg(2)})
	require.False(t, ctx.HasErrors())
	require.Len(t, out, 2)
	assert.Equal(t, intArg(1), out[p0].single)
	assert.Equal(t, intArg(2), out[p1].single)
}

func TestBindArgsCountMismatchNoEtCetera(t *testing.T) {
	ctx := newCtx()
	arena := &arenaid.Arena[ast.Tag]{}
	p0 := arena.NewID()

	out := bindArgs(ctx, nil, []ast.MacroParam{{ID: p0}}, []ast.Expr{intArg(1), intArg(2)})
	assert.Nil(t, out)
	require.Len(t, ctx.All(), 1)
	assert.Equal(t, diag.KindParamCountMismatch, ctx.All()[0].Kind)
}

func TestBindArgsEtCeteraBindsTuple(t *testing.T) {
	ctx := newCtx()
	arena := &arenaid.Arena[ast.Tag]{}
	p0 := arena.NewID()
	pEtc := arena.NewID()
	p2 := arena.NewID()

	params := []ast.MacroParam{{ID: p0}, {ID: pEtc, EtCetera: true}, {ID: p2}}
	args := []ast.Expr{intArg(1), intArg(2), intArg(3), intArg(4), intArg(5)}

	out := bindArgs(ctx, nil, params, args)
	require.False(t, ctx.HasErrors())
	assert.Equal(t, intArg(1), out[p0].single)
	assert.True(t, out[pEtc].isEtc)
	assert.Equal(t, []ast.Expr{intArg(2), intArg(3), intArg(4)}, out[pEtc].variadic)
	assert.Equal(t, intArg(5), out[p2].single)
}

func TestBindArgsNotEnoughForEtCetera(t *testing.T) {
	ctx := newCtx()
	arena := &arenaid.Arena[ast.Tag]{}
	p0 := arena.NewID()
	pEtc := arena.NewID()
	p2 := arena.NewID()

	params := []ast.MacroParam{{ID: p0}, {ID: pEtc, EtCetera: true}, {ID: p2}}
	out := bindArgs(ctx, nil, params, []ast.Expr{intArg(1)})
	assert.Nil(t, out)
	require.Len(t, ctx.All(), 1)
	assert.Equal(t, diag.KindNotEnoughMacroArguments, ctx.All()[0].Kind)
}

func TestValidateParamsRejectsTwoEtCeteras(t *testing.T) {
	ctx := newCtx()
	arena := &arenaid.Arena[ast.Tag]{}
	p0 := arena.NewID()
	p1 := arena.NewID()

	validateParams(ctx, nil, []ast.MacroParam{{ID: p0, EtCetera: true}, {ID: p1, EtCetera: true}})
	require.Len(t, ctx.All(), 1)
	assert.Equal(t, diag.KindMultipleEtCeteras, ctx.All()[0].Kind)
}

func TestExpandSubstitutesParametersAndRenamesLets(t *testing.T) {
	ctx := newCtx()
	arena := &arenaid.Arena[ast.Tag]{}

	macroItemID := arena.NewID()
	paramID := arena.NewID()
	letID := arena.NewID()

	body := &ast.Block{
		Stmts: []ast.Stmt{
			&ast.LetStmt{Name: "tmp", ID: letID, Value: &ast.Local{ID: paramID}},
		},
		Tail: &ast.Local{ID: letID},
	}

	m := &ast.MacroItem{
		Name:   "identity",
		Params: []ast.MacroParam{{ID: paramID, Name: "x"}},
		Body:   body,
	}

	items := map[ast.ID]ast.Item{macroItemID: m}
	m.ID = macroItemID

	table := NewTable(arena, items)
	span := &diag.Span{Line: 7, Column: 3}

	result := Expand(ctx, table, span, Ref{Item: macroItemID}, []ast.Expr{intArg(99)})
	require.False(t, ctx.HasErrors())

	block, ok := result.(*ast.Block)
	require.True(t, ok)
	require.Len(t, block.Stmts, 1)

	let, ok := block.Stmts[0].(*ast.LetStmt)
	require.True(t, ok)
	assert.NotEqual(t, letID, let.ID, "let id must be freshly minted (hygiene)")

	tailLocal, ok := block.Tail.(*ast.Local)
	require.True(t, ok)
	assert.Equal(t, let.ID, tailLocal.ID, "tail reference must follow the renamed id")

	assert.Equal(t, span, block.Position(), "expansion output must be stamped with the invocation span")
}

func TestExpandTwiceProducesIndependentHygiene(t *testing.T) {
	ctx := newCtx()
	arena := &arenaid.Arena[ast.Tag]{}

	macroItemID := arena.NewID()
	letID := arena.NewID()

	body := &ast.Block{
		Stmts: []ast.Stmt{&ast.LetStmt{Name: "tmp", ID: letID, Value: intArg(1)}},
		Tail:  &ast.Local{ID: letID},
	}
	m := &ast.MacroItem{Name: "make_tmp", Body: body}
	items := map[ast.ID]ast.Item{macroItemID: m}

	table := NewTable(arena, items)
	span := &diag.Span{}

	r1 := Expand(ctx, table, span, Ref{Item: macroItemID}, nil).(*ast.Block)
	r2 := Expand(ctx, table, span, Ref{Item: macroItemID}, nil).(*ast.Block)

	id1 := r1.Stmts[0].(*ast.LetStmt).ID
	id2 := r2.Stmts[0].(*ast.LetStmt).ID
	assert.NotEqual(t, id1, id2, "each expansion must mint its own fresh id")
}

func TestEtCeteraSpliceExpandsToNCopies(t *testing.T) {
	ctx := newCtx()
	arena := &arenaid.Arena[ast.Tag]{}

	macroItemID := arena.NewID()
	etcID := arena.NewID()

	body := &ast.Call{
		Func: &ast.FnRef{},
		Args: []ast.Expr{&ast.EtCeteraSplice{Inner: &ast.Local{ID: etcID}}},
	}
	m := &ast.MacroItem{Params: []ast.MacroParam{{ID: etcID, EtCetera: true}}, Body: body}
	items := map[ast.ID]ast.Item{macroItemID: m}

	table := NewTable(arena, items)
	span := &diag.Span{}

	result := Expand(ctx, table, span, Ref{Item: macroItemID}, []ast.Expr{intArg(1), intArg(2), intArg(3)})
	require.False(t, ctx.HasErrors())

	call := result.(*ast.Call)
	assert.Equal(t, []ast.Expr{intArg(1), intArg(2), intArg(3)}, call.Args)
}

func TestEtCeteraOutsideSpliceIsError(t *testing.T) {
	ctx := newCtx()
	arena := &arenaid.Arena[ast.Tag]{}

	macroItemID := arena.NewID()
	etcID := arena.NewID()

	body := &ast.Local{ID: etcID}
	m := &ast.MacroItem{Params: []ast.MacroParam{{ID: etcID, EtCetera: true}}, Body: body}
	items := map[ast.ID]ast.Item{macroItemID: m}

	table := NewTable(arena, items)
	Expand(ctx, table, &diag.Span{}, Ref{Item: macroItemID}, []ast.Expr{intArg(1)})

	require.NotEmpty(t, ctx.All())
	assert.Equal(t, diag.KindCannotEtCeteraHere, ctx.All()[0].Kind)
}

func TestRecursiveMacroCallDetected(t *testing.T) {
	ctx := newCtx()
	arena := &arenaid.Arena[ast.Tag]{}
	macroItemID := arena.NewID()

	m := &ast.MacroItem{Body: &ast.VoidExpr{}}
	items := map[ast.ID]ast.Item{macroItemID: m}
	table := NewTable(arena, items)
	table.inProgress[macroItemID] = true

	result := Expand(ctx, table, &diag.Span{}, Ref{Item: macroItemID}, nil)
	assert.Nil(t, result)
	require.NotEmpty(t, ctx.All())
	assert.Equal(t, diag.KindRecursiveMacroCall, ctx.All()[0].Kind)
}

func TestBuiltinConcatRequiresConstantStrings(t *testing.T) {
	ctx := newCtx()
	result := builtinConcat(ctx, &diag.Span{}, []ast.Expr{
		&ast.Literal{Kind: ast.StringLit, Value: "a"},
		&ast.Literal{Kind: ast.StringLit, Value: "b"},
	})
	lit := result.(*ast.Literal)
	assert.Equal(t, "ab", lit.Value)

	ctx2 := newCtx()
	bad := builtinConcat(ctx2, &diag.Span{}, []ast.Expr{intArg(1)})
	assert.Nil(t, bad)
	assert.Equal(t, diag.KindConstantStringExpected, ctx2.All()[0].Kind)
}

func TestBuiltinLineAndColumnRequireSpan(t *testing.T) {
	ctx := newCtx()
	span := &diag.Span{Line: 5, Column: 9}
	line := builtinLine(ctx, span, nil).(*ast.Literal)
	col := builtinColumn(ctx, span, nil).(*ast.Literal)
	assert.Equal(t, int64(5), line.Value)
	assert.Equal(t, int64(9), col.Value)

	ctx2 := newCtx()
	assert.Nil(t, builtinLine(ctx2, nil, nil))
	assert.Equal(t, diag.KindNoSpanInformation, ctx2.All()[0].Kind)
}

func TestBuiltinReduceLeftFolds(t *testing.T) {
	ctx := newCtx()
	fn := &ast.FnRef{}
	result := builtinReduce(ctx, &diag.Span{}, []ast.Expr{fn, intArg(1), intArg(2), intArg(3)})
	require.False(t, ctx.HasErrors())

	outer, ok := result.(*ast.MacroInvocation)
	require.True(t, ok)
	assert.Same(t, fn, outer.Inner)
	inner, ok := outer.Args[0].(*ast.MacroInvocation)
	require.True(t, ok)
	assert.Same(t, fn, inner.Inner)
	assert.Equal(t, intArg(1), inner.Args[0])
	assert.Equal(t, intArg(2), inner.Args[1])
	assert.Equal(t, intArg(3), outer.Args[1])
}

func TestBuiltinBindConcatenatesBoundArgs(t *testing.T) {
	ctx := newCtx()
	ref := &ast.FnRef{Item: ast.ID{}, BoundArgs: []ast.Expr{intArg(1)}}
	result := builtinBind(ctx, &diag.Span{}, []ast.Expr{ref, intArg(2), intArg(3)})
	require.False(t, ctx.HasErrors())

	out, ok := result.(*ast.FnRef)
	require.True(t, ok)
	assert.Equal(t, []ast.Expr{intArg(1), intArg(2), intArg(3)}, out.BoundArgs)
}

func TestBuiltinBindRejectsNonMacroReference(t *testing.T) {
	ctx := newCtx()
	result := builtinBind(ctx, &diag.Span{}, []ast.Expr{intArg(1)})
	assert.Nil(t, result)
	require.NotEmpty(t, ctx.All())
	assert.Equal(t, diag.KindMacroExpected, ctx.All()[0].Kind)
}

func TestSplitFormatStringOutOfRangeHole(t *testing.T) {
	_, err := splitFormatString("hello {5}", 1)
	assert.NoError(t, err) // parsing succeeds; range checking happens in builtinFormatArgs
}

func TestFormatArgsProducesNestedInvocationOfWrapper(t *testing.T) {
	ctx := newCtx()
	wrapper := &ast.FnRef{}
	result := builtinFormatArgs(ctx, &diag.Span{}, []ast.Expr{
		wrapper,
		&ast.Literal{Kind: ast.StringLit, Value: "a{} b"},
		intArg(1),
	})
	require.False(t, ctx.HasErrors())

	inv, ok := result.(*ast.MacroInvocation)
	require.True(t, ok)
	assert.Same(t, wrapper, inv.Inner)
	require.Len(t, inv.Args, 3)
	assert.Equal(t, "a", inv.Args[0].(*ast.Literal).Value)
	assert.Equal(t, intArg(1), inv.Args[1])
	assert.Equal(t, " b", inv.Args[2].(*ast.Literal).Value)
}

func TestFormatArgsOutOfRangeHoleIsHardError(t *testing.T) {
	ctx := newCtx()
	wrapper := &ast.FnRef{}
	result := builtinFormatArgs(ctx, &diag.Span{}, []ast.Expr{
		wrapper,
		&ast.Literal{Kind: ast.StringLit, Value: "{0} {5}"},
		intArg(1),
	})
	assert.Nil(t, result)
	require.NotEmpty(t, ctx.All())
	assert.Equal(t, diag.KindInvalidFormatString, ctx.All()[0].Kind)
	assert.Equal(t, 5, ctx.All()[0].Data["offendingIndex"])
}
