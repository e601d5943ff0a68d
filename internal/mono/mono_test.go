package mono

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alumina-lang/aluminac/internal/arenaid"
	"github.com/alumina-lang/aluminac/internal/ast"
	"github.com/alumina-lang/aluminac/internal/diag"
	"github.com/alumina-lang/aluminac/internal/ir"
	"github.com/alumina-lang/aluminac/internal/macro"
)

func newCtx() *diag.Context {
	files := diag.NewFiles()
	files.Register("test://unit")
	return diag.NewContext(files)
}

func span() *diag.Span { return &diag.Span{File: 1, Line: 1, Column: 1} }

// astFixture builds a small AST arena plus a map of pre-populated items,
// returning the arena so tests can mint fresh ids for params/locals.
type astFixture struct {
	arena *arenaid.Arena[ast.Tag]
	items map[ast.ID]ast.Item
}

func newFixture() *astFixture {
	return &astFixture{arena: &arenaid.Arena[ast.Tag]{}, items: map[ast.ID]ast.Item{}}
}

func (f *astFixture) add(item ast.Item, id ast.ID) ast.ID {
	switch v := item.(type) {
	case *ast.FunctionItem:
		v.SetID(id)
		v.SetSpan(span())
	case *ast.StructLikeItem:
		v.SetID(id)
		v.SetSpan(span())
	case *ast.EnumItem:
		v.SetID(id)
		v.SetSpan(span())
	case *ast.StaticItem:
		v.SetID(id)
		v.SetSpan(span())
	case *ast.ConstItem:
		v.SetID(id)
		v.SetSpan(span())
	case *ast.IntrinsicItem:
		v.SetID(id)
		v.SetSpan(span())
	}
	f.items[id] = item
	return id
}

func i32() ast.Type { return &ast.BuiltinType{Kind: ast.I32} }

func TestInstantiateMemoizesSameKey(t *testing.T) {
	f := newFixture()
	id := f.arena.NewID()
	f.add(&ast.FunctionItem{Name: "identity", ReturnType: i32()}, id)

	m := New(f.items, newCtx())
	first := m.Instantiate(id, nil)
	second := m.Instantiate(id, nil)

	assert.Equal(t, first, second)
	assert.Len(t, m.Items(), 1)
}

func TestInstantiateDistinguishesTypeArguments(t *testing.T) {
	f := newFixture()
	p := &ast.Placeholder{ID: f.arena.NewID(), Name: "T"}
	id := f.arena.NewID()
	f.add(&ast.StructLikeItem{
		Name:         "Box",
		Placeholders: []*ast.Placeholder{p},
		Fields:       []ast.Field{{Name: "value", Ty: &ast.PlaceholderType{Placeholder: p.ID}}},
	}, id)

	m := New(f.items, newCtx())
	intBox := m.Instantiate(id, []ast.Type{i32()})
	boolBox := m.Instantiate(id, []ast.Type{&ast.BuiltinType{Kind: ast.Bool}})

	assert.NotEqual(t, intBox, boolBox)
	assert.Len(t, m.Items(), 2)
}

// A self-referential generic struct (e.g. a linked-list node holding a
// pointer to Node<T>) must not recurse forever: the second Instantiate
// call for the same key, issued while the first is still being built,
// must observe the pending cell and return immediately.
func TestInstantiateIsCycleSafeForSelfReferentialStruct(t *testing.T) {
	f := newFixture()
	p := &ast.Placeholder{ID: f.arena.NewID(), Name: "T"}
	nodeID := f.arena.NewID()
	node := &ast.StructLikeItem{
		Name:         "Node",
		Placeholders: []*ast.Placeholder{p},
		Fields: []ast.Field{
			{Name: "value", Ty: &ast.PlaceholderType{Placeholder: p.ID}},
			{Name: "next", Ty: &ast.PointerType{Inner: &ast.NamedRef{
				Item: nodeID,
				Args: []ast.Type{&ast.PlaceholderType{Placeholder: p.ID}},
			}}},
		},
	}
	f.add(node, nodeID)

	m := New(f.items, newCtx())
	id := m.Instantiate(nodeID, []ast.Type{i32()})
	require.True(t, id.Valid())

	items := m.Items()
	require.Len(t, items, 1)
	structItem, ok := items[0].(*ir.StructItem)
	require.True(t, ok)
	require.Len(t, structItem.Fields, 2)

	nextPtr, ok := structItem.Fields[1].Ty.(*ir.PointerType)
	require.True(t, ok)
	innerItem, ok := nextPtr.Inner.(*ir.ItemType)
	require.True(t, ok)
	assert.Equal(t, id, innerItem.Item)
}

func TestBuildFunctionLowersParamsBodyAndReturnType(t *testing.T) {
	f := newFixture()
	paramID := f.arena.NewID()
	fnID := f.arena.NewID()
	fn := &ast.FunctionItem{
		Name:       "double",
		Params:     []ast.Param{{Name: "x", ID: paramID, Ty: i32()}},
		ReturnType: i32(),
		Body: &ast.Block{
			Tail: &ast.BinaryOp{
				Op:    "+",
				Left:  &ast.Local{ID: paramID},
				Right: &ast.Local{ID: paramID},
			},
		},
	}
	f.add(fn, fnID)

	m := New(f.items, newCtx())
	id := m.Instantiate(fnID, nil)

	items := m.Items()
	require.Len(t, items, 1)
	lowered, ok := items[0].(*ir.FunctionItem)
	require.True(t, ok)
	assert.Equal(t, id, lowered.ItemID())
	require.Len(t, lowered.Params, 1)
	assert.Equal(t, paramID, lowered.Params[0].ID)

	block, ok := lowered.Body.(*ir.Block)
	require.True(t, ok)
	bin, ok := block.Tail.(*ir.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, ir.RValue, bin.ValueCategory())
}

func TestMacroInvocationExpandsDuringLowering(t *testing.T) {
	f := newFixture()
	macroID := f.arena.NewID()
	f.items[macroID] = &ast.MacroItem{Name: "one", Body: &ast.Literal{Kind: ast.IntLit, Value: int64(42)}}

	fnID := f.arena.NewID()
	fn := &ast.FunctionItem{
		Name:       "use_one",
		ReturnType: i32(),
		Body:       &ast.Block{Tail: &ast.MacroInvocation{Inner: &ast.FnRef{Item: macroID}}},
	}
	f.add(fn, fnID)

	m := New(f.items, newCtx())
	m.SetMacros(macro.NewTable(f.arena, f.items))
	m.Instantiate(fnID, nil)

	items := m.Items()
	require.Len(t, items, 1)
	lowered := items[0].(*ir.FunctionItem)
	block := lowered.Body.(*ir.Block)
	lit, ok := block.Tail.(*ir.Literal)
	require.True(t, ok)
	assert.Equal(t, int64(42), lit.Value)
}

func TestMacroInvocationWithoutTableReportsDiagnostic(t *testing.T) {
	f := newFixture()
	macroID := f.arena.NewID()
	f.items[macroID] = &ast.MacroItem{Name: "one", Body: &ast.Literal{Kind: ast.IntLit, Value: int64(42)}}

	fnID := f.arena.NewID()
	fn := &ast.FunctionItem{
		Name:       "use_one",
		ReturnType: i32(),
		Body:       &ast.Block{Tail: &ast.MacroInvocation{Inner: &ast.FnRef{Item: macroID}}},
	}
	f.add(fn, fnID)

	ctx := newCtx()
	m := New(f.items, ctx)
	m.Instantiate(fnID, nil)

	require.NotEmpty(t, ctx.All())
	assert.Equal(t, diag.KindTypeHintRequired, ctx.All()[0].Kind)
}

// TestBindBangThreadsBoundArgsThroughNestedInvocation exercises bind!'s
// partial application end to end: `bind!(add, 1)` yields a macro
// reference carrying 1 as a bound arg, and invoking that reference with
// a further argument (2) expands `add`'s body with both params bound.
func TestBindBangThreadsBoundArgsThroughNestedInvocation(t *testing.T) {
	f := newFixture()
	p0, p1 := f.arena.NewID(), f.arena.NewID()
	addMacroID := f.arena.NewID()
	f.items[addMacroID] = &ast.MacroItem{
		Name:   "add",
		Params: []ast.MacroParam{{ID: p0}, {ID: p1}},
		Body:   &ast.BinaryOp{Op: "+", Left: &ast.Local{ID: p0}, Right: &ast.Local{ID: p1}},
	}
	bindBuiltinID := f.arena.NewID()
	f.items[bindBuiltinID] = &ast.BuiltinMacroItem{Name: "bind", Kind: ast.BuiltinBind}

	bound := &ast.MacroInvocation{
		Inner: &ast.FnRef{Item: bindBuiltinID},
		Args:  []ast.Expr{&ast.FnRef{Item: addMacroID}, &ast.Literal{Kind: ast.IntLit, Value: int64(1)}},
	}

	fnID := f.arena.NewID()
	fn := &ast.FunctionItem{
		Name:       "use_add",
		ReturnType: i32(),
		Body: &ast.Block{
			Tail: &ast.MacroInvocation{Inner: bound, Args: []ast.Expr{&ast.Literal{Kind: ast.IntLit, Value: int64(2)}}},
		},
	}
	f.add(fn, fnID)

	ctx := newCtx()
	m := New(f.items, ctx)
	m.SetMacros(macro.NewTable(f.arena, f.items))
	m.Instantiate(fnID, nil)
	require.False(t, ctx.HasErrors())

	items := m.Items()
	require.Len(t, items, 1)
	lowered := items[0].(*ir.FunctionItem)
	block := lowered.Body.(*ir.Block)
	bin, ok := block.Tail.(*ir.BinaryOp)
	require.True(t, ok)
	left, ok := bin.Left.(*ir.Literal)
	require.True(t, ok)
	assert.Equal(t, int64(1), left.Value)
	right, ok := bin.Right.(*ir.Literal)
	require.True(t, ok)
	assert.Equal(t, int64(2), right.Value)
}

func TestBuildStructTracksZeroSizedFields(t *testing.T) {
	f := newFixture()
	voidStructID := f.arena.NewID()
	f.add(&ast.StructLikeItem{Name: "Unit"}, voidStructID)

	outerID := f.arena.NewID()
	f.add(&ast.StructLikeItem{
		Name: "Wrapper",
		Fields: []ast.Field{
			{Name: "tag", Ty: &ast.NamedRef{Item: voidStructID}},
		},
	}, outerID)

	m := New(f.items, newCtx())
	m.Instantiate(voidStructID, nil)
	outerIRID := m.Instantiate(outerID, nil)

	shape := m.ItemByID(outerIRID)
	require.NotNil(t, shape)
	assert.True(t, ir.IsZeroSized(&ir.ItemType{Item: outerIRID}, m.ItemByID))
}

func TestAssocFnDispatchResolvesDeferredFunction(t *testing.T) {
	f := newFixture()
	methodID := f.arena.NewID()
	method := &ast.FunctionItem{Name: "zero", ReturnType: i32(), Body: &ast.Literal{Kind: ast.IntLit, Value: int64(0)}}
	f.add(method, methodID)

	structID := f.arena.NewID()
	f.add(&ast.StructLikeItem{Name: "Counter", AssocFns: map[string]ast.ID{"zero": methodID}}, structID)

	callerID := f.arena.NewID()
	caller := &ast.FunctionItem{
		Name:       "make",
		ReturnType: i32(),
		Body: &ast.Call{
			Func: &ast.DeferredFunction{Receiver: &ast.NamedRef{Item: structID}, Name: "zero"},
		},
	}
	f.add(caller, callerID)

	ctx := newCtx()
	m := New(f.items, ctx)
	m.Instantiate(callerID, nil)

	assert.False(t, ctx.HasErrors())
}

func TestUnresolvableDeferredFunctionReportsDiagnostic(t *testing.T) {
	f := newFixture()
	structID := f.arena.NewID()
	f.add(&ast.StructLikeItem{Name: "Empty"}, structID)

	callerID := f.arena.NewID()
	caller := &ast.FunctionItem{
		Name:       "make",
		ReturnType: i32(),
		Body: &ast.Call{
			Func: &ast.DeferredFunction{Receiver: &ast.NamedRef{Item: structID}, Name: "missing"},
		},
	}
	f.add(caller, callerID)

	ctx := newCtx()
	m := New(f.items, ctx)
	m.Instantiate(callerID, nil)

	assert.True(t, ctx.HasErrors())
}

func TestStaticIfResolvesWithoutEmittingRuntimeNode(t *testing.T) {
	f := newFixture()
	fnID := f.arena.NewID()
	fn := &ast.FunctionItem{
		Name:       "pick",
		ReturnType: i32(),
		Body: &ast.IfExpr{
			Static: true,
			Cond:   &ast.Literal{Kind: ast.BoolLit, Value: true},
			Then:   &ast.Literal{Kind: ast.IntLit, Value: int64(1)},
			Else:   &ast.Literal{Kind: ast.IntLit, Value: int64(2)},
		},
	}
	f.add(fn, fnID)

	m := New(f.items, newCtx())
	m.Instantiate(fnID, nil)

	items := m.Items()
	lowered := items[0].(*ir.FunctionItem)
	lit, ok := lowered.Body.(*ir.Literal)
	require.True(t, ok)
	assert.EqualValues(t, 1, lit.Value)
}

func TestBreakOutsideLoopReportsDiagnostic(t *testing.T) {
	f := newFixture()
	fnID := f.arena.NewID()
	fn := &ast.FunctionItem{Name: "bad", ReturnType: i32(), Body: &ast.BreakExpr{}}
	f.add(fn, fnID)

	ctx := newCtx()
	m := New(f.items, ctx)
	m.Instantiate(fnID, nil)

	assert.True(t, ctx.HasErrors())
}

func TestLoopLowersToLabelGotoPair(t *testing.T) {
	f := newFixture()
	fnID := f.arena.NewID()
	fn := &ast.FunctionItem{
		Name:       "spin",
		ReturnType: &ast.BuiltinType{Kind: ast.Void},
		Body: &ast.LoopExpr{
			Body: &ast.BreakExpr{},
		},
	}
	f.add(fn, fnID)

	m := New(f.items, newCtx())
	m.Instantiate(fnID, nil)

	lowered := m.Items()[0].(*ir.FunctionItem)
	block, ok := lowered.Body.(*ir.Block)
	require.True(t, ok)
	require.Len(t, block.Stmts, 4)
	_, ok = block.Stmts[0].(*ir.ExprStmt).Expr.(*ir.Label)
	assert.True(t, ok)
	_, ok = block.Stmts[3].(*ir.ExprStmt).Expr.(*ir.Label)
	assert.True(t, ok)
}

func TestRangeExprLowersToTuple(t *testing.T) {
	f := newFixture()
	fnID := f.arena.NewID()
	fn := &ast.FunctionItem{
		Name:       "bounds",
		ReturnType: &ast.TupleType{Elems: []ast.Type{i32(), i32()}},
		Body: &ast.RangeExpr{
			Lo: &ast.Literal{Kind: ast.IntLit, Value: int64(0)},
			Hi: &ast.Literal{Kind: ast.IntLit, Value: int64(10)},
		},
	}
	f.add(fn, fnID)

	m := New(f.items, newCtx())
	m.Instantiate(fnID, nil)

	lowered := m.Items()[0].(*ir.FunctionItem)
	tup, ok := lowered.Body.(*ir.TupleExpr)
	require.True(t, ok)
	assert.Len(t, tup.Elems, 2)
}

func TestSliceTypeLowersToFatPointerTuple(t *testing.T) {
	f := newFixture()
	fnID := f.arena.NewID()
	paramID := f.arena.NewID()
	fn := &ast.FunctionItem{
		Name:       "len",
		Params:     []ast.Param{{Name: "s", ID: paramID, Ty: &ast.SliceType{Inner: i32()}}},
		ReturnType: &ast.BuiltinType{Kind: ast.USize},
		Body:       &ast.Literal{Kind: ast.IntLit, Value: int64(0)},
	}
	f.add(fn, fnID)

	m := New(f.items, newCtx())
	m.Instantiate(fnID, nil)

	lowered := m.Items()[0].(*ir.FunctionItem)
	tup, ok := lowered.Params[0].Ty.(*ir.TupleType)
	require.True(t, ok)
	require.Len(t, tup.Elems, 2)
	_, ok = tup.Elems[0].(*ir.PointerType)
	assert.True(t, ok)
}

func TestIntrinsicFunctionBuildsKnownKind(t *testing.T) {
	f := newFixture()
	intrID := f.arena.NewID()
	f.add(&ast.IntrinsicItem{Name: "size_of_u32", IntrinsicName: "size_of", ReturnType: &ast.BuiltinType{Kind: ast.USize}}, intrID)

	m := New(f.items, newCtx())
	id := m.Instantiate(intrID, nil)

	lowered := m.Items()[0].(*ir.IntrinsicItem)
	assert.Equal(t, ir.IntrinsicSizeOf, lowered.Kind)
	assert.Equal(t, id, lowered.ItemID())
}

func TestUnresolvedTypeHintFallsBackToVoid(t *testing.T) {
	f := newFixture()
	fnID := f.arena.NewID()
	fn := &ast.FunctionItem{
		Name:       "weird",
		ReturnType: &ast.TypeOfType{Expr: &ast.Literal{Kind: ast.IntLit, Value: int64(1)}},
		Body:       &ast.Literal{Kind: ast.IntLit, Value: int64(1)},
	}
	f.add(fn, fnID)

	ctx := newCtx()
	m := New(f.items, ctx)
	m.Instantiate(fnID, nil)

	lowered := m.Items()[0].(*ir.FunctionItem)
	assert.Equal(t, "builtin(())", lowered.ReturnType.InternKey())
	assert.True(t, ctx.HasErrors())
}
