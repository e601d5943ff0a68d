package itemmaker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alumina-lang/aluminac/internal/arenaid"
	"github.com/alumina-lang/aluminac/internal/ast"
	"github.com/alumina-lang/aluminac/internal/cfgdsl"
	"github.com/alumina-lang/aluminac/internal/diag"
)

func newCtx() *diag.Context {
	files := diag.NewFiles()
	files.Register("test://unit")
	return diag.NewContext(files)
}

func newMaker(ctx *diag.Context, flags *cfgdsl.Flags) *Maker {
	return NewMaker(&arenaid.Arena[ast.Tag]{}, ctx, flags)
}

func span() *diag.Span { return &diag.Span{File: 1, Line: 1, Column: 1} }

func TestBuildTypeRejectsTransparentWithMultipleFields(t *testing.T) {
	ctx := newCtx()
	m := newMaker(ctx, cfgdsl.NewFlags())
	attrs := cfgdsl.NewSet()
	attrs.Add(ctx, cfgdsl.Attribute{Kind: cfgdsl.KindTransparent, Span: *span()})

	scope := &Scope{Groups: map[string]*NamedItem{}}
	g := &NamedItem{
		Name: "Wrapper", Kind: GroupType, Span: span(), Attrs: attrs,
		Fields: []ast.Field{{Name: "a"}, {Name: "b"}},
	}
	scope.Groups["Wrapper"] = g

	m.Build(scope, false)
	require.Len(t, ctx.All(), 1)
	assert.Equal(t, diag.KindInvalidTransparent, ctx.All()[0].Kind)
}

func TestBuildTypeAcceptsTransparentWithOneField(t *testing.T) {
	ctx := newCtx()
	m := newMaker(ctx, cfgdsl.NewFlags())
	attrs := cfgdsl.NewSet()
	attrs.Add(ctx, cfgdsl.Attribute{Kind: cfgdsl.KindTransparent, Span: *span()})

	scope := &Scope{Groups: map[string]*NamedItem{
		"Wrapper": {Name: "Wrapper", Kind: GroupType, Span: span(), Attrs: attrs, Fields: []ast.Field{{Name: "a"}}},
	}}

	m.Build(scope, false)
	require.False(t, ctx.HasErrors())
	id, ok := m.byName["Wrapper"]
	require.True(t, ok)
	sl, ok := m.items[id].(*ast.StructLikeItem)
	require.True(t, ok)
	assert.True(t, sl.Transparent)
}

func TestBuildFunctionExternGenericRejected(t *testing.T) {
	ctx := newCtx()
	m := newMaker(ctx, cfgdsl.NewFlags())
	scope := &Scope{Groups: map[string]*NamedItem{
		"f": {
			Name: "f", Kind: GroupFunction, Span: span(), Extern: true,
			Placeholders: []PlaceholderDecl{{Name: "T"}},
		},
	}}
	m.Build(scope, false)
	require.Len(t, ctx.All(), 1)
	assert.Equal(t, diag.KindExternCGenericParams, ctx.All()[0].Kind)
}

func TestBuildStaticExternRequiresTypeAndNoInit(t *testing.T) {
	ctx := newCtx()
	m := newMaker(ctx, cfgdsl.NewFlags())
	scope := &Scope{Groups: map[string]*NamedItem{
		"g": {Name: "g", Kind: GroupStatic, Span: span(), Extern: true, Init: &ast.Literal{Kind: ast.IntLit, Value: int64(1)}},
	}}
	m.Build(scope, false)
	require.Len(t, ctx.All(), 1)
	assert.Equal(t, diag.KindExternStaticMustHaveType, ctx.All()[0].Kind)
}

func TestBuildStaticExternGenericRejected(t *testing.T) {
	ctx := newCtx()
	m := newMaker(ctx, cfgdsl.NewFlags())
	scope := &Scope{Groups: map[string]*NamedItem{
		"g": {
			Name: "g", Kind: GroupStatic, Span: span(), Extern: true,
			Ty:           &ast.BuiltinType{},
			Placeholders: []PlaceholderDecl{{Name: "T"}},
		},
	}}
	m.Build(scope, false)
	require.Len(t, ctx.All(), 1)
	assert.Equal(t, diag.KindExternStaticCannotBeGeneric, ctx.All()[0].Kind)
}

func TestBuildFunctionVarArgsOnlyOnExtern(t *testing.T) {
	ctx := newCtx()
	m := newMaker(ctx, cfgdsl.NewFlags())
	scope := &Scope{Groups: map[string]*NamedItem{
		"f": {Name: "f", Kind: GroupFunction, Span: span(), VarArgs: true, Body: &ast.Literal{}},
	}}
	m.Build(scope, false)
	require.Len(t, ctx.All(), 1)
	assert.Equal(t, diag.KindVarArgsCanOnlyBeExtern, ctx.All()[0].Kind)
}

func TestBuildFunctionProtocolFnCannotBeExtern(t *testing.T) {
	ctx := newCtx()
	m := newMaker(ctx, cfgdsl.NewFlags())
	scope := &Scope{Groups: map[string]*NamedItem{
		"f": {Name: "f", Kind: GroupFunction, Span: span(), Extern: true, InProtocol: true},
	}}
	m.Build(scope, false)
	require.Len(t, ctx.All(), 1)
	assert.Equal(t, diag.KindProtocolFnsCannotBeExtern, ctx.All()[0].Kind)
}

func TestBuildFunctionRequiresBodyUnlessExternOrIntrinsic(t *testing.T) {
	ctx := newCtx()
	m := newMaker(ctx, cfgdsl.NewFlags())
	scope := &Scope{Groups: map[string]*NamedItem{
		"f": {Name: "f", Kind: GroupFunction, Span: span()},
	}}
	m.Build(scope, false)
	require.Len(t, ctx.All(), 1)
	assert.Equal(t, diag.KindFunctionMustHaveBody, ctx.All()[0].Kind)
}

func TestBuildFunctionUnknownIntrinsicRejected(t *testing.T) {
	ctx := newCtx()
	m := newMaker(ctx, cfgdsl.NewFlags())
	scope := &Scope{Groups: map[string]*NamedItem{
		"not_real": {Name: "not_real", Kind: GroupFunction, Span: span(), ABI: "intrinsic"},
	}}
	m.Build(scope, false)
	require.Len(t, ctx.All(), 1)
	assert.Equal(t, diag.KindUnknownIntrinsic, ctx.All()[0].Kind)
}

func TestBuildFunctionKnownIntrinsicMaterializesIntrinsicItem(t *testing.T) {
	ctx := newCtx()
	m := newMaker(ctx, cfgdsl.NewFlags())
	scope := &Scope{Groups: map[string]*NamedItem{
		"size_of": {Name: "size_of", Kind: GroupFunction, Span: span(), ABI: "intrinsic"},
	}}
	m.Build(scope, false)
	require.False(t, ctx.HasErrors())
	id := m.byName["size_of"]
	_, ok := m.items[id].(*ast.IntrinsicItem)
	assert.True(t, ok)
}

func TestBuildFunctionUnsupportedABIRejected(t *testing.T) {
	ctx := newCtx()
	m := newMaker(ctx, cfgdsl.NewFlags())
	scope := &Scope{Groups: map[string]*NamedItem{
		"f": {Name: "f", Kind: GroupFunction, Span: span(), ABI: "stdcall", Body: &ast.Literal{}},
	}}
	m.Build(scope, false)
	require.Len(t, ctx.All(), 1)
	assert.Equal(t, diag.KindUnsupportedABI, ctx.All()[0].Kind)
}

func TestBuildTypeShadowedAssociatedFnWarns(t *testing.T) {
	ctx := newCtx()
	m := newMaker(ctx, cfgdsl.NewFlags())
	fn1 := &NamedItem{Name: "go", Kind: GroupFunction, Span: span(), Body: &ast.Literal{}}
	fn2 := &NamedItem{Name: "go", Kind: GroupFunction, Span: span(), Body: &ast.Literal{}}
	scope := &Scope{Groups: map[string]*NamedItem{
		"T": {
			Name: "T", Kind: GroupType, Span: span(),
			Impls: []ImplBlock{
				{AssocFns: []*NamedItem{fn1}},
				{AssocFns: []*NamedItem{fn2}},
			},
		},
	}}
	m.Build(scope, false)
	require.Len(t, ctx.Warnings(), 1)
	assert.Equal(t, diag.KindShadowedAssociatedFn, ctx.Warnings()[0].Kind)
}

func TestDanglingAliasReported(t *testing.T) {
	ctx := newCtx()
	m := newMaker(ctx, cfgdsl.NewFlags())
	scope := &Scope{Groups: map[string]*NamedItem{
		"Bad": {Name: "Bad", Kind: GroupAlias, Span: span(), UsePath: "nonexistent"},
	}}
	m.Build(scope, false)
	require.Len(t, ctx.All(), 1)
	assert.Equal(t, diag.KindDanglingAlias, ctx.All()[0].Kind)
}

func TestAliasResolvingToExistingNameIsNotDangling(t *testing.T) {
	ctx := newCtx()
	m := newMaker(ctx, cfgdsl.NewFlags())
	scope := &Scope{Groups: map[string]*NamedItem{
		"Real":  {Name: "Real", Kind: GroupType, Span: span()},
		"Alias": {Name: "Alias", Kind: GroupAlias, Span: span(), UsePath: "Real"},
	}}
	m.Build(scope, false)
	require.False(t, ctx.HasErrors())
}

func TestMainCandidateDetected(t *testing.T) {
	ctx := newCtx()
	m := newMaker(ctx, cfgdsl.NewFlags())
	scope := &Scope{Groups: map[string]*NamedItem{
		"main": {Name: "main", Kind: GroupFunction, Span: span(), Body: &ast.Literal{}},
	}}
	m.Build(scope, true)
	id, ok := m.MainCandidate()
	require.True(t, ok)
	fn := m.items[id].(*ast.FunctionItem)
	assert.True(t, fn.IsMain)
}

// Only the main module's own functions are candidates (a nested
// module is built with isMain=false), so two candidates are set up as
// two test_main functions in the main module under the test flag.
func TestMultipleMainCandidatesRejected(t *testing.T) {
	ctx := newCtx()
	flags := cfgdsl.NewFlags()
	flags.SetBool("test")
	m := newMaker(ctx, flags)
	attrsA := cfgdsl.NewSet()
	attrsA.Add(ctx, cfgdsl.Attribute{Kind: cfgdsl.KindTestMain, Span: *span()})
	attrsB := cfgdsl.NewSet()
	attrsB.Add(ctx, cfgdsl.Attribute{Kind: cfgdsl.KindTestMain, Span: *span()})
	scope := &Scope{Groups: map[string]*NamedItem{
		"run_a": {Name: "run_a", Kind: GroupFunction, Span: span(), Body: &ast.Literal{}, Attrs: attrsA},
		"run_b": {Name: "run_b", Kind: GroupFunction, Span: span(), Body: &ast.Literal{}, Attrs: attrsB},
	}}
	m.Build(scope, true)
	require.Len(t, ctx.All(), 1)
	assert.Equal(t, diag.KindMultipleMainFunctions, ctx.All()[0].Kind)
}

func TestExportedMainIsNotMainCandidate(t *testing.T) {
	ctx := newCtx()
	m := newMaker(ctx, cfgdsl.NewFlags())
	attrs := cfgdsl.NewSet()
	attrs.Add(ctx, cfgdsl.Attribute{Kind: cfgdsl.KindExport, Span: *span()})
	scope := &Scope{Groups: map[string]*NamedItem{
		"main": {Name: "main", Kind: GroupFunction, Span: span(), Body: &ast.Literal{}, Attrs: attrs},
	}}
	m.Build(scope, true)
	_, ok := m.MainCandidate()
	assert.False(t, ok)
}

func TestLinkNamedMainIsNotMainCandidate(t *testing.T) {
	ctx := newCtx()
	m := newMaker(ctx, cfgdsl.NewFlags())
	attrs := cfgdsl.NewSet()
	attrs.Add(ctx, cfgdsl.Attribute{Kind: cfgdsl.KindLinkName, Span: *span(), LinkName: "real_main"})
	scope := &Scope{Groups: map[string]*NamedItem{
		"main": {Name: "main", Kind: GroupFunction, Span: span(), Body: &ast.Literal{}, Attrs: attrs},
	}}
	m.Build(scope, true)
	_, ok := m.MainCandidate()
	assert.False(t, ok)
}

func TestTestMainCandidateUsedUnderTestFlag(t *testing.T) {
	ctx := newCtx()
	flags := cfgdsl.NewFlags()
	flags.SetBool("test")
	m := newMaker(ctx, flags)
	attrs := cfgdsl.NewSet()
	attrs.Add(ctx, cfgdsl.Attribute{Kind: cfgdsl.KindTestMain, Span: *span()})
	scope := &Scope{Groups: map[string]*NamedItem{
		"run_tests": {Name: "run_tests", Kind: GroupFunction, Span: span(), Body: &ast.Literal{}, Attrs: attrs},
	}}
	m.Build(scope, true)
	id, ok := m.MainCandidate()
	require.True(t, ok)
	fn := m.items[id].(*ast.FunctionItem)
	assert.True(t, fn.IsTestMain)
}

func TestSelfConfusionWarnsOnDirectAndPointerWrappedDynSelf(t *testing.T) {
	ctx := newCtx()
	m := newMaker(ctx, cfgdsl.NewFlags())
	m.DynSelfItem = m.arena.NewID()

	scope := &Scope{Groups: map[string]*NamedItem{
		"f": {
			Name: "f", Kind: GroupFunction, Span: span(), Body: &ast.Literal{},
			Params: []ast.Param{{Name: "self", Ty: &ast.PointerType{Inner: &ast.NamedRef{Item: m.DynSelfItem}}}},
		},
	}}
	m.Build(scope, false)
	require.Len(t, ctx.Warnings(), 1)
	assert.Equal(t, diag.KindSelfConfusion, ctx.Warnings()[0].Kind)
}

func TestSelfConfusionIgnoresDeeperNesting(t *testing.T) {
	ctx := newCtx()
	m := newMaker(ctx, cfgdsl.NewFlags())
	m.DynSelfItem = m.arena.NewID()

	scope := &Scope{Groups: map[string]*NamedItem{
		"f": {
			Name: "f", Kind: GroupFunction, Span: span(), Body: &ast.Literal{},
			Params: []ast.Param{{Name: "self", Ty: &ast.PointerType{Inner: &ast.PointerType{Inner: &ast.NamedRef{Item: m.DynSelfItem}}}}},
		},
	}}
	m.Build(scope, false)
	assert.Empty(t, ctx.Warnings())
}

func TestBuildMacroRejectsMultipleEtCeteras(t *testing.T) {
	ctx := newCtx()
	m := newMaker(ctx, cfgdsl.NewFlags())
	scope := &Scope{Groups: map[string]*NamedItem{
		"m": {
			Name: "m", Kind: GroupMacro, Span: span(),
			MacroParams: []ast.MacroParam{{Name: "a", EtCetera: true}, {Name: "b", EtCetera: true}},
		},
	}}
	m.Build(scope, false)
	require.Len(t, ctx.All(), 1)
	assert.Equal(t, diag.KindMultipleEtCeteras, ctx.All()[0].Kind)
}

func TestImplWithNoAccompanyingTypeReported(t *testing.T) {
	ctx := newCtx()
	m := newMaker(ctx, cfgdsl.NewFlags())
	scope := &Scope{Groups: map[string]*NamedItem{
		"Orphan": {Name: "Orphan", Kind: GroupImpl, Span: span()},
	}}
	m.Build(scope, false)
	require.Len(t, ctx.All(), 1)
	assert.Equal(t, diag.KindNoFreeStandingImpl, ctx.All()[0].Kind)
}
