package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alumina-lang/aluminac/internal/ast"
	"github.com/alumina-lang/aluminac/internal/cfgdsl"
	"github.com/alumina-lang/aluminac/internal/diag"
	"github.com/alumina-lang/aluminac/internal/itemmaker"
)

func newCtx() (*diag.Context, *diag.Files) {
	files := diag.NewFiles()
	files.Register("test://unit")
	return diag.NewContext(files), files
}

func span() *diag.Span { return &diag.Span{File: 1, Line: 1, Column: 1} }

func TestCompileEmptyScopeReportsNoMainUnlessLibrary(t *testing.T) {
	ctx, files := newCtx()
	scope := &itemmaker.Scope{Groups: map[string]*itemmaker.NamedItem{}}

	_, err := Compile(scope, cfgdsl.NewFlags(), ctx, files, Options{})
	require.NoError(t, err)
	require.True(t, ctx.HasErrors())
	// The no-main error has no span, so diag records it under the
	// KindNoSpanInformation fallback; the message identifies it.
	assert.Equal(t, diag.KindNoSpanInformation, ctx.All()[0].Kind)
	assert.Contains(t, ctx.All()[0].Message, "no main function")
}

func TestCompileEmptyScopeAsLibraryReportsNothing(t *testing.T) {
	ctx, files := newCtx()
	scope := &itemmaker.Scope{Groups: map[string]*itemmaker.NamedItem{}}

	res, err := Compile(scope, cfgdsl.NewFlags(), ctx, files, Options{Library: true})
	require.NoError(t, err)
	require.False(t, ctx.HasErrors())
	assert.Equal(t, 0, res.ItemCount)
}

func TestCompileMainFunctionEmitsC(t *testing.T) {
	ctx, files := newCtx()
	body := &ast.Block{}
	scope := &itemmaker.Scope{Groups: map[string]*itemmaker.NamedItem{
		"main": {
			Name: "main", Kind: itemmaker.GroupFunction, Span: span(),
			ReturnType: &ast.BuiltinType{Kind: ast.Void},
			Body:       body,
		},
	}}

	res, err := Compile(scope, cfgdsl.NewFlags(), ctx, files, Options{})
	require.NoError(t, err)
	require.False(t, ctx.HasErrors())
	assert.Contains(t, res.C, "main")
	assert.Equal(t, 1, res.LiveCount)
}
