package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportWithoutSpanFallsBackToNoSpanInformation(t *testing.T) {
	ctx := NewContext(NewFiles())
	ctx.Report(KindUnknownBuiltinMacro, nil, "no span here")
	require.Len(t, ctx.All(), 1)
	assert.Equal(t, KindNoSpanInformation, ctx.All()[0].Kind)
}

func TestWarningsNeverCountAsErrors(t *testing.T) {
	ctx := NewContext(NewFiles())
	ctx.Report(KindShadowedAssociatedFn, &Span{Line: 1, Column: 1}, "shadow")
	assert.False(t, ctx.HasErrors())
	assert.Len(t, ctx.Warnings(), 1)
}

func TestErrorsAreFatal(t *testing.T) {
	ctx := NewContext(NewFiles())
	ctx.Report(KindMultipleMainFunctions, &Span{Line: 1, Column: 1}, "two mains")
	assert.True(t, ctx.HasErrors())
}

func TestLintOverrideCanDowngradeErrorToWarning(t *testing.T) {
	ctx := NewContext(NewFiles())
	ctx.PushLintScope(map[ErrorKind]Severity{KindMultipleMainFunctions: SeverityWarning})
	ctx.Report(KindMultipleMainFunctions, &Span{Line: 1, Column: 1}, "two mains")
	ctx.PopLintScope()
	assert.False(t, ctx.HasErrors())
	assert.Len(t, ctx.Warnings(), 1)
}

func TestLintOverrideCannotSilenceInternalErrors(t *testing.T) {
	ctx := NewContext(NewFiles())
	ctx.PushLintScope(map[ErrorKind]Severity{KindUnpopulatedSymbol: SeverityWarning})
	ctx.Report(KindUnpopulatedSymbol, nil, "cell unfilled")
	assert.True(t, ctx.HasErrors())
	assert.Equal(t, SeverityInternal, ctx.All()[0].Severity)
	assert.NotEmpty(t, ctx.All()[0].Stack)
}

func TestEveryErrorKindIsRegistered(t *testing.T) {
	kinds := []ErrorKind{
		KindUnknownBuiltinMacro, KindParamCountMismatch, KindNotEnoughMacroArguments,
		KindConstantStringExpected, KindCannotEtCeteraHere, KindEtCeteraInEtCetera,
		KindMultipleEtCeteras, KindNotAMacro, KindRecursiveMacroCall, KindMacroExpected,
		KindInvalidFormatString, KindInvalidTransparent, KindVarArgsCanOnlyBeExtern,
		KindProtocolFnsCannotBeExtern, KindExternCGenericParams, KindExternStaticCannotBeGeneric,
		KindExternStaticMustHaveType, KindFunctionMustHaveBody, KindTypeHintRequired,
		KindUnsupportedABI, KindUnknownIntrinsic, KindDuplicateAttribute, KindInvalidAttribute,
		KindAlignAndPacked, KindNoFreeStandingImpl, KindCannotBeATest, KindCannotBeALangItem,
		KindMultipleMainFunctions, KindNoMainFunction, KindShadowedAssociatedFn, KindSelfConfusion, KindDanglingAlias,
		KindUnknownLint, KindUnpopulatedSymbol, KindCannotReadFile, KindNoSpanInformation,
	}
	for _, k := range kinds {
		_, _, _, _, ok := Info(k)
		assert.Truef(t, ok, "kind %d missing from registry", k)
	}
}

func TestRenderSortsByLocation(t *testing.T) {
	ctx := NewContext(NewFiles())
	ctx.Report(KindUnknownIntrinsic, &Span{File: 1, Line: 10, Column: 1}, "second")
	ctx.Report(KindUnknownIntrinsic, &Span{File: 1, Line: 2, Column: 1}, "first")
	out := ctx.Render()
	require.Contains(t, out, "first")
	require.Contains(t, out, "second")
	assert.Less(t, indexOf(out, "first"), indexOf(out, "second"))
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
