// Package diag provides the diagnostic context threaded through every
// compiler pass: a closed ErrorKind enum, severities, spans, and
// colorized rendering. It generalizes the teacher's internal/errors
// (codes.go / report.go / json_encoder.go) from AILANG's phase-prefixed
// string codes to a typed enum matching spec.md §7's closed ErrorKind
// set, while keeping the same per-phase registry-and-lookup shape.
package diag

// ErrorKind is the closed set of diagnostic kinds named in spec.md §7,
// plus the handful spec.md names inline elsewhere (§4.1, §4.2, §9).
type ErrorKind int

const (
	KindUnknown ErrorKind = iota

	// Macro maker / expander (§4.2)
	KindUnknownBuiltinMacro
	KindParamCountMismatch
	KindNotEnoughMacroArguments
	KindConstantStringExpected
	KindCannotEtCeteraHere
	KindEtCeteraInEtCetera
	KindMultipleEtCeteras
	KindNotAMacro
	KindRecursiveMacroCall
	KindMacroExpected
	KindInvalidFormatString // open question, resolved in DESIGN.md

	// Item maker (§4.1)
	KindInvalidTransparent
	KindVarArgsCanOnlyBeExtern
	KindProtocolFnsCannotBeExtern
	KindExternCGenericParams
	KindExternStaticCannotBeGeneric
	KindExternStaticMustHaveType
	KindFunctionMustHaveBody
	KindTypeHintRequired
	KindUnsupportedABI
	KindUnknownIntrinsic
	KindDuplicateAttribute
	KindInvalidAttribute
	KindAlignAndPacked
	KindNoFreeStandingImpl
	KindCannotBeATest
	KindCannotBeALangItem
	KindMultipleMainFunctions
	KindNoMainFunction // no main/test_main candidate and the crate is not a library
	KindShadowedAssociatedFn // warning: duplicate assoc-fn name in an impl group
	KindSelfConfusion        // warning: DynSelf appearing in param/return type
	KindDanglingAlias        // use-path does not resolve to any known item

	// cfg / lints (§4.5)
	KindUnknownLint // (meta-)warning

	// Cross-cutting
	KindUnpopulatedSymbol // internal
	KindCannotReadFile
	KindNoSpanInformation
)

// Severity classifies how a diagnostic is handled, per spec.md §7.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInternal
	// SeverityIgnored is not a "real" severity a kind is ever registered
	// with; it is only reachable via an #[allow(...)] override, and means
	// the diagnostic is dropped rather than rendered.
	SeverityIgnored
)

// kindInfo is the per-kind registry entry, mirroring the teacher's
// ErrorInfo{Code, Phase, Category, Description}.
type kindInfo struct {
	Code        string
	Phase       string
	Severity    Severity
	Description string
}

// kindRegistry is the closed-set source of truth: every ErrorKind must
// appear here exactly once. Tests assert this invariant.
var kindRegistry = map[ErrorKind]kindInfo{
	KindUnknownBuiltinMacro:         {"MAC001", "macro", SeverityError, "Unknown built-in macro"},
	KindParamCountMismatch:          {"MAC002", "macro", SeverityError, "Macro parameter/argument count mismatch"},
	KindNotEnoughMacroArguments:     {"MAC003", "macro", SeverityError, "Not enough arguments for et-cetera macro"},
	KindConstantStringExpected:      {"MAC004", "macro", SeverityError, "A constant string literal was expected"},
	KindCannotEtCeteraHere:          {"MAC005", "macro", SeverityError, "et cetera parameter referenced outside a splice context"},
	KindEtCeteraInEtCetera:          {"MAC006", "macro", SeverityError, "Nested et-cetera splice"},
	KindMultipleEtCeteras:           {"MAC007", "macro", SeverityError, "More than one et-cetera parameter declared"},
	KindNotAMacro:                   {"MAC008", "macro", SeverityError, "Invocation target does not resolve to a macro"},
	KindRecursiveMacroCall:          {"MAC009", "macro", SeverityError, "Macro invoked recursively before its cell was populated"},
	KindMacroExpected:               {"MAC010", "macro", SeverityError, "Expected a macro reference"},
	KindInvalidFormatString:         {"MAC011", "macro", SeverityError, "format_args! format string references an out-of-range argument"},
	KindInvalidTransparent:          {"ITM001", "itemmaker", SeverityError, "transparent requires exactly one field"},
	KindVarArgsCanOnlyBeExtern:      {"ITM002", "itemmaker", SeverityError, "Variadic parameters are only allowed on extern functions"},
	KindProtocolFnsCannotBeExtern:   {"ITM003", "itemmaker", SeverityError, "A function declared inside a protocol may not be extern"},
	KindExternCGenericParams:        {"ITM004", "itemmaker", SeverityError, "extern functions may not have generic parameters"},
	KindExternStaticCannotBeGeneric: {"ITM005", "itemmaker", SeverityError, "extern statics may not be generic"},
	KindExternStaticMustHaveType:    {"ITM006", "itemmaker", SeverityError, "extern statics must have an explicit type"},
	KindFunctionMustHaveBody:        {"ITM007", "itemmaker", SeverityError, "Non-extern, non-intrinsic function must have a body"},
	KindTypeHintRequired:            {"ITM008", "itemmaker", SeverityError, "A type hint is required here"},
	KindUnsupportedABI:              {"ITM009", "itemmaker", SeverityError, "Unsupported ABI"},
	KindUnknownIntrinsic:            {"ITM010", "itemmaker", SeverityError, "Unrecognized intrinsic name"},
	KindDuplicateAttribute:          {"ITM011", "itemmaker", SeverityError, "Duplicate attribute"},
	KindInvalidAttribute:            {"ITM012", "itemmaker", SeverityError, "Invalid attribute"},
	KindAlignAndPacked:              {"ITM013", "itemmaker", SeverityError, "align and packed are mutually exclusive"},
	KindNoFreeStandingImpl:          {"ITM014", "itemmaker", SeverityError, "impl block has no accompanying type"},
	KindCannotBeATest:               {"ITM015", "itemmaker", SeverityError, "Item cannot be marked as a test"},
	KindCannotBeALangItem:           {"ITM016", "itemmaker", SeverityError, "Item cannot be a lang item"},
	KindMultipleMainFunctions:       {"ITM017", "itemmaker", SeverityError, "Multiple main/test_main candidates"},
	KindNoMainFunction:              {"ITM021", "itemmaker", SeverityError, "No main function found"},
	KindShadowedAssociatedFn:        {"ITM018", "itemmaker", SeverityWarning, "Associated function name shadows a sibling impl's"},
	KindSelfConfusion:               {"ITM019", "itemmaker", SeverityWarning, "DynSelf used directly in parameter or return type"},
	KindDanglingAlias:               {"ITM020", "itemmaker", SeverityError, "use-path does not resolve to any known item"},
	KindUnknownLint:                 {"CFG001", "cfg", SeverityWarning, "Unknown lint name"},
	KindUnpopulatedSymbol:           {"INT001", "internal", SeverityInternal, "Item cell read before being populated"},
	KindCannotReadFile:              {"IO001", "io", SeverityError, "Could not read file"},
	KindNoSpanInformation:           {"INT002", "internal", SeverityError, "No span information available"},
}

// Info returns the registry entry for kind, or the zero kindInfo and
// false if kind is not a member of the closed set.
func Info(kind ErrorKind) (code, phase string, severity Severity, description string, ok bool) {
	info, ok := kindRegistry[kind]
	if !ok {
		return "", "", 0, "", false
	}
	return info.Code, info.Phase, info.Severity, info.Description, true
}

// DefaultSeverity returns the severity a kind carries absent any
// allow/warn/deny override (§4.5).
func DefaultSeverity(kind ErrorKind) Severity {
	if info, ok := kindRegistry[kind]; ok {
		return info.Severity
	}
	return SeverityError
}
