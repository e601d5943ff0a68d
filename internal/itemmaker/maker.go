package itemmaker

import (
	"github.com/alumina-lang/aluminac/internal/arenaid"
	"github.com/alumina-lang/aluminac/internal/ast"
	"github.com/alumina-lang/aluminac/internal/cfgdsl"
	"github.com/alumina-lang/aluminac/internal/diag"
)

// knownIntrinsics is the closed set of recognized intrinsic names
// (spec.md §4.1: "intrinsic ABI requires a recognized intrinsic name").
// The exact member list is implementation-defined; this is the
// conservative core set every backend needs regardless of target.
var knownIntrinsics = map[string]bool{
	"size_of": true, "align_of": true, "type_id": true,
	"mem_copy": true, "mem_move": true, "mem_set": true,
	"volatile_read": true, "volatile_write": true,
	"unreachable": true, "breakpoint": true, "trap": true,
}

// stampable is satisfied by every *ast.XxxItem via its embedded
// itemBase/base's promoted SetID/SetSpan; stamp lets buildXxx helpers
// construct an item with a plain literal and attach its id/span in one
// step without needing access to ast's unexported embedding fields.
type stampable interface {
	SetID(ast.ID)
	SetSpan(*diag.Span)
}

func stamp[T stampable](item T, id ast.ID, span *diag.Span) T {
	item.SetID(id)
	item.SetSpan(span)
	return item
}

// Maker walks a pre-built Scope tree and materializes AST item cells
// per spec.md §4.1.
type Maker struct {
	arena  *arenaid.Arena[ast.Tag]
	ctx    *diag.Context
	flags  *cfgdsl.Flags
	items  map[ast.ID]ast.Item
	byName map[string]ast.ID

	// DynSelfItem is the item id naming the `DynSelf` lang item, used by
	// the SelfConfusion check. The zero value disables the check.
	DynSelfItem ast.ID

	mainCandidate     ast.ID
	testMainCandidate ast.ID
	mainSpan          *diag.Span
	testMainSpan      *diag.Span
}

// NewMaker creates an item maker sharing arena with the rest of the
// pipeline, so ids it mints never collide with ids already present in
// the scope tree it consumes.
func NewMaker(arena *arenaid.Arena[ast.Tag], ctx *diag.Context, flags *cfgdsl.Flags) *Maker {
	return &Maker{
		arena:  arena,
		ctx:    ctx,
		flags:  flags,
		items:  map[ast.ID]ast.Item{},
		byName: map[string]ast.ID{},
	}
}

// Items returns every item cell materialized so far.
func (m *Maker) Items() map[ast.ID]ast.Item { return m.items }

// Build walks scope, materializing an ast.Item per named group. isMain
// selects whether this scope's `main`/`test_main` candidate is tracked
// (spec.md §4.1 "Main detection"); it is true only for the designated
// main module.
func (m *Maker) Build(scope *Scope, isMain bool) {
	for name, group := range scope.Groups {
		m.buildGroup(scope, name, group, isMain)
	}
}

func (m *Maker) buildGroup(scope *Scope, name string, g *NamedItem, isMain bool) {
	name = normalizeName(name)
	switch g.Kind {
	case GroupAlias:
		m.buildAlias(scope, name, g)
	case GroupModule:
		if g.Inner != nil {
			m.Build(g.Inner, false)
		}
	case GroupImpl:
		m.ctx.Report(diag.KindNoFreeStandingImpl, g.Span, "impl block for %q has no accompanying type", name)
	case GroupType:
		m.buildType(scope, name, g)
	case GroupTypeDef:
		m.buildTypeAlias(name, g)
	case GroupProtocol:
		m.buildProtocol(name, g)
	case GroupStatic:
		m.buildStatic(name, g)
	case GroupConst:
		m.buildConst(name, g)
	case GroupMacro:
		m.buildMacro(name, g)
	case GroupBuiltinMacro:
		m.buildBuiltinMacro(name, g)
	case GroupFunction:
		m.buildFunction(scope, name, g, isMain)
	}
}

func (m *Maker) buildAlias(scope *Scope, name string, g *NamedItem) {
	if g.ResolvedTarget == nil {
		if _, ok := scope.lookupName(g.UsePath); !ok {
			m.ctx.Report(diag.KindDanglingAlias, g.Span, "use-path %q does not resolve to any known item", g.UsePath)
			return
		}
	}
	id := m.arena.NewID()
	m.items[id] = stamp(&ast.TypeAliasItem{Name: name, Target: g.ResolvedTarget}, id, g.Span)
	m.byName[name] = id
}

// collectPlaceholders builds Placeholder{id, default, bounds, span} for
// each declared generic parameter, resolving defaults in the parent
// scope and bounds in the local scope (spec.md §4.1 "Placeholder
// collection") — the caller is responsible for handing this PlaceholderDecl
// already carrying Default/Bounds resolved in the right scope, since
// name resolution itself is out of spec scope.
func (m *Maker) collectPlaceholders(decls []PlaceholderDecl) []*ast.Placeholder {
	out := make([]*ast.Placeholder, len(decls))
	for i, d := range decls {
		out[i] = &ast.Placeholder{
			ID:      m.arena.NewID(),
			Name:    d.Name,
			Default: d.Default,
			Bounds:  d.Bounds,
			Span:    d.Span,
		}
	}
	return out
}

func (m *Maker) buildType(scope *Scope, name string, g *NamedItem) {
	attrs := g.Attrs
	if attrs != nil && attrs.Has(cfgdsl.KindTransparent) && len(g.Fields) != 1 {
		m.ctx.Report(diag.KindInvalidTransparent, g.Span, "transparent requires exactly one field, %q has %d", name, len(g.Fields))
	}

	id := m.arena.NewID()
	placeholders := m.collectPlaceholders(g.Placeholders)

	assocFns := map[string]ast.ID{}
	var mixins []ast.ID
	seenFn := map[string]bool{}

	for _, impl := range g.Impls {
		// The type's own placeholders and the ambient placeholders this
		// impl introduces are prepended to each associated function's
		// own (spec.md §4.1); buildFunction mints fresh ids for all of
		// them. Mixins are recorded as bare item references and carry no
		// placeholders.
		for _, fn := range impl.AssocFns {
			fn.Placeholders = append(append(append([]PlaceholderDecl{}, g.Placeholders...), impl.AmbientPlaceholders...), fn.Placeholders...)
			if seenFn[fn.Name] {
				m.ctx.Report(diag.KindShadowedAssociatedFn, fn.Span, "associated function %q shadows a sibling impl's", fn.Name)
			}
			seenFn[fn.Name] = true
			fnID := m.buildFunction(scope, fn.Name, fn, false)
			if fnID.Valid() {
				assocFns[fn.Name] = fnID
			}
		}
		for _, mix := range impl.Mixins {
			if nr, ok := mix.(*ast.NamedRef); ok {
				mixins = append(mixins, nr.Item)
			}
		}
	}

	if g.Variants != nil {
		m.items[id] = stamp(&ast.EnumItem{
			Name:           name,
			Variants:       g.Variants,
			Placeholders:   placeholders,
			AssocFns:       assocFns,
			Mixins:         mixins,
			UnderlyingType: g.UnderlyingType,
		}, id, g.Span)
	} else {
		transparent := attrs != nil && attrs.Has(cfgdsl.KindTransparent) && len(g.Fields) == 1
		m.items[id] = stamp(&ast.StructLikeItem{
			Name:         name,
			Fields:       g.Fields,
			Placeholders: placeholders,
			AssocFns:     assocFns,
			Mixins:       mixins,
			Transparent:  transparent,
		}, id, g.Span)
	}
	m.byName[name] = id
}

func (m *Maker) buildTypeAlias(name string, g *NamedItem) {
	id := m.arena.NewID()
	m.items[id] = stamp(&ast.TypeAliasItem{
		Name:         name,
		Placeholders: m.collectPlaceholders(g.Placeholders),
		Target:       g.AliasTarget,
	}, id, g.Span)
	m.byName[name] = id
}

func (m *Maker) buildProtocol(name string, g *NamedItem) {
	id := m.arena.NewID()
	m.items[id] = stamp(&ast.ProtocolItem{
		Name:         name,
		Placeholders: m.collectPlaceholders(g.Placeholders),
		RequiredFns:  g.RequiredFns,
		SuperBounds:  g.SuperBounds,
	}, id, g.Span)
	m.byName[name] = id
}

func (m *Maker) buildStatic(name string, g *NamedItem) {
	if g.Extern {
		if g.Init != nil || g.Ty == nil {
			m.ctx.Report(diag.KindExternStaticMustHaveType, g.Span, "extern static %q must have an explicit type and no initializer", name)
			return
		}
		if len(g.Placeholders) > 0 {
			m.ctx.Report(diag.KindExternStaticCannotBeGeneric, g.Span, "extern static %q may not be generic", name)
			return
		}
	}
	id := m.arena.NewID()
	m.items[id] = stamp(&ast.StaticItem{Name: name, Ty: g.Ty, Init: g.Init, Extern: g.Extern}, id, g.Span)
	m.byName[name] = id
}

func (m *Maker) buildConst(name string, g *NamedItem) {
	id := m.arena.NewID()
	m.items[id] = stamp(&ast.ConstItem{Name: name, Ty: g.Ty, Value: g.Init}, id, g.Span)
	m.byName[name] = id
}

func (m *Maker) buildMacro(name string, g *NamedItem) {
	id := m.arena.NewID()
	seenEtc := false
	for _, p := range g.MacroParams {
		if !p.EtCetera {
			continue
		}
		if seenEtc {
			m.ctx.Report(diag.KindMultipleEtCeteras, g.Span, "macro %q declares more than one et-cetera parameter", name)
			break
		}
		seenEtc = true
	}
	m.items[id] = stamp(&ast.MacroItem{Name: name, Params: g.MacroParams, Body: g.MacroBody}, id, g.Span)
	m.byName[name] = id
}

func (m *Maker) buildBuiltinMacro(name string, g *NamedItem) {
	id := m.arena.NewID()
	m.items[id] = stamp(&ast.BuiltinMacroItem{Name: name, Kind: g.BuiltinKind}, id, g.Span)
	m.byName[name] = id
}

// buildFunction materializes a Function/Intrinsic item and returns its
// id, or the zero id on validation failure. isMain drives main
// detection (spec.md §4.1 "Main detection").
func (m *Maker) buildFunction(scope *Scope, name string, g *NamedItem, isMain bool) ast.ID {
	if g.InProtocol && g.Extern {
		m.ctx.Report(diag.KindProtocolFnsCannotBeExtern, g.Span, "function %q inside a protocol may not be extern", name)
		return ast.ID{}
	}
	if g.VarArgs && !g.Extern {
		m.ctx.Report(diag.KindVarArgsCanOnlyBeExtern, g.Span, "variadic parameters on %q are only allowed on extern functions", name)
		return ast.ID{}
	}
	if g.Extern && len(g.Placeholders) > 0 {
		m.ctx.Report(diag.KindExternCGenericParams, g.Span, "extern function %q may not have generic parameters", name)
		return ast.ID{}
	}
	if g.ABI == "intrinsic" {
		return m.buildIntrinsic(name, g)
	}
	if g.ABI != "" && g.ABI != "C" {
		m.ctx.Report(diag.KindUnsupportedABI, g.Span, "unsupported ABI %q on %q", g.ABI, name)
		return ast.ID{}
	}
	if !g.Extern && g.Body == nil {
		m.ctx.Report(diag.KindFunctionMustHaveBody, g.Span, "function %q must have a body", name)
		return ast.ID{}
	}

	m.checkSelfConfusion(g)

	id := m.arena.NewID()
	fn := stamp(&ast.FunctionItem{
		Name:         name,
		Placeholders: m.collectPlaceholders(g.Placeholders),
		Params:       g.Params,
		VarArgs:      g.VarArgs,
		ReturnType:   g.ReturnType,
		Body:         g.Body,
		Extern:       g.Extern,
		ABI:          g.ABI,
	}, id, g.Span)
	applyFnAttrs(fn, g.Attrs)
	m.items[id] = fn
	m.byName[name] = id

	_ = scope
	m.recordMainCandidate(name, g, fn, id, isMain)
	return id
}

// applyFnAttrs copies the validated attribute subset internal/cemit
// needs from attrs onto fn. Called once per function group, after
// attribute validation (cfgdsl.Set.Add) has already run on attrs.
func applyFnAttrs(fn *ast.FunctionItem, attrs *cfgdsl.Set) {
	if attrs == nil {
		return
	}
	fn.AlwaysInline = attrs.Has(cfgdsl.KindInlineAlways)
	fn.NeverInline = attrs.Has(cfgdsl.KindInlineNever)
	fn.Cold = attrs.Has(cfgdsl.KindCold)
	fn.NoReturn = attrs.Has(cfgdsl.KindNoReturn)
	fn.Exported = attrs.Has(cfgdsl.KindExport)
	if a, ok := attrs.Get(cfgdsl.KindLinkName); ok {
		fn.LinkName = a.LinkName
	}
}

func (m *Maker) buildIntrinsic(name string, g *NamedItem) ast.ID {
	if !knownIntrinsics[name] {
		m.ctx.Report(diag.KindUnknownIntrinsic, g.Span, "%q is not a recognized intrinsic", name)
		return ast.ID{}
	}
	id := m.arena.NewID()
	m.items[id] = stamp(&ast.IntrinsicItem{
		Name:          name,
		IntrinsicName: name,
		Placeholders:  m.collectPlaceholders(g.Placeholders),
		Params:        g.Params,
		ReturnType:    g.ReturnType,
	}, id, g.Span)
	m.byName[name] = id
	return id
}

// checkSelfConfusion reports a warning when DynSelf appears directly in
// a parameter or return type, ignoring a single pointer wrapper (spec.md
// §4.1). "Directly" means: the type itself, or a PointerType whose
// Inner is the type — any deeper nesting (e.g. &&DynSelf, [DynSelf; 1])
// does not trigger it.
func (m *Maker) checkSelfConfusion(g *NamedItem) {
	if !m.DynSelfItem.Valid() {
		return
	}
	isDynSelf := func(t ast.Type) bool {
		nr, ok := t.(*ast.NamedRef)
		return ok && nr.Item == m.DynSelfItem
	}
	directlyOrPointerWrapped := func(t ast.Type) bool {
		if t == nil {
			return false
		}
		if isDynSelf(t) {
			return true
		}
		if p, ok := t.(*ast.PointerType); ok {
			return isDynSelf(p.Inner)
		}
		return false
	}
	for _, p := range g.Params {
		if directlyOrPointerWrapped(p.Ty) {
			m.ctx.Report(diag.KindSelfConfusion, g.Span, "DynSelf used directly in parameter %q", p.Name)
		}
	}
	if directlyOrPointerWrapped(g.ReturnType) {
		m.ctx.Report(diag.KindSelfConfusion, g.Span, "DynSelf used directly in return type")
	}
}

func (m *Maker) recordMainCandidate(name string, g *NamedItem, fn *ast.FunctionItem, id ast.ID, isMain bool) {
	if !isMain {
		return
	}
	attrs := g.Attrs
	testMode := m.flags != nil && m.flags.HasBool("test")

	if testMode {
		if attrs != nil && attrs.Has(cfgdsl.KindTestMain) {
			if m.testMainCandidate.Valid() {
				m.ctx.Report(diag.KindMultipleMainFunctions, g.Span, "multiple test_main candidates")
				return
			}
			m.testMainCandidate = id
			m.testMainSpan = g.Span
			fn.IsTestMain = true
		}
		return
	}

	if name != "main" || g.Extern {
		return
	}
	if attrs != nil && (attrs.Has(cfgdsl.KindLinkName) || attrs.Has(cfgdsl.KindExport)) {
		return
	}
	if m.mainCandidate.Valid() {
		m.ctx.Report(diag.KindMultipleMainFunctions, g.Span, "multiple main candidates")
		return
	}
	m.mainCandidate = id
	m.mainSpan = g.Span
	fn.IsMain = true
}

// MainCandidate returns the designated entry-point item id for the
// active configuration (plain `main`, or `test_main` under `test`), and
// whether one was found.
func (m *Maker) MainCandidate() (ast.ID, bool) {
	if m.flags != nil && m.flags.HasBool("test") {
		return m.testMainCandidate, m.testMainCandidate.Valid()
	}
	return m.mainCandidate, m.mainCandidate.Valid()
}
