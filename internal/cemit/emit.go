package cemit

import (
	"strconv"
	"strings"

	"github.com/alumina-lang/aluminac/internal/diag"
	"github.com/alumina-lang/aluminac/internal/ir"
	"github.com/alumina-lang/aluminac/internal/irpass"
)

// Emitter converts a monomorphized, DCE'd item set into one C
// translation unit (spec.md §4.4): a declarations buffer and a bodies
// buffer, concatenated at the end.
type Emitter struct {
	decls  strings.Builder
	bodies strings.Builder

	itemNames  map[ir.ID]string
	tupleNames map[string]string // InternKey -> synthesized typedef name

	synthCounter int
	plan         *irpass.ElisionPlan
	lookup       func(ir.ID) ir.ItemShape

	debug     bool
	files     *diag.Files
	indent    int
	lastSpans map[diag.FileID]int // per-file line bookkeeping; no emission path reads or writes it
	curFile   diag.FileID
}

// Options configures one Emit run.
type Options struct {
	// Debug suppresses indentation in the emitted C. The emitter writes
	// no #line directives: node spans are not consulted during emission.
	Debug bool
	Files *diag.Files
}

// New creates an Emitter for items, using plan to decide zero-sized
// parameter/return elision and lookup to resolve ItemType ids back to
// their shape (both normally sourced from an internal/mono.Monomorphizer
// run and an internal/irpass.ComputeElisionPlan call over its output).
func New(plan *irpass.ElisionPlan, lookup func(ir.ID) ir.ItemShape, opts Options) *Emitter {
	return &Emitter{
		itemNames:  map[ir.ID]string{},
		tupleNames: map[string]string{},
		plan:       plan,
		lookup:     lookup,
		debug:      opts.Debug,
		files:      opts.Files,
		lastSpans:  map[diag.FileID]int{},
	}
}

// Emit writes declarations then bodies for every item, in the order
// given (normally internal/mono.Monomorphizer.Items' first-requested
// order, so every forward reference a later item makes has already had
// its name minted). Returns the concatenated C translation unit.
func (em *Emitter) Emit(items []ir.Item) string {
	for _, it := range items {
		em.predeclare(it)
	}
	for _, it := range items {
		em.emitItem(it)
	}
	return em.decls.String() + em.bodies.String()
}

// predeclare mints every item's C name up front so mutually-recursive
// items (a struct containing a pointer to a struct defined later) can
// reference each other regardless of emission order.
func (em *Emitter) predeclare(it ir.Item) {
	switch v := it.(type) {
	case *ir.StructItem:
		em.itemNames[v.ItemID()] = Mangled(v.Name, v.ItemID())
	case *ir.EnumItem:
		em.itemNames[v.ItemID()] = Mangled(v.Name, v.ItemID())
	case *ir.FunctionItem:
		em.itemNames[v.ItemID()] = itemName(v.Name, v.ItemID(), v.Extern, v.Exported, v.LinkName)
	case *ir.IntrinsicItem:
		em.itemNames[v.ItemID()] = itemName(v.Name, v.ItemID(), false, false, "")
	case *ir.StaticItem:
		em.itemNames[v.ItemID()] = itemName(v.Name, v.ItemID(), v.Extern, false, "")
	case *ir.ConstItem:
		em.itemNames[v.ItemID()] = Mangled(v.Name, v.ItemID())
	}
}

func (em *Emitter) emitItem(it ir.Item) {
	switch v := it.(type) {
	case *ir.StructItem:
		em.emitStruct(v)
	case *ir.EnumItem:
		em.emitEnum(v)
	case *ir.FunctionItem:
		em.emitFunction(v)
	case *ir.IntrinsicItem:
		em.emitIntrinsic(v)
	case *ir.StaticItem:
		em.emitStatic(v)
	case *ir.ConstItem:
		em.emitConst(v)
	}
}

func (em *Emitter) emitStruct(v *ir.StructItem) {
	name := em.itemNames[v.ItemID()]
	em.decls.WriteString("typedef struct " + name + " " + name + ";\n")
	em.decls.WriteString("struct " + name + " {\n")
	for i, f := range v.Fields {
		if ir.IsZeroSized(f.Ty, em.lookup) {
			continue
		}
		fname := f.Name
		if fname == "" {
			fname = "_" + strconv.Itoa(i)
		}
		em.decls.WriteString("\t" + em.typeName(f.Ty) + " " + fname + ";\n")
	}
	em.decls.WriteString("};\n")
}

// emitEnum lowers a tagged-union enum to a struct of (tag, payload
// union) when any variant carries a payload, or, when every variant is
// a bare discriminant, a typedef of the underlying integer type plus
// one #define constant per variant.
func (em *Emitter) emitEnum(v *ir.EnumItem) {
	name := em.itemNames[v.ItemID()]
	hasPayload := false
	for _, variant := range v.Variants {
		if variant.Ty != nil && !ir.IsZeroSized(variant.Ty, em.lookup) {
			hasPayload = true
			break
		}
	}
	underlying := "int"
	if v.UnderlyingType != nil {
		underlying = em.typeName(v.UnderlyingType)
	}
	if !hasPayload {
		em.decls.WriteString("typedef " + underlying + " " + name + ";\n")
		for _, variant := range v.Variants {
			em.decls.WriteString("#define " + name + "_" + variant.Name + " ((" + name + ")" + strconv.FormatInt(variant.Value, 10) + ")\n")
		}
		return
	}
	em.decls.WriteString("typedef struct " + name + " " + name + ";\n")
	em.decls.WriteString("struct " + name + " {\n")
	em.decls.WriteString("\t" + underlying + " tag;\n")
	em.decls.WriteString("\tunion {\n")
	for _, variant := range v.Variants {
		if variant.Ty == nil || ir.IsZeroSized(variant.Ty, em.lookup) {
			continue
		}
		em.decls.WriteString("\t\t" + em.typeName(variant.Ty) + " " + variant.Name + ";\n")
	}
	em.decls.WriteString("\t} payload;\n")
	em.decls.WriteString("};\n")
}

func (em *Emitter) emitStatic(v *ir.StaticItem) {
	if ir.IsZeroSized(v.Ty, em.lookup) {
		return
	}
	name := em.itemNames[v.ItemID()]
	prefix := ""
	if v.Extern {
		prefix = "extern "
		em.decls.WriteString(prefix + em.typeName(v.Ty) + " " + name + ";\n")
		return
	}
	decl := em.typeName(v.Ty) + " " + name
	if v.Init != nil {
		decl += " = " + em.exprAsValue(v.Init, true)
	}
	em.decls.WriteString(decl + ";\n")
}

func (em *Emitter) emitConst(v *ir.ConstItem) {
	if ir.IsZeroSized(v.Ty, em.lookup) {
		return
	}
	name := em.itemNames[v.ItemID()]
	em.decls.WriteString("static const " + em.typeName(v.Ty) + " " + name + " = " + em.exprAsValue(v.Value, true) + ";\n")
}
