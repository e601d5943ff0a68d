package cemit

import (
	"strconv"
	"strings"

	"github.com/alumina-lang/aluminac/internal/ir"
)

// emitFunction writes a function's C declaration and, unless it's
// extern (no body), its definition (spec.md §4.4 "Function emission
// rules").
func (em *Emitter) emitFunction(v *ir.FunctionItem) {
	name := em.itemNames[v.ItemID()]
	sig := em.signature(name, v)

	if v.Extern {
		em.decls.WriteString(sig + ";\n")
		return
	}

	attrs := em.attributeSuffix(v)
	storage := ""
	if !v.Exported && v.LinkName == "" {
		storage = "static "
	}
	em.decls.WriteString(storage + sig + ";\n")

	em.bodies.WriteString(storage + sig + " " + attrs + "{\n")
	em.indent++
	if hasNeverParam(v.Params) {
		// spec.md §4.4: "A parameter of type never makes the function
		// uncallable: its body is replaced with __builtin_unreachable()."
		em.writeIndent(&em.bodies)
		em.bodies.WriteString("__builtin_unreachable();\n")
	} else if v.Body != nil {
		em.emitFunctionBody(v.Body, v.ReturnType)
	}
	em.indent--
	em.bodies.WriteString("}\n\n")
}

func hasNeverParam(params []ir.Param) bool {
	for _, p := range params {
		if ir.IsUninhabited(p.Ty) {
			return true
		}
	}
	return false
}

// signature renders "retType name(params)", omitting zero-sized
// parameters and collapsing a zero-sized return to void (spec.md
// §4.4's zero-sized elision, symmetric with call-site elision in
// expr.go).
func (em *Emitter) signature(name string, v *ir.FunctionItem) string {
	ret := "void"
	if v.ReturnType != nil && !ir.IsZeroSized(v.ReturnType, em.lookup) {
		ret = em.typeName(v.ReturnType)
	}

	var params []string
	for i, p := range v.Params {
		if em.plan != nil && em.plan.ParamIsElided(v.ItemID(), i) {
			continue
		}
		params = append(params, em.typeName(p.Ty)+" "+em.localName(p.ID, p.Name))
	}
	if v.VarArgs {
		params = append(params, "...")
	}
	if len(params) == 0 {
		params = []string{"void"}
	}

	noreturn := ""
	if v.NoReturn {
		noreturn = "_Noreturn "
	}
	return noreturn + ret + " " + name + "(" + strings.Join(params, ", ") + ")"
}

// attributeSuffix renders the GCC __attribute__((...)) clause for
// always_inline, noinline and cold, prefixed by the bare "inline"
// keyword for always_inline functions. Plain inline and constructor
// attributes are not emitted: ir.FunctionItem carries no field for
// either.
func (em *Emitter) attributeSuffix(v *ir.FunctionItem) string {
	var attrs []string
	if v.AlwaysInline {
		attrs = append(attrs, "always_inline")
	}
	if v.NeverInline {
		attrs = append(attrs, "noinline")
	}
	if v.Cold {
		attrs = append(attrs, "cold")
	}
	var prefix string
	if v.AlwaysInline {
		prefix = "inline "
	}
	if len(attrs) == 0 {
		return prefix
	}
	return prefix + "__attribute__((" + strings.Join(attrs, ", ") + ")) "
}

// localName returns the C spelling for a local/parameter id: the
// source name when non-empty (readability), otherwise a synthesized
// name from its id (anonymous bindings, e.g. a macro-expanded discard).
func (em *Emitter) localName(id ir.ID, name string) string {
	if name != "" {
		return name + "_" + strconv.FormatUint(id.Index(), 10)
	}
	return Id(id)
}
