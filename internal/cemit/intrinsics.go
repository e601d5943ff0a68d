package cemit

import (
	"strings"

	"github.com/alumina-lang/aluminac/internal/ir"
)

// emitIntrinsic writes an intrinsic item's C definition, one of the
// closed set spec.md §4.4 lists. Const-evaluation-only kinds
// (ConstPanic/ConstAlloc/ConstWrite/ConstFree) share the single
// IntrinsicConstOnlySentinel kind; internal/mono never assigns it, and
// if one does reach emission its body is __builtin_trap() and no
// diagnostic is reported.
func (em *Emitter) emitIntrinsic(v *ir.IntrinsicItem) {
	name := em.itemNames[v.ItemID()]
	sig := em.intrinsicSignature(name, v)
	em.decls.WriteString("static " + sig + ";\n")
	em.bodies.WriteString("static " + sig + " {\n")
	em.indent++
	em.writeIndent(&em.bodies)
	em.bodies.WriteString(em.intrinsicBody(v) + "\n")
	em.indent--
	em.bodies.WriteString("}\n\n")
}

func (em *Emitter) intrinsicSignature(name string, v *ir.IntrinsicItem) string {
	ret := "void"
	if v.ReturnType != nil && !ir.IsZeroSized(v.ReturnType, em.lookup) {
		ret = em.typeName(v.ReturnType)
	}
	var params []string
	for _, p := range v.Params {
		if ir.IsZeroSized(p.Ty, em.lookup) {
			continue
		}
		params = append(params, em.typeName(p.Ty)+" "+em.localName(p.ID, p.Name))
	}
	if len(params) == 0 {
		params = []string{"void"}
	}
	return ret + " " + name + "(" + strings.Join(params, ", ") + ")"
}

func (em *Emitter) intrinsicBody(v *ir.IntrinsicItem) string {
	switch v.Kind {
	case ir.IntrinsicSizeOf:
		return "return sizeof(" + em.typeOrFirstParam(v) + ");"
	case ir.IntrinsicAlignOf:
		return "return _Alignof(" + em.typeOrFirstParam(v) + ");"
	case ir.IntrinsicCFunction:
		return em.cFunctionForward(v)
	case ir.IntrinsicConstExpr:
		if v.CExpr != "" {
			return "return " + v.CExpr + ";"
		}
		return "return 0;"
	case ir.IntrinsicAsm:
		asm := v.CExpr
		if asm == "" {
			asm = v.IntrinsicName
		}
		return "asm volatile(\"" + asm + "\");"
	case ir.IntrinsicUninitialized:
		ty := em.typeOrFirstParam(v)
		return "return __extension__({ " + ty + " __discard; __discard; });"
	case ir.IntrinsicDanglingPointer:
		return "__builtin_unreachable();"
	case ir.IntrinsicConstOnlySentinel:
		// Reaching emission for a const-only sentinel is an internal
		// error (spec.md §4.4); still emit syntactically valid C so a
		// caught bug doesn't also break the C build.
		return "__builtin_trap();"
	default:
		return "return 0;"
	}
}

func (em *Emitter) typeOrFirstParam(v *ir.IntrinsicItem) string {
	if v.TypeArg != nil {
		return em.typeName(v.TypeArg)
	}
	if len(v.Params) > 0 {
		return em.typeName(v.Params[0].Ty)
	}
	return "void"
}

// cFunctionForward forwards to a same-named libc-ish function
// (mem_copy/mem_move/mem_set/volatile_read/volatile_write) by its raw C
// name, since these intrinsics are thin wrappers with no Alumina-level
// body to lower.
func (em *Emitter) cFunctionForward(v *ir.IntrinsicItem) string {
	cName := v.CExpr
	if cName == "" {
		cName = rawCForIntrinsic(v.IntrinsicName)
	}
	var args []string
	for _, p := range v.Params {
		if ir.IsZeroSized(p.Ty, em.lookup) {
			continue
		}
		args = append(args, em.localName(p.ID, p.Name))
	}
	call := cName + "(" + strings.Join(args, ", ") + ")"
	if v.ReturnType != nil && !ir.IsZeroSized(v.ReturnType, em.lookup) {
		return "return " + call + ";"
	}
	return call + ";"
}

var rawCNames = map[string]string{
	"mem_copy":       "memcpy",
	"mem_move":       "memmove",
	"mem_set":        "memset",
	"volatile_read":  "__alumina_volatile_read",
	"volatile_write": "__alumina_volatile_write",
}

func rawCForIntrinsic(name string) string {
	if c, ok := rawCNames[name]; ok {
		return c
	}
	return name
}
