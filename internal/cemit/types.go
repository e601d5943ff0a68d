package cemit

import (
	"fmt"
	"strings"

	"github.com/alumina-lang/aluminac/internal/ir"
)

var builtinCNames = map[ir.BuiltinKind]string{
	ir.Bool:  "bool",
	ir.Void:  "void",
	ir.Never: "void",
	ir.I8:    "int8_t", ir.I16: "int16_t", ir.I32: "int32_t", ir.I64: "int64_t",
	ir.I128: "__int128", ir.ISize: "intptr_t",
	ir.U8: "uint8_t", ir.U16: "uint16_t", ir.U32: "uint32_t", ir.U64: "uint64_t",
	ir.U128: "unsigned __int128", ir.USize: "uintptr_t",
	ir.F32: "float", ir.F64: "double",
}

// typeName returns the C spelling of t, synthesizing and registering a
// tuple/struct typedef declaration the first time an anonymous
// composite type (spec.md §3.5's TupleType — C has no native tuple) is
// seen.
func (em *Emitter) typeName(t ir.Type) string {
	switch v := t.(type) {
	case nil:
		return "void"
	case *ir.BuiltinType:
		return builtinCNames[v.Kind]
	case *ir.ItemType:
		return em.itemTypeName(v.Item)
	case *ir.PointerType:
		return em.typeName(v.Inner) + " *"
	case *ir.ArrayType:
		// Fixed-length arrays are always spelled through a synthesized
		// typedef name from registerArray.
		return em.registerArray(v)
	case *ir.TupleType:
		return em.registerTuple(v)
	case *ir.FnPointerType:
		return em.fnPointerName(v)
	default:
		return "void"
	}
}

func (em *Emitter) itemTypeName(id ir.ID) string {
	if name, ok := em.itemNames[id]; ok {
		return name
	}
	// Emit predeclares every item it is given, so this is only reached
	// for an id outside the emitted item list: mint and cache an opaque
	// name so every reference to it agrees. No body is emitted for it.
	name := Id(id)
	em.itemNames[id] = name
	return name
}

// registerTuple interns t by structural identity and returns its C
// struct-typedef name, emitting the typedef declaration the first time
// this structural shape is seen.
func (em *Emitter) registerTuple(t *ir.TupleType) string {
	key := t.InternKey()
	if name, ok := em.tupleNames[key]; ok {
		return name
	}
	id := em.nextSynthID()
	name := "tuple_" + fmt.Sprint(id)
	em.tupleNames[key] = name

	var b strings.Builder
	fmt.Fprintf(&b, "typedef struct {\n")
	for i, elem := range t.Elems {
		fmt.Fprintf(&b, "\t%s _%d;\n", em.typeName(elem), i)
	}
	fmt.Fprintf(&b, "} %s;\n", name)
	em.decls.WriteString(b.String())
	return name
}

func (em *Emitter) registerArray(t *ir.ArrayType) string {
	key := t.InternKey()
	if name, ok := em.tupleNames[key]; ok {
		return name
	}
	id := em.nextSynthID()
	name := "array_" + fmt.Sprint(id)
	em.tupleNames[key] = name
	fmt.Fprintf(&em.decls, "typedef %s %s[%d];\n", em.typeName(t.Inner), name, t.Len)
	return name
}

func (em *Emitter) fnPointerName(t *ir.FnPointerType) string {
	key := t.InternKey()
	if name, ok := em.tupleNames[key]; ok {
		return name
	}
	id := em.nextSynthID()
	name := "fnptr_" + fmt.Sprint(id)
	em.tupleNames[key] = name
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = em.typeName(p)
	}
	if len(params) == 0 {
		params = []string{"void"}
	}
	fmt.Fprintf(&em.decls, "typedef %s (*%s)(%s);\n", em.typeName(t.Ret), name, strings.Join(params, ", "))
	return name
}

func (em *Emitter) nextSynthID() int {
	em.synthCounter++
	return em.synthCounter
}
