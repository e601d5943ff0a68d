// Package cemit converts monomorphized IR (internal/ir, post
// internal/irpass) into C source text (spec.md §4.4). It is grounded on
// the teacher's internal/ast/print.go: a buffer-based recursive printer
// dispatching on node kind, generalized here from a JSON-tree dumper to
// genuine C text, with the declaration and body halves kept in separate
// buffers and concatenated at the end, matching the "two buffers ...
// concatenated to form a single C translation unit" responsibility.
package cemit

import (
	"strconv"

	"github.com/alumina-lang/aluminac/internal/ir"
)

// Native emits name verbatim: used for extern items, exported items,
// and items carrying an explicit link_name (spec.md §4.4 name scheme).
func Native(name string) string { return name }

// Mangled emits "name_<id>", the default scheme for module-local items:
// monomorphization can produce many instances sharing one Alumina-level
// name (one per type-argument tuple), and the id makes each instance's
// C symbol unique.
func Mangled(name string, id ir.ID) string {
	return name + "_" + strconv.FormatUint(id.Index(), 10)
}

// Id emits an opaque identifier for things with no usable Alumina-level
// name: unnamed locals, and item ids that no emitted item predeclared.
// Synthesized tuple/array/function-pointer typedefs use their own
// tuple_N/array_N/fnptr_N names instead.
func Id(id ir.ID) string {
	return "_a" + strconv.FormatUint(id.Index(), 10)
}

// itemName picks the scheme a function/static/const item's C symbol
// uses: Native for extern items, exported items, and items carrying an
// explicit link_name; Mangled otherwise.
func itemName(name string, id ir.ID, extern, exported bool, linkName string) string {
	if linkName != "" {
		return Native(linkName)
	}
	if extern || exported {
		return Native(name)
	}
	return Mangled(name, id)
}
