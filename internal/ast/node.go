// Package ast is the high-level AST data model (spec.md §3.3–3.4): items,
// types, expressions, statements, arena-interned and addressed by opaque
// ids so that mutually-recursive items form a cyclic graph without owning
// references. Its Node/Expr/Stmt/Type interface shape is kept from the
// teacher's internal/ast/ast.go; the concrete node set is replaced to
// model Alumina instead of AILANG.
package ast

import "github.com/alumina-lang/aluminac/internal/diag"

// Tag distinguishes AST ids from IR ids at the type level (spec.md §3.1:
// "distinct types for AST and IR").
type Tag struct{}

// Node is the base interface implemented by every AST node.
type Node interface {
	// Position returns the node's source span, or nil for synthetic
	// nodes that never had one (spec.md §3.4: spans are optional).
	Position() *diag.Span
}

// base is embedded by every concrete node to provide Position().
type base struct {
	Span *diag.Span
}

func (b base) Position() *diag.Span { return b.Span }

// SetSpan stamps the node with span. Exported so other packages
// (macro, itemmaker) can re-stamp freshly synthesized nodes with an
// invocation or synthesis site span without needing direct field
// access to the unexported base struct.
func (b *base) SetSpan(s *diag.Span) { b.Span = s }

// Expr is the interface for expression nodes (spec.md §3.4).
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement nodes: let-declarations or
// expression statements (spec.md §3.4).
type Stmt interface {
	Node
	stmtNode()
}

// Type is the interface for type nodes (spec.md §3.3).
type Type interface {
	Node
	typeNode()
	// InternKey returns a canonical string identifying this type's
	// structural identity, used by the arena's type-intern table (spec.md
	// §3.1: structurally-equal types share the same interned address).
	InternKey() string
}
