// Package ir is the fully-resolved intermediate representation (spec.md
// §3.5–3.6): a smaller type set with all generics gone, and expressions
// that additionally carry a resolved type, value category, and
// const-expression flag. It is grounded on the teacher's
// internal/core/core.go (CoreNode embedding a stable NodeID and dual
// spans) and internal/typedast/typed_ast.go (nodes carrying resolved
// type information alongside the tree shape), generalized from AILANG's
// single concrete node set to Alumina's AST-mirroring-but-trimmed IR
// node set.
package ir

import (
	"github.com/alumina-lang/aluminac/internal/arenaid"
	"github.com/alumina-lang/aluminac/internal/diag"
)

// Tag distinguishes IR ids from AST ids at the type level (spec.md
// §3.1: "distinct types for AST and IR").
type Tag struct{}

// ID is an opaque id minted from the IR arena.
type ID = arenaid.ID[Tag]

// ValueCategory classifies an IR expression the way spec.md §3.6
// requires: LValue (has an addressable storage location) or RValue
// (a transient value).
type ValueCategory int

const (
	RValue ValueCategory = iota
	LValue
)

func (c ValueCategory) String() string {
	if c == LValue {
		return "lvalue"
	}
	return "rvalue"
}

// Node is the base interface implemented by every IR node.
type Node interface {
	Position() *diag.Span
}

// base is embedded by every concrete IR type node.
type base struct {
	Span *diag.Span
}

func (b base) Position() *diag.Span { return b.Span }

// SetSpan stamps the node with span. Exported so other packages (mono,
// irpass) can attach a span to a freshly lowered node without direct
// field access.
func (b *base) SetSpan(s *diag.Span) { b.Span = s }

// Type is the interface for IR type nodes (spec.md §3.5).
type Type interface {
	Node
	typeNode()
	// InternKey returns a canonical string identifying this type's
	// structural identity, used by the IR arena's type-intern table.
	InternKey() string
}

// exprBase is embedded by every concrete IR expression: in addition to
// a span, it carries the three things spec.md §3.6 says every IR
// expression must carry beyond its AST counterpart.
type exprBase struct {
	base
	ResolvedType Type
	Category     ValueCategory
	ConstExpr    bool
}

// SetExprMeta stamps the shared fields every IR expression carries
// beyond its AST counterpart (spec.md §3.6: resolved type, value
// category, const-expression flag) plus its span. Exported so
// construction sites outside package ir (internal/mono) can fill them
// in after a plain literal construction of the concrete type, the same
// promoted-setter pattern package ast uses for its unexported
// embeddings (SetSpan/SetID).
func (b *exprBase) SetExprMeta(t Type, cat ValueCategory, constExpr bool, span *diag.Span) {
	b.ResolvedType = t
	b.Category = cat
	b.ConstExpr = constExpr
	b.Span = span
}

// Ty returns the expression's resolved type.
func (b exprBase) Ty() Type { return b.ResolvedType }

// ValueCategory returns the expression's value category.
func (b exprBase) ValueCategory() ValueCategory { return b.Category }

// IsConst reports whether the expression is a const-expression.
func (b exprBase) IsConst() bool { return b.ConstExpr }

// Expr is the interface for IR expression nodes.
type Expr interface {
	Node
	Ty() Type
	ValueCategory() ValueCategory
	IsConst() bool
	exprNode()
}

// Stmt is the interface for IR statements: a block owns a sequence of
// these plus a tail expression (spec.md §3.6).
type Stmt interface {
	Node
	stmtNode()
}
