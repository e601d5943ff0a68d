package ast

import "github.com/alumina-lang/aluminac/internal/diag"

// LetStmt is a let-declaration (spec.md §3.4). ID is minted fresh by the
// item maker / macro expander each time the declaration is encountered,
// so that macro expansion's α-renaming (spec.md §4.2) can mint a new ID
// per expansion while Name stays the same for diagnostics.
type LetStmt struct {
	base
	Name  string
	ID    ID
	Ty    Type // optional type annotation
	Value Expr // optional initializer
}

func (s *LetStmt) stmtNode() {}

// ExprStmt is an expression evaluated for effect.
type ExprStmt struct {
	base
	Expr Expr
}

func (s *ExprStmt) stmtNode() {}

// Param is a function/closure parameter.
type Param struct {
	Name string
	ID   ID
	Ty   Type
	Span *diag.Span
}
