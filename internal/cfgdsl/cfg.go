// Package cfgdsl implements the cfg(...) boolean configuration DSL and the
// closed attribute enum described in spec.md §4.5. It is grounded on the
// teacher's internal/elaborate validation-pass style (internal/elaborate/
// patterns.go, internal/types/errors.go): a small recursive evaluator plus
// a closed set of validated, diagnosed attribute kinds.
package cfgdsl

import "fmt"

// Flags holds the compilation's cfg flags/values, set via --cfg name[=value]
// (repeatable) and the implicit flags the CLI derives (e.g. "debug",
// "test", "threading").
type Flags struct {
	bools  map[string]bool
	values map[string]map[string]bool
}

// NewFlags creates an empty flag set.
func NewFlags() *Flags {
	return &Flags{bools: make(map[string]bool), values: make(map[string]map[string]bool)}
}

// SetBool marks a bare cfg flag (e.g. "debug") as present.
func (f *Flags) SetBool(name string) { f.bools[name] = true }

// SetValue records a name=value cfg pair.
func (f *Flags) SetValue(name, value string) {
	if f.values[name] == nil {
		f.values[name] = make(map[string]bool)
	}
	f.values[name][value] = true
}

// HasBool reports whether the bare flag name was set.
func (f *Flags) HasBool(name string) bool { return f.bools[name] }

// HasValue reports whether name=value was set.
func (f *Flags) HasValue(name, value string) bool { return f.values[name][value] }

// Expr is a node in the cfg(...) boolean DSL: all(...), any(...), not(...),
// a bare leaf name, or name = "value".
type Expr interface {
	Eval(f *Flags) bool
	String() string
}

// All is a conjunction; an empty All evaluates to true.
type All struct{ Exprs []Expr }

func (a All) Eval(f *Flags) bool {
	for _, e := range a.Exprs {
		if !e.Eval(f) {
			return false
		}
	}
	return true
}
func (a All) String() string { return joinExprs("all", a.Exprs) }

// Any is a disjunction; an empty Any evaluates to false.
type Any struct{ Exprs []Expr }

func (a Any) Eval(f *Flags) bool {
	for _, e := range a.Exprs {
		if e.Eval(f) {
			return true
		}
	}
	return false
}
func (a Any) String() string { return joinExprs("any", a.Exprs) }

// Not negates its operand.
type Not struct{ Expr Expr }

func (n Not) Eval(f *Flags) bool { return !n.Expr.Eval(f) }
func (n Not) String() string     { return fmt.Sprintf("not(%s)", n.Expr) }

// Leaf is a bare flag name, or name = "value" when Value is non-nil.
type Leaf struct {
	Name  string
	Value *string
}

func (l Leaf) Eval(f *Flags) bool {
	if l.Value == nil {
		return f.HasBool(l.Name)
	}
	return f.HasValue(l.Name, *l.Value)
}
func (l Leaf) String() string {
	if l.Value == nil {
		return l.Name
	}
	return fmt.Sprintf("%s = %q", l.Name, *l.Value)
}

func joinExprs(op string, exprs []Expr) string {
	s := op + "("
	for i, e := range exprs {
		if i > 0 {
			s += ", "
		}
		s += e.String()
	}
	return s + ")"
}
