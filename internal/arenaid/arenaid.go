// Package arenaid provides the id/arena/interning primitives shared by the
// AST and IR data models: opaque per-arena ids, write-once item cells, and
// structural type interning.
//
// Two arena contexts exist in the compiler (AST and IR); ids minted from
// one are not comparable to ids minted from the other because ID is
// parameterized by a phantom tag type. This mirrors the stable-id scheme
// in the teacher's sid package, but uses a monotonic per-arena counter
// instead of a content hash: AST/IR nodes need per-process uniqueness,
// not cross-run stability.
package arenaid

import "fmt"

// ID is an opaque, monotonically-increasing identifier minted by an
// Arena[Tag]. The zero value is never minted and denotes "no id".
type ID[Tag any] struct {
	n uint64
}

// Valid reports whether id was actually minted by an Arena (as opposed to
// being the zero value of ID).
func (id ID[Tag]) Valid() bool { return id.n != 0 }

func (id ID[Tag]) String() string { return fmt.Sprintf("#%d", id.n) }

// Index returns the id's raw monotonic counter value. Exported for
// consumers (internal/cemit's name mangling) that need a stable integer
// suffix rather than the "#N" debug form String returns.
func (id ID[Tag]) Index() uint64 { return id.n }

// FromIndex reconstructs an id from a raw index previously obtained via
// Index, under a (possibly different) tag. internal/mono uses this to
// carry an AST-arena local variable's identity into the IR arena's id
// space — lowering mints no fresh counter value for a parameter/let
// binding, it just relabels the same number under ir.Tag, so every IR
// reference to that one source local agrees on a single id.
func FromIndex[Tag any](n uint64) ID[Tag] { return ID[Tag]{n: n} }

// Arena mints ids for a single tag (AST or IR). It owns no storage of its
// own; callers keep node storage in ordinary slices/maps and use the ids
// minted here to reference them, which is what breaks cycles between
// mutually-recursive items.
type Arena[Tag any] struct {
	next uint64
}

// NewID mints a fresh, process-lifetime-unique id.
func (a *Arena[Tag]) NewID() ID[Tag] {
	a.next++
	return ID[Tag]{n: a.next}
}

// Count returns the number of ids minted so far.
func (a *Arena[Tag]) Count() uint64 { return a.next }

// ErrUnpopulated is the internal error signaled when an ItemCell is read
// before it has been written. Spec calls this UnpopulatedSymbol; it is a
// programmer error in any pass other than the one populating the cell, so
// it carries the offending id for diagnosis.
type ErrUnpopulated struct {
	ID string
}

func (e *ErrUnpopulated) Error() string {
	return fmt.Sprintf("internal error: item cell %s read before being populated (UnpopulatedSymbol)", e.ID)
}

// Cell is a write-once slot: (id, value). The slot starts empty; exactly
// one call to Set is allowed over the cell's lifetime — a second call is a
// programmer error and panics, matching spec's "write-once discipline"
// that lets item graphs stay cyclic while each item's contents are
// immutable once assigned.
type Cell[Tag any, V any] struct {
	id     ID[Tag]
	value  V
	filled bool
}

// NewCell creates an empty cell for id. Name resolution (out of scope
// here) is what calls this — the cell exists, and can be referenced by
// other in-progress items, before its contents are known.
func NewCell[Tag any, V any](id ID[Tag]) *Cell[Tag, V] {
	return &Cell[Tag, V]{id: id}
}

// ID returns the cell's id, valid whether or not the cell has been filled.
func (c *Cell[Tag, V]) ID() ID[Tag] { return c.id }

// Filled reports whether Set has been called.
func (c *Cell[Tag, V]) Filled() bool { return c.filled }

// Set populates the cell. Panics if called twice.
func (c *Cell[Tag, V]) Set(v V) {
	if c.filled {
		panic(fmt.Sprintf("internal error: item cell %s written twice", c.id))
	}
	c.value = v
	c.filled = true
}

// Get returns the cell's value, or ErrUnpopulated if it hasn't been set.
func (c *Cell[Tag, V]) Get() (V, error) {
	if !c.filled {
		var zero V
		return zero, &ErrUnpopulated{ID: c.id.String()}
	}
	return c.value, nil
}

// MustGet panics if the cell is unpopulated; for use deep in a pass that
// has already established (by construction) that the cell must be full.
func (c *Cell[Tag, V]) MustGet() V {
	v, err := c.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// Keyed is implemented by structural types that can be interned: InternKey
// must return a string that is equal if and only if the receiver is
// structurally equal to another value of the same concrete type.
type Keyed interface {
	InternKey() string
}

// Interner guarantees that, for all a, b of type T, structurally_equal(a,
// b) implies Intern(a) and Intern(b) return the identical value (same
// underlying address, for pointer-shaped T). One Interner exists per
// arena.
type Interner[T Keyed] struct {
	table map[string]T
}

// NewInterner creates an empty interner.
func NewInterner[T Keyed]() *Interner[T] {
	return &Interner[T]{table: make(map[string]T)}
}

// Intern returns the canonical representative for v's structural identity,
// storing v as that representative the first time its key is seen.
func (n *Interner[T]) Intern(v T) T {
	k := v.InternKey()
	if existing, ok := n.table[k]; ok {
		return existing
	}
	n.table[k] = v
	return v
}

// Len returns the number of distinct structural identities interned.
func (n *Interner[T]) Len() int { return len(n.table) }
