package cfgdsl

import (
	"math/bits"

	"github.com/alumina-lang/aluminac/internal/diag"
)

// Kind is the closed attribute enum from spec.md §4.5.
type Kind int

const (
	KindInlineAlways Kind = iota
	KindInlineNever        // "No"
	KindInlineDuringMono
	KindInline
	KindCold
	KindExport
	KindLinkName
	KindThreadLocal
	KindPacked
	KindAlign
	KindTransparent
	KindMustUse
	KindBuiltin
	KindTest
	KindTestMain
	KindStaticConstructor
	KindNoReturn
)

// Attribute is one parsed attribute occurrence.
type Attribute struct {
	Kind     Kind
	LinkName string // for KindLinkName; length-capped below
	Align    uint64 // for KindAlign
	Span     diag.Span
}

const maxLinkNameLen = 255

// Set is the validated collection of attributes attached to one item,
// enforcing spec.md §4.5's duplicate/mutual-exclusion rules. Exactly one
// of each Kind may be present (Add reports KindDuplicateAttribute
// otherwise); Align and Packed are mutually exclusive.
type Set struct {
	byKind map[Kind]Attribute
}

// NewSet creates an empty attribute set.
func NewSet() *Set { return &Set{byKind: make(map[Kind]Attribute)} }

// Add validates and inserts attr, reporting diagnostics on ctx for any
// violation. It always records the attribute (even an invalid one) so
// later passes see the attempted intent, matching the teacher's pattern
// of reporting-but-continuing during item making (spec §7: "compilation
// continues when feasible").
func (s *Set) Add(ctx *diag.Context, attr Attribute) {
	if _, dup := s.byKind[attr.Kind]; dup {
		ctx.Report(diag.KindDuplicateAttribute, &attr.Span, "duplicate attribute")
	}

	switch attr.Kind {
	case KindLinkName:
		if len(attr.LinkName) > maxLinkNameLen {
			ctx.Report(diag.KindInvalidAttribute, &attr.Span, "link_name exceeds %d bytes", maxLinkNameLen)
		}
	case KindAlign:
		if attr.Align == 0 || bits.OnesCount64(attr.Align) != 1 {
			ctx.Report(diag.KindInvalidAttribute, &attr.Span, "align value must be a power of two")
		} else if attr.Align == 1 {
			// align(1) only warns: report it under a one-off override that
			// gives KindInvalidAttribute warning severity.
			ctx.PushLintScope(map[diag.ErrorKind]diag.Severity{diag.KindInvalidAttribute: diag.SeverityWarning})
			ctx.Report(diag.KindInvalidAttribute, &attr.Span, "align(1) has no effect")
			ctx.PopLintScope()
		}
		if _, packed := s.byKind[KindPacked]; packed {
			ctx.Report(diag.KindAlignAndPacked, &attr.Span, "align and packed are mutually exclusive")
		}
	case KindPacked:
		if _, aligned := s.byKind[KindAlign]; aligned {
			ctx.Report(diag.KindAlignAndPacked, &attr.Span, "align and packed are mutually exclusive")
		}
	}

	s.byKind[attr.Kind] = attr
}

// Has reports whether an attribute of the given kind is present.
func (s *Set) Has(k Kind) bool {
	_, ok := s.byKind[k]
	return ok
}

// Get returns the attribute of the given kind, if present.
func (s *Set) Get(k Kind) (Attribute, bool) {
	a, ok := s.byKind[k]
	return a, ok
}

// ThreadLocalEffective reports whether a present ThreadLocal attribute
// actually takes effect: it is silently suppressed when the threading cfg
// flag is off, per spec.md §4.5.
func (s *Set) ThreadLocalEffective(flags *Flags) bool {
	return s.Has(KindThreadLocal) && flags.HasBool("threading")
}
