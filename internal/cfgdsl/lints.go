package cfgdsl

import "github.com/alumina-lang/aluminac/internal/diag"

// lintNames maps each name usable in #[allow(name)]/#[warn(name)]/
// #[deny(name)] to the warning kind of diag.ErrorKind it controls.
var lintNames = map[string]diag.ErrorKind{
	"shadow":         diag.KindShadowedAssociatedFn,
	"self_confusion": diag.KindSelfConfusion,
}

// LintAction is one allow/warn/deny directive.
type LintAction int

const (
	ActionAllow LintAction = iota
	ActionWarn
	ActionDeny
)

// ResolveLintScope turns a list of (action, lint-name) pairs into a
// severity-override map suitable for diag.Context.PushLintScope. Unknown
// lint names report diag.KindUnknownLint as a (meta-)warning and are
// otherwise ignored, per spec.md §4.5.
func ResolveLintScope(ctx *diag.Context, span *diag.Span, actions []struct {
	Action LintAction
	Name   string
}) map[diag.ErrorKind]diag.Severity {
	overrides := make(map[diag.ErrorKind]diag.Severity)
	for _, a := range actions {
		kind, ok := lintNames[a.Name]
		if !ok {
			ctx.Report(diag.KindUnknownLint, span, "unknown lint %q", a.Name)
			continue
		}
		switch a.Action {
		case ActionAllow:
			overrides[kind] = diag.SeverityIgnored
		case ActionWarn:
			overrides[kind] = diag.SeverityWarning
		case ActionDeny:
			overrides[kind] = diag.SeverityError
		}
	}
	return overrides
}
