package diag

import (
	"fmt"
	"runtime/debug"
	"sort"

	"github.com/fatih/color"
)

// Diagnostic is one reported problem: a kind, its effective severity, a
// human message, an optional span, and free-form structured data (for
// macro/mono passes that want to attach e.g. the offending type-argument
// list). Errors acquired with no span available fall back to
// KindNoSpanInformation per spec §7.
type Diagnostic struct {
	Kind     ErrorKind
	Severity Severity
	Message  string
	Span     *Span
	Data     map[string]any
	Stack    string // captured only for SeverityInternal
}

func (d Diagnostic) String() string {
	code, _, _, _, _ := Info(d.Kind)
	if d.Span != nil {
		return fmt.Sprintf("[%s] %s: %s", code, d.Span, d.Message)
	}
	return fmt.Sprintf("[%s] %s", code, d.Message)
}

// lintFrame is one allow/warn/deny scope, per spec §4.5.
type lintFrame map[ErrorKind]Severity

// Context is the diagnostic context threaded through every pass (spec
// §5): callers push diagnostics with spans; at phase boundaries the
// context is queried for errors and, at the end of compilation, flushed
// to the user. It plays the role the teacher fills ad hoc in
// cmd/ailang/main.go (collecting parser/checker errors) and in
// internal/errors (structured Report values), unified into one object.
type Context struct {
	diagnostics []Diagnostic
	lintStack   []lintFrame
	files       *Files
}

// NewContext creates an empty diagnostic context bound to a file table.
func NewContext(files *Files) *Context {
	return &Context{files: files}
}

// Files returns the file table this context was created with, so that
// builtin macros (file!) can resolve a span's file id to a path.
func (c *Context) Files() *Files { return c.files }

// PushLintScope opens a new allow/warn/deny override scope (e.g. entering
// a function body with #[allow(...)] attached). Overrides in effect when
// a diagnostic is reported are looked up innermost-frame-first.
func (c *Context) PushLintScope(overrides map[ErrorKind]Severity) {
	c.lintStack = append(c.lintStack, lintFrame(overrides))
}

// PopLintScope closes the most recently opened lint scope.
func (c *Context) PopLintScope() {
	if len(c.lintStack) > 0 {
		c.lintStack = c.lintStack[:len(c.lintStack)-1]
	}
}

func (c *Context) effectiveSeverity(kind ErrorKind) Severity {
	for i := len(c.lintStack) - 1; i >= 0; i-- {
		if sev, ok := c.lintStack[i][kind]; ok {
			return sev
		}
	}
	return DefaultSeverity(kind)
}

// Report pushes a diagnostic of kind with message and an optional span,
// honoring any allow/warn/deny override currently in scope. Internal
// kinds always capture a stack trace regardless of override (an override
// cannot downgrade a compiler bug into silence).
func (c *Context) Report(kind ErrorKind, span *Span, format string, args ...any) {
	sev := c.effectiveSeverity(kind)
	if _, _, baseSev, _, ok := Info(kind); ok && baseSev == SeverityInternal {
		sev = SeverityInternal
	}
	if sev == SeverityIgnored {
		return
	}
	d := Diagnostic{
		Kind:     kind,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
	}
	if span == nil && sev == SeverityError {
		// Fallback locator per spec §7.
		d.Kind = KindNoSpanInformation
	}
	if sev == SeverityInternal {
		d.Stack = string(debug.Stack())
	}
	c.diagnostics = append(c.diagnostics, d)
}

// ReportData is Report plus structured data, for diagnostics that carry
// machine-readable context (e.g. format_args! index range).
func (c *Context) ReportData(kind ErrorKind, span *Span, data map[string]any, format string, args ...any) {
	before := len(c.diagnostics)
	c.Report(kind, span, format, args...)
	if len(c.diagnostics) > before {
		c.diagnostics[len(c.diagnostics)-1].Data = data
	}
}

// All returns every diagnostic reported so far, in report order.
func (c *Context) All() []Diagnostic { return c.diagnostics }

// Errors returns diagnostics whose effective severity is Error or
// Internal (the ones that make the process exit non-zero).
func (c *Context) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range c.diagnostics {
		if d.Severity != SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}

// Warnings returns diagnostics whose effective severity is Warning.
func (c *Context) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range c.diagnostics {
		if d.Severity == SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}

// HasErrors reports whether compilation must fail.
func (c *Context) HasErrors() bool { return len(c.Errors()) > 0 }

var (
	colorError    = color.New(color.FgRed, color.Bold).SprintFunc()
	colorWarning  = color.New(color.FgYellow, color.Bold).SprintFunc()
	colorInternal = color.New(color.FgMagenta, color.Bold).SprintFunc()
	colorNote     = color.New(color.FgCyan).SprintFunc()
)

// Render formats all diagnostics for terminal display, colorized the way
// the teacher's cmd/ailang/main.go colors errors red and warnings yellow.
// Diagnostics are stable-sorted by file then line then column so output
// is deterministic regardless of pass-internal iteration order.
func (c *Context) Render() string {
	sorted := make([]Diagnostic, len(c.diagnostics))
	copy(sorted, c.diagnostics)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := sorted[i].Span, sorted[j].Span
		if si == nil || sj == nil {
			return sj != nil
		}
		if si.File != sj.File {
			return si.File < sj.File
		}
		if si.Line != sj.Line {
			return si.Line < sj.Line
		}
		return si.Column < sj.Column
	})

	out := ""
	for _, d := range sorted {
		label := ""
		switch d.Severity {
		case SeverityError:
			label = colorError("error")
		case SeverityWarning:
			label = colorWarning("warning")
		case SeverityInternal:
			label = colorInternal("internal error")
		}
		loc := ""
		if d.Span != nil {
			path := ""
			if c.files != nil {
				path = c.files.Path(d.Span.File)
			}
			loc = colorNote(fmt.Sprintf("%s:%d:%d: ", path, d.Span.Line, d.Span.Column))
		}
		code, _, _, _, _ := Info(d.Kind)
		out += fmt.Sprintf("%s%s[%s]: %s\n", loc, label, code, d.Message)
		if d.Severity == SeverityInternal && d.Stack != "" {
			out += d.Stack + "\n"
		}
	}
	return out
}
