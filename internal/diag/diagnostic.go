package diag

import "fmt"

// Label attaches a short note to a secondary span within a Diagnostic.
type Label struct {
	Span    Span
	Message string
}

// Related points at a prior declaration or other location relevant to
// understanding the diagnostic (e.g. the first declaration in a
// redeclaration error).
type Related struct {
	Span    Span
	Message string
}

// Diagnostic is a single structured compiler/runtime message.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Span     Span
	File     string
	Labels   []Label
	Related  []Related
	Help     string
}

// New creates an error-severity diagnostic.
func New(code Code, span Span, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
	}
}

// NewWarning creates a warning-severity diagnostic.
func NewWarning(code Code, span Span, format string, args ...interface{}) *Diagnostic {
	d := New(code, span, format, args...)
	d.Severity = SeverityWarning
	return d
}

// WithLabel attaches a label and returns the receiver for chaining.
func (d *Diagnostic) WithLabel(span Span, format string, args ...interface{}) *Diagnostic {
	d.Labels = append(d.Labels, Label{Span: span, Message: fmt.Sprintf(format, args...)})
	return d
}

// WithRelated attaches a related location (e.g. a prior declaration).
func (d *Diagnostic) WithRelated(span Span, format string, args ...interface{}) *Diagnostic {
	d.Related = append(d.Related, Related{Span: span, Message: fmt.Sprintf(format, args...)})
	return d
}

// WithHelp attaches help text and returns the receiver for chaining.
func (d *Diagnostic) WithHelp(format string, args ...interface{}) *Diagnostic {
	d.Help = fmt.Sprintf(format, args...)
	return d
}

// WithFile records the source file the diagnostic applies to.
func (d *Diagnostic) WithFile(file string) *Diagnostic {
	d.File = file
	return d
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Code, d.Severity, d.Message)
}

// List is a collection of diagnostics accumulated by one pipeline phase.
type List []*Diagnostic

// HasErrors reports whether any diagnostic in the list is an error (as
// opposed to a warning). The pipeline halts between phases only when this
// is true.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
