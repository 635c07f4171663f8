// Package diag defines the non-fatal findings reported while converting
// host elements.
package diag

import (
	"fmt"
	"strings"
)

// Severity indicates whether a finding cost the caller output or is merely
// advisory.
type Severity int

const (
	SeverityError   Severity = iota // element or opening was dropped
	SeverityWarning                 // output produced, possibly approximate
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Code identifies the kind of finding.
type Code string

const (
	CodeUnsupportedGeometry     Code = "unsupported-geometry"
	CodeOutlineNotClosed        Code = "outline-not-closed"
	CodeFootprintNotFound       Code = "footprint-not-found"
	CodeClassificationAmbiguous Code = "classification-ambiguous"
	CodeOpeningUnassigned       Code = "opening-unassigned"
	CodeExtractionFailed        Code = "extraction-failed"
)

// Diagnostic describes a single finding. ElementID is empty for findings
// that are not tied to one element.
type Diagnostic struct {
	Severity  Severity `json:"severity"`
	Code      Code     `json:"code"`
	ElementID string   `json:"element_id,omitempty"`
	Message   string   `json:"message"`
}

func (d Diagnostic) Error() string {
	if d.ElementID == "" {
		return fmt.Sprintf("[%s] %s: %s", d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("[%s] %s: element %s: %s", d.Severity, d.Code, d.ElementID, d.Message)
}

// MarshalText renders the severity by name in JSON output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Warning returns a warning-severity diagnostic.
func Warning(code Code, elementID string, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity:  SeverityWarning,
		Code:      code,
		ElementID: elementID,
		Message:   fmt.Sprintf(format, args...),
	}
}

// Errorf returns an error-severity diagnostic.
func Errorf(code Code, elementID string, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity:  SeverityError,
		Code:      code,
		ElementID: elementID,
		Message:   fmt.Sprintf(format, args...),
	}
}

// List is an ordered collection of diagnostics.
type List []Diagnostic

// HasErrors reports whether any diagnostic has error severity.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// WithCode returns the diagnostics carrying code, in order.
func (l List) WithCode(code Code) List {
	var out List
	for _, d := range l {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

// ForElement stamps every diagnostic lacking an element id with id.
func (l List) ForElement(id string) List {
	out := make(List, len(l))
	for i, d := range l {
		if d.ElementID == "" {
			d.ElementID = id
		}
		out[i] = d
	}
	return out
}

func (l List) String() string {
	lines := make([]string, len(l))
	for i, d := range l {
		lines[i] = d.Error()
	}
	return strings.Join(lines, "\n")
}
