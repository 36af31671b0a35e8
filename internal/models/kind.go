// Package models defines the domain types for Gebo.
package models

import "fmt"

// Kind identifies a generated document type. Each kind has its own
// template file, output subdirectory, and filename suffix.
type Kind string

// Document kinds.
const (
	KindEmployment Kind = "employment_contract"
	KindLeave      Kind = "leave_contract"
)

// Kinds lists every known document kind.
func Kinds() []Kind {
	return []Kind{KindEmployment, KindLeave}
}

// ParseKind returns the Kind for s or an error for unknown values.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindEmployment, KindLeave:
		return Kind(s), nil
	}
	return "", fmt.Errorf("models: unknown document kind: %q", s)
}

// Suffix returns the filename suffix appended to the sanitized
// employee name.
func (k Kind) Suffix() string {
	if k == KindLeave {
		return "Leave_Contract"
	}
	return "Contract"
}

// TemplateFile returns the template filename for the kind, relative to
// the templates root.
func (k Kind) TemplateFile() string {
	if k == KindLeave {
		return "leave_template.docx"
	}
	return "employment_template.docx"
}

// OutputSubdir returns the subdirectory under the generated root where
// artifacts of this kind are written.
func (k Kind) OutputSubdir() string {
	if k == KindLeave {
		return "leave_contracts"
	}
	return "contracts"
}
