package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ContractRequest is implemented by every per-kind request type. Fields
// returns the placeholder map bound into the document template; the
// contract_date field is always injected server-side.
type ContractRequest interface {
	Validate() error
	Fields() map[string]string
	Name() string
}

// EmploymentContractRequest carries the form fields for an employment
// contract.
type EmploymentContractRequest struct {
	EmployeeName    string `json:"employee_name"`
	ProjectName     string `json:"project_name"`
	ProjectLocation string `json:"project_location"`
	Position        string `json:"position"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Salary          string `json:"salary"`
}

// Validate enforces the mandatory employment-contract fields.
func (r *EmploymentContractRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.EmployeeName, validation.Required),
		validation.Field(&r.ProjectName, validation.Required),
		validation.Field(&r.Position, validation.Required),
	)
}

// Fields returns the template placeholder map.
func (r *EmploymentContractRequest) Fields() map[string]string {
	return map[string]string{
		"employee_name":    r.EmployeeName,
		"project_name":     r.ProjectName,
		"project_location": r.ProjectLocation,
		"position":         r.Position,
		"start_date":       r.StartDate,
		"end_date":         r.EndDate,
		"salary":           r.Salary,
	}
}

// Name returns the subject name the filename derives from.
func (r *EmploymentContractRequest) Name() string { return r.EmployeeName }

// LeaveContractRequest carries the form fields for a leave contract.
type LeaveContractRequest struct {
	EmployeeName   string `json:"employee_name"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	ReasonForLeave string `json:"reason_for_leave"`
}

// Validate enforces the mandatory leave-contract fields.
func (r *LeaveContractRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.EmployeeName, validation.Required),
		validation.Field(&r.StartDate, validation.Required),
		validation.Field(&r.EndDate, validation.Required),
		validation.Field(&r.ReasonForLeave, validation.Required),
	)
}

// Fields returns the template placeholder map.
func (r *LeaveContractRequest) Fields() map[string]string {
	return map[string]string{
		"employee_name":    r.EmployeeName,
		"start_date":       r.StartDate,
		"end_date":         r.EndDate,
		"reason_for_leave": r.ReasonForLeave,
	}
}

// Name returns the subject name the filename derives from.
func (r *LeaveContractRequest) Name() string { return r.EmployeeName }

// ContractDate returns the server-side contract_date value for now.
func ContractDate(now time.Time) string {
	return now.Format("2006-01-02")
}
