package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/starford/gebo/internal/models"
)

// ArtifactResponse is returned after a successful synthesis.
type ArtifactResponse struct {
	ID        string `json:"id" example:"9b1e2f3a-0c4d-4e5f-8a6b-7c8d9e0f1a2b" validate:"required"`
	FileName  string `json:"file_name" example:"Maria_Santos_Leave_Contract.docx" validate:"required"`
	Kind      string `json:"kind" example:"leave_contract" validate:"required"`
	Format    string `json:"format" example:"docx" validate:"required"`
	CreatedAt string `json:"created_at" validate:"required"`
}

// ArtifactListResponse wraps paginated artifact listings.
type ArtifactListResponse struct {
	Artifacts []models.Artifact `json:"artifacts" validate:"required"`
	Total     int               `json:"total" example:"42" validate:"required"`
}

// decodeEmploymentRequest reads an employment-contract request from a
// JSON body or classic form fields, depending on Content-Type.
func decodeEmploymentRequest(r *http.Request) (*models.EmploymentContractRequest, error) {
	if isJSON(r) {
		var req models.EmploymentContractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
		return &req, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return &models.EmploymentContractRequest{
		EmployeeName:    r.PostFormValue("employee_name"),
		ProjectName:     r.PostFormValue("project_name"),
		ProjectLocation: r.PostFormValue("project_location"),
		Position:        r.PostFormValue("position"),
		StartDate:       r.PostFormValue("start_date"),
		EndDate:         r.PostFormValue("end_date"),
		Salary:          r.PostFormValue("salary"),
	}, nil
}

// decodeLeaveRequest reads a leave-contract request from a JSON body or
// classic form fields.
func decodeLeaveRequest(r *http.Request) (*models.LeaveContractRequest, error) {
	if isJSON(r) {
		var req models.LeaveContractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
		return &req, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return &models.LeaveContractRequest{
		EmployeeName:   r.PostFormValue("employee_name"),
		StartDate:      r.PostFormValue("start_date"),
		EndDate:        r.PostFormValue("end_date"),
		ReasonForLeave: r.PostFormValue("reason_for_leave"),
	}, nil
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func artifactResponse(a *models.Artifact) ArtifactResponse {
	return ArtifactResponse{
		ID:        a.ID,
		FileName:  a.FileName,
		Kind:      string(a.Kind),
		Format:    a.Format,
		CreatedAt: a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
