// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Gebo contract-generation tools for LLM integration via
// stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/gebo/internal/contract"
	"github.com/starford/gebo/internal/models"
)

// Server wraps the MCP server with Gebo tools.
type Server struct {
	mcp *server.MCPServer
	svc *contract.Service
}

// New creates a new MCP server with all Gebo tools registered.
func New(svc *contract.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Gebo",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("generate_employment_contract",
		mcp.WithDescription("Generate an employment contract document from the template. "+
			"Returns the artifact ID used for download. Read the field contract first via "+
			"the get_field_contract tool or the gebo://contract-fields resource."),
		mcp.WithString("employee_name", mcp.Required(), mcp.Description("Full name of the employee")),
		mcp.WithString("project_name", mcp.Required(), mcp.Description("Construction project name")),
		mcp.WithString("position", mcp.Required(), mcp.Description("Position on the project")),
		mcp.WithString("project_location", mcp.Description("Project site location")),
		mcp.WithString("start_date", mcp.Description("Employment start date (YYYY-MM-DD)")),
		mcp.WithString("end_date", mcp.Description("Employment end date (YYYY-MM-DD)")),
		mcp.WithString("salary", mcp.Description("Agreed salary")),
	), s.generateEmployment)

	s.mcp.AddTool(mcp.NewTool("generate_leave_contract",
		mcp.WithDescription("Generate a leave contract document from the template. "+
			"Returns the artifact ID used for download."),
		mcp.WithString("employee_name", mcp.Required(), mcp.Description("Full name of the employee")),
		mcp.WithString("start_date", mcp.Required(), mcp.Description("Leave start date (YYYY-MM-DD)")),
		mcp.WithString("end_date", mcp.Required(), mcp.Description("Leave end date (YYYY-MM-DD)")),
		mcp.WithString("reason_for_leave", mcp.Required(), mcp.Description("Reason for the leave")),
	), s.generateLeave)

	s.mcp.AddTool(mcp.NewTool("list_artifacts",
		mcp.WithDescription("List generated contract artifacts awaiting download."),
		mcp.WithString("kind", mcp.Description("Optional filter: employment_contract or leave_contract")),
	), s.listArtifacts)

	s.mcp.AddTool(mcp.NewTool("get_field_contract",
		mcp.WithDescription("Returns the canonical contract field reference: required and "+
			"optional fields per document kind and the template placeholder convention."),
	), s.getFieldContract)

	// Resource: contract field reference.
	s.mcp.AddResource(
		mcp.NewResource("gebo://contract-fields", "Contract Field Reference",
			mcp.WithResourceDescription("Required and optional fields for each contract kind."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFieldContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) generateEmployment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cr := &models.EmploymentContractRequest{
		EmployeeName:    optString(req, "employee_name"),
		ProjectName:     optString(req, "project_name"),
		ProjectLocation: optString(req, "project_location"),
		Position:        optString(req, "position"),
		StartDate:       optString(req, "start_date"),
		EndDate:         optString(req, "end_date"),
		Salary:          optString(req, "salary"),
	}
	return s.synthesize(ctx, models.KindEmployment, cr)
}

func (s *Server) generateLeave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cr := &models.LeaveContractRequest{
		EmployeeName:   optString(req, "employee_name"),
		StartDate:      optString(req, "start_date"),
		EndDate:        optString(req, "end_date"),
		ReasonForLeave: optString(req, "reason_for_leave"),
	}
	return s.synthesize(ctx, models.KindLeave, cr)
}

// optString returns the string argument or "" when absent; mandatory
// fields are enforced by request validation, not by the transport.
func optString(req mcp.CallToolRequest, key string) string {
	v, err := req.RequireString(key)
	if err != nil {
		return ""
	}
	return v
}

func (s *Server) synthesize(ctx context.Context, kind models.Kind, cr models.ContractRequest) (*mcp.CallToolResult, error) {
	if err := cr.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	artifact, err := s.svc.Synthesize(ctx, kind, cr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to generate contract: %v", err)), nil
	}
	out, _ := json.MarshalIndent(artifact, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listArtifacts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := optString(req, "kind")
	if kind != "" {
		if _, err := models.ParseKind(kind); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	items, _, err := s.svc.List(ctx, 50, 0, kind)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getFieldContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FieldContract), nil
}

func (s *Server) readFieldContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "gebo://contract-fields",
			MIMEType: "text/markdown",
			Text:     FieldContract,
		},
	}, nil
}
