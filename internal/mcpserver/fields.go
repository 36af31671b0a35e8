package mcpserver

// FieldContract describes the canonical contract field reference that
// MCP consumers should follow when generating documents.
const FieldContract = `# Gebo Contract Field Reference

Gebo generates binary office documents from ZIP-packaged XML templates.
Placeholders in the template body use the ` + "`{{field_name}}`" + ` convention
and are substituted with the values supplied below. Unknown placeholders
render as an empty string; ` + "`contract_date`" + ` is always filled in by the
server with the current date (YYYY-MM-DD) and must not be supplied.

## employment_contract

| Field | Required | Notes |
|---|---|---|
| employee_name | yes | drives the generated filename |
| project_name | yes | |
| position | yes | |
| project_location | no | |
| start_date | no | YYYY-MM-DD |
| end_date | no | YYYY-MM-DD |
| salary | no | |

Generated filename: ` + "`<sanitized employee_name>_Contract.docx`" + `.

## leave_contract

| Field | Required | Notes |
|---|---|---|
| employee_name | yes | drives the generated filename |
| start_date | yes | YYYY-MM-DD |
| end_date | yes | YYYY-MM-DD |
| reason_for_leave | yes | |

Generated filename: ` + "`<sanitized employee_name>_Leave_Contract.docx`" + `.

## Rules

1. Sanitization strips every character outside ` + "`[A-Za-z0-9_-]`" + ` from
   the employee name (spaces become underscores); an empty result falls
   back to ` + "`Employee`" + `.
2. Each generation returns an artifact ID. Downloads resolve by that ID,
   not by filename; artifacts are deleted after a confirmed download.
3. Artifacts that are never downloaded expire after the configured
   retention window.
`
