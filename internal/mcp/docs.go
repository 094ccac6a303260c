package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `bugtrail tracks reported software errors per project.

Model:
- Project: unique name plus a stable id. One project is "current"; tools that take an optional project use it.
- Error: id (per-project counter, never reused), title, assignedTo, reportedBy, reportedAt (M/D/YYYY),
  status, severity, environment, currentBehavior, expectedBehavior.
- Errors are addressed by index, their position in the project's unfiltered list. list_errors returns
  the index of every row, also when search or filter narrow the result.

Workflow:
1) list_projects, then select_project or create_project.
2) list_errors (search = title substring, filter = expression such as status != "Completed").
3) create_error / edit_error / duplicate_error / delete_error. delete_error can be reverted once with undo_delete.
4) get_stats for counts and DRE (share of errors caught in pre-production), export_errors for CSV.

Read bugtrail://docs/fields for valid values.
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "bugtrail://docs/fields",
		Name:        "docs_fields",
		Title:       "bugtrail error fields",
		Description: "Valid values for error fields and the filter expression syntax.",
		Content: `# Error fields

| Field | Required | Values |
|---|---|---|
| title | yes | free text |
| assignedTo | yes | free text |
| reportedBy | yes | free text |
| reportedAt | no | M/D/YYYY, defaults to today |
| status | yes | Not Started, In Progress, Ready For Testing, Completed |
| severity | yes | Low, Medium, High, Very High |
| environment | yes | pre-production, production |
| currentBehavior | yes | free text |
| expectedBehavior | yes | free text |

Enum values are matched ignoring case, spaces, dashes and underscores, so ` + "`ready_for_testing`" + ` works.

## Filters

list_errors accepts a boolean expression over the field names above plus ` + "`id`" + `:

- ` + "`severity == \"High\" && environment == \"production\"`" + `
- ` + "`status != \"Completed\"`" + `
- ` + "`title contains \"login\" || id > 40`" + `

## DRE

Defect removal efficiency is the share of a project's errors found in pre-production, as a
percentage with two decimals. It is 0 for a project without errors.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
