package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/rpggio/bugtrail/internal/domain/activity"
	"github.com/rpggio/bugtrail/internal/domain/defect"
	"github.com/rpggio/bugtrail/internal/domain/project"
	"github.com/rpggio/bugtrail/internal/export"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type toolHandlers struct {
	projects  ProjectService
	defects   DefectService
	activity  ActivityService
	exportDir string
	logger    *slog.Logger
}

func registerTools(server *sdkmcp.Server, h *toolHandlers) {
	// Projects
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List projects in sidebar order with error counts, open counts and DRE",
	}, h.listProjects)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_project",
		Description: "Create a project and make it the current one",
	}, h.createProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "rename_project",
		Description: "Rename a project; its errors stay attached",
	}, h.renameProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_project",
		Description: "Delete a project together with all of its errors",
	}, h.deleteProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "select_project",
		Description: "Make a project current, or clear the selection",
	}, h.selectProject)

	// Errors
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_errors",
		Description: "List a project's errors, optionally narrowed by title search or a filter expression. Each row carries the index mutating tools expect",
	}, h.listErrors)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_error",
		Description: "Get one error by list index",
	}, h.getError)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_error",
		Description: "Report a new error; it gets the project's next id",
	}, h.createError)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "edit_error",
		Description: "Replace every field of the error at index; the id is kept",
	}, h.editError)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_error",
		Description: "Delete the error at index; undo_delete puts it back",
	}, h.deleteError)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "undo_delete",
		Description: "Restore the most recently deleted error at its old position",
	}, h.undoDelete)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "duplicate_error",
		Description: "Insert a copy of the error at index directly after it, with a new id",
	}, h.duplicateError)

	// Reporting
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_stats",
		Description: "Counts per status, severity and environment plus defect removal efficiency",
	}, h.getStats)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_recent_activity",
		Description: "Recent project and error changes, newest first",
	}, h.getRecentActivity)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "export_errors",
		Description: "Write a project's errors to <project>_errors.csv",
	}, h.exportErrors)
}

func (h *toolHandlers) listProjects(ctx context.Context, _ *sdkmcp.CallToolRequest, _ NoParams) (*sdkmcp.CallToolResult, ProjectListResult, error) {
	list, err := h.projects.List(ctx)
	if err != nil {
		return nil, ProjectListResult{}, toolError(err)
	}
	out := ProjectListResult{Projects: list}
	if out.Projects == nil {
		out.Projects = []project.ProjectSummary{}
	}
	for _, p := range list {
		if p.Current {
			out.CurrentProjectID = p.ID
		}
	}
	return nil, out, nil
}

func (h *toolHandlers) createProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateProjectParams) (*sdkmcp.CallToolResult, ProjectResult, error) {
	proj, err := h.projects.Add(ctx, in.Name)
	if err != nil {
		return nil, ProjectResult{}, toolError(err)
	}
	return nil, ProjectResult{Project: viewOf(proj), Notice: project.NoticeCreated}, nil
}

func (h *toolHandlers) renameProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in RenameProjectParams) (*sdkmcp.CallToolResult, ProjectResult, error) {
	proj, err := h.projects.Rename(ctx, in.Project, in.Name)
	if err != nil {
		return nil, ProjectResult{}, toolError(err)
	}
	return nil, ProjectResult{Project: viewOf(proj), Notice: project.NoticeRenamed}, nil
}

func (h *toolHandlers) deleteProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectRefParams) (*sdkmcp.CallToolResult, ProjectResult, error) {
	proj, err := h.projects.Delete(ctx, in.Project)
	if err != nil {
		return nil, ProjectResult{}, toolError(err)
	}
	return nil, ProjectResult{Project: viewOf(proj), Notice: project.NoticeDeleted}, nil
}

func (h *toolHandlers) selectProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in SelectProjectParams) (*sdkmcp.CallToolResult, SelectResult, error) {
	proj, err := h.projects.Select(ctx, in.Project)
	if err != nil {
		return nil, SelectResult{}, toolError(err)
	}
	if proj == nil {
		return nil, SelectResult{}, nil
	}
	view := viewOf(proj)
	return nil, SelectResult{Project: &view, Notice: project.NoticeSelected}, nil
}

func (h *toolHandlers) listErrors(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListErrorsParams) (*sdkmcp.CallToolResult, ErrorListResult, error) {
	proj, err := h.resolveProject(ctx, in.Project)
	if err != nil {
		return nil, ErrorListResult{}, toolError(err)
	}
	list, err := h.defects.List(ctx, proj.ID)
	if err != nil {
		return nil, ErrorListResult{}, toolError(err)
	}

	var filter *defect.Filter
	if in.Filter != "" {
		if filter, err = defect.CompileFilter(in.Filter); err != nil {
			return nil, ErrorListResult{}, toolError(err)
		}
	}

	rows := []ErrorRow{}
	for _, i := range defect.MatchPositions(list, in.Search) {
		if filter != nil {
			ok, err := filter.Match(list[i])
			if err != nil {
				return nil, ErrorListResult{}, toolError(err)
			}
			if !ok {
				continue
			}
		}
		rows = append(rows, ErrorRow{Index: i, Record: list[i]})
	}

	return nil, ErrorListResult{
		Project: viewOf(proj),
		Errors:  rows,
		Total:   len(list),
		DRE:     defect.DefectRemovalEfficiency(list),
	}, nil
}

func (h *toolHandlers) getError(ctx context.Context, _ *sdkmcp.CallToolRequest, in ErrorRefParams) (*sdkmcp.CallToolResult, ErrorResult, error) {
	proj, err := h.resolveProject(ctx, in.Project)
	if err != nil {
		return nil, ErrorResult{}, toolError(err)
	}
	rec, err := h.defects.Get(ctx, proj.ID, in.Index)
	if err != nil {
		return nil, ErrorResult{}, toolError(err)
	}
	return nil, ErrorResult{Project: viewOf(proj), Index: in.Index, Record: *rec}, nil
}

func (h *toolHandlers) createError(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateErrorParams) (*sdkmcp.CallToolResult, ErrorResult, error) {
	proj, err := h.resolveProject(ctx, in.Project)
	if err != nil {
		return nil, ErrorResult{}, toolError(err)
	}
	fields, err := parseFields(in.Title, in.AssignedTo, in.ReportedBy, in.ReportedAt, in.Status, in.Severity, in.Environment, in.CurrentBehavior, in.ExpectedBehavior)
	if err != nil {
		return nil, ErrorResult{}, toolError(err)
	}
	rec, err := h.defects.Add(ctx, proj.ID, fields)
	if err != nil {
		return nil, ErrorResult{}, toolError(err)
	}
	list, err := h.defects.List(ctx, proj.ID)
	if err != nil {
		return nil, ErrorResult{}, toolError(err)
	}
	return nil, ErrorResult{Project: viewOf(proj), Index: len(list) - 1, Record: *rec, Notice: defect.NoticeCreated}, nil
}

func (h *toolHandlers) editError(ctx context.Context, _ *sdkmcp.CallToolRequest, in EditErrorParams) (*sdkmcp.CallToolResult, ErrorResult, error) {
	proj, err := h.resolveProject(ctx, in.Project)
	if err != nil {
		return nil, ErrorResult{}, toolError(err)
	}
	fields, err := parseFields(in.Title, in.AssignedTo, in.ReportedBy, in.ReportedAt, in.Status, in.Severity, in.Environment, in.CurrentBehavior, in.ExpectedBehavior)
	if err != nil {
		return nil, ErrorResult{}, toolError(err)
	}
	rec, err := h.defects.Edit(ctx, proj.ID, in.Index, fields)
	if err != nil {
		return nil, ErrorResult{}, toolError(err)
	}
	return nil, ErrorResult{Project: viewOf(proj), Index: in.Index, Record: *rec, Notice: defect.NoticeEdited}, nil
}

func (h *toolHandlers) deleteError(ctx context.Context, _ *sdkmcp.CallToolRequest, in ErrorRefParams) (*sdkmcp.CallToolResult, ErrorResult, error) {
	proj, err := h.resolveProject(ctx, in.Project)
	if err != nil {
		return nil, ErrorResult{}, toolError(err)
	}
	deleted, err := h.defects.Delete(ctx, proj.ID, in.Index)
	if err != nil {
		return nil, ErrorResult{}, toolError(err)
	}
	return nil, ErrorResult{Project: viewOf(proj), Index: deleted.Index, Record: deleted.Record, Notice: defect.NoticeDeleted}, nil
}

func (h *toolHandlers) undoDelete(ctx context.Context, _ *sdkmcp.CallToolRequest, _ NoParams) (*sdkmcp.CallToolResult, ErrorResult, error) {
	restored, err := h.defects.Undo(ctx)
	if err != nil {
		return nil, ErrorResult{}, toolError(err)
	}
	out := ErrorResult{Index: restored.Index, Record: restored.Record, Notice: defect.NoticeRestored}
	if proj, err := h.projects.Get(ctx, restored.ProjectID); err == nil {
		out.Project = viewOf(proj)
	}
	return nil, out, nil
}

func (h *toolHandlers) duplicateError(ctx context.Context, _ *sdkmcp.CallToolRequest, in ErrorRefParams) (*sdkmcp.CallToolResult, ErrorResult, error) {
	proj, err := h.resolveProject(ctx, in.Project)
	if err != nil {
		return nil, ErrorResult{}, toolError(err)
	}
	dup, err := h.defects.Duplicate(ctx, proj.ID, in.Index)
	if err != nil {
		return nil, ErrorResult{}, toolError(err)
	}
	return nil, ErrorResult{Project: viewOf(proj), Index: in.Index + 1, Record: *dup, Notice: defect.NoticeDuplicated}, nil
}

func (h *toolHandlers) getStats(ctx context.Context, _ *sdkmcp.CallToolRequest, in StatsParams) (*sdkmcp.CallToolResult, StatsResult, error) {
	proj, err := h.resolveProject(ctx, in.Project)
	if err != nil {
		return nil, StatsResult{}, toolError(err)
	}
	list, err := h.defects.List(ctx, proj.ID)
	if err != nil {
		return nil, StatsResult{}, toolError(err)
	}
	return nil, StatsResult{Project: viewOf(proj), Stats: defect.Summarize(list)}, nil
}

func (h *toolHandlers) getRecentActivity(ctx context.Context, _ *sdkmcp.CallToolRequest, in ActivityParams) (*sdkmcp.CallToolResult, ActivityResult, error) {
	opts := activity.ListActivityOptions{Limit: in.Limit}
	if in.Project != "" {
		proj, err := h.projects.Get(ctx, in.Project)
		if err != nil {
			return nil, ActivityResult{}, toolError(err)
		}
		opts.ProjectID = proj.ID
	}

	entries, err := h.activity.GetRecentActivity(ctx, opts)
	if err != nil {
		return nil, ActivityResult{}, toolError(err)
	}
	out := ActivityResult{Entries: make([]ActivityView, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, ActivityView{
			ID:        e.ID,
			ProjectID: e.ProjectID,
			RecordID:  e.RecordID,
			Type:      e.ActivityType,
			Summary:   e.Summary,
			Details:   e.Details,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		})
	}
	return nil, out, nil
}

func (h *toolHandlers) exportErrors(ctx context.Context, _ *sdkmcp.CallToolRequest, in ExportParams) (*sdkmcp.CallToolResult, ExportResult, error) {
	proj, err := h.resolveProject(ctx, in.Project)
	if err != nil {
		return nil, ExportResult{}, toolError(err)
	}
	list, err := h.defects.List(ctx, proj.ID)
	if err != nil {
		return nil, ExportResult{}, toolError(err)
	}

	dir := in.Dir
	if dir == "" {
		dir = h.exportDir
	}
	path, err := export.WriteFile(dir, proj.Name, list)
	if err != nil {
		return nil, ExportResult{}, toolError(err)
	}
	h.logger.Info("exported errors", "project", proj.Name, "path", path, "count", len(list))
	if err := h.activity.LogActivity(ctx, &activity.ActivityEntry{
		ProjectID:    proj.ID,
		ActivityType: activity.TypeExported,
		Summary:      export.NoticeExported,
		Details:      path,
	}); err != nil {
		h.logger.Warn("logging export activity", "error", err)
	}
	return nil, ExportResult{Path: path, Count: len(list)}, nil
}

// resolveProject returns the referenced project, or the current one when ref
// is empty.
func (h *toolHandlers) resolveProject(ctx context.Context, ref string) (*project.Project, error) {
	if ref != "" {
		return h.projects.Get(ctx, ref)
	}
	proj, err := h.projects.Current(ctx)
	if err != nil {
		return nil, err
	}
	if proj == nil {
		return nil, defect.ErrNoProject
	}
	return proj, nil
}

func parseFields(title, assignedTo, reportedBy, reportedAt, status, severity, environment, current, expected string) (defect.Fields, error) {
	st, err := defect.ParseStatus(status)
	if err != nil {
		return defect.Fields{}, err
	}
	sev, err := defect.ParseSeverity(severity)
	if err != nil {
		return defect.Fields{}, err
	}
	env, err := defect.ParseEnvironment(environment)
	if err != nil {
		return defect.Fields{}, err
	}
	return defect.Fields{
		Title:            title,
		AssignedTo:       assignedTo,
		ReportedBy:       reportedBy,
		ReportedAt:       reportedAt,
		Status:           st,
		Severity:         sev,
		Environment:      env,
		CurrentBehavior:  current,
		ExpectedBehavior: expected,
	}, nil
}

func viewOf(p *project.Project) ProjectView {
	if p == nil {
		return ProjectView{}
	}
	return ProjectView{ID: p.ID, Name: p.Name}
}
