package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/bugtrail/internal/domain/defect"
	"github.com/rpggio/bugtrail/internal/domain/project"
)

// APIError represents an MCP tool error.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, project.ErrInvalidName):
		return &APIError{Code: "INVALID_NAME", Message: err.Error(), RecoveryHint: "Pass a non-empty name"}
	case errors.Is(err, project.ErrDuplicateName):
		return &APIError{Code: "DUPLICATE_NAME", Message: err.Error(), RecoveryHint: "Pick a name no other project uses"}
	case errors.Is(err, project.ErrProjectNotFound), errors.Is(err, defect.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Call list_projects for valid ids and names"}
	case errors.Is(err, defect.ErrNoProject):
		return &APIError{Code: "NO_PROJECT", Message: err.Error(), RecoveryHint: "Pass project or call select_project first"}
	case errors.Is(err, defect.ErrIndexOutOfRange):
		return &APIError{Code: "INDEX_OUT_OF_RANGE", Message: err.Error(), RecoveryHint: "Use an index from list_errors"}
	case errors.Is(err, defect.ErrAlreadyRestored):
		return &APIError{Code: "ALREADY_RESTORED", Message: err.Error()}
	case errors.Is(err, defect.ErrNothingToUndo):
		return &APIError{Code: "NOTHING_TO_UNDO", Message: err.Error()}
	case errors.Is(err, defect.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Fill every required field with a valid value"}
	case errors.Is(err, defect.ErrInvalidFilter):
		return &APIError{Code: "INVALID_FILTER", Message: err.Error(), RecoveryHint: "Compare fields such as severity, status or environment with string literals"}
	default:
		return nil
	}
}

// toolError turns err into the error a tool handler returns; the SDK reports
// it to the client as an IsError result.
func toolError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return &APIError{Code: "INTERNAL", Message: err.Error()}
}
