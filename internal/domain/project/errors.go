package project

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidName indicates an empty project name.
	ErrInvalidName = errors.New("project name must not be empty")
	// ErrDuplicateName indicates another project already uses the name.
	ErrDuplicateName = errors.New("project must have unique name")
)

// Notices shown to the user after a successful action.
const (
	NoticeCreated  = "Project created"
	NoticeRenamed  = "Project renamed"
	NoticeDeleted  = "Project deleted"
	NoticeSelected = "Project selected"
)
