package defect

import "errors"

var (
	// ErrNoProject indicates an error operation was attempted without a project.
	ErrNoProject = errors.New("no project selected")
	// ErrProjectNotFound indicates the target project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrIndexOutOfRange indicates a position outside the project's error list.
	ErrIndexOutOfRange = errors.New("error index out of range")
	// ErrAlreadyRestored indicates an undo whose record is already in the list.
	ErrAlreadyRestored = errors.New("error already restored")
	// ErrNothingToUndo indicates there is no deletion to undo.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrInvalidInput indicates invalid error record fields.
	ErrInvalidInput = errors.New("invalid error input")
	// ErrInvalidFilter indicates a filter expression that does not compile.
	ErrInvalidFilter = errors.New("invalid filter expression")
)

// Notices shown to the user after a successful action.
const (
	NoticeCreated    = "Error created"
	NoticeEdited     = "Error edited"
	NoticeDeleted    = "Error deleted"
	NoticeRestored   = "Error restored"
	NoticeDuplicated = "Error duplicated"
)
