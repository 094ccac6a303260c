package defect

import (
	"fmt"
	"strings"
)

// ValidateFields checks that every required field is present and every enum
// holds a known value.
func ValidateFields(f Fields) error {
	required := []struct {
		name  string
		value string
	}{
		{"title", f.Title},
		{"assignedTo", f.AssignedTo},
		{"reportedBy", f.ReportedBy},
		{"currentBehavior", f.CurrentBehavior},
		{"expectedBehavior", f.ExpectedBehavior},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, field.name)
		}
	}
	if !f.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, f.Status)
	}
	if !f.Severity.Valid() {
		return fmt.Errorf("%w: unknown severity %q", ErrInvalidInput, f.Severity)
	}
	if !f.Environment.Valid() {
		return fmt.Errorf("%w: unknown environment %q", ErrInvalidInput, f.Environment)
	}
	return nil
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	for _, known := range Severities {
		if s == known {
			return true
		}
	}
	return false
}

// Valid reports whether e is a known environment.
func (e Environment) Valid() bool {
	for _, known := range Environments {
		if e == known {
			return true
		}
	}
	return false
}

// ParseStatus accepts a status in any case and with spaces, dashes or
// underscores between words ("ready-for-testing", "InProgress").
func ParseStatus(v string) (Status, error) {
	for _, s := range Statuses {
		if normalize(v) == normalize(string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, v)
}

// ParseSeverity is the Severity counterpart of ParseStatus.
func ParseSeverity(v string) (Severity, error) {
	for _, s := range Severities {
		if normalize(v) == normalize(string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unknown severity %q", ErrInvalidInput, v)
}

// ParseEnvironment is the Environment counterpart of ParseStatus.
func ParseEnvironment(v string) (Environment, error) {
	for _, e := range Environments {
		if normalize(v) == normalize(string(e)) {
			return e, nil
		}
	}
	return "", fmt.Errorf("%w: unknown environment %q", ErrInvalidInput, v)
}

func normalize(v string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(v)))
}
