package errors

import "errors"

// Sentinel errors for known conditions.
var (
	// ErrMissingArgument indicates the project name was not supplied.
	ErrMissingArgument = errors.New("missing argument")

	// ErrFetch indicates the template could not be fetched.
	ErrFetch = errors.New("fetch failed")

	// ErrRewrite indicates a filesystem operation inside the rewrite engine failed.
	ErrRewrite = errors.New("rewrite failed")

	// ErrInstall indicates dependency installation failed.
	ErrInstall = errors.New("install failed")

	// ErrVCS indicates version-control reinitialization failed.
	ErrVCS = errors.New("version control failed")

	// ErrValidation indicates invalid user input or configuration.
	ErrValidation = errors.New("validation error")

	// ErrPermission indicates insufficient permissions.
	ErrPermission = errors.New("permission denied")

	// ErrNotFound indicates a file or directory was not found.
	ErrNotFound = errors.New("not found")
)
