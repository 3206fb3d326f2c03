package apperrors

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrDependencyMissing is returned before any work starts when a required
	// capability (datasource adapter, similarity scorer) is not available.
	ErrDependencyMissing = errors.New("dependency missing")

	// ErrNoClasses signals that a model source produced an empty catalog.
	ErrNoClasses = errors.New("no classes found in model source")

	ErrInvalidThreshold = errors.New("threshold must be between 0 and 100")
)
