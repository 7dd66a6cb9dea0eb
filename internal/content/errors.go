package content

import "errors"

var (
	// ErrSingletonViolation is returned when a site already has the
	// Company or SiteConfig being created.
	ErrSingletonViolation = errors.New("site already has this record")

	// ErrInvalid wraps field-level validation failures on admin writes.
	ErrInvalid = errors.New("invalid content")
)
