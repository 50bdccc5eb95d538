package types

import "errors"

// Domain errors shared across search and classification
var (
	// ErrUnknownField is returned when a field-scoped search names a field
	// outside SearchableFields.
	ErrUnknownField = errors.New("unknown searchable field")
	// ErrInvalidPattern is returned when a regex-mode query fails to compile.
	ErrInvalidPattern = errors.New("invalid regex pattern")
	// ErrInvalidOperator is returned for boolean operators other than AND/OR.
	ErrInvalidOperator = errors.New("operator must be AND or OR")
	// ErrEmptyQuerySet is returned when an advanced search supplies no
	// field queries.
	ErrEmptyQuerySet = errors.New("at least one field query is required")
)
