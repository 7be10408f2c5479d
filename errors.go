package booruq

import "github.com/kailas-cloud/booruq/internal/domain"

// Sentinel errors, matchable with errors.Is.
var (
	ErrInvalidQuery   = domain.ErrInvalidQuery
	ErrInvalidFilter  = domain.ErrInvalidFilter
	ErrFilterNotFound = domain.ErrFilterNotFound
	ErrFilterExists   = domain.ErrFilterExists
	ErrTooManyImages  = domain.ErrTooManyImages
)
