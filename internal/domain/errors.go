package domain

import "errors"

var (
	// ErrInvalidQuery signals a query string that failed to parse.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrFilterNotFound signals a missing filter.
	ErrFilterNotFound = errors.New("filter not found")
	// ErrFilterExists signals a second filter registered under the same name.
	ErrFilterExists = errors.New("filter already exists")
	// ErrInvalidFilter signals a filter whose definition cannot be compiled.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrTooManyImages signals a batch larger than the configured limit.
	ErrTooManyImages = errors.New("too many images")
)

// KeyPrefix namespaces every key booruq writes to Redis or Valkey.
const KeyPrefix = "booruq:"
