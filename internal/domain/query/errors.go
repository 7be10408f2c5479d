package query

import (
	"fmt"

	"github.com/kailas-cloud/booruq/internal/domain"
)

// ErrorKind classifies why a query failed to parse.
type ErrorKind uint8

const (
	// Lexical means no token rule matched at some position.
	Lexical ErrorKind = iota + 1
	// Structural means the operators and operands do not form a tree.
	Structural
	// Semantic means a term could not be classified, e.g. a malformed date.
	Semantic
)

func (k ErrorKind) String() string {
	switch k {
	case Lexical:
		return "lexical"
	case Structural:
		return "structural"
	case Semantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// ParseError is returned for every query that cannot be turned into a tree.
// It matches domain.ErrInvalidQuery under errors.Is.
type ParseError struct {
	Kind    ErrorKind
	Message string
	// Pos is the byte offset in the input, or -1 when not tied to a position.
	Pos int
}

func (e *ParseError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Message)
	}
	return "parse error: " + e.Message
}

func (e *ParseError) Unwrap() error { return domain.ErrInvalidQuery }

func lexicalError(pos int, msg string) *ParseError {
	return &ParseError{Kind: Lexical, Message: msg, Pos: pos}
}

func structuralError(msg string) *ParseError {
	return &ParseError{Kind: Structural, Message: msg, Pos: -1}
}

func structuralErrorAt(pos int, msg string) *ParseError {
	return &ParseError{Kind: Structural, Message: msg, Pos: pos}
}

func semanticError(format string, args ...any) *ParseError {
	return &ParseError{Kind: Semantic, Message: fmt.Sprintf(format, args...), Pos: -1}
}
