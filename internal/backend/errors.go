// Package backend talks to the job-description API that generates, parses and signs in recruiters.
package backend

import (
	"errors"
	"fmt"
)

// ErrNotPDF is returned when an upload is not a readable PDF file.
var ErrNotPDF = errors.New("PDF file only")

// APICallError represents a failed call to the backend, either a transport
// failure (Status 0) or a non-2xx response.
type APICallError struct {
	Endpoint string
	Status   int
	Message  string
	Cause    error
}

func (e *APICallError) Error() string {
	if e.Status == 0 {
		if e.Cause != nil {
			return fmt.Sprintf("backend call %s failed: %s: %v", e.Endpoint, e.Message, e.Cause)
		}
		return fmt.Sprintf("backend call %s failed: %s", e.Endpoint, e.Message)
	}
	return fmt.Sprintf("backend call %s failed with status %d: %s", e.Endpoint, e.Status, e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError represents a backend response that could not be decoded or did not match its schema.
type ParseError struct {
	Endpoint string
	Message  string
	Cause    error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error for %s: %s: %v", e.Endpoint, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error for %s: %s", e.Endpoint, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// PDFError represents a file that failed the PDF preflight. It matches ErrNotPDF.
type PDFError struct {
	Path    string
	Message string
	Cause   error
}

func (e *PDFError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s: %v", ErrNotPDF, e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %s", ErrNotPDF, e.Path, e.Message)
}

func (e *PDFError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrNotPDF.
func (e *PDFError) Is(target error) bool {
	return target == ErrNotPDF
}
