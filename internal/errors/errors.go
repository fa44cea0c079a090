// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrRateLimited      = errors.New("rate limited")
	ErrDataNotFound     = errors.New("data not found")
	ErrCacheCorrupt     = errors.New("cache file corrupt")
	ErrSchemaMismatch   = errors.New("store schema mismatch")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrDatabaseError    = errors.New("database error")
)

// TransportError represents a network or API failure talking to an
// external source. Call sites recover by returning an empty result.
type TransportError struct {
	Source   string
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("transport error [%s] %s: %v", e.Source, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("transport error [%s]: %v", e.Source, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new TransportError.
func NewTransportError(source, endpoint string, err error) *TransportError {
	return &TransportError{Source: source, Endpoint: endpoint, Err: err}
}

// DataQualityError represents missing or invalid data on a single
// candidate. Call sites recover by skipping the candidate.
type DataQualityError struct {
	Ticker  string
	Field   string
	Message string
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("data quality error [%s] %s: %s", e.Ticker, e.Field, e.Message)
}

// NewDataQualityError creates a new DataQualityError.
func NewDataQualityError(ticker, field, message string) *DataQualityError {
	return &DataQualityError{Ticker: ticker, Field: field, Message: message}
}

// SchemaError represents a durable-store schema that does not match
// expectations. Fatal for the affected maintenance command.
type SchemaError struct {
	Table    string
	Column   string
	Expected string
	Actual   string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema mismatch on %s.%s: expected %q, found %q",
		e.Table, e.Column, e.Expected, e.Actual)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaMismatch
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(table, column, expected, actual string) *SchemaError {
	return &SchemaError{Table: table, Column: column, Expected: expected, Actual: actual}
}

// CacheError represents a cache file that could not be read or parsed.
// Call sites recover by treating the cache as empty.
type CacheError struct {
	Path string
	Err  error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error [%s]: %v", e.Path, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

// NewCacheError creates a new CacheError.
func NewCacheError(path string, err error) *CacheError {
	return &CacheError{Path: path, Err: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
