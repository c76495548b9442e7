package error

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for standardized API responses
const (
	// 4xxx - Operator errors
	CodeMalformedVersion     = 4001
	CodeDuplicateVersion     = 4002
	CodeValidation           = 4003
	CodeUnsupportedOperation = 4005
	CodeNotFound             = 4040

	// 5xxx - Store and server errors
	CodeInternalServer  = 5000
	CodeLedgerIntegrity = 5001
	CodeConnection      = 5002
)

// Base error types
var (
	// ErrMalformedVersion is returned when a version string cannot be parsed
	// into dot-separated non-negative integers
	ErrMalformedVersion = errors.New("malformed version")

	// ErrDuplicateVersion is returned when two local migrations declare the same version
	ErrDuplicateVersion = errors.New("duplicate migration version")

	// ErrValidation is returned when analysis finds drifted or locally missing
	// migrations, or when a rollback is requested with nothing applied
	ErrValidation = errors.New("migration verification failed")

	// ErrNotFound is returned when a requested version is absent from the set
	// it was expected in
	ErrNotFound = errors.New("migration not found")

	// ErrUnsupportedOperation is returned when a migration selected for
	// rollback carries no backward body
	ErrUnsupportedOperation = errors.New("operation not supported by migration")

	// ErrLedgerIntegrity is returned when a ledger mutation did not affect
	// exactly the expected nodes and relationships
	ErrLedgerIntegrity = errors.New("migration ledger integrity violation")

	// ErrConnection is returned when the graph store cannot be reached or a
	// session cannot be established
	ErrConnection = errors.New("graph store connection error")

	// ErrInvalidRequest is returned when an API request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrMalformedVersion):
		return CodeMalformedVersion
	case errors.Is(err, ErrDuplicateVersion):
		return CodeDuplicateVersion
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrUnsupportedOperation):
		return CodeUnsupportedOperation
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrLedgerIntegrity):
		return CodeLedgerIntegrity
	case errors.Is(err, ErrConnection):
		return CodeConnection
	default:
		return CodeInternalServer
	}
}

// MalformedVersionError reports the component of a version string that
// failed to parse
type MalformedVersionError struct {
	Version   string
	Component string
}

// Error implements the error interface
func (e *MalformedVersionError) Error() string {
	return fmt.Sprintf("malformed version %q: component %q is not a non-negative integer",
		e.Version, e.Component)
}

// Is checks if the target error is an ErrMalformedVersion
func (e *MalformedVersionError) Is(target error) bool {
	return target == ErrMalformedVersion
}

// LogFields returns a map of fields for structured logging
func (e *MalformedVersionError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "malformed_version",
		"version":    e.Version,
		"component":  e.Component,
		"error_code": CodeMalformedVersion,
	}
}

// NewMalformedVersionError creates a new detailed malformed version error
func NewMalformedVersionError(version, component string) error {
	return &MalformedVersionError{
		Version:   version,
		Component: component,
	}
}

// DuplicateVersionError reports the sources that declared the same version
type DuplicateVersionError struct {
	Version string
	Sources []string
}

// Error implements the error interface
func (e *DuplicateVersionError) Error() string {
	return fmt.Sprintf("duplicate migration version %s declared by: %s",
		e.Version, strings.Join(e.Sources, ", "))
}

// Is checks if the target error is an ErrDuplicateVersion
func (e *DuplicateVersionError) Is(target error) bool {
	return target == ErrDuplicateVersion
}

// LogFields returns a map of fields for structured logging
func (e *DuplicateVersionError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "duplicate_version",
		"version":    e.Version,
		"sources":    e.Sources,
		"error_code": CodeDuplicateVersion,
	}
}

// NewDuplicateVersionError creates a new detailed duplicate version error
func NewDuplicateVersionError(version string, sources ...string) error {
	return &DuplicateVersionError{
		Version: version,
		Sources: sources,
	}
}

// ValidationError reports why a migrate or rollback call was refused before
// any store mutation was attempted
type ValidationError struct {
	Reason   string
	Findings []string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Findings) == 0 {
		return fmt.Sprintf("migration verification failed: %s", e.Reason)
	}
	return fmt.Sprintf("migration verification failed: %s: %s",
		e.Reason, strings.Join(e.Findings, "; "))
}

// Is checks if the target error is an ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// LogFields returns a map of fields for structured logging
func (e *ValidationError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "validation",
		"reason":     e.Reason,
		"findings":   e.Findings,
		"error_code": CodeValidation,
	}
}

// NewValidationError creates a detailed validation error
func NewValidationError(reason string, findings ...string) error {
	return &ValidationError{
		Reason:   reason,
		Findings: findings,
	}
}

// NotFoundError reports a version that was expected in a given set but absent
type NotFoundError struct {
	Version string
	Scope   string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("migration version %s not found in %s", e.Version, e.Scope)
}

// Is checks if the target error is an ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// LogFields returns a map of fields for structured logging
func (e *NotFoundError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "not_found",
		"version":    e.Version,
		"scope":      e.Scope,
		"error_code": CodeNotFound,
	}
}

// NewNotFoundError creates a new detailed not found error
func NewNotFoundError(version, scope string) error {
	return &NotFoundError{
		Version: version,
		Scope:   scope,
	}
}

// UnsupportedOperationError reports a migration that cannot perform the
// requested operation
type UnsupportedOperationError struct {
	Version   string
	Operation string
}

// Error implements the error interface
func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("migration %s does not support %s", e.Version, e.Operation)
}

// Is checks if the target error is an ErrUnsupportedOperation
func (e *UnsupportedOperationError) Is(target error) bool {
	return target == ErrUnsupportedOperation
}

// LogFields returns a map of fields for structured logging
func (e *UnsupportedOperationError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "unsupported_operation",
		"version":    e.Version,
		"operation":  e.Operation,
		"error_code": CodeUnsupportedOperation,
	}
}

// NewUnsupportedOperationError creates a new detailed unsupported operation error
func NewUnsupportedOperationError(version, operation string) error {
	return &UnsupportedOperationError{
		Version:   version,
		Operation: operation,
	}
}

// LedgerIntegrityError reports a ledger mutation whose write counters did not
// match the expected single node and relationship
type LedgerIntegrityError struct {
	Operation     string
	Nodes         int
	Relationships int
}

// Error implements the error interface
func (e *LedgerIntegrityError) Error() string {
	return fmt.Sprintf("ledger integrity violation during %s: %d node(s) and %d relationship(s) affected, inspect the migration chain",
		e.Operation, e.Nodes, e.Relationships)
}

// Is checks if the target error is an ErrLedgerIntegrity
func (e *LedgerIntegrityError) Is(target error) bool {
	return target == ErrLedgerIntegrity
}

// LogFields returns a map of fields for structured logging
func (e *LedgerIntegrityError) LogFields() map[string]any {
	return map[string]any{
		"error_type":    "ledger_integrity",
		"operation":     e.Operation,
		"nodes":         e.Nodes,
		"relationships": e.Relationships,
		"error_code":    CodeLedgerIntegrity,
	}
}

// NewLedgerIntegrityError creates a new detailed ledger integrity error
func NewLedgerIntegrityError(operation string, nodes, relationships int) error {
	return &LedgerIntegrityError{
		Operation:     operation,
		Nodes:         nodes,
		Relationships: relationships,
	}
}

// ConnectionError wraps a driver-level failure with the target it occurred against
type ConnectionError struct {
	Target string
	Err    error
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("graph store connection error for %s: %v", e.Target, e.Err)
}

// Unwrap returns the underlying error
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Is checks if the target error is an ErrConnection
func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection
}

// LogFields returns a map of fields for structured logging
func (e *ConnectionError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "connection",
		"target":     e.Target,
		"error":      e.Err.Error(),
		"error_code": CodeConnection,
	}
}

// NewConnectionError creates a new detailed connection error
func NewConnectionError(target string, err error) error {
	return &ConnectionError{
		Target: target,
		Err:    err,
	}
}

// IsMalformedVersionError checks if the error is a malformed version error
func IsMalformedVersionError(err error) bool {
	return errors.Is(err, ErrMalformedVersion)
}

// IsDuplicateVersionError checks if the error is a duplicate version error
func IsDuplicateVersionError(err error) bool {
	return errors.Is(err, ErrDuplicateVersion)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnsupportedOperationError checks if the error is an unsupported operation error
func IsUnsupportedOperationError(err error) bool {
	return errors.Is(err, ErrUnsupportedOperation)
}

// IsLedgerIntegrityError checks if the error is a ledger integrity error
func IsLedgerIntegrityError(err error) bool {
	return errors.Is(err, ErrLedgerIntegrity)
}

// IsConnectionError checks if the error is a graph store connection error
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnection)
}
