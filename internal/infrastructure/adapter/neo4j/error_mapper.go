package neo4j

import (
	"errors"
	"fmt"
	"strings"

	neo4jdrv "github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"

	domainErr "github.com/amirhossein-jamali/graph-migrator/internal/domain/error"
)

// Neo4j status code prefixes used for classification
const (
	transientCodePrefix  = "Neo.TransientError"
	constraintCode       = "Neo.ClientError.Schema.ConstraintValidationFailed"
	securityCodePrefix   = "Neo.ClientError.Security"
	databaseNotFoundCode = "Neo.ClientError.Database.DatabaseNotFound"
)

// ErrorMapper maps driver errors to domain errors
type ErrorMapper struct{}

// NewErrorMapper creates a new ErrorMapper
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{}
}

// MapError maps a driver error to a domain error. Errors that carry no
// connection or ledger meaning pass through untouched so that failures in
// migration bodies keep the server's original message.
func (m *ErrorMapper) MapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	// Failures reported by the server carry a structured status code
	var neoErr *db.Neo4jError
	if errors.As(err, &neoErr) {
		switch {
		case strings.HasPrefix(neoErr.Code, transientCodePrefix):
			return fmt.Errorf("%w: transient failure during %s: %s",
				domainErr.ErrConnection, operation, neoErr.Msg)

		// The version uniqueness constraint rejected a concurrent append
		case strings.HasPrefix(neoErr.Code, constraintCode):
			return fmt.Errorf("%w: %s", domainErr.ErrDuplicateVersion, neoErr.Msg)

		case strings.HasPrefix(neoErr.Code, securityCodePrefix):
			return domainErr.NewConnectionError(operation, err)

		case strings.HasPrefix(neoErr.Code, databaseNotFoundCode):
			return domainErr.NewConnectionError(operation, err)
		}
		return err
	}

	// Failures raised on the driver side before reaching the server
	if neo4jdrv.IsConnectivityError(err) {
		return domainErr.NewConnectionError(operation, err)
	}

	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "no connection") ||
		strings.Contains(errMsg, "connection reset"):
		return domainErr.NewConnectionError(operation, err)

	case strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "deadline exceeded"):
		return fmt.Errorf("%w: %s timed out", domainErr.ErrConnection, operation)

	default:
		return err
	}
}
