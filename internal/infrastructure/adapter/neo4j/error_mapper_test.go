package neo4j

import (
	"errors"
	"fmt"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/graph-migrator/internal/domain/error"
)

func TestErrorMapper_MapError(t *testing.T) {
	mapper := NewErrorMapper()

	t.Run("should return nil for nil error", func(t *testing.T) {
		assert.NoError(t, mapper.MapError(nil, "whatever"))
	})

	t.Run("should map transient server errors to connection errors", func(t *testing.T) {
		serverErr := &db.Neo4jError{
			Code: "Neo.TransientError.Transaction.DeadlockDetected",
			Msg:  "LockClient can't wait on resource",
		}

		mapped := mapper.MapError(serverErr, "transaction statement")

		require.Error(t, mapped)
		assert.True(t, errs.IsConnectionError(mapped))
		assert.Contains(t, mapped.Error(), "transaction statement")
		assert.Contains(t, mapped.Error(), "LockClient can't wait on resource")
	})

	t.Run("should map constraint violations to duplicate version errors", func(t *testing.T) {
		serverErr := &db.Neo4jError{
			Code: "Neo.ClientError.Schema.ConstraintValidationFailed",
			Msg:  "Node already exists with label `__Migration` and property `version` = '0.2.0'",
		}

		mapped := mapper.MapError(serverErr, "transaction statement")

		require.Error(t, mapped)
		assert.True(t, errs.IsDuplicateVersionError(mapped))
		assert.Contains(t, mapped.Error(), "0.2.0")
	})

	t.Run("should map authentication failures to connection errors", func(t *testing.T) {
		serverErr := &db.Neo4jError{
			Code: "Neo.ClientError.Security.Unauthorized",
			Msg:  "The client is unauthorized due to authentication failure.",
		}

		mapped := mapper.MapError(serverErr, "begin transaction")

		assert.True(t, errs.IsConnectionError(mapped))
		assert.True(t, errors.Is(mapped, serverErr))
	})

	t.Run("should map missing databases to connection errors", func(t *testing.T) {
		serverErr := &db.Neo4jError{
			Code: "Neo.ClientError.Database.DatabaseNotFound",
			Msg:  "Database does not exist. Database name: 'movies'.",
		}

		assert.True(t, errs.IsConnectionError(mapper.MapError(serverErr, "auto-commit statement")))
	})

	t.Run("should pass other server errors through untouched", func(t *testing.T) {
		serverErr := &db.Neo4jError{
			Code: "Neo.ClientError.Statement.SyntaxError",
			Msg:  "Invalid input 'CREAT'",
		}

		mapped := mapper.MapError(serverErr, "transaction statement")

		assert.Same(t, serverErr, mapped)
		assert.False(t, errs.IsConnectionError(mapped))
	})

	t.Run("should pass wrapped server errors through untouched", func(t *testing.T) {
		serverErr := &db.Neo4jError{
			Code: "Neo.ClientError.Statement.ArgumentError",
			Msg:  "Invalid argument",
		}
		wrapped := fmt.Errorf("running migration 0.1.0: %w", serverErr)

		assert.Same(t, wrapped, mapper.MapError(wrapped, "transaction statement"))
	})

	t.Run("should map refused connections to connection errors", func(t *testing.T) {
		dialErr := errors.New("dial tcp 127.0.0.1:7687: connect: connection refused")

		mapped := mapper.MapError(dialErr, "auto-commit statement")

		assert.True(t, errs.IsConnectionError(mapped))
		assert.True(t, errors.Is(mapped, dialErr))
	})

	t.Run("should map deadline errors to connection timeouts", func(t *testing.T) {
		mapped := mapper.MapError(errors.New("context deadline exceeded"), "commit")

		assert.True(t, errs.IsConnectionError(mapped))
		assert.Contains(t, mapped.Error(), "commit timed out")
	})

	t.Run("should pass unrelated errors through untouched", func(t *testing.T) {
		plainErr := errors.New("something unexpected")

		assert.Same(t, plainErr, mapper.MapError(plainErr, "commit"))
	})
}
