package neo4j

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/graph-migrator/internal/infrastructure/adapter/logger"
)

// fastRetryConfig keeps test backoffs in the microsecond range
func fastRetryConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:    maxRetries,
		RetryInterval: time.Microsecond,
		MaxInterval:   10 * time.Microsecond,
		JitterFactor:  0,
	}
}

func TestRetryOnTransientError(t *testing.T) {
	log := logger.NewNoopLogger()

	t.Run("should return immediately on success", func(t *testing.T) {
		calls := 0
		err := RetryOnTransientError(context.Background(), fastRetryConfig(5), func() error {
			calls++
			return nil
		}, log)

		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("should retry transient errors until success", func(t *testing.T) {
		calls := 0
		err := RetryOnTransientError(context.Background(), fastRetryConfig(5), func() error {
			calls++
			if calls < 3 {
				return errors.New("dial tcp: connection refused")
			}
			return nil
		}, log)

		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("should give up after the configured attempts", func(t *testing.T) {
		transient := errors.New("write: broken pipe")
		calls := 0
		err := RetryOnTransientError(context.Background(), fastRetryConfig(3), func() error {
			calls++
			return transient
		}, log)

		assert.ErrorIs(t, err, transient)
		assert.Equal(t, 3, calls)
	})

	t.Run("should not retry non-transient errors", func(t *testing.T) {
		fatal := &db.Neo4jError{
			Code: "Neo.ClientError.Security.Unauthorized",
			Msg:  "authentication failure",
		}
		calls := 0
		err := RetryOnTransientError(context.Background(), fastRetryConfig(5), func() error {
			calls++
			return fatal
		}, log)

		assert.ErrorIs(t, err, fatal)
		assert.Equal(t, 1, calls)
	})

	t.Run("should stop when the context is canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		config := RetryConfig{
			MaxRetries:    5,
			RetryInterval: time.Hour,
			MaxInterval:   time.Hour,
		}

		calls := 0
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()
		err := RetryOnTransientError(ctx, config, func() error {
			calls++
			return errors.New("connection reset by peer")
		}, log)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestIsTransientError(t *testing.T) {
	testCases := []struct {
		name      string
		err       error
		transient bool
	}{
		{"nil", nil, false},
		{"transient server code", &db.Neo4jError{Code: "Neo.TransientError.General.MemoryPoolOutOfMemoryError", Msg: "oom"}, true},
		{"deadlock server code", &db.Neo4jError{Code: "Neo.TransientError.Transaction.DeadlockDetected", Msg: "deadlock"}, true},
		{"client server code", &db.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError", Msg: "bad cypher"}, false},
		{"constraint violation", &db.Neo4jError{Code: "Neo.ClientError.Schema.ConstraintValidationFailed", Msg: "already exists"}, false},
		{"refused dial", errors.New("dial tcp 127.0.0.1:7687: connect: connection refused"), true},
		{"reset connection", errors.New("read tcp: connection reset by peer"), true},
		{"deadline", errors.New("context deadline exceeded"), true},
		{"pool timeout", errors.New("Timeout while waiting for connection from pool"), true},
		{"routing table", errors.New("unable to retrieve routing table from any router"), true},
		{"eof", errors.New("unexpected EOF"), true},
		{"plain failure", errors.New("index creation failed"), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.transient, isTransientError(tc.err))
		})
	}
}

func TestCalculateBackoffWithJitter(t *testing.T) {
	t.Run("should grow exponentially up to the cap", func(t *testing.T) {
		config := RetryConfig{
			RetryInterval: 100 * time.Millisecond,
			MaxInterval:   500 * time.Millisecond,
			JitterFactor:  0,
		}

		assert.Equal(t, 100*time.Millisecond, calculateBackoffWithJitter(0, config))
		assert.Equal(t, 200*time.Millisecond, calculateBackoffWithJitter(1, config))
		assert.Equal(t, 400*time.Millisecond, calculateBackoffWithJitter(2, config))
		assert.Equal(t, 500*time.Millisecond, calculateBackoffWithJitter(3, config))
		assert.Equal(t, 500*time.Millisecond, calculateBackoffWithJitter(4, config))
	})

	t.Run("should keep jitter within the configured factor", func(t *testing.T) {
		config := DefaultRetryConfig()

		for attempt := 0; attempt < 4; attempt++ {
			base := config.RetryInterval * (1 << uint(attempt))
			if base > config.MaxInterval {
				base = config.MaxInterval
			}

			backoff := calculateBackoffWithJitter(attempt, config)
			require.GreaterOrEqual(t, backoff, base)
			maxWithJitter := base + time.Duration(float64(base)*config.JitterFactor)
			require.LessOrEqual(t, backoff, maxWithJitter)
		}
	})
}
