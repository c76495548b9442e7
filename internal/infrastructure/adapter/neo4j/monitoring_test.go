package neo4j

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	coremocks "github.com/amirhossein-jamali/graph-migrator/mocks/port/core"
)

func TestMetricsCollector_MeasureStatement(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("should record duration and records without warning", func(t *testing.T) {
		logger := coremocks.NewMockLogger(t)
		tp := coremocks.NewMockTimeProvider(t)
		tp.On("Now").Return(base).Once()
		tp.On("Now").Return(base.Add(5 * time.Millisecond)).Once()

		collector := NewMetricsCollector(logger, tp)
		metrics, err := collector.MeasureStatement(context.Background(), "auto-commit statement", func() (int64, error) {
			return 7, nil
		})

		require.NoError(t, err)
		assert.Equal(t, "auto-commit statement", metrics.Operation)
		assert.Equal(t, 5*time.Millisecond, metrics.Duration)
		assert.Equal(t, int64(7), metrics.Records)
		assert.False(t, metrics.Failed)
		assert.Empty(t, metrics.ErrorMessage)
	})

	t.Run("should warn when a statement is slow", func(t *testing.T) {
		logger := coremocks.NewMockLogger(t)
		logger.On("Warn", "Slow statement detected", mock.MatchedBy(func(fields map[string]any) bool {
			return fields["operation"] == "transaction statement" &&
				fields["duration_ms"] == int64(250)
		})).Once()
		tp := coremocks.NewMockTimeProvider(t)
		tp.On("Now").Return(base).Once()
		tp.On("Now").Return(base.Add(250 * time.Millisecond)).Once()

		collector := NewMetricsCollector(logger, tp)
		metrics, err := collector.MeasureStatement(context.Background(), "transaction statement", func() (int64, error) {
			return 1, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 250*time.Millisecond, metrics.Duration)
	})

	t.Run("should return the statement error and mark the metrics failed", func(t *testing.T) {
		logger := coremocks.NewMockLogger(t)
		tp := coremocks.NewMockTimeProvider(t)
		tp.On("Now").Return(base).Once()
		tp.On("Now").Return(base.Add(time.Millisecond)).Once()

		statementErr := errors.New("constraint violation")
		collector := NewMetricsCollector(logger, tp)
		metrics, err := collector.MeasureStatement(context.Background(), "transaction statement", func() (int64, error) {
			return 0, statementErr
		})

		assert.ErrorIs(t, err, statementErr)
		assert.True(t, metrics.Failed)
		assert.Equal(t, "constraint violation", metrics.ErrorMessage)
	})
}
