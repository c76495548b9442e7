package neo4j

import (
	"context"
	"time"

	coreport "github.com/amirhossein-jamali/graph-migrator/internal/domain/port/core"
)

// slowStatementThreshold is the execution time above which a statement is
// logged as slow
const slowStatementThreshold = 100 * time.Millisecond

// StatementMetrics holds metrics about an executed Cypher statement
type StatementMetrics struct {
	Operation    string
	Duration     time.Duration
	Records      int64
	Failed       bool
	ErrorMessage string
}

// MetricsCollector collects statement execution metrics
type MetricsCollector struct {
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(logger coreport.Logger, timeProvider coreport.TimeProvider) *MetricsCollector {
	return &MetricsCollector{
		logger:       logger,
		timeProvider: timeProvider,
	}
}

// MeasureStatement measures the execution time of a Cypher statement
func (c *MetricsCollector) MeasureStatement(ctx context.Context, operation string, fn func() (int64, error)) (*StatementMetrics, error) {
	start := c.timeProvider.Now()

	records, err := fn()

	metrics := &StatementMetrics{
		Operation: operation,
		Duration:  c.timeProvider.Now().Sub(start),
		Records:   records,
		Failed:    err != nil,
	}

	if err != nil {
		metrics.ErrorMessage = err.Error()
	}

	// Log slow statements
	if metrics.Duration > slowStatementThreshold {
		c.logger.Warn("Slow statement detected", map[string]any{
			"operation":     operation,
			"duration_ms":   metrics.Duration.Milliseconds(),
			"records":       records,
			"failed":        metrics.Failed,
			"error_message": metrics.ErrorMessage,
		})
	}

	return metrics, err
}
