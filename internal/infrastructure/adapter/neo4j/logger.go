package neo4j

import (
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/log"

	coreport "github.com/amirhossein-jamali/graph-migrator/internal/domain/port/core"
)

// DriverLogger routes the driver's internal logging through the core logger
type DriverLogger struct {
	coreLogger coreport.Logger
}

// NewDriverLogger creates a driver logger backed by the core logger
func NewDriverLogger(coreLogger coreport.Logger) log.Logger {
	return &DriverLogger{coreLogger: coreLogger}
}

// Error logs driver errors
func (l *DriverLogger) Error(name string, id string, err error) {
	l.coreLogger.Error("Driver error", map[string]any{
		"source":    "driver",
		"component": name,
		"id":        id,
		"error":     err.Error(),
	})
}

// Warnf logs driver warnings
func (l *DriverLogger) Warnf(name string, id string, msg string, args ...any) {
	if l.coreLogger.GetLevel() > coreport.LogLevelWarn {
		return
	}
	l.coreLogger.Warn(fmt.Sprintf(msg, args...), driverFields(name, id))
}

// Infof logs driver informational messages
func (l *DriverLogger) Infof(name string, id string, msg string, args ...any) {
	if l.coreLogger.GetLevel() > coreport.LogLevelInfo {
		return
	}
	l.coreLogger.Info(fmt.Sprintf(msg, args...), driverFields(name, id))
}

// Debugf logs driver debug messages, including bolt-level chatter
func (l *DriverLogger) Debugf(name string, id string, msg string, args ...any) {
	if l.coreLogger.GetLevel() > coreport.LogLevelDebug {
		return
	}
	l.coreLogger.Debug(fmt.Sprintf(msg, args...), driverFields(name, id))
}

func driverFields(name, id string) map[string]any {
	return map[string]any{
		"source":    "driver",
		"component": name,
		"id":        id,
	}
}
