package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domainerr "github.com/amirhossein-jamali/graph-migrator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/graph-migrator/internal/domain/port/core"
	"github.com/amirhossein-jamali/graph-migrator/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/graph-migrator/internal/infrastructure/adapter/api/dto"
)

// MigrationHandler handles migration-related HTTP requests
type MigrationHandler struct {
	migrator usecase.MigrationUseCase
	logger   coreport.Logger
}

// NewMigrationHandler creates a new migration handler instance
func NewMigrationHandler(
	migrator usecase.MigrationUseCase,
	logger coreport.Logger,
) *MigrationHandler {
	return &MigrationHandler{
		migrator: migrator,
		logger:   logger,
	}
}

// GetStatus handles the GET /api/v1/migrations/status endpoint
func (h *MigrationHandler) GetStatus(c *gin.Context) {
	result, err := h.migrator.Analyze(c.Request.Context())
	if err != nil {
		h.respondError(c, "Error analyzing migration state", err)
		return
	}

	response := dto.StatusResponse{
		Phase:        h.migrator.Phase().String(),
		PendingCount: len(result.PendingMigrations),
		InvalidCount: len(result.InvalidVersions),
	}
	if result.LatestApplied != nil {
		response.LatestApplied = result.LatestApplied.String()
	}
	for _, migration := range result.PendingMigrations {
		definition := migration.Definition()
		response.Pending = append(response.Pending, dto.PendingMigration{
			Version:     definition.Version.String(),
			Description: definition.Description,
			Type:        string(definition.Kind),
			Source:      definition.Source,
		})
	}
	for _, invalid := range result.InvalidVersions {
		response.InvalidVersions = append(response.InvalidVersions, dto.InvalidVersion{
			Version: invalid.Version.String(),
			Status:  invalid.Status.String(),
		})
	}

	c.JSON(http.StatusOK, response)
}

// GetHistory handles the GET /api/v1/migrations/history endpoint
func (h *MigrationHandler) GetHistory(c *gin.Context) {
	entries, err := h.migrator.History(c.Request.Context())
	if err != nil {
		h.respondError(c, "Error fetching migration history", err)
		return
	}

	response := dto.HistoryResponse{
		Entries: make([]dto.HistoryEntry, 0, len(entries)),
	}
	for _, entry := range entries {
		response.Entries = append(response.Entries, dto.HistoryEntry{
			Version:     entry.Version.String(),
			Description: entry.Description,
			Type:        string(entry.Kind),
			Source:      entry.Source,
			Checksum:    entry.Checksum,
			AppliedAt:   entry.AppliedAt.Format(time.RFC3339),
			TookMs:      entry.Took.Milliseconds(),
			AppliedBy:   entry.AppliedBy,
			ConnectedAs: entry.ConnectedAs,
		})
	}

	c.JSON(http.StatusOK, response)
}

// Health handles the GET /health endpoint
func (h *MigrationHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// respondError maps domain errors to HTTP status codes
func (h *MigrationHandler) respondError(c *gin.Context, message string, err error) {
	statusCode := http.StatusInternalServerError
	errorMessage := "Internal server error"

	switch {
	case domainerr.IsConnectionError(err):
		statusCode = http.StatusServiceUnavailable
		errorMessage = "Graph store unavailable"
	case domainerr.IsDuplicateVersionError(err), domainerr.IsMalformedVersionError(err):
		errorMessage = "Local migrations are inconsistent"
	}

	h.logger.Error(message, map[string]any{
		"error": err.Error(),
	})

	c.JSON(statusCode, dto.ErrorResponse{
		Code:    domainerr.ErrorCode(err),
		Message: errorMessage,
	})
}
