package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/clinic-assistant/internal/infrastructure/storage"
)

// Storage exposes storage diagnostics used by operators to verify the
// recording bucket is reachable
type Storage struct {
	minioClient *storage.MinIOClient
	logger      *zap.Logger
}

// NewStorage creates a new storage diagnostics handler
func NewStorage(minioClient *storage.MinIOClient, logger *zap.Logger) *Storage {
	return &Storage{minioClient: minioClient, logger: logger}
}

// Info returns bucket connectivity information
func (h *Storage) Info(c echo.Context) error {
	info, err := h.minioClient.GetBucketInfo(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, info)
}
