package restapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"

	"risk_checker/internal/app/port"
	"risk_checker/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// APIError is the JSON error body returned for failed snapshot requests.
type APIError struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// SnapshotHandler handles HTTP requests for wallet risk snapshots.
type SnapshotHandler struct {
	snapshotService port.SnapshotService
	logger          port.Logger
}

// NewSnapshotHandler creates a new instance of SnapshotHandler.
func NewSnapshotHandler(ss port.SnapshotService, l port.Logger) *SnapshotHandler {
	return &SnapshotHandler{snapshotService: ss, logger: l}
}

// GetSnapshotHandler serves GET /api/v1/snapshot/:address. An optional
// ?block= query pins the read to a historical block; without it the latest
// block is used. The response body is the snapshot document itself, not a
// wrapper.
func (h *SnapshotHandler) GetSnapshotHandler(c *gin.Context) {
	address := c.Param("address")
	if !common.IsHexAddress(address) {
		c.JSON(http.StatusBadRequest, APIError{Error: "invalid wallet address"})
		return
	}

	var blockNumber uint64
	if raw := c.Query("block"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || parsed == 0 {
			c.JSON(http.StatusBadRequest, APIError{Error: "invalid block number"})
			return
		}
		blockNumber = parsed
	}

	snapshot, err := h.snapshotService.GetSnapshot(c.Request.Context(), address, blockNumber)
	if err != nil {
		h.logger.Error("Snapshot request failed", "address", address, "error", err)

		var integrityErr *entity.DataIntegrityError
		switch {
		case errors.As(err, &integrityErr):
			c.JSON(http.StatusBadGateway, APIError{Error: integrityErr.Error()})
		case errors.Is(err, context.DeadlineExceeded):
			c.JSON(http.StatusGatewayTimeout, APIError{Error: "upstream data source timed out"})
		default:
			c.JSON(http.StatusInternalServerError, APIError{Error: "failed to compute snapshot"})
		}
		return
	}

	body, err := json.Marshal(snapshot)
	if err != nil {
		h.logger.Error("Failed to encode snapshot", "address", address, "error", err)
		c.JSON(http.StatusInternalServerError, APIError{Error: "failed to encode snapshot"})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// HealthHandler serves GET /health.
func (h *SnapshotHandler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
