package handlers

import (
	"errors"
	"io"
	"net/http"

	"mirror/internal/logger"
	"mirror/internal/sync"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	service *sync.Service
	logger  *logger.Logger
}

func NewSyncHandler(service *sync.Service, logger *logger.Logger) *SyncHandler {
	return &SyncHandler{
		service: service,
		logger:  logger,
	}
}

type syncProductsRequest struct {
	Mode string `json:"mode"`
}

func (h *SyncHandler) SyncProducts(c *gin.Context) {
	req := syncProductsRequest{Mode: string(sync.ProductSyncIncremental)}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode := sync.ProductSyncMode(req.Mode)
	if mode != sync.ProductSyncFull && mode != sync.ProductSyncIncremental {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be full or incremental"})
		return
	}

	result, err := h.service.SyncProducts(mode, h.progress)
	if err != nil {
		if errors.Is(err, sync.ErrSyncInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

type syncOrdersRequest struct {
	Mode  string `json:"mode"`
	Value int    `json:"value"`
}

func (h *SyncHandler) SyncOrders(c *gin.Context) {
	req := syncOrdersRequest{Mode: string(sync.OrderSyncSmart)}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode := sync.OrderSyncMode(req.Mode)
	switch mode {
	case sync.OrderSyncSmart, sync.OrderSyncFull:
	case sync.OrderSyncDays, sync.OrderSyncRapid:
		if req.Value <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "value must be positive for days and rapid modes"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be smart, full, days or rapid"})
		return
	}

	result, err := h.service.SyncOrders(mode, req.Value, h.progress)
	if err != nil {
		if errors.Is(err, sync.ErrSyncInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (h *SyncHandler) progress(msg string) {
	h.logger.Info("[sync] %s", msg)
}
