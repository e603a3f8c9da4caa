package handlers

import (
	"net/http"
	"strconv"

	"mirror/internal/logger"
	"mirror/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type OrderHandler struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewOrderHandler(db *gorm.DB, logger *logger.Logger) *OrderHandler {
	return &OrderHandler{
		db:     db,
		logger: logger,
	}
}

func (h *OrderHandler) List(c *gin.Context) {
	var orders []models.Order

	// Pagination
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset := (page - 1) * limit

	// Filters
	status := c.Query("status")
	search := c.Query("search")

	query := h.db.Model(&models.Order{})

	if status != "" {
		query = query.Where("status = ?", status)
	}

	if search != "" {
		query = query.Where("billing_email LIKE ? OR billing_last_name LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	if err := query.Order("remote_created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": orders,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *OrderHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var order models.Order
	if err := h.db.Preload("LineItems").First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}
