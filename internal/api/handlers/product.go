package handlers

import (
	"net/http"
	"strconv"

	"mirror/internal/logger"
	"mirror/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProductHandler struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewProductHandler(db *gorm.DB, logger *logger.Logger) *ProductHandler {
	return &ProductHandler{
		db:     db,
		logger: logger,
	}
}

func (h *ProductHandler) List(c *gin.Context) {
	var products []models.Product

	// Pagination
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset := (page - 1) * limit

	// Filters
	status := c.Query("status")
	productType := c.Query("type")
	search := c.Query("search")

	query := h.db.Model(&models.Product{})

	if status != "" {
		query = query.Where("status = ?", status)
	}

	if productType != "" {
		query = query.Where("product_type = ?", productType)
	}

	if search != "" {
		query = query.Where("name LIKE ? OR sku LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	if err := query.Order("remote_created_at DESC").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": products,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *ProductHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var product models.Product
	if err := h.db.Preload("Variations").First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

// Calendar groups products by their inferred event date, newest first.
// Products without a derived date are left out: the date is advisory and
// only feeds this view.
func (h *ProductHandler) Calendar(c *gin.Context) {
	var products []models.Product
	if err := h.db.Where("event_date IS NOT NULL").Order("event_date ASC").Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	grouped := make(map[string][]models.Product)
	for _, product := range products {
		day := product.EventDate.Format("2006-01-02")
		grouped[day] = append(grouped[day], product)
	}

	c.JSON(http.StatusOK, gin.H{"data": grouped})
}
