package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mzalendo/customer-records/internal/middleware"
	"github.com/mzalendo/customer-records/internal/models"
)

type ProductHandler struct {
	db *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

// List renders every product. Read-only; product rows are managed
// outside this application.
func (h *ProductHandler) List(c *gin.Context) {
	var products []models.Product
	if err := h.db.Order("created_at desc").Find(&products).Error; err != nil {
		serverError(c, err)
		return
	}

	c.HTML(http.StatusOK, "products.html", gin.H{
		"Identity": middleware.CurrentIdentity(c),
		"Products": products,
	})
}
