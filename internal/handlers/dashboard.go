package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mzalendo/customer-records/internal/middleware"
	"github.com/mzalendo/customer-records/internal/models"
)

type DashboardHandler struct {
	db *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// Home renders the admin dashboard: every order and customer plus the
// derived counts. Counts are always computed from order rows, never
// stored.
func (h *DashboardHandler) Home(c *gin.Context) {
	var orders []models.Order
	if err := h.db.Preload("Customer").Preload("Product").Order("created_at desc").Find(&orders).Error; err != nil {
		serverError(c, err)
		return
	}

	var customers []models.Customer
	if err := h.db.Order("created_at desc").Find(&customers).Error; err != nil {
		serverError(c, err)
		return
	}

	var totalCustomers, totalOrders, delivered, pending int64
	h.db.Model(&models.Customer{}).Count(&totalCustomers)
	h.db.Model(&models.Order{}).Count(&totalOrders)
	h.db.Model(&models.Order{}).Where("status = ?", models.StatusDelivered).Count(&delivered)
	h.db.Model(&models.Order{}).Where("status = ?", models.StatusPending).Count(&pending)

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Identity":       middleware.CurrentIdentity(c),
		"Orders":         orders,
		"Customers":      customers,
		"TotalCustomers": totalCustomers,
		"TotalOrders":    totalOrders,
		"Delivered":      delivered,
		"Pending":        pending,
	})
}

// UserPage shows the caller's own orders with the same counts scoped
// to their linked customer record. A user without one (a seeded admin)
// gets an empty list rather than an error.
func (h *DashboardHandler) UserPage(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	var customer models.Customer
	err := h.db.Where("user_id = ?", identity.UserID).First(&customer).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		serverError(c, err)
		return
	}

	var orders []models.Order
	var totalOrders, delivered, pending int64
	if err == nil {
		if err := h.db.Preload("Product").Where("customer_id = ?", customer.ID).Order("created_at desc").Find(&orders).Error; err != nil {
			serverError(c, err)
			return
		}
		h.db.Model(&models.Order{}).Where("customer_id = ?", customer.ID).Count(&totalOrders)
		h.db.Model(&models.Order{}).Where("customer_id = ? AND status = ?", customer.ID, models.StatusDelivered).Count(&delivered)
		h.db.Model(&models.Order{}).Where("customer_id = ? AND status = ?", customer.ID, models.StatusPending).Count(&pending)
	}

	c.HTML(http.StatusOK, "user.html", gin.H{
		"Identity":    identity,
		"Customer":    customer,
		"Orders":      orders,
		"TotalOrders": totalOrders,
		"Delivered":   delivered,
		"Pending":     pending,
	})
}
