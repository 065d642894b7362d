package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"gorm.io/gorm"

	"github.com/mzalendo/customer-records/internal/middleware"
	"github.com/mzalendo/customer-records/internal/models"
)

type CustomerHandler struct {
	db        *gorm.DB
	flash     *sessions.CookieStore
	uploadDir string
}

func NewCustomerHandler(db *gorm.DB, flash *sessions.CookieStore, uploadDir string) *CustomerHandler {
	return &CustomerHandler{db: db, flash: flash, uploadDir: uploadDir}
}

// Detail renders one customer with their order list, optionally
// narrowed by ?status=. TotalOrders is counted before the filter is
// applied, so it can disagree with the filtered table below it. That
// matches the longstanding behavior of this page.
func (h *CustomerHandler) Detail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		notFound(c, "customer")
		return
	}

	var customer models.Customer
	if err := h.db.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c, "customer")
			return
		}
		serverError(c, err)
		return
	}

	var totalOrders int64
	h.db.Model(&models.Order{}).Where("customer_id = ?", customer.ID).Count(&totalOrders)

	filter := models.FilterFromQuery(c.Request.URL.Query())

	var orders []models.Order
	q := h.db.Preload("Product").Where("customer_id = ?", customer.ID)
	if err := filter.Apply(q).Order("created_at desc").Find(&orders).Error; err != nil {
		serverError(c, err)
		return
	}

	c.HTML(http.StatusOK, "customer.html", gin.H{
		"Identity":    middleware.CurrentIdentity(c),
		"Customer":    customer,
		"TotalOrders": totalOrders,
		"Orders":      orders,
		"Filter":      filter,
	})
}

// currentCustomer resolves the caller's linked profile, creating an
// empty one if it is missing so account settings stay usable for
// seeded admins.
func (h *CustomerHandler) currentCustomer(identity *middleware.Identity) (*models.Customer, error) {
	var customer models.Customer
	err := h.db.Where("user_id = ?", identity.UserID).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		userID := identity.UserID
		customer = models.Customer{UserID: &userID, Name: identity.Username}
		err = h.db.Create(&customer).Error
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (h *CustomerHandler) AccountSettingsPage(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	customer, err := h.currentCustomer(identity)
	if err != nil {
		serverError(c, err)
		return
	}

	c.HTML(http.StatusOK, "account_settings.html", gin.H{
		"Identity": identity,
		"Customer": customer,
		"Form":     models.ProfileForm{Name: customer.Name, Phone: customer.Phone, Email: customer.Email},
		"Flashes":  takeFlashes(h.flash, c),
	})
}

// AccountSettings persists profile edits in place, including an
// optional profile image upload.
func (h *CustomerHandler) AccountSettings(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	customer, err := h.currentCustomer(identity)
	if err != nil {
		serverError(c, err)
		return
	}

	form := models.ProfileForm{
		Name:  c.PostForm("name"),
		Phone: c.PostForm("phone"),
		Email: c.PostForm("email"),
	}
	if errs := form.Validate(); len(errs) > 0 {
		c.HTML(http.StatusOK, "account_settings.html", gin.H{
			"Identity": identity,
			"Customer": customer,
			"Form":     form,
			"Errors":   errs,
		})
		return
	}

	customer.Name = form.Name
	customer.Phone = form.Phone
	customer.Email = form.Email

	if file, err := c.FormFile("profile_pic"); err == nil {
		filename := fmt.Sprintf("customer_%d%s", customer.ID, filepath.Ext(file.Filename))
		if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, filename)); err != nil {
			serverError(c, err)
			return
		}
		customer.ProfilePic = "/static/uploads/" + filename
	}

	if err := h.db.Save(customer).Error; err != nil {
		serverError(c, err)
		return
	}

	addFlash(h.flash, c, "success", "Profile updated")
	c.Redirect(http.StatusFound, "/account_settings/")
}
