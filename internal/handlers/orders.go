package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mzalendo/customer-records/internal/middleware"
	"github.com/mzalendo/customer-records/internal/models"
	"github.com/mzalendo/customer-records/internal/services"
)

// FormsetSize is how many blank order rows the bulk create page shows.
const FormsetSize = 5

type OrderHandler struct {
	db       *gorm.DB
	notifier services.Notifier
}

func NewOrderHandler(db *gorm.DB, notifier services.Notifier) *OrderHandler {
	return &OrderHandler{db: db, notifier: notifier}
}

// formsetRow is one editable row on the bulk create page.
type formsetRow struct {
	Index  int
	Form   models.OrderForm
	Errors map[string]string
}

func blankFormset() []formsetRow {
	rows := make([]formsetRow, FormsetSize)
	for i := range rows {
		rows[i] = formsetRow{Index: i + 1, Form: models.OrderForm{Status: string(models.StatusPending)}}
	}
	return rows
}

func (h *OrderHandler) loadCustomer(c *gin.Context) (*models.Customer, bool) {
	id, err := strconv.Atoi(c.Param("customer_id"))
	if err != nil {
		notFound(c, "customer")
		return nil, false
	}
	var customer models.Customer
	if err := h.db.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c, "customer")
		} else {
			serverError(c, err)
		}
		return nil, false
	}
	return &customer, true
}

func (h *OrderHandler) loadOrder(c *gin.Context) (*models.Order, bool) {
	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		notFound(c, "order")
		return nil, false
	}
	var order models.Order
	if err := h.db.Preload("Product").Preload("Customer").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c, "order")
		} else {
			serverError(c, err)
		}
		return nil, false
	}
	return &order, true
}

func (h *OrderHandler) products(c *gin.Context) ([]models.Product, bool) {
	var products []models.Product
	if err := h.db.Order("name").Find(&products).Error; err != nil {
		serverError(c, err)
		return nil, false
	}
	return products, true
}

func productIDSet(products []models.Product) map[uint]bool {
	set := make(map[uint]bool, len(products))
	for _, p := range products {
		set[p.ID] = true
	}
	return set
}

// CreateOrdersPage shows five blank rows bound to one customer.
func (h *OrderHandler) CreateOrdersPage(c *gin.Context) {
	customer, ok := h.loadCustomer(c)
	if !ok {
		return
	}
	products, ok := h.products(c)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "order_form.html", gin.H{
		"Identity": middleware.CurrentIdentity(c),
		"Customer": customer,
		"Products": products,
		"Rows":     blankFormset(),
		"Statuses": []models.OrderStatus{models.StatusPending, models.StatusDelivered},
	})
}

// CreateOrders persists every non-blank row for the customer. Blank
// rows are skipped, rows with input errors fail the whole submission
// so nothing half-validated slips through. Rows are created one by
// one without a wrapping transaction, matching the page's historical
// behavior.
func (h *OrderHandler) CreateOrders(c *gin.Context) {
	customer, ok := h.loadCustomer(c)
	if !ok {
		return
	}
	products, ok := h.products(c)
	if !ok {
		return
	}
	known := productIDSet(products)

	rows := make([]formsetRow, FormsetSize)
	invalid := false
	for i := range rows {
		form := models.OrderForm{
			ProductID: c.PostForm(fmt.Sprintf("product_%d", i+1)),
			Status:    c.PostForm(fmt.Sprintf("status_%d", i+1)),
			Note:      c.PostForm(fmt.Sprintf("note_%d", i+1)),
		}
		rows[i] = formsetRow{Index: i + 1, Form: form}
		if form.Blank() {
			continue
		}
		errs := form.Validate()
		if len(errs) == 0 && !known[form.ProductIDValue()] {
			errs["product"] = "Select a valid product."
		}
		if len(errs) > 0 {
			rows[i].Errors = errs
			invalid = true
		}
	}

	if invalid {
		c.HTML(http.StatusOK, "order_form.html", gin.H{
			"Identity": middleware.CurrentIdentity(c),
			"Customer": customer,
			"Products": products,
			"Rows":     rows,
			"Statuses": []models.OrderStatus{models.StatusPending, models.StatusDelivered},
		})
		return
	}

	created := 0
	for _, row := range rows {
		if row.Form.Blank() {
			continue
		}
		order := models.Order{
			CustomerID: customer.ID,
			ProductID:  row.Form.ProductIDValue(),
			Status:     models.OrderStatus(row.Form.Status),
			Note:       row.Form.Note,
		}
		if err := h.db.Create(&order).Error; err != nil {
			serverError(c, err)
			return
		}
		created++
	}

	if created > 0 && customer.Phone != "" {
		message := fmt.Sprintf("Hi %s, %d new order(s) have been placed on your account.", customer.Name, created)
		if err := h.notifier.SendSMS(customer.Phone, message); err != nil {
			log.Printf("order notification failed for customer %d: %v", customer.ID, err)
		}
	}

	c.Redirect(http.StatusFound, "/user/")
}

func (h *OrderHandler) UpdateOrderPage(c *gin.Context) {
	order, ok := h.loadOrder(c)
	if !ok {
		return
	}
	products, ok := h.products(c)
	if !ok {
		return
	}

	form := models.OrderForm{
		ProductID: strconv.FormatUint(uint64(order.ProductID), 10),
		Status:    string(order.Status),
		Note:      order.Note,
	}
	c.HTML(http.StatusOK, "order_edit.html", gin.H{
		"Identity": middleware.CurrentIdentity(c),
		"Order":    order,
		"Products": products,
		"Form":     form,
		"Statuses": []models.OrderStatus{models.StatusPending, models.StatusDelivered},
	})
}

// UpdateOrder persists the mutated fields in place and returns to the
// admin dashboard.
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	order, ok := h.loadOrder(c)
	if !ok {
		return
	}

	products, ok := h.products(c)
	if !ok {
		return
	}

	form := models.OrderForm{
		ProductID: c.PostForm("product"),
		Status:    c.PostForm("status"),
		Note:      c.PostForm("note"),
	}
	errs := form.Validate()
	if len(errs) == 0 && !productIDSet(products)[form.ProductIDValue()] {
		errs["product"] = "Select a valid product."
	}
	if len(errs) > 0 {
		c.HTML(http.StatusOK, "order_edit.html", gin.H{
			"Identity": middleware.CurrentIdentity(c),
			"Order":    order,
			"Products": products,
			"Form":     form,
			"Errors":   errs,
			"Statuses": []models.OrderStatus{models.StatusPending, models.StatusDelivered},
		})
		return
	}

	order.ProductID = form.ProductIDValue()
	order.Status = models.OrderStatus(form.Status)
	order.Note = form.Note
	if err := h.db.Save(order).Error; err != nil {
		serverError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *OrderHandler) DeleteOrderPage(c *gin.Context) {
	order, ok := h.loadOrder(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "delete.html", gin.H{
		"Identity": middleware.CurrentIdentity(c),
		"Order":    order,
	})
}

// DeleteOrder hard-deletes after the confirmation POST. No undo.
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	order, ok := h.loadOrder(c)
	if !ok {
		return
	}
	if err := h.db.Delete(&models.Order{}, order.ID).Error; err != nil {
		serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}
