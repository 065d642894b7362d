package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mzalendo/customer-records/internal/models"
	"github.com/mzalendo/customer-records/internal/services"
)

func TestDashboard(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db, services.NewMockNotifier())

	admin := createUser(t, db, "admin", models.RoleAdmin)
	customerUser := createUser(t, db, "wanjiku", models.RoleCustomer)

	c1 := createCustomerFor(t, db, customerUser, "Wanjiku", "0740000001")
	c2 := createCustomerFor(t, db, nil, "Walk-in", "0740000002")
	p := createProduct(t, db, "Garden Hose", models.CategoryOutdoor)

	createOrder(t, db, c1, p, models.StatusDelivered)
	createOrder(t, db, c1, p, models.StatusPending)
	createOrder(t, db, c2, p, models.StatusPending)

	t.Run("admin sees derived counts", func(t *testing.T) {
		w := doRequest(r, "GET", "/", nil, sessionCookie(t, admin))

		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Total Customers: 2")
		assert.Contains(t, body, "Total Orders: 3")
		assert.Contains(t, body, "Delivered: 1")
		assert.Contains(t, body, "Pending: 2")
	})

	t.Run("counts stay consistent after a delete", func(t *testing.T) {
		extra := createOrder(t, db, c2, p, models.StatusDelivered)
		doRequest(r, "POST", fmt.Sprintf("/delete_order/%d", extra.ID), nil, sessionCookie(t, admin))

		var total, delivered, pending int64
		db.Model(&models.Order{}).Count(&total)
		db.Model(&models.Order{}).Where("status = ?", models.StatusDelivered).Count(&delivered)
		db.Model(&models.Order{}).Where("status = ?", models.StatusPending).Count(&pending)
		assert.Equal(t, total, delivered+pending)
	})

	t.Run("customer role gets a forbidden page, not a redirect", func(t *testing.T) {
		w := doRequest(r, "GET", "/", nil, sessionCookie(t, customerUser))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "not authorized")
		assert.Empty(t, w.Header().Get("Location"))
	})

	t.Run("anonymous request is redirected to login", func(t *testing.T) {
		w := doRequest(r, "GET", "/", nil)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login/", w.Header().Get("Location"))
	})
}

func TestUserPage(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db, services.NewMockNotifier())

	user := createUser(t, db, "wanjiku", models.RoleCustomer)
	other := createUser(t, db, "otieno", models.RoleCustomer)

	mine := createCustomerFor(t, db, user, "Wanjiku", "")
	theirs := createCustomerFor(t, db, other, "Otieno", "")
	p := createProduct(t, db, "Planter", models.CategoryIndoor)

	createOrder(t, db, mine, p, models.StatusDelivered)
	createOrder(t, db, mine, p, models.StatusPending)
	createOrder(t, db, theirs, p, models.StatusPending)

	t.Run("shows only own orders with scoped counts", func(t *testing.T) {
		w := doRequest(r, "GET", "/user/", nil, sessionCookie(t, user))

		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Total Orders: 2")
		assert.Contains(t, body, "Delivered: 1")
		assert.Contains(t, body, "Pending: 1")
	})

	t.Run("admin without a linked customer sees an empty page", func(t *testing.T) {
		admin := createUser(t, db, "admin", models.RoleAdmin)
		w := doRequest(r, "GET", "/user/", nil, sessionCookie(t, admin))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Total Orders: 0")
	})
}

func TestProductList(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db, services.NewMockNotifier())

	user := createUser(t, db, "wanjiku", models.RoleCustomer)
	createProduct(t, db, "Garden Hose", models.CategoryOutdoor)
	createProduct(t, db, "Planter", models.CategoryIndoor)

	w := doRequest(r, "GET", "/products/", nil, sessionCookie(t, user))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Garden Hose")
	assert.Contains(t, body, "Planter")
	assert.Contains(t, body, "Out Door")
}
