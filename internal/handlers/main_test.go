package handlers

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mzalendo/customer-records/internal/auth"
	"github.com/mzalendo/customer-records/internal/middleware"
	"github.com/mzalendo/customer-records/internal/models"
	"github.com/mzalendo/customer-records/internal/services"
)

var testSecret = []byte("test-secret")

var dbCounter int64

// setupTestDB opens a fresh named in-memory database. The shared-cache
// name keeps the schema visible across gorm's pooled connections.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newTestRouter(db *gorm.DB, notifier services.Notifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(db, Config{
		SessionSecret: testSecret,
		FlashKey:      []byte("test-flash-key"),
		Templates:     "../../templates/*.html",
		Notifier:      notifier,
	})
}

func createUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	user := &models.User{Username: username, PasswordHash: hash, Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createCustomerFor(t *testing.T, db *gorm.DB, user *models.User, name, phone string) *models.Customer {
	t.Helper()
	customer := &models.Customer{Name: name, Phone: phone}
	if user != nil {
		id := user.ID
		customer.UserID = &id
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func createProduct(t *testing.T, db *gorm.DB, name string, category models.ProductCategory) *models.Product {
	t.Helper()
	product := &models.Product{Name: name, Price: 9.99, Category: category}
	require.NoError(t, db.Create(product).Error)
	return product
}

func createOrder(t *testing.T, db *gorm.DB, customer *models.Customer, product *models.Product, status models.OrderStatus) *models.Order {
	t.Helper()
	order := &models.Order{CustomerID: customer.ID, ProductID: product.ID, Status: status}
	require.NoError(t, db.Create(order).Error)
	return order
}

func sessionCookie(t *testing.T, user *models.User) *http.Cookie {
	t.Helper()
	token, err := auth.Mint(testSecret, user)
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.SessionCookie, Value: token}
}

func doRequest(r *gin.Engine, method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
