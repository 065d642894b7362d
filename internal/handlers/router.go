package handlers

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"gorm.io/gorm"

	"github.com/mzalendo/customer-records/internal/middleware"
	"github.com/mzalendo/customer-records/internal/models"
	"github.com/mzalendo/customer-records/internal/services"
)

// Config carries everything the router needs beyond the database.
type Config struct {
	SessionSecret []byte
	FlashKey      []byte
	Templates     string // glob, e.g. "templates/*.html"
	StaticDir     string
	UploadDir     string
	Notifier      services.Notifier
}

// NewRouter assembles the full route table with its guards. Guards are
// explicit middleware on each route, so the access rules are readable
// straight off this table.
func NewRouter(db *gorm.DB, cfg Config) *gin.Engine {
	r := gin.Default()
	r.LoadHTMLGlob(cfg.Templates)
	if cfg.StaticDir != "" {
		r.Static("/static", cfg.StaticDir)
	}
	if cfg.UploadDir != "" {
		if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
			log.Printf("failed to create upload dir %s: %v", cfg.UploadDir, err)
		}
	}

	flash := sessions.NewCookieStore(cfg.FlashKey)

	authHandler := NewAuthHandler(db, cfg.SessionSecret, flash)
	dashboardHandler := NewDashboardHandler(db)
	productHandler := NewProductHandler(db)
	customerHandler := NewCustomerHandler(db, flash, cfg.UploadDir)
	orderHandler := NewOrderHandler(db, cfg.Notifier)

	authed := middleware.RequireAuth(cfg.SessionSecret)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	anyRole := middleware.RequireRoles(models.RoleCustomer, models.RoleAdmin)
	anonOnly := middleware.RedirectIfAuthenticated(cfg.SessionSecret)

	r.GET("/register/", anonOnly, authHandler.RegisterPage)
	r.POST("/register/", anonOnly, authHandler.Register)
	r.GET("/login/", authHandler.LoginPage)
	r.POST("/login/", authHandler.Login)
	r.GET("/logout/", authHandler.Logout)
	if authHandler.SSOEnabled() {
		r.GET("/login/sso", authHandler.SSOLogin)
		r.GET("/login/callback", authHandler.SSOCallback)
	}

	r.GET("/", authed, adminOnly, dashboardHandler.Home)
	r.GET("/user/", authed, anyRole, dashboardHandler.UserPage)
	r.GET("/products/", authed, productHandler.List)
	r.GET("/customer/:id", authed, customerHandler.Detail)
	r.GET("/account_settings/", authed, anyRole, customerHandler.AccountSettingsPage)
	r.POST("/account_settings/", authed, anyRole, customerHandler.AccountSettings)

	r.GET("/create_order/:customer_id", authed, orderHandler.CreateOrdersPage)
	r.POST("/create_order/:customer_id", authed, orderHandler.CreateOrders)
	r.GET("/update_order/:order_id", authed, orderHandler.UpdateOrderPage)
	r.POST("/update_order/:order_id", authed, orderHandler.UpdateOrder)
	r.GET("/delete_order/:order_id", authed, orderHandler.DeleteOrderPage)
	r.POST("/delete_order/:order_id", authed, orderHandler.DeleteOrder)

	return r
}
