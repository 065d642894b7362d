package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mzalendo/customer-records/internal/auth"
	"github.com/mzalendo/customer-records/internal/handlers"
	"github.com/mzalendo/customer-records/internal/models"
	"github.com/mzalendo/customer-records/internal/services"
)

var db *gorm.DB

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found")
	}

	var err error
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=records password=records dbname=records port=5432 sslmode=disable"
	}

	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatal("failed to migrate database: ", err)
	}
}

func secretFromEnv(key string) []byte {
	v := os.Getenv(key)
	if v == "" {
		v = "secret-key"
	}
	return []byte(v)
}

// seedAdmin creates the first admin account when the users table is
// empty, so a fresh deployment has a way in.
func seedAdmin() {
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return
	}

	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatal("failed to hash admin password: ", err)
	}
	if err := db.Create(&models.User{Username: username, PasswordHash: hash, Role: models.RoleAdmin}).Error; err != nil {
		log.Fatal("failed to seed admin user: ", err)
	}
	log.Printf("seeded admin user %s", username)
}

func main() {
	seedAdmin()

	notifier := services.NewSMSService(
		os.Getenv("AFRICASTALKING_USERNAME"),
		os.Getenv("AFRICASTALKING_API_KEY"),
		os.Getenv("AFRICASTALKING_SENDER_ID"),
	)

	r := handlers.NewRouter(db, handlers.Config{
		SessionSecret: secretFromEnv("SESSION_SECRET"),
		FlashKey:      secretFromEnv("FLASH_KEY"),
		Templates:     "templates/*.html",
		StaticDir:     "static",
		UploadDir:     "static/uploads",
		Notifier:      notifier,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("server starting on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, r))
}
