package models

import (
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusDelivered OrderStatus = "Delivered"
)

// ValidOrderStatus reports whether s is one of the two order states.
func ValidOrderStatus(s string) bool {
	return s == string(StatusPending) || s == string(StatusDelivered)
}

type ProductCategory string

const (
	CategoryIndoor  ProductCategory = "Indoor"
	CategoryOutdoor ProductCategory = "Out Door"
)

// User - a login account. Each user carries exactly one role, so
// authorization never has to pick between group memberships.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         Role   `gorm:"not null;default:customer"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Customer - profile record, optionally linked one-to-one to a User.
// Self-registration creates an empty profile that the account settings
// page fills in later.
type Customer struct {
	ID         uint  `gorm:"primaryKey"`
	UserID     *uint `gorm:"uniqueIndex"`
	User       *User
	Name       string
	Phone      string
	Email      string
	ProfilePic string
	Tags       []Tag   `gorm:"many2many:customer_tags;"`
	Orders     []Order `gorm:"foreignKey:CustomerID"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Tag struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"not null"`
	Price       float64         `gorm:"not null"`
	Category    ProductCategory `gorm:"not null"`
	Description string
	Image       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Order rows are hard-deleted on request, so no gorm.DeletedAt here.
type Order struct {
	ID         uint `gorm:"primaryKey"`
	CustomerID uint `gorm:"not null;index"`
	Customer   Customer
	ProductID  uint `gorm:"not null"`
	Product    Product
	Status     OrderStatus `gorm:"not null;default:Pending"`
	Note       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// All lists every entity for AutoMigrate.
func All() []interface{} {
	return []interface{}{&User{}, &Customer{}, &Tag{}, &Product{}, &Order{}}
}
