package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole accepts a role name in any case. An empty name is USER.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case "", RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Identity is the caller resolved from a verified token.
type Identity struct {
	UserID uint
	Role   Role
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name         string    `gorm:"not null"                  json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"      json:"email"`
	PasswordHash string    `gorm:"not null"                  json:"-"`
	Role         Role      `gorm:"type:varchar(16);not null" json:"role"`
	CreatedAt    time.Time `                                 json:"createdAt"`
	UpdatedAt    time.Time `                                 json:"updatedAt"`
}

type Category struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null"     json:"name"`
	CreatedAt time.Time `                                json:"createdAt"`
	UpdatedAt time.Time `                                json:"updatedAt"`
}

type Business struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"not null"                 json:"name"`
	Description string    `                                json:"description"`
	Address     string    `gorm:"not null"                 json:"address"`
	Location    string    `gorm:"index;not null"           json:"location"`
	CategoryID  uint      `gorm:"index;not null"           json:"categoryId"`
	OwnerID     uint      `gorm:"index;not null"           json:"ownerId"`
	CreatedAt   time.Time `gorm:"index"                    json:"createdAt"`
	UpdatedAt   time.Time `                                json:"updatedAt"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"-"`
	Owner    *User     `gorm:"foreignKey:OwnerID"    json:"-"`
	Reviews  []Review  `gorm:"foreignKey:BusinessID" json:"-"`
}

type Review struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"             json:"id"`
	Rating     int       `gorm:"not null;check:rating BETWEEN 1 AND 5" json:"rating"`
	Comment    string    `                                            json:"comment"`
	BusinessID uint      `gorm:"index;not null"                       json:"businessId"`
	UserID     uint      `gorm:"index;not null"                       json:"userId"`
	CreatedAt  time.Time `gorm:"index"                                json:"createdAt"`
	UpdatedAt  time.Time `                                            json:"updatedAt"`

	Business *Business `gorm:"foreignKey:BusinessID" json:"-"`
	User     *User     `gorm:"foreignKey:UserID"     json:"-"`
}

// DefaultCategories is the seed set ensured at startup.
var DefaultCategories = []string{
	"Restaurants & Cafes",
	"Fast Food",
	"Bakery",

	"Retail Stores",
	"Grocery & Supermarket",
	"Fashion & Clothing",

	"Professional Services",
	"Beauty & Spa",
	"Auto Services",

	"Healthcare & Medical",
	"Fitness & Wellness",
	"Pharmacy",

	"Entertainment & Recreation",
	"Arts & Culture",

	"Education & Training",
	"Tutoring",

	"IT & Technology",

	"Home Services",
	"Travel & Hotels",
}

// All returns the models in migration order.
func All() []any {
	return []any{&User{}, &Category{}, &Business{}, &Review{}}
}
