package ds

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	StatusActive   = "active"
	StatusInactive = "inactive"
)

// @Schema(description="User model representing a system account")
type User struct {
	ID         int        `gorm:"primaryKey;column:id" json:"id"`
	Username   string     `gorm:"column:username;size:64;uniqueIndex;not null" json:"username"`
	Password   string     `gorm:"column:password;not null" json:"-"`
	Name       string     `gorm:"column:name;size:128" json:"name"`
	Role       string     `gorm:"column:role;size:16;default:user" json:"role"` // "admin" | "user"
	Department string     `gorm:"column:department;size:128" json:"department"`
	Email      *string    `gorm:"column:email;size:128" json:"email"`
	LastLogin  *time.Time `gorm:"column:last_login" json:"last_login"`
	Status     string     `gorm:"column:status;size:16;default:active" json:"status"` // "active" | "inactive"
	CreatedAt  time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

// Хук для хеширования пароля перед сохранением
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	hashed, err := HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return nil
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

func (User) TableName() string {
	return "users"
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

func ValidStatus(status string) bool {
	return status == StatusActive || status == StatusInactive
}

// NullableString turns "" into nil so optional columns stay NULL.
func NullableString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
