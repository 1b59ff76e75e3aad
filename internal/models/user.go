// backend/internal/models/user.go
package models

import "time"

type User struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Email      string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	FirstName  string    `json:"first_name" gorm:"size:100"`
	LastName   string    `json:"last_name" gorm:"size:100"`
	ProfileImg string    `json:"profile_img"`
	Password   string    `json:"-" gorm:"not null"`
	IsAdmin    bool      `json:"is_admin" gorm:"default:false"`
	Attempts   []Attempt `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

type ContactMessage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Email     string    `json:"email" gorm:"size:255;not null"`
	Message   string    `json:"message" gorm:"not null"`
}

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Quiz{},
		&Question{},
		&Choice{},
		&Attempt{},
		&Rating{},
		&ContactMessage{},
	}
}
