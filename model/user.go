package model

import "time"

// Subscription plans. A user's plan decides the capacity of rooms they create.
const (
	PlanBasic    = "basic"
	PlanStandard = "standard"
	PlanPremium  = "premium"
)

// User represents a registered account.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Name         string    `json:"name" gorm:"size:100;not null"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Plan         string    `json:"plan" gorm:"size:20;default:'basic'"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	ImageData    string    `json:"imageData,omitempty" gorm:"type:mediumtext"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// PublicUser is the reduced view exposed to other room members.
type PublicUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ImageData string `json:"imageData,omitempty"`
}

// Public converts a User to its member-visible view.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, ImageData: u.ImageData}
}

// RoomCapacityForPlan maps a subscription plan to the member capacity of
// rooms created on that plan. Unknown plans fall back to the premium cap.
func RoomCapacityForPlan(plan string) int {
	switch plan {
	case PlanBasic:
		return 5
	case PlanStandard:
		return 15
	default:
		return 100
	}
}
