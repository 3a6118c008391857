package models

import (
	"time"
)

// Address is a saved label + free-text location belonging to a customer.
// At most one address per user is marked default.
type Address struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;index"`
	Label       string    `json:"label" gorm:"size:100;not null"`
	FullAddress string    `json:"full_address" gorm:"type:text;not null"`
	City        *string   `json:"city" gorm:"size:100"`
	Pincode     *string   `json:"pincode" gorm:"size:10"`
	IsDefault   bool      `json:"is_default" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the Address model
func (Address) TableName() string {
	return "addresses"
}

// AddressRequest is the payload for creating or updating an address
type AddressRequest struct {
	Label       string  `json:"label" binding:"required"`
	FullAddress string  `json:"full_address" binding:"required"`
	City        *string `json:"city"`
	Pincode     *string `json:"pincode"`
	IsDefault   bool    `json:"is_default"`
}
