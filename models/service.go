package models

import (
	"time"

	"gorm.io/gorm"
)

// Service is one bookable offering within a category, e.g. "Tap Repair"
// under plumber. Prices are in whole currency units; the convenience fee
// is added on top at booking time.
type Service struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Category    WorkerCategory `json:"category" gorm:"type:varchar(20);not null;index;check:category IN ('plumber','carpenter','painter','electrician','cleaner','ac_repair')"`
	Slug        string         `json:"slug" gorm:"size:100;uniqueIndex;not null"`
	Name        string         `json:"name" gorm:"size:200;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Price       float64        `json:"price" gorm:"type:decimal(10,2);not null"`
	Duration    string         `json:"duration" gorm:"size:50"`
	Icon        string         `json:"icon" gorm:"size:100"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for the Service model
func (Service) TableName() string {
	return "services"
}

// ConvenienceFee is added to every booking on top of the service price.
const ConvenienceFee = 49.0

// ServiceRequest is the payload for creating or updating a catalog entry
type ServiceRequest struct {
	Category    WorkerCategory `json:"category" binding:"required"`
	Slug        string         `json:"slug" binding:"required"`
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Price       float64        `json:"price" binding:"required"`
	Duration    string         `json:"duration"`
	Icon        string         `json:"icon"`
}
