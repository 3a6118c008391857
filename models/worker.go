package models

import (
	"time"

	"gorm.io/gorm"
)

// WorkerCategory is the single service specialty a worker provides
// and an order requires.
type WorkerCategory string

const (
	CategoryPlumber     WorkerCategory = "plumber"
	CategoryCarpenter   WorkerCategory = "carpenter"
	CategoryPainter     WorkerCategory = "painter"
	CategoryElectrician WorkerCategory = "electrician"
	CategoryCleaner     WorkerCategory = "cleaner"
	CategoryACRepair    WorkerCategory = "ac_repair"
)

// Worker is a service-provider profile linked one-to-one with an account.
// A profile serves exactly one category.
type Worker struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	UserID          uint           `json:"user_id" gorm:"uniqueIndex;not null"`
	Category        WorkerCategory `json:"category" gorm:"type:varchar(20);not null;check:category IN ('plumber','carpenter','painter','electrician','cleaner','ac_repair')"`
	Bio             string         `json:"bio" gorm:"type:text"`
	Skills          string         `json:"skills" gorm:"type:text"`
	HourlyRate      float64        `json:"hourly_rate" gorm:"type:decimal(10,2);default:0"`
	ExperienceYears int            `json:"experience_years" gorm:"default:0"`
	Rating          float64        `json:"rating" gorm:"type:decimal(3,2);default:0"`
	TotalJobs       int            `json:"total_jobs" gorm:"default:0"`
	IsVerified      bool           `json:"is_verified" gorm:"default:false"`
	IsOnline        bool           `json:"is_online" gorm:"default:false"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for the Worker model
func (Worker) TableName() string {
	return "workers"
}

// WorkerProfileRequest is the payload for creating or updating a worker profile
type WorkerProfileRequest struct {
	Category        WorkerCategory `json:"category" binding:"required"`
	Bio             string         `json:"bio"`
	Skills          string         `json:"skills"`
	HourlyRate      float64        `json:"hourly_rate"`
	ExperienceYears int            `json:"experience_years"`
}

// AllCategories returns the fixed category set
func AllCategories() []WorkerCategory {
	return []WorkerCategory{
		CategoryPlumber,
		CategoryCarpenter,
		CategoryPainter,
		CategoryElectrician,
		CategoryCleaner,
		CategoryACRepair,
	}
}

// IsValidCategory checks a category against the fixed set
func IsValidCategory(c WorkerCategory) bool {
	for _, v := range AllCategories() {
		if v == c {
			return true
		}
	}
	return false
}
