package models

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"
)

// OrderStatus is the lifecycle state of an order. Typical progression is
// pending -> searching -> assigned -> in_progress -> completed, with
// cancelled reachable from any non-terminal state.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusSearching  OrderStatus = "searching"
	OrderStatusAssigned   OrderStatus = "assigned"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OTPLength is the fixed length of the completion code. The code is a
// zero-padded numeric string generated once at order creation.
const OTPLength = 4

// Order represents one service request from a customer.
type Order struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	CustomerID    uint           `json:"customer_id" gorm:"not null;index"`
	Customer      User           `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	WorkerID      *uint          `json:"worker_id" gorm:"index"`
	Worker        *Worker        `json:"worker,omitempty" gorm:"foreignKey:WorkerID"`
	ServiceName   string         `json:"service_name" gorm:"size:200;not null"`
	ServiceType   string         `json:"service_type" gorm:"size:200;not null"`
	ServiceIcon   *string        `json:"service_icon" gorm:"size:100"`
	Category      WorkerCategory `json:"category" gorm:"type:varchar(20);not null;index;check:category IN ('plumber','carpenter','painter','electrician','cleaner','ac_repair')"`
	AddressID     *uint          `json:"address_id"`
	AddressText   string         `json:"address_text" gorm:"type:text;not null"`
	ScheduledDate time.Time      `json:"scheduled_date" gorm:"type:date;not null"`
	ScheduledTime string         `json:"scheduled_time" gorm:"size:50;not null"`
	TotalAmount   float64        `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	ServiceFee    float64        `json:"service_fee" gorm:"type:decimal(10,2);default:0"`
	OTP           string         `json:"-" gorm:"size:10;not null"`
	Notes         *string        `json:"notes" gorm:"type:text"`
	Status        OrderStatus    `json:"status" gorm:"type:varchar(20);not null;default:'searching';index;check:status IN ('pending','searching','assigned','in_progress','completed','cancelled')"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsTerminal reports whether the status admits no further transitions
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransitionTo checks a single lifecycle step. Cancellation is allowed
// from every non-terminal state; all other edges follow the linear
// progression.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	switch s {
	case OrderStatusPending:
		return next == OrderStatusSearching
	case OrderStatusSearching:
		return next == OrderStatusAssigned
	case OrderStatusAssigned:
		return next == OrderStatusInProgress
	case OrderStatusInProgress:
		return next == OrderStatusCompleted
	default:
		return false
	}
}

// IsClaimable reports whether a worker may still claim the order
func (o *Order) IsClaimable() bool {
	return o.WorkerID == nil &&
		(o.Status == OrderStatusPending || o.Status == OrderStatusSearching)
}

// GenerateOTP produces the shared completion code: a uniformly random
// 4-digit numeric string in [1000, 9999].
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", 1000+n.Int64()), nil
}

// BeforeCreate is a GORM hook that fills in a completion code when the
// caller did not set one.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.OTP == "" {
		otp, err := GenerateOTP()
		if err != nil {
			return err
		}
		o.OTP = otp
	}
	return nil
}

// OrderCreateRequest is the payload for booking a service
type OrderCreateRequest struct {
	ServiceName   string         `json:"service_name" binding:"required"`
	ServiceType   string         `json:"service_type" binding:"required"`
	ServiceIcon   *string        `json:"service_icon"`
	Category      WorkerCategory `json:"category" binding:"required"`
	AddressID     *uint          `json:"address_id"`
	AddressText   string         `json:"address_text" binding:"required"`
	ScheduledDate string         `json:"scheduled_date" binding:"required"` // YYYY-MM-DD
	ScheduledTime string         `json:"scheduled_time" binding:"required"` // slot label
	TotalAmount   float64        `json:"total_amount" binding:"required"`
	Notes         *string        `json:"notes"`
}
