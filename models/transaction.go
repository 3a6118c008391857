package models

import (
	"time"
)

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodOnline PaymentMethod = "online"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Transaction records how a customer settles an order. The unique index on
// OrderID keeps payment recording idempotent: a double submit cannot insert
// a second row for the same order.
type Transaction struct {
	ID                   uint          `json:"id" gorm:"primaryKey"`
	OrderID              uint          `json:"order_id" gorm:"uniqueIndex;not null"`
	Order                Order         `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	CustomerID           uint          `json:"customer_id" gorm:"not null;index"`
	WorkerID             *uint         `json:"worker_id"`
	Amount               float64       `json:"amount" gorm:"type:decimal(10,2);not null"`
	PaymentMethod        PaymentMethod `json:"payment_method" gorm:"type:varchar(10);not null;check:payment_method IN ('cash','online')"`
	PaymentStatus        PaymentStatus `json:"payment_status" gorm:"type:varchar(10);not null;default:'pending';check:payment_status IN ('pending','paid','failed','refunded')"`
	TransactionReference string        `json:"transaction_reference" gorm:"size:64;uniqueIndex"`
	PaidAt               *time.Time    `json:"paid_at"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// TableName specifies the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

// IsValidPaymentMethod checks a method against the fixed set
func IsValidPaymentMethod(m PaymentMethod) bool {
	return m == PaymentMethodCash || m == PaymentMethodOnline
}
