package models

import (
	"time"
)

// Review is a customer rating of a completed order. One review per order;
// the worker's average rating and total review count are recomputed from
// these rows after each submission.
type Review struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	OrderID    uint      `json:"order_id" gorm:"uniqueIndex;not null"`
	Order      Order     `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	CustomerID uint      `json:"customer_id" gorm:"not null;index"`
	WorkerID   uint      `json:"worker_id" gorm:"not null;index"`
	Stars      int       `json:"stars" gorm:"not null;check:stars >= 1 AND stars <= 5"`
	Comment    string    `json:"comment" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the Review model
func (Review) TableName() string {
	return "reviews"
}

// ReviewRequest is the payload for rating a completed order
type ReviewRequest struct {
	Stars   int    `json:"stars" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}
