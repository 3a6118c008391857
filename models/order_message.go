package models

import (
	"time"
)

// OrderMessage is a free-text note exchanged between the two parties of an
// order (customer and assigned worker).
type OrderMessage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	OrderID   uint      `json:"order_id" gorm:"not null;index"`
	Order     Order     `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	SenderID  uint      `json:"sender_id" gorm:"not null"`
	Sender    User      `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	IsRead    bool      `json:"is_read" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the OrderMessage model
func (OrderMessage) TableName() string {
	return "order_messages"
}

// OrderMessageRequest is the payload for posting a message on an order
type OrderMessageRequest struct {
	Message string `json:"message" binding:"required,max=2000"`
}
