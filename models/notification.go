package models

import (
	"time"
)

// WorkerNotification is one alert delivered to an eligible worker for a
// pending order. Reject acknowledges the row without touching the order,
// so the order stays visible to everyone else.
type WorkerNotification struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	WorkerID       uint      `json:"worker_id" gorm:"not null;index;uniqueIndex:idx_worker_notifications_worker_order"`
	OrderID        uint      `json:"order_id" gorm:"not null;index;uniqueIndex:idx_worker_notifications_worker_order"`
	Order          Order     `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	IsAcknowledged bool      `json:"is_acknowledged" gorm:"default:false"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the WorkerNotification model
func (WorkerNotification) TableName() string {
	return "worker_notifications"
}
