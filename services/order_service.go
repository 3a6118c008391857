package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"home-services-server/models"
)

// Lifecycle errors surfaced to handlers. Business-rule refusals get their
// own values so the API can tell a race loss or a bad code apart from a
// generic backend failure.
var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrNotOrderOwner       = errors.New("order belongs to another customer")
	ErrNotAssignedWorker   = errors.New("order is assigned to another worker")
	ErrOrderAlreadyClaimed = errors.New("order was already claimed by another worker")
	ErrInvalidTransition   = errors.New("order is not in a valid state for this action")
	ErrOTPMismatch         = errors.New("completion code does not match")
	ErrCategoryMismatch    = errors.New("order category does not match worker category")
	ErrPaymentNotReady     = errors.New("payment can only be chosen after a worker is assigned")
	ErrAlreadyReviewed     = errors.New("order has already been reviewed")
)

// OrderEvents receives lifecycle notifications for realtime fan-out.
// The WebSocket hub implements it; tests plug in a recorder.
type OrderEvents interface {
	OrderCreated(order models.Order)
	OrderUpdated(order models.Order)
}

// NopEvents discards all events
type NopEvents struct{}

func (NopEvents) OrderCreated(models.Order) {}
func (NopEvents) OrderUpdated(models.Order) {}

// OrderService mediates every order state transition. The only concurrency
// control in the system is the conditional claim update in Accept.
type OrderService struct {
	db     *gorm.DB
	events OrderEvents
}

func NewOrderService(db *gorm.DB, events OrderEvents) *OrderService {
	if events == nil {
		events = NopEvents{}
	}
	return &OrderService{db: db, events: events}
}

// Create books a service: the order starts in `searching` with a fresh
// 4-digit completion code and is immediately visible to matching workers.
// A worker_notifications row is written per online worker of the category.
func (s *OrderService) Create(customerID uint, req models.OrderCreateRequest) (*models.Order, error) {
	if !models.IsValidCategory(req.Category) {
		return nil, errors.New("unknown service category")
	}
	if req.TotalAmount <= 0 {
		return nil, errors.New("total amount must be positive")
	}

	scheduledDate, err := time.Parse("2006-01-02", req.ScheduledDate)
	if err != nil {
		return nil, errors.New("scheduled_date must be YYYY-MM-DD")
	}

	order := models.Order{
		CustomerID:    customerID,
		ServiceName:   req.ServiceName,
		ServiceType:   req.ServiceType,
		ServiceIcon:   req.ServiceIcon,
		Category:      req.Category,
		AddressID:     req.AddressID,
		AddressText:   req.AddressText,
		ScheduledDate: scheduledDate,
		ScheduledTime: req.ScheduledTime,
		TotalAmount:   req.TotalAmount,
		ServiceFee:    models.ConvenienceFee,
		Notes:         req.Notes,
		Status:        models.OrderStatusSearching,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		var workers []models.Worker
		if err := tx.Where("category = ? AND is_online = ?", req.Category, true).
			Find(&workers).Error; err != nil {
			return err
		}

		for _, w := range workers {
			notification := models.WorkerNotification{
				WorkerID: w.ID,
				OrderID:  order.ID,
			}
			if err := tx.Create(&notification).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.OrderCreated(order)
	return &order, nil
}

// Cancel moves an order to `cancelled`. Allowed from any non-terminal
// state; terminal orders are refused. No compensating actions are taken.
func (s *OrderService) Cancel(orderID, customerID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, ErrNotOrderOwner
	}

	result := s.db.Model(&models.Order{}).
		Where("id = ? AND status NOT IN ?", orderID,
			[]models.OrderStatus{models.OrderStatusCompleted, models.OrderStatusCancelled}).
		Update("status", models.OrderStatusCancelled)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}

	order.Status = models.OrderStatusCancelled
	s.events.OrderUpdated(order)
	return &order, nil
}

// Accept is the worker's claim. The update is conditioned on the order
// still being unassigned and pending; losing the race affects zero rows
// and returns ErrOrderAlreadyClaimed. Once set, worker_id never changes.
func (s *OrderService) Accept(orderID, workerID uint) (*models.Order, error) {
	var worker models.Worker
	if err := s.db.First(&worker, workerID).Error; err != nil {
		return nil, err
	}

	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.Category != worker.Category {
		return nil, ErrCategoryMismatch
	}

	result := s.db.Model(&models.Order{}).
		Where("id = ? AND worker_id IS NULL AND status IN ?", orderID,
			[]models.OrderStatus{models.OrderStatusPending, models.OrderStatusSearching}).
		Updates(map[string]interface{}{
			"worker_id": workerID,
			"status":    models.OrderStatusAssigned,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrOrderAlreadyClaimed
	}

	// Mark this worker's alert handled; other workers drop the order via
	// the order_updated event.
	s.db.Model(&models.WorkerNotification{}).
		Where("order_id = ? AND worker_id = ?", orderID, workerID).
		Update("is_acknowledged", true)

	if err := s.db.First(&order, orderID).Error; err != nil {
		return nil, err
	}
	s.events.OrderUpdated(order)
	return &order, nil
}

// Reject is purely local to the worker: it acknowledges the alert row and
// leaves the order visible to everyone else.
func (s *OrderService) Reject(orderID, workerID uint) error {
	return s.db.Model(&models.WorkerNotification{}).
		Where("order_id = ? AND worker_id = ?", orderID, workerID).
		Update("is_acknowledged", true).Error
}

// Start moves an assigned order to `in_progress`, worker-initiated.
func (s *OrderService) Start(orderID, workerID uint) (*models.Order, error) {
	result := s.db.Model(&models.Order{}).
		Where("id = ? AND worker_id = ? AND status = ?", orderID, workerID, models.OrderStatusAssigned).
		Update("status", models.OrderStatusInProgress)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}

	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		return nil, err
	}
	s.events.OrderUpdated(order)
	return &order, nil
}

// Complete verifies the customer-disclosed code against the order's stored
// one. On an exact match the order becomes `completed`, any cash
// transaction is marked paid, and the worker's job count is bumped. On a
// mismatch nothing changes and the worker may retry.
func (s *OrderService) Complete(orderID, workerID uint, enteredCode string) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.WorkerID == nil || *order.WorkerID != workerID {
		return nil, ErrNotAssignedWorker
	}
	if order.Status != models.OrderStatusInProgress {
		return nil, ErrInvalidTransition
	}
	if enteredCode != order.OTP {
		return nil, ErrOTPMismatch
	}

	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Guarded like every other transition: a cancel landing after the
		// read above must not be overwritten.
		result := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderStatusInProgress).
			Update("status", models.OrderStatusCompleted)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInvalidTransition
		}

		// Cash settles at completion; online was settled at choice time.
		if err := tx.Model(&models.Transaction{}).
			Where("order_id = ? AND payment_method = ?", orderID, models.PaymentMethodCash).
			Updates(map[string]interface{}{
				"payment_status": models.PaymentStatusPaid,
				"paid_at":        now,
			}).Error; err != nil {
			return err
		}

		return tx.Model(&models.Worker{}).
			Where("id = ?", workerID).
			Update("total_jobs", gorm.Expr("total_jobs + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	order.Status = models.OrderStatusCompleted
	s.events.OrderUpdated(order)
	return &order, nil
}

// RecordPayment stores the customer's settlement choice once a worker is
// assigned and advances the order to `in_progress`. Cash starts pending;
// online is marked paid immediately (no gateway, simulated settlement).
// The unique index on transactions.order_id makes a double submit return
// the already-recorded transaction instead of inserting a second row.
func (s *OrderService) RecordPayment(orderID, customerID uint, method models.PaymentMethod) (*models.Transaction, error) {
	if !models.IsValidPaymentMethod(method) {
		return nil, errors.New("unknown payment method")
	}

	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, ErrNotOrderOwner
	}
	if order.Status != models.OrderStatusAssigned {
		var existing models.Transaction
		if err := s.db.Where("order_id = ?", orderID).First(&existing).Error; err == nil {
			return &existing, nil
		}
		return nil, ErrPaymentNotReady
	}

	txn := models.Transaction{
		OrderID:              orderID,
		CustomerID:           customerID,
		WorkerID:             order.WorkerID,
		Amount:               order.TotalAmount,
		PaymentMethod:        method,
		PaymentStatus:        models.PaymentStatusPending,
		TransactionReference: uuid.NewString(),
	}
	if method == models.PaymentMethodOnline {
		now := time.Now()
		txn.PaymentStatus = models.PaymentStatusPaid
		txn.PaidAt = &now
	}

	if err := s.db.Create(&txn).Error; err != nil {
		if isUniqueViolation(err) {
			var existing models.Transaction
			if ferr := s.db.Where("order_id = ?", orderID).First(&existing).Error; ferr == nil {
				return &existing, nil
			}
		}
		return nil, err
	}

	result := s.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, models.OrderStatusAssigned).
		Update("status", models.OrderStatusInProgress)
	if result.Error != nil {
		return nil, result.Error
	}

	// The guarded advance may lose to a concurrent transition; emit the
	// row as it actually stands, not the copy read earlier.
	if err := s.db.First(&order, orderID).Error; err != nil {
		return nil, err
	}
	s.events.OrderUpdated(order)
	return &txn, nil
}

// Review rates a completed order and recomputes the worker's average.
func (s *OrderService) Review(orderID, customerID uint, req models.ReviewRequest) (*models.Review, error) {
	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, ErrNotOrderOwner
	}
	if order.Status != models.OrderStatusCompleted || order.WorkerID == nil {
		return nil, ErrInvalidTransition
	}

	review := models.Review{
		OrderID:    orderID,
		CustomerID: customerID,
		WorkerID:   *order.WorkerID,
		Stars:      req.Stars,
		Comment:    req.Comment,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyReviewed
			}
			return err
		}

		var avg float64
		if err := tx.Model(&models.Review{}).
			Where("worker_id = ?", *order.WorkerID).
			Select("AVG(stars)").Scan(&avg).Error; err != nil {
			return err
		}

		return tx.Model(&models.Worker{}).
			Where("id = ?", *order.WorkerID).
			Update("rating", avg).Error
	})
	if err != nil {
		return nil, err
	}

	return &review, nil
}

// PendingForWorker is the baseline fetch a worker performs on going
// online: unclaimed orders in the worker's category still awaiting a claim.
func (s *OrderService) PendingForWorker(workerID uint) ([]models.Order, error) {
	var worker models.Worker
	if err := s.db.First(&worker, workerID).Error; err != nil {
		return nil, err
	}

	var orders []models.Order
	err := s.db.Where("category = ? AND worker_id IS NULL AND status IN ?",
		worker.Category,
		[]models.OrderStatus{models.OrderStatusPending, models.OrderStatusSearching}).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// isUniqueViolation detects a duplicate-key insert across the drivers used
// here (postgres in production, sqlite in tests).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key value")
}
