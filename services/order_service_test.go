package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"home-services-server/database"
	"home-services-server/models"
)

// recordingEvents captures lifecycle notifications for assertions
type recordingEvents struct {
	created []models.Order
	updated []models.Order
}

func (r *recordingEvents) OrderCreated(order models.Order) { r.created = append(r.created, order) }
func (r *recordingEvents) OrderUpdated(order models.Order) { r.updated = append(r.updated, order) }

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)
	assert.NoError(t, database.Migrate(db))
	return db
}

func seedCustomer(t *testing.T, db *gorm.DB, phone string) models.User {
	t.Helper()

	user := models.User{
		FullName:     "Test Customer",
		Phone:        phone,
		PasswordHash: "x",
		IsActive:     true,
	}
	assert.NoError(t, db.Create(&user).Error)
	assert.NoError(t, db.Create(&models.UserRole{UserID: user.ID, Role: models.RoleCustomer}).Error)
	return user
}

func seedWorker(t *testing.T, db *gorm.DB, phone string, category models.WorkerCategory, online bool) models.Worker {
	t.Helper()

	user := models.User{
		FullName:     "Test Worker",
		Phone:        phone,
		PasswordHash: "x",
		IsActive:     true,
	}
	assert.NoError(t, db.Create(&user).Error)

	worker := models.Worker{
		UserID:   user.ID,
		Category: category,
		IsOnline: online,
	}
	assert.NoError(t, db.Create(&worker).Error)
	return worker
}

func bookingRequest(category models.WorkerCategory) models.OrderCreateRequest {
	return models.OrderCreateRequest{
		ServiceName:   "Tap Repair",
		ServiceType:   "Plumbing",
		Category:      category,
		AddressText:   "12 Test Lane",
		ScheduledDate: "2026-09-01",
		ScheduledTime: "10:00 AM - 12:00 PM",
		TotalAmount:   199 + models.ConvenienceFee,
	}
}

func TestCreateOrderStartsSearchingWithOTP(t *testing.T) {
	db := setupTestDB(t)
	events := &recordingEvents{}
	svc := NewOrderService(db, events)
	customer := seedCustomer(t, db, "+911234567001")

	order, err := svc.Create(customer.ID, bookingRequest(models.CategoryPlumber))
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusSearching, order.Status)
	assert.Len(t, order.OTP, models.OTPLength)
	assert.Equal(t, models.ConvenienceFee, order.ServiceFee)
	assert.Equal(t, 199+models.ConvenienceFee, order.TotalAmount)
	assert.Nil(t, order.WorkerID)

	assert.Len(t, events.created, 1)
	assert.Equal(t, order.ID, events.created[0].ID)
}

func TestCreateOrderNotifiesOnlineCategoryWorkersOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db, nil)
	customer := seedCustomer(t, db, "+911234567002")

	onlinePlumber := seedWorker(t, db, "+911234567003", models.CategoryPlumber, true)
	offlinePlumber := seedWorker(t, db, "+911234567004", models.CategoryPlumber, false)
	onlinePainter := seedWorker(t, db, "+911234567005", models.CategoryPainter, true)

	order, err := svc.Create(customer.ID, bookingRequest(models.CategoryPlumber))
	assert.NoError(t, err)

	var notifications []models.WorkerNotification
	assert.NoError(t, db.Where("order_id = ?", order.ID).Find(&notifications).Error)
	assert.Len(t, notifications, 1)
	assert.Equal(t, onlinePlumber.ID, notifications[0].WorkerID)
	assert.NotEqual(t, offlinePlumber.ID, notifications[0].WorkerID)
	assert.NotEqual(t, onlinePainter.ID, notifications[0].WorkerID)
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db, nil)
	customer := seedCustomer(t, db, "+911234567006")

	req := bookingRequest("gardener")
	_, err := svc.Create(customer.ID, req)
	assert.Error(t, err)

	req = bookingRequest(models.CategoryPlumber)
	req.TotalAmount = 0
	_, err = svc.Create(customer.ID, req)
	assert.Error(t, err)

	req = bookingRequest(models.CategoryPlumber)
	req.ScheduledDate = "tomorrow"
	_, err = svc.Create(customer.ID, req)
	assert.Error(t, err)
}

func TestAcceptFirstClaimWins(t *testing.T) {
	db := setupTestDB(t)
	events := &recordingEvents{}
	svc := NewOrderService(db, events)
	customer := seedCustomer(t, db, "+911234567010")
	first := seedWorker(t, db, "+911234567011", models.CategoryPlumber, true)
	second := seedWorker(t, db, "+911234567012", models.CategoryPlumber, true)

	order, err := svc.Create(customer.ID, bookingRequest(models.CategoryPlumber))
	assert.NoError(t, err)

	claimed, err := svc.Accept(order.ID, first.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusAssigned, claimed.Status)
	assert.Equal(t, first.ID, *claimed.WorkerID)

	_, err = svc.Accept(order.ID, second.ID)
	assert.ErrorIs(t, err, ErrOrderAlreadyClaimed)

	// The loser must not have overwritten the assignment
	var reloaded models.Order
	assert.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, first.ID, *reloaded.WorkerID)
	assert.Equal(t, models.OrderStatusAssigned, reloaded.Status)
}

func TestAcceptRequiresMatchingCategory(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db, nil)
	customer := seedCustomer(t, db, "+911234567013")
	painter := seedWorker(t, db, "+911234567014", models.CategoryPainter, true)

	order, err := svc.Create(customer.ID, bookingRequest(models.CategoryPlumber))
	assert.NoError(t, err)

	_, err = svc.Accept(order.ID, painter.ID)
	assert.ErrorIs(t, err, ErrCategoryMismatch)
}

func TestRejectLeavesOrderClaimable(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db, nil)
	customer := seedCustomer(t, db, "+911234567015")
	rejecting := seedWorker(t, db, "+911234567016", models.CategoryCleaner, true)
	other := seedWorker(t, db, "+911234567017", models.CategoryCleaner, true)

	order, err := svc.Create(customer.ID, bookingRequest(models.CategoryCleaner))
	assert.NoError(t, err)

	assert.NoError(t, svc.Reject(order.ID, rejecting.ID))

	var notification models.WorkerNotification
	assert.NoError(t, db.Where("order_id = ? AND worker_id = ?", order.ID, rejecting.ID).
		First(&notification).Error)
	assert.True(t, notification.IsAcknowledged)

	// The order itself is untouched and the other worker can still claim
	claimed, err := svc.Accept(order.ID, other.ID)
	assert.NoError(t, err)
	assert.Equal(t, other.ID, *claimed.WorkerID)
}

func TestCancelFromEveryNonTerminalState(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db, nil)
	customer := seedCustomer(t, db, "+911234567020")

	for i, status := range []models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusSearching,
		models.OrderStatusAssigned,
		models.OrderStatusInProgress,
	} {
		order, err := svc.Create(customer.ID, bookingRequest(models.CategoryPlumber))
		assert.NoError(t, err)
		assert.NoError(t, db.Model(order).Update("status", status).Error)

		cancelled, err := svc.Cancel(order.ID, customer.ID)
		assert.NoError(t, err, "case %d: cancel from %s", i, status)
		assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	}
}

func TestCancelRefusedFromTerminalStates(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db, nil)
	customer := seedCustomer(t, db, "+911234567021")

	for _, status := range []models.OrderStatus{
		models.OrderStatusCompleted,
		models.OrderStatusCancelled,
	} {
		order, err := svc.Create(customer.ID, bookingRequest(models.CategoryPlumber))
		assert.NoError(t, err)
		assert.NoError(t, db.Model(order).Update("status", status).Error)

		_, err = svc.Cancel(order.ID, customer.ID)
		assert.ErrorIs(t, err, ErrInvalidTransition, "cancel from %s must fail", status)
	}
}

func TestCancelRequiresOwnership(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db, nil)
	owner := seedCustomer(t, db, "+911234567022")
	stranger := seedCustomer(t, db, "+911234567023")

	order, err := svc.Create(owner.ID, bookingRequest(models.CategoryPlumber))
	assert.NoError(t, err)

	_, err = svc.Cancel(order.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrNotOrderOwner)
}

func TestStartRequiresAssignedState(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db, nil)
	customer := seedCustomer(t, db, "+911234567024")
	worker := seedWorker(t, db, "+911234567025", models.CategoryPlumber, true)

	order, err := svc.Create(customer.ID, bookingRequest(models.CategoryPlumber))
	assert.NoError(t, err)

	// Not yet assigned
	_, err = svc.Start(order.ID, worker.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Accept(order.ID, worker.ID)
	assert.NoError(t, err)

	started, err := svc.Start(order.ID, worker.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusInProgress, started.Status)

	// Starting twice is refused
	_, err = svc.Start(order.ID, worker.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCompleteVerifiesCode(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db, nil)
	customer := seedCustomer(t, db, "+911234567030")
	worker := seedWorker(t, db, "+911234567031", models.CategoryPlumber, true)

	order, err := svc.Create(customer.ID, bookingRequest(models.CategoryPlumber))
	assert.NoError(t, err)
	_, err = svc.Accept(order.ID, worker.ID)
	assert.NoError(t, err)
	_, err = svc.Start(order.ID, worker.ID)
	assert.NoError(t, err)

	var stored models.Order
	assert.NoError(t, db.First(&stored, order.ID).Error)

	wrong := "0000"
	if stored.OTP == wrong {
		wrong = "1111"
	}

	// Wrong code leaves the order untouched and the worker may retry
	_, err = svc.Complete(order.ID, worker.ID, wrong)
	assert.ErrorIs(t, err, ErrOTPMismatch)

	var afterMiss models.Order
	assert.NoError(t, db.First(&afterMiss, order.ID).Error)
	assert.Equal(t, models.OrderStatusInProgress, afterMiss.Status)

	completed, err := svc.Complete(order.ID, worker.ID, stored.OTP)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, completed.Status)

	var updatedWorker models.Worker
	assert.NoError(t, db.First(&updatedWorker, worker.ID).Error)
	assert.Equal(t, 1, updatedWorker.TotalJobs)
}

// cancelAfterNextOrderRead registers a one-shot query callback that flips
// the order to cancelled as soon as the service has read it, simulating a
// customer cancel landing inside the window between read and write.
func cancelAfterNextOrderRead(t *testing.T, db *gorm.DB, orderID uint) {
	t.Helper()

	const name = "cancel_between_read_and_write"
	fired := false
	err := db.Callback().Query().After("gorm:query").Register(name, func(tx *gorm.DB) {
		if fired {
			return
		}
		if _, ok := tx.Statement.Dest.(*models.Order); !ok {
			return
		}
		fired = true
		tx.Session(&gorm.Session{NewDB: true}).
			Model(&models.Order{}).
			Where("id = ?", orderID).
			Update("status", models.OrderStatusCancelled)
	})
	assert.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, db.Callback().Query().Remove(name))
	})
}

func TestCompleteRefusedWhenCancelledConcurrently(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db, nil)
	customer := seedCustomer(t, db, "+911234567037")
	worker := seedWorker(t, db, "+911234567038", models.CategoryPlumber, true)

	order, err := svc.Create(customer.ID, bookingRequest(models.CategoryPlumber))
	assert.NoError(t, err)
	_, err = svc.Accept(order.ID, worker.ID)
	assert.NoError(t, err)
	_, err = svc.Start(order.ID, worker.ID)
	assert.NoError(t, err)

	var stored models.Order
	assert.NoError(t, db.First(&stored, order.ID).Error)

	// The cancel lands after Complete's read but before its write; the
	// guarded update must lose and the terminal state must stand.
	cancelAfterNextOrderRead(t, db, order.ID)

	_, err = svc.Complete(order.ID, worker.ID, stored.OTP)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	var final models.Order
	assert.NoError(t, db.First(&final, order.ID).Error)
	assert.Equal(t, models.OrderStatusCancelled, final.Status)

	// No side effects from the refused completion
	var untouchedWorker models.Worker
	assert.NoError(t, db.First(&untouchedWorker, worker.ID).Error)
	assert.Equal(t, 0, untouchedWorker.TotalJobs)
}

func TestCompleteOnlyByAssignedWorker(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db, nil)
	customer := seedCustomer(t, db, "+911234567032")
	assigned := seedWorker(t, db, "+911234567033", models.CategoryPlumber, true)
	imposter := seedWorker(t, db, "+911234567034", models.CategoryPlumber, true)

	order, err := svc.Create(customer.ID, bookingRequest(models.CategoryPlumber))
	assert.NoError(t, err)
	_, err = svc.Accept(order.ID, assigned.ID)
	assert.NoError(t, err)
	_, err = svc.Start(order.ID, assigned.ID)
	assert.NoError(t, err)

	var stored models.Order
	assert.NoError(t, db.First(&stored, order.ID).Error)

	_, err = svc.Complete(order.ID, imposter.ID, stored.OTP)
	assert.ErrorIs(t, err, ErrNotAssignedWorker)
}

func TestCompleteSettlesCashTransaction(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db, nil)
	customer := seedCustomer(t, db, "+911234567035")
	worker := seedWorker(t, db, "+911234567036", models.CategoryPlumber, true)

	order, err := svc.Create(customer.ID, bookingRequest(models.CategoryPlumber))
	assert.NoError(t, err)
	_, err = svc.Accept(order.ID, worker.ID)
	assert.NoError(t, err)

	txn, err := svc.RecordPayment(order.ID, customer.ID, models.PaymentMethodCash)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, txn.PaymentStatus)
	assert.Nil(t, txn.PaidAt)

	var stored models.Order
	assert.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, models.OrderStatusInProgress, stored.Status)

	_, err = svc.Complete(order.ID, worker.ID, stored.OTP)
	assert.NoError(t, err)

	var settled models.Transaction
	assert.NoError(t, db.Where("order_id = ?", order.ID).First(&settled).Error)
	assert.Equal(t, models.PaymentStatusPaid, settled.PaymentStatus)
	assert.NotNil(t, settled.PaidAt)
}

func TestRecordPaymentOnlineSettlesImmediately(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db, nil)
	customer := seedCustomer(t, db, "+911234567040")
	worker := seedWorker(t, db, "+911234567041", models.CategoryPlumber, true)

	order, err := svc.Create(customer.ID, bookingRequest(models.CategoryPlumber))
	assert.NoError(t, err)
	_, err = svc.Accept(order.ID, worker.ID)
	assert.NoError(t, err)

	txn, err := svc.RecordPayment(order.ID, customer.ID, models.PaymentMethodOnline)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, txn.PaymentStatus)
	assert.NotNil(t, txn.PaidAt)
	assert.Equal(t, order.TotalAmount, txn.Amount)

	var stored models.Order
	assert.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, models.OrderStatusInProgress, stored.Status)
}

func TestRecordPaymentDoubleSubmitIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db, nil)
	customer := seedCustomer(t, db, "+911234567042")
	worker := seedWorker(t, db, "+911234567043", models.CategoryPlumber, true)

	order, err := svc.Create(customer.ID, bookingRequest(models.CategoryPlumber))
	assert.NoError(t, err)
	_, err = svc.Accept(order.ID, worker.ID)
	assert.NoError(t, err)

	first, err := svc.RecordPayment(order.ID, customer.ID, models.PaymentMethodCash)
	assert.NoError(t, err)

	second, err := svc.RecordPayment(order.ID, customer.ID, models.PaymentMethodOnline)
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.PaymentMethodCash, second.PaymentMethod)

	var count int64
	assert.NoError(t, db.Model(&models.Transaction{}).
		Where("order_id = ?", order.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecordPaymentDoesNotResurrectCancelledOrder(t *testing.T) {
	db := setupTestDB(t)
	events := &recordingEvents{}
	svc := NewOrderService(db, events)
	customer := seedCustomer(t, db, "+911234567045")
	worker := seedWorker(t, db, "+911234567046", models.CategoryPlumber, true)

	order, err := svc.Create(customer.ID, bookingRequest(models.CategoryPlumber))
	assert.NoError(t, err)
	_, err = svc.Accept(order.ID, worker.ID)
	assert.NoError(t, err)

	// The cancel lands after RecordPayment's read; the guarded advance to
	// in_progress must lose.
	cancelAfterNextOrderRead(t, db, order.ID)

	_, err = svc.RecordPayment(order.ID, customer.ID, models.PaymentMethodCash)
	assert.NoError(t, err)

	var final models.Order
	assert.NoError(t, db.First(&final, order.ID).Error)
	assert.Equal(t, models.OrderStatusCancelled, final.Status)

	// The emitted event must carry the row as it stands, not a stale
	// in_progress copy.
	assert.NotEmpty(t, events.updated)
	last := events.updated[len(events.updated)-1]
	assert.Equal(t, models.OrderStatusCancelled, last.Status)
}

func TestRecordPaymentRequiresAssignment(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db, nil)
	customer := seedCustomer(t, db, "+911234567044")

	order, err := svc.Create(customer.ID, bookingRequest(models.CategoryPlumber))
	assert.NoError(t, err)

	_, err = svc.RecordPayment(order.ID, customer.ID, models.PaymentMethodCash)
	assert.ErrorIs(t, err, ErrPaymentNotReady)
}

func TestReviewRecomputesWorkerRating(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db, nil)
	customer := seedCustomer(t, db, "+911234567050")
	worker := seedWorker(t, db, "+911234567051", models.CategoryPlumber, true)

	complete := func(i int) *models.Order {
		order, err := svc.Create(customer.ID, bookingRequest(models.CategoryPlumber))
		assert.NoError(t, err)
		_, err = svc.Accept(order.ID, worker.ID)
		assert.NoError(t, err, "order %d", i)
		_, err = svc.Start(order.ID, worker.ID)
		assert.NoError(t, err)

		var stored models.Order
		assert.NoError(t, db.First(&stored, order.ID).Error)
		_, err = svc.Complete(order.ID, worker.ID, stored.OTP)
		assert.NoError(t, err)
		return &stored
	}

	first := complete(1)
	second := complete(2)

	_, err := svc.Review(first.ID, customer.ID, models.ReviewRequest{Stars: 5})
	assert.NoError(t, err)
	_, err = svc.Review(second.ID, customer.ID, models.ReviewRequest{Stars: 3})
	assert.NoError(t, err)

	var rated models.Worker
	assert.NoError(t, db.First(&rated, worker.ID).Error)
	assert.InDelta(t, 4.0, rated.Rating, 0.001)
}

func TestReviewOncePerOrder(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db, nil)
	customer := seedCustomer(t, db, "+911234567052")
	worker := seedWorker(t, db, "+911234567053", models.CategoryPlumber, true)

	order, err := svc.Create(customer.ID, bookingRequest(models.CategoryPlumber))
	assert.NoError(t, err)
	_, err = svc.Accept(order.ID, worker.ID)
	assert.NoError(t, err)
	_, err = svc.Start(order.ID, worker.ID)
	assert.NoError(t, err)

	var stored models.Order
	assert.NoError(t, db.First(&stored, order.ID).Error)
	_, err = svc.Complete(order.ID, worker.ID, stored.OTP)
	assert.NoError(t, err)

	_, err = svc.Review(order.ID, customer.ID, models.ReviewRequest{Stars: 4})
	assert.NoError(t, err)

	_, err = svc.Review(order.ID, customer.ID, models.ReviewRequest{Stars: 1})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestReviewRequiresCompletedOrder(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db, nil)
	customer := seedCustomer(t, db, "+911234567054")

	order, err := svc.Create(customer.ID, bookingRequest(models.CategoryPlumber))
	assert.NoError(t, err)

	_, err = svc.Review(order.ID, customer.ID, models.ReviewRequest{Stars: 5})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPendingForWorkerFilters(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db, nil)
	customer := seedCustomer(t, db, "+911234567060")
	plumber := seedWorker(t, db, "+911234567061", models.CategoryPlumber, true)
	claimer := seedWorker(t, db, "+911234567062", models.CategoryPlumber, true)

	for i := 0; i < 3; i++ {
		req := bookingRequest(models.CategoryPlumber)
		req.ServiceName = fmt.Sprintf("Job %d", i)
		_, err := svc.Create(customer.ID, req)
		assert.NoError(t, err)
	}
	painterOrder, err := svc.Create(customer.ID, bookingRequest(models.CategoryPainter))
	assert.NoError(t, err)

	pending, err := svc.PendingForWorker(plumber.ID)
	assert.NoError(t, err)
	assert.Len(t, pending, 3)
	for _, order := range pending {
		assert.Equal(t, models.CategoryPlumber, order.Category)
		assert.NotEqual(t, painterOrder.ID, order.ID)
	}

	// A claimed order drops out of everyone's pending list
	_, err = svc.Accept(pending[0].ID, claimer.ID)
	assert.NoError(t, err)

	remaining, err := svc.PendingForWorker(plumber.ID)
	assert.NoError(t, err)
	assert.Len(t, remaining, 2)
}
