package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

type PaymentMethod string

const (
	PaymentMethodMoMo PaymentMethod = "MOMO"
)

// Payment records one successful external payment confirmation.
type Payment struct {
	ID             int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	SubscriptionID int64           `json:"subscription_id" gorm:"index"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:numeric(14,2)"`
	Method         PaymentMethod   `json:"method"`
	TransactionRef string          `json:"transaction_ref,omitempty" gorm:"index"` // provider transId
	PaymentDate    time.Time       `json:"payment_date"`
	Status         PaymentStatus   `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`

	// Relations (for JSON responses)
	Subscription *DriverSubscription `json:"subscription,omitempty" gorm:"foreignKey:SubscriptionID"`
}
