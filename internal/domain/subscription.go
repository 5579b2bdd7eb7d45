package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServicePackage is an immutable catalog row describing a swap plan.
type ServicePackage struct {
	ID          int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string          `json:"name" gorm:"uniqueIndex"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(14,2)"`
	MaxSwaps    int             `json:"max_swaps"`
	Duration    int             `json:"duration"` // term length in days
	CreatedAt   time.Time       `json:"created_at"`
}

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusExpired   SubscriptionStatus = "EXPIRED"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
)

// DriverSubscription is a driver's purchased swap allowance.
//
// At most one ACTIVE subscription per driver with EndDate >= today is "the
// active subscription". A subscription with zero remaining swaps stays ACTIVE
// until a lifecycle operation expires it. EXPIRED and CANCELLED are terminal.
type DriverSubscription struct {
	ID               int64              `json:"id" gorm:"primaryKey;autoIncrement"`
	DriverID         int64              `json:"driver_id" gorm:"index"`
	ServicePackageID int64              `json:"service_package_id"`
	StartDate        time.Time          `json:"start_date" gorm:"type:date"`
	EndDate          time.Time          `json:"end_date" gorm:"type:date"`
	Status           SubscriptionStatus `json:"status" gorm:"index"`
	RemainingSwaps   int                `json:"remaining_swaps"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`

	// Relations (for JSON responses)
	Driver         *User           `json:"driver,omitempty" gorm:"foreignKey:DriverID"`
	ServicePackage *ServicePackage `json:"service_package,omitempty" gorm:"foreignKey:ServicePackageID"`
}

// IsActiveOn reports whether the subscription is usable on the given day.
func (s *DriverSubscription) IsActiveOn(day time.Time) bool {
	return s.Status == SubscriptionStatusActive && !s.EndDate.Before(Midnight(day))
}

// HasSwapsLeft reports whether any swap allowance remains.
func (s *DriverSubscription) HasSwapsLeft() bool {
	return s.RemainingSwaps > 0
}

// Midnight truncates a timestamp to its calendar date.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Midnight(b).Sub(Midnight(a)).Hours() / 24)
}
