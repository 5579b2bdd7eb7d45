package domain

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// Booking is a driver's appointment to swap a battery at a station.
type Booking struct {
	ID                 int64         `json:"id" gorm:"primaryKey;autoIncrement"`
	DriverID           int64         `json:"driver_id" gorm:"index"`
	StationID          int64         `json:"station_id" gorm:"index"`
	VehicleID          int64         `json:"vehicle_id"`
	Status             BookingStatus `json:"status" gorm:"index"`
	BookingTime        time.Time     `json:"booking_time"`
	ConfirmationCode   string        `json:"confirmation_code" gorm:"uniqueIndex"`
	ReservedBatteryID  *int64        `json:"reserved_battery_id,omitempty"`
	ReservationExpiry  *time.Time    `json:"reservation_expiry,omitempty"` // mirrors the battery's
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`

	// Relations (for JSON responses)
	Driver  *User    `json:"driver,omitempty" gorm:"foreignKey:DriverID"`
	Station *Station `json:"station,omitempty" gorm:"foreignKey:StationID"`
	Vehicle *Vehicle `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
}

// CanBeCancelled reports whether the booking is still cancellable.
func (b *Booking) CanBeCancelled() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// Cancel transitions the booking to CANCELLED and clears the reservation hold.
func (b *Booking) Cancel(reason string, now time.Time) {
	b.Status = BookingStatusCancelled
	b.CancellationReason = reason
	b.ReservedBatteryID = nil
	b.ReservationExpiry = nil
	b.UpdatedAt = now
}
