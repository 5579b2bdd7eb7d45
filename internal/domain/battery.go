package domain

import (
	"time"
)

type BatteryStatus string

const (
	BatteryStatusAvailable   BatteryStatus = "AVAILABLE"
	BatteryStatusPending     BatteryStatus = "PENDING" // held for a confirmed booking
	BatteryStatusInUse       BatteryStatus = "IN_USE"
	BatteryStatusCharging    BatteryStatus = "CHARGING"
	BatteryStatusMaintenance BatteryStatus = "MAINTENANCE"
)

// Battery is a physical swap battery tracked per station.
//
// Invariant: Status == PENDING iff ReservationExpiry is set and a reservation
// owner (ReservedForBookingID) exists. The expiry reconciler self-heals rows
// that violate it.
type Battery struct {
	ID                   int64         `json:"id" gorm:"primaryKey;autoIncrement"`
	SerialNumber         string        `json:"serial_number" gorm:"uniqueIndex"`
	Status               BatteryStatus `json:"status" gorm:"index"`
	StateOfHealth        float64       `json:"state_of_health"` // percent
	BatteryTypeID        int64         `json:"battery_type_id"`
	CurrentStationID     *int64        `json:"current_station_id,omitempty" gorm:"index"`
	ReservedForBookingID *int64        `json:"reserved_for_booking_id,omitempty" gorm:"index"`
	ReservationExpiry    *time.Time    `json:"reservation_expiry,omitempty" gorm:"index"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`

	// Relations (for JSON responses)
	CurrentStation *Station `json:"current_station,omitempty" gorm:"foreignKey:CurrentStationID"`
}

// IsReservationExpired reports whether the battery holds a reservation whose
// expiry is strictly before now.
func (b *Battery) IsReservationExpired(now time.Time) bool {
	return b.Status == BatteryStatusPending &&
		b.ReservationExpiry != nil &&
		b.ReservationExpiry.Before(now)
}

// Release clears the reservation hold and returns the battery to the pool.
func (b *Battery) Release(now time.Time) {
	b.Status = BatteryStatusAvailable
	b.ReservedForBookingID = nil
	b.ReservationExpiry = nil
	b.UpdatedAt = now
}
