package domain

import (
	"time"
)

type StationStatus string

const (
	StationStatusActive      StationStatus = "ACTIVE"
	StationStatusInactive    StationStatus = "INACTIVE"
	StationStatusMaintenance StationStatus = "MAINTENANCE"
)

// BatteryType describes a battery model a station stocks.
type BatteryType struct {
	ID       int64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name     string   `json:"name"`
	Capacity *float64 `json:"capacity,omitempty"` // kWh, optional
}

// Station represents a battery-swap station.
type Station struct {
	ID            int64         `json:"id" gorm:"primaryKey;autoIncrement"`
	Name          string        `json:"name"`
	Location      string        `json:"location,omitempty"`
	District      string        `json:"district,omitempty"`
	City          string        `json:"city,omitempty"`
	ContactInfo   string        `json:"contact_info,omitempty"`
	Status        StationStatus `json:"status"`
	BatteryTypeID int64         `json:"battery_type_id"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	// Relations (for JSON responses)
	BatteryType *BatteryType `json:"battery_type,omitempty" gorm:"foreignKey:BatteryTypeID"`
}

// DisplayLocation returns the free-form location or the district/city fallback.
func (s *Station) DisplayLocation() string {
	if s.Location != "" {
		return s.Location
	}
	return s.District + ", " + s.City
}

// Vehicle is a driver's registered electric vehicle.
type Vehicle struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	DriverID      int64     `json:"driver_id" gorm:"index"`
	PlateNumber   string    `json:"plate_number" gorm:"uniqueIndex"`
	Model         string    `json:"model,omitempty"`
	BatteryTypeID int64     `json:"battery_type_id"`
	CreatedAt     time.Time `json:"created_at"`

	BatteryType *BatteryType `json:"battery_type,omitempty" gorm:"foreignKey:BatteryTypeID"`
}

// Descriptor returns the vehicle model, falling back to the plate number.
func (v *Vehicle) Descriptor() string {
	if v.Model != "" {
		return v.Model
	}
	return v.PlateNumber
}
