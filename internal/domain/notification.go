package domain

// EmailDetail is the structured payload handed to the notification sender.
// The core only produces it; delivery is fire-and-forget.
type EmailDetail struct {
	Recipient          string `json:"recipient"`
	Subject            string `json:"subject"`
	FullName           string `json:"full_name"`
	BookingID          int64  `json:"booking_id"`
	StationName        string `json:"station_name"`
	StationLocation    string `json:"station_location"`
	StationContact     string `json:"station_contact"`
	BookingTime        string `json:"booking_time"` // formatted "HH:mm - dd/MM/yyyy"
	VehicleModel       string `json:"vehicle_model"`
	BatteryType        string `json:"battery_type"`
	Status             string `json:"status"`
	ConfirmationCode   string `json:"confirmation_code"`
	CancellationPolicy string `json:"cancellation_policy"`
}
