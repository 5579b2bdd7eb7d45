package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evbs/battery-swap-backend/internal/domain"
)

// SubscriptionService is the subscription lifecycle manager. It is the sole
// writer of subscription state; money/time arithmetic goes through the
// proration engine.
type SubscriptionService interface {
	// CreateAfterPayment activates a new subscription once the payment
	// provider has confirmed payment for the package.
	CreateAfterPayment(ctx context.Context, driverID, packageID int64) (*domain.DriverSubscription, error)

	// DeductSwap consumes one swap from the driver's active subscription.
	// Missing subscription or an exhausted allowance is a logged no-op.
	DeductSwap(ctx context.Context, driverID int64) error

	// EvaluateUpgrade prices an upgrade without mutating anything.
	EvaluateUpgrade(ctx context.Context, driverID, newPackageID int64) (*UpgradeEvaluation, error)

	// UpgradeAfterPayment replaces the active subscription with a fresh one
	// on the new package. Remaining swaps are forfeited.
	UpgradeAfterPayment(ctx context.Context, driverID, newPackageID int64) (*domain.DriverSubscription, error)

	// EvaluateDowngrade checks downgrade eligibility and computes the swap
	// penalty and extended term without mutating anything.
	EvaluateDowngrade(ctx context.Context, driverID, newPackageID int64) (*DowngradeEvaluation, error)

	// Downgrade replaces the active subscription using the evaluation's
	// computed remaining swaps and end date. No payment is involved.
	Downgrade(ctx context.Context, driverID, newPackageID int64) (*domain.DriverSubscription, error)

	GetByDriver(ctx context.Context, driverID int64) ([]domain.DriverSubscription, error)
	GetAll(ctx context.Context) ([]domain.DriverSubscription, error)

	// Cancel administratively terminates a subscription (ACTIVE -> CANCELLED).
	Cancel(ctx context.Context, id int64) error
}

// UpgradeEvaluation is the proration engine's upgrade quote.
type UpgradeEvaluation struct {
	CurrentSubscriptionID int64           `json:"current_subscription_id"`
	CurrentPackageName    string          `json:"current_package_name"`
	CurrentPackagePrice   decimal.Decimal `json:"current_package_price"`
	CurrentMaxSwaps       int             `json:"current_max_swaps"`
	UsedSwaps             int             `json:"used_swaps"`
	RemainingSwaps        int             `json:"remaining_swaps"`
	DaysUsed              int             `json:"days_used"`
	DaysRemaining         int             `json:"days_remaining"`

	NewPackageID    int64           `json:"new_package_id"`
	NewPackageName  string          `json:"new_package_name"`
	NewPackagePrice decimal.Decimal `json:"new_package_price"`
	NewMaxSwaps     int             `json:"new_max_swaps"`
	NewDuration     int             `json:"new_duration"`

	PricePerSwapOld decimal.Decimal `json:"price_per_swap_old"`
	PricePerSwapNew decimal.Decimal `json:"price_per_swap_new"`
	SavingsPerSwap  decimal.Decimal `json:"savings_per_swap"`
	RefundValue     decimal.Decimal `json:"refund_value"`
	UpgradeFee      decimal.Decimal `json:"upgrade_fee"`
	TotalPayment    decimal.Decimal `json:"total_payment_required"`

	NewStartDate   time.Time `json:"new_start_date"`
	NewEndDate     time.Time `json:"new_end_date"`
	Recommendation string    `json:"recommendation"`
}

// DowngradeEvaluation is the proration engine's downgrade quote. When
// CanDowngrade is false, Reason and Warning explain why.
type DowngradeEvaluation struct {
	CanDowngrade bool   `json:"can_downgrade"`
	Reason       string `json:"reason,omitempty"`
	Warning      string `json:"warning,omitempty"`

	CurrentSubscriptionID int64           `json:"current_subscription_id,omitempty"`
	CurrentPackageName    string          `json:"current_package_name,omitempty"`
	CurrentPackagePrice   decimal.Decimal `json:"current_package_price"`
	CurrentMaxSwaps       int             `json:"current_max_swaps,omitempty"`
	UsedSwaps             int             `json:"used_swaps"`
	RemainingSwaps        int             `json:"remaining_swaps"`
	DaysUsed              int             `json:"days_used"`
	DaysRemaining         int             `json:"days_remaining"`

	NewPackageID    int64           `json:"new_package_id,omitempty"`
	NewPackageName  string          `json:"new_package_name,omitempty"`
	NewPackagePrice decimal.Decimal `json:"new_package_price"`
	NewMaxSwaps     int             `json:"new_max_swaps,omitempty"`
	NewDuration     int             `json:"new_duration,omitempty"`

	PricePerSwapOld decimal.Decimal `json:"price_per_swap_old"`
	PricePerSwapNew decimal.Decimal `json:"price_per_swap_new"`
	NoRefund        decimal.Decimal `json:"no_refund"` // always zero; downgrades never return money

	PenaltySwaps        int `json:"penalty_swaps"`
	FinalRemainingSwaps int `json:"final_remaining_swaps"`
	ExtensionDays       int `json:"extension_days"`
	// SwapsToConsume is how many more swaps must be used before the
	// downgrade qualifies; set only on the "too many unused swaps" rejection.
	SwapsToConsume int `json:"swaps_to_consume,omitempty"`

	NewStartDate   time.Time `json:"new_start_date"`
	NewEndDate     time.Time `json:"new_end_date"`
	Recommendation string    `json:"recommendation,omitempty"`
}

// PaymentService builds provider payment URLs and processes callbacks.
type PaymentService interface {
	CreatePaymentURL(ctx context.Context, driverID, packageID int64, redirectURL string, upgrade bool) (*PaymentURL, error)
	HandleCallback(ctx context.Context, params CallbackParams) (*CallbackResult, error)
	GetBySubscription(ctx context.Context, subscriptionID int64) ([]domain.Payment, error)
}

// PaymentURL is the outbound payment-creation result handed to the client.
type PaymentURL struct {
	PaymentURL string `json:"payment_url"`
	OrderID    string `json:"order_id"`
	RequestID  string `json:"request_id"`
	Message    string `json:"message"`
}

// CallbackParams are the raw provider callback parameters.
type CallbackParams struct {
	PartnerCode  string
	OrderID      string
	RequestID    string
	Amount       string
	OrderInfo    string
	OrderType    string
	TransID      string
	ResultCode   string
	Message      string
	PayType      string
	ResponseTime string
	ExtraData    string
	Signature    string
}

// CallbackResult is the processed outcome of a provider callback.
type CallbackResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	SubscriptionID int64  `json:"subscription_id,omitempty"`
	PackageName    string `json:"package_name,omitempty"`
	RemainingSwaps int    `json:"remaining_swaps,omitempty"`
	StartDate      string `json:"start_date,omitempty"`
	EndDate        string `json:"end_date,omitempty"`
	Amount         string `json:"amount,omitempty"`
	TransactionRef string `json:"transaction_ref,omitempty"`
	ResultCode     string `json:"result_code,omitempty"`
}

// CatalogService is the read/write surface for stations, batteries, battery
// types, service packages and vehicles.
type CatalogService interface {
	ListStations(ctx context.Context) ([]domain.Station, error)
	GetStation(ctx context.Context, id int64) (*domain.Station, error)
	SaveStation(ctx context.Context, station *domain.Station) error
	DeleteStation(ctx context.Context, id int64) error

	ListBatteries(ctx context.Context) ([]domain.Battery, error)
	SaveBattery(ctx context.Context, battery *domain.Battery) error

	ListBatteryTypes(ctx context.Context) ([]domain.BatteryType, error)
	SaveBatteryType(ctx context.Context, bt *domain.BatteryType) error

	ListPackages(ctx context.Context) ([]domain.ServicePackage, error)
	GetPackage(ctx context.Context, id int64) (*domain.ServicePackage, error)
	SavePackage(ctx context.Context, pkg *domain.ServicePackage) error
	DeletePackage(ctx context.Context, id int64) error

	ListVehicles(ctx context.Context, driverID int64) ([]domain.Vehicle, error)
	SaveVehicle(ctx context.Context, vehicle *domain.Vehicle) error
}

// NotificationSender delivers structured notification payloads. Callers never
// inspect the outcome beyond logging.
type NotificationSender interface {
	SendBookingCancellation(ctx context.Context, detail *domain.EmailDetail) error
}

// AuthService issues and validates access tokens.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, user *domain.User) error
	ValidateToken(ctx context.Context, token string) (*domain.User, error)
}

// BookingService is the booking-creation and self-service surface.
type BookingService interface {
	CreateBooking(ctx context.Context, req *BookingRequest) (*domain.Booking, error)
	GetBooking(ctx context.Context, id int64) (*domain.Booking, error)
	GetDriverBookings(ctx context.Context, driverID int64) ([]domain.Booking, error)
	CancelBooking(ctx context.Context, id, driverID int64, reason string) error
}

// BookingRequest carries the booking-creation inputs.
type BookingRequest struct {
	DriverID    int64     `json:"driver_id"`
	StationID   int64     `json:"station_id"`
	VehicleID   int64     `json:"vehicle_id"`
	BookingTime time.Time `json:"booking_time"`
}
