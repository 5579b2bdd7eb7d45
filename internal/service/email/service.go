package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"go.uber.org/zap"

	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/ports"
)

// Provider defines the interface for email providers.
type Provider interface {
	Send(ctx context.Context, to, subject, body string, isHTML bool) error
}

// Config holds email service configuration.
type Config struct {
	// Provider type: "sendgrid" or "smtp"
	Provider string

	FromEmail string
	FromName  string

	// SendGrid configuration
	SendGridAPIKey string

	// SMTP configuration (for Mailhog or other SMTP servers)
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPUseTLS   bool
}

// DefaultConfig returns a default configuration for development (Mailhog).
func DefaultConfig() *Config {
	return &Config{
		Provider:   "smtp",
		FromEmail:  "noreply@evbs.vn",
		FromName:   "EV Battery Swap",
		SMTPHost:   "localhost",
		SMTPPort:   1025,
		SMTPUseTLS: false,
	}
}

// Service renders notification templates and hands them to the configured
// provider. It implements ports.NotificationSender.
type Service struct {
	config    *Config
	provider  Provider
	templates map[string]*template.Template
	log       *zap.Logger
}

var _ ports.NotificationSender = (*Service)(nil)

// NewService creates a new email service.
func NewService(config *Config, log *zap.Logger) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}

	s := &Service{
		config:    config,
		templates: make(map[string]*template.Template),
		log:       log,
	}

	switch config.Provider {
	case "sendgrid":
		if config.SendGridAPIKey == "" {
			return nil, fmt.Errorf("SendGrid API key is required")
		}
		s.provider = NewSendGridProvider(config.SendGridAPIKey, config.FromEmail, config.FromName)
	case "smtp":
		s.provider = NewSMTPProvider(
			config.SMTPHost,
			config.SMTPPort,
			config.SMTPUsername,
			config.SMTPPassword,
			config.FromEmail,
			config.FromName,
			config.SMTPUseTLS,
		)
	default:
		return nil, fmt.Errorf("unknown email provider: %s", config.Provider)
	}

	s.loadTemplates()
	return s, nil
}

func (s *Service) loadTemplates() {
	s.templates["booking_cancelled"] = template.Must(template.New("booking_cancelled").Parse(bookingCancelledTemplate))
	s.templates["booking_confirmed"] = template.Must(template.New("booking_confirmed").Parse(bookingConfirmedTemplate))
	s.templates["welcome"] = template.Must(template.New("welcome").Parse(welcomeTemplate))
}

// SendBookingCancellation renders and delivers the booking-cancellation
// notice described by detail.
func (s *Service) SendBookingCancellation(ctx context.Context, detail *domain.EmailDetail) error {
	subject := detail.Subject
	if subject == "" {
		subject = fmt.Sprintf("Booking #%d cancelled", detail.BookingID)
	}
	return s.sendTemplate(ctx, detail.Recipient, subject, "booking_cancelled", detail)
}

// SendBookingConfirmation delivers the booking confirmation with its code.
func (s *Service) SendBookingConfirmation(ctx context.Context, detail *domain.EmailDetail) error {
	subject := detail.Subject
	if subject == "" {
		subject = fmt.Sprintf("Booking #%d confirmed", detail.BookingID)
	}
	return s.sendTemplate(ctx, detail.Recipient, subject, "booking_confirmed", detail)
}

// SendWelcome greets a newly registered user.
func (s *Service) SendWelcome(ctx context.Context, user *domain.User) error {
	data := map[string]interface{}{
		"UserName": user.FullName,
		"Email":    user.Email,
	}
	return s.sendTemplate(ctx, user.Email, "Welcome to EV Battery Swap", "welcome", data)
}

func (s *Service) sendTemplate(ctx context.Context, to, subject, templateName string, data interface{}) error {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return fmt.Errorf("template not found: %s", templateName)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}

	s.log.Info("Sending email",
		zap.String("to", to),
		zap.String("template", templateName),
	)

	if err := s.provider.Send(ctx, to, subject, buf.String(), true); err != nil {
		s.log.Error("Failed to send email",
			zap.String("to", to),
			zap.String("template", templateName),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
