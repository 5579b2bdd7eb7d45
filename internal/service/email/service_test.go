package email

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/mocks"
)

// MockProvider is a mock email provider for testing.
type MockProvider struct {
	SentEmails []MockEmail
	ShouldFail bool
}

type MockEmail struct {
	To      string
	Subject string
	Body    string
	IsHTML  bool
}

func (m *MockProvider) Send(ctx context.Context, to, subject, body string, isHTML bool) error {
	if m.ShouldFail {
		return errors.New("mock send failed")
	}
	m.SentEmails = append(m.SentEmails, MockEmail{To: to, Subject: subject, Body: body, IsHTML: isHTML})
	return nil
}

func newMockService(provider *MockProvider) *Service {
	s := &Service{
		config:    DefaultConfig(),
		provider:  provider,
		templates: make(map[string]*template.Template),
		log:       zap.NewNop(),
	}
	s.loadTemplates()
	return s
}

func sampleDetail() *domain.EmailDetail {
	return &domain.EmailDetail{
		Recipient:          "driver@example.com",
		FullName:           "Nguyen Van A",
		BookingID:          99,
		StationName:        "District 1 Hub",
		StationLocation:    "12 Le Loi, Ho Chi Minh City",
		StationContact:     "not provided",
		BookingTime:        "14:30 - 20/06/2025",
		VehicleModel:       "VF8",
		BatteryType:        "LFP-60 - 60kWh",
		Status:             "CANCELLED",
		ConfirmationCode:   "ABCD1234",
		CancellationPolicy: "auto-expired, no-show, one swap forfeited",
	}
}

func TestSendBookingCancellationRendersDetail(t *testing.T) {
	provider := &MockProvider{}
	svc := newMockService(provider)

	err := svc.SendBookingCancellation(context.Background(), sampleDetail())
	require.NoError(t, err)
	require.Len(t, provider.SentEmails, 1)

	sent := provider.SentEmails[0]
	assert.Equal(t, "driver@example.com", sent.To)
	assert.Equal(t, "Booking #99 cancelled", sent.Subject)
	assert.True(t, sent.IsHTML)
	assert.True(t, strings.Contains(sent.Body, "Nguyen Van A"))
	assert.True(t, strings.Contains(sent.Body, "District 1 Hub"))
	assert.True(t, strings.Contains(sent.Body, "14:30 - 20/06/2025"))
}

func TestSendBookingCancellationProviderFailure(t *testing.T) {
	svc := newMockService(&MockProvider{ShouldFail: true})

	err := svc.SendBookingCancellation(context.Background(), sampleDetail())
	assert.Error(t, err)
}

func TestCancellationConsumerDeliversPayload(t *testing.T) {
	provider := &MockProvider{}
	svc := newMockService(provider)
	mq := mocks.NewMockMessageQueue()

	require.NoError(t, StartCancellationConsumer(mq, "notifications.booking.cancelled", svc, zap.NewNop()))

	payload, err := json.Marshal(sampleDetail())
	require.NoError(t, err)
	require.NoError(t, mq.Deliver("notifications.booking.cancelled", payload))

	require.Len(t, provider.SentEmails, 1)
	assert.Equal(t, "driver@example.com", provider.SentEmails[0].To)
}

func TestCancellationConsumerDropsMalformedPayload(t *testing.T) {
	provider := &MockProvider{}
	svc := newMockService(provider)
	mq := mocks.NewMockMessageQueue()

	require.NoError(t, StartCancellationConsumer(mq, "notifications.booking.cancelled", svc, zap.NewNop()))

	assert.NoError(t, mq.Deliver("notifications.booking.cancelled", []byte("{not json")))
	assert.Empty(t, provider.SentEmails)
}
