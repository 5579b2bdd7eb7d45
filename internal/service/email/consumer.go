package email

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/evbs/battery-swap-backend/internal/adapter/queue"
	"github.com/evbs/battery-swap-backend/internal/domain"
)

// StartCancellationConsumer subscribes to the given subject and delivers the
// cancellation email for every message. Malformed payloads are logged and
// dropped so one bad message cannot wedge the consumer.
func StartCancellationConsumer(mq queue.MessageQueue, subject string, svc *Service, log *zap.Logger) error {
	return mq.Subscribe(subject, func(data []byte) error {
		var detail domain.EmailDetail
		if err := json.Unmarshal(data, &detail); err != nil {
			log.Error("Dropping malformed cancellation payload", zap.Error(err))
			return nil
		}
		if detail.Recipient == "" {
			log.Warn("Dropping cancellation payload without recipient",
				zap.Int64("booking_id", detail.BookingID),
			)
			return nil
		}
		return svc.SendBookingCancellation(context.Background(), &detail)
	})
}
