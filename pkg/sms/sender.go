package sms

import (
	"context"

	"github.com/souqly/backend/pkg/logger"
	"go.uber.org/zap"
)

// Sender delivers a text message to a phone number. Actual delivery is an
// external collaborator; this package only defines the contract plus a
// local sender for environments without a provider.
type Sender interface {
	Send(ctx context.Context, phoneNumber, message string) error
}

type logSender struct{}

// NewLogSender returns a Sender that only logs the message. Used in local
// and test environments.
func NewLogSender() Sender {
	return &logSender{}
}

func (s *logSender) Send(_ context.Context, phoneNumber, message string) error {
	logger.Info("sms send skipped, no provider configured",
		zap.String("phone_number", phoneNumber),
		zap.Int("message_len", len(message)),
	)
	return nil
}
