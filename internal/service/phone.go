package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/souqly/backend/internal/cache"
	"github.com/souqly/backend/internal/config"
	"github.com/souqly/backend/internal/domain"
	"github.com/souqly/backend/internal/repository"
	"github.com/souqly/backend/pkg/otp"
	"github.com/souqly/backend/pkg/sms"
)

type phoneService struct {
	users        repository.Users
	codes        cache.PhoneCodes
	otpGenerator otp.Generator
	smsSender    sms.Sender
	cache        cache.StatusCache
	config       config.PhoneConfig
}

func newPhoneService(
	users repository.Users,
	codes cache.PhoneCodes,
	otpGenerator otp.Generator,
	smsSender sms.Sender,
	statusCache cache.StatusCache,
	config config.PhoneConfig,
) *phoneService {
	return &phoneService{
		users:        users,
		codes:        codes,
		otpGenerator: otpGenerator,
		smsSender:    smsSender,
		cache:        statusCache,
		config:       config,
	}
}

// RequestCode issues a fresh confirmation code and hands it to the SMS
// provider. A non-empty phoneNumber replaces the one on the profile and
// drops its verified flag; re-requesting replaces the pending code.
func (s *phoneService) RequestCode(ctx context.Context, userID uuid.UUID, phoneNumber string) error {
	user, err := s.users.GetOneByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load user failed: %w", err)
	}

	if phoneNumber != "" && phoneNumber != user.PhoneNumber.String {
		if err := s.users.UpdatePhoneNumber(ctx, userID, phoneNumber); err != nil {
			return fmt.Errorf("update phone number failed: %w", err)
		}
		user.PhoneNumber.String = phoneNumber
		user.PhoneNumber.Valid = true
		user.PhoneVerified = false
		if s.cache != nil {
			s.cache.Invalidate(ctx, userID)
		}
	}

	if user.PhoneVerified {
		return ErrPhoneAlreadyVerified
	}
	if !user.PhoneNumber.Valid || user.PhoneNumber.String == "" {
		return &ValidationError{Field: "phone_number", Reason: "no phone number on profile"}
	}

	code := s.otpGenerator.RandomCode(s.config.CodeLength)
	if err := s.codes.Set(ctx, userID, code, s.config.CodeTTL); err != nil {
		return fmt.Errorf("store confirmation code failed: %w", err)
	}

	message := fmt.Sprintf("Your Souqly confirmation code is %s", code)
	if err := s.smsSender.Send(ctx, user.PhoneNumber.String, message); err != nil {
		return fmt.Errorf("send confirmation sms failed: %w", err)
	}

	return nil
}

// ConfirmCode compares the submitted code against the pending one and marks
// the phone verified on match. Codes are single use.
func (s *phoneService) ConfirmCode(ctx context.Context, userID uuid.UUID, code string) error {
	pending, err := s.codes.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrPhoneCodeInvalid
		}
		return fmt.Errorf("load confirmation code failed: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(pending), []byte(code)) != 1 {
		return ErrPhoneCodeInvalid
	}

	if err := s.users.SetPhoneVerified(ctx, userID, time.Now()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("mark phone verified failed: %w", err)
	}

	if err := s.codes.Delete(ctx, userID); err != nil {
		return fmt.Errorf("drop confirmation code failed: %w", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}

	return nil
}
