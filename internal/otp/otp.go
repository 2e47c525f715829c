// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package otp implements the SMS login-code flow: short numeric codes
// generated per phone number, held in Valkey with a TTL, and checked
// with a bounded number of attempts. Actual SMS delivery sits behind the
// Sender interface; the service only produces and verifies codes.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	codeLength = 6

	// keyPrefix namespaces OTP keys in Valkey.
	keyPrefix = "otp:"

	// attemptsSuffix tracks failed verifications per phone.
	attemptsSuffix = ":attempts"

	// DefaultTTL is how long an issued code stays valid.
	DefaultTTL = 5 * time.Minute

	// maxAttempts caps wrong guesses before the code is invalidated.
	maxAttempts = 5
)

var (
	// ErrCodeMismatch means the supplied code is wrong or expired.
	ErrCodeMismatch = errors.New("otp: code mismatch")

	// ErrTooManyAttempts means the code was invalidated by repeated
	// wrong guesses; the user must request a new one.
	ErrTooManyAttempts = errors.New("otp: too many attempts")
)

// Sender delivers a login code to a phone number. SMS gateways implement
// this; the app itself never talks to a gateway directly.
type Sender interface {
	Send(ctx context.Context, phone, code string) error
}

// LogSender writes codes to the log instead of sending SMS. Used in
// development and tests.
type LogSender struct{}

// Send logs the code.
func (LogSender) Send(_ context.Context, phone, code string) error {
	slog.Info("otp issued (dev delivery)", "phone", phone, "code", code)
	return nil
}

// Service issues and verifies login codes.
type Service struct {
	client *redis.Client
	sender Sender
	ttl    time.Duration
}

// New creates an OTP service backed by the given Valkey client and sender.
func New(client *redis.Client, sender Sender) *Service {
	return &Service{client: client, sender: sender, ttl: DefaultTTL}
}

// Issue generates a fresh code for the phone number, stores it with the
// configured TTL (replacing any outstanding code), and hands it to the
// sender.
func (s *Service) Issue(ctx context.Context, phone string) error {
	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("otp generate: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, keyPrefix+phone, code, s.ttl)
	pipe.Del(ctx, keyPrefix+phone+attemptsSuffix)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("otp store: %w", err)
	}

	if err := s.sender.Send(ctx, phone, code); err != nil {
		return fmt.Errorf("otp send: %w", err)
	}
	return nil
}

// Verify checks a code against the outstanding one for the phone number.
// A successful verification consumes the code. Wrong guesses are counted
// and the code is invalidated after maxAttempts of them.
func (s *Service) Verify(ctx context.Context, phone, code string) error {
	stored, err := s.client.Get(ctx, keyPrefix+phone).Result()
	if err == redis.Nil {
		return ErrCodeMismatch
	}
	if err != nil {
		return fmt.Errorf("otp lookup: %w", err)
	}

	if code != stored {
		attempts, err := s.client.Incr(ctx, keyPrefix+phone+attemptsSuffix).Result()
		if err != nil {
			return fmt.Errorf("otp attempts: %w", err)
		}
		s.client.Expire(ctx, keyPrefix+phone+attemptsSuffix, s.ttl)
		if attempts >= maxAttempts {
			s.client.Del(ctx, keyPrefix+phone, keyPrefix+phone+attemptsSuffix)
			return ErrTooManyAttempts
		}
		return ErrCodeMismatch
	}

	s.client.Del(ctx, keyPrefix+phone, keyPrefix+phone+attemptsSuffix)
	return nil
}

// generateCode produces a uniformly random numeric code of codeLength digits.
func generateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeLength, n), nil
}
