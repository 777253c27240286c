package otp

import "github.com/xlzd/gotp"

// Generator produces numeric one-time confirmation codes.
type Generator interface {
	RandomCode(length int) string
}

type GOTPGenerator struct{}

func NewGOTPGenerator() *GOTPGenerator {
	return &GOTPGenerator{}
}

// RandomCode derives a fresh numeric code from a random TOTP secret.
func (g *GOTPGenerator) RandomCode(length int) string {
	secret := gotp.RandomSecret(16)
	return gotp.NewTOTP(secret, length, 30, nil).Now()
}
