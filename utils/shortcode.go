// Package utils provides utility functions for the application.
package utils

import (
	"crypto/rand"
	"fmt"
)

// campaignCodeAlphabet is the standard base-32 alphabet used for
// campaign codes.
const campaignCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// CampaignCodeLength is the fixed length of a campaign code.
const CampaignCodeLength = 5

// GenerateCampaignCode draws 3 random bytes, interprets them as an
// unsigned 24-bit integer and encodes it in base-32, left-padded with
// 'A' to exactly 5 characters. The output always matches ^[A-Z2-7]{5}$.
//
// Uniqueness is NOT guaranteed here; the caller checks the generated
// code against the record store and fails on collision.
func GenerateCampaignCode() (string, error) {
	var buf [3]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	value := uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2])

	code := make([]byte, 0, CampaignCodeLength)
	for value > 0 {
		code = append([]byte{campaignCodeAlphabet[value%32]}, code...)
		value /= 32
	}
	for len(code) < CampaignCodeLength {
		code = append([]byte{'A'}, code...)
	}

	return string(code), nil
}

// ValidCampaignCode reports whether s is a well-formed campaign code.
func ValidCampaignCode(s string) bool {
	if len(s) != CampaignCodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '2' || c > '7') {
			return false
		}
	}
	return true
}
