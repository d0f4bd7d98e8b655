package utils

import (
	"crypto/rand"
	"fmt"
	"io"
	"regexp"
)

const (
	redemptionCodePrefix = "ECO-"
	redemptionCodeLength = 8
	redemptionAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// RedemptionCodePattern matches every code GenerateRedemptionCode produces
var RedemptionCodePattern = regexp.MustCompile(`^ECO-[A-Z0-9]{8}$`)

// NewRedemptionCode draws a code from crypto/rand
func NewRedemptionCode() (string, error) {
	return GenerateRedemptionCode(rand.Reader)
}

// GenerateRedemptionCode returns ECO- followed by 8 characters drawn uniformly
// from [A-Z0-9]. Bytes >= 252 are discarded so that each of the 36 symbols is
// equally likely.
func GenerateRedemptionCode(r io.Reader) (string, error) {
	const limit = 256 - 256%len(redemptionAlphabet)

	code := make([]byte, 0, len(redemptionCodePrefix)+redemptionCodeLength)
	code = append(code, redemptionCodePrefix...)

	buf := make([]byte, redemptionCodeLength*2)
	for len(code) < cap(code) {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			code = append(code, redemptionAlphabet[int(b)%len(redemptionAlphabet)])
			if len(code) == cap(code) {
				break
			}
		}
	}
	return string(code), nil
}
