package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance bounds the age of a webhook timestamp
const DefaultTolerance = 5 * time.Minute

var (
	ErrNoSignature      = errors.New("missing Stripe-Signature header")
	ErrBadSignature     = errors.New("webhook signature mismatch")
	ErrTimestampExpired = errors.New("webhook timestamp outside tolerance")
)

// VerifySignature checks a Stripe-Signature header ("t=...,v1=...") against
// the payload. Any v1 entry may match, which covers secret rotation.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	if header == "" {
		return ErrNoSignature
	}

	var timestamp int64
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("%w: bad timestamp", ErrBadSignature)
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, v)
		}
	}
	if timestamp == 0 || len(signatures) == 0 {
		return ErrNoSignature
	}

	age := now.Sub(time.Unix(timestamp, 0))
	if tolerance > 0 && (age > tolerance || age < -tolerance) {
		return ErrTimestampExpired
	}

	expected := computeSignature(payload, secret, timestamp)
	for _, sig := range signatures {
		got, err := hex.DecodeString(sig)
		if err == nil && hmac.Equal(got, expected) {
			return nil
		}
	}
	return ErrBadSignature
}

// SignatureHeader builds a header value for payload, as Stripe would send it
func SignatureHeader(payload []byte, secret string, at time.Time) string {
	ts := at.Unix()
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(computeSignature(payload, secret, ts)))
}

func computeSignature(payload []byte, secret string, timestamp int64) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}
