package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// MACValidator checks the HMAC signature the gateway attaches to webhook
// notifications. The signed string is "orderKey:paymentStatus".
type MACValidator struct {
	secret string
	live   bool
}

// NewMACValidator builds a validator. When no secret is configured,
// validation passes in sandbox and fails in live: an unsigned webhook must
// never mutate a production order.
func NewMACValidator(secret string, live bool) *MACValidator {
	return &MACValidator{secret: secret, live: live}
}

// Valid reports whether the supplied MAC matches. Comparison is
// case-insensitive since gateways differ on hex casing.
func (v *MACValidator) Valid(orderKey, paymentStatus, mac string) bool {
	if mac == "" || v.secret == "" {
		return !v.live
	}

	h := hmac.New(sha256.New, []byte(v.secret))
	h.Write([]byte(orderKey + ":" + paymentStatus))
	expected := hex.EncodeToString(h.Sum(nil))

	return hmac.Equal([]byte(strings.ToLower(mac)), []byte(expected))
}
