package orders

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// NewOrderNumber generates a human-readable order number. The millisecond
// timestamp keeps numbers roughly sortable; the random suffix makes
// collisions under concurrent creation negligible without a central sequence.
func NewOrderNumber(now time.Time) string {
	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		// crypto/rand failing means the platform is broken; nothing sensible to return.
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), strings.ToUpper(hex.EncodeToString(suffix)))
}

// NewTrackingToken generates the opaque guest-access credential. 16 random
// bytes, hex encoded; treated as a secret, never echoed in generic reads.
func NewTrackingToken() string {
	token := make([]byte, 16)
	if _, err := rand.Read(token); err != nil {
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	return hex.EncodeToString(token)
}
