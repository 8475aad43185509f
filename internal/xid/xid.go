package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// New returns a prefixed identifier built from the current time and a random
// suffix, e.g. "sale-18c2f0a9b3d4e5f6-a1b2c3d4e5f6".
func New(prefix string) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%x", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%x-%s", prefix, time.Now().UnixNano(), hex.EncodeToString(buf))
}
