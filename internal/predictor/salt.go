package predictor

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SaltFunc derives the per-customer salt header sent with every scoring call.
type SaltFunc func(serverSecret, customerID string) string

// HMACSalt is the default derivation: HMAC-SHA256 over the customer id keyed
// by the shared server secret, lowercase hex.
// TODO: confirm with the vendor; their docs do not pin the key/message order.
func HMACSalt(serverSecret, customerID string) string {
	mac := hmac.New(sha256.New, []byte(serverSecret))
	mac.Write([]byte(customerID))

	return hex.EncodeToString(mac.Sum(nil))
}
