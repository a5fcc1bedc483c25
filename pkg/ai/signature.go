package ai

import "crypto/subtle"

// VerifyWebhookSecret compares the shared secret sent on a callback in constant time
func VerifyWebhookSecret(expected, got string) bool {
	if expected == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}
