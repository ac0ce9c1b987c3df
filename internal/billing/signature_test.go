package billing_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/motmatch/mot-marketplace/internal/billing"
)

func sign(secret, dataID, requestID, ts string) string {
	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", dataID, requestID, ts)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	const (
		secret    = "super-secret"
		dataID    = "12345678"
		requestID = "req-abc-123"
		ts        = "1699999999"
	)

	t.Run("accepts a correctly signed header", func(t *testing.T) {
		header := fmt.Sprintf("ts=%s,v1=%s", ts, sign(secret, dataID, requestID, ts))

		assert.True(t, billing.VerifySignature(secret, header, requestID, dataID))
	})

	t.Run("data id is lowercased before signing", func(t *testing.T) {
		header := fmt.Sprintf("ts=%s,v1=%s", ts, sign(secret, "abc123", requestID, ts))

		assert.True(t, billing.VerifySignature(secret, header, requestID, "ABC123"))
	})

	t.Run("tolerates spaces between header parts", func(t *testing.T) {
		header := fmt.Sprintf("ts=%s, v1=%s", ts, sign(secret, dataID, requestID, ts))

		assert.True(t, billing.VerifySignature(secret, header, requestID, dataID))
	})

	t.Run("rejects a tampered payload", func(t *testing.T) {
		header := fmt.Sprintf("ts=%s,v1=%s", ts, sign(secret, dataID, requestID, ts))

		assert.False(t, billing.VerifySignature(secret, header, requestID, "99999999"))
	})

	t.Run("rejects the wrong secret", func(t *testing.T) {
		header := fmt.Sprintf("ts=%s,v1=%s", ts, sign("other-secret", dataID, requestID, ts))

		assert.False(t, billing.VerifySignature(secret, header, requestID, dataID))
	})

	t.Run("rejects a replayed signature with a different ts", func(t *testing.T) {
		header := fmt.Sprintf("ts=1700000000,v1=%s", sign(secret, dataID, requestID, ts))

		assert.False(t, billing.VerifySignature(secret, header, requestID, dataID))
	})

	t.Run("rejects malformed headers", func(t *testing.T) {
		assert.False(t, billing.VerifySignature(secret, "", requestID, dataID))
		assert.False(t, billing.VerifySignature(secret, "v1=deadbeef", requestID, dataID))
		assert.False(t, billing.VerifySignature(secret, "ts=123", requestID, dataID))
		assert.False(t, billing.VerifySignature("", "ts=1,v1=x", requestID, dataID))
	})
}
