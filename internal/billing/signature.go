package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// VerifySignature checks the x-signature header Mercado Pago sends with every
// webhook: "ts=<unix>,v1=<hmac>", where the HMAC-SHA256 is computed over the
// manifest "id:<data.id>;request-id:<x-request-id>;ts:<ts>;" with the shared
// webhook secret.
func VerifySignature(secret, xSignature, xRequestID, dataID string) bool {
	if secret == "" || xSignature == "" {
		return false
	}

	var ts, v1 string
	for _, part := range strings.Split(xSignature, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "ts":
			ts = v
		case "v1":
			v1 = v
		}
	}
	if ts == "" || v1 == "" {
		return false
	}

	manifest := fmt.Sprintf(
		"id:%s;request-id:%s;ts:%s;",
		strings.ToLower(dataID), xRequestID, ts,
	)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(v1))
}
