package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

func base64UrlEncode(input []byte) string {
	return strings.TrimRight(base64.URLEncoding.EncodeToString(input), "=")
}

func base64UrlDecode(input string) ([]byte, error) {
	padded := input
	if m := len(input) % 4; m != 0 {
		padded += strings.Repeat("=", 4-m)
	}
	return base64.URLEncoding.DecodeString(padded)
}

func summarySignature(secret string, orderID int64, expiresAt int64) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(orderID, 10) + ":" + strconv.FormatInt(expiresAt, 10)))
	return mac.Sum(nil)
}

// CreateSummaryToken signs a short-lived download link for an order summary
// so that it can be opened without an Authorization header.
func CreateSummaryToken(secret string, orderID int64, expiresAt time.Time) (exp string, sig string) {
	unix := expiresAt.Unix()
	return strconv.FormatInt(unix, 10), base64UrlEncode(summarySignature(secret, orderID, unix))
}

func VerifySummaryToken(secret string, orderID int64, exp string, sig string, now time.Time) bool {
	if strings.TrimSpace(secret) == "" {
		return false
	}
	unix, err := strconv.ParseInt(strings.TrimSpace(exp), 10, 64)
	if err != nil {
		return false
	}
	if now.Unix() > unix {
		return false
	}
	actual, err := base64UrlDecode(strings.TrimSpace(sig))
	if err != nil {
		return false
	}
	expected := summarySignature(secret, orderID, unix)
	if len(actual) != len(expected) {
		return false
	}
	return hmac.Equal(actual, expected)
}
