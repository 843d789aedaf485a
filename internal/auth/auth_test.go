package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestIssueAndVerifyAccessToken(t *testing.T) {
	token, issued, err := IssueAccessToken("secret", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := VerifyAccessToken(token, "secret")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Role != RoleAdmin || claims.SessionID != issued.SessionID {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := VerifyAccessToken(token, "other"); err == nil {
		t.Fatalf("expected signature failure")
	}
	if _, err := VerifyAccessToken("", "secret"); err == nil {
		t.Fatalf("expected missing token failure")
	}
}

func TestVerifyAccessTokenRejectsExpired(t *testing.T) {
	token, _, err := IssueAccessToken("secret", time.Minute, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := VerifyAccessToken(token, "secret"); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestVerifyAccessTokenRejectsOtherRoles(t *testing.T) {
	claims := &Claims{
		Role: "CUSTOMER",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := VerifyAccessToken(token, "secret"); err == nil {
		t.Fatalf("expected non-admin token to fail")
	}
}

func TestParseBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":  "abc",
		"bearer abc":  "abc",
		"Basic abc":   "",
		"Bearer":      "",
		"":            "",
		"Bearer a b":  "",
		" Bearer xyz": "xyz",
	}
	for header, expected := range cases {
		if got := ParseBearerToken(header); got != expected {
			t.Fatalf("header %q: expected %q, got %q", header, expected, got)
		}
	}
}

func TestPasswordChecker(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	cases := []struct {
		name     string
		checker  PasswordChecker
		password string
		expected error
	}{
		{name: "plain match", checker: PasswordChecker{Plain: "s3cret"}, password: "s3cret", expected: nil},
		{name: "plain mismatch", checker: PasswordChecker{Plain: "s3cret"}, password: "nope", expected: ErrInvalidPassword},
		{name: "hash match", checker: PasswordChecker{Hash: string(hash)}, password: "s3cret", expected: nil},
		{name: "hash wins over plain", checker: PasswordChecker{Hash: string(hash), Plain: "other"}, password: "other", expected: ErrInvalidPassword},
		{name: "nothing configured", checker: PasswordChecker{}, password: "", expected: ErrLoginDisabled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.checker.Check(tc.password); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestSummaryToken(t *testing.T) {
	now := time.Now()
	exp, sig := CreateSummaryToken("secret", 42, now.Add(time.Minute))

	if !VerifySummaryToken("secret", 42, exp, sig, now) {
		t.Fatalf("expected valid token")
	}
	if VerifySummaryToken("secret", 43, exp, sig, now) {
		t.Fatalf("token must be bound to the order")
	}
	if VerifySummaryToken("other", 42, exp, sig, now) {
		t.Fatalf("token must be bound to the secret")
	}
	if VerifySummaryToken("secret", 42, exp, sig, now.Add(2*time.Minute)) {
		t.Fatalf("expired token accepted")
	}
	if VerifySummaryToken("secret", 42, "abc", sig, now) {
		t.Fatalf("malformed expiry accepted")
	}
}
