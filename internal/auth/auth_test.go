package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestHasher(t *testing.T) {
	h := Hasher{Cost: 4}

	hash, err := h.Hash("s3nha-forte")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "s3nha-forte" {
		t.Fatal("Hash() returned the raw password")
	}
	if !h.Check(hash, "s3nha-forte") {
		t.Error("Check(correct) = false, want true")
	}
	if h.Check(hash, "outra-senha") {
		t.Error("Check(wrong) = true, want false")
	}
	if h.Check("not-a-hash", "s3nha-forte") {
		t.Error("Check(garbage hash) = true, want false")
	}
}

func TestIssuer_RoundTrip(t *testing.T) {
	iss := NewIssuer("0123456789abcdef", time.Hour, "ncmlookup")

	token, expires, err := iss.Issue("ana@example.com", RoleClient)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if time.Until(expires) <= 59*time.Minute {
		t.Errorf("expires = %s, want about an hour from now", expires)
	}

	claims, err := iss.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.Email() != "ana@example.com" {
		t.Errorf("Email() = %q, want %q", claims.Email(), "ana@example.com")
	}
	if claims.Role != RoleClient {
		t.Errorf("Role = %q, want %q", claims.Role, RoleClient)
	}
}

func TestIssuer_Rejects(t *testing.T) {
	iss := NewIssuer("0123456789abcdef", time.Hour, "")
	good, _, err := iss.Issue("ana@example.com", RoleAdministrator)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	expired := NewIssuer("0123456789abcdef", time.Hour, "")
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue("ana@example.com", RoleClient)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	other := NewIssuer("another-secret-value", time.Hour, "")
	foreign, _, err := other.Issue("ana@example.com", RoleClient)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role: RoleAdministrator,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ana@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: "root",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ana@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("0123456789abcdef"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"expired", old},
		{"wrong secret", foreign},
		{"alg none", none},
		{"unknown role", badRole},
		{"garbage", "not.a.token"},
		{"tampered", tamper(good)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := iss.Parse(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

// tamper flips one character of the signature.
func tamper(token string) string {
	i := strings.LastIndex(token, ".") + 2
	c := byte('A')
	if token[i] == 'A' {
		c = 'B'
	}
	return token[:i] + string(c) + token[i+1:]
}

func TestValidRole(t *testing.T) {
	if !ValidRole("administrator") || !ValidRole("client") {
		t.Error("ValidRole() rejected a known role")
	}
	if ValidRole("Administrator") || ValidRole("") {
		t.Error("ValidRole() accepted an unknown role")
	}
}
