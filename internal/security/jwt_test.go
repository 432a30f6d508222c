package security

import (
	"strings"
	"testing"
	"time"

	"farmlink/internal/common"
)

func TestGenerateAndParse(t *testing.T) {
	provider := NewJWTProvider("secret")
	userID := common.NewUUID()

	token, _, err := provider.Generate(userID, []string{"farmer", "worker"}, "farmer", time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := provider.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != userID.String() {
		t.Fatalf("expected user id %s, got %s", userID, claims.UserID)
	}
	if claims.Role != "farmer" {
		t.Fatalf("expected active role farmer, got %s", claims.Role)
	}
	if len(claims.Roles) != 2 {
		t.Fatalf("expected 2 roles, got %d", len(claims.Roles))
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	provider := NewJWTProvider("secret")
	token, _, err := provider.Generate(common.NewUUID(), []string{"worker"}, "worker", time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := provider.Parse(tampered); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _, err := NewJWTProvider("secret").Generate(common.NewUUID(), []string{"worker"}, "worker", time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewJWTProvider("other").Parse(token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	provider := NewJWTProvider("secret")
	token, _, err := provider.Generate(common.NewUUID(), []string{"worker"}, "worker", -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := provider.Parse(token); err == nil {
		t.Fatal("expected expiry error")
	}
}
