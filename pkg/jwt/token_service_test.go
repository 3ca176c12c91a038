package jwt

import (
	"testing"
	"time"
)

func TestGenerateAndValidate(t *testing.T) {
	svc, err := NewTokenService("secret", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := svc.Generate("64a000000000000000000001", "alice@example.com")
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("validating token: %v", err)
	}
	sub, err := Subject(claims)
	if err != nil {
		t.Fatalf("extracting subject: %v", err)
	}
	if sub != "64a000000000000000000001" {
		t.Errorf("subject = %q, want the user ID", sub)
	}
	if claims["email"] != "alice@example.com" {
		t.Errorf("email claim = %v", claims["email"])
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuer, _ := NewTokenService("secret-a", time.Hour)
	verifier, _ := NewTokenService("secret-b", time.Hour)

	token, err := issuer.Generate("user", "user@example.com")
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	if _, err := verifier.Validate(token); err == nil {
		t.Error("token signed with a different secret should not validate")
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := &TokenService{secret: []byte("secret"), expiresIn: -time.Minute}
	token, err := svc.Generate("user", "user@example.com")
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	if _, err := svc.Validate(token); err == nil {
		t.Error("expired token should not validate")
	}
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	if _, err := NewTokenService("", time.Hour); err == nil {
		t.Error("empty secret should be rejected")
	}
}
