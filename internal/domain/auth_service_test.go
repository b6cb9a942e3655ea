package domain

import (
	"context"
	"errors"
	"testing"
)

func TestAuthLoginWithConfiguredPassword(t *testing.T) {
	auth := NewAuthService(nil, "open-sesame", "secret")
	ctx := context.Background()

	if _, err := auth.Login(ctx, "wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("err = %v", err)
	}

	token, err := auth.Login(ctx, "open-sesame")
	if err != nil {
		t.Fatal(err)
	}
	if ok, _ := auth.ValidateToken(ctx, token); !ok {
		t.Error("token from login should validate")
	}
	if ok, _ := auth.ValidateToken(ctx, token+"x"); ok {
		t.Error("tampered token validated")
	}

	other := NewAuthService(nil, "open-sesame", "another-secret")
	if ok, _ := other.ValidateToken(ctx, token); ok {
		t.Error("token signed with a different secret validated")
	}
}

func TestAuthLoginRejectsEmptyPassword(t *testing.T) {
	auth := NewAuthService(nil, "", "secret")
	if _, err := auth.Login(context.Background(), ""); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("err = %v", err)
	}
}
