package auth

import (
	"testing"
	"time"

	"forestry-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateTokenRoundTrip(t *testing.T) {
	secret := "0123456789abcdef0123456789abcdef"
	user := &models.AuthUser{
		ID:    7,
		Email: "secretary@example.org",
		Role:  models.RoleSecretary,
	}

	tokenStr, err := GenerateToken(secret, user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	token, err := jwt.ParseWithClaims(tokenStr, &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token did not parse back: %v", err)
	}

	claims, ok := token.Claims.(*JWTCustomClaims)
	if !ok {
		t.Fatal("claims have wrong type")
	}
	if claims.UserID != 7 || claims.Email != "secretary@example.org" || claims.Role != models.RoleSecretary {
		t.Errorf("claims mismatch: %+v", claims)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) > 24*time.Hour {
		t.Error("expiry should be within 24 hours")
	}
}

func TestGenerateTokenRejectsWrongSecret(t *testing.T) {
	user := &models.AuthUser{Email: "x@example.org", Role: models.RoleMember}
	tokenStr, err := GenerateToken("0123456789abcdef0123456789abcdef", user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	token, err := jwt.ParseWithClaims(tokenStr, &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte("another-secret-another-secret-32"), nil
	})
	if err == nil && token.Valid {
		t.Error("token validated with the wrong secret")
	}
}

func TestAccountLockWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	user := models.AuthUser{}
	if user.Locked(now) {
		t.Error("fresh account should not be locked")
	}

	until := now.Add(lockoutDuration)
	user.LockUntil = &until
	if !user.Locked(now) {
		t.Error("account inside the lockout window should be locked")
	}
	if user.Locked(now.Add(lockoutDuration + time.Minute)) {
		t.Error("account past the lockout window should be unlocked")
	}
}

func TestRolePermissions(t *testing.T) {
	cases := []struct {
		role        models.Role
		wantApprove bool
		wantDeliver bool
	}{
		{models.RoleChairman, true, true},
		{models.RoleSecretary, true, true},
		{models.RoleOfficeManager, false, true},
		{models.RoleMember, false, false},
	}
	for _, tc := range cases {
		if got := tc.role.CanApprove(); got != tc.wantApprove {
			t.Errorf("%s.CanApprove() = %v, want %v", tc.role, got, tc.wantApprove)
		}
		if got := tc.role.CanDeliver(); got != tc.wantDeliver {
			t.Errorf("%s.CanDeliver() = %v, want %v", tc.role, got, tc.wantDeliver)
		}
	}
}
