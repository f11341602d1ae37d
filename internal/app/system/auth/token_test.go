package auth_test

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/auth"
	"github.com/dalemusser/crms/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret-that-is-at-least-32-bytes-long"

func officer() *models.User {
	return &models.User{ID: primitive.NewObjectID(), Username: "officer1", Role: models.RolePolice}
}

func TestIssueAndVerify(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, 0)
	u := officer()

	token, issued, err := tm.Issue(u)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if got := issued.ExpiresAt.Sub(issued.IssuedAt.Time); got != auth.DefaultTokenTTL {
		t.Errorf("ttl = %v, want %v", got, auth.DefaultTokenTTL)
	}

	claims, err := tm.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != u.ID.Hex() || claims.Username != "officer1" || claims.Role != "police" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.ID == "" || claims.ID != issued.ID {
		t.Errorf("jti = %q, want %q", claims.ID, issued.ID)
	}
}

func TestVerify_Expired(t *testing.T) {
	now := time.Now()
	tm := auth.NewTokenManager(testSecret, time.Hour).WithClock(func() time.Time { return now })
	token, _, err := tm.Issue(officer())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tm.WithClock(func() time.Time { return now.Add(2 * time.Hour) })
	if _, err := tm.Verify(token); !errors.Is(err, apierr.ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	token, _, _ := auth.NewTokenManager(testSecret, 0).Issue(officer())
	other := auth.NewTokenManager("a-completely-different-secret-value!!", 0)
	if _, err := other.Verify(token); !errors.Is(err, apierr.ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, 0)
	if _, err := tm.Verify("not.a.token"); !errors.Is(err, apierr.ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestVerify_RejectsNoneAlg(t *testing.T) {
	claims := jwt.MapClaims{"id": primitive.NewObjectID().Hex(), "jti": "x", "iss": "crms",
		"exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	tm := auth.NewTokenManager(testSecret, 0)
	if _, err := tm.Verify(token); !errors.Is(err, apierr.ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"bearer abc", "abc"},
		{"Basic dXNlcjpwYXNz", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		if got := auth.BearerToken(r); got != tt.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
