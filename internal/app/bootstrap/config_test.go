package bootstrap

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/config"
)

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "crms",
		JWTSecret:     devJWTSecret,
		JWTExpiry:     24 * time.Hour,
		BcryptCost:    12,
		APIRateLimit:  100,
		LoginRateIP:   10,
	}
}

func TestValidateConfig(t *testing.T) {
	strong := strings.Repeat("k", minProdSecretLen)

	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{name: "dev defaults", env: "dev"},
		{name: "prod with strong secret", env: "prod", mutate: func(c *AppConfig) { c.JWTSecret = strong }},
		{name: "bad mongo uri", env: "dev", mutate: func(c *AppConfig) { c.MongoURI = "postgres://x" }, wantErr: "invalid MongoDB URI"},
		{name: "prod dev secret", env: "prod", wantErr: "development default"},
		{name: "prod short secret", env: "prod", mutate: func(c *AppConfig) { c.JWTSecret = "short" }, wantErr: "at least 32 bytes"},
		{name: "zero expiry", env: "dev", mutate: func(c *AppConfig) { c.JWTExpiry = 0 }, wantErr: "jwt_expiry"},
		{name: "bcrypt cost too high", env: "dev", mutate: func(c *AppConfig) { c.BcryptCost = 40 }, wantErr: "bcrypt_cost"},
		{name: "negative rate", env: "dev", mutate: func(c *AppConfig) { c.APIRateLimit = -1 }, wantErr: "rate limits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			err := ValidateConfig(&config.CoreConfig{Env: tt.env}, cfg, testLogger())
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" http://a.test, ,http://b.test,")
	want := []string{"http://a.test", "http://b.test"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitList = %v, want %v", got, want)
	}
	if splitList("") != nil {
		t.Error("expected nil for empty input")
	}
}
