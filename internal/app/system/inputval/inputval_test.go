package inputval

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"user.name@example.com", true},
		{"user+tag@example.com", true},
		{"admin@crms", true},

		{"", false},
		{"   ", false},
		{"user", false},
		{"user@", false},
		{"@example.com", false},
		{".user@example.com", false},
		{"user..name@example.com", false},
		{"user@example..com", false},
		{"User Name <user@example.com>", false},
		{"user @example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestIsValidHTTPURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://files.example.com/a.jpg", true},
		{"http://localhost:8080/x", true},
		{"ftp://example.com/a", false},
		{"/relative/path", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidHTTPURL(tt.in); got != tt.want {
			t.Errorf("IsValidHTTPURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsValidObjectID(t *testing.T) {
	if !IsValidObjectID("507f1f77bcf86cd799439011") {
		t.Error("expected valid ObjectID")
	}
	if IsValidObjectID("not-an-id") {
		t.Error("expected invalid ObjectID")
	}
}

func TestOneOf(t *testing.T) {
	allowed := []string{"low", "medium", "high"}
	if !OneOf("medium", allowed) {
		t.Error("medium should be allowed")
	}
	if OneOf("urgent", allowed) {
		t.Error("urgent should not be allowed")
	}
}

func TestIsValidPassword(t *testing.T) {
	if IsValidPassword("12345") {
		t.Error("5 chars should be rejected")
	}
	if !IsValidPassword("123456") {
		t.Error("6 chars should be accepted")
	}
}
