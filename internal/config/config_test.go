package config

import (
	"net/http"
	"testing"
)

func TestSameSiteMode(t *testing.T) {
	tests := []struct {
		in   string
		want http.SameSite
	}{
		{"lax", http.SameSiteLaxMode},
		{"strict", http.SameSiteStrictMode},
		{"none", http.SameSiteNoneMode},
		{"", http.SameSiteLaxMode},
		{"garbage", http.SameSiteLaxMode},
	}
	for _, tt := range tests {
		got := CookieOptions{SameSite: tt.in}.SameSiteMode()
		if got != tt.want {
			t.Errorf("SameSiteMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
