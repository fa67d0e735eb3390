package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestLocalRedirect(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"urn:ietf:wg:oauth:2.0:oob", "http://localhost:6789/oauth2callback"},
		{"", "http://localhost:6789/oauth2callback"},
		{"http://localhost", "http://localhost:6789"},
		{"http://localhost:8080/cb", "http://localhost:6789/cb"},
		{"http://127.0.0.1:6789/cb", "http://127.0.0.1:6789/cb"},
		{"https://example.com/oauth2callback", "https://example.com/oauth2callback"},
	}
	for _, tt := range tests {
		if got := localRedirect(tt.in); got != tt.want {
			t.Errorf("localRedirect(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTokenFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", TokenFile)
	want := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := saveToken(path, want); err != nil {
		t.Fatalf("saveToken failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected mode 0600, got %v", info.Mode().Perm())
	}

	got, err := tokenFromFile(path)
	if err != nil {
		t.Fatalf("tokenFromFile failed: %v", err)
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken || !got.Expiry.Equal(want.Expiry) {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

type staticSource struct{ tok *oauth2.Token }

func (s staticSource) Token() (*oauth2.Token, error) { return s.tok, nil }

func TestSavingTokenSourceWritesRefresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), TokenFile)
	old := &oauth2.Token{AccessToken: "old", RefreshToken: "r"}
	fresh := &oauth2.Token{AccessToken: "new", RefreshToken: "r"}

	src := &savingTokenSource{base: staticSource{fresh}, path: path, last: old}
	if _, err := src.Token(); err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	saved, err := tokenFromFile(path)
	if err != nil {
		t.Fatalf("Expected refreshed token on disk: %v", err)
	}
	if saved.AccessToken != "new" {
		t.Errorf("Expected new access token, got %q", saved.AccessToken)
	}
}
