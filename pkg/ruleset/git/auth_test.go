package git

import (
	"os"
	"path/filepath"
	"testing"

	"mercator-hq/minerva/pkg/config"
)

func TestTokenAuth_GetAuth(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{
			name:    "valid token",
			token:   "ghp_validtoken123",
			wantErr: false,
		},
		{
			name:    "empty token",
			token:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := NewTokenAuth(tt.token)

			if auth.Type() != "token" {
				t.Errorf("Type() = %v, want %v", auth.Type(), "token")
			}

			_, err := auth.GetAuth()
			if (err != nil) != tt.wantErr {
				t.Errorf("GetAuth() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSSHAuth_GetAuth(t *testing.T) {
	tmpDir := t.TempDir()

	restrictedKeyPath := filepath.Join(tmpDir, "restricted_key")
	if err := os.WriteFile(restrictedKeyPath, []byte("dummy key content"), 0600); err != nil {
		t.Fatal(err)
	}

	openKeyPath := filepath.Join(tmpDir, "open_key")
	if err := os.WriteFile(openKeyPath, []byte("dummy key content"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		keyPath    string
		passphrase string
		wantErr    bool
	}{
		{
			name:    "empty key path",
			keyPath: "",
			wantErr: true,
		},
		{
			name:    "non-existent key file",
			keyPath: filepath.Join(tmpDir, "missing_key"),
			wantErr: true,
		},
		{
			name:    "permissions too open",
			keyPath: openKeyPath,
			wantErr: true,
		},
		{
			name:    "readable file that is not a real key",
			keyPath: restrictedKeyPath,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := NewSSHAuth(tt.keyPath, tt.passphrase)

			if auth.Type() != "ssh" {
				t.Errorf("Type() = %v, want %v", auth.Type(), "ssh")
			}

			_, err := auth.GetAuth()
			if (err != nil) != tt.wantErr {
				t.Errorf("GetAuth() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNoAuth_GetAuth(t *testing.T) {
	auth := NewNoAuth()

	if auth.Type() != "none" {
		t.Errorf("Type() = %v, want %v", auth.Type(), "none")
	}

	method, err := auth.GetAuth()
	if err != nil {
		t.Errorf("GetAuth() error = %v, want nil", err)
	}
	if method != nil {
		t.Errorf("GetAuth() = %v, want nil", method)
	}
}

func TestNewAuthProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.GitAuthConfig
		wantType string
		wantErr  bool
	}{
		{
			name:    "nil config",
			cfg:     nil,
			wantErr: true,
		},
		{
			name:     "token auth",
			cfg:      &config.GitAuthConfig{Type: "token", Token: "ghp_token"},
			wantType: "token",
		},
		{
			name:    "token auth without token",
			cfg:     &config.GitAuthConfig{Type: "token"},
			wantErr: true,
		},
		{
			name:     "ssh auth",
			cfg:      &config.GitAuthConfig{Type: "ssh", SSHKeyPath: "/home/user/.ssh/id_ed25519"},
			wantType: "ssh",
		},
		{
			name:    "ssh auth without key path",
			cfg:     &config.GitAuthConfig{Type: "ssh"},
			wantErr: true,
		},
		{
			name:     "none",
			cfg:      &config.GitAuthConfig{Type: "none"},
			wantType: "none",
		},
		{
			name:     "empty type defaults to none",
			cfg:      &config.GitAuthConfig{},
			wantType: "none",
		},
		{
			name:    "unknown type",
			cfg:     &config.GitAuthConfig{Type: "kerberos"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewAuthProvider(tt.cfg)

			if (err != nil) != tt.wantErr {
				t.Fatalf("NewAuthProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}

			if provider.Type() != tt.wantType {
				t.Errorf("Type() = %v, want %v", provider.Type(), tt.wantType)
			}
		})
	}
}
