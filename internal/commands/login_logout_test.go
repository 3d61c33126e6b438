package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gtaskroll/internal/commands"
	"gtaskroll/internal/config"
	"gtaskroll/internal/exitcode"
)

const testOAuthClient = `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"]}}`

// writeConfigFile writes one file into the config directory.
func writeConfigFile(t *testing.T, cfg *config.Config, name, content string) string {
	t.Helper()
	path := filepath.Join(cfg.Dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// TestLoginCommand_NoOAuthClient verifies login fails without oauth_client.json
func TestLoginCommand_NoOAuthClient(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir()}

	var outBuf, errBuf bytes.Buffer
	code := (&commands.LoginCmd{}).Run(context.Background(), cfg, nil, nil, &outBuf, &errBuf)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if outBuf.String() != "" {
		t.Errorf("expected no stdout, got %q", outBuf.String())
	}
	for _, want := range []string{"oauth_client.json not found", "Google Sheets", "gtaskroll login"} {
		if !strings.Contains(errBuf.String(), want) {
			t.Errorf("expected stderr to mention %q", want)
		}
	}
}

// TestLoginCommand_ReauthenticatesUnusableToken verifies login does not accept
// stored tokens that cannot be refreshed.
func TestLoginCommand_ReauthenticatesUnusableToken(t *testing.T) {
	tokens := map[string]string{
		"corrupt":            `not json`,
		"no refresh token":   `{"access_token":"expired","token_type":"Bearer"}`,
		"expired no refresh": `{"access_token":"test","token_type":"Bearer","expiry":"2020-01-01T00:00:00Z"}`,
	}
	for name, token := range tokens {
		t.Run(name, func(t *testing.T) {
			cfg := &config.Config{Dir: t.TempDir()}
			writeConfigFile(t, cfg, config.OAuthClientFile, testOAuthClient)
			writeConfigFile(t, cfg, config.TokenFile, token)

			// Cancelled up front so the flow stops before waiting for a callback.
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			var outBuf, errBuf bytes.Buffer
			code := (&commands.LoginCmd{}).Run(ctx, cfg, nil, nil, &outBuf, &errBuf)

			if outBuf.String() == "already logged in\n" {
				t.Error("should not say 'already logged in' with an unusable token")
			}
			if code != exitcode.AuthError {
				t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
			}
		})
	}
}

// TestLogoutCommand_OnlyRemovesToken verifies logout keeps the client
// credentials, settings and lock file.
func TestLogoutCommand_OnlyRemovesToken(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir()}
	oauthPath := writeConfigFile(t, cfg, config.OAuthClientFile, testOAuthClient)
	tokenPath := writeConfigFile(t, cfg, config.TokenFile, `{"access_token":"test","refresh_token":"test"}`)
	settingsPath := writeConfigFile(t, cfg, config.SettingsFile, "inbox_list_name: Inbox\n")
	lockPath := writeConfigFile(t, cfg, config.LockFile, "")

	var outBuf, errBuf bytes.Buffer
	code := (&commands.LogoutCmd{}).Run(context.Background(), cfg, nil, nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if errBuf.String() != "" {
		t.Errorf("expected no stderr, got %q", errBuf.String())
	}
	if outBuf.String() != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", outBuf.String())
	}
	if _, err := os.Stat(tokenPath); !os.IsNotExist(err) {
		t.Error("token.json should have been deleted")
	}
	for _, kept := range []string{oauthPath, settingsPath, lockPath} {
		if _, err := os.Stat(kept); err != nil {
			t.Errorf("%s should NOT have been deleted", kept)
		}
	}
}

// TestLogoutCommand_NotLoggedIn verifies logout handles not being logged in
func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	tests := []struct {
		name  string
		quiet bool
		want  string
	}{
		{"verbose", false, "not logged in\n"},
		{"quiet", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Dir: t.TempDir(), Quiet: tt.quiet}

			var outBuf, errBuf bytes.Buffer
			code := (&commands.LogoutCmd{}).Run(context.Background(), cfg, nil, nil, &outBuf, &errBuf)

			if code != exitcode.Success {
				t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
			}
			if errBuf.String() != "" {
				t.Errorf("expected no stderr, got %q", errBuf.String())
			}
			if outBuf.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, outBuf.String())
			}
		})
	}
}
