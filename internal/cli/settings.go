package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const (
	settingsFileName = ".schedulifyx.toml"
	defaultServer    = "http://localhost:5000"
)

// Settings is the CLI state persisted between runs.
type Settings struct {
	Server       string `toml:"server"`
	Email        string `toml:"email,omitempty"`
	AccessToken  string `toml:"access_token,omitempty"`
	RefreshToken string `toml:"refresh_token,omitempty"`
}

// LoggedIn reports whether a session token is stored.
func (s *Settings) LoggedIn() bool {
	return s.AccessToken != ""
}

func (s *Settings) clearSession() {
	s.Email = ""
	s.AccessToken = ""
	s.RefreshToken = ""
}

// defaultSettingsPath returns ~/.schedulifyx.toml.
func defaultSettingsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find user home directory: %w", err)
	}
	return filepath.Join(home, settingsFileName), nil
}

// loadSettings reads path. A missing file yields defaults.
func loadSettings(path string) (*Settings, error) {
	settings := &Settings{Server: defaultServer}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := toml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if settings.Server == "" {
		settings.Server = defaultServer
	}
	return settings, nil
}

// saveSettings writes settings with owner-only permissions since it holds tokens.
func saveSettings(path string, settings *Settings) error {
	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
