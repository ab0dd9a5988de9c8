package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(t *testing.T) (*app, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.toml")
	a := newApp()
	a.settingsPath = path
	a.noInput = true
	a.sleep = func(time.Duration) {}
	a.busy = func(title string, action func()) { action() }
	return a, path
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	_, err := root.ExecuteC()
	return out.String(), err
}

func TestSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.toml")

	settings, err := loadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, defaultServer, settings.Server)
	assert.False(t, settings.LoggedIn())

	settings.Email = "ayu@example.com"
	settings.AccessToken = "tok"
	require.NoError(t, saveSettings(path, settings))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := loadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)
}

func TestRegisterThenLogsIn(t *testing.T) {
	var calls []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		switch r.URL.Path {
		case "/register":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"message":"Admin registered successfully"}`))
		case "/login":
			_, _ = w.Write([]byte(`{"data":{"access_token":"a1","refresh_token":"r1","user":{"name":"Ayu"}}}`))
		}
	}))
	defer server.Close()

	a, path := testApp(t)
	out, err := run(t, a, "--server", server.URL, "register", "--name", "Ayu", "--email", "ayu@example.com", "--password", "Valid1Pass!")
	require.NoError(t, err)

	assert.Equal(t, []string{"/register", "/login"}, calls)
	assert.Contains(t, out, "Registration successful! Redirecting...")
	assert.Contains(t, out, "Signed in as Ayu")

	saved, err := loadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "a1", saved.AccessToken)
	assert.Equal(t, "r1", saved.RefreshToken)
	assert.Equal(t, server.URL, saved.Server)
}

func TestRegisterRejectsWeakPasswordLocally(t *testing.T) {
	a, _ := testApp(t)
	_, err := run(t, a, "--server", "http://127.0.0.1:1", "register", "--name", "Ayu", "--email", "ayu@example.com", "--password", "weak")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Password must be at least 8 characters")
}

func TestCommandsRequireLogin(t *testing.T) {
	for _, cmd := range []string{"add-subject", "add-room", "generate", "logout"} {
		a, _ := testApp(t)
		_, err := run(t, a, cmd)
		require.Error(t, err, cmd)
		assert.Contains(t, err.Error(), "not logged in")
	}
}

func TestLogoutClearsSessionEvenWhenTokenRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token has been logged out"}`))
	}))
	defer server.Close()

	a, path := testApp(t)
	require.NoError(t, saveSettings(path, &Settings{Server: server.URL, Email: "ayu@example.com", AccessToken: "a1"}))

	out, err := run(t, a, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out successfully")

	saved, err := loadSettings(path)
	require.NoError(t, err)
	assert.False(t, saved.LoggedIn())
}

func TestResultWritesExport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "csv", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("Section,Day\nX-A,Monday\n"))
	}))
	defer server.Close()

	a, _ := testApp(t)
	output := filepath.Join(t.TempDir(), "tt.csv")
	_, err := run(t, a, "--server", server.URL, "result", "--format", "CSV", "--output", output)
	require.NoError(t, err)

	body, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "Section,Day\nX-A,Monday\n", string(body))
}

func TestResultJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"id":"tt-1","score":100,"sections":["X-A"],"slots":[{"section":"X-A","day":"Monday","period":1,"subject_code":"MATH"}]}}`))
	}))
	defer server.Close()

	a, _ := testApp(t)
	out, err := run(t, a, "--server", server.URL, "result", "-f", "json")
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "tt-1", decoded["id"])
}
