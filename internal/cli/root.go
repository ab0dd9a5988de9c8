// Package cli implements the schedulifyx command line client.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"

	"github.com/noah-isme/schedulifyx-api/pkg/client"
)

// app carries what every subcommand needs.
type app struct {
	settingsPath string
	server       string
	settings     *Settings
	noInput      bool

	// sleep delays the post-registration redirect.
	sleep func(time.Duration)
	// busy runs action while showing title.
	busy func(title string, action func())
}

func newApp() *app {
	return &app{
		sleep: time.Sleep,
		busy: func(title string, action func()) {
			_ = spinner.New().Title(title).Action(action).Run()
		},
	}
}

// load reads settings once per invocation, applying --server.
func (a *app) load() error {
	if a.settings != nil {
		return nil
	}
	path := a.settingsPath
	if path == "" {
		var err error
		if path, err = defaultSettingsPath(); err != nil {
			return err
		}
		a.settingsPath = path
	}
	settings, err := loadSettings(path)
	if err != nil {
		return err
	}
	if a.server != "" {
		settings.Server = a.server
	}
	a.settings = settings
	return nil
}

func (a *app) save() error {
	return saveSettings(a.settingsPath, a.settings)
}

func (a *app) client() *client.Client {
	c := client.New(a.settings.Server)
	c.Token = a.settings.AccessToken
	return c
}

func (a *app) requireLogin() error {
	if !a.settings.LoggedIn() {
		return fmt.Errorf("not logged in; run `schedulifyx login` first")
	}
	return nil
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(newApp())
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "schedulifyx",
		Short: "Command line client for the SchedulifyX timetable API",
		Long: `schedulifyx registers and signs in administrators, records subjects and
rooms, and generates or downloads the school timetable.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	root.PersistentFlags().StringVar(&a.settingsPath, "config", a.settingsPath, "settings file (default ~/.schedulifyx.toml)")
	root.PersistentFlags().StringVar(&a.server, "server", a.server, "API server URL, overrides the saved one")
	root.PersistentFlags().BoolVar(&a.noInput, "no-input", a.noInput, "never prompt; fail when a required value is missing")

	root.AddCommand(
		newRegisterCommand(a),
		newLoginCommand(a),
		newLogoutCommand(a),
		newAddSubjectCommand(a),
		newAddRoomCommand(a),
		newGenerateCommand(a),
		newResultCommand(a),
		newConfigCommand(a),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		printError(os.Stderr, err.Error())
		os.Exit(1)
	}
}
