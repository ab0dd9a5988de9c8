package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newConfigCommand(a *app) *cobra.Command {
	var setServer string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change saved settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if setServer != "" {
				a.settings.Server = setServer
				if err := a.save(); err != nil {
					return err
				}
				printSuccess(out, "Server set to "+setServer)
				return nil
			}

			fmt.Fprintf(out, "%s %s\n", mutedStyle.Render("settings:"), a.settingsPath)
			fmt.Fprintf(out, "%s %s\n", mutedStyle.Render("server:  "), a.settings.Server)
			if a.settings.LoggedIn() {
				fmt.Fprintf(out, "%s %s\n", mutedStyle.Render("user:    "), a.settings.Email)
			} else {
				fmt.Fprintf(out, "%s %s\n", mutedStyle.Render("user:    "), "not logged in")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&setServer, "set-server", "", "save a new API server URL")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
