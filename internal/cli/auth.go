package cli

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/noah-isme/schedulifyx-api/pkg/client"
	"github.com/noah-isme/schedulifyx-api/pkg/registration"
	"github.com/noah-isme/schedulifyx-api/pkg/validation"
)

func newRegisterCommand(a *app) *cobra.Command {
	var fields registration.Fields
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an administrator account",
		Long: `Register a new administrator. Missing values are asked for interactively.
After a successful registration you are signed in automatically.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.noInput && (fields.Name == "" || fields.Email == "" || fields.Password == "") {
				form := huh.NewForm(huh.NewGroup(
					huh.NewInput().Title("Full name").Value(&fields.Name),
					huh.NewInput().Title("Email").Value(&fields.Email),
					huh.NewInput().
						Title("Password").
						Description(validation.PasswordRequirements).
						EchoMode(huh.EchoModePassword).
						Value(&fields.Password),
				).Title("Register for SchedulifyX"))
				if err := form.Run(); err != nil {
					return err
				}
			}
			return runRegister(cmd, a, fields)
		},
	}
	cmd.Flags().StringVar(&fields.Name, "name", "", "full name")
	cmd.Flags().StringVar(&fields.Email, "email", "", "email address")
	cmd.Flags().StringVar(&fields.Password, "password", "", "password")
	return cmd
}

func runRegister(cmd *cobra.Command, a *app, fields registration.Fields) error {
	var redirect func()
	var destination string
	form := registration.New(a.settings.Server,
		registration.WithScheduler(func(delay time.Duration, fn func()) {
			redirect = func() {
				a.sleep(delay)
				fn()
			}
		}),
		registration.WithNavigator(registration.NavigatorFunc(func(path string) {
			destination = path
		})),
	)
	form.SetFields(fields)

	var msg registration.Message
	var err error
	a.busy("Creating your account...", func() {
		msg, err = form.Submit(cmd.Context())
	})
	if err != nil {
		return err
	}
	if msg.Type == registration.MessageError {
		return errors.New(msg.Text)
	}

	printSuccess(cmd.OutOrStdout(), msg.Text)
	if redirect == nil {
		return nil
	}
	redirect()
	if destination != registration.LoginPath {
		return nil
	}
	return runLogin(cmd, a, fields.Email, fields.Password)
}

func newLoginCommand(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, a, email, password)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address (defaults to the last one used)")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func runLogin(cmd *cobra.Command, a *app, email, password string) error {
	if email == "" {
		email = a.settings.Email
	}
	if !a.noInput && (email == "" || password == "") {
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Email").Value(&email),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password),
		).Title("Sign in to SchedulifyX"))
		if err := form.Run(); err != nil {
			return err
		}
	}
	if email == "" || password == "" {
		return errors.New("email and password are required")
	}

	c := client.New(a.settings.Server)
	var err error
	var name string
	a.busy("Signing in...", func() {
		res, loginErr := c.Login(cmd.Context(), email, password)
		if loginErr != nil {
			err = loginErr
			return
		}
		a.settings.Email = email
		a.settings.AccessToken = res.AccessToken
		a.settings.RefreshToken = res.RefreshToken
		name = res.User.Name
	})
	if err != nil {
		return err
	}
	if err := a.save(); err != nil {
		return err
	}
	if name == "" {
		name = email
	}
	printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Signed in as %s", name))
	return nil
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			c := a.client()
			var message string
			var err error
			a.busy("Signing out...", func() {
				message, err = c.Logout(cmd.Context(), a.settings.RefreshToken)
			})
			// A rejected token is already unusable, so the local session goes either way.
			if err != nil && !client.IsStatus(err, http.StatusUnauthorized) {
				return err
			}
			a.settings.clearSession()
			if err := a.save(); err != nil {
				return err
			}
			if message == "" {
				message = "Logged out successfully"
			}
			printSuccess(cmd.OutOrStdout(), message)
			return nil
		},
	}
}
