package main

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/common-nighthawk/go-figure"
	"github.com/mediadeck/signinkit/accounts"
	"github.com/mediadeck/signinkit/googleidp"
	"github.com/mediadeck/signinkit/internal/config"
	"github.com/mediadeck/signinkit/scopes"
	"github.com/mediadeck/signinkit/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type app struct {
	cfg        *config.Config
	controller *session.Controller
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("signinctl failed")
	}
}

func run() error {
	cfg, err := config.New()
	if err != nil {
		return errors.Wrap(err, "loading config")
	}
	setupLogging(cfg.LogLevel)

	if cfg.ClientID == "" {
		return errors.New("SIGNIN_CLIENT_ID must be set")
	}

	provider, err := googleidp.New(googleidp.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       cfg.RequiredScopes,
		CallbackPort: cfg.CallbackPort,
		IssuerURL:    cfg.IssuerURL,
	}, googleidp.WithLogger(log.Logger))
	if err != nil {
		return errors.Wrap(err, "building identity provider")
	}

	controller, err := session.New(
		provider,
		accounts.NewModel(),
		scopes.New(cfg.RequiredScopes...),
		session.WithLogger(log.Logger),
	)
	if err != nil {
		return errors.Wrap(err, "building session controller")
	}

	a := &app{cfg: cfg, controller: controller}
	return a.rootCmd().Execute()
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "signinctl",
		Short: "Manage the third-party sign-in session for this machine",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Restore any previous sign-in before running a subcommand. A
			// restore miss is normal; a validation failure is reported but
			// does not abort the command.
			if err := a.controller.Initialize(cmd.Context()); err != nil {
				log.Warn().Err(err).Msg("could not restore previous sign-in")
			}
			return nil
		},
	}

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.disconnectCmd(),
		a.addScopesCmd(),
		a.whoamiCmd(),
	)
	return root
}

func (a *app) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in interactively in your browser",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.controller.CurrentAccount() != nil {
				return errors.New("already signed in; run 'signinctl logout' first")
			}
			displayAppname(a.cfg.AppName)

			outcome, err := a.controller.SignIn(cmd.Context(), googleidp.BrowserPresenter{})
			if err != nil {
				return errors.Wrap(err, "sign-in")
			}
			if !outcome.Succeeded() {
				return outcome.Err
			}
			fmt.Printf("Signed in as %s <%s>\n", outcome.Account.Name, outcome.Account.Email)
			return nil
		},
	}
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the local account",
		RunE: func(_ *cobra.Command, _ []string) error {
			a.controller.LogOut()
			fmt.Println("Signed out.")
			return nil
		},
	}
}

func (a *app) disconnectCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "disconnect",
		Short: "Revoke this application's access to your account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				confirm := false
				prompt := &survey.Confirm{
					Message: "Disconnecting revokes this application's access to your account. Continue?",
				}
				if err := survey.AskOne(prompt, &confirm); err != nil {
					return errors.Wrap(err, "confirmation prompt")
				}
				if !confirm {
					return nil
				}
			}

			if err := a.controller.Disconnect(cmd.Context()); err != nil {
				return errors.Wrap(err, "disconnect")
			}
			fmt.Println("Account disconnected.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (a *app) addScopesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-scopes",
		Short: "Request the configured scopes that are not yet granted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			outcome, err := a.controller.AddScopes(cmd.Context(), googleidp.BrowserPresenter{})
			if err != nil {
				return errors.Wrap(err, "add-scopes")
			}
			if !outcome.Succeeded() {
				return outcome.Err
			}
			fmt.Printf("Granted scopes: %s\n", outcome.Account.GrantedScopes)
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current account",
		RunE: func(_ *cobra.Command, _ []string) error {
			account := a.controller.CurrentAccount()
			if account == nil {
				fmt.Println("Not signed in.")
				return nil
			}
			fmt.Printf("%s <%s>\n", account.Name, account.Email)
			fmt.Printf("Scopes: %s\n", account.GrantedScopes)
			return nil
		},
	}
}
