// Command gateway runs the photo portal backend gateway.
//
//	gateway serve          apply migrations and serve gRPC
//	gateway migrate        apply migrations and exit
//	gateway create-admin   seed an administrator account
//	gateway version        print build data
//
// Settings come from GATEWAY_* variables, an optional -c JSON file and the
// short flags documented in internal/gateway/config.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/dmitrijs2005/photoportal/internal/buildinfo"
	"github.com/dmitrijs2005/photoportal/internal/gateway"
	"github.com/dmitrijs2005/photoportal/internal/gateway/config"
	"github.com/dmitrijs2005/photoportal/internal/logging"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// adminPasswordEnv lets create-admin run without a terminal.
const adminPasswordEnv = "GATEWAY_ADMIN_PASSWORD"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gateway",
		Short:         "Backend gateway for the photo portal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), createAdminCmd(), versionCmd())
	return root
}

// withApp loads config, builds the app and hands it to fn. Config flags are
// parsed by the config package, so cobra leaves them alone.
func withApp(ctx context.Context, fn func(context.Context, *gateway.App) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.NewZap(cfg.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	app, err := gateway.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "Init failed", "error", err)
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error(ctx, "Shutdown failed", "error", err)
		}
	}()

	return fn(ctx, app)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "serve",
		Short:              "Apply migrations and serve gRPC",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *gateway.App) error {
				if err := app.Migrate(ctx); err != nil {
					return err
				}
				return app.Run(ctx)
			})
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "migrate",
		Short:              "Apply migrations and exit",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *gateway.App) error {
				return app.Migrate(ctx)
			})
		},
	}
}

func createAdminCmd() *cobra.Command {
	var email, name string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(email) == "" {
				return fmt.Errorf("--email is required")
			}
			password, err := adminPassword()
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), func(ctx context.Context, app *gateway.App) error {
				if err := app.Migrate(ctx); err != nil {
					return err
				}
				u, err := app.CreateAdmin(ctx, email, password, name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (id=%s)\n", u.Email, u.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	// gateway config flags share the command line
	cmd.FParseErrWhitelist.UnknownFlags = true
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build data",
		Run: func(cmd *cobra.Command, _ []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}

func adminPassword() (string, error) {
	if p := os.Getenv(adminPasswordEnv); p != "" {
		return p, nil
	}
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("set %s or run from a terminal", adminPasswordEnv)
	}
	fmt.Fprint(os.Stderr, "Password: ")
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", fmt.Errorf("password is required")
	}
	return string(b), nil
}
